package providers

import (
	"time"

	"github.com/samber/do/v2"

	"github.com/singlesjukebox/jukebox-server/internal/auth"
	"github.com/singlesjukebox/jukebox-server/internal/config"
	"github.com/singlesjukebox/jukebox-server/internal/logger"
	"github.com/singlesjukebox/jukebox-server/internal/mail"
	"github.com/singlesjukebox/jukebox-server/internal/media"
	"github.com/singlesjukebox/jukebox-server/internal/metrics"
	"github.com/singlesjukebox/jukebox-server/internal/ratelimit"
	"github.com/singlesjukebox/jukebox-server/internal/service"
)

// Comment throttling: a client may post a short burst, then one comment
// every half minute.
const (
	commentRate    = 1.0 / 30
	commentBurst   = 3
	commentIdleTTL = time.Hour
)

// ProvideMetrics provides the Prometheus collectors.
func ProvideMetrics(i do.Injector) (*metrics.Metrics, error) {
	return metrics.New(), nil
}

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sessionHandle := do.MustInvoke[*SessionStoreHandle](i)
	tokens := do.MustInvoke[*auth.Tokens](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, sessionHandle.Store, tokens, log.For("auth")), nil
}

// ProvideWriterService provides the writer service.
func ProvideWriterService(i do.Injector) (*service.WriterService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewWriterService(storeHandle.Store, log.For("writers")), nil
}

// ProvideSongService provides the song service.
func ProvideSongService(i do.Injector) (*service.SongService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	storage := do.MustInvoke[*media.Storage](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSongService(storeHandle.Store, storage, log.For("songs")), nil
}

// ProvideReviewService provides the review service.
func ProvideReviewService(i do.Injector) (*service.ReviewService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sender := do.MustInvoke[mail.Sender](i)
	m := do.MustInvoke[*metrics.Metrics](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewReviewService(storeHandle.Store, sender, cfg.Mail.Admins, m, log.For("reviews")), nil
}

// ProvideReorderService provides the reorder engine.
func ProvideReorderService(i do.Injector) (*service.ReorderService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	m := do.MustInvoke[*metrics.Metrics](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewReorderService(storeHandle.Store, cfg.Editorial.ReorderIncludePublished, m, log.For("reorder")), nil
}

// ProvideScheduleService provides the weekly schedule service.
func ProvideScheduleService(i do.Injector) (*service.ScheduleService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewScheduleService(storeHandle.Store, log.For("schedule")), nil
}

// ProvidePublishService provides the publish service.
func ProvidePublishService(i do.Injector) (*service.PublishService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	blogHandle := do.MustInvoke[*BlogHandle](i)
	m := do.MustInvoke[*metrics.Metrics](i)
	log := do.MustInvoke[*logger.Logger](i)

	// A nil *wordpress.Client must not become a non-nil interface.
	var blog service.BlogPublisher
	if blogHandle.Client != nil {
		blog = blogHandle.Client
	}

	return service.NewPublishService(storeHandle.Store, indexHandle.SearchIndex, blog, m, log.For("publish")), nil
}

// CommentLimiterHandle wraps the comment rate limiter with shutdown capability.
type CommentLimiterHandle struct {
	*ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *CommentLimiterHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideCommentLimiter provides the per-client comment limiter.
func ProvideCommentLimiter(i do.Injector) (*CommentLimiterHandle, error) {
	return &CommentLimiterHandle{
		KeyedRateLimiter: ratelimit.NewWithIdleTTL(commentRate, commentBurst, commentIdleTTL),
	}, nil
}

// ProvidePublicService provides the reader-facing service.
func ProvidePublicService(i do.Injector) (*service.PublicService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	limiter := do.MustInvoke[*CommentLimiterHandle](i)
	m := do.MustInvoke[*metrics.Metrics](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewPublicService(
		storeHandle.Store,
		indexHandle.SearchIndex,
		limiter.KeyedRateLimiter,
		cfg.Editorial.PublicPageSize,
		m,
		log.For("public"),
	), nil
}
