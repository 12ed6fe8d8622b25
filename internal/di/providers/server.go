package providers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/samber/do/v2"

	"github.com/singlesjukebox/jukebox-server/internal/api"
	"github.com/singlesjukebox/jukebox-server/internal/config"
	"github.com/singlesjukebox/jukebox-server/internal/logger"
	"github.com/singlesjukebox/jukebox-server/internal/metrics"
	"github.com/singlesjukebox/jukebox-server/internal/ratelimit"
	"github.com/singlesjukebox/jukebox-server/internal/service"
)

// shutdownTimeout bounds how long in-flight requests and running jobs get
// to finish on shutdown.
const shutdownTimeout = 30 * time.Second

// Login throttling per client address.
const (
	loginAttempts = 20
	loginInterval = time.Minute
	loginBurst    = 10
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	loginLimiter *ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	defer h.loginLimiter.Stop()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	m := do.MustInvoke[*metrics.Metrics](i)
	log := do.MustInvoke[*logger.Logger](i)

	services := &api.Services{
		Auth:     do.MustInvoke[*service.AuthService](i),
		Writer:   do.MustInvoke[*service.WriterService](i),
		Song:     do.MustInvoke[*service.SongService](i),
		Review:   do.MustInvoke[*service.ReviewService](i),
		Reorder:  do.MustInvoke[*service.ReorderService](i),
		Schedule: do.MustInvoke[*service.ScheduleService](i),
		Publish:  do.MustInvoke[*service.PublishService](i),
		Public:   do.MustInvoke[*service.PublicService](i),
		Search:   indexHandle.SearchIndex,
	}

	loginLimiter := api.NewRateLimiter(loginAttempts, loginInterval, loginBurst)
	handler := api.NewServer(storeHandle.Store, services, api.Options{
		CORSOrigins:  cfg.Server.CORSOrigins,
		Metrics:      m,
		LoginLimiter: loginLimiter,
	}, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv, loginLimiter: loginLimiter}, nil
}
