// Package di provides dependency injection configuration for the jukebox server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/singlesjukebox/jukebox-server/internal/auth"
	"github.com/singlesjukebox/jukebox-server/internal/config"
	"github.com/singlesjukebox/jukebox-server/internal/di/providers"
	"github.com/singlesjukebox/jukebox-server/internal/logger"
	"github.com/singlesjukebox/jukebox-server/internal/mail"
	"github.com/singlesjukebox/jukebox-server/internal/media"
	"github.com/singlesjukebox/jukebox-server/internal/metrics"
	"github.com/singlesjukebox/jukebox-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)
	do.Provide(injector, providers.ProvideInstanceLock)
	do.Provide(injector, providers.ProvideMetrics)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideSessionStore)
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideMediaStorage)

	// Outbound
	do.Provide(injector, providers.ProvideMailSender)
	do.Provide(injector, providers.ProvideBlog)

	// Auth layer
	do.Provide(injector, providers.ProvideTokens)

	// Business services
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideWriterService)
	do.Provide(injector, providers.ProvideSongService)
	do.Provide(injector, providers.ProvideReviewService)
	do.Provide(injector, providers.ProvideReorderService)
	do.Provide(injector, providers.ProvideScheduleService)
	do.Provide(injector, providers.ProvidePublishService)
	do.Provide(injector, providers.ProvideCommentLimiter)
	do.Provide(injector, providers.ProvidePublicService)

	// Workers
	do.Provide(injector, providers.ProvideScheduler)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	invokers := []func() error{
		func() error { _, err := do.Invoke[*config.Config](injector); return err },
		func() error { _, err := do.Invoke[*logger.Logger](injector); return err },
		func() error { _, err := do.Invoke[*providers.InstanceLock](injector); return err },
		func() error { _, err := do.Invoke[*metrics.Metrics](injector); return err },
		func() error { _, err := do.Invoke[*providers.StoreHandle](injector); return err },
		func() error { _, err := do.Invoke[*providers.SessionStoreHandle](injector); return err },
		func() error { _, err := do.Invoke[*providers.SearchIndexHandle](injector); return err },
		func() error { _, err := do.Invoke[*media.Storage](injector); return err },
		func() error { _, err := do.Invoke[mail.Sender](injector); return err },
		func() error { _, err := do.Invoke[*providers.BlogHandle](injector); return err },
		func() error { _, err := do.Invoke[*auth.Tokens](injector); return err },

		// Business services
		func() error { _, err := do.Invoke[*service.AuthService](injector); return err },
		func() error { _, err := do.Invoke[*service.WriterService](injector); return err },
		func() error { _, err := do.Invoke[*service.SongService](injector); return err },
		func() error { _, err := do.Invoke[*service.ReviewService](injector); return err },
		func() error { _, err := do.Invoke[*service.ReorderService](injector); return err },
		func() error { _, err := do.Invoke[*service.ScheduleService](injector); return err },
		func() error { _, err := do.Invoke[*service.PublishService](injector); return err },
		func() error { _, err := do.Invoke[*service.PublicService](injector); return err },

		// Workers and server
		func() error { _, err := do.Invoke[*providers.SchedulerHandle](injector); return err },
		func() error { _, err := do.Invoke[*providers.HTTPServerHandle](injector); return err },
	}
	for _, invoke := range invokers {
		if err := invoke(); err != nil {
			return err
		}
	}

	return nil
}
