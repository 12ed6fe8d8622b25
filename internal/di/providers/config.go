// Package providers contains dependency injection providers for the jukebox server.
package providers

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/gofrs/flock"
	"github.com/samber/do/v2"

	"github.com/singlesjukebox/jukebox-server/internal/config"
	"github.com/singlesjukebox/jukebox-server/internal/logger"
)

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.LoadConfig()
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Format:      cfg.Logger.Format,
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("Starting jukebox server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_path", cfg.Storage.DataPath,
	)

	return log, nil
}

// ProvideSlogLogger provides access to the underlying slog.Logger for packages that need it.
func ProvideSlogLogger(i do.Injector) (*slog.Logger, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return log.Logger, nil
}

// InstanceLock holds the data directory lock so two servers never share
// one database.
type InstanceLock struct {
	*flock.Flock
}

// Shutdown implements do.Shutdownable.
func (l *InstanceLock) Shutdown() error {
	return l.Unlock()
}

// ProvideInstanceLock takes the single-instance lock on the data directory.
func ProvideInstanceLock(i do.Injector) (*InstanceLock, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if err := os.MkdirAll(cfg.Storage.DataPath, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	lock := flock.New(cfg.Storage.LockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("another jukebox server is using %s", cfg.Storage.DataPath)
	}

	log.Debug("Data directory locked", "path", lock.Path())
	return &InstanceLock{Flock: lock}, nil
}
