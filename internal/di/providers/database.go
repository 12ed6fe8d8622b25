package providers

import (
	"fmt"
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/singlesjukebox/jukebox-server/internal/config"
	"github.com/singlesjukebox/jukebox-server/internal/logger"
	"github.com/singlesjukebox/jukebox-server/internal/store/kv"
	"github.com/singlesjukebox/jukebox-server/internal/store/sqlite"
)

// StoreHandle closes the SQLite store on shutdown.
type StoreHandle struct{ *sqlite.Store }

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error { return h.Close() }

// SessionStoreHandle closes the Badger session store on shutdown.
type SessionStoreHandle struct{ *kv.Store }

// Shutdown implements do.Shutdownable.
func (h *SessionStoreHandle) Shutdown() error { return h.Close() }

// ProvideStore opens songs, reviews, writers and posts.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	db, err := openLocked(i, "database", cfg.Storage.DatabasePath(), sqlite.Open)
	if err != nil {
		return nil, err
	}
	return &StoreHandle{db}, nil
}

// ProvideSessionStore opens the login session store.
func ProvideSessionStore(i do.Injector) (*SessionStoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	sessions, err := openLocked(i, "sessions", cfg.Storage.SessionPath(), kv.Open)
	if err != nil {
		return nil, err
	}
	return &SessionStoreHandle{sessions}, nil
}

// openLocked opens an on-disk store once the data directory lock is held.
func openLocked[T any](i do.Injector, name, path string, open func(string, *slog.Logger) (T, error)) (T, error) {
	_ = do.MustInvoke[*InstanceLock](i)
	log := do.MustInvoke[*logger.Logger](i)

	v, err := open(path, log.For(name))
	if err != nil {
		var zero T
		return zero, fmt.Errorf("open %s at %s: %w", name, path, err)
	}
	log.Info("Opened "+name, "path", path)
	return v, nil
}
