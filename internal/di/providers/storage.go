package providers

import (
	"github.com/samber/do/v2"

	"github.com/singlesjukebox/jukebox-server/internal/config"
	"github.com/singlesjukebox/jukebox-server/internal/logger"
	"github.com/singlesjukebox/jukebox-server/internal/media"
)

// ProvideMediaStorage provides the mp3 upload storage.
func ProvideMediaStorage(i do.Injector) (*media.Storage, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	storage, err := media.NewStorage(cfg.Storage.MediaPath())
	if err != nil {
		return nil, err
	}

	log.Info("Media storage initialized", "path", cfg.Storage.MediaPath())
	return storage, nil
}
