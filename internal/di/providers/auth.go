package providers

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/singlesjukebox/jukebox-server/internal/auth"
	"github.com/singlesjukebox/jukebox-server/internal/config"
	"github.com/singlesjukebox/jukebox-server/internal/logger"
)

// ProvideTokens provides the access and refresh token minter. The key comes
// from AUTH_TOKEN_KEY when set, otherwise from the key file in the data
// directory.
func ProvideTokens(i do.Injector) (*auth.Tokens, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	var (
		key    []byte
		source string
		err    error
	)
	if cfg.Auth.TokenKey != "" {
		key, err = auth.ParseKey(cfg.Auth.TokenKey)
		source = "environment"
	} else {
		_ = do.MustInvoke[*InstanceLock](i)
		key, err = auth.LoadOrCreateKey(cfg.Storage.KeyPath())
		source = cfg.Storage.KeyPath()
	}
	if err != nil {
		return nil, fmt.Errorf("token key: %w", err)
	}

	tokens, err := auth.NewTokens(key, cfg.Auth.AccessTokenDuration, cfg.Auth.RefreshTokenDuration)
	if err != nil {
		return nil, err
	}
	log.Info("Token key loaded", "source", source,
		"access_ttl", tokens.AccessTTL(), "refresh_ttl", tokens.RefreshTTL())
	return tokens, nil
}
