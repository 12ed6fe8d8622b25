// Package auth issues and checks writer credentials: password hashes,
// PASETO access tokens and opaque refresh tokens.
package auth

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"aidanwoods.dev/go-paseto"
)

// LoadOrCreateKey returns the token key kept hex-encoded at path. A missing
// file gets a freshly generated key, written with owner-only permissions.
func LoadOrCreateKey(path string) ([]byte, error) {
	raw, err := os.ReadFile(path) //#nosec G304 -- path is derived from the data directory
	switch {
	case err == nil:
		return ParseKey(string(raw))
	case !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("read token key: %w", err)
	}

	key := paseto.NewV4SymmetricKey()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create key directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(key.ExportHex()+"\n"), 0o600); err != nil {
		return nil, fmt.Errorf("write token key: %w", err)
	}
	return key.ExportBytes(), nil
}

// ParseKey decodes a hex token key, as stored on disk or given in AUTH_TOKEN_KEY.
func ParseKey(hexKey string) ([]byte, error) {
	key, err := paseto.V4SymmetricKeyFromHex(strings.TrimSpace(hexKey))
	if err != nil {
		return nil, fmt.Errorf("parse token key: %w", err)
	}
	return key.ExportBytes(), nil
}
