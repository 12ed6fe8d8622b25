package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"
	"github.com/google/uuid"

	"github.com/singlesjukebox/jukebox-server/internal/domain"
)

const (
	issuer   = "jukebox-server"
	audience = "jukebox-editors"

	// refreshEntropy is the number of random bytes in a refresh token.
	refreshEntropy = 32
)

// Tokens mints v4.local access tokens and opaque refresh tokens.
type Tokens struct {
	key        paseto.V4SymmetricKey
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokens builds a token minter from a raw 32-byte key.
func NewTokens(key []byte, accessTTL, refreshTTL time.Duration) (*Tokens, error) {
	k, err := paseto.V4SymmetricKeyFromBytes(key)
	if err != nil {
		return nil, fmt.Errorf("token key: %w", err)
	}
	return &Tokens{key: k, accessTTL: accessTTL, refreshTTL: refreshTTL, now: time.Now}, nil
}

// IssueAccess returns an access token for writer bound to sessionID.
func (t *Tokens) IssueAccess(writer *domain.Writer, sessionID string) (string, error) {
	now := t.now()

	tok := paseto.NewToken()
	tok.SetIssuer(issuer)
	tok.SetAudience(audience)
	tok.SetSubject(writer.ID)
	tok.SetJti(uuid.NewString())
	tok.SetIssuedAt(now)
	tok.SetNotBefore(now)
	tok.SetExpiration(now.Add(t.accessTTL))

	for name, value := range map[string]any{
		claimUsername: writer.Username,
		claimSession:  sessionID,
		claimStaff:    writer.IsStaff,
		claimAdmin:    writer.IsAdmin,
	} {
		if err := tok.Set(name, value); err != nil {
			return "", fmt.Errorf("set %s claim: %w", name, err)
		}
	}
	return tok.V4Encrypt(t.key, nil), nil
}

// ParseAccess decrypts an access token and checks issuer, audience and
// validity window.
func (t *Tokens) ParseAccess(token string) (*AccessClaims, error) {
	p := paseto.MakeParser([]paseto.Rule{
		paseto.IssuedBy(issuer),
		paseto.ForAudience(audience),
		paseto.ValidAt(t.now()),
	})
	tok, err := p.ParseV4Local(t.key, token, nil)
	if err != nil {
		return nil, fmt.Errorf("parse access token: %w", err)
	}
	return claimsFrom(tok)
}

// NewRefreshToken returns a random URL-safe refresh token. Only its hash
// is ever stored.
func (t *Tokens) NewRefreshToken() (string, error) {
	b := make([]byte, refreshEntropy)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// AccessTTL is the lifetime of access tokens.
func (t *Tokens) AccessTTL() time.Duration { return t.accessTTL }

// RefreshTTL is the lifetime of a session between refreshes.
func (t *Tokens) RefreshTTL() time.Duration { return t.refreshTTL }

// HashRefreshToken is the lookup key for a refresh token: hex SHA-256.
func HashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
