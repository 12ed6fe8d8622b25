package auth

import (
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"
)

// Private claim names carried in access tokens.
const (
	claimUsername = "username"
	claimSession  = "sid"
	claimStaff    = "staff"
	claimAdmin    = "admin"
)

// AccessClaims is what an access token says about its bearer.
type AccessClaims struct {
	WriterID  string
	Username  string
	SessionID string
	IsStaff   bool
	IsAdmin   bool
	ExpiresAt time.Time
	TokenID   string
}

// CanEdit reports whether the token grants editor operations.
func (c *AccessClaims) CanEdit() bool {
	return c.IsStaff || c.IsAdmin
}

func claimsFrom(t *paseto.Token) (*AccessClaims, error) {
	var (
		c   AccessClaims
		err error
	)
	if c.WriterID, err = t.GetSubject(); err != nil {
		return nil, fmt.Errorf("subject: %w", err)
	}
	if c.SessionID, err = t.GetString(claimSession); err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	if c.ExpiresAt, err = t.GetExpiration(); err != nil {
		return nil, fmt.Errorf("expiration: %w", err)
	}
	// Optional claims; absent means empty or false.
	c.Username, _ = t.GetString(claimUsername)
	c.TokenID, _ = t.GetJti()
	_ = t.Get(claimStaff, &c.IsStaff)
	_ = t.Get(claimAdmin, &c.IsAdmin)
	return &c, nil
}
