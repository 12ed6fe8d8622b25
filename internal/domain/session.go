package domain

import "time"

// Session is a writer's login session, identified by a hashed refresh token.
type Session struct {
	ExpiresAt        time.Time `json:"expires_at"`
	CreatedAt        time.Time `json:"created_at"`
	LastSeenAt       time.Time `json:"last_seen_at"`
	ID               string    `json:"id"`
	WriterID         string    `json:"writer_id"`
	RefreshTokenHash string    `json:"refresh_token_hash,omitempty"`
	IPAddress        string    `json:"ip_address,omitempty"`
	UserAgent        string    `json:"user_agent,omitempty"`
}

// IsExpired reports whether the session can no longer be refreshed.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Touch updates the session's last seen timestamp.
func (s *Session) Touch() {
	s.LastSeenAt = time.Now()
}
