package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/singlesjukebox/jukebox-server/internal/auth"
	"github.com/singlesjukebox/jukebox-server/internal/domain"
	domainerrors "github.com/singlesjukebox/jukebox-server/internal/errors"
	"github.com/singlesjukebox/jukebox-server/internal/id"
	"github.com/singlesjukebox/jukebox-server/internal/store"
)

// AuthService handles writer login, token refresh and logout.
// Sessions live in the session store; writers in the relational store.
type AuthService struct {
	store    store.Store
	sessions store.SessionStore
	tokens   *auth.Tokens
	logger   *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	store store.Store,
	sessions store.SessionStore,
	tokens *auth.Tokens,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		store:    store,
		sessions: sessions,
		tokens:   tokens,
		logger:   logger,
	}
}

// LoginRequest contains writer credentials.
type LoginRequest struct {
	Username  string `json:"username" validate:"required"`
	Password  string `json:"password" validate:"required"`
	IPAddress string `json:"-"` // Extracted from request by handler
	UserAgent string `json:"-"`
}

// RefreshRequest contains the refresh token to rotate.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
	IPAddress    string `json:"-"`
}

// AuthResponse contains the tokens of a session and the signed-in writer.
type AuthResponse struct {
	Writer       *domain.Writer `json:"writer"`
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	TokenType    string         `json:"token_type"`
	ExpiresIn    int            `json:"expires_in"` // Seconds until access token expires
	SessionID    string         `json:"session_id"`
}

// Login checks credentials and opens a new session.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	writer, err := s.store.GetWriterByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Don't leak whether the username exists
			return nil, domainerrors.InvalidCredentials("invalid username or password")
		}
		return nil, fmt.Errorf("lookup writer: %w", err)
	}

	valid, err := auth.VerifyPassword(writer.PasswordHash, req.Password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		return nil, domainerrors.InvalidCredentials("invalid username or password")
	}
	if !writer.IsActive {
		return nil, domainerrors.Forbidden("account is disabled")
	}
	if auth.NeedsRehash(writer.PasswordHash) {
		s.upgradePasswordHash(ctx, writer, req.Password)
	}

	refreshToken, err := s.tokens.NewRefreshToken()
	if err != nil {
		return nil, err
	}

	sessionID, err := id.Session.New()
	if err != nil {
		return nil, fmt.Errorf("generate session ID: %w", err)
	}

	now := time.Now()
	session := &domain.Session{
		ID:               sessionID,
		WriterID:         writer.ID,
		RefreshTokenHash: auth.HashRefreshToken(refreshToken),
		ExpiresAt:        now.Add(s.tokens.RefreshTTL()),
		CreatedAt:        now,
		LastSeenAt:       now,
		IPAddress:        req.IPAddress,
		UserAgent:        req.UserAgent,
	}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	resp, err := s.respond(writer, session.ID, refreshToken)
	if err != nil {
		return nil, err
	}

	s.logger.Info("writer logged in", "writer_id", writer.ID, "session_id", session.ID)
	return resp, nil
}

// upgradePasswordHash replaces a legacy or weaker hash once the plain
// password is known. Failure only costs another attempt at the next login.
func (s *AuthService) upgradePasswordHash(ctx context.Context, writer *domain.Writer, password string) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		s.logger.Warn("could not rehash password", "writer_id", writer.ID, "error", err)
		return
	}
	writer.PasswordHash = hash
	if err := s.store.UpdateWriter(ctx, writer); err != nil {
		s.logger.Warn("could not save upgraded password hash", "writer_id", writer.ID, "error", err)
		return
	}
	s.logger.Info("password hash upgraded", "writer_id", writer.ID)
}

// Refresh rotates a session's refresh token and issues a new access token.
// The old refresh token stops working.
func (s *AuthService) Refresh(ctx context.Context, req RefreshRequest) (*AuthResponse, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	session, err := s.sessions.GetSessionByRefreshToken(ctx, auth.HashRefreshToken(req.RefreshToken))
	if err != nil {
		return nil, domainerrors.Unauthorized("invalid or expired refresh token").WithCause(err)
	}

	writer, err := s.store.GetWriter(ctx, session.WriterID)
	if err != nil || !writer.IsActive {
		// Writer was deleted or disabled; the session goes with them.
		_ = s.sessions.DeleteSession(ctx, session.ID)
		return nil, domainerrors.Unauthorized("invalid or expired refresh token")
	}

	refreshToken, err := s.tokens.NewRefreshToken()
	if err != nil {
		return nil, err
	}

	session.RefreshTokenHash = auth.HashRefreshToken(refreshToken)
	session.Touch()
	if req.IPAddress != "" {
		session.IPAddress = req.IPAddress
	}
	if err := s.sessions.UpdateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}

	return s.respond(writer, session.ID, refreshToken)
}

// Logout ends a session. Unknown sessions are ignored.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.logger.Info("session deleted", "session_id", sessionID)
	return nil
}

// VerifyAccessToken validates a token and returns its writer. The token's
// session must still exist, so logging out revokes outstanding tokens.
func (s *AuthService) VerifyAccessToken(ctx context.Context, token string) (*domain.Writer, *auth.AccessClaims, error) {
	claims, err := s.tokens.ParseAccess(token)
	if err != nil {
		return nil, nil, domainerrors.Unauthorized("invalid or expired token").WithCause(err)
	}

	if _, err := s.sessions.GetSession(ctx, claims.SessionID); err != nil {
		return nil, nil, domainerrors.Unauthorized("session has ended").WithCause(err)
	}

	writer, err := s.store.GetWriter(ctx, claims.WriterID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, domainerrors.Unauthorized("writer not found")
		}
		return nil, nil, fmt.Errorf("get writer: %w", err)
	}
	if !writer.IsActive {
		return nil, nil, domainerrors.Forbidden("account is disabled")
	}
	return writer, claims, nil
}

func (s *AuthService) respond(writer *domain.Writer, sessionID, refreshToken string) (*AuthResponse, error) {
	accessToken, err := s.tokens.IssueAccess(writer, sessionID)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	return &AuthResponse{
		Writer:       writer,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.tokens.AccessTTL().Seconds()),
		SessionID:    sessionID,
	}, nil
}
