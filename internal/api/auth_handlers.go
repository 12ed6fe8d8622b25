package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/singlesjukebox/jukebox-server/internal/domain"
	domainerrors "github.com/singlesjukebox/jukebox-server/internal/errors"
	"github.com/singlesjukebox/jukebox-server/internal/service"
)

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        loginPath,
		Summary:     "Writer login",
		Description: "Authenticates a writer and returns access and refresh tokens",
		Tags:        []string{"Authentication"},
	}, s.handleLogin)

	huma.Register(s.api, huma.Operation{
		OperationID: "refresh",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/refresh",
		Summary:     "Refresh tokens",
		Description: "Exchanges a refresh token for new tokens",
		Tags:        []string{"Authentication"},
	}, s.handleRefresh)

	huma.Register(s.api, huma.Operation{
		OperationID: "logout",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/logout",
		Summary:     "Logout",
		Description: "Ends the current session, or the given one",
		Tags:        []string{"Authentication"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleLogout)

	huma.Register(s.api, huma.Operation{
		OperationID: "getMe",
		Method:      http.MethodGet,
		Path:        "/api/v1/auth/me",
		Summary:     "Current writer",
		Description: "Returns the authenticated writer",
		Tags:        []string{"Authentication"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetMe)
}

// LoginRequest is the request body for writer login.
type LoginRequest struct {
	Username string `json:"username" doc:"Writer username"`
	Password string `json:"password" doc:"Writer password"`
}

// LoginInput wraps the login request with headers for Huma.
type LoginInput struct {
	Body      LoginRequest
	UserAgent string `header:"User-Agent"`
}

// RefreshRequest is the request body for token refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" doc:"Refresh token"`
}

// RefreshInput wraps the refresh request for Huma.
type RefreshInput struct {
	Body RefreshRequest
}

// LogoutInput optionally names a session other than the caller's.
type LogoutInput struct {
	Body *struct {
		SessionID string `json:"session_id,omitempty" maxLength:"100" doc:"Session ID to revoke"`
	}
}

// AuthOutput wraps the auth response for Huma.
type AuthOutput struct {
	Body *service.AuthResponse
}

// MessageResponse contains a simple message.
type MessageResponse struct {
	Message string `json:"message" doc:"Success message"`
}

// MessageOutput wraps the message response for Huma.
type MessageOutput struct {
	Body MessageResponse
}

// WriterOutput wraps a writer for Huma.
type WriterOutput struct {
	Body *domain.Writer
}

func (s *Server) handleLogin(ctx context.Context, input *LoginInput) (*AuthOutput, error) {
	resp, err := s.services.Auth.Login(ctx, service.LoginRequest{
		Username:  input.Body.Username,
		Password:  input.Body.Password,
		IPAddress: clientIP(ctx),
		UserAgent: input.UserAgent,
	})
	if err != nil {
		return nil, err
	}
	return &AuthOutput{Body: resp}, nil
}

func (s *Server) handleRefresh(ctx context.Context, input *RefreshInput) (*AuthOutput, error) {
	resp, err := s.services.Auth.Refresh(ctx, service.RefreshRequest{
		RefreshToken: input.Body.RefreshToken,
		IPAddress:    clientIP(ctx),
	})
	if err != nil {
		return nil, err
	}
	return &AuthOutput{Body: resp}, nil
}

func (s *Server) handleLogout(ctx context.Context, input *LogoutInput) (*MessageOutput, error) {
	writer, err := requireWriter(ctx)
	if err != nil {
		return nil, err
	}

	sessionID := ""
	if claims := sessionClaims(ctx); claims != nil {
		sessionID = claims.SessionID
	}
	if input.Body != nil && input.Body.SessionID != "" && input.Body.SessionID != sessionID {
		// Only admins may end someone else's session.
		if !writer.IsAdmin {
			return nil, domainerrors.Forbidden("cannot end another session")
		}
		sessionID = input.Body.SessionID
	}

	if err := s.services.Auth.Logout(ctx, sessionID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "logged out"}}, nil
}

func (s *Server) handleGetMe(ctx context.Context, _ *struct{}) (*WriterOutput, error) {
	writer, err := requireWriter(ctx)
	if err != nil {
		return nil, err
	}
	return &WriterOutput{Body: writer}, nil
}
