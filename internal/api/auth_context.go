package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/singlesjukebox/jukebox-server/internal/auth"
	"github.com/singlesjukebox/jukebox-server/internal/domain"
	domainerrors "github.com/singlesjukebox/jukebox-server/internal/errors"
	"github.com/singlesjukebox/jukebox-server/internal/service"
)

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

const (
	writerKey ctxKey = "writer"
	claimsKey ctxKey = "claims"
	clientKey ctxKey = "client_ip"
)

// clientIPMiddleware records the caller's address for handlers that key
// limits or sessions by client.
func clientIPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), clientKey, getClientIP(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// clientIP returns the address stored by clientIPMiddleware.
func clientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(clientKey).(string); ok && ip != "" {
		return ip
	}
	return "unknown"
}

// authMiddleware validates Bearer tokens and stores the writer in context.
// A missing or invalid token continues without a writer; handlers call
// requireWriter or requireStaff to reject anonymous requests.
func authMiddleware(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || token == "" {
				next.ServeHTTP(w, r)
				return
			}

			writer, claims, err := authService.VerifyAccessToken(r.Context(), token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), writerKey, writer)
			ctx = context.WithValue(ctx, claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requireWriter returns the authenticated writer or a 401.
func requireWriter(ctx context.Context) (*domain.Writer, error) {
	writer, ok := ctx.Value(writerKey).(*domain.Writer)
	if !ok || writer == nil {
		return nil, domainerrors.Unauthorized("authentication required")
	}
	return writer, nil
}

// requireStaff returns the authenticated writer if they may edit songs and
// their review order.
func requireStaff(ctx context.Context) (*domain.Writer, error) {
	writer, err := requireWriter(ctx)
	if err != nil {
		return nil, err
	}
	if !writer.IsStaff && !writer.IsAdmin {
		return nil, domainerrors.Forbidden("editor access required")
	}
	return writer, nil
}

// sessionClaims returns the token claims of the current request, if any.
func sessionClaims(ctx context.Context) *auth.AccessClaims {
	claims, _ := ctx.Value(claimsKey).(*auth.AccessClaims)
	return claims
}
