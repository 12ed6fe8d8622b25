// Package api provides the HTTP API server and handlers for the jukebox.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/singlesjukebox/jukebox-server/internal/metrics"
	"github.com/singlesjukebox/jukebox-server/internal/ratelimit"
	"github.com/singlesjukebox/jukebox-server/internal/store"
)

const loginPath = "/api/v1/auth/login"

// Options holds the optional collaborators of a Server.
type Options struct {
	Version      string
	CORSOrigins  []string
	Metrics      *metrics.Metrics            // nil disables /metrics
	LoginLimiter *ratelimit.KeyedRateLimiter // nil disables login throttling
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store        store.Store
	services     *Services
	router       *chi.Mux
	api          huma.API
	metrics      *metrics.Metrics
	loginLimiter *ratelimit.KeyedRateLimiter
	logger       *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(st store.Store, services *Services, opts Options, logger *slog.Logger) *Server {
	if opts.Version == "" {
		opts.Version = "1.0.0"
	}

	router := chi.NewRouter()
	s := &Server{
		store:        st,
		services:     services,
		router:       router,
		metrics:      opts.Metrics,
		loginLimiter: opts.LoginLimiter,
		logger:       logger,
	}
	s.setupMiddleware(opts.CORSOrigins)

	humaConfig := huma.DefaultConfig("Jukebox API", opts.Version)
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	s.api = humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerWriterRoutes()
	s.registerSongRoutes()
	s.registerReviewRoutes()
	s.registerScheduleRoutes()
	s.registerPublicRoutes()

	if s.metrics != nil {
		router.Handle("/metrics", s.metrics.Handler())
	}

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API, mainly for OpenAPI export.
func (s *Server) API() huma.API {
	return s.api
}

// setupMiddleware configures the middleware stack shared by every route.
func (s *Server) setupMiddleware(corsOrigins []string) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(clientIPMiddleware)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	if len(corsOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   corsOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	if s.metrics != nil {
		s.router.Use(s.metrics.Middleware)
	}
	if s.loginLimiter != nil {
		s.router.Use(s.limitLogin)
	}
	s.router.Use(authMiddleware(s.services.Auth))
}

// limitLogin throttles login attempts per client address.
func (s *Server) limitLogin(next http.Handler) http.Handler {
	limited := RateLimitMiddleware(s.loginLimiter, s.logger)(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == loginPath {
			limited.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestLogger logs one line per request through slog.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			level := slog.LevelDebug
			switch {
			case status >= 500:
				level = slog.LevelError
			case status >= 400:
				level = slog.LevelInfo
			}
			logger.Log(r.Context(), level, "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
