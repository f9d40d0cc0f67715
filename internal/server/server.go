package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"storefront/internal/app"
	"storefront/internal/config"
	custommiddleware "storefront/internal/middleware"
	"storefront/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	app    *app.App
}

func NewServer(cfg *config.Config, logger *zap.Logger, a *app.App) *Server {
	return &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      NewRouter(cfg, logger, a),
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		app:    a,
	}
}

// NewRouter builds the HTTP surface
func NewRouter(cfg *config.Config, logger *zap.Logger, a *app.App) *chi.Mux {
	router := chi.NewRouter()

	router.Use(custommiddleware.DefaultMiddlewareStack()...)
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.MetricsMiddleware)
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, cfg.IsDevelopment()))

	router.NotFound(custommiddleware.NotFound)
	router.MethodNotAllowed(custommiddleware.MethodNotAllowed)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		health := a.Health(r.Context())
		status := http.StatusOK
		if health.Status != "ok" {
			status = http.StatusServiceUnavailable
		}
		custommiddleware.RespondWithJSON(w, status, health)
	})
	router.Handle("/metrics", promhttp.Handler())

	transport.RegisterRoutes(router, a.Services, logger, writeMiddleware(cfg, logger, a)...)

	return router
}

// writeMiddleware guards collection replacement. Auth applies only when a
// JWT secret is configured, rate limiting only when Redis is.
func writeMiddleware(cfg *config.Config, logger *zap.Logger, a *app.App) []func(http.Handler) http.Handler {
	var write []func(http.Handler) http.Handler

	if cfg.JWT.Secret != "" {
		write = append(write,
			custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger),
			custommiddleware.RequireAdmin(logger),
		)
	} else {
		logger.Warn("JWT_SECRET not set, collection writes are unauthenticated")
	}

	write = append(write, custommiddleware.ValidationMiddleware(custommiddleware.DefaultMaxBodyBytes, logger))
	write = append(write, custommiddleware.Optional(a.Redis != nil, func(next http.Handler) http.Handler {
		return custommiddleware.RateLimitMiddleware(a.Redis, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.Requests,
			Window:            cfg.RateLimit.Window,
			KeyPrefix:         "storefront:writes",
		}, logger)(next)
	}))

	return write
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Flushes queued file writes and pending events
	if err := s.app.Close(ctx); err != nil {
		s.logger.Error("Failed to close resources", zap.Error(err))
	}

	s.logger.Sync()
	return nil
}
