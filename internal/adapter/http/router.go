package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/ledgerimport/internal/adapter/http/handler"
	"github.com/iho/ledgerimport/internal/adapter/http/middleware"
	"github.com/iho/ledgerimport/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	ImportHandler     *handler.ImportHandler
	SuggestionHandler *handler.SuggestionHandler
	HealthHandler     *handler.HealthHandler
	IdempotencyStore  usecase.IdempotencyStore
	RateLimiter       *middleware.RateLimiter
	Logger            zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Limit)
		}

		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Imports
		r.Route("/imports", func(r chi.Router) {
			r.Post("/", cfg.ImportHandler.Create)
			r.Get("/{id}", cfg.ImportHandler.Get)
			r.Post("/{id}/run", cfg.ImportHandler.Run)
		})

		// Transactions
		r.Route("/transactions", func(r chi.Router) {
			r.Post("/{id}/suggestion", cfg.SuggestionHandler.Suggest)
		})
	})

	return r
}
