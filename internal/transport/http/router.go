package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"shoppulse/internal/config"
	"shoppulse/internal/middleware"
	"shoppulse/internal/services"
)

// NewRouter builds the HTTP router with the full middleware chain and
// all API routes mounted.
func NewRouter(cfg *config.Config, svc *services.AnalysisService, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.StructuredLogger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst, logger).Handler)

	analysisHandler := NewAnalysisHandler(svc, cfg.Server.MaxUploadBytes, logger)
	healthHandler := NewHealthHandler(logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/analyze", analysisHandler.Analyze)
		r.Get("/health", healthHandler.Health)
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}
