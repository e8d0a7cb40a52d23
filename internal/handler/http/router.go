package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mobydigital/login-service/pkg/health"
	"github.com/mobydigital/login-service/pkg/middleware"
)

// NewRouter creates a chi router with all login service routes registered.
func NewRouter(
	flow LoginFlow,
	healthHandler *health.Handler,
	logger *slog.Logger,
	redirectBase string,
	cookies CookieConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("login"))
	r.Use(middleware.Tracing("login"))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Auth endpoints
	authHandler := NewAuthHandler(flow, logger, redirectBase, cookies)

	r.Route("/api/auth", func(r chi.Router) {
		r.Get("/google/callback", authHandler.Callback)
		r.Get("/me", authHandler.Me)
		r.Post("/logout", authHandler.Logout)
	})

	return r
}
