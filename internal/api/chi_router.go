// Chronographus - GitHub Events Analytics and Timeline Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/chronographus/internal/config"
	"github.com/tomtom215/chronographus/internal/middleware"
	"github.com/tomtom215/chronographus/internal/models"
)

// availableEndpoints is advertised by the 404 handler so a caller who
// mistypes a path can discover the API surface from the error itself.
var availableEndpoints = []string{
	"GET /api/v1/metrics/events/count?offset=10",
	"GET /api/v1/metrics/pr-average?repo=owner/repo",
	"GET /api/v1/visualization/timeline?hours=24&interval=60",
	"GET /api/v1/events/live (WebSocket)",
	"GET /health",
	"GET /ready",
}

// chiMiddleware adapts http.HandlerFunc middleware to Chi's func(http.Handler) http.Handler.
// This allows the middleware package's handlers to work with Chi's r.Use().
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// Router assembles the HTTP route table around a Handler.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router for the given handler. The api config
// section supplies CORS origins and rate limit settings; nil falls back
// to defaults.
func NewRouter(handler *Handler, apiCfg *config.APIConfig) *Router {
	return &Router{
		handler:       handler,
		chiMiddleware: NewChiMiddlewareFromConfig(apiCfg),
	}
}

// SetupChi configures all HTTP routes using the Chi router.
//
// Middleware order: request ID, real IP, request logging, panic
// recovery, then CORS. CORS is global so OPTIONS preflight requests are
// answered on every path. Rate limiting, Prometheus metrics, the
// performance monitor and gzip compression apply per route group.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chimiddleware.RealIP)
	r.Use(RequestLogging())
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())

	// Must precede the Route calls so subrouters inherit it.
	r.NotFound(router.notFoundHandler)

	// ========================
	// Core API Endpoints
	// ========================
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Use(router.handler.PerformanceMonitor().Middleware)
		r.Use(chiMiddleware(middleware.Compression))

		r.Get("/metrics/events/count", router.handler.EventCount)
		r.Get("/metrics/pr-average", router.handler.PRAverage)
		r.Get("/visualization/timeline", router.handler.Timeline)
		// Alias so both spellings resolve to the same handler.
		r.Get("/visualisation/timeline", router.handler.Timeline)

		r.Get("/events/live", router.handler.WebSocket)
	})

	// ========================
	// Health Endpoints
	// ========================
	// Permissive rate limiting so monitors can probe frequently.
	r.Group(func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Get("/health", router.handler.Health)
		r.Get("/ready", router.handler.HealthReady)
	})

	// ========================
	// Observability
	// ========================
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// notFoundHandler answers unknown paths with the endpoint catalog.
func (router *Router) notFoundHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusNotFound, &models.APIResponse{
		Status: models.ResponseStatusError,
		Error: &models.APIError{
			Code:    models.ErrCodeNotFound,
			Message: "Endpoint not found",
			Details: map[string]interface{}{
				"available_endpoints": availableEndpoints,
			},
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}
