// Chronographus - GitHub Events Analytics and Timeline Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/chronographus/internal/cache"
	"github.com/tomtom215/chronographus/internal/config"
	"github.com/tomtom215/chronographus/internal/logging"
	"github.com/tomtom215/chronographus/internal/middleware"
	"github.com/tomtom215/chronographus/internal/models"
	ws "github.com/tomtom215/chronographus/internal/websocket"
)

// queryCacheTTL bounds how stale a served aggregate may be. It matches
// the Cache-Control max-age sent with every response.
const queryCacheTTL = 60 * time.Second

// QueryEngine is the analytical surface the handlers call. Satisfied by
// *query.Engine.
type QueryEngine interface {
	CountsInWindow(ctx context.Context, offsetMinutes int) (*models.EventCountsResult, error)
	PRInterval(ctx context.Context, repoName string) (*models.PRAverageResult, error)
	Repositories(ctx context.Context) (*models.RepositoriesResult, error)
	Timeline(ctx context.Context, hours, intervalMinutes int) (*models.TimelineResult, error)
}

// ConnCheck reports whether one backing dependency is currently usable.
// Checks must be cheap; they run on every health and readiness probe.
type ConnCheck func() bool

// Handler contains dependencies for API handlers
//
// Handler methods are split across multiple files:
//   - handlers.go: Handler struct, constructor, WebSocket endpoint (this file)
//   - handlers_helpers.go: Shared helper functions
//   - handlers_stats.go: Event count and PR average endpoints
//   - handlers_timeline.go: Timeline visualization endpoint
//   - handlers_health.go: Health and readiness probes
type Handler struct {
	queries    QueryEngine
	config     *config.Config
	wsHub      *ws.Hub
	startTime  time.Time
	cache      *cache.Cache
	perfMon    *middleware.PerformanceMonitor
	storeCheck ConnCheck
	queueCheck ConnCheck
}

// NewHandler creates an API handler.
//
// Dependencies:
//   - queries: Query engine answering the analytical endpoints
//   - cfg: Application configuration (CORS origins for WebSocket checks)
//   - wsHub: WebSocket hub for the live event feed, may be nil
//
// The handler initializes with a 60-second TTL cache for query results
// and a performance monitor tracking the last 1000 requests.
//
// Example:
//
//	handler := api.NewHandler(engine, cfg, wsHub)
//	router := api.NewRouter(handler, &cfg.API)
//	http.ListenAndServe(":8080", router.SetupChi())
func NewHandler(queries QueryEngine, cfg *config.Config, wsHub *ws.Hub) *Handler {
	return &Handler{
		queries:   queries,
		config:    cfg,
		wsHub:     wsHub,
		startTime: time.Now(),
		cache:     cache.New(queryCacheTTL),
		perfMon:   middleware.NewPerformanceMonitor(1000),
	}
}

// SetStoreCheck installs the event store connectivity probe used by the
// health endpoints. Called during startup once the store is open.
func (h *Handler) SetStoreCheck(check ConnCheck) {
	h.storeCheck = check
}

// SetQueueCheck installs the message queue connectivity probe used by
// the health endpoints. Called during startup once NATS is connected.
func (h *Handler) SetQueueCheck(check ConnCheck) {
	h.queueCheck = check
}

// PerformanceMonitor exposes the request monitor so the router can
// mount it as middleware around the API routes.
func (h *Handler) PerformanceMonitor() *middleware.PerformanceMonitor {
	return h.perfMon
}

// GetPerformanceStats returns per-endpoint latency statistics.
func (h *Handler) GetPerformanceStats() []middleware.EndpointStats {
	if h.perfMon != nil {
		return h.perfMon.GetStats()
	}
	return nil
}

// getUpgrader returns the WebSocket upgrader with origin checking.
func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin validates the Origin header against the
// configured CORS origins. Browsers always send Origin on WebSocket
// handshakes, so an absent header means a non-browser client trying to
// skip the check.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		logging.Warn().Msg("WebSocket connection rejected: missing Origin header")
		return false
	}

	if h.config == nil {
		return true
	}

	for _, allowed := range h.config.API.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	logging.Warn().
		Str("origin", sanitizeLogValue(origin)).
		Msg("WebSocket connection rejected: origin not allowed")
	return false
}

// WebSocket handles GET /api/v1/events/live, upgrading the connection
// and registering the client with the hub. Each processed event is then
// pushed to the client as it clears the pipeline.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.wsHub == nil {
		respondError(w, http.StatusServiceUnavailable, models.ErrCodeUnavailable, "WebSocket service unavailable", nil)
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		logging.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := ws.NewClient(h.wsHub, conn)
	h.wsHub.Register <- client
	client.Start()
}
