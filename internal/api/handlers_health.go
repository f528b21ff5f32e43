// Chronographus - GitHub Events Analytics and Timeline Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/chronographus/internal/models"
)

// serviceVersion is reported by the health endpoint.
const serviceVersion = "1.0.0"

// Health handles GET /health requests.
//
// Always answers 200; the payload reports dependency connectivity so a
// monitor can distinguish a healthy process from a degraded one. A
// probe that was never installed counts as not connected.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
		return
	}

	storeConnected := h.storeCheck != nil && h.storeCheck()
	queueConnected := h.queueCheck != nil && h.queueCheck()

	status := "healthy"
	if !storeConnected || !queueConnected {
		status = "degraded"
	}

	health := models.HealthStatus{
		Status:         status,
		Version:        serviceVersion,
		StoreConnected: storeConnected,
		QueueConnected: queueConnected,
		Uptime:         time.Since(h.startTime).Seconds(),
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: models.ResponseStatusOK,
		Data:   health,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// HealthReady handles GET /ready requests (Kubernetes-style readiness).
//
// Returns 200 only when both the event store and the message queue are
// reachable; 503 otherwise, so traffic is held back until the pipeline
// can actually serve.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
		return
	}

	storeConnected := h.storeCheck != nil && h.storeCheck()
	queueConnected := h.queueCheck != nil && h.queueCheck()
	ready := storeConnected && queueConnected

	statusCode := http.StatusOK
	status := "ready"
	if !ready {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}

	respondJSON(w, statusCode, &models.APIResponse{
		Status: status,
		Data: map[string]interface{}{
			"store_connected": storeConnected,
			"queue_connected": queueConnected,
			"ready_to_serve":  ready,
			"uptime":          time.Since(h.startTime).Seconds(),
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}
