// Chronographus - GitHub Events Analytics and Timeline Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/chronographus/internal/models"
)

func TestHealth(t *testing.T) {
	t.Run("without probes", func(t *testing.T) {
		h := newTestHandler(&fakeQueryEngine{})

		rec := httptest.NewRecorder()
		h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}

		envelope := decodeEnvelope(t, rec)
		if envelope.Status != models.ResponseStatusOK {
			t.Errorf("envelope status = %q, want %q", envelope.Status, models.ResponseStatusOK)
		}

		var health models.HealthStatus
		if err := json.Unmarshal(envelope.Data, &health); err != nil {
			t.Fatalf("Unmarshal data: %v", err)
		}
		if health.Status != "degraded" {
			t.Errorf("Status = %q, want %q", health.Status, "degraded")
		}
		if health.StoreConnected || health.QueueConnected {
			t.Errorf("connectivity = store %v queue %v, want both false", health.StoreConnected, health.QueueConnected)
		}
		if health.Version == "" {
			t.Error("Version is empty")
		}
	})

	t.Run("with passing probes", func(t *testing.T) {
		h := newTestHandler(&fakeQueryEngine{})
		h.SetStoreCheck(func() bool { return true })
		h.SetQueueCheck(func() bool { return true })

		rec := httptest.NewRecorder()
		h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}

		envelope := decodeEnvelope(t, rec)
		var health models.HealthStatus
		if err := json.Unmarshal(envelope.Data, &health); err != nil {
			t.Fatalf("Unmarshal data: %v", err)
		}
		if health.Status != "healthy" {
			t.Errorf("Status = %q, want %q", health.Status, "healthy")
		}
		if !health.StoreConnected || !health.QueueConnected {
			t.Errorf("connectivity = store %v queue %v, want both true", health.StoreConnected, health.QueueConnected)
		}
		if health.Uptime < 0 {
			t.Errorf("Uptime = %f, want >= 0", health.Uptime)
		}
	})

	t.Run("store down", func(t *testing.T) {
		h := newTestHandler(&fakeQueryEngine{})
		h.SetStoreCheck(func() bool { return false })
		h.SetQueueCheck(func() bool { return true })

		rec := httptest.NewRecorder()
		h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d (health reports, never refuses)", rec.Code, http.StatusOK)
		}

		envelope := decodeEnvelope(t, rec)
		var health models.HealthStatus
		if err := json.Unmarshal(envelope.Data, &health); err != nil {
			t.Fatalf("Unmarshal data: %v", err)
		}
		if health.Status != "degraded" {
			t.Errorf("Status = %q, want %q", health.Status, "degraded")
		}
		if health.StoreConnected {
			t.Error("StoreConnected = true, want false")
		}
		if !health.QueueConnected {
			t.Error("QueueConnected = false, want true")
		}
	})
}

func TestHealthReady(t *testing.T) {
	t.Run("ready when both probes pass", func(t *testing.T) {
		h := newTestHandler(&fakeQueryEngine{})
		h.SetStoreCheck(func() bool { return true })
		h.SetQueueCheck(func() bool { return true })

		rec := httptest.NewRecorder()
		h.HealthReady(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}

		envelope := decodeEnvelope(t, rec)
		if envelope.Status != "ready" {
			t.Errorf("envelope status = %q, want %q", envelope.Status, "ready")
		}

		var data map[string]interface{}
		if err := json.Unmarshal(envelope.Data, &data); err != nil {
			t.Fatalf("Unmarshal data: %v", err)
		}
		if ready, _ := data["ready_to_serve"].(bool); !ready {
			t.Error("ready_to_serve = false, want true")
		}
	})

	t.Run("not ready without probes", func(t *testing.T) {
		h := newTestHandler(&fakeQueryEngine{})

		rec := httptest.NewRecorder()
		h.HealthReady(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
		}

		envelope := decodeEnvelope(t, rec)
		if envelope.Status != "not_ready" {
			t.Errorf("envelope status = %q, want %q", envelope.Status, "not_ready")
		}

		var data map[string]interface{}
		if err := json.Unmarshal(envelope.Data, &data); err != nil {
			t.Fatalf("Unmarshal data: %v", err)
		}
		for _, key := range []string{"store_connected", "queue_connected", "ready_to_serve", "uptime"} {
			if _, present := data[key]; !present {
				t.Errorf("readiness payload missing %q", key)
			}
		}
	})

	t.Run("not ready when one dependency is down", func(t *testing.T) {
		h := newTestHandler(&fakeQueryEngine{})
		h.SetStoreCheck(func() bool { return true })
		h.SetQueueCheck(func() bool { return false })

		rec := httptest.NewRecorder()
		h.HealthReady(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
		}
	})
}
