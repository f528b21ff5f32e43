// Chronographus - GitHub Events Analytics and Timeline Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/chronographus/internal/models"
)

func timelineFixture(hours, intervalMinutes int) *models.TimelineResult {
	end := time.Now().UTC()
	return &models.TimelineResult{
		VisualizationType: "timeline",
		Title:             "GitHub Events Timeline",
		TimeRange: models.TimelineWindow{
			StartTime:       end.Add(-time.Duration(hours) * time.Hour),
			EndTime:         end,
			Hours:           hours,
			IntervalMinutes: intervalMinutes,
		},
		DataPoints:  2,
		TotalEvents: 7,
		Timeline: []models.TimelinePoint{
			{Timestamp: end.Add(-2 * time.Hour), Counts: map[string]int{models.EventTypeWatch: 3}},
			{Timestamp: end.Add(-time.Hour), Counts: map[string]int{models.EventTypePullRequest: 4}},
		},
		ChartConfig: models.DefaultChartConfig(),
	}
}

func TestTimeline(t *testing.T) {
	t.Run("default parameters", func(t *testing.T) {
		var gotHours, gotInterval int
		fake := &fakeQueryEngine{
			timelineFn: func(_ context.Context, hours, intervalMinutes int) (*models.TimelineResult, error) {
				gotHours, gotInterval = hours, intervalMinutes
				return timelineFixture(hours, intervalMinutes), nil
			},
		}
		h := newTestHandler(fake)

		rec := httptest.NewRecorder()
		h.Timeline(rec, httptest.NewRequest(http.MethodGet, "/api/v1/visualization/timeline", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d (body: %s)", rec.Code, http.StatusOK, rec.Body.String())
		}
		if gotHours != 24 || gotInterval != 60 {
			t.Errorf("engine got hours=%d interval=%d, want defaults 24 and 60", gotHours, gotInterval)
		}

		envelope := decodeEnvelope(t, rec)
		var result models.TimelineResult
		if err := json.Unmarshal(envelope.Data, &result); err != nil {
			t.Fatalf("Unmarshal data: %v", err)
		}
		if result.VisualizationType != "timeline" {
			t.Errorf("VisualizationType = %q, want %q", result.VisualizationType, "timeline")
		}
		if result.DataPoints != 2 {
			t.Errorf("DataPoints = %d, want 2", result.DataPoints)
		}
		if len(result.ChartConfig.Series) != 3 {
			t.Errorf("chart series = %d, want 3", len(result.ChartConfig.Series))
		}
	})

	t.Run("explicit parameters", func(t *testing.T) {
		var gotHours, gotInterval int
		fake := &fakeQueryEngine{
			timelineFn: func(_ context.Context, hours, intervalMinutes int) (*models.TimelineResult, error) {
				gotHours, gotInterval = hours, intervalMinutes
				return timelineFixture(hours, intervalMinutes), nil
			},
		}
		h := newTestHandler(fake)

		rec := httptest.NewRecorder()
		h.Timeline(rec, httptest.NewRequest(http.MethodGet, "/api/v1/visualization/timeline?hours=48&interval=120", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
		if gotHours != 48 || gotInterval != 120 {
			t.Errorf("engine got hours=%d interval=%d, want 48 and 120", gotHours, gotInterval)
		}
	})

	t.Run("malformed hours", func(t *testing.T) {
		fake := &fakeQueryEngine{}
		h := newTestHandler(fake)

		rec := httptest.NewRecorder()
		h.Timeline(rec, httptest.NewRequest(http.MethodGet, "/api/v1/visualization/timeline?hours=abc", nil))

		wantError(t, rec, http.StatusBadRequest, models.ErrCodeValidation, "Hours must be a valid integer")
		if fake.timelineCalls != 0 {
			t.Errorf("engine calls = %d, want 0 for malformed input", fake.timelineCalls)
		}
	})

	t.Run("malformed interval", func(t *testing.T) {
		h := newTestHandler(&fakeQueryEngine{})

		rec := httptest.NewRecorder()
		h.Timeline(rec, httptest.NewRequest(http.MethodGet, "/api/v1/visualization/timeline?interval=1.5", nil))

		wantError(t, rec, http.StatusBadRequest, models.ErrCodeValidation, "Interval must be a valid integer")
	})

	t.Run("hours out of range", func(t *testing.T) {
		for _, hours := range []string{"0", "169", "-1"} {
			h := newTestHandler(&fakeQueryEngine{})

			rec := httptest.NewRecorder()
			h.Timeline(rec, httptest.NewRequest(http.MethodGet, "/api/v1/visualization/timeline?hours="+hours, nil))

			wantError(t, rec, http.StatusBadRequest, models.ErrCodeValidation, "Hours must be between 1 and 168 (1 week)")
		}
	})

	t.Run("interval out of range", func(t *testing.T) {
		for _, interval := range []string{"0", "1441"} {
			h := newTestHandler(&fakeQueryEngine{})

			rec := httptest.NewRecorder()
			h.Timeline(rec, httptest.NewRequest(http.MethodGet, "/api/v1/visualization/timeline?interval="+interval, nil))

			wantError(t, rec, http.StatusBadRequest, models.ErrCodeValidation, "Interval must be between 1 and 1440 minutes")
		}
	})

	t.Run("engine failure", func(t *testing.T) {
		fake := &fakeQueryEngine{
			timelineFn: func(context.Context, int, int) (*models.TimelineResult, error) {
				return nil, errors.New("worker pool exhausted")
			},
		}
		h := newTestHandler(fake)

		rec := httptest.NewRecorder()
		h.Timeline(rec, httptest.NewRequest(http.MethodGet, "/api/v1/visualization/timeline", nil))

		wantError(t, rec, http.StatusInternalServerError, models.ErrCodeInternal, "Failed to generate timeline visualization")
	})

	t.Run("degraded metadata", func(t *testing.T) {
		fake := &fakeQueryEngine{
			timelineFn: func(_ context.Context, hours, intervalMinutes int) (*models.TimelineResult, error) {
				result := timelineFixture(hours, intervalMinutes)
				result.Degraded = true
				return result, nil
			},
		}
		h := newTestHandler(fake)

		rec := httptest.NewRecorder()
		h.Timeline(rec, httptest.NewRequest(http.MethodGet, "/api/v1/visualization/timeline", nil))

		envelope := decodeEnvelope(t, rec)
		if !envelope.Metadata.Degraded {
			t.Error("metadata degraded = false, want true")
		}
	})
}

func TestTimeline_CachesResults(t *testing.T) {
	fake := &fakeQueryEngine{
		timelineFn: func(_ context.Context, hours, intervalMinutes int) (*models.TimelineResult, error) {
			return timelineFixture(hours, intervalMinutes), nil
		},
	}
	h := newTestHandler(fake)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.Timeline(rec, httptest.NewRequest(http.MethodGet, "/api/v1/visualization/timeline?hours=12&interval=30", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want %d", i, rec.Code, http.StatusOK)
		}
	}

	if fake.timelineCalls != 1 {
		t.Errorf("engine calls = %d, want 1 (second request served from cache)", fake.timelineCalls)
	}
}

func TestTimeline_DegradedResultNotCached(t *testing.T) {
	fake := &fakeQueryEngine{
		timelineFn: func(_ context.Context, hours, intervalMinutes int) (*models.TimelineResult, error) {
			result := timelineFixture(hours, intervalMinutes)
			result.Degraded = true
			return result, nil
		},
	}
	h := newTestHandler(fake)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.Timeline(rec, httptest.NewRequest(http.MethodGet, "/api/v1/visualization/timeline", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want %d", i, rec.Code, http.StatusOK)
		}
	}

	if fake.timelineCalls != 2 {
		t.Errorf("engine calls = %d, want 2 (degraded results bypass the cache)", fake.timelineCalls)
	}
}
