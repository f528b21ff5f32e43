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

	"github.com/goccy/go-json"

	"github.com/tomtom215/chronographus/internal/models"
)

func TestEventCount(t *testing.T) {
	t.Run("default offset", func(t *testing.T) {
		var gotOffset int
		fake := &fakeQueryEngine{
			countsFn: func(_ context.Context, offsetMinutes int) (*models.EventCountsResult, error) {
				gotOffset = offsetMinutes
				return &models.EventCountsResult{
					TimeRange:   models.CountWindow{OffsetMinutes: offsetMinutes},
					EventCounts: map[string]int{models.EventTypeWatch: 3},
					TotalEvents: 3,
				}, nil
			},
		}
		h := newTestHandler(fake)

		rec := httptest.NewRecorder()
		h.EventCount(rec, httptest.NewRequest(http.MethodGet, "/api/v1/metrics/events/count", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
		if gotOffset != 10 {
			t.Errorf("offset = %d, want default 10", gotOffset)
		}

		envelope := decodeEnvelope(t, rec)
		if envelope.Status != models.ResponseStatusOK {
			t.Errorf("envelope status = %q, want %q", envelope.Status, models.ResponseStatusOK)
		}

		var result models.EventCountsResult
		if err := json.Unmarshal(envelope.Data, &result); err != nil {
			t.Fatalf("Unmarshal data: %v", err)
		}
		if result.TotalEvents != 3 {
			t.Errorf("TotalEvents = %d, want 3", result.TotalEvents)
		}
	})

	t.Run("explicit offset", func(t *testing.T) {
		var gotOffset int
		fake := &fakeQueryEngine{
			countsFn: func(_ context.Context, offsetMinutes int) (*models.EventCountsResult, error) {
				gotOffset = offsetMinutes
				return &models.EventCountsResult{EventCounts: map[string]int{}}, nil
			},
		}
		h := newTestHandler(fake)

		rec := httptest.NewRecorder()
		h.EventCount(rec, httptest.NewRequest(http.MethodGet, "/api/v1/metrics/events/count?offset=30", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
		if gotOffset != 30 {
			t.Errorf("offset = %d, want 30", gotOffset)
		}
	})

	t.Run("zero offset allowed", func(t *testing.T) {
		h := newTestHandler(&fakeQueryEngine{})

		rec := httptest.NewRecorder()
		h.EventCount(rec, httptest.NewRequest(http.MethodGet, "/api/v1/metrics/events/count?offset=0", nil))

		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
		}
	})

	t.Run("malformed offset", func(t *testing.T) {
		fake := &fakeQueryEngine{}
		h := newTestHandler(fake)

		rec := httptest.NewRecorder()
		h.EventCount(rec, httptest.NewRequest(http.MethodGet, "/api/v1/metrics/events/count?offset=abc", nil))

		wantError(t, rec, http.StatusBadRequest, models.ErrCodeValidation, "Offset must be a valid integer")
		if fake.countsCalls != 0 {
			t.Errorf("engine calls = %d, want 0 for malformed input", fake.countsCalls)
		}
	})

	t.Run("fractional offset rejected", func(t *testing.T) {
		h := newTestHandler(&fakeQueryEngine{})

		rec := httptest.NewRecorder()
		h.EventCount(rec, httptest.NewRequest(http.MethodGet, "/api/v1/metrics/events/count?offset=3.5", nil))

		wantError(t, rec, http.StatusBadRequest, models.ErrCodeValidation, "Offset must be a valid integer")
	})

	t.Run("negative offset", func(t *testing.T) {
		fake := &fakeQueryEngine{}
		h := newTestHandler(fake)

		rec := httptest.NewRecorder()
		h.EventCount(rec, httptest.NewRequest(http.MethodGet, "/api/v1/metrics/events/count?offset=-5", nil))

		wantError(t, rec, http.StatusBadRequest, models.ErrCodeValidation, "Offset must be a positive number")
		if fake.countsCalls != 0 {
			t.Errorf("engine calls = %d, want 0 for negative offset", fake.countsCalls)
		}
	})

	t.Run("engine failure", func(t *testing.T) {
		fake := &fakeQueryEngine{
			countsFn: func(context.Context, int) (*models.EventCountsResult, error) {
				return nil, errors.New("store unavailable")
			},
		}
		h := newTestHandler(fake)

		rec := httptest.NewRecorder()
		h.EventCount(rec, httptest.NewRequest(http.MethodGet, "/api/v1/metrics/events/count", nil))

		wantError(t, rec, http.StatusInternalServerError, models.ErrCodeInternal, "Failed to retrieve event counts")
	})

	t.Run("degraded metadata", func(t *testing.T) {
		fake := &fakeQueryEngine{
			countsFn: func(_ context.Context, offsetMinutes int) (*models.EventCountsResult, error) {
				return &models.EventCountsResult{
					EventCounts: map[string]int{},
					Degraded:    true,
				}, nil
			},
		}
		h := newTestHandler(fake)

		rec := httptest.NewRecorder()
		h.EventCount(rec, httptest.NewRequest(http.MethodGet, "/api/v1/metrics/events/count", nil))

		envelope := decodeEnvelope(t, rec)
		if !envelope.Metadata.Degraded {
			t.Error("metadata degraded = false, want true")
		}
	})
}

func TestEventCount_CachesResults(t *testing.T) {
	fake := &fakeQueryEngine{}
	h := newTestHandler(fake)

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.EventCount(rec, httptest.NewRequest(http.MethodGet, "/api/v1/metrics/events/count?offset=15", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want %d", i, rec.Code, http.StatusOK)
		}
	}

	if fake.countsCalls != 1 {
		t.Errorf("engine calls = %d, want 1 (later requests served from cache)", fake.countsCalls)
	}
}

func TestEventCount_DegradedResultNotCached(t *testing.T) {
	fake := &fakeQueryEngine{
		countsFn: func(context.Context, int) (*models.EventCountsResult, error) {
			return &models.EventCountsResult{EventCounts: map[string]int{}, Degraded: true}, nil
		},
	}
	h := newTestHandler(fake)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.EventCount(rec, httptest.NewRequest(http.MethodGet, "/api/v1/metrics/events/count", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want %d", i, rec.Code, http.StatusOK)
		}
	}

	if fake.countsCalls != 2 {
		t.Errorf("engine calls = %d, want 2 (degraded results bypass the cache)", fake.countsCalls)
	}
}

func TestPRAverage(t *testing.T) {
	t.Run("valid repo", func(t *testing.T) {
		avg := 3600.0
		fake := &fakeQueryEngine{
			intervalFn: func(_ context.Context, repoName string) (*models.PRAverageResult, error) {
				return &models.PRAverageResult{
					Repository:           repoName,
					PRCount:              5,
					TotalPREvents:        8,
					AverageTimeBetweenPR: &avg,
					FirstPRDate:          "2026-08-20T10:00:00Z",
					LastPRDate:           "2026-08-23T10:00:00Z",
				}, nil
			},
		}
		h := newTestHandler(fake)

		rec := httptest.NewRecorder()
		h.PRAverage(rec, httptest.NewRequest(http.MethodGet, "/api/v1/metrics/pr-average?repo=octocat/hello-world", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d (body: %s)", rec.Code, http.StatusOK, rec.Body.String())
		}

		envelope := decodeEnvelope(t, rec)
		var result models.PRAverageResult
		if err := json.Unmarshal(envelope.Data, &result); err != nil {
			t.Fatalf("Unmarshal data: %v", err)
		}
		if result.Repository != "octocat/hello-world" {
			t.Errorf("Repository = %q, want %q", result.Repository, "octocat/hello-world")
		}
		if result.AverageTimeBetweenPR == nil || *result.AverageTimeBetweenPR != 3600.0 {
			t.Errorf("AverageTimeBetweenPR = %v, want 3600", result.AverageTimeBetweenPR)
		}
		if result.PRCount != 5 {
			t.Errorf("PRCount = %d, want 5", result.PRCount)
		}
	})

	t.Run("invalid repo rejected before query", func(t *testing.T) {
		fake := &fakeQueryEngine{}
		h := newTestHandler(fake)

		rec := httptest.NewRecorder()
		h.PRAverage(rec, httptest.NewRequest(http.MethodGet, "/api/v1/metrics/pr-average?repo=not-a-repo", nil))

		wantError(t, rec, http.StatusBadRequest, models.ErrCodeValidation, "Invalid repository name format. Expected owner/repo")
		if fake.intervalCalls != 0 {
			t.Errorf("engine calls = %d, want 0 for invalid repo", fake.intervalCalls)
		}
	})

	t.Run("path traversal rejected", func(t *testing.T) {
		fake := &fakeQueryEngine{}
		h := newTestHandler(fake)

		rec := httptest.NewRecorder()
		h.PRAverage(rec, httptest.NewRequest(http.MethodGet, "/api/v1/metrics/pr-average?repo=..%2F..%2Fetc", nil))

		wantError(t, rec, http.StatusBadRequest, models.ErrCodeValidation, "Invalid repository name format. Expected owner/repo")
		if fake.intervalCalls != 0 {
			t.Errorf("engine calls = %d, want 0 for traversal attempt", fake.intervalCalls)
		}
	})

	t.Run("insufficient data is success", func(t *testing.T) {
		fake := &fakeQueryEngine{
			intervalFn: func(_ context.Context, repoName string) (*models.PRAverageResult, error) {
				return &models.PRAverageResult{
					Repository:    repoName,
					PRCount:       1,
					TotalPREvents: 1,
					Message:       models.InsufficientPRDataMessage,
				}, nil
			},
		}
		h := newTestHandler(fake)

		rec := httptest.NewRecorder()
		h.PRAverage(rec, httptest.NewRequest(http.MethodGet, "/api/v1/metrics/pr-average?repo=octocat/quiet", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}

		envelope := decodeEnvelope(t, rec)
		var result models.PRAverageResult
		if err := json.Unmarshal(envelope.Data, &result); err != nil {
			t.Fatalf("Unmarshal data: %v", err)
		}
		if result.AverageTimeBetweenPR != nil {
			t.Errorf("AverageTimeBetweenPR = %v, want nil", result.AverageTimeBetweenPR)
		}
		if result.Message != models.InsufficientPRDataMessage {
			t.Errorf("Message = %q, want %q", result.Message, models.InsufficientPRDataMessage)
		}
	})

	t.Run("engine failure", func(t *testing.T) {
		fake := &fakeQueryEngine{
			intervalFn: func(context.Context, string) (*models.PRAverageResult, error) {
				return nil, errors.New("iterator failed")
			},
		}
		h := newTestHandler(fake)

		rec := httptest.NewRecorder()
		h.PRAverage(rec, httptest.NewRequest(http.MethodGet, "/api/v1/metrics/pr-average?repo=octocat/hello", nil))

		wantError(t, rec, http.StatusInternalServerError, models.ErrCodeInternal, "Failed to calculate statistics")
	})
}

func TestPRAverage_NoRepoListsRepositories(t *testing.T) {
	t.Run("repositories with enough history", func(t *testing.T) {
		fake := &fakeQueryEngine{
			reposFn: func(context.Context) (*models.RepositoriesResult, error) {
				return &models.RepositoriesResult{
					Repositories: []string{"octocat/hello", "torvalds/linux"},
				}, nil
			},
		}
		h := newTestHandler(fake)

		rec := httptest.NewRecorder()
		h.PRAverage(rec, httptest.NewRequest(http.MethodGet, "/api/v1/metrics/pr-average", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}

		envelope := decodeEnvelope(t, rec)
		var result models.RepositoriesResult
		if err := json.Unmarshal(envelope.Data, &result); err != nil {
			t.Fatalf("Unmarshal data: %v", err)
		}
		if len(result.Repositories) != 2 {
			t.Fatalf("Repositories count = %d, want 2", len(result.Repositories))
		}
		if result.Repositories[0] != "octocat/hello" {
			t.Errorf("Repositories[0] = %q, want %q", result.Repositories[0], "octocat/hello")
		}
	})

	t.Run("no repository qualifies", func(t *testing.T) {
		h := newTestHandler(&fakeQueryEngine{})

		rec := httptest.NewRecorder()
		h.PRAverage(rec, httptest.NewRequest(http.MethodGet, "/api/v1/metrics/pr-average", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}

		envelope := decodeEnvelope(t, rec)
		if string(envelope.Data) != "null" {
			t.Errorf("data = %s, want null", envelope.Data)
		}
	})

	t.Run("listing failure", func(t *testing.T) {
		fake := &fakeQueryEngine{
			reposFn: func(context.Context) (*models.RepositoriesResult, error) {
				return nil, errors.New("counter scan failed")
			},
		}
		h := newTestHandler(fake)

		rec := httptest.NewRecorder()
		h.PRAverage(rec, httptest.NewRequest(http.MethodGet, "/api/v1/metrics/pr-average", nil))

		wantError(t, rec, http.StatusInternalServerError, models.ErrCodeInternal, "Failed to retrieve repositories")
	})
}
