// Chronographus - GitHub Events Analytics and Timeline Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package api

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/chronographus/internal/config"
	"github.com/tomtom215/chronographus/internal/models"
)

// fakeQueryEngine satisfies QueryEngine with injectable behavior per
// method. Nil functions answer with benign empty results.
type fakeQueryEngine struct {
	countsFn   func(ctx context.Context, offsetMinutes int) (*models.EventCountsResult, error)
	intervalFn func(ctx context.Context, repoName string) (*models.PRAverageResult, error)
	reposFn    func(ctx context.Context) (*models.RepositoriesResult, error)
	timelineFn func(ctx context.Context, hours, intervalMinutes int) (*models.TimelineResult, error)

	countsCalls   int
	intervalCalls int
	timelineCalls int
}

func (f *fakeQueryEngine) CountsInWindow(ctx context.Context, offsetMinutes int) (*models.EventCountsResult, error) {
	f.countsCalls++
	if f.countsFn != nil {
		return f.countsFn(ctx, offsetMinutes)
	}
	return &models.EventCountsResult{
		TimeRange:   models.CountWindow{OffsetMinutes: offsetMinutes},
		EventCounts: map[string]int{},
	}, nil
}

func (f *fakeQueryEngine) PRInterval(ctx context.Context, repoName string) (*models.PRAverageResult, error) {
	f.intervalCalls++
	if f.intervalFn != nil {
		return f.intervalFn(ctx, repoName)
	}
	return &models.PRAverageResult{Repository: repoName}, nil
}

func (f *fakeQueryEngine) Repositories(ctx context.Context) (*models.RepositoriesResult, error) {
	if f.reposFn != nil {
		return f.reposFn(ctx)
	}
	return nil, nil
}

func (f *fakeQueryEngine) Timeline(ctx context.Context, hours, intervalMinutes int) (*models.TimelineResult, error) {
	f.timelineCalls++
	if f.timelineFn != nil {
		return f.timelineFn(ctx, hours, intervalMinutes)
	}
	return &models.TimelineResult{
		TimeRange: models.TimelineWindow{Hours: hours, IntervalMinutes: intervalMinutes},
	}, nil
}

// newTestConfig returns a config with open CORS and rate limiting off,
// so middleware never interferes with handler assertions.
func newTestConfig() *config.Config {
	return &config.Config{
		API: config.APIConfig{
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: true,
			CORSOrigins:       []string{"*"},
		},
	}
}

func newTestHandler(queries QueryEngine) *Handler {
	return NewHandler(queries, newTestConfig(), nil)
}

// testEnvelope mirrors models.APIResponse with raw data for per-test
// decoding.
type testEnvelope struct {
	Status   string          `json:"status"`
	Data     json.RawMessage `json:"data"`
	Metadata struct {
		Timestamp   time.Time `json:"timestamp"`
		QueryTimeMS int64     `json:"query_time_ms"`
		Degraded    bool      `json:"degraded"`
	} `json:"metadata"`
	Error *struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Details map[string]interface{} `json:"details"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) testEnvelope {
	t.Helper()

	var envelope testEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("Unmarshal response body: %v\nbody: %s", err, rec.Body.String())
	}
	return envelope
}

// wantError asserts an error envelope with the given status, code and
// message.
func wantError(t *testing.T, rec *httptest.ResponseRecorder, status int, code, message string) {
	t.Helper()

	if rec.Code != status {
		t.Fatalf("status = %d, want %d (body: %s)", rec.Code, status, rec.Body.String())
	}
	envelope := decodeEnvelope(t, rec)
	if envelope.Status != models.ResponseStatusError {
		t.Errorf("envelope status = %q, want %q", envelope.Status, models.ResponseStatusError)
	}
	if envelope.Error == nil {
		t.Fatal("envelope error is nil")
	}
	if envelope.Error.Code != code {
		t.Errorf("error code = %q, want %q", envelope.Error.Code, code)
	}
	if envelope.Error.Message != message {
		t.Errorf("error message = %q, want %q", envelope.Error.Message, message)
	}
}
