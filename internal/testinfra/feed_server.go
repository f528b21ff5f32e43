// Chronographus - GitHub Events Analytics and Timeline Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

//go:build integration

package testinfra

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/chronographus/internal/models"
)

// FeedCapture represents a captured feed request.
type FeedCapture struct {
	Method    string
	Path      string
	PerPage   string
	ETag      string // If-None-Match value sent by the client
	UserAgent string
}

// MockFeedServer simulates the GitHub public events endpoint for tests.
//
// It speaks the conditional request protocol: every content change bumps
// the ETag, a matching If-None-Match answers 304, and the primary rate
// limit can be switched on to exercise backoff paths. All incoming
// requests are captured for verification.
type MockFeedServer struct {
	server *httptest.Server

	mu           sync.Mutex
	captures     []FeedCapture
	events       []models.RawEvent
	etag         string
	generation   int
	pollInterval int

	failStatus int
	failCount  int

	rateLimited    bool
	rateLimitReset time.Time
}

// FeedOption configures the mock feed server.
type FeedOption func(*MockFeedServer)

// WithPollInterval sets the x-poll-interval header value in seconds.
func WithPollInterval(seconds int) FeedOption {
	return func(s *MockFeedServer) {
		s.pollInterval = seconds
	}
}

// WithInitialEvents seeds the feed content before the first poll.
func WithInitialEvents(events []models.RawEvent) FeedOption {
	return func(s *MockFeedServer) {
		s.events = events
		s.bumpETagLocked()
	}
}

// NewMockFeedServer creates and starts a mock feed server.
// The server is closed automatically when the test finishes.
func NewMockFeedServer(t *testing.T, opts ...FeedOption) *MockFeedServer {
	t.Helper()

	s := &MockFeedServer{
		captures:     make([]FeedCapture, 0),
		pollInterval: models.DefaultPollIntervalSeconds,
	}
	// The first 200 must carry a real ETag even for an empty feed, or
	// clients never enter the If-None-Match / 304 cycle.
	s.bumpETagLocked()
	for _, opt := range opts {
		opt(s)
	}

	s.server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.server.Close)

	return s
}

// URL returns the feed endpoint URL.
func (s *MockFeedServer) URL() string {
	return s.server.URL
}

func (s *MockFeedServer) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.captures = append(s.captures, FeedCapture{
		Method:    r.Method,
		Path:      r.URL.Path,
		PerPage:   r.URL.Query().Get("per_page"),
		ETag:      r.Header.Get("If-None-Match"),
		UserAgent: r.Header.Get("User-Agent"),
	})

	// Injected failures take precedence over everything else
	if s.failCount > 0 {
		s.failCount--
		w.WriteHeader(s.failStatus)
		return
	}

	if s.rateLimited {
		w.Header().Set("x-ratelimit-remaining", "0")
		w.Header().Set("x-ratelimit-reset", strconv.FormatInt(s.rateLimitReset.Unix(), 10))
		w.WriteHeader(http.StatusForbidden)
		return
	}

	w.Header().Set("ETag", s.etag)
	w.Header().Set("x-poll-interval", strconv.Itoa(s.pollInterval))

	// GitHub answers 304 when the presented ETag still matches
	if etag := r.Header.Get("If-None-Match"); etag != "" && etag == s.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	body, err := json.Marshal(s.events)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Write(body) //nolint:errcheck
}

// SetEvents replaces the feed content and bumps the ETag.
// Events should be ordered newest first, matching the real feed.
func (s *MockFeedServer) SetEvents(events []models.RawEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = events
	s.bumpETagLocked()
}

// PushEvents prepends new events to the feed (newest first) and bumps
// the ETag, simulating activity arriving between polls.
func (s *MockFeedServer) PushEvents(events ...models.RawEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(append([]models.RawEvent{}, events...), s.events...)
	s.bumpETagLocked()
}

// bumpETagLocked assigns a fresh weak ETag. Callers must hold mu.
func (s *MockFeedServer) bumpETagLocked() {
	s.generation++
	s.etag = fmt.Sprintf("W/\"feed-%d\"", s.generation)
}

// CurrentETag returns the ETag the next 200 response will carry.
func (s *MockFeedServer) CurrentETag() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.etag
}

// SetRateLimited makes the server answer 403 with exhausted rate limit
// headers until ClearRateLimited is called.
func (s *MockFeedServer) SetRateLimited(resetAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rateLimited = true
	s.rateLimitReset = resetAt
}

// ClearRateLimited restores normal responses.
func (s *MockFeedServer) ClearRateLimited() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rateLimited = false
}

// FailNext makes the server answer the given status for the next n
// requests, then recover. Useful for testing transient error handling.
func (s *MockFeedServer) FailNext(status, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failStatus = status
	s.failCount = n
}

// GetCaptures returns all captured requests.
func (s *MockFeedServer) GetCaptures() []FeedCapture {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]FeedCapture, len(s.captures))
	copy(result, s.captures)
	return result
}

// ClearCaptures clears all captured requests.
func (s *MockFeedServer) ClearCaptures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.captures = s.captures[:0]
}

// WaitForPolls waits until at least n requests are captured or the
// timeout elapses. Returns true if the count was reached.
func (s *MockFeedServer) WaitForPolls(n int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		s.mu.Lock()
		count := len(s.captures)
		s.mu.Unlock()
		if count >= n {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return false
}

// FeedEvent builds a raw event of the given type for feed fixtures.
func FeedEvent(id, eventType, repo string, createdAt time.Time) models.RawEvent {
	return models.RawEvent{
		ID:   id,
		Type: eventType,
		Actor: models.Actor{
			ID:    4242,
			Login: "octocat",
		},
		Repo: models.Repo{
			ID:   8484,
			Name: repo,
		},
		Public:    true,
		CreatedAt: models.FormatEventTime(createdAt),
	}
}

// PullRequestOpenedEvent builds a PullRequestEvent with action "opened",
// the shape that drives the per-repository counter.
func PullRequestOpenedEvent(id, repo string, createdAt time.Time) models.RawEvent {
	ev := FeedEvent(id, models.EventTypePullRequest, repo, createdAt)
	ev.Payload = map[string]any{
		"action": "opened",
		"number": float64(7),
	}
	return ev
}
