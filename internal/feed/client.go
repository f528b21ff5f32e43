// Chronographus - GitHub Events Analytics and Timeline Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

// Package feed implements the conditional HTTP client for the GitHub
// public events endpoint.
//
// The client speaks the ETag protocol: each Fetch carries the ETag from
// the previous page in If-None-Match, and a 304 response surfaces as
// ErrNotModified so callers can skip the cycle without burning rate
// limit quota. Primary rate limit exhaustion (403 with
// x-ratelimit-remaining: 0) surfaces as *RateLimitError carrying the
// reset time from the x-ratelimit-reset header.
package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/chronographus/internal/config"
	"github.com/tomtom215/chronographus/internal/models"
)

// maxErrorBodySize limits how much of an error response body is read
// for diagnostics. Prevents unbounded allocation on large error pages.
const maxErrorBodySize = 64 * 1024 // 64KB

// ErrNotModified is returned by Fetch when the feed answers 304,
// meaning no events have been added since the ETag was issued.
var ErrNotModified = errors.New("feed not modified")

// RateLimitError is returned by Fetch when the feed rejects the request
// with 403 and a zero x-ratelimit-remaining header. ResetAt is when the
// quota replenishes, taken from x-ratelimit-reset (Unix seconds).
type RateLimitError struct {
	ResetAt time.Time
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exhausted, resets at %s", e.ResetAt.UTC().Format(time.RFC3339))
}

// Page is one successful feed response: the decoded events in the order
// the feed returned them (newest first), the ETag to present on the
// next poll, and the poll interval the feed recommended.
type Page struct {
	// Events holds the raw events, newest first.
	Events []models.RawEvent

	// ETag identifies this page content for conditional requests.
	ETag string

	// PollInterval is the recommended seconds between polls, from the
	// x-poll-interval header. Defaults to 60 when the header is absent.
	PollInterval int
}

// Client fetches pages from the public events endpoint.
//
// Thread Safety: Safe for concurrent use. Each request creates its own
// HTTP request; the underlying http.Client is safe for concurrent use.
type Client struct {
	feedURL   string
	token     string
	userAgent string
	perPage   int
	maxBody   int64
	client    *http.Client
}

// NewClient creates a feed client from the poller configuration.
func NewClient(cfg *config.PollerConfig) *Client {
	return &Client{
		feedURL:   cfg.FeedURL,
		token:     cfg.Token,
		userAgent: cfg.UserAgent,
		perPage:   cfg.PerPage,
		maxBody:   cfg.MaxResponseBytes,
		client: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
	}
}

// Fetch performs one conditional poll of the events endpoint.
//
// The etag parameter is the ETag from the previous page, or empty for
// the first poll. Returns ErrNotModified on a 304 response and
// *RateLimitError when the primary rate limit is exhausted. Any other
// non-200 status is an opaque error with a body excerpt.
func (c *Client) Fetch(ctx context.Context, etag string) (*Page, error) {
	reqURL := c.feedURL
	if c.perPage > 0 {
		params := url.Values{}
		params.Set("per_page", strconv.Itoa(c.perPage))
		reqURL = fmt.Sprintf("%s?%s", c.feedURL, params.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotModified:
		return nil, ErrNotModified

	case resp.StatusCode == http.StatusForbidden && resp.Header.Get("x-ratelimit-remaining") == "0":
		return nil, &RateLimitError{ResetAt: parseResetTime(resp.Header.Get("x-ratelimit-reset"))}

	case resp.StatusCode != http.StatusOK:
		body := readBodyForError(resp.Body)
		return nil, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
	}

	var events []models.RawEvent
	limitedReader := io.LimitReader(resp.Body, c.maxBody)
	if err := json.NewDecoder(limitedReader).Decode(&events); err != nil {
		return nil, fmt.Errorf("failed to decode events: %w", err)
	}

	return &Page{
		Events:       events,
		ETag:         resp.Header.Get("ETag"),
		PollInterval: parsePollInterval(resp.Header.Get("x-poll-interval")),
	}, nil
}

// parsePollInterval reads the x-poll-interval header value. Missing or
// malformed values fall back to the feed's documented 60s default.
func parsePollInterval(value string) int {
	if value == "" {
		return models.DefaultPollIntervalSeconds
	}
	interval, err := strconv.Atoi(value)
	if err != nil || interval <= 0 {
		return models.DefaultPollIntervalSeconds
	}
	return interval
}

// parseResetTime converts an x-ratelimit-reset Unix timestamp header
// into a time.Time. Malformed values map to the Unix epoch, which
// callers treat as "retry on the normal schedule".
func parseResetTime(value string) time.Time {
	seconds, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		seconds = 0
	}
	return time.Unix(seconds, 0).UTC()
}

// readBodyForError reads the response body for error reporting (max 64KB).
// Returns the body content or a placeholder message if reading fails.
func readBodyForError(r io.Reader) []byte {
	limitedReader := io.LimitReader(r, maxErrorBodySize)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("... (truncated)")...)
	}
	return body
}
