// Chronographus - GitHub Events Analytics and Timeline Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package models

import (
	"time"
)

// GitHub event types tracked by the pipeline. Everything else on the public
// feed is discarded by the poller before dispatch.
const (
	EventTypeWatch       = "WatchEvent"
	EventTypePullRequest = "PullRequestEvent"
	EventTypeIssues      = "IssuesEvent"
)

// PRActionOpened is the pull request action that drives the per-repository
// opened-PR counter.
const PRActionOpened = "opened"

// InterestedEventTypes returns the tracked event types in stable order.
// The order is used for deterministic per-category query fan-out and for
// chart series ordering.
func InterestedEventTypes() []string {
	return []string{EventTypeWatch, EventTypePullRequest, EventTypeIssues}
}

// IsInterestedEventType reports whether t is one of the tracked event types.
func IsInterestedEventType(t string) bool {
	switch t {
	case EventTypeWatch, EventTypePullRequest, EventTypeIssues:
		return true
	default:
		return false
	}
}

// Actor identifies the GitHub user that triggered an event.
type Actor struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
}

// Repo identifies the repository an event belongs to.
// Name is the full "owner/name" form as delivered by the feed.
type Repo struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Org identifies the organization on events that carry one.
type Org struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
}

// RawEvent is the feed-native event shape from the GitHub public events API.
// It is transient: the poller filters it, the dispatcher wraps it in an
// EventEnvelope, and the processor reduces it to a ProcessedEvent. It is
// never persisted verbatim.
//
// CreatedAt stays a string on purpose: GitHub delivers ISO-8601 with a 'Z'
// suffix, which sorts lexicographically in timestamp order and is used
// unparsed as the range-index sort key.
type RawEvent struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Actor     Actor          `json:"actor"`
	Repo      Repo           `json:"repo"`
	Payload   map[string]any `json:"payload"`
	Public    bool           `json:"public"`
	CreatedAt string         `json:"created_at"`
	Org       *Org           `json:"org,omitempty"`
}

// PayloadAction extracts the "action" field from the event payload.
// Returns empty string when absent or not a string.
func (e *RawEvent) PayloadAction() string {
	if e.Payload == nil {
		return ""
	}
	if action, ok := e.Payload["action"].(string); ok {
		return action
	}
	return ""
}

// EventEnvelope is the message body published to the queue for each new
// event: the raw event plus dispatch provenance.
type EventEnvelope struct {
	RawEvent
	Source     string    `json:"source"`
	ReceivedAt time.Time `json:"received_at"`
}

// EnvelopeSource marks events dispatched from the GitHub events poller.
const EnvelopeSource = "github_events_api"

// Message attribute keys attached to every dispatched event so consumers
// can route and filter without deserializing the body.
const (
	AttrEventType  = "eventType"
	AttrRepoName   = "repoName"
	AttrActorLogin = "actorLogin"
)

// ProcessedEvent is the normalized, persisted record: the system of record
// for all analytical queries. Immutable once written; (ID, CreatedAt) is the
// idempotency key and the conditional insert gates on ID.
//
// Exactly one of PRAction / Action is set, depending on Type:
//   - PullRequestEvent: PRAction carries the payload action ("opened", ...)
//   - IssuesEvent, WatchEvent: Action carries the payload action
type ProcessedEvent struct {
	ID          string    `json:"id"`
	CreatedAt   string    `json:"created_at"`
	Type        string    `json:"event_type"`
	RepoName    string    `json:"repo_name"`
	RepoID      int64     `json:"repo_id,omitempty"`
	ActorLogin  string    `json:"actor_login"`
	ProcessedAt time.Time `json:"processed_at"`
	PRAction    string    `json:"pr_action,omitempty"`
	Action      string    `json:"action,omitempty"`
}

// CreatedAtTime parses the event's creation timestamp.
// Accepts RFC3339 with or without sub-second precision.
func (e *ProcessedEvent) CreatedAtTime() (time.Time, error) {
	return ParseEventTime(e.CreatedAt)
}

// ParseEventTime parses a feed timestamp (ISO-8601, 'Z' suffix).
func ParseEventTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}

// FormatEventTime renders a timestamp in the feed's created_at format
// (second precision, 'Z' suffix). Used for range-query cutoffs so string
// comparison against stored sort keys stays consistent.
func FormatEventTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}
