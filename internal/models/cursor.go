// Chronographus - GitHub Events Analytics and Timeline Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package models

import "time"

// SeenEventCapacity bounds the seen-event-ID list carried in the poll
// cursor. One feed page holds at most 100 events, so remembering the 100
// most recent IDs is sufficient to find the dedup boundary on the next poll.
const SeenEventCapacity = 100

// DefaultPollIntervalSeconds is used until the feed suggests an interval
// via its x-poll-interval header.
const DefaultPollIntervalSeconds = 60

// PollCursor is the singleton polling state. It is read at poll start and
// replaced wholesale only after a poll that published events; on a
// not-modified poll only LastPolledAt moves.
//
// SeenEventIDs is ordered most recent first and capped at
// SeenEventCapacity; oldest IDs are dropped first. It always records IDs
// from the full fetched page, not just the interest-filtered subset, so a
// future page that partially overlaps the previous one still hits a known
// boundary.
type PollCursor struct {
	ETag                string    `json:"etag,omitempty"`
	SeenEventIDs        []string  `json:"last_seen_ids"`
	PollIntervalSeconds int       `json:"poll_interval"`
	LastPolledAt        time.Time `json:"last_poll"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// DefaultPollCursor returns the initial cursor used before any poll has
// succeeded.
func DefaultPollCursor() PollCursor {
	return PollCursor{
		SeenEventIDs:        nil,
		PollIntervalSeconds: DefaultPollIntervalSeconds,
	}
}

// Interval returns the poll interval as a duration, falling back to the
// default when the stored value is unusable.
func (c *PollCursor) Interval() time.Duration {
	if c.PollIntervalSeconds <= 0 {
		return DefaultPollIntervalSeconds * time.Second
	}
	return time.Duration(c.PollIntervalSeconds) * time.Second
}
