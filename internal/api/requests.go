// Chronographus - GitHub Events Analytics and Timeline Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package api

// Request parameter structs with validation tags. Handlers parse query
// parameters into these structs and run them through the validator
// before touching the store, so malformed input never reaches a query.

// EventCountRequest carries the parameters of the event count endpoint.
type EventCountRequest struct {
	// OffsetMinutes is the trailing window length in minutes.
	// Zero is allowed and yields an empty window with zero counts.
	OffsetMinutes int `validate:"min=0"`
}

// PRAverageRequest carries the parameters of the PR average endpoint
// when a repository is named. The repo_name validator enforces the
// owner/repo shape with GitHub's length limits.
type PRAverageRequest struct {
	Repo string `validate:"repo_name"`
}

// TimelineRequest carries the parameters of the timeline endpoint.
// Hours is capped at one week; IntervalMinutes at one day.
type TimelineRequest struct {
	Hours           int `validate:"min=1,max=168"`
	IntervalMinutes int `validate:"min=1,max=1440"`
}
