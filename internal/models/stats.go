// Chronographus - GitHub Events Analytics and Timeline Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package models

import "time"

// RepoPRCount is a per-repository opened-PR counter row.
// OpenedPRCount counts distinct first-time-inserted PullRequestEvent rows
// with action "opened"; duplicate deliveries never increment it.
type RepoPRCount struct {
	RepoName      string `json:"repo_name"`
	OpenedPRCount uint64 `json:"opened_pr_count"`
}

// CountWindow describes the trailing window of an event-count query.
type CountWindow struct {
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	OffsetMinutes int       `json:"offset_minutes"`
}

// EventCountsResult is the payload of the windowed event-count query:
// per-type counts over the trailing window plus their sum. A type whose
// underlying range query failed contributes a zero count.
//
// Degraded is true when at least one per-type count was zeroed by a store
// failure. It is surfaced through response metadata, not the payload.
type EventCountsResult struct {
	TimeRange   CountWindow    `json:"time_range"`
	EventCounts map[string]int `json:"event_counts"`
	TotalEvents int            `json:"total_events"`
	Degraded    bool           `json:"-"`
}

// InsufficientPRDataMessage is returned when fewer than 2 qualifying pull
// request events exist for a repository. Insufficient data is a result,
// never an error.
const InsufficientPRDataMessage = "Insufficient data - need at least 2 opened PR events"

// FallbackPRAverageMessage flags responses whose average was computed over
// all pull request events because fewer than 2 "opened" events existed.
// PRCount still reports the opened-only count in that case.
const FallbackPRAverageMessage = "Average computed from all pull request events - fewer than 2 opened PR events"

// PRAverageResult is the payload of the inter-arrival query for one
// repository.
//
// PRCount is always the opened-only event count, even when the average was
// computed over all pull request events (see FallbackPRAverageMessage);
// TotalPREvents counts every pull request event for the repository.
// AverageTimeBetweenPR is seconds, rounded to two decimals, and nil when
// there is insufficient data. First/LastPRDate bound the series the average
// was computed from.
type PRAverageResult struct {
	Repository           string   `json:"repository"`
	PRCount              int      `json:"pr_count"`
	TotalPREvents        int      `json:"total_pr_events"`
	AverageTimeBetweenPR *float64 `json:"average_time_between_pr"`
	FirstPRDate          string   `json:"first_pr_date,omitempty"`
	LastPRDate           string   `json:"last_pr_date,omitempty"`
	Message              string   `json:"message,omitempty"`
}

// RepositoriesResult lists repositories with enough opened-PR activity to
// yield a measurable average. Returned by the inter-arrival endpoint when
// no repository is named.
type RepositoriesResult struct {
	Repositories []string `json:"repositories"`
}

// TimelineWindow describes the lookback window of a timeline query.
type TimelineWindow struct {
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	Hours           int       `json:"hours"`
	IntervalMinutes int       `json:"interval_minutes"`
}

// TimelinePoint is one timeline bucket: per-type counts for a contiguous
// interval. A (bucket, type) cell whose query failed or timed out carries a
// zero count.
type TimelinePoint struct {
	Timestamp     time.Time      `json:"timestamp"`
	IntervalStart time.Time      `json:"interval_start"`
	IntervalEnd   time.Time      `json:"interval_end"`
	Counts        map[string]int `json:"counts"`
}

// Total sums the point's per-type counts.
func (p *TimelinePoint) Total() int {
	total := 0
	for _, n := range p.Counts {
		total += n
	}
	return total
}

// TimelineResult is the payload of the bucketed timeline query, shaped for
// direct line-chart rendering. Timeline is sorted ascending by bucket start
// and never exceeds 100 points.
//
// Degraded is true when at least one cell was zeroed by a timeout or store
// failure. It is surfaced through response metadata, not the payload.
type TimelineResult struct {
	VisualizationType string          `json:"visualization_type"`
	Title             string          `json:"title"`
	TimeRange         TimelineWindow  `json:"time_range"`
	DataPoints        int             `json:"data_points"`
	TotalEvents       int             `json:"total_events"`
	Timeline          []TimelinePoint `json:"timeline"`
	ChartConfig       ChartConfig     `json:"chart_config"`
	Degraded          bool            `json:"-"`
}

// AxisConfig describes one chart axis.
type AxisConfig struct {
	Label string `json:"label"`
	Type  string `json:"type"`
}

// SeriesConfig names one chart series and its display color.
type SeriesConfig struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// ChartConfig carries rendering hints for the timeline line chart.
type ChartConfig struct {
	XAxis  AxisConfig     `json:"x_axis"`
	YAxis  AxisConfig     `json:"y_axis"`
	Series []SeriesConfig `json:"series"`
}

// DefaultChartConfig returns the timeline chart configuration with the
// fixed per-type series colors.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		XAxis: AxisConfig{Label: "Time", Type: "datetime"},
		YAxis: AxisConfig{Label: "Number of Events", Type: "integer"},
		Series: []SeriesConfig{
			{Name: EventTypeWatch, Color: "#2196F3"},
			{Name: EventTypePullRequest, Color: "#4CAF50"},
			{Name: EventTypeIssues, Color: "#FF9800"},
		},
	}
}
