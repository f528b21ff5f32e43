// Chronographus - GitHub Events Analytics and Timeline Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

// Package query implements the windowed analytical queries over the
// event store: trailing-window counts per category, per-repository
// pull request inter-arrival averages, and the bucketed activity
// timeline.
//
// The engine degrades instead of failing where the data allows it: a
// category whose range count errors reports zero, a timeline cell that
// times out reports zero, and a repository with too little history
// gets an "insufficient data" result rather than an error.
package query

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/tomtom215/chronographus/internal/config"
	"github.com/tomtom215/chronographus/internal/logging"
	"github.com/tomtom215/chronographus/internal/metrics"
	"github.com/tomtom215/chronographus/internal/models"
)

// Default resource bounds, used when the configuration leaves them unset.
const (
	defaultTimelineWorkers = 10
	defaultCellTimeout     = 5 * time.Second
	defaultRequestTimeout  = 10 * time.Second
	defaultMinRepoOpened   = 2
)

// EventReader is the store surface the engine queries. Satisfied by
// *store.EventStore.
type EventReader interface {
	CountInRange(ctx context.Context, eventType string, from, to time.Time) (int, error)
	QueryByType(ctx context.Context, eventType, pageToken string, limit int) ([]models.ProcessedEvent, string, error)
}

// CounterReader is the counter surface the engine queries. Satisfied by
// *store.CounterStore.
type CounterReader interface {
	ReposWithOpenedAbove(ctx context.Context, min uint64) ([]models.RepoPRCount, error)
}

// Engine answers the analytical queries. Stateless between calls; safe
// for concurrent use.
type Engine struct {
	events   EventReader
	counters CounterReader

	workers        int
	cellTimeout    time.Duration
	requestTimeout time.Duration
	minRepoOpened  uint64
}

// New creates a query engine. The event and counter readers are
// required; cfg may be nil for defaults.
func New(events EventReader, counters CounterReader, cfg *config.QueryConfig) (*Engine, error) {
	if events == nil {
		return nil, errors.New("event reader required")
	}
	if counters == nil {
		return nil, errors.New("counter reader required")
	}

	e := &Engine{
		events:         events,
		counters:       counters,
		workers:        defaultTimelineWorkers,
		cellTimeout:    defaultCellTimeout,
		requestTimeout: defaultRequestTimeout,
		minRepoOpened:  defaultMinRepoOpened,
	}
	if cfg != nil {
		if cfg.TimelineWorkers > 0 {
			e.workers = cfg.TimelineWorkers
		}
		if cfg.CellTimeout > 0 {
			e.cellTimeout = cfg.CellTimeout
		}
		if cfg.RequestTimeout > 0 {
			e.requestTimeout = cfg.RequestTimeout
		}
		if cfg.MinRepoOpenedCount > 0 {
			e.minRepoOpened = cfg.MinRepoOpenedCount
		}
	}
	return e, nil
}

// CountsInWindow counts events per tracked category over the trailing
// offsetMinutes window ending now. A category whose range query fails
// contributes zero; the time range and the other categories still come
// back, so a partial store problem degrades the answer instead of
// erasing it. Context cancellation is the only hard failure.
func (e *Engine) CountsInWindow(ctx context.Context, offsetMinutes int) (*models.EventCountsResult, error) {
	started := time.Now()

	end := time.Now().UTC()
	start := end.Add(-time.Duration(offsetMinutes) * time.Minute)

	degraded := false
	counts := make(map[string]int, len(models.InterestedEventTypes()))
	total := 0
	for _, eventType := range models.InterestedEventTypes() {
		n, err := e.events.CountInRange(ctx, eventType, start, end)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logging.Warn().
				Err(err).
				Str("event_type", eventType).
				Msg("Count query failed, reporting zero for category")
			degraded = true
			n = 0
		}
		counts[eventType] = n
		total += n
	}

	metrics.RecordQuery("events_count", time.Since(started), degraded)
	return &models.EventCountsResult{
		TimeRange: models.CountWindow{
			StartTime:     start,
			EndTime:       end,
			OffsetMinutes: offsetMinutes,
		},
		EventCounts: counts,
		TotalEvents: total,
		Degraded:    degraded,
	}, nil
}

// PRInterval computes the average seconds between consecutive pull
// request events for one repository.
//
// The average is taken over "opened" events when at least two exist.
// With fewer than two opened but at least two pull request events of
// any action, it falls back to the full series and says so in the
// result message. PRCount always reports the opened-only count, even
// under fallback; TotalPREvents counts every pull request event for
// the repository. Fewer than two events of any kind is a normal
// "insufficient data" result, not an error.
func (e *Engine) PRInterval(ctx context.Context, repoName string) (*models.PRAverageResult, error) {
	started := time.Now()

	// The index is type-wide, so repository filtering happens here.
	var all, opened []models.ProcessedEvent
	token := ""
	for {
		page, next, err := e.events.QueryByType(ctx, models.EventTypePullRequest, token, 0)
		if err != nil {
			metrics.RecordQuery("pr_interval", time.Since(started), false)
			return nil, fmt.Errorf("load pull request events: %w", err)
		}
		for i := range page {
			if page[i].RepoName != repoName {
				continue
			}
			all = append(all, page[i])
			if page[i].PRAction == models.PRActionOpened {
				opened = append(opened, page[i])
			}
		}
		if next == "" {
			break
		}
		token = next
	}

	result := &models.PRAverageResult{
		Repository:    repoName,
		PRCount:       len(opened),
		TotalPREvents: len(all),
	}

	series := opened
	fallback := false
	if len(opened) < 2 {
		if len(all) < 2 {
			result.Message = models.InsufficientPRDataMessage
			metrics.RecordQuery("pr_interval", time.Since(started), false)
			return result, nil
		}
		series = all
		fallback = true
		result.Message = models.FallbackPRAverageMessage
	}

	avg, first, last, err := averageInterArrival(series)
	if err != nil {
		metrics.RecordQuery("pr_interval", time.Since(started), false)
		return nil, err
	}

	rounded := math.Round(avg*100) / 100
	result.AverageTimeBetweenPR = &rounded
	result.FirstPRDate = first
	result.LastPRDate = last

	metrics.RecordQuery("pr_interval", time.Since(started), fallback)
	return result, nil
}

// Repositories lists repositories whose opened-PR count strictly
// exceeds the configured minimum, for callers that did not name a
// repository. Returns nil when no repository qualifies; the API layer
// renders that as null data.
func (e *Engine) Repositories(ctx context.Context) (*models.RepositoriesResult, error) {
	started := time.Now()

	repos, err := e.counters.ReposWithOpenedAbove(ctx, e.minRepoOpened)
	if err != nil {
		metrics.RecordQuery("repositories", time.Since(started), false)
		return nil, fmt.Errorf("scan repository counters: %w", err)
	}
	metrics.RecordQuery("repositories", time.Since(started), false)

	if len(repos) == 0 {
		return nil, nil
	}

	names := make([]string, 0, len(repos))
	for _, repo := range repos {
		names = append(names, repo.RepoName)
	}
	return &models.RepositoriesResult{Repositories: names}, nil
}

// averageInterArrival returns the mean gap in seconds between
// consecutive events of the series, sorted by creation instant, plus
// the first and last instants in feed timestamp format. The series
// must hold at least two events.
func averageInterArrival(events []models.ProcessedEvent) (float64, string, string, error) {
	times := make([]time.Time, 0, len(events))
	for i := range events {
		t, err := events[i].CreatedAtTime()
		if err != nil {
			return 0, "", "", fmt.Errorf("parse created_at %q: %w", events[i].CreatedAt, err)
		}
		times = append(times, t)
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })

	var totalGap float64
	for i := 1; i < len(times); i++ {
		totalGap += times[i].Sub(times[i-1]).Seconds()
	}
	avg := totalGap / float64(len(times)-1)

	return avg, models.FormatEventTime(times[0]), models.FormatEventTime(times[len(times)-1]), nil
}
