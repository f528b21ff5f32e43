// Chronographus - GitHub Events Analytics and Timeline Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package query

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/chronographus/internal/logging"
	"github.com/tomtom215/chronographus/internal/metrics"
	"github.com/tomtom215/chronographus/internal/models"
)

// maxTimelinePoints caps the number of buckets per timeline response.
const maxTimelinePoints = 100

// timelineTitleFormat renders the chart title for an N-hour lookback.
const timelineTitleFormat = "GitHub Events Timeline - Last %d Hours"

// cellTask identifies one (bucket, category) count to compute.
type cellTask struct {
	bucket  int
	typeIdx int
}

// Timeline computes per-category counts over contiguous buckets
// covering the trailing hours, one bucket per intervalMinutes, capped
// at 100 buckets (the most recent ones win).
//
// Every (bucket, category) cell is an independent range count,
// dispatched to a bounded worker pool and bounded by its own timeout.
// A cell that fails or times out contributes zero without affecting
// its siblings, so the worst case degrades the chart instead of
// erroring the request. Buckets come back sorted ascending by start
// time.
func (e *Engine) Timeline(ctx context.Context, hours, intervalMinutes int) (*models.TimelineResult, error) {
	started := time.Now()

	if hours <= 0 {
		return nil, fmt.Errorf("hours must be positive, got %d", hours)
	}
	if intervalMinutes <= 0 {
		return nil, fmt.Errorf("interval must be positive, got %d", intervalMinutes)
	}

	ctx, cancel := context.WithTimeout(ctx, e.requestTimeout)
	defer cancel()

	numBuckets := min(hours*60/intervalMinutes, maxTimelinePoints)
	interval := time.Duration(intervalMinutes) * time.Minute
	endTime := time.Now().UTC()
	startTime := endTime.Add(-time.Duration(hours) * time.Hour)

	// Buckets are generated most-recent-first so a capped timeline
	// keeps the newest activity.
	points := make([]models.TimelinePoint, numBuckets)
	for i := range points {
		bucketEnd := endTime.Add(-time.Duration(i) * interval)
		points[i] = models.TimelinePoint{
			Timestamp:     bucketEnd.Add(-interval),
			IntervalStart: bucketEnd.Add(-interval),
			IntervalEnd:   bucketEnd,
			Counts:        make(map[string]int, len(models.InterestedEventTypes())),
		}
	}

	// Each cell owns one slot; no locking needed on the join side.
	types := models.InterestedEventTypes()
	counts := make([][]int, numBuckets)
	healthy := make([][]bool, numBuckets)
	for i := range counts {
		counts[i] = make([]int, len(types))
		healthy[i] = make([]bool, len(types))
	}

	jobs := make(chan cellTask)
	var wg sync.WaitGroup
	for w := 0; w < e.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range jobs {
				counts[task.bucket][task.typeIdx], healthy[task.bucket][task.typeIdx] =
					e.countCell(ctx, types[task.typeIdx], &points[task.bucket])
			}
		}()
	}

	for b := 0; b < numBuckets; b++ {
		for ti := range types {
			jobs <- cellTask{bucket: b, typeIdx: ti}
		}
	}
	close(jobs)
	wg.Wait()

	total := 0
	degraded := false
	for i := range points {
		for ti, name := range types {
			points[i].Counts[name] = counts[i][ti]
			total += counts[i][ti]
			if !healthy[i][ti] {
				degraded = true
			}
		}
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].IntervalStart.Before(points[j].IntervalStart)
	})

	metrics.RecordQuery("timeline", time.Since(started), degraded)
	return &models.TimelineResult{
		VisualizationType: "line_chart",
		Title:             fmt.Sprintf(timelineTitleFormat, hours),
		TimeRange: models.TimelineWindow{
			StartTime:       startTime,
			EndTime:         endTime,
			Hours:           hours,
			IntervalMinutes: intervalMinutes,
		},
		DataPoints:  len(points),
		TotalEvents: total,
		Timeline:    points,
		ChartConfig: models.DefaultChartConfig(),
		Degraded:    degraded,
	}, nil
}

// countCell runs one range count under the per-cell timeout. Failures
// and timeouts degrade to zero for this cell only; the second return
// reports whether the cell count is genuine.
func (e *Engine) countCell(ctx context.Context, eventType string, point *models.TimelinePoint) (int, bool) {
	cellCtx, cancel := context.WithTimeout(ctx, e.cellTimeout)
	defer cancel()

	n, err := e.events.CountInRange(cellCtx, eventType, point.IntervalStart, point.IntervalEnd)
	if err == nil {
		metrics.RecordTimelineCell(metrics.CellStatusOK)
		return n, true
	}

	if errors.Is(err, context.DeadlineExceeded) {
		metrics.RecordTimelineCell(metrics.CellStatusTimeout)
	} else {
		metrics.RecordTimelineCell(metrics.CellStatusError)
	}
	logging.Warn().
		Err(err).
		Str("event_type", eventType).
		Time("interval_start", point.IntervalStart).
		Msg("Timeline cell degraded to zero")
	return 0, false
}
