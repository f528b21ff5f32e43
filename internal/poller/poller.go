// Chronographus - GitHub Events Analytics and Timeline Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

// Package poller implements the supervised feed polling loop.
//
// Each cycle loads the poll cursor, fetches the feed page conditionally
// (ETag), walks the page newest-to-oldest stopping at the first
// already-seen ID, dispatches the fresh interest-set events, and
// replaces the cursor only when every dispatched event was published.
// The seen-ID window always records the full fetched page, not just the
// filtered subset, so a future page that partially overlaps this one
// still hits a known boundary.
//
// Pacing is client-side via rate.Limiter: polls never run closer
// together than the larger of the configured interval and the feed's
// x-poll-interval suggestion. Primary rate limit exhaustion pauses the
// loop until the advertised reset time.
package poller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/chronographus/internal/cache"
	"github.com/tomtom215/chronographus/internal/config"
	"github.com/tomtom215/chronographus/internal/dispatcher"
	"github.com/tomtom215/chronographus/internal/feed"
	"github.com/tomtom215/chronographus/internal/logging"
	"github.com/tomtom215/chronographus/internal/metrics"
	"github.com/tomtom215/chronographus/internal/models"
)

// FeedClient fetches one conditional page from the events feed.
// Satisfied by *feed.Client.
type FeedClient interface {
	Fetch(ctx context.Context, etag string) (*feed.Page, error)
}

// EventDispatcher forwards extracted events to the message queue.
// Satisfied by *dispatcher.Dispatcher.
type EventDispatcher interface {
	Dispatch(ctx context.Context, events []models.RawEvent) (dispatcher.Result, error)
}

// CursorStore persists the poll cursor across polls and restarts.
// Satisfied by *store.CursorStore.
type CursorStore interface {
	Get(ctx context.Context) (models.PollCursor, error)
	Put(ctx context.Context, cursor models.PollCursor) error
}

// Status is a snapshot of the poller's recent activity for monitoring.
type Status struct {
	// LastPollAt is when the most recent poll finished.
	LastPollAt time.Time `json:"last_poll_at"`

	// LastOutcome is the most recent poll outcome label:
	// updated, not_modified, rate_limited, or error.
	LastOutcome string `json:"last_outcome,omitempty"`

	// LastError is the most recent poll error message, empty after a
	// successful poll.
	LastError string `json:"last_error,omitempty"`

	// DeferredUntil is the rate limit reset time when the loop is
	// paused, zero otherwise.
	DeferredUntil time.Time `json:"deferred_until,omitempty"`
}

// Poller drives the fetch-extract-dispatch cycle against the feed.
//
// It implements suture.Service: Serve runs the loop until the context
// is canceled, and any startup error causes a supervised restart.
// One poll runs at a time.
type Poller struct {
	client     FeedClient
	dispatcher EventDispatcher
	cursors    CursorStore

	// seen is the duplicate boundary, rebuilt from the cursor each poll.
	seen *cache.RecentSet

	// limiter paces fetches; its rate follows the effective interval.
	limiter *rate.Limiter

	// interval is the configured minimum spacing between polls.
	interval time.Duration

	mu            sync.RWMutex
	status        Status
	deferredUntil time.Time
}

// New creates a poller from its collaborators. The feed client,
// dispatcher, and cursor store are required; cfg may be nil for
// defaults.
func New(client FeedClient, disp EventDispatcher, cursors CursorStore, cfg *config.PollerConfig) (*Poller, error) {
	if client == nil {
		return nil, errors.New("feed client required")
	}
	if disp == nil {
		return nil, errors.New("dispatcher required")
	}
	if cursors == nil {
		return nil, errors.New("cursor store required")
	}

	interval := time.Duration(models.DefaultPollIntervalSeconds) * time.Second
	if cfg != nil && cfg.Interval > 0 {
		interval = cfg.Interval
	}
	capacity := models.SeenEventCapacity
	if cfg != nil && cfg.SeenCapacity > 0 {
		capacity = cfg.SeenCapacity
	}

	return &Poller{
		client:     client,
		dispatcher: disp,
		cursors:    cursors,
		seen:       cache.NewRecentSet(capacity),
		limiter:    rate.NewLimiter(rate.Every(interval), 1),
		interval:   interval,
	}, nil
}

// Serve implements suture.Service. It polls until ctx is canceled.
// The first poll runs immediately; subsequent polls are paced by the
// limiter and by any rate limit deferral.
func (p *Poller) Serve(ctx context.Context) error {
	cursor, err := p.cursors.Get(ctx)
	if err != nil {
		return fmt.Errorf("load poll cursor: %w", err)
	}
	p.updatePacing(cursor.PollIntervalSeconds)

	logging.Info().
		Dur("interval", p.interval).
		Int("seen_ids", len(cursor.SeenEventIDs)).
		Bool("warm_start", !cursor.LastPolledAt.IsZero()).
		Msg("Starting feed poller")

	for {
		if err := p.limiter.Wait(ctx); err != nil {
			return err
		}

		p.pollOnce(ctx)

		if err := ctx.Err(); err != nil {
			return err
		}

		if wait := p.deferralWait(time.Now()); wait > 0 {
			logging.Info().Dur("wait", wait).Msg("Feed rate limited, pausing polls")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
	}
}

// String implements fmt.Stringer for supervisor logging.
func (p *Poller) String() string {
	return "feed-poller"
}

// Status returns a copy of the poller's current status.
func (p *Poller) Status() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()

	status := p.status
	status.DeferredUntil = p.deferredUntil
	return status
}

// pollOnce runs a single fetch-extract-dispatch cycle. Errors never
// escape: they are logged, counted, and absorbed so the loop keeps its
// cadence. The cursor is replaced only on the full-success path.
func (p *Poller) pollOnce(ctx context.Context) {
	start := time.Now()

	cursor, err := p.cursors.Get(ctx)
	if err != nil {
		p.recordOutcome(metrics.PollOutcomeError, err, start)
		logging.Error().Err(err).Msg("Failed to load poll cursor")
		return
	}

	page, err := p.client.Fetch(ctx, cursor.ETag)

	var rateLimitErr *feed.RateLimitError
	switch {
	case errors.Is(err, feed.ErrNotModified):
		// Nothing new since the last page; only the poll timestamp moves.
		cursor.LastPolledAt = time.Now().UTC()
		if putErr := p.cursors.Put(ctx, cursor); putErr != nil {
			logging.Warn().Err(putErr).Msg("Failed to persist poll timestamp")
		}
		p.recordOutcome(metrics.PollOutcomeNotModified, nil, start)
		logging.Debug().Msg("Feed not modified")
		return

	case errors.As(err, &rateLimitErr):
		p.deferUntil(rateLimitErr.ResetAt)
		p.recordOutcome(metrics.PollOutcomeRateLimited, err, start)
		logging.Warn().
			Time("reset_at", rateLimitErr.ResetAt).
			Msg("Feed rate limit exhausted, deferring polls")
		return

	case err != nil:
		p.recordOutcome(metrics.PollOutcomeError, err, start)
		logging.Error().Err(err).Msg("Feed poll failed")
		return
	}

	p.clearDeferral()
	p.updatePacing(page.PollInterval)

	fresh := p.extractNew(cursor.SeenEventIDs, page.Events)
	metrics.RecordPollEvents(len(page.Events), len(fresh))

	res, err := p.dispatcher.Dispatch(ctx, fresh)
	if err != nil {
		p.recordOutcome(metrics.PollOutcomeError, err, start)
		logging.Warn().
			Err(err).
			Int("published", res.Published).
			Msg("Dispatch interrupted, cursor not advanced")
		return
	}
	if res.Failed > 0 {
		// The next poll re-fetches the same window; broker and store
		// dedup absorb the replays of the events that did publish.
		err := fmt.Errorf("%d of %d events failed to publish", res.Failed, len(fresh))
		p.recordOutcome(metrics.PollOutcomeError, err, start)
		logging.Warn().
			Int("published", res.Published).
			Int("failed", res.Failed).
			Msg("Dispatch reported failures, cursor not advanced")
		return
	}

	cursor = models.PollCursor{
		ETag:                page.ETag,
		SeenEventIDs:        seenWindow(page.Events, p.seen.Capacity()),
		PollIntervalSeconds: page.PollInterval,
		LastPolledAt:        time.Now().UTC(),
	}
	if err := p.cursors.Put(ctx, cursor); err != nil {
		p.recordOutcome(metrics.PollOutcomeError, err, start)
		logging.Error().Err(err).Msg("Failed to persist poll cursor")
		return
	}

	p.recordOutcome(metrics.PollOutcomeUpdated, nil, start)
	logging.Info().
		Int("fetched", len(page.Events)).
		Int("new", len(fresh)).
		Int("published", res.Published).
		Str("etag", page.ETag).
		Msg("Poll completed")
}

// extractNew walks the page newest-to-oldest and returns the tracked
// events that precede the duplicate boundary. The walk stops at the
// first ID present in seenIDs: the feed is newest-first, so everything
// after that point was covered by an earlier poll.
func (p *Poller) extractNew(seenIDs []string, events []models.RawEvent) []models.RawEvent {
	p.seen.Replace(seenIDs)

	fresh := make([]models.RawEvent, 0, len(events))
	for i := range events {
		if p.seen.Contains(events[i].ID) {
			break
		}
		if !models.IsInterestedEventType(events[i].Type) {
			continue
		}
		fresh = append(fresh, events[i])
	}
	return fresh
}

// updatePacing adjusts the limiter to the effective interval: the
// larger of the configured spacing and the feed's suggestion.
func (p *Poller) updatePacing(suggestedSeconds int) {
	interval := p.interval
	if suggested := time.Duration(suggestedSeconds) * time.Second; suggested > interval {
		interval = suggested
	}
	p.limiter.SetLimit(rate.Every(interval))
}

// deferUntil pauses polling until the rate limit reset time.
func (p *Poller) deferUntil(resetAt time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deferredUntil = resetAt
}

// clearDeferral lifts the rate limit pause after a successful fetch.
func (p *Poller) clearDeferral() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deferredUntil = time.Time{}
}

// deferralWait returns how long the loop should pause before the next
// poll, zero when no deferral is active or the reset time has passed.
func (p *Poller) deferralWait(now time.Time) time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.deferredUntil.IsZero() {
		return 0
	}
	wait := p.deferredUntil.Sub(now)
	if wait < 0 {
		return 0
	}
	return wait
}

// recordOutcome updates poll metrics and the status snapshot.
func (p *Poller) recordOutcome(outcome string, err error, start time.Time) {
	metrics.RecordPoll(outcome, time.Since(start))

	p.mu.Lock()
	defer p.mu.Unlock()
	p.status.LastPollAt = time.Now().UTC()
	p.status.LastOutcome = outcome
	if err != nil {
		p.status.LastError = err.Error()
	} else {
		p.status.LastError = ""
	}
}

// seenWindow returns the IDs of the first events on the page, newest
// first, capped at the given capacity. The window covers the full
// fetched page regardless of event type so overlap detection works
// even when every new event was filtered out.
func seenWindow(events []models.RawEvent, capacity int) []string {
	n := min(len(events), capacity)
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		ids = append(ids, events[i].ID)
	}
	return ids
}
