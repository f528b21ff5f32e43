// Chronographus - GitHub Events Analytics and Timeline Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

// Package processor consumes raw feed events from the stream, persists
// them once, and maintains the per-repository opened-PR counters.
//
// The handler is the pipeline's idempotency point. The store's
// insert-if-absent gate decides who won the write; only the winning
// delivery increments counters and fans the processed event out, so
// redeliveries and overlapping feed pages cannot inflate counts.
package processor

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"

	"github.com/tomtom215/chronographus/internal/eventstream"
	"github.com/tomtom215/chronographus/internal/logging"
	"github.com/tomtom215/chronographus/internal/metrics"
	"github.com/tomtom215/chronographus/internal/models"
	"github.com/tomtom215/chronographus/internal/store"
)

// EventPublisher publishes processed events for live consumers.
// *eventstream.Publisher satisfies it.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, msg *message.Message) error
}

// Handler processes raw event messages from the stream.
//
// Error handling follows the router middleware contract:
//   - Parse and shape errors return PermanentError (retries are
//     pointless, the message routes to the poison topic)
//   - Store errors return RetryableError (the write may succeed later)
//   - Duplicates return nil (acknowledged without side effects)
type Handler struct {
	events    *store.EventStore
	counters  *store.CounterStore
	publisher EventPublisher
	logger    watermill.LoggerAdapter

	received    atomic.Int64
	inserted    atomic.Int64
	duplicates  atomic.Int64
	parseErrors atomic.Int64
}

// Stats is a snapshot of handler activity.
type Stats struct {
	Received    int64
	Inserted    int64
	Duplicates  int64
	ParseErrors int64
}

// New creates a handler over the given stores. The publisher is
// optional; when nil, processed events are not fanned out.
func New(events *store.EventStore, counters *store.CounterStore, pub EventPublisher, logger watermill.LoggerAdapter) (*Handler, error) {
	if events == nil {
		return nil, fmt.Errorf("event store required")
	}
	if counters == nil {
		return nil, fmt.Errorf("counter store required")
	}
	if logger == nil {
		logger = watermill.NewStdLogger(false, false)
	}

	return &Handler{
		events:    events,
		counters:  counters,
		publisher: pub,
		logger:    logger,
	}, nil
}

// Handle processes a single raw event message.
// This is the function registered with Router.AddConsumerHandler.
func (h *Handler) Handle(msg *message.Message) error {
	start := time.Now()
	h.received.Add(1)
	metrics.RecordNATSConsume()

	var envelope models.EventEnvelope
	if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
		h.parseErrors.Add(1)
		metrics.RecordNATSParseFailed()
		metrics.RecordEventProcessed(metrics.ProcessOutcomeParseFailed, time.Since(start))
		h.logger.Error("Failed to parse message", err, watermill.LogFields{
			"message_uuid": msg.UUID,
		})
		return eventstream.NewPermanentError("JSON parse error", err)
	}

	event, err := normalize(&envelope, time.Now().UTC())
	if err != nil {
		h.parseErrors.Add(1)
		metrics.RecordNATSParseFailed()
		metrics.RecordEventProcessed(metrics.ProcessOutcomeParseFailed, time.Since(start))
		h.logger.Error("Rejected malformed event", err, watermill.LogFields{
			"message_uuid": msg.UUID,
		})
		return eventstream.NewPermanentError("malformed event", err)
	}

	ctx := context.Background()
	if msgCtx := msg.Context(); msgCtx != nil {
		ctx = msgCtx
	}

	inserted, err := h.events.PutIfAbsent(ctx, event)
	if err != nil {
		metrics.RecordEventProcessed(metrics.ProcessOutcomeError, time.Since(start))
		h.logger.Error("Failed to store event", err, watermill.LogFields{
			"event_id": event.ID,
		})
		return eventstream.NewRetryableError("store insert failed", err)
	}

	if !inserted {
		h.duplicates.Add(1)
		metrics.RecordEventProcessed(metrics.ProcessOutcomeDuplicate, time.Since(start))
		logging.Debug().
			Str("event_id", event.ID).
			Str("event_type", event.Type).
			Msg("Duplicate event acknowledged")
		return nil
	}

	h.inserted.Add(1)

	if event.Type == models.EventTypePullRequest && event.PRAction == models.PRActionOpened {
		h.incrementOpenedCounter(ctx, event)
	}

	h.publishProcessed(ctx, event)

	metrics.RecordEventProcessed(metrics.ProcessOutcomeInserted, time.Since(start))
	return nil
}

// Stats returns a snapshot of handler counters.
func (h *Handler) Stats() Stats {
	return Stats{
		Received:    h.received.Load(),
		Inserted:    h.inserted.Load(),
		Duplicates:  h.duplicates.Load(),
		ParseErrors: h.parseErrors.Load(),
	}
}

// incrementOpenedCounter bumps the repository's opened-PR counter.
// The counter is a derived aggregate and the event row is already
// committed, so failures are logged and swallowed rather than nacking
// the message; a nack would redeliver and the insert gate would block
// the recount anyway.
func (h *Handler) incrementOpenedCounter(ctx context.Context, event *models.ProcessedEvent) {
	if event.RepoName == "" {
		metrics.RecordCounterIncrementFailure()
		logging.Warn().
			Str("event_id", event.ID).
			Msg("Skipping opened-PR count for event without repository name")
		return
	}

	count, err := h.counters.IncrementOpened(ctx, event.RepoName)
	if err != nil {
		metrics.RecordCounterIncrementFailure()
		logging.Error().
			Err(err).
			Str("repo", event.RepoName).
			Str("event_id", event.ID).
			Msg("Failed to increment opened-PR counter")
		return
	}

	logging.Debug().
		Str("repo", event.RepoName).
		Uint64("count", count).
		Msg("Opened-PR counter incremented")
}

// publishProcessed fans the normalized event out for live consumers.
// Best effort: the store is the system of record, so a lost fanout
// costs a live update, never data.
func (h *Handler) publishProcessed(ctx context.Context, event *models.ProcessedEvent) {
	if h.publisher == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		logging.Error().Err(err).Str("event_id", event.ID).Msg("Failed to encode processed event")
		return
	}

	// Raw and processed topics share one stream, and broker
	// deduplication by Nats-Msg-Id is stream-scoped, so the processed
	// message needs its own ID namespace or it would be dropped as a
	// duplicate of the raw publish.
	out := message.NewMessage("processed-"+event.ID, payload)
	out.Metadata.Set(models.AttrEventType, event.Type)
	out.Metadata.Set(models.AttrRepoName, event.RepoName)
	out.Metadata.Set(models.AttrActorLogin, event.ActorLogin)

	if err := h.publisher.Publish(ctx, eventstream.TopicProcessedEvents, out); err != nil {
		logging.Warn().Err(err).Str("event_id", event.ID).Msg("Failed to publish processed event")
	}
}

// normalize reduces an envelope to the persisted event shape.
// The payload action lands in PRAction for pull request events and in
// Action for the other tracked types; anything else is rejected.
func normalize(envelope *models.EventEnvelope, processedAt time.Time) (*models.ProcessedEvent, error) {
	if envelope.ID == "" {
		return nil, fmt.Errorf("missing event id")
	}
	if envelope.CreatedAt == "" {
		return nil, fmt.Errorf("missing created_at on event %s", envelope.ID)
	}

	event := &models.ProcessedEvent{
		ID:          envelope.ID,
		CreatedAt:   envelope.CreatedAt,
		Type:        envelope.Type,
		RepoName:    envelope.Repo.Name,
		RepoID:      envelope.Repo.ID,
		ActorLogin:  envelope.Actor.Login,
		ProcessedAt: processedAt,
	}

	action := envelope.PayloadAction()
	switch envelope.Type {
	case models.EventTypePullRequest:
		event.PRAction = action
	case models.EventTypeIssues, models.EventTypeWatch:
		event.Action = action
	default:
		return nil, fmt.Errorf("unhandled event type %q on event %s", envelope.Type, envelope.ID)
	}

	return event, nil
}
