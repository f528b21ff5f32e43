// Chronographus - GitHub Events Analytics and Timeline Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

// Package dispatcher publishes freshly polled feed events onto the raw
// events topic in bounded sub-batches.
//
// Each event becomes one message: the body is an EventEnvelope (raw
// event plus dispatch provenance), the message UUID is the GitHub event
// ID so the broker can deduplicate redelivered publishes, and routing
// metadata (eventType, repoName, actorLogin) rides alongside so
// consumers can filter without deserializing. Failures are tallied per
// event rather than aborting the run; the poller only advances its
// cursor when a run completes with zero failures.
package dispatcher

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"

	"github.com/tomtom215/chronographus/internal/config"
	"github.com/tomtom215/chronographus/internal/eventstream"
	"github.com/tomtom215/chronographus/internal/logging"
	"github.com/tomtom215/chronographus/internal/metrics"
	"github.com/tomtom215/chronographus/internal/models"
)

// maxBatchSize caps a dispatch sub-batch regardless of configuration.
const maxBatchSize = 10

// attrUnknown fills routing metadata when the feed omits a field.
const attrUnknown = "unknown"

// EventPublisher is the transport the dispatcher publishes through.
// *eventstream.Publisher satisfies it.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, msg *message.Message) error
}

// Result summarizes one dispatch run.
type Result struct {
	Published int
	Failed    int
}

// Dispatcher splits event slices into sub-batches and publishes them.
type Dispatcher struct {
	publisher EventPublisher
	topic     string
	batchSize int
}

// New creates a dispatcher publishing to the raw events topic.
// Batch size comes from configuration but never exceeds ten events.
func New(pub EventPublisher, cfg *config.PollerConfig) *Dispatcher {
	batchSize := cfg.BatchSize
	if batchSize <= 0 || batchSize > maxBatchSize {
		batchSize = maxBatchSize
	}
	return &Dispatcher{
		publisher: pub,
		topic:     eventstream.TopicRawEvents,
		batchSize: batchSize,
	}
}

// Dispatch publishes the given events in feed order, newest first.
// Per-event publish failures are counted and skipped so one bad event
// cannot block the rest of the run. A context cancellation stops the
// run and returns the tally so far along with the context error.
func (d *Dispatcher) Dispatch(ctx context.Context, events []models.RawEvent) (Result, error) {
	var res Result
	if len(events) == 0 {
		return res, nil
	}

	receivedAt := time.Now().UTC()

	for start := 0; start < len(events); start += d.batchSize {
		end := min(start+d.batchSize, len(events))
		batch := events[start:end]
		metrics.ObserveDispatchBatch(len(batch))

		for i := range batch {
			if err := ctx.Err(); err != nil {
				metrics.RecordDispatch(res.Published, res.Failed)
				return res, err
			}

			event := &batch[i]
			msg, err := buildMessage(event, receivedAt)
			if err != nil {
				res.Failed++
				logging.Warn().
					Err(err).
					Str("event_id", event.ID).
					Msg("Failed to encode event for dispatch")
				continue
			}

			if err := d.publisher.Publish(ctx, d.topic, msg); err != nil {
				res.Failed++
				logging.Warn().
					Err(err).
					Str("event_id", event.ID).
					Str("event_type", event.Type).
					Msg("Failed to publish event")
				continue
			}
			res.Published++
		}
	}

	metrics.RecordDispatch(res.Published, res.Failed)

	if res.Failed > 0 {
		logging.Warn().
			Int("published", res.Published).
			Int("failed", res.Failed).
			Msg("Dispatch completed with failures")
	} else {
		logging.Debug().
			Int("published", res.Published).
			Msg("Dispatch completed")
	}

	return res, nil
}

// buildMessage wraps a raw event in an envelope and attaches routing
// metadata. The message UUID is the event ID, which the publisher
// forwards as Nats-Msg-Id for broker-side deduplication.
func buildMessage(event *models.RawEvent, receivedAt time.Time) (*message.Message, error) {
	envelope := models.EventEnvelope{
		RawEvent:   *event,
		Source:     models.EnvelopeSource,
		ReceivedAt: receivedAt,
	}

	payload, err := json.Marshal(envelope)
	if err != nil {
		return nil, err
	}

	msg := message.NewMessage(event.ID, payload)
	msg.Metadata.Set(models.AttrEventType, orUnknown(event.Type))
	msg.Metadata.Set(models.AttrRepoName, orUnknown(event.Repo.Name))
	msg.Metadata.Set(models.AttrActorLogin, orUnknown(event.Actor.Login))
	return msg, nil
}

func orUnknown(s string) string {
	if s == "" {
		return attrUnknown
	}
	return s
}
