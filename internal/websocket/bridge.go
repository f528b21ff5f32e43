// Chronographus - GitHub Events Analytics and Timeline Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package websocket

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"

	"github.com/tomtom215/chronographus/internal/eventstream"
	"github.com/tomtom215/chronographus/internal/logging"
	"github.com/tomtom215/chronographus/internal/metrics"
	"github.com/tomtom215/chronographus/internal/models"
)

// EventSource is the slice of the stream layer the bridge consumes.
// *eventstream.Subscriber satisfies it.
type EventSource interface {
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
}

// EventBridge forwards processed feed events to the WebSocket hub so
// connected clients receive a live tail of the stream.
type EventBridge struct {
	hub    *Hub
	source EventSource
	topic  string
}

// NewEventBridge creates a bridge from the processed-events topic to
// hub broadcasts.
func NewEventBridge(hub *Hub, source EventSource) (*EventBridge, error) {
	if hub == nil {
		return nil, errors.New("websocket hub required")
	}
	if source == nil {
		return nil, errors.New("event source required")
	}
	return &EventBridge{
		hub:    hub,
		source: source,
		topic:  eventstream.TopicProcessedEvents,
	}, nil
}

// Serve subscribes to the processed-events topic and broadcasts each
// record until the context is canceled. Implements suture.Service.
func (b *EventBridge) Serve(ctx context.Context) error {
	messages, err := b.source.Subscribe(ctx, b.topic)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", b.topic, err)
	}

	logging.Info().Str("topic", b.topic).Msg("Event bridge started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				// The subscription closed underneath us. Returning an
				// error lets the supervisor re-establish it.
				return errors.New("event stream closed")
			}
			b.handleMessage(msg)
		}
	}
}

// String implements fmt.Stringer for supervisor logs.
func (b *EventBridge) String() string {
	return "event-bridge"
}

// handleMessage decodes and broadcasts a single stream record.
// Undecodable payloads are acked and dropped; redelivery has no value
// for a live tail.
func (b *EventBridge) handleMessage(msg *message.Message) {
	var event models.ProcessedEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		metrics.RecordNATSParseFailed()
		logging.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("Dropping undecodable event from live stream")
		msg.Ack()
		return
	}

	metrics.RecordNATSConsume()
	b.hub.BroadcastEvent(&event)
	msg.Ack()
}
