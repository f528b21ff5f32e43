// Chronographus - GitHub Events Analytics and Timeline Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"

	"github.com/tomtom215/chronographus/internal/config"
	"github.com/tomtom215/chronographus/internal/models"
)

// capturingPublisher records published messages and can fail on demand.
type capturingPublisher struct {
	mu       sync.Mutex
	topics   []string
	messages []*message.Message
	failUUID string
}

func (p *capturingPublisher) Publish(ctx context.Context, topic string, msg *message.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failUUID != "" && msg.UUID == p.failUUID {
		return errors.New("broker unavailable")
	}
	p.topics = append(p.topics, topic)
	p.messages = append(p.messages, msg)
	return nil
}

func testEvent(id, eventType, repoName, actorLogin string) models.RawEvent {
	return models.RawEvent{
		ID:        id,
		Type:      eventType,
		Actor:     models.Actor{ID: 1, Login: actorLogin},
		Repo:      models.Repo{ID: 2, Name: repoName},
		Payload:   map[string]any{"action": "opened"},
		Public:    true,
		CreatedAt: "2024-01-15T12:00:00Z",
	}
}

func TestDispatch_PublishesAllWithMetadata(t *testing.T) {
	pub := &capturingPublisher{}
	cfg := config.PollerConfig{BatchSize: 10}
	d := New(pub, &cfg)

	events := []models.RawEvent{
		testEvent("300", "PullRequestEvent", "octocat/hello-world", "octocat"),
		testEvent("200", "WatchEvent", "golang/go", "hubot"),
		testEvent("100", "IssuesEvent", "rust-lang/rust", "ferris"),
	}

	res, err := d.Dispatch(context.Background(), events)
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if res.Published != 3 || res.Failed != 0 {
		t.Fatalf("Result = %+v, want {Published:3 Failed:0}", res)
	}
	if len(pub.messages) != 3 {
		t.Fatalf("Published %d messages, want 3", len(pub.messages))
	}

	for _, topic := range pub.topics {
		if topic != "github.events.raw" {
			t.Errorf("Published to topic %q, want github.events.raw", topic)
		}
	}

	// Feed order is preserved and the message UUID is the event ID.
	wantIDs := []string{"300", "200", "100"}
	for i, msg := range pub.messages {
		if msg.UUID != wantIDs[i] {
			t.Errorf("Message %d UUID = %q, want %q", i, msg.UUID, wantIDs[i])
		}
	}

	first := pub.messages[0]
	if got := first.Metadata.Get(models.AttrEventType); got != "PullRequestEvent" {
		t.Errorf("eventType metadata = %q, want PullRequestEvent", got)
	}
	if got := first.Metadata.Get(models.AttrRepoName); got != "octocat/hello-world" {
		t.Errorf("repoName metadata = %q, want octocat/hello-world", got)
	}
	if got := first.Metadata.Get(models.AttrActorLogin); got != "octocat" {
		t.Errorf("actorLogin metadata = %q, want octocat", got)
	}

	var envelope models.EventEnvelope
	if err := json.Unmarshal(first.Payload, &envelope); err != nil {
		t.Fatalf("Failed to decode envelope: %v", err)
	}
	if envelope.Source != models.EnvelopeSource {
		t.Errorf("Envelope source = %q, want %q", envelope.Source, models.EnvelopeSource)
	}
	if envelope.ID != "300" || envelope.Type != "PullRequestEvent" {
		t.Errorf("Envelope event = %s/%s, want 300/PullRequestEvent", envelope.ID, envelope.Type)
	}
	if envelope.ReceivedAt.IsZero() {
		t.Error("Envelope ReceivedAt should be stamped")
	}
}

func TestDispatch_UnknownMetadataDefaults(t *testing.T) {
	pub := &capturingPublisher{}
	cfg := config.PollerConfig{BatchSize: 10}
	d := New(pub, &cfg)

	events := []models.RawEvent{
		{ID: "42", CreatedAt: "2024-01-15T12:00:00Z"},
	}

	res, err := d.Dispatch(context.Background(), events)
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if res.Published != 1 {
		t.Fatalf("Published = %d, want 1", res.Published)
	}

	msg := pub.messages[0]
	for _, attr := range []string{models.AttrEventType, models.AttrRepoName, models.AttrActorLogin} {
		if got := msg.Metadata.Get(attr); got != "unknown" {
			t.Errorf("Metadata %s = %q, want unknown", attr, got)
		}
	}
}

func TestDispatch_CountsFailuresAndContinues(t *testing.T) {
	pub := &capturingPublisher{failUUID: "pr-13"}
	cfg := config.PollerConfig{BatchSize: 10}
	d := New(pub, &cfg)

	events := make([]models.RawEvent, 0, 25)
	for i := 0; i < 25; i++ {
		events = append(events, testEvent(
			fmt.Sprintf("pr-%02d", i),
			"PullRequestEvent",
			"octocat/hello-world",
			"octocat",
		))
	}

	res, err := d.Dispatch(context.Background(), events)
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if res.Published != 24 {
		t.Errorf("Published = %d, want 24", res.Published)
	}
	if res.Failed != 1 {
		t.Errorf("Failed = %d, want 1", res.Failed)
	}

	// The failed event is skipped, everything after it still goes out.
	for _, msg := range pub.messages {
		if msg.UUID == "pr-13" {
			t.Error("Failed event should not appear among published messages")
		}
	}
	if last := pub.messages[len(pub.messages)-1]; last.UUID != "pr-24" {
		t.Errorf("Last published UUID = %q, want pr-24", last.UUID)
	}
}

func TestDispatch_EmptyInput(t *testing.T) {
	pub := &capturingPublisher{}
	cfg := config.PollerConfig{BatchSize: 10}
	d := New(pub, &cfg)

	res, err := d.Dispatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if res.Published != 0 || res.Failed != 0 {
		t.Errorf("Result = %+v, want zero", res)
	}
	if len(pub.messages) != 0 {
		t.Errorf("Published %d messages, want 0", len(pub.messages))
	}
}

func TestDispatch_ContextCanceled(t *testing.T) {
	pub := &capturingPublisher{}
	cfg := config.PollerConfig{BatchSize: 10}
	d := New(pub, &cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	events := []models.RawEvent{
		testEvent("1", "WatchEvent", "golang/go", "hubot"),
	}

	_, err := d.Dispatch(ctx, events)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Dispatch() error = %v, want context.Canceled", err)
	}
	if len(pub.messages) != 0 {
		t.Errorf("Published %d messages after cancellation, want 0", len(pub.messages))
	}
}

func TestNew_BatchSizeClamped(t *testing.T) {
	pub := &capturingPublisher{}

	tests := []struct {
		name       string
		configured int
		want       int
	}{
		{"within limit", 5, 5},
		{"at limit", 10, 10},
		{"over limit", 50, 10},
		{"zero", 0, 10},
		{"negative", -1, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.PollerConfig{BatchSize: tt.configured}
			d := New(pub, &cfg)
			if d.batchSize != tt.want {
				t.Errorf("batchSize = %d, want %d", d.batchSize, tt.want)
			}
		})
	}
}
