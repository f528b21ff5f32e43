// Chronographus - GitHub Events Analytics and Timeline Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package eventstream

import (
	"testing"
	"time"
)

func TestDefaultStreamConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultStreamConfig()

	if cfg.Name != "GITHUB_EVENTS" {
		t.Errorf("Name = %q, want GITHUB_EVENTS", cfg.Name)
	}
	if len(cfg.Subjects) != 1 || cfg.Subjects[0] != "github.events.>" {
		t.Errorf("Subjects = %v, want [github.events.>]", cfg.Subjects)
	}
	if cfg.MaxAge != 7*24*time.Hour {
		t.Errorf("MaxAge = %v, want %v", cfg.MaxAge, 7*24*time.Hour)
	}
	if cfg.MaxMsgs != -1 {
		t.Errorf("MaxMsgs = %d, want -1 (unlimited)", cfg.MaxMsgs)
	}
	if cfg.DuplicateWindow != 2*time.Minute {
		t.Errorf("DuplicateWindow = %v, want %v", cfg.DuplicateWindow, 2*time.Minute)
	}
	if cfg.Replicas != 1 {
		t.Errorf("Replicas = %d, want 1", cfg.Replicas)
	}
}

func TestTopicsAreCoveredByStreamSubjects(t *testing.T) {
	t.Parallel()

	// Every pipeline topic must fall under the stream's wildcard, or
	// publishes would succeed as plain NATS but never be retained.
	topics := []string{TopicRawEvents, TopicProcessedEvents, TopicPoisonEvents}
	for _, topic := range topics {
		if len(topic) <= len("github.events.") || topic[:len("github.events.")] != "github.events." {
			t.Errorf("Topic %q is outside the github.events.> subject space", topic)
		}
	}
}

func TestDefaultPublisherConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultPublisherConfig("nats://127.0.0.1:4222")

	if cfg.URL != "nats://127.0.0.1:4222" {
		t.Errorf("URL = %q, want nats://127.0.0.1:4222", cfg.URL)
	}
	if cfg.MaxReconnects != -1 {
		t.Errorf("MaxReconnects = %d, want -1 (unlimited)", cfg.MaxReconnects)
	}
	if !cfg.EnableTrackMsgID {
		t.Error("EnableTrackMsgID should be true by default")
	}
	if cfg.ReconnectWait != 2*time.Second {
		t.Errorf("ReconnectWait = %v, want %v", cfg.ReconnectWait, 2*time.Second)
	}
}

func TestDefaultSubscriberConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultSubscriberConfig("nats://127.0.0.1:4222")

	if cfg.DurableName != "event-processor" {
		t.Errorf("DurableName = %q, want event-processor", cfg.DurableName)
	}
	if cfg.QueueGroup != "processors" {
		t.Errorf("QueueGroup = %q, want processors", cfg.QueueGroup)
	}
	if cfg.SubscribersCount != 4 {
		t.Errorf("SubscribersCount = %d, want 4", cfg.SubscribersCount)
	}
	if cfg.MaxDeliver != 5 {
		t.Errorf("MaxDeliver = %d, want 5", cfg.MaxDeliver)
	}
	if cfg.StreamName != StreamName {
		t.Errorf("StreamName = %q, want %q", cfg.StreamName, StreamName)
	}
}

func TestDefaultRouterConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultRouterConfig()

	if cfg.CloseTimeout != 30*time.Second {
		t.Errorf("CloseTimeout = %v, want %v", cfg.CloseTimeout, 30*time.Second)
	}
	if cfg.RetryMaxRetries != 5 {
		t.Errorf("RetryMaxRetries = %d, want 5", cfg.RetryMaxRetries)
	}
	if cfg.RetryInitialInterval != time.Second {
		t.Errorf("RetryInitialInterval = %v, want %v", cfg.RetryInitialInterval, time.Second)
	}
	if cfg.RetryMultiplier != 2.0 {
		t.Errorf("RetryMultiplier = %f, want 2.0", cfg.RetryMultiplier)
	}
	if cfg.ThrottlePerSecond != 0 {
		t.Errorf("ThrottlePerSecond = %d, want 0", cfg.ThrottlePerSecond)
	}
	if cfg.PoisonQueueTopic != TopicPoisonEvents {
		t.Errorf("PoisonQueueTopic = %q, want %q", cfg.PoisonQueueTopic, TopicPoisonEvents)
	}
}
