// Chronographus - GitHub Events Analytics and Timeline Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestPutIfAbsent_FirstInsertWins(t *testing.T) {
	db := newTestDB(t)
	events := NewEventStore(db)
	ctx := context.Background()

	event := testEvent("42", "PullRequestEvent", "2024-01-15T12:00:00Z", "golang/go")
	event.PRAction = "opened"

	inserted, err := events.PutIfAbsent(ctx, event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !inserted {
		t.Fatal("Expected first insert to report inserted")
	}

	// Same ID with different content must not overwrite.
	rewrite := testEvent("42", "PullRequestEvent", "2024-01-15T12:00:00Z", "golang/go")
	rewrite.PRAction = "closed"
	inserted, err = events.PutIfAbsent(ctx, rewrite)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inserted {
		t.Fatal("Expected duplicate to report not inserted")
	}

	got, token, err := events.QueryByType(ctx, "PullRequestEvent", "", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "" {
		t.Errorf("Expected no continuation token, got %q", token)
	}
	if len(got) != 1 {
		t.Fatalf("Expected 1 stored event, got %d", len(got))
	}
	if got[0].PRAction != "opened" {
		t.Errorf("Expected original record preserved, got action %q", got[0].PRAction)
	}
}

func TestPutIfAbsent_DistinctIDs(t *testing.T) {
	db := newTestDB(t)
	events := NewEventStore(db)
	ctx := context.Background()

	for i, id := range []string{"1", "2", "3"} {
		createdAt := fmt.Sprintf("2024-01-15T12:0%d:00Z", i)
		inserted, err := events.PutIfAbsent(ctx, testEvent(id, "WatchEvent", createdAt, "golang/go"))
		if err != nil {
			t.Fatalf("unexpected error for id %s: %v", id, err)
		}
		if !inserted {
			t.Errorf("Expected insert for id %s", id)
		}
	}

	count, err := events.CountInRange(ctx, "WatchEvent",
		time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 3 {
		t.Errorf("Expected 3 events, got %d", count)
	}
}

func TestPutIfAbsent_ConcurrentSameID(t *testing.T) {
	db := newTestDB(t)
	events := NewEventStore(db)

	const racers = 10
	var wg sync.WaitGroup
	insertedCount := make(chan bool, racers)
	errCh := make(chan error, racers)

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			inserted, err := events.PutIfAbsent(context.Background(),
				testEvent("same-id", "WatchEvent", "2024-01-15T12:00:00Z", "golang/go"))
			if err != nil {
				errCh <- err
				return
			}
			insertedCount <- inserted
		}()
	}
	wg.Wait()
	close(insertedCount)
	close(errCh)

	for err := range errCh {
		t.Fatalf("unexpected error: %v", err)
	}

	wins := 0
	for inserted := range insertedCount {
		if inserted {
			wins++
		}
	}
	if wins != 1 {
		t.Errorf("Expected exactly 1 racer to insert, got %d", wins)
	}
}

func TestCountInRange(t *testing.T) {
	db := newTestDB(t)
	events := NewEventStore(db)
	ctx := context.Background()

	seed := []struct {
		id        string
		eventType string
		createdAt string
	}{
		{"w1", "WatchEvent", "2024-01-15T12:00:00Z"},
		{"w2", "WatchEvent", "2024-01-15T12:05:00Z"},
		{"w3", "WatchEvent", "2024-01-15T12:10:00Z"},
		{"p1", "PullRequestEvent", "2024-01-15T12:07:00Z"},
	}
	for _, s := range seed {
		if _, err := events.PutIfAbsent(ctx, testEvent(s.id, s.eventType, s.createdAt, "golang/go")); err != nil {
			t.Fatalf("seed failed for %s: %v", s.id, err)
		}
	}

	at := func(hour, min int) time.Time {
		return time.Date(2024, 1, 15, hour, min, 0, 0, time.UTC)
	}

	tests := []struct {
		name      string
		eventType string
		from, to  time.Time
		want      int
	}{
		{"full window", "WatchEvent", at(12, 0), at(12, 10), 3},
		{"interior window", "WatchEvent", at(12, 1), at(12, 9), 1},
		{"bounds are inclusive", "WatchEvent", at(12, 5), at(12, 5), 1},
		{"type isolation", "PullRequestEvent", at(12, 0), at(12, 10), 1},
		{"empty window", "WatchEvent", at(13, 0), at(14, 0), 0},
		{"unknown type", "IssuesEvent", at(12, 0), at(12, 10), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			count, err := events.CountInRange(ctx, tt.eventType, tt.from, tt.to)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if count != tt.want {
				t.Errorf("Expected count %d, got %d", tt.want, count)
			}
		})
	}
}

func TestQueryByType_AscendingOrder(t *testing.T) {
	db := newTestDB(t)
	events := NewEventStore(db)
	ctx := context.Background()

	// Insert out of chronological order.
	timestamps := []string{
		"2024-01-15T12:30:00Z",
		"2024-01-15T12:00:00Z",
		"2024-01-15T12:45:00Z",
		"2024-01-15T12:15:00Z",
	}
	for i, ts := range timestamps {
		id := fmt.Sprintf("e%d", i)
		if _, err := events.PutIfAbsent(ctx, testEvent(id, "IssuesEvent", ts, "golang/go")); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	got, _, err := events.QueryByType(ctx, "IssuesEvent", "", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("Expected 4 events, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].CreatedAt > got[i].CreatedAt {
			t.Errorf("Expected ascending created_at order, got %s before %s",
				got[i-1].CreatedAt, got[i].CreatedAt)
		}
	}
}

func TestQueryByType_Pagination(t *testing.T) {
	db := newTestDB(t)
	events := NewEventStore(db)
	ctx := context.Background()

	const total = 25
	for i := 0; i < total; i++ {
		// Minute offsets keep the fixed-width timestamps ordered.
		createdAt := fmt.Sprintf("2024-01-15T12:%02d:00Z", i)
		id := fmt.Sprintf("pr-%02d", i)
		if _, err := events.PutIfAbsent(ctx, testEvent(id, "PullRequestEvent", createdAt, "golang/go")); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	var collected []string
	token := ""
	pages := 0
	for {
		page, next, err := events.QueryByType(ctx, "PullRequestEvent", token, 10)
		if err != nil {
			t.Fatalf("unexpected error on page %d: %v", pages, err)
		}
		pages++
		for _, e := range page {
			collected = append(collected, e.ID)
		}
		if next == "" {
			break
		}
		token = next
	}

	if pages != 3 {
		t.Errorf("Expected 3 pages, got %d", pages)
	}
	if len(collected) != total {
		t.Fatalf("Expected %d events across pages, got %d", total, len(collected))
	}

	// No gaps, no overlaps: every seeded ID exactly once, in order.
	for i, id := range collected {
		want := fmt.Sprintf("pr-%02d", i)
		if id != want {
			t.Errorf("Expected %s at position %d, got %s", want, i, id)
		}
	}
}

func TestQueryByType_InvalidToken(t *testing.T) {
	db := newTestDB(t)
	events := NewEventStore(db)
	ctx := context.Background()

	if _, _, err := events.QueryByType(ctx, "WatchEvent", "not base64!", 10); !errors.Is(err, ErrInvalidPageToken) {
		t.Errorf("Expected ErrInvalidPageToken for garbage token, got %v", err)
	}

	// A token minted for one type must not resume a query for another.
	if _, err := events.PutIfAbsent(ctx, testEvent("w1", "WatchEvent", "2024-01-15T12:00:00Z", "golang/go")); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if _, err := events.PutIfAbsent(ctx, testEvent("w2", "WatchEvent", "2024-01-15T12:01:00Z", "golang/go")); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	_, token, err := events.QueryByType(ctx, "WatchEvent", "", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token == "" {
		t.Fatal("Expected a continuation token")
	}
	if _, _, err := events.QueryByType(ctx, "PullRequestEvent", token, 1); !errors.Is(err, ErrInvalidPageToken) {
		t.Errorf("Expected ErrInvalidPageToken for cross-type token, got %v", err)
	}
}

func TestQueryByType_EmptyStore(t *testing.T) {
	db := newTestDB(t)
	events := NewEventStore(db)

	got, token, err := events.QueryByType(context.Background(), "WatchEvent", "", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected no events, got %d", len(got))
	}
	if token != "" {
		t.Errorf("Expected no token, got %q", token)
	}
}
