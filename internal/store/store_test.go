// Chronographus - GitHub Events Analytics and Timeline Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package store

import (
	"context"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/chronographus/internal/config"
	"github.com/tomtom215/chronographus/internal/models"
)

// newTestDB opens an in-memory database scoped to the test.
func newTestDB(t *testing.T) *badger.DB {
	t.Helper()

	db, err := Open(&config.StorageConfig{InMemory: true})
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close database: %v", err)
		}
	})
	return db
}

// testEvent builds a minimal processed event for store tests.
func testEvent(id, eventType, createdAt, repoName string) *models.ProcessedEvent {
	return &models.ProcessedEvent{
		ID:          id,
		CreatedAt:   createdAt,
		Type:        eventType,
		RepoName:    repoName,
		ActorLogin:  "octocat",
		ProcessedAt: time.Date(2024, 1, 15, 12, 30, 0, 0, time.UTC),
	}
}

func TestOpen_InMemory(t *testing.T) {
	db := newTestDB(t)

	err := db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte("probe"), []byte("value"))
	})
	if err != nil {
		t.Fatalf("unexpected write error: %v", err)
	}

	err = db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("probe"))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if string(val) != "value" {
				t.Errorf("Expected value, got %s", string(val))
			}
			return nil
		})
	})
	if err != nil {
		t.Fatalf("unexpected read error: %v", err)
	}
}

func TestOpen_OnDiskPersists(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.StorageConfig{Path: dir}

	db, err := Open(cfg)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	events := NewEventStore(db)
	inserted, err := events.PutIfAbsent(context.Background(), testEvent("1", "WatchEvent", "2024-01-15T12:00:00Z", "golang/go"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !inserted {
		t.Fatal("Expected first insert to succeed")
	}

	if err := db.Close(); err != nil {
		t.Fatalf("failed to close database: %v", err)
	}

	// Reopen and verify the record survived.
	db, err = Open(cfg)
	if err != nil {
		t.Fatalf("failed to reopen database: %v", err)
	}
	defer db.Close()

	events = NewEventStore(db)
	inserted, err = events.PutIfAbsent(context.Background(), testEvent("1", "WatchEvent", "2024-01-15T12:00:00Z", "golang/go"))
	if err != nil {
		t.Fatalf("unexpected error after reopen: %v", err)
	}
	if inserted {
		t.Error("Expected duplicate after reopen, got a fresh insert")
	}
}
