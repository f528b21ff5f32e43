// Chronographus - GitHub Events Analytics and Timeline Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/chronographus/internal/config"
)

func TestGarbageCollector_RunOnce(t *testing.T) {
	t.Run("in-memory is a no-op", func(t *testing.T) {
		db := newTestDB(t)
		gc := NewGarbageCollector(db, &config.StorageConfig{
			InMemory:       true,
			GCInterval:     time.Minute,
			GCDiscardRatio: 0.5,
		})

		if err := gc.RunOnce(); err != nil {
			t.Errorf("Expected no error on in-memory database, got %v", err)
		}
	})

	t.Run("on disk with nothing to reclaim", func(t *testing.T) {
		cfg := &config.StorageConfig{
			Path:           t.TempDir(),
			GCInterval:     time.Minute,
			GCDiscardRatio: 0.5,
		}
		db, err := Open(cfg)
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		gc := NewGarbageCollector(db, cfg)
		if err := gc.RunOnce(); err != nil {
			t.Errorf("Expected no error on fresh database, got %v", err)
		}
	})
}

func TestGarbageCollector_ServeStopsOnCancel(t *testing.T) {
	db := newTestDB(t)
	gc := NewGarbageCollector(db, &config.StorageConfig{
		InMemory:       true,
		GCInterval:     10 * time.Millisecond,
		GCDiscardRatio: 0.5,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- gc.Serve(ctx)
	}()

	// Let at least one tick fire, then stop.
	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Serve did not stop after cancel")
	}
}

func TestGarbageCollector_String(t *testing.T) {
	db := newTestDB(t)
	gc := NewGarbageCollector(db, &config.StorageConfig{InMemory: true, GCInterval: time.Minute, GCDiscardRatio: 0.5})

	if got := gc.String(); got != "badger-gc" {
		t.Errorf("Expected badger-gc, got %s", got)
	}
}
