// Chronographus - GitHub Events Analytics and Timeline Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

//go:build integration

package testinfra

import (
	"context"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/chronographus/internal/config"
	"github.com/tomtom215/chronographus/internal/eventstream"
	"github.com/tomtom215/chronographus/internal/store"
)

// StartEmbeddedStream starts an embedded NATS server with JetStream on
// a random port. The server is shut down when the test finishes.
func StartEmbeddedStream(t *testing.T) *eventstream.EmbeddedServer {
	t.Helper()

	srv, err := eventstream.NewEmbeddedServer(&eventstream.ServerConfig{
		Host:              "127.0.0.1",
		Port:              -1, // Random available port
		StoreDir:          t.TempDir(),
		JetStreamMaxMem:   64 << 20,
		JetStreamMaxStore: 256 << 20,
	})
	if err != nil {
		t.Fatalf("failed to start embedded NATS server: %v", err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			t.Logf("Warning: embedded NATS shutdown: %v", err)
		}
	})

	return srv
}

// TestStreamConfig returns a stream configuration sized for the
// embedded server. The production defaults allow 10GB of stream data,
// which the embedded server's 256MB JetStream store would reject.
func TestStreamConfig() eventstream.StreamConfig {
	cfg := eventstream.DefaultStreamConfig()
	cfg.MaxBytes = 64 << 20
	return cfg
}

// OpenTestStore opens an in-memory Badger database that is closed when
// the test finishes.
func OpenTestStore(t *testing.T) *badger.DB {
	t.Helper()

	db, err := store.Open(&config.StorageConfig{InMemory: true})
	if err != nil {
		t.Fatalf("failed to open in-memory store: %v", err)
	}

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: store close: %v", err)
		}
	})

	return db
}
