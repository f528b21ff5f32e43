// Chronographus - GitHub Events Analytics and Timeline Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/chronographus/internal/config"
	"github.com/tomtom215/chronographus/internal/logging"
	"github.com/tomtom215/chronographus/internal/metrics"
)

// GarbageCollector periodically runs Badger value-log garbage
// collection to reclaim space from overwritten cursor records and
// compacted index entries. Implements suture.Service.
type GarbageCollector struct {
	db           *badger.DB
	interval     time.Duration
	discardRatio float64
}

// NewGarbageCollector creates a GC service from the storage
// configuration.
func NewGarbageCollector(db *badger.DB, cfg *config.StorageConfig) *GarbageCollector {
	return &GarbageCollector{
		db:           db,
		interval:     cfg.GCInterval,
		discardRatio: cfg.GCDiscardRatio,
	}
}

// Serve implements suture.Service. Runs value-log GC on a ticker until
// the context is canceled.
func (g *GarbageCollector) Serve(ctx context.Context) error {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	logging.Info().
		Dur("interval", g.interval).
		Float64("discard_ratio", g.discardRatio).
		Msg("Database GC loop started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := g.RunOnce(); err != nil {
				logging.Warn().Err(err).Msg("Value log GC failed")
			}
		}
	}
}

// RunOnce runs value-log GC until no further rewrite is possible.
// No-op conditions (nothing to rewrite, in-memory database) are not
// errors.
func (g *GarbageCollector) RunOnce() error {
	for {
		err := g.db.RunValueLogGC(g.discardRatio)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrGCInMemoryMode) {
			metrics.RecordGCRun("noop")
			return nil
		}
		if err != nil {
			metrics.RecordGCRun("error")
			return fmt.Errorf("run value log GC: %w", err)
		}
		metrics.RecordGCRun("reclaimed")
	}
}

// String implements fmt.Stringer for supervisor logging.
func (g *GarbageCollector) String() string {
	return "badger-gc"
}
