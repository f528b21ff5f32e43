// Chronographus - GitHub Events Analytics and Timeline Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package store

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/chronographus/internal/config"
	"github.com/tomtom215/chronographus/internal/logging"
)

// Key prefixes for the logical stores sharing one Badger database.
// The '#' separator never appears in event IDs, event types, or the
// fixed-width created_at format, so prefixes parse unambiguously.
const (
	eventKeyPrefix      = "event#"
	eventIndexKeyPrefix = "evix#"
	counterKeyPrefix    = "counter#"
	cursorKey           = "cursor#github-events"
)

// Errors shared across the store types.
var (
	// ErrInvalidPageToken is returned when a continuation token cannot
	// be decoded or does not belong to the queried prefix.
	ErrInvalidPageToken = errors.New("invalid page token")
)

// Open opens (or creates) the Badger database described by the storage
// configuration. With InMemory set, nothing touches disk; tests use
// this mode.
func Open(cfg *config.StorageConfig) (*badger.DB, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(cfg.Path)
	}

	// Reduce logging verbosity
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Msg("Event database opened")

	return db, nil
}

// eventKey builds the primary record key for an event ID.
func eventKey(id string) []byte {
	return []byte(eventKeyPrefix + id)
}

// indexKey builds the (type, time)-ordered projection key. createdAt
// must already be in the fixed-width feed format so key order matches
// chronological order.
func indexKey(eventType, createdAt, id string) []byte {
	return []byte(eventIndexKeyPrefix + eventType + "#" + createdAt + "#" + id)
}

// indexPrefix bounds an iteration to one event type.
func indexPrefix(eventType string) []byte {
	return []byte(eventIndexKeyPrefix + eventType + "#")
}

// counterKey builds the per-repository counter key.
func counterKey(repoName string) []byte {
	return []byte(counterKeyPrefix + repoName)
}
