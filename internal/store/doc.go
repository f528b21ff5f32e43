// Chronographus - GitHub Events Analytics and Timeline Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

// Package store implements the persistence layer on BadgerDB.
//
// A single Badger database backs three logical stores, separated by key
// prefix:
//
//	event#<id>                      primary event records (JSON)
//	evix#<type>#<createdAt>#<id>    (type, time)-ordered event projection
//	counter#<repoName>              opened-PR counters (uint64 big-endian)
//	cursor#github-events            singleton poll cursor (JSON)
//
// # Event Store
//
// EventStore.PutIfAbsent is the pipeline's idempotency gate: it inserts
// the primary record and its index projection in one transaction, or
// reports that the ID already exists. Badger's serializable snapshot
// isolation resolves concurrent racers for the same ID; the loser's
// retry observes the committed key and reports a duplicate.
//
// The evix index keys embed the created_at timestamp in its fixed-width
// feed format (2006-01-02T15:04:05Z), so lexicographic key order is
// chronological order. CountInRange walks index keys only
// (PrefetchValues off); QueryByType pages through full projections with
// an opaque continuation token.
//
// # Counter Store
//
// CounterStore.IncrementOpened is a read-modify-write transaction with
// bounded retry on commit conflict. Counters are a convenience
// aggregate: they can always be rebuilt from the event records, so
// callers may treat increment failures as non-fatal.
//
// # Cursor Store
//
// CursorStore persists the poller's conditional-request state (ETag,
// seen IDs, recommended interval) under a fixed singleton key. A missing
// record yields the default cursor rather than an error.
//
// # Thread Safety
//
// All store types are safe for concurrent use; each method runs its own
// Badger transaction.
package store
