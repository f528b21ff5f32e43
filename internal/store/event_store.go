// Chronographus - GitHub Events Analytics and Timeline Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package store

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/chronographus/internal/metrics"
	"github.com/tomtom215/chronographus/internal/models"
)

const (
	// putIfAbsentRetries bounds commit-conflict retries. After a
	// conflict the retry's read sees the winner's committed record, so
	// one extra attempt normally settles it.
	putIfAbsentRetries = 3

	// DefaultQueryPageLimit is the QueryByType page size when the
	// caller does not specify one.
	DefaultQueryPageLimit = 500

	// iterCheckInterval is how many keys an iteration visits between
	// context checks.
	iterCheckInterval = 1000
)

// EventStore persists normalized events and their (type, time) index.
type EventStore struct {
	db *badger.DB
}

// NewEventStore creates an event store on the shared database.
func NewEventStore(db *badger.DB) *EventStore {
	return &EventStore{db: db}
}

// PutIfAbsent inserts the event and its index projection if no record
// with the same ID exists yet. Returns true when this call created the
// record, false when the ID was already present. Duplicate is not an
// error; it is the expected outcome for redelivered messages.
func (s *EventStore) PutIfAbsent(ctx context.Context, event *models.ProcessedEvent) (bool, error) {
	start := time.Now()

	data, err := json.Marshal(event)
	if err != nil {
		return false, fmt.Errorf("marshal event: %w", err)
	}

	var inserted bool
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		inserted = false
		err = s.db.Update(func(txn *badger.Txn) error {
			key := eventKey(event.ID)
			_, err := txn.Get(key)
			if err == nil {
				return nil // Already present
			}
			if !errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("get event: %w", err)
			}

			if err := txn.Set(key, data); err != nil {
				return fmt.Errorf("set event: %w", err)
			}
			if err := txn.Set(indexKey(event.Type, event.CreatedAt, event.ID), data); err != nil {
				return fmt.Errorf("set event index: %w", err)
			}
			inserted = true
			return nil
		})

		if errors.Is(err, badger.ErrConflict) && attempt < putIfAbsentRetries {
			continue
		}
		break
	}

	metrics.RecordStoreOperation("put_if_absent", time.Since(start), err)
	if err != nil {
		return false, err
	}

	if inserted {
		metrics.RecordInsert(metrics.ProcessOutcomeInserted)
	} else {
		metrics.RecordInsert(metrics.ProcessOutcomeDuplicate)
	}
	return inserted, nil
}

// CountInRange counts events of one type with created_at in [from, to].
// Key-only iteration over the index; values are never read.
func (s *EventStore) CountInRange(ctx context.Context, eventType string, from, to time.Time) (int, error) {
	start := time.Now()

	prefix := indexPrefix(eventType)
	seekKey := append(append([]byte{}, prefix...), models.FormatEventTime(from)...)
	// The trailing 0xff sorts after any "#<id>" suffix, making the
	// upper bound inclusive of events stamped exactly at `to`.
	upperBound := append(append(append([]byte{}, prefix...), models.FormatEventTime(to)...), 0xff)

	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		visited := 0
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if bytes.Compare(it.Item().Key(), upperBound) > 0 {
				break
			}
			count++
			visited++
			if visited%iterCheckInterval == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
		}
		return nil
	})

	metrics.RecordStoreOperation("count_range", time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("count %s events: %w", eventType, err)
	}
	return count, nil
}

// QueryByType returns one page of events of the given type in ascending
// created_at order, plus a continuation token for the next page. An
// empty token starts from the beginning; an empty returned token means
// the iteration is complete.
func (s *EventStore) QueryByType(ctx context.Context, eventType, pageToken string, limit int) ([]models.ProcessedEvent, string, error) {
	start := time.Now()

	if limit <= 0 {
		limit = DefaultQueryPageLimit
	}

	prefix := indexPrefix(eventType)
	seekKey := prefix
	if pageToken != "" {
		decoded, err := base64.URLEncoding.DecodeString(pageToken)
		if err != nil || !bytes.HasPrefix(decoded, prefix) {
			return nil, "", ErrInvalidPageToken
		}
		// A zero byte appended to the last visited key is the smallest
		// strictly greater key, so the next page resumes after it.
		seekKey = append(decoded, 0x00)
	}

	var events []models.ProcessedEvent
	var lastKey []byte
	more := false
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if len(events) == limit {
				more = true
				return nil
			}

			item := it.Item()
			var event models.ProcessedEvent
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &event)
			}); err != nil {
				return fmt.Errorf("unmarshal event: %w", err)
			}
			events = append(events, event)
			lastKey = item.KeyCopy(nil)
		}
		return nil
	})

	metrics.RecordStoreOperation("query_by_type", time.Since(start), err)
	if err != nil {
		return nil, "", fmt.Errorf("query %s events: %w", eventType, err)
	}

	nextToken := ""
	if more {
		nextToken = base64.URLEncoding.EncodeToString(lastKey)
	}
	return events, nextToken, nil
}
