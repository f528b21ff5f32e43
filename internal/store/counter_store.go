// Chronographus - GitHub Events Analytics and Timeline Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package store

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/chronographus/internal/metrics"
	"github.com/tomtom215/chronographus/internal/models"
)

// incrementRetries bounds read-modify-write retries when concurrent
// increments for the same repository conflict at commit.
const incrementRetries = 10

// CounterStore maintains per-repository opened-PR counters. Counters
// are a rebuildable aggregate over the event records, not a source of
// truth.
type CounterStore struct {
	db *badger.DB
}

// NewCounterStore creates a counter store on the shared database.
func NewCounterStore(db *badger.DB) *CounterStore {
	return &CounterStore{db: db}
}

// IncrementOpened adds one to the repository's opened-PR counter and
// returns the new value. Concurrent increments serialize through
// Badger's conflict detection; each conflicted attempt re-reads the
// current value, so no increment is lost or doubled.
func (s *CounterStore) IncrementOpened(ctx context.Context, repoName string) (uint64, error) {
	start := time.Now()

	var next uint64
	var err error
	for attempt := 0; attempt < incrementRetries; attempt++ {
		err = s.db.Update(func(txn *badger.Txn) error {
			key := counterKey(repoName)
			next = 1

			item, getErr := txn.Get(key)
			if getErr == nil {
				if verr := item.Value(func(val []byte) error {
					if len(val) == 8 {
						next = binary.BigEndian.Uint64(val) + 1
					}
					return nil
				}); verr != nil {
					return fmt.Errorf("read counter: %w", verr)
				}
			} else if !errors.Is(getErr, badger.ErrKeyNotFound) {
				return fmt.Errorf("get counter: %w", getErr)
			}

			var buf [8]byte
			binary.BigEndian.PutUint64(buf[:], next)
			return txn.Set(key, buf[:])
		})

		if err == nil {
			metrics.RecordStoreOperation("counter_increment", time.Since(start), nil)
			return next, nil
		}
		if !errors.Is(err, badger.ErrConflict) {
			break
		}

		metrics.RecordCounterConflict()
		select {
		case <-ctx.Done():
			err = ctx.Err()
			metrics.RecordStoreOperation("counter_increment", time.Since(start), err)
			return 0, err
		case <-time.After(time.Millisecond << uint(attempt)):
		}
	}

	metrics.RecordStoreOperation("counter_increment", time.Since(start), err)
	return 0, fmt.Errorf("increment counter for %s: %w", repoName, err)
}

// GetOpened returns the repository's opened-PR counter, zero when no
// counter exists yet.
func (s *CounterStore) GetOpened(ctx context.Context, repoName string) (uint64, error) {
	var count uint64
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(counterKey(repoName))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get counter: %w", err)
		}
		return item.Value(func(val []byte) error {
			if len(val) == 8 {
				count = binary.BigEndian.Uint64(val)
			}
			return nil
		})
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// ReposWithOpenedAbove scans all counters and returns repositories
// whose opened-PR count strictly exceeds min, in ascending repository
// name order (the iteration's key order).
func (s *CounterStore) ReposWithOpenedAbove(ctx context.Context, min uint64) ([]models.RepoPRCount, error) {
	start := time.Now()

	var repos []models.RepoPRCount
	prefix := []byte(counterKeyPrefix)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		visited := 0
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()

			var count uint64
			if err := item.Value(func(val []byte) error {
				if len(val) == 8 {
					count = binary.BigEndian.Uint64(val)
				}
				return nil
			}); err != nil {
				return fmt.Errorf("read counter: %w", err)
			}

			if count > min {
				repos = append(repos, models.RepoPRCount{
					RepoName:      string(item.Key()[len(counterKeyPrefix):]),
					OpenedPRCount: count,
				})
			}

			visited++
			if visited%iterCheckInterval == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
		}
		return nil
	})

	metrics.RecordStoreOperation("counter_scan", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("scan counters: %w", err)
	}
	return repos, nil
}
