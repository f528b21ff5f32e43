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
	"github.com/goccy/go-json"

	"github.com/tomtom215/chronographus/internal/models"
)

// CursorStore persists the singleton poll cursor.
type CursorStore struct {
	db *badger.DB
}

// NewCursorStore creates a cursor store on the shared database.
func NewCursorStore(db *badger.DB) *CursorStore {
	return &CursorStore{db: db}
}

// Get loads the poll cursor. When no cursor has been stored yet it
// returns the default cursor, not an error, so a fresh database starts
// polling cleanly.
func (s *CursorStore) Get(ctx context.Context) (models.PollCursor, error) {
	cursor := models.DefaultPollCursor()

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(cursorKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get cursor: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &cursor)
		})
	})
	if err != nil {
		return models.DefaultPollCursor(), err
	}
	return cursor, nil
}

// Put replaces the poll cursor wholesale, stamping UpdatedAt.
func (s *CursorStore) Put(ctx context.Context, cursor models.PollCursor) error {
	cursor.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(&cursor)
	if err != nil {
		return fmt.Errorf("marshal cursor: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(cursorKey), data)
	})
}
