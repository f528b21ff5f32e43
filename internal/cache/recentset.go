// Chronographus - GitHub Events Analytics and Timeline Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package cache

import (
	"sync"
)

// recentEntry is a node in the RecentSet ordering list.
type recentEntry struct {
	id   string
	prev *recentEntry
	next *recentEntry
}

// RecentSet is a thread-safe fixed-capacity ordered set of recently seen
// event IDs. Insertion order is preserved newest-first; when capacity is
// exceeded the oldest IDs fall off the back.
//
// It backs the poller's duplicate boundary: the feed returns events
// newest-first, and extraction stops at the first ID already in the set.
//
// Key features:
//   - O(1) Contains, Push, and eviction
//   - Snapshot returns IDs newest-first for cursor persistence
//   - Replace swaps the whole window in one call
//
// A doubly-linked list keeps the ordering and a hashmap gives O(1)
// lookups, the same layout as a classic LRU.
type RecentSet struct {
	mu sync.RWMutex

	// capacity is the maximum number of IDs retained
	capacity int

	// items maps IDs to linked list nodes for O(1) lookup
	items map[string]*recentEntry

	// head and tail are sentinel nodes for the doubly-linked list
	// head.next is the newest ID, tail.prev is the oldest
	head *recentEntry
	tail *recentEntry
}

// NewRecentSet creates a RecentSet holding at most capacity IDs.
func NewRecentSet(capacity int) *RecentSet {
	if capacity <= 0 {
		capacity = 100 // One full feed page
	}

	s := &RecentSet{
		capacity: capacity,
		items:    make(map[string]*recentEntry, capacity),
		head:     &recentEntry{},
		tail:     &recentEntry{},
	}

	// Initialize linked list sentinels
	s.head.next = s.tail
	s.tail.prev = s.head

	return s
}

// Contains reports whether id is in the set.
func (s *RecentSet) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.items[id]
	return exists
}

// Push inserts id at the front (newest position). If the id is already
// present it is moved to the front. Oldest IDs are evicted past capacity.
func (s *RecentSet) Push(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.push(id)
}

// Replace swaps the whole window for ids, which must be ordered
// newest-first. IDs beyond capacity are dropped; duplicates keep their
// first (newest) position.
func (s *RecentSet) Replace(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make(map[string]*recentEntry, s.capacity)
	s.head.next = s.tail
	s.tail.prev = s.head

	for _, id := range ids {
		if len(s.items) >= s.capacity {
			break
		}
		if _, exists := s.items[id]; exists {
			continue
		}
		entry := &recentEntry{id: id}
		s.addToBack(entry)
		s.items[id] = entry
	}
}

// Snapshot returns the IDs ordered newest-first. The slice is a copy.
func (s *RecentSet) Snapshot() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.items))
	for entry := s.head.next; entry != s.tail; entry = entry.next {
		ids = append(ids, entry.id)
	}
	return ids
}

// Len returns the current number of IDs in the set.
func (s *RecentSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Capacity returns the maximum number of IDs retained.
func (s *RecentSet) Capacity() int {
	return s.capacity
}

// Internal methods (must be called with lock held)

func (s *RecentSet) push(id string) {
	if entry, exists := s.items[id]; exists {
		// Move to front
		entry.prev.next = entry.next
		entry.next.prev = entry.prev
		s.addToFront(entry)
		return
	}

	entry := &recentEntry{id: id}
	s.addToFront(entry)
	s.items[id] = entry

	for len(s.items) > s.capacity {
		s.evictOldest()
	}
}

// addToFront adds an entry right after the head sentinel (newest).
func (s *RecentSet) addToFront(entry *recentEntry) {
	entry.prev = s.head
	entry.next = s.head.next
	s.head.next.prev = entry
	s.head.next = entry
}

// addToBack adds an entry right before the tail sentinel (oldest).
func (s *RecentSet) addToBack(entry *recentEntry) {
	entry.next = s.tail
	entry.prev = s.tail.prev
	s.tail.prev.next = entry
	s.tail.prev = entry
}

// evictOldest removes the entry just before the tail sentinel.
func (s *RecentSet) evictOldest() {
	oldest := s.tail.prev
	if oldest == s.head {
		return // List is empty
	}
	oldest.prev.next = oldest.next
	oldest.next.prev = oldest.prev
	delete(s.items, oldest.id)
}
