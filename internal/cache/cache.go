// Chronographus - GitHub Events Analytics and Timeline Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package cache

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
)

// sweepInterval is how often the background sweep reclaims expired
// entries that stopped being asked for.
const sweepInterval = 5 * time.Minute

// entry is a cached value with its expiration deadline.
type entry struct {
	value    interface{}
	deadline time.Time
}

// Cache is a thread-safe in-memory cache with TTL expiration. The API
// handlers use it to serve repeated aggregation queries without
// re-scanning the store; the TTL bounds how stale a served result can
// be.
type Cache struct {
	mu          sync.RWMutex
	entries     map[string]entry
	lastCleanup time.Time

	ttl time.Duration

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

// Stats is a point-in-time snapshot of cache activity.
type Stats struct {
	Hits        int64
	Misses      int64
	Evictions   int64
	TotalKeys   int64
	LastCleanup time.Time
}

// New creates a cache whose entries expire after ttl. Expired entries
// are dropped lazily on Get; a background goroutine additionally sweeps
// the map every few minutes so keys nobody reads again do not pin
// memory.
//
// Example:
//
//	c := cache.New(60 * time.Second)
//	c.Set(key, result)
//	if data, ok := c.Get(key); ok {
//	    return data.(*models.TimelineResult)
//	}
func New(ttl time.Duration) *Cache {
	c := &Cache{
		entries:     make(map[string]entry),
		lastCleanup: time.Now(),
		ttl:         ttl,
	}

	go c.sweepLoop()

	return c
}

// Get retrieves a value by key. An expired entry counts as a miss and
// is removed on the spot.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		c.misses.Add(1)
		return nil, false
	}

	if time.Now().After(e.deadline) {
		c.mu.Lock()
		// Re-check under the write lock; a concurrent Set may have
		// refreshed the entry between the two lock acquisitions.
		if cur, ok := c.entries[key]; ok && time.Now().After(cur.deadline) {
			delete(c.entries, key)
			c.evictions.Add(1)
		}
		c.mu.Unlock()
		c.misses.Add(1)
		return nil, false
	}

	c.hits.Add(1)
	return e.value, true
}

// Set stores a value under key with the default TTL. An existing entry
// under the same key is overwritten and its deadline reset.
func (c *Cache) Set(key string, value interface{}) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value with a custom TTL.
func (c *Cache) SetWithTTL(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = entry{value: value, deadline: time.Now().Add(ttl)}
	c.mu.Unlock()
}

// Delete removes one entry. Safe to call for keys that do not exist.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()

	c.evictions.Add(1)
}

// Clear removes all entries in one map swap.
func (c *Cache) Clear() {
	c.mu.Lock()
	dropped := len(c.entries)
	c.entries = make(map[string]entry)
	c.mu.Unlock()

	c.evictions.Add(int64(dropped))
}

// GetStats returns a snapshot of the current counters. TotalKeys is the
// live map size, so it includes expired entries the sweep has not
// visited yet.
func (c *Cache) GetStats() Stats {
	c.mu.RLock()
	total := int64(len(c.entries))
	last := c.lastCleanup
	c.mu.RUnlock()

	return Stats{
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Evictions:   c.evictions.Load(),
		TotalKeys:   total,
		LastCleanup: last,
	}
}

// HitRate returns the cache hit rate as a percentage.
func (c *Cache) HitRate() float64 {
	hits := c.hits.Load()
	total := hits + c.misses.Load()
	if total == 0 {
		return 0.0
	}
	return float64(hits) / float64(total) * 100.0
}

// sweepLoop periodically removes expired entries.
func (c *Cache) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for range ticker.C {
		c.cleanup()
	}
}

// cleanup removes all expired entries.
func (c *Cache) cleanup() {
	now := time.Now()

	c.mu.Lock()
	dropped := 0
	for key, e := range c.entries {
		if now.After(e.deadline) {
			delete(c.entries, key)
			dropped++
		}
	}
	c.lastCleanup = now
	c.mu.Unlock()

	c.evictions.Add(int64(dropped))
}

// GenerateKey builds a cache key from an endpoint name and its request
// parameters. The parameters are serialized and hashed so structurally
// equal requests hit the same entry regardless of field order in the
// query string.
func GenerateKey(method string, params interface{}) string {
	data, err := json.Marshal(params)
	if err != nil {
		// Fallback to a plain string key
		return fmt.Sprintf("%s:%v", method, params)
	}

	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%x", method, hash[:16])
}
