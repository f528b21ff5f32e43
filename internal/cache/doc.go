// Chronographus - GitHub Events Analytics and Timeline Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

/*
Package cache provides the in-memory fast paths of the pipeline: a
thread-safe TTL cache for aggregation query results and a bounded
recency set used by the poller to skip events it has already seen.

# Overview

Two independent structures live here:

  - Cache: key-value store with per-entry expiration, hit/miss/eviction
    counters, and a periodic sweep. The API handlers put aggregation
    results (event counts, PR merge averages, timeline buckets) in
    front of the Badger store so repeated queries within the TTL never
    touch disk.
  - RecentSet: fixed-capacity set ordered by recency. The poller keeps
    the ids of the most recently fetched events in one so consecutive
    polls of an overlapping feed window do not re-publish the overlap.

# Query Result Caching

Handlers build keys with GenerateKey, which serializes the request
parameters and hashes them. Structurally equal requests map to the
same entry no matter how the query string was ordered:

	req := EventCountRequest{EventType: "PushEvent", Interval: "hour"}
	key := cache.GenerateKey("EventCount", req)

	if cached, ok := h.cache.Get(key); ok {
	    h.writeJSON(w, http.StatusOK, cached)
	    return
	}

	result, err := h.queries.CountEvents(r.Context(), req)
	if err != nil {
	    h.writeError(w, http.StatusInternalServerError, "QUERY_FAILED", err.Error())
	    return
	}

	h.cache.Set(key, result)
	h.writeJSON(w, http.StatusOK, result)

Keys follow the method:hash convention:

	EventCount:9f86d081884c7d65...    // /api/v1/metrics/events/count
	PRAverage:e3b0c44298fc1c14...     // /api/v1/metrics/pr-average
	Timeline:2cf24dba5fb0a30e...      // /api/v1/visualization/timeline
	Repositories:ba7816bf8f01cf...    // repository name listings

# Expiration

Entries expire two ways:

 1. Lazily on Get. An expired entry counts as a miss, is removed on
    the spot, and increments the eviction counter.
 2. A background sweep every 5 minutes. The sweep reclaims memory for
    keys that stop being requested, which lazy expiration alone would
    leave in the map indefinitely.

The default TTL is set once at construction. SetWithTTL overrides it
per entry when a handler knows its result goes stale faster or slower
than the default. The ingestion path never invalidates the cache; a
served result may lag the store by at most the TTL, which is the
freshness the aggregation endpoints advertise.

# Duplicate Boundary

The feed returns a sliding window of recent events, so consecutive
polls overlap. The poller loads the ids persisted by the previous
poll into a RecentSet and walks the new page newest-to-oldest,
stopping at the first id it recognizes:

	seen.Replace(previousPollIDs) // newest first

	for _, event := range page {
	    if seen.Contains(event.ID) {
	        break // the rest was covered by an earlier poll
	    }
	    fresh = append(fresh, event)
	}

This is a bounded first line of defense, not the correctness
mechanism. Events that slip past it (after a restart, or when the
window outgrows the capacity) are still deduplicated downstream by
the processor's insert-if-absent gate and the JetStream duplicate
window.

# Thread Safety

All methods on both structures are safe for concurrent use. Cache
uses an RWMutex so concurrent Gets do not serialize; counters are
guarded separately so stat reads never block the data path.

# Statistics

GetStats returns a snapshot of the counters; HitRate derives a
percentage from it:

	stats := c.GetStats()
	log.Info().
	    Int64("hits", stats.Hits).
	    Int64("misses", stats.Misses).
	    Float64("hit_rate", c.HitRate()).
	    Msg("Query cache stats")

# Limitations

Kept deliberately simple for a single-instance deployment:

  - No maximum size; memory is bounded in practice by the TTL and the
    small space of distinct aggregation requests
  - No LRU eviction for the query cache (RecentSet has its own
    capacity bound)
  - No persistence; a restart starts cold and the first request per
    key pays the store scan again

# See Also

  - internal/api: handlers that cache aggregation responses
  - internal/query: the engine whose results are cached
  - internal/poller: feed polling loop that owns a RecentSet
*/
package cache
