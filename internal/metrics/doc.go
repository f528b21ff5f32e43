// Chronographus - GitHub Events Analytics and Timeline Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

// Package metrics provides Prometheus instrumentation for all pipeline stages.
//
// Metrics are registered via promauto at package load and exposed through
// the /metrics endpoint. Metric groups:
//
//   - feed_*: poll outcomes, feed fetch sizes, rate-limit deferrals
//   - dispatch_*: events published to the message stream per dispatch
//   - eventstore_*: BadgerDB operation latency, insert outcomes, counter
//     conflicts, value-log GC runs
//   - events_processed_*: processor outcomes (inserted, duplicate, failed)
//   - timeline_* / query_*: windowed aggregation cell status and latency
//   - api_*: HTTP request counts, latency, in-flight gauge, rate-limit hits
//   - websocket_*: live feed connection and message counters
//   - circuit_breaker_*: breaker state and request outcomes
//   - app_*: build info and uptime
//
// Recording helpers (RecordPoll, RecordEventProcessed, ...) keep label
// cardinality fixed; callers never pass free-form strings as label values
// except the bounded operation/endpoint names.
package metrics
