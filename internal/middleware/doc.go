// Chronographus - GitHub Events Analytics and Timeline Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

/*
Package middleware provides HTTP middleware for the query API.

Four components wrap the analytics endpoints: request ID propagation for
tracing, Prometheus request instrumentation, gzip compression, and an
in-process performance monitor with windowed percentiles.

The api package mounts these on its chi router through a small adapter,
since each middleware takes and returns http.HandlerFunc:

	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chiMiddleware(middleware.PrometheusMetrics))
	r.Use(chiMiddleware(middleware.Compression))

Request ID:

X-Request-ID from an upstream proxy is honored; otherwise a UUID v4 is
generated. The ID is echoed in the response header and placed in the
request context together with a fresh correlation ID, so handlers and
the logging package can stitch a request's log lines together.

	func handler(w http.ResponseWriter, r *http.Request) {
	    id := middleware.GetRequestID(r.Context())
	    ...
	}

Prometheus:

Each request updates the in-flight gauge, the per-endpoint counter
labeled with method/path/status, and the latency histogram. The scrape
surface itself is served by the api package at /metrics.

Compression:

Responses are gzipped when the client sends Accept-Encoding: gzip.
WebSocket upgrades are exempt because the hijacked connection bypasses
the ResponseWriter. Writers come from a sync.Pool.

Performance monitor:

	perfMon := middleware.NewPerformanceMonitor(1000)
	handler := perfMon.Middleware(mux)
	stats := perfMon.GetStats() // lifetime counts, windowed p50/p95/p99

Requests slower than one second are logged as they complete. The
monitor complements Prometheus rather than replacing it: Prometheus
answers fleet-level questions, the monitor answers "which endpoint is
slow right now" without a scrape round-trip.

All components are safe for concurrent use.
*/
package middleware
