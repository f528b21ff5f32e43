// Chronographus - GitHub Events Analytics and Timeline Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

// Package api provides the HTTP surface: the versioned metrics and
// visualization endpoints, the live WebSocket feed, health probes, and
// the Prometheus scrape endpoint, all routed through Chi.
//
// Layout:
//   - handlers.go: Handler struct, constructor, WebSocket upgrade
//   - handlers_helpers.go: response envelope, ETag, param parsing
//   - handlers_stats.go: event counts and PR inter-arrival endpoints
//   - handlers_timeline.go: bucketed timeline endpoint
//   - handlers_health.go: health and readiness probes
//   - requests.go: validated request parameter structs
//   - chi_middleware.go: CORS, rate limiting, request logging factories
//   - chi_router.go: Router assembly and the full route table
//
// Every payload travels in the models.APIResponse envelope. Successful
// responses carry query timing and a degraded flag in the metadata;
// errors carry a structured code and message. Responses are marshaled
// once and tagged with an FNV-1a ETag so clients and proxies can
// revalidate cheaply.
package api
