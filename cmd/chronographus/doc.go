// Chronographus - GitHub Events Analytics and Timeline Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

/*
Package main is the entry point for the Chronographus server application.

Chronographus is a self-hosted analytics service for the GitHub public
events feed. It polls the feed with conditional requests, deduplicates
and persists events exactly once, maintains opened pull request counters
per repository, and serves windowed aggregations and a bucketed activity
timeline over HTTP, with a WebSocket tail of the live stream.

# Application Architecture

The server implements a layered architecture with Suture v4 process
supervision:

	RootSupervisor ("chronographus")
	├── DataSupervisor ("data-layer")
	│   └── Badger garbage collector ("store-gc")
	├── MessagingSupervisor ("messaging-layer")
	│   ├── Stream components ("event-stream": embedded NATS + Router)
	│   ├── WebSocket Hub ("websocket-hub")
	│   ├── Event Bridge ("event-bridge")
	│   └── Feed Poller ("feed-poller")
	└── APISupervisor ("api-layer")
	    └── HTTP Server ("http-server")

Component initialization order:

 1. Configuration: Koanf v2 with environment variables and config files
 2. Logging: zerolog with JSON/console output modes
 3. Event store: BadgerDB with event, counter, and cursor substores
 4. Query engine: windowed counts, PR averages, timeline buckets
 5. Stream: embedded NATS JetStream, Watermill Router, event processor
 6. Supervisor tree: Suture v4 process supervision
 7. HTTP server: Chi router with middleware stack

# Event Flow

	GitHub /events ──poll──▶ Poller ──dispatch──▶ github.events.raw
	                                                   │
	                                              Processor
	                                        (insert-if-absent gate,
	                                         opened-PR counters)
	                                                   │
	                                        github.events.processed
	                                                   │
	                                              Event Bridge
	                                                   │
	                                          WebSocket clients

The poller advances its cursor only after a dispatch run completes with
zero failures, so no event is silently skipped. The processor's
insert-if-absent gate makes redeliveries harmless: only the winning
write increments counters and fans out.

# Configuration

Configuration is loaded via Koanf v2 with layered sources (highest
priority wins):

	Priority: Environment variables > Config file > Defaults

Core environment variables:

	# Server
	SERVER_PORT=8080             # HTTP server port
	LOG_LEVEL=info               # trace, debug, info, warn, error
	LOG_FORMAT=json              # json or console

	# Feed polling
	POLLER_ENABLED=true          # Disable for query-only mode
	GITHUB_EVENTS_URL=https://api.github.com/events
	GITHUB_TOKEN=<token>         # Optional, raises the rate limit
	POLLER_INTERVAL=60s          # Fallback when the feed sends no X-Poll-Interval

	# Storage
	STORAGE_PATH=/data/chronographus
	STORAGE_GC_INTERVAL=10m

	# Messaging
	NATS_EMBEDDED=true           # In-process JetStream server
	NATS_STORE_DIR=/data/nats/jetstream
	NATS_RETENTION_DAYS=7

# Query-Only Mode

Chronographus can serve the query API against an existing store without
ingesting:

	export POLLER_ENABLED=false
	./chronographus

The stream and WebSocket tail stay up so a separate ingest instance can
share the broker.

# Signal Handling

The server handles graceful shutdown on SIGINT and SIGTERM:

 1. Stops accepting new HTTP connections
 2. Finishes the in-flight poll without advancing the cursor on failure
 3. Stops the Router and closes JetStream subscribers
 4. Flushes pending writes and closes the event store
 5. Reports any services that failed to stop

# HTTP API

	GET /api/v1/metrics/events/count?offset=10   Trailing event counts by type
	GET /api/v1/metrics/pr-average?repository=o/r  Average seconds between PRs
	GET /api/v1/visualization/timeline?hours=3   Bucketed opened-PR timeline
	GET /api/v1/events/live                      WebSocket live tail
	GET /health                                  Liveness with dependency detail
	GET /ready                                   Readiness (503 until usable)
	GET /metrics                                 Prometheus metrics

# Usage Examples

Development (console logs, temp storage):

	export LOG_FORMAT=console
	export STORAGE_PATH=/tmp/chronographus
	export NATS_STORE_DIR=/tmp/chronographus-nats
	go run ./cmd/chronographus

Production (authenticated polling):

	export GITHUB_TOKEN=$(cat /run/secrets/github-token)
	export STORAGE_PATH=/data/chronographus
	./chronographus

Docker:

	docker run -d \
	  -e GITHUB_TOKEN=<token> \
	  -v chronographus-data:/data \
	  -p 8080:8080 \
	  ghcr.io/tomtom215/chronographus

# See Also

  - internal/config: Configuration management
  - internal/supervisor: Process supervision
  - internal/poller: Feed polling and cursor handling
  - internal/processor: Stream consumption and counter maintenance
  - internal/query: Windowed aggregation engine
  - internal/api: HTTP handlers and routing
*/
package main
