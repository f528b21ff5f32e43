// Chronographus - GitHub Events Analytics and Timeline Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

// Package eventstream provides the NATS JetStream transport that moves
// GitHub events between pipeline stages, built on Watermill.
//
// All events flow through the GITHUB_EVENTS stream before reaching the
// Badger store:
//
//	┌─────────────┐
//	│ Feed Poller │  ← conditional GET against the public events feed
//	└──────┬──────┘
//	       │ github.events.raw
//	       ▼
//	┌─────────────────────┐
//	│   NATS JetStream    │  ← durable event log (GITHUB_EVENTS)
//	│   (github.events.>) │
//	└─────────┬───────────┘
//	          │
//	     ┌────┴─────────────────┐
//	     ▼                      ▼
//	┌───────────┐        ┌────────────┐
//	│ Processor │        │ WebSocket  │  ← github.events.processed
//	│ (Badger)  │        │   Bridge   │
//	└───────────┘        └────────────┘
//
// # Components
//
//   - EmbeddedServer: in-process NATS server with JetStream, so a single
//     binary needs no external broker
//   - StreamInitializer: idempotent stream creation/update before any
//     publisher or subscriber starts
//   - Publisher: Watermill JetStream publisher with reconnect handling,
//     optional circuit breaker, and Nats-Msg-Id deduplication
//   - Subscriber: durable queue-group consumer bound to the stream
//   - Router: Watermill router with recovery, retry, and poison queue
//     middleware shared by all consumers
//
// # Delivery Semantics
//
// The broker deduplicates publishes by Nats-Msg-Id (the GitHub event ID)
// within the stream's duplicate window, and the store's insert-if-absent
// gate makes redelivered messages harmless. Together these give
// effectively-once counting on top of at-least-once delivery.
package eventstream
