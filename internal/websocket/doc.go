// Chronographus - GitHub Events Analytics and Timeline Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

/*
Package websocket provides real-time delivery of processed feed events
to connected frontend clients.

It uses the gorilla/websocket library with a hub-client architecture for
efficient message broadcasting, plus an EventBridge that subscribes to
the processed-events topic and feeds the hub.

Key Components:

  - Hub: Central broker that manages client connections and broadcasts
  - Client: A single WebSocket connection with read/write goroutines
  - EventBridge: Stream consumer forwarding processed events to the hub
  - Message: Typed envelope for everything sent over the wire

Architecture:

The package implements a hub-and-spoke pattern fed by the event stream:

	┌─────────────┐     ┌──────────┐
	│ EventBridge │ ──→ │   Hub    │ ← Broadcasts to all clients
	└─────────────┘     └────┬─────┘
	                         │
	              ┌──────────┼──────────┐
	              │          │          │
	           Client1    Client2    Client3

Each client has two goroutines:
  - readPump: Reads from the socket, answers pings
  - writePump: Writes hub messages, sends protocol-level pings

Message Types:

  - event: A processed feed event (the live tail)
  - ping:  Client liveness probe
  - pong:  Reply to a client ping

A broadcast frame looks like:

	{"type": "event", "data": {"id": "...", "event_type": "PullRequestEvent", ...}}

Backpressure:

The hub never blocks on a client. Each client has a 256-message send
buffer; a client that falls behind has its buffer fill up and is
disconnected on the next broadcast. The hub's own broadcast buffer is
also bounded, and enqueuing drops the message when it is full. Live
data that cannot be delivered promptly is worthless, so dropping beats
queueing without bound.

Connection Lifecycle:

 1. Client connects via HTTP upgrade (see internal/api)
 2. Hub registers the client
 3. Client starts read/write goroutines
 4. Hub broadcasts messages to all clients
 5. Client disconnects (network error or explicit close)
 6. Hub unregisters the client and cleans up

Timeouts:

  - writeWait: 10 seconds per outbound message
  - pongWait: 60 seconds to hear a pong before the connection is dead
  - pingPeriod: 54 seconds between protocol pings (must be < pongWait)
  - maxMessageSize: 512 KB inbound limit

Supervision:

Hub.Serve and EventBridge.Serve both block until their context is
canceled and return the context error, so both run directly under a
suture supervisor. The hub closes every client on shutdown.
*/
package websocket
