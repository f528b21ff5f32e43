// Chronographus - GitHub Events Analytics and Timeline Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

/*
Package services provides suture.Service wrappers for Chronographus components.

This package adapts components with non-Serve lifecycles to the suture v4
supervision model, translating their native patterns (Start/Shutdown,
ListenAndServe) into suture's context-aware Serve pattern.

# Overview

Each wrapper implements the suture.Service interface:

	type Service interface {
	    Serve(ctx context.Context) error
	}

The wrappers handle:
  - Lifecycle translation (Start/Shutdown to Serve pattern)
  - Graceful shutdown via context cancellation
  - Error propagation for supervisor restart decisions
  - Service identification via fmt.Stringer

Most application components do not need a wrapper: poller.Poller,
websocket.Hub, websocket.EventBridge, and store.GarbageCollector all
implement Serve(ctx) natively and are added to the tree directly.

# Available Services

HTTP Server (HTTPServerService):
  - Wraps *http.Server with graceful shutdown
  - Converts ListenAndServe pattern to Serve
  - Configurable shutdown timeout for draining connections

Stream Components (StreamService):
  - Wraps the JetStream bootstrap (embedded server, router, subscribers)
  - Start failures propagate so the supervisor retries with backoff
  - Shutdown drains the Watermill router before closing connections

# Usage Example

Creating and registering services:

	import (
	    "net/http"
	    "time"

	    "github.com/tomtom215/chronographus/internal/supervisor"
	    "github.com/tomtom215/chronographus/internal/supervisor/services"
	)

	func setupSupervisor(server *http.Server, stream services.StreamRunner) {
	    tree, _ := supervisor.NewSupervisorTree(logger, config)

	    // HTTP server with 10s shutdown timeout
	    httpSvc := services.NewHTTPServerService(server, 10*time.Second)
	    tree.AddAPIService(httpSvc)

	    // Stream components
	    streamSvc := services.NewStreamService(stream)
	    tree.AddMessagingService(streamSvc)

	    // Start supervision
	    tree.Serve(ctx)
	}

# Lifecycle Patterns

Start/Shutdown Pattern (StreamService):

	type StreamRunner interface {
	    Start(ctx context.Context) error
	    Shutdown(ctx context.Context)
	    IsRunning() bool
	}

	// Wrapped as:
	func (s *StreamService) Serve(ctx context.Context) error {
	    if err := s.components.Start(ctx); err != nil {
	        return err
	    }
	    <-ctx.Done()
	    s.components.Shutdown(shutdownCtx)
	    return ctx.Err()
	}

ListenAndServe Pattern (HTTPServerService):

	type HTTPServer interface {
	    ListenAndServe() error
	    Shutdown(ctx context.Context) error
	}

	// Wrapped as:
	func (h *HTTPServerService) Serve(ctx context.Context) error {
	    go h.server.ListenAndServe()
	    <-ctx.Done()
	    return h.server.Shutdown(shutdownCtx)
	}

# Error Handling

Return values determine supervisor behavior:

	nil         -> Service stopped cleanly, will not restart
	error       -> Service crashed, supervisor will restart
	ctx.Err()   -> Shutdown requested, normal termination

# Service Identification

All services implement fmt.Stringer for logging:

	func (h *HTTPServerService) String() string {
	    return "http-server"
	}

Suture uses this for log messages:

	INFO http-server: starting
	INFO http-server: stopped
	ERROR http-server: restarting after failure

# Thread Safety

All service wrappers are safe for concurrent use:
  - Context cancellation is handled atomically
  - Multiple Serve calls are not supported (undefined behavior)

# See Also

  - internal/supervisor: SupervisorTree that manages these services
  - github.com/thejerf/suture/v4: Underlying supervision library
  - internal/eventstream: Router and embedded server implementation
*/
package services
