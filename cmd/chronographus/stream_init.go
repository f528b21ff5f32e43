// Chronographus - GitHub Events Analytics and Timeline Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/tomtom215/chronographus/internal/config"
	"github.com/tomtom215/chronographus/internal/eventstream"
	"github.com/tomtom215/chronographus/internal/logging"
	"github.com/tomtom215/chronographus/internal/processor"
	"github.com/tomtom215/chronographus/internal/store"
	ws "github.com/tomtom215/chronographus/internal/websocket"
)

// StreamComponents holds all JetStream-related components for lifecycle
// management. It satisfies services.StreamRunner, so the supervisor tree
// starts and stops the whole messaging pipeline as one unit.
type StreamComponents struct {
	server            *eventstream.EmbeddedServer
	natsConn          *natsgo.Conn
	streamInitializer *eventstream.StreamInitializer
	publisher         *eventstream.Publisher

	// Router-based message processing
	router    *eventstream.Router
	processor *processor.Handler

	// Subscribers: one durable consumer group for the processor, one for
	// the live WebSocket bridge
	processorSubscriber *eventstream.Subscriber
	bridgeSubscriber    *eventstream.Subscriber

	// Live fan-out of processed events to WebSocket clients. Supervised
	// separately; created here because it shares the subscriber lifecycle.
	bridge *ws.EventBridge

	shutdownComplete chan struct{}
	mu               sync.Mutex
	running          bool
}

// InitStream initializes the embedded JetStream server, the Watermill
// router, and the processing pipeline.
//
// Parameters:
//   - cfg: Application configuration with NATS settings
//   - events: Event store backing the idempotent insert gate
//   - counters: Counter store for opened-PR aggregates
//   - wsHub: WebSocket hub receiving the live event tail
//
// The returned components are not started; add them to the supervisor
// tree via AddStreamToSupervisor, which calls Start when the tree runs.
func InitStream(cfg *config.Config, events *store.EventStore, counters *store.CounterStore, wsHub *ws.Hub) (*StreamComponents, error) {
	logging.Info().Msg("Initializing event stream processing...")

	components := &StreamComponents{
		shutdownComplete: make(chan struct{}),
	}

	var natsURL string

	// Step 1: Initialize embedded NATS server if enabled
	if cfg.NATS.EmbeddedServer {
		serverCfg := eventstream.ServerConfig{
			Host:              "127.0.0.1",
			Port:              4222,
			StoreDir:          cfg.NATS.StoreDir,
			JetStreamMaxMem:   cfg.NATS.MaxMemory,
			JetStreamMaxStore: cfg.NATS.MaxStore,
		}

		server, err := eventstream.NewEmbeddedServer(&serverCfg)
		if err != nil {
			return nil, err
		}
		components.server = server
		natsURL = server.ClientURL()
		logging.Info().Str("url", natsURL).Msg("Embedded NATS server started")
	} else {
		natsURL = cfg.NATS.URL
		logging.Info().Str("url", natsURL).Msg("Using external NATS server")
	}

	// Step 2: Connect to NATS for health checks and stream provisioning
	nc, err := natsgo.Connect(natsURL,
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2*time.Second),
	)
	if err != nil {
		components.Shutdown(context.Background())
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	components.natsConn = nc
	logging.Info().Msg("NATS connection established")

	// Step 3: Initialize JetStream and ensure the stream exists
	js, err := jetstream.New(nc)
	if err != nil {
		components.Shutdown(context.Background())
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	streamCfg := eventstream.DefaultStreamConfig()
	streamCfg.MaxAge = time.Duration(cfg.NATS.StreamRetentionDays) * 24 * time.Hour

	streamInitializer, err := eventstream.NewStreamInitializer(js, &streamCfg)
	if err != nil {
		components.Shutdown(context.Background())
		return nil, fmt.Errorf("create stream initializer: %w", err)
	}
	components.streamInitializer = streamInitializer

	ctx := context.Background()
	stream, err := streamInitializer.EnsureStream(ctx)
	if err != nil {
		components.Shutdown(context.Background())
		return nil, fmt.Errorf("ensure stream exists: %w", err)
	}
	streamInfo := stream.CachedInfo()
	logging.Info().
		Str("name", streamInfo.Config.Name).
		Strs("subjects", streamInfo.Config.Subjects).
		Dur("max_age", streamInfo.Config.MaxAge).
		Msg("JetStream stream ready")

	// Step 4: Create publisher with circuit breaker protection
	publisherCfg := eventstream.DefaultPublisherConfig(natsURL)
	publisher, err := eventstream.NewPublisher(publisherCfg, nil)
	if err != nil {
		components.Shutdown(context.Background())
		return nil, err
	}
	publisher.SetCircuitBreaker(eventstream.NewCircuitBreaker(
		eventstream.DefaultCircuitBreakerConfig("event-publisher")))
	components.publisher = publisher
	logging.Info().Msg("Event publisher created")

	// Step 5: Create Router with middleware from config
	routerCfg := eventstream.RouterConfig{
		CloseTimeout:         cfg.NATS.RouterCloseTimeout,
		RetryMaxRetries:      cfg.NATS.RouterRetryCount,
		RetryInitialInterval: cfg.NATS.RouterRetryInitialInterval,
		RetryMaxInterval:     cfg.NATS.RouterRetryInitialInterval * 10, // 10x initial
		RetryMultiplier:      2.0,
	}
	if cfg.NATS.RouterPoisonQueueEnabled {
		routerCfg.PoisonQueueTopic = cfg.NATS.RouterPoisonQueueTopic
	}

	router, err := eventstream.NewRouter(&routerCfg, publisher.WatermillPublisher(), nil)
	if err != nil {
		components.Shutdown(context.Background())
		return nil, fmt.Errorf("create router: %w", err)
	}
	components.router = router
	logging.Info().
		Int("retry", routerCfg.RetryMaxRetries).
		Bool("poison", cfg.NATS.RouterPoisonQueueEnabled).
		Msg("Watermill Router created")

	// Step 6: Create the processor handler and its subscriber
	proc, err := processor.New(events, counters, publisher, nil)
	if err != nil {
		components.Shutdown(context.Background())
		return nil, fmt.Errorf("create processor: %w", err)
	}
	components.processor = proc

	processorSubscriberCfg := eventstream.SubscriberConfig{
		URL:              natsURL,
		DurableName:      cfg.NATS.DurableName,
		QueueGroup:       cfg.NATS.QueueGroup,
		SubscribersCount: cfg.NATS.SubscribersCount,
		AckWaitTimeout:   30 * time.Second,
		MaxDeliver:       5,
		MaxAckPending:    1000,
		CloseTimeout:     30 * time.Second,
		MaxReconnects:    -1,
		ReconnectWait:    2 * time.Second,
		// Bind to the pre-created stream so the subscriber does not try
		// to auto-provision one from the topic name
		StreamName: streamCfg.Name,
	}
	processorSubscriber, err := eventstream.NewSubscriber(&processorSubscriberCfg, nil)
	if err != nil {
		components.Shutdown(context.Background())
		return nil, fmt.Errorf("create processor subscriber: %w", err)
	}
	components.processorSubscriber = processorSubscriber

	// Register the processor with the Router (no output publishing; the
	// handler publishes processed events itself after the insert gate)
	router.AddConsumerHandler(
		"event-processor",
		eventstream.TopicRawEvents,
		processorSubscriber,
		proc.Handle,
	)
	logging.Info().
		Int("subscribers", processorSubscriberCfg.SubscribersCount).
		Msg("Event processor registered with Router")

	// Step 7: Create the live bridge feeding the WebSocket hub
	bridgeSubscriberCfg := eventstream.SubscriberConfig{
		URL:              natsURL,
		DurableName:      cfg.NATS.DurableName + "-bridge",
		QueueGroup:       cfg.NATS.QueueGroup + "-bridge",
		SubscribersCount: 1,
		AckWaitTimeout:   30 * time.Second,
		MaxDeliver:       3,
		MaxAckPending:    100,
		CloseTimeout:     10 * time.Second,
		MaxReconnects:    -1,
		ReconnectWait:    2 * time.Second,
		StreamName:       streamCfg.Name,
	}
	bridgeSubscriber, err := eventstream.NewSubscriber(&bridgeSubscriberCfg, nil)
	if err != nil {
		components.Shutdown(context.Background())
		return nil, fmt.Errorf("create bridge subscriber: %w", err)
	}
	components.bridgeSubscriber = bridgeSubscriber

	bridge, err := ws.NewEventBridge(wsHub, bridgeSubscriber)
	if err != nil {
		components.Shutdown(context.Background())
		return nil, fmt.Errorf("create event bridge: %w", err)
	}
	components.bridge = bridge
	logging.Info().Msg("WebSocket event bridge created")

	components.mu.Lock()
	components.running = true
	components.mu.Unlock()

	logging.Info().Msg("Event stream processing initialized successfully")
	return components, nil
}

// Start begins the Router and all message processing.
// This should be called after InitStream; the supervisor tree calls it
// through the StreamService wrapper.
func (c *StreamComponents) Start(ctx context.Context) error {
	if c == nil {
		return nil
	}

	if c.router != nil {
		logging.Info().Msg("Starting Watermill Router...")
		running := c.router.RunAsync(ctx)
		select {
		case <-running:
			logging.Info().Msg("Watermill Router started successfully")
		case <-ctx.Done():
			return fmt.Errorf("context canceled while starting router: %w", ctx.Err())
		}
	}

	logging.Info().Msg("All stream components started")
	return nil
}

// Shutdown gracefully stops all stream components.
//
// Shutdown order matters for clean termination:
//  1. Stop Router first (stops the processor handler)
//  2. Close subscribers (Watermill JetStream subscribers)
//  3. Close publisher
//  4. Close NATS connection
//  5. Shutdown embedded server last
func (c *StreamComponents) Shutdown(ctx context.Context) {
	if c == nil {
		return
	}

	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	c.mu.Unlock()

	logging.Info().Msg("Shutting down stream components...")

	c.shutdownRouter()
	c.shutdownSubscribers()
	c.shutdownPublisher()
	c.shutdownConnection(ctx)

	close(c.shutdownComplete)
	logging.Info().Msg("Stream shutdown complete")
}

// shutdownRouter stops the Watermill Router.
func (c *StreamComponents) shutdownRouter() {
	if c.router == nil {
		return
	}
	if err := c.router.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing Router")
	}
	logging.Info().Msg("Watermill Router stopped")
}

// shutdownSubscribers closes all JetStream subscribers.
func (c *StreamComponents) shutdownSubscribers() {
	if c.processorSubscriber != nil {
		if err := c.processorSubscriber.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing processor subscriber")
		}
		logging.Info().Msg("Processor subscriber closed")
	}
	if c.bridgeSubscriber != nil {
		if err := c.bridgeSubscriber.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing bridge subscriber")
		}
		logging.Info().Msg("Bridge subscriber closed")
	}
}

// shutdownPublisher closes the event publisher.
func (c *StreamComponents) shutdownPublisher() {
	if c.publisher == nil {
		return
	}
	if err := c.publisher.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing publisher")
	}
	logging.Info().Msg("Publisher closed")
}

// shutdownConnection closes the NATS connection and embedded server.
func (c *StreamComponents) shutdownConnection(ctx context.Context) {
	if c.natsConn != nil {
		c.natsConn.Close()
		logging.Info().Msg("NATS connection closed")
	}
	if c.server != nil {
		if err := c.server.Shutdown(ctx); err != nil {
			logging.Error().Err(err).Msg("Error shutting down NATS server")
		}
		logging.Info().Msg("Embedded NATS server stopped")
	}
}

// IsRunning returns whether stream components are active.
func (c *StreamComponents) IsRunning() bool {
	if c == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Connected reports whether the NATS connection is currently usable.
// Wired into the API health endpoints as the queue connectivity probe.
func (c *StreamComponents) Connected() bool {
	if c == nil || c.natsConn == nil {
		return false
	}
	return c.natsConn.IsConnected()
}

// Publisher returns the event publisher for wiring to the dispatcher.
// Returns nil if the stream is not initialized.
func (c *StreamComponents) Publisher() *eventstream.Publisher {
	if c == nil {
		return nil
	}
	return c.publisher
}

// Bridge returns the WebSocket event bridge for supervisor wiring.
// Returns nil if the stream is not initialized.
func (c *StreamComponents) Bridge() *ws.EventBridge {
	if c == nil {
		return nil
	}
	return c.bridge
}

// ProcessorStats returns a snapshot of processor activity for logs.
func (c *StreamComponents) ProcessorStats() processor.Stats {
	if c == nil || c.processor == nil {
		return processor.Stats{}
	}
	return c.processor.Stats()
}
