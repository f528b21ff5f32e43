// Chronographus - GitHub Events Analytics and Timeline Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

// Package config provides centralized configuration loaded with Koanf v2.
//
// Configuration Loading Order:
//  1. Defaults: Built-in sensible defaults for all settings
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any setting
//
// Config is immutable after Load() and safe for concurrent read access.
package config

import (
	"time"
)

// Config holds all application configuration loaded from environment
// variables and config files.
//
// Configuration Categories:
//
//  1. Ingestion:
//     - Poller: GitHub events feed polling (URL, token, cadence, dedup window)
//
//  2. Infrastructure:
//     - NATS: Embedded JetStream + Watermill router settings
//     - Storage: BadgerDB event store configuration
//
//  3. Query & API:
//     - Query: Windowed aggregation worker pool and timeouts
//     - Server: HTTP server configuration (port, host, timeout)
//     - API: Rate limiting and CORS
//
//  4. Observability:
//     - Logging: Log levels and output formats
//
// Example - Load configuration from environment:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal("Failed to load config:", err)
//	}
//	// cfg.Poller.FeedURL, cfg.Storage.Path, etc. are now populated
type Config struct {
	Poller  PollerConfig  `koanf:"poller"`
	NATS    NATSConfig    `koanf:"nats"`
	Storage StorageConfig `koanf:"storage"`
	Query   QueryConfig   `koanf:"query"`
	Server  ServerConfig  `koanf:"server"`
	API     APIConfig     `koanf:"api"`
	Logging LoggingConfig `koanf:"logging"`
}

// PollerConfig holds GitHub events feed polling settings.
//
// Environment Variables:
//   - POLLER_ENABLED: Enable the feed poller (default: true)
//   - GITHUB_EVENTS_URL: Feed endpoint (default: https://api.github.com/events)
//   - GITHUB_TOKEN: Optional bearer token for higher rate limits
//   - POLLER_USER_AGENT: User-Agent header sent to the feed
//   - POLLER_PER_PAGE: Events requested per poll, max 100
//   - POLLER_SEEN_CAPACITY: Size of the known-event-ID window
//   - POLLER_BATCH_SIZE: Events per dispatch sub-batch
//   - POLLER_INTERVAL: Fallback poll interval when the feed sends none
//   - POLLER_REQUEST_TIMEOUT: Per-request HTTP timeout
type PollerConfig struct {
	// Enabled controls whether the poller service starts. Disable to run
	// the query API against an existing store without ingesting.
	Enabled bool `koanf:"enabled"`

	// FeedURL is the public events endpoint.
	FeedURL string `koanf:"feed_url"`

	// Token is an optional GitHub bearer token. Unauthenticated polling
	// works but is limited to 60 requests/hour.
	Token string `koanf:"token"`

	// UserAgent identifies this service to the feed. GitHub rejects
	// requests without one.
	UserAgent string `koanf:"user_agent"`

	// PerPage is the page size requested from the feed (max 100).
	PerPage int `koanf:"per_page"`

	// SeenCapacity is how many recent event IDs are retained for the
	// duplicate boundary. Matches the feed page size so a full page of
	// already-seen events is always recognized.
	SeenCapacity int `koanf:"seen_capacity"`

	// BatchSize is the number of events per dispatch sub-batch.
	BatchSize int `koanf:"batch_size"`

	// Interval is the fallback poll cadence when the feed does not
	// recommend one via X-Poll-Interval.
	Interval time.Duration `koanf:"interval"`

	// RequestTimeout bounds each feed HTTP request.
	RequestTimeout time.Duration `koanf:"request_timeout"`

	// MaxResponseBytes caps the feed response body read.
	MaxResponseBytes int64 `koanf:"max_response_bytes"`
}

// NATSConfig holds messaging settings for the embedded JetStream server
// and the Watermill router that moves events between pipeline stages.
type NATSConfig struct {
	// URL is the NATS server connection URL.
	URL string `koanf:"url"`

	// EmbeddedServer enables the in-process NATS server.
	// If false, expects an external NATS server at URL.
	EmbeddedServer bool `koanf:"embedded_server"`

	// StoreDir is the JetStream storage directory.
	StoreDir string `koanf:"store_dir"`

	// MaxMemory is the maximum memory for JetStream in bytes.
	MaxMemory int64 `koanf:"max_memory"`

	// MaxStore is the maximum disk storage for JetStream in bytes.
	MaxStore int64 `koanf:"max_store"`

	// StreamRetentionDays is how long to keep events in the stream.
	StreamRetentionDays int `koanf:"stream_retention_days"`

	// SubscribersCount is the number of concurrent message processors.
	SubscribersCount int `koanf:"subscribers_count"`

	// DurableName is the consumer durable name for message tracking.
	DurableName string `koanf:"durable_name"`

	// QueueGroup load-balances processing across subscribers.
	QueueGroup string `koanf:"queue_group"`

	// Router middleware settings (Watermill).
	RouterRetryCount           int           `koanf:"router_retry_count"`
	RouterRetryInitialInterval time.Duration `koanf:"router_retry_initial_interval"`
	RouterPoisonQueueEnabled   bool          `koanf:"router_poison_queue_enabled"`
	RouterPoisonQueueTopic     string        `koanf:"router_poison_queue_topic"`
	RouterCloseTimeout         time.Duration `koanf:"router_close_timeout"`
}

// StorageConfig holds BadgerDB event store settings.
type StorageConfig struct {
	// Path is the BadgerDB directory.
	Path string `koanf:"path"`

	// InMemory runs Badger without disk persistence. Used by tests.
	InMemory bool `koanf:"in_memory"`

	// GCInterval is how often value-log garbage collection runs.
	GCInterval time.Duration `koanf:"gc_interval"`

	// GCDiscardRatio is the Badger RunValueLogGC threshold.
	GCDiscardRatio float64 `koanf:"gc_discard_ratio"`
}

// QueryConfig holds windowed aggregation settings.
type QueryConfig struct {
	// TimelineWorkers bounds concurrent timeline cell computations.
	TimelineWorkers int `koanf:"timeline_workers"`

	// CellTimeout bounds a single interval-count computation.
	CellTimeout time.Duration `koanf:"cell_timeout"`

	// RequestTimeout bounds a whole timeline request.
	RequestTimeout time.Duration `koanf:"request_timeout"`

	// MinRepoOpenedCount is the threshold for the repository suggestion
	// list returned when no repo parameter is given.
	MinRepoOpenedCount uint64 `koanf:"min_repo_opened_count"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port    int           `koanf:"port"`
	Host    string        `koanf:"host"`
	Timeout time.Duration `koanf:"timeout"`
}

// APIConfig holds rate limiting and CORS settings for the HTTP API.
type APIConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// JSON is recommended for production (structured, machine-parseable).
	// Console is human-readable for development.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Adds slight performance overhead.
	// Default: false
	Caller bool `koanf:"caller"`
}

// Load is the single entry point for configuration loading.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
