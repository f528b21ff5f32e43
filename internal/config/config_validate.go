// Chronographus - GitHub Events Analytics and Timeline Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validatePoller(); err != nil {
		return err
	}

	if err := c.validateNATS(); err != nil {
		return err
	}

	if err := c.validateStorage(); err != nil {
		return err
	}

	if err := c.validateQuery(); err != nil {
		return err
	}

	if err := c.validateServer(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validatePoller validates feed polling configuration (only if enabled)
func (c *Config) validatePoller() error {
	if !c.Poller.Enabled {
		return nil
	}

	if c.Poller.FeedURL == "" {
		return fmt.Errorf("GITHUB_EVENTS_URL is required when POLLER_ENABLED=true")
	}
	if err := validateHTTPURL(c.Poller.FeedURL, "GITHUB_EVENTS_URL"); err != nil {
		return fmt.Errorf("GITHUB_EVENTS_URL is invalid: %w", err)
	}
	if c.Poller.UserAgent == "" {
		return fmt.Errorf("POLLER_USER_AGENT must not be empty (the feed rejects requests without one)")
	}
	if c.Poller.PerPage < 1 || c.Poller.PerPage > 100 {
		return fmt.Errorf("POLLER_PER_PAGE must be between 1 and 100, got: %d", c.Poller.PerPage)
	}
	if c.Poller.SeenCapacity < c.Poller.PerPage {
		return fmt.Errorf("POLLER_SEEN_CAPACITY (%d) must be at least POLLER_PER_PAGE (%d) or a full page of known events goes unrecognized",
			c.Poller.SeenCapacity, c.Poller.PerPage)
	}
	if c.Poller.BatchSize < 1 {
		return fmt.Errorf("POLLER_BATCH_SIZE must be positive, got: %d", c.Poller.BatchSize)
	}
	if c.Poller.Interval <= 0 {
		return fmt.Errorf("POLLER_INTERVAL must be positive, got: %v", c.Poller.Interval)
	}
	if c.Poller.RequestTimeout <= 0 {
		return fmt.Errorf("POLLER_REQUEST_TIMEOUT must be positive, got: %v", c.Poller.RequestTimeout)
	}
	return nil
}

// validateNATS validates messaging configuration
func (c *Config) validateNATS() error {
	if c.NATS.URL == "" {
		return fmt.Errorf("NATS_URL is required")
	}
	if err := validateNATSURL(c.NATS.URL); err != nil {
		return fmt.Errorf("NATS_URL is invalid: %w", err)
	}
	if c.NATS.EmbeddedServer && c.NATS.StoreDir == "" {
		return fmt.Errorf("NATS_STORE_DIR is required when NATS_EMBEDDED=true")
	}
	if c.NATS.SubscribersCount < 1 {
		return fmt.Errorf("NATS_SUBSCRIBERS must be at least 1, got: %d", c.NATS.SubscribersCount)
	}
	if c.NATS.DurableName == "" {
		return fmt.Errorf("NATS_DURABLE_NAME must not be empty")
	}
	if c.NATS.RouterRetryCount < 0 {
		return fmt.Errorf("NATS_ROUTER_RETRY_COUNT must not be negative, got: %d", c.NATS.RouterRetryCount)
	}
	if c.NATS.RouterPoisonQueueEnabled && c.NATS.RouterPoisonQueueTopic == "" {
		return fmt.Errorf("NATS_ROUTER_POISON_TOPIC is required when NATS_ROUTER_POISON_ENABLED=true")
	}
	return nil
}

// validateStorage validates event store configuration
func (c *Config) validateStorage() error {
	if !c.Storage.InMemory && c.Storage.Path == "" {
		return fmt.Errorf("BADGER_PATH is required unless BADGER_IN_MEMORY=true")
	}
	if c.Storage.GCDiscardRatio <= 0 || c.Storage.GCDiscardRatio >= 1 {
		return fmt.Errorf("BADGER_GC_DISCARD_RATIO must be between 0 and 1 exclusive, got: %v", c.Storage.GCDiscardRatio)
	}
	return nil
}

// validateQuery validates aggregation engine configuration
func (c *Config) validateQuery() error {
	if c.Query.TimelineWorkers < 1 {
		return fmt.Errorf("QUERY_TIMELINE_WORKERS must be at least 1, got: %d", c.Query.TimelineWorkers)
	}
	if c.Query.CellTimeout <= 0 {
		return fmt.Errorf("QUERY_CELL_TIMEOUT must be positive, got: %v", c.Query.CellTimeout)
	}
	if c.Query.RequestTimeout < c.Query.CellTimeout {
		return fmt.Errorf("QUERY_REQUEST_TIMEOUT (%v) must be at least QUERY_CELL_TIMEOUT (%v)",
			c.Query.RequestTimeout, c.Query.CellTimeout)
	}
	return nil
}

// validateServer validates HTTP server configuration
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got: %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got: %v", c.Server.Timeout)
	}
	return nil
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	validLevels := map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true}
	level := strings.ToLower(c.Logging.Level)
	if !validLevels[level] {
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error; got: %s", c.Logging.Level)
	}

	format := strings.ToLower(c.Logging.Format)
	if format != "json" && format != "console" {
		return fmt.Errorf("LOG_FORMAT must be json or console, got: %s", c.Logging.Format)
	}
	return nil
}

// validateHTTPURL validates that a URL is properly formatted for HTTP/HTTPS services.
func validateHTTPURL(rawURL, fieldName string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %s", fieldName, parsedURL.Scheme)
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("%s host is required", fieldName)
	}

	return nil
}

// validateNATSURL validates that the NATS URL is properly formatted
// Supports: nats://, tls://, and ws:// schemes with IP addresses/hostnames and optional ports
func validateNATSURL(rawURL string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}

	validSchemes := map[string]bool{"nats": true, "tls": true, "ws": true, "wss": true}
	if !validSchemes[parsedURL.Scheme] {
		return fmt.Errorf("scheme must be nats, tls, ws, or wss, got: %s", parsedURL.Scheme)
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("host is required (e.g., localhost:4222, 192.168.1.100:4222, nats.example.com)")
	}

	return nil
}
