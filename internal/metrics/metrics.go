// Chronographus - GitHub Events Analytics and Timeline Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Poll outcome label values.
const (
	PollOutcomeUpdated     = "updated"
	PollOutcomeNotModified = "not_modified"
	PollOutcomeRateLimited = "rate_limited"
	PollOutcomeError       = "error"
)

// Processing outcome label values.
const (
	ProcessOutcomeInserted    = "inserted"
	ProcessOutcomeDuplicate   = "duplicate"
	ProcessOutcomeParseFailed = "parse_failed"
	ProcessOutcomeError       = "error"
)

// Timeline cell status label values.
const (
	CellStatusOK      = "ok"
	CellStatusTimeout = "timeout"
	CellStatusError   = "error"
)

var (
	// Feed Poller Metrics
	FeedPollsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_polls_total",
			Help: "Total number of feed polls by outcome",
		},
		[]string{"outcome"}, // "updated", "not_modified", "rate_limited", "error"
	)

	FeedPollDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feed_poll_duration_seconds",
			Help:    "Duration of feed poll requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	FeedEventsFetched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_events_fetched_total",
			Help: "Total number of events returned by the feed",
		},
	)

	FeedEventsNew = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_events_new_total",
			Help: "Total number of events past the duplicate boundary",
		},
	)

	FeedRateLimitDeferrals = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_rate_limit_deferrals_total",
			Help: "Total number of polls deferred due to feed rate limiting",
		},
	)

	FeedLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "feed_last_success_timestamp",
			Help: "Unix timestamp of last successful poll",
		},
	)

	// Dispatch Metrics
	DispatchBatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dispatch_batch_size",
			Help:    "Number of events in dispatch sub-batches",
			Buckets: []float64{1, 2, 5, 10},
		},
	)

	DispatchEventsPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dispatch_events_published_total",
			Help: "Total number of events published to the message stream",
		},
	)

	DispatchEventsFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dispatch_events_failed_total",
			Help: "Total number of events that failed to publish",
		},
	)

	// Event Store Metrics
	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eventstore_operation_duration_seconds",
			Help:    "Duration of event store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // "put_if_absent", "count_range", "query_type", "increment", "cursor"
	)

	StoreOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventstore_operation_errors_total",
			Help: "Total number of event store operation errors",
		},
		[]string{"operation"},
	)

	StoreInsertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventstore_inserts_total",
			Help: "Total number of insert attempts by outcome",
		},
		[]string{"outcome"}, // "inserted", "duplicate"
	)

	StoreCounterConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eventstore_counter_conflicts_total",
			Help: "Total number of counter increment transaction conflicts (retried)",
		},
	)

	StoreCounterIncrementFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eventstore_counter_increment_failures_total",
			Help: "Total number of counter increments abandoned after retries",
		},
	)

	StoreGCRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventstore_gc_runs_total",
			Help: "Total number of value-log garbage collection runs",
		},
		[]string{"result"}, // "reclaimed", "noop", "error"
	)

	// Event Processing Metrics
	EventsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_processed_total",
			Help: "Total number of events processed by outcome",
		},
		[]string{"outcome"}, // "inserted", "duplicate", "parse_failed", "error"
	)

	EventProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "event_processing_duration_seconds",
			Help:    "Duration of single event processing in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// NATS Messaging Metrics
	NATSMessagesPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nats_messages_published_total",
			Help: "Total number of messages published to NATS",
		},
	)

	NATSMessagesConsumed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nats_messages_consumed_total",
			Help: "Total number of messages consumed from NATS",
		},
	)

	NATSMessagesParseFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nats_messages_parse_failed_total",
			Help: "Total number of messages that failed to parse",
		},
	)

	// Query Engine Metrics
	TimelineCellsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timeline_cells_total",
			Help: "Total number of timeline interval-type cells by status",
		},
		[]string{"status"}, // "ok", "timeout", "error"
	)

	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "query_duration_seconds",
			Help:    "Duration of windowed queries in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"query"}, // "event_counts", "pr_average", "timeline"
	)

	QueryDegraded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "query_degraded_total",
			Help: "Total number of queries answered with degraded (partial) results",
		},
		[]string{"query"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}, // Optimized for API latency
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	WSMessagesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_dropped_total",
			Help: "Total number of WebSocket messages dropped for slow clients",
		},
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_errors_total",
			Help: "Total number of WebSocket errors",
		},
		[]string{"error_type"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordPoll records a feed poll outcome and its duration
func RecordPoll(outcome string, duration time.Duration) {
	FeedPollsTotal.WithLabelValues(outcome).Inc()
	FeedPollDuration.Observe(duration.Seconds())
	if outcome == PollOutcomeUpdated || outcome == PollOutcomeNotModified {
		FeedLastSuccess.Set(float64(time.Now().Unix()))
	}
	if outcome == PollOutcomeRateLimited {
		FeedRateLimitDeferrals.Inc()
	}
}

// RecordPollEvents records feed fetch sizes: total events returned and
// events past the duplicate boundary
func RecordPollEvents(fetched, fresh int) {
	FeedEventsFetched.Add(float64(fetched))
	FeedEventsNew.Add(float64(fresh))
}

// RecordDispatch records dispatch publish results
func RecordDispatch(published, failed int) {
	DispatchEventsPublished.Add(float64(published))
	DispatchEventsFailed.Add(float64(failed))
}

// ObserveDispatchBatch records the size of a dispatch sub-batch
func ObserveDispatchBatch(size int) {
	DispatchBatchSize.Observe(float64(size))
}

// RecordStoreOperation records an event store operation metric
func RecordStoreOperation(operation string, duration time.Duration, err error) {
	StoreOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		StoreOperationErrors.WithLabelValues(operation).Inc()
	}
}

// RecordInsert records an insert-if-absent outcome
func RecordInsert(outcome string) {
	StoreInsertsTotal.WithLabelValues(outcome).Inc()
}

// RecordCounterConflict records a retried counter transaction conflict
func RecordCounterConflict() {
	StoreCounterConflicts.Inc()
}

// RecordCounterIncrementFailure records a counter increment abandoned after retries
func RecordCounterIncrementFailure() {
	StoreCounterIncrementFailures.Inc()
}

// RecordGCRun records a value-log garbage collection run
func RecordGCRun(result string) {
	StoreGCRuns.WithLabelValues(result).Inc()
}

// RecordEventProcessed records a processed event outcome and duration
func RecordEventProcessed(outcome string, duration time.Duration) {
	EventsProcessed.WithLabelValues(outcome).Inc()
	EventProcessingDuration.Observe(duration.Seconds())
}

// RecordNATSPublish records a message being published to NATS
func RecordNATSPublish() {
	NATSMessagesPublished.Inc()
}

// RecordNATSConsume records a message being consumed from NATS
func RecordNATSConsume() {
	NATSMessagesConsumed.Inc()
}

// RecordNATSParseFailed records a message that failed to parse
func RecordNATSParseFailed() {
	NATSMessagesParseFailed.Inc()
}

// RecordTimelineCell records a timeline cell computation status
func RecordTimelineCell(status string) {
	TimelineCellsTotal.WithLabelValues(status).Inc()
}

// RecordQuery records a windowed query metric
func RecordQuery(query string, duration time.Duration, degraded bool) {
	QueryDuration.WithLabelValues(query).Observe(duration.Seconds())
	if degraded {
		QueryDegraded.WithLabelValues(query).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
