// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for:
// - API endpoint latency and throughput
// - Object store operations and cache efficiency
// - Upstream (AniDB, TMDB) requests and circuit breakers
// - Title and mapping repository queries

var (
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
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}, // upstream fetches are slow
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
			Help: "Total number of requests rejected by the rate limiter",
		},
		[]string{"endpoint"},
	)

	// Object Store Metrics
	ObjectStoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "objstore_operations_total",
			Help: "Total number of object store operations",
		},
		[]string{"store", "operation", "result"}, // result: "ok", "not_found", "error"
	)

	ObjectStoreDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "objstore_operation_duration_seconds",
			Help:    "Duration of object store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"store", "operation"},
	)

	// Cached Store Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "objstore_cache_hits_total",
			Help: "Total number of fresh cache hits",
		},
		[]string{"cache"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "objstore_cache_misses_total",
			Help: "Total number of lookups that found nothing in cache or backend",
		},
		[]string{"cache"},
	)

	CacheBackendFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "objstore_cache_backend_fetches_total",
			Help: "Total number of objects refreshed from the backend",
		},
		[]string{"cache"},
	)

	CacheStaleServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "objstore_cache_stale_served_total",
			Help: "Total number of expired cache entries served because the backend failed",
		},
		[]string{"cache"},
	)

	// Memo Cache Metrics (parsed anime)
	MemoCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memo_cache_hits_total",
			Help: "Total number of parsed anime served from memory",
		},
		[]string{"repo"},
	)

	MemoCacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memo_cache_misses_total",
			Help: "Total number of parsed anime not found in memory",
		},
		[]string{"repo"},
	)

	// Upstream Metrics
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_requests_total",
			Help: "Total number of HTTP requests sent to upstream APIs",
		},
		[]string{"upstream", "method", "status_code"},
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_request_duration_seconds",
			Help:    "Duration of upstream HTTP requests in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"upstream"},
	)

	UpstreamThrottled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_throttled_total",
			Help: "Total number of upstream requests refused during the error cool-down",
		},
		[]string{"upstream"},
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

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Repository Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Duration of title and mapping repository queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_query_errors_total",
			Help: "Total number of repository query errors",
		},
		[]string{"operation", "table"},
	)

	TitlesReloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "anidb_titles_reloads_total",
			Help: "Total number of AniDB title dump reloads",
		},
		[]string{"result"},
	)

	TitlesLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "anidb_titles_loaded",
			Help: "Number of titles loaded from the last AniDB title dump",
		},
	)

	TitleMatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "title_matches_total",
			Help: "Total number of title match results by origin",
		},
		[]string{"origin"}, // "storage", "perfect", "candidate"
	)
)

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

// RecordRateLimitHit records a request rejected by the inbound rate limiter.
func RecordRateLimitHit(endpoint string) {
	APIRateLimitHits.WithLabelValues(endpoint).Inc()
}

// RecordObjectStoreOp records one Stat/Get/Put on a named store.
// result is "ok", "not_found" or "error".
func RecordObjectStoreOp(store, operation, result string, duration time.Duration) {
	ObjectStoreOperations.WithLabelValues(store, operation, result).Inc()
	ObjectStoreDuration.WithLabelValues(store, operation).Observe(duration.Seconds())
}

// RecordCacheHit records a fresh cache hit.
func RecordCacheHit(cache string) {
	CacheHits.WithLabelValues(cache).Inc()
}

// RecordCacheMiss records a lookup that found nothing at all.
func RecordCacheMiss(cache string) {
	CacheMisses.WithLabelValues(cache).Inc()
}

// RecordCacheBackendFetch records a successful refresh from the backend.
func RecordCacheBackendFetch(cache string) {
	CacheBackendFetches.WithLabelValues(cache).Inc()
}

// RecordCacheStale records an expired entry served as a fallback.
func RecordCacheStale(cache string) {
	CacheStaleServed.WithLabelValues(cache).Inc()
}

// RecordMemoLookup records a lookup in a parsed anime memo cache.
func RecordMemoLookup(repo string, hit bool) {
	if hit {
		MemoCacheHits.WithLabelValues(repo).Inc()
	} else {
		MemoCacheMisses.WithLabelValues(repo).Inc()
	}
}

// RecordUpstreamRequest records an HTTP request to an upstream API.
// statusCode is "0" when no response was received.
func RecordUpstreamRequest(upstream, method, statusCode string, duration time.Duration) {
	UpstreamRequests.WithLabelValues(upstream, method, statusCode).Inc()
	UpstreamDuration.WithLabelValues(upstream).Observe(duration.Seconds())
}

// RecordUpstreamThrottled records a request refused during the error cool-down.
func RecordUpstreamThrottled(upstream string) {
	UpstreamThrottled.WithLabelValues(upstream).Inc()
}

// RecordDBQuery records a repository query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordTitlesReload records an AniDB title dump reload and the number of titles it yielded.
func RecordTitlesReload(count int, err error) {
	if err != nil {
		TitlesReloads.WithLabelValues("error").Inc()
		return
	}
	TitlesReloads.WithLabelValues("success").Inc()
	TitlesLoaded.Set(float64(count))
}

// RecordTitleMatch records a title match result by its origin.
func RecordTitleMatch(origin string) {
	TitleMatches.WithLabelValues(origin).Inc()
}
