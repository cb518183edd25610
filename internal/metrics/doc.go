// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered with the default registry through promauto and
exposed at /metrics in Prometheus text format:

	curl http://localhost:8000/metrics

# Available Metrics

API Metrics:
  - api_requests_total: Total API requests (counter)
    Labels: method, endpoint, status_code
  - api_request_duration_seconds: Request latency (histogram)
  - api_active_requests: Requests in flight (gauge)
  - api_rate_limit_hits_total: Requests rejected by httprate (counter)

Object Store Metrics:
  - objstore_operations_total: Stat/Get/Put per store (counter)
    Labels: store, operation, result
  - objstore_cache_hits_total, objstore_cache_misses_total,
    objstore_cache_backend_fetches_total, objstore_cache_stale_served_total
    Labels: cache

Upstream Metrics:
  - upstream_requests_total: Requests to AniDB and TMDB (counter)
    Labels: upstream, method, status_code
  - upstream_throttled_total: Requests refused during the error cool-down
  - circuit_breaker_state: 0=closed, 1=half-open, 2=open (gauge)
  - circuit_breaker_requests_total, circuit_breaker_state_transitions_total

Repository Metrics:
  - db_query_duration_seconds, db_query_errors_total
    Labels: operation, table
  - anidb_titles_reloads_total, anidb_titles_loaded
  - title_matches_total
    Labels: origin (storage, perfect, candidate)

# Usage

	start := time.Now()
	rows, err := db.QueryContext(ctx, query, args...)
	metrics.RecordDBQuery("select", "titles", time.Since(start), err)
*/
package metrics
