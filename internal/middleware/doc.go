// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

/*
Package middleware provides the HTTP middleware shared by the API router.

Both middlewares have the chi signature func(http.Handler) http.Handler:

  - RequestID: reads or generates X-Request-ID and stores it, together with a
    fresh correlation id, in the request context for logging.Ctx.
  - PrometheusMetrics: records api_requests_total, api_request_duration_seconds
    and api_active_requests. The endpoint label is the chi route pattern
    (/anime/{id}), not the raw path, to keep label cardinality bounded.

Usage:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
*/
package middleware
