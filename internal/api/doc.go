// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

/*
Package api provides the HTTP API of the anime metadata cache.

Routes:

	GET       /anidb/shows/{aid}          raw AniDB anime XML
	GET/HEAD  /anidb/images/{name}        AniDB image
	GET       /tmdb/shows/{lang}/{sid}    raw TMDB show JSON
	GET/HEAD  /tmdb/images/{name}         TMDB image
	GET       /anime/{id}                 merged anime (A1, T2, T2S1 or A1-T2S1)
	GET       /match/?title=...&db=anidb  candidate AniDB/TMDB mappings
	GET       /match/{id}                 stored mapping
	PUT       /match/{id}                 remember a mapping
	DELETE    /match/{id}                 forget a mapping
	GET       /healthz, /readyz, /metrics operations

Responses that carry a cached object set Last-Modified from the object's
modification time. Anime and mapping views carry hypermedia links in
"_links", built below the configured public base URL.

Errors use a JSON envelope:

	{"success": false, "error": {"code": "NOT_FOUND", "message": "...", "request_id": "..."}}

The middleware stack is built from go-chi: request ids and Prometheus
metrics from internal/middleware, CORS via go-chi/cors, per-IP rate limiting
via go-chi/httprate, and compression of the JSON and XML responses.
*/
package api
