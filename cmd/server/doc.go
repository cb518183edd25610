// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

/*
Package main is the entry point of the AMC2 server.

AMC2 caches anime metadata from AniDB and TMDB, merges both sources into one
view per anime, and matches AniDB titles to TMDB seasons. Every upstream is
read through an object store cache:

	upstream (HTTP API)  ->  CachedStore  ->  cache store (file://, s3://, redis://, badger://, memory:)

# Application Architecture

	RootSupervisor ("amc2")
	├── DataSupervisor ("data-layer")
	│   └── TitleRefreshService (AniDB title dump)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService (port 8000)

Startup order:

 1. Configuration: .env file, config.yaml and environment via koanf
 2. Logging: zerolog with the configured level and format
 3. Stores: one cached, instrumented store per upstream
 4. Repositories: titles (DuckDB), anime (memoized), mappings
 5. HTTP: chi router with request ids, metrics, CORS and rate limiting
 6. Supervision: suture tree until SIGINT or SIGTERM

# Configuration

Required environment variables:

	SELF_BASE_URL            public URL used in response links
	ANIDB_TITLES_CACHE_URL   cache of the AniDB title dump
	ANIDB_API_CACHE_URL      cache of the AniDB anime XML
	ANIDB_IMAGE_CACHE_URL    cache of the AniDB images
	TMDB_API_KEY             TMDB API key
	TMDB_API_CACHE_URL       cache of the TMDB show JSON
	TMDB_IMAGE_CACHE_URL     cache of the TMDB images
	ANIME_MAPPING_URL        mapping repository (duckdb:, postgres:, or a JSON document URL)

See internal/config for the optional settings.

# Example Usage

	export SELF_BASE_URL=http://localhost:8000
	export ANIDB_TITLES_CACHE_URL=file:///var/cache/amc2/anidb/titles
	export ANIDB_API_CACHE_URL=file:///var/cache/amc2/anidb/api
	export ANIDB_IMAGE_CACHE_URL=file:///var/cache/amc2/anidb/images
	export TMDB_API_KEY=your-api-key
	export TMDB_API_CACHE_URL=file:///var/cache/amc2/tmdb/api
	export TMDB_IMAGE_CACHE_URL=file:///var/cache/amc2/tmdb/images
	export ANIME_MAPPING_URL=duckdb:///var/lib/amc2/mapping.duckdb
	./amc2
*/
package main
