// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

/*
Package config loads the AMC2 service configuration.

# Configuration Sources

Settings are layered with koanf, later layers overriding earlier ones:

 1. Built-in defaults (defaultConfig)
 2. An optional YAML file: CONFIG_PATH, ./config.yaml, ./config.yml or /etc/amc2/config.yaml
 3. Environment variables, after an optional .env file has been merged into the environment

A .env file never overrides variables that are already set in the process
environment.

# Environment Variables

Upstreams and caches:
  - SELF_BASE_URL: Base URL used for the _links of API responses (required)
  - ANIDB_TITLES_URL: AniDB titles dump (default: http://anidb.net/api/anime-titles.xml.gz)
  - ANIDB_TITLES_CACHE_URL: Object store URL caching the dump (required)
  - ANIDB_TITLES_CACHE_TIME: Refresh age of the dump (default: 2d)
  - ANIDB_API_URL: AniDB HTTP API (default: http://api.anidb.net:9001/httpapi)
  - ANIDB_API_CACHE_URL, ANIDB_API_CACHE_TIME (default: 2d)
  - ANIDB_IMAGE_URL: AniDB image CDN (default: https://cdn-eu.anidb.net/images/main)
  - ANIDB_IMAGE_CACHE_URL, ANIDB_IMAGE_CACHE_TIME (default: 100d)
  - TMDB_API_URL: TMDB API (default: https://api.themoviedb.org/3)
  - TMDB_API_KEY: TMDB API key (required)
  - TMDB_API_CACHE_URL, TMDB_API_CACHE_TIME (default: 1d)
  - TMDB_IMAGE_CACHE_URL, TMDB_IMAGE_CACHE_TIME (default: 100d)
  - ANIME_MAPPING_URL: Mapping repository URL (required)
  - S3_ACCESS_KEY, S3_SECRET_KEY: Credentials for s3:// URLs without user info

Server:
  - SERVER_HOST / HTTP_HOST: Bind address (default: 0.0.0.0)
  - SERVER_PORT / HTTP_PORT: Listen port (default: 8000)
  - SERVER_READ_TIMEOUT, SERVER_WRITE_TIMEOUT, SERVER_IDLE_TIMEOUT, SERVER_SHUTDOWN_TIMEOUT
  - CORS_ORIGINS: Comma-separated allowed origins (default: *)
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT

Caches and background work:
  - MEMO_SIZE, MEMO_TTL: Parsed anime memo per repository (default: 256, 1h)
  - TITLE_REFRESH_INTERVAL: Title warmer period, 0 disables it (default: 1h)

Logging:
  - LOGGING_LEVEL / LOG_LEVEL: DEBUG, INFO, WARN or ERROR (default: INFO)
  - LOG_FORMAT: json or console (default: json)
  - LOG_CALLER: Include caller file and line (default: false)

# Cache Times

Cache times accept a bare number of seconds or a sequence of "<n><unit>"
terms, case-insensitive and whitespace-tolerant:

	3600        one hour
	2d          two days
	1w 2d 3h    nine days and three hours
	6mo         180 days

Units are s, min, h, d, w, mo (30 days) and y (365 days).

# Usage

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal().Err(err).Msg("Failed to load configuration")
	}
*/
package config
