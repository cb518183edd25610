// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/tomtom215/amc2/internal/logging"
)

// Validate checks that required configuration is present and valid, and
// resolves the cache times. Every problem is reported, not just the first.
func (c *Config) Validate() error {
	var errs []error

	errs = append(errs, c.validateRequired()...)
	errs = append(errs, c.validateURLs()...)
	errs = append(errs, c.resolveCacheTimes()...)
	errs = append(errs, c.validateServer()...)
	errs = append(errs, c.validateLogging()...)

	return errors.Join(errs...)
}

func (c *Config) validateRequired() []error {
	required := []struct {
		name  string
		value string
	}{
		{"SELF_BASE_URL", c.SelfBaseURL},
		{"ANIDB_TITLES_CACHE_URL", c.Anidb.TitlesCacheURL},
		{"ANIDB_API_CACHE_URL", c.Anidb.APICacheURL},
		{"ANIDB_IMAGE_CACHE_URL", c.Anidb.ImageCacheURL},
		{"TMDB_API_KEY", c.Tmdb.APIKey},
		{"TMDB_API_CACHE_URL", c.Tmdb.APICacheURL},
		{"TMDB_IMAGE_CACHE_URL", c.Tmdb.ImageCacheURL},
		{"ANIME_MAPPING_URL", c.Mapping.URL},
	}

	var errs []error
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs = append(errs, fmt.Errorf("%s is required", r.name))
		}
	}
	return errs
}

func (c *Config) validateURLs() []error {
	var errs []error
	if c.SelfBaseURL != "" {
		if err := validateHTTPURL(c.SelfBaseURL); err != nil {
			errs = append(errs, fmt.Errorf("SELF_BASE_URL is invalid: %w", err))
		}
	}

	// Upstreams are object store URLs (http, file, s3, ...) or plain paths.
	// The store factories reject schemes they do not serve.
	upstreams := []struct {
		name  string
		value string
	}{
		{"ANIDB_TITLES_URL", c.Anidb.TitlesURL},
		{"ANIDB_API_URL", c.Anidb.APIURL},
		{"ANIDB_IMAGE_URL", c.Anidb.ImageURL},
		{"TMDB_API_URL", c.Tmdb.APIURL},
	}
	for _, u := range upstreams {
		if u.value == "" {
			continue
		}
		if _, err := url.Parse(u.value); err != nil {
			errs = append(errs, fmt.Errorf("%s is invalid: %w", u.name, err))
		}
	}
	return errs
}

// validateHTTPURL validates that a URL is an absolute http(s) URL with a host.
// Paths are allowed, the upstream bases carry one.
func validateHTTPURL(rawURL string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got: %q", parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return errors.New("host is required")
	}
	return nil
}

func (c *Config) resolveCacheTimes() []error {
	times := []struct {
		name   string
		value  string
		target *time.Duration
	}{
		{"ANIDB_TITLES_CACHE_TIME", c.Anidb.TitlesCacheTime, &c.Anidb.TitlesTTL},
		{"ANIDB_API_CACHE_TIME", c.Anidb.APICacheTime, &c.Anidb.APITTL},
		{"ANIDB_IMAGE_CACHE_TIME", c.Anidb.ImageCacheTime, &c.Anidb.ImageTTL},
		{"TMDB_API_CACHE_TIME", c.Tmdb.APICacheTime, &c.Tmdb.APITTL},
		{"TMDB_IMAGE_CACHE_TIME", c.Tmdb.ImageCacheTime, &c.Tmdb.ImageTTL},
	}

	var errs []error
	for _, t := range times {
		d, err := ParseDuration(t.value)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s is invalid: %w", t.name, err))
			continue
		}
		*t.target = d
	}
	return errs
}

func (c *Config) validateServer() []error {
	var errs []error
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Cache.MemoSize < 1 {
		errs = append(errs, fmt.Errorf("MEMO_SIZE must be positive, got %d", c.Cache.MemoSize))
	}
	if c.Cache.TitleRefreshInterval < 0 {
		errs = append(errs, fmt.Errorf("TITLE_REFRESH_INTERVAL must not be negative, got %s", c.Cache.TitleRefreshInterval))
	}
	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs < 1 {
			errs = append(errs, fmt.Errorf("RATE_LIMIT_REQUESTS must be positive, got %d", c.Security.RateLimitReqs))
		}
		if c.Security.RateLimitWindow <= 0 {
			errs = append(errs, fmt.Errorf("RATE_LIMIT_WINDOW must be positive, got %s", c.Security.RateLimitWindow))
		}
	}
	return errs
}

func (c *Config) validateLogging() []error {
	if !logging.ValidLevel(c.Logging.Level) {
		return []error{fmt.Errorf("LOGGING_LEVEL %q is not a log level", c.Logging.Level)}
	}
	switch c.Logging.Format {
	case "json", "console":
		return nil
	}
	return []error{fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)}
}
