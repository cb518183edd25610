// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

package config

import (
	"fmt"
	"time"

	"github.com/tomtom215/amc2/internal/anidb"
	"github.com/tomtom215/amc2/internal/objstore"
	"github.com/tomtom215/amc2/internal/tmdb"
)

// Config holds all application configuration.
//
// Cache times are kept as written (the *CacheTime fields) and resolved into
// durations by Validate, so that "2d" style values survive the koanf layers.
type Config struct {
	SelfBaseURL string         `koanf:"self_base_url"`
	Anidb       AnidbConfig    `koanf:"anidb"`
	Tmdb        TmdbConfig     `koanf:"tmdb"`
	Mapping     MappingConfig  `koanf:"mapping"`
	S3          S3Config       `koanf:"s3"`
	Cache       CacheConfig    `koanf:"cache"`
	Server      ServerConfig   `koanf:"server"`
	Security    SecurityConfig `koanf:"security"`
	Logging     LoggingConfig  `koanf:"logging"`
}

// AnidbConfig holds the AniDB upstreams and their caches.
type AnidbConfig struct {
	TitlesURL       string `koanf:"titles_url"`
	TitlesCacheURL  string `koanf:"titles_cache_url"`
	TitlesCacheTime string `koanf:"titles_cache_time"`

	APIURL       string `koanf:"api_url"`
	APICacheURL  string `koanf:"api_cache_url"`
	APICacheTime string `koanf:"api_cache_time"`

	ImageURL       string `koanf:"image_url"`
	ImageCacheURL  string `koanf:"image_cache_url"`
	ImageCacheTime string `koanf:"image_cache_time"`

	// Resolved by Validate.
	TitlesTTL time.Duration `koanf:"-"`
	APITTL    time.Duration `koanf:"-"`
	ImageTTL  time.Duration `koanf:"-"`
}

// TmdbConfig holds the TMDB upstreams and their caches.
type TmdbConfig struct {
	APIURL string `koanf:"api_url"`
	APIKey string `koanf:"api_key"`

	APICacheURL  string `koanf:"api_cache_url"`
	APICacheTime string `koanf:"api_cache_time"`

	ImageCacheURL  string `koanf:"image_cache_url"`
	ImageCacheTime string `koanf:"image_cache_time"`

	// Resolved by Validate.
	APITTL   time.Duration `koanf:"-"`
	ImageTTL time.Duration `koanf:"-"`
}

// MappingConfig locates the anime mapping repository.
type MappingConfig struct {
	URL string `koanf:"url"`
}

// S3Config holds static credentials for s3:// store URLs without user info.
type S3Config struct {
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`
}

// CacheConfig sizes the in-process caches and background refresh.
type CacheConfig struct {
	MemoSize int           `koanf:"memo_size"`
	MemoTTL  time.Duration `koanf:"memo_ttl"`

	// TitleRefreshInterval is the title warmer period; 0 disables the warmer.
	TitleRefreshInterval time.Duration `koanf:"title_refresh_interval"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SecurityConfig holds CORS and inbound rate limiting.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level. DEBUG, INFO and ERROR are the
	// documented values; warn and trace are accepted as well.
	// Default: INFO
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// StoreOptions returns the object store factory options.
func (c *Config) StoreOptions() objstore.FactoryOptions {
	return objstore.FactoryOptions{
		S3: objstore.S3Credentials{
			AccessKey: c.S3.AccessKey,
			SecretKey: c.S3.SecretKey,
		},
	}
}

// defaultConfig returns a Config with every default applied. Required
// settings stay empty.
func defaultConfig() *Config {
	return &Config{
		Anidb: AnidbConfig{
			TitlesURL:       anidb.DefaultTitlesURL,
			TitlesCacheTime: "2d",
			APIURL:          anidb.DefaultAPIURL,
			APICacheTime:    "2d",
			ImageURL:        anidb.DefaultImageURL,
			ImageCacheTime:  "100d",
		},
		Tmdb: TmdbConfig{
			APIURL:         tmdb.DefaultAPIURL,
			APICacheTime:   "1d",
			ImageCacheTime: "100d",
		},
		Cache: CacheConfig{
			MemoSize:             256,
			MemoTTL:              time.Hour,
			TitleRefreshInterval: time.Hour,
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8000,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    2 * time.Minute,
			IdleTimeout:     2 * time.Minute,
			ShutdownTimeout: 10 * time.Second,
		},
		Security: SecurityConfig{
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "INFO",
			Format: "json",
		},
	}
}
