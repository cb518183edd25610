// AMC2 - Anime Metadata Cache
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/amc2

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/amc2/config.yaml",
	"/etc/amc2/config.yml",
}

const (
	// ConfigPathEnvVar is the environment variable that can override the config file path.
	ConfigPathEnvVar = "CONFIG_PATH"

	// EnvFileEnvVar overrides the path of the dotenv file.
	EnvFileEnvVar = "ENV_FILE"

	// DefaultEnvFile is merged into the environment when present.
	DefaultEnvFile = ".env"
)

// Load reads the configuration from defaults, the optional config file, the
// optional .env file and the environment, then validates it.
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}
	return LoadWithKoanf()
}

// LoadWithKoanf loads configuration using koanf with the layers described in
// the package documentation, without reading a .env file.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// TMDB_API_KEY -> tmdb.api_key
	// ANIME_MAPPING_URL -> mapping.url
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadEnvFile merges the dotenv file into the process environment. Variables
// that are already set win over the file.
func loadEnvFile() error {
	path := os.Getenv(EnvFileEnvVar)
	if path == "" {
		path = DefaultEnvFile
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// findConfigFile searches for a config file in the default locations.
// Returns an empty string if no config file is found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars come in as strings while the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to koanf paths.
// The upstream and cache names are the ones the service has always used.
var envMappings = map[string]string{
	"self_base_url": "self_base_url",

	"anidb_titles_url":        "anidb.titles_url",
	"anidb_titles_cache_url":  "anidb.titles_cache_url",
	"anidb_titles_cache_time": "anidb.titles_cache_time",
	"anidb_api_url":           "anidb.api_url",
	"anidb_api_cache_url":     "anidb.api_cache_url",
	"anidb_api_cache_time":    "anidb.api_cache_time",
	"anidb_image_url":         "anidb.image_url",
	"anidb_image_cache_url":   "anidb.image_cache_url",
	"anidb_image_cache_time":  "anidb.image_cache_time",

	"tmdb_api_url":          "tmdb.api_url",
	"tmdb_api_key":          "tmdb.api_key",
	"tmdb_api_cache_url":    "tmdb.api_cache_url",
	"tmdb_api_cache_time":   "tmdb.api_cache_time",
	"tmdb_image_cache_url":  "tmdb.image_cache_url",
	"tmdb_image_cache_time": "tmdb.image_cache_time",

	"anime_mapping_url": "mapping.url",

	"s3_access_key": "s3.access_key",
	"s3_secret_key": "s3.secret_key",

	"memo_size":              "cache.memo_size",
	"memo_ttl":               "cache.memo_ttl",
	"title_refresh_interval": "cache.title_refresh_interval",

	"server_host":             "server.host",
	"http_host":               "server.host",
	"server_port":             "server.port",
	"http_port":               "server.port",
	"server_read_timeout":     "server.read_timeout",
	"server_write_timeout":    "server.write_timeout",
	"server_idle_timeout":     "server.idle_timeout",
	"server_shutdown_timeout": "server.shutdown_timeout",

	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	"logging_level": "logging.level",
	"log_level":     "logging.level",
	"log_format":    "logging.format",
	"log_caller":    "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Unknown variables are ignored.
//
// Examples:
//   - SELF_BASE_URL -> self_base_url
//   - ANIDB_API_CACHE_TIME -> anidb.api_cache_time
//   - HTTP_PORT -> server.port
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
