// Package config provides application configuration management from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// State backends
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Config holds application configuration
type Config struct {
	APIPort  string
	APIHost  string
	LogLevel string

	// SiteDir is the built Sphinx HTML output
	SiteDir string
	// ContentRoot is prefixed to document names when fetching pages.
	// Empty means pages are read from SiteDir
	ContentRoot string
	FileSuffix  string
	SearchPage  string
	WatchSite   bool

	StateBackend string
	StateFile    string
	DatabaseURL  string
	RedisURL     string
	SessionTTL   time.Duration

	FetchTimeout time.Duration
	FetchRate    float64
	FetchBurst   int
	CacheSize    int
	CacheTTL     time.Duration
}

// Load reads configuration from environment variables. A .env file in the
// working directory is applied first when present
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	cfg := &Config{
		APIPort:  getEnv("API_PORT", "8080"),
		APIHost:  getEnv("API_HOST", "0.0.0.0"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		SiteDir:     getEnv("SITE_DIR", "_build/html"),
		ContentRoot: getEnv("CONTENT_ROOT", ""),
		FileSuffix:  getEnv("FILE_SUFFIX", ".html"),
		SearchPage:  strings.TrimPrefix(getEnv("SEARCH_PAGE", "search.html"), "/"),

		StateBackend: strings.ToLower(getEnv("STATE_BACKEND", BackendMemory)),
		StateFile:    getEnv("STATE_FILE", "data"),
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		RedisURL:     getEnv("REDIS_URL", ""),
	}

	var err error
	if cfg.WatchSite, err = getBool("WATCH_SITE", false); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.FetchTimeout, err = getDuration("FETCH_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.FetchRate, err = getFloat("FETCH_RATE", 0); err != nil {
		return nil, err
	}
	if cfg.FetchBurst, err = getInt("FETCH_BURST", 1); err != nil {
		return nil, err
	}
	if cfg.CacheSize, err = getInt("CACHE_SIZE", 512); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = getDuration("CACHE_TTL", 5*time.Minute); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StateBackend {
	case BackendMemory, BackendFile:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the %s backend", BackendPostgres)
		}
	case BackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for the %s backend", BackendRedis)
		}
	default:
		return fmt.Errorf("unknown STATE_BACKEND %q", c.StateBackend)
	}

	if c.SiteDir == "" {
		return fmt.Errorf("SITE_DIR is required")
	}
	if c.FetchRate < 0 {
		return fmt.Errorf("FETCH_RATE must not be negative")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
