// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Sternrassler/artic-table/pkg/logging"
)

// Defaults applied when a variable is unset.
const (
	DefaultBaseURL     = "https://api.artic.edu/api/v1"
	DefaultUserAgent   = "artic-table/0.1.0 (+https://github.com/Sternrassler/artic-table)"
	DefaultPageSize    = 5
	DefaultConcurrency = 10
	DefaultTimeout     = 15 * time.Second
	DefaultCacheTTL    = 5 * time.Minute
)

// PageSizes are the rows-per-page choices offered by the table.
var PageSizes = []int{5, 10, 20, 50}

// Config holds every tunable of the table and its fetch stack.
type Config struct {
	BaseURL      string        // ARTIC_BASE_URL
	UserAgent    string        // ARTIC_USER_AGENT
	PageSize     int           // ARTIC_PAGE_SIZE
	Concurrency  int           // ARTIC_CONCURRENCY
	FetchTimeout time.Duration // ARTIC_FETCH_TIMEOUT
	RedisURL     string        // REDIS_URL (empty disables the cache)
	CacheTTL     time.Duration // ARTIC_CACHE_TTL
	LogLevel     string        // LOG_LEVEL
	LogPretty    bool          // LOG_PRETTY
	LogFile      string        // LOG_FILE
	MetricsAddr  string        // METRICS_ADDR (empty disables the server)
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		BaseURL:      DefaultBaseURL,
		UserAgent:    DefaultUserAgent,
		PageSize:     DefaultPageSize,
		Concurrency:  DefaultConcurrency,
		FetchTimeout: DefaultTimeout,
		CacheTTL:     DefaultCacheTTL,
		LogLevel:     string(logging.LevelInfo),
	}
}

// LoadDotEnv reads .env from the working directory if present. Variables
// already set in the environment win.
func LoadDotEnv() {
	_ = godotenv.Load()
}

// Load builds a Config from the environment on top of Default. Malformed
// numbers and durations are reported rather than silently defaulted.
func Load() (Config, error) {
	cfg := Default()
	var errs []error

	cfg.BaseURL = getEnv("ARTIC_BASE_URL", cfg.BaseURL)
	cfg.UserAgent = getEnv("ARTIC_USER_AGENT", cfg.UserAgent)
	cfg.RedisURL = getEnv("REDIS_URL", cfg.RedisURL)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFile = getEnv("LOG_FILE", cfg.LogFile)
	cfg.MetricsAddr = getEnv("METRICS_ADDR", cfg.MetricsAddr)

	var err error
	if cfg.PageSize, err = getInt("ARTIC_PAGE_SIZE", cfg.PageSize); err != nil {
		errs = append(errs, err)
	}
	if cfg.Concurrency, err = getInt("ARTIC_CONCURRENCY", cfg.Concurrency); err != nil {
		errs = append(errs, err)
	}
	if cfg.FetchTimeout, err = getDuration("ARTIC_FETCH_TIMEOUT", cfg.FetchTimeout); err != nil {
		errs = append(errs, err)
	}
	if cfg.CacheTTL, err = getDuration("ARTIC_CACHE_TTL", cfg.CacheTTL); err != nil {
		errs = append(errs, err)
	}
	if cfg.LogPretty, err = getBool("LOG_PRETTY", cfg.LogPretty); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return cfg, errors.Join(errs...)
	}
	return cfg, nil
}

// Validate checks that cfg can drive a table.
func (c Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.BaseURL) == "" {
		errs = append(errs, errors.New("base url is required"))
	} else if u, err := url.Parse(c.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("base url %q is not absolute", c.BaseURL))
	}
	if strings.TrimSpace(c.UserAgent) == "" {
		errs = append(errs, errors.New("user-agent is required"))
	}
	if c.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("page size must be positive, got %d", c.PageSize))
	}
	if c.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("concurrency must be positive, got %d", c.Concurrency))
	}
	if c.FetchTimeout <= 0 {
		errs = append(errs, fmt.Errorf("fetch timeout must be positive, got %s", c.FetchTimeout))
	}
	if c.CacheTTL < 0 {
		errs = append(errs, fmt.Errorf("cache ttl must not be negative, got %s", c.CacheTTL))
	}

	return errors.Join(errs...)
}

// Logging returns the logger settings held in c.
func (c Config) Logging() logging.Config {
	return logging.Config{
		Level:  logging.Level(c.LogLevel),
		Pretty: c.LogPretty,
		File:   c.LogFile,
		Output: os.Stderr,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
