// Package config provides application configuration management.
// It loads settings from environment variables and provides defaults for
// server mode, rate limits, storage, and observability settings.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

// HTTP server timeouts.
//
// The API serves small JSON payloads only, so short read/write windows
// are enough; idle keep-alive connections are held longer for browser
// clients of the static shell.
const (
	HTTPReadTimeout  = 10 * time.Second
	HTTPWriteTimeout = 15 * time.Second
	HTTPIdleTimeout  = 120 * time.Second

	// ReadinessCheckTimeout bounds the database ping in /ready.
	ReadinessCheckTimeout = 5 * time.Second

	// CustomerGaugeInterval is how often the customers_total gauge refreshes.
	CustomerGaugeInterval = 5 * time.Minute

	// RateLimiterCleanupInterval is how often idle per-client windows are reaped.
	RateLimiterCleanupInterval = 5 * time.Minute
)

// Config holds all application configuration
type Config struct {
	// Server Configuration
	Port            string
	Environment     string
	LogLevel        string
	ShutdownTimeout time.Duration

	// Data Configuration
	DataDir string // Directory for the SQLite database file

	// Rate Limits
	IntentRateLimit    int           // Max /intent requests per client per window
	IntentRateWindow   time.Duration // Fixed window size for /intent limiting
	GlobalRateLimitRPS float64       // Global request ceiling across all routes

	// Metrics Authentication
	MetricsUsername string // Username for /metrics Basic Auth (default: "prometheus")
	MetricsPassword string // Password for /metrics Basic Auth (empty = no auth)

	// Error Tracking (Better Stack via Sentry SDK)
	SentryToken string // Better Stack Errors token (empty = disabled)
	SentryHost  string // Better Stack Errors ingesting host

	// Remote Logging
	BetterStackToken    string // Better Stack Logs token (empty = disabled)
	BetterStackEndpoint string // Better Stack Logs ingest endpoint override
}

// Load reads configuration from environment variables.
// It attempts to load a .env file first, then reads from env vars.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		Environment:     getEnv("ENVIRONMENT", "production"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", 30*time.Second),

		DataDir: getEnv("DATA_DIR", "./data"),

		IntentRateLimit:    getIntEnv("INTENT_RATE_LIMIT", 10),
		IntentRateWindow:   getDurationEnv("INTENT_RATE_WINDOW", time.Minute),
		GlobalRateLimitRPS: getFloatEnv("GLOBAL_RATE_LIMIT_RPS", 100.0),

		MetricsUsername: getEnv("METRICS_USERNAME", "prometheus"),
		MetricsPassword: getEnv("METRICS_PASSWORD", ""),

		SentryToken: getEnv("SENTRY_TOKEN", ""),
		SentryHost:  getEnv("SENTRY_HOST", "errors.betterstack.com"),

		BetterStackToken:    getEnv("BETTERSTACK_TOKEN", ""),
		BetterStackEndpoint: getEnv("BETTERSTACK_ENDPOINT", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	var errs []error

	if c.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New("DATA_DIR is required"))
	}
	if c.IntentRateLimit <= 0 {
		errs = append(errs, fmt.Errorf("INTENT_RATE_LIMIT must be positive, got %d", c.IntentRateLimit))
	}
	if c.IntentRateWindow <= 0 {
		errs = append(errs, fmt.Errorf("INTENT_RATE_WINDOW must be positive, got %v", c.IntentRateWindow))
	}
	if c.GlobalRateLimitRPS <= 0 {
		errs = append(errs, fmt.Errorf("GLOBAL_RATE_LIMIT_RPS must be positive, got %v", c.GlobalRateLimitRPS))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("SHUTDOWN_TIMEOUT must be positive, got %v", c.ShutdownTimeout))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// SQLitePath returns the full path to the SQLite database file
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "ivr.db")
}
