// Package config loads process configuration from the environment.
// Missing required values are fatal at startup, before any request is
// served.
package config

import (
	"fmt"
	"os"
	"strconv"

	"projectpulse/internal/asana"
)

// Config holds the process configuration for projectpulse.
type Config struct {
	// AccessToken is the bearer token for the task-tracking API. Required.
	AccessToken string

	// WorkspaceID scopes all task, user and project queries. Required.
	WorkspaceID string

	// BaseURL overrides the upstream API root. Optional.
	BaseURL string

	// RateLimitPerMinute is the outbound request ceiling per rolling
	// 60-second window (default 100).
	RateLimitPerMinute int

	// MeetingsDatabaseURL is the connection string for the calendar
	// store. Optional; meeting tools are not registered without it.
	MeetingsDatabaseURL string

	// HTTPAddr is the address for the streamable HTTP transport.
	HTTPAddr string

	// LogLevel is the slog level name: debug, info, warn, error.
	LogLevel string
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		AccessToken:         os.Getenv("ASANA_ACCESS_TOKEN"),
		WorkspaceID:         os.Getenv("ASANA_WORKSPACE_ID"),
		BaseURL:             getEnvOrDefault("ASANA_BASE_URL", asana.DefaultBaseURL),
		RateLimitPerMinute:  getEnvIntOrDefault("RATE_LIMIT_PER_MINUTE", asana.DefaultRateLimit),
		MeetingsDatabaseURL: os.Getenv("MEETINGS_DATABASE_URL"),
		HTTPAddr:            getEnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required values and ranges.
func (c *Config) Validate() error {
	if c.AccessToken == "" {
		return fmt.Errorf("ASANA_ACCESS_TOKEN is required")
	}
	if c.WorkspaceID == "" {
		return fmt.Errorf("ASANA_WORKSPACE_ID is required")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive, got %d", c.RateLimitPerMinute)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error; got %q", c.LogLevel)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}
