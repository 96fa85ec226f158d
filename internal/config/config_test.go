package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresCredentials(t *testing.T) {
	t.Setenv("ASANA_ACCESS_TOKEN", "")
	t.Setenv("ASANA_WORKSPACE_ID", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ASANA_ACCESS_TOKEN")
}

func TestLoadRequiresWorkspace(t *testing.T) {
	t.Setenv("ASANA_ACCESS_TOKEN", "token")
	t.Setenv("ASANA_WORKSPACE_ID", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ASANA_WORKSPACE_ID")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ASANA_ACCESS_TOKEN", "token")
	t.Setenv("ASANA_WORKSPACE_ID", "ws-1")
	t.Setenv("ASANA_BASE_URL", "")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "")
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.RateLimitPerMinute)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.NotEmpty(t, cfg.BaseURL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ASANA_ACCESS_TOKEN", "token")
	t.Setenv("ASANA_WORKSPACE_ID", "ws-1")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "25")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("MEETINGS_DATABASE_URL", "postgres://cal/db")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.RateLimitPerMinute)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "postgres://cal/db", cfg.MeetingsDatabaseURL)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := &Config{
		AccessToken:        "token",
		WorkspaceID:        "ws-1",
		RateLimitPerMinute: 0,
		LogLevel:           "info",
	}
	assert.Error(t, cfg.Validate())

	cfg.RateLimitPerMinute = 10
	cfg.LogLevel = "verbose"
	assert.Error(t, cfg.Validate())

	cfg.LogLevel = "warn"
	assert.NoError(t, cfg.Validate())
}
