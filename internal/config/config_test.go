package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_Values(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 30000, cfg.TimeoutMs)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 300, cfg.DefaultMaxResults)
	assert.Empty(t, cfg.BaseURL)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("JIRA_BASE_URL", "https://example.atlassian.net")
	t.Setenv("JIRA_USERNAME", "dev@example.com")
	t.Setenv("JIRA_API_TOKEN", "tok-123")
	t.Setenv("JIRA_TIMEOUT_MS", "5000")
	t.Setenv("JIRA_DEFAULT_MAX_RESULTS", "50")
	t.Setenv("JIRA_DEFAULT_PROJECT", "PROJ")

	cfg := LoadConfig()

	assert.Equal(t, "https://example.atlassian.net", cfg.BaseURL)
	assert.Equal(t, "dev@example.com", cfg.Username)
	assert.Equal(t, "tok-123", cfg.APIToken)
	assert.Equal(t, 5000, cfg.TimeoutMs)
	assert.Equal(t, 50, cfg.DefaultMaxResults)
	assert.Equal(t, "PROJ", cfg.DefaultProject)
}

func TestLoadConfig_InvalidNumbersIgnored(t *testing.T) {
	t.Setenv("JIRA_TIMEOUT_MS", "not-a-number")
	t.Setenv("JIRA_DEFAULT_MAX_RESULTS", "-10")

	cfg := LoadConfig()

	assert.Equal(t, 30000, cfg.TimeoutMs)
	assert.Equal(t, 300, cfg.DefaultMaxResults)
}

func TestValidateCredentials(t *testing.T) {
	cfg := DefaultConfig()
	assert.ErrorIs(t, cfg.ValidateCredentials(), ErrMissingBaseURL)

	cfg.BaseURL = "https://example.atlassian.net"
	assert.ErrorIs(t, cfg.ValidateCredentials(), ErrMissingCredentials)

	cfg.Username = "dev@example.com"
	assert.ErrorIs(t, cfg.ValidateCredentials(), ErrMissingCredentials)

	cfg.APIToken = "tok-123"
	require.NoError(t, cfg.ValidateCredentials())
}

func TestResolveDBPath_ExplicitWins(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DBPath = "/tmp/custom.db"

	path, err := cfg.ResolveDBPath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom.db", path)
}
