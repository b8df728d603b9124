package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the jira-tool CLI.
type Config struct {
	BaseURL  string
	Username string
	APIToken string

	TimeoutMs  int
	MaxRetries int

	DefaultMaxResults int
	DefaultProject    string
	DefaultComponent  string

	// DBPath is the location of the local snapshot database.
	DBPath string

	// LogCalls enables API call logging to stderr.
	LogCalls bool
}

var (
	// ErrMissingBaseURL indicates JIRA_BASE_URL is not configured.
	ErrMissingBaseURL = errors.New("JIRA_BASE_URL must be set")

	// ErrMissingCredentials indicates JIRA_USERNAME or JIRA_API_TOKEN is not configured.
	ErrMissingCredentials = errors.New("JIRA_USERNAME and JIRA_API_TOKEN must be set")
)

// DefaultConfig returns a Config with sensible defaults.
// Credentials are empty and must come from the environment.
func DefaultConfig() Config {
	return Config{
		TimeoutMs:         30000,
		MaxRetries:        3,
		DefaultMaxResults: 300,
	}
}

// LoadConfig reads configuration from environment variables, falling back
// to defaults for any unset values. A .env file in the working directory
// is loaded first if present; explicit environment variables win.
func LoadConfig() Config {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if v := os.Getenv("JIRA_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("JIRA_USERNAME"); v != "" {
		cfg.Username = v
	}
	if v := os.Getenv("JIRA_API_TOKEN"); v != "" {
		cfg.APIToken = v
	}
	if v := os.Getenv("JIRA_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimeoutMs = n
		}
	}
	if v := os.Getenv("JIRA_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxRetries = n
		}
	}
	if v := os.Getenv("JIRA_DEFAULT_MAX_RESULTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.DefaultMaxResults = n
		}
	}
	if v := os.Getenv("JIRA_DEFAULT_PROJECT"); v != "" {
		cfg.DefaultProject = v
	}
	if v := os.Getenv("JIRA_DEFAULT_COMPONENT"); v != "" {
		cfg.DefaultComponent = v
	}
	if v := os.Getenv("JIRA_TOOL_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("JIRA_TOOL_LOG_CALLS"); v != "" {
		cfg.LogCalls, _ = strconv.ParseBool(v)
	}

	return cfg
}

// ValidateCredentials checks that the fields required to talk to the Jira
// API are present. Commands that operate on local files only (analyze,
// snapshot list) don't need this.
func (c Config) ValidateCredentials() error {
	if c.BaseURL == "" {
		return ErrMissingBaseURL
	}
	if c.Username == "" || c.APIToken == "" {
		return ErrMissingCredentials
	}
	return nil
}

// ResolveDBPath returns the snapshot database path, defaulting to
// ~/.jira-tool/jira-tool.db when not configured.
func (c Config) ResolveDBPath() (string, error) {
	if c.DBPath != "" {
		return c.DBPath, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".jira-tool", "jira-tool.db"), nil
}
