package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dawiddutoit/jira-tool/internal/config"
)

func TestAppMaxResults(t *testing.T) {
	app := &App{Config: &config.Config{DefaultMaxResults: 300}}

	// Explicit flag values win; zero falls back to the configured default.
	assert.Equal(t, 50, app.maxResults(50))
	assert.Equal(t, 300, app.maxResults(0))

	assert.Equal(t, 0, (&App{}).maxResults(0))
}
