package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:7777", cfg.Server.Addr())
	assert.Equal(t, "Sheet1", cfg.Sheets.FormsSheet)
	assert.Equal(t, "interest_registered", cfg.Sheets.InterestSheet)
	assert.Equal(t, "openai", cfg.Completion.Provider)
	assert.Equal(t, "gpt-3.5-turbo", cfg.Completion.Model)
	assert.Equal(t, 500, cfg.Completion.MaxTokens)
	assert.InDelta(t, 0.7, cfg.Completion.Temperature, 0.001)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 5*time.Minute, cfg.Redis.TTL)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9000
sheets:
  spreadsheet_id: sheet-abc
completion:
  provider: mock
redis:
  enabled: true
  ttl: 30s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "sheet-abc", cfg.Sheets.SpreadsheetID)
	assert.Equal(t, "mock", cfg.Completion.Provider)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 30*time.Second, cfg.Redis.TTL)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("FORMSHIFT_SERVER_PORT", "8123")
	t.Setenv("FORMSHIFT_SHEETS_SPREADSHEET_ID", "from-env")
	t.Setenv("OPENAI_API_KEY", "sk-env")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8123, cfg.Server.Port)
	assert.Equal(t, "from-env", cfg.Sheets.SpreadsheetID)
	assert.Equal(t, "sk-env", cfg.Completion.APIKey)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.ErrorContains(t, cfg.Validate(), "spreadsheet_id")

	cfg.Sheets.SpreadsheetID = "sheet-abc"
	assert.ErrorContains(t, cfg.Validate(), "api_key")

	cfg.Completion.Provider = "mock"
	assert.NoError(t, cfg.Validate())
}
