package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/commitboard/internal/config"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigDefaultsWithoutFile(t *testing.T) {
	cfg, err := config.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.True(t, cfg.Logger.JSON)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "messages.db", cfg.Database.Path)
	assert.Equal(t, 50, cfg.Board.MessageLimit)
	assert.Equal(t, "https://api.github.com", cfg.GitHub.BaseURL)
	assert.Empty(t, cfg.Mirrors)
	assert.False(t, cfg.Maintenance.Enabled)
}

func TestLoadConfigFromFile(t *testing.T) {
	path := writeConfigFile(t, `
logger:
  level: debug
  json: false
server:
  addr: ":9090"
board:
  message_limit: 25
github:
  token: file-token
mirrors:
  - owner: alice
    name: board-mirror
    branch: messages
    path: inbox
maintenance:
  enabled: true
  schedule: "0 0 3 * * *"
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.False(t, cfg.Logger.JSON)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 25, cfg.Board.MessageLimit)
	assert.Equal(t, "file-token", cfg.GitHub.Token)
	require.Len(t, cfg.Mirrors, 1)
	assert.Equal(t, "alice", cfg.Mirrors[0].Owner)
	assert.Equal(t, "board-mirror", cfg.Mirrors[0].Name)
	assert.Equal(t, "messages", cfg.Mirrors[0].Branch)
	assert.Equal(t, "inbox", cfg.Mirrors[0].Path)
	assert.True(t, cfg.Maintenance.Enabled)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("BOARD_LOGGER_LEVEL", "warn")
	t.Setenv("BOARD_DATABASE_PATH", "/tmp/other.db")

	cfg, err := config.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Logger.Level)
	assert.Equal(t, "/tmp/other.db", cfg.Database.Path)
}

func TestLoadConfigTokenFromEnvOnly(t *testing.T) {
	t.Setenv("BOARD_GITHUB_TOKEN", "env-token")

	// Mirrors in the file, token only in the environment.
	path := writeConfigFile(t, `
mirrors:
  - owner: alice
    name: board-mirror
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.GitHub.Token)
}

func TestLoadConfigRejectsMirrorsWithoutToken(t *testing.T) {
	path := writeConfigFile(t, `
mirrors:
  - owner: alice
    name: board-mirror
`)

	_, err := config.LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "github.token is required")
}

func TestLoadConfigRejectsDuplicateMirrors(t *testing.T) {
	path := writeConfigFile(t, `
github:
  token: tok
mirrors:
  - owner: alice
    name: board-mirror
  - owner: alice
    name: board-mirror
`)

	_, err := config.LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate mirror alice/board-mirror")
}

func TestLoadConfigRejectsInvalidLevel(t *testing.T) {
	path := writeConfigFile(t, `
logger:
  level: loud
`)

	_, err := config.LoadConfig(path)
	require.Error(t, err)
}

func TestValidateMaintenanceScheduleRequired(t *testing.T) {
	path := writeConfigFile(t, `
maintenance:
  enabled: true
  schedule: ""
`)

	_, err := config.LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maintenance.schedule is required")
}
