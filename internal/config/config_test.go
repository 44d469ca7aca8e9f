package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cm := NewConfigManager()
	require.NoError(t, cm.LoadConfig(""))

	cfg := cm.GetConfig()
	assert.NotEmpty(t, cfg.Data.ParentDir)
	assert.Equal(t, 5*time.Second, cfg.Database.BusyTimeout)
	assert.False(t, cfg.Database.LogQueries)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Empty(t, cm.Path())
}

func TestLoadFromYAML(t *testing.T) {
	path := writeConfig(t, "moviedb.yaml", `
data:
  parent_dir: /srv/catalog
database:
  busy_timeout: 2s
  log_queries: true
logging:
  level: debug
  format: json
`)

	cm := NewConfigManager()
	require.NoError(t, cm.LoadConfig(path))

	cfg := cm.GetConfig()
	assert.Equal(t, "/srv/catalog", cfg.Data.ParentDir)
	assert.Equal(t, 2*time.Second, cfg.Database.BusyTimeout)
	assert.True(t, cfg.Database.LogQueries)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, path, cm.Path())
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, "moviedb.yml", `
data:
  parent_dir: /from/file
logging:
  level: warn
`)
	t.Setenv("MOVIEDB_DATA_PARENT", "/from/env")
	t.Setenv("MOVIEDB_BUSY_TIMEOUT", "750ms")
	t.Setenv("MOVIEDB_LOG_QUERIES", "true")

	cm := NewConfigManager()
	require.NoError(t, cm.LoadConfig(path))

	cfg := cm.GetConfig()
	assert.Equal(t, "/from/env", cfg.Data.ParentDir)
	assert.Equal(t, 750*time.Millisecond, cfg.Database.BusyTimeout)
	assert.True(t, cfg.Database.LogQueries)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadRejectsBadInput(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		err := NewConfigManager().LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		path := writeConfig(t, "moviedb.toml", "level = 'info'")
		assert.Error(t, NewConfigManager().LoadConfig(path))
	})

	t.Run("unknown log format", func(t *testing.T) {
		path := writeConfig(t, "moviedb.yaml", "logging:\n  format: xml\n")
		assert.Error(t, NewConfigManager().LoadConfig(path))
	})

	t.Run("bad env value", func(t *testing.T) {
		t.Setenv("MOVIEDB_LOG_QUERIES", "sometimes")
		assert.Error(t, NewConfigManager().LoadConfig(""))
	})
}

func TestGetConfigReturnsCopy(t *testing.T) {
	cm := NewConfigManager()
	cfg := cm.GetConfig()
	cfg.Logging.Level = "trace"

	assert.Equal(t, "info", cm.GetConfig().Logging.Level)
}
