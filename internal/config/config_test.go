package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfigFile(t, `
database:
  type: sqlite
  dsn: import.db
admin:
  password: secret
importer:
  providers:
    - name: scrapin
      base_url: https://api.scrapin.io
      mode: sync
    - name: brightdata
      base_url: https://api.brightdata.com
      mode: async
      dataset: gd_test
  request_timeout: 10s
  cooldown: 30m
  poll:
    interval: 5s
    max_duration: 60s
    max_attempts: 12
quota:
  tiers:
    free: 2
    basic: 20
    premium: -1
port: 9999
debug: true
`)

	cfg, warning, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Empty(t, warning)

	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "import.db", cfg.Database.DSN)
	assert.Equal(t, "secret", cfg.Admin.Password)
	require.Len(t, cfg.Importer.Providers, 2)
	assert.Equal(t, "scrapin", cfg.Importer.Providers[0].Name)
	assert.Equal(t, "async", cfg.Importer.Providers[1].Mode)
	assert.Equal(t, "gd_test", cfg.Importer.Providers[1].Dataset)
	assert.Equal(t, 10*time.Second, cfg.Importer.RequestTimeout.Std())
	assert.Equal(t, 30*time.Minute, cfg.Importer.Cooldown.Std())
	assert.Equal(t, 5*time.Second, cfg.Importer.Poll.Interval.Std())
	assert.Equal(t, 60*time.Second, cfg.Importer.Poll.MaxDuration.Std())
	assert.Equal(t, 12, cfg.Importer.Poll.MaxAttempts)
	assert.Equal(t, 2, cfg.Quota.Tiers["free"])
	assert.Equal(t, -1, cfg.Quota.Tiers["premium"])
	assert.Equal(t, 9999, cfg.Port)
	assert.True(t, cfg.Debug)
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfigFile(t, `
database:
  type: sqlite
  dsn: import.db
`)

	cfg, warning, err := LoadConfig(path)
	require.NoError(t, err)

	// Defaults were filled in and reported
	assert.Contains(t, warning, "importer.providers not set")
	assert.Contains(t, warning, "port not set")
	require.Len(t, cfg.Importer.Providers, 2)
	assert.Equal(t, 25*time.Second, cfg.Importer.RequestTimeout.Std())
	assert.Equal(t, time.Hour, cfg.Importer.Cooldown.Std())
	assert.Equal(t, 10*time.Minute, cfg.Importer.OverallDeadline.Std())
	assert.Equal(t, 24*time.Hour, cfg.Importer.SessionRetention.Std())
	assert.Equal(t, 15*time.Second, cfg.Importer.Poll.Interval.Std())
	assert.Equal(t, 120*time.Second, cfg.Importer.Poll.MaxDuration.Std())
	assert.Equal(t, 40, cfg.Importer.Poll.MaxAttempts)
	assert.Equal(t, 1, cfg.Quota.Tiers["free"])
	assert.Equal(t, "gemini-1.5-flash", cfg.Enrichment.Model)
	assert.Equal(t, "@daily", cfg.Scheduler.UsageResetSchedule)
	assert.Equal(t, "@hourly", cfg.Scheduler.SessionPurgeSchedule)
	assert.Equal(t, 8080, cfg.Port)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	path := writeConfigFile(t, `
database:
  type: sqlite
  dsn: import.db
port: 9000
`)

	t.Setenv("PROFILEIMPORT_DATABASE_DSN", "override.db")
	t.Setenv("PROFILEIMPORT_PORT", "7777")
	t.Setenv("PROFILEIMPORT_ADMIN_PASSWORD", "env-secret")
	t.Setenv("PROFILEIMPORT_GEMINI_API_KEY", "env-key")
	t.Setenv("PROFILEIMPORT_DEBUG", "true")

	cfg, _, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "override.db", cfg.Database.DSN)
	assert.Equal(t, 7777, cfg.Port)
	assert.Equal(t, "env-secret", cfg.Admin.Password)
	assert.Equal(t, "env-key", cfg.Enrichment.APIKey)
	assert.True(t, cfg.Debug)
}

func TestLoadConfigValidation(t *testing.T) {
	t.Run("missing database", func(t *testing.T) {
		path := writeConfigFile(t, `port: 9000`)
		_, _, err := LoadConfig(path)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "database type and dsn")
	})

	t.Run("provider without name", func(t *testing.T) {
		path := writeConfigFile(t, `
database:
  type: sqlite
  dsn: import.db
importer:
  providers:
    - base_url: https://api.example.com
      mode: sync
`)
		_, _, err := LoadConfig(path)
		assert.Error(t, err)
	})

	t.Run("invalid provider mode", func(t *testing.T) {
		path := writeConfigFile(t, `
database:
  type: sqlite
  dsn: import.db
importer:
  providers:
    - name: p1
      base_url: https://api.example.com
      mode: streaming
`)
		_, _, err := LoadConfig(path)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "mode must be")
	})

	t.Run("async provider without dataset", func(t *testing.T) {
		path := writeConfigFile(t, `
database:
  type: sqlite
  dsn: import.db
importer:
  providers:
    - name: p1
      base_url: https://api.example.com
      mode: async
`)
		_, _, err := LoadConfig(path)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "dataset")
	})

	t.Run("invalid duration string", func(t *testing.T) {
		path := writeConfigFile(t, `
database:
  type: sqlite
  dsn: import.db
importer:
  cooldown: soon
`)
		_, _, err := LoadConfig(path)
		assert.Error(t, err)
	})
}
