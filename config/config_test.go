package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "server:\n  admin_key: secret\n"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "secret", cfg.Server.AdminKey)
	assert.Equal(t, "sqlite", cfg.Database.Mode)
	assert.Equal(t, time.Hour, cfg.Database.MySQLMaxLife)
	assert.Equal(t, 50, cfg.Sim.TickMs)
	assert.Equal(t, 50*time.Millisecond, cfg.Sim.Step())
	assert.True(t, cfg.Journal.Enabled)
	assert.Equal(t, 100, cfg.Journal.BatchSize)
	assert.Equal(t, 2*time.Second, cfg.Journal.FlushInterval)
	assert.Equal(t, 40, cfg.Security.RateLimitBurst)
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
server:
  port: 9090
  debug: true
database:
  mode: memory
sim:
  tick_ms: 20
  level_path: levels/a.yaml
journal:
  enabled: false
  flush_interval: 500ms
`))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.True(t, cfg.Server.Debug)
	assert.Equal(t, "memory", cfg.Database.Mode)
	assert.Equal(t, 20*time.Millisecond, cfg.Sim.Step())
	assert.Equal(t, "levels/a.yaml", cfg.Sim.LevelPath)
	assert.False(t, cfg.Journal.Enabled)
	assert.Equal(t, 500*time.Millisecond, cfg.Journal.FlushInterval)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
