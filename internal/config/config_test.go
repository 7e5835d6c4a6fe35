package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
store:
  file_path: /var/lib/campus-sync/campus.db
remote:
  base_url: https://campus.example.edu
  auth_token: tok-123
  timeout: 30s
connectivity:
  probe_url: https://campus.example.edu/ping
  success_threshold: 3
sync:
  scheduler:
    enabled: false
    interval: "@every 10m"
  max_attempts: 5
  base_backoff: 1m
server:
  port: 9000
  auth_token: local-secret
logging:
  level: debug
  format: console
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/campus-sync/campus.db", cfg.Store.FilePath)
	assert.Equal(t, "https://campus.example.edu", cfg.Remote.BaseURL)
	assert.Equal(t, "tok-123", cfg.Remote.AuthToken)
	assert.Equal(t, 30*time.Second, cfg.Remote.GetTimeout())
	assert.Equal(t, "https://campus.example.edu/ping", cfg.Connectivity.ProbeURL)
	assert.Equal(t, 3, cfg.Connectivity.SuccessThreshold)
	assert.False(t, cfg.Sync.Scheduler.Enabled)
	assert.Equal(t, "@every 10m", cfg.Sync.Scheduler.Interval)
	assert.Equal(t, 5, cfg.Sync.MaxAttempts)
	assert.Equal(t, time.Minute, cfg.Sync.GetBaseBackoff())
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "local-secret", cfg.Server.AuthToken)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
remote:
  base_url: https://campus.example.edu
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "campus-sync.db", cfg.Store.FilePath)
	assert.Equal(t, 15*time.Second, cfg.Remote.GetTimeout())
	assert.Equal(t, 15*time.Second, cfg.Connectivity.GetProbeInterval())
	assert.Equal(t, 5*time.Second, cfg.Connectivity.GetProbeTimeout())
	assert.Equal(t, 2, cfg.Connectivity.SuccessThreshold)
	assert.True(t, cfg.Sync.Scheduler.Enabled)
	assert.Equal(t, "@every 5m", cfg.Sync.Scheduler.Interval)
	assert.Equal(t, 10, cfg.Sync.MaxAttempts)
	assert.Equal(t, 30*time.Second, cfg.Sync.GetBaseBackoff())
	assert.Equal(t, 30*time.Minute, cfg.Sync.GetMaxBackoff())
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 8090, cfg.Server.Port)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDurationAccessorsFallBack(t *testing.T) {
	assert.Equal(t, 15*time.Second, RemoteConfig{Timeout: "garbage"}.GetTimeout())
	assert.Equal(t, 15*time.Second, ConnectivityConfig{ProbeInterval: "-1s"}.GetProbeInterval())
	assert.Equal(t, 5*time.Second, ConnectivityConfig{}.GetProbeTimeout())
	assert.Equal(t, 30*time.Second, SyncConfig{BaseBackoff: "0s"}.GetBaseBackoff())
	assert.Equal(t, 30*time.Minute, SyncConfig{}.GetMaxBackoff())
}
