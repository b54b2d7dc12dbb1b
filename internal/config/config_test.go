package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rulecraft.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.Equal(t, 15*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, 10*time.Minute, cfg.Rules.CacheTTL)
	assert.True(t, cfg.Rules.Prefetch)
	assert.Equal(t, "groups.json", cfg.GroupsPath)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, `
log_level: debug
session_ttl: 30m
fetch:
  timeout: 5s
rules:
  base_url: https://rules.example
  prefetch: false
redis:
  addr: localhost:6379
  db: 2
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 5*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, "https://rules.example", cfg.Rules.BaseURL)
	assert.False(t, cfg.Rules.Prefetch)
	assert.Equal(t, 10*time.Minute, cfg.Rules.CacheTTL, "unset keys keep defaults")
	assert.Equal(t, RedisConfig{Addr: "localhost:6379", DB: 2}, cfg.Redis)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "session_ttl: 30m\ngroups_path: a.json\n")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("REDIS_DB", "5")
	t.Setenv("GITHUB_TOKEN", "secret")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 5, cfg.Redis.DB)
	assert.Equal(t, "secret", cfg.Fetch.GitHubToken)
	assert.Equal(t, "a.json", cfg.GroupsPath)
}

func TestLoad_SessionKeys(t *testing.T) {
	path := writeFile(t, "session_key: fileKey\nold_session_keys: [a, b]\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "fileKey", cfg.SessionKey)
	assert.Equal(t, []string{"a", "b"}, cfg.OldSessionKeys)

	t.Setenv("SESSION_KEY", "envKey")
	t.Setenv("OLD_SESSION_KEYS", "x, y")
	t.Setenv("SESSIONS_PATH", "state/sessions")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "envKey", cfg.SessionKey)
	assert.Equal(t, []string{"x", "y"}, cfg.OldSessionKeys)
	assert.Equal(t, "state/sessions", cfg.SessionsPath)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "unknown_key: 1\n"))
	assert.Error(t, err, "unknown keys are rejected")

	_, err = Load(writeFile(t, "session_ttl: [\n"))
	assert.Error(t, err)

	t.Setenv("FETCH_TIMEOUT", "soon")
	_, err = Load("")
	assert.ErrorContains(t, err, "FETCH_TIMEOUT")
}
