package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "elephant", cfg.Namespace)
	require.Equal(t, "127.0.0.1:6379", cfg.Redis.Addr)
	require.Equal(t, "info", cfg.LogLevel)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "elephant.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"namespace: prod\nredis:\n  addr: redis:6380\n  db: 2\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "prod", cfg.Namespace)
	require.Equal(t, "redis:6380", cfg.Redis.Addr)
	require.Equal(t, 2, cfg.Redis.DB)
	// Untouched fields keep their defaults.
	require.Equal(t, "info", cfg.LogLevel)
}

func TestLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "elephant.json")
	require.NoError(t, os.WriteFile(path, []byte(
		`{"namespace":"stage","dataDir":"/var/lib/elephant"}`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "stage", cfg.Namespace)
	require.Equal(t, "/var/lib/elephant", cfg.DataDir)
}

func TestLoadBadFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("namespace: [unclosed"), 0o600))
	_, err = Load(path)
	require.Error(t, err)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("ELEPHANT_NAMESPACE", "envns")
	t.Setenv("ELEPHANT_REDIS_ADDR", "10.0.0.1:6379")
	t.Setenv("ELEPHANT_REDIS_DB", "3")
	t.Setenv("ELEPHANT_METRICS_ADDR", ":9402")

	cfg := Default()
	FromEnv(&cfg)
	require.Equal(t, "envns", cfg.Namespace)
	require.Equal(t, "10.0.0.1:6379", cfg.Redis.Addr)
	require.Equal(t, 3, cfg.Redis.DB)
	require.Equal(t, ":9402", cfg.MetricsAddr)
}

func TestFromEnvIgnoresInvalidInt(t *testing.T) {
	t.Setenv("ELEPHANT_REDIS_DB", "not-a-number")
	cfg := Default()
	FromEnv(&cfg)
	require.Equal(t, 0, cfg.Redis.DB)
}
