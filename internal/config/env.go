package config

import (
	"os"
	"strconv"
)

// FromEnv overlays ELEPHANT_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v := os.Getenv("ELEPHANT_NAMESPACE"); v != "" {
		cfg.Namespace = v
	}
	if v := os.Getenv("ELEPHANT_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("ELEPHANT_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("ELEPHANT_REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Redis.DB = n
		}
	}
	if v := os.Getenv("ELEPHANT_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("ELEPHANT_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("ELEPHANT_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("ELEPHANT_METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
}
