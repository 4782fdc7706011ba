package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level CLI configuration loaded from file and env.
type Config struct {
	// Namespace prefixes every derived key so multiple deployments can
	// share one backend.
	Namespace string      `json:"namespace" yaml:"namespace"`
	Redis     RedisConfig `json:"redis" yaml:"redis"`
	// DataDir selects the embedded Pebble backend when Redis.Addr is empty.
	DataDir   string `json:"dataDir" yaml:"dataDir"`
	LogLevel  string `json:"logLevel" yaml:"logLevel"`
	LogFormat string `json:"logFormat" yaml:"logFormat"`
	// MetricsAddr serves prometheus metrics when set (worker mode).
	MetricsAddr string `json:"metricsAddr" yaml:"metricsAddr"`
}

// RedisConfig holds connection settings for the Redis backend.
type RedisConfig struct {
	Addr     string `json:"addr" yaml:"addr"`
	Password string `json:"password" yaml:"password"`
	DB       int    `json:"db" yaml:"db"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		Namespace: "elephant",
		Redis:     RedisConfig{Addr: "127.0.0.1:6379"},
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load reads configuration from a JSON or YAML file (by extension),
// overlaid on defaults. An empty path returns defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config %s: %w", path, err)
		}
	}
	return cfg, nil
}
