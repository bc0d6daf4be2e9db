// Package config loads easel settings.
// Priority: flags > env vars > easel.yaml > defaults.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file read when none is given.
const DefaultPath = "easel.yaml"

// Config holds every setting the CLI and servers need.
type Config struct {
	LogLevel  string         `yaml:"log_level" json:"log_level"`
	LogFormat string         `yaml:"log_format" json:"log_format"`
	Mode      string         `yaml:"mode" json:"mode"`
	Timeout   time.Duration  `yaml:"timeout" json:"timeout"`
	Provider  ProviderConfig `yaml:"provider" json:"provider"`
	Server    ServerConfig   `yaml:"server" json:"server"`
	Replay    ReplayConfig   `yaml:"replay" json:"replay"`
	Canvas    CanvasConfig   `yaml:"canvas" json:"canvas"`
}

// ProviderConfig selects the model backend.
type ProviderConfig struct {
	// Kind is "openai" or "http".
	Kind    string `yaml:"kind" json:"kind"`
	Model   string `yaml:"model" json:"model"`
	BaseURL string `yaml:"base_url" json:"base_url"`
	APIKey  string `yaml:"api_key" json:"-"`
	// Endpoint is the worker address used by the http kind.
	Endpoint string `yaml:"endpoint" json:"endpoint"`
}

// ServerConfig configures `easel serve`.
type ServerConfig struct {
	Addr string `yaml:"addr" json:"addr"`
}

// ReplayConfig selects where the last run is kept.
type ReplayConfig struct {
	// Backend is "memory" or "redis".
	Backend string      `yaml:"backend" json:"backend"`
	Key     string      `yaml:"key" json:"key"`
	Redis   RedisConfig `yaml:"redis" json:"redis"`
	// EncryptionKey is a base64 AES-256 key. When set, replays are stored
	// encrypted.
	EncryptionKey string `yaml:"encryption_key" json:"-"`
	// Redact lists patterns masked out of stored prompt text.
	Redact []string `yaml:"redact" json:"redact"`
}

// RedisConfig is used when Replay.Backend is "redis".
type RedisConfig struct {
	Addr     string        `yaml:"addr" json:"addr"`
	Password string        `yaml:"password" json:"-"`
	DB       int           `yaml:"db" json:"db"`
	Prefix   string        `yaml:"prefix" json:"prefix"`
	TTL      time.Duration `yaml:"ttl" json:"ttl"`
}

// CanvasConfig points at the file-backed canvas store.
type CanvasConfig struct {
	Dir  string `yaml:"dir" json:"dir"`
	Name string `yaml:"name" json:"name"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		LogLevel:  "info",
		LogFormat: "text",
		Mode:      "stream",
		Timeout:   2 * time.Minute,
		Provider: ProviderConfig{
			Kind:  "openai",
			Model: "gpt-4o",
		},
		Server: ServerConfig{Addr: ":8080"},
		Replay: ReplayConfig{
			Backend: "memory",
			Key:     "last",
			Redis:   RedisConfig{Addr: "localhost:6379", Prefix: "easel:replay:"},
		},
		Canvas: CanvasConfig{Dir: ".easel", Name: "default"},
	}
}

// Load reads path (YAML, or JSON by extension) over the defaults and then
// applies environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if strings.ToLower(filepath.Ext(path)) == ".json" {
			err = json.Unmarshal(data, &cfg)
		} else {
			err = yaml.Unmarshal(data, &cfg)
		}
		if err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Validate checks enumerated fields.
func (c Config) Validate() error {
	switch c.Mode {
	case "batch", "stream":
	default:
		return fmt.Errorf("mode must be batch or stream, got %q", c.Mode)
	}
	switch c.Provider.Kind {
	case "openai", "http":
	default:
		return fmt.Errorf("provider.kind must be openai or http, got %q", c.Provider.Kind)
	}
	switch c.Replay.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("replay.backend must be memory or redis, got %q", c.Replay.Backend)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	return nil
}

type lookupFunc func(string) (string, bool)

func applyEnv(cfg *Config, lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("EASEL_LOG_LEVEL", &cfg.LogLevel)
	str("EASEL_LOG_FORMAT", &cfg.LogFormat)
	str("EASEL_MODE", &cfg.Mode)
	str("EASEL_PROVIDER", &cfg.Provider.Kind)
	str("EASEL_MODEL", &cfg.Provider.Model)
	str("EASEL_BASE_URL", &cfg.Provider.BaseURL)
	str("OPENAI_API_KEY", &cfg.Provider.APIKey)
	str("EASEL_API_KEY", &cfg.Provider.APIKey)
	str("EASEL_ENDPOINT", &cfg.Provider.Endpoint)
	str("EASEL_ADDR", &cfg.Server.Addr)
	str("EASEL_REPLAY_BACKEND", &cfg.Replay.Backend)
	str("EASEL_REDIS_ADDR", &cfg.Replay.Redis.Addr)
	str("EASEL_REDIS_PASSWORD", &cfg.Replay.Redis.Password)
	str("EASEL_CANVAS_DIR", &cfg.Canvas.Dir)
	str("EASEL_REPLAY_ENCRYPTION_KEY", &cfg.Replay.EncryptionKey)

	if v, ok := lookup("EASEL_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("EASEL_TIMEOUT: %w", err)
		}
		cfg.Timeout = d
	}
	if v, ok := lookup("EASEL_REDIS_DB"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("EASEL_REDIS_DB: %w", err)
		}
		cfg.Replay.Redis.DB = n
	}
	return nil
}
