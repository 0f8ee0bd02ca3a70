// OpenLearn Recommender - Personalized Learning Video Recommendations
// Copyright 2026 OpenLearn contributors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/openlearn-tv/recommender

// Package config loads the application configuration from layered sources:
// built-in defaults, an optional YAML file, and OPENLEARN_-prefixed
// environment variables, in ascending precedence.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/openlearn-tv/recommender/internal/logging"
	"github.com/openlearn-tv/recommender/internal/recommend"
)

// DefaultConfigPaths lists where config files are searched, first hit wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/openlearn/recommender.yaml",
	"/etc/openlearn/recommender.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "OPENLEARN_CONFIG_PATH"

// envPrefix is stripped from environment variables before mapping them to
// config paths. Double underscores separate path segments so key names may
// themselves contain underscores: OPENLEARN_SERVER__PORT -> server.port,
// OPENLEARN_RECOMMEND__LIMITS__DEFAULT_LIMIT -> recommend.limits.default_limit.
const envPrefix = "OPENLEARN_"

// Config is the full application configuration.
type Config struct {
	// Server configures the HTTP serving layer.
	Server ServerConfig `koanf:"server"`

	// Logging configures the zerolog setup.
	Logging logging.Config `koanf:"logging"`

	// Recommend configures the recommendation engine.
	Recommend recommend.Config `koanf:"recommend"`

	// Store configures the in-memory store seed.
	Store StoreConfig `koanf:"store"`
}

// ServerConfig configures the HTTP serving layer.
type ServerConfig struct {
	// Host is the listen address. Default: 0.0.0.0.
	Host string `koanf:"host" validate:"required"`

	// Port is the listen port. Default: 8080.
	Port int `koanf:"port" validate:"min=1,max=65535"`

	// ReadTimeout bounds reading the request including the body.
	ReadTimeout time.Duration `koanf:"read_timeout" validate:"min=1ms"`

	// WriteTimeout bounds writing the response.
	WriteTimeout time.Duration `koanf:"write_timeout" validate:"min=1ms"`

	// ShutdownTimeout bounds graceful shutdown before in-flight requests
	// are dropped.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"min=1ms"`

	// RateLimitPerMinute caps requests per client IP per minute.
	// Zero disables rate limiting.
	RateLimitPerMinute int `koanf:"rate_limit_per_minute" validate:"min=0"`
}

// StoreConfig configures the in-memory store seed.
type StoreConfig struct {
	// SeedPath points at a JSON fixture loaded at startup. Empty starts
	// with an empty store.
	SeedPath string `koanf:"seed_path"`
}

// defaultConfig returns the built-in defaults, the lowest precedence layer.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:               "0.0.0.0",
			Port:               8080,
			ReadTimeout:        10 * time.Second,
			WriteTimeout:       15 * time.Second,
			ShutdownTimeout:    10 * time.Second,
			RateLimitPerMinute: 300,
		},
		Logging:   logging.DefaultConfig(),
		Recommend: *recommend.DefaultConfig(),
	}
}

// Load builds the configuration from defaults, an optional config file, and
// environment variables, then validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider(envPrefix, ".", func(key string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(key, envPrefix)), "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the whole configuration tree.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	if err := c.Recommend.Validate(); err != nil {
		return fmt.Errorf("recommend configuration: %w", err)
	}
	return nil
}

// findConfigFile returns the first existing config file path, checking the
// env override first.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
