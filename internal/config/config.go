// Package config loads the propagenda server configuration.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ProjectConfigFile is read from the working directory when no path is given.
const ProjectConfigFile = "propagenda.yaml"

// Config represents the complete propagenda configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Agendas  AgendasConfig  `yaml:"agendas"`
	Selector SelectorConfig `yaml:"selector"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

type ServerConfig struct {
	// Addr is the HTTP listen address
	Addr string `yaml:"addr"`
	// ShutdownTimeout bounds graceful shutdown
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string `yaml:"level"`
}

// AgendasConfig locates the agenda metadata.
type AgendasConfig struct {
	// Location is a file path or http(s) URL; empty uses the embedded list
	Location string `yaml:"location"`
	// Watch reloads a file location whenever it changes
	Watch bool `yaml:"watch"`
	// Debounce is how long writes must settle before a reload
	Debounce time.Duration `yaml:"debounce"`
}

type SelectorConfig struct {
	// Seed makes agenda selection reproducible; 0 seeds from the clock
	Seed int64 `yaml:"seed"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Log: LogConfig{Level: "info"},
		Agendas: AgendasConfig{
			Location: "", // Embedded
			Watch:    false,
			Debounce: 500 * time.Millisecond,
		},
		Metrics: MetricsConfig{Enabled: true},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("server.shutdown_timeout must not be negative")
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Agendas.Debounce < 0 {
		return fmt.Errorf("agendas.debounce must not be negative")
	}
	if c.Agendas.Watch && c.WatchesURL() {
		return fmt.Errorf("agendas.watch requires a file location, got %q", c.Agendas.Location)
	}
	return nil
}

// WatchesURL reports whether the agenda location is remote.
func (c *Config) WatchesURL() bool {
	l := c.Agendas.Location
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

// LoadFromFile loads configuration from a YAML file on top of the defaults
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return config, nil
}

// Load reads path, or ProjectConfigFile when path is empty. A missing
// ProjectConfigFile yields the defaults; a missing explicit path is an error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = ProjectConfigFile
	}
	config, err := LoadFromFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			config = DefaultConfig()
		} else {
			return nil, err
		}
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return config, nil
}

// ParseLevel maps a level name to its slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown level %q", s)
}
