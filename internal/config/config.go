// Package config loads and validates the fontsweep configuration from
// YAML, with environment variable expansion and .env support.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Document DocumentConfig `yaml:"document"`
	Replace  ReplaceConfig  `yaml:"replace"`
	Serve    ServeConfig    `yaml:"serve"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DocumentConfig points at the document fixture to operate on.
type DocumentConfig struct {
	Path string `yaml:"path"`
}

// ReplaceConfig tunes the replacement engine.
type ReplaceConfig struct {
	BatchSize     int           `yaml:"batch_size,omitempty"`
	LoadAttempts  int           `yaml:"load_attempts,omitempty"`
	LoadRetryWait time.Duration `yaml:"load_retry_wait,omitempty"`
}

// ServeConfig configures the long-running serve mode.
type ServeConfig struct {
	NATS           NATSConfig    `yaml:"nats"`
	Metrics        MetricsConfig `yaml:"metrics"`
	Watch          bool          `yaml:"watch"`
	RescanInterval time.Duration `yaml:"rescan_interval,omitempty"`
}

// NATSConfig configures the NATS transport bridge.
type NATSConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url,omitempty"`
	SubjectPrefix string `yaml:"subject_prefix,omitempty"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr,omitempty"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// Load loads configuration from the specified file.
func Load(configPath string) (*Config, error) {
	loadEnvFile()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses configuration from raw YAML, expanding environment
// variables in the content first.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expanded), &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Default returns a configuration with all defaults applied and no
// document bound.
func Default() *Config {
	var config Config
	config.applyDefaults()
	return &config
}
