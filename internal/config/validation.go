package config

import (
	"fmt"

	"git.home.luguber.info/inful/fontsweep/internal/errors"
)

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.Replace.BatchSize < 1 {
		return errors.ConfigError(nil, fmt.Sprintf("replace.batch_size must be positive, got %d", c.Replace.BatchSize))
	}
	if c.Replace.LoadAttempts < 1 {
		return errors.ConfigError(nil, fmt.Sprintf("replace.load_attempts must be positive, got %d", c.Replace.LoadAttempts))
	}
	if c.Serve.RescanInterval < 0 {
		return errors.ConfigError(nil, "serve.rescan_interval must not be negative")
	}
	if c.Serve.NATS.Enabled && c.Serve.NATS.URL == "" {
		return errors.ConfigError(nil, "serve.nats.url is required when NATS is enabled")
	}
	if c.Serve.Metrics.Enabled && c.Serve.Metrics.Addr == "" {
		return errors.ConfigError(nil, "serve.metrics.addr is required when metrics are enabled")
	}
	return nil
}
