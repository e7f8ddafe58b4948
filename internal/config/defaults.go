package config

import "time"

// Default values applied when the configuration leaves a field unset.
const (
	DefaultBatchSize      = 50
	DefaultLoadAttempts   = 3
	DefaultLoadRetryWait  = 200 * time.Millisecond
	DefaultNATSURL        = "nats://localhost:4222"
	DefaultSubjectPrefix  = "fontsweep"
	DefaultMetricsAddr    = ":9097"
	DefaultRescanInterval = 5 * time.Minute
)

func (c *Config) applyDefaults() {
	if c.Replace.BatchSize == 0 {
		c.Replace.BatchSize = DefaultBatchSize
	}
	if c.Replace.LoadAttempts == 0 {
		c.Replace.LoadAttempts = DefaultLoadAttempts
	}
	if c.Replace.LoadRetryWait == 0 {
		c.Replace.LoadRetryWait = DefaultLoadRetryWait
	}
	if c.Serve.NATS.URL == "" {
		c.Serve.NATS.URL = DefaultNATSURL
	}
	if c.Serve.NATS.SubjectPrefix == "" {
		c.Serve.NATS.SubjectPrefix = DefaultSubjectPrefix
	}
	if c.Serve.Metrics.Addr == "" {
		c.Serve.Metrics.Addr = DefaultMetricsAddr
	}
	if c.Serve.RescanInterval == 0 {
		c.Serve.RescanInterval = DefaultRescanInterval
	}
	c.Logging.Level = string(NormalizeLogLevel(c.Logging.Level))
	c.Logging.Format = string(NormalizeLogFormat(c.Logging.Format))
}
