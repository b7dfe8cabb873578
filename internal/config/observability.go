package config

import (
	"fmt"
	"time"
)

// ObservabilityConfig groups all configuration related to telemetry and
// runtime visibility: logging settings, APM/tracing provider settings
// (New Relic) and periodic dependency health checks.
//
// It is embedded under Config.Observability and is optional at the root
// level (pointer in Config). If omitted, defaults are injected.
type ObservabilityConfig struct {
	// ServiceName identifies this service in logs/traces/APM dashboards.
	// Hardcoded per service so env overrides cannot fragment dashboards.
	ServiceName string `koanf:"service_name" validate:"required"`

	// Environment is a label used to split telemetry by environment
	// (production, staging, development, local).
	Environment string `koanf:"environment" validate:"required"`

	// Logging config controls structured logger behavior.
	Logging LoggingConfig `koanf:"logging" validate:"required"`

	// NewRelic config controls APM and tracing features.
	NewRelic NewRelicConfig `koanf:"new_relic" validate:"required"`

	// HealthChecks config controls periodic dependency health checks.
	HealthChecks HealthChecksConfig `koanf:"health_checks" validate:"required"`
}

// LoggingConfig holds application logging configuration.
type LoggingConfig struct {
	// Level is the verbosity threshold (debug/info/warn/error).
	Level string `koanf:"level" validate:"required"`

	// Format selects the output format for logs ("json" or "console").
	Format string `koanf:"format" validate:"required"`

	// SlowQueryThreshold is a duration beyond which queries are considered
	// slow and flagged. Env values must be parseable durations ("100ms").
	SlowQueryThreshold time.Duration `koanf:"slow_query_threshold"`

	// File, when set, adds a rotating file sink (lumberjack) next to the
	// primary output. Sizes are megabytes, age is days.
	File       string `koanf:"file"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
	MaxAgeDays int    `koanf:"max_age_days"`
}

// NewRelicConfig holds configuration for New Relic APM and tracing.
// An empty LicenseKey means "not configured" and disables the agent.
type NewRelicConfig struct {
	LicenseKey string `koanf:"license_key"`

	// AppLogForwardingEnabled forwards application logs to New Relic.
	AppLogForwardingEnabled bool `koanf:"app_log_forwarding_enabled"`

	// DistributedTracingEnabled traces requests across service boundaries.
	DistributedTracingEnabled bool `koanf:"distributed_tracing_enabled"`

	// DebugLogging enables agent debug output. Off in production to avoid
	// mixed log formats.
	DebugLogging bool `koanf:"debug_logging"`
}

// HealthChecksConfig controls periodic checks for dependencies.
type HealthChecksConfig struct {
	Enabled bool `koanf:"enabled"`

	// Interval is how frequently checks run.
	Interval time.Duration `koanf:"interval" validate:"min=1s"`

	// Timeout is the max time allowed for a check run.
	Timeout time.Duration `koanf:"timeout" validate:"min=1s"`

	// Checks is a list of check names to run (database, redis).
	Checks []string `koanf:"checks"`
}

// DefaultObservabilityConfig provides a safe set of defaults, used when
// Config.Observability is nil. Sensible for local dev without breaking
// production.
func DefaultObservabilityConfig() *ObservabilityConfig {
	return &ObservabilityConfig{
		// Service/environment are overwritten in Load().
		ServiceName: "salaviva-api",
		Environment: "development",

		Logging: LoggingConfig{
			Level:              "info",
			Format:             "json",
			SlowQueryThreshold: 100 * time.Millisecond,
			MaxSizeMB:          100,
			MaxBackups:         5,
			MaxAgeDays:         28,
		},

		NewRelic: NewRelicConfig{
			LicenseKey:                "",
			AppLogForwardingEnabled:   true,
			DistributedTracingEnabled: true,
			DebugLogging:              false, // avoid mixed log formats
		},

		HealthChecks: HealthChecksConfig{
			Enabled:  true,
			Interval: 30 * time.Second,
			Timeout:  5 * time.Second,
			Checks:   []string{"database", "redis"},
		},
	}
}

// Validate applies custom validation rules that go beyond struct tags:
// enum membership and cross-field constraints.
func (c *ObservabilityConfig) Validate() error {
	if c.ServiceName == "" {
		return fmt.Errorf("service_name is required")
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s (must be one of: debug, info, warn, error)", c.Logging.Level)
	}

	validFormats := map[string]bool{
		"json":    true,
		"console": true,
	}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s (must be one of: json, console)", c.Logging.Format)
	}

	if c.Logging.SlowQueryThreshold < 0 {
		return fmt.Errorf("logging slow_query_threshold must be non-negative")
	}

	if c.Logging.File != "" && c.Logging.MaxSizeMB <= 0 {
		return fmt.Errorf("logging max_size_mb must be positive when a log file is configured")
	}

	return nil
}

// GetLogLevel returns the effective log level to use at runtime, with
// defaulting by environment: production defaults to "info", development
// to "debug".
func (c *ObservabilityConfig) GetLogLevel() string {
	switch c.Environment {
	case "production":
		if c.Logging.Level == "" {
			return "info"
		}
	case "development":
		if c.Logging.Level == "" {
			return "debug"
		}
	}
	return c.Logging.Level
}

// IsProduction reports whether the application is running in production.
func (c *ObservabilityConfig) IsProduction() bool {
	return c.Environment == "production"
}
