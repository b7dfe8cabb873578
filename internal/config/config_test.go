package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyticsConfigValidate(t *testing.T) {
	assert.NoError(t, (&AnalyticsConfig{Enabled: false}).Validate())

	// Disabled blocks skip credential checks entirely.
	assert.NoError(t, (&AnalyticsConfig{
		Enabled:      false,
		KafkaBrokers: []string{"localhost:9092"},
	}).Validate())

	incomplete := &AnalyticsConfig{Enabled: true, EndpointURL: "https://graph.facebook.com"}
	assert.ErrorIs(t, incomplete.Validate(), errAnalyticsIncomplete)

	complete := &AnalyticsConfig{
		Enabled:     true,
		EndpointURL: "https://graph.facebook.com",
		PixelID:     "123456",
		AccessToken: "token",
	}
	assert.NoError(t, complete.Validate())

	complete.KafkaBrokers = []string{"localhost:9092"}
	assert.ErrorIs(t, complete.Validate(), errKafkaTopicMissing)

	complete.KafkaTopic = "conversion-events"
	assert.NoError(t, complete.Validate())
}

func TestDefaultObservabilityConfigIsValid(t *testing.T) {
	cfg := DefaultObservabilityConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 30*time.Second, cfg.HealthChecks.Interval)
	assert.Contains(t, cfg.HealthChecks.Checks, "database")
	assert.Contains(t, cfg.HealthChecks.Checks, "redis")
}

func TestObservabilityConfigValidate(t *testing.T) {
	cfg := DefaultObservabilityConfig()
	cfg.Logging.Level = "verbose"
	assert.Error(t, cfg.Validate())

	cfg = DefaultObservabilityConfig()
	cfg.Logging.Format = "xml"
	assert.Error(t, cfg.Validate())

	cfg = DefaultObservabilityConfig()
	cfg.Logging.File = "/var/log/salaviva/api.log"
	cfg.Logging.MaxSizeMB = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultObservabilityConfig()
	cfg.ServiceName = ""
	assert.Error(t, cfg.Validate())
}

func TestGetLogLevel(t *testing.T) {
	prod := &ObservabilityConfig{Environment: "production"}
	assert.Equal(t, "info", prod.GetLogLevel())

	dev := &ObservabilityConfig{Environment: "development"}
	assert.Equal(t, "debug", dev.GetLogLevel())

	set := &ObservabilityConfig{Environment: "production", Logging: LoggingConfig{Level: "warn"}}
	assert.Equal(t, "warn", set.GetLogLevel())
}
