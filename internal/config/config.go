// Package config manages environment variables.
//
// It reads variables from the `.env` file, loads them into structured
// Go types, and validates that required values are present so they can
// be reused across the application runtime.
//
// Responsibilities:
//   - Load environment variables (optionally from a `.env` file).
//   - Map env vars into a structured Go config (structs).
//   - Validate required values so the app fails fast on bad/missing config.
//   - Provide sane defaults for optional config blocks (observability,
//     analytics, log file rotation).
package config

import (
	"errors"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	// Side-effect import: loads a `.env` file into the process env, if one
	// exists, before any env var is read.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
)

var (
	errAnalyticsIncomplete = errors.New("analytics enabled but endpoint_url, pixel_id or access_token missing")
	errKafkaTopicMissing   = errors.New("analytics kafka_brokers set but kafka_topic missing")
)

// Env vars use the SALAVIVA_ prefix and "." nesting, e.g.
// SALAVIVA_SERVER.PORT -> server.port -> Config.Server.Port.
const envPrefix = "SALAVIVA_"

// Config is the root configuration object for the application.
//
// The `koanf:"..."` tags specify where koanf maps values from, the
// `validate:"required"` tags enforce presence at startup. Observability
// and Analytics are pointers because they are optional; defaults are
// injected at runtime when they are missing.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Redis         RedisConfig          `koanf:"redis" validate:"required"`
	Auth          AuthConfig           `koanf:"auth" validate:"required"`
	Gateway       GatewayConfig        `koanf:"gateway" validate:"required"`
	Email         EmailConfig          `koanf:"email" validate:"required"`
	Analytics     *AnalyticsConfig     `koanf:"analytics"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment,
// used to tag logs/traces and to switch behavior based on env.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
// Timeouts are stored as integer seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	BaseURL            string   `koanf:"base_url" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required"`
}

// DatabaseConfig contains PostgreSQL connection parameters and pool tuning.
type DatabaseConfig struct {
	Host            string `koanf:"host" validate:"required"`
	Port            int    `koanf:"port" validate:"required"`
	User            string `koanf:"user" validate:"required"`
	Password        string `koanf:"password" validate:"required"`
	Name            string `koanf:"name" validate:"required"`
	SSLMode         string `koanf:"ssl_mode" validate:"required"`
	MaxOpenConns    int    `koanf:"max_open_conns" validate:"required"`
	MaxIdleConns    int    `koanf:"max_idle_conns" validate:"required"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime" validate:"required"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time" validate:"required"`
}

// RedisConfig contains Redis connection details. Address is "host:port".
// Redis backs the asynq job queue and the API rate limiter.
type RedisConfig struct {
	Address string `koanf:"address" validate:"required"`
}

// AuthConfig stores session authentication settings.
//
// SessionSecret signs the session JWT stored in the HTTP-only cookie.
// Protect the `.env` file and environment access in deployments.
type AuthConfig struct {
	SessionSecret   string `koanf:"session_secret" validate:"required,min=32"`
	SessionTTLHours int    `koanf:"session_ttl_hours" validate:"required,min=1"`
	CookieDomain    string `koanf:"cookie_domain"`
	CookieSecure    bool   `koanf:"cookie_secure"`
}

// GatewayConfig holds the payment gateway (PIX/card) credentials.
//
// WebhookSecret is the shared secret used to verify the HMAC signature
// of incoming payment webhooks.
type GatewayConfig struct {
	Provider      string `koanf:"provider" validate:"required"`
	BaseURL       string `koanf:"base_url" validate:"required,url"`
	APIKey        string `koanf:"api_key" validate:"required"`
	WebhookSecret string `koanf:"webhook_secret" validate:"required"`
}

// EmailConfig holds the transactional email provider settings.
type EmailConfig struct {
	ResendAPIKey string `koanf:"resend_api_key" validate:"required"`
	FromName     string `koanf:"from_name" validate:"required"`
	FromAddress  string `koanf:"from_address" validate:"required,email"`
	ReplyTo      string `koanf:"reply_to"`
}

// AnalyticsConfig holds the conversion tracking settings. The whole block
// is optional: when absent, conversion events are logged and discarded.
//
// KafkaBrokers/KafkaTopic mirror events to a Kafka stream for the data
// pipeline, in addition to the HTTP conversions endpoint.
type AnalyticsConfig struct {
	Enabled      bool     `koanf:"enabled"`
	EndpointURL  string   `koanf:"endpoint_url"`
	PixelID      string   `koanf:"pixel_id"`
	AccessToken  string   `koanf:"access_token"`
	KafkaBrokers []string `koanf:"kafka_brokers"`
	KafkaTopic   string   `koanf:"kafka_topic"`
}

// Validate checks the analytics block beyond struct tags: an enabled
// block must carry the HTTP endpoint credentials, and a Kafka mirror
// needs both brokers and a topic.
func (a *AnalyticsConfig) Validate() error {
	if !a.Enabled {
		return nil
	}
	if a.EndpointURL == "" || a.PixelID == "" || a.AccessToken == "" {
		return errAnalyticsIncomplete
	}
	if len(a.KafkaBrokers) > 0 && a.KafkaTopic == "" {
		return errKafkaTopicMissing
	}
	return nil
}

// Load loads configuration from environment variables, unmarshals it into
// Config structs, validates it, applies defaults, and returns the result.
//
// Behavior summary:
//   - Loads env vars with prefix SALAVIVA_
//   - Converts env keys into koanf keys using "." nesting
//   - Unmarshals into Config
//   - Validates required config blocks/fields
//   - Injects default observability/analytics blocks when missing
//   - Forces the observability service name and environment
//
// Config errors are fatal: a process with bad config must not start.
func Load() (*Config, error) {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	k := koanf.New(".")

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil)
	if err != nil {
		logger.Fatal().Err(err).Msg("Could not load initial env variables.")
	}

	mainConfig := &Config{}

	if err := k.Unmarshal("", mainConfig); err != nil {
		logger.Fatal().Err(err).Msg("Could not unmarshal main config.")
	}

	validate := validator.New()

	if err := validate.Struct(mainConfig); err != nil {
		logger.Fatal().Err(err).Msg("Config validation failed.")
	}

	if mainConfig.Observability == nil {
		mainConfig.Observability = DefaultObservabilityConfig()
	}

	// Service name and environment are forced so tracing/logging always
	// sees consistent naming regardless of env overrides.
	mainConfig.Observability.ServiceName = "salaviva-api"
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := mainConfig.Observability.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid observability config")
	}

	if mainConfig.Analytics == nil {
		mainConfig.Analytics = &AnalyticsConfig{Enabled: false}
	}
	if err := mainConfig.Analytics.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid analytics config")
	}

	return mainConfig, nil
}
