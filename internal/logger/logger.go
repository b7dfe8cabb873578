// Package logger configures the application's logging,
// monitoring, and observability.
//
// It uses *ZeroLog* for logging and integrates with
// *New Relic* to instrument the codebase, forwarding logs,
// metrics, and traces for debugging.
//
// It handles:
//   - building the root zerolog logger (console format in local env,
//     JSON elsewhere)
//   - optional rotating file output via lumberjack
//   - optional New Relic agent init + log forwarding (zerologWriter)
//   - helpers that attach trace context to request-scoped loggers
//   - a dedicated quieter logger for pgx SQL tracing
package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/natefinch/lumberjack"
	"github.com/newrelic/go-agent/v3/integrations/logcontext-v2/zerologWriter"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"

	"github.com/salaviva/backend/internal/config"
)

// LoggerService wraps the optional New Relic application instance.
//
// When New Relic is disabled (no license key), the service still exists
// but GetApplication returns nil and all instrumentation degrades to
// no-ops.
type LoggerService struct {
	nrApp *newrelic.Application
}

// GetApplication returns the New Relic application, or nil when the
// agent is not configured.
func (ls *LoggerService) GetApplication() *newrelic.Application {
	if ls == nil {
		return nil
	}
	return ls.nrApp
}

// Shutdown flushes pending telemetry. Safe to call when the agent is
// disabled.
func (ls *LoggerService) Shutdown(timeout time.Duration) {
	if ls == nil || ls.nrApp == nil {
		return
	}
	ls.nrApp.Shutdown(timeout)
}

// New builds the application logger and the observability service.
//
// Output selection:
//   - format "console": human-friendly console writer (local dev)
//   - format "json": plain JSON to stdout (log pipelines)
//   - Logging.File set: a lumberjack rotating file sink is added next to
//     the primary output
//   - New Relic log forwarding on: stdout is wrapped with zerologWriter
//     so log lines are decorated and forwarded by the agent
func New(cfg *config.Config) (*zerolog.Logger, *LoggerService, error) {
	level, err := zerolog.ParseLevel(cfg.Observability.GetLogLevel())
	if err != nil {
		return nil, nil, fmt.Errorf("parse log level: %w", err)
	}

	service := &LoggerService{}

	if cfg.Observability.NewRelic.LicenseKey != "" {
		opts := []newrelic.ConfigOption{
			newrelic.ConfigAppName(cfg.Observability.ServiceName),
			newrelic.ConfigLicense(cfg.Observability.NewRelic.LicenseKey),
			newrelic.ConfigAppLogForwardingEnabled(cfg.Observability.NewRelic.AppLogForwardingEnabled),
			newrelic.ConfigDistributedTracerEnabled(cfg.Observability.NewRelic.DistributedTracingEnabled),
		}
		if cfg.Observability.NewRelic.DebugLogging {
			opts = append(opts, newrelic.ConfigDebugLogger(os.Stderr))
		}

		nrApp, err := newrelic.NewApplication(opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("initialize new relic application: %w", err)
		}
		service.nrApp = nrApp
	}

	var out io.Writer
	switch cfg.Observability.Logging.Format {
	case "console":
		out = zerolog.ConsoleWriter{Out: os.Stdout}
	default:
		out = os.Stdout
		if service.nrApp != nil && cfg.Observability.NewRelic.AppLogForwardingEnabled {
			w := zerologWriter.New(os.Stdout, service.nrApp)
			out = &w
		}
	}

	if file := cfg.Observability.Logging.File; file != "" {
		rotating := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    cfg.Observability.Logging.MaxSizeMB,
			MaxBackups: cfg.Observability.Logging.MaxBackups,
			MaxAge:     cfg.Observability.Logging.MaxAgeDays,
			Compress:   true,
		}
		out = zerolog.MultiLevelWriter(out, rotating)
	}

	log := zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("service", cfg.Observability.ServiceName).
		Str("env", cfg.Observability.Environment).
		Logger()

	return &log, service, nil
}

// WithTraceContext returns a child logger carrying the New Relic trace
// and span ids, so log lines can be correlated with distributed traces.
func WithTraceContext(log zerolog.Logger, txn *newrelic.Transaction) zerolog.Logger {
	if txn == nil {
		return log
	}
	md := txn.GetTraceMetadata()
	builder := log.With()
	if md.TraceID != "" {
		builder = builder.Str("trace.id", md.TraceID)
	}
	if md.SpanID != "" {
		builder = builder.Str("span.id", md.SpanID)
	}
	return builder.Logger()
}

// NewPgxLogger builds the logger handed to the pgx tracelog adapter.
// SQL tracing is chatty, so it writes console format and inherits the
// app's level.
func NewPgxLogger(level zerolog.Level) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
		Level(level).
		With().
		Timestamp().
		Str("component", "pgx").
		Logger()
}

// pgx tracelog levels: none=1, error=2, warn=3, info=4, debug=5, trace=6.
const (
	pgxLogLevelNone  = 1
	pgxLogLevelError = 2
	pgxLogLevelWarn  = 3
	pgxLogLevelInfo  = 4
	pgxLogLevelDebug = 5
	pgxLogLevelTrace = 6
)

// GetPgxTraceLogLevel maps the zerolog level to the pgx tracelog level
// so SQL logging verbosity follows the application's log level.
func GetPgxTraceLogLevel(level zerolog.Level) int {
	switch level {
	case zerolog.TraceLevel:
		return pgxLogLevelTrace
	case zerolog.DebugLevel:
		return pgxLogLevelDebug
	case zerolog.InfoLevel:
		return pgxLogLevelInfo
	case zerolog.WarnLevel:
		return pgxLogLevelWarn
	case zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel:
		return pgxLogLevelError
	default:
		return pgxLogLevelNone
	}
}
