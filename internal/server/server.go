// Package server defines the core Server struct that composes the app's
// main dependencies.
//
// It owns the lifecycle of:
//   - configuration
//   - logger + optional New Relic service wrapper
//   - database pool
//   - redis client
//   - background job client (asynq, enqueue side)
//   - http.Server
//
// The asynq worker that consumes jobs runs as its own process (the worker
// subcommand); API processes only enqueue.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	nrredis "github.com/newrelic/go-agent/v3/integrations/nrredis-v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/salaviva/backend/internal/config"
	"github.com/salaviva/backend/internal/database"
	"github.com/salaviva/backend/internal/lib/job"
	loggerPkg "github.com/salaviva/backend/internal/logger"
)

// Server is the application container that holds shared resources. It is
// not the HTTP server itself; the inner *http.Server is configured by
// SetupHTTPServer and run by Start.
type Server struct {
	Config *config.Config

	Logger *zerolog.Logger

	// LoggerService optionally holds the New Relic application instance.
	// If New Relic is disabled, this may exist but contain a nil app.
	LoggerService *loggerPkg.LoggerService

	DB *database.Database

	Redis *redis.Client

	httpServer *http.Server

	// Job enqueues background tasks (emails, payment sync). The worker
	// process consumes them.
	Job *job.JobService
}

// New constructs a Server and initializes core dependencies: the
// PostgreSQL pool (with optional New Relic tracing), the Redis client
// (with optional New Relic hooks) and the asynq job client.
//
// A failed database ping aborts startup. A failed Redis ping does not:
// booking and payment flows work without Redis, only enqueues and rate
// limiting degrade, and those log their own failures.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) (*Server, error) {
	db, err := database.New(cfg, logger, loggerService)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Address,
	})

	if loggerService != nil && loggerService.GetApplication() != nil {
		redisClient.AddHook(nrredis.NewHook(redisClient.Options()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Error().Err(err).Msg("Failed to connect to Redis, continuing without Redis")
	}

	jobService := job.NewJobService(logger, cfg)

	server := &Server{
		Config:        cfg,
		Logger:        logger,
		LoggerService: loggerService,
		DB:            db,
		Redis:         redisClient,
		Job:           jobService,
	}

	return server, nil
}

// SetupHTTPServer configures the internal net/http server around the
// given handler (the echo router). Timeouts come from config, in seconds.
func (s *Server) SetupHTTPServer(handler http.Handler) {
	s.httpServer = &http.Server{
		Addr:         ":" + s.Config.Server.Port,
		Handler:      handler,
		ReadTimeout:  time.Duration(s.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.Config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.Config.Server.IdleTimeout) * time.Second,
	}
}

// Start runs the HTTP server. SetupHTTPServer must have been called
// first. Blocks until the server stops or errors.
func (s *Server) Start() error {
	if s.httpServer == nil {
		return errors.New("HTTP server not initialized")
	}

	s.Logger.Info().
		Str("port", s.Config.Server.Port).
		Str("env", s.Config.Primary.Env).
		Msg("starting server")

	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server (finishing inflight requests
// until the ctx deadline), then closes the job client, the database pool
// and the Redis client.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown HTTP server: %w", err)
		}
	}

	if s.Job != nil {
		s.Job.Close()
	}

	if err := s.DB.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}

	if err := s.Redis.Close(); err != nil {
		return fmt.Errorf("failed to close redis client: %w", err)
	}

	return nil
}
