// Package job provides background job processing using Asynq.
//
// Asynq is a Redis-backed job queue:
//   - API processes enqueue tasks (producer) through JobService.
//   - The worker process runs an asynq.Server that consumes them, plus a
//     cron scheduler that enqueues the periodic maintenance tasks.
//
// Task types and payloads live in tasks.go; the consumer side in
// worker.go.
package job

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/salaviva/backend/internal/config"
)

// Queue names, weighted in the worker so payment-critical work is never
// starved by bulk email.
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// JobService holds the Asynq client used to enqueue tasks into Redis.
type JobService struct {
	Client *asynq.Client
	logger *zerolog.Logger
}

// NewJobService creates the enqueue-side client against Redis from cfg.
func NewJobService(logger *zerolog.Logger, cfg *config.Config) *JobService {
	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr: cfg.Redis.Address,
	})

	return &JobService{
		Client: client,
		logger: logger,
	}
}

// Enqueue pushes a task into Redis. Failures are logged with the task
// type; callers on best-effort paths (post-payment emails, analytics)
// ignore the returned error, callers that need the task delivered check it.
func (j *JobService) Enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) error {
	info, err := j.Client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		j.logger.Error().
			Str("task", task.Type()).
			Err(err).
			Msg("failed to enqueue task")
		return err
	}

	j.logger.Debug().
		Str("task", task.Type()).
		Str("queue", info.Queue).
		Str("id", info.ID).
		Msg("task enqueued")

	return nil
}

// Close closes the Redis connections used for enqueueing.
func (j *JobService) Close() {
	if err := j.Client.Close(); err != nil {
		j.logger.Error().Err(err).Msg("failed to close job client")
	}
}
