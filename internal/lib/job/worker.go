package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/salaviva/backend/internal/config"
	"github.com/salaviva/backend/internal/lib/email"
)

// PaymentMaintainer is the slice of the payment service the worker needs:
// sweeping expired pending payments and reconciling with the gateway.
type PaymentMaintainer interface {
	ExpirePending(ctx context.Context) (int, error)
	SyncPending(ctx context.Context) (int, error)
}

// ReminderScheduler finds confirmed bookings starting soon and enqueues
// their reminder emails.
type ReminderScheduler interface {
	ScheduleDueReminders(ctx context.Context) (int, error)
}

// Worker consumes tasks from Redis and runs the cron scheduler that
// enqueues the periodic sweeps. It runs as its own process (the worker
// subcommand), separate from the API.
type Worker struct {
	server    *asynq.Server
	cron      *cron.Cron
	jobs      *JobService
	email     *email.Client
	payments  PaymentMaintainer
	reminders ReminderScheduler
	logger    *zerolog.Logger
}

// NewWorker builds the consumer side. Queue weights give payment work the
// majority of the 10 worker slots, bulk email the rest.
func NewWorker(
	cfg *config.Config,
	logger *zerolog.Logger,
	jobs *JobService,
	emailClient *email.Client,
	payments PaymentMaintainer,
	reminders ReminderScheduler,
) *Worker {
	server := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.Redis.Address},
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				QueueCritical: 6,
				QueueDefault:  3,
				QueueLow:      1,
			},
		},
	)

	return &Worker{
		server:    server,
		cron:      cron.New(),
		jobs:      jobs,
		email:     emailClient,
		payments:  payments,
		reminders: reminders,
		logger:    logger,
	}
}

// Run registers all task handlers, starts the cron scheduler and runs the
// asynq server. Blocks until SIGTERM/SIGINT, which asynq handles itself.
func (w *Worker) Run() error {
	mux := asynq.NewServeMux()

	mux.HandleFunc(TaskWelcomeEmail, w.handleWelcomeEmail)
	mux.HandleFunc(TaskBookingConfirmedEmail, w.handleBookingConfirmedEmail)
	mux.HandleFunc(TaskBookingCancelledEmail, w.handleBookingCancelledEmail)
	mux.HandleFunc(TaskBookingReminderEmail, w.handleBookingReminderEmail)
	mux.HandleFunc(TaskPaymentApprovedEmail, w.handlePaymentApprovedEmail)
	mux.HandleFunc(TaskCreditsPurchasedEmail, w.handleCreditsPurchasedEmail)

	mux.HandleFunc(TaskPaymentExpire, w.handlePaymentExpire)
	mux.HandleFunc(TaskPaymentSync, w.handlePaymentSync)
	mux.HandleFunc(TaskBookingReminders, w.handleBookingReminders)

	// Every 5 minutes: expire stale pending payments and re-query the
	// gateway for the ones whose webhook may have been missed. Hourly:
	// schedule reminder emails for tomorrow's bookings.
	if _, err := w.cron.AddFunc("*/5 * * * *", w.enqueueMaintenanceSweeps); err != nil {
		return fmt.Errorf("failed to register maintenance cron: %w", err)
	}
	if _, err := w.cron.AddFunc("0 * * * *", w.enqueueReminderSweep); err != nil {
		return fmt.Errorf("failed to register reminder cron: %w", err)
	}

	w.cron.Start()
	defer w.cron.Stop()

	w.logger.Info().Msg("starting background job worker")
	return w.server.Run(mux)
}

func (w *Worker) enqueueMaintenanceSweeps() {
	ctx := context.Background()
	_ = w.jobs.Enqueue(ctx, NewPaymentExpireTask())
	_ = w.jobs.Enqueue(ctx, NewPaymentSyncTask())
}

func (w *Worker) enqueueReminderSweep() {
	_ = w.jobs.Enqueue(context.Background(), NewBookingRemindersTask())
}

// unmarshalPayload decodes a task payload, wrapping errors with the task
// type. Malformed payloads are permanent failures, but asynq only offers
// retry-or-fail; retries at least surface them in the dead queue.
func unmarshalPayload(t *asynq.Task, dst any) error {
	if err := json.Unmarshal(t.Payload(), dst); err != nil {
		return fmt.Errorf("failed to unmarshal %s payload: %w", t.Type(), err)
	}
	return nil
}

func (w *Worker) handleWelcomeEmail(_ context.Context, t *asynq.Task) error {
	var p WelcomeEmailPayload
	if err := unmarshalPayload(t, &p); err != nil {
		return err
	}

	if err := w.email.SendWelcomeEmail(p.To, p.Name); err != nil {
		w.logger.Error().Str("to", p.To).Err(err).Msg("failed to send welcome email")
		return err
	}
	return nil
}

func (w *Worker) handleBookingConfirmedEmail(_ context.Context, t *asynq.Task) error {
	var p email.BookingEmailData
	if err := unmarshalPayload(t, &p); err != nil {
		return err
	}

	if err := w.email.SendBookingConfirmed(p); err != nil {
		w.logger.Error().
			Str("to", p.To).
			Str("reference", p.Reference).
			Err(err).
			Msg("failed to send booking confirmation email")
		return err
	}
	return nil
}

func (w *Worker) handleBookingCancelledEmail(_ context.Context, t *asynq.Task) error {
	var p email.BookingCancelledData
	if err := unmarshalPayload(t, &p); err != nil {
		return err
	}

	if err := w.email.SendBookingCancelled(p); err != nil {
		w.logger.Error().
			Str("to", p.To).
			Str("reference", p.Reference).
			Err(err).
			Msg("failed to send booking cancellation email")
		return err
	}
	return nil
}

func (w *Worker) handleBookingReminderEmail(_ context.Context, t *asynq.Task) error {
	var p email.BookingEmailData
	if err := unmarshalPayload(t, &p); err != nil {
		return err
	}

	if err := w.email.SendBookingReminder(p); err != nil {
		w.logger.Error().
			Str("to", p.To).
			Str("reference", p.Reference).
			Err(err).
			Msg("failed to send booking reminder email")
		return err
	}
	return nil
}

func (w *Worker) handlePaymentApprovedEmail(_ context.Context, t *asynq.Task) error {
	var p email.PaymentApprovedData
	if err := unmarshalPayload(t, &p); err != nil {
		return err
	}

	if err := w.email.SendPaymentApproved(p); err != nil {
		w.logger.Error().Str("to", p.To).Err(err).Msg("failed to send payment receipt email")
		return err
	}
	return nil
}

func (w *Worker) handleCreditsPurchasedEmail(_ context.Context, t *asynq.Task) error {
	var p email.CreditsPurchasedData
	if err := unmarshalPayload(t, &p); err != nil {
		return err
	}

	if err := w.email.SendCreditsPurchased(p); err != nil {
		w.logger.Error().Str("to", p.To).Err(err).Msg("failed to send credits purchased email")
		return err
	}
	return nil
}

func (w *Worker) handlePaymentExpire(ctx context.Context, _ *asynq.Task) error {
	expired, err := w.payments.ExpirePending(ctx)
	if err != nil {
		w.logger.Error().Err(err).Msg("payment expiry sweep failed")
		return err
	}

	if expired > 0 {
		w.logger.Info().Int("expired", expired).Msg("expired stale pending payments")
	}
	return nil
}

func (w *Worker) handlePaymentSync(ctx context.Context, _ *asynq.Task) error {
	synced, err := w.payments.SyncPending(ctx)
	if err != nil {
		w.logger.Error().Err(err).Msg("payment gateway sync failed")
		return err
	}

	if synced > 0 {
		w.logger.Info().Int("synced", synced).Msg("reconciled pending payments with gateway")
	}
	return nil
}

func (w *Worker) handleBookingReminders(ctx context.Context, _ *asynq.Task) error {
	scheduled, err := w.reminders.ScheduleDueReminders(ctx)
	if err != nil {
		w.logger.Error().Err(err).Msg("booking reminder sweep failed")
		return err
	}

	if scheduled > 0 {
		w.logger.Info().Int("scheduled", scheduled).Msg("scheduled booking reminder emails")
	}
	return nil
}
