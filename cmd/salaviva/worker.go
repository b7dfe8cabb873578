package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/salaviva/backend/internal/lib/email"
	"github.com/salaviva/backend/internal/lib/job"
	"github.com/salaviva/backend/internal/repository"
	"github.com/salaviva/backend/internal/server"
	"github.com/salaviva/backend/internal/service"
)

func workerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run the background job worker",
		Long: `Consumes queued tasks (transactional emails, payment maintenance) and
runs the cron scheduler that enqueues the periodic sweeps: pending
payment expiry, gateway reconciliation and booking reminders.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorker()
		},
	}
}

func runWorker() error {
	cfg, log, loggerService, err := bootstrap()
	if err != nil {
		return err
	}

	s, err := server.New(cfg, log, loggerService)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	repos := repository.NewRepositories(s)

	services, err := service.NewService(s, repos)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	emailClient := email.NewClient(cfg, log)
	worker := job.NewWorker(cfg, log, services.Job, emailClient, services.Payment, services.Booking)

	// asynq traps SIGINT/SIGTERM itself; Run blocks until then.
	if err := worker.Run(); err != nil {
		return fmt.Errorf("worker failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := services.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to flush analytics publisher")
	}

	if err := s.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown cleanly: %w", err)
	}

	if loggerService != nil {
		loggerService.Shutdown(10 * time.Second)
	}

	log.Info().Msg("worker stopped")
	return nil
}
