package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/salaviva/backend/internal/database"
	"github.com/salaviva/backend/internal/handler"
	"github.com/salaviva/backend/internal/middleware"
	"github.com/salaviva/backend/internal/repository"
	"github.com/salaviva/backend/internal/router"
	"github.com/salaviva/backend/internal/server"
	"github.com/salaviva/backend/internal/service"
)

func serveCmd() *cobra.Command {
	var migrateOnBoot bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(migrateOnBoot)
		},
	}

	cmd.Flags().BoolVar(&migrateOnBoot, "migrate", false, "apply pending database migrations before serving")

	return cmd
}

func runServe(migrateOnBoot bool) error {
	cfg, log, loggerService, err := bootstrap()
	if err != nil {
		return err
	}

	if migrateOnBoot {
		if err := database.Migrate(context.Background(), log, cfg); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
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

	handlers := handler.NewHandlers(s, services)
	middlewares := middleware.NewMiddlewares(s, services.Auth)

	s.SetupHTTPServer(router.Setup(handlers, middlewares))

	errCh := make(chan error, 1)
	go func() {
		if err := s.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
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

	log.Info().Msg("server stopped")
	return nil
}
