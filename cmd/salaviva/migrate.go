package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/salaviva/backend/internal/database"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, loggerService, err := bootstrap()
			if err != nil {
				return err
			}
			defer func() {
				if loggerService != nil {
					loggerService.Shutdown(5 * time.Second)
				}
			}()

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()

			if err := database.Migrate(ctx, log, cfg); err != nil {
				return fmt.Errorf("failed to migrate database: %w", err)
			}

			return nil
		},
	}
}
