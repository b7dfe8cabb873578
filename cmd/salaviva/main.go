package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Bundled tzdata keeps venue-local time math working in scratch
	// containers that ship no zoneinfo files.
	_ "time/tzdata"

	"github.com/rs/zerolog"

	"github.com/salaviva/backend/internal/config"
	"github.com/salaviva/backend/internal/logger"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "salaviva",
		Short:   "Sala Viva coworking reservations backend",
		Version: Version,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(workerCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads configuration and builds the logger. Every subcommand
// starts here.
func bootstrap() (*config.Config, *zerolog.Logger, *logger.LoggerService, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, loggerService, err := logger.New(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return cfg, log, loggerService, nil
}
