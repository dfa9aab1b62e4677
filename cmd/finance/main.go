package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"finance-tracker-backend/internal/config"
	"finance-tracker-backend/internal/logging"
	"finance-tracker-backend/internal/store"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "finance",
		Short: "Personal finance tracker API",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
		newSeedDemoCommand(),
		newCreateUserCommand(),
		newMailWorkerCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads the configuration and installs the default logger.
func setup() (*config.Config, *slog.Logger) {
	cfg := config.Load()
	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	return cfg, logger
}

// openPostgres connects, waiting for the database, and applies migrations.
func openPostgres(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*store.Postgres, error) {
	db, err := store.OpenDB(ctx, cfg.DatabaseURL, store.DefaultRetry, logger)
	if err != nil {
		return nil, err
	}
	if err := store.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return store.NewPostgres(db), nil
}

// openStore returns the backend selected by DATA_BACKEND.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.Store, error) {
	if cfg.DataBackend == "memory" {
		logger.Warn("Using in-memory store, data will not survive a restart")
		return store.NewMemory(), nil
	}
	pg, err := openPostgres(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return pg, nil
}
