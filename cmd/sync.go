package cmd

import (
	"fmt"

	"market-sync/core/config"
	"market-sync/core/database"
	"market-sync/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// syncCmd pulls outstanding changes from the remote replica.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull the remote replica into the local database",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, l, err := loadWithLogger()
		if err != nil {
			return err
		}
		defer l.Sync()

		if err := database.VerifyAndRepair(cfg.Database, l); err != nil {
			return err
		}

		store, err := database.Open(cfg.Database, l)
		if err != nil {
			return err
		}
		defer store.Close()

		return store.Sync(cmd.Context())
	},
}

var validateRepair bool

// validateCmd compares the local and remote watermarks.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check whether the local database matches the remote replica",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, l, err := loadWithLogger()
		if err != nil {
			return err
		}
		defer l.Sync()

		store, err := database.Open(cfg.Database, l)
		if err != nil {
			return err
		}
		defer store.Close()

		if validateRepair {
			return store.EnsureFresh(cmd.Context())
		}

		upToDate, err := store.Validate(cmd.Context())
		if err != nil {
			return err
		}
		if !upToDate {
			return fmt.Errorf("local database %s is stale, run sync", cfg.Database.Path)
		}
		l.Info("local database is up to date", zap.String("path", cfg.Database.Path))
		return nil
	},
}

func init() {
	validateCmd.Flags().BoolVar(&validateRepair, "repair", false, "Re-sync once if stale instead of just reporting")

	RootCmd.AddCommand(syncCmd)
	RootCmd.AddCommand(validateCmd)
}

// loadWithLogger loads configuration and builds the logger, the shared
// preamble of every subcommand.
func loadWithLogger() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, l, nil
}
