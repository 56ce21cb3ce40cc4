package cmd

import (
	"fmt"

	"market-sync/core/config"
	"market-sync/core/database"
	"market-sync/core/esi"
	"market-sync/core/etagcache"
	"market-sync/core/logger"
	"market-sync/feature/market"

	"github.com/spf13/cobra"
)

var (
	// Flags for the update command
	updateRegion   int64
	updateSkipSync bool
	updateTestMode bool
)

// updateCmd runs one full fetch-and-reconcile cycle.
var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Fetch market data and reconcile the local database",
	Long: `Update runs one full cycle: fetch the regional order snapshot and
per-type history (using conditional requests where cached validators exist),
reconcile the market tables, then sync and validate the remote replica.

Examples:
  # Full cycle against the configured region
  market-sync update

  # Different region, local-only (no replica sync)
  market-sync update --region 10000002 --skip-sync

  # Constrained run capping pagination depth
  market-sync update --test`,
	RunE: runUpdate,
}

func init() {
	updateCmd.Flags().Int64Var(&updateRegion, "region", 0, "Region to update (overrides configuration)")
	updateCmd.Flags().BoolVar(&updateSkipSync, "skip-sync", false, "Skip replica sync and validation after reconciliation")
	updateCmd.Flags().BoolVar(&updateTestMode, "test", false, "Constrained mode: cap order pagination at 2 pages")

	RootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer l.Sync()

	region := cfg.ESI.Region
	if updateRegion != 0 {
		region = updateRegion
	}
	if updateTestMode {
		cfg.ESI.MaxPages = 2
	}

	// The file/sidecar pair must be consistent before any handle opens.
	if cfg.Database.ReplicaURL != "" {
		if err := database.VerifyAndRepair(cfg.Database, l); err != nil {
			return err
		}
	}

	store, err := database.Open(cfg.Database, l)
	if err != nil {
		return err
	}
	defer store.Close()

	cache, err := etagcache.Open(cfg.Database.CachePath, l)
	if err != nil {
		return err
	}
	defer cache.Close()

	client := esi.NewClient(cfg.ESI, nil, l)

	syncEnabled := cfg.Database.ReplicaURL != "" && !updateSkipSync
	svc := market.NewService(store, client, cache, region, syncEnabled, l)
	return svc.RunCycle(ctx)
}
