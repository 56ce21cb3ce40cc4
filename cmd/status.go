package cmd

import (
	"fmt"
	"sort"

	"market-sync/core/database"

	"github.com/spf13/cobra"
)

// statusCmd prints row counts for every table in the local database.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show row counts for the local database tables",
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

		counts, err := store.TableCounts(cmd.Context())
		if err != nil {
			return err
		}

		tables := make([]string, 0, len(counts))
		for table := range counts {
			tables = append(tables, table)
		}
		sort.Strings(tables)

		for _, table := range tables {
			fmt.Printf("%-24s %d\n", table, counts[table])
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(statusCmd)
}
