package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smarttorque/progsync/internal/store"
	"github.com/smarttorque/progsync/internal/ui"
	"github.com/smarttorque/progsync/internal/watch"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database and watcher status",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		db, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		counts, err := db.Counts(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("\n%s progsync status\n\n", ui.RenderAccent("📊"))
		fmt.Printf("   Database: %s (%s)\n", displayDSN(db.Driver(), cfg.Database.DSN), db.Driver())
		fmt.Printf("   Programs: %d\n", counts.Programs)
		fmt.Printf("   Details:  %d\n", counts.Details)
		if counts.Orphans > 0 {
			fmt.Printf("   %s Orphaned details: %d\n", ui.RenderWarn("⚠"), counts.Orphans)
		}

		if cfg.Watch.CreatedLog != "" {
			if rec, err := watch.ReadCreatedLog(cfg.Watch.CreatedLog); err == nil {
				fmt.Printf("   Last created file: %s (%s)\n", rec.FullPath, formatTime(rec.CreatedAt))
			}
		}
		fmt.Println()
		return nil
	},
}

// displayDSN hides postgres credentials.
func displayDSN(driver store.Driver, dsn string) string {
	if driver == store.DriverPostgres {
		return ui.RenderMuted("postgres connection")
	}
	return dsn
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
