package main

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/smarttorque/progsync/internal/importer"
	"github.com/smarttorque/progsync/internal/store"
	"github.com/smarttorque/progsync/internal/ui"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import program workbooks into the database",
	Long: `Import program workbooks into the database.

Files come from a recursive walk of --root, or from --list (one path per
line, # comments allowed). For every model (file name without extension)
only the most recently modified workbook is imported, and it replaces any
earlier import of that model.

Locked, empty and unreadable workbooks are skipped and listed in the
problem log; they never stop the run.`,
	Example: `  progsync import --root "D:\Programs"
  progsync import --list programs_to_import.txt --since "last monday"
  progsync import --root ./programs --dry-run`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		var db *store.DB
		if !dryRun {
			var err error
			db, err = openStore(ctx)
			if err != nil {
				return err
			}
			defer db.Close()
		}

		progress := ui.NewProgress(os.Stdout)
		batch, err := newBatch(db, batchOptions{
			root:     cfg.Source.Root,
			list:     cfg.Source.List,
			dryRun:   dryRun,
			progress: progress.Update,
		})
		if err != nil {
			return err
		}

		fmt.Printf("%s Program import started\n", ui.RenderAccent("🚀"))
		if dryRun {
			fmt.Printf("%s Dry run: nothing will be written\n", ui.RenderWarn("⚠"))
		}

		summary, err := batch.Run(ctx)
		progress.Done()
		if err != nil {
			return err
		}

		printSummary(summary)
		if ctx.Err() != nil {
			return fmt.Errorf("import interrupted after %d of %d files", summary.Result.Processed(), summary.UniqueModels)
		}
		return nil
	},
}

func printSummary(s *importer.Summary) {
	fmt.Printf("%s Found %d files, %d unique models\n", ui.RenderAccent("📂"), s.FilesFound, s.UniqueModels)
	fmt.Printf("%s Imported: %d\n", ui.RenderPass("✓"), s.Successes)
	if s.Problems > 0 {
		fmt.Printf("%s Problems: %d\n", ui.RenderWarn("⚠"), s.Problems)
		for _, o := range s.Result.Outcomes {
			if line := o.Problem(); line != "" {
				fmt.Printf("   %s\n", ui.RenderMuted(line))
			}
		}
	}
	if s.LogPath != "" {
		fmt.Printf("%s Problem log: %s\n", ui.RenderAccent("📝"), s.LogPath)
	}
	fmt.Printf("   Completed in %v\n", s.Duration.Round(time.Millisecond))
}

func init() {
	f := importCmd.Flags()
	f.String("root", "", "root folder to walk for workbooks")
	f.String("list", "", "file listing workbook paths, one per line")
	f.String("since", "", `only files modified since (RFC 3339, 2006-01-02, 72h, "last monday")`)
	f.String("extension", "", "workbook extension (default .xlsx)")
	f.String("backup-marker", "", `skip paths containing this text (default "backup")`)
	f.String("problem-log", "", "problem log path")
	f.String("synonyms", "", "header synonyms file (YAML or TOML)")
	f.Bool("dry-run", false, "extract and report without writing to the database")

	rootCmd.AddCommand(importCmd)
}
