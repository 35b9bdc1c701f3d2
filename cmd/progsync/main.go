// Command progsync imports fastening-program spreadsheets into a database.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/smarttorque/progsync/internal/config"
	"github.com/smarttorque/progsync/internal/logging"
	"github.com/smarttorque/progsync/internal/ui"
)

var (
	v          = config.New()
	cfg        *config.Config
	logger     = zap.NewNop()
	configFile string
	noColor    bool
)

// flagKeys maps config keys to the flag that overrides them. Flags are bound
// for the command being executed only, since several commands share keys.
var flagKeys = map[string]string{
	"database.driver":      "db-driver",
	"database.dsn":         "db",
	"log.level":            "log-level",
	"log.file":             "log-file",
	"source.root":          "root",
	"source.list":          "list",
	"source.since":         "since",
	"source.extension":     "extension",
	"source.backup_marker": "backup-marker",
	"problem_log":          "problem-log",
	"synonyms_file":        "synonyms",
	"watch.dir":            "dir",
	"watch.created_log":    "created-log",
	"watch.debounce":       "debounce",
	"watch.reimport":       "reimport",
	"metrics.addr":         "metrics-addr",
}

var rootCmd = &cobra.Command{
	Use:   "progsync",
	Short: "Fastening-program spreadsheet importer",
	Long: `progsync reads fastening-program workbooks (one per equipment model),
extracts torque, angle and speed settings per screw position, and stores them
in SQLite or PostgreSQL, replacing any earlier import of the same model.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		ui.ConfigureColor(noColor)

		if err := bindFlags(cmd.Flags()); err != nil {
			return err
		}

		loaded, err := config.Load(v, configFile)
		if err != nil {
			return err
		}
		cfg = loaded

		l, err := logging.New(cfg.Logging())
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func bindFlags(flags *pflag.FlagSet) error {
	for key, name := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag --%s: %w", name, err)
		}
	}
	return nil
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file (default ./progsync.yaml or ~/.config/progsync/progsync.yaml)")
	pf.BoolVar(&noColor, "no-color", false, "disable colored output")
	pf.String("db-driver", "", "database driver: sqlite or postgres")
	pf.String("db", "", "database path (sqlite) or connection string (postgres)")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.String("log-file", "", "also write JSON logs to this file (rotated)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", ui.RenderFail("Error:"), err)
		os.Exit(1)
	}
}
