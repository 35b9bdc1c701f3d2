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
	"go.uber.org/zap"

	"github.com/smarttorque/progsync/internal/importer"
	"github.com/smarttorque/progsync/internal/metrics"
	"github.com/smarttorque/progsync/internal/ui"
	"github.com/smarttorque/progsync/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch a folder for new files and optionally re-import",
	Long: `Watch a folder tree for file creation.

The most recently created file is written as JSON to the created-file log
(file_name, directory, full_path, created_at), overwriting the previous
record. With --reimport, workbook changes trigger a new import batch once
they have been quiet for --debounce.

With --metrics-addr, Prometheus metrics are served at /metrics.`,
	Example: `  progsync watch --dir ./programs
  progsync watch --dir ./programs --reimport --debounce 5s --metrics-addr :9102`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := cfg.Watch.Dir
		if dir == "" {
			dir = cfg.Source.Root
		}
		if dir == "" {
			return fmt.Errorf("no watch directory: set --dir or watch.dir")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		m := metrics.New()

		var runner watch.Runner
		if cfg.Watch.Reimport {
			db, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			root := cfg.Source.Root
			if root == "" && cfg.Source.List == "" {
				root = dir
			}
			batch, err := newBatch(db, batchOptions{
				root:    root,
				list:    cfg.Source.List,
				metrics: m,
			})
			if err != nil {
				return err
			}
			runner = batch
		}

		svc, err := watch.New(dir, runner, watch.Config{
			CreatedLog:   cfg.Watch.CreatedLog,
			Reimport:     cfg.Watch.Reimport,
			Debounce:     cfg.Watch.Debounce,
			Extension:    cfg.Source.Extension,
			BackupMarker: cfg.Source.BackupMarker,
			OnRun:        printRun,
			Logger:       logger,
			Metrics:      m,
		})
		if err != nil {
			return err
		}

		if cfg.Metrics.Addr != "" {
			srv := serveMetrics(cfg.Metrics.Addr, m)
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()
		}

		fmt.Printf("%s Watching %s (Ctrl+C to stop)\n", ui.RenderAccent("👀"), dir)
		if err := svc.Start(ctx); err != nil {
			return err
		}
		fmt.Printf("%s Watcher stopped\n", ui.RenderPass("✓"))
		return nil
	},
}

func serveMetrics(addr string, m *metrics.Metrics) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("serving metrics", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()
	return srv
}

func printRun(s *importer.Summary, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s Re-import failed: %v\n", ui.RenderFail("✗"), err)
		return
	}
	fmt.Printf("%s Re-import: %d imported, %d problems (%v)\n",
		ui.RenderAccent("🔄"), s.Successes, s.Problems, s.Duration.Round(time.Millisecond))
}

func init() {
	f := watchCmd.Flags()
	f.String("dir", "", "folder to watch (default source.root)")
	f.String("created-log", "", "JSON file receiving the most recently created file")
	f.Duration("debounce", 0, "quiet period before re-importing (default 2s)")
	f.Bool("reimport", false, "re-run the import when workbooks change")
	f.String("root", "", "root folder for re-imports (default the watched folder)")
	f.String("list", "", "list file for re-imports instead of walking")
	f.String("metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9102")

	rootCmd.AddCommand(watchCmd)
}
