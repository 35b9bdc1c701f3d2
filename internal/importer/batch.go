package importer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/smarttorque/progsync/internal/metrics"
	"github.com/smarttorque/progsync/internal/selector"
)

// Batch enumerates, selects and imports one set of program files.
type Batch struct {
	Importer *Importer

	// Root is walked recursively unless List is set. With List, Root (if
	// any) is still used to derive workcells.
	Root string
	List string

	Select selector.Options

	// ProblemLog is rewritten after every run. Empty disables it.
	ProblemLog string

	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

// Summary describes a finished batch.
type Summary struct {
	FilesFound   int
	UniqueModels int
	Successes    int
	Problems     int
	LogPath      string
	Duration     time.Duration
	Result       *RunResult
}

// Run executes the batch. Per-file problems are reported in the summary;
// the error is only for failures that prevent the batch from running.
func (b *Batch) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	logger := b.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("batch")

	if b.Importer == nil {
		return nil, fmt.Errorf("batch has no importer")
	}

	paths, err := b.enumerate()
	if err != nil {
		return nil, err
	}

	opts := b.Select
	if opts.Root == "" {
		opts.Root = b.Root
	}
	candidates := selector.Select(paths, opts)

	logger.Info("starting import",
		zap.Int("files_found", len(paths)),
		zap.Int("unique_models", len(candidates)))

	result := b.Importer.Run(ctx, candidates)

	summary := &Summary{
		FilesFound:   len(paths),
		UniqueModels: len(candidates),
		Successes:    result.Successes,
		Problems:     len(result.Problems),
		Result:       result,
	}

	if b.ProblemLog != "" {
		if err := WriteProblemLog(b.ProblemLog, result.Problems); err != nil {
			logger.Error("failed to write problem log", zap.Error(err))
		} else if len(result.Problems) > 0 {
			summary.LogPath = b.ProblemLog
		}
	}

	summary.Duration = time.Since(start)
	b.Metrics.RecordRun(summary.Duration)

	logger.Info("import finished",
		zap.Int("successes", summary.Successes),
		zap.Int("problems", summary.Problems),
		zap.Duration("duration", summary.Duration))

	return summary, nil
}

func (b *Batch) enumerate() ([]string, error) {
	switch {
	case b.List != "":
		return selector.ReadList(b.List)
	case b.Root != "":
		return selector.Walk(b.Root)
	default:
		return nil, fmt.Errorf("either a root folder or a list file is required")
	}
}

// WriteProblemLog overwrites path with one line per problem. When there are
// no problems a stale log from an earlier run is removed instead.
func WriteProblemLog(path string, problems []string) error {
	if len(problems) == 0 {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove stale problem log: %w", err)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create problem log directory: %w", err)
	}

	content := strings.Join(problems, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write problem log: %w", err)
	}
	return nil
}
