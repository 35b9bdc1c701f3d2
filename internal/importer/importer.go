// Package importer runs the per-file import state machine.
//
// For every selected file the importer extracts details, then replaces the
// stored program for the file's model in one transaction. Extraction runs
// first, so a locked or unreadable file never destroys the previously
// imported version of its model. Every file ends in exactly one Status, and
// one file's failure never stops the run.
package importer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/smarttorque/progsync/internal/extract"
	"github.com/smarttorque/progsync/internal/metrics"
	"github.com/smarttorque/progsync/internal/program"
	"github.com/smarttorque/progsync/internal/selector"
)

// Extractor reads program details from a workbook path.
type Extractor interface {
	Extract(path string) ([]program.Detail, error)
}

// Store persists programs.
type Store interface {
	ReplaceProgram(ctx context.Context, h *program.Header) (replaced bool, err error)
	DeleteProgram(ctx context.Context, model string) (bool, error)
}

// Config holds optional importer settings.
type Config struct {
	Logger *zap.Logger

	// Clock stamps ExtractedAt. Defaults to time.Now.
	Clock func() time.Time

	// Progress is called after every file with the processed and total counts.
	Progress func(done, total int)

	Metrics *metrics.Metrics

	// DryRun extracts and classifies files without touching the store.
	DryRun bool
}

// Importer imports candidates one at a time.
type Importer struct {
	extractor Extractor
	store     Store
	config    Config
	logger    *zap.Logger
}

// New creates an importer. store may be nil only in dry-run mode.
func New(extractor Extractor, store Store, config Config) (*Importer, error) {
	if extractor == nil {
		return nil, fmt.Errorf("extractor cannot be nil")
	}
	if store == nil && !config.DryRun {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	if config.Clock == nil {
		config.Clock = time.Now
	}

	return &Importer{
		extractor: extractor,
		store:     store,
		config:    config,
		logger:    config.Logger.Named("importer"),
	}, nil
}

// Run imports candidates in order. It stops starting new files once ctx is
// cancelled; files already committed stay committed.
func (im *Importer) Run(ctx context.Context, candidates []selector.Candidate) *RunResult {
	result := &RunResult{Total: len(candidates)}

	for _, c := range candidates {
		if ctx.Err() != nil {
			im.logger.Warn("run cancelled",
				zap.Int("processed", result.Processed()),
				zap.Int("total", result.Total))
			break
		}

		result.add(im.ImportFile(ctx, c))

		if im.config.Progress != nil {
			im.config.Progress(result.Processed(), result.Total)
		}
	}

	return result
}

// ImportFile imports one candidate. It never panics; a panic during
// extraction or persistence is reported as StatusFailed.
func (im *Importer) ImportFile(ctx context.Context, c selector.Candidate) (out FileOutcome) {
	start := time.Now()
	log := im.logger.With(zap.String("model", c.Model), zap.String("path", c.Path))
	out = FileOutcome{Candidate: c, DryRun: im.config.DryRun}

	defer func() {
		if r := recover(); r != nil {
			out.Status = StatusFailed
			out.Reason = fmt.Sprintf("panic: %v", r)
			log.Error("import panicked", zap.Any("panic", r))
		}
		stored := 0
		if out.Status == StatusImported && !out.DryRun {
			stored = out.Details
		}
		im.config.Metrics.RecordFile(out.Status.String(), stored, time.Since(start))
	}()

	details, err := im.extractor.Extract(c.Path)
	if err != nil {
		if extract.IsLocked(err) {
			log.Warn("skipping locked file")
			out.Status = StatusSkippedLocked
			return out
		}
		log.Error("extraction failed", zap.Error(err))
		out.Status = StatusFailed
		out.Reason = err.Error()
		return out
	}

	if len(details) == 0 {
		if !im.config.DryRun {
			removed, err := im.store.DeleteProgram(ctx, c.Model)
			if err != nil {
				log.Error("failed to remove previous program", zap.Error(err))
				out.Status = StatusFailed
				out.Reason = err.Error()
				return out
			}
			out.Replaced = removed
		}
		log.Warn("no details found", zap.Bool("removed_previous", out.Replaced))
		out.Status = StatusSkippedNoDetails
		return out
	}

	out.Details = len(details)
	header := program.NewHeader(c.Model, c.Workcell, c.Path, c.FileDate, im.config.Clock(), details)

	if im.config.DryRun {
		log.Info("would import program", zap.Int("details", out.Details))
		out.Status = StatusImported
		return out
	}

	replaced, err := im.store.ReplaceProgram(ctx, header)
	if err != nil {
		log.Error("failed to store program", zap.Error(err))
		out.Status = StatusFailed
		out.Reason = err.Error()
		return out
	}

	out.Replaced = replaced
	out.Status = StatusImported
	log.Info("imported program",
		zap.String("workcell", c.Workcell),
		zap.Int("details", out.Details),
		zap.Bool("replaced", replaced))
	return out
}
