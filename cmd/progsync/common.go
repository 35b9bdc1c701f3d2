package main

import (
	"context"
	"fmt"
	"time"

	"github.com/smarttorque/progsync/internal/extract"
	"github.com/smarttorque/progsync/internal/importer"
	"github.com/smarttorque/progsync/internal/metrics"
	"github.com/smarttorque/progsync/internal/selector"
	"github.com/smarttorque/progsync/internal/store"
)

// openStore opens the configured database and ensures the schema exists.
func openStore(ctx context.Context) (*store.DB, error) {
	driver, err := store.ParseDriver(cfg.Database.Driver)
	if err != nil {
		return nil, err
	}

	db, err := store.OpenContext(ctx, driver, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	if err := db.InitSchemaContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// newExtractor builds the excel extractor with the configured synonyms.
func newExtractor() (*extract.Extractor, error) {
	var synonyms extract.SynonymTable
	if cfg.SynonymsFile != "" {
		table, err := extract.LoadSynonyms(cfg.SynonymsFile)
		if err != nil {
			return nil, err
		}
		synonyms = table
	}
	return extract.NewExtractor(extract.ExcelReader{}, synonyms), nil
}

type batchOptions struct {
	root     string
	list     string
	dryRun   bool
	progress func(done, total int)
	metrics  *metrics.Metrics
}

// newBatch wires extractor, store and selection options into a batch. db may
// be nil for dry runs.
func newBatch(db *store.DB, opts batchOptions) (*importer.Batch, error) {
	ex, err := newExtractor()
	if err != nil {
		return nil, err
	}

	since, err := selector.ParseSince(cfg.Source.Since, time.Now())
	if err != nil {
		return nil, err
	}

	var st importer.Store
	if db != nil {
		st = db
	}

	im, err := importer.New(ex, st, importer.Config{
		Logger:   logger,
		Progress: opts.progress,
		Metrics:  opts.metrics,
		DryRun:   opts.dryRun,
	})
	if err != nil {
		return nil, err
	}

	if opts.root == "" && opts.list == "" {
		return nil, fmt.Errorf("no source: set --root, --list, or source.root in the config file")
	}

	return &importer.Batch{
		Importer: im,
		Root:     opts.root,
		List:     opts.list,
		Select: selector.Options{
			Extension:    cfg.Source.Extension,
			BackupMarker: cfg.Source.BackupMarker,
			Since:        since,
		},
		ProblemLog: cfg.ProblemLog,
		Logger:     logger,
		Metrics:    opts.metrics,
	}, nil
}
