// Package watch monitors a program folder.
//
// The Service records the most recently created file as a JSON document and,
// when enabled, re-runs the import batch once spreadsheet changes have been
// quiet for the debounce interval. Batch runs are serialized so two runs
// never interleave.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/smarttorque/progsync/internal/importer"
	"github.com/smarttorque/progsync/internal/metrics"
	"github.com/smarttorque/progsync/internal/selector"
)

// Runner runs one import batch. *importer.Batch satisfies it.
type Runner interface {
	Run(ctx context.Context) (*importer.Summary, error)
}

// Config holds configuration for the service.
type Config struct {
	// CreatedLog receives the most recently created file. Empty disables it.
	CreatedLog string

	// Reimport re-runs the batch after spreadsheet changes.
	Reimport bool

	// Debounce is how long changes must be quiet before a re-import.
	Debounce time.Duration

	// Extension and BackupMarker decide which changes trigger a re-import.
	Extension    string
	BackupMarker string

	// OnRun is called after every batch run.
	OnRun func(*importer.Summary, error)

	Logger  *zap.Logger
	Metrics *metrics.Metrics
	Clock   func() time.Time
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Debounce:     2 * time.Second,
		Extension:    selector.DefaultExtension,
		BackupMarker: selector.DefaultBackupMarker,
	}
}

// Service ties a FileWatcher to the created-file log and the import batch.
type Service struct {
	root   string
	runner Runner
	config Config
	logger *zap.Logger

	pending   map[string]time.Time // path -> last change
	pendingMu sync.Mutex

	runMu sync.Mutex
}

// New creates a service watching root. runner may be nil when Reimport is
// off.
func New(root string, runner Runner, config Config) (*Service, error) {
	if root == "" {
		return nil, fmt.Errorf("watch directory cannot be empty")
	}
	if config.Reimport && runner == nil {
		return nil, fmt.Errorf("re-import requires a batch runner")
	}
	if config.Debounce <= 0 {
		config.Debounce = DefaultConfig().Debounce
	}
	if config.Extension == "" {
		config.Extension = selector.DefaultExtension
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	if config.Clock == nil {
		config.Clock = time.Now
	}
	if config.CreatedLog != "" {
		abs, err := filepath.Abs(config.CreatedLog)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve created log path: %w", err)
		}
		config.CreatedLog = abs
	}

	return &Service{
		root:    root,
		runner:  runner,
		config:  config,
		logger:  config.Logger.Named("watch"),
		pending: make(map[string]time.Time),
	}, nil
}

// Start watches until ctx is cancelled.
func (s *Service) Start(ctx context.Context) error {
	fw, err := NewFileWatcher()
	if err != nil {
		return err
	}
	if err := fw.Start(s.root); err != nil {
		_ = fw.Stop()
		return err
	}
	defer fw.Stop()

	s.logger.Info("watching", zap.String("dir", s.root),
		zap.Bool("reimport", s.config.Reimport),
		zap.Duration("debounce", s.config.Debounce))

	ticker := time.NewTicker(s.tickInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("shutdown signal received")
			return nil

		case event, ok := <-fw.Events():
			if !ok {
				return nil
			}
			s.handleEvent(event)

		case err, ok := <-fw.Errors():
			if !ok {
				return nil
			}
			s.logger.Warn("watcher error", zap.Error(err))

		case <-ticker.C:
			s.processPending(ctx)
		}
	}
}

func (s *Service) tickInterval() time.Duration {
	interval := s.config.Debounce / 4
	if interval < 10*time.Millisecond {
		interval = 10 * time.Millisecond
	}
	return interval
}

func (s *Service) handleEvent(event FileEvent) {
	s.logger.Debug("file event", zap.String("op", event.Op.String()), zap.String("path", event.Path))

	if s.ownFile(event.Path) {
		return
	}

	if event.Op == OpCreate {
		s.config.Metrics.RecordCreated()
		if s.config.CreatedLog != "" {
			rec := NewCreatedFile(event.Path, s.config.Clock())
			if err := WriteCreatedLog(s.config.CreatedLog, rec); err != nil {
				s.logger.Error("failed to record created file", zap.Error(err))
			}
		}
	}

	if s.config.Reimport && selector.Eligible(event.Path, s.config.Extension, s.config.BackupMarker) {
		s.queueChange(event.Path)
	}
}

// ownFile reports whether path is the created log, one of its temp files or
// a folder created to hold it. Recording those would write the log again
// whenever it lives under root.
func (s *Service) ownFile(path string) bool {
	if s.config.CreatedLog == "" {
		return false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	if abs == s.config.CreatedLog || strings.HasPrefix(s.config.CreatedLog, abs+string(filepath.Separator)) {
		return true
	}
	if filepath.Dir(abs) != filepath.Dir(s.config.CreatedLog) {
		return false
	}
	base := filepath.Base(abs)
	return strings.HasPrefix(base, createdTempPrefix) && strings.HasSuffix(base, createdTempSuffix)
}

func (s *Service) queueChange(path string) {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()

	s.pending[path] = s.config.Clock()
}

// processPending runs the batch once every queued change is older than the
// debounce interval.
func (s *Service) processPending(ctx context.Context) {
	s.pendingMu.Lock()
	if len(s.pending) == 0 {
		s.pendingMu.Unlock()
		return
	}
	now := s.config.Clock()
	for _, changedAt := range s.pending {
		if now.Sub(changedAt) < s.config.Debounce {
			s.pendingMu.Unlock()
			return
		}
	}
	changed := len(s.pending)
	s.pending = make(map[string]time.Time)
	s.pendingMu.Unlock()

	s.logger.Info("spreadsheets changed, re-importing", zap.Int("files", changed))
	_, _ = s.RunNow(ctx)
}

// RunNow runs the batch immediately, waiting for any run in progress.
func (s *Service) RunNow(ctx context.Context) (*importer.Summary, error) {
	if s.runner == nil {
		return nil, fmt.Errorf("no batch runner configured")
	}

	s.runMu.Lock()
	defer s.runMu.Unlock()

	summary, err := s.runner.Run(ctx)
	if err != nil {
		s.logger.Error("import run failed", zap.Error(err))
	}
	if s.config.OnRun != nil {
		s.config.OnRun(summary, err)
	}
	return summary, err
}
