package importer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap/zaptest"

	"github.com/smarttorque/progsync/internal/extract"
	"github.com/smarttorque/progsync/internal/metrics"
	"github.com/smarttorque/progsync/internal/selector"
	"github.com/smarttorque/progsync/internal/store"
)

func writeProgram(t *testing.T, path string, modTime time.Time, rows [][]any) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save %s: %v", path, err)
	}
	if err := os.Chtimes(path, modTime, modTime); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
}

var programHeader = []any{"Torque (Kgf_cm)", "Min Angle (Turn)", "Max Angle", "Screw Count", "Speed (RPM)"}

func TestBatchRun_EndToEnd(t *testing.T) {
	root := filepath.Join(t.TempDir(), "programs")
	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	writeProgram(t, filepath.Join(root, "Line1", "M100.xlsx"), base, [][]any{
		programHeader,
		{1.5, 1, 90, 2, 300},
	})
	writeProgram(t, filepath.Join(root, "Line2", "old", "M100.xlsx"), base.Add(time.Hour), [][]any{
		programHeader,
		{2.345, 0.5, 400, 4, 250},
		{3, 1, 720, 1, 200},
	})
	writeProgram(t, filepath.Join(root, "Line1", "M200.xlsx"), base, [][]any{
		{"Notes"},
		{"nothing useful"},
	})
	writeProgram(t, filepath.Join(root, "Line1", "M300_backup.xlsx"), base, [][]any{
		programHeader,
		{1, 1, 1, 1, 1},
	})
	if err := os.MkdirAll(filepath.Join(root, "Line3"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "Line3", "M400.xlsx"), []byte("garbage"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	db, err := store.Open(store.DriverSQLite, filepath.Join(t.TempDir(), "programs.db"))
	if err != nil {
		t.Fatalf("store.Open() failed: %v", err)
	}
	defer db.Close()
	if err := db.InitSchema(); err != nil {
		t.Fatalf("InitSchema() failed: %v", err)
	}

	logger := zaptest.NewLogger(t)
	m := metrics.New()
	im, err := New(extract.NewExtractor(extract.ExcelReader{}, nil), db, Config{Logger: logger, Metrics: m})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	problemLog := filepath.Join(t.TempDir(), "logs", "problems.txt")
	batch := &Batch{
		Importer:   im,
		Root:       root,
		Select:     selector.Options{BackupMarker: selector.DefaultBackupMarker},
		ProblemLog: problemLog,
		Logger:     logger,
		Metrics:    m,
	}

	ctx := context.Background()
	summary, err := batch.Run(ctx)
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	if summary.FilesFound != 5 || summary.UniqueModels != 3 {
		t.Errorf("found=%d models=%d, want 5 and 3", summary.FilesFound, summary.UniqueModels)
	}
	if summary.Successes != 1 || summary.Problems != 2 || summary.LogPath != problemLog {
		t.Errorf("unexpected summary: %+v", summary)
	}

	h, err := db.GetProgram(ctx, "M100")
	if err != nil {
		t.Fatalf("GetProgram() failed: %v", err)
	}
	if h.Workcell != "Line2" || len(h.Details) != 2 {
		t.Fatalf("expected newest M100 from Line2 with 2 details, got %+v", h)
	}
	d := h.Details[0]
	if d.RowNumber != 2 || d.TorqueUnit != "kgf.cm" || d.TargetTorque.String() != "2.35" ||
		d.MinAngle.String() != "180" || d.ScrewCount != 4 || d.SpeedRPM != 250 {
		t.Errorf("unexpected detail: %+v", d)
	}

	data, err := os.ReadFile(problemLog)
	if err != nil {
		t.Fatalf("failed to read problem log: %v", err)
	}
	log := string(data)
	if !strings.Contains(log, "❌ No details found in file: "+filepath.Join(root, "Line1", "M200.xlsx")) ||
		!strings.Contains(log, "❌ Error in file: "+filepath.Join(root, "Line3", "M400.xlsx")+" | Reason: ") {
		t.Errorf("unexpected problem log:\n%s", log)
	}

	// A clean second run replaces the program and removes the stale log.
	for _, p := range []string{filepath.Join(root, "Line1", "M200.xlsx"), filepath.Join(root, "Line3", "M400.xlsx")} {
		if err := os.Remove(p); err != nil {
			t.Fatalf("remove: %v", err)
		}
	}
	summary, err = batch.Run(ctx)
	if err != nil {
		t.Fatalf("second Run() failed: %v", err)
	}
	if summary.Successes != 1 || summary.Problems != 0 || summary.LogPath != "" {
		t.Errorf("unexpected second summary: %+v", summary)
	}
	if _, err := os.Stat(problemLog); !os.IsNotExist(err) {
		t.Errorf("expected stale problem log to be removed, got %v", err)
	}

	counts, err := db.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts() failed: %v", err)
	}
	if counts.Programs != 1 || counts.Details != 2 || counts.Orphans != 0 {
		t.Errorf("unexpected counts: %+v", counts)
	}
}

func TestBatchRun_ListMode(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	prog := filepath.Join(dir, "Cell_Q", "M1.xlsx")
	writeProgram(t, prog, base, [][]any{programHeader, {1, 1, 1, 1, 1}})

	list := filepath.Join(dir, "files.txt")
	content := "# list\n\"" + prog + "\"\n" + filepath.Join(dir, "missing.xlsx") + "\n"
	if err := os.WriteFile(list, []byte(content), 0o600); err != nil {
		t.Fatalf("write list: %v", err)
	}

	st := newFakeStore()
	im, err := New(extract.NewExtractor(extract.ExcelReader{}, nil), st, Config{})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	summary, err := (&Batch{Importer: im, List: list}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if summary.FilesFound != 2 || summary.UniqueModels != 1 || summary.Successes != 1 {
		t.Errorf("unexpected summary: %+v", summary)
	}
	if h := st.programs["m1"]; h == nil || h.Workcell != "Cell_Q" {
		t.Errorf("expected M1 in Cell_Q, got %+v", h)
	}
}

func TestBatchRun_RequiresSource(t *testing.T) {
	im, err := New(fakeExtractor{}, newFakeStore(), Config{})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if _, err := (&Batch{Importer: im}).Run(context.Background()); err == nil {
		t.Error("expected error without root or list")
	}
}

func TestWriteProblemLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "problems.txt")

	if err := WriteProblemLog(path, []string{"a", "b"}); err != nil {
		t.Fatalf("WriteProblemLog() failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "a\nb\n" {
		t.Fatalf("unexpected log %q: %v", data, err)
	}

	if err := WriteProblemLog(path, []string{"c"}); err != nil {
		t.Fatalf("WriteProblemLog() failed: %v", err)
	}
	if data, _ := os.ReadFile(path); string(data) != "c\n" {
		t.Errorf("expected overwrite, got %q", data)
	}

	if err := WriteProblemLog(path, nil); err != nil {
		t.Fatalf("WriteProblemLog(nil) failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected log removed, got %v", err)
	}
	if err := WriteProblemLog(path, nil); err != nil {
		t.Errorf("removing a missing log should succeed: %v", err)
	}
}
