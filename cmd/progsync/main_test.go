package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, path string, rows [][]any) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save: %v", err)
	}
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(append(args, "--no-color"))
	return rootCmd.Execute()
}

func TestImportListDelete(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	root := filepath.Join(dir, "programs")
	writeWorkbook(t, filepath.Join(root, "Line1", "M100.xlsx"), [][]any{
		{"Torque (Lbf_in)", "Min Angle", "Max Angle", "Screw Count", "Speed"},
		{5, 10, 90, 2, 300},
	})
	dbPath := filepath.Join(dir, "progsync.db")

	if err := execute(t, "import", "--root", root, "--db", dbPath); err != nil {
		t.Fatalf("import failed: %v", err)
	}

	if err := execute(t, "list", "--db", dbPath); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if err := execute(t, "show", "m100", "--db", dbPath); err != nil {
		t.Fatalf("show failed: %v", err)
	}
	if err := execute(t, "status", "--db", dbPath); err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if err := execute(t, "delete", "M100", "--yes", "--db", dbPath); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := execute(t, "show", "M100", "--db", dbPath); err == nil {
		t.Error("expected show to fail after delete")
	}
	if err := execute(t, "delete", "M100", "--yes", "--db", dbPath); err != nil {
		t.Errorf("deleting a missing program should be a no-op: %v", err)
	}
}

func TestImport_RequiresSource(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	if err := execute(t, "import", "--dry-run", "--root", ""); err == nil {
		t.Error("expected error without a source")
	}
}

// chdir changes the working directory for the duration of the test
// (stand-in for testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir(%q): %v", dir, err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatalf("Chdir(%q): %v", old, err)
		}
	})
}
