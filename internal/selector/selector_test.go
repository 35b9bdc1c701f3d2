package selector

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func touch(t *testing.T, path string, modTime time.Time) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	if err := os.Chtimes(path, modTime, modTime); err != nil {
		t.Fatalf("failed to set times on %s: %v", path, err)
	}
}

func TestSelect_LatestWinsPerModel(t *testing.T) {
	root := t.TempDir()
	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	older := filepath.Join(root, "Cell_A", "M100.xlsx")
	newer := filepath.Join(root, "Cell_B", "sub", "m100.XLSX")
	other := filepath.Join(root, "Cell_A", "M200.xlsx")
	touch(t, older, base)
	touch(t, newer, base.Add(time.Hour))
	touch(t, other, base)

	paths, err := Walk(root)
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}

	got := Select(paths, Options{Root: root})
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d: %+v", len(got), got)
	}

	byModel := map[string]Candidate{}
	for _, c := range got {
		byModel[strings.ToLower(c.Model)] = c
	}
	if c := byModel["m100"]; c.Path != newer || c.Workcell != "Cell_B" {
		t.Errorf("m100: expected %s in Cell_B, got %+v", newer, c)
	}
	if c := byModel["m200"]; c.Path != other || c.Workcell != "Cell_A" {
		t.Errorf("m200: expected %s in Cell_A, got %+v", other, c)
	}
	if !byModel["m100"].FileDate.Equal(base.Add(time.Hour)) {
		t.Errorf("expected file date %v, got %v", base.Add(time.Hour), byModel["m100"].FileDate)
	}
}

func TestSelect_TieBreakIsOrderIndependent(t *testing.T) {
	root := t.TempDir()
	ts := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	a := filepath.Join(root, "a", "M1.xlsx")
	b := filepath.Join(root, "b", "M1.xlsx")
	touch(t, a, ts)
	touch(t, b, ts)

	forward := Select([]string{a, b}, Options{Root: root})
	reverse := Select([]string{b, a}, Options{Root: root})

	if len(forward) != 1 || len(reverse) != 1 {
		t.Fatalf("expected one candidate each, got %d and %d", len(forward), len(reverse))
	}
	if forward[0].Path != a || reverse[0].Path != a {
		t.Errorf("expected %s both ways, got %s and %s", a, forward[0].Path, reverse[0].Path)
	}
}

func TestSelect_Filters(t *testing.T) {
	root := t.TempDir()
	ts := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	keep := filepath.Join(root, "Cell", "M1.xlsx")
	backupName := filepath.Join(root, "Cell", "M2_Backup.xlsx")
	backupDir := filepath.Join(root, "BACKUP", "M3.xlsx")
	wrongExt := filepath.Join(root, "Cell", "M4.xls")
	csv := filepath.Join(root, "Cell", "M5.csv")
	for _, p := range []string{keep, backupName, backupDir, wrongExt, csv} {
		touch(t, p, ts)
	}
	missing := filepath.Join(root, "Cell", "Gone.xlsx")

	paths := []string{keep, backupName, backupDir, wrongExt, csv, missing}
	got := Select(paths, Options{Root: root, BackupMarker: DefaultBackupMarker})
	if len(got) != 1 || got[0].Path != keep {
		t.Fatalf("expected only %s, got %+v", keep, got)
	}
}

func TestSelect_Since(t *testing.T) {
	root := t.TempDir()
	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	old := filepath.Join(root, "Cell", "Old.xlsx")
	recent := filepath.Join(root, "Cell", "Recent.xlsx")
	touch(t, old, base)
	touch(t, recent, base.Add(48*time.Hour))

	got := Select([]string{old, recent}, Options{Root: root, Since: base.Add(24 * time.Hour)})
	if len(got) != 1 || got[0].Model != "Recent" {
		t.Fatalf("expected only Recent, got %+v", got)
	}
}

func TestSelect_FirstSeenOrder(t *testing.T) {
	root := t.TempDir()
	ts := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	z := filepath.Join(root, "c", "Z.xlsx")
	a := filepath.Join(root, "c", "A.xlsx")
	touch(t, z, ts)
	touch(t, a, ts)

	got := Select([]string{z, a}, Options{Root: root})
	if len(got) != 2 || got[0].Model != "Z" || got[1].Model != "A" {
		t.Fatalf("expected [Z A], got %+v", got)
	}
}

func TestWorkcell(t *testing.T) {
	root := filepath.Join("data", "programs")
	tests := []struct {
		name string
		root string
		path string
		want string
	}{
		{"first folder under root", root, filepath.Join(root, "Line1", "deep", "M.xlsx"), "Line1"},
		{"file directly in root", root, filepath.Join(root, "M.xlsx"), "programs"},
		{"no root uses parent", "", filepath.Join("x", "Line2", "M.xlsx"), "Line2"},
		{"outside root uses parent", root, filepath.Join("other", "Line3", "M.xlsx"), "Line3"},
		{"bare file name", "", "M.xlsx", "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Workcell(tt.root, tt.path); got != tt.want {
				t.Errorf("Workcell(%q, %q) = %q, want %q", tt.root, tt.path, got, tt.want)
			}
		})
	}
}

func TestModelName(t *testing.T) {
	if got := ModelName(filepath.Join("a", "b", "TX-500.rev2.xlsx")); got != "TX-500.rev2" {
		t.Errorf("expected TX-500.rev2, got %q", got)
	}
}

func TestWalk_NotADirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "f.xlsx")
	touch(t, file, time.Now())

	if _, err := Walk(file); err == nil {
		t.Fatal("expected error walking a file")
	}
	if _, err := Walk(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error walking a missing folder")
	}
}
