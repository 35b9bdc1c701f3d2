package selector

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestParseList(t *testing.T) {
	input := strings.Join([]string{
		"# programs to import",
		"",
		`  "C:\Programs\Line1\M100.xlsx"  `,
		"'/srv/programs/M200.xlsx'",
		"/srv/programs/M300.xlsx",
		`c:\programs\line1\m100.xlsx`,
		"   # indented comment",
		`""`,
	}, "\n")

	got, err := ParseList(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseList failed: %v", err)
	}

	want := []string{
		`C:\Programs\Line1\M100.xlsx`,
		"/srv/programs/M200.xlsx",
		"/srv/programs/M300.xlsx",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseList = %q, want %q", got, want)
	}
}

func TestReadList(t *testing.T) {
	dir := t.TempDir()
	listPath := filepath.Join(dir, "files.txt")
	if err := os.WriteFile(listPath, []byte("a.xlsx\r\nb.xlsx\r\n"), 0o600); err != nil {
		t.Fatalf("failed to write list: %v", err)
	}

	got, err := ReadList(listPath)
	if err != nil {
		t.Fatalf("ReadList failed: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"a.xlsx", "b.xlsx"}) {
		t.Errorf("unexpected list: %q", got)
	}

	if _, err := ReadList(filepath.Join(dir, "missing.txt")); err == nil {
		t.Error("expected error for missing list file")
	}
}

func TestWalk_Recursive(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{"a/1.xlsx", "a/b/2.xlsx", "3.txt"} {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(p, nil, 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	got, err := Walk(root)
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 files, got %d: %v", len(got), got)
	}
}
