// Package selector picks which program workbooks to import.
//
// Candidate paths come from a directory walk or a list file. They are
// filtered to existing spreadsheets that are not backups, grouped by model
// name (the file name without extension, case-insensitive), and reduced to
// the most recently modified file per model.
package selector

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/smarttorque/progsync/internal/program"
)

// Defaults for Options.
const (
	DefaultExtension    = ".xlsx"
	DefaultBackupMarker = "backup"
)

// Options configures Select.
type Options struct {
	// Root is the folder the paths were enumerated from. When set, the
	// workcell is the first folder below it.
	Root string
	// Extension a candidate must end in, case-insensitive.
	Extension string
	// BackupMarker excludes paths containing it, case-insensitive.
	BackupMarker string
	// Since excludes files modified before it when non-zero.
	Since time.Time
	// Stat defaults to os.Stat.
	Stat func(path string) (os.FileInfo, error)
}

// Candidate is the file chosen for one model.
type Candidate struct {
	Path     string
	Model    string
	Workcell string
	FileDate time.Time
}

// Select filters paths and returns one candidate per model.
//
// The latest modification time wins. Equal times are broken by the
// lexicographically smallest path so the result does not depend on the
// enumeration order. Models are returned in the order first seen.
func Select(paths []string, opts Options) []Candidate {
	opts = opts.withDefaults()

	var order []string
	best := make(map[string]Candidate)

	for _, path := range paths {
		if !Eligible(path, opts.Extension, opts.BackupMarker) {
			continue
		}
		info, err := opts.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		modTime := info.ModTime()
		if !opts.Since.IsZero() && modTime.Before(opts.Since) {
			continue
		}

		c := Candidate{
			Path:     path,
			Model:    ModelName(path),
			Workcell: Workcell(opts.Root, path),
			FileDate: modTime,
		}
		key := strings.ToLower(c.Model)

		current, ok := best[key]
		if !ok {
			order = append(order, key)
			best[key] = c
			continue
		}
		if newer(c, current) {
			best[key] = c
		}
	}

	result := make([]Candidate, 0, len(order))
	for _, key := range order {
		result = append(result, best[key])
	}
	return result
}

func newer(c, current Candidate) bool {
	if c.FileDate.After(current.FileDate) {
		return true
	}
	return c.FileDate.Equal(current.FileDate) && c.Path < current.Path
}

// Eligible reports whether path has the extension and is not a backup.
func Eligible(path, extension, backupMarker string) bool {
	lower := strings.ToLower(path)
	if !strings.HasSuffix(lower, strings.ToLower(extension)) {
		return false
	}
	if backupMarker != "" && strings.Contains(lower, strings.ToLower(backupMarker)) {
		return false
	}
	return true
}

// ModelName is the file name without its extension.
func ModelName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Workcell derives the production area a program belongs to.
//
// Below root it is the first folder of the relative path; otherwise, or for
// files directly in root, it is the containing folder's name.
func Workcell(root, path string) string {
	if root != "" {
		if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
			parts := strings.Split(filepath.ToSlash(rel), "/")
			if len(parts) > 1 && parts[0] != "" && parts[0] != "." {
				return parts[0]
			}
		}
	}

	dir := filepath.Dir(path)
	name := filepath.Base(dir)
	if dir == "" || name == "." || name == string(filepath.Separator) || name == "" {
		return program.UnknownWorkcell
	}
	return name
}

func (o Options) withDefaults() Options {
	if o.Extension == "" {
		o.Extension = DefaultExtension
	}
	if o.Stat == nil {
		o.Stat = os.Stat
	}
	return o
}
