package watch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	createdTempPrefix = ".created-"
	createdTempSuffix = ".json"
)

// CreatedFile records the most recently created file.
type CreatedFile struct {
	FileName  string    `json:"file_name"`
	Directory string    `json:"directory"`
	FullPath  string    `json:"full_path"`
	CreatedAt time.Time `json:"created_at"`
}

// NewCreatedFile describes path as created at t.
func NewCreatedFile(path string, t time.Time) CreatedFile {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return CreatedFile{
		FileName:  filepath.Base(abs),
		Directory: filepath.Dir(abs),
		FullPath:  abs,
		CreatedAt: t,
	}
}

// WriteCreatedLog overwrites path with rec as indented JSON. The file is
// replaced atomically so readers never see a partial record.
func WriteCreatedLog(path string, rec CreatedFile) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal created file record: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, createdTempPrefix+"*"+createdTempSuffix)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write created file record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace created file record: %w", err)
	}

	return nil
}

// ReadCreatedLog reads the record written by WriteCreatedLog.
func ReadCreatedLog(path string) (CreatedFile, error) {
	var rec CreatedFile
	// #nosec G304 - controlled path from config
	data, err := os.ReadFile(path)
	if err != nil {
		return rec, fmt.Errorf("failed to read created file record: %w", err)
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, fmt.Errorf("failed to parse created file record: %w", err)
	}
	return rec, nil
}
