package importer

import (
	"fmt"

	"github.com/smarttorque/progsync/internal/selector"
)

// Status is the terminal state of one file's import.
type Status int

const (
	StatusImported Status = iota
	StatusSkippedNoDetails
	StatusSkippedLocked
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusImported:
		return "imported"
	case StatusSkippedNoDetails:
		return "skipped_no_details"
	case StatusSkippedLocked:
		return "skipped_locked"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// FileOutcome is the result of importing one candidate.
type FileOutcome struct {
	Candidate selector.Candidate
	Status    Status
	Details   int    // rows extracted
	Replaced  bool   // a previous program for the model was removed
	Reason    string // set when Status is StatusFailed
	DryRun    bool
}

// Problem returns the problem log line for the outcome, or "" on success.
func (o FileOutcome) Problem() string {
	switch o.Status {
	case StatusSkippedLocked:
		return fmt.Sprintf("⏭ Skipping locked file: %s", o.Candidate.Path)
	case StatusSkippedNoDetails:
		return fmt.Sprintf("❌ No details found in file: %s", o.Candidate.Path)
	case StatusFailed:
		return fmt.Sprintf("❌ Error in file: %s | Reason: %s", o.Candidate.Path, o.Reason)
	default:
		return ""
	}
}

// RunResult accumulates outcomes across one run.
type RunResult struct {
	Outcomes  []FileOutcome
	Successes int
	Problems  []string
	Total     int
}

func (r *RunResult) add(o FileOutcome) {
	r.Outcomes = append(r.Outcomes, o)
	if o.Status == StatusImported {
		r.Successes++
	}
	if line := o.Problem(); line != "" {
		r.Problems = append(r.Problems, line)
	}
}

// Processed is the number of files with an outcome so far.
func (r *RunResult) Processed() int {
	return len(r.Outcomes)
}
