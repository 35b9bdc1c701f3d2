package ui

import (
	"fmt"
	"io"
	"os"
)

// Progress prints "Processed N / M" on a single line, rewriting it in place.
// On a non-terminal writer it stays silent so logs and pipes are not
// flooded with carriage returns.
type Progress struct {
	w       io.Writer
	enabled bool
	wrote   bool
}

// NewProgress returns a progress line on f, enabled only when f is a terminal.
func NewProgress(f *os.File) *Progress {
	return &Progress{w: f, enabled: IsTerminal(f)}
}

// NewProgressWriter returns an always-enabled progress line on w.
func NewProgressWriter(w io.Writer) *Progress {
	return &Progress{w: w, enabled: true}
}

// Update rewrites the line with the current counts.
func (p *Progress) Update(done, total int) {
	if !p.enabled {
		return
	}
	fmt.Fprintf(p.w, "\r%s Processed %d / %d", RenderAccent("⏳"), done, total)
	p.wrote = true
}

// Done ends the progress line.
func (p *Progress) Done() {
	if p.enabled && p.wrote {
		fmt.Fprintln(p.w)
	}
}
