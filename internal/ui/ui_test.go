package ui

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestMain(m *testing.M) {
	DisableColor()
	os.Exit(m.Run())
}

func TestRenderPlain(t *testing.T) {
	if got := RenderPass("✓"); got != "✓" {
		t.Errorf("RenderPass() = %q, want plain text with color disabled", got)
	}
	if got := RenderFail("x"); got != "x" {
		t.Errorf("RenderFail() = %q", got)
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressWriter(&buf)

	p.Update(1, 3)
	p.Update(2, 3)
	p.Update(3, 3)
	p.Done()

	out := buf.String()
	if strings.Count(out, "\r") != 3 || !strings.Contains(out, "Processed 3 / 3") || !strings.HasSuffix(out, "\n") {
		t.Errorf("unexpected progress output: %q", out)
	}
}

func TestProgress_DisabledIsSilent(t *testing.T) {
	var buf bytes.Buffer
	p := &Progress{w: &buf}
	p.Update(1, 1)
	p.Done()
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestTable(t *testing.T) {
	out := Table([]string{"Model", "Details"}, [][]string{{"M100", "2"}, {"M200", "12"}})
	for _, want := range []string{"Model", "Details", "M100", "M200", "12"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}
