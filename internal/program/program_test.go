package program

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func sampleDetails(n int) []Detail {
	details := make([]Detail, n)
	for i := range details {
		details[i] = Detail{
			RowNumber:    i + 2,
			TorqueUnit:   TorqueKgfCm,
			AngleUnit:    AngleDegree,
			TargetTorque: decimal.RequireFromString("12.35"),
			ScrewCount:   1,
			SpeedRPM:     300,
		}
	}
	return details
}

func TestNewHeader_AttachesDetails(t *testing.T) {
	now := time.Now()
	h := NewHeader("X100", "Line1", "/p/Line1/X100.xlsx", now, now, sampleDetails(3))

	if h.ID == uuid.Nil {
		t.Fatal("header ID not assigned")
	}
	if len(h.Details) != 3 {
		t.Fatalf("len(Details) = %d, want 3", len(h.Details))
	}
	seen := map[uuid.UUID]bool{}
	for _, d := range h.Details {
		if d.HeaderID != h.ID {
			t.Errorf("detail row %d HeaderID = %s, want %s", d.RowNumber, d.HeaderID, h.ID)
		}
		if d.ID == uuid.Nil || seen[d.ID] {
			t.Errorf("detail row %d has missing or duplicate ID", d.RowNumber)
		}
		seen[d.ID] = true
	}
	if err := h.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestValidate(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name    string
		mutate  func(h *Header)
		wantErr string
	}{
		{"no details", func(h *Header) { h.Details = nil }, "no details"},
		{"no model", func(h *Header) { h.Model = "" }, "model is required"},
		{"foreign detail", func(h *Header) { h.Details[0].HeaderID = uuid.New() }, "belongs to header"},
		{"bad unit", func(h *Header) { h.Details[0].TorqueUnit = "Nm" }, "unknown torque unit"},
		{"turn angle", func(h *Header) { h.Details[0].AngleUnit = "Turn" }, "angle unit"},
		{"negative speed", func(h *Header) { h.Details[0].SpeedRPM = -1 }, "non-negative"},
		{"no extraction time", func(h *Header) { h.ExtractedAt = time.Time{} }, "extracted_at"},
		{"long model", func(h *Header) { h.Model = strings.Repeat("m", 256) }, "255 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHeader("X100", "Line1", "X100.xlsx", now, now, sampleDetails(1))
			tt.mutate(h)
			err := h.Validate()
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}
