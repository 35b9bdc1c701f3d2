// Package program defines the normalized fastening-program records that
// spreadsheets are imported into.
//
// A Header is one equipment model's program; it owns one Detail per
// qualifying spreadsheet row. Headers are created fresh on every import and
// are never mutated once persisted: a re-import replaces the whole record.
package program

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TorqueUnit is the unit a detail's target torque is expressed in.
type TorqueUnit string

const (
	TorqueKgfCm   TorqueUnit = "kgf.cm"
	TorqueLbfIn   TorqueUnit = "lbf-in"
	TorqueUnknown TorqueUnit = "Unknown"
)

// AngleDegree is the only angle unit stored. Turn-based sources are
// converted during extraction.
const AngleDegree = "Degree"

// UnknownWorkcell is used when no workcell can be derived from a path.
const UnknownWorkcell = "Unknown"

// Header is a program for one model.
type Header struct {
	// ===== Identity =====
	ID    uuid.UUID `json:"id"`
	Model string    `json:"model"` // unique business key

	// ===== Provenance =====
	Workcell    string    `json:"workcell"`
	FilePath    string    `json:"file_path"`
	FileDate    time.Time `json:"file_date"`    // source file mtime
	ExtractedAt time.Time `json:"extracted_at"` // when the import ran

	Details []Detail `json:"details"`
}

// Detail is one screw position specification.
type Detail struct {
	ID        uuid.UUID `json:"id"`
	HeaderID  uuid.UUID `json:"header_id"`
	RowNumber int       `json:"row_number"` // 1-based spreadsheet row

	TorqueUnit   TorqueUnit      `json:"torque_unit"`
	AngleUnit    string          `json:"angle_unit"`
	TargetTorque decimal.Decimal `json:"target_torque"`
	MinAngle     decimal.Decimal `json:"min_angle"`
	MaxAngle     decimal.Decimal `json:"max_angle"`
	ScrewCount   int             `json:"screw_count"`
	SpeedRPM     int             `json:"speed_rpm"`
}

// NewHeader builds a header with a fresh identity and attaches details to it.
func NewHeader(model, workcell, path string, fileDate, extractedAt time.Time, details []Detail) *Header {
	h := &Header{
		ID:          uuid.New(),
		Model:       model,
		Workcell:    workcell,
		FilePath:    path,
		FileDate:    fileDate,
		ExtractedAt: extractedAt,
	}
	h.Attach(details)
	return h
}

// Attach replaces the header's details, stamping each with the header ID
// and a fresh detail ID when it has none.
func (h *Header) Attach(details []Detail) {
	h.Details = make([]Detail, len(details))
	for i, d := range details {
		if d.ID == uuid.Nil {
			d.ID = uuid.New()
		}
		d.HeaderID = h.ID
		h.Details[i] = d
	}
}

// Validate checks the header before it is persisted.
func (h *Header) Validate() error {
	if h.ID == uuid.Nil {
		return fmt.Errorf("id is required")
	}
	if h.Model == "" {
		return fmt.Errorf("model is required")
	}
	if len(h.Model) > 255 {
		return fmt.Errorf("model must be 255 characters or less (got %d)", len(h.Model))
	}
	if h.ExtractedAt.IsZero() {
		return fmt.Errorf("extracted_at is required")
	}
	if len(h.Details) == 0 {
		return fmt.Errorf("program %s has no details", h.Model)
	}
	for i := range h.Details {
		if err := h.Details[i].validate(h.ID); err != nil {
			return fmt.Errorf("detail at row %d: %w", h.Details[i].RowNumber, err)
		}
	}
	return nil
}

func (d *Detail) validate(headerID uuid.UUID) error {
	if d.ID == uuid.Nil {
		return fmt.Errorf("id is required")
	}
	if d.HeaderID != headerID {
		return fmt.Errorf("belongs to header %s, not %s", d.HeaderID, headerID)
	}
	if d.ScrewCount < 0 || d.SpeedRPM < 0 {
		return fmt.Errorf("screw count and speed must be non-negative")
	}
	switch d.TorqueUnit {
	case TorqueKgfCm, TorqueLbfIn, TorqueUnknown:
	default:
		return fmt.Errorf("unknown torque unit %q", d.TorqueUnit)
	}
	if d.AngleUnit != AngleDegree {
		return fmt.Errorf("angle unit must be %s (got %q)", AngleDegree, d.AngleUnit)
	}
	return nil
}
