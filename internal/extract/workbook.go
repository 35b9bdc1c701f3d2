package extract

import (
	"strconv"
	"strings"
)

// Cell is one used cell of a worksheet row.
type Cell struct {
	Column    int    // 1-based
	Raw       string // stored value as text
	Formatted string // value as displayed with the cell's number format
}

// Value returns the cell's typed value: int64 or float64 for numbers,
// bool for TRUE/FALSE, otherwise the raw string.
func (c Cell) Value() any {
	s := strings.TrimSpace(c.Raw)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	switch strings.ToUpper(s) {
	case "TRUE":
		return true
	case "FALSE":
		return false
	}
	return c.Raw
}

// Row is one used worksheet row.
type Row struct {
	Number int // 1-based
	Cells  []Cell
}

// Cell returns the cell in the given column, if used.
func (r Row) Cell(column int) (Cell, bool) {
	for _, c := range r.Cells {
		if c.Column == column {
			return c, true
		}
	}
	return Cell{}, false
}

// Text returns the raw text of the given column, or "" when unused.
func (r Row) Text(column int) string {
	c, _ := r.Cell(column)
	return c.Raw
}

// HeaderCells returns the row's cells as header cells.
func (r Row) HeaderCells() []HeaderCell {
	cells := make([]HeaderCell, 0, len(r.Cells))
	for _, c := range r.Cells {
		cells = append(cells, HeaderCell{Column: c.Column, Text: c.Raw})
	}
	return cells
}

// populated counts cells holding something other than blanks or "0".
func (r Row) populated() int {
	n := 0
	for _, c := range r.Cells {
		s := strings.TrimSpace(c.Raw)
		if s != "" && s != "0" {
			n++
		}
	}
	return n
}

// Workbook is an open spreadsheet.
type Workbook interface {
	// Sheets returns worksheet names in workbook order.
	Sheets() []string
	// Rows returns the used rows of a worksheet in row order.
	Rows(sheet string) ([]Row, error)
	Close() error
}

// Reader opens workbooks. Open fails with an error wrapping ErrLocked when
// another process holds the file.
type Reader interface {
	Open(path string) (Workbook, error)
}
