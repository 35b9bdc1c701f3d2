package extract

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/smarttorque/progsync/internal/program"
)

// Extractor reads program details out of workbooks.
type Extractor struct {
	reader   Reader
	synonyms SynonymTable
}

// NewExtractor creates an Extractor. A nil table uses DefaultSynonyms.
func NewExtractor(reader Reader, synonyms SynonymTable) *Extractor {
	if synonyms == nil {
		synonyms = DefaultSynonyms()
	}
	return &Extractor{reader: reader, synonyms: synonyms}
}

// Extract returns the details of the first worksheet in path that yields at
// least one qualifying row. Later worksheets are not read.
//
// Any error while reading a worksheet aborts the whole file; rows already
// extracted are discarded. A workbook without qualifying rows returns an
// empty slice and a nil error.
func (e *Extractor) Extract(path string) ([]program.Detail, error) {
	wb, err := e.reader.Open(path)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	for _, sheet := range wb.Sheets() {
		rows, err := wb.Rows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read details: %w", err)
		}
		if details := ExtractRows(rows, e.synonyms); len(details) > 0 {
			return details, nil
		}
	}

	return []program.Detail{}, nil
}

// ExtractRows extracts details from one worksheet's used rows. The first row
// is the header. Sheets with fewer than two rows or no resolvable header are
// skipped, as are rows with fewer than two populated cells.
func ExtractRows(rows []Row, table SynonymTable) []program.Detail {
	if len(rows) < 2 {
		return nil
	}

	header := rows[0]
	cols := Resolve(header.HeaderCells(), table)
	if len(cols) == 0 {
		return nil
	}

	torqueUnit := program.TorqueUnknown
	if col, ok := cols[FieldTargetTorque]; ok {
		torqueUnit = TorqueUnitFromHeader(header.Text(col))
	}
	minInTurns := isTurnColumn(header, cols, FieldMinAngle)
	maxInTurns := isTurnColumn(header, cols, FieldMaxAngle)

	var details []program.Detail
	for _, row := range rows[1:] {
		if row.populated() < 2 {
			continue
		}

		d := program.Detail{
			RowNumber:    row.Number,
			TorqueUnit:   torqueUnit,
			AngleUnit:    program.AngleDegree,
			TargetTorque: decimalField(row, cols, FieldTargetTorque),
			MinAngle:     decimalField(row, cols, FieldMinAngle),
			MaxAngle:     decimalField(row, cols, FieldMaxAngle),
			ScrewCount:   intField(row, cols, FieldScrewCount),
			SpeedRPM:     intField(row, cols, FieldSpeedRPM),
		}
		if minInTurns {
			d.MinAngle = TurnsToDegrees(d.MinAngle)
		}
		if maxInTurns {
			d.MaxAngle = TurnsToDegrees(d.MaxAngle)
		}

		details = append(details, d)
	}

	return details
}

func isTurnColumn(header Row, cols ColumnMap, f Field) bool {
	col, ok := cols[f]
	return ok && IsTurnHeader(header.Text(col))
}

// decimalField reads the displayed text so number formats such as "12.50"
// are parsed as the operator sees them.
func decimalField(row Row, cols ColumnMap, f Field) decimal.Decimal {
	col, ok := cols[f]
	if !ok {
		return decimal.Zero
	}
	c, _ := row.Cell(col)
	return SafeDecimal(c.Formatted)
}

func intField(row Row, cols ColumnMap, f Field) int {
	col, ok := cols[f]
	if !ok {
		return 0
	}
	return SafeInt(row.Text(col))
}
