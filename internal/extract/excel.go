package extract

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ExcelReader reads .xlsx workbooks with excelize.
type ExcelReader struct{}

// Open implements Reader.
func (ExcelReader) Open(path string) (Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		if IsLocked(err) {
			return nil, fmt.Errorf("%w: %s", ErrLocked, path)
		}
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	return &excelWorkbook{file: f}, nil
}

type excelWorkbook struct {
	file *excelize.File
}

func (w *excelWorkbook) Sheets() []string {
	return w.file.GetSheetList()
}

// Rows reads the sheet twice, once formatted and once raw, and keeps only
// rows with at least one non-blank cell.
func (w *excelWorkbook) Rows(sheet string) ([]Row, error) {
	formatted, err := w.file.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of %q: %w", sheet, err)
	}
	raw, err := w.file.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read raw rows of %q: %w", sheet, err)
	}

	var rows []Row
	for i, rawRow := range raw {
		var fmtRow []string
		if i < len(formatted) {
			fmtRow = formatted[i]
		}

		row := Row{Number: i + 1}
		for j, rawText := range rawRow {
			display := rawText
			if j < len(fmtRow) {
				display = fmtRow[j]
			}
			if strings.TrimSpace(rawText) == "" && strings.TrimSpace(display) == "" {
				continue
			}
			row.Cells = append(row.Cells, Cell{Column: j + 1, Raw: rawText, Formatted: display})
		}
		if len(row.Cells) > 0 {
			rows = append(rows, row)
		}
	}

	return rows, nil
}

func (w *excelWorkbook) Close() error {
	return w.file.Close()
}
