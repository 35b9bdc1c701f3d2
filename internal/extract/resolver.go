package extract

import (
	"strings"
	"unicode/utf8"
)

// MaxHeaderCellLen bounds the header text, in characters, considered for
// matching. Longer cells are treated as corrupt and skipped.
const MaxHeaderCellLen = 500

// HeaderCell is one cell of a worksheet's header row.
type HeaderCell struct {
	Column int // 1-based
	Text   string
}

// ColumnMap maps each resolved field to its 1-based column.
type ColumnMap map[Field]int

// Resolve maps header cells to canonical fields.
//
// Synonyms are tried in table order and cells left to right; a cell matches
// when its lower-cased text contains the lower-cased pattern. The first match
// for a field wins and is never overwritten by a later synonym. Fields with
// no match are absent from the result.
func Resolve(header []HeaderCell, table SynonymTable) ColumnMap {
	cols := make(ColumnMap)

	texts := make([]string, len(header))
	for i, cell := range header {
		texts[i] = strings.ToLower(strings.TrimSpace(cell.Text))
	}

	for _, syn := range table {
		if _, done := cols[syn.Field]; done {
			continue
		}
		pattern := strings.ToLower(strings.TrimSpace(syn.Pattern))
		if pattern == "" {
			continue
		}
		for i, text := range texts {
			if utf8.RuneCountInString(text) > MaxHeaderCellLen {
				continue
			}
			if strings.Contains(text, pattern) {
				cols[syn.Field] = header[i].Column
				break
			}
		}
	}

	return cols
}
