// Package extract turns fastening-program workbooks into normalized
// program details.
//
// Extraction is header driven. The first used row of a worksheet is matched
// against an ordered synonym table to find which column holds each canonical
// field; data rows are then coerced into details with unit normalization
// applied:
//
//	table := extract.DefaultSynonyms()
//	ext := extract.NewExtractor(extract.ExcelReader{}, table)
//	details, err := ext.Extract("Line1/X100.xlsx")
//
// Unresolved fields are not errors: their values default to zero and the
// torque unit to Unknown. A workbook whose sheets yield no qualifying rows
// returns an empty slice and a nil error; callers decide how to report it.
package extract
