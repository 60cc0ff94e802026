package xltables

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// CellRef is a single cell address in a workbook. Rows are 1-based, as they
// appear in the workbook, and columns are letters.
type CellRef struct {
	Sheet string // sheet name (empty = sheet from context)
	Col   string // column letters, upper case
	Row   int    // 1-based row number
}

// ParseCellRef parses a reference like "A4", "$A$4" or "VLOOKUP Tables!M21".
func ParseCellRef(s string) (CellRef, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return CellRef{}, fmt.Errorf("empty cell reference")
	}

	var sheet string
	cellPart := s
	if idx := strings.LastIndex(s, "!"); idx >= 0 {
		sheet = strings.Trim(s[:idx], "'")
		cellPart = s[idx+1:]
	}
	cellPart = strings.ReplaceAll(cellPart, "$", "")

	col, row, err := excelize.SplitCellName(cellPart)
	if err != nil {
		return CellRef{}, fmt.Errorf("invalid cell reference %q: %w", s, err)
	}
	return CellRef{Sheet: sheet, Col: strings.ToUpper(col), Row: row}, nil
}

// CellName returns the cell part like "A4" without sheet name.
func (c CellRef) CellName() string {
	return fmt.Sprintf("%s%d", c.Col, c.Row)
}

// String formats the CellRef as "Sheet!A4" or "A4" if no sheet.
func (c CellRef) String() string {
	if c.Sheet != "" {
		return c.Sheet + "!" + c.CellName()
	}
	return c.CellName()
}

// ColumnIndex returns the 1-based column number for a column name such as
// "A" or "AB". It rejects anything excelize would not accept as a column.
func ColumnIndex(col string) (int, error) {
	n, err := excelize.ColumnNameToNumber(strings.TrimSpace(col))
	if err != nil {
		return 0, fmt.Errorf("invalid column %q: %w", col, err)
	}
	return n, nil
}

// ColumnName converts a 1-based column number to its letters.
func ColumnName(n int) string {
	name, err := excelize.ColumnNumberToName(n)
	if err != nil {
		return ""
	}
	return name
}

// AreaRef is a rectangular region defined by two cell references.
type AreaRef struct {
	First CellRef
	Last  CellRef
}

// ParseAreaRef parses "M21:O30" or "VLOOKUP Tables!M21:O30". The last cell
// inherits the sheet of the first one and the corners are normalized so
// First is the top-left cell.
func ParseAreaRef(s string) (AreaRef, error) {
	s = strings.TrimSpace(s)

	var sheet string
	if idx := strings.LastIndex(s, "!"); idx >= 0 {
		sheet = strings.Trim(s[:idx], "'")
		s = s[idx+1:]
	}

	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return AreaRef{}, fmt.Errorf("invalid area reference (missing ':'): %q", s)
	}
	first, err := ParseCellRef(parts[0])
	if err != nil {
		return AreaRef{}, fmt.Errorf("invalid area reference %q: %w", s, err)
	}
	last, err := ParseCellRef(parts[1])
	if err != nil {
		return AreaRef{}, fmt.Errorf("invalid area reference %q: %w", s, err)
	}

	fc, _ := ColumnIndex(first.Col)
	lc, _ := ColumnIndex(last.Col)
	if lc < fc {
		first.Col, last.Col = last.Col, first.Col
	}
	if last.Row < first.Row {
		first.Row, last.Row = last.Row, first.Row
	}
	first.Sheet, last.Sheet = sheet, sheet
	return AreaRef{First: first, Last: last}, nil
}

// Sheet returns the sheet name of the area.
func (a AreaRef) Sheet() string {
	return a.First.Sheet
}

// Columns lists the column letters covered by the area, left to right.
func (a AreaRef) Columns() []string {
	fc, err := ColumnIndex(a.First.Col)
	if err != nil {
		return nil
	}
	lc, err := ColumnIndex(a.Last.Col)
	if err != nil {
		return nil
	}
	cols := make([]string, 0, lc-fc+1)
	for c := fc; c <= lc; c++ {
		cols = append(cols, ColumnName(c))
	}
	return cols
}

// String formats the AreaRef as "Sheet!A1:C5" or "A1:C5".
func (a AreaRef) String() string {
	span := a.First.CellName() + ":" + a.Last.CellName()
	if a.First.Sheet != "" {
		return a.First.Sheet + "!" + span
	}
	return span
}
