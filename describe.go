package xltables

import (
	"fmt"
	"strings"
)

// Describe opens a workbook and returns a human-readable overview of its
// sheets: dimensions, merged ranges and a preview of the populated rows.
// Useful for locating tables before writing a catalog.
func Describe(path string, opts ...Option) (string, error) {
	wb, err := OpenWorkbook(path, opts...)
	if err != nil {
		return "", err
	}
	defer wb.Close()

	o := buildOptions(opts)
	var b strings.Builder
	fmt.Fprintf(&b, "Workbook: %s\n", path)
	if err := wb.Describe(&b, o.previewRows); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Describe writes the overview of every sheet to b. At most previewRows
// populated rows are listed per sheet; formula cells are shown with their
// formula text.
func (w *Workbook) Describe(b *strings.Builder, previewRows int) error {
	names := w.SheetNames()
	fmt.Fprintf(b, "Sheets: %d\n", len(names))
	for i, name := range names {
		fmt.Fprintf(b, "  %d. %s\n", i+1, name)
	}

	for _, name := range names {
		s, err := w.Sheet(name)
		if err != nil {
			return err
		}
		rows, cols := s.Dimensions()
		fmt.Fprintf(b, "\nSheet %q: %d rows x %d columns\n", name, rows, cols)

		merged, err := w.MergedRanges(name)
		if err != nil {
			return err
		}
		if len(merged) > 0 {
			fmt.Fprintf(b, "  Merged cells: %d ranges\n", len(merged))
		}

		describeRows(b, s, previewRows)
	}
	return nil
}

// describeRows lists populated cells grouped by row, up to limit rows.
func describeRows(b *strings.Builder, s *Sheet, limit int) {
	var (
		row   int
		parts []string
		shown int
	)
	flush := func() {
		if len(parts) > 0 {
			fmt.Fprintf(b, "  Row %2d: %s\n", row, strings.Join(parts, ", "))
			shown++
		}
		parts = parts[:0]
	}

	for _, c := range s.Cells() {
		if c.Ref.Row != row {
			flush()
			if limit > 0 && shown >= limit {
				return
			}
			row = c.Ref.Row
		}
		parts = append(parts, describeCell(c))
	}
	flush()
}

func describeCell(c *Cell) string {
	if c.Formula != "" {
		f := "=" + c.Formula
		if r := []rune(f); len(r) > 50 {
			f = string(r[:50]) + "..."
		}
		return fmt.Sprintf("%s=[FORMULA: %s]", c.Ref.CellName(), f)
	}
	return fmt.Sprintf("%s=%s", c.Ref.CellName(), c.Value)
}

// DumpRegion lists every cell of area, including blank ones, one row per
// line. The area must name its sheet.
func (w *Workbook) DumpRegion(area AreaRef) (string, error) {
	if area.Sheet() == "" {
		return "", fmt.Errorf("area %s has no sheet name", area)
	}
	s, err := w.Sheet(area.Sheet())
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s:\n", area)
	cols := area.Columns()
	for row := area.First.Row; row <= area.Last.Row; row++ {
		parts := make([]string, 0, len(cols))
		for _, col := range cols {
			v := s.Get(row, col)
			text := "None"
			if !v.IsBlank() {
				text = v.String()
			}
			parts = append(parts, fmt.Sprintf("%s=%s", col, text))
		}
		fmt.Fprintf(&b, "Row %d: %s\n", row, strings.Join(parts, ", "))
	}
	return b.String(), nil
}

// FormulaCell is one formula found in a sheet.
type FormulaCell struct {
	Cell    string `json:"cell"`
	Row     int    `json:"row"`
	Col     string `json:"col"`
	Formula string `json:"formula"`
	Value   string `json:"value,omitempty"` // cached result
}

// SheetFormulas groups the formulas of one sheet.
type SheetFormulas struct {
	Sheet    string        `json:"sheet"`
	Formulas []FormulaCell `json:"formulas"`
}

// Formulas returns the formula cells of the given sheets, or of every sheet
// when none are named.
func (w *Workbook) Formulas(sheets ...string) ([]SheetFormulas, error) {
	if len(sheets) == 0 {
		sheets = w.SheetNames()
	}
	out := make([]SheetFormulas, 0, len(sheets))
	for _, name := range sheets {
		s, err := w.Sheet(name)
		if err != nil {
			return nil, err
		}
		sf := SheetFormulas{Sheet: name, Formulas: []FormulaCell{}}
		for _, c := range s.FormulaCells() {
			sf.Formulas = append(sf.Formulas, FormulaCell{
				Cell:    c.Ref.CellName(),
				Row:     c.Ref.Row,
				Col:     c.Ref.Col,
				Formula: "=" + c.Formula,
				Value:   c.Value.String(),
			})
		}
		out = append(out, sf)
	}
	return out, nil
}
