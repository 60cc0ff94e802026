package xltables

import (
	"sort"
)

// Grid is read-only access to the literal values of one sheet.
// Rows are 1-based; columns are letters. Cells outside the populated area
// are blank.
type Grid interface {
	Get(row int, col string) CellValue
}

// Cell is everything kept about a single populated cell.
type Cell struct {
	Ref     CellRef
	Value   CellValue
	Formula string // formula text without the leading '=' (empty for literals)
}

type cellKey struct {
	row int
	col int
}

// Sheet is an in-memory snapshot of a worksheet. It implements Grid and is
// safe for concurrent reads once populated.
type Sheet struct {
	Name   string
	cells  map[cellKey]*Cell
	maxRow int
	maxCol int
}

// NewSheet creates an empty sheet snapshot.
func NewSheet(name string) *Sheet {
	return &Sheet{
		Name:  name,
		cells: make(map[cellKey]*Cell),
	}
}

// Set stores a literal value at row/col. Setting Blank removes the cell.
func (s *Sheet) Set(row int, col string, v CellValue) *Sheet {
	s.put(row, col, v, "")
	return s
}

// SetFormula stores a formula cell together with its cached value.
func (s *Sheet) SetFormula(row int, col string, formula string, cached CellValue) *Sheet {
	s.put(row, col, cached, formula)
	return s
}

func (s *Sheet) put(row int, col string, v CellValue, formula string) {
	c, err := ColumnIndex(col)
	if err != nil || row < 1 {
		return
	}
	key := cellKey{row: row, col: c}
	if v.IsBlank() && formula == "" {
		delete(s.cells, key)
		return
	}
	s.cells[key] = &Cell{
		Ref:     CellRef{Sheet: s.Name, Col: ColumnName(c), Row: row},
		Value:   v,
		Formula: formula,
	}
	s.maxRow = max(s.maxRow, row)
	s.maxCol = max(s.maxCol, c)
}

// Get returns the literal value at row/col.
func (s *Sheet) Get(row int, col string) CellValue {
	c, err := ColumnIndex(col)
	if err != nil {
		return Blank
	}
	if cell, ok := s.cells[cellKey{row: row, col: c}]; ok {
		return cell.Value
	}
	return Blank
}

// Cell returns the full cell at row/col, or nil when nothing is stored there.
func (s *Sheet) Cell(row int, col string) *Cell {
	c, err := ColumnIndex(col)
	if err != nil {
		return nil
	}
	return s.cells[cellKey{row: row, col: c}]
}

// Dimensions returns the last populated row and column number.
func (s *Sheet) Dimensions() (rows, cols int) {
	return s.maxRow, s.maxCol
}

// Cells returns every stored cell in row-major order.
func (s *Sheet) Cells() []*Cell {
	keys := make([]cellKey, 0, len(s.cells))
	for k := range s.cells {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].row != keys[j].row {
			return keys[i].row < keys[j].row
		}
		return keys[i].col < keys[j].col
	})
	out := make([]*Cell, len(keys))
	for i, k := range keys {
		out[i] = s.cells[k]
	}
	return out
}

// FormulaCells returns the cells carrying a formula in row-major order.
func (s *Sheet) FormulaCells() []*Cell {
	var out []*Cell
	for _, c := range s.Cells() {
		if c.Formula != "" {
			out = append(out, c)
		}
	}
	return out
}
