package xltables

import (
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/go-logr/logr"
	"github.com/xuri/excelize/v2"
)

// Workbook reads literal cell values from an xlsx file. Sheets are read
// into memory on first use and cached.
type Workbook struct {
	file        *excelize.File
	recalculate bool
	log         logr.Logger

	mu     sync.Mutex // protects sheets and the excelize file
	sheets map[string]*Sheet
}

// NewWorkbook wraps an already opened excelize file.
func NewWorkbook(f *excelize.File, opts ...Option) *Workbook {
	o := buildOptions(opts)
	return &Workbook{
		file:        f,
		recalculate: o.recalculate,
		log:         o.logger,
		sheets:      make(map[string]*Sheet),
	}
}

// OpenWorkbook opens an xlsx file.
func OpenWorkbook(path string, opts ...Option) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %q: %w", path, err)
	}
	return NewWorkbook(f, opts...), nil
}

// OpenWorkbookReader opens an xlsx document from r.
func OpenWorkbookReader(r io.Reader, opts ...Option) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook reader: %w", err)
	}
	return NewWorkbook(f, opts...), nil
}

// SheetNames returns all sheet names in workbook order.
func (w *Workbook) SheetNames() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.GetSheetList()
}

// Sheet returns the snapshot of the named sheet. A missing sheet yields a
// *SheetError matching ErrMissingSheet.
func (w *Workbook) Sheet(name string) (*Sheet, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if s, ok := w.sheets[name]; ok {
		return s, nil
	}
	names := w.file.GetSheetList()
	if !slices.Contains(names, name) {
		return nil, &SheetError{Sheet: name, Available: names}
	}
	s, err := w.readSheet(name)
	if err != nil {
		return nil, err
	}
	w.sheets[name] = s
	return s, nil
}

// readSheet loads every populated cell of a sheet into memory.
func (w *Workbook) readSheet(name string) (*Sheet, error) {
	rows, err := w.file.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read rows from sheet %q: %w", name, err)
	}

	s := NewSheet(name)
	for rowIdx, row := range rows {
		for colIdx, raw := range row {
			cellName, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			if err != nil {
				return nil, err
			}
			col := ColumnName(colIdx + 1)

			formula, _ := w.file.GetCellFormula(name, cellName)
			typ, err := w.file.GetCellType(name, cellName)
			if err != nil {
				return nil, fmt.Errorf("cell type %s!%s: %w", name, cellName, err)
			}

			v := literalValue(typ, raw)
			if raw == "" && formula != "" && w.recalculate {
				v = w.calcValue(name, cellName)
			}
			if formula != "" {
				s.SetFormula(rowIdx+1, col, formula, v)
			} else {
				s.Set(rowIdx+1, col, v)
			}
		}
	}

	r, c := s.Dimensions()
	w.log.V(1).Info("sheet loaded", "sheet", name, "rows", r, "cols", c)
	return s, nil
}

// calcValue evaluates a formula cell. The stored cell type describes the
// formula, not its result, so the computed text is parsed as a number
// whenever it is one.
func (w *Workbook) calcValue(sheet, cellName string) CellValue {
	raw, err := w.file.CalcCellValue(sheet, cellName, excelize.Options{RawCellValue: true})
	if err != nil {
		w.log.V(1).Info("formula not evaluated", "sheet", sheet, "cell", cellName, "error", err.Error())
		return Blank
	}
	return ParseNumber(raw)
}

// literalValue converts the stored text of a cell into a CellValue. Only
// numeric cells are parsed; string, boolean, date and error cells keep
// their text.
func literalValue(typ excelize.CellType, raw string) CellValue {
	if raw == "" {
		return Blank
	}
	switch typ {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula,
		excelize.CellTypeDate, excelize.CellTypeError:
		return Text(raw)
	case excelize.CellTypeBool:
		if raw == "1" {
			return Text("TRUE")
		}
		if raw == "0" {
			return Text("FALSE")
		}
		return Text(raw)
	default:
		return ParseNumber(raw)
	}
}

// MergedRanges returns the merged cell ranges of a sheet, e.g. "A1:C1".
func (w *Workbook) MergedRanges(sheet string) ([]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	merged, err := w.file.GetMergeCells(sheet)
	if err != nil {
		return nil, fmt.Errorf("merged cells of %q: %w", sheet, err)
	}
	out := make([]string, 0, len(merged))
	for _, m := range merged {
		out = append(out, m.GetStartAxis()+":"+m.GetEndAxis())
	}
	return out, nil
}

// Close closes the underlying excelize file.
func (w *Workbook) Close() error {
	return w.file.Close()
}
