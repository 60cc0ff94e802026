package xltables

import (
	"fmt"
)

// DefaultMaxRows bounds how far a scan-until-empty table may run past its
// start row.
const DefaultMaxRows = 96

// CountField is the first field of records produced by ExtractSingle.
const CountField = "propertyCount"

// ExtractPairs reads a two-column lookup table starting at startRow.
//
// Scanning stops at the first row where both cells are blank. A row with
// only one of the two cells filled is a gap: it is skipped and scanning
// continues. Keys keep their stored representation, values are written as
// floats, strings are kept verbatim. The scan gives up once it has moved
// more than maxRows past startRow.
func ExtractPairs(g Grid, keyCol, valueCol string, startRow int, keyName, valueName string, maxRows int) []Record {
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}
	records := make([]Record, 0)
	for row := startRow; row-startRow <= maxRows; row++ {
		key := g.Get(row, keyCol)
		value := g.Get(row, valueCol)

		if key.IsBlank() && value.IsBlank() {
			break
		}
		if key.IsBlank() || value.IsBlank() {
			continue
		}
		records = append(records, Record{
			{Name: keyName, Value: key.Natural()},
			{Name: valueName, Value: value.Factor()},
		})
	}
	return records
}

// ExtractSingle reads a single-column table starting at startRow. It stops
// at the first blank cell. Each record carries the cell value twice: as the
// property count and under valueName.
func ExtractSingle(g Grid, col string, startRow int, valueName string, maxRows int) []Record {
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}
	records := make([]Record, 0)
	for row := startRow; row-startRow <= maxRows; row++ {
		cell := g.Get(row, col)
		if cell.IsBlank() {
			break
		}
		v := cell.Normalized()
		records = append(records, Record{
			{Name: CountField, Value: v},
			{Name: valueName, Value: v},
		})
	}
	return records
}

// ExtractMapping reads the fixed row range [startRow, endRow]. Rows whose
// first column is blank produce no record, but every row of the range is
// visited. Numbers in the remaining columns are truncated to integers and
// blank cells there become null.
func ExtractMapping(g Grid, startRow, endRow int, columns, fields []string) []Record {
	records := make([]Record, 0)
	if len(columns) == 0 || len(columns) != len(fields) {
		return records
	}
	for row := startRow; row <= endRow; row++ {
		first := g.Get(row, columns[0])
		if first.IsBlank() {
			continue
		}
		rec := make(Record, len(columns))
		rec[0] = Field{Name: fields[0], Value: first.Natural()}
		for i := 1; i < len(columns); i++ {
			rec[i] = Field{Name: fields[i], Value: g.Get(row, columns[i]).Truncated()}
		}
		records = append(records, rec)
	}
	return records
}

// Extract runs the extraction described by spec against g.
func (s TableSpec) Extract(g Grid) ([]Record, error) {
	switch s.Kind {
	case TablePairs:
		return ExtractPairs(g, s.KeyColumn, s.ValueColumn, s.StartRow, s.KeyField, s.ValueField, s.MaxRows), nil
	case TableSingle:
		return ExtractSingle(g, s.KeyColumn, s.StartRow, s.ValueField, s.MaxRows), nil
	case TableMapping:
		return ExtractMapping(g, s.StartRow, s.EndRow, s.Columns, s.Fields), nil
	default:
		return nil, fmt.Errorf("table %q: unsupported kind %q", s.Name, s.Kind)
	}
}
