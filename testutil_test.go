package xltables

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// testdataDir returns the path to testdata directory, creating it if needed.
func testdataDir(t *testing.T) string {
	t.Helper()
	dir := filepath.Join("testdata")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	return dir
}

type pricingRow struct {
	key   any
	value any
}

// pricingTables mirrors the layout of the VLOOKUP Tables sheet: seven
// factor tables starting on row 4 plus the property type mapping in M21:O30.
var pricingTables = []struct {
	keyCol, valueCol string
	rows             []pricingRow
}{
	{"A", "B", []pricingRow{
		{0, 1.0}, {250000, 1.01}, {500000, 1.02}, {750000, 1.03}, {1000000, 1.075}, {1500000, 1.15},
		{2000000, 1.3}, {3000000, 1.35}, {5000000, 1.4}, {7500000, 1.45}, {10000000, 1.5}, {"15000000+", 1.6},
	}},
	{"D", "E", []pricingRow{
		{0, 1.0}, {10, 1.11}, {20, 1.08}, {30, 1.0}, {40, 1.02}, {60, 1.05},
		{70, 1.0}, {80, 1.03}, {85, 1.02}, {90, 1.09}, {94, 1.11}, {98, 1.07},
	}},
	{"G", "H", []pricingRow{
		{0, 1.0}, {1000, 1.0}, {2500, 1.02}, {5000, 1.05}, {10000, 1.08}, {15000, 1.1},
		{20000, 1.12}, {25000, 1.15}, {30000, 1.18}, {40000, 1.2}, {50000, 1.25}, {"55000+", 1.3},
	}},
	{"J", "K", []pricingRow{
		{0, 1.0}, {0.5, 1.0}, {1, 1.01}, {2, 1.02}, {3, 1.03}, {5, 1.05},
		{10, 1.08}, {15, 1.1}, {20, 1.12}, {30, 1.15}, {50, 1.2}, {"100+", 1.25},
	}},
	{"M", "N", []pricingRow{
		{"Single Family", 1.0}, {"Condo", 0.95}, {"Townhouse", 0.97}, {"Multi-Family", 1.1}, {"Retail", 1.15},
		{"Office", 1.2}, {"Industrial", 1.25}, {"Warehouse", 1.2}, {"Hotel", 1.3}, {"Mixed Use", 1.15},
	}},
	{"P", "Q", []pricingRow{
		{1, 1.0}, {2, 1.02}, {3, 1.04}, {4, 1.06}, {5, 1.08}, {6, 1.1},
		{7, 1.12}, {8, 1.14}, {9, 1.16}, {10, 1.18}, {15, 1.2}, {"20+", 1.25},
	}},
	{"S", "T", []pricingRow{
		{1, 1.0}, {2, 0.95}, {3, 0.9}, {4, 0.85}, {5, 0.8}, {6, 0.75}, {"7+", 0.7},
	}},
}

var pricingMapping = [][3]any{
	{"Single Family", 1, 27.5}, {"Condo", 1, 27.5}, {"Townhouse", 1, 27.5}, {"Multi-Family", 2, 27.5},
	{"Retail", 3, 39}, {"Office", 3, 39}, {"Industrial", 4, 39}, {"Warehouse", 4, 39},
	{"Hotel", 5, 39}, {"Mixed Use", 6, 39},
}

// createPricingWorkbook writes a workbook with the pricing layout and
// returns its path. The cost basis table has a separator gap on row 10
// (key present, factor blank) that must not end the table.
func createPricingWorkbook(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	_, err := f.NewSheet(DefaultSheet)
	require.NoError(t, err)
	require.NoError(t, f.SetSheetName("Sheet1", "Input Sheet"))

	sheet := DefaultSheet
	require.NoError(t, f.SetCellValue(sheet, "A2", "Cost Basis Factor"))
	require.NoError(t, f.SetCellValue(sheet, "A3", "Purchase Price"))
	require.NoError(t, f.SetCellValue(sheet, "B3", "Factor"))
	require.NoError(t, f.MergeCell(sheet, "A2", "B2"))

	for _, tbl := range pricingTables {
		row := 4
		for i, r := range tbl.rows {
			if tbl.keyCol == "A" && i == 6 {
				require.NoError(t, f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "subtotal"))
				row++
			}
			require.NoError(t, f.SetCellValue(sheet, fmt.Sprintf("%s%d", tbl.keyCol, row), r.key))
			require.NoError(t, f.SetCellValue(sheet, fmt.Sprintf("%s%d", tbl.valueCol, row), r.value))
			row++
		}
	}

	for i, m := range pricingMapping {
		row := 21 + i
		require.NoError(t, f.SetCellValue(sheet, fmt.Sprintf("M%d", row), m[0]))
		require.NoError(t, f.SetCellValue(sheet, fmt.Sprintf("N%d", row), m[1]))
		require.NoError(t, f.SetCellValue(sheet, fmt.Sprintf("O%d", row), m[2]))
	}

	input := "Input Sheet"
	require.NoError(t, f.SetCellValue(input, "A9", "Total"))
	require.NoError(t, f.SetCellFormula(input, "B9", "SUM(1,2)"))
	require.NoError(t, f.SetCellValue(input, "C9", "note"))

	path := filepath.Join(testdataDir(t), t.Name()+".xlsx")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, f.SaveAs(path))
	t.Cleanup(func() { os.Remove(path) })
	return path
}

// gridOf builds a sheet from "A4" → value pairs.
func gridOf(t *testing.T, cells map[string]CellValue) *Sheet {
	t.Helper()
	s := NewSheet("Test")
	for name, v := range cells {
		ref, err := ParseCellRef(name)
		require.NoError(t, err)
		s.Set(ref.Row, ref.Col, v)
	}
	return s
}
