package xltables

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()
	assert.Empty(t, c.Validate())
	assert.Len(t, c.Tables, 8)
	assert.Equal(t, []string{DefaultSheet}, c.Sheets())

	sum := 0
	for _, e := range c.Expectations() {
		sum += e.Count
	}
	assert.Equal(t, c.ExpectedTotal, sum)

	mapping, ok := c.Table("property_type_mapping")
	require.True(t, ok)
	assert.Equal(t, DefaultSheet, mapping.Sheet)
	assert.Equal(t, 0, mapping.MaxRows)
	assert.Equal(t, "VLOOKUP Tables!M21:O30", mapping.Source())

	cost, _ := c.Table("cost_basis")
	assert.Equal(t, "VLOOKUP Tables!A4:B", cost.Source())
}

const sampleCatalog = `
sheet: VLOOKUP Tables
expected_total: 15
tables:
  - name: floors
    file: floor-factors.json
    key_column: p
    value_column: q
    key_field: numberOfFloors
    start_row: 4
    expect: 12
    assert: all(records, {.factor >= 1})
  - name: bands
    file: bands.json
    kind: single
    sheet: Input Sheet
    key_column: C
    value_field: propertyCount
    start_row: 2
    expect: 3
`

func TestParseCatalog(t *testing.T) {
	c, err := ParseCatalog(strings.NewReader(sampleCatalog))
	require.NoError(t, err)
	require.Len(t, c.Tables, 2)

	floors := c.Tables[0]
	assert.Equal(t, TablePairs, floors.Kind)
	assert.Equal(t, "P", floors.KeyColumn)
	assert.Equal(t, "Q", floors.ValueColumn)
	assert.Equal(t, "factor", floors.ValueField)
	assert.Equal(t, DefaultMaxRows, floors.MaxRows)
	assert.Equal(t, DefaultSheet, floors.Sheet)

	bands := c.Tables[1]
	assert.Equal(t, TableSingle, bands.Kind)
	assert.Equal(t, "Input Sheet", bands.Sheet)
	assert.Equal(t, []string{DefaultSheet, "Input Sheet"}, c.Sheets())
	assert.Equal(t, []Expectation{
		{File: "floor-factors.json", Count: 12, Assert: "all(records, {.factor >= 1})"},
		{File: "bands.json", Count: 3},
	}, c.Expectations())
}

func TestParseCatalog_UnknownField(t *testing.T) {
	_, err := ParseCatalog(strings.NewReader("tables:\n  - name: x\n    colum: A\n"))
	assert.ErrorContains(t, err, "decode catalog")
}

func TestParseCatalog_Invalid(t *testing.T) {
	src := `
tables:
  - name: broken
    file: broken.json
    key_column: "1"
    value_column: B
    key_field: k
    start_row: 0
`
	_, err := ParseCatalog(strings.NewReader(src))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid catalog")
	assert.Contains(t, err.Error(), "start_row must be at least 1")
	assert.Contains(t, err.Error(), "key_column")
}

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleCatalog), 0o644))

	c, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Len(t, c.Tables, 2)

	_, err = LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "open catalog")
}

func TestLoadCatalog_ExampleFile(t *testing.T) {
	c, err := LoadCatalog("catalog.example.yaml")
	require.NoError(t, err)
	assert.Equal(t, DefaultCatalog(), c)
}
