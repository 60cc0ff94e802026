package xltables

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultSheet is the sheet holding the pricing factor tables.
const DefaultSheet = "VLOOKUP Tables"

// CombinedFile is the name of the document grouping every table.
const CombinedFile = "all-lookup-tables.json"

// TableKind selects the extraction strategy for a table.
type TableKind string

const (
	TablePairs   TableKind = "pair"    // two columns, scan until both blank
	TableSingle  TableKind = "single"  // one column, scan until blank
	TableMapping TableKind = "mapping" // fixed row range
)

// TableSpec describes one table to extract.
type TableSpec struct {
	Name  string    `yaml:"name"`
	File  string    `yaml:"file"`
	Kind  TableKind `yaml:"kind"`
	Sheet string    `yaml:"sheet,omitempty"` // defaults to the catalog sheet

	// pair and single tables
	KeyColumn   string `yaml:"key_column,omitempty"`
	ValueColumn string `yaml:"value_column,omitempty"`
	KeyField    string `yaml:"key_field,omitempty"`
	ValueField  string `yaml:"value_field,omitempty"`
	MaxRows     int    `yaml:"max_rows,omitempty"`

	StartRow int `yaml:"start_row"`

	// mapping tables
	EndRow  int      `yaml:"end_row,omitempty"`
	Columns []string `yaml:"columns,omitempty"`
	Fields  []string `yaml:"fields,omitempty"`

	// verification
	Expect int    `yaml:"expect"`
	Assert string `yaml:"assert,omitempty"`
}

// Source describes where the table lives, e.g. "VLOOKUP Tables!A4:B".
func (s TableSpec) Source() string {
	switch s.Kind {
	case TableMapping:
		if len(s.Columns) == 0 {
			return s.Sheet
		}
		return fmt.Sprintf("%s!%s%d:%s%d", s.Sheet, s.Columns[0], s.StartRow, s.Columns[len(s.Columns)-1], s.EndRow)
	case TableSingle:
		return fmt.Sprintf("%s!%s%d:%s", s.Sheet, s.KeyColumn, s.StartRow, s.KeyColumn)
	default:
		return fmt.Sprintf("%s!%s%d:%s", s.Sheet, s.KeyColumn, s.StartRow, s.ValueColumn)
	}
}

// Catalog is the set of tables extracted from one workbook.
type Catalog struct {
	Sheet         string      `yaml:"sheet"`
	ExpectedTotal int         `yaml:"expected_total"`
	Tables        []TableSpec `yaml:"tables"`
}

// DefaultCatalog returns the tables of the base pricing workbook.
func DefaultCatalog() *Catalog {
	pair := func(name, file, keyCol, valueCol, keyField string, expect int) TableSpec {
		return TableSpec{
			Name:        name,
			File:        file,
			Kind:        TablePairs,
			KeyColumn:   keyCol,
			ValueColumn: valueCol,
			StartRow:    4,
			KeyField:    keyField,
			ValueField:  "factor",
			MaxRows:     DefaultMaxRows,
			Expect:      expect,
		}
	}

	c := &Catalog{
		Sheet:         DefaultSheet,
		ExpectedTotal: 87,
		Tables: []TableSpec{
			pair("cost_basis", "cost-basis-factors.json", "A", "B", "purchasePrice", 12),
			pair("zip_code", "zip-code-factors.json", "D", "E", "zipCode", 12),
			pair("sqft", "sqft-factors.json", "G", "H", "squareFeet", 12),
			pair("acres", "acres-factors.json", "J", "K", "acres", 12),
			pair("property_type", "property-type-factors.json", "M", "N", "propertyType", 10),
			pair("floors", "floor-factors.json", "P", "Q", "numberOfFloors", 12),
			pair("multiple_properties", "multiple-properties-factors.json", "S", "T", "propertyCount", 7),
			{
				Name:     "property_type_mapping",
				File:     "property-types.json",
				Kind:     TableMapping,
				StartRow: 21,
				EndRow:   30,
				Columns:  []string{"M", "N", "O"},
				Fields:   []string{"propertyType", "code", "depreciationMethod"},
				Expect:   10,
			},
		},
	}
	c.applyDefaults()
	return c
}

// LoadCatalog reads a YAML catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog %q: %w", path, err)
	}
	defer f.Close()
	c, err := ParseCatalog(f)
	if err != nil {
		return nil, fmt.Errorf("catalog %q: %w", path, err)
	}
	return c, nil
}

// ParseCatalog decodes a YAML catalog and checks it. Issues of error
// severity make it fail.
func ParseCatalog(r io.Reader) (*Catalog, error) {
	c, err := DecodeCatalog(r)
	if err != nil {
		return nil, err
	}

	var errs []string
	for _, issue := range c.Validate() {
		if issue.Severity == SeverityError {
			errs = append(errs, issue.String())
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid catalog:\n  %s", strings.Join(errs, "\n  "))
	}
	return c, nil
}

// DecodeCatalog decodes a YAML catalog and fills in defaults without
// validating it.
func DecodeCatalog(r io.Reader) (*Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	c.applyDefaults()
	return &c, nil
}

func (c *Catalog) applyDefaults() {
	if c.Sheet == "" {
		c.Sheet = DefaultSheet
	}
	for i := range c.Tables {
		t := &c.Tables[i]
		if t.Sheet == "" {
			t.Sheet = c.Sheet
		}
		if t.Kind == "" {
			t.Kind = TablePairs
		}
		if t.MaxRows == 0 && t.Kind != TableMapping {
			t.MaxRows = DefaultMaxRows
		}
		if t.ValueField == "" && t.Kind != TableMapping {
			t.ValueField = "factor"
		}
		t.KeyColumn = strings.ToUpper(t.KeyColumn)
		t.ValueColumn = strings.ToUpper(t.ValueColumn)
		for j, col := range t.Columns {
			t.Columns[j] = strings.ToUpper(col)
		}
	}
}

// Table returns the spec with the given name.
func (c *Catalog) Table(name string) (TableSpec, bool) {
	for _, t := range c.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return TableSpec{}, false
}

// Sheets lists the distinct sheets the catalog reads, in first-use order.
func (c *Catalog) Sheets() []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range c.Tables {
		if !seen[t.Sheet] {
			seen[t.Sheet] = true
			out = append(out, t.Sheet)
		}
	}
	return out
}

// Expectations returns the verification targets of every table.
func (c *Catalog) Expectations() []Expectation {
	out := make([]Expectation, 0, len(c.Tables))
	for _, t := range c.Tables {
		out = append(out, Expectation{File: t.File, Count: t.Expect, Assert: t.Assert})
	}
	return out
}
