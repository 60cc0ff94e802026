package xltables

import (
	"fmt"

	"github.com/expr-lang/expr"
)

// Severity indicates the severity of a validation issue.
type Severity int

const (
	SeverityError   Severity = iota // Table cannot be extracted as described
	SeverityWarning                 // Table may produce unexpected results
)

// ValidationIssue represents a single problem found in a catalog.
type ValidationIssue struct {
	Severity Severity
	Table    string
	Message  string
}

// String formats the issue as "[ERROR] cost_basis: message" or "[WARN] ...".
func (v ValidationIssue) String() string {
	sev := "ERROR"
	if v.Severity == SeverityWarning {
		sev = "WARN"
	}
	table := v.Table
	if table == "" {
		table = "<catalog>"
	}
	return fmt.Sprintf("[%s] %s: %s", sev, table, v.Message)
}

// Validate checks every table definition without opening a workbook.
func (c *Catalog) Validate() []ValidationIssue {
	var issues []ValidationIssue
	if len(c.Tables) == 0 {
		issues = append(issues, ValidationIssue{Severity: SeverityError, Message: "catalog defines no tables"})
	}

	names := make(map[string]bool)
	files := make(map[string]bool)
	sum := 0
	for _, t := range c.Tables {
		issues = append(issues, validateTable(t)...)

		if t.Name != "" && names[t.Name] {
			issues = append(issues, errorf(t.Name, "duplicate table name"))
		}
		names[t.Name] = true
		if t.File != "" && files[t.File] {
			issues = append(issues, errorf(t.Name, "output file %q used by more than one table", t.File))
		}
		files[t.File] = true
		sum += t.Expect
	}

	if c.ExpectedTotal > 0 && sum != c.ExpectedTotal {
		issues = append(issues, ValidationIssue{
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("per-table expectations add up to %d, expected total is %d", sum, c.ExpectedTotal),
		})
	}
	return issues
}

func validateTable(t TableSpec) []ValidationIssue {
	var issues []ValidationIssue
	if t.Name == "" {
		issues = append(issues, errorf("", "table without a name"))
	}
	if t.File == "" {
		issues = append(issues, errorf(t.Name, "missing output file"))
	}
	if t.StartRow < 1 {
		issues = append(issues, errorf(t.Name, "start_row must be at least 1, got %d", t.StartRow))
	}
	if t.Expect < 0 {
		issues = append(issues, errorf(t.Name, "expect must not be negative"))
	}

	switch t.Kind {
	case TablePairs:
		issues = append(issues, checkColumn(t.Name, "key_column", t.KeyColumn)...)
		issues = append(issues, checkColumn(t.Name, "value_column", t.ValueColumn)...)
		if t.KeyField == "" || t.ValueField == "" {
			issues = append(issues, errorf(t.Name, "pair tables need key_field and value_field"))
		}
		if t.KeyField != "" && t.KeyField == t.ValueField {
			issues = append(issues, errorf(t.Name, "key_field and value_field are both %q", t.KeyField))
		}
	case TableSingle:
		issues = append(issues, checkColumn(t.Name, "key_column", t.KeyColumn)...)
		if t.ValueField == "" {
			issues = append(issues, errorf(t.Name, "single tables need value_field"))
		}
		if t.ValueColumn != "" {
			issues = append(issues, ValidationIssue{Severity: SeverityWarning, Table: t.Name, Message: "value_column is ignored for single tables"})
		}
	case TableMapping:
		if len(t.Columns) == 0 {
			issues = append(issues, errorf(t.Name, "mapping tables need columns"))
		}
		for _, col := range t.Columns {
			issues = append(issues, checkColumn(t.Name, "columns", col)...)
		}
		if len(t.Fields) != len(t.Columns) {
			issues = append(issues, errorf(t.Name, "%d fields for %d columns", len(t.Fields), len(t.Columns)))
		}
		if t.EndRow < t.StartRow {
			issues = append(issues, errorf(t.Name, "end_row %d is before start_row %d", t.EndRow, t.StartRow))
		}
	default:
		issues = append(issues, errorf(t.Name, "unknown kind %q", t.Kind))
	}

	if t.Assert != "" {
		if _, err := compileAssertion(t.Assert); err != nil {
			issues = append(issues, errorf(t.Name, "invalid assert expression %q: %v", t.Assert, err))
		}
	}
	return issues
}

func checkColumn(table, attr, col string) []ValidationIssue {
	if col == "" {
		return []ValidationIssue{errorf(table, "missing %s", attr)}
	}
	if _, err := ColumnIndex(col); err != nil {
		return []ValidationIssue{errorf(table, "%s: %v", attr, err)}
	}
	return nil
}

func errorf(table, format string, args ...any) ValidationIssue {
	return ValidationIssue{Severity: SeverityError, Table: table, Message: fmt.Sprintf(format, args...)}
}

// assertEnv is the environment assertion expressions are checked against.
type assertEnv struct {
	Count   int              `expr:"count"`
	Records []map[string]any `expr:"records"`
}

func compileAssertion(src string) (*assertProgram, error) {
	prog, err := expr.Compile(src, expr.Env(assertEnv{}), expr.AsBool())
	if err != nil {
		return nil, err
	}
	return &assertProgram{src: src, prog: prog}, nil
}
