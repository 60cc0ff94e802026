package xltables

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/goccy/go-json"
)

// Expectation is what one output file should contain.
type Expectation struct {
	File   string
	Count  int
	Assert string // optional boolean expression over count and records
}

// CheckStatus is the outcome of checking one file.
type CheckStatus int

const (
	StatusOK CheckStatus = iota
	StatusMissing
	StatusInvalid
	StatusMismatch
	StatusAssertFailed
)

// String returns the report tag for the status.
func (s CheckStatus) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusMissing:
		return "MISSING"
	case StatusInvalid:
		return "INVALID"
	case StatusMismatch:
		return "FAIL"
	case StatusAssertFailed:
		return "ASSERT"
	default:
		return "UNKNOWN"
	}
}

// Check is the verification result of one file.
type Check struct {
	File     string
	Expected int
	Actual   int
	Status   CheckStatus
	Err      error
}

// Report collects every check of a verification run.
type Report struct {
	Dir           string
	Checks        []Check
	Total         int
	ExpectedTotal int
}

// Passed reports whether every file matched and the grand total is right.
func (r *Report) Passed() bool {
	for _, c := range r.Checks {
		if c.Status != StatusOK {
			return false
		}
	}
	return r.Total == r.ExpectedTotal
}

// Failures returns the checks that did not pass.
func (r *Report) Failures() []Check {
	var out []Check
	for _, c := range r.Checks {
		if c.Status != StatusOK {
			out = append(out, c)
		}
	}
	return out
}

// Verify compares the JSON files in dir with the expectations. Every file
// is checked even after a failure; nothing is corrected.
func Verify(dir string, expectations []Expectation, expectedTotal int) *Report {
	r := &Report{Dir: dir, ExpectedTotal: expectedTotal}
	for _, exp := range expectations {
		c := verifyFile(filepath.Join(dir, exp.File), exp)
		r.Total += c.Actual
		r.Checks = append(r.Checks, c)
	}
	return r
}

func verifyFile(path string, exp Expectation) Check {
	c := Check{File: exp.File, Expected: exp.Count}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		c.Status = StatusMissing
		c.Err = fmt.Errorf("%s: %w", exp.File, ErrMissingOutputFile)
		return c
	}
	if err != nil {
		c.Status = StatusInvalid
		c.Err = fmt.Errorf("read %s: %w", exp.File, err)
		return c
	}

	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		c.Status = StatusInvalid
		c.Err = fmt.Errorf("decode %s: %w", exp.File, err)
		return c
	}
	c.Actual = len(records)

	if c.Actual != c.Expected {
		c.Status = StatusMismatch
		c.Err = fmt.Errorf("%s: %w: got %d, expected %d", exp.File, ErrRecordCountMismatch, c.Actual, c.Expected)
		return c
	}

	if exp.Assert != "" {
		prog, err := compileAssertion(exp.Assert)
		if err != nil {
			c.Status = StatusAssertFailed
			c.Err = fmt.Errorf("%s: compile assertion: %w", exp.File, err)
			return c
		}
		ok, err := prog.Eval(records)
		if err != nil || !ok {
			c.Status = StatusAssertFailed
			c.Err = fmt.Errorf("%s: %w: %s", exp.File, ErrAssertionFailed, exp.Assert)
			if err != nil {
				c.Err = fmt.Errorf("%w (%v)", c.Err, err)
			}
			return c
		}
	}
	return c
}

// assertProgram is a compiled table assertion.
type assertProgram struct {
	src  string
	prog *vm.Program
}

// Eval runs the assertion against decoded records.
func (p *assertProgram) Eval(records []map[string]any) (bool, error) {
	out, err := expr.Run(p.prog, assertEnv{Count: len(records), Records: records})
	if err != nil {
		return false, fmt.Errorf("evaluate %q: %w", p.src, err)
	}
	ok, _ := out.(bool)
	return ok, nil
}

// WriteTo renders the verification report as text.
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	rule := strings.Repeat("=", 70)
	var b strings.Builder
	fmt.Fprintf(&b, "%s\nEXTRACTION VERIFICATION REPORT\n%s\n", rule, rule)
	for _, c := range r.Checks {
		switch c.Status {
		case StatusOK:
			fmt.Fprintf(&b, "[OK]   %-40s %3d records\n", c.File, c.Actual)
		case StatusMissing:
			fmt.Fprintf(&b, "[FAIL] %-40s FILE NOT FOUND\n", c.File)
		case StatusMismatch:
			fmt.Fprintf(&b, "[FAIL] %-40s %3d records (EXPECTED %d)\n", c.File, c.Actual, c.Expected)
		default:
			fmt.Fprintf(&b, "[FAIL] %-40s %v\n", c.File, c.Err)
		}
	}
	fmt.Fprintf(&b, "%s\nTotal Records: %d (expected %d)\n%s\n", rule, r.Total, r.ExpectedTotal, rule)
	if r.Passed() {
		b.WriteString("\n*** ALL CHECKS PASSED ***\n")
	} else {
		b.WriteString("\n*** SOME CHECKS FAILED ***\n")
	}
	fmt.Fprintf(&b, "\nOutput directory: %s\n", r.Dir)

	n, err := io.WriteString(w, b.String())
	return int64(n), err
}
