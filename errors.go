package xltables

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingSheet is returned when a referenced sheet is not in the workbook.
	ErrMissingSheet = errors.New("sheet not found")
	// ErrMissingOutputFile marks a verification check whose file does not exist.
	ErrMissingOutputFile = errors.New("output file not found")
	// ErrRecordCountMismatch marks a file holding a different number of records than expected.
	ErrRecordCountMismatch = errors.New("record count mismatch")
	// ErrAssertionFailed marks a file whose records do not satisfy the table assertion.
	ErrAssertionFailed = errors.New("assertion failed")
)

// SheetError reports a missing sheet together with the sheets that exist.
type SheetError struct {
	Sheet     string
	Available []string
}

func (e *SheetError) Error() string {
	return fmt.Sprintf("sheet %q not found (available: %s)", e.Sheet, strings.Join(e.Available, ", "))
}

func (e *SheetError) Unwrap() error {
	return ErrMissingSheet
}
