package xltables

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CellType represents the kind of literal value held by a cell.
type CellType int

const (
	CellBlank CellType = iota
	CellNumber
	CellString
)

// String returns a human-readable name for the CellType.
func (ct CellType) String() string {
	switch ct {
	case CellBlank:
		return "Blank"
	case CellNumber:
		return "Number"
	case CellString:
		return "String"
	default:
		return "Unknown"
	}
}

// CellValue is a literal cell value: blank, a number or a string.
//
// Numbers remember whether their stored form was integral ("100000") or
// carried a fractional part ("1.2"), so that keys can be written back the
// way the workbook holds them.
type CellValue struct {
	Type     CellType
	Num      float64
	Str      string
	Integral bool
}

// Blank is the empty cell value.
var Blank = CellValue{}

// Int creates an integral number value.
func Int(n int64) CellValue {
	return CellValue{Type: CellNumber, Num: float64(n), Integral: true}
}

// Number creates a fractional number value. Whole values such as 3.0 are
// still treated as floating-point until normalized.
func Number(f float64) CellValue {
	return CellValue{Type: CellNumber, Num: f}
}

// Text creates a string value. Numeric-looking strings stay strings.
func Text(s string) CellValue {
	return CellValue{Type: CellString, Str: s}
}

// ParseNumber interprets the stored text of a numeric cell. Text that does
// not parse as a number is kept verbatim as a string value.
func ParseNumber(raw string) CellValue {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Blank
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return Int(n)
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return Number(f)
	}
	return Text(raw)
}

// IsBlank reports whether the cell holds no value.
func (c CellValue) IsBlank() bool {
	return c.Type == CellBlank
}

// String formats the value the way it would appear in a cell.
func (c CellValue) String() string {
	switch c.Type {
	case CellNumber:
		if c.Integral {
			return strconv.FormatInt(int64(c.Num), 10)
		}
		return Float(c.Num).String()
	case CellString:
		return c.Str
	default:
		return ""
	}
}

// Natural returns the value in its stored representation: int64 for
// integral numbers, Float for fractional ones, string for text and nil for
// a blank cell.
func (c CellValue) Natural() any {
	switch c.Type {
	case CellNumber:
		if c.Integral {
			return int64(c.Num)
		}
		return Float(c.Num)
	case CellString:
		return c.Str
	default:
		return nil
	}
}

// Factor returns numbers as Float regardless of their stored form.
func (c CellValue) Factor() any {
	if c.Type == CellNumber {
		return Float(c.Num)
	}
	return c.Natural()
}

// Normalized returns mathematically whole numbers as int64 even when they
// were stored as floating-point.
func (c CellValue) Normalized() any {
	if c.Type == CellNumber && c.Num == math.Trunc(c.Num) && !math.IsInf(c.Num, 0) {
		return int64(c.Num)
	}
	return c.Natural()
}

// Truncated returns numbers cut to their integer part.
func (c CellValue) Truncated() any {
	if c.Type == CellNumber {
		return int64(c.Num)
	}
	return c.Natural()
}

// Float is a floating-point output value. It always serializes with a
// decimal point, so a factor of 1 is written as 1.0.
type Float float64

// String formats f with the shortest exact representation and a decimal point.
func (f Float) String() string {
	s := strconv.FormatFloat(float64(f), 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEIN") {
		s += ".0"
	}
	return s
}

// MarshalJSON implements json.Marshaler.
func (f Float) MarshalJSON() ([]byte, error) {
	if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
		return nil, fmt.Errorf("unsupported float value %v", float64(f))
	}
	return []byte(f.String()), nil
}
