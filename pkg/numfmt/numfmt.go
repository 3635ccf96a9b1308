// Package numfmt formats spreadsheet numbers for display and parses quantities.
package numfmt

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	minWhole = decimal.NewFromInt(math.MinInt32)
	maxWhole = decimal.NewFromInt(math.MaxInt32)
)

// Format renders a cell value: a fractional part made only of zeros is
// dropped ("4711.0" -> "4711"), anything else is returned as given so text
// identifiers keep their leading zeros.
func Format(raw string) string {
	trimmed := strings.TrimSpace(raw)
	dot := strings.IndexByte(trimmed, '.')
	if dot <= 0 {
		return trimmed
	}
	frac := trimmed[dot+1:]
	if frac == "" || strings.Trim(frac, "0") != "" {
		return trimmed
	}
	if _, err := decimal.NewFromString(trimmed); err != nil {
		return trimmed
	}
	return trimmed[:dot]
}

// FormatInt is the integer counterpart of Format.
func FormatInt(v int) string {
	return decimal.NewFromInt(int64(v)).String()
}

// WholeNumber parses raw as a whole-valued number within the int32 range.
// ok is false for blanks, non-numbers, values with a fractional part and
// values out of range.
func WholeNumber(raw string) (value int64, ok bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil || !d.IsInteger() {
		return 0, false
	}
	if d.LessThan(minWhole) || d.GreaterThan(maxWhole) {
		return 0, false
	}
	return d.IntPart(), true
}

// Quantity parses an order quantity; it must be a positive whole number.
func Quantity(raw string) (int, error) {
	v, ok := WholeNumber(raw)
	if !ok {
		return 0, fmt.Errorf("quantity %q is not a whole number", strings.TrimSpace(raw))
	}
	if v <= 0 {
		return 0, fmt.Errorf("quantity must be positive, got %d", v)
	}
	return int(v), nil
}
