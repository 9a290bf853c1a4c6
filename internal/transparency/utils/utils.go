package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/farxc/despesas-dw/internal/transparency/types"
)

// ParseCode coerces a dimension code to a non-negative number. Values that do
// not parse, NaN and infinities included, are 0, and so is anything below zero.
// Every other value passes through unchanged.
func ParseCode(valStr string) float64 {
	val, err := strconv.ParseFloat(strings.TrimSpace(valStr), 64)
	if err != nil || math.IsNaN(val) || math.IsInf(val, 0) || val <= 0 {
		return 0
	}
	return val
}

// CodeKey converts a sanitized code to the integer key dimension tables use.
// Fractional codes and codes outside the int64 range have no key.
func CodeKey(code float64) (int64, bool) {
	if code < 0 || code >= 1<<63 || code != math.Trunc(code) {
		return 0, false
	}
	return int64(code), true
}

// NormalizeDecimal swaps the decimal comma of a locale-formatted amount for a
// point. Thousands separators are left as they are.
func NormalizeDecimal(valStr string) string {
	return strings.ReplaceAll(strings.TrimSpace(valStr), ",", ".")
}

// ParsePeriod reads the "YYYY/MM" launch period of a source row.
func ParsePeriod(valStr string) (types.Period, error) {
	parts := strings.Split(strings.TrimSpace(valStr), "/")
	if len(parts) != 2 {
		return types.Period{}, fmt.Errorf("invalid period %q", valStr)
	}
	year, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return types.Period{}, fmt.Errorf("invalid period year %q: %w", valStr, err)
	}
	month, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return types.Period{}, fmt.Errorf("invalid period month %q: %w", valStr, err)
	}
	if month < 1 || month > 12 {
		return types.Period{}, fmt.Errorf("invalid period month %q", valStr)
	}
	return types.Period{Year: year, Month: month}, nil
}
