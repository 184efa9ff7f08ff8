package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseWeight parses an upstream weight string into a 0-100 scale float.
// Tolerates a trailing percent sign and surrounding whitespace; invalid or
// empty input yields zero. Values are not clamped: out-of-range weights
// pass through to the overlap math unchanged.
func ParseWeight(value string) float64 {
	s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), "%"))
	if s == "" {
		return 0
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	return d.InexactFloat64()
}

// RoundPercent rounds a percentage to two decimal places using half-up
// semantics (decimal rounds half away from zero, equivalent for
// non-negative input). Used for matrix display values; detail records
// stay unrounded.
func RoundPercent(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
