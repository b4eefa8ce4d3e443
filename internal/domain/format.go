package domain

import (
	"math"
	"strconv"
	"strings"

	"github.com/leekchan/accounting"
	"github.com/shopspring/decimal"
)

// FormatPrice renders a price for chat output with tiered precision:
// >= 1 gets 2 decimals, >= 0.01 gets 4, >= 0.00001 gets 6, trailing zeros stripped;
// anything smaller is printed at full precision without rounding. The integer part is comma grouped.
func FormatPrice(value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return strconv.FormatFloat(value, 'f', -1, 64)
	}

	switch {
	case value >= 1:
		return trimFraction(accounting.FormatNumberFloat64(value, 2, ",", "."))
	case value >= 0.01:
		return trimFraction(accounting.FormatNumberFloat64(value, 4, ",", "."))
	case value >= 0.00001:
		return trimFraction(accounting.FormatNumberFloat64(value, 6, ",", "."))
	default:
		d := decimal.NewFromFloat(value)
		return accounting.FormatNumberDecimal(d, int(max(-d.Exponent(), 0)), ",", ".")
	}
}

// trimFraction strips trailing zeros and a dangling decimal point.
func trimFraction(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}
