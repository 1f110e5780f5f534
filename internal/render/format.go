// Package render formats normalized results for the terminal. Every numeric
// formatter prints "N/A" for NaN or infinite values.
package render

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// NA is shown in place of any value that is missing or not a finite number.
const NA = "N/A"

// Messages shown instead of result sections.
const (
	NoResults = "No results to display."
	NoTrades  = "No trades executed."
)

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Number formats v with a fixed number of decimals and thousands separators.
func Number(v float64, decimals int32) string {
	if !finite(v) {
		return NA
	}
	return group(decimal.NewFromFloat(v).StringFixed(decimals))
}

// Money formats v as dollars with two decimals, e.g. "$1,234.50".
func Money(v float64) string {
	if !finite(v) {
		return NA
	}
	s := Number(math.Abs(v), 2)
	if v < 0 && s != "0.00" {
		return "-$" + s
	}
	return "$" + s
}

// Percent formats a fraction as a percentage, e.g. 0.1234 -> "12.34%".
func Percent(fraction float64) string {
	if !finite(fraction) {
		return NA
	}
	return PercentValue(fraction * 100)
}

// PercentValue formats a value already expressed in percent.
func PercentValue(v float64) string {
	if !finite(v) {
		return NA
	}
	return Number(v, 2) + "%"
}

// Billions formats a dollar amount in billions, e.g. "$1.23B".
func Billions(v float64) string {
	if !finite(v) {
		return NA
	}
	b := decimal.NewFromFloat(v).Div(decimal.NewFromInt(1_000_000_000))
	if b.IsNegative() {
		return "-$" + group(b.Abs().StringFixed(2)) + "B"
	}
	return "$" + group(b.StringFixed(2)) + "B"
}

// Count formats v in billions without a currency sign, for share counts.
func Count(v float64) string {
	if !finite(v) {
		return NA
	}
	return group(decimal.NewFromFloat(v).Div(decimal.NewFromInt(1_000_000_000)).StringFixed(2)) + "B"
}

// group inserts thousands separators into a plain decimal string.
func group(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, frac, hasFrac := strings.Cut(s, ".")
	if len(intPart) > 3 {
		var b strings.Builder
		lead := len(intPart) % 3
		if lead > 0 {
			b.WriteString(intPart[:lead])
		}
		for i := lead; i < len(intPart); i += 3 {
			if b.Len() > 0 {
				b.WriteByte(',')
			}
			b.WriteString(intPart[i : i+3])
		}
		intPart = b.String()
	}
	if hasFrac {
		intPart += "." + frac
	}
	if neg {
		return "-" + intPart
	}
	return intPart
}
