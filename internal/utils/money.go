package utils

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a numeric token that may use a comma as the decimal separator.
// Only the first comma is normalized, "10,50" becomes 10.50.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.Replace(strings.TrimSpace(s), ",", ".", 1)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d, nil
}

// FormatAmount renders d with two decimals and a comma separator, e.g. 500,00.
func FormatAmount(d decimal.Decimal) string {
	return strings.Replace(d.StringFixed(2), ".", ",", 1)
}

// FormatReais renders d as a Brazilian real value, e.g. R$ 500,00.
func FormatReais(d decimal.Decimal) string {
	return "R$ " + FormatAmount(d)
}

// Sum adds up a list of amounts.
func Sum(amounts []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
