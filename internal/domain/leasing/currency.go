package leasing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseCurrency parses a free-form currency string as typed into a form
// field ("$1,250.00", "1250", " 1,250 "). It strips everything except
// digits, the decimal point, and a sign. The second return value is
// false when the input holds no parseable amount; callers treat that
// the same as an absent value, never as zero.
func ParseCurrency(value string) (decimal.Decimal, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return decimal.Zero, false
	}

	var b strings.Builder
	for _, r := range trimmed {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}

	normalized := b.String()
	switch normalized {
	case "", ".", "-", "-.":
		return decimal.Zero, false
	}

	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// ParsePositiveCurrency parses a currency string and additionally
// requires the amount to be strictly positive
func ParsePositiveCurrency(value string) (decimal.Decimal, bool) {
	d, ok := ParseCurrency(value)
	if !ok || d.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, false
	}
	return d, true
}
