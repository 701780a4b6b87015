package leasing

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProrationResult is the outcome of a partial-month rent calculation.
// Amount is nil whenever proration does not apply (Days == 0).
type ProrationResult struct {
	Days   int
	Amount *decimal.Decimal
}

// Applies reports whether the proration produced a charge
func (r ProrationResult) Applies() bool {
	return r.Days > 0 && r.Amount != nil
}

// noProration is the canonical "not applicable" result
func noProration() ProrationResult {
	return ProrationResult{Days: 0, Amount: nil}
}

// ComputeFirstMonthProration computes the partial-month rent owed when a
// lease starts mid-month. Not applicable when the lease starts on the
// first of its month, when the start date is missing, or when the rent
// is zero or negative.
func ComputeFirstMonthProration(startDate time.Time, monthlyRent decimal.Decimal) ProrationResult {
	if startDate.IsZero() || monthlyRent.LessThanOrEqual(decimal.Zero) {
		return noProration()
	}

	startDay := startDate.Day()
	if startDay <= 1 {
		return noProration()
	}

	total := daysInMonth(startDate)
	days := total - startDay + 1
	amount := prorate(monthlyRent, days, total)
	return ProrationResult{Days: days, Amount: &amount}
}

// ComputeLastMonthProration computes the partial-month rent owed when a
// lease ends mid-month. Not applicable when the lease ends on the last
// calendar day of its month, when the end date is missing, or when the
// rent is zero or negative.
func ComputeLastMonthProration(endDate time.Time, monthlyRent decimal.Decimal) ProrationResult {
	if endDate.IsZero() || monthlyRent.LessThanOrEqual(decimal.Zero) {
		return noProration()
	}

	total := daysInMonth(endDate)
	endDay := endDate.Day()
	if endDay >= total {
		return noProration()
	}

	amount := prorate(monthlyRent, endDay, total)
	return ProrationResult{Days: endDay, Amount: &amount}
}

// prorate computes rent * days/daysInMonth rounded half-up to cents
func prorate(monthlyRent decimal.Decimal, days, total int) decimal.Decimal {
	return monthlyRent.
		Mul(decimal.NewFromInt(int64(days))).
		Div(decimal.NewFromInt(int64(total))).
		Round(2)
}

// daysInMonth returns the number of calendar days in the month of t
func daysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}
