package leasing

import (
	"time"

	"github.com/google/uuid"
)

// OriginationForm holds the in-progress inputs of a lease origination
// session. It owns the derived date defaults and the proration
// recomputation that keep the displayed amounts consistent with the
// current inputs.
type OriginationForm struct {
	PropertyID uuid.UUID
	UnitID     uuid.UUID
	LeaseType  LeaseType
	FromDate   time.Time
	ToDate     time.Time

	Charges ChargeForm

	ProrateFirstMonth bool
	ProrateLastMonth  bool
	FirstProration    ProrationResult
	LastProration     ProrationResult

	SyncPlatform     bool
	SendWelcomeEmail bool

	accounts []GLAccount

	// previous auto-derived values, used to decide whether a
	// dependent field still tracks the start date
	prevFromDate   time.Time
	prevAutoToDate time.Time
}

// NewOriginationForm returns a form with the workflow defaults applied
func NewOriginationForm() *OriginationForm {
	return &OriginationForm{
		LeaseType: LeaseTypeFixed,
		Charges: ChargeForm{
			RentCycle: RentCycleMonthly,
		},
		SyncPlatform:     true,
		SendWelcomeEmail: true,
	}
}

// SetFromDate updates the lease start date and re-derives the dependent
// defaults. The end date defaults to one year minus a day after the
// start; the rent next-due and deposit dates default to the start
// itself. A dependent field is only overwritten while it is empty or
// still tracks the previously derived value, so explicit user edits
// survive start-date changes.
func (f *OriginationForm) SetFromDate(d time.Time) {
	f.FromDate = d

	if !d.IsZero() {
		if f.ToDate.IsZero() || f.ToDate.Equal(f.prevAutoToDate) {
			f.ToDate = d.AddDate(0, 0, 364)
			f.prevAutoToDate = f.ToDate
		}
		if f.Charges.NextDueDate.IsZero() || f.Charges.NextDueDate.Equal(f.prevFromDate) {
			f.Charges.NextDueDate = d
		}
		if f.Charges.DepositDate.IsZero() || f.Charges.DepositDate.Equal(f.prevFromDate) {
			f.Charges.DepositDate = d
		}
	}
	f.prevFromDate = d

	f.Recompute()
}

// SetToDate updates the lease end date. An explicit end date stops
// tracking the derived default.
func (f *OriginationForm) SetToDate(d time.Time) {
	f.ToDate = d
	if !d.Equal(f.prevAutoToDate) {
		f.prevAutoToDate = time.Time{}
	}
	f.Recompute()
}

// SetRentAmount updates the raw rent amount and recomputes prorations
func (f *OriginationForm) SetRentAmount(raw string) {
	f.Charges.RentAmount = raw
	f.Recompute()
}

// Recompute refreshes both proration results from the current inputs.
// Each result is a pure function of its toggle, the dates and the rent
// amount; a disabled toggle always resets its result to zero, so a
// stale amount can never survive a toggle flip or an input edit.
func (f *OriginationForm) Recompute() {
	f.FirstProration = ProrationResult{}
	f.LastProration = ProrationResult{}

	rent, ok := ParsePositiveCurrency(f.Charges.RentAmount)
	if !ok {
		return
	}
	if f.ProrateFirstMonth {
		f.FirstProration = ComputeFirstMonthProration(f.FromDate, rent)
	}
	if f.ProrateLastMonth {
		f.LastProration = ComputeLastMonthProration(f.ToDate, rent)
	}
}

// SetAccounts installs the chart of accounts available to the form and
// fills any GL selections the user has not made yet
func (f *OriginationForm) SetAccounts(accounts []GLAccount) {
	f.accounts = accounts
	ResolveChargeDefaults(accounts, &f.Charges)
}

// Accounts returns the chart of accounts loaded into the form
func (f *OriginationForm) Accounts() []GLAccount {
	return f.accounts
}

// PaymentDueDay derives the monthly payment due day from the rent
// next-due date, nil when no rent is being charged
func (f *OriginationForm) PaymentDueDay() *int {
	if _, ok := ParsePositiveCurrency(f.Charges.RentAmount); !ok {
		return nil
	}
	if f.Charges.NextDueDate.IsZero() {
		return nil
	}
	day := f.Charges.NextDueDate.Day()
	return &day
}
