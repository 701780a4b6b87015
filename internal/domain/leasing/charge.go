package leasing

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RentCycle is the billing cycle a user selects for rent
type RentCycle string

const (
	RentCycleMonthly      RentCycle = "Monthly"
	RentCycleWeekly       RentCycle = "Weekly"
	RentCycleBiweekly     RentCycle = "Biweekly"
	RentCycleQuarterly    RentCycle = "Quarterly"
	RentCycleAnnually     RentCycle = "Annually"
	RentCycleEvery2Months RentCycle = "Every2Months"
	RentCycleEvery6Months RentCycle = "Every6Months"
	RentCycleDaily        RentCycle = "Daily"
)

// IsValid checks if the cycle is a known RentCycle
func (c RentCycle) IsValid() bool {
	switch c {
	case RentCycleMonthly, RentCycleWeekly, RentCycleBiweekly, RentCycleQuarterly,
		RentCycleAnnually, RentCycleEvery2Months, RentCycleEvery6Months, RentCycleDaily:
		return true
	}
	return false
}

// ChargeFrequency is the ledger-side frequency of a charge line
type ChargeFrequency string

const (
	FrequencyMonthly      ChargeFrequency = "Monthly"
	FrequencyWeekly       ChargeFrequency = "Weekly"
	FrequencyEvery2Weeks  ChargeFrequency = "Every2Weeks"
	FrequencyQuarterly    ChargeFrequency = "Quarterly"
	FrequencyYearly       ChargeFrequency = "Yearly"
	FrequencyEvery2Months ChargeFrequency = "Every2Months"
	FrequencyEvery6Months ChargeFrequency = "Every6Months"
	FrequencyDaily        ChargeFrequency = "Daily"
	FrequencyOneTime      ChargeFrequency = "OneTime"
)

// rentCycleFrequencies maps user-selected rent cycles to ledger
// frequencies. Unrecognized input falls back to Monthly.
var rentCycleFrequencies = map[string]ChargeFrequency{
	"weekly":       FrequencyWeekly,
	"biweekly":     FrequencyEvery2Weeks,
	"quarterly":    FrequencyQuarterly,
	"annually":     FrequencyYearly,
	"annual":       FrequencyYearly,
	"every2months": FrequencyEvery2Months,
	"every6months": FrequencyEvery6Months,
	"daily":        FrequencyDaily,
}

// LedgerFrequency maps the rent cycle to its ledger frequency. Only the
// rent schedule row uses this mapping; charge lines carry the cycle
// verbatim via LineFrequency.
func (c RentCycle) LedgerFrequency() ChargeFrequency {
	if f, ok := rentCycleFrequencies[strings.ToLower(string(c))]; ok {
		return f
	}
	return FrequencyMonthly
}

// LineFrequency returns the user-selected cycle unchanged as a
// charge-line frequency, falling back to Monthly for unknown input
func (c RentCycle) LineFrequency() ChargeFrequency {
	if !c.IsValid() {
		return FrequencyMonthly
	}
	return ChargeFrequency(c)
}

// ChargeLine is one recurring or one-time ledger transaction to be
// posted alongside a lease. Every assembled line has a resolved start
// date and a positive amount; rows that cannot satisfy that are dropped
// before assembly, not rejected.
type ChargeLine struct {
	Amount      decimal.Decimal
	Memo        string
	Frequency   ChargeFrequency
	StartDate   time.Time
	EndDate     *time.Time
	GLAccountID uuid.UUID // uuid.Nil when no account was resolved
}

// RecurringChargeRow is a user-added recurring charge as captured from
// the form, before validation
type RecurringChargeRow struct {
	GLAccountID uuid.UUID
	Frequency   RentCycle
	StartDate   time.Time
	Amount      string
	Memo        string
}

// Complete reports whether the row carries everything a ledger charge
// needs. Incomplete rows are skipped silently - they are treated as not
// yet ready, not as errors.
func (r RecurringChargeRow) Complete() bool {
	if r.GLAccountID == uuid.Nil || r.StartDate.IsZero() {
		return false
	}
	_, ok := ParsePositiveCurrency(r.Amount)
	return ok
}

// OneTimeChargeRow is a user-added one-time charge as captured from the
// form, before validation
type OneTimeChargeRow struct {
	GLAccountID uuid.UUID
	Date        time.Time
	Amount      string
	Memo        string
}

// Complete reports whether the row carries everything a ledger charge needs
func (r OneTimeChargeRow) Complete() bool {
	if r.GLAccountID == uuid.Nil || r.Date.IsZero() {
		return false
	}
	_, ok := ParsePositiveCurrency(r.Amount)
	return ok
}

// ChargeForm holds the charge-related form state for a lease in
// progress. Amounts are kept as the raw strings the user typed; parsing
// happens at assembly time so a half-typed amount never blocks editing.
type ChargeForm struct {
	RentAmount         string
	RentMemo           string
	RentCycle          RentCycle
	NextDueDate        time.Time
	RentGLAccountID    uuid.UUID
	DepositAmount      string
	DepositMemo        string
	DepositDate        time.Time
	DepositGLAccountID uuid.UUID
	ExtraRecurring     []RecurringChargeRow
	ExtraOneTime       []OneTimeChargeRow
}

// RentValue returns the parsed rent amount, requiring it to be positive
func (f *ChargeForm) RentValue() (decimal.Decimal, bool) {
	return ParsePositiveCurrency(f.RentAmount)
}

// DepositValue returns the parsed deposit amount, requiring it to be positive
func (f *ChargeForm) DepositValue() (decimal.Decimal, bool) {
	return ParsePositiveCurrency(f.DepositAmount)
}

// AssembleCharges builds the ordered charge-line list from the form
// state. Order is fixed and load-bearing for ledger posting: rent,
// security deposit, extra recurring charges in the order added, extra
// one-time charges in the order added.
func AssembleCharges(form *ChargeForm) []ChargeLine {
	lines := make([]ChargeLine, 0, 2+len(form.ExtraRecurring)+len(form.ExtraOneTime))

	if rent, ok := form.RentValue(); ok && !form.NextDueDate.IsZero() {
		lines = append(lines, ChargeLine{
			Amount:      rent,
			Memo:        defaultMemo(form.RentMemo, "Rent"),
			Frequency:   form.RentCycle.LineFrequency(),
			StartDate:   form.NextDueDate,
			GLAccountID: form.RentGLAccountID,
		})
	}

	if deposit, ok := form.DepositValue(); ok && !form.DepositDate.IsZero() {
		depositDate := form.DepositDate
		lines = append(lines, ChargeLine{
			Amount:      deposit,
			Memo:        defaultMemo(form.DepositMemo, "Security Deposit"),
			Frequency:   FrequencyOneTime,
			StartDate:   depositDate,
			EndDate:     &depositDate,
			GLAccountID: form.DepositGLAccountID,
		})
	}

	for _, row := range form.ExtraRecurring {
		if !row.Complete() {
			continue
		}
		amount, _ := ParsePositiveCurrency(row.Amount)
		lines = append(lines, ChargeLine{
			Amount:      amount,
			Memo:        defaultMemo(row.Memo, "Recurring charge"),
			Frequency:   row.Frequency.LineFrequency(),
			StartDate:   row.StartDate,
			GLAccountID: row.GLAccountID,
		})
	}

	for _, row := range form.ExtraOneTime {
		if !row.Complete() {
			continue
		}
		amount, _ := ParsePositiveCurrency(row.Amount)
		date := row.Date
		lines = append(lines, ChargeLine{
			Amount:      amount,
			Memo:        defaultMemo(row.Memo, "One-time charge"),
			Frequency:   FrequencyOneTime,
			StartDate:   date,
			EndDate:     &date,
			GLAccountID: row.GLAccountID,
		})
	}

	return lines
}

func defaultMemo(memo, fallback string) string {
	if strings.TrimSpace(memo) == "" {
		return fallback
	}
	return memo
}

// ScheduleStatus is the lifecycle status of a rent schedule row
type ScheduleStatus string

const (
	ScheduleStatusCurrent ScheduleStatus = "Current"
	ScheduleStatusFuture  ScheduleStatus = "Future"
)

// RentSchedule is the single summarizing row derived from the rent
// charge for reporting purposes
type RentSchedule struct {
	StartDate       time.Time
	EndDate         *time.Time
	TotalAmount     decimal.Decimal
	RentCycle       ChargeFrequency
	Status          ScheduleStatus
	BackdateCharges bool
}

// ScheduleStatusFor computes the schedule status: Future when the start
// date is strictly after today (midnight-normalized), Current otherwise
func ScheduleStatusFor(startDate, today time.Time) ScheduleStatus {
	midnight := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	if startDate.After(midnight) {
		return ScheduleStatusFuture
	}
	return ScheduleStatusCurrent
}

// RentScheduleFor derives the rent schedule summary row, or nil when no
// positive rent amount exists
func RentScheduleFor(form *ChargeForm, leaseFrom time.Time, leaseTo *time.Time, today time.Time) *RentSchedule {
	rent, ok := form.RentValue()
	if !ok {
		return nil
	}

	start := form.NextDueDate
	if start.IsZero() {
		start = leaseFrom
	}

	return &RentSchedule{
		StartDate:       start,
		EndDate:         leaseTo,
		TotalAmount:     rent,
		RentCycle:       form.RentCycle.LedgerFrequency(),
		Status:          ScheduleStatusFor(start, today),
		BackdateCharges: false,
	}
}
