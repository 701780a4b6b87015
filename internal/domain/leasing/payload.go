package leasing

import (
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/propman/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// NewPersonPayload is a staged tenant or cosigner in the wire format
// the platform expects. Addresses are flattened.
type NewPersonPayload struct {
	FirstName         string `json:"first_name"`
	LastName          string `json:"last_name"`
	Email             string `json:"email,omitempty"`
	Phone             string `json:"phone,omitempty"`
	AltEmail          string `json:"alternate_email,omitempty"`
	AltPhone          string `json:"alternate_phone,omitempty"`
	Role              string `json:"role"`
	SameAsUnitAddress bool   `json:"same_as_unit_address"`
	AddressLine1      string `json:"address_line1,omitempty"`
	AddressLine2      string `json:"address_line2,omitempty"`
	City              string `json:"city,omitempty"`
	State             string `json:"state,omitempty"`
	PostalCode        string `json:"postal_code,omitempty"`
	Country           string `json:"country,omitempty"`
	AltAddressLine1   string `json:"alternate_address_line1,omitempty"`
	AltAddressLine2   string `json:"alternate_address_line2,omitempty"`
	AltCity           string `json:"alternate_city,omitempty"`
	AltState          string `json:"alternate_state,omitempty"`
	AltPostalCode     string `json:"alternate_postal_code,omitempty"`
	AltCountry        string `json:"alternate_country,omitempty"`
}

// ContactPayload references an existing tenant on the platform
type ContactPayload struct {
	TenantID          string `json:"tenant_id"`
	Role              string `json:"role"`
	IsRentResponsible bool   `json:"is_rent_responsible"`
}

// RecurringTransactionPayload is one ledger charge in the wire format
type RecurringTransactionPayload struct {
	Amount      float64 `json:"amount"`
	Memo        string  `json:"memo"`
	Frequency   string  `json:"frequency"`
	StartDate   string  `json:"start_date"`
	EndDate     *string `json:"end_date,omitempty"`
	GLAccountID *string `json:"gl_account_id,omitempty"`
}

// RentSchedulePayload is the rent schedule summary row in wire format
type RentSchedulePayload struct {
	StartDate       string  `json:"start_date"`
	EndDate         *string `json:"end_date,omitempty"`
	TotalAmount     float64 `json:"total_amount"`
	RentCycle       string  `json:"rent_cycle"`
	Status          string  `json:"status"`
	BackdateCharges bool    `json:"backdate_charges"`
}

// LeaseCreationPayload is the full request body for creating a lease on
// the external platform. Field names follow the platform contract.
type LeaseCreationPayload struct {
	PropertyID             string                        `json:"property_id"`
	UnitID                 string                        `json:"unit_id"`
	LeaseType              string                        `json:"lease_type"`
	LeaseFromDate          string                        `json:"lease_from_date"`
	LeaseToDate            *string                       `json:"lease_to_date,omitempty"`
	PaymentDueDay          *int                          `json:"payment_due_day,omitempty"`
	RecurringTransactions  []RecurringTransactionPayload `json:"recurring_transactions"`
	RentSchedules          []RentSchedulePayload         `json:"rent_schedules"`
	NewPeople              []NewPersonPayload            `json:"new_people"`
	Contacts               []ContactPayload              `json:"contacts"`
	ProratedFirstMonthRent *float64                      `json:"prorated_first_month_rent,omitempty"`
	ProratedLastMonthRent  *float64                      `json:"prorated_last_month_rent,omitempty"`
	SyncBuildium           bool                          `json:"syncBuildium"`
	SendWelcomeEmail       bool                          `json:"send_welcome_email"`
}

func validationError(message string) error {
	return shared.NewDomainError(shared.ErrValidationFailed.Code, message)
}

// BuildPayload validates the session inputs and assembles the lease
// creation request. Validation stops at the first failure so the user
// sees one actionable message at a time; the checks run in a fixed
// order from coarse to fine.
func BuildPayload(form *OriginationForm, people *PersonStagingStore, today time.Time) (*LeaseCreationPayload, error) {
	if form.PropertyID == uuid.Nil {
		return nil, validationError("Select a property to continue")
	}
	if form.UnitID == uuid.Nil {
		return nil, validationError("Select a unit to continue")
	}
	if form.FromDate.IsZero() {
		return nil, validationError("Lease start date is required")
	}
	if people.TotalParties() == 0 {
		return nil, validationError("Add at least one tenant or cosigner")
	}
	if form.SyncPlatform && people.TenantParties() == 0 {
		return nil, validationError("At least one tenant is required to sync with the platform")
	}

	_, hasRent := form.Charges.RentValue()
	if hasRent && form.Charges.NextDueDate.IsZero() {
		return nil, validationError("Rent next due date is required")
	}
	_, hasDeposit := form.Charges.DepositValue()
	if hasDeposit && form.Charges.DepositDate.IsZero() {
		return nil, validationError("Security deposit due date is required")
	}
	if hasRent && HasIncomeAccount(form.accounts) && form.Charges.RentGLAccountID == uuid.Nil {
		return nil, validationError("Select a GL account for the rent charge")
	}
	if hasDeposit && len(form.accounts) > 0 && form.Charges.DepositGLAccountID == uuid.Nil {
		return nil, validationError("Select a GL account for the security deposit")
	}

	payload := &LeaseCreationPayload{
		PropertyID:            form.PropertyID.String(),
		UnitID:                form.UnitID.String(),
		LeaseType:             string(form.LeaseType),
		LeaseFromDate:         form.FromDate.Format(dateLayout),
		RecurringTransactions: []RecurringTransactionPayload{},
		RentSchedules:         []RentSchedulePayload{},
		NewPeople:             []NewPersonPayload{},
		Contacts:              []ContactPayload{},
		SyncBuildium:          form.SyncPlatform,
		SendWelcomeEmail:      form.SendWelcomeEmail,
	}

	var leaseTo *time.Time
	if !form.ToDate.IsZero() {
		to := form.ToDate
		leaseTo = &to
		s := to.Format(dateLayout)
		payload.LeaseToDate = &s
	}
	payload.PaymentDueDay = form.PaymentDueDay()

	for _, line := range AssembleCharges(&form.Charges) {
		payload.RecurringTransactions = append(payload.RecurringTransactions, chargeLinePayload(line))
	}

	if schedule := RentScheduleFor(&form.Charges, form.FromDate, leaseTo, today); schedule != nil {
		payload.RentSchedules = append(payload.RentSchedules, rentSchedulePayload(schedule))
	}

	for _, p := range people.ListStaged(RoleTenant) {
		payload.NewPeople = append(payload.NewPeople, newPersonPayload(p, RoleTenant))
	}
	for _, p := range people.ListStaged(RoleCosigner) {
		payload.NewPeople = append(payload.NewPeople, newPersonPayload(p, RoleCosigner))
	}
	for _, ref := range people.ExistingTenants() {
		payload.Contacts = append(payload.Contacts, ContactPayload{
			TenantID:          ref.TenantID.String(),
			Role:              string(RoleTenant),
			IsRentResponsible: true,
		})
	}

	if form.ProrateFirstMonth && form.FirstProration.Applies() && hasRent {
		v, _ := form.FirstProration.Amount.Round(2).Float64()
		payload.ProratedFirstMonthRent = &v
	}
	if form.ProrateLastMonth && form.LastProration.Applies() && hasRent {
		v, _ := form.LastProration.Amount.Round(2).Float64()
		payload.ProratedLastMonthRent = &v
	}

	return payload, nil
}

func chargeLinePayload(line ChargeLine) RecurringTransactionPayload {
	p := RecurringTransactionPayload{
		Amount:    amountFloat(line.Amount),
		Memo:      line.Memo,
		Frequency: string(line.Frequency),
		StartDate: line.StartDate.Format(dateLayout),
	}
	if line.EndDate != nil {
		s := line.EndDate.Format(dateLayout)
		p.EndDate = &s
	}
	if line.GLAccountID != uuid.Nil {
		id := line.GLAccountID.String()
		p.GLAccountID = &id
	}
	return p
}

func rentSchedulePayload(s *RentSchedule) RentSchedulePayload {
	p := RentSchedulePayload{
		StartDate:       s.StartDate.Format(dateLayout),
		TotalAmount:     amountFloat(s.TotalAmount),
		RentCycle:       string(s.RentCycle),
		Status:          string(s.Status),
		BackdateCharges: s.BackdateCharges,
	}
	if s.EndDate != nil {
		e := s.EndDate.Format(dateLayout)
		p.EndDate = &e
	}
	return p
}

func newPersonPayload(p *StagedPerson, role PersonRole) NewPersonPayload {
	out := NewPersonPayload{
		FirstName:         p.FirstName,
		LastName:          p.LastName,
		Email:             p.Email,
		Phone:             p.Phone,
		AltEmail:          p.AltEmail,
		AltPhone:          p.AltPhone,
		Role:              string(role),
		SameAsUnitAddress: p.SameAsUnitAddress,
	}
	if p.Address != nil {
		out.AddressLine1, out.AddressLine2, out.City, out.State, out.PostalCode, out.Country = flattenAddress(p.Address)
	}
	if p.AltAddress != nil {
		out.AltAddressLine1, out.AltAddressLine2, out.AltCity, out.AltState, out.AltPostalCode, out.AltCountry = flattenAddress(p.AltAddress)
	}
	return out
}

func flattenAddress(a *valueobject.PostalAddress) (line1, line2, city, state, postal, country string) {
	return a.Line1(), a.Line2(), a.City(), a.State(), a.PostalCode(), a.Country()
}

func amountFloat(d decimal.Decimal) float64 {
	v, _ := d.Round(2).Float64()
	return v
}
