package leasing

import (
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/leasing"
	"github.com/propman/backend/internal/domain/shared/valueobject"
)

// UpdateFormRequest updates the header fields of a session. All fields
// are optional; absent fields stay untouched.
type UpdateFormRequest struct {
	PropertyID        *uuid.UUID `json:"property_id"`
	UnitID            *uuid.UUID `json:"unit_id"`
	LeaseType         *string    `json:"lease_type" binding:"omitempty,oneof=Fixed FixedWithRollover AtWill"`
	FromDate          *string    `json:"from_date" binding:"omitempty,datetime=2006-01-02"`
	ToDate            *string    `json:"to_date" binding:"omitempty,datetime=2006-01-02"`
	ProrateFirstMonth *bool      `json:"prorate_first_month"`
	ProrateLastMonth  *bool      `json:"prorate_last_month"`
	SyncPlatform      *bool      `json:"sync_platform"`
	SendWelcomeEmail  *bool      `json:"send_welcome_email"`
}

// RecurringChargeRowRequest is one user-added recurring charge
type RecurringChargeRowRequest struct {
	GLAccountID uuid.UUID `json:"gl_account_id"`
	Frequency   string    `json:"frequency"`
	StartDate   string    `json:"start_date" binding:"omitempty,datetime=2006-01-02"`
	Amount      string    `json:"amount"`
	Memo        string    `json:"memo" binding:"max=200"`
}

// OneTimeChargeRowRequest is one user-added one-time charge
type OneTimeChargeRowRequest struct {
	GLAccountID uuid.UUID `json:"gl_account_id"`
	Date        string    `json:"date" binding:"omitempty,datetime=2006-01-02"`
	Amount      string    `json:"amount"`
	Memo        string    `json:"memo" binding:"max=200"`
}

// UpdateChargesRequest replaces the charge section of a session
type UpdateChargesRequest struct {
	RentAmount         string                      `json:"rent_amount"`
	RentMemo           string                      `json:"rent_memo" binding:"max=200"`
	RentCycle          string                      `json:"rent_cycle"`
	NextDueDate        string                      `json:"next_due_date" binding:"omitempty,datetime=2006-01-02"`
	RentGLAccountID    uuid.UUID                   `json:"rent_gl_account_id"`
	DepositAmount      string                      `json:"deposit_amount"`
	DepositMemo        string                      `json:"deposit_memo" binding:"max=200"`
	DepositDate        string                      `json:"deposit_date" binding:"omitempty,datetime=2006-01-02"`
	DepositGLAccountID uuid.UUID                   `json:"deposit_gl_account_id"`
	ExtraRecurring     []RecurringChargeRowRequest `json:"extra_recurring"`
	ExtraOneTime       []OneTimeChargeRowRequest   `json:"extra_one_time"`
}

// AddressRequest is a postal address as submitted by the client
type AddressRequest struct {
	Line1      string `json:"line1" binding:"required,max=200"`
	Line2      string `json:"line2" binding:"max=200"`
	City       string `json:"city" binding:"required,max=100"`
	State      string `json:"state" binding:"max=100"`
	PostalCode string `json:"postal_code" binding:"max=20"`
	Country    string `json:"country" binding:"max=100"`
}

// StagePersonRequest stages a new tenant or cosigner on the session
type StagePersonRequest struct {
	Role              string          `json:"role" binding:"required,oneof=Tenant Cosigner"`
	FirstName         string          `json:"first_name" binding:"required,max=100"`
	LastName          string          `json:"last_name" binding:"required,max=100"`
	Email             string          `json:"email" binding:"omitempty,email"`
	Phone             string          `json:"phone" binding:"max=30"`
	AltEmail          string          `json:"alternate_email" binding:"omitempty,email"`
	AltPhone          string          `json:"alternate_phone" binding:"max=30"`
	SameAsUnitAddress bool            `json:"same_as_unit_address"`
	Address           *AddressRequest `json:"address"`
	AltAddress        *AddressRequest `json:"alternate_address"`
}

// SelectExistingRequest selects an existing tenant for the session
type SelectExistingRequest struct {
	TenantID uuid.UUID `json:"tenant_id" binding:"required"`
}

// StagedPersonResponse is a staged person in API responses
type StagedPersonResponse struct {
	Index             int    `json:"index"`
	FirstName         string `json:"first_name"`
	LastName          string `json:"last_name"`
	Email             string `json:"email,omitempty"`
	Phone             string `json:"phone,omitempty"`
	SameAsUnitAddress bool   `json:"same_as_unit_address"`
}

// ExistingTenantResponse is a selected existing tenant in API responses
type ExistingTenantResponse struct {
	TenantID uuid.UUID `json:"tenant_id"`
	Name     string    `json:"name"`
	Email    string    `json:"email,omitempty"`
}

// ProrationResponse is one proration result in API responses
type ProrationResponse struct {
	Applies bool   `json:"applies"`
	Days    int    `json:"days"`
	Amount  string `json:"amount,omitempty"`
}

// FileResponse is one attached document in API responses
type FileResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type,omitempty"`
	Status      string    `json:"status"`
	Error       string    `json:"error,omitempty"`
}

// SessionResponse is the full session state in API responses
type SessionResponse struct {
	ID                uuid.UUID                `json:"id"`
	PropertyID        *uuid.UUID               `json:"property_id,omitempty"`
	UnitID            *uuid.UUID               `json:"unit_id,omitempty"`
	LeaseType         string                   `json:"lease_type"`
	FromDate          string                   `json:"from_date,omitempty"`
	ToDate            string                   `json:"to_date,omitempty"`
	ProrateFirstMonth bool                     `json:"prorate_first_month"`
	ProrateLastMonth  bool                     `json:"prorate_last_month"`
	FirstProration    ProrationResponse        `json:"first_proration"`
	LastProration     ProrationResponse        `json:"last_proration"`
	SyncPlatform      bool                     `json:"sync_platform"`
	SendWelcomeEmail  bool                     `json:"send_welcome_email"`
	Charges           UpdateChargesRequest     `json:"charges"`
	Tenants           []StagedPersonResponse   `json:"tenants"`
	Cosigners         []StagedPersonResponse   `json:"cosigners"`
	ExistingTenants   []ExistingTenantResponse `json:"existing_tenants"`
	Files             []FileResponse           `json:"files"`
	Phase             string                   `json:"phase"`
	CreatedLeaseID    *int64                   `json:"created_lease_id,omitempty"`
	LastError         string                   `json:"last_error,omitempty"`
	CreatedAt         time.Time                `json:"created_at"`
	UpdatedAt         time.Time                `json:"updated_at"`
}

// UploadResultResponse is the per-file outcome of a submit attempt
type UploadResultResponse struct {
	FileID uuid.UUID `json:"file_id"`
	Name   string    `json:"name"`
	Status string    `json:"status"`
	Error  string    `json:"error,omitempty"`
}

// SubmitResponse is the outcome of a submit attempt. Phase is
// Finalized on full success and ErrorRecoverable when some documents
// failed; LeaseID is set in both cases once the lease exists.
type SubmitResponse struct {
	Phase   string                 `json:"phase"`
	LeaseID int64                  `json:"lease_id"`
	Files   []UploadResultResponse `json:"files"`
	Error   string                 `json:"error,omitempty"`
}

// GLAccountResponse is a GL account in API responses
type GLAccountResponse struct {
	ID                         uuid.UUID `json:"id"`
	Name                       string    `json:"name"`
	AccountNumber              string    `json:"account_number,omitempty"`
	Type                       string    `json:"type"`
	IsSecurityDepositLiability bool      `json:"is_security_deposit_liability"`
}

// PropertyResponse is a property in API responses
type PropertyResponse struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Status string    `json:"status"`
}

// UnitResponse is a unit in API responses
type UnitResponse struct {
	ID         uuid.UUID `json:"id"`
	PropertyID uuid.UUID `json:"property_id"`
	UnitNumber string    `json:"unit_number"`
	Status     string    `json:"status"`
}

// TenantSearchResponse is a tenant search hit in API responses
type TenantSearchResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email,omitempty"`
}

// UnitLeaseResponse is one platform lease on a unit
type UnitLeaseResponse struct {
	ID            int64  `json:"id"`
	LeaseType     string `json:"lease_type,omitempty"`
	LeaseFromDate string `json:"lease_from_date,omitempty"`
	LeaseToDate   string `json:"lease_to_date,omitempty"`
	Status        string `json:"status,omitempty"`
}

func toSessionResponse(s *Session) *SessionResponse {
	form := s.Form
	resp := &SessionResponse{
		ID:                s.ID,
		LeaseType:         string(form.LeaseType),
		ProrateFirstMonth: form.ProrateFirstMonth,
		ProrateLastMonth:  form.ProrateLastMonth,
		FirstProration:    toProrationResponse(form.FirstProration),
		LastProration:     toProrationResponse(form.LastProration),
		SyncPlatform:      form.SyncPlatform,
		SendWelcomeEmail:  form.SendWelcomeEmail,
		Charges:           toChargesResponse(&form.Charges),
		Tenants:           toStagedResponses(s.People.ListStaged(leasing.RoleTenant)),
		Cosigners:         toStagedResponses(s.People.ListStaged(leasing.RoleCosigner)),
		ExistingTenants:   toExistingResponses(s.People.ExistingTenants()),
		Files:             toFileResponses(s.Files.List()),
		Phase:             string(s.Submission.Phase),
		CreatedLeaseID:    s.Submission.CreatedLeaseID,
		LastError:         s.Submission.LastError,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
	if form.PropertyID != uuid.Nil {
		id := form.PropertyID
		resp.PropertyID = &id
	}
	if form.UnitID != uuid.Nil {
		id := form.UnitID
		resp.UnitID = &id
	}
	if !form.FromDate.IsZero() {
		resp.FromDate = form.FromDate.Format("2006-01-02")
	}
	if !form.ToDate.IsZero() {
		resp.ToDate = form.ToDate.Format("2006-01-02")
	}
	return resp
}

func toProrationResponse(p leasing.ProrationResult) ProrationResponse {
	resp := ProrationResponse{Applies: p.Applies(), Days: p.Days}
	if p.Amount != nil {
		resp.Amount = p.Amount.StringFixed(2)
	}
	return resp
}

func toChargesResponse(c *leasing.ChargeForm) UpdateChargesRequest {
	resp := UpdateChargesRequest{
		RentAmount:         c.RentAmount,
		RentMemo:           c.RentMemo,
		RentCycle:          string(c.RentCycle),
		RentGLAccountID:    c.RentGLAccountID,
		DepositAmount:      c.DepositAmount,
		DepositMemo:        c.DepositMemo,
		DepositGLAccountID: c.DepositGLAccountID,
	}
	if !c.NextDueDate.IsZero() {
		resp.NextDueDate = c.NextDueDate.Format("2006-01-02")
	}
	if !c.DepositDate.IsZero() {
		resp.DepositDate = c.DepositDate.Format("2006-01-02")
	}
	for _, row := range c.ExtraRecurring {
		r := RecurringChargeRowRequest{
			GLAccountID: row.GLAccountID,
			Frequency:   string(row.Frequency),
			Amount:      row.Amount,
			Memo:        row.Memo,
		}
		if !row.StartDate.IsZero() {
			r.StartDate = row.StartDate.Format("2006-01-02")
		}
		resp.ExtraRecurring = append(resp.ExtraRecurring, r)
	}
	for _, row := range c.ExtraOneTime {
		r := OneTimeChargeRowRequest{
			GLAccountID: row.GLAccountID,
			Amount:      row.Amount,
			Memo:        row.Memo,
		}
		if !row.Date.IsZero() {
			r.Date = row.Date.Format("2006-01-02")
		}
		resp.ExtraOneTime = append(resp.ExtraOneTime, r)
	}
	return resp
}

func toStagedResponses(people []*leasing.StagedPerson) []StagedPersonResponse {
	out := make([]StagedPersonResponse, 0, len(people))
	for i, p := range people {
		out = append(out, StagedPersonResponse{
			Index:             i,
			FirstName:         p.FirstName,
			LastName:          p.LastName,
			Email:             p.Email,
			Phone:             p.Phone,
			SameAsUnitAddress: p.SameAsUnitAddress,
		})
	}
	return out
}

func toExistingResponses(refs []leasing.ExistingTenantRef) []ExistingTenantResponse {
	out := make([]ExistingTenantResponse, 0, len(refs))
	for _, ref := range refs {
		out = append(out, ExistingTenantResponse{
			TenantID: ref.TenantID,
			Name:     ref.Name,
			Email:    ref.Email,
		})
	}
	return out
}

func toFileResponses(files []*leasing.PendingFile) []FileResponse {
	out := make([]FileResponse, 0, len(files))
	for _, f := range files {
		out = append(out, FileResponse{
			ID:          f.ID,
			Name:        f.Name,
			Size:        f.Size,
			ContentType: f.ContentType,
			Status:      string(f.Status),
			Error:       f.Error,
		})
	}
	return out
}

func toUploadResponses(results []leasing.UploadResult) []UploadResultResponse {
	out := make([]UploadResultResponse, 0, len(results))
	for _, r := range results {
		out = append(out, UploadResultResponse{
			FileID: r.FileID,
			Name:   r.Name,
			Status: string(r.Status),
			Error:  r.Error,
		})
	}
	return out
}

func toAddress(req *AddressRequest) (*valueobject.PostalAddress, error) {
	if req == nil {
		return nil, nil
	}
	opts := []valueobject.PostalAddressOption{}
	if req.Line2 != "" {
		opts = append(opts, valueobject.WithLine2(req.Line2))
	}
	if req.Country != "" {
		opts = append(opts, valueobject.WithCountry(req.Country))
	}
	addr, err := valueobject.NewPostalAddress(req.Line1, req.City, req.State, req.PostalCode, opts...)
	if err != nil {
		return nil, err
	}
	return &addr, nil
}

func toGLAccountResponses(accounts []leasing.GLAccount) []GLAccountResponse {
	out := make([]GLAccountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, GLAccountResponse{
			ID:                         a.ID,
			Name:                       a.Name,
			AccountNumber:              a.AccountNumber,
			Type:                       a.Type,
			IsSecurityDepositLiability: a.IsSecurityDepositLiability,
		})
	}
	return out
}

func toPropertyResponses(properties []leasing.Property) []PropertyResponse {
	out := make([]PropertyResponse, 0, len(properties))
	for _, p := range properties {
		out = append(out, PropertyResponse{ID: p.ID, Name: p.Name, Status: p.Status})
	}
	return out
}

func toUnitResponses(units []leasing.Unit) []UnitResponse {
	out := make([]UnitResponse, 0, len(units))
	for _, u := range units {
		out = append(out, UnitResponse{
			ID:         u.ID,
			PropertyID: u.PropertyID,
			UnitNumber: u.UnitNumber,
			Status:     u.Status,
		})
	}
	return out
}

func toTenantSearchResponses(tenants []leasing.TenantSummary) []TenantSearchResponse {
	out := make([]TenantSearchResponse, 0, len(tenants))
	for _, t := range tenants {
		out = append(out, TenantSearchResponse{ID: t.ID, Name: t.FullName(), Email: t.Email})
	}
	return out
}

func toUnitLeaseResponses(leases []leasing.PlatformLease) []UnitLeaseResponse {
	out := make([]UnitLeaseResponse, 0, len(leases))
	for _, l := range leases {
		out = append(out, UnitLeaseResponse{
			ID:            l.ID,
			LeaseType:     l.LeaseType,
			LeaseFromDate: l.LeaseFromDate,
			LeaseToDate:   l.LeaseToDate,
			Status:        l.Status,
		})
	}
	return out
}
