package leasing

import (
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Property is a managed rental property
type Property struct {
	shared.BaseEntity
	Name   string
	Status string
}

// IsActive reports whether the property is active
func (p *Property) IsActive() bool {
	return p.Status == "Active"
}

// Unit is a rentable unit within a property
type Unit struct {
	shared.BaseEntity
	PropertyID uuid.UUID
	UnitNumber string
	Status     string
}

// TenantSummary is the lightweight search result for an existing
// tenant or applicant
type TenantSummary struct {
	ID        uuid.UUID
	FirstName string
	LastName  string
	Email     string
}

// FullName returns the tenant's display name
func (t *TenantSummary) FullName() string {
	name := t.FirstName
	if t.LastName != "" {
		if name != "" {
			name += " "
		}
		name += t.LastName
	}
	if name == "" {
		return "Unnamed"
	}
	return name
}

// LeaseType is the contractual type of a lease
type LeaseType string

const (
	LeaseTypeFixed             LeaseType = "Fixed"
	LeaseTypeFixedWithRollover LeaseType = "FixedWithRollover"
	LeaseTypeAtWill            LeaseType = "AtWill"
)

// IsValid checks if the type is a known LeaseType
func (t LeaseType) IsValid() bool {
	switch t {
	case LeaseTypeFixed, LeaseTypeFixedWithRollover, LeaseTypeAtWill:
		return true
	}
	return false
}

// Lease is the local record of a lease created through the workflow.
// PlatformLeaseID is the identifier the external platform returned on
// creation; it is the key for document uploads and retries.
type Lease struct {
	shared.BaseEntity
	PropertyID      uuid.UUID
	UnitID          uuid.UUID
	PlatformLeaseID int64
	LeaseType       LeaseType
	FromDate        time.Time
	ToDate          *time.Time
	RentAmount      *decimal.Decimal
	SecurityDeposit *decimal.Decimal
	PaymentDueDay   *int
	Status          string
}

// NewLease creates a local lease record for a successfully created lease
func NewLease(propertyID, unitID uuid.UUID, platformLeaseID int64, leaseType LeaseType, fromDate time.Time) (*Lease, error) {
	if propertyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PROPERTY", "Property ID cannot be empty")
	}
	if unitID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_UNIT", "Unit ID cannot be empty")
	}
	if platformLeaseID <= 0 {
		return nil, shared.NewDomainError("INVALID_LEASE_ID", "Platform lease ID must be positive")
	}
	if !leaseType.IsValid() {
		return nil, shared.NewDomainError("INVALID_LEASE_TYPE", "Unknown lease type")
	}
	if fromDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Lease start date is required")
	}

	return &Lease{
		BaseEntity:      shared.NewBaseEntity(),
		PropertyID:      propertyID,
		UnitID:          unitID,
		PlatformLeaseID: platformLeaseID,
		LeaseType:       leaseType,
		FromDate:        fromDate,
		Status:          "Active",
	}, nil
}
