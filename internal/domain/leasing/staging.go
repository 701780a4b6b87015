package leasing

import (
	"strings"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/propman/backend/internal/domain/shared/valueobject"
)

// PersonRole is the role a person plays on a lease
type PersonRole string

const (
	RoleTenant   PersonRole = "Tenant"
	RoleCosigner PersonRole = "Cosigner"
)

// IsValid checks if the role is a known PersonRole
func (r PersonRole) IsValid() bool {
	return r == RoleTenant || r == RoleCosigner
}

// StagedPerson is a tenant or cosigner entered during the current
// session but not yet persisted anywhere. It exists only in the staging
// store until the lease is submitted or the session is cancelled.
type StagedPerson struct {
	FirstName         string
	LastName          string
	Email             string
	Phone             string
	AltEmail          string
	AltPhone          string
	SameAsUnitAddress bool
	Address           *valueobject.PostalAddress
	AltAddress        *valueobject.PostalAddress
}

// NewStagedPerson validates and normalizes a staged person. First and
// last name are hard preconditions. When the person lives at the unit
// address, both address blocks are forced to nil so a previously typed
// address never leaks into the record.
func NewStagedPerson(firstName, lastName string, p StagedPerson) (*StagedPerson, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if firstName == "" || lastName == "" {
		return nil, shared.NewDomainError("PERSON_NAME_REQUIRED", "First and last name are required")
	}

	person := p
	person.FirstName = firstName
	person.LastName = lastName
	if person.SameAsUnitAddress {
		person.Address = nil
		person.AltAddress = nil
	}
	return &person, nil
}

// FullName returns the display name of the staged person
func (p *StagedPerson) FullName() string {
	return p.FirstName + " " + p.LastName
}

// ExistingTenantRef points at a tenant or applicant already in the
// system, selected via search. Immutable once selected.
type ExistingTenantRef struct {
	TenantID uuid.UUID
	Name     string
	Email    string
}

// PersonStagingStore accumulates the people attached to a lease in
// progress: staged tenants, staged cosigners, and references to
// existing tenants. Pure local state - no network calls happen here.
type PersonStagingStore struct {
	tenants   []*StagedPerson
	cosigners []*StagedPerson
	existing  []ExistingTenantRef
}

// NewPersonStagingStore creates an empty staging store
func NewPersonStagingStore() *PersonStagingStore {
	return &PersonStagingStore{}
}

// Stage adds a staged person under the given role
func (s *PersonStagingStore) Stage(role PersonRole, person *StagedPerson) error {
	if person == nil {
		return shared.ErrInvalidInput
	}
	switch role {
	case RoleTenant:
		s.tenants = append(s.tenants, person)
	case RoleCosigner:
		s.cosigners = append(s.cosigners, person)
	default:
		return shared.NewDomainError("INVALID_ROLE", "Role must be Tenant or Cosigner")
	}
	return nil
}

// Unstage removes the staged person at index under the given role
func (s *PersonStagingStore) Unstage(role PersonRole, index int) error {
	switch role {
	case RoleTenant:
		if index < 0 || index >= len(s.tenants) {
			return shared.ErrNotFound
		}
		s.tenants = append(s.tenants[:index], s.tenants[index+1:]...)
	case RoleCosigner:
		if index < 0 || index >= len(s.cosigners) {
			return shared.ErrNotFound
		}
		s.cosigners = append(s.cosigners[:index], s.cosigners[index+1:]...)
	default:
		return shared.NewDomainError("INVALID_ROLE", "Role must be Tenant or Cosigner")
	}
	return nil
}

// ListStaged returns the staged people for a role in insertion order
func (s *PersonStagingStore) ListStaged(role PersonRole) []*StagedPerson {
	switch role {
	case RoleTenant:
		return s.tenants
	case RoleCosigner:
		return s.cosigners
	}
	return nil
}

// SelectExisting records a reference to an existing tenant. Selecting
// the same tenant twice is a no-op.
func (s *PersonStagingStore) SelectExisting(ref ExistingTenantRef) error {
	if ref.TenantID == uuid.Nil {
		return shared.ErrInvalidInput
	}
	for _, e := range s.existing {
		if e.TenantID == ref.TenantID {
			return nil
		}
	}
	s.existing = append(s.existing, ref)
	return nil
}

// DeselectExisting removes a previously selected existing tenant
func (s *PersonStagingStore) DeselectExisting(tenantID uuid.UUID) error {
	for i, e := range s.existing {
		if e.TenantID == tenantID {
			s.existing = append(s.existing[:i], s.existing[i+1:]...)
			return nil
		}
	}
	return shared.ErrNotFound
}

// ExistingTenants returns the selected existing tenant references
func (s *PersonStagingStore) ExistingTenants() []ExistingTenantRef {
	return s.existing
}

// TotalParties counts every party attached to the lease: staged
// tenants, staged cosigners, and existing tenant references
func (s *PersonStagingStore) TotalParties() int {
	return len(s.tenants) + len(s.cosigners) + len(s.existing)
}

// TenantParties counts only tenant-role parties (staged tenants plus
// existing tenants); cosigners do not count
func (s *PersonStagingStore) TenantParties() int {
	return len(s.tenants) + len(s.existing)
}

// Reset discards all staged state
func (s *PersonStagingStore) Reset() {
	s.tenants = nil
	s.cosigners = nil
	s.existing = nil
}
