package leasing

import (
	"context"

	"github.com/google/uuid"
)

// GLAccountRepository loads the chart of accounts
type GLAccountRepository interface {
	ListActive(ctx context.Context) ([]GLAccount, error)
	FindByID(ctx context.Context, id uuid.UUID) (*GLAccount, error)
}

// PropertyRepository loads properties and their units
type PropertyRepository interface {
	ListActive(ctx context.Context) ([]Property, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Property, error)
	ListUnits(ctx context.Context, propertyID uuid.UUID) ([]Unit, error)
	FindUnitByID(ctx context.Context, id uuid.UUID) (*Unit, error)
}

// TenantRepository searches existing tenants and applicants
type TenantRepository interface {
	Search(ctx context.Context, term string, limit int) ([]TenantSummary, error)
	FindByID(ctx context.Context, id uuid.UUID) (*TenantSummary, error)
}

// LeaseRepository persists the local lease records
type LeaseRepository interface {
	Save(ctx context.Context, lease *Lease) error
	FindByID(ctx context.Context, id uuid.UUID) (*Lease, error)
	ListByUnit(ctx context.Context, unitID uuid.UUID) ([]Lease, error)
}

// DocumentStorage archives uploaded lease documents in object storage
type DocumentStorage interface {
	StoreDocument(ctx context.Context, leaseID int64, file *PendingFile) (string, error)
}
