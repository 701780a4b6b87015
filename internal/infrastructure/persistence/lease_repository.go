package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/leasing"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/propman/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormLeaseRepository implements LeaseRepository using GORM
type GormLeaseRepository struct {
	db *gorm.DB
}

// NewGormLeaseRepository creates a new GormLeaseRepository
func NewGormLeaseRepository(db *gorm.DB) *GormLeaseRepository {
	return &GormLeaseRepository{db: db}
}

// Save persists a lease record, inserting or updating by primary key
func (r *GormLeaseRepository) Save(ctx context.Context, lease *leasing.Lease) error {
	model := models.LeaseModelFromDomain(lease)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return err
	}
	return nil
}

// FindByID finds a lease record by its ID
func (r *GormLeaseRepository) FindByID(ctx context.Context, id uuid.UUID) (*leasing.Lease, error) {
	var row models.LeaseModel
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return row.ToDomain(), nil
}

// ListByUnit returns the lease records for a unit, newest start date first
func (r *GormLeaseRepository) ListByUnit(ctx context.Context, unitID uuid.UUID) ([]leasing.Lease, error) {
	var rows []models.LeaseModel
	if err := r.db.WithContext(ctx).
		Where("unit_id = ?", unitID).
		Order("from_date DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	leases := make([]leasing.Lease, len(rows))
	for i := range rows {
		leases[i] = *rows[i].ToDomain()
	}
	return leases, nil
}

// Ensure GormLeaseRepository implements LeaseRepository
var _ leasing.LeaseRepository = (*GormLeaseRepository)(nil)
