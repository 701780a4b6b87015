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

// GormPropertyRepository implements PropertyRepository using GORM
type GormPropertyRepository struct {
	db *gorm.DB
}

// NewGormPropertyRepository creates a new GormPropertyRepository
func NewGormPropertyRepository(db *gorm.DB) *GormPropertyRepository {
	return &GormPropertyRepository{db: db}
}

// ListActive returns all non-inactive properties ordered by name.
// Anything not explicitly marked Inactive is offered for origination.
func (r *GormPropertyRepository) ListActive(ctx context.Context) ([]leasing.Property, error) {
	var rows []models.PropertyModel
	if err := r.db.WithContext(ctx).
		Not("status = ?", "Inactive").
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	properties := make([]leasing.Property, len(rows))
	for i := range rows {
		properties[i] = rows[i].ToDomain()
	}
	return properties, nil
}

// FindByID finds a property by its ID
func (r *GormPropertyRepository) FindByID(ctx context.Context, id uuid.UUID) (*leasing.Property, error) {
	var row models.PropertyModel
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	property := row.ToDomain()
	return &property, nil
}

// ListUnits returns the non-inactive units of a property ordered by
// unit number
func (r *GormPropertyRepository) ListUnits(ctx context.Context, propertyID uuid.UUID) ([]leasing.Unit, error) {
	var rows []models.UnitModel
	if err := r.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Not("status = ?", "Inactive").
		Order("unit_number ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	units := make([]leasing.Unit, len(rows))
	for i := range rows {
		units[i] = rows[i].ToDomain()
	}
	return units, nil
}

// FindUnitByID finds a unit by its ID
func (r *GormPropertyRepository) FindUnitByID(ctx context.Context, id uuid.UUID) (*leasing.Unit, error) {
	var row models.UnitModel
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	unit := row.ToDomain()
	return &unit, nil
}

// Ensure GormPropertyRepository implements PropertyRepository
var _ leasing.PropertyRepository = (*GormPropertyRepository)(nil)
