package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/leasing"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/propman/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormTenantRepository implements TenantRepository using GORM
type GormTenantRepository struct {
	db *gorm.DB
}

// NewGormTenantRepository creates a new GormTenantRepository
func NewGormTenantRepository(db *gorm.DB) *GormTenantRepository {
	return &GormTenantRepository{db: db}
}

// Search finds tenants whose name or email matches the term, case-insensitively
func (r *GormTenantRepository) Search(ctx context.Context, term string, limit int) ([]leasing.TenantSummary, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []leasing.TenantSummary{}, nil
	}

	pattern := "%" + term + "%"

	var rows []models.TenantModel
	if err := r.db.WithContext(ctx).
		Where("first_name ILIKE ? OR last_name ILIKE ? OR email ILIKE ?", pattern, pattern, pattern).
		Order("last_name ASC, first_name ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	tenants := make([]leasing.TenantSummary, len(rows))
	for i := range rows {
		tenants[i] = rows[i].ToDomain()
	}
	return tenants, nil
}

// FindByID finds a tenant by ID
func (r *GormTenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*leasing.TenantSummary, error) {
	var row models.TenantModel
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	tenant := row.ToDomain()
	return &tenant, nil
}

// Ensure GormTenantRepository implements TenantRepository
var _ leasing.TenantRepository = (*GormTenantRepository)(nil)
