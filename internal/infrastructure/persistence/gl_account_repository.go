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

// GormGLAccountRepository implements GLAccountRepository using GORM
type GormGLAccountRepository struct {
	db *gorm.DB
}

// NewGormGLAccountRepository creates a new GormGLAccountRepository
func NewGormGLAccountRepository(db *gorm.DB) *GormGLAccountRepository {
	return &GormGLAccountRepository{db: db}
}

// ListActive returns all active GL accounts ordered by name
func (r *GormGLAccountRepository) ListActive(ctx context.Context) ([]leasing.GLAccount, error) {
	var rows []models.GLAccountModel
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	accounts := make([]leasing.GLAccount, len(rows))
	for i := range rows {
		accounts[i] = rows[i].ToDomain()
	}
	return accounts, nil
}

// FindByID finds a GL account by its ID
func (r *GormGLAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*leasing.GLAccount, error) {
	var row models.GLAccountModel
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	account := row.ToDomain()
	return &account, nil
}

// Ensure GormGLAccountRepository implements GLAccountRepository
var _ leasing.GLAccountRepository = (*GormGLAccountRepository)(nil)
