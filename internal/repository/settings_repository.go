package repository

import (
	"context"

	"catalog-sync-service/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SettingsRepositoryInterface abstracts category import setting reads
type SettingsRepositoryInterface interface {
	SettingsForCategories(ctx context.Context, categoryIDs []uuid.UUID) ([]models.CategoryImportSetting, error)
}

// SettingsRepository handles database operations for category import
// settings overrides
type SettingsRepository struct {
	db *gorm.DB
}

var _ SettingsRepositoryInterface = (*SettingsRepository)(nil)

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// SettingsForCategories returns the enabled override blocks for the given
// category ids. Categories without an enabled override are absent from the
// result.
func (r *SettingsRepository) SettingsForCategories(ctx context.Context, categoryIDs []uuid.UUID) ([]models.CategoryImportSetting, error) {
	if len(categoryIDs) == 0 {
		return nil, nil
	}
	var settings []models.CategoryImportSetting
	err := r.db.WithContext(ctx).
		Where("category_id IN ? AND enabled = ?", categoryIDs, true).
		Find(&settings).Error
	return settings, err
}
