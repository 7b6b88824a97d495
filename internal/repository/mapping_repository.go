package repository

import (
	"context"
	"sync"

	"catalog-sync-service/internal/models"
	"gorm.io/gorm"
)

// MappingRepositoryInterface abstracts the mapping table store for services
type MappingRepositoryInterface interface {
	Truncate(ctx context.Context) error
	InsertBatch(ctx context.Context, rows []models.ProductMapping) error
	All(ctx context.Context, forceReload bool) (map[int64][]models.LocalRef, error)
	Count(ctx context.Context) (int64, error)
}

// MappingRepository handles database operations for the mapping table. Reads
// of the full table are memoized in-process; writers invalidate the memo.
type MappingRepository struct {
	db *gorm.DB

	mu     sync.Mutex
	cached map[int64][]models.LocalRef
}

var _ MappingRepositoryInterface = (*MappingRepository)(nil)

// NewMappingRepository creates a new mapping repository
func NewMappingRepository(db *gorm.DB) *MappingRepository {
	return &MappingRepository{db: db}
}

// Truncate removes all mapping rows and drops the cached read.
func (r *MappingRepository) Truncate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&models.ProductMapping{}).Error; err != nil {
		return err
	}

	r.mu.Lock()
	r.cached = nil
	r.mu.Unlock()
	return nil
}

// InsertBatch inserts a batch of mapping rows. Callers are responsible for
// keeping batches bounded (the strategies flush at 500 rows).
func (r *MappingRepository) InsertBatch(ctx context.Context, rows []models.ProductMapping) error {
	if len(rows) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return err
	}

	r.mu.Lock()
	r.cached = nil
	r.mu.Unlock()
	return nil
}

// All returns the full mapping table as external id -> local refs. The result
// is cached until a write invalidates it or forceReload is set.
func (r *MappingRepository) All(ctx context.Context, forceReload bool) (map[int64][]models.LocalRef, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cached != nil && !forceReload {
		return r.cached, nil
	}

	var rows []models.ProductMapping
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}

	mapping := make(map[int64][]models.LocalRef, len(rows))
	for i := range rows {
		mapping[rows[i].ExternalID] = append(mapping[rows[i].ExternalID], rows[i].Ref())
	}
	r.cached = mapping
	return mapping, nil
}

// Count returns the number of mapping rows.
func (r *MappingRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.ProductMapping{}).Count(&total).Error
	return total, err
}
