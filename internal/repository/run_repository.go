package repository

import (
	"context"
	"time"

	"catalog-sync-service/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RunRepositoryInterface abstracts sync run persistence for the orchestrator
type RunRepositoryInterface interface {
	CreateRun(ctx context.Context, run *models.SyncRun) error
	GetRunByID(ctx context.Context, id uuid.UUID) (*models.SyncRun, error)
	ListRuns(ctx context.Context, opts RunListOptions) ([]models.SyncRun, int64, error)
	UpdateRunStatus(ctx context.Context, id uuid.UUID, status models.RunStatus, errorMessage string) error
	UpdateRunCounters(ctx context.Context, id uuid.UUID, counters models.RunCounters) error
	CreateLog(ctx context.Context, log *models.SyncRunLog) error
	GetRunLogs(ctx context.Context, runID uuid.UUID, opts LogListOptions) ([]models.SyncRunLog, error)
}

// RunListOptions contains options for listing sync runs
type RunListOptions struct {
	Status string
	Limit  int
	Offset int
}

// LogListOptions contains options for listing run logs
type LogListOptions struct {
	Level  string
	Limit  int
	Offset int
}

// RunRepository handles database operations for sync runs and their logs
type RunRepository struct {
	db *gorm.DB
}

var _ RunRepositoryInterface = (*RunRepository)(nil)

// NewRunRepository creates a new run repository
func NewRunRepository(db *gorm.DB) *RunRepository {
	return &RunRepository{db: db}
}

// CreateRun creates a new sync run
func (r *RunRepository) CreateRun(ctx context.Context, run *models.SyncRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

// GetRunByID retrieves a sync run by ID
func (r *RunRepository) GetRunByID(ctx context.Context, id uuid.UUID) (*models.SyncRun, error) {
	var run models.SyncRun
	if err := r.db.WithContext(ctx).First(&run, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRuns retrieves sync runs with pagination and filtering
func (r *RunRepository) ListRuns(ctx context.Context, opts RunListOptions) ([]models.SyncRun, int64, error) {
	var runs []models.SyncRun
	var total int64

	query := r.db.WithContext(ctx).Model(&models.SyncRun{})
	if opts.Status != "" {
		query = query.Where("status = ?", opts.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		query = query.Offset(opts.Offset)
	}

	err := query.Order("created_at DESC").Find(&runs).Error
	return runs, total, err
}

// UpdateRunStatus updates the run status; terminal states also set
// completed_at.
func (r *RunRepository) UpdateRunStatus(ctx context.Context, id uuid.UUID, status models.RunStatus, errorMessage string) error {
	updates := map[string]interface{}{
		"status":        status,
		"error_message": errorMessage,
	}
	if status == models.RunStatusCompleted || status == models.RunStatusFailed {
		now := time.Now()
		updates["completed_at"] = &now
	}
	return r.db.WithContext(ctx).
		Model(&models.SyncRun{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// UpdateRunCounters persists the merged run counters.
func (r *RunRepository) UpdateRunCounters(ctx context.Context, id uuid.UUID, counters models.RunCounters) error {
	doc := models.JSONB{
		"mappingsInserted":      counters.MappingsInserted,
		"productsMatched":       counters.ProductsMatched,
		"productsSkipped":       counters.ProductsSkipped,
		"devicesEnabled":        counters.DevicesEnabled,
		"devicesDisabled":       counters.DevicesDisabled,
		"brandsEnabled":         counters.BrandsEnabled,
		"seriesEnabled":         counters.SeriesEnabled,
		"typesEnabled":          counters.TypesEnabled,
		"linksInserted":         counters.LinksInserted,
		"linksDeleted":          counters.LinksDeleted,
		"relationshipsInserted": counters.RelationshipsInserted,
		"relationshipsDeleted":  counters.RelationshipsDeleted,
		"crossSellingsUpdated":  counters.CrossSellingsUpdated,
		"failedItems":           counters.FailedItems,
	}
	return r.db.WithContext(ctx).
		Model(&models.SyncRun{}).
		Where("id = ?", id).
		Update("counters", doc).Error
}

// CreateLog creates a run log entry
func (r *RunRepository) CreateLog(ctx context.Context, log *models.SyncRunLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// GetRunLogs retrieves log entries for a run
func (r *RunRepository) GetRunLogs(ctx context.Context, runID uuid.UUID, opts LogListOptions) ([]models.SyncRunLog, error) {
	query := r.db.WithContext(ctx).Where("run_id = ?", runID)
	if opts.Level != "" {
		query = query.Where("level = ?", opts.Level)
	}
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		query = query.Offset(opts.Offset)
	}

	var logs []models.SyncRunLog
	err := query.Order("created_at ASC").Find(&logs).Error
	return logs, err
}
