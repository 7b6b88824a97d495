package services

import (
	"context"
	"fmt"
	"time"

	"catalog-sync-service/internal/clients"
	"catalog-sync-service/internal/config"
	"catalog-sync-service/internal/models"
	"catalog-sync-service/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// StartRunRequest carries the per-run overrides accepted by the API. Empty
// fields fall back to the configured defaults.
type StartRunRequest struct {
	Strategy  models.MappingStrategy `json:"strategy,omitempty"`
	Algorithm models.SyncAlgorithm   `json:"algorithm,omitempty"`
}

// SyncService orchestrates a reconciliation run: mapping strategy, device
// sync, relationship sync. Runs execute in the background; at most one at a
// time.
type SyncService struct {
	cfg          *config.Config
	runRepo      repository.RunRepositoryInterface
	mappingRepo  repository.MappingRepositoryInterface
	productRepo  repository.ProductRepositoryInterface
	cacheRepo    repository.MappingCacheRepositoryInterface
	relationship *RelationshipSyncService
	deviceSync   *DeviceSyncService
	client       clients.CatalogClient
	lock         *RunLock
}

// NewSyncService creates a new sync service
func NewSyncService(
	cfg *config.Config,
	runRepo repository.RunRepositoryInterface,
	mappingRepo repository.MappingRepositoryInterface,
	productRepo repository.ProductRepositoryInterface,
	cacheRepo repository.MappingCacheRepositoryInterface,
	deviceSync *DeviceSyncService,
	relationship *RelationshipSyncService,
	client clients.CatalogClient,
) *SyncService {
	return &SyncService{
		cfg:          cfg,
		runRepo:      runRepo,
		mappingRepo:  mappingRepo,
		productRepo:  productRepo,
		cacheRepo:    cacheRepo,
		deviceSync:   deviceSync,
		relationship: relationship,
		client:       client,
		lock:         NewRunLock(),
	}
}

// StartRun creates a run row, takes the single-run lock and executes the run
// in the background. A second concurrent request fails with ErrRunInProgress.
func (s *SyncService) StartRun(ctx context.Context, req StartRunRequest) (*models.SyncRun, error) {
	strategy := req.Strategy
	if strategy == "" {
		strategy = s.cfg.Strategy
	}
	algorithm := req.Algorithm
	if algorithm == "" {
		algorithm = s.cfg.Algorithm
	}

	// validate overrides before taking the lock
	if _, err := NewStrategyRunner(strategy, s.cfg, s.mappingRepo, s.productRepo, s.cacheRepo, s.client); err != nil {
		return nil, err
	}
	if algorithm != models.AlgorithmFullRebuild && algorithm != models.AlgorithmDifferential {
		return nil, fmt.Errorf("unsupported sync algorithm %q", algorithm)
	}

	release, err := s.lock.TryAcquire()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	run := &models.SyncRun{
		ID:        uuid.New(),
		Strategy:  strategy,
		Algorithm: algorithm,
		Status:    models.RunStatusRunning,
		Counters:  models.JSONB{},
		StartedAt: &now,
	}
	if err := s.runRepo.CreateRun(ctx, run); err != nil {
		release()
		return nil, err
	}

	go func() {
		defer release()

		runCtx, cancel := context.WithTimeout(context.Background(), s.cfg.RunTimeout)
		defer cancel()

		s.execute(runCtx, run, strategy, algorithm)
	}()

	return run, nil
}

// execute runs the three phases in order, merging counters into the run row
// after each phase. The first fatal error marks the run FAILED.
func (s *SyncService) execute(ctx context.Context, run *models.SyncRun, strategy models.MappingStrategy, algorithm models.SyncAlgorithm) {
	logrus.WithFields(logrus.Fields{
		"runId":     run.ID,
		"strategy":  strategy,
		"algorithm": algorithm,
	}).Info("Sync run started")

	var total models.RunCounters

	runner, err := NewStrategyRunner(strategy, s.cfg, s.mappingRepo, s.productRepo, s.cacheRepo, s.client)
	if err != nil {
		s.failRun(ctx, run.ID, total, err)
		return
	}

	counters, err := runner.Run(ctx)
	total.Merge(counters)
	s.persistCounters(ctx, run.ID, total)
	if err != nil {
		s.failRun(ctx, run.ID, total, err)
		return
	}
	s.logEvent(ctx, run.ID, models.LogLevelInfo, "Mapping phase completed", models.JSONB{
		"mappingsInserted": counters.MappingsInserted,
	})

	counters, err = s.deviceSync.RunAlgorithm(ctx, algorithm)
	total.Merge(counters)
	s.persistCounters(ctx, run.ID, total)
	if err != nil {
		s.failRun(ctx, run.ID, total, err)
		return
	}
	s.logEvent(ctx, run.ID, models.LogLevelInfo, "Device sync phase completed", models.JSONB{
		"linksInserted":  counters.LinksInserted,
		"devicesEnabled": counters.DevicesEnabled,
	})

	counters, err = s.relationship.Run(ctx)
	total.Merge(counters)
	s.persistCounters(ctx, run.ID, total)
	if err != nil {
		s.failRun(ctx, run.ID, total, err)
		return
	}
	s.logEvent(ctx, run.ID, models.LogLevelInfo, "Relationship sync phase completed", models.JSONB{
		"relationshipsInserted": counters.RelationshipsInserted,
		"failedItems":           counters.FailedItems,
	})

	if err := s.runRepo.UpdateRunStatus(ctx, run.ID, models.RunStatusCompleted, ""); err != nil {
		logrus.WithError(err).Error("Failed to mark sync run completed")
	}
	logrus.WithField("runId", run.ID).Info("Sync run completed")
}

func (s *SyncService) failRun(ctx context.Context, runID uuid.UUID, counters models.RunCounters, cause error) {
	logrus.WithError(cause).WithField("runId", runID).Error("Sync run failed")

	s.logEvent(ctx, runID, models.LogLevelError, cause.Error(), nil)
	if err := s.runRepo.UpdateRunStatus(ctx, runID, models.RunStatusFailed, cause.Error()); err != nil {
		logrus.WithError(err).Error("Failed to mark sync run failed")
	}
	s.persistCounters(ctx, runID, counters)
}

func (s *SyncService) persistCounters(ctx context.Context, runID uuid.UUID, counters models.RunCounters) {
	if err := s.runRepo.UpdateRunCounters(ctx, runID, counters); err != nil {
		logrus.WithError(err).Error("Failed to persist run counters")
	}
}

func (s *SyncService) logEvent(ctx context.Context, runID uuid.UUID, level models.LogLevel, message string, data models.JSONB) {
	entry := &models.SyncRunLog{
		RunID:   runID,
		Level:   level,
		Message: message,
		Data:    data,
	}
	if err := s.runRepo.CreateLog(ctx, entry); err != nil {
		logrus.WithError(err).Error("Failed to persist run log entry")
	}
}

// GetRun returns one run by id.
func (s *SyncService) GetRun(ctx context.Context, id uuid.UUID) (*models.SyncRun, error) {
	return s.runRepo.GetRunByID(ctx, id)
}

// ListRuns returns runs newest first.
func (s *SyncService) ListRuns(ctx context.Context, opts repository.RunListOptions) ([]models.SyncRun, int64, error) {
	return s.runRepo.ListRuns(ctx, opts)
}

// GetRunLogs returns the log entries of a run.
func (s *SyncService) GetRunLogs(ctx context.Context, runID uuid.UUID, opts repository.LogListOptions) ([]models.SyncRunLog, error) {
	return s.runRepo.GetRunLogs(ctx, runID, opts)
}

// MappingStats reports the current mapping table size and whether a run is in
// progress.
func (s *SyncService) MappingStats(ctx context.Context) (map[string]interface{}, error) {
	count, err := s.mappingRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"mappingCount": count,
		"runActive":    s.lock.Held(),
	}, nil
}

// PurgeMappingCache drops cached remote match results. With an empty kind the
// whole cache is purged.
func (s *SyncService) PurgeMappingCache(ctx context.Context, kind string) (int64, error) {
	if kind == "" {
		return s.cacheRepo.PurgeAll(ctx)
	}
	return s.cacheRepo.PurgeKind(ctx, clients.MatchKind(kind))
}
