package services

import (
	"context"
	"testing"

	"catalog-sync-service/internal/config"
	"catalog-sync-service/internal/models"
	"catalog-sync-service/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newSyncServiceFixture(cfg *configFixture) *SyncService {
	return NewSyncService(
		cfg.cfg,
		cfg.runRepo,
		cfg.mappingRepo,
		cfg.productRepo,
		cfg.cacheRepo,
		NewDeviceSyncService(cfg.cfg, cfg.mappingRepo, cfg.deviceRepo, cfg.client),
		NewRelationshipSyncService(cfg.cfg, cfg.mappingRepo, cfg.relationshipRepo,
			NewImportSettingsResolver(cfg.cfg, cfg.productRepo, cfg.settingsRepo), cfg.client),
		cfg.client,
	)
}

type configFixture struct {
	cfg              *config.Config
	runRepo          *MockRunRepository
	mappingRepo      *MockMappingRepository
	productRepo      *MockProductRepository
	cacheRepo        *MockMappingCacheRepository
	deviceRepo       *MockDeviceRepository
	relationshipRepo *MockRelationshipRepository
	settingsRepo     *MockSettingsRepository
	client           *MockCatalogClient
}

func newConfigFixture() *configFixture {
	return &configFixture{
		cfg:              testConfig(),
		runRepo:          new(MockRunRepository),
		mappingRepo:      new(MockMappingRepository),
		productRepo:      new(MockProductRepository),
		cacheRepo:        new(MockMappingCacheRepository),
		deviceRepo:       new(MockDeviceRepository),
		relationshipRepo: new(MockRelationshipRepository),
		settingsRepo:     new(MockSettingsRepository),
		client:           new(MockCatalogClient),
	}
}

func TestSyncService_StartRunRejectsUnknownStrategy(t *testing.T) {
	f := newConfigFixture()
	service := newSyncServiceFixture(f)

	_, err := service.StartRun(context.Background(), StartRunRequest{Strategy: "bogus"})
	var unsupported *UnsupportedStrategyError
	assert.ErrorAs(t, err, &unsupported)
	f.runRepo.AssertNotCalled(t, "CreateRun", mock.Anything, mock.Anything)
}

func TestSyncService_StartRunRejectsUnknownAlgorithm(t *testing.T) {
	f := newConfigFixture()
	service := newSyncServiceFixture(f)

	_, err := service.StartRun(context.Background(), StartRunRequest{Algorithm: "v9"})
	assert.Error(t, err)
	f.runRepo.AssertNotCalled(t, "CreateRun", mock.Anything, mock.Anything)
}

func TestSyncService_StartRunConflictsWhileRunning(t *testing.T) {
	f := newConfigFixture()
	service := newSyncServiceFixture(f)

	release, err := service.lock.TryAcquire()
	assert.NoError(t, err)
	defer release()

	_, err = service.StartRun(context.Background(), StartRunRequest{})
	assert.ErrorIs(t, err, ErrRunInProgress)
	f.runRepo.AssertNotCalled(t, "CreateRun", mock.Anything, mock.Anything)
}

func TestSyncService_ExecuteHappyPath(t *testing.T) {
	f := newConfigFixture()
	service := newSyncServiceFixture(f)

	run := &models.SyncRun{ID: uuid.New()}

	// mapping phase: one numeric product number
	f.mappingRepo.On("Truncate", mock.Anything).Return(nil)
	f.productRepo.On("ProductNumberRows", mock.Anything).
		Return([]repository.IdentifierRow{identifierRow("42")}, nil)
	f.mappingRepo.On("InsertBatch", mock.Anything, mock.Anything).Return(nil)

	// device and relationship phases see an empty rebuilt table and skip
	f.mappingRepo.On("All", mock.Anything, mock.Anything).Return(map[int64][]models.LocalRef{}, nil)

	f.runRepo.On("UpdateRunCounters", mock.Anything, run.ID, mock.Anything).Return(nil)
	f.runRepo.On("CreateLog", mock.Anything, mock.Anything).Return(nil)
	f.runRepo.On("UpdateRunStatus", mock.Anything, run.ID, models.RunStatusCompleted, "").Return(nil)

	service.execute(context.Background(), run, models.StrategyProductNumber, models.AlgorithmDifferential)

	f.runRepo.AssertCalled(t, "UpdateRunStatus", mock.Anything, run.ID, models.RunStatusCompleted, "")
	f.runRepo.AssertNumberOfCalls(t, "CreateLog", 3)
}

func TestSyncService_ExecuteMarksRunFailed(t *testing.T) {
	f := newConfigFixture()
	service := newSyncServiceFixture(f)

	run := &models.SyncRun{ID: uuid.New()}

	// distributor strategy with no local order numbers fails fatally
	f.productRepo.On("IdentifierRows", mock.Anything, f.cfg.OrderNumberSource).
		Return([]repository.IdentifierRow{}, nil)

	f.runRepo.On("UpdateRunCounters", mock.Anything, run.ID, mock.Anything).Return(nil)
	f.runRepo.On("CreateLog", mock.Anything, mock.Anything).Return(nil)
	f.runRepo.On("UpdateRunStatus", mock.Anything, run.ID, models.RunStatusFailed, mock.Anything).Return(nil)

	service.execute(context.Background(), run, models.StrategyDistributor, models.AlgorithmDifferential)

	f.runRepo.AssertCalled(t, "UpdateRunStatus", mock.Anything, run.ID, models.RunStatusFailed, mock.Anything)
	f.runRepo.AssertNotCalled(t, "UpdateRunStatus", mock.Anything, run.ID, models.RunStatusCompleted, "")
}

func TestSyncService_MappingStats(t *testing.T) {
	f := newConfigFixture()
	service := newSyncServiceFixture(f)

	f.mappingRepo.On("Count", mock.Anything).Return(int64(1234), nil)

	stats, err := service.MappingStats(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, int64(1234), stats["mappingCount"])
	assert.Equal(t, false, stats["runActive"])
}

func TestSyncService_PurgeMappingCache(t *testing.T) {
	f := newConfigFixture()
	service := newSyncServiceFixture(f)

	f.cacheRepo.On("PurgeAll", mock.Anything).Return(int64(10), nil)
	purged, err := service.PurgeMappingCache(context.Background(), "")
	assert.NoError(t, err)
	assert.Equal(t, int64(10), purged)

	f.cacheRepo.On("PurgeKind", mock.Anything, mock.Anything).Return(int64(3), nil)
	purged, err = service.PurgeMappingCache(context.Background(), "ean")
	assert.NoError(t, err)
	assert.Equal(t, int64(3), purged)
}
