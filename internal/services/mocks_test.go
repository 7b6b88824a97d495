package services

import (
	"context"

	"catalog-sync-service/internal/clients"
	"catalog-sync-service/internal/models"
	"catalog-sync-service/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockMappingRepository is a mock implementation of MappingRepositoryInterface
type MockMappingRepository struct {
	mock.Mock
}

var _ repository.MappingRepositoryInterface = (*MockMappingRepository)(nil)

func (m *MockMappingRepository) Truncate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockMappingRepository) InsertBatch(ctx context.Context, rows []models.ProductMapping) error {
	args := m.Called(ctx, rows)
	return args.Error(0)
}

func (m *MockMappingRepository) All(ctx context.Context, forceReload bool) (map[int64][]models.LocalRef, error) {
	args := m.Called(ctx, forceReload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64][]models.LocalRef), args.Error(1)
}

func (m *MockMappingRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockProductRepository is a mock implementation of ProductRepositoryInterface
type MockProductRepository struct {
	mock.Mock
}

var _ repository.ProductRepositoryInterface = (*MockProductRepository)(nil)

func (m *MockProductRepository) ProductNumberRows(ctx context.Context) ([]repository.IdentifierRow, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.IdentifierRow), args.Error(1)
}

func (m *MockProductRepository) IdentifierRows(ctx context.Context, source repository.IdentifierSource) ([]repository.IdentifierRow, error) {
	args := m.Called(ctx, source)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.IdentifierRow), args.Error(1)
}

func (m *MockProductRepository) CategoryPaths(ctx context.Context, productIDs []uuid.UUID) ([]repository.CategoryPath, error) {
	args := m.Called(ctx, productIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.CategoryPath), args.Error(1)
}

// MockMappingCacheRepository is a mock implementation of
// MappingCacheRepositoryInterface
type MockMappingCacheRepository struct {
	mock.Mock
}

var _ repository.MappingCacheRepositoryInterface = (*MockMappingCacheRepository)(nil)

func (m *MockMappingCacheRepository) Entries(ctx context.Context, kind clients.MatchKind) (map[int64][]models.LocalRef, error) {
	args := m.Called(ctx, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64][]models.LocalRef), args.Error(1)
}

func (m *MockMappingCacheRepository) Put(ctx context.Context, kind clients.MatchKind, externalID int64, refs []models.LocalRef) error {
	args := m.Called(ctx, kind, externalID, refs)
	return args.Error(0)
}

func (m *MockMappingCacheRepository) MarkComplete(ctx context.Context, kind clients.MatchKind) error {
	args := m.Called(ctx, kind)
	return args.Error(0)
}

func (m *MockMappingCacheRepository) IsComplete(ctx context.Context, kind clients.MatchKind) (bool, error) {
	args := m.Called(ctx, kind)
	return args.Bool(0), args.Error(1)
}

func (m *MockMappingCacheRepository) PurgeKind(ctx context.Context, kind clients.MatchKind) (int64, error) {
	args := m.Called(ctx, kind)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMappingCacheRepository) PurgeAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockDeviceRepository is a mock implementation of DeviceRepositoryInterface
type MockDeviceRepository struct {
	mock.Mock
}

var _ repository.DeviceRepositoryInterface = (*MockDeviceRepository)(nil)

func (m *MockDeviceRepository) ByWSIDs(ctx context.Context, wsIDs []int64) ([]models.Device, error) {
	args := m.Called(ctx, wsIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Device), args.Error(1)
}

func (m *MockDeviceRepository) EnableDevicesByWSIDs(ctx context.Context, wsIDs []int64) (int64, error) {
	args := m.Called(ctx, wsIDs)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDeviceRepository) EnableDevicesByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDeviceRepository) DisableAllDevices(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDeviceRepository) DisableDevicesNotIn(ctx context.Context, ids []uuid.UUID) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDeviceRepository) EnableBrandsByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDeviceRepository) DisableAllBrands(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDeviceRepository) DisableBrandsNotIn(ctx context.Context, ids []uuid.UUID) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDeviceRepository) EnableSeriesByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDeviceRepository) DisableAllSeries(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDeviceRepository) DisableSeriesNotIn(ctx context.Context, ids []uuid.UUID) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDeviceRepository) EnableTypesByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDeviceRepository) DisableAllTypes(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDeviceRepository) DisableTypesNotIn(ctx context.Context, ids []uuid.UUID) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDeviceRepository) DeleteAllLinks(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDeviceRepository) DeleteLinksByProductIDs(ctx context.Context, productIDs []uuid.UUID) (int64, error) {
	args := m.Called(ctx, productIDs)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDeviceRepository) InsertLinks(ctx context.Context, links []models.DeviceProductLink, upsert bool) error {
	args := m.Called(ctx, links, upsert)
	return args.Error(0)
}

// MockRelationshipRepository is a mock implementation of
// RelationshipRepositoryInterface
type MockRelationshipRepository struct {
	mock.Mock
}

var _ repository.RelationshipRepositoryInterface = (*MockRelationshipRepository)(nil)

func (m *MockRelationshipRepository) DeleteRelationships(ctx context.Context, productID, productVersionID uuid.UUID, category models.RelationshipCategory) (int64, error) {
	args := m.Called(ctx, productID, productVersionID, category)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRelationshipRepository) DeleteRelationshipsForProducts(ctx context.Context, productIDs []uuid.UUID, category models.RelationshipCategory) (int64, error) {
	args := m.Called(ctx, productIDs, category)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRelationshipRepository) InsertRelationships(ctx context.Context, rows []models.ProductRelationship) error {
	args := m.Called(ctx, rows)
	return args.Error(0)
}

func (m *MockRelationshipRepository) FindActiveGroup(ctx context.Context, productID uuid.UUID, category models.RelationshipCategory) (*models.CrossSellingGroup, error) {
	args := m.Called(ctx, productID, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CrossSellingGroup), args.Error(1)
}

func (m *MockRelationshipRepository) CreateGroup(ctx context.Context, group *models.CrossSellingGroup) error {
	args := m.Called(ctx, group)
	return args.Error(0)
}

func (m *MockRelationshipRepository) DeleteGroupAssignments(ctx context.Context, groupID uuid.UUID) (int64, error) {
	args := m.Called(ctx, groupID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRelationshipRepository) InsertAssignments(ctx context.Context, rows []models.CrossSellingAssignment) error {
	args := m.Called(ctx, rows)
	return args.Error(0)
}

// MockSettingsRepository is a mock implementation of SettingsRepositoryInterface
type MockSettingsRepository struct {
	mock.Mock
}

var _ repository.SettingsRepositoryInterface = (*MockSettingsRepository)(nil)

func (m *MockSettingsRepository) SettingsForCategories(ctx context.Context, categoryIDs []uuid.UUID) ([]models.CategoryImportSetting, error) {
	args := m.Called(ctx, categoryIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CategoryImportSetting), args.Error(1)
}

// MockRunRepository is a mock implementation of RunRepositoryInterface
type MockRunRepository struct {
	mock.Mock
}

var _ repository.RunRepositoryInterface = (*MockRunRepository)(nil)

func (m *MockRunRepository) CreateRun(ctx context.Context, run *models.SyncRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockRunRepository) GetRunByID(ctx context.Context, id uuid.UUID) (*models.SyncRun, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SyncRun), args.Error(1)
}

func (m *MockRunRepository) ListRuns(ctx context.Context, opts repository.RunListOptions) ([]models.SyncRun, int64, error) {
	args := m.Called(ctx, opts)
	return args.Get(0).([]models.SyncRun), args.Get(1).(int64), args.Error(2)
}

func (m *MockRunRepository) UpdateRunStatus(ctx context.Context, id uuid.UUID, status models.RunStatus, errorMessage string) error {
	args := m.Called(ctx, id, status, errorMessage)
	return args.Error(0)
}

func (m *MockRunRepository) UpdateRunCounters(ctx context.Context, id uuid.UUID, counters models.RunCounters) error {
	args := m.Called(ctx, id, counters)
	return args.Error(0)
}

func (m *MockRunRepository) CreateLog(ctx context.Context, log *models.SyncRunLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockRunRepository) GetRunLogs(ctx context.Context, runID uuid.UUID, opts repository.LogListOptions) ([]models.SyncRunLog, error) {
	args := m.Called(ctx, runID, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SyncRunLog), args.Error(1)
}

// MockCatalogClient is a mock implementation of clients.CatalogClient
type MockCatalogClient struct {
	mock.Mock
}

var _ clients.CatalogClient = (*MockCatalogClient)(nil)

func (m *MockCatalogClient) FetchMatchPage(ctx context.Context, kind clients.MatchKind, page int) (*clients.MatchPageResult, error) {
	args := m.Called(ctx, kind, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clients.MatchPageResult), args.Error(1)
}

func (m *MockCatalogClient) FetchProductList(ctx context.Context, externalIDs []int64, filter clients.ProductListFilter) (*clients.ProductListResult, error) {
	args := m.Called(ctx, externalIDs, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clients.ProductListResult), args.Error(1)
}
