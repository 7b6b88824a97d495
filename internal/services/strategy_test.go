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

func testConfig() *config.Config {
	return &config.Config{
		Strategy:               models.StrategyEanOem,
		Algorithm:              models.AlgorithmDifferential,
		MappingInsertBatchSize: 500,
		LinkInsertBatchSize:    30,
		LookupChunkSize:        100,
		EnableBatchSize:        50,
		EANSource:              repository.IdentifierSource{Kind: repository.SourceColumn, Name: "ean"},
		OEMSource:              repository.IdentifierSource{Kind: repository.SourceColumn, Name: "manufacturer_number"},
		PCDSource:              repository.IdentifierSource{Kind: repository.SourceCustomField, Name: "catalog_sync_pcd"},
		OrderNumberSource:      repository.IdentifierSource{Kind: repository.SourceColumn, Name: "product_number"},
		ImportDefaults: map[models.RelationshipCategory]bool{
			models.CategorySimilar:         true,
			models.CategoryAlternate:       true,
			models.CategoryRelated:         true,
			models.CategoryBundled:         true,
			models.CategoryVariant:         true,
			models.CategoryColorVariant:    true,
			models.CategoryCapacityVariant: true,
		},
		CrossSellingCategories: []models.RelationshipCategory{
			models.CategorySimilar,
			models.CategoryAlternate,
			models.CategoryRelated,
			models.CategoryBundled,
		},
		CrossSellingLimit: 24,
	}
}

func identifierRow(value string) repository.IdentifierRow {
	return repository.IdentifierRow{
		Value:            value,
		ProductID:        uuid.New(),
		ProductVersionID: uuid.New(),
	}
}

func TestNewStrategyRunner_Dispatch(t *testing.T) {
	cfg := testConfig()

	runner, err := NewStrategyRunner(models.StrategyProductNumber, cfg, new(MockMappingRepository), new(MockProductRepository), nil, new(MockCatalogClient))
	assert.NoError(t, err)
	assert.IsType(t, &ProductNumberStrategy{}, runner)

	runner, err = NewStrategyRunner(models.StrategyEanOem, cfg, new(MockMappingRepository), new(MockProductRepository), new(MockMappingCacheRepository), new(MockCatalogClient))
	assert.NoError(t, err)
	assert.IsType(t, &EanOemStrategy{}, runner)

	runner, err = NewStrategyRunner(models.StrategyDistributor, cfg, new(MockMappingRepository), new(MockProductRepository), nil, new(MockCatalogClient))
	assert.NoError(t, err)
	assert.IsType(t, &DistributorStrategy{}, runner)

	_, err = NewStrategyRunner("bogus", cfg, new(MockMappingRepository), new(MockProductRepository), nil, new(MockCatalogClient))
	var unsupported *UnsupportedStrategyError
	assert.ErrorAs(t, err, &unsupported)
}

func TestProductNumberStrategy_SkipsNonNumeric(t *testing.T) {
	mappingRepo := new(MockMappingRepository)
	productRepo := new(MockProductRepository)

	rows := []repository.IdentifierRow{
		identifierRow("12345"),
		identifierRow("AB-123"),
		identifierRow(""),
		identifierRow("67890"),
		identifierRow("12 34"),
	}

	mappingRepo.On("Truncate", mock.Anything).Return(nil)
	productRepo.On("ProductNumberRows", mock.Anything).Return(rows, nil)

	var inserted []models.ProductMapping
	mappingRepo.On("InsertBatch", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		inserted = append(inserted, args.Get(1).([]models.ProductMapping)...)
	}).Return(nil)

	strategy := NewProductNumberStrategy(testConfig(), mappingRepo, productRepo)
	counters, err := strategy.Run(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 2, counters.ProductsMatched)
	assert.Equal(t, 3, counters.ProductsSkipped)
	assert.Equal(t, 2, counters.MappingsInserted)
	assert.Len(t, inserted, 2)
	assert.Equal(t, int64(12345), inserted[0].ExternalID)
	assert.Equal(t, int64(67890), inserted[1].ExternalID)
	mappingRepo.AssertCalled(t, "Truncate", mock.Anything)
}

func TestProductNumberStrategy_SkipsOutOfRangeNumbers(t *testing.T) {
	mappingRepo := new(MockMappingRepository)
	productRepo := new(MockProductRepository)

	rows := []repository.IdentifierRow{
		identifierRow("99999999999999999999999999"),
		identifierRow("42"),
	}

	mappingRepo.On("Truncate", mock.Anything).Return(nil)
	productRepo.On("ProductNumberRows", mock.Anything).Return(rows, nil)
	mappingRepo.On("InsertBatch", mock.Anything, mock.Anything).Return(nil)

	strategy := NewProductNumberStrategy(testConfig(), mappingRepo, productRepo)
	counters, err := strategy.Run(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 1, counters.ProductsMatched)
	assert.Equal(t, 1, counters.ProductsSkipped)
}

func TestMappingBuffer_FlushesAtBatchSize(t *testing.T) {
	mappingRepo := new(MockMappingRepository)

	var batches [][]models.ProductMapping
	mappingRepo.On("InsertBatch", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		rows := args.Get(1).([]models.ProductMapping)
		batch := make([]models.ProductMapping, len(rows))
		copy(batch, rows)
		batches = append(batches, batch)
	}).Return(nil)

	buffer := newMappingBuffer(mappingRepo, 3)
	ctx := context.Background()
	for i := int64(1); i <= 7; i++ {
		err := buffer.add(ctx, i, models.LocalRef{ProductID: uuid.New(), ProductVersionID: uuid.New()})
		assert.NoError(t, err)
	}
	assert.NoError(t, buffer.flush(ctx))

	assert.Equal(t, 7, buffer.inserted)
	assert.Len(t, batches, 3)
	assert.Len(t, batches[0], 3)
	assert.Len(t, batches[1], 3)
	assert.Len(t, batches[2], 1)
}
