package services

import (
	"context"

	"catalog-sync-service/internal/clients"
	"catalog-sync-service/internal/config"
	"catalog-sync-service/internal/models"
	"catalog-sync-service/internal/repository"
)

// UnsupportedStrategyError is returned when the configured mapping strategy
// is unknown
type UnsupportedStrategyError struct {
	Strategy string
}

func (e *UnsupportedStrategyError) Error() string {
	return "unsupported mapping strategy: " + e.Strategy
}

// NoOrderNumbersError is returned when the distributor strategy finds no
// local order numbers to match against. It is raised before any remote call.
type NoOrderNumbersError struct{}

func (e *NoOrderNumbersError) Error() string {
	return "no local order numbers available for distributor mapping"
}

// StrategyRunner rebuilds the mapping table from local catalog data plus
// remote lookups. Exactly one runner is active per run.
type StrategyRunner interface {
	Run(ctx context.Context) (models.RunCounters, error)
}

// mappingBuffer accumulates mapping rows and flushes them to the store in
// bounded batches.
type mappingBuffer struct {
	repo      repository.MappingRepositoryInterface
	batchSize int
	rows      []models.ProductMapping
	inserted  int
}

func newMappingBuffer(repo repository.MappingRepositoryInterface, batchSize int) *mappingBuffer {
	if batchSize <= 0 {
		batchSize = 500
	}
	return &mappingBuffer{repo: repo, batchSize: batchSize}
}

// add queues one mapping row, flushing when the batch is full.
func (b *mappingBuffer) add(ctx context.Context, externalID int64, ref models.LocalRef) error {
	b.rows = append(b.rows, models.ProductMapping{
		ExternalID:       externalID,
		ProductID:        ref.ProductID,
		ProductVersionID: ref.ProductVersionID,
		ParentID:         ref.ParentID,
	})
	if len(b.rows) >= b.batchSize {
		return b.flush(ctx)
	}
	return nil
}

// flush writes queued rows to the store.
func (b *mappingBuffer) flush(ctx context.Context) error {
	if len(b.rows) == 0 {
		return nil
	}
	if err := b.repo.InsertBatch(ctx, b.rows); err != nil {
		return err
	}
	b.inserted += len(b.rows)
	b.rows = b.rows[:0]
	return nil
}

// NewStrategyRunner resolves the configured strategy to its runner.
func NewStrategyRunner(
	strategy models.MappingStrategy,
	cfg *config.Config,
	mappingRepo repository.MappingRepositoryInterface,
	productRepo repository.ProductRepositoryInterface,
	cacheRepo repository.MappingCacheRepositoryInterface,
	client clients.CatalogClient,
) (StrategyRunner, error) {
	switch strategy {
	case models.StrategyProductNumber:
		return NewProductNumberStrategy(cfg, mappingRepo, productRepo), nil
	case models.StrategyEanOem:
		return NewEanOemStrategy(cfg, mappingRepo, productRepo, cacheRepo, client), nil
	case models.StrategyDistributor:
		return NewDistributorStrategy(cfg, mappingRepo, productRepo, client), nil
	default:
		return nil, &UnsupportedStrategyError{Strategy: string(strategy)}
	}
}
