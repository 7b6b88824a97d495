package services

import (
	"context"
	"strconv"

	"catalog-sync-service/internal/config"
	"catalog-sync-service/internal/models"
	"catalog-sync-service/internal/normalize"
	"catalog-sync-service/internal/repository"
	"github.com/sirupsen/logrus"
)

// ProductNumberStrategy maps purely numeric local product numbers directly to
// external catalog ids. No remote calls are made; this is the fastest path
// for shops whose product numbers mirror the remote ids.
type ProductNumberStrategy struct {
	cfg         *config.Config
	mappingRepo repository.MappingRepositoryInterface
	productRepo repository.ProductRepositoryInterface
}

var _ StrategyRunner = (*ProductNumberStrategy)(nil)

// NewProductNumberStrategy creates a new product number strategy
func NewProductNumberStrategy(
	cfg *config.Config,
	mappingRepo repository.MappingRepositoryInterface,
	productRepo repository.ProductRepositoryInterface,
) *ProductNumberStrategy {
	return &ProductNumberStrategy{
		cfg:         cfg,
		mappingRepo: mappingRepo,
		productRepo: productRepo,
	}
}

// Run rebuilds the mapping table from numeric product numbers.
func (s *ProductNumberStrategy) Run(ctx context.Context) (models.RunCounters, error) {
	var counters models.RunCounters

	if err := s.mappingRepo.Truncate(ctx); err != nil {
		return counters, err
	}

	rows, err := s.productRepo.ProductNumberRows(ctx)
	if err != nil {
		return counters, err
	}

	buffer := newMappingBuffer(s.mappingRepo, s.cfg.MappingInsertBatchSize)
	for _, row := range rows {
		if !normalize.IsNumeric(row.Value) {
			counters.ProductsSkipped++
			continue
		}
		externalID, err := strconv.ParseInt(row.Value, 10, 64)
		if err != nil {
			// numeric but out of int64 range
			counters.ProductsSkipped++
			continue
		}

		ref := models.LocalRef{
			ProductID:        row.ProductID,
			ProductVersionID: row.ProductVersionID,
			ParentID:         row.ParentID,
		}
		if err := buffer.add(ctx, externalID, ref); err != nil {
			return counters, err
		}
		counters.ProductsMatched++
	}

	if err := buffer.flush(ctx); err != nil {
		return counters, err
	}
	counters.MappingsInserted = buffer.inserted

	logrus.WithFields(logrus.Fields{
		"matched":  counters.ProductsMatched,
		"skipped":  counters.ProductsSkipped,
		"inserted": counters.MappingsInserted,
	}).Info("Product number mapping completed")

	return counters, nil
}
