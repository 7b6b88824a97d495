package services

import (
	"context"
	"fmt"

	"catalog-sync-service/internal/clients"
	"catalog-sync-service/internal/config"
	"catalog-sync-service/internal/models"
	"catalog-sync-service/internal/normalize"
	"catalog-sync-service/internal/repository"
	"github.com/sirupsen/logrus"
)

// DistributorStrategy maps local products to external ids through the
// distributor article-number index: every article number of a remote product
// that matches a local order number yields a mapping row.
type DistributorStrategy struct {
	cfg         *config.Config
	mappingRepo repository.MappingRepositoryInterface
	productRepo repository.ProductRepositoryInterface
	client      clients.CatalogClient
}

var _ StrategyRunner = (*DistributorStrategy)(nil)

// NewDistributorStrategy creates a new distributor strategy
func NewDistributorStrategy(
	cfg *config.Config,
	mappingRepo repository.MappingRepositoryInterface,
	productRepo repository.ProductRepositoryInterface,
	client clients.CatalogClient,
) *DistributorStrategy {
	return &DistributorStrategy{
		cfg:         cfg,
		mappingRepo: mappingRepo,
		productRepo: productRepo,
		client:      client,
	}
}

// Run rebuilds the mapping table from the distributor article-number index.
// Finding no local order numbers is fatal and raised before any remote call.
func (s *DistributorStrategy) Run(ctx context.Context) (models.RunCounters, error) {
	var counters models.RunCounters

	rows, err := s.productRepo.IdentifierRows(ctx, s.cfg.OrderNumberSource)
	if err != nil {
		return counters, fmt.Errorf("failed to read local order numbers: %w", err)
	}

	orderMap := make(map[string][]models.LocalRef, len(rows))
	for _, row := range rows {
		key := normalize.OrderNumber(row.Value)
		if key == "" {
			continue
		}
		orderMap[key] = append(orderMap[key], models.LocalRef{
			ProductID:        row.ProductID,
			ProductVersionID: row.ProductVersionID,
			ParentID:         row.ParentID,
		})
	}

	if len(orderMap) == 0 {
		return counters, &NoOrderNumbersError{}
	}

	if err := s.mappingRepo.Truncate(ctx); err != nil {
		return counters, err
	}

	buffer := newMappingBuffer(s.mappingRepo, s.cfg.MappingInsertBatchSize)

	page := 1
	availablePages := 1

	for page <= availablePages {
		result, err := s.client.FetchMatchPage(ctx, clients.MatchDistributor, page)
		if err != nil {
			return counters, err
		}
		availablePages = result.Page.AvailablePages

		for _, product := range result.DistributorProducts {
			for _, distributor := range product.Distributors {
				for _, articleNumber := range distributor.ArticleNumbers {
					refs, ok := orderMap[normalize.OrderNumber(articleNumber)]
					if !ok {
						continue
					}
					for _, ref := range refs {
						if err := buffer.add(ctx, product.ExternalID, ref); err != nil {
							return counters, err
						}
						counters.ProductsMatched++
					}
				}
			}
		}

		page++
	}

	if err := buffer.flush(ctx); err != nil {
		return counters, err
	}
	counters.MappingsInserted = buffer.inserted

	logrus.WithFields(logrus.Fields{
		"orderNumbers": len(orderMap),
		"matched":      counters.ProductsMatched,
		"inserted":     counters.MappingsInserted,
	}).Info("Distributor mapping completed")

	return counters, nil
}
