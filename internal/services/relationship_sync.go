package services

import (
	"context"
	"fmt"

	"catalog-sync-service/internal/clients"
	"catalog-sync-service/internal/config"
	"catalog-sync-service/internal/models"
	"catalog-sync-service/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// crossSellingNames maps relationship categories to the storefront display
// name of their cross-selling group.
var crossSellingNames = map[models.RelationshipCategory]string{
	models.CategorySimilar:         "Similar products",
	models.CategoryAlternate:       "Alternative products",
	models.CategoryRelated:         "Related products",
	models.CategoryBundled:         "Frequently bought together",
	models.CategoryColorVariant:    "Other colors",
	models.CategoryCapacityVariant: "Other capacities",
}

// crossSellingPositions fixes the display order of the groups on a product
// page.
var crossSellingPositions = map[models.RelationshipCategory]int{
	models.CategorySimilar:         1,
	models.CategoryAlternate:       2,
	models.CategoryRelated:         3,
	models.CategoryBundled:         4,
	models.CategoryColorVariant:    5,
	models.CategoryCapacityVariant: 6,
}

// RelationshipSyncService maintains the product-to-product link sets and
// mirrors the configured categories into storefront cross-selling groups.
type RelationshipSyncService struct {
	cfg              *config.Config
	mappingRepo      repository.MappingRepositoryInterface
	relationshipRepo repository.RelationshipRepositoryInterface
	resolver         *ImportSettingsResolver
	client           clients.CatalogClient
}

// NewRelationshipSyncService creates a new relationship sync service
func NewRelationshipSyncService(
	cfg *config.Config,
	mappingRepo repository.MappingRepositoryInterface,
	relationshipRepo repository.RelationshipRepositoryInterface,
	resolver *ImportSettingsResolver,
	client clients.CatalogClient,
) *RelationshipSyncService {
	return &RelationshipSyncService{
		cfg:              cfg,
		mappingRepo:      mappingRepo,
		relationshipRepo: relationshipRepo,
		resolver:         resolver,
		client:           client,
	}
}

// Run rebuilds the relationship sets of every mapped product from the remote
// detail payloads. Per-product failures are counted, not fatal.
func (s *RelationshipSyncService) Run(ctx context.Context) (models.RunCounters, error) {
	var counters models.RunCounters

	mapping, err := s.mappingRepo.All(ctx, false)
	if err != nil {
		return counters, err
	}
	if len(mapping) == 0 {
		logrus.Warn("Relationship sync skipped: mapping table is empty")
		return counters, nil
	}

	externalIDs := make([]int64, 0, len(mapping))
	productIDSet := make(map[uuid.UUID]bool)
	for externalID, refs := range mapping {
		externalIDs = append(externalIDs, externalID)
		for _, ref := range refs {
			productIDSet[ref.ProductID] = true
		}
	}
	productIDs := make([]uuid.UUID, 0, len(productIDSet))
	for id := range productIDSet {
		productIDs = append(productIDs, id)
	}

	if err := s.resolver.LoadOverridesForProducts(ctx, productIDs); err != nil {
		return counters, err
	}

	for start := 0; start < len(externalIDs); start += s.cfg.LookupChunkSize {
		end := start + s.cfg.LookupChunkSize
		if end > len(externalIDs) {
			end = len(externalIDs)
		}

		result, err := s.client.FetchProductList(ctx, externalIDs[start:end], clients.FilterAll)
		if err != nil {
			return counters, err
		}

		for _, entry := range result.Products {
			for _, ref := range mapping[entry.ExternalID] {
				if err := s.syncProduct(ctx, entry, ref, mapping, &counters); err != nil {
					counters.FailedItems++
					logrus.WithError(err).WithFields(logrus.Fields{
						"productId":  ref.ProductID,
						"externalId": entry.ExternalID,
					}).Error("Relationship sync failed for product")
				}
			}
		}
	}

	logrus.WithFields(logrus.Fields{
		"relationshipsInserted": counters.RelationshipsInserted,
		"crossSellingsUpdated":  counters.CrossSellingsUpdated,
		"failedItems":           counters.FailedItems,
	}).Info("Relationship sync completed")

	return counters, nil
}

// syncProduct rebuilds every enabled relationship category of one local
// product revision from its remote detail payload.
func (s *RelationshipSyncService) syncProduct(
	ctx context.Context,
	entry clients.ProductEntry,
	ref models.LocalRef,
	mapping map[int64][]models.LocalRef,
	counters *models.RunCounters,
) error {
	for _, category := range models.AllRelationshipCategories {
		if !s.resolver.IsCategoryEnabled(category, ref.ProductID) {
			continue
		}

		linked := resolveRefs(extractLinkedIDs(entry, category), mapping)
		filtered := linked[:0:0]
		for _, target := range linked {
			if target.ProductID != ref.ProductID {
				filtered = append(filtered, target)
			}
		}
		linked = filtered
		if len(linked) == 0 {
			continue
		}

		deleted, err := s.relationshipRepo.DeleteRelationships(ctx, ref.ProductID, ref.ProductVersionID, category)
		if err != nil {
			return fmt.Errorf("failed to delete %s relationships: %w", category, err)
		}
		counters.RelationshipsDeleted += int(deleted)

		rows := make([]models.ProductRelationship, 0, len(linked))
		for _, target := range linked {
			rows = append(rows, models.ProductRelationship{
				ProductID:              ref.ProductID,
				ProductVersionID:       ref.ProductVersionID,
				LinkedProductID:        target.ProductID,
				LinkedProductVersionID: target.ProductVersionID,
				Category:               category,
			})
		}

		for start := 0; start < len(rows); start += s.cfg.LinkInsertBatchSize {
			end := start + s.cfg.LinkInsertBatchSize
			if end > len(rows) {
				end = len(rows)
			}
			if err := s.relationshipRepo.InsertRelationships(ctx, rows[start:end]); err != nil {
				return fmt.Errorf("failed to insert %s relationships: %w", category, err)
			}
			counters.RelationshipsInserted += end - start
		}

		if s.isCrossSellingCategory(category) {
			if err := s.updateCrossSelling(ctx, ref, category, linked, counters); err != nil {
				return err
			}
		}
	}
	return nil
}

// extractLinkedIDs applies the per-category extraction rules to a remote
// detail payload.
func extractLinkedIDs(entry clients.ProductEntry, category models.RelationshipCategory) []int64 {
	switch category {
	case models.CategorySimilar:
		// union of accessories, shared applicability and all variants
		seen := make(map[int64]bool)
		var ids []int64
		add := func(id int64) {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
		for _, id := range entry.SameAccessories {
			add(id)
		}
		for _, id := range entry.SameApplicationIn {
			add(id)
		}
		for _, variant := range entry.ProductVariants {
			add(variant.ExternalID)
		}
		return ids

	case models.CategoryVariant:
		var ids []int64
		for _, variant := range entry.ProductVariants {
			if variant.SubType == "" {
				ids = append(ids, variant.ExternalID)
			}
		}
		return ids

	case models.CategoryAlternate:
		return entry.AlternateProducts
	case models.CategoryRelated:
		return entry.RelatedProducts
	case models.CategoryBundled:
		return entry.BundledProducts
	case models.CategoryColorVariant:
		return entry.ColorVariants
	case models.CategoryCapacityVariant:
		return entry.CapacityVariants
	default:
		return nil
	}
}

// resolveRefs maps external ids through the mapping table, dropping unresolved
// ids and duplicate local refs.
func resolveRefs(externalIDs []int64, mapping map[int64][]models.LocalRef) []models.LocalRef {
	seen := make(map[uuid.UUID]bool)
	var refs []models.LocalRef
	for _, externalID := range externalIDs {
		for _, ref := range mapping[externalID] {
			if seen[ref.ProductID] {
				continue
			}
			seen[ref.ProductID] = true
			refs = append(refs, ref)
		}
	}
	return refs
}

func (s *RelationshipSyncService) isCrossSellingCategory(category models.RelationshipCategory) bool {
	for _, c := range s.cfg.CrossSellingCategories {
		if c == category {
			return true
		}
	}
	return false
}

// updateCrossSelling mirrors one relationship category into the product's
// storefront cross-selling group. Variant products never own groups; their
// parent carries the storefront surface.
func (s *RelationshipSyncService) updateCrossSelling(
	ctx context.Context,
	ref models.LocalRef,
	category models.RelationshipCategory,
	linked []models.LocalRef,
	counters *models.RunCounters,
) error {
	if ref.ParentID != nil {
		return nil
	}

	group, err := s.relationshipRepo.FindActiveGroup(ctx, ref.ProductID, category)
	if err != nil {
		return fmt.Errorf("failed to look up cross-selling group: %w", err)
	}
	if group == nil {
		group = &models.CrossSellingGroup{
			ID:               uuid.New(),
			ProductID:        ref.ProductID,
			ProductVersionID: ref.ProductVersionID,
			Category:         category,
			Name:             crossSellingNames[category],
			Position:         crossSellingPositions[category],
			Limit:            s.cfg.CrossSellingLimit,
			Active:           true,
		}
		if err := s.relationshipRepo.CreateGroup(ctx, group); err != nil {
			return fmt.Errorf("failed to create cross-selling group: %w", err)
		}
	}

	if _, err := s.relationshipRepo.DeleteGroupAssignments(ctx, group.ID); err != nil {
		return fmt.Errorf("failed to clear cross-selling assignments: %w", err)
	}

	limit := len(linked)
	if s.cfg.CrossSellingLimit > 0 && limit > s.cfg.CrossSellingLimit {
		limit = s.cfg.CrossSellingLimit
	}
	assignments := make([]models.CrossSellingAssignment, 0, limit)
	for i := 0; i < limit; i++ {
		assignments = append(assignments, models.CrossSellingAssignment{
			GroupID:          group.ID,
			ProductID:        linked[i].ProductID,
			ProductVersionID: linked[i].ProductVersionID,
			Position:         i + 1,
		})
	}
	if err := s.relationshipRepo.InsertAssignments(ctx, assignments); err != nil {
		return fmt.Errorf("failed to insert cross-selling assignments: %w", err)
	}

	counters.CrossSellingsUpdated++
	return nil
}

// Unlink removes the relationship rows of the given products for every
// category the resolver enables for them. Used before a re-import.
func (s *RelationshipSyncService) Unlink(ctx context.Context, productIDs []uuid.UUID) (int64, error) {
	if len(productIDs) == 0 {
		return 0, nil
	}
	if err := s.resolver.LoadOverridesForProducts(ctx, productIDs); err != nil {
		return 0, err
	}

	var total int64
	for _, category := range models.AllRelationshipCategories {
		var scoped []uuid.UUID
		for _, productID := range productIDs {
			if s.resolver.IsCategoryEnabled(category, productID) {
				scoped = append(scoped, productID)
			}
		}
		if len(scoped) == 0 {
			continue
		}
		n, err := s.relationshipRepo.DeleteRelationshipsForProducts(ctx, scoped, category)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}
