package services

import (
	"context"
	"fmt"

	"catalog-sync-service/internal/config"
	"catalog-sync-service/internal/models"
	"catalog-sync-service/internal/repository"
	"github.com/google/uuid"
)

// ImportSettingsResolver decides per product which relationship categories are
// imported. A category-tree override from the most specific ancestor wins;
// products without any override fall back to the global defaults.
type ImportSettingsResolver struct {
	cfg          *config.Config
	productRepo  repository.ProductRepositoryInterface
	settingsRepo repository.SettingsRepositoryInterface

	// overrides holds the resolved settings block per product id, filled by
	// LoadOverridesForProducts.
	overrides map[uuid.UUID]models.JSONB
}

// NewImportSettingsResolver creates a new import settings resolver
func NewImportSettingsResolver(
	cfg *config.Config,
	productRepo repository.ProductRepositoryInterface,
	settingsRepo repository.SettingsRepositoryInterface,
) *ImportSettingsResolver {
	return &ImportSettingsResolver{
		cfg:          cfg,
		productRepo:  productRepo,
		settingsRepo: settingsRepo,
		overrides:    make(map[uuid.UUID]models.JSONB),
	}
}

// LoadOverridesForProducts resolves the category-tree overrides for the given
// products in two bulk reads. Per product the first ancestor (leaf first) with
// an enabled override block wins.
func (r *ImportSettingsResolver) LoadOverridesForProducts(ctx context.Context, productIDs []uuid.UUID) error {
	r.overrides = make(map[uuid.UUID]models.JSONB, len(productIDs))
	if len(productIDs) == 0 {
		return nil
	}

	paths, err := r.productRepo.CategoryPaths(ctx, productIDs)
	if err != nil {
		return fmt.Errorf("failed to load category paths: %w", err)
	}

	categorySet := make(map[uuid.UUID]bool)
	for _, path := range paths {
		for _, categoryID := range path.Ancestors {
			categorySet[categoryID] = true
		}
	}
	categoryIDs := make([]uuid.UUID, 0, len(categorySet))
	for id := range categorySet {
		categoryIDs = append(categoryIDs, id)
	}

	settings, err := r.settingsRepo.SettingsForCategories(ctx, categoryIDs)
	if err != nil {
		return fmt.Errorf("failed to load category import settings: %w", err)
	}
	byCategory := make(map[uuid.UUID]models.JSONB, len(settings))
	for _, setting := range settings {
		byCategory[setting.CategoryID] = setting.Settings
	}

	for _, path := range paths {
		for _, categoryID := range path.Ancestors {
			if block, ok := byCategory[categoryID]; ok {
				r.overrides[path.ProductID] = block
				break
			}
		}
	}

	return nil
}

// IsCategoryEnabled reports whether the given relationship category is
// imported for the product. With an override block a missing key means
// disabled; without one the global defaults apply.
func (r *ImportSettingsResolver) IsCategoryEnabled(category models.RelationshipCategory, productID uuid.UUID) bool {
	if block, ok := r.overrides[productID]; ok {
		enabled, ok := block[string(category)].(bool)
		return ok && enabled
	}
	return r.cfg.ImportDefaults[category]
}
