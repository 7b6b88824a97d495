package repository

import (
	"context"

	"catalog-sync-service/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RelationshipRepositoryInterface abstracts relationship and cross-selling
// persistence for the product-product synchronizer
type RelationshipRepositoryInterface interface {
	DeleteRelationships(ctx context.Context, productID, productVersionID uuid.UUID, category models.RelationshipCategory) (int64, error)
	DeleteRelationshipsForProducts(ctx context.Context, productIDs []uuid.UUID, category models.RelationshipCategory) (int64, error)
	InsertRelationships(ctx context.Context, rows []models.ProductRelationship) error

	FindActiveGroup(ctx context.Context, productID uuid.UUID, category models.RelationshipCategory) (*models.CrossSellingGroup, error)
	CreateGroup(ctx context.Context, group *models.CrossSellingGroup) error
	DeleteGroupAssignments(ctx context.Context, groupID uuid.UUID) (int64, error)
	InsertAssignments(ctx context.Context, rows []models.CrossSellingAssignment) error
}

// RelationshipRepository handles database operations for product
// relationships and cross-selling groups
type RelationshipRepository struct {
	db *gorm.DB
}

var _ RelationshipRepositoryInterface = (*RelationshipRepository)(nil)

// NewRelationshipRepository creates a new relationship repository
func NewRelationshipRepository(db *gorm.DB) *RelationshipRepository {
	return &RelationshipRepository{db: db}
}

// DeleteRelationships removes all rows of one category for one product
// revision.
func (r *RelationshipRepository) DeleteRelationships(ctx context.Context, productID, productVersionID uuid.UUID, category models.RelationshipCategory) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("product_id = ? AND product_version_id = ? AND category = ?", productID, productVersionID, category).
		Delete(&models.ProductRelationship{})
	return res.RowsAffected, res.Error
}

// DeleteRelationshipsForProducts removes all rows of one category for a set
// of products, regardless of version.
func (r *RelationshipRepository) DeleteRelationshipsForProducts(ctx context.Context, productIDs []uuid.UUID, category models.RelationshipCategory) (int64, error) {
	if len(productIDs) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Where("product_id IN ? AND category = ?", productIDs, category).
		Delete(&models.ProductRelationship{})
	return res.RowsAffected, res.Error
}

// InsertRelationships inserts relationship rows. Callers chunk the input.
func (r *RelationshipRepository) InsertRelationships(ctx context.Context, rows []models.ProductRelationship) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// FindActiveGroup returns the active cross-selling group for (product,
// category), or nil when none exists.
func (r *RelationshipRepository) FindActiveGroup(ctx context.Context, productID uuid.UUID, category models.RelationshipCategory) (*models.CrossSellingGroup, error) {
	var group models.CrossSellingGroup
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND category = ? AND active = ?", productID, category, true).
		First(&group).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// CreateGroup creates a new cross-selling group.
func (r *RelationshipRepository) CreateGroup(ctx context.Context, group *models.CrossSellingGroup) error {
	return r.db.WithContext(ctx).Create(group).Error
}

// DeleteGroupAssignments removes the assigned-products list of a group.
func (r *RelationshipRepository) DeleteGroupAssignments(ctx context.Context, groupID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Delete(&models.CrossSellingAssignment{})
	return res.RowsAffected, res.Error
}

// InsertAssignments inserts assignment rows with their explicit positions.
func (r *RelationshipRepository) InsertAssignments(ctx context.Context, rows []models.CrossSellingAssignment) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}
