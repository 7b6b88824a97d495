package models

import (
	"time"

	"github.com/google/uuid"
)

// ProductRelationship is one directional product-to-product link. Symmetry,
// where present, comes from the remote data listing both directions.
type ProductRelationship struct {
	ProductID              uuid.UUID            `gorm:"type:uuid;primaryKey" json:"productId"`
	ProductVersionID       uuid.UUID            `gorm:"type:uuid;primaryKey" json:"productVersionId"`
	LinkedProductID        uuid.UUID            `gorm:"type:uuid;primaryKey" json:"linkedProductId"`
	LinkedProductVersionID uuid.UUID            `gorm:"type:uuid;primaryKey" json:"linkedProductVersionId"`
	Category               RelationshipCategory `gorm:"type:varchar(50);primaryKey" json:"category"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
}

// TableName specifies the table name for ProductRelationship
func (ProductRelationship) TableName() string {
	return "catalog_product_relationships"
}

// CrossSellingGroup mirrors one relationship category of one product into the
// storefront. At most one active group per (product, category); variant
// products never own a group.
type CrossSellingGroup struct {
	ID               uuid.UUID            `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ProductID        uuid.UUID            `gorm:"type:uuid;not null;index:idx_catalog_cross_sellings_product" json:"productId"`
	ProductVersionID uuid.UUID            `gorm:"type:uuid;not null" json:"productVersionId"`
	Category         RelationshipCategory `gorm:"type:varchar(50);not null;index:idx_catalog_cross_sellings_category" json:"category"`
	Name             string               `gorm:"type:varchar(255);not null" json:"name"`
	Position         int                  `gorm:"not null;default:1" json:"position"`
	Limit            int                  `gorm:"column:item_limit;not null;default:24" json:"limit"`
	Active           bool                 `gorm:"not null;default:true" json:"active"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updatedAt"`

	Assignments []CrossSellingAssignment `gorm:"foreignKey:GroupID" json:"assignments,omitempty"`
}

// TableName specifies the table name for CrossSellingGroup
func (CrossSellingGroup) TableName() string {
	return "catalog_cross_sellings"
}

// CrossSellingAssignment is one ordered entry of a cross-selling group.
// Positions start at 1.
type CrossSellingAssignment struct {
	GroupID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"groupId"`
	ProductID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"productId"`
	ProductVersionID uuid.UUID `gorm:"type:uuid;not null" json:"productVersionId"`
	Position         int       `gorm:"not null" json:"position"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
}

// TableName specifies the table name for CrossSellingAssignment
func (CrossSellingAssignment) TableName() string {
	return "catalog_cross_selling_products"
}

// CategoryImportSetting is a per-category-tree-node override of which
// relationship categories are imported for products under that node. Settings
// maps category option name to a boolean.
type CategoryImportSetting struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CategoryID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_catalog_category_import_settings_category" json:"categoryId"`
	Enabled    bool      `gorm:"not null;default:false" json:"enabled"`
	Settings   JSONB     `gorm:"type:jsonb;default:'{}'" json:"settings"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// TableName specifies the table name for CategoryImportSetting
func (CategoryImportSetting) TableName() string {
	return "catalog_category_import_settings"
}
