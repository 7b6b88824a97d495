package models

import (
	"time"

	"github.com/google/uuid"
)

// ProductMapping maps an external catalog id to one local product revision.
// A single external id may map to several local products (multi-variant
// products share one external id), so ExternalID is indexed but not unique.
// The table is fully rebuilt (truncate + bulk insert) by the active mapping
// strategy on every run.
type ProductMapping struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ExternalID       int64      `gorm:"not null;index:idx_catalog_product_mappings_external" json:"externalId"`
	ProductID        uuid.UUID  `gorm:"type:uuid;not null;index:idx_catalog_product_mappings_product" json:"productId"`
	ProductVersionID uuid.UUID  `gorm:"type:uuid;not null" json:"productVersionId"`
	ParentID         *uuid.UUID `gorm:"type:uuid" json:"parentId,omitempty"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
}

// TableName specifies the table name for ProductMapping
func (ProductMapping) TableName() string {
	return "catalog_product_mappings"
}

// Ref returns the local revision reference carried by this row.
func (m *ProductMapping) Ref() LocalRef {
	return LocalRef{
		ProductID:        m.ProductID,
		ProductVersionID: m.ProductVersionID,
		ParentID:         m.ParentID,
	}
}
