package models

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/google/uuid"
)

// JSONB custom type for PostgreSQL JSONB
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = make(map[string]interface{})
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, j)
}

func (j JSONB) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}(j))
}

func (j *JSONB) UnmarshalJSON(data []byte) error {
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*j = JSONB(m)
	return nil
}

// LocalRef identifies a specific revision of a local catalog product.
// ParentID is set iff the product is a variant of a configurable parent.
type LocalRef struct {
	ProductID        uuid.UUID  `json:"productId"`
	ProductVersionID uuid.UUID  `json:"productVersionId"`
	ParentID         *uuid.UUID `json:"parentId,omitempty"`
}

// RelationshipCategory identifies one of the product-to-product link sets
// maintained by the relationship synchronizer.
type RelationshipCategory string

const (
	CategorySimilar         RelationshipCategory = "similar"
	CategoryAlternate       RelationshipCategory = "alternate"
	CategoryRelated         RelationshipCategory = "related"
	CategoryBundled         RelationshipCategory = "bundled"
	CategoryVariant         RelationshipCategory = "variant"
	CategoryColorVariant    RelationshipCategory = "color_variant"
	CategoryCapacityVariant RelationshipCategory = "capacity_variant"
)

// AllRelationshipCategories lists every category in processing order.
var AllRelationshipCategories = []RelationshipCategory{
	CategorySimilar,
	CategoryAlternate,
	CategoryRelated,
	CategoryBundled,
	CategoryColorVariant,
	CategoryCapacityVariant,
	CategoryVariant,
}
