package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IdentifierSourceKind selects where a local identifier (OEM, EAN, order
// number) is read from.
type IdentifierSourceKind string

const (
	SourceColumn         IdentifierSourceKind = "column"
	SourceCustomField    IdentifierSourceKind = "custom_field"
	SourcePropertyOption IdentifierSourceKind = "property_option"
)

// IdentifierSource names one identifier location: a product column, a custom
// field key, or a property group id.
type IdentifierSource struct {
	Kind IdentifierSourceKind
	Name string
}

// IdentifierRow is one (identifier value, local ref) pair read from the local
// catalog.
type IdentifierRow struct {
	Value            string     `gorm:"column:value"`
	ProductID        uuid.UUID  `gorm:"column:product_id"`
	ProductVersionID uuid.UUID  `gorm:"column:product_version_id"`
	ParentID         *uuid.UUID `gorm:"column:parent_id"`
}

// CategoryPath is a product's category ancestor chain ordered leaf to root.
type CategoryPath struct {
	ProductID uuid.UUID
	Ancestors []uuid.UUID
}

// ProductRepositoryInterface abstracts the local catalog read contract
type ProductRepositoryInterface interface {
	ProductNumberRows(ctx context.Context) ([]IdentifierRow, error)
	IdentifierRows(ctx context.Context, source IdentifierSource) ([]IdentifierRow, error)
	CategoryPaths(ctx context.Context, productIDs []uuid.UUID) ([]CategoryPath, error)
}

// ProductRepository reads product identifiers and category paths from the
// local shop catalog. The catalog tables are owned by the shop; this
// repository never writes them.
type ProductRepository struct {
	db *gorm.DB
}

var _ ProductRepositoryInterface = (*ProductRepository)(nil)

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// allowedColumns guards the column source against interpolating arbitrary
// identifiers into SQL.
var allowedColumns = map[string]bool{
	"product_number":      true,
	"ean":                 true,
	"manufacturer_number": true,
}

// ProductNumberRows reads every product's number with its local ref.
func (r *ProductRepository) ProductNumberRows(ctx context.Context) ([]IdentifierRow, error) {
	var rows []IdentifierRow
	err := r.db.WithContext(ctx).
		Table("products").
		Select("product_number AS value, id AS product_id, version_id AS product_version_id, parent_id").
		Scan(&rows).Error
	return rows, err
}

// IdentifierRows reads (identifier, local ref) pairs from the configured
// source. Rows with empty identifiers are filtered out by the queries.
func (r *ProductRepository) IdentifierRows(ctx context.Context, source IdentifierSource) ([]IdentifierRow, error) {
	var rows []IdentifierRow

	switch source.Kind {
	case SourceColumn:
		if !allowedColumns[source.Name] {
			return nil, fmt.Errorf("unsupported identifier column %q", source.Name)
		}
		err := r.db.WithContext(ctx).
			Table("products").
			Select(source.Name+" AS value, id AS product_id, version_id AS product_version_id, parent_id").
			Where(source.Name + " IS NOT NULL AND " + source.Name + " != ''").
			Scan(&rows).Error
		return rows, err

	case SourceCustomField:
		err := r.db.WithContext(ctx).
			Table("products").
			Select("custom_fields ->> ? AS value, id AS product_id, version_id AS product_version_id, parent_id", source.Name).
			Where("custom_fields ->> ? IS NOT NULL AND custom_fields ->> ? != ''", source.Name, source.Name).
			Scan(&rows).Error
		return rows, err

	case SourcePropertyOption:
		groupID, err := uuid.Parse(source.Name)
		if err != nil {
			return nil, fmt.Errorf("property option source requires a property group id: %w", err)
		}
		err = r.db.WithContext(ctx).
			Table("products p").
			Select("o.name AS value, p.id AS product_id, p.version_id AS product_version_id, p.parent_id").
			Joins("JOIN product_properties pp ON pp.product_id = p.id AND pp.product_version_id = p.version_id").
			Joins("JOIN property_group_options o ON o.id = pp.option_id").
			Where("o.group_id = ? AND o.name != ''", groupID).
			Scan(&rows).Error
		return rows, err

	default:
		return nil, fmt.Errorf("unsupported identifier source kind %q", source.Kind)
	}
}

// categoryTreeRow is the raw scan target for category tree reads. The shop
// stores the root-to-leaf ancestor chain as a JSON array of category ids.
type categoryTreeRow struct {
	ProductID    uuid.UUID `gorm:"column:product_id"`
	CategoryTree []byte    `gorm:"column:category_tree"`
}

// CategoryPaths reads the category ancestor paths for the given products,
// ordered leaf to root.
func (r *ProductRepository) CategoryPaths(ctx context.Context, productIDs []uuid.UUID) ([]CategoryPath, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}

	var raw []categoryTreeRow
	err := r.db.WithContext(ctx).
		Table("products").
		Select("id AS product_id, category_tree").
		Where("id IN ?", productIDs).
		Scan(&raw).Error
	if err != nil {
		return nil, err
	}

	paths := make([]CategoryPath, 0, len(raw))
	for _, row := range raw {
		if len(row.CategoryTree) == 0 {
			paths = append(paths, CategoryPath{ProductID: row.ProductID})
			continue
		}

		var tree []uuid.UUID
		if err := json.Unmarshal(row.CategoryTree, &tree); err != nil {
			return nil, fmt.Errorf("invalid category tree for product %s: %w", row.ProductID, err)
		}

		// stored root first, resolver walks leaf first
		ancestors := make([]uuid.UUID, 0, len(tree))
		for i := len(tree) - 1; i >= 0; i-- {
			ancestors = append(ancestors, tree[i])
		}
		paths = append(paths, CategoryPath{ProductID: row.ProductID, Ancestors: ancestors})
	}

	return paths, nil
}
