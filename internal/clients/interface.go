package clients

import (
	"context"
	"fmt"
)

// MatchKind selects which identifier index a match page is requested from.
type MatchKind string

const (
	MatchEAN         MatchKind = "ean"
	MatchOEM         MatchKind = "oem"
	MatchPCD         MatchKind = "pcd"
	MatchDistributor MatchKind = "distributor"
)

// ProductListFilter narrows a product list fetch.
type ProductListFilter string

const (
	// FilterApplicationIn returns products with their device applicability
	// lists only.
	FilterApplicationIn ProductListFilter = "application_in"
	// FilterAll returns the full detail payload including the relationship
	// list fields.
	FilterAll ProductListFilter = "all"
)

// CatalogClient is the paginated fetch contract the reconciliation engine
// consumes. Pagination is strictly sequential: page N+1 can only be requested
// once page N reported the available page count.
type CatalogClient interface {
	// FetchMatchPage fetches one page of the identifier match index.
	FetchMatchPage(ctx context.Context, kind MatchKind, page int) (*MatchPageResult, error)

	// FetchProductList fetches product payloads for the given external ids.
	FetchProductList(ctx context.Context, externalIDs []int64, filter ProductListFilter) (*ProductListResult, error)
}

// PageInfo carries the remote pagination metadata. AvailablePages is the
// contract-critical field; a response without it is unusable.
type PageInfo struct {
	CurrentPage    int `json:"current_page"`
	AvailablePages int `json:"available_pages"`
}

// Match is one identifier match row: the external product id and the raw
// identifier values the remote indexed for it.
type Match struct {
	ExternalID int64    `json:"products_id"`
	Values     []string `json:"values"`
}

// DistributorEntry is one distributor block nested in a distributor match
// page product.
type DistributorEntry struct {
	Name           string   `json:"name"`
	ArticleNumbers []string `json:"article_numbers"`
}

// DistributorProduct is one product row of a distributor match page.
type DistributorProduct struct {
	ExternalID   int64              `json:"products_id"`
	Distributors []DistributorEntry `json:"distributors"`
}

// MatchPageResult is one page of FetchMatchPage output. Matches is populated
// for ean/oem/pcd pages, DistributorProducts for distributor pages.
type MatchPageResult struct {
	Page                PageInfo
	Matches             []Match
	DistributorProducts []DistributorProduct
}

// ProductVariant is one entry of a product's variant list. SubType is empty
// for plain variants and set for color/capacity variants.
type ProductVariant struct {
	ExternalID int64  `json:"products_id"`
	SubType    string `json:"sub_type,omitempty"`
}

// ProductEntry is one product payload of a product list response.
type ProductEntry struct {
	ExternalID int64 `json:"products_id"`

	// Device applicability (external device ids)
	ApplicationIn []int64 `json:"product_application_in,omitempty"`

	// Relationship list fields
	SameAccessories   []int64          `json:"product_same_accessories,omitempty"`
	SameApplicationIn []int64          `json:"product_same_application_in,omitempty"`
	ProductVariants   []ProductVariant `json:"product_variants,omitempty"`
	AlternateProducts []int64          `json:"product_alternates,omitempty"`
	RelatedProducts   []int64          `json:"product_related,omitempty"`
	BundledProducts   []int64          `json:"product_bundles,omitempty"`
	ColorVariants     []int64          `json:"product_color_variants,omitempty"`
	CapacityVariants  []int64          `json:"product_capacity_variants,omitempty"`
}

// ProductListResult is the output of FetchProductList.
type ProductListResult struct {
	Page     PageInfo
	Products []ProductEntry
}

// MissingPageCountError reports a remote response that lacks the
// available_pages metadata. Without the true page count no correct
// incremental state can be derived, so callers treat it as fatal.
type MissingPageCountError struct {
	Endpoint      string
	RemoteMessage string
}

func (e *MissingPageCountError) Error() string {
	if e.RemoteMessage != "" {
		return fmt.Sprintf("response from %s is missing available_pages: %s", e.Endpoint, e.RemoteMessage)
	}
	return fmt.Sprintf("response from %s is missing available_pages", e.Endpoint)
}
