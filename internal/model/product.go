package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalogue entry grouping purchasable variants.
type Product struct {
	ID          int64            `json:"id" db:"id"`
	Name        string           `json:"name" db:"name"`
	Description string           `json:"description" db:"description"`
	CreatedAt   time.Time        `json:"createdAt" db:"created_at"`
	MinPrice    decimal.Decimal  `json:"minPrice" db:"min_price"`
	MaxPrice    decimal.Decimal  `json:"maxPrice" db:"max_price"`
	TotalStock  int              `json:"totalStock" db:"total_stock"`
	Variants    []ProductVariant `json:"productDetails"`
}

// ProductVariant is a purchasable SKU of a product with its own price and stock.
type ProductVariant struct {
	ID          int64           `json:"id" db:"id"`
	ProductID   int64           `json:"productId" db:"product_id"`
	ProductName string          `json:"name" db:"product_name"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Stock       int             `json:"stock" db:"stock"`
	Size        *string         `json:"size,omitempty" db:"size"`
	Color       *string         `json:"color,omitempty" db:"color"`
	ImageURL    *string         `json:"imageUrl,omitempty" db:"image_url"`
}

// Product sort orders accepted by ProductQuery.
const (
	SortPriceAsc  = "priceAsc"
	SortPriceDesc = "priceDesc"
	SortNewest    = "newest"
)

// ProductQuery filters a catalogue listing. Zero values disable a filter.
type ProductQuery struct {
	CategoryIDs []int64
	MinPrice    decimal.NullDecimal
	MaxPrice    decimal.NullDecimal
	Colors      []string
	Sizes       []string
	InStock     *bool
	SortBy      string
	Limit       int
	Offset      int
}

// ProductPage is one page of a filtered listing.
type ProductPage struct {
	Products      []Product `json:"products"`
	TotalProducts int       `json:"totalProducts"`
}

// Category is a node of the category forest.
type Category struct {
	ID       int64  `json:"id" db:"id"`
	Name     string `json:"name" db:"name"`
	ParentID *int64 `json:"parentId" db:"parent_id"`
}

// CategoryNode is a category with its children attached.
type CategoryNode struct {
	Category
	Children []*CategoryNode `json:"children"`
}
