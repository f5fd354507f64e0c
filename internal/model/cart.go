package model

import "github.com/shopspring/decimal"

// CartItem is one variant line of a user's cart.
type CartItem struct {
	ID              int64 `json:"id" db:"id"`
	CartID          int64 `json:"cartId" db:"cart_id"`
	UserID          int64 `json:"-" db:"user_id"`
	ProductDetailID int64 `json:"productDetailId" db:"product_detail_id"`
	Quantity        int   `json:"quantity" db:"quantity"`
}

// CartItemView is a cart line with its variant and line total.
type CartItemView struct {
	CartItem
	ProductName string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Size        *string         `json:"size,omitempty"`
	Color       *string         `json:"color,omitempty"`
	ImageURL    *string         `json:"imageUrl,omitempty"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
}

// CartView is a user's cart. An empty cart has no items and a zero total.
type CartView struct {
	UserID     int64           `json:"userId"`
	Items      []CartItemView  `json:"cartItems"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

// AddCartItemRequest puts quantity units of a variant into the cart.
type AddCartItemRequest struct {
	ProductDetailID int64 `json:"productDetailId"`
	Quantity        int   `json:"quantity"`
}

// UpdateCartItemRequest sets the quantity of a cart line. Quantity 0
// removes the line; NewProductDetailID swaps it to another variant.
type UpdateCartItemRequest struct {
	Quantity           int    `json:"quantity"`
	NewProductDetailID *int64 `json:"newProductDetailId,omitempty"`
}
