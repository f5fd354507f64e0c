package service

import (
	"context"

	"storefront/internal/model"
	"storefront/internal/outbox"
	"storefront/internal/pricing"
	"storefront/internal/voucher"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ProductService defines catalogue reads.
type ProductService interface {
	// List returns one page of products matching q.
	List(ctx context.Context, q model.ProductQuery) (*model.ProductPage, error)

	// GetByID returns a product with its variants.
	GetByID(ctx context.Context, id int64) (*model.Product, error)

	// ListByCategoryName lists products in the named category or any of
	// its descendants.
	ListByCategoryName(ctx context.Context, name string, q model.ProductQuery) (*model.ProductPage, error)
}

// OrderService defines checkout and order management.
type OrderService interface {
	// CreateOrder prices and persists an order for userID.
	CreateOrder(ctx context.Context, userID int64, req *model.OrderRequest) (*model.OrderResponse, error)

	// CalculateOrderTotal prices a prospective order without persisting anything.
	CalculateOrderTotal(ctx context.Context, userID int64, req *model.CalculateOrderRequest) (*model.OrderTotalResponse, error)

	// UpdateStatus moves an order to status and stamps the matching timestamp.
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) (*model.OrderResponse, error)

	// GetByID returns one of userID's orders.
	GetByID(ctx context.Context, orderID, userID int64) (*model.OrderResponse, error)

	// ListByUser returns userID's orders, newest first.
	ListByUser(ctx context.Context, userID int64) ([]model.OrderResponse, error)

	// ShippingFee estimates the shipping fee to an address.
	ShippingFee(ctx context.Context, shippingAddressID int64) (*model.ShippingFeeResponse, error)
}

// AddressBookService manages a user's shipping addresses. Addresses of
// other users are forbidden.
type AddressBookService interface {
	Create(ctx context.Context, userID int64, req *model.ShippingAddressRequest) (*model.ShippingAddressView, error)
	List(ctx context.Context, userID int64) ([]model.ShippingAddressView, error)
	Get(ctx context.Context, userID, id int64) (*model.ShippingAddressView, error)
	Update(ctx context.Context, userID, id int64, req *model.UpdateShippingAddressRequest) (*model.ShippingAddressView, error)
	Delete(ctx context.Context, userID, id int64) error
}

// CartService manages a user's shopping cart.
type CartService interface {
	// Get returns the cart with line and grand totals.
	Get(ctx context.Context, userID int64) (*model.CartView, error)

	// AddItem merges units of a variant into the cart.
	AddItem(ctx context.Context, userID int64, req *model.AddCartItemRequest) (*model.CartView, error)

	// UpdateItem changes a line's quantity or variant; quantity 0 removes it.
	UpdateItem(ctx context.Context, userID, itemID int64, req *model.UpdateCartItemRequest) (*model.CartView, error)

	// RemoveItem deletes a line.
	RemoveItem(ctx context.Context, userID, itemID int64) error
}

// AddressResolver resolves a shipping address with its ward, district and city.
type AddressResolver interface {
	Resolve(ctx context.Context, shippingAddressID int64) (*model.ShippingAddressView, error)
}

// ShippingEstimator estimates shipping fees; it never fails.
type ShippingEstimator interface {
	EstimateShippingFee(ctx context.Context, shippingAddressID int64) pricing.Estimate

	// EstimateForAddress prices an address already loaded through
	// AddressResolver, passing on the error Resolve returned with it.
	EstimateForAddress(view *model.ShippingAddressView, resolveErr error) pricing.Estimate
}

// VoucherLedger validates and redeems vouchers.
type VoucherLedger interface {
	Validate(ctx context.Context, code string, userID int64, orderAmount, shippingFee decimal.Decimal) (voucher.ValidationResult, error)
	Apply(ctx context.Context, code string, userID int64, orderID *int64) (*model.VoucherUsage, error)
}

// EventAppender writes outbox events inside a transaction.
type EventAppender interface {
	Append(ctx context.Context, tx pgx.Tx, e outbox.Event) error
}

// CategoryExpander resolves a category name to the ids it covers.
type CategoryExpander interface {
	DescendantsByName(ctx context.Context, name string) (*model.Category, []int64, error)
}
