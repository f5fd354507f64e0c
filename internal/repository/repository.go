package repository

import (
	"context"
	"time"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5"
)

// Lookups that find nothing return a nil entity and a nil error; callers
// decide whether absence is an error.

// TxManager starts database transactions.
type TxManager interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)
}

// AddressRepository defines data access for the address hierarchy.
type AddressRepository interface {
	// ListCities returns every top-level node ordered by code.
	ListCities(ctx context.Context) ([]model.AddressNode, error)

	// ListChildren returns the nodes one level below the given parent, ordered by code.
	ListChildren(ctx context.Context, parentLevel model.AddressLevel, parentCode int) ([]model.AddressNode, error)

	// GetNode retrieves one node of the given level.
	GetNode(ctx context.Context, level model.AddressLevel, code int) (*model.AddressNode, error)

	// GetShippingAddress retrieves a user's shipping address by id.
	GetShippingAddress(ctx context.Context, id int64) (*model.ShippingAddress, error)

	// UpsertAll inserts or renames the given nodes within tx. Existing nodes
	// absent from the input are kept so that shipping addresses stay valid.
	UpsertAll(ctx context.Context, tx pgx.Tx, cities, districts, wards []model.AddressNode) error
}

// CategoryRepository defines data access for product categories.
type CategoryRepository interface {
	// ListAll retrieves every category ordered by id.
	ListAll(ctx context.Context) ([]model.Category, error)

	// GetByID retrieves a category by id.
	GetByID(ctx context.Context, id int64) (*model.Category, error)

	// GetByName retrieves a category by case-insensitive name.
	GetByName(ctx context.Context, name string) (*model.Category, error)

	// ListChildren retrieves the direct children of all given parents.
	ListChildren(ctx context.Context, parentIDs []int64) ([]model.Category, error)
}

// ProductRepository defines data access for products and their variants.
type ProductRepository interface {
	// List retrieves a filtered, sorted page of products with their variants.
	List(ctx context.Context, q model.ProductQuery) (*model.ProductPage, error)

	// GetByID retrieves a single product with its variants.
	GetByID(ctx context.Context, id int64) (*model.Product, error)

	// GetVariantsByIDs retrieves the variants with the given ids. Unknown ids
	// are omitted from the result.
	GetVariantsByIDs(ctx context.Context, ids []int64) ([]model.ProductVariant, error)
}

// VoucherRepository defines data access for vouchers and their usages.
type VoucherRepository interface {
	Create(ctx context.Context, v *model.Voucher) error
	Update(ctx context.Context, v *model.Voucher) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*model.Voucher, error)
	GetByCode(ctx context.Context, code string) (*model.Voucher, error)
	List(ctx context.Context) ([]model.Voucher, error)

	// ListActive retrieves active vouchers whose window contains now.
	ListActive(ctx context.Context, now time.Time) ([]model.Voucher, error)

	// CodeExists reports whether another voucher than excludeID uses code.
	CodeExists(ctx context.Context, code string, excludeID int64) (bool, error)

	// HasUsage reports whether userID has redeemed voucherID.
	HasUsage(ctx context.Context, userID, voucherID int64) (bool, error)

	// CountUsages returns how many redemptions voucherID has.
	CountUsages(ctx context.Context, voucherID int64) (int, error)

	// Redeem records usage and increments the usage counter within tx.
	// It fails with model.ErrVoucherAlreadyUsed when the user already holds
	// a usage and with model.ErrVoucherExhausted when the cap is reached.
	Redeem(ctx context.Context, tx pgx.Tx, usage *model.VoucherUsage) error
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByID retrieves an order by its ID along with its items.
	GetByID(ctx context.Context, id int64) (*model.Order, []model.OrderItem, error)

	// ListByUser retrieves a user's orders, newest first.
	ListByUser(ctx context.Context, userID int64) ([]model.Order, error)

	// GetItems retrieves the items of the given orders keyed by order id.
	GetItems(ctx context.Context, orderIDs []int64) (map[int64][]model.OrderItem, error)

	// UpdateStatus persists status, timestamps and updated_at of order
	// within tx. It fails with model.ErrTerminalStatus when the stored order
	// already holds a different final status.
	UpdateStatus(ctx context.Context, tx pgx.Tx, order *model.Order) error
}

// PaymentRepository defines data access for order payments.
type PaymentRepository interface {
	// Create inserts a payment within the provided transaction.
	Create(ctx context.Context, tx pgx.Tx, p *model.Payment) error

	// GetByOrderID retrieves the payment of an order.
	GetByOrderID(ctx context.Context, orderID int64) (*model.Payment, error)

	// MarkPaid sets the payment of orderID to PAID within tx, stamping
	// paidAt unless the payment already carries a paid time.
	MarkPaid(ctx context.Context, tx pgx.Tx, orderID int64, paidAt time.Time) error
}

// ShippingAddressRepository defines writes and listings of users'
// shipping addresses. Single reads go through AddressRepository.
type ShippingAddressRepository interface {
	// ListByUser retrieves a user's addresses, the default first.
	ListByUser(ctx context.Context, userID int64) ([]model.ShippingAddress, error)

	// CountByUser counts a user's addresses within tx.
	CountByUser(ctx context.Context, tx pgx.Tx, userID int64) (int, error)

	Create(ctx context.Context, tx pgx.Tx, a *model.ShippingAddress) error
	Update(ctx context.Context, tx pgx.Tx, a *model.ShippingAddress) error

	// Delete removes an address. It fails with model.ErrAddressInUse when
	// an order references it.
	Delete(ctx context.Context, tx pgx.Tx, id int64) error

	// ClearDefault unsets the default flag on the user's other addresses.
	ClearDefault(ctx context.Context, tx pgx.Tx, userID, keepID int64) error

	// PromoteDefault makes the oldest address default when none is.
	PromoteDefault(ctx context.Context, tx pgx.Tx, userID int64) error
}

// CartRepository defines data access for shopping carts.
type CartRepository interface {
	// ListItems retrieves the lines of a user's cart with their variants.
	ListItems(ctx context.Context, userID int64) ([]model.CartItemView, error)

	// GetItem retrieves a cart line with its owner's user id.
	GetItem(ctx context.Context, itemID int64) (*model.CartItem, error)

	// EnsureCart returns the user's cart id, creating the cart if needed.
	EnsureCart(ctx context.Context, tx pgx.Tx, userID int64) (int64, error)

	// AddItem merges quantity units of a variant into the cart. A nil item
	// means the merged quantity exceeds stock.
	AddItem(ctx context.Context, tx pgx.Tx, cartID, productDetailID int64, quantity int) (*model.CartItem, error)

	// SetQuantity replaces a line's quantity. A nil item means quantity
	// exceeds stock.
	SetQuantity(ctx context.Context, tx pgx.Tx, itemID int64, quantity int) (*model.CartItem, error)

	DeleteItem(ctx context.Context, tx pgx.Tx, itemID int64) error

	// RemoveItems deletes the given variants from the user's cart and
	// returns how many rows were removed.
	RemoveItems(ctx context.Context, userID int64, productDetailIDs []int64) (int64, error)
}
