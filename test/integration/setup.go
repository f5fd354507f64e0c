package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"storefront/internal/address"
	"storefront/internal/category"
	"storefront/internal/handler"
	"storefront/internal/metrics"
	"storefront/internal/middleware"
	"storefront/internal/outbox"
	"storefront/internal/pricing"
	"storefront/internal/repository"
	"storefront/internal/router"
	"storefront/internal/service"
	"storefront/internal/testutil/pgtest"
	"storefront/internal/voucher"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "test-api-key"

// TestEnv is a migrated database with the full HTTP stack mounted on it.
type TestEnv struct {
	DB      *pgtest.DB
	Server  http.Handler
	Metrics *metrics.Metrics
	Ledger  *voucher.Ledger
	Outbox  *outbox.Store
}

// SetupTestEnv starts PostgreSQL and wires every component the way the API
// binary does, minus the Redis cache.
func SetupTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	db := pgtest.Start(t)
	pool := db.Pool
	logger := zerolog.Nop()
	m := metrics.New()

	txManager := repository.NewTxManager(pool, logger)
	categoryRepo := repository.NewCategoryRepository(pool, logger)
	voucherRepo := repository.NewVoucherRepository(pool, logger)

	categories := category.NewHierarchy(categoryRepo, category.NewResolver(categoryRepo, logger), logger)
	addressRepo := repository.NewAddressRepository(pool, logger)
	addresses := address.NewHierarchy(addressRepo, logger)
	shipping := pricing.NewEngine(pricing.DefaultFeeTable(), addresses, logger)
	ledger := voucher.NewLedger(voucherRepo, txManager, m, logger)
	store := outbox.NewStore(pool, logger)

	productRepo := repository.NewProductRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	orderService := service.NewOrderService(service.OrderDependencies{
		Tx:        txManager,
		Orders:    repository.NewOrderRepository(pool, logger),
		Payments:  repository.NewPaymentRepository(pool, logger),
		Products:  productRepo,
		Carts:     cartRepo,
		Vouchers:  voucherRepo,
		Addresses: addresses,
		Shipping:  shipping,
		Ledger:    ledger,
		Events:    store,
		Metrics:   m,
	}, logger)
	bookService := service.NewAddressBookService(service.AddressBookDependencies{
		Tx:        txManager,
		Addresses: addressRepo,
		Book:      repository.NewShippingAddressRepository(pool, logger),
		Tree:      addresses,
	}, logger)

	server := router.New(router.Handlers{
		Products: handler.NewProductHandler(service.NewProductService(productRepo, categories, logger), logger),
		Orders:   handler.NewOrderHandler(orderService, logger),
		Vouchers: handler.NewVoucherHandler(voucher.NewAdmin(voucherRepo, logger), ledger, logger),
		Catalog:  handler.NewCatalogHandler(categories, addresses, logger),
		Book:     handler.NewShippingAddressHandler(bookService, logger),
		Cart:     handler.NewCartHandler(service.NewCartService(txManager, cartRepo, productRepo, logger), logger),
	}, testAPIKey, m, logger)

	return &TestEnv{DB: db, Server: server, Metrics: m, Ledger: ledger, Outbox: store}
}

// Do sends one request through the router with the API key set. A
// positive userID is sent as the gateway user header.
func (e *TestEnv) Do(t *testing.T, method, target string, body any, userID int64) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.HeaderAPIKey, testAPIKey)
	if userID > 0 {
		req.Header.Set(middleware.HeaderUserID, strconv.FormatInt(userID, 10))
	}
	w := httptest.NewRecorder()
	e.Server.ServeHTTP(w, req)
	return w
}

// Decode unmarshals a response body into v.
func Decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

// Seed holds the ids of the rows SeedStore inserts.
type Seed struct {
	HanoiAddress   int64 // user 7, capital
	DaNangAddress  int64 // user 7, central region
	NoWardAddress  int64 // user 7, unresolvable
	ForeignAddress int64 // user 8

	Fashion, Men, Shirts, Bags int64

	Shirt, Tote             int64
	ShirtS, ShirtM, ToteOne int64

	Save10, FreeShip, Limited int64
}

const (
	buyerID = int64(7)
	otherID = int64(8)
)

// SeedStore empties the schema and inserts a small shop:
//
//	fashion → men → shirts : Linen Shirt (S 100000, M 120000)
//	bags                   : Canvas Tote (50000, out of stock)
//
// plus addresses in Hà Nội and Đà Nẵng, a cart for the buyer and three
// vouchers valid from yesterday for a month.
func SeedStore(t *testing.T, pool *pgxpool.Pool) *Seed {
	t.Helper()

	pgtest.Truncate(t, pool,
		"outbox", "voucher_usages", "payments", "order_items", "orders", "vouchers",
		"cart_items", "carts", "product_details", "product_categories", "products", "categories",
		"shipping_addresses", "wards", "districts", "cities")

	ctx := context.Background()
	exec := func(sql string, args ...any) {
		t.Helper()
		_, err := pool.Exec(ctx, sql, args...)
		require.NoError(t, err)
	}
	id := func(sql string, args ...any) int64 {
		t.Helper()
		var v int64
		require.NoError(t, pool.QueryRow(ctx, sql, args...).Scan(&v))
		return v
	}

	exec(`INSERT INTO cities (code, name) VALUES (1, 'Thành phố Hà Nội'), (48, 'Thành phố Đà Nẵng')`)
	exec(`INSERT INTO districts (code, name, parent_code) VALUES (1, 'Quận Ba Đình', 1), (490, 'Quận Liên Chiểu', 48)`)
	exec(`INSERT INTO wards (code, name, parent_code) VALUES (1, 'Phường Phúc Xá', 1), (20194, 'Phường Hòa Hiệp Bắc', 490)`)

	addr := func(userID int64, ward any) int64 {
		return id(`
			INSERT INTO shipping_addresses (user_id, recipient_name, phone, ward_code, more_detail)
			VALUES ($1, 'Nguyễn Văn A', '0900000000', $2, '1 Test Street') RETURNING id`, userID, ward)
	}

	s := &Seed{
		HanoiAddress:   addr(buyerID, 1),
		DaNangAddress:  addr(buyerID, 20194),
		NoWardAddress:  addr(buyerID, nil),
		ForeignAddress: addr(otherID, 1),
	}

	s.Fashion = id(`INSERT INTO categories (name) VALUES ('fashion') RETURNING id`)
	s.Men = id(`INSERT INTO categories (name, parent_id) VALUES ('men', $1) RETURNING id`, s.Fashion)
	s.Shirts = id(`INSERT INTO categories (name, parent_id) VALUES ('shirts', $1) RETURNING id`, s.Men)
	s.Bags = id(`INSERT INTO categories (name) VALUES ('bags') RETURNING id`)

	s.Shirt = id(`INSERT INTO products (name, description) VALUES ('Linen Shirt', 'Breathable linen') RETURNING id`)
	s.Tote = id(`INSERT INTO products (name, description) VALUES ('Canvas Tote', 'Heavy canvas') RETURNING id`)
	exec(`INSERT INTO product_categories (product_id, category_id) VALUES ($1, $2), ($3, $4)`, s.Shirt, s.Shirts, s.Tote, s.Bags)

	variant := func(productID int64, price string, stock int, size, color string) int64 {
		return id(`
			INSERT INTO product_details (product_id, price, stock, size, color, image_url)
			VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6) RETURNING id`,
			productID, decimal.RequireFromString(price), stock, size, color, "https://cdn.example.com/"+color+".jpg")
	}
	s.ShirtS = variant(s.Shirt, "100000", 10, "S", "white")
	s.ShirtM = variant(s.Shirt, "120000", 5, "M", "blue")
	s.ToteOne = variant(s.Tote, "50000", 0, "", "beige")

	cart := id(`INSERT INTO carts (user_id) VALUES ($1) RETURNING id`, buyerID)
	exec(`INSERT INTO cart_items (cart_id, product_detail_id, quantity) VALUES ($1, $2, 2), ($1, $3, 1), ($1, $4, 1)`,
		cart, s.ShirtS, s.ToteOne, s.ShirtM)

	start := time.Now().Add(-24 * time.Hour)
	end := time.Now().Add(30 * 24 * time.Hour)
	s.Save10 = id(`
		INSERT INTO vouchers (code, name, type, discount_type, discount_value, max_discount_amount, min_order_amount, start_date, end_date)
		VALUES ('SAVE10', 'Ten percent off', 'DISCOUNT', 'PERCENTAGE', 10, 20000, 100000, $1, $2) RETURNING id`, start, end)
	s.FreeShip = id(`
		INSERT INTO vouchers (code, name, type, discount_type, discount_value, start_date, end_date)
		VALUES ('FREESHIP', 'Free shipping', 'SHIPPING', 'PERCENTAGE', 100, $1, $2) RETURNING id`, start, end)
	s.Limited = id(`
		INSERT INTO vouchers (code, name, type, discount_type, discount_value, max_usage_count, start_date, end_date)
		VALUES ('LIMITED', 'First come', 'DISCOUNT', 'FIXED_AMOUNT', 10000, 3, $1, $2) RETURNING id`, start, end)

	return s
}
