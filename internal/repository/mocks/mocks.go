// Package mocks provides testify mocks of the repository interfaces.
package mocks

import (
	"context"
	"time"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"
)

// Tx is a minimal pgx.Tx; only Commit and Rollback are recorded.
type Tx struct {
	mock.Mock
	Committed  bool
	RolledBack bool
}

func (m *Tx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	m.Committed = true
	return args.Error(0)
}

func (m *Tx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	m.RolledBack = true
	return args.Error(0)
}

// Unused by the code under test.
func (m *Tx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }
func (m *Tx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (m *Tx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (m *Tx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (m *Tx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (m *Tx) Exec(ctx context.Context, sql string, arguments ...any) (commandTag pgconn.CommandTag, err error) {
	return
}
func (m *Tx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (m *Tx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (m *Tx) Conn() *pgx.Conn                                               { return nil }

// NewCommittingTx returns a Tx that accepts Commit and Rollback.
func NewCommittingTx() *Tx {
	tx := new(Tx)
	tx.On("Commit", mock.Anything).Return(nil).Maybe()
	tx.On("Rollback", mock.Anything).Return(nil).Maybe()
	return tx
}

// TxManager mocks repository.TxManager.
type TxManager struct {
	mock.Mock
}

func (m *TxManager) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

// AddressRepository mocks repository.AddressRepository.
type AddressRepository struct {
	mock.Mock
}

func (m *AddressRepository) ListCities(ctx context.Context) ([]model.AddressNode, error) {
	args := m.Called(ctx)
	nodes, _ := args.Get(0).([]model.AddressNode)
	return nodes, args.Error(1)
}

func (m *AddressRepository) ListChildren(ctx context.Context, parentLevel model.AddressLevel, parentCode int) ([]model.AddressNode, error) {
	args := m.Called(ctx, parentLevel, parentCode)
	nodes, _ := args.Get(0).([]model.AddressNode)
	return nodes, args.Error(1)
}

func (m *AddressRepository) GetNode(ctx context.Context, level model.AddressLevel, code int) (*model.AddressNode, error) {
	args := m.Called(ctx, level, code)
	node, _ := args.Get(0).(*model.AddressNode)
	return node, args.Error(1)
}

func (m *AddressRepository) GetShippingAddress(ctx context.Context, id int64) (*model.ShippingAddress, error) {
	args := m.Called(ctx, id)
	addr, _ := args.Get(0).(*model.ShippingAddress)
	return addr, args.Error(1)
}

func (m *AddressRepository) UpsertAll(ctx context.Context, tx pgx.Tx, cities, districts, wards []model.AddressNode) error {
	args := m.Called(ctx, tx, cities, districts, wards)
	return args.Error(0)
}

// CategoryRepository mocks repository.CategoryRepository.
type CategoryRepository struct {
	mock.Mock
}

func (m *CategoryRepository) ListAll(ctx context.Context) ([]model.Category, error) {
	args := m.Called(ctx)
	cats, _ := args.Get(0).([]model.Category)
	return cats, args.Error(1)
}

func (m *CategoryRepository) GetByID(ctx context.Context, id int64) (*model.Category, error) {
	args := m.Called(ctx, id)
	cat, _ := args.Get(0).(*model.Category)
	return cat, args.Error(1)
}

func (m *CategoryRepository) GetByName(ctx context.Context, name string) (*model.Category, error) {
	args := m.Called(ctx, name)
	cat, _ := args.Get(0).(*model.Category)
	return cat, args.Error(1)
}

func (m *CategoryRepository) ListChildren(ctx context.Context, parentIDs []int64) ([]model.Category, error) {
	args := m.Called(ctx, parentIDs)
	if fn, ok := args.Get(0).(func(context.Context, []int64) []model.Category); ok {
		return fn(ctx, parentIDs), args.Error(1)
	}
	cats, _ := args.Get(0).([]model.Category)
	return cats, args.Error(1)
}

// ProductRepository mocks repository.ProductRepository.
type ProductRepository struct {
	mock.Mock
}

func (m *ProductRepository) List(ctx context.Context, q model.ProductQuery) (*model.ProductPage, error) {
	args := m.Called(ctx, q)
	page, _ := args.Get(0).(*model.ProductPage)
	return page, args.Error(1)
}

func (m *ProductRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*model.Product)
	return p, args.Error(1)
}

func (m *ProductRepository) GetVariantsByIDs(ctx context.Context, ids []int64) ([]model.ProductVariant, error) {
	args := m.Called(ctx, ids)
	variants, _ := args.Get(0).([]model.ProductVariant)
	return variants, args.Error(1)
}

// VoucherRepository mocks repository.VoucherRepository.
type VoucherRepository struct {
	mock.Mock
}

func (m *VoucherRepository) Create(ctx context.Context, v *model.Voucher) error {
	return m.Called(ctx, v).Error(0)
}

func (m *VoucherRepository) Update(ctx context.Context, v *model.Voucher) error {
	return m.Called(ctx, v).Error(0)
}

func (m *VoucherRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *VoucherRepository) GetByID(ctx context.Context, id int64) (*model.Voucher, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(*model.Voucher)
	return v, args.Error(1)
}

func (m *VoucherRepository) GetByCode(ctx context.Context, code string) (*model.Voucher, error) {
	args := m.Called(ctx, code)
	v, _ := args.Get(0).(*model.Voucher)
	return v, args.Error(1)
}

func (m *VoucherRepository) List(ctx context.Context) ([]model.Voucher, error) {
	args := m.Called(ctx)
	vs, _ := args.Get(0).([]model.Voucher)
	return vs, args.Error(1)
}

func (m *VoucherRepository) ListActive(ctx context.Context, now time.Time) ([]model.Voucher, error) {
	args := m.Called(ctx, now)
	vs, _ := args.Get(0).([]model.Voucher)
	return vs, args.Error(1)
}

func (m *VoucherRepository) CodeExists(ctx context.Context, code string, excludeID int64) (bool, error) {
	args := m.Called(ctx, code, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *VoucherRepository) HasUsage(ctx context.Context, userID, voucherID int64) (bool, error) {
	args := m.Called(ctx, userID, voucherID)
	return args.Bool(0), args.Error(1)
}

func (m *VoucherRepository) CountUsages(ctx context.Context, voucherID int64) (int, error) {
	args := m.Called(ctx, voucherID)
	return args.Int(0), args.Error(1)
}

func (m *VoucherRepository) Redeem(ctx context.Context, tx pgx.Tx, usage *model.VoucherUsage) error {
	return m.Called(ctx, tx, usage).Error(0)
}

// OrderRepository mocks repository.OrderRepository.
type OrderRepository struct {
	mock.Mock
}

func (m *OrderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	return m.Called(ctx, tx, order).Error(0)
}

func (m *OrderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	return m.Called(ctx, tx, items).Error(0)
}

func (m *OrderRepository) GetByID(ctx context.Context, id int64) (*model.Order, []model.OrderItem, error) {
	args := m.Called(ctx, id)
	order, _ := args.Get(0).(*model.Order)
	items, _ := args.Get(1).([]model.OrderItem)
	return order, items, args.Error(2)
}

func (m *OrderRepository) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	args := m.Called(ctx, userID)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Error(1)
}

func (m *OrderRepository) GetItems(ctx context.Context, orderIDs []int64) (map[int64][]model.OrderItem, error) {
	args := m.Called(ctx, orderIDs)
	items, _ := args.Get(0).(map[int64][]model.OrderItem)
	return items, args.Error(1)
}

func (m *OrderRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	return m.Called(ctx, tx, order).Error(0)
}

// PaymentRepository mocks repository.PaymentRepository.
type PaymentRepository struct {
	mock.Mock
}

func (m *PaymentRepository) Create(ctx context.Context, tx pgx.Tx, p *model.Payment) error {
	return m.Called(ctx, tx, p).Error(0)
}

func (m *PaymentRepository) GetByOrderID(ctx context.Context, orderID int64) (*model.Payment, error) {
	args := m.Called(ctx, orderID)
	p, _ := args.Get(0).(*model.Payment)
	return p, args.Error(1)
}

func (m *PaymentRepository) MarkPaid(ctx context.Context, tx pgx.Tx, orderID int64, paidAt time.Time) error {
	return m.Called(ctx, tx, orderID, paidAt).Error(0)
}

// CartRepository mocks repository.CartRepository.
type CartRepository struct {
	mock.Mock
}

func (m *CartRepository) RemoveItems(ctx context.Context, userID int64, productDetailIDs []int64) (int64, error) {
	args := m.Called(ctx, userID, productDetailIDs)
	n, _ := args.Get(0).(int64)
	return n, args.Error(1)
}

func (m *CartRepository) ListItems(ctx context.Context, userID int64) ([]model.CartItemView, error) {
	args := m.Called(ctx, userID)
	items, _ := args.Get(0).([]model.CartItemView)
	return items, args.Error(1)
}

func (m *CartRepository) GetItem(ctx context.Context, itemID int64) (*model.CartItem, error) {
	args := m.Called(ctx, itemID)
	it, _ := args.Get(0).(*model.CartItem)
	return it, args.Error(1)
}

func (m *CartRepository) EnsureCart(ctx context.Context, tx pgx.Tx, userID int64) (int64, error) {
	args := m.Called(ctx, tx, userID)
	id, _ := args.Get(0).(int64)
	return id, args.Error(1)
}

func (m *CartRepository) AddItem(ctx context.Context, tx pgx.Tx, cartID, productDetailID int64, quantity int) (*model.CartItem, error) {
	args := m.Called(ctx, tx, cartID, productDetailID, quantity)
	it, _ := args.Get(0).(*model.CartItem)
	return it, args.Error(1)
}

func (m *CartRepository) SetQuantity(ctx context.Context, tx pgx.Tx, itemID int64, quantity int) (*model.CartItem, error) {
	args := m.Called(ctx, tx, itemID, quantity)
	it, _ := args.Get(0).(*model.CartItem)
	return it, args.Error(1)
}

func (m *CartRepository) DeleteItem(ctx context.Context, tx pgx.Tx, itemID int64) error {
	return m.Called(ctx, tx, itemID).Error(0)
}

// ShippingAddressRepository mocks repository.ShippingAddressRepository.
type ShippingAddressRepository struct {
	mock.Mock
}

func (m *ShippingAddressRepository) ListByUser(ctx context.Context, userID int64) ([]model.ShippingAddress, error) {
	args := m.Called(ctx, userID)
	list, _ := args.Get(0).([]model.ShippingAddress)
	return list, args.Error(1)
}

func (m *ShippingAddressRepository) CountByUser(ctx context.Context, tx pgx.Tx, userID int64) (int, error) {
	args := m.Called(ctx, tx, userID)
	return args.Int(0), args.Error(1)
}

func (m *ShippingAddressRepository) Create(ctx context.Context, tx pgx.Tx, a *model.ShippingAddress) error {
	return m.Called(ctx, tx, a).Error(0)
}

func (m *ShippingAddressRepository) Update(ctx context.Context, tx pgx.Tx, a *model.ShippingAddress) error {
	return m.Called(ctx, tx, a).Error(0)
}

func (m *ShippingAddressRepository) Delete(ctx context.Context, tx pgx.Tx, id int64) error {
	return m.Called(ctx, tx, id).Error(0)
}

func (m *ShippingAddressRepository) ClearDefault(ctx context.Context, tx pgx.Tx, userID, keepID int64) error {
	return m.Called(ctx, tx, userID, keepID).Error(0)
}

func (m *ShippingAddressRepository) PromoteDefault(ctx context.Context, tx pgx.Tx, userID int64) error {
	return m.Called(ctx, tx, userID).Error(0)
}
