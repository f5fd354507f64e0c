package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"storefront/internal/middleware"
	"storefront/internal/model"
	"storefront/internal/voucher"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOrderService is a mock implementation of OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) CreateOrder(ctx context.Context, userID int64, req *model.OrderRequest) (*model.OrderResponse, error) {
	args := m.Called(ctx, userID, req)
	resp, _ := args.Get(0).(*model.OrderResponse)
	return resp, args.Error(1)
}

func (m *MockOrderService) CalculateOrderTotal(ctx context.Context, userID int64, req *model.CalculateOrderRequest) (*model.OrderTotalResponse, error) {
	args := m.Called(ctx, userID, req)
	resp, _ := args.Get(0).(*model.OrderTotalResponse)
	return resp, args.Error(1)
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) (*model.OrderResponse, error) {
	args := m.Called(ctx, orderID, status)
	resp, _ := args.Get(0).(*model.OrderResponse)
	return resp, args.Error(1)
}

func (m *MockOrderService) GetByID(ctx context.Context, orderID, userID int64) (*model.OrderResponse, error) {
	args := m.Called(ctx, orderID, userID)
	resp, _ := args.Get(0).(*model.OrderResponse)
	return resp, args.Error(1)
}

func (m *MockOrderService) ListByUser(ctx context.Context, userID int64) ([]model.OrderResponse, error) {
	args := m.Called(ctx, userID)
	resp, _ := args.Get(0).([]model.OrderResponse)
	return resp, args.Error(1)
}

func (m *MockOrderService) ShippingFee(ctx context.Context, shippingAddressID int64) (*model.ShippingFeeResponse, error) {
	args := m.Called(ctx, shippingAddressID)
	resp, _ := args.Get(0).(*model.ShippingFeeResponse)
	return resp, args.Error(1)
}

// MockProductService is a mock implementation of ProductService.
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) List(ctx context.Context, q model.ProductQuery) (*model.ProductPage, error) {
	args := m.Called(ctx, q)
	page, _ := args.Get(0).(*model.ProductPage)
	return page, args.Error(1)
}

func (m *MockProductService) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*model.Product)
	return p, args.Error(1)
}

func (m *MockProductService) ListByCategoryName(ctx context.Context, name string, q model.ProductQuery) (*model.ProductPage, error) {
	args := m.Called(ctx, name, q)
	page, _ := args.Get(0).(*model.ProductPage)
	return page, args.Error(1)
}

// MockCategoryReader is a mock implementation of CategoryReader.
type MockCategoryReader struct {
	mock.Mock
}

func (m *MockCategoryReader) List(ctx context.Context) ([]model.Category, error) {
	args := m.Called(ctx)
	cats, _ := args.Get(0).([]model.Category)
	return cats, args.Error(1)
}

func (m *MockCategoryReader) Get(ctx context.Context, id int64) (*model.Category, error) {
	args := m.Called(ctx, id)
	cat, _ := args.Get(0).(*model.Category)
	return cat, args.Error(1)
}

func (m *MockCategoryReader) Tree(ctx context.Context) ([]*model.CategoryNode, error) {
	args := m.Called(ctx)
	tree, _ := args.Get(0).([]*model.CategoryNode)
	return tree, args.Error(1)
}

func (m *MockCategoryReader) Descendants(ctx context.Context, id int64) ([]int64, error) {
	args := m.Called(ctx, id)
	ids, _ := args.Get(0).([]int64)
	return ids, args.Error(1)
}

// MockAddressReader is a mock implementation of AddressReader.
type MockAddressReader struct {
	mock.Mock
}

func (m *MockAddressReader) Cities(ctx context.Context) ([]model.AddressNode, error) {
	args := m.Called(ctx)
	nodes, _ := args.Get(0).([]model.AddressNode)
	return nodes, args.Error(1)
}

func (m *MockAddressReader) ListChildren(ctx context.Context, parentLevel model.AddressLevel, parentCode int) ([]model.AddressNode, error) {
	args := m.Called(ctx, parentLevel, parentCode)
	nodes, _ := args.Get(0).([]model.AddressNode)
	return nodes, args.Error(1)
}

// MockVoucherAdmin is a mock implementation of VoucherAdmin.
type MockVoucherAdmin struct {
	mock.Mock
}

func (m *MockVoucherAdmin) Create(ctx context.Context, req *model.CreateVoucherRequest) (*model.Voucher, error) {
	args := m.Called(ctx, req)
	v, _ := args.Get(0).(*model.Voucher)
	return v, args.Error(1)
}

func (m *MockVoucherAdmin) List(ctx context.Context) ([]model.Voucher, error) {
	args := m.Called(ctx)
	vs, _ := args.Get(0).([]model.Voucher)
	return vs, args.Error(1)
}

func (m *MockVoucherAdmin) ListActive(ctx context.Context) ([]model.Voucher, error) {
	args := m.Called(ctx)
	vs, _ := args.Get(0).([]model.Voucher)
	return vs, args.Error(1)
}

func (m *MockVoucherAdmin) Get(ctx context.Context, id int64) (*model.Voucher, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(*model.Voucher)
	return v, args.Error(1)
}

func (m *MockVoucherAdmin) Update(ctx context.Context, id int64, req *model.UpdateVoucherRequest) (*model.Voucher, error) {
	args := m.Called(ctx, id, req)
	v, _ := args.Get(0).(*model.Voucher)
	return v, args.Error(1)
}

func (m *MockVoucherAdmin) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// MockVoucherLedger is a mock implementation of service.VoucherLedger.
type MockVoucherLedger struct {
	mock.Mock
}

func (m *MockVoucherLedger) Validate(ctx context.Context, code string, userID int64, orderAmount, shippingFee decimal.Decimal) (voucher.ValidationResult, error) {
	args := m.Called(ctx, code, userID, orderAmount, shippingFee)
	res, _ := args.Get(0).(voucher.ValidationResult)
	return res, args.Error(1)
}

func (m *MockVoucherLedger) Apply(ctx context.Context, code string, userID int64, orderID *int64) (*model.VoucherUsage, error) {
	args := m.Called(ctx, code, userID, orderID)
	usage, _ := args.Get(0).(*model.VoucherUsage)
	return usage, args.Error(1)
}

// MockAddressBookService is a mock implementation of service.AddressBookService.
type MockAddressBookService struct {
	mock.Mock
}

func (m *MockAddressBookService) Create(ctx context.Context, userID int64, req *model.ShippingAddressRequest) (*model.ShippingAddressView, error) {
	args := m.Called(ctx, userID, req)
	view, _ := args.Get(0).(*model.ShippingAddressView)
	return view, args.Error(1)
}

func (m *MockAddressBookService) List(ctx context.Context, userID int64) ([]model.ShippingAddressView, error) {
	args := m.Called(ctx, userID)
	list, _ := args.Get(0).([]model.ShippingAddressView)
	return list, args.Error(1)
}

func (m *MockAddressBookService) Get(ctx context.Context, userID, id int64) (*model.ShippingAddressView, error) {
	args := m.Called(ctx, userID, id)
	view, _ := args.Get(0).(*model.ShippingAddressView)
	return view, args.Error(1)
}

func (m *MockAddressBookService) Update(ctx context.Context, userID, id int64, req *model.UpdateShippingAddressRequest) (*model.ShippingAddressView, error) {
	args := m.Called(ctx, userID, id, req)
	view, _ := args.Get(0).(*model.ShippingAddressView)
	return view, args.Error(1)
}

func (m *MockAddressBookService) Delete(ctx context.Context, userID, id int64) error {
	return m.Called(ctx, userID, id).Error(0)
}

// MockCartService is a mock implementation of service.CartService.
type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) Get(ctx context.Context, userID int64) (*model.CartView, error) {
	args := m.Called(ctx, userID)
	cart, _ := args.Get(0).(*model.CartView)
	return cart, args.Error(1)
}

func (m *MockCartService) AddItem(ctx context.Context, userID int64, req *model.AddCartItemRequest) (*model.CartView, error) {
	args := m.Called(ctx, userID, req)
	cart, _ := args.Get(0).(*model.CartView)
	return cart, args.Error(1)
}

func (m *MockCartService) UpdateItem(ctx context.Context, userID, itemID int64, req *model.UpdateCartItemRequest) (*model.CartView, error) {
	args := m.Called(ctx, userID, itemID, req)
	cart, _ := args.Get(0).(*model.CartView)
	return cart, args.Error(1)
}

func (m *MockCartService) RemoveItem(ctx context.Context, userID, itemID int64) error {
	return m.Called(ctx, userID, itemID).Error(0)
}

// call routes one request through a chi router holding a single route so
// that path parameters resolve. A positive userID is attached to the
// request context.
func call(t *testing.T, method, pattern, target string, body any, userID int64, h http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	r := chi.NewRouter()
	r.MethodFunc(method, pattern, h)

	req := httptest.NewRequest(method, target, reader)
	if userID > 0 {
		req = req.WithContext(middleware.WithUserID(req.Context(), userID))
		req.Header.Set(middleware.HeaderUserID, strconv.FormatInt(userID, 10))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) model.ErrorResponse {
	t.Helper()
	var resp model.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}
