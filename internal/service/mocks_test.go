package service

import (
	"context"

	"storefront/internal/model"
	"storefront/internal/outbox"
	"storefront/internal/pricing"
	"storefront/internal/voucher"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockAddressResolver is a mock implementation of AddressResolver.
type MockAddressResolver struct {
	mock.Mock
}

func (m *MockAddressResolver) Resolve(ctx context.Context, shippingAddressID int64) (*model.ShippingAddressView, error) {
	args := m.Called(ctx, shippingAddressID)
	view, _ := args.Get(0).(*model.ShippingAddressView)
	return view, args.Error(1)
}

// MockShippingEstimator is a mock implementation of ShippingEstimator.
type MockShippingEstimator struct {
	mock.Mock
}

func (m *MockShippingEstimator) EstimateShippingFee(ctx context.Context, shippingAddressID int64) pricing.Estimate {
	return m.Called(ctx, shippingAddressID).Get(0).(pricing.Estimate)
}

func (m *MockShippingEstimator) EstimateForAddress(view *model.ShippingAddressView, resolveErr error) pricing.Estimate {
	return m.Called(view, resolveErr).Get(0).(pricing.Estimate)
}

// MockVoucherLedger is a mock implementation of VoucherLedger.
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

// MockEventAppender is a mock implementation of EventAppender.
type MockEventAppender struct {
	mock.Mock
}

func (m *MockEventAppender) Append(ctx context.Context, tx pgx.Tx, e outbox.Event) error {
	return m.Called(ctx, tx, e).Error(0)
}

// MockCategoryExpander is a mock implementation of CategoryExpander.
type MockCategoryExpander struct {
	mock.Mock
}

func (m *MockCategoryExpander) DescendantsByName(ctx context.Context, name string) (*model.Category, []int64, error) {
	args := m.Called(ctx, name)
	cat, _ := args.Get(0).(*model.Category)
	ids, _ := args.Get(1).([]int64)
	return cat, ids, args.Error(2)
}

func decimalEq(want string) any {
	d := decimal.RequireFromString(want)
	return mock.MatchedBy(func(got decimal.Decimal) bool { return got.Equal(d) })
}

// MockAddressTree is a mock implementation of AddressTree.
type MockAddressTree struct {
	mock.Mock
}

func (m *MockAddressTree) Get(ctx context.Context, level model.AddressLevel, code int) (*model.AddressNode, error) {
	args := m.Called(ctx, level, code)
	node, _ := args.Get(0).(*model.AddressNode)
	return node, args.Error(1)
}

func (m *MockAddressTree) Expand(ctx context.Context, addr model.ShippingAddress) (*model.ShippingAddressView, error) {
	args := m.Called(ctx, addr)
	if fn, ok := args.Get(0).(func(context.Context, model.ShippingAddress) *model.ShippingAddressView); ok {
		return fn(ctx, addr), args.Error(1)
	}
	view, _ := args.Get(0).(*model.ShippingAddressView)
	return view, args.Error(1)
}
