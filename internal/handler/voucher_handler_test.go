package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"storefront/internal/model"
	"storefront/internal/voucher"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newVoucherHandler() (*VoucherHandler, *MockVoucherAdmin, *MockVoucherLedger) {
	admin := new(MockVoucherAdmin)
	ledger := new(MockVoucherLedger)
	return NewVoucherHandler(admin, ledger, zerolog.Nop()), admin, ledger
}

func TestVoucherHandler_Create(t *testing.T) {
	tests := []struct {
		name           string
		mockError      error
		expectedStatus int
	}{
		{name: "Success", expectedStatus: http.StatusCreated},
		{name: "Duplicate code", mockError: model.ErrVoucherCodeTaken, expectedStatus: http.StatusConflict},
		{name: "Invalid dates", mockError: model.NewFieldError("Start date must be before end date", "startDate", "endDate"), expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, admin, _ := newVoucherHandler()

			var ret *model.Voucher
			if tt.mockError == nil {
				ret = &model.Voucher{ID: 1, Code: "SAVE10"}
			}
			admin.On("Create", mock.Anything, mock.MatchedBy(func(req *model.CreateVoucherRequest) bool {
				return req.Code == "SAVE10" && req.DiscountValue.Equal(decimal.NewFromInt(10))
			})).Return(ret, tt.mockError)

			body := `{"code": "SAVE10", "name": "Ten off", "type": "DISCOUNT", "discountType": "PERCENTAGE", "discountValue": 10,
				"startDate": "2026-01-01T00:00:00Z", "endDate": "2026-12-31T00:00:00Z"}`
			w := call(t, http.MethodPost, "/api/vouchers", "/api/vouchers", body, 0, handler.Create)

			assert.Equal(t, tt.expectedStatus, w.Code)
			admin.AssertExpectations(t)
		})
	}
}

func TestVoucherHandler_List(t *testing.T) {
	handler, admin, _ := newVoucherHandler()

	admin.On("List", mock.Anything).Return([]model.Voucher{{ID: 1}, {ID: 2}}, nil)
	admin.On("ListActive", mock.Anything).Return([]model.Voucher{{ID: 2}}, nil)

	w := call(t, http.MethodGet, "/api/vouchers", "/api/vouchers", nil, 0, handler.List)
	require.Equal(t, http.StatusOK, w.Code)
	var all []model.Voucher
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	assert.Len(t, all, 2)

	w = call(t, http.MethodGet, "/api/vouchers", "/api/vouchers?active=true", nil, 0, handler.List)
	require.Equal(t, http.StatusOK, w.Code)
	var active []model.Voucher
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &active))
	assert.Len(t, active, 1)

	admin.AssertExpectations(t)
}

func TestVoucherHandler_Delete(t *testing.T) {
	handler, admin, _ := newVoucherHandler()

	admin.On("Delete", mock.Anything, int64(1)).Return(nil)
	admin.On("Delete", mock.Anything, int64(2)).Return(model.ErrVoucherInUse)
	admin.On("Delete", mock.Anything, int64(3)).Return(model.NewNotFoundError("Voucher", 3))

	w := call(t, http.MethodDelete, "/api/vouchers/{id}", "/api/vouchers/1", nil, 0, handler.Delete)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = call(t, http.MethodDelete, "/api/vouchers/{id}", "/api/vouchers/2", nil, 0, handler.Delete)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, model.ErrCodeVoucherInUse, decodeError(t, w).Code)

	w = call(t, http.MethodDelete, "/api/vouchers/{id}", "/api/vouchers/3", nil, 0, handler.Delete)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVoucherHandler_Update(t *testing.T) {
	handler, admin, _ := newVoucherHandler()

	admin.On("Update", mock.Anything, int64(5), mock.MatchedBy(func(req *model.UpdateVoucherRequest) bool {
		return req.Name != nil && *req.Name == "Renamed" && req.Code == nil
	})).Return(&model.Voucher{ID: 5, Name: "Renamed"}, nil)

	w := call(t, http.MethodPut, "/api/vouchers/{id}", "/api/vouchers/5", `{"name": "Renamed"}`, 0, handler.Update)

	assert.Equal(t, http.StatusOK, w.Code)
	admin.AssertExpectations(t)
}

func TestVoucherHandler_Validate(t *testing.T) {
	tests := []struct {
		name          string
		body          string
		fee           string
		result        voucher.ValidationResult
		wantValid     bool
		wantMessage   string
		wantDiscount  any
		expectService bool
		wantStatus    int
	}{
		{
			name:          "Valid voucher",
			body:          `{"voucherCode": "SAVE10", "orderAmount": "280000", "shippingFee": "30000"}`,
			fee:           "30000",
			result:        voucher.ValidationResult{Valid: true, Reason: "Voucher is valid", DiscountAmount: decimal.NewFromInt(20000)},
			wantValid:     true,
			wantMessage:   "Voucher is valid",
			wantDiscount:  "20000",
			expectService: true,
			wantStatus:    http.StatusOK,
		},
		{
			name:          "Rejected voucher without shipping fee",
			body:          `{"voucherCode": "SAVE10", "orderAmount": 50000}`,
			fee:           "0",
			result:        voucher.ValidationResult{Code: voucher.RejectBelowMinimum, Reason: "Minimum order amount is 100000"},
			wantMessage:   "Minimum order amount is 100000",
			expectService: true,
			wantStatus:    http.StatusOK,
		},
		{
			name:       "Missing code",
			body:       `{"orderAmount": 50000}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _, ledger := newVoucherHandler()

			if tt.expectService {
				fee := decimal.RequireFromString(tt.fee)
				ledger.On("Validate", mock.Anything, "SAVE10", int64(7), mock.Anything, mock.MatchedBy(func(d decimal.Decimal) bool {
					return d.Equal(fee)
				})).Return(tt.result, nil)
			}

			w := call(t, http.MethodPost, "/api/vouchers/validate", "/api/vouchers/validate", tt.body, 7, handler.Validate)

			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				var resp map[string]any
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, tt.wantValid, resp["isValid"])
				assert.Equal(t, tt.wantMessage, resp["message"])
				assert.Equal(t, tt.wantDiscount, resp["discountAmount"])
			}
			ledger.AssertExpectations(t)
		})
	}
}

func TestVoucherHandler_Apply(t *testing.T) {
	orderID := int64(42)

	tests := []struct {
		name       string
		mockReturn *model.VoucherUsage
		mockError  error
		wantStatus int
	}{
		{name: "Applied", mockReturn: &model.VoucherUsage{ID: 1, UserID: 7, VoucherID: 3, OrderID: &orderID}, wantStatus: http.StatusCreated},
		{name: "Already used", mockError: model.ErrVoucherAlreadyUsed, wantStatus: http.StatusUnprocessableEntity},
		{name: "Exhausted", mockError: model.ErrVoucherExhausted, wantStatus: http.StatusUnprocessableEntity},
		{name: "Unknown code", mockError: model.NewNotFoundError("Voucher", "SAVE10"), wantStatus: http.StatusNotFound},
		{name: "Unknown order", mockError: fmt.Errorf("redeem voucher: %w", model.NewNotFoundError("Order", orderID)), wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _, ledger := newVoucherHandler()

			ledger.On("Apply", mock.Anything, "SAVE10", int64(7), mock.MatchedBy(func(id *int64) bool {
				return id != nil && *id == orderID
			})).Return(tt.mockReturn, tt.mockError)

			w := call(t, http.MethodPost, "/api/vouchers/apply", "/api/vouchers/apply", `{"voucherCode": "SAVE10", "orderId": 42}`, 7, handler.Apply)

			assert.Equal(t, tt.wantStatus, w.Code)
			ledger.AssertExpectations(t)
		})
	}
}

func TestVoucherHandler_RequiresUser(t *testing.T) {
	handler, _, ledger := newVoucherHandler()

	w := call(t, http.MethodPost, "/api/vouchers/apply", "/api/vouchers/apply", `{"voucherCode": "SAVE10"}`, 0, handler.Apply)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	ledger.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
