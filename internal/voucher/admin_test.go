package voucher

import (
	"context"
	"testing"
	"time"

	"storefront/internal/model"
	"storefront/internal/repository/mocks"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestAdmin(repo *mocks.VoucherRepository) *Admin {
	return NewAdmin(repo, zerolog.Nop(), WithClock(func() time.Time { return fixedNow }))
}

func validCreateRequest() *model.CreateVoucherRequest {
	return &model.CreateVoucherRequest{
		Code:          " FREESHIP ",
		Name:          "Free shipping",
		Type:          model.VoucherTypeShipping,
		DiscountType:  model.DiscountTypePercentage,
		DiscountValue: d("100"),
		StartDate:     fixedNow,
		EndDate:       fixedNow.Add(30 * 24 * time.Hour),
	}
}

func TestAdmin_Create(t *testing.T) {
	ctx := context.Background()
	repo := new(mocks.VoucherRepository)
	repo.On("CodeExists", ctx, "FREESHIP", int64(0)).Return(false, nil)
	repo.On("Create", ctx, mock.AnythingOfType("*model.Voucher")).Run(func(args mock.Arguments) {
		args.Get(1).(*model.Voucher).ID = 12
	}).Return(nil)

	v, err := newTestAdmin(repo).Create(ctx, validCreateRequest())

	require.NoError(t, err)
	assert.Equal(t, int64(12), v.ID)
	assert.Equal(t, "FREESHIP", v.Code)
	assert.True(t, v.IsActive)
}

func TestAdmin_Create_Rules(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		mutate    func(r *model.CreateVoucherRequest)
		wantMsg   string
		wantField string
	}{
		{
			name:      "missing code",
			mutate:    func(r *model.CreateVoucherRequest) { r.Code = "  " },
			wantMsg:   "Missing or invalid voucher fields",
			wantField: "code",
		},
		{
			name:      "unknown type",
			mutate:    func(r *model.CreateVoucherRequest) { r.Type = "GIFT" },
			wantMsg:   "Missing or invalid voucher fields",
			wantField: "type",
		},
		{
			name:      "start after end",
			mutate:    func(r *model.CreateVoucherRequest) { r.StartDate = r.EndDate.Add(time.Hour) },
			wantMsg:   "Start date must be before end date",
			wantField: "startDate",
		},
		{
			name: "end in the past",
			mutate: func(r *model.CreateVoucherRequest) {
				r.StartDate = fixedNow.Add(-48 * time.Hour)
				r.EndDate = fixedNow.Add(-time.Hour)
			},
			wantMsg:   "End date must be in the future",
			wantField: "endDate",
		},
		{
			name:      "percentage over 100",
			mutate:    func(r *model.CreateVoucherRequest) { r.DiscountValue = d("100.01") },
			wantMsg:   "Percentage discount must be between 1 and 100",
			wantField: "discountValue",
		},
		{
			name:      "percentage zero",
			mutate:    func(r *model.CreateVoucherRequest) { r.DiscountValue = decimal.Zero },
			wantMsg:   "Percentage discount must be between 1 and 100",
			wantField: "discountValue",
		},
		{
			name: "fixed not positive",
			mutate: func(r *model.CreateVoucherRequest) {
				r.DiscountType = model.DiscountTypeFixedAmount
				r.DiscountValue = d("-5")
			},
			wantMsg:   "Fixed amount discount must be greater than 0",
			wantField: "discountValue",
		},
		{
			name:      "zero usage limit",
			mutate:    func(r *model.CreateVoucherRequest) { r.MaxUsageCount = intPtr(0) },
			wantMsg:   "Usage limit must be greater than 0",
			wantField: "maxUsageCount",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.VoucherRepository)
			req := validCreateRequest()
			tt.mutate(req)

			_, err := newTestAdmin(repo).Create(ctx, req)

			var verr *model.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantMsg, verr.Message)
			assert.Contains(t, verr.Fields, tt.wantField)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestAdmin_Create_CodeTaken(t *testing.T) {
	ctx := context.Background()
	repo := new(mocks.VoucherRepository)
	repo.On("CodeExists", ctx, "FREESHIP", int64(0)).Return(true, nil)

	_, err := newTestAdmin(repo).Create(ctx, validCreateRequest())

	assert.ErrorIs(t, err, model.ErrVoucherCodeTaken)
}

func TestAdmin_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("partial update keeps other fields", func(t *testing.T) {
		repo := new(mocks.VoucherRepository)
		repo.On("GetByID", ctx, int64(7)).Return(activeVoucher(), nil)
		repo.On("Update", ctx, mock.AnythingOfType("*model.Voucher")).Return(nil)

		name := "Renamed"
		v, err := newTestAdmin(repo).Update(ctx, 7, &model.UpdateVoucherRequest{
			Name:          &name,
			DiscountValue: decimal.NewNullDecimal(d("15")),
		})

		require.NoError(t, err)
		assert.Equal(t, "Renamed", v.Name)
		assert.Equal(t, "SUMMER10", v.Code)
		assert.True(t, d("15").Equal(v.DiscountValue))
	})

	t.Run("new code already taken", func(t *testing.T) {
		repo := new(mocks.VoucherRepository)
		repo.On("GetByID", ctx, int64(7)).Return(activeVoucher(), nil)
		repo.On("CodeExists", ctx, "WINTER", int64(7)).Return(true, nil)

		code := "WINTER"
		_, err := newTestAdmin(repo).Update(ctx, 7, &model.UpdateVoucherRequest{Code: &code})

		assert.ErrorIs(t, err, model.ErrVoucherCodeTaken)
	})

	t.Run("dates reversed", func(t *testing.T) {
		repo := new(mocks.VoucherRepository)
		repo.On("GetByID", ctx, int64(7)).Return(activeVoucher(), nil)

		end := fixedNow.Add(-48 * time.Hour)
		_, err := newTestAdmin(repo).Update(ctx, 7, &model.UpdateVoucherRequest{EndDate: &end})

		var verr *model.ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("limit below usage", func(t *testing.T) {
		v := activeVoucher()
		v.CurrentUsageCount = 5
		repo := new(mocks.VoucherRepository)
		repo.On("GetByID", ctx, int64(7)).Return(v, nil)

		_, err := newTestAdmin(repo).Update(ctx, 7, &model.UpdateVoucherRequest{MaxUsageCount: intPtr(4)})

		var verr *model.ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("unknown voucher", func(t *testing.T) {
		repo := new(mocks.VoucherRepository)
		repo.On("GetByID", ctx, int64(8)).Return(nil, nil)

		_, err := newTestAdmin(repo).Update(ctx, 8, &model.UpdateVoucherRequest{})

		var nf *model.NotFoundError
		assert.ErrorAs(t, err, &nf)
	})
}

func TestAdmin_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("unused", func(t *testing.T) {
		repo := new(mocks.VoucherRepository)
		repo.On("GetByID", ctx, int64(7)).Return(activeVoucher(), nil)
		repo.On("CountUsages", ctx, int64(7)).Return(0, nil)
		repo.On("Delete", ctx, int64(7)).Return(nil)

		require.NoError(t, newTestAdmin(repo).Delete(ctx, 7))
		repo.AssertExpectations(t)
	})

	t.Run("used", func(t *testing.T) {
		repo := new(mocks.VoucherRepository)
		repo.On("GetByID", ctx, int64(7)).Return(activeVoucher(), nil)
		repo.On("CountUsages", ctx, int64(7)).Return(2, nil)

		err := newTestAdmin(repo).Delete(ctx, 7)

		assert.ErrorIs(t, err, model.ErrVoucherInUse)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestAdmin_ListActive_UsesClock(t *testing.T) {
	ctx := context.Background()
	repo := new(mocks.VoucherRepository)
	repo.On("ListActive", ctx, fixedNow).Return(nil, nil)

	vs, err := newTestAdmin(repo).ListActive(ctx)

	require.NoError(t, err)
	assert.NotNil(t, vs)
	assert.Empty(t, vs)
}
