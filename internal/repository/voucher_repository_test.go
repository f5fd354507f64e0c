package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVoucher(code string, maxUsage *int) *model.Voucher {
	now := time.Now()
	return &model.Voucher{
		Code:              code,
		Name:              "Voucher " + code,
		Type:              model.VoucherTypeDiscount,
		DiscountType:      model.DiscountTypePercentage,
		DiscountValue:     decimal.NewFromInt(10),
		MaxDiscountAmount: decimal.NewNullDecimal(decimal.NewFromInt(50000)),
		MaxUsageCount:     maxUsage,
		StartDate:         now.Add(-time.Hour),
		EndDate:           now.Add(24 * time.Hour),
		IsActive:          true,
	}
}

func TestVoucherRepository_CRUD(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewVoucherRepository(pool, zerolog.Nop())

	v := newTestVoucher("WELCOME10", nil)
	require.NoError(t, repo.Create(ctx, v))
	assert.NotZero(t, v.ID)
	assert.Zero(t, v.CurrentUsageCount)

	t.Run("duplicate code", func(t *testing.T) {
		err := repo.Create(ctx, newTestVoucher("WELCOME10", nil))
		assert.ErrorIs(t, err, model.ErrVoucherCodeTaken)
	})

	t.Run("GetByCode round trips nullable fields", func(t *testing.T) {
		got, err := repo.GetByCode(ctx, "WELCOME10")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, v.ID, got.ID)
		assert.True(t, got.MaxDiscountAmount.Valid)
		assert.False(t, got.MinOrderAmount.Valid)
		assert.Nil(t, got.MaxUsageCount)
		assert.Equal(t, model.DiscountTypePercentage, got.DiscountType)
	})

	t.Run("Update", func(t *testing.T) {
		v.Name = "Renamed"
		v.MinOrderAmount = decimal.NewNullDecimal(decimal.NewFromInt(300000))
		require.NoError(t, repo.Update(ctx, v))

		got, err := repo.GetByID(ctx, v.ID)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Name)
		assert.True(t, decimal.NewFromInt(300000).Equal(got.MinOrderAmount.Decimal))

		missing := *v
		missing.ID = v.ID + 100
		var nf *model.NotFoundError
		assert.ErrorAs(t, repo.Update(ctx, &missing), &nf)
	})

	t.Run("ListActive filters window and flag", func(t *testing.T) {
		inactive := newTestVoucher("OFF", nil)
		inactive.IsActive = false
		require.NoError(t, repo.Create(ctx, inactive))

		future := newTestVoucher("SOON", nil)
		future.StartDate = time.Now().Add(time.Hour)
		future.EndDate = time.Now().Add(2 * time.Hour)
		require.NoError(t, repo.Create(ctx, future))

		active, err := repo.ListActive(ctx, time.Now())
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, "WELCOME10", active[0].Code)

		all, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})

	t.Run("CodeExists excludes self", func(t *testing.T) {
		exists, err := repo.CodeExists(ctx, "WELCOME10", v.ID)
		require.NoError(t, err)
		assert.False(t, exists)

		exists, err = repo.CodeExists(ctx, "WELCOME10", 0)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, v.ID))
		got, err := repo.GetByID(ctx, v.ID)
		require.NoError(t, err)
		assert.Nil(t, got)

		var nf *model.NotFoundError
		assert.ErrorAs(t, repo.Delete(ctx, v.ID), &nf)
	})
}

func TestVoucherRepository_Redeem(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	logger := zerolog.Nop()
	repo := NewVoucherRepository(pool, logger)
	tm := NewTxManager(pool, logger)

	redeem := func(userID, voucherID int64) error {
		return WithTx(ctx, tm, logger, func(tx pgx.Tx) error {
			return repo.Redeem(ctx, tx, &model.VoucherUsage{UserID: userID, VoucherID: voucherID})
		})
	}

	t.Run("records usage once per user", func(t *testing.T) {
		v := newTestVoucher("ONCE", nil)
		require.NoError(t, repo.Create(ctx, v))

		require.NoError(t, redeem(1, v.ID))
		assert.ErrorIs(t, redeem(1, v.ID), model.ErrVoucherAlreadyUsed)

		used, err := repo.HasUsage(ctx, 1, v.ID)
		require.NoError(t, err)
		assert.True(t, used)

		got, err := repo.GetByID(ctx, v.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.CurrentUsageCount)
	})

	t.Run("cap is enforced and failed redemption leaves no usage", func(t *testing.T) {
		maxUsage := 1
		v := newTestVoucher("LAST", &maxUsage)
		require.NoError(t, repo.Create(ctx, v))

		require.NoError(t, redeem(1, v.ID))
		assert.ErrorIs(t, redeem(2, v.ID), model.ErrVoucherExhausted)

		used, err := repo.HasUsage(ctx, 2, v.ID)
		require.NoError(t, err)
		assert.False(t, used)

		n, err := repo.CountUsages(ctx, v.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("unknown order is not found", func(t *testing.T) {
		v := newTestVoucher("NOORDER", nil)
		require.NoError(t, repo.Create(ctx, v))

		orderID := int64(987654)
		err := WithTx(ctx, tm, logger, func(tx pgx.Tx) error {
			return repo.Redeem(ctx, tx, &model.VoucherUsage{UserID: 1, VoucherID: v.ID, OrderID: &orderID})
		})

		var nf *model.NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, "Order", nf.Entity)
		assert.Equal(t, "987654", nf.ID)

		n, err := repo.CountUsages(ctx, v.ID)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("concurrent redemptions never exceed the cap", func(t *testing.T) {
		maxUsage := 3
		v := newTestVoucher("RACE", &maxUsage)
		require.NoError(t, repo.Create(ctx, v))

		const users = 12
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			succeeded int
		)
		for u := int64(1); u <= users; u++ {
			wg.Add(1)
			go func(userID int64) {
				defer wg.Done()
				if redeem(userID, v.ID) == nil {
					mu.Lock()
					succeeded++
					mu.Unlock()
				}
			}(u)
		}
		wg.Wait()

		assert.Equal(t, maxUsage, succeeded)
		got, err := repo.GetByID(ctx, v.ID)
		require.NoError(t, err)
		assert.Equal(t, maxUsage, got.CurrentUsageCount)

		n, err := repo.CountUsages(ctx, v.ID)
		require.NoError(t, err)
		assert.Equal(t, maxUsage, n)
	})
}
