package pricing

import (
	"testing"

	"storefront/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func capOf(v string) decimal.NullDecimal {
	return decimal.NewNullDecimal(d(v))
}

func TestComputeAmounts(t *testing.T) {
	tests := []struct {
		name             string
		subtotal         string
		shipping         string
		voucher          *VoucherSnapshot
		expectedDiscount string
		expectedFinal    string
	}{
		{
			name:             "no voucher",
			subtotal:         "100000",
			shipping:         "30000",
			expectedDiscount: "0",
			expectedFinal:    "130000",
		},
		{
			name:     "shipping percentage under cap",
			subtotal: "500000",
			shipping: "30000",
			voucher: &VoucherSnapshot{
				Type:              model.VoucherTypeShipping,
				DiscountType:      model.DiscountTypePercentage,
				DiscountValue:     d("25"),
				MaxDiscountAmount: capOf("50000"),
			},
			expectedDiscount: "7500",
			expectedFinal:    "522500",
		},
		{
			name:     "discount fixed amount",
			subtotal: "2000000",
			shipping: "35000",
			voucher: &VoucherSnapshot{
				Type:          model.VoucherTypeDiscount,
				DiscountType:  model.DiscountTypeFixedAmount,
				DiscountValue: d("100000"),
			},
			expectedDiscount: "100000",
			expectedFinal:    "1935000",
		},
		{
			name:     "percentage clamped to cap",
			subtotal: "1000000",
			shipping: "30000",
			voucher: &VoucherSnapshot{
				Type:              model.VoucherTypeDiscount,
				DiscountType:      model.DiscountTypePercentage,
				DiscountValue:     d("50"),
				MaxDiscountAmount: capOf("200000"),
			},
			expectedDiscount: "200000",
			expectedFinal:    "830000",
		},
		{
			name:     "zero cap means uncapped",
			subtotal: "1000000",
			shipping: "30000",
			voucher: &VoucherSnapshot{
				Type:              model.VoucherTypeDiscount,
				DiscountType:      model.DiscountTypePercentage,
				DiscountValue:     d("50"),
				MaxDiscountAmount: capOf("0"),
			},
			expectedDiscount: "500000",
			expectedFinal:    "530000",
		},
		{
			name:     "fixed amount larger than base is clamped",
			subtotal: "50000",
			shipping: "30000",
			voucher: &VoucherSnapshot{
				Type:          model.VoucherTypeDiscount,
				DiscountType:  model.DiscountTypeFixedAmount,
				DiscountValue: d("80000"),
			},
			expectedDiscount: "50000",
			expectedFinal:    "30000",
		},
		{
			name:     "shipping fixed amount never exceeds fee",
			subtotal: "200000",
			shipping: "30000",
			voucher: &VoucherSnapshot{
				Type:          model.VoucherTypeShipping,
				DiscountType:  model.DiscountTypeFixedAmount,
				DiscountValue: d("50000"),
			},
			expectedDiscount: "30000",
			expectedFinal:    "200000",
		},
		{
			name:     "percentage rounds to cents",
			subtotal: "99.99",
			shipping: "0",
			voucher: &VoucherSnapshot{
				Type:          model.VoucherTypeDiscount,
				DiscountType:  model.DiscountTypePercentage,
				DiscountValue: d("15"),
			},
			expectedDiscount: "15",
			expectedFinal:    "84.99",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeAmounts(d(tt.subtotal), d(tt.shipping), tt.voucher)

			assert.True(t, d(tt.expectedDiscount).Equal(got.DiscountAmount), "discount: got %s", got.DiscountAmount)
			assert.True(t, d(tt.expectedFinal).Equal(got.FinalAmount), "final: got %s", got.FinalAmount)
			assert.True(t, d(tt.subtotal).Add(d(tt.shipping)).Equal(got.OriginalAmount))
			assert.False(t, got.DiscountAmount.IsNegative())
			assert.True(t, got.FinalAmount.Equal(decimal.Max(decimal.Zero, got.OriginalAmount.Sub(got.DiscountAmount))))
		})
	}
}

func TestDiscount_NeverExceedsBase(t *testing.T) {
	voucherTypes := []model.VoucherType{model.VoucherTypeDiscount, model.VoucherTypeShipping}
	discountTypes := []model.DiscountType{model.DiscountTypePercentage, model.DiscountTypeFixedAmount}
	values := []string{"0", "1", "10", "100", "1000000"}
	subtotals := []string{"0", "1000", "250000"}
	fees := []string{"0", "30000", "55000"}

	for _, vt := range voucherTypes {
		for _, dt := range discountTypes {
			for _, v := range values {
				for _, sub := range subtotals {
					for _, fee := range fees {
						snap := &VoucherSnapshot{Type: vt, DiscountType: dt, DiscountValue: d(v)}
						got := Discount(snap, d(sub), d(fee))

						base := d(sub)
						if vt == model.VoucherTypeShipping {
							base = d(fee)
						}
						assert.False(t, got.IsNegative())
						assert.True(t, got.LessThanOrEqual(base), "%s/%s value=%s base=%s got=%s", vt, dt, v, base, got)
					}
				}
			}
		}
	}
}

func TestDiscount_UnknownTypeIsZero(t *testing.T) {
	snap := &VoucherSnapshot{Type: "GIFT", DiscountType: model.DiscountTypeFixedAmount, DiscountValue: d("10")}
	assert.True(t, Discount(snap, d("100"), d("10")).IsZero())
}

func TestSubtotal(t *testing.T) {
	lines := []Line{
		{UnitPrice: d("150000"), Quantity: 2},
		{UnitPrice: d("200000.50"), Quantity: 1},
	}
	assert.True(t, d("500000.50").Equal(Subtotal(lines)))
	assert.True(t, Subtotal(nil).IsZero())
}

func TestSnapshotOf(t *testing.T) {
	assert.Nil(t, SnapshotOf(nil))

	v := &model.Voucher{
		Type:              model.VoucherTypeShipping,
		DiscountType:      model.DiscountTypePercentage,
		DiscountValue:     d("25"),
		MaxDiscountAmount: capOf("50000"),
	}
	snap := SnapshotOf(v)
	assert.Equal(t, model.VoucherTypeShipping, snap.Type)
	assert.True(t, snap.MaxDiscountAmount.Valid)
}
