package pricing

import (
	"storefront/internal/model"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// VoucherSnapshot is the part of a voucher that affects amounts, captured
// once validation succeeds.
type VoucherSnapshot struct {
	Type              model.VoucherType
	DiscountType      model.DiscountType
	DiscountValue     decimal.Decimal
	MaxDiscountAmount decimal.NullDecimal
}

// SnapshotOf captures the pricing-relevant fields of v.
func SnapshotOf(v *model.Voucher) *VoucherSnapshot {
	if v == nil {
		return nil
	}
	return &VoucherSnapshot{
		Type:              v.Type,
		DiscountType:      v.DiscountType,
		DiscountValue:     v.DiscountValue,
		MaxDiscountAmount: v.MaxDiscountAmount,
	}
}

// Amounts is the full price breakdown of an order.
type Amounts struct {
	ProductSubtotal decimal.Decimal
	ShippingFee     decimal.Decimal
	OriginalAmount  decimal.Decimal
	DiscountAmount  decimal.Decimal
	FinalAmount     decimal.Decimal
}

// Line is a priced quantity.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Subtotal sums unit price times quantity over lines.
func Subtotal(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total.Round(2)
}

// ComputeAmounts prices an order. A nil snapshot means no voucher.
func ComputeAmounts(productSubtotal, shippingFee decimal.Decimal, voucher *VoucherSnapshot) Amounts {
	original := productSubtotal.Add(shippingFee)
	discount := Discount(voucher, productSubtotal, shippingFee)
	return Amounts{
		ProductSubtotal: productSubtotal,
		ShippingFee:     shippingFee,
		OriginalAmount:  original,
		DiscountAmount:  discount,
		FinalAmount:     floorAtZero(original.Sub(discount)),
	}
}

// Discount computes the voucher discount against its base: the product
// subtotal for DISCOUNT vouchers, the shipping fee for SHIPPING vouchers.
// The result is never negative and never exceeds the base.
func Discount(voucher *VoucherSnapshot, productSubtotal, shippingFee decimal.Decimal) decimal.Decimal {
	if voucher == nil {
		return decimal.Zero
	}

	var base decimal.Decimal
	switch voucher.Type {
	case model.VoucherTypeDiscount:
		base = productSubtotal
	case model.VoucherTypeShipping:
		base = shippingFee
	default:
		return decimal.Zero
	}
	base = floorAtZero(base)

	var discount decimal.Decimal
	switch voucher.DiscountType {
	case model.DiscountTypePercentage:
		discount = base.Mul(voucher.DiscountValue).Div(hundred)
		if limit := voucher.MaxDiscountAmount; limit.Valid && limit.Decimal.IsPositive() {
			discount = decimal.Min(discount, limit.Decimal)
		}
	case model.DiscountTypeFixedAmount:
		discount = voucher.DiscountValue
	default:
		return decimal.Zero
	}

	return floorAtZero(decimal.Min(discount, base)).Round(2)
}

func floorAtZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
