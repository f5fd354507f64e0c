package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// VoucherType selects which amount a voucher discounts.
type VoucherType string

const (
	// VoucherTypeDiscount discounts the product subtotal.
	VoucherTypeDiscount VoucherType = "DISCOUNT"
	// VoucherTypeShipping discounts the shipping fee.
	VoucherTypeShipping VoucherType = "SHIPPING"
)

// Valid reports whether t is a known voucher type.
func (t VoucherType) Valid() bool {
	return t == VoucherTypeDiscount || t == VoucherTypeShipping
}

// DiscountType is the shape of a voucher discount.
type DiscountType string

const (
	DiscountTypePercentage  DiscountType = "PERCENTAGE"
	DiscountTypeFixedAmount DiscountType = "FIXED_AMOUNT"
)

// Valid reports whether t is a known discount type.
func (t DiscountType) Valid() bool {
	return t == DiscountTypePercentage || t == DiscountTypeFixedAmount
}

// Voucher is a redeemable discount code.
type Voucher struct {
	ID                int64               `json:"id" db:"id"`
	Code              string              `json:"code" db:"code"`
	Name              string              `json:"name" db:"name"`
	Description       *string             `json:"description" db:"description"`
	Type              VoucherType         `json:"type" db:"type"`
	DiscountType      DiscountType        `json:"discountType" db:"discount_type"`
	DiscountValue     decimal.Decimal     `json:"discountValue" db:"discount_value"`
	MaxDiscountAmount decimal.NullDecimal `json:"maxDiscountAmount" db:"max_discount_amount"`
	MinOrderAmount    decimal.NullDecimal `json:"minOrderAmount" db:"min_order_amount"`
	MaxUsageCount     *int                `json:"maxUsageCount" db:"max_usage_count"`
	CurrentUsageCount int                 `json:"currentUsageCount" db:"current_usage_count"`
	StartDate         time.Time           `json:"startDate" db:"start_date"`
	EndDate           time.Time           `json:"endDate" db:"end_date"`
	IsActive          bool                `json:"isActive" db:"is_active"`
	CreatedAt         time.Time           `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time           `json:"updatedAt" db:"updated_at"`
}

// Summary returns the excerpt of v shown on orders.
func (v *Voucher) Summary() *VoucherSummary {
	return &VoucherSummary{
		ID:            v.ID,
		Code:          v.Code,
		Name:          v.Name,
		DiscountType:  v.DiscountType,
		DiscountValue: v.DiscountValue,
	}
}

// VoucherUsage proves that a user redeemed a voucher. At most one exists per
// (user, voucher) pair.
type VoucherUsage struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"userId" db:"user_id"`
	VoucherID int64     `json:"voucherId" db:"voucher_id"`
	OrderID   *int64    `json:"orderId" db:"order_id"`
	UsedAt    time.Time `json:"usedAt" db:"used_at"`
}

// CreateVoucherRequest is the payload for creating a voucher.
type CreateVoucherRequest struct {
	Code              string              `json:"code"`
	Name              string              `json:"name"`
	Description       *string             `json:"description,omitempty"`
	Type              VoucherType         `json:"type"`
	DiscountType      DiscountType        `json:"discountType"`
	DiscountValue     decimal.Decimal     `json:"discountValue"`
	MaxDiscountAmount decimal.NullDecimal `json:"maxDiscountAmount"`
	MinOrderAmount    decimal.NullDecimal `json:"minOrderAmount"`
	MaxUsageCount     *int                `json:"maxUsageCount,omitempty"`
	StartDate         time.Time           `json:"startDate"`
	EndDate           time.Time           `json:"endDate"`
	IsActive          *bool               `json:"isActive,omitempty"`
}

// UpdateVoucherRequest is a partial update; nil fields are left unchanged.
type UpdateVoucherRequest struct {
	Code              *string             `json:"code,omitempty"`
	Name              *string             `json:"name,omitempty"`
	Description       *string             `json:"description,omitempty"`
	Type              *VoucherType        `json:"type,omitempty"`
	DiscountType      *DiscountType       `json:"discountType,omitempty"`
	DiscountValue     decimal.NullDecimal `json:"discountValue"`
	MaxDiscountAmount decimal.NullDecimal `json:"maxDiscountAmount"`
	MinOrderAmount    decimal.NullDecimal `json:"minOrderAmount"`
	MaxUsageCount     *int                `json:"maxUsageCount,omitempty"`
	StartDate         *time.Time          `json:"startDate,omitempty"`
	EndDate           *time.Time          `json:"endDate,omitempty"`
	IsActive          *bool               `json:"isActive,omitempty"`
}

// ValidateVoucherRequest asks whether a voucher could be used on an order.
// OrderAmount includes the shipping fee.
type ValidateVoucherRequest struct {
	VoucherCode string              `json:"voucherCode"`
	OrderAmount decimal.Decimal     `json:"orderAmount"`
	ShippingFee decimal.NullDecimal `json:"shippingFee"`
}

// ApplyVoucherRequest redeems a voucher for the calling user.
type ApplyVoucherRequest struct {
	VoucherCode string `json:"voucherCode"`
	OrderID     *int64 `json:"orderId,omitempty"`
}

// VoucherValidationResponse is the outcome of a voucher validation.
type VoucherValidationResponse struct {
	IsValid        bool                `json:"isValid"`
	Message        string              `json:"message"`
	DiscountAmount decimal.NullDecimal `json:"discountAmount"`
}
