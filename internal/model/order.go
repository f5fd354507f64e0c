package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending       OrderStatus = "PENDING"
	OrderStatusPaid          OrderStatus = "PAID"
	OrderStatusConfirmed     OrderStatus = "CONFIRMED"
	OrderStatusProcessing    OrderStatus = "PROCESSING"
	OrderStatusShipped       OrderStatus = "SHIPPED"
	OrderStatusDelivered     OrderStatus = "DELIVERED"
	OrderStatusCompleted     OrderStatus = "COMPLETED"
	OrderStatusRequestCancel OrderStatus = "REQUESTCANCEL"
	OrderStatusCancelled     OrderStatus = "CANCELLED"
	OrderStatusRefunded      OrderStatus = "REFUNDED"
)

// OrderStatuses lists every known status in lifecycle order.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusPaid,
	OrderStatusConfirmed,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCompleted,
	OrderStatusRequestCancel,
	OrderStatusCancelled,
	OrderStatusRefunded,
}

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether no further status change is accepted.
func (s OrderStatus) Terminal() bool {
	switch s {
	case OrderStatusCompleted, OrderStatusCancelled, OrderStatusRefunded:
		return true
	}
	return false
}

// Order represents a customer order.
type Order struct {
	ID                int64           `json:"id" db:"id"`
	UserID            int64           `json:"userId" db:"user_id"`
	ShippingAddressID int64           `json:"shippingAddressId" db:"shipping_address_id"`
	Status            OrderStatus     `json:"status" db:"status"`
	PaymentMethod     string          `json:"paymentMethod" db:"payment_method"`
	ShippingFee       decimal.Decimal `json:"shippingFee" db:"shipping_fee"`
	TotalAmount       decimal.Decimal `json:"totalAmount" db:"total_amount"`
	OriginalAmount    decimal.Decimal `json:"originalAmount" db:"original_amount"`
	DiscountAmount    decimal.Decimal `json:"discountAmount" db:"discount_amount"`
	VoucherID         *int64          `json:"voucherId,omitempty" db:"voucher_id"`
	TrackingCode      *string         `json:"trackingCode,omitempty" db:"tracking_code"`
	PaidAt            *time.Time      `json:"paidAt,omitempty" db:"paid_at"`
	ConfirmedAt       *time.Time      `json:"confirmedAt,omitempty" db:"confirmed_at"`
	DeliveredAt       *time.Time      `json:"deliveredAt,omitempty" db:"delivered_at"`
	CompletedAt       *time.Time      `json:"completedAt,omitempty" db:"completed_at"`
	CanceledAt        *time.Time      `json:"canceledAt,omitempty" db:"canceled_at"`
	RequestCancelAt   *time.Time      `json:"requestCancelAt,omitempty" db:"request_cancel_at"`
	RefundedAt        *time.Time      `json:"refundedAt,omitempty" db:"refunded_at"`
	CreatedAt         time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time       `json:"updatedAt" db:"updated_at"`
}

// statusTimestamp returns the timestamp field that records when status was reached,
// or nil for statuses that carry none.
func (o *Order) statusTimestamp(status OrderStatus) **time.Time {
	switch status {
	case OrderStatusPaid:
		return &o.PaidAt
	case OrderStatusConfirmed:
		return &o.ConfirmedAt
	case OrderStatusDelivered:
		return &o.DeliveredAt
	case OrderStatusCompleted:
		return &o.CompletedAt
	case OrderStatusCancelled:
		return &o.CanceledAt
	case OrderStatusRequestCancel:
		return &o.RequestCancelAt
	case OrderStatusRefunded:
		return &o.RefundedAt
	}
	return nil
}

// SetStatus moves the order to status and stamps the matching timestamp.
// A timestamp that is already set is left untouched.
func (o *Order) SetStatus(status OrderStatus, now time.Time) {
	o.Status = status
	o.UpdatedAt = now
	if field := o.statusTimestamp(status); field != nil && *field == nil {
		t := now
		*field = &t
	}
}

// OrderItem represents a line item in an order. Price is the unit price
// captured when the order was created.
type OrderItem struct {
	ID              int64           `json:"id" db:"id"`
	OrderID         int64           `json:"orderId" db:"order_id"`
	ProductDetailID int64           `json:"productDetailId" db:"product_detail_id"`
	Quantity        int             `json:"quantity" db:"quantity"`
	Price           decimal.Decimal `json:"price" db:"price"`
}

// PaymentStatus is the settlement state of a payment.
type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "UNPAID"
	PaymentStatusPaid   PaymentStatus = "PAID"
)

// Payment records how an order is (to be) paid.
type Payment struct {
	ID        int64           `json:"id" db:"id"`
	OrderID   int64           `json:"orderId" db:"order_id"`
	Method    string          `json:"method" db:"method"`
	Status    PaymentStatus   `json:"status" db:"status"`
	Amount    decimal.Decimal `json:"amount" db:"amount"`
	PaidAt    *time.Time      `json:"paidAt,omitempty" db:"paid_at"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
}

// OrderRequest represents the request payload for creating an order.
type OrderRequest struct {
	ShippingAddressID int64              `json:"shippingAddressId"`
	PaymentMethod     string             `json:"paymentMethod"`
	VoucherCode       *string            `json:"voucherCode,omitempty"`
	OrderItems        []OrderItemRequest `json:"orderItems"`
}

// OrderItemRequest represents a single item in an order request.
type OrderItemRequest struct {
	ProductDetailID int64 `json:"productDetailId"`
	Quantity        int   `json:"quantity"`
}

// CalculateOrderRequest is the checkout preview payload.
type CalculateOrderRequest struct {
	ShippingAddressID int64              `json:"shippingAddressId"`
	VoucherCode       *string            `json:"voucherCode,omitempty"`
	OrderItems        []OrderItemRequest `json:"orderItems"`
}

// UpdateStatusRequest carries the new status for an order.
type UpdateStatusRequest struct {
	Status OrderStatus `json:"status"`
}

// VoucherSummary is the voucher excerpt embedded in order views.
type VoucherSummary struct {
	ID            int64           `json:"id"`
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	DiscountType  DiscountType    `json:"discountType"`
	DiscountValue decimal.Decimal `json:"discountValue"`
}

// OrderItemView is an order item enriched for display.
type OrderItemView struct {
	OrderItem
	ProductName string  `json:"productName"`
	ImageURL    *string `json:"imageUrl,omitempty"`
}

// StepStatus is the outcome of a post-commit checkout step.
type StepStatus string

const (
	StepOK      StepStatus = "ok"
	StepFailed  StepStatus = "failed"
	StepSkipped StepStatus = "skipped"
)

// StepResult records how a best-effort checkout step ended.
type StepResult struct {
	Step   string     `json:"step"`
	Status StepStatus `json:"status"`
	Error  string     `json:"error,omitempty"`
}

// OrderResponse represents the response payload for an order.
type OrderResponse struct {
	Order
	OrderItems      []OrderItemView      `json:"orderItems"`
	ShippingAddress *ShippingAddressView `json:"shippingAddress,omitempty"`
	Payment         *Payment             `json:"payment,omitempty"`
	Voucher         *VoucherSummary      `json:"voucher,omitempty"`
	VoucherMessage  string               `json:"voucherMessage,omitempty"`
	FollowUps       []StepResult         `json:"followUps,omitempty"`
}

// OrderTotalResponse is the result of a checkout preview.
type OrderTotalResponse struct {
	TotalProduct   decimal.Decimal `json:"totalProduct"`
	ShippingFee    decimal.Decimal `json:"shippingFee"`
	OriginalAmount decimal.Decimal `json:"originalAmount"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	FinalAmount    decimal.Decimal `json:"finalAmount"`
	Voucher        *VoucherSummary `json:"voucher,omitempty"`
	VoucherMessage string          `json:"voucherMessage,omitempty"`
}

// ShippingFeeResponse reports a shipping fee estimate.
type ShippingFeeResponse struct {
	ShippingFee decimal.Decimal `json:"shippingFee"`
	Region      string          `json:"region,omitempty"`
	Fallback    bool            `json:"fallback"`
	Message     string          `json:"message,omitempty"`
}
