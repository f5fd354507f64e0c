package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"storefront/internal/metrics"
	"storefront/internal/model"
	"storefront/internal/outbox"
	"storefront/internal/pricing"
	"storefront/internal/repository"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Post-commit checkout steps.
const (
	StepVoucherApply = "voucher_apply"
	StepCartCleanup  = "cart_cleanup"
)

// DefaultOrderTopic is the topic order events are written to when none is configured.
const DefaultOrderTopic = "storefront.orders"

// OrderDependencies groups the collaborators of the order service.
type OrderDependencies struct {
	Tx       repository.TxManager
	Orders   repository.OrderRepository
	Payments repository.PaymentRepository
	Products repository.ProductRepository
	Carts    repository.CartRepository
	Vouchers repository.VoucherRepository

	Addresses AddressResolver
	Shipping  ShippingEstimator
	Ledger    VoucherLedger
	Events    EventAppender
	Topic     string

	Metrics *metrics.Metrics
	Now     func() time.Time
}

// OrderCreatedEvent is the outbox payload written with every new order.
type OrderCreatedEvent struct {
	OrderID        int64             `json:"orderId"`
	UserID         int64             `json:"userId"`
	Status         model.OrderStatus `json:"status"`
	PaymentMethod  string            `json:"paymentMethod"`
	OriginalAmount decimal.Decimal   `json:"originalAmount"`
	DiscountAmount decimal.Decimal   `json:"discountAmount"`
	TotalAmount    decimal.Decimal   `json:"totalAmount"`
	VoucherCode    string            `json:"voucherCode,omitempty"`
	Items          []model.OrderItem `json:"items"`
	CreatedAt      time.Time         `json:"createdAt"`
}

// orderService implements OrderService.
type orderService struct {
	deps   OrderDependencies
	now    func() time.Time
	logger zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(deps OrderDependencies, logger zerolog.Logger) OrderService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	if deps.Topic == "" {
		deps.Topic = DefaultOrderTopic
	}
	return &orderService{
		deps:   deps,
		now:    now,
		logger: logger.With().Str("service", "order").Logger(),
	}
}

// quote is a priced checkout that has not been persisted.
type quote struct {
	lines          []model.OrderItemRequest
	variants       map[int64]model.ProductVariant
	address        *model.ShippingAddressView
	estimate       pricing.Estimate
	voucher        *model.Voucher
	voucherMessage string
	amounts        pricing.Amounts
}

func (q *quote) voucherSummary() *model.VoucherSummary {
	if q.voucher == nil {
		return nil
	}
	return q.voucher.Summary()
}

// CreateOrder prices the request, persists the order with its items,
// payment and outbox event in one transaction, then redeems the voucher
// and cleans the cart as best-effort follow-ups.
func (s *orderService) CreateOrder(ctx context.Context, userID int64, req *model.OrderRequest) (*model.OrderResponse, error) {
	if err := validateCheckout(req); err != nil {
		return nil, err
	}

	q, err := s.price(ctx, userID, req.ShippingAddressID, req.OrderItems, req.VoucherCode)
	if err != nil {
		return nil, err
	}

	now := s.now()
	order := &model.Order{
		UserID:            userID,
		ShippingAddressID: req.ShippingAddressID,
		Status:            model.OrderStatusPending,
		PaymentMethod:     strings.TrimSpace(req.PaymentMethod),
		ShippingFee:       q.amounts.ShippingFee,
		TotalAmount:       q.amounts.FinalAmount,
		OriginalAmount:    q.amounts.OriginalAmount,
		DiscountAmount:    q.amounts.DiscountAmount,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if q.voucher != nil {
		order.VoucherID = &q.voucher.ID
	}

	items := make([]model.OrderItem, len(q.lines))
	payment := &model.Payment{
		Method: order.PaymentMethod,
		Status: model.PaymentStatusUnpaid,
		Amount: q.amounts.FinalAmount,
	}

	err = repository.WithTx(ctx, s.deps.Tx, s.logger, func(tx pgx.Tx) error {
		if err := s.deps.Orders.CreateOrder(ctx, tx, order); err != nil {
			return err
		}

		for i, line := range q.lines {
			items[i] = model.OrderItem{
				OrderID:         order.ID,
				ProductDetailID: line.ProductDetailID,
				Quantity:        line.Quantity,
				Price:           q.variants[line.ProductDetailID].Price,
			}
		}
		if err := s.deps.Orders.CreateOrderItems(ctx, tx, items); err != nil {
			return err
		}

		payment.OrderID = order.ID
		if err := s.deps.Payments.Create(ctx, tx, payment); err != nil {
			return err
		}

		return s.deps.Events.Append(ctx, tx, outbox.Event{
			Topic:   s.deps.Topic,
			Key:     strconv.FormatInt(order.ID, 10),
			Payload: s.createdEvent(order, items, q),
		})
	})
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to persist order")
		return nil, errors.Wrap(err, "persist order")
	}
	s.deps.Metrics.OrdersCreated.Inc()

	followUps := []model.StepResult{
		s.applyVoucher(ctx, userID, order.ID, q.voucher),
		s.cleanCart(ctx, userID, q.lines),
	}

	s.logger.Info().
		Int64("order_id", order.ID).
		Int64("user_id", userID).
		Int("item_count", len(items)).
		Str("total", order.TotalAmount.String()).
		Msg("order created successfully")

	return &model.OrderResponse{
		Order:           *order,
		OrderItems:      itemViews(items, q.variants),
		ShippingAddress: q.address,
		Payment:         payment,
		Voucher:         q.voucherSummary(),
		VoucherMessage:  q.voucherMessage,
		FollowUps:       followUps,
	}, nil
}

// CalculateOrderTotal prices the request without persisting anything.
func (s *orderService) CalculateOrderTotal(ctx context.Context, userID int64, req *model.CalculateOrderRequest) (*model.OrderTotalResponse, error) {
	if req == nil {
		return nil, missingFields("shippingAddressId", "orderItems")
	}
	var missing []string
	if req.ShippingAddressID <= 0 {
		missing = append(missing, "shippingAddressId")
	}
	missing = append(missing, validateLines(req.OrderItems)...)
	if len(missing) > 0 {
		return nil, missingFields(missing...)
	}

	q, err := s.price(ctx, userID, req.ShippingAddressID, req.OrderItems, req.VoucherCode)
	if err != nil {
		return nil, err
	}

	return &model.OrderTotalResponse{
		TotalProduct:   q.amounts.ProductSubtotal,
		ShippingFee:    q.amounts.ShippingFee,
		OriginalAmount: q.amounts.OriginalAmount,
		DiscountAmount: q.amounts.DiscountAmount,
		FinalAmount:    q.amounts.FinalAmount,
		Voucher:        q.voucherSummary(),
		VoucherMessage: q.voucherMessage,
	}, nil
}

// price resolves variants, address, shipping fee and voucher and computes
// the amounts. An unusable voucher is dropped and explained in
// voucherMessage instead of failing the checkout.
func (s *orderService) price(ctx context.Context, userID, addressID int64, lines []model.OrderItemRequest, code *string) (*quote, error) {
	variants, err := s.loadVariants(ctx, lines)
	if err != nil {
		return nil, err
	}

	address, resolveErr := s.deps.Addresses.Resolve(ctx, addressID)
	if address == nil {
		if resolveErr == nil {
			resolveErr = model.NewNotFoundError("Shipping address", addressID)
		}
		return nil, resolveErr
	}
	if address.UserID != userID {
		s.logger.Warn().
			Int64("user_id", userID).
			Int64("shipping_address_id", addressID).
			Msg("shipping address belongs to another user")
		return nil, model.NewNotFoundError("Shipping address", addressID)
	}

	q := &quote{lines: lines, variants: variants, address: address}

	priced := make([]pricing.Line, len(lines))
	for i, line := range lines {
		priced[i] = pricing.Line{UnitPrice: variants[line.ProductDetailID].Price, Quantity: line.Quantity}
	}
	subtotal := pricing.Subtotal(priced)

	q.estimate = s.deps.Shipping.EstimateForAddress(address, resolveErr)
	if q.estimate.Fallback {
		s.deps.Metrics.ShippingFallbacks.Inc()
	}

	if code != nil && strings.TrimSpace(*code) != "" {
		voucherCode := strings.TrimSpace(*code)
		res, err := s.deps.Ledger.Validate(ctx, voucherCode, userID, subtotal.Add(q.estimate.Fee), q.estimate.Fee)
		if err != nil {
			return nil, errors.Wrap(err, "validate voucher")
		}
		if res.Valid {
			q.voucher = res.Voucher
		} else {
			s.logger.Warn().
				Str("voucher_code", voucherCode).
				Int64("user_id", userID).
				Str("reason", res.Reason).
				Msg("voucher dropped from checkout")
			q.voucherMessage = res.Reason
		}
	}

	q.amounts = pricing.ComputeAmounts(subtotal, q.estimate.Fee, pricing.SnapshotOf(q.voucher))
	return q, nil
}

// loadVariants fetches every referenced variant and fails with all
// unknown ids at once.
func (s *orderService) loadVariants(ctx context.Context, lines []model.OrderItemRequest) (map[int64]model.ProductVariant, error) {
	ids := uniqueVariantIDs(lines)

	found, err := s.deps.Products.GetVariantsByIDs(ctx, ids)
	if err != nil {
		s.logger.Error().Err(err).Int("variant_count", len(ids)).Msg("failed to load product variants")
		return nil, errors.Wrap(err, "load product variants")
	}

	variants := make(map[int64]model.ProductVariant, len(found))
	for _, v := range found {
		variants[v.ID] = v
	}

	var unknown []int64
	for _, id := range ids {
		if _, ok := variants[id]; !ok {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		s.logger.Warn().Ints64("unknown_ids", unknown).Msg("checkout references unknown product variants")
		return nil, model.NewUnknownProductsError(unknown)
	}
	return variants, nil
}

func (s *orderService) createdEvent(order *model.Order, items []model.OrderItem, q *quote) OrderCreatedEvent {
	event := OrderCreatedEvent{
		OrderID:        order.ID,
		UserID:         order.UserID,
		Status:         order.Status,
		PaymentMethod:  order.PaymentMethod,
		OriginalAmount: order.OriginalAmount,
		DiscountAmount: order.DiscountAmount,
		TotalAmount:    order.TotalAmount,
		Items:          items,
		CreatedAt:      order.CreatedAt,
	}
	if q.voucher != nil {
		event.VoucherCode = q.voucher.Code
	}
	return event
}

func (s *orderService) applyVoucher(ctx context.Context, userID, orderID int64, v *model.Voucher) model.StepResult {
	if v == nil {
		return model.StepResult{Step: StepVoucherApply, Status: model.StepSkipped}
	}
	if _, err := s.deps.Ledger.Apply(ctx, v.Code, userID, &orderID); err != nil {
		return s.followUpFailed(StepVoucherApply, orderID, err)
	}
	return model.StepResult{Step: StepVoucherApply, Status: model.StepOK}
}

func (s *orderService) cleanCart(ctx context.Context, userID int64, lines []model.OrderItemRequest) model.StepResult {
	removed, err := s.deps.Carts.RemoveItems(ctx, userID, uniqueVariantIDs(lines))
	if err != nil {
		return s.followUpFailed(StepCartCleanup, 0, err)
	}
	s.logger.Debug().Int64("user_id", userID).Int64("removed", removed).Msg("cart cleaned")
	return model.StepResult{Step: StepCartCleanup, Status: model.StepOK}
}

func (s *orderService) followUpFailed(step string, orderID int64, err error) model.StepResult {
	s.deps.Metrics.FollowupFailures.WithLabelValues(step).Inc()
	s.logger.Error().
		Err(err).
		Str("step", step).
		Int64("order_id", orderID).
		Msg("checkout follow-up failed")
	return model.StepResult{Step: step, Status: model.StepFailed, Error: err.Error()}
}

// UpdateStatus sets the order's status and its timestamp. Any status may
// follow a non-terminal one; terminal orders keep their status. Moving to
// PAID settles the order's payment in the same transaction.
func (s *orderService) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) (*model.OrderResponse, error) {
	if !status.Valid() {
		return nil, model.ErrInvalidStatus
	}

	order, items, err := s.deps.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, errors.Wrap(err, "get order")
	}
	if order == nil {
		return nil, model.NewNotFoundError("Order", orderID)
	}
	if order.Status.Terminal() && order.Status != status {
		s.logger.Warn().
			Int64("order_id", orderID).
			Str("from", string(order.Status)).
			Str("to", string(status)).
			Msg("status change out of a final status refused")
		return nil, model.ErrTerminalStatus
	}

	previous := order.Status
	order.SetStatus(status, s.now())
	err = repository.WithTx(ctx, s.deps.Tx, s.logger, func(tx pgx.Tx) error {
		if err := s.deps.Orders.UpdateStatus(ctx, tx, order); err != nil {
			return err
		}
		if status == model.OrderStatusPaid {
			return s.deps.Payments.MarkPaid(ctx, tx, order.ID, *order.PaidAt)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "update order status")
	}

	s.logger.Info().
		Int64("order_id", orderID).
		Str("from", string(previous)).
		Str("to", string(status)).
		Msg("order status updated")
	return s.compose(ctx, order, items)
}

// GetByID returns the order if it belongs to userID.
func (s *orderService) GetByID(ctx context.Context, orderID, userID int64) (*model.OrderResponse, error) {
	order, items, err := s.deps.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, errors.Wrap(err, "get order")
	}
	if order == nil {
		return nil, model.NewNotFoundError("Order", orderID)
	}
	if order.UserID != userID {
		return nil, model.ErrForbidden
	}
	return s.compose(ctx, order, items)
}

// ListByUser returns every order of userID, newest first.
func (s *orderService) ListByUser(ctx context.Context, userID int64) ([]model.OrderResponse, error) {
	orders, err := s.deps.Orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	if len(orders) == 0 {
		return []model.OrderResponse{}, nil
	}

	ids := make([]int64, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	itemsByOrder, err := s.deps.Orders.GetItems(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "list order items")
	}

	out := make([]model.OrderResponse, 0, len(orders))
	for i := range orders {
		view, err := s.compose(ctx, &orders[i], itemsByOrder[orders[i].ID])
		if err != nil {
			return nil, err
		}
		out = append(out, *view)
	}
	return out, nil
}

// compose builds the display view of a stored order. A shipping address
// that no longer resolves fully is shown as far as it resolves.
func (s *orderService) compose(ctx context.Context, order *model.Order, items []model.OrderItem) (*model.OrderResponse, error) {
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductDetailID)
	}
	variants := make(map[int64]model.ProductVariant, len(ids))
	if len(ids) > 0 {
		found, err := s.deps.Products.GetVariantsByIDs(ctx, ids)
		if err != nil {
			return nil, errors.Wrap(err, "load product variants")
		}
		for _, v := range found {
			variants[v.ID] = v
		}
	}

	resp := &model.OrderResponse{
		Order:      *order,
		OrderItems: itemViews(items, variants),
	}

	address, err := s.deps.Addresses.Resolve(ctx, order.ShippingAddressID)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Int64("order_id", order.ID).
			Int64("shipping_address_id", order.ShippingAddressID).
			Msg("order shipping address only partly resolved")
	}
	resp.ShippingAddress = address

	resp.Payment, err = s.deps.Payments.GetByOrderID(ctx, order.ID)
	if err != nil {
		return nil, errors.Wrap(err, "get payment")
	}

	if order.VoucherID != nil {
		v, err := s.deps.Vouchers.GetByID(ctx, *order.VoucherID)
		if err != nil {
			return nil, errors.Wrap(err, "get voucher")
		}
		if v != nil {
			resp.Voucher = v.Summary()
		}
	}
	return resp, nil
}

// ShippingFee estimates the fee to an address. Unresolvable addresses get
// the fallback fee with the reason in Message.
func (s *orderService) ShippingFee(ctx context.Context, shippingAddressID int64) (*model.ShippingFeeResponse, error) {
	if shippingAddressID <= 0 {
		return nil, model.NewFieldError("Invalid shipping address", "shippingAddressId")
	}

	est := s.deps.Shipping.EstimateShippingFee(ctx, shippingAddressID)
	resp := &model.ShippingFeeResponse{
		ShippingFee: est.Fee,
		Region:      est.Region,
		Fallback:    est.Fallback,
	}
	if est.Fallback {
		s.deps.Metrics.ShippingFallbacks.Inc()
		if est.Err != nil {
			resp.Message = est.Err.Error()
		}
	}
	return resp, nil
}

func validateCheckout(req *model.OrderRequest) error {
	if req == nil {
		return missingFields("shippingAddressId", "paymentMethod", "orderItems")
	}

	var missing []string
	if req.ShippingAddressID <= 0 {
		missing = append(missing, "shippingAddressId")
	}
	if strings.TrimSpace(req.PaymentMethod) == "" {
		missing = append(missing, "paymentMethod")
	}
	missing = append(missing, validateLines(req.OrderItems)...)
	if len(missing) > 0 {
		return missingFields(missing...)
	}
	return nil
}

func validateLines(lines []model.OrderItemRequest) []string {
	if len(lines) == 0 {
		return []string{"orderItems"}
	}
	var bad []string
	for i, line := range lines {
		if line.ProductDetailID <= 0 {
			bad = append(bad, fmt.Sprintf("orderItems[%d].productDetailId", i))
		}
		if line.Quantity <= 0 {
			bad = append(bad, fmt.Sprintf("orderItems[%d].quantity", i))
		}
	}
	return bad
}

func missingFields(fields ...string) *model.ValidationError {
	return &model.ValidationError{
		Code:    model.ErrCodeMissingField,
		Message: "Missing or invalid checkout fields",
		Fields:  fields,
	}
}

func uniqueVariantIDs(lines []model.OrderItemRequest) []int64 {
	seen := make(map[int64]struct{}, len(lines))
	ids := make([]int64, 0, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.ProductDetailID]; ok {
			continue
		}
		seen[line.ProductDetailID] = struct{}{}
		ids = append(ids, line.ProductDetailID)
	}
	return ids
}

func itemViews(items []model.OrderItem, variants map[int64]model.ProductVariant) []model.OrderItemView {
	views := make([]model.OrderItemView, len(items))
	for i, it := range items {
		views[i] = model.OrderItemView{OrderItem: it}
		if v, ok := variants[it.ProductDetailID]; ok {
			views[i].ProductName = v.ProductName
			views[i].ImageURL = v.ImageURL
		}
	}
	return views
}
