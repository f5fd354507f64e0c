package repository

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const orderColumns = `
	id, user_id, shipping_address_id, status, payment_method, shipping_fee,
	total_amount, original_amount, discount_amount, voucher_id, tracking_code,
	paid_at, confirmed_at, delivered_at, completed_at, canceled_at,
	request_cancel_at, refunded_at, created_at, updated_at
`

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// CreateOrder inserts a new order within the provided transaction and fills
// in its generated id.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (user_id, shipping_address_id, status, payment_method, shipping_fee,
			total_amount, original_amount, discount_amount, voucher_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`

	err := tx.QueryRow(ctx, query,
		order.UserID, order.ShippingAddressID, order.Status, order.PaymentMethod, order.ShippingFee,
		order.TotalAmount, order.OriginalAmount, order.DiscountAmount, order.VoucherID,
		order.CreatedAt, order.UpdatedAt,
	).Scan(&order.ID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Int64("user_id", order.UserID).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Int64("order_id", order.ID).
		Msg("order created successfully")

	return nil
}

// CreateOrderItems inserts multiple order items within the provided transaction.
func (r *orderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_items (order_id, product_detail_id, quantity, price)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query, item.OrderID, item.ProductDetailID, item.Quantity, item.Price)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := range items {
		if err := results.QueryRow().Scan(&items[i].ID); err != nil {
			r.logger.Error().
				Err(err).
				Int64("order_id", items[i].OrderID).
				Int64("product_detail_id", items[i].ProductDetailID).
				Msg("failed to create order item")
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(items)).
		Msg("order items created successfully")

	return nil
}

// GetByID retrieves an order by its ID along with its items.
func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, []model.OrderItem, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Int64("order_id", id).Msg("failed to query order")
		return nil, nil, fmt.Errorf("failed to query order: %w", err)
	}

	order, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[model.Order])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Int64("order_id", id).Msg("order not found")
			return nil, nil, nil
		}
		r.logger.Error().Err(err).Int64("order_id", id).Msg("failed to scan order")
		return nil, nil, fmt.Errorf("failed to scan order: %w", err)
	}

	items, err := r.GetItems(ctx, []int64{id})
	if err != nil {
		return nil, nil, err
	}

	return &order, items[id], nil
}

// ListByUser retrieves a user's orders, newest first.
func (r *orderRepository) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		r.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}

	orders, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Order])
	if err != nil {
		r.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to scan order rows")
		return nil, fmt.Errorf("failed to scan orders: %w", err)
	}
	return orders, nil
}

// GetItems retrieves the items of the given orders keyed by order id.
func (r *orderRepository) GetItems(ctx context.Context, orderIDs []int64) (map[int64][]model.OrderItem, error) {
	byOrder := make(map[int64][]model.OrderItem, len(orderIDs))
	if len(orderIDs) == 0 {
		return byOrder, nil
	}

	query := `
		SELECT id, order_id, product_detail_id, quantity, price
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, id
	`

	rows, err := r.pool.Query(ctx, query, orderIDs)
	if err != nil {
		r.logger.Error().
			Err(err).
			Int("order_count", len(orderIDs)).
			Msg("failed to query order items")
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}

	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.OrderItem])
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to scan order item rows")
		return nil, fmt.Errorf("failed to scan order items: %w", err)
	}

	for _, item := range items {
		byOrder[item.OrderID] = append(byOrder[item.OrderID], item)
	}
	return byOrder, nil
}

// UpdateStatus persists status, timestamps and updated_at of order within
// tx. Timestamp columns already set in the database are never overwritten,
// and a row that reached a final status only accepts that same status.
func (r *orderRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		UPDATE orders SET
			status = $2,
			paid_at = COALESCE(paid_at, $3),
			confirmed_at = COALESCE(confirmed_at, $4),
			delivered_at = COALESCE(delivered_at, $5),
			completed_at = COALESCE(completed_at, $6),
			canceled_at = COALESCE(canceled_at, $7),
			request_cancel_at = COALESCE(request_cancel_at, $8),
			refunded_at = COALESCE(refunded_at, $9),
			updated_at = $10
		WHERE id = $1
			AND (status = $2 OR status NOT IN ('COMPLETED', 'CANCELLED', 'REFUNDED'))
	`

	tag, err := tx.Exec(ctx, query,
		order.ID, order.Status,
		order.PaidAt, order.ConfirmedAt, order.DeliveredAt, order.CompletedAt,
		order.CanceledAt, order.RequestCancelAt, order.RefundedAt,
		order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Int64("order_id", order.ID).Str("status", string(order.Status)).Msg("failed to update order status")
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, order.ID).Scan(&exists); err != nil {
		r.logger.Error().Err(err).Int64("order_id", order.ID).Msg("failed to check order existence")
		return fmt.Errorf("failed to check order existence: %w", err)
	}
	if !exists {
		return model.NewNotFoundError("Order", order.ID)
	}
	r.logger.Warn().Int64("order_id", order.ID).Str("status", string(order.Status)).Msg("order reached a final status concurrently")
	return model.ErrTerminalStatus
}
