package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// paymentRepository implements the PaymentRepository interface using PostgreSQL.
type paymentRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPaymentRepository creates a new PostgreSQL-backed payment repository.
func NewPaymentRepository(pool *pgxpool.Pool, logger zerolog.Logger) PaymentRepository {
	return &paymentRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "payment").Logger(),
	}
}

// Create inserts a payment within the provided transaction.
func (r *paymentRepository) Create(ctx context.Context, tx pgx.Tx, p *model.Payment) error {
	err := tx.QueryRow(ctx, `
		INSERT INTO payments (order_id, method, status, amount, paid_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, p.OrderID, p.Method, p.Status, p.Amount, p.PaidAt).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		r.logger.Error().Err(err).Int64("order_id", p.OrderID).Msg("failed to create payment")
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

// GetByOrderID retrieves the payment of an order.
func (r *paymentRepository) GetByOrderID(ctx context.Context, orderID int64) (*model.Payment, error) {
	var p model.Payment
	err := r.pool.QueryRow(ctx, `
		SELECT id, order_id, method, status, amount, paid_at, created_at
		FROM payments
		WHERE order_id = $1
	`, orderID).Scan(&p.ID, &p.OrderID, &p.Method, &p.Status, &p.Amount, &p.PaidAt, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("order_id", orderID).Msg("failed to query payment")
		return nil, fmt.Errorf("failed to query payment: %w", err)
	}
	return &p, nil
}

// MarkPaid settles the payment of an order within tx. paid_at keeps its
// first value when the payment was already settled.
func (r *paymentRepository) MarkPaid(ctx context.Context, tx pgx.Tx, orderID int64, paidAt time.Time) error {
	tag, err := tx.Exec(ctx, `
		UPDATE payments SET
			status = $2,
			paid_at = COALESCE(paid_at, $3)
		WHERE order_id = $1
	`, orderID, model.PaymentStatusPaid, paidAt)
	if err != nil {
		r.logger.Error().Err(err).Int64("order_id", orderID).Msg("failed to mark payment paid")
		return fmt.Errorf("failed to mark payment paid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.NewNotFoundError("Payment of order", orderID)
	}

	r.logger.Debug().Int64("order_id", orderID).Msg("payment marked paid")
	return nil
}
