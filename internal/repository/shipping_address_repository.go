package repository

import (
	"context"
	"fmt"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// shippingAddressRepository implements the ShippingAddressRepository interface using PostgreSQL.
type shippingAddressRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewShippingAddressRepository creates a new PostgreSQL-backed shipping address repository.
func NewShippingAddressRepository(pool *pgxpool.Pool, logger zerolog.Logger) ShippingAddressRepository {
	return &shippingAddressRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "shipping_address").Logger(),
	}
}

// ListByUser retrieves a user's addresses, the default first.
func (r *shippingAddressRepository) ListByUser(ctx context.Context, userID int64) ([]model.ShippingAddress, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, recipient_name, phone, ward_code, more_detail, is_default
		FROM shipping_addresses
		WHERE user_id = $1
		ORDER BY is_default DESC, id
	`, userID)
	if err != nil {
		r.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to query shipping addresses")
		return nil, fmt.Errorf("failed to query shipping addresses: %w", err)
	}
	defer rows.Close()

	var addresses []model.ShippingAddress
	for rows.Next() {
		var a model.ShippingAddress
		if err := rows.Scan(&a.ID, &a.UserID, &a.RecipientName, &a.Phone, &a.WardCode, &a.MoreDetail, &a.IsDefault); err != nil {
			return nil, fmt.Errorf("failed to scan shipping address: %w", err)
		}
		addresses = append(addresses, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shipping addresses: %w", err)
	}
	return addresses, nil
}

// CountByUser counts a user's addresses within tx.
func (r *shippingAddressRepository) CountByUser(ctx context.Context, tx pgx.Tx, userID int64) (int, error) {
	var n int
	err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM shipping_addresses WHERE user_id = $1`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count shipping addresses: %w", err)
	}
	return n, nil
}

// Create inserts a within tx and sets its id.
func (r *shippingAddressRepository) Create(ctx context.Context, tx pgx.Tx, a *model.ShippingAddress) error {
	err := tx.QueryRow(ctx, `
		INSERT INTO shipping_addresses (user_id, recipient_name, phone, ward_code, more_detail, is_default)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, a.UserID, a.RecipientName, a.Phone, a.WardCode, a.MoreDetail, a.IsDefault).Scan(&a.ID)
	if err != nil {
		r.logger.Error().Err(err).Int64("user_id", a.UserID).Msg("failed to create shipping address")
		return fmt.Errorf("failed to create shipping address: %w", err)
	}

	r.logger.Info().Int64("shipping_address_id", a.ID).Int64("user_id", a.UserID).Msg("shipping address created")
	return nil
}

// Update persists every column of a within tx.
func (r *shippingAddressRepository) Update(ctx context.Context, tx pgx.Tx, a *model.ShippingAddress) error {
	tag, err := tx.Exec(ctx, `
		UPDATE shipping_addresses
		SET recipient_name = $2, phone = $3, ward_code = $4, more_detail = $5, is_default = $6
		WHERE id = $1
	`, a.ID, a.RecipientName, a.Phone, a.WardCode, a.MoreDetail, a.IsDefault)
	if err != nil {
		r.logger.Error().Err(err).Int64("shipping_address_id", a.ID).Msg("failed to update shipping address")
		return fmt.Errorf("failed to update shipping address: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.NewNotFoundError("Shipping address", a.ID)
	}
	return nil
}

// Delete removes an address within tx. Addresses referenced by an order
// fail with model.ErrAddressInUse.
func (r *shippingAddressRepository) Delete(ctx context.Context, tx pgx.Tx, id int64) error {
	tag, err := tx.Exec(ctx, `DELETE FROM shipping_addresses WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err, "orders_shipping_address_id_fkey") {
			return model.ErrAddressInUse
		}
		r.logger.Error().Err(err).Int64("shipping_address_id", id).Msg("failed to delete shipping address")
		return fmt.Errorf("failed to delete shipping address: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.NewNotFoundError("Shipping address", id)
	}

	r.logger.Info().Int64("shipping_address_id", id).Msg("shipping address deleted")
	return nil
}

// ClearDefault unsets the default flag on every address of userID except keepID.
func (r *shippingAddressRepository) ClearDefault(ctx context.Context, tx pgx.Tx, userID, keepID int64) error {
	_, err := tx.Exec(ctx, `
		UPDATE shipping_addresses SET is_default = FALSE
		WHERE user_id = $1 AND id <> $2 AND is_default
	`, userID, keepID)
	if err != nil {
		return fmt.Errorf("failed to clear default shipping address: %w", err)
	}
	return nil
}

// PromoteDefault marks the oldest address of userID as default when the
// user has addresses but none is default.
func (r *shippingAddressRepository) PromoteDefault(ctx context.Context, tx pgx.Tx, userID int64) error {
	_, err := tx.Exec(ctx, `
		UPDATE shipping_addresses SET is_default = TRUE
		WHERE id = (
			SELECT id FROM shipping_addresses WHERE user_id = $1 ORDER BY id LIMIT 1
		)
		AND NOT EXISTS (
			SELECT 1 FROM shipping_addresses WHERE user_id = $1 AND is_default
		)
	`, userID)
	if err != nil {
		return fmt.Errorf("failed to promote default shipping address: %w", err)
	}
	return nil
}
