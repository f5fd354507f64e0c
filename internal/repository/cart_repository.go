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

// cartRepository implements the CartRepository interface using PostgreSQL.
type cartRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

// ListItems retrieves the lines of a user's cart with their variants.
func (r *cartRepository) ListItems(ctx context.Context, userID int64) ([]model.CartItemView, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT ci.id, ci.cart_id, c.user_id, ci.product_detail_id, ci.quantity,
			p.name, pd.price, pd.stock, pd.size, pd.color, pd.image_url
		FROM cart_items ci
		JOIN carts c ON c.id = ci.cart_id
		JOIN product_details pd ON pd.id = ci.product_detail_id
		JOIN products p ON p.id = pd.product_id
		WHERE c.user_id = $1
		ORDER BY ci.id
	`, userID)
	if err != nil {
		r.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to query cart items")
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()

	var items []model.CartItemView
	for rows.Next() {
		var it model.CartItemView
		if err := rows.Scan(
			&it.ID, &it.CartID, &it.UserID, &it.ProductDetailID, &it.Quantity,
			&it.ProductName, &it.Price, &it.Stock, &it.Size, &it.Color, &it.ImageURL,
		); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}
	return items, nil
}

// GetItem retrieves one cart line with the id of its owner.
func (r *cartRepository) GetItem(ctx context.Context, itemID int64) (*model.CartItem, error) {
	var it model.CartItem
	err := r.pool.QueryRow(ctx, `
		SELECT ci.id, ci.cart_id, c.user_id, ci.product_detail_id, ci.quantity
		FROM cart_items ci
		JOIN carts c ON c.id = ci.cart_id
		WHERE ci.id = $1
	`, itemID).Scan(&it.ID, &it.CartID, &it.UserID, &it.ProductDetailID, &it.Quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("cart_item_id", itemID).Msg("failed to query cart item")
		return nil, fmt.Errorf("failed to query cart item: %w", err)
	}
	return &it, nil
}

// EnsureCart returns the id of the user's cart, creating it when missing.
func (r *cartRepository) EnsureCart(ctx context.Context, tx pgx.Tx, userID int64) (int64, error) {
	var id int64
	err := tx.QueryRow(ctx, `
		INSERT INTO carts (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id
	`, userID).Scan(&id)
	if err != nil {
		r.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to ensure cart")
		return 0, fmt.Errorf("failed to ensure cart: %w", err)
	}
	return id, nil
}

// AddItem adds quantity units of a variant to the cart, merging with an
// existing line. It returns nil when the merged quantity would exceed the
// variant's stock.
func (r *cartRepository) AddItem(ctx context.Context, tx pgx.Tx, cartID, productDetailID int64, quantity int) (*model.CartItem, error) {
	var it model.CartItem
	err := tx.QueryRow(ctx, `
		INSERT INTO cart_items (cart_id, product_detail_id, quantity)
		SELECT $1::BIGINT, pd.id, $3::INTEGER
		FROM product_details pd
		WHERE pd.id = $2::BIGINT AND pd.stock >= $3::INTEGER + COALESCE(
			(SELECT quantity FROM cart_items WHERE cart_id = $1::BIGINT AND product_detail_id = $2::BIGINT), 0)
		ON CONFLICT (cart_id, product_detail_id) DO UPDATE
		SET quantity = cart_items.quantity + EXCLUDED.quantity
		WHERE (SELECT stock FROM product_details WHERE id = EXCLUDED.product_detail_id)
			>= cart_items.quantity + EXCLUDED.quantity
		RETURNING id, cart_id, product_detail_id, quantity
	`, cartID, productDetailID, quantity).Scan(&it.ID, &it.CartID, &it.ProductDetailID, &it.Quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Int64("cart_id", cartID).Int64("product_detail_id", productDetailID).
				Int("quantity", quantity).Msg("cart item exceeds stock")
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("cart_id", cartID).Msg("failed to add cart item")
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}
	return &it, nil
}

// SetQuantity replaces the quantity of a line. It returns nil when the
// line is gone or quantity exceeds the variant's stock.
func (r *cartRepository) SetQuantity(ctx context.Context, tx pgx.Tx, itemID int64, quantity int) (*model.CartItem, error) {
	var it model.CartItem
	err := tx.QueryRow(ctx, `
		UPDATE cart_items ci
		SET quantity = $2
		FROM product_details pd
		WHERE ci.id = $1 AND pd.id = ci.product_detail_id AND pd.stock >= $2
		RETURNING ci.id, ci.cart_id, ci.product_detail_id, ci.quantity
	`, itemID, quantity).Scan(&it.ID, &it.CartID, &it.ProductDetailID, &it.Quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("cart_item_id", itemID).Msg("failed to update cart item")
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}
	return &it, nil
}

// DeleteItem removes one line within tx.
func (r *cartRepository) DeleteItem(ctx context.Context, tx pgx.Tx, itemID int64) error {
	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE id = $1`, itemID); err != nil {
		r.logger.Error().Err(err).Int64("cart_item_id", itemID).Msg("failed to delete cart item")
		return fmt.Errorf("failed to delete cart item: %w", err)
	}
	return nil
}

// RemoveItems deletes the given variants from the user's cart.
func (r *cartRepository) RemoveItems(ctx context.Context, userID int64, productDetailIDs []int64) (int64, error) {
	if len(productDetailIDs) == 0 {
		return 0, nil
	}

	tag, err := r.pool.Exec(ctx, `
		DELETE FROM cart_items ci
		USING carts c
		WHERE ci.cart_id = c.id AND c.user_id = $1 AND ci.product_detail_id = ANY($2)
	`, userID, productDetailIDs)
	if err != nil {
		r.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to remove cart items")
		return 0, fmt.Errorf("failed to remove cart items: %w", err)
	}

	r.logger.Debug().Int64("user_id", userID).Int64("removed", tag.RowsAffected()).Msg("cart items removed")
	return tag.RowsAffected(), nil
}
