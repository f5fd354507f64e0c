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

const voucherColumns = `
	id, code, name, description, type, discount_type, discount_value,
	max_discount_amount, min_order_amount, max_usage_count, current_usage_count,
	start_date, end_date, is_active, created_at, updated_at
`

// voucherRepository implements the VoucherRepository interface using PostgreSQL.
type voucherRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewVoucherRepository creates a new PostgreSQL-backed voucher repository.
func NewVoucherRepository(pool *pgxpool.Pool, logger zerolog.Logger) VoucherRepository {
	return &voucherRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "voucher").Logger(),
	}
}

// Create inserts v and fills in its generated id and timestamps.
func (r *voucherRepository) Create(ctx context.Context, v *model.Voucher) error {
	query := `
		INSERT INTO vouchers (code, name, description, type, discount_type, discount_value,
			max_discount_amount, min_order_amount, max_usage_count, start_date, end_date, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, current_usage_count, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		v.Code, v.Name, v.Description, v.Type, v.DiscountType, v.DiscountValue,
		v.MaxDiscountAmount, v.MinOrderAmount, v.MaxUsageCount, v.StartDate, v.EndDate, v.IsActive,
	).Scan(&v.ID, &v.CurrentUsageCount, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "") {
			return model.ErrVoucherCodeTaken
		}
		r.logger.Error().Err(err).Str("code", v.Code).Msg("failed to create voucher")
		return fmt.Errorf("failed to create voucher: %w", err)
	}

	r.logger.Debug().Int64("voucher_id", v.ID).Str("code", v.Code).Msg("voucher created")
	return nil
}

// Update overwrites the editable fields of v.
func (r *voucherRepository) Update(ctx context.Context, v *model.Voucher) error {
	query := `
		UPDATE vouchers SET
			code = $2, name = $3, description = $4, type = $5, discount_type = $6,
			discount_value = $7, max_discount_amount = $8, min_order_amount = $9,
			max_usage_count = $10, start_date = $11, end_date = $12, is_active = $13,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		v.ID, v.Code, v.Name, v.Description, v.Type, v.DiscountType,
		v.DiscountValue, v.MaxDiscountAmount, v.MinOrderAmount,
		v.MaxUsageCount, v.StartDate, v.EndDate, v.IsActive,
	).Scan(&v.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.NewNotFoundError("Voucher", v.ID)
		}
		if isUniqueViolation(err, "") {
			return model.ErrVoucherCodeTaken
		}
		r.logger.Error().Err(err).Int64("voucher_id", v.ID).Msg("failed to update voucher")
		return fmt.Errorf("failed to update voucher: %w", err)
	}
	return nil
}

// Delete removes a voucher.
func (r *voucherRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM vouchers WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Int64("voucher_id", id).Msg("failed to delete voucher")
		return fmt.Errorf("failed to delete voucher: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.NewNotFoundError("Voucher", id)
	}
	return nil
}

// GetByID retrieves a voucher by id.
func (r *voucherRepository) GetByID(ctx context.Context, id int64) (*model.Voucher, error) {
	return r.queryOne(ctx, `SELECT `+voucherColumns+` FROM vouchers WHERE id = $1`, id)
}

// GetByCode retrieves a voucher by its exact code.
func (r *voucherRepository) GetByCode(ctx context.Context, code string) (*model.Voucher, error) {
	return r.queryOne(ctx, `SELECT `+voucherColumns+` FROM vouchers WHERE code = $1`, code)
}

// List retrieves every voucher, newest first.
func (r *voucherRepository) List(ctx context.Context) ([]model.Voucher, error) {
	return r.query(ctx, `SELECT `+voucherColumns+` FROM vouchers ORDER BY created_at DESC, id DESC`)
}

// ListActive retrieves active vouchers whose window contains now.
func (r *voucherRepository) ListActive(ctx context.Context, now time.Time) ([]model.Voucher, error) {
	return r.query(ctx, `
		SELECT `+voucherColumns+`
		FROM vouchers
		WHERE is_active AND start_date <= $1 AND end_date >= $1
		ORDER BY end_date, id
	`, now)
}

// CodeExists reports whether another voucher than excludeID uses code.
func (r *voucherRepository) CodeExists(ctx context.Context, code string, excludeID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM vouchers WHERE code = $1 AND id <> $2)`, code, excludeID,
	).Scan(&exists)
	if err != nil {
		r.logger.Error().Err(err).Str("code", code).Msg("failed to check voucher code")
		return false, fmt.Errorf("failed to check voucher code: %w", err)
	}
	return exists, nil
}

// HasUsage reports whether userID has redeemed voucherID.
func (r *voucherRepository) HasUsage(ctx context.Context, userID, voucherID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM voucher_usages WHERE user_id = $1 AND voucher_id = $2)`, userID, voucherID,
	).Scan(&exists)
	if err != nil {
		r.logger.Error().Err(err).Int64("user_id", userID).Int64("voucher_id", voucherID).Msg("failed to check voucher usage")
		return false, fmt.Errorf("failed to check voucher usage: %w", err)
	}
	return exists, nil
}

// CountUsages returns how many redemptions voucherID has.
func (r *voucherRepository) CountUsages(ctx context.Context, voucherID int64) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM voucher_usages WHERE voucher_id = $1`, voucherID).Scan(&n)
	if err != nil {
		r.logger.Error().Err(err).Int64("voucher_id", voucherID).Msg("failed to count voucher usages")
		return 0, fmt.Errorf("failed to count voucher usages: %w", err)
	}
	return n, nil
}

// Redeem inserts the usage row and bumps the counter in one transaction.
// The counter update only matches while the cap has room, so concurrent
// redemptions of the last unit cannot both succeed.
func (r *voucherRepository) Redeem(ctx context.Context, tx pgx.Tx, usage *model.VoucherUsage) error {
	err := tx.QueryRow(ctx, `
		INSERT INTO voucher_usages (user_id, voucher_id, order_id)
		VALUES ($1, $2, $3)
		RETURNING id, used_at
	`, usage.UserID, usage.VoucherID, usage.OrderID).Scan(&usage.ID, &usage.UsedAt)
	if err != nil {
		if isUniqueViolation(err, "voucher_usages_user_voucher_key") {
			return model.ErrVoucherAlreadyUsed
		}
		if isForeignKeyViolation(err, "voucher_usages_order_id_fkey") && usage.OrderID != nil {
			return model.NewNotFoundError("Order", *usage.OrderID)
		}
		r.logger.Error().Err(err).
			Int64("user_id", usage.UserID).
			Int64("voucher_id", usage.VoucherID).
			Msg("failed to insert voucher usage")
		return fmt.Errorf("failed to insert voucher usage: %w", err)
	}

	tag, err := tx.Exec(ctx, `
		UPDATE vouchers
		SET current_usage_count = current_usage_count + 1, updated_at = NOW()
		WHERE id = $1 AND (max_usage_count IS NULL OR current_usage_count < max_usage_count)
	`, usage.VoucherID)
	if err != nil {
		r.logger.Error().Err(err).Int64("voucher_id", usage.VoucherID).Msg("failed to increment voucher usage")
		return fmt.Errorf("failed to increment voucher usage: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrVoucherExhausted
	}

	r.logger.Debug().
		Int64("user_id", usage.UserID).
		Int64("voucher_id", usage.VoucherID).
		Msg("voucher redeemed")
	return nil
}

func (r *voucherRepository) query(ctx context.Context, sql string, args ...any) ([]model.Voucher, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query vouchers")
		return nil, fmt.Errorf("failed to query vouchers: %w", err)
	}

	vouchers, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Voucher])
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to scan voucher rows")
		return nil, fmt.Errorf("failed to scan vouchers: %w", err)
	}
	return vouchers, nil
}

func (r *voucherRepository) queryOne(ctx context.Context, sql string, arg any) (*model.Voucher, error) {
	rows, err := r.pool.Query(ctx, sql, arg)
	if err != nil {
		r.logger.Error().Err(err).Interface("key", arg).Msg("failed to query voucher")
		return nil, fmt.Errorf("failed to query voucher: %w", err)
	}

	v, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[model.Voucher])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Interface("key", arg).Msg("voucher not found")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan voucher: %w", err)
	}
	return &v, nil
}
