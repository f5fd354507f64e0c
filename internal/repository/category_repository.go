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

// categoryRepository implements the CategoryRepository interface using PostgreSQL.
type categoryRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCategoryRepository creates a new PostgreSQL-backed category repository.
func NewCategoryRepository(pool *pgxpool.Pool, logger zerolog.Logger) CategoryRepository {
	return &categoryRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "category").Logger(),
	}
}

// ListAll retrieves every category ordered by id.
func (r *categoryRepository) ListAll(ctx context.Context) ([]model.Category, error) {
	return r.query(ctx, `SELECT id, name, parent_id FROM categories ORDER BY id`)
}

// GetByID retrieves a category by id.
func (r *categoryRepository) GetByID(ctx context.Context, id int64) (*model.Category, error) {
	return r.queryOne(ctx, `SELECT id, name, parent_id FROM categories WHERE id = $1`, id)
}

// GetByName retrieves a category by case-insensitive name.
func (r *categoryRepository) GetByName(ctx context.Context, name string) (*model.Category, error) {
	return r.queryOne(ctx, `SELECT id, name, parent_id FROM categories WHERE LOWER(name) = LOWER($1)`, name)
}

// ListChildren retrieves the direct children of all given parents.
func (r *categoryRepository) ListChildren(ctx context.Context, parentIDs []int64) ([]model.Category, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}
	return r.query(ctx, `SELECT id, name, parent_id FROM categories WHERE parent_id = ANY($1) ORDER BY id`, parentIDs)
}

func (r *categoryRepository) query(ctx context.Context, sql string, args ...any) ([]model.Category, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query categories")
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}

	categories, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Category])
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to scan category rows")
		return nil, fmt.Errorf("failed to scan categories: %w", err)
	}
	return categories, nil
}

func (r *categoryRepository) queryOne(ctx context.Context, sql string, arg any) (*model.Category, error) {
	var c model.Category
	err := r.pool.QueryRow(ctx, sql, arg).Scan(&c.ID, &c.Name, &c.ParentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Interface("key", arg).Msg("category not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Interface("key", arg).Msg("failed to query category")
		return nil, fmt.Errorf("failed to query category: %w", err)
	}
	return &c, nil
}
