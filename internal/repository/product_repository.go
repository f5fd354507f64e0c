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

// filteredProducts selects products with their price range and stock.
// Parameters: $1 category ids, $2 min price, $3 max price, $4 colors,
// $5 sizes, $6 in-stock flag. NULL disables a filter.
const filteredProducts = `
	SELECT p.id, p.name, p.description, p.created_at,
		COALESCE(MIN(d.price), 0) AS min_price,
		COALESCE(MAX(d.price), 0) AS max_price,
		COALESCE(SUM(d.stock), 0)::INTEGER AS total_stock
	FROM products p
	LEFT JOIN product_details d ON d.product_id = p.id
	WHERE ($1::BIGINT[] IS NULL OR EXISTS (
			SELECT 1 FROM product_categories pc
			WHERE pc.product_id = p.id AND pc.category_id = ANY($1)))
		AND (($2::NUMERIC IS NULL AND $3::NUMERIC IS NULL) OR EXISTS (
			SELECT 1 FROM product_details x
			WHERE x.product_id = p.id
				AND ($2::NUMERIC IS NULL OR x.price >= $2)
				AND ($3::NUMERIC IS NULL OR x.price <= $3)))
		AND (COALESCE(cardinality($4::TEXT[]), 0) = 0 OR EXISTS (
			SELECT 1 FROM product_details x WHERE x.product_id = p.id AND x.color = ANY($4)))
		AND (COALESCE(cardinality($5::TEXT[]), 0) = 0 OR EXISTS (
			SELECT 1 FROM product_details x WHERE x.product_id = p.id AND x.size = ANY($5)))
	GROUP BY p.id
	HAVING $6::BOOLEAN IS NULL OR ($6 = (COALESCE(SUM(d.stock), 0) > 0))
`

// productOrderings whitelists ORDER BY clauses per sort key.
var productOrderings = map[string]string{
	model.SortPriceAsc:  "min_price ASC, id",
	model.SortPriceDesc: "max_price DESC, id",
	model.SortNewest:    "created_at DESC, id DESC",
	"":                  "id",
}

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

// List retrieves a filtered, sorted page of products with their variants.
func (r *productRepository) List(ctx context.Context, q model.ProductQuery) (*model.ProductPage, error) {
	ordering, ok := productOrderings[q.SortBy]
	if !ok {
		return nil, model.NewFieldError("Unknown sort order", "sortBy")
	}

	filterArgs := []any{q.CategoryIDs, q.MinPrice, q.MaxPrice, q.Colors, q.Sizes, q.InStock}

	var total int
	countQuery := `SELECT COUNT(*) FROM (` + filteredProducts + `) f`
	if err := r.pool.QueryRow(ctx, countQuery, filterArgs...).Scan(&total); err != nil {
		r.logger.Error().Err(err).Msg("failed to count products")
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	listQuery := `SELECT * FROM (` + filteredProducts + `) f ORDER BY ` + ordering + ` LIMIT $7 OFFSET $8`
	rows, err := r.pool.Query(ctx, listQuery, append(filterArgs, q.Limit, q.Offset)...)
	if err != nil {
		r.logger.Error().Err(err).
			Int("limit", q.Limit).
			Int("offset", q.Offset).
			Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}

	products, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[model.Product])
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to scan product rows")
		return nil, fmt.Errorf("failed to scan products: %w", err)
	}

	if err := r.attachVariants(ctx, products); err != nil {
		return nil, err
	}

	return &model.ProductPage{Products: products, TotalProducts: total}, nil
}

// GetByID retrieves a single product with its variants.
func (r *productRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	query := `SELECT * FROM (` + filteredProducts + `) f WHERE id = $7`
	rows, err := r.pool.Query(ctx, query, nil, nil, nil, nil, nil, nil, id)
	if err != nil {
		r.logger.Error().Err(err).Int64("product_id", id).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByNameLax[model.Product])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Int64("product_id", id).Msg("product not found")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}

	products := []model.Product{p}
	if err := r.attachVariants(ctx, products); err != nil {
		return nil, err
	}
	return &products[0], nil
}

// GetVariantsByIDs retrieves the variants with the given ids.
func (r *productRepository) GetVariantsByIDs(ctx context.Context, ids []int64) ([]model.ProductVariant, error) {
	if len(ids) == 0 {
		return []model.ProductVariant{}, nil
	}
	return r.queryVariants(ctx, `WHERE d.id = ANY($1)`, ids)
}

func (r *productRepository) attachVariants(ctx context.Context, products []model.Product) error {
	if len(products) == 0 {
		return nil
	}

	ids := make([]int64, len(products))
	index := make(map[int64]int, len(products))
	for i, p := range products {
		ids[i] = p.ID
		index[p.ID] = i
		products[i].Variants = []model.ProductVariant{}
	}

	variants, err := r.queryVariants(ctx, `WHERE d.product_id = ANY($1)`, ids)
	if err != nil {
		return err
	}
	for _, v := range variants {
		i := index[v.ProductID]
		products[i].Variants = append(products[i].Variants, v)
	}
	return nil
}

func (r *productRepository) queryVariants(ctx context.Context, where string, ids []int64) ([]model.ProductVariant, error) {
	query := `
		SELECT d.id, d.product_id, p.name AS product_name, d.price, d.stock, d.size, d.color, d.image_url
		FROM product_details d
		JOIN products p ON p.id = d.product_id
		` + where + `
		ORDER BY d.id
	`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("id_count", len(ids)).Msg("failed to query product variants")
		return nil, fmt.Errorf("failed to query product variants: %w", err)
	}

	variants, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.ProductVariant])
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to scan product variant rows")
		return nil, fmt.Errorf("failed to scan product variants: %w", err)
	}
	return variants, nil
}
