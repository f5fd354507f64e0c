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

// addressTables maps each hierarchy level to its table.
var addressTables = map[model.AddressLevel]string{
	model.LevelCity:     "cities",
	model.LevelDistrict: "districts",
	model.LevelWard:     "wards",
}

// addressRepository implements the AddressRepository interface using PostgreSQL.
type addressRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewAddressRepository creates a new PostgreSQL-backed address repository.
func NewAddressRepository(pool *pgxpool.Pool, logger zerolog.Logger) AddressRepository {
	return &addressRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "address").Logger(),
	}
}

// ListCities returns every top-level node ordered by code.
func (r *addressRepository) ListCities(ctx context.Context) ([]model.AddressNode, error) {
	rows, err := r.pool.Query(ctx, `SELECT code, name FROM cities ORDER BY code`)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query cities")
		return nil, fmt.Errorf("failed to query cities: %w", err)
	}
	defer rows.Close()

	var nodes []model.AddressNode
	for rows.Next() {
		node := model.AddressNode{Level: model.LevelCity}
		if err := rows.Scan(&node.Code, &node.Name); err != nil {
			return nil, fmt.Errorf("failed to scan city: %w", err)
		}
		nodes = append(nodes, node)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cities: %w", err)
	}
	return nodes, nil
}

// ListChildren returns the nodes one level below the given parent, ordered by code.
func (r *addressRepository) ListChildren(ctx context.Context, parentLevel model.AddressLevel, parentCode int) ([]model.AddressNode, error) {
	level, ok := parentLevel.Child()
	if !ok {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT code, name, parent_code FROM %s WHERE parent_code = $1 ORDER BY code`, addressTables[level])
	rows, err := r.pool.Query(ctx, query, parentCode)
	if err != nil {
		r.logger.Error().Err(err).
			Str("level", level.String()).
			Int("parent_code", parentCode).
			Msg("failed to query address children")
		return nil, fmt.Errorf("failed to query %s: %w", addressTables[level], err)
	}
	defer rows.Close()

	var nodes []model.AddressNode
	for rows.Next() {
		node := model.AddressNode{Level: level}
		if err := rows.Scan(&node.Code, &node.Name, &node.ParentCode); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", level, err)
		}
		nodes = append(nodes, node)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", addressTables[level], err)
	}
	return nodes, nil
}

// GetNode retrieves one node of the given level.
func (r *addressRepository) GetNode(ctx context.Context, level model.AddressLevel, code int) (*model.AddressNode, error) {
	table, ok := addressTables[level]
	if !ok {
		return nil, fmt.Errorf("unknown address level %d", level)
	}

	var query string
	if level == model.LevelCity {
		query = `SELECT code, name, NULL::INTEGER FROM cities WHERE code = $1`
	} else {
		query = fmt.Sprintf(`SELECT code, name, parent_code FROM %s WHERE code = $1`, table)
	}

	node := model.AddressNode{Level: level}
	err := r.pool.QueryRow(ctx, query, code).Scan(&node.Code, &node.Name, &node.ParentCode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("level", level.String()).Int("code", code).Msg("address node not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("level", level.String()).Int("code", code).Msg("failed to query address node")
		return nil, fmt.Errorf("failed to query %s: %w", level, err)
	}
	return &node, nil
}

// GetShippingAddress retrieves a user's shipping address by id.
func (r *addressRepository) GetShippingAddress(ctx context.Context, id int64) (*model.ShippingAddress, error) {
	query := `
		SELECT id, user_id, recipient_name, phone, ward_code, more_detail, is_default
		FROM shipping_addresses
		WHERE id = $1
	`

	var a model.ShippingAddress
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.UserID, &a.RecipientName, &a.Phone, &a.WardCode, &a.MoreDetail, &a.IsDefault,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Int64("shipping_address_id", id).Msg("shipping address not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("shipping_address_id", id).Msg("failed to query shipping address")
		return nil, fmt.Errorf("failed to query shipping address: %w", err)
	}
	return &a, nil
}

// UpsertAll stages each level with COPY and merges it into its table,
// parents before children.
func (r *addressRepository) UpsertAll(ctx context.Context, tx pgx.Tx, cities, districts, wards []model.AddressNode) error {
	_, err := tx.Exec(ctx, `
		CREATE TEMP TABLE address_staging (
			code INTEGER NOT NULL,
			name VARCHAR(255) NOT NULL,
			parent_code INTEGER
		) ON COMMIT DROP
	`)
	if err != nil {
		return fmt.Errorf("failed to create staging table: %w", err)
	}

	levels := []struct {
		level model.AddressLevel
		nodes []model.AddressNode
	}{
		{model.LevelCity, cities},
		{model.LevelDistrict, districts},
		{model.LevelWard, wards},
	}

	for _, l := range levels {
		if err := r.upsertLevel(ctx, tx, l.level, l.nodes); err != nil {
			return err
		}
	}
	return nil
}

func (r *addressRepository) upsertLevel(ctx context.Context, tx pgx.Tx, level model.AddressLevel, nodes []model.AddressNode) error {
	table := addressTables[level]
	if len(nodes) == 0 {
		return nil
	}

	copied, err := tx.CopyFrom(ctx,
		pgx.Identifier{"address_staging"},
		[]string{"code", "name", "parent_code"},
		pgx.CopyFromSlice(len(nodes), func(i int) ([]any, error) {
			return []any{nodes[i].Code, nodes[i].Name, nodes[i].ParentCode}, nil
		}),
	)
	if err != nil {
		r.logger.Error().Err(err).Str("table", table).Msg("failed to copy address rows")
		return fmt.Errorf("failed to stage %s: %w", table, err)
	}

	var merge string
	if level == model.LevelCity {
		merge = `
			INSERT INTO cities (code, name)
			SELECT code, name FROM address_staging
			ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name
		`
	} else {
		merge = fmt.Sprintf(`
			INSERT INTO %s (code, name, parent_code)
			SELECT code, name, parent_code FROM address_staging
			ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, parent_code = EXCLUDED.parent_code
		`, table)
	}
	if _, err := tx.Exec(ctx, merge); err != nil {
		r.logger.Error().Err(err).Str("table", table).Msg("failed to merge address rows")
		return fmt.Errorf("failed to merge %s: %w", table, err)
	}

	if _, err := tx.Exec(ctx, `TRUNCATE address_staging`); err != nil {
		return fmt.Errorf("failed to clear staging table: %w", err)
	}

	r.logger.Info().Str("table", table).Int64("rows", copied).Msg("address level imported")
	return nil
}
