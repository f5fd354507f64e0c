package database

import (
	"errors"
	"fmt"

	"storefront/db"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog"
)

// Direction selects which way migrations run.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// Migrate applies the embedded migrations against url, which must use the
// pgx5:// scheme. A database that is already current is not an error.
func Migrate(url string, dir Direction, logger zerolog.Logger) error {
	source, err := iofs.New(db.Migrations, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, url)
	if err != nil {
		return fmt.Errorf("failed to init migrations: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil || dbErr != nil {
			logger.Warn().AnErr("source_error", srcErr).AnErr("db_error", dbErr).Msg("failed to close migrator")
		}
	}()

	switch dir {
	case Up:
		err = m.Up()
	case Down:
		err = m.Down()
	default:
		return fmt.Errorf("unknown migration direction: %q", dir)
	}
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info().Str("direction", string(dir)).Msg("database schema already up to date")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to migrate %s: %w", dir, err)
	}

	version, dirty, verr := m.Version()
	if verr == nil {
		logger.Info().Uint("version", version).Bool("dirty", dirty).Str("direction", string(dir)).Msg("database migrated")
	}
	return nil
}
