// Package pgtest starts a migrated PostgreSQL testcontainer for tests.
package pgtest

import (
	"context"
	"strings"
	"testing"
	"time"

	"storefront/internal/database"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// DB is a running container with a pool over it.
type DB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// Start runs postgres:16-alpine, applies the embedded migrations and opens a
// pool with the decimal codec registered. Everything is torn down with t.
// Skipped under -short.
func Start(t *testing.T) *DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	migrationURL := "pgx5" + strings.TrimPrefix(connStr, "postgres")
	require.NoError(t, database.Migrate(migrationURL, database.Up, zerolog.Nop()), "failed to apply migrations")

	pool, err := database.NewPoolFromURL(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return &DB{Container: container, Pool: pool, ConnStr: connStr}
}

// Truncate empties the given tables and resets their sequences.
func Truncate(t *testing.T, pool *pgxpool.Pool, tables ...string) {
	t.Helper()
	_, err := pool.Exec(context.Background(),
		"TRUNCATE "+strings.Join(tables, ", ")+" RESTART IDENTITY CASCADE")
	require.NoError(t, err)
}
