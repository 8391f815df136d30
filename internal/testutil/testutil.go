// Package testutil builds stores for package tests. Tests run on the in-memory
// engine unless PLANPULL_TEST_DATABASE_URL points at a PostgreSQL database, in
// which case the same tests exercise store.Postgres.
package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Harshita2766/planpull-backend/internal/store"
	"github.com/Harshita2766/planpull-backend/pkg/database"
)

// EnvDatabaseURL names the variable holding the test database DSN.
const EnvDatabaseURL = "PLANPULL_TEST_DATABASE_URL"

// DatabaseURL returns the test DSN, or "" when Postgres tests are disabled.
func DatabaseURL() string {
	return os.Getenv(EnvDatabaseURL)
}

// NewStore returns an empty store for one test. On Postgres the schema is dropped
// and migrated again, so ids start at 1 as they do on the memory engine. Each
// package passes its own schema name because packages run in parallel.
func NewStore(t testing.TB, schema string) store.Store {
	t.Helper()
	dsn := DatabaseURL()
	if dsn == "" {
		return store.NewMemory()
	}
	return store.NewPostgres(NewPool(t, dsn, schema))
}

// NewPool recreates schema on dsn and returns a migrated pool pinned to it. The
// pool is closed when the test ends.
func NewPool(t testing.TB, dsn, schema string) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()
	ident := pgx.Identifier{schema}.Sanitize()

	admin, err := database.NewPostgresPool(ctx, database.PoolOptions{DSN: dsn, MaxConns: 1}, zap.NewNop())
	require.NoError(t, err)
	_, err = admin.Exec(ctx, "DROP SCHEMA IF EXISTS "+ident+" CASCADE")
	require.NoError(t, err)
	_, err = admin.Exec(ctx, "CREATE SCHEMA "+ident)
	require.NoError(t, err)
	admin.Close()

	pool, err := database.NewPostgresPool(ctx, database.PoolOptions{
		DSN:        dsn,
		MaxConns:   16,
		SearchPath: schema,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, database.Migrate(ctx, pool))
	return pool
}
