// Package pgtest provides a migrated Postgres pool for store tests.
package pgtest

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/billingkit/db"
	"github.com/dmitrymomot/billingkit/pkg/logger"
	"github.com/dmitrymomot/billingkit/pkg/pg"
)

// EnvConnURL names the variable holding the test database URL.
const EnvConnURL = "BILLING_TEST_PG_URL"

// goose keeps its settings in package state.
var migrateMu sync.Mutex

// Pool connects to the database named by BILLING_TEST_PG_URL, applies the
// billing migrations and closes the pool when the test ends. The test is
// skipped when the variable is unset.
func Pool(t testing.TB) *pgxpool.Pool {
	t.Helper()

	url := os.Getenv(EnvConnURL)
	if url == "" {
		t.Skipf("%s not set, skipping postgres test", EnvConnURL)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg := pg.Config{
		ConnectionString: url,
		MaxOpenConns:     10,
		MaxIdleConns:     1,
		RetryAttempts:    1,
		MigrationsTable:  "billing_migrations",
	}
	pool, err := pg.Connect(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	migrateMu.Lock()
	defer migrateMu.Unlock()
	require.NoError(t, pg.Migrate(ctx, pool, cfg, db.Migrations, db.MigrationsDir, logger.Discard()))
	return pool
}
