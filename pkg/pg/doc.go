// Package pg wires the billing stores to PostgreSQL through pgx/v5.
//
// It provides:
//
//   - Config: pool and migration settings read from PG_* environment variables.
//   - Connect: opens a *pgxpool.Pool, retrying until the database answers.
//   - Migrate: applies the goose migrations (embedded by default, see package db).
//   - WithTx / DBTX: transaction helper and the query surface shared by pools
//     and transactions, so a store can be bound to either.
//   - Error helpers: IsNotFoundError, IsDuplicateKeyError, IsRetryableError.
//
// Usage:
//
//	var cfg pg.Config
//	config.MustLoad(&cfg)
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, db.Migrations, db.MigrationsDir, log); err != nil {
//	    return err
//	}
//
//	err = pg.WithTx(ctx, pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
//	    // conditional updates, row locks ...
//	    return nil
//	})
package pg
