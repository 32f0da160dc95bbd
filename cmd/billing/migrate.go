package main

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/billingkit/db"
	"github.com/dmitrymomot/billingkit/pkg/pg"
)

func migrate(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	pool, err := pg.Connect(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, cfg.Postgres, db.Migrations, db.MigrationsDir, log); err != nil {
		return err
	}
	log.InfoContext(ctx, "migrations applied")
	return nil
}
