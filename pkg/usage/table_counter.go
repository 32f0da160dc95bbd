package usage

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/billingkit/pkg/pg"
)

// TableCounter returns a CounterFunc counting rows of table whose column
// equals the organization id. The table may be schema-qualified ("app.projects").
// Pass a non-empty where clause to exclude rows, e.g. "deleted_at IS NULL".
func TableCounter(db pg.DBTX, table, column, where string) CounterFunc {
	if db == nil {
		panic("usage: db cannot be nil")
	}
	query := "SELECT count(*) FROM " + pgx.Identifier(strings.Split(table, ".")).Sanitize() +
		" WHERE " + pgx.Identifier{column}.Sanitize() + " = $1"
	if where != "" {
		query += " AND (" + where + ")"
	}

	return func(ctx context.Context, orgID uuid.UUID) (int64, error) {
		var n int64
		if err := db.QueryRow(ctx, query, orgID).Scan(&n); err != nil {
			return 0, err
		}
		return n, nil
	}
}
