package pg_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/billingkit/pkg/pg"
)

func TestErrorHelpers(t *testing.T) {
	t.Parallel()

	dup := &pgconn.PgError{Code: "23505"}
	fk := &pgconn.PgError{Code: "23503"}
	serialization := &pgconn.PgError{Code: "40001"}
	deadlock := &pgconn.PgError{Code: "40P01"}
	lock := &pgconn.PgError{Code: "55P03"}

	t.Run("duplicate key", func(t *testing.T) {
		t.Parallel()
		assert.True(t, pg.IsDuplicateKeyError(dup))
		assert.True(t, pg.IsDuplicateKeyError(fmt.Errorf("insert: %w", dup)))
		assert.False(t, pg.IsDuplicateKeyError(fk))
		assert.False(t, pg.IsDuplicateKeyError(nil))
	})

	t.Run("foreign key", func(t *testing.T) {
		t.Parallel()
		assert.True(t, pg.IsForeignKeyViolationError(errors.Join(errors.New("ctx"), fk)))
		assert.False(t, pg.IsForeignKeyViolationError(dup))
	})

	t.Run("retryable", func(t *testing.T) {
		t.Parallel()
		assert.True(t, pg.IsRetryableError(serialization))
		assert.True(t, pg.IsRetryableError(deadlock))
		assert.True(t, pg.IsRetryableError(lock))
		assert.False(t, pg.IsRetryableError(dup))
		assert.False(t, pg.IsRetryableError(errors.New("boom")))
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		assert.True(t, pg.IsNotFoundError(fmt.Errorf("select: %w", pgx.ErrNoRows)))
		assert.False(t, pg.IsNotFoundError(nil))
		assert.True(t, pg.IsTxClosedError(pgx.ErrTxClosed))
	})
}
