package redemption

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/billingkit/pkg/limits"
	"github.com/dmitrymomot/billingkit/pkg/organization"
	"github.com/dmitrymomot/billingkit/pkg/pg"
)

const codeColumns = `code, tier, is_redeemed, redeemed_by_org_id, redeemed_at, created_at`

// PGDB is the pool surface PGStore needs. Implemented by *pgxpool.Pool.
type PGDB interface {
	pg.DBTX
	pg.TxBeginner
}

// PGStore implements Store on the appsumo_codes and organizations tables.
type PGStore struct {
	db PGDB
}

// NewPGStore returns a store running its statements on db.
func NewPGStore(db PGDB) *PGStore {
	if db == nil {
		panic("redemption: db cannot be nil")
	}
	return &PGStore{db: db}
}

func (s *PGStore) GetCode(ctx context.Context, code string) (*Code, error) {
	return getCode(ctx, s.db, code)
}

func (s *PGStore) InsertCodes(ctx context.Context, codes []*Code) (int, error) {
	if len(codes) == 0 {
		return 0, nil
	}

	values := make([]string, len(codes))
	tiers := make([]int16, len(codes))
	for i, c := range codes {
		values[i] = c.Code
		tiers[i] = int16(c.Tier)
	}

	tag, err := s.db.Exec(ctx, `
		INSERT INTO appsumo_codes (code, tier)
		SELECT * FROM unnest($1::text[], $2::smallint[])
		ON CONFLICT (code) DO NOTHING`,
		values, tiers)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// RunInTx runs fn in a read-committed transaction. Serialization failures,
// deadlocks and lock timeouts are reported as ErrConflict.
func (s *PGStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	err := pg.WithTx(ctx, s.db, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		return fn(ctx, &pgTx{tx: tx, orgs: organization.NewPGStore(tx)})
	})
	if pg.IsRetryableError(err) {
		return errors.Join(ErrConflict, err)
	}
	return err
}

type pgTx struct {
	tx   pgx.Tx
	orgs *organization.PGStore
}

func (t *pgTx) GetOrganizationForUpdate(ctx context.Context, orgID uuid.UUID) (*organization.Organization, error) {
	return t.orgs.GetForUpdate(ctx, orgID)
}

func (t *pgTx) ClaimCode(ctx context.Context, code string, orgID uuid.UUID, at time.Time) (*Code, error) {
	row := t.tx.QueryRow(ctx, `
		UPDATE appsumo_codes
		SET is_redeemed = true, redeemed_by_org_id = $2, redeemed_at = $3
		WHERE code = $1 AND NOT is_redeemed
		RETURNING `+codeColumns,
		code, orgID, at.UTC())

	c, err := scanCode(row)
	if !errors.Is(err, ErrInvalidCode) {
		return c, err
	}

	// Nothing claimed: tell an unknown code from a redeemed one.
	if _, err := getCode(ctx, t.tx, code); err != nil {
		return nil, err
	}
	return nil, ErrAlreadyRedeemed
}

func (t *pgTx) UpdateOrganization(ctx context.Context, orgID uuid.UUID, upd organization.Update) (*organization.Organization, error) {
	return t.orgs.Update(ctx, orgID, upd)
}

func getCode(ctx context.Context, db pg.DBTX, code string) (*Code, error) {
	return scanCode(db.QueryRow(ctx, `SELECT `+codeColumns+` FROM appsumo_codes WHERE code = $1`, code))
}

func scanCode(row pgx.Row) (*Code, error) {
	var (
		c    Code
		tier int16
	)
	err := row.Scan(&c.Code, &tier, &c.IsRedeemed, &c.RedeemedByOrgID, &c.RedeemedAt, &c.CreatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrInvalidCode
		}
		return nil, err
	}
	c.Tier = limits.AppsumoTier(tier)
	return &c, nil
}
