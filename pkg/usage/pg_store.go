package usage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/billingkit/pkg/limits"
	"github.com/dmitrymomot/billingkit/pkg/pg"
)

const periodColumns = `id, organization_id, period_start, period_end,
	emails_sent, sms_sent, ai_analyses_used,
	projects_count, automations_count, customers_count,
	created_at, updated_at`

// Column names are only ever taken from these maps, never from input.
var (
	counterColumns = map[CounterKind]string{
		CounterEmailsSent:     "emails_sent",
		CounterSMSSent:        "sms_sent",
		CounterAIAnalysesUsed: "ai_analyses_used",
	}
	snapshotColumns = map[limits.Resource]string{
		limits.ResourceProjects:    "projects_count",
		limits.ResourceAutomations: "automations_count",
		limits.ResourceCustomers:   "customers_count",
	}
)

// PGStore implements Store on the usage_periods table.
type PGStore struct {
	db pg.DBTX
}

// NewPGStore returns a store running its statements on db.
func NewPGStore(db pg.DBTX) *PGStore {
	if db == nil {
		panic("usage: db cannot be nil")
	}
	return &PGStore{db: db}
}

func (s *PGStore) Get(ctx context.Context, orgID uuid.UUID, start time.Time) (*Period, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+periodColumns+` FROM usage_periods WHERE organization_id = $1 AND period_start = $2`,
		orgID, start.UTC())
	return scanPeriod(row)
}

func (s *PGStore) Create(ctx context.Context, p *Period) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO usage_periods (id, organization_id, period_start, period_end,
			emails_sent, sms_sent, ai_analyses_used,
			projects_count, automations_count, customers_count,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		p.ID, p.OrganizationID, p.PeriodStart.UTC(), p.PeriodEnd.UTC(),
		p.EmailsSent, p.SMSSent, p.AIAnalysesUsed,
		p.ProjectsCount, p.AutomationsCount, p.CustomersCount,
		p.CreatedAt, p.UpdatedAt,
	)
	if pg.IsDuplicateKeyError(err) {
		return ErrPeriodExists
	}
	return err
}

func (s *PGStore) Increment(ctx context.Context, orgID uuid.UUID, start time.Time, kind CounterKind, amount int64) (*Period, error) {
	col, ok := counterColumns[kind]
	if !ok {
		return nil, errors.Join(ErrUnknownCounter, fmt.Errorf("counter %q", kind))
	}

	row := s.db.QueryRow(ctx, fmt.Sprintf(`
		UPDATE usage_periods SET %[1]s = %[1]s + $3, updated_at = now()
		WHERE organization_id = $1 AND period_start = $2
		RETURNING `+periodColumns, col),
		orgID, start.UTC(), amount)
	p, err := scanPeriod(row)
	if pg.IsOutOfRangeError(err) {
		return nil, errors.Join(ErrInvalidAmount, err)
	}
	return p, err
}

func (s *PGStore) SetSnapshots(ctx context.Context, orgID uuid.UUID, start time.Time, snap Snapshot) (*Period, error) {
	args := []any{orgID, start.UTC()}
	sets := make([]string, 0, len(snap)+1)
	for _, res := range SnapshotResources {
		n, ok := snap[res]
		if !ok {
			continue
		}
		args = append(args, n)
		sets = append(sets, fmt.Sprintf("%s = $%d", snapshotColumns[res], len(args)))
	}
	if len(sets) == 0 {
		return s.Get(ctx, orgID, start)
	}
	sets = append(sets, "updated_at = now()")

	row := s.db.QueryRow(ctx, `
		UPDATE usage_periods SET `+strings.Join(sets, ", ")+`
		WHERE organization_id = $1 AND period_start = $2
		RETURNING `+periodColumns, args...)
	return scanPeriod(row)
}

func (s *PGStore) List(ctx context.Context, orgID uuid.UUID, limit int) ([]*Period, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+periodColumns+` FROM usage_periods WHERE organization_id = $1
		ORDER BY period_start DESC LIMIT $2`,
		orgID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Period
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPeriod(row pgx.Row) (*Period, error) {
	var p Period
	err := row.Scan(&p.ID, &p.OrganizationID, &p.PeriodStart, &p.PeriodEnd,
		&p.EmailsSent, &p.SMSSent, &p.AIAnalysesUsed,
		&p.ProjectsCount, &p.AutomationsCount, &p.CustomersCount,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrPeriodNotFound
		}
		return nil, err
	}
	p.PeriodStart = p.PeriodStart.UTC()
	p.PeriodEnd = p.PeriodEnd.UTC()
	return &p, nil
}
