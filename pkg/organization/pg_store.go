package organization

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/billingkit/pkg/limits"
	"github.com/dmitrymomot/billingkit/pkg/pg"
)

const selectColumns = `id, name, plan_type, subscription_tier, appsumo_tier, appsumo_codes,
	plan_limits_override, plan_changed_at, created_at, updated_at`

// PGStore implements Store on the organizations table.
// Bind it to a pool for plain access or to a pgx.Tx to take part in a transaction.
type PGStore struct {
	db pg.DBTX
}

// NewPGStore returns a store running its statements on db.
func NewPGStore(db pg.DBTX) *PGStore {
	if db == nil {
		panic("organization: db cannot be nil")
	}
	return &PGStore{db: db}
}

func (s *PGStore) Get(ctx context.Context, id uuid.UUID) (*Organization, error) {
	row := s.db.QueryRow(ctx, `SELECT `+selectColumns+` FROM organizations WHERE id = $1`, id)
	return scanOrganization(row)
}

// GetForUpdate reads the organization and locks its row until the
// surrounding transaction ends. It must run on a store bound to a pgx.Tx.
func (s *PGStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*Organization, error) {
	row := s.db.QueryRow(ctx, `SELECT `+selectColumns+` FROM organizations WHERE id = $1 FOR UPDATE`, id)
	return scanOrganization(row)
}

func (s *PGStore) Create(ctx context.Context, org *Organization) error {
	if err := org.Validate(); err != nil {
		return err
	}

	override, err := encodeOverride(org.LimitsOverride)
	if err != nil {
		return err
	}

	codes := org.AppsumoCodes
	if codes == nil {
		codes = []string{}
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO organizations (id, name, plan_type, subscription_tier, appsumo_tier, appsumo_codes,
			plan_limits_override, plan_changed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		org.ID, org.Name, string(org.Plan.Type), subscriptionTierArg(org.Plan), appsumoTierArg(org.Plan),
		codes, override, org.PlanChangedAt, orNow(org.CreatedAt), orNow(org.UpdatedAt),
	)
	if pg.IsDuplicateKeyError(err) {
		return ErrAlreadyExists
	}
	return err
}

func (s *PGStore) Update(ctx context.Context, id uuid.UUID, upd Update) (*Organization, error) {
	if err := upd.Validate(); err != nil {
		return nil, err
	}
	if upd.IsEmpty() {
		return s.Get(ctx, id)
	}

	sets := make([]string, 0, 8)
	args := []any{id}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if upd.Name != nil {
		sets = append(sets, "name = "+arg(*upd.Name))
	}
	guard := ""
	if upd.Plan != nil {
		sets = append(sets,
			"plan_type = "+arg(string(upd.Plan.Type)),
			"subscription_tier = "+arg(subscriptionTierArg(*upd.Plan)),
			"appsumo_tier = "+arg(appsumoTierArg(*upd.Plan)),
		)
		if upd.Plan.Type == limits.PlanAppsumoLifetime {
			guard = fmt.Sprintf(" AND (plan_type <> 'appsumo_lifetime' OR appsumo_tier <= %s)", arg(int16(upd.Plan.AppsumoTier)))
		}
	}
	if upd.AppendAppsumoCode != "" {
		sets = append(sets, "appsumo_codes = array_append(appsumo_codes, "+arg(upd.AppendAppsumoCode)+")")
	}
	if upd.LimitsOverride != nil {
		override, err := encodeOverride(upd.LimitsOverride)
		if err != nil {
			return nil, err
		}
		sets = append(sets, "plan_limits_override = "+arg(override))
	}
	if upd.ClearLimitsOverride {
		sets = append(sets, "plan_limits_override = NULL")
	}
	if upd.PlanChangedAt != nil {
		sets = append(sets, "plan_changed_at = "+arg(upd.PlanChangedAt.UTC()))
	}
	sets = append(sets, "updated_at = now()")

	query := `UPDATE organizations SET ` + strings.Join(sets, ", ") +
		` WHERE id = $1` + guard + ` RETURNING ` + selectColumns

	org, err := scanOrganization(s.db.QueryRow(ctx, query, args...))
	if errors.Is(err, ErrNotFound) && guard != "" {
		// Distinguish a missing row from a row rejected by the tier guard.
		if _, getErr := s.Get(ctx, id); getErr == nil {
			return nil, ErrTierDowngrade
		}
	}
	return org, err
}

func scanOrganization(row pgx.Row) (*Organization, error) {
	var (
		o        Organization
		planType string
		subTier  *string
		appTier  *int16
		override []byte
	)
	err := row.Scan(&o.ID, &o.Name, &planType, &subTier, &appTier, &o.AppsumoCodes,
		&override, &o.PlanChangedAt, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	o.Plan = limits.Plan{Type: limits.PlanType(planType)}
	if subTier != nil {
		o.Plan.SubscriptionTier = limits.SubscriptionTier(*subTier)
	}
	if appTier != nil {
		o.Plan.AppsumoTier = limits.AppsumoTier(*appTier)
	}
	if len(override) > 0 {
		var l limits.Limits
		if err := json.Unmarshal(override, &l); err != nil {
			return nil, fmt.Errorf("decode plan_limits_override: %w", err)
		}
		o.LimitsOverride = &l
	}
	return &o, nil
}

func encodeOverride(l *limits.Limits) ([]byte, error) {
	if l == nil {
		return nil, nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("encode plan_limits_override: %w", err)
	}
	return b, nil
}

func subscriptionTierArg(p limits.Plan) *string {
	if p.Type != limits.PlanSubscription {
		return nil
	}
	tier := string(p.SubscriptionTier)
	return &tier
}

func appsumoTierArg(p limits.Plan) *int16 {
	if p.Type != limits.PlanAppsumoLifetime {
		return nil
	}
	tier := int16(p.AppsumoTier)
	return &tier
}

func orNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}
