package redemption

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/billingkit/pkg/limits"
	"github.com/dmitrymomot/billingkit/pkg/logger"
	"github.com/dmitrymomot/billingkit/pkg/organization"
)

// Engine redeems AppSumo codes against organizations.
type Engine struct {
	store   Store
	now     func() time.Time
	log     *slog.Logger
	retries int
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithClock overrides the time source used for redemption timestamps.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithConflictRetries sets how many times a redemption failing with
// ErrConflict is run again. Defaults to 1.
func WithConflictRetries(n int) EngineOption {
	return func(e *Engine) {
		e.retries = max(n, 0)
	}
}

// NewEngine returns an engine on store. Panics if store is nil.
func NewEngine(store Store, opts ...EngineOption) *Engine {
	if store == nil {
		panic("redemption: store cannot be nil")
	}
	e := &Engine{
		store:   store,
		now:     time.Now,
		log:     logger.Discard(),
		retries: 1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Redeem consumes code for the organization and stacks its tier onto the
// organization's current AppSumo tier, capped at tier 3. The code claim and
// the organization update commit together or not at all.
//
// Fails with ErrInvalidCode for unknown codes, ErrAlreadyRedeemed for
// consumed ones and organization.ErrNotFound for unknown organizations.
// ErrConflict is returned only after the configured retries are spent.
func (e *Engine) Redeem(ctx context.Context, orgID uuid.UUID, code string) (*Result, error) {
	code = NormalizeCode(code)
	if code == "" {
		return nil, ErrInvalidCode
	}

	var (
		res *Result
		err error
	)
	for attempt := 0; attempt <= e.retries; attempt++ {
		if attempt > 0 {
			e.log.LogAttrs(ctx, slog.LevelWarn, "redemption conflicted, retrying",
				logger.OrganizationID(orgID),
				logger.RetryCount(attempt),
				logger.Error(err),
			)
		}
		res, err = e.redeem(ctx, orgID, code)
		if !errors.Is(err, ErrConflict) {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	e.log.LogAttrs(ctx, slog.LevelInfo, "appsumo code redeemed",
		logger.OrganizationID(orgID),
		logger.Tier(res.Tier),
		slog.Int("previous_tier", int(res.PreviousTier)),
		slog.Int("code_tier", int(res.CodeTier)),
	)
	return res, nil
}

func (e *Engine) redeem(ctx context.Context, orgID uuid.UUID, code string) (*Result, error) {
	var res *Result
	err := e.store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		org, err := tx.GetOrganizationForUpdate(ctx, orgID)
		if err != nil {
			return err
		}

		now := e.now().UTC()
		claimed, err := tx.ClaimCode(ctx, code, orgID, now)
		if err != nil {
			return err
		}

		previous := currentTier(org)
		next := previous.Stack(claimed.Tier)
		plan := limits.AppsumoPlan(next)

		if _, err := tx.UpdateOrganization(ctx, orgID, organization.Update{
			Plan:              &plan,
			AppendAppsumoCode: claimed.Code,
			PlanChangedAt:     &now,
		}); err != nil {
			return err
		}

		res = &Result{
			OrganizationID: orgID,
			Code:           claimed.Code,
			CodeTier:       claimed.Tier,
			PreviousTier:   previous,
			Tier:           next,
			RedeemedAt:     now,
			Message:        resultMessage(previous, next),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// CheckCode reports whether code can be redeemed and for which tier.
// It never writes. Unknown and redeemed codes both report Valid=false.
func (e *Engine) CheckCode(ctx context.Context, code string) (CodeStatus, error) {
	code = NormalizeCode(code)
	if code == "" {
		return CodeStatus{}, nil
	}

	c, err := e.store.GetCode(ctx, code)
	if errors.Is(err, ErrInvalidCode) {
		return CodeStatus{}, nil
	}
	if err != nil {
		return CodeStatus{}, err
	}
	if c.IsRedeemed {
		return CodeStatus{}, nil
	}
	return CodeStatus{Valid: true, Tier: c.Tier}, nil
}

// Provision generates n new codes of tier and stores them.
func (e *Engine) Provision(ctx context.Context, tier limits.AppsumoTier, prefix string, n int) ([]*Code, error) {
	if !tier.Valid() {
		return nil, errors.Join(ErrInvalidBatch, fmt.Errorf("tier %d out of range", tier))
	}
	if n <= 0 {
		return nil, errors.Join(ErrInvalidBatch, fmt.Errorf("count %d must be positive", n))
	}

	values, err := Generate(prefix, n)
	if err != nil {
		return nil, err
	}
	codes := make([]*Code, len(values))
	for i, v := range values {
		codes[i] = NewCode(v, tier)
	}

	inserted, err := e.store.InsertCodes(ctx, codes)
	if err != nil {
		return nil, err
	}
	if inserted != len(codes) {
		// 80 random bits per code; a collision means something is badly wrong.
		return nil, errors.Join(ErrInvalidBatch, fmt.Errorf("only %d of %d generated codes were new", inserted, len(codes)))
	}

	e.log.LogAttrs(ctx, slog.LevelInfo, "appsumo codes provisioned",
		logger.Tier(tier),
		slog.Int("count", n),
	)
	return codes, nil
}

// Import stores externally issued codes, skipping ones already present,
// and returns how many were new. Codes are normalized first; the whole
// batch is rejected if any code is invalid or repeated.
func (e *Engine) Import(ctx context.Context, codes []*Code) (int, error) {
	batch := make([]*Code, 0, len(codes))
	seen := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		cp := c.Clone()
		cp.Code = NormalizeCode(cp.Code)
		if cp.CreatedAt.IsZero() {
			cp.CreatedAt = e.now().UTC()
		}
		if err := cp.Validate(); err != nil {
			return 0, err
		}
		if _, dup := seen[cp.Code]; dup {
			return 0, errors.Join(ErrInvalidBatch, fmt.Errorf("code %s repeated in batch", cp.Code))
		}
		seen[cp.Code] = struct{}{}
		batch = append(batch, cp)
	}

	inserted, err := e.store.InsertCodes(ctx, batch)
	if err != nil {
		return 0, err
	}

	e.log.LogAttrs(ctx, slog.LevelInfo, "appsumo codes imported",
		slog.Int("received", len(batch)),
		slog.Int("inserted", inserted),
	)
	return inserted, nil
}

func currentTier(org *organization.Organization) limits.AppsumoTier {
	if org.Plan.Type != limits.PlanAppsumoLifetime {
		return limits.AppsumoTierNone
	}
	return org.Plan.AppsumoTier
}

func resultMessage(previous, next limits.AppsumoTier) string {
	switch {
	case previous == limits.AppsumoTierNone:
		return fmt.Sprintf("Code redeemed. Your organization is now on AppSumo Tier %d.", next)
	case previous == next:
		return fmt.Sprintf("Code redeemed. Your organization is already at the highest AppSumo tier (Tier %d).", next)
	default:
		return fmt.Sprintf("Code redeemed and stacked. Your organization moved from AppSumo Tier %d to Tier %d.", previous, next)
	}
}
