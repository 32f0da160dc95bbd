package organization

import (
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/billingkit/pkg/limits"
)

// Organization is the billing view of a customer account.
type Organization struct {
	ID             uuid.UUID      `json:"id"`
	Name           string         `json:"name"`
	Plan           limits.Plan    `json:"plan"`
	AppsumoCodes   []string       `json:"appsumo_codes"` // append-only audit trail of redeemed codes
	LimitsOverride *limits.Limits `json:"plan_limits_override,omitempty"`
	PlanChangedAt  *time.Time     `json:"plan_changed_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// New returns an organization on the free plan.
func New(name string) *Organization {
	now := time.Now().UTC()
	return &Organization{
		ID:        uuid.New(),
		Name:      name,
		Plan:      limits.FreePlan(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy of o.
func (o *Organization) Clone() *Organization {
	if o == nil {
		return nil
	}
	c := *o
	c.AppsumoCodes = slices.Clone(o.AppsumoCodes)
	if o.LimitsOverride != nil {
		override := o.LimitsOverride.Clone()
		c.LimitsOverride = &override
	}
	if o.PlanChangedAt != nil {
		at := *o.PlanChangedAt
		c.PlanChangedAt = &at
	}
	return &c
}

// Validate checks the plan invariant.
func (o *Organization) Validate() error {
	if o.ID == uuid.Nil {
		return errors.Join(ErrInvalidOrganization, errors.New("id is required"))
	}
	if err := o.Plan.Validate(); err != nil {
		return errors.Join(ErrInvalidOrganization, err)
	}
	return nil
}

// Update is a partial update. Nil fields are left unchanged.
type Update struct {
	Name *string
	Plan *limits.Plan
	// AppendAppsumoCode is appended to AppsumoCodes when not empty.
	AppendAppsumoCode   string
	LimitsOverride      *limits.Limits
	ClearLimitsOverride bool
	PlanChangedAt       *time.Time
}

// Validate rejects inconsistent updates.
func (u Update) Validate() error {
	if u.Plan != nil {
		if err := u.Plan.Validate(); err != nil {
			return errors.Join(ErrInvalidUpdate, err)
		}
	}
	if u.LimitsOverride != nil && u.ClearLimitsOverride {
		return errors.Join(ErrInvalidUpdate, errors.New("cannot set and clear the limits override at once"))
	}
	return nil
}

// IsEmpty reports whether u changes nothing.
func (u Update) IsEmpty() bool {
	return u.Name == nil && u.Plan == nil && u.AppendAppsumoCode == "" &&
		u.LimitsOverride == nil && !u.ClearLimitsOverride && u.PlanChangedAt == nil
}

// Apply mutates o in place. It refuses to lower an AppSumo tier.
func (u Update) Apply(o *Organization, now time.Time) error {
	if err := u.Validate(); err != nil {
		return err
	}
	if u.Plan != nil && isTierDowngrade(o.Plan, *u.Plan) {
		return ErrTierDowngrade
	}

	if u.Name != nil {
		o.Name = *u.Name
	}
	if u.Plan != nil {
		o.Plan = *u.Plan
	}
	if u.AppendAppsumoCode != "" {
		o.AppsumoCodes = append(o.AppsumoCodes, u.AppendAppsumoCode)
	}
	if u.LimitsOverride != nil {
		override := u.LimitsOverride.Clone()
		o.LimitsOverride = &override
	}
	if u.ClearLimitsOverride {
		o.LimitsOverride = nil
	}
	if u.PlanChangedAt != nil {
		at := u.PlanChangedAt.UTC()
		o.PlanChangedAt = &at
	}
	o.UpdatedAt = now.UTC()
	return nil
}

func isTierDowngrade(current, next limits.Plan) bool {
	return current.Type == limits.PlanAppsumoLifetime &&
		next.Type == limits.PlanAppsumoLifetime &&
		next.AppsumoTier < current.AppsumoTier
}
