package limits

import (
	"errors"
	"fmt"
)

// PlanType tags the variant held by Plan.
type PlanType string

const (
	PlanFree            PlanType = "free"
	PlanSubscription    PlanType = "subscription"
	PlanAppsumoLifetime PlanType = "appsumo_lifetime"
)

// SubscriptionTier is a paid subscription level.
type SubscriptionTier string

const (
	TierGrowth     SubscriptionTier = "growth"
	TierBusiness   SubscriptionTier = "business"
	TierEnterprise SubscriptionTier = "enterprise"
)

// SubscriptionTiers lists the subscription tiers in ascending order.
var SubscriptionTiers = []SubscriptionTier{TierGrowth, TierBusiness, TierEnterprise}

// Valid reports whether t is a known subscription tier.
func (t SubscriptionTier) Valid() bool {
	switch t {
	case TierGrowth, TierBusiness, TierEnterprise:
		return true
	}
	return false
}

// AppsumoTier is a lifetime-deal level. Zero means "no tier".
type AppsumoTier int

const (
	AppsumoTierNone AppsumoTier = 0
	AppsumoTierMin  AppsumoTier = 1
	AppsumoTierMax  AppsumoTier = 3
)

// Valid reports whether t is within [AppsumoTierMin, AppsumoTierMax].
func (t AppsumoTier) Valid() bool {
	return t >= AppsumoTierMin && t <= AppsumoTierMax
}

// Stack adds a redeemed code tier on top of t, capped at AppsumoTierMax.
// Tiers sum rather than take the maximum: 1 stacked with 2 is 3.
func (t AppsumoTier) Stack(code AppsumoTier) AppsumoTier {
	if t == AppsumoTierNone {
		return min(code, AppsumoTierMax)
	}
	return min(t+code, AppsumoTierMax)
}

// Plan is the billing plan of an organization. Only the tier field matching
// Type is meaningful; use the constructors to build consistent values.
type Plan struct {
	Type             PlanType         `json:"plan_type"`
	SubscriptionTier SubscriptionTier `json:"subscription_tier,omitempty"`
	AppsumoTier      AppsumoTier      `json:"appsumo_tier,omitempty"`
}

// FreePlan returns the free plan.
func FreePlan() Plan {
	return Plan{Type: PlanFree}
}

// SubscriptionPlan returns a subscription plan on the given tier.
func SubscriptionPlan(tier SubscriptionTier) Plan {
	return Plan{Type: PlanSubscription, SubscriptionTier: tier}
}

// AppsumoPlan returns a lifetime-deal plan on the given tier.
func AppsumoPlan(tier AppsumoTier) Plan {
	return Plan{Type: PlanAppsumoLifetime, AppsumoTier: tier}
}

// Validate checks that exactly the tier matching the plan type is set.
func (p Plan) Validate() error {
	switch p.Type {
	case PlanFree:
		if p.SubscriptionTier != "" || p.AppsumoTier != AppsumoTierNone {
			return errors.Join(ErrInvalidPlan, fmt.Errorf("free plan cannot carry a tier"))
		}
	case PlanSubscription:
		if !p.SubscriptionTier.Valid() {
			return errors.Join(ErrInvalidPlan, fmt.Errorf("unknown subscription tier %q", p.SubscriptionTier))
		}
		if p.AppsumoTier != AppsumoTierNone {
			return errors.Join(ErrInvalidPlan, fmt.Errorf("subscription plan cannot carry an appsumo tier"))
		}
	case PlanAppsumoLifetime:
		if !p.AppsumoTier.Valid() {
			return errors.Join(ErrInvalidPlan, fmt.Errorf("appsumo tier %d out of range", p.AppsumoTier))
		}
		if p.SubscriptionTier != "" {
			return errors.Join(ErrInvalidPlan, fmt.Errorf("appsumo plan cannot carry a subscription tier"))
		}
	default:
		return errors.Join(ErrInvalidPlan, fmt.Errorf("unknown plan type %q", p.Type))
	}
	return nil
}

// String returns a short display name, e.g. "free", "subscription/growth", "appsumo/2".
func (p Plan) String() string {
	switch p.Type {
	case PlanSubscription:
		return fmt.Sprintf("%s/%s", p.Type, p.SubscriptionTier)
	case PlanAppsumoLifetime:
		return fmt.Sprintf("appsumo/%d", p.AppsumoTier)
	default:
		return string(PlanFree)
	}
}
