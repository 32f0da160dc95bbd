package quota

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/billingkit/pkg/limits"
	"github.com/dmitrymomot/billingkit/pkg/logger"
	"github.com/dmitrymomot/billingkit/pkg/organization"
)

// Resolver computes the effective limits of an organization from the catalog
// and the organization's override. Resolution never fails: missing or invalid
// plan data falls back to the lowest tier of the plan family, and a missing
// organization gets the free plan.
type Resolver struct {
	catalog *limits.Catalog
	log     *slog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithResolverLogger sets the logger used to report plan fallbacks.
func WithResolverLogger(l *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if l != nil {
			r.log = l
		}
	}
}

// NewResolver returns a resolver backed by catalog. Panics if catalog is nil.
func NewResolver(catalog *limits.Catalog, opts ...ResolverOption) *Resolver {
	if catalog == nil {
		panic("quota: catalog cannot be nil")
	}
	r := &Resolver{catalog: catalog, log: logger.Discard()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the effective limits of org.
func (r *Resolver) Resolve(org *organization.Organization) limits.Limits {
	_, l := r.ResolvePlan(org)
	return l
}

// ResolvePlan returns the plan the limits were resolved for (after any
// fallback) together with the effective limits, override included.
func (r *Resolver) ResolvePlan(org *organization.Organization) (limits.Plan, limits.Limits) {
	if org == nil {
		return limits.FreePlan(), r.catalog.Free()
	}

	plan, base := r.base(org)
	if org.LimitsOverride != nil {
		return plan, base.Merge(org.LimitsOverride)
	}
	return plan, base
}

func (r *Resolver) base(org *organization.Organization) (limits.Plan, limits.Limits) {
	switch org.Plan.Type {
	case limits.PlanAppsumoLifetime:
		if l, err := r.catalog.Appsumo(org.Plan.AppsumoTier); err == nil {
			return limits.AppsumoPlan(org.Plan.AppsumoTier), l
		}
		r.fallback(org, limits.AppsumoPlan(limits.AppsumoTierMin))
		l, _ := r.catalog.Appsumo(limits.AppsumoTierMin)
		return limits.AppsumoPlan(limits.AppsumoTierMin), l

	case limits.PlanSubscription:
		if l, err := r.catalog.Subscription(org.Plan.SubscriptionTier); err == nil {
			return limits.SubscriptionPlan(org.Plan.SubscriptionTier), l
		}
		r.fallback(org, limits.SubscriptionPlan(limits.TierGrowth))
		l, _ := r.catalog.Subscription(limits.TierGrowth)
		return limits.SubscriptionPlan(limits.TierGrowth), l

	case limits.PlanFree:
		return limits.FreePlan(), r.catalog.Free()

	default:
		r.fallback(org, limits.FreePlan())
		return limits.FreePlan(), r.catalog.Free()
	}
}

func (r *Resolver) fallback(org *organization.Organization, to limits.Plan) {
	r.log.LogAttrs(context.Background(), slog.LevelDebug, "plan data invalid, using fallback limits",
		logger.OrganizationID(org.ID),
		logger.Plan(org.Plan),
		slog.String("fallback", to.String()),
	)
}
