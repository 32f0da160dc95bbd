package quota_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/billingkit/pkg/limits"
	"github.com/dmitrymomot/billingkit/pkg/organization"
	"github.com/dmitrymomot/billingkit/pkg/quota"
)

func orgOn(plan limits.Plan) *organization.Organization {
	org := organization.New("Acme")
	org.Plan = plan
	return org
}

func TestResolver_Resolve(t *testing.T) {
	t.Parallel()

	catalog := limits.DefaultCatalog()
	resolver := quota.NewResolver(catalog)

	t.Run("nil organization gets free limits", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, catalog.Free(), resolver.Resolve(nil))
	})

	t.Run("free plan", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, catalog.Free(), resolver.Resolve(orgOn(limits.FreePlan())))
	})

	t.Run("appsumo tiers map to catalog entries", func(t *testing.T) {
		t.Parallel()

		for tier := limits.AppsumoTierMin; tier <= limits.AppsumoTierMax; tier++ {
			want, err := catalog.Appsumo(tier)
			assert.NoError(t, err)
			assert.Equal(t, want, resolver.Resolve(orgOn(limits.AppsumoPlan(tier))))
		}
	})

	t.Run("subscription tiers map to catalog entries", func(t *testing.T) {
		t.Parallel()

		for _, tier := range limits.SubscriptionTiers {
			want, err := catalog.Subscription(tier)
			assert.NoError(t, err)
			assert.Equal(t, want, resolver.Resolve(orgOn(limits.SubscriptionPlan(tier))))
		}
	})

	t.Run("invalid appsumo tier falls back to tier 1", func(t *testing.T) {
		t.Parallel()

		want, _ := catalog.Appsumo(1)
		for _, tier := range []limits.AppsumoTier{0, 4, -1} {
			org := orgOn(limits.Plan{Type: limits.PlanAppsumoLifetime, AppsumoTier: tier})
			plan, l := resolver.ResolvePlan(org)
			assert.Equal(t, want, l)
			assert.Equal(t, limits.AppsumoPlan(1), plan)
		}
	})

	t.Run("missing subscription tier falls back to growth", func(t *testing.T) {
		t.Parallel()

		want, _ := catalog.Subscription(limits.TierGrowth)
		org := orgOn(limits.Plan{Type: limits.PlanSubscription})
		plan, l := resolver.ResolvePlan(org)
		assert.Equal(t, want, l)
		assert.Equal(t, limits.SubscriptionPlan(limits.TierGrowth), plan)
	})

	t.Run("unknown plan type is free", func(t *testing.T) {
		t.Parallel()

		org := orgOn(limits.Plan{Type: "legacy_trial"})
		assert.Equal(t, catalog.Free(), resolver.Resolve(org))
	})
}

func TestResolver_Override(t *testing.T) {
	t.Parallel()

	catalog := limits.DefaultCatalog()
	resolver := quota.NewResolver(catalog)

	org := orgOn(limits.AppsumoPlan(2))
	org.LimitsOverride = &limits.Limits{
		Quotas:   map[limits.Resource]int64{limits.ResourceProjects: 42},
		Features: map[limits.Feature]bool{limits.FeaturePrioritySupport: true},
	}

	l := resolver.Resolve(org)
	base, _ := catalog.Appsumo(2)

	assert.Equal(t, int64(42), l.Quotas[limits.ResourceProjects])
	assert.Equal(t, base.Quotas[limits.ResourceCustomers], l.Quotas[limits.ResourceCustomers])
	assert.True(t, l.HasFeature(limits.FeaturePrioritySupport))

	// catalog is untouched
	again, _ := catalog.Appsumo(2)
	assert.Equal(t, int64(10), again.Quotas[limits.ResourceProjects])
	assert.False(t, again.HasFeature(limits.FeaturePrioritySupport))

	// mutating the result does not leak back into the organization
	l.Quotas[limits.ResourceCustomers] = 0
	assert.Len(t, org.LimitsOverride.Quotas, 1)
}

func TestResolver_LogsFallback(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	resolver := quota.NewResolver(limits.DefaultCatalog(), quota.WithResolverLogger(log))

	resolver.Resolve(orgOn(limits.Plan{Type: limits.PlanAppsumoLifetime, AppsumoTier: 9}))

	assert.Contains(t, buf.String(), "fallback=appsumo/1")
	assert.Contains(t, buf.String(), "organization_id=")
}

func TestNewResolver_NilCatalogPanics(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { quota.NewResolver(nil) })
}
