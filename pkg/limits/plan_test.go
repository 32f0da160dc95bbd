package limits_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/billingkit/pkg/limits"
)

func TestAppsumoTier_Stack(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		current limits.AppsumoTier
		code    limits.AppsumoTier
		want    limits.AppsumoTier
	}{
		{"no tier plus tier 1", limits.AppsumoTierNone, 1, 1},
		{"no tier plus tier 3", limits.AppsumoTierNone, 3, 3},
		{"tier 1 plus tier 1", 1, 1, 2},
		{"tier 1 plus tier 2 sums", 1, 2, 3},
		{"tier 2 plus tier 2 is capped", 2, 2, 3},
		{"tier 3 stays at max", 3, 1, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.current.Stack(tt.code))
		})
	}
}

func TestPlan_Validate(t *testing.T) {
	t.Parallel()

	valid := []limits.Plan{
		limits.FreePlan(),
		limits.SubscriptionPlan(limits.TierGrowth),
		limits.SubscriptionPlan(limits.TierEnterprise),
		limits.AppsumoPlan(1),
		limits.AppsumoPlan(3),
	}
	for _, p := range valid {
		assert.NoError(t, p.Validate(), p.String())
	}

	invalid := []limits.Plan{
		{Type: limits.PlanFree, AppsumoTier: 1},
		{Type: limits.PlanSubscription},
		{Type: limits.PlanSubscription, SubscriptionTier: limits.TierGrowth, AppsumoTier: 2},
		{Type: limits.PlanAppsumoLifetime},
		{Type: limits.PlanAppsumoLifetime, AppsumoTier: 4},
		{Type: limits.PlanAppsumoLifetime, AppsumoTier: 1, SubscriptionTier: limits.TierGrowth},
		{Type: "trial"},
	}
	for _, p := range invalid {
		assert.ErrorIs(t, p.Validate(), limits.ErrInvalidPlan, p.String())
	}
}

func TestPlan_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "free", limits.FreePlan().String())
	assert.Equal(t, "subscription/business", limits.SubscriptionPlan(limits.TierBusiness).String())
	assert.Equal(t, "appsumo/2", limits.AppsumoPlan(2).String())
}

func TestLimits_Merge(t *testing.T) {
	t.Parallel()

	base := limits.Limits{
		Quotas: map[limits.Resource]int64{
			limits.ResourceProjects:  3,
			limits.ResourceCustomers: 100,
		},
		Features: map[limits.Feature]bool{
			limits.FeatureWebhooks: false,
		},
	}

	t.Run("override wins key by key", func(t *testing.T) {
		t.Parallel()

		merged := base.Merge(&limits.Limits{
			Quotas:   map[limits.Resource]int64{limits.ResourceProjects: limits.Unlimited},
			Features: map[limits.Feature]bool{limits.FeatureWebhooks: true},
		})

		assert.True(t, merged.IsUnlimited(limits.ResourceProjects))
		assert.Equal(t, int64(100), merged.Quotas[limits.ResourceCustomers])
		assert.True(t, merged.HasFeature(limits.FeatureWebhooks))
	})

	t.Run("inputs are not mutated", func(t *testing.T) {
		t.Parallel()

		override := &limits.Limits{Quotas: map[limits.Resource]int64{limits.ResourceProjects: 50}}
		merged := base.Merge(override)
		merged.Quotas[limits.ResourceCustomers] = 1

		assert.Equal(t, int64(3), base.Quotas[limits.ResourceProjects])
		assert.Equal(t, int64(100), base.Quotas[limits.ResourceCustomers])
		assert.Len(t, override.Quotas, 1)
	})

	t.Run("nil override returns a copy", func(t *testing.T) {
		t.Parallel()

		merged := base.Merge(nil)
		assert.Equal(t, base, merged)
	})

	t.Run("empty base", func(t *testing.T) {
		t.Parallel()

		merged := limits.Limits{}.Merge(&limits.Limits{
			Features: map[limits.Feature]bool{limits.FeatureAPIAccess: true},
		})
		assert.True(t, merged.HasFeature(limits.FeatureAPIAccess))
		assert.Empty(t, merged.Quotas)
	})
}

func TestResource_Label(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "projects", limits.ResourceProjects.Label())
	assert.Equal(t, "emails this month", limits.ResourceEmailsMonthly.Label())
	assert.True(t, limits.ResourceAIAnalyses.Valid())
	assert.False(t, limits.Resource("widgets").Valid())
}
