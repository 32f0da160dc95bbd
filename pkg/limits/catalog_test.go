package limits_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/billingkit/pkg/limits"
)

func TestDefaultCatalog(t *testing.T) {
	t.Parallel()

	catalog := limits.DefaultCatalog()

	t.Run("free plan", func(t *testing.T) {
		t.Parallel()

		l := catalog.Free()
		projects, ok := l.Quota(limits.ResourceProjects)
		require.True(t, ok)
		assert.Equal(t, int64(1), projects)
		assert.False(t, l.HasFeature(limits.FeatureAPIAccess))
	})

	t.Run("every subscription tier is defined", func(t *testing.T) {
		t.Parallel()

		for _, tier := range limits.SubscriptionTiers {
			l, err := catalog.Subscription(tier)
			require.NoError(t, err, tier)
			assert.Len(t, l.Quotas, len(limits.Resources))
		}
	})

	t.Run("every appsumo tier is defined", func(t *testing.T) {
		t.Parallel()

		for tier := limits.AppsumoTierMin; tier <= limits.AppsumoTierMax; tier++ {
			l, err := catalog.Appsumo(tier)
			require.NoError(t, err)
			assert.Len(t, l.Quotas, len(limits.Resources))
		}
	})

	t.Run("out of range tiers", func(t *testing.T) {
		t.Parallel()

		_, err := catalog.Appsumo(0)
		assert.ErrorIs(t, err, limits.ErrTierNotFound)

		_, err = catalog.Appsumo(4)
		assert.ErrorIs(t, err, limits.ErrTierNotFound)

		_, err = catalog.Subscription("platinum")
		assert.ErrorIs(t, err, limits.ErrTierNotFound)
	})

	t.Run("enterprise projects are unlimited", func(t *testing.T) {
		t.Parallel()

		l, err := catalog.Subscription(limits.TierEnterprise)
		require.NoError(t, err)
		assert.True(t, l.IsUnlimited(limits.ResourceProjects))
	})
}

func TestCatalog_ReturnsCopies(t *testing.T) {
	t.Parallel()

	catalog := limits.DefaultCatalog()

	l := catalog.Free()
	l.Quotas[limits.ResourceProjects] = 999
	l.Features[limits.FeatureAPIAccess] = true

	fresh := catalog.Free()
	assert.Equal(t, int64(1), fresh.Quotas[limits.ResourceProjects])
	assert.False(t, fresh.HasFeature(limits.FeatureAPIAccess))

	a, err := catalog.Appsumo(1)
	require.NoError(t, err)
	a.Quotas[limits.ResourceProjects] = 999

	again, err := catalog.Appsumo(1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), again.Quotas[limits.ResourceProjects])
}

func TestNewCatalog_CopiesDefinition(t *testing.T) {
	t.Parallel()

	def := limits.DefaultCatalogDefinition()
	catalog, err := limits.NewCatalog(def)
	require.NoError(t, err)

	def.Free.Quotas[limits.ResourceProjects] = 42
	assert.Equal(t, int64(1), catalog.Free().Quotas[limits.ResourceProjects])
}

func TestNewCatalog_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(def *limits.CatalogDefinition)
	}{
		{
			name: "missing subscription tier",
			mutate: func(def *limits.CatalogDefinition) {
				delete(def.Subscription, limits.TierBusiness)
			},
		},
		{
			name: "missing appsumo tier",
			mutate: func(def *limits.CatalogDefinition) {
				delete(def.Appsumo, 3)
			},
		},
		{
			name: "extra appsumo tier",
			mutate: func(def *limits.CatalogDefinition) {
				def.Appsumo[4] = def.Appsumo[3]
			},
		},
		{
			name: "unknown subscription tier",
			mutate: func(def *limits.CatalogDefinition) {
				def.Subscription["platinum"] = def.Subscription[limits.TierGrowth]
			},
		},
		{
			name: "missing resource",
			mutate: func(def *limits.CatalogDefinition) {
				delete(def.Free.Quotas, limits.ResourceCustomers)
			},
		},
		{
			name: "negative limit below unlimited",
			mutate: func(def *limits.CatalogDefinition) {
				def.Free.Quotas[limits.ResourceProjects] = -2
			},
		},
		{
			name: "unknown resource",
			mutate: func(def *limits.CatalogDefinition) {
				def.Free.Quotas["widgets"] = 1
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			def := limits.DefaultCatalogDefinition()
			tt.mutate(&def)

			catalog, err := limits.NewCatalog(def)
			assert.ErrorIs(t, err, limits.ErrInvalidCatalog)
			assert.Nil(t, catalog)
		})
	}
}

func TestCatalog_Lookup(t *testing.T) {
	t.Parallel()

	catalog := limits.DefaultCatalog()

	l, err := catalog.Lookup(limits.AppsumoPlan(2))
	require.NoError(t, err)
	assert.Equal(t, int64(10), l.Quotas[limits.ResourceProjects])

	l, err = catalog.Lookup(limits.SubscriptionPlan(limits.TierBusiness))
	require.NoError(t, err)
	assert.Equal(t, int64(20), l.Quotas[limits.ResourceProjects])

	l, err = catalog.Lookup(limits.FreePlan())
	require.NoError(t, err)
	assert.Equal(t, int64(1), l.Quotas[limits.ResourceProjects])

	_, err = catalog.Lookup(limits.AppsumoPlan(7))
	assert.ErrorIs(t, err, limits.ErrTierNotFound)

	_, err = catalog.Lookup(limits.Plan{Type: "legacy"})
	assert.ErrorIs(t, err, limits.ErrInvalidPlan)
}

func TestLoadCatalog(t *testing.T) {
	t.Parallel()

	const doc = `
free:
  quotas: {projects: 2, automations: 3, customers: 100, emails_monthly: 500, sms_monthly: 0, ai_analyses: 10, team_members: 1}
  features: {api_access: false}
subscription:
  growth:
    quotas: {projects: 5, automations: 25, customers: 2500, emails_monthly: 10000, sms_monthly: 500, ai_analyses: 200, team_members: 3}
  business:
    quotas: {projects: 20, automations: 100, customers: 25000, emails_monthly: 50000, sms_monthly: 2500, ai_analyses: 1000, team_members: 10}
  enterprise:
    quotas: {projects: -1, automations: -1, customers: -1, emails_monthly: -1, sms_monthly: -1, ai_analyses: -1, team_members: -1}
    features: {api_access: true, webhooks: true}
appsumo:
  1:
    quotas: {projects: 3, automations: 10, customers: 1000, emails_monthly: 5000, sms_monthly: 0, ai_analyses: 50, team_members: 2}
  2:
    quotas: {projects: 10, automations: 50, customers: 10000, emails_monthly: 25000, sms_monthly: 250, ai_analyses: 250, team_members: 5}
  3:
    quotas: {projects: -1, automations: 200, customers: 50000, emails_monthly: 100000, sms_monthly: 1000, ai_analyses: 1000, team_members: 15}
`

	t.Run("valid document", func(t *testing.T) {
		t.Parallel()

		catalog, err := limits.LoadCatalog(strings.NewReader(doc))
		require.NoError(t, err)

		assert.Equal(t, int64(2), catalog.Free().Quotas[limits.ResourceProjects])

		ent, err := catalog.Subscription(limits.TierEnterprise)
		require.NoError(t, err)
		assert.True(t, ent.IsUnlimited(limits.ResourceSMSMonthly))
		assert.True(t, ent.HasFeature(limits.FeatureWebhooks))

		a3, err := catalog.Appsumo(3)
		require.NoError(t, err)
		assert.True(t, a3.IsUnlimited(limits.ResourceProjects))
	})

	t.Run("unknown field", func(t *testing.T) {
		t.Parallel()

		_, err := limits.LoadCatalog(strings.NewReader("trial:\n  days: 14\n"))
		assert.ErrorIs(t, err, limits.ErrFailedToLoadCatalog)
	})

	t.Run("incomplete document", func(t *testing.T) {
		t.Parallel()

		_, err := limits.LoadCatalog(strings.NewReader("free:\n  quotas: {projects: 1}\n"))
		assert.ErrorIs(t, err, limits.ErrInvalidCatalog)
	})

	t.Run("empty path falls back to defaults", func(t *testing.T) {
		t.Parallel()

		catalog, err := limits.LoadCatalogFile("")
		require.NoError(t, err)
		assert.Equal(t, limits.DefaultCatalog().Definition(), catalog.Definition())
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := limits.LoadCatalogFile("/nonexistent/plans.yaml")
		assert.ErrorIs(t, err, limits.ErrFailedToLoadCatalog)
	})
}
