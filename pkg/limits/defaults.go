package limits

// DefaultCatalogDefinition returns the built-in plan table.
func DefaultCatalogDefinition() CatalogDefinition {
	return CatalogDefinition{
		Free: Limits{
			Quotas: map[Resource]int64{
				ResourceProjects:      1,
				ResourceAutomations:   3,
				ResourceCustomers:     100,
				ResourceEmailsMonthly: 500,
				ResourceSMSMonthly:    0,
				ResourceAIAnalyses:    10,
				ResourceTeamMembers:   1,
			},
			Features: map[Feature]bool{
				FeatureAPIAccess:       false,
				FeatureWebhooks:        false,
				FeaturePrioritySupport: false,
				FeatureCustomBranding:  false,
				FeatureWhiteLabel:      false,
			},
		},
		Subscription: map[SubscriptionTier]Limits{
			TierGrowth: {
				Quotas: map[Resource]int64{
					ResourceProjects:      5,
					ResourceAutomations:   25,
					ResourceCustomers:     2500,
					ResourceEmailsMonthly: 10000,
					ResourceSMSMonthly:    500,
					ResourceAIAnalyses:    200,
					ResourceTeamMembers:   3,
				},
				Features: map[Feature]bool{
					FeatureAPIAccess:       true,
					FeatureWebhooks:        true,
					FeaturePrioritySupport: false,
					FeatureCustomBranding:  false,
					FeatureWhiteLabel:      false,
				},
			},
			TierBusiness: {
				Quotas: map[Resource]int64{
					ResourceProjects:      20,
					ResourceAutomations:   100,
					ResourceCustomers:     25000,
					ResourceEmailsMonthly: 50000,
					ResourceSMSMonthly:    2500,
					ResourceAIAnalyses:    1000,
					ResourceTeamMembers:   10,
				},
				Features: map[Feature]bool{
					FeatureAPIAccess:       true,
					FeatureWebhooks:        true,
					FeaturePrioritySupport: true,
					FeatureCustomBranding:  true,
					FeatureWhiteLabel:      false,
				},
			},
			TierEnterprise: {
				Quotas: map[Resource]int64{
					ResourceProjects:      Unlimited,
					ResourceAutomations:   Unlimited,
					ResourceCustomers:     Unlimited,
					ResourceEmailsMonthly: Unlimited,
					ResourceSMSMonthly:    10000,
					ResourceAIAnalyses:    Unlimited,
					ResourceTeamMembers:   Unlimited,
				},
				Features: map[Feature]bool{
					FeatureAPIAccess:       true,
					FeatureWebhooks:        true,
					FeaturePrioritySupport: true,
					FeatureCustomBranding:  true,
					FeatureWhiteLabel:      true,
				},
			},
		},
		Appsumo: map[AppsumoTier]Limits{
			1: {
				Quotas: map[Resource]int64{
					ResourceProjects:      3,
					ResourceAutomations:   10,
					ResourceCustomers:     1000,
					ResourceEmailsMonthly: 5000,
					ResourceSMSMonthly:    0,
					ResourceAIAnalyses:    50,
					ResourceTeamMembers:   2,
				},
				Features: map[Feature]bool{
					FeatureAPIAccess:       false,
					FeatureWebhooks:        true,
					FeaturePrioritySupport: false,
					FeatureCustomBranding:  false,
					FeatureWhiteLabel:      false,
				},
			},
			2: {
				Quotas: map[Resource]int64{
					ResourceProjects:      10,
					ResourceAutomations:   50,
					ResourceCustomers:     10000,
					ResourceEmailsMonthly: 25000,
					ResourceSMSMonthly:    250,
					ResourceAIAnalyses:    250,
					ResourceTeamMembers:   5,
				},
				Features: map[Feature]bool{
					FeatureAPIAccess:       true,
					FeatureWebhooks:        true,
					FeaturePrioritySupport: false,
					FeatureCustomBranding:  true,
					FeatureWhiteLabel:      false,
				},
			},
			3: {
				Quotas: map[Resource]int64{
					ResourceProjects:      Unlimited,
					ResourceAutomations:   200,
					ResourceCustomers:     50000,
					ResourceEmailsMonthly: 100000,
					ResourceSMSMonthly:    1000,
					ResourceAIAnalyses:    1000,
					ResourceTeamMembers:   15,
				},
				Features: map[Feature]bool{
					FeatureAPIAccess:       true,
					FeatureWebhooks:        true,
					FeaturePrioritySupport: true,
					FeatureCustomBranding:  true,
					FeatureWhiteLabel:      false,
				},
			},
		},
	}
}

// DefaultCatalog returns a catalog built from DefaultCatalogDefinition.
func DefaultCatalog() *Catalog {
	return MustNewCatalog(DefaultCatalogDefinition())
}
