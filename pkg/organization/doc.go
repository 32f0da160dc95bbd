// Package organization holds the billing view of an organization: its plan,
// the audit trail of redeemed lifetime codes and an optional per-organization
// limits override, together with in-memory and PostgreSQL stores.
//
// Updates are partial and last-write-wins per field:
//
//	plan := limits.SubscriptionPlan(limits.TierBusiness)
//	now := time.Now()
//	org, err := store.Update(ctx, orgID, organization.Update{
//	    Plan:          &plan,
//	    PlanChangedAt: &now,
//	})
//
// An update never lowers an AppSumo tier; such updates fail with ErrTierDowngrade.
package organization
