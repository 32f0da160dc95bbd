// Package limits defines the plan model of the billing layer: plan variants
// (free, subscription tiers, AppSumo lifetime tiers), resource quotas,
// feature flags and the immutable catalog that maps each plan to its limits.
//
// Key concepts:
//
//   - Plan: tagged variant over free / subscription(tier) / appsumo_lifetime(tier)
//   - Resource: countable entities like projects, customers, monthly emails
//   - Feature: plan-specific capabilities like API access or webhooks
//   - Limits: quota and feature set, where Unlimited (-1) disables a quota
//   - Catalog: validated, read-only plan table built once at startup
//
// Basic usage:
//
//	catalog := limits.DefaultCatalog()
//
//	// or from a file
//	catalog, err := limits.LoadCatalogFile("plans.yaml")
//
//	l, err := catalog.Appsumo(2)
//	if err != nil {
//	    // tier out of range
//	}
//	if l.IsUnlimited(limits.ResourceProjects) {
//	    // no project cap
//	}
//
// Stacking of lifetime deals is defined on AppsumoTier:
//
//	limits.AppsumoTier(1).Stack(2) // 3
//	limits.AppsumoTier(2).Stack(2) // 3, capped
package limits
