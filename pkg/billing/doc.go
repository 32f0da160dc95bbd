// Package billing is the caller-facing surface of the billing layer: a Go
// Service facade over plans, quotas, usage periods and AppSumo redemption,
// and a chi based JSON HTTP API over that facade.
//
// Every Service method returns a result or a *Failure carrying a stable Code
// (not_found, invalid_code, already_redeemed, unknown_resource,
// unknown_counter, invalid_amount, invalid_request, conflict,
// store_unavailable). The HTTP API wraps results as {"data": ...} and
// failures as {"error": {"code", "message"}}.
//
//	svc := billing.NewService(orgs, resolver, usageSvc, engine,
//		billing.WithLogger(log),
//		billing.WithMetrics(m),
//	)
//	d, err := svc.CheckQuotaFor(ctx, orgID, limits.ResourceProjects, 1)
//	if err != nil {
//		return err
//	}
//	if !d.Allowed {
//		return errors.New(d.Message)
//	}
//
// Quota checks are soft: they reserve nothing. Callers create the resource
// only after an allowed decision and record usage afterwards.
package billing
