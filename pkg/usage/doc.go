// Package usage tracks per-organization usage in calendar-month periods.
//
// A Period holds cumulative counters (emails, SMS, AI analyses) that start
// at zero each UTC month, and snapshot counts (projects, automations,
// customers) that are overwritten with live totals on refresh.
//
//	registry := usage.NewRegistry().
//	    Register(limits.ResourceProjects, usage.TableCounter(pool, "projects", "organization_id", ""))
//	svc := usage.NewService(usage.NewPGStore(pool), registry)
//
//	p, err := svc.IncrementCounter(ctx, orgID, usage.CounterEmailsSent, 1)
//
// Three Store implementations are provided: Postgres (NewPGStore), Redis
// (NewRedisStore) and in-memory (NewInMemStore). Each creates periods
// insert-if-absent and increments counters atomically.
package usage
