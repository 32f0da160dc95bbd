// Package quota resolves an organization's effective limits and enforces them.
//
// Resolver merges the catalog entry for the organization's plan with the
// organization's override. Enforcer turns usage plus limits into a Decision:
//
//	resolver := quota.NewResolver(limits.DefaultCatalog())
//	enforcer := quota.NewEnforcer(resolver)
//
//	d, err := enforcer.Check(org, period.Usage(), limits.ResourceProjects, 1)
//	if err != nil {
//	    // unknown resource or negative increment
//	}
//	if !d.Allowed {
//	    return d.Message // plan specific upgrade hint
//	}
//	// create the project, then record usage
//
// Limits of -1 are unlimited and always allowed. Allowed decisions at 80% or
// more (below 100%) carry Warning=true.
package quota
