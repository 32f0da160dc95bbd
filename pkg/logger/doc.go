// Package logger builds the service's *slog.Logger and names the attributes
// billing code logs with.
//
//	log := logger.New(
//		logger.WithEnvironment(environment.Parse(cfg.Env), "billing"),
//		logger.WithConfig(cfg.Log),
//		logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	log.InfoContext(ctx, "code redeemed",
//		logger.OrganizationID(orgID),
//		logger.Tier(tier),
//	)
//
// Error and Errors return an empty attribute for nil errors, so they can be
// passed unconditionally. Components that take an optional logger default to
// Discard.
package logger
