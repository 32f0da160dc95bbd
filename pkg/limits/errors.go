package limits

import "errors"

// Domain errors for limits operations
var (
	// Plan errors
	ErrInvalidPlan  = errors.New("limits.errors.invalid_plan")
	ErrTierNotFound = errors.New("limits.errors.tier_not_found")

	// Catalog errors
	ErrInvalidCatalog      = errors.New("limits.errors.invalid_catalog")
	ErrFailedToLoadCatalog = errors.New("limits.errors.failed_to_load_catalog")
)
