package organization

import "errors"

var (
	ErrNotFound            = errors.New("organization.errors.not_found")
	ErrAlreadyExists       = errors.New("organization.errors.already_exists")
	ErrInvalidOrganization = errors.New("organization.errors.invalid_organization")
	ErrInvalidUpdate       = errors.New("organization.errors.invalid_update")
	ErrTierDowngrade       = errors.New("organization.errors.appsumo_tier_downgrade")
)
