package quota

import "errors"

var (
	ErrUnknownResource  = errors.New("quota.errors.unknown_resource")
	ErrInvalidIncrement = errors.New("quota.errors.invalid_increment")
)
