package usage

import "errors"

var (
	ErrPeriodNotFound = errors.New("usage.errors.period_not_found")
	ErrPeriodExists   = errors.New("usage.errors.period_exists")
	ErrUnknownCounter = errors.New("usage.errors.unknown_counter")
	ErrInvalidAmount  = errors.New("usage.errors.invalid_amount")
	ErrCounterFailed  = errors.New("usage.errors.counter_failed")
)
