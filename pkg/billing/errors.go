package billing

import (
	"context"
	"errors"

	"github.com/dmitrymomot/billingkit/pkg/organization"
	"github.com/dmitrymomot/billingkit/pkg/quota"
	"github.com/dmitrymomot/billingkit/pkg/redemption"
	"github.com/dmitrymomot/billingkit/pkg/usage"
)

var (
	ErrStoreUnavailable = errors.New("billing.errors.store_unavailable")
	ErrInvalidRequest   = errors.New("billing.errors.invalid_request")
)

// Code is a stable, machine readable failure identifier.
type Code string

const (
	CodeNotFound         Code = "not_found"
	CodeInvalidCode      Code = "invalid_code"
	CodeAlreadyRedeemed  Code = "already_redeemed"
	CodeUnknownResource  Code = "unknown_resource"
	CodeUnknownCounter   Code = "unknown_counter"
	CodeInvalidAmount    Code = "invalid_amount"
	CodeInvalidRequest   Code = "invalid_request"
	CodeConflict         Code = "conflict"
	CodeStoreUnavailable Code = "store_unavailable"
	CodeUnauthorized     Code = "unauthorized"
	CodeForbidden        Code = "forbidden"
	CodeRateLimited      Code = "rate_limited"
)

// Failure is the error type returned by every Service method.
type Failure struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return string(f.Code) + ": " + f.Err.Error()
	}
	return string(f.Code) + ": " + f.Message
}

func (f *Failure) Unwrap() error { return f.Err }

// AsFailure returns err as a *Failure, classifying it when needed. Nil stays nil.
func AsFailure(err error) *Failure {
	if err == nil {
		return nil
	}
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	return classify(err)
}

func fail(err error) error {
	if err == nil {
		return nil
	}
	return AsFailure(err)
}

func classify(err error) *Failure {
	switch {
	case errors.Is(err, organization.ErrNotFound):
		return &Failure{Code: CodeNotFound, Message: "Organization not found.", Err: err}
	case errors.Is(err, usage.ErrPeriodNotFound):
		return &Failure{Code: CodeNotFound, Message: "Usage period not found.", Err: err}
	case errors.Is(err, redemption.ErrInvalidCode):
		return &Failure{Code: CodeInvalidCode, Message: "This code is not valid. Check it and try again.", Err: err}
	case errors.Is(err, redemption.ErrAlreadyRedeemed):
		return &Failure{Code: CodeAlreadyRedeemed, Message: "This code has already been redeemed.", Err: err}
	case errors.Is(err, quota.ErrUnknownResource):
		return &Failure{Code: CodeUnknownResource, Message: "Unknown resource.", Err: err}
	case errors.Is(err, usage.ErrUnknownCounter):
		return &Failure{Code: CodeUnknownCounter, Message: "Unknown usage counter.", Err: err}
	case errors.Is(err, usage.ErrInvalidAmount), errors.Is(err, quota.ErrInvalidIncrement):
		return &Failure{Code: CodeInvalidAmount, Message: "Amount must be a non-negative number within the counter range.", Err: err}
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, redemption.ErrInvalidBatch):
		return &Failure{Code: CodeInvalidRequest, Message: "The request is invalid.", Err: err}
	case errors.Is(err, redemption.ErrConflict), errors.Is(err, organization.ErrTierDowngrade):
		return &Failure{Code: CodeConflict, Message: "The request conflicted with a concurrent change. Try again.", Err: err}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return &Failure{Code: CodeStoreUnavailable, Message: "The request timed out.", Err: err}
	default:
		return &Failure{
			Code:    CodeStoreUnavailable,
			Message: "Billing data is temporarily unavailable.",
			Err:     errors.Join(ErrStoreUnavailable, err),
		}
	}
}
