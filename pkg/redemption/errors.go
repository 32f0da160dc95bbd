package redemption

import "errors"

var (
	ErrInvalidCode     = errors.New("redemption.errors.invalid_code")
	ErrAlreadyRedeemed = errors.New("redemption.errors.already_redeemed")
	ErrConflict        = errors.New("redemption.errors.conflict")
	ErrInvalidBatch    = errors.New("redemption.errors.invalid_batch")
)
