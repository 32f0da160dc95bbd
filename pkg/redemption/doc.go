// Package redemption redeems AppSumo lifetime-deal codes.
//
// A code is pre-provisioned with a tier (1-3) and can be redeemed once.
// Redeeming stacks the code tier onto the organization's current AppSumo
// tier, summing and capping at 3:
//
//	none + 1 = 1
//	1 + 2 = 3
//	2 + 2 = 3
//
// The claim of the code and the organization's plan update run in one
// store transaction, so a failed update never leaves a consumed code:
//
//	engine := redemption.NewEngine(redemption.NewPGStore(pool))
//	res, err := engine.Redeem(ctx, orgID, "as-7k2m-q9xd-4htv-b0ce")
//	switch {
//	case errors.Is(err, redemption.ErrInvalidCode):
//	case errors.Is(err, redemption.ErrAlreadyRedeemed):
//	}
//
// CheckCode is a read-only pre-flight that exposes only validity and tier.
package redemption
