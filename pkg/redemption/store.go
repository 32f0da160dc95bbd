package redemption

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/billingkit/pkg/organization"
)

// Store persists AppSumo codes and runs redemptions atomically.
type Store interface {
	// GetCode returns ErrInvalidCode when the code does not exist.
	GetCode(ctx context.Context, code string) (*Code, error)
	// InsertCodes stores new codes, skipping ones that already exist,
	// and returns how many were inserted.
	InsertCodes(ctx context.Context, codes []*Code) (int, error)
	// RunInTx runs fn in one atomic unit: either every write made through
	// tx is applied, or none is.
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx is the write surface of a redemption.
type Tx interface {
	// GetOrganizationForUpdate reads the organization and holds it against
	// concurrent redemptions until the unit ends.
	GetOrganizationForUpdate(ctx context.Context, orgID uuid.UUID) (*organization.Organization, error)
	// ClaimCode marks an unredeemed code as redeemed by orgID in a single
	// conditional write and returns it. Fails with ErrInvalidCode or
	// ErrAlreadyRedeemed without writing anything.
	ClaimCode(ctx context.Context, code string, orgID uuid.UUID, at time.Time) (*Code, error)
	UpdateOrganization(ctx context.Context, orgID uuid.UUID, upd organization.Update) (*organization.Organization, error)
}
