package usage

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store persists usage periods keyed by (organization, period start).
//
// Implementations must make Create fail with ErrPeriodExists when the key is
// taken, and Increment must add to the stored value atomically rather than
// read-modify-write. Get, Increment and SetSnapshots return ErrPeriodNotFound
// for a missing period. Increment fails with ErrInvalidAmount, leaving the
// counter unchanged, when the sum would overflow int64.
type Store interface {
	Get(ctx context.Context, orgID uuid.UUID, start time.Time) (*Period, error)
	Create(ctx context.Context, p *Period) error
	Increment(ctx context.Context, orgID uuid.UUID, start time.Time, kind CounterKind, amount int64) (*Period, error)
	SetSnapshots(ctx context.Context, orgID uuid.UUID, start time.Time, snap Snapshot) (*Period, error)
	// List returns up to limit periods, newest first.
	List(ctx context.Context, orgID uuid.UUID, limit int) ([]*Period, error)
}
