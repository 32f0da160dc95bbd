package organization

import (
	"context"

	"github.com/google/uuid"
)

// Store reads and writes organizations.
type Store interface {
	// Get returns ErrNotFound when the organization does not exist.
	Get(ctx context.Context, id uuid.UUID) (*Organization, error)
	// Create returns ErrAlreadyExists on a duplicate id.
	Create(ctx context.Context, org *Organization) error
	// Update applies a partial update and returns the stored result.
	Update(ctx context.Context, id uuid.UUID, upd Update) (*Organization, error)
}
