package usage

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrymomot/billingkit/pkg/limits"
)

// CounterFunc returns the live total of a resource for an organization.
// Should be fast: an indexed COUNT or a cached aggregate.
type CounterFunc func(ctx context.Context, orgID uuid.UUID) (int64, error)

// CounterRegistry maps a snapshot resource to its CounterFunc.
// Not thread-safe: register all counters at startup only.
type CounterRegistry map[limits.Resource]CounterFunc

// NewRegistry returns a new, empty CounterRegistry.
func NewRegistry() CounterRegistry {
	return make(CounterRegistry)
}

// Register sets or replaces the CounterFunc for res.
// Panics if fn is nil or res is not a snapshot resource.
func (r CounterRegistry) Register(res limits.Resource, fn CounterFunc) CounterRegistry {
	if fn == nil {
		panic(fmt.Sprintf("usage: CounterFunc for resource %q cannot be nil", res))
	}
	if !isSnapshotResource(res) {
		panic(fmt.Sprintf("usage: resource %q has no snapshot column", res))
	}
	r[res] = fn
	return r
}

func isSnapshotResource(res limits.Resource) bool {
	for _, r := range SnapshotResources {
		if r == res {
			return true
		}
	}
	return false
}
