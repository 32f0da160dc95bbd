package usage

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

type periodKey struct {
	orgID uuid.UUID
	start time.Time
}

func keyOf(orgID uuid.UUID, start time.Time) periodKey {
	return periodKey{orgID: orgID, start: start.UTC()}
}

// inMemStore implements Store on a map guarded by a mutex.
type inMemStore struct {
	mu      sync.Mutex
	periods map[periodKey]*Period
	now     func() time.Time
}

// InMemStoreOption configures the in-memory Store.
type InMemStoreOption func(*inMemStore)

// WithStoreClock sets the clock used for updated_at. Defaults to time.Now.
func WithStoreClock(now func() time.Time) InMemStoreOption {
	return func(s *inMemStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewInMemStore returns an empty in-memory Store.
func NewInMemStore(opts ...InMemStoreOption) Store {
	s := &inMemStore{
		periods: make(map[periodKey]*Period),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *inMemStore) Get(ctx context.Context, orgID uuid.UUID, start time.Time) (*Period, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.periods[keyOf(orgID, start)]
	if !ok {
		return nil, ErrPeriodNotFound
	}
	return p.Clone(), nil
}

func (s *inMemStore) Create(ctx context.Context, p *Period) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := keyOf(p.OrganizationID, p.PeriodStart)
	if _, ok := s.periods[key]; ok {
		return ErrPeriodExists
	}
	s.periods[key] = p.Clone()
	return nil
}

func (s *inMemStore) Increment(ctx context.Context, orgID uuid.UUID, start time.Time, kind CounterKind, amount int64) (*Period, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.periods[keyOf(orgID, start)]
	if !ok {
		return nil, ErrPeriodNotFound
	}
	if amount > math.MaxInt64-p.Counter(kind) {
		return nil, fmt.Errorf("%w: counter %q would overflow", ErrInvalidAmount, kind)
	}
	p.addCounter(kind, amount)
	p.UpdatedAt = s.now().UTC()
	return p.Clone(), nil
}

func (s *inMemStore) SetSnapshots(ctx context.Context, orgID uuid.UUID, start time.Time, snap Snapshot) (*Period, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.periods[keyOf(orgID, start)]
	if !ok {
		return nil, ErrPeriodNotFound
	}
	p.applySnapshot(snap)
	p.UpdatedAt = s.now().UTC()
	return p.Clone(), nil
}

func (s *inMemStore) List(ctx context.Context, orgID uuid.UUID, limit int) ([]*Period, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*Period
	for key, p := range s.periods {
		if key.orgID == orgID {
			out = append(out, p.Clone())
		}
	}
	slices.SortFunc(out, func(a, b *Period) int {
		return b.PeriodStart.Compare(a.PeriodStart)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
