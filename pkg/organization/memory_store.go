package organization

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// inMemStore implements Store on a map guarded by a mutex.
type inMemStore struct {
	mu   sync.RWMutex
	orgs map[uuid.UUID]*Organization
	now  func() time.Time
}

// InMemStoreOption configures the in-memory Store.
type InMemStoreOption func(*inMemStore)

// WithOrganizations seeds the store with deep copies of orgs.
func WithOrganizations(orgs ...*Organization) InMemStoreOption {
	return func(s *inMemStore) {
		for _, o := range orgs {
			s.orgs[o.ID] = o.Clone()
		}
	}
}

// WithStoreClock sets the clock used for updated_at. Defaults to time.Now.
func WithStoreClock(now func() time.Time) InMemStoreOption {
	return func(s *inMemStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewInMemStore returns an in-memory Store.
func NewInMemStore(opts ...InMemStoreOption) Store {
	s := &inMemStore{
		orgs: make(map[uuid.UUID]*Organization),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *inMemStore) Get(ctx context.Context, id uuid.UUID) (*Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orgs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return o.Clone(), nil
}

func (s *inMemStore) Create(ctx context.Context, org *Organization) error {
	if err := org.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orgs[org.ID]; ok {
		return ErrAlreadyExists
	}
	s.orgs[org.ID] = org.Clone()
	return nil
}

func (s *inMemStore) Update(ctx context.Context, id uuid.UUID, upd Update) (*Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orgs[id]
	if !ok {
		return nil, ErrNotFound
	}

	// Apply to a copy so a rejected update leaves the stored value intact.
	next := o.Clone()
	if err := upd.Apply(next, s.now()); err != nil {
		return nil, err
	}
	s.orgs[id] = next
	return next.Clone(), nil
}
