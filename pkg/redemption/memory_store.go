package redemption

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/billingkit/pkg/organization"
)

// inMemStore implements Store on a code map and an organization.Store.
// One mutex serializes every unit; organization updates are buffered and
// applied on commit, and claimed codes are released if the commit fails.
type inMemStore struct {
	mu    sync.Mutex
	codes map[string]*Code
	orgs  organization.Store
	now   func() time.Time
}

// InMemStoreOption configures the in-memory Store.
type InMemStoreOption func(*inMemStore)

// WithCodes seeds the store with copies of codes.
func WithCodes(codes ...*Code) InMemStoreOption {
	return func(s *inMemStore) {
		for _, c := range codes {
			cp := c.Clone()
			cp.Code = NormalizeCode(cp.Code)
			s.codes[cp.Code] = cp
		}
	}
}

// WithStoreClock sets the clock applied to organizations updated inside a
// unit. Defaults to time.Now.
func WithStoreClock(now func() time.Time) InMemStoreOption {
	return func(s *inMemStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewInMemStore returns a Store keeping codes in memory and writing
// organizations through orgs.
func NewInMemStore(orgs organization.Store, opts ...InMemStoreOption) Store {
	if orgs == nil {
		panic("redemption: organization store cannot be nil")
	}
	s := &inMemStore{
		codes: make(map[string]*Code),
		orgs:  orgs,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *inMemStore) GetCode(ctx context.Context, code string) (*Code, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.codes[code]
	if !ok {
		return nil, ErrInvalidCode
	}
	return c.Clone(), nil
}

func (s *inMemStore) InsertCodes(ctx context.Context, codes []*Code) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inserted := 0
	for _, c := range codes {
		if _, ok := s.codes[c.Code]; ok {
			continue
		}
		s.codes[c.Code] = c.Clone()
		inserted++
	}
	return inserted, nil
}

func (s *inMemStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &inMemTx{store: s, pending: make(map[uuid.UUID][]organization.Update)}
	if err := fn(ctx, tx); err != nil {
		tx.rollback()
		return err
	}
	if err := tx.commit(ctx); err != nil {
		tx.rollback()
		return err
	}
	return nil
}

type inMemTx struct {
	store   *inMemStore
	claimed []*Code
	pending map[uuid.UUID][]organization.Update
}

func (tx *inMemTx) GetOrganizationForUpdate(ctx context.Context, orgID uuid.UUID) (*organization.Organization, error) {
	org, err := tx.store.orgs.Get(ctx, orgID)
	if err != nil {
		return nil, err
	}
	for _, upd := range tx.pending[orgID] {
		if err := upd.Apply(org, tx.store.now()); err != nil {
			return nil, err
		}
	}
	return org, nil
}

func (tx *inMemTx) ClaimCode(ctx context.Context, code string, orgID uuid.UUID, at time.Time) (*Code, error) {
	c, ok := tx.store.codes[code]
	if !ok {
		return nil, ErrInvalidCode
	}
	if err := c.Redeem(orgID, at); err != nil {
		return nil, err
	}
	tx.claimed = append(tx.claimed, c)
	return c.Clone(), nil
}

func (tx *inMemTx) UpdateOrganization(ctx context.Context, orgID uuid.UUID, upd organization.Update) (*organization.Organization, error) {
	org, err := tx.GetOrganizationForUpdate(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if err := upd.Apply(org, tx.store.now()); err != nil {
		return nil, err
	}
	tx.pending[orgID] = append(tx.pending[orgID], upd)
	return org, nil
}

func (tx *inMemTx) commit(ctx context.Context) error {
	for orgID, updates := range tx.pending {
		for _, upd := range updates {
			if _, err := tx.store.orgs.Update(ctx, orgID, upd); err != nil {
				return err
			}
		}
	}
	return nil
}

func (tx *inMemTx) rollback() {
	for _, c := range tx.claimed {
		c.IsRedeemed = false
		c.RedeemedByOrgID = nil
		c.RedeemedAt = nil
	}
}
