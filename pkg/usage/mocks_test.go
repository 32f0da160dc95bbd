package usage_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/billingkit/pkg/usage"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Get(ctx context.Context, orgID uuid.UUID, start time.Time) (*usage.Period, error) {
	args := m.Called(ctx, orgID, start)
	p, _ := args.Get(0).(*usage.Period)
	return p, args.Error(1)
}

func (m *mockStore) Create(ctx context.Context, p *usage.Period) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockStore) Increment(ctx context.Context, orgID uuid.UUID, start time.Time, kind usage.CounterKind, amount int64) (*usage.Period, error) {
	args := m.Called(ctx, orgID, start, kind, amount)
	p, _ := args.Get(0).(*usage.Period)
	return p, args.Error(1)
}

func (m *mockStore) SetSnapshots(ctx context.Context, orgID uuid.UUID, start time.Time, snap usage.Snapshot) (*usage.Period, error) {
	args := m.Called(ctx, orgID, start, snap)
	p, _ := args.Get(0).(*usage.Period)
	return p, args.Error(1)
}

func (m *mockStore) List(ctx context.Context, orgID uuid.UUID, limit int) ([]*usage.Period, error) {
	args := m.Called(ctx, orgID, limit)
	ps, _ := args.Get(0).([]*usage.Period)
	return ps, args.Error(1)
}

func counterOf(n int64) usage.CounterFunc {
	return func(context.Context, uuid.UUID) (int64, error) { return n, nil }
}

// clock is a settable time source.
type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }
