package usage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/billingkit/pkg/cache"
	"github.com/dmitrymomot/billingkit/pkg/logger"
)

// DefaultHistoryLimit is the number of periods History returns when no
// positive limit is given.
const DefaultHistoryLimit = 12

// Service is the accessor for an organization's current usage period.
type Service struct {
	store    Store
	counters CounterRegistry
	now      func() time.Time
	log      *slog.Logger
	ensured  *cache.LRU[periodKey, struct{}]
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithClock overrides the time source used to pick the current month.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithPeriodCache remembers up to size (organization, month) pairs known to
// exist, so increments skip the existence check. Zero disables the cache.
func WithPeriodCache(size int) ServiceOption {
	return func(s *Service) {
		if size > 0 {
			s.ensured = cache.NewLRU[periodKey, struct{}](size)
		} else {
			s.ensured = nil
		}
	}
}

// NewService returns a usage service on store. counters supplies live totals
// for RefreshSnapshots and may be nil. Panics if store is nil.
func NewService(store Store, counters CounterRegistry, opts ...ServiceOption) *Service {
	if store == nil {
		panic("usage: store cannot be nil")
	}
	s := &Service{
		store:    store,
		counters: counters,
		now:      time.Now,
		log:      logger.Discard(),
		ensured:  cache.NewLRU[periodKey, struct{}](1024),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CurrentPeriod returns the organization's period for the current UTC
// month, creating a zeroed one on first access. A concurrent first access
// that loses the insert race re-reads the winner's row.
func (s *Service) CurrentPeriod(ctx context.Context, orgID uuid.UUID) (*Period, error) {
	now := s.now()
	start, _ := MonthBounds(now)

	p, err := s.store.Get(ctx, orgID, start)
	if err == nil {
		s.remember(orgID, start)
		return p, nil
	}
	if !errors.Is(err, ErrPeriodNotFound) {
		return nil, err
	}

	p = NewPeriod(orgID, now)
	err = s.store.Create(ctx, p)
	switch {
	case err == nil:
		s.log.LogAttrs(ctx, slog.LevelInfo, "usage period opened",
			logger.OrganizationID(orgID),
			slog.String("period_start", start.Format(dateLayout)),
		)
	case errors.Is(err, ErrPeriodExists):
		s.log.LogAttrs(ctx, slog.LevelDebug, "usage period created concurrently, re-reading",
			logger.OrganizationID(orgID),
		)
		if p, err = s.store.Get(ctx, orgID, start); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	s.remember(orgID, start)
	return p, nil
}

// IncrementCounter atomically adds amount to a counter of the current period
// and returns the updated period. An amount of zero counts as one. Unknown
// kinds fail with ErrUnknownCounter and mutate nothing. An amount that would
// overflow the counter fails with ErrInvalidAmount.
func (s *Service) IncrementCounter(ctx context.Context, orgID uuid.UUID, kind CounterKind, amount int64) (*Period, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCounter, kind)
	}
	if amount < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidAmount, amount)
	}
	if amount == 0 {
		amount = 1
	}

	start, _ := MonthBounds(s.now())
	if !s.known(orgID, start) {
		if _, err := s.CurrentPeriod(ctx, orgID); err != nil {
			return nil, err
		}
	}

	p, err := s.store.Increment(ctx, orgID, start, kind, amount)
	if errors.Is(err, ErrPeriodNotFound) {
		// The cached key is stale; recreate the period and try once more.
		s.forget(orgID, start)
		if _, err := s.CurrentPeriod(ctx, orgID); err != nil {
			return nil, err
		}
		p, err = s.store.Increment(ctx, orgID, start, kind, amount)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// RefreshSnapshots recomputes the snapshot counts from the registered
// counters and overwrites them on the current period. Resources without a
// registered counter keep their stored value. Idempotent.
func (s *Service) RefreshSnapshots(ctx context.Context, orgID uuid.UUID) (*Period, error) {
	p, err := s.CurrentPeriod(ctx, orgID)
	if err != nil {
		return nil, err
	}

	snap := make(Snapshot, len(SnapshotResources))
	for _, res := range SnapshotResources {
		fn, ok := s.counters[res]
		if !ok {
			continue
		}
		n, err := fn(ctx, orgID)
		if err != nil {
			return nil, errors.Join(ErrCounterFailed, fmt.Errorf("count %s: %w", res, err))
		}
		snap[res] = n
	}
	if len(snap) == 0 {
		return p, nil
	}

	return s.store.SetSnapshots(ctx, orgID, p.PeriodStart, snap)
}

// History returns up to limit periods of the organization, newest first.
func (s *Service) History(ctx context.Context, orgID uuid.UUID, limit int) ([]*Period, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return s.store.List(ctx, orgID, limit)
}

func (s *Service) remember(orgID uuid.UUID, start time.Time) {
	if s.ensured != nil {
		s.ensured.Put(keyOf(orgID, start), struct{}{})
	}
}

func (s *Service) known(orgID uuid.UUID, start time.Time) bool {
	return s.ensured != nil && s.ensured.Contains(keyOf(orgID, start))
}

func (s *Service) forget(orgID uuid.UUID, start time.Time) {
	if s.ensured != nil {
		s.ensured.Remove(keyOf(orgID, start))
	}
}
