package billing_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/billingkit/pkg/billing"
	"github.com/dmitrymomot/billingkit/pkg/limits"
	"github.com/dmitrymomot/billingkit/pkg/metrics"
	"github.com/dmitrymomot/billingkit/pkg/organization"
	"github.com/dmitrymomot/billingkit/pkg/quota"
	"github.com/dmitrymomot/billingkit/pkg/redemption"
	"github.com/dmitrymomot/billingkit/pkg/usage"
)

var fixedNow = time.Date(2025, 10, 14, 9, 30, 0, 0, time.UTC)

var errStoreDown = errors.New("connection refused")

type fixture struct {
	svc      *billing.Service
	orgs     organization.Store
	registry *prometheus.Registry
	metrics  *metrics.Metrics
}

type fixtureOptions struct {
	orgs       []*organization.Organization
	codes      []*redemption.Code
	usageStore usage.Store
	counters   usage.CounterRegistry
}

func newFixture(t *testing.T, fo fixtureOptions) fixture {
	t.Helper()

	clock := func() time.Time { return fixedNow }
	orgStore := organization.NewInMemStore(
		organization.WithOrganizations(fo.orgs...),
		organization.WithStoreClock(clock),
	)
	usageStore := fo.usageStore
	if usageStore == nil {
		usageStore = usage.NewInMemStore(usage.WithStoreClock(clock))
	}

	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry("test", reg)

	svc := billing.NewService(
		orgStore,
		quota.NewResolver(limits.DefaultCatalog()),
		usage.NewService(usageStore, fo.counters, usage.WithClock(clock)),
		redemption.NewEngine(redemption.NewInMemStore(orgStore, redemption.WithCodes(fo.codes...), redemption.WithStoreClock(clock)), redemption.WithClock(clock)),
		billing.WithMetrics(m),
		billing.WithClock(clock),
	)
	return fixture{svc: svc, orgs: orgStore, registry: reg, metrics: m}
}

func orgOn(plan limits.Plan) *organization.Organization {
	org := organization.New("Acme")
	org.Plan = plan
	return org
}

func counterOf(n int64) usage.CounterFunc {
	return func(context.Context, uuid.UUID) (int64, error) { return n, nil }
}

// brokenStore fails every usage operation.
type brokenStore struct{}

func (brokenStore) Get(context.Context, uuid.UUID, time.Time) (*usage.Period, error) {
	return nil, errStoreDown
}

func (brokenStore) Create(context.Context, *usage.Period) error { return errStoreDown }

func (brokenStore) Increment(context.Context, uuid.UUID, time.Time, usage.CounterKind, int64) (*usage.Period, error) {
	return nil, errStoreDown
}

func (brokenStore) SetSnapshots(context.Context, uuid.UUID, time.Time, usage.Snapshot) (*usage.Period, error) {
	return nil, errStoreDown
}

func (brokenStore) List(context.Context, uuid.UUID, int) ([]*usage.Period, error) {
	return nil, errStoreDown
}

func failureCode(err error) billing.Code {
	if f := billing.AsFailure(err); f != nil {
		return f.Code
	}
	return ""
}
