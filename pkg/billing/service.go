package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/billingkit/pkg/limits"
	"github.com/dmitrymomot/billingkit/pkg/logger"
	"github.com/dmitrymomot/billingkit/pkg/metrics"
	"github.com/dmitrymomot/billingkit/pkg/organization"
	"github.com/dmitrymomot/billingkit/pkg/quota"
	"github.com/dmitrymomot/billingkit/pkg/redemption"
	"github.com/dmitrymomot/billingkit/pkg/usage"
)

// Service is the caller-facing billing API. Every method returns either a
// result or a *Failure.
type Service struct {
	orgs       organization.Store
	resolver   *quota.Resolver
	enforcer   *quota.Enforcer
	usage      *usage.Service
	redemption *redemption.Engine
	metrics    *metrics.Metrics
	log        *slog.Logger
	now        func() time.Time
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock sets the time source used for degraded summaries. It should
// match the clock of the usage service.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService wires the billing components. Panics on nil dependencies.
func NewService(orgs organization.Store, resolver *quota.Resolver, usageSvc *usage.Service, engine *redemption.Engine, opts ...Option) *Service {
	switch {
	case orgs == nil:
		panic("billing: organization store cannot be nil")
	case resolver == nil:
		panic("billing: resolver cannot be nil")
	case usageSvc == nil:
		panic("billing: usage service cannot be nil")
	case engine == nil:
		panic("billing: redemption engine cannot be nil")
	}

	s := &Service{
		orgs:       orgs,
		resolver:   resolver,
		enforcer:   quota.NewEnforcer(resolver),
		usage:      usageSvc,
		redemption: engine,
		log:        logger.Discard(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("billing"))
	return s
}

// ResolveLimits returns the organization's plan and effective limits.
func (s *Service) ResolveLimits(ctx context.Context, orgID uuid.UUID) (*PlanLimits, error) {
	org, err := s.organization(ctx, orgID)
	if err != nil {
		return nil, err
	}
	plan, l := s.resolver.ResolvePlan(org)
	return &PlanLimits{OrganizationID: orgID, Plan: plan, Limits: l}, nil
}

// CheckQuota decides an increment against usage the caller already holds.
// It does not touch any store.
func (s *Service) CheckQuota(org *organization.Organization, used quota.Usage, res limits.Resource, increment int64) (quota.Decision, error) {
	d, err := s.enforcer.Check(org, used, res, increment)
	if err != nil {
		return quota.Decision{}, fail(err)
	}
	s.metrics.QuotaDecision(string(res), string(d.Status()))
	return d, nil
}

// CheckQuotaFor loads the organization and its current usage and decides
// whether increment more of res fits. A zero increment checks for one more.
func (s *Service) CheckQuotaFor(ctx context.Context, orgID uuid.UUID, res limits.Resource, increment int64) (quota.Decision, error) {
	if !res.Valid() {
		return quota.Decision{}, fail(errors.Join(quota.ErrUnknownResource, fmt.Errorf("resource %q", res)))
	}
	if increment == 0 {
		increment = 1
	}

	org, err := s.organization(ctx, orgID)
	if err != nil {
		return quota.Decision{}, err
	}
	p, err := s.usage.CurrentPeriod(ctx, orgID)
	if err != nil {
		s.storeFailure(ctx, "check_quota", orgID, err)
		return quota.Decision{}, fail(err)
	}

	d, err := s.CheckQuota(org, p.Usage(), res, increment)
	if err != nil {
		return quota.Decision{}, err
	}
	if !d.Allowed {
		s.log.LogAttrs(ctx, slog.LevelInfo, "quota denied",
			logger.OrganizationID(orgID),
			logger.Resource(res),
			logger.Plan(d.Plan.String()),
			slog.Int64("current", d.Current),
			slog.Int64("limit", d.Limit),
		)
	}
	return d, nil
}

// CurrentUsage refreshes the snapshot counts and summarises the current
// month against the organization's limits.
func (s *Service) CurrentUsage(ctx context.Context, orgID uuid.UUID) (*UsageSummary, error) {
	org, err := s.organization(ctx, orgID)
	if err != nil {
		return nil, err
	}

	p, err := s.usage.RefreshSnapshots(ctx, orgID)
	if errors.Is(err, usage.ErrCounterFailed) {
		// Fall back to the stored snapshot counts.
		s.log.LogAttrs(ctx, slog.LevelWarn, "snapshot refresh failed",
			logger.OrganizationID(orgID),
			logger.Error(err),
		)
		p, err = s.usage.CurrentPeriod(ctx, orgID)
	}
	if err != nil {
		s.storeFailure(ctx, "current_usage", orgID, err)
		return nil, fail(err)
	}

	plan, l := s.resolver.ResolvePlan(org)
	return summarizePeriod(plan, l, p), nil
}

// CurrentUsageSafe is CurrentUsage that degrades instead of failing when
// usage cannot be read: every resource reports zero usage against the
// organization's real limits and Degraded is set. Limits are never widened,
// so a store outage cannot grant unlimited access. Organization lookups still
// fail normally.
func (s *Service) CurrentUsageSafe(ctx context.Context, orgID uuid.UUID) (*UsageSummary, error) {
	summary, err := s.CurrentUsage(ctx, orgID)
	if err == nil {
		return summary, nil
	}
	if AsFailure(err).Code != CodeStoreUnavailable {
		return nil, err
	}

	// An unreadable organization resolves to the free plan.
	org, orgErr := s.orgs.Get(ctx, orgID)
	if orgErr != nil {
		org = nil
	}
	plan, l := s.resolver.ResolvePlan(org)
	start, end := usage.MonthBounds(s.now())

	s.metrics.DegradedRead()
	s.log.LogAttrs(ctx, slog.LevelWarn, "serving degraded usage summary",
		logger.OrganizationID(orgID),
		logger.Plan(plan.String()),
		logger.Error(err),
	)

	summary = summarize(orgID, plan, l, start, end, quota.Usage{})
	summary.Degraded = true
	return summary, nil
}

// IncrementUsage adds amount to a monthly counter. kind accepts the counter
// names and their short aliases (emails, sms, ai_analyses). A zero amount
// counts one.
func (s *Service) IncrementUsage(ctx context.Context, orgID uuid.UUID, kind string, amount int64) (*usage.Period, error) {
	k, err := usage.ParseCounterKind(kind)
	if err != nil {
		return nil, fail(err)
	}
	if amount < 0 {
		return nil, fail(errors.Join(usage.ErrInvalidAmount, fmt.Errorf("amount %d", amount)))
	}
	if amount == 0 {
		amount = 1
	}
	if _, err := s.organization(ctx, orgID); err != nil {
		return nil, err
	}

	p, err := s.usage.IncrementCounter(ctx, orgID, k, amount)
	if err != nil {
		s.storeFailure(ctx, "increment_usage", orgID, err)
		return nil, fail(err)
	}
	s.metrics.UsageIncrement(string(k), amount)
	return p, nil
}

// RefreshSnapshots recomputes projects, automations and customers counts.
func (s *Service) RefreshSnapshots(ctx context.Context, orgID uuid.UUID) (*usage.Period, error) {
	if _, err := s.organization(ctx, orgID); err != nil {
		return nil, err
	}
	p, err := s.usage.RefreshSnapshots(ctx, orgID)
	if err != nil {
		s.storeFailure(ctx, "refresh_snapshots", orgID, err)
		return nil, fail(err)
	}
	return p, nil
}

// UsageHistory returns up to limit past periods, newest first.
func (s *Service) UsageHistory(ctx context.Context, orgID uuid.UUID, limit int) ([]*usage.Period, error) {
	if _, err := s.organization(ctx, orgID); err != nil {
		return nil, err
	}
	periods, err := s.usage.History(ctx, orgID, limit)
	if err != nil {
		s.storeFailure(ctx, "usage_history", orgID, err)
		return nil, fail(err)
	}
	return periods, nil
}

// RedeemCode redeems an AppSumo code for the organization.
func (s *Service) RedeemCode(ctx context.Context, orgID uuid.UUID, code string) (*redemption.Result, error) {
	res, err := s.redemption.Redeem(ctx, orgID, code)
	if err != nil {
		f := AsFailure(err)
		s.metrics.Redemption(string(f.Code))
		if f.Code == CodeStoreUnavailable {
			s.storeFailure(ctx, "redeem_code", orgID, err)
		}
		return nil, f
	}
	s.metrics.Redemption("success")
	return res, nil
}

// CheckCode reports whether a code can be redeemed without redeeming it.
func (s *Service) CheckCode(ctx context.Context, code string) (redemption.CodeStatus, error) {
	status, err := s.redemption.CheckCode(ctx, code)
	if err != nil {
		s.storeFailure(ctx, "check_code", uuid.Nil, err)
		return redemption.CodeStatus{}, fail(err)
	}
	return status, nil
}

func (s *Service) organization(ctx context.Context, orgID uuid.UUID) (*organization.Organization, error) {
	if orgID == uuid.Nil {
		return nil, fail(errors.Join(ErrInvalidRequest, errors.New("organization id is required")))
	}
	org, err := s.orgs.Get(ctx, orgID)
	if err != nil {
		if !errors.Is(err, organization.ErrNotFound) {
			s.storeFailure(ctx, "get_organization", orgID, err)
		}
		return nil, fail(err)
	}
	return org, nil
}

func (s *Service) storeFailure(ctx context.Context, op string, orgID uuid.UUID, err error) {
	if AsFailure(err).Code != CodeStoreUnavailable {
		return
	}
	s.metrics.StoreFailure(op)
	attrs := []slog.Attr{slog.String("operation", op), logger.Error(err)}
	if orgID != uuid.Nil {
		attrs = append(attrs, logger.OrganizationID(orgID))
	}
	s.log.LogAttrs(ctx, slog.LevelError, "billing store failure", attrs...)
}
