package quota

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/dmitrymomot/billingkit/pkg/limits"
	"github.com/dmitrymomot/billingkit/pkg/organization"
)

// WarningThreshold is the usage percentage from which an allowed decision
// carries a proximity warning.
const WarningThreshold = 80

// Usage is a point-in-time usage snapshot keyed by resource.
type Usage map[limits.Resource]int64

// Status summarises a Decision.
type Status string

const (
	StatusAllowed Status = "allowed"
	StatusWarning Status = "warning"
	StatusDenied  Status = "denied"
)

// Decision is the outcome of a quota check.
type Decision struct {
	Allowed   bool            `json:"allowed"`
	Warning   bool            `json:"warning"`
	Unlimited bool            `json:"unlimited"`
	Resource  limits.Resource `json:"resource"`
	Plan      limits.Plan     `json:"plan"`
	// Current is the projected usage for allowed decisions and the usage
	// before the increment for denied ones.
	Current int64  `json:"current"`
	Limit   int64  `json:"limit"`
	Percent int    `json:"percent"` // -1 when unlimited
	Message string `json:"message,omitempty"`
}

// Status returns the decision as a single tag.
func (d Decision) Status() Status {
	switch {
	case !d.Allowed:
		return StatusDenied
	case d.Warning:
		return StatusWarning
	default:
		return StatusAllowed
	}
}

// Enforcer decides whether a usage increment fits within an organization's limits.
type Enforcer struct {
	resolver *Resolver
}

// NewEnforcer returns an enforcer resolving limits through r. Panics if r is nil.
func NewEnforcer(r *Resolver) *Enforcer {
	if r == nil {
		panic("quota: resolver cannot be nil")
	}
	return &Enforcer{resolver: r}
}

// Check reports whether usage[res]+increment stays within the resolved limit.
//
// Check is a pure read. It does not reserve capacity, so two callers checking
// at the same instant may both be allowed and overshoot the limit slightly.
// Quotas are soft limits; callers perform the write and record usage only
// after an allowed decision.
func (e *Enforcer) Check(org *organization.Organization, usage Usage, res limits.Resource, increment int64) (Decision, error) {
	if increment < 0 {
		return Decision{}, errors.Join(ErrInvalidIncrement, fmt.Errorf("increment %d", increment))
	}

	plan, l := e.resolver.ResolvePlan(org)
	limit, ok := l.Quota(res)
	if !ok {
		return Decision{}, errors.Join(ErrUnknownResource, fmt.Errorf("resource %q", res))
	}

	d := Decision{Resource: res, Plan: plan, Limit: limit}

	// -1 indicates unlimited usage
	if limit == limits.Unlimited {
		d.Allowed = true
		d.Unlimited = true
		d.Current = saturatingAdd(usage[res], increment)
		d.Percent = -1
		return d, nil
	}

	current := usage[res]
	// current+increment may overflow; limit-current may not.
	if increment > limit-current {
		d.Current = current
		d.Percent = percentOf(current, limit)
		d.Message = deniedMessage(plan, res, limit)
		return d, nil
	}

	projected := current + increment
	d.Allowed = true
	d.Current = projected
	d.Percent = percentOf(projected, limit)
	if d.Percent >= WarningThreshold && d.Percent < 100 {
		d.Warning = true
		d.Message = warningMessage(res, d.Percent, projected, limit)
	}
	return d, nil
}

// Exceeded lists the resources whose usage is already above the resolved
// limit, in catalog order. Useful after a limit has been lowered.
func (e *Enforcer) Exceeded(org *organization.Organization, usage Usage) []limits.Resource {
	l := e.resolver.Resolve(org)
	var over []limits.Resource
	for _, res := range limits.Resources {
		limit, ok := l.Quota(res)
		if !ok || limit == limits.Unlimited {
			continue
		}
		if usage[res] > limit {
			over = append(over, res)
		}
	}
	return over
}

// Percent returns used as a rounded percentage of limit: -1 for unlimited,
// and for a zero limit 100 when anything is used, else 0.
func Percent(used, limit int64) int {
	if limit == limits.Unlimited {
		return -1
	}
	return percentOf(used, limit)
}

func saturatingAdd(a, b int64) int64 {
	if b > math.MaxInt64-a {
		return math.MaxInt64
	}
	return a + b
}

func percentOf(used, limit int64) int {
	if limit == 0 {
		if used > 0 {
			return 100
		}
		return 0
	}
	return int(math.Round(float64(used) / float64(limit) * 100))
}

// printer groups thousands in user-facing numbers.
var printer = message.NewPrinter(language.English)

func deniedMessage(plan limits.Plan, res limits.Resource, limit int64) string {
	switch plan.Type {
	case limits.PlanAppsumoLifetime:
		return printer.Sprintf(
			"You've reached the AppSumo Tier %d limit of %d %s. Redeem another AppSumo code to stack your plan and raise this limit.",
			plan.AppsumoTier, limit, res.Label())
	case limits.PlanSubscription:
		return printer.Sprintf(
			"You've reached the %s plan limit of %d %s. Upgrade your subscription to a higher tier to raise this limit.",
			plan.SubscriptionTier, limit, res.Label())
	default:
		return printer.Sprintf(
			"You've reached the free plan limit of %d %s. Upgrade from the free plan to a paid plan to continue.",
			limit, res.Label())
	}
}

func warningMessage(res limits.Resource, percent int, used, limit int64) string {
	return printer.Sprintf("You've used %d%% of your %s limit (%d of %d).", percent, res.Label(), used, limit)
}
