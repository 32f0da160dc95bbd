package billing

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/billingkit/pkg/limits"
	"github.com/dmitrymomot/billingkit/pkg/quota"
	"github.com/dmitrymomot/billingkit/pkg/usage"
)

// PlanLimits is an organization's plan and effective limits.
type PlanLimits struct {
	OrganizationID uuid.UUID     `json:"organization_id"`
	Plan           limits.Plan   `json:"plan"`
	Limits         limits.Limits `json:"limits"`
}

// ResourceUsage is one resource line of a usage summary.
type ResourceUsage struct {
	Resource  limits.Resource `json:"resource"`
	Label     string          `json:"label"`
	Used      int64           `json:"used"`
	Limit     int64           `json:"limit"`
	Unlimited bool            `json:"unlimited"`
	Percent   int             `json:"percent"`
	Warning   bool            `json:"warning"`
	Exceeded  bool            `json:"exceeded"`
}

// UsageSummary is the current month's usage against the organization's limits.
type UsageSummary struct {
	OrganizationID uuid.UUID               `json:"organization_id"`
	Plan           limits.Plan             `json:"plan"`
	PeriodStart    time.Time               `json:"period_start"`
	PeriodEnd      time.Time               `json:"period_end"`
	Resources      []ResourceUsage         `json:"resources"`
	Features       map[limits.Feature]bool `json:"features"`

	// Degraded is set when usage could not be read and is reported as zero.
	Degraded bool `json:"degraded"`
}

func summarize(orgID uuid.UUID, plan limits.Plan, l limits.Limits, start, end time.Time, used quota.Usage) *UsageSummary {
	s := &UsageSummary{
		OrganizationID: orgID,
		Plan:           plan,
		PeriodStart:    start,
		PeriodEnd:      end,
		Resources:      make([]ResourceUsage, 0, len(limits.Resources)),
		Features:       l.Clone().Features,
	}
	for _, res := range limits.Resources {
		limit, ok := l.Quota(res)
		if !ok {
			continue
		}
		n := used[res]
		line := ResourceUsage{
			Resource:  res,
			Label:     res.Label(),
			Used:      n,
			Limit:     limit,
			Unlimited: limit == limits.Unlimited,
			Percent:   quota.Percent(n, limit),
		}
		if !line.Unlimited {
			line.Exceeded = n > limit
			line.Warning = !line.Exceeded && line.Percent >= quota.WarningThreshold && line.Percent < 100
		}
		s.Resources = append(s.Resources, line)
	}
	return s
}

func summarizePeriod(plan limits.Plan, l limits.Limits, p *usage.Period) *UsageSummary {
	return summarize(p.OrganizationID, plan, l, p.PeriodStart, p.PeriodEnd, p.Usage())
}
