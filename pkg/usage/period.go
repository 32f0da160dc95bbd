package usage

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/billingkit/pkg/limits"
	"github.com/dmitrymomot/billingkit/pkg/quota"
)

// CounterKind names a cumulative per-period counter.
type CounterKind string

const (
	CounterEmailsSent     CounterKind = "emails_sent"
	CounterSMSSent        CounterKind = "sms_sent"
	CounterAIAnalysesUsed CounterKind = "ai_analyses_used"
)

// CounterKinds lists every counter kind in storage order.
var CounterKinds = []CounterKind{CounterEmailsSent, CounterSMSSent, CounterAIAnalysesUsed}

var counterAliases = map[string]CounterKind{
	"emails":      CounterEmailsSent,
	"sms":         CounterSMSSent,
	"ai_analyses": CounterAIAnalysesUsed,
}

// ParseCounterKind accepts a counter kind or its short alias
// ("emails", "sms", "ai_analyses").
func ParseCounterKind(s string) (CounterKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if kind := CounterKind(s); kind.Valid() {
		return kind, nil
	}
	if kind, ok := counterAliases[s]; ok {
		return kind, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCounter, s)
}

func (k CounterKind) Valid() bool {
	switch k {
	case CounterEmailsSent, CounterSMSSent, CounterAIAnalysesUsed:
		return true
	}
	return false
}

// Resource returns the monthly quota the counter is checked against.
func (k CounterKind) Resource() limits.Resource {
	switch k {
	case CounterEmailsSent:
		return limits.ResourceEmailsMonthly
	case CounterSMSSent:
		return limits.ResourceSMSMonthly
	case CounterAIAnalysesUsed:
		return limits.ResourceAIAnalyses
	}
	return ""
}

// SnapshotResources are the resources whose live totals are copied into
// each period by RefreshSnapshots.
var SnapshotResources = []limits.Resource{
	limits.ResourceProjects,
	limits.ResourceAutomations,
	limits.ResourceCustomers,
}

// Snapshot holds recomputed live totals keyed by snapshot resource.
// Resources absent from the map keep their stored value.
type Snapshot map[limits.Resource]int64

// Period is one calendar-month accounting window of an organization.
type Period struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	PeriodStart    time.Time `json:"period_start"`
	PeriodEnd      time.Time `json:"period_end"`

	EmailsSent     int64 `json:"emails_sent"`
	SMSSent        int64 `json:"sms_sent"`
	AIAnalysesUsed int64 `json:"ai_analyses_used"`

	ProjectsCount    int64 `json:"projects_count"`
	AutomationsCount int64 `json:"automations_count"`
	CustomersCount   int64 `json:"customers_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewPeriod returns a zeroed period for the month containing now.
func NewPeriod(orgID uuid.UUID, now time.Time) *Period {
	start, end := MonthBounds(now)
	now = now.UTC()
	return &Period{
		ID:             uuid.New(),
		OrganizationID: orgID,
		PeriodStart:    start,
		PeriodEnd:      end,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// MonthBounds returns the first and last day (00:00 UTC) of the UTC
// calendar month containing t.
func MonthBounds(t time.Time) (start, end time.Time) {
	t = t.UTC()
	start = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	end = start.AddDate(0, 1, -1)
	return start, end
}

// Counter returns the value of a cumulative counter.
func (p *Period) Counter(kind CounterKind) int64 {
	switch kind {
	case CounterEmailsSent:
		return p.EmailsSent
	case CounterSMSSent:
		return p.SMSSent
	case CounterAIAnalysesUsed:
		return p.AIAnalysesUsed
	}
	return 0
}

func (p *Period) addCounter(kind CounterKind, amount int64) {
	switch kind {
	case CounterEmailsSent:
		p.EmailsSent += amount
	case CounterSMSSent:
		p.SMSSent += amount
	case CounterAIAnalysesUsed:
		p.AIAnalysesUsed += amount
	}
}

func (p *Period) applySnapshot(snap Snapshot) {
	for res, n := range snap {
		switch res {
		case limits.ResourceProjects:
			p.ProjectsCount = n
		case limits.ResourceAutomations:
			p.AutomationsCount = n
		case limits.ResourceCustomers:
			p.CustomersCount = n
		}
	}
}

// Usage maps the period onto quota usage keyed by resource.
func (p *Period) Usage() quota.Usage {
	return quota.Usage{
		limits.ResourceProjects:      p.ProjectsCount,
		limits.ResourceAutomations:   p.AutomationsCount,
		limits.ResourceCustomers:     p.CustomersCount,
		limits.ResourceEmailsMonthly: p.EmailsSent,
		limits.ResourceSMSMonthly:    p.SMSSent,
		limits.ResourceAIAnalyses:    p.AIAnalysesUsed,
	}
}

// Clone returns a copy of p. Nil-safe.
func (p *Period) Clone() *Period {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
