package limits

import (
	"maps"
	"slices"
)

// Resource represents a countable organization resource type.
type Resource string

// Predefined resource types.
const (
	ResourceProjects      Resource = "projects"
	ResourceAutomations   Resource = "automations"
	ResourceCustomers     Resource = "customers"
	ResourceEmailsMonthly Resource = "emails_monthly"
	ResourceSMSMonthly    Resource = "sms_monthly"
	ResourceAIAnalyses    Resource = "ai_analyses"
	ResourceTeamMembers   Resource = "team_members"
)

// Resources lists every resource a complete catalog entry must define, in display order.
var Resources = []Resource{
	ResourceProjects,
	ResourceAutomations,
	ResourceCustomers,
	ResourceEmailsMonthly,
	ResourceSMSMonthly,
	ResourceAIAnalyses,
	ResourceTeamMembers,
}

// Valid reports whether r is one of the known resources.
func (r Resource) Valid() bool {
	return slices.Contains(Resources, r)
}

// Label returns a human readable name used in quota messages.
func (r Resource) Label() string {
	switch r {
	case ResourceEmailsMonthly:
		return "emails this month"
	case ResourceSMSMonthly:
		return "SMS messages this month"
	case ResourceAIAnalyses:
		return "AI analyses"
	case ResourceTeamMembers:
		return "team members"
	default:
		return string(r)
	}
}

// Limit constants
const (
	// Unlimited represents a resource with no limit (-1)
	Unlimited int64 = -1
)

// Feature is a string type representing a plan-specific feature flag.
type Feature string

// Predefined feature flags for plans.
const (
	FeatureAPIAccess       Feature = "api_access"
	FeatureWebhooks        Feature = "webhooks"
	FeaturePrioritySupport Feature = "priority_support"
	FeatureCustomBranding  Feature = "custom_branding"
	FeatureWhiteLabel      Feature = "white_label"
)

// Limits is the effective quota and feature set of a plan.
// It is a value object: Clone and Merge never share maps with their inputs.
type Limits struct {
	Quotas   map[Resource]int64 `json:"quotas,omitempty" yaml:"quotas,omitempty"`
	Features map[Feature]bool   `json:"features,omitempty" yaml:"features,omitempty"`
}

// Quota returns the limit for the resource and whether it is defined.
func (l Limits) Quota(res Resource) (int64, bool) {
	v, ok := l.Quotas[res]
	return v, ok
}

// IsUnlimited reports whether the resource is defined and set to Unlimited.
func (l Limits) IsUnlimited(res Resource) bool {
	v, ok := l.Quotas[res]
	return ok && v == Unlimited
}

// HasFeature reports whether the feature flag is enabled.
func (l Limits) HasFeature(f Feature) bool {
	return l.Features[f]
}

// Clone returns a deep copy of l.
func (l Limits) Clone() Limits {
	return Limits{
		Quotas:   maps.Clone(l.Quotas),
		Features: maps.Clone(l.Features),
	}
}

// Merge returns a copy of l with every key present in override replacing the
// base value. Keys absent from override keep their base value.
func (l Limits) Merge(override *Limits) Limits {
	merged := l.Clone()
	if override == nil {
		return merged
	}
	if merged.Quotas == nil && len(override.Quotas) > 0 {
		merged.Quotas = make(map[Resource]int64, len(override.Quotas))
	}
	maps.Copy(merged.Quotas, override.Quotas)
	if merged.Features == nil && len(override.Features) > 0 {
		merged.Features = make(map[Feature]bool, len(override.Features))
	}
	maps.Copy(merged.Features, override.Features)
	return merged
}

// IsEmpty reports whether l defines no quotas and no features.
func (l Limits) IsEmpty() bool {
	return len(l.Quotas) == 0 && len(l.Features) == 0
}

// UsageInfo contains the current usage and limit for a resource.
type UsageInfo struct {
	Current int64 `json:"current"`
	Limit   int64 `json:"limit"`
}
