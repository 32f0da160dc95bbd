package limits

import (
	"errors"
	"fmt"
	"maps"
)

// Catalog is the immutable table of plan definitions. Build it once at
// startup and pass it to the consumers that need it; every accessor returns
// a deep copy, so callers can never alter the catalog through a result.
type Catalog struct {
	free         Limits
	subscription map[SubscriptionTier]Limits
	appsumo      map[AppsumoTier]Limits
}

// CatalogDefinition is the raw form of a catalog as written in configuration files.
type CatalogDefinition struct {
	Free         Limits                      `yaml:"free"`
	Subscription map[SubscriptionTier]Limits `yaml:"subscription"`
	Appsumo      map[AppsumoTier]Limits      `yaml:"appsumo"`
}

// NewCatalog validates def and returns a catalog holding a private copy of it.
// Every plan must define all Resources; quotas must be Unlimited or non-negative.
func NewCatalog(def CatalogDefinition) (*Catalog, error) {
	if err := validateLimits("free", def.Free); err != nil {
		return nil, err
	}

	c := &Catalog{
		free:         def.Free.Clone(),
		subscription: make(map[SubscriptionTier]Limits, len(SubscriptionTiers)),
		appsumo:      make(map[AppsumoTier]Limits, int(AppsumoTierMax)),
	}

	for _, tier := range SubscriptionTiers {
		l, ok := def.Subscription[tier]
		if !ok {
			return nil, errors.Join(ErrInvalidCatalog, fmt.Errorf("subscription tier %q is not defined", tier))
		}
		if err := validateLimits("subscription/"+string(tier), l); err != nil {
			return nil, err
		}
		c.subscription[tier] = l.Clone()
	}
	for tier := range def.Subscription {
		if !tier.Valid() {
			return nil, errors.Join(ErrInvalidCatalog, fmt.Errorf("unknown subscription tier %q", tier))
		}
	}

	for tier := AppsumoTierMin; tier <= AppsumoTierMax; tier++ {
		l, ok := def.Appsumo[tier]
		if !ok {
			return nil, errors.Join(ErrInvalidCatalog, fmt.Errorf("appsumo tier %d is not defined", tier))
		}
		if err := validateLimits(fmt.Sprintf("appsumo/%d", tier), l); err != nil {
			return nil, err
		}
		c.appsumo[tier] = l.Clone()
	}
	for tier := range def.Appsumo {
		if !tier.Valid() {
			return nil, errors.Join(ErrInvalidCatalog, fmt.Errorf("appsumo tier %d out of range", tier))
		}
	}

	return c, nil
}

// MustNewCatalog is like NewCatalog but panics on an invalid definition.
func MustNewCatalog(def CatalogDefinition) *Catalog {
	c, err := NewCatalog(def)
	if err != nil {
		panic(err)
	}
	return c
}

// Free returns the free plan limits.
func (c *Catalog) Free() Limits {
	return c.free.Clone()
}

// Subscription returns the limits of a subscription tier or ErrTierNotFound.
func (c *Catalog) Subscription(tier SubscriptionTier) (Limits, error) {
	l, ok := c.subscription[tier]
	if !ok {
		return Limits{}, errors.Join(ErrTierNotFound, fmt.Errorf("subscription tier %q", tier))
	}
	return l.Clone(), nil
}

// Appsumo returns the limits of an AppSumo tier or ErrTierNotFound.
func (c *Catalog) Appsumo(tier AppsumoTier) (Limits, error) {
	l, ok := c.appsumo[tier]
	if !ok {
		return Limits{}, errors.Join(ErrTierNotFound, fmt.Errorf("appsumo tier %d", tier))
	}
	return l.Clone(), nil
}

// Lookup returns the catalog entry for a plan. It does not apply any fallback;
// an invalid tier yields ErrTierNotFound.
func (c *Catalog) Lookup(p Plan) (Limits, error) {
	switch p.Type {
	case PlanSubscription:
		return c.Subscription(p.SubscriptionTier)
	case PlanAppsumoLifetime:
		return c.Appsumo(p.AppsumoTier)
	case PlanFree:
		return c.Free(), nil
	default:
		return Limits{}, errors.Join(ErrInvalidPlan, fmt.Errorf("unknown plan type %q", p.Type))
	}
}

// Definition returns a deep copy of the catalog in its raw form.
func (c *Catalog) Definition() CatalogDefinition {
	def := CatalogDefinition{
		Free:         c.free.Clone(),
		Subscription: make(map[SubscriptionTier]Limits, len(c.subscription)),
		Appsumo:      make(map[AppsumoTier]Limits, len(c.appsumo)),
	}
	for tier, l := range c.subscription {
		def.Subscription[tier] = l.Clone()
	}
	for tier, l := range c.appsumo {
		def.Appsumo[tier] = l.Clone()
	}
	return def
}

func validateLimits(name string, l Limits) error {
	for _, res := range Resources {
		v, ok := l.Quotas[res]
		if !ok {
			return errors.Join(ErrInvalidCatalog, fmt.Errorf("plan %s: resource %q is not defined", name, res))
		}
		if v < Unlimited {
			return errors.Join(ErrInvalidCatalog, fmt.Errorf("plan %s: resource %q has invalid limit %d", name, res, v))
		}
	}
	for res := range maps.Keys(l.Quotas) {
		if !res.Valid() {
			return errors.Join(ErrInvalidCatalog, fmt.Errorf("plan %s: unknown resource %q", name, res))
		}
	}
	return nil
}
