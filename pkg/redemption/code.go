package redemption

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/billingkit/pkg/limits"
)

// Code is a pre-provisioned AppSumo lifetime-deal code.
// It moves from unredeemed to redeemed exactly once.
type Code struct {
	Code            string             `json:"code"`
	Tier            limits.AppsumoTier `json:"tier"`
	IsRedeemed      bool               `json:"is_redeemed"`
	RedeemedByOrgID *uuid.UUID         `json:"redeemed_by_org_id,omitempty"`
	RedeemedAt      *time.Time         `json:"redeemed_at,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
}

// NewCode returns an unredeemed code with the normalized value.
func NewCode(code string, tier limits.AppsumoTier) *Code {
	return &Code{
		Code:      NormalizeCode(code),
		Tier:      tier,
		CreatedAt: time.Now().UTC(),
	}
}

// NormalizeCode trims surrounding whitespace and upper-cases the code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Redeem marks the code as redeemed by orgID. Redeemed is terminal:
// a second call returns ErrAlreadyRedeemed and changes nothing.
func (c *Code) Redeem(orgID uuid.UUID, at time.Time) error {
	if c.IsRedeemed {
		return ErrAlreadyRedeemed
	}
	at = at.UTC()
	c.IsRedeemed = true
	c.RedeemedByOrgID = &orgID
	c.RedeemedAt = &at
	return nil
}

// Validate checks a code before it is provisioned.
func (c *Code) Validate() error {
	if c.Code == "" {
		return errors.Join(ErrInvalidBatch, errors.New("empty code"))
	}
	if !c.Tier.Valid() {
		return errors.Join(ErrInvalidBatch, fmt.Errorf("code %s: tier %d out of range", c.Code, c.Tier))
	}
	if c.IsRedeemed {
		return errors.Join(ErrInvalidBatch, fmt.Errorf("code %s is already redeemed", c.Code))
	}
	return nil
}

// Clone returns a deep copy of c. Nil-safe.
func (c *Code) Clone() *Code {
	if c == nil {
		return nil
	}
	cp := *c
	if c.RedeemedByOrgID != nil {
		id := *c.RedeemedByOrgID
		cp.RedeemedByOrgID = &id
	}
	if c.RedeemedAt != nil {
		at := *c.RedeemedAt
		cp.RedeemedAt = &at
	}
	return &cp
}

// CodeStatus is the pre-flight view of a code. It exposes validity and tier
// only: unknown and redeemed codes look the same.
type CodeStatus struct {
	Valid bool               `json:"valid"`
	Tier  limits.AppsumoTier `json:"tier,omitempty"`
}

// Result describes a successful redemption.
type Result struct {
	OrganizationID uuid.UUID          `json:"organization_id"`
	Code           string             `json:"code"`
	CodeTier       limits.AppsumoTier `json:"code_tier"`
	PreviousTier   limits.AppsumoTier `json:"previous_tier"`
	Tier           limits.AppsumoTier `json:"tier"`
	RedeemedAt     time.Time          `json:"redeemed_at"`
	Message        string             `json:"message"`
}
