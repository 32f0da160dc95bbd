package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims are the claims carried by a billing API token.
type Claims struct {
	OrganizationID uuid.UUID `json:"organization_id"`
	jwt.RegisteredClaims
}

// Service issues and verifies HS256 tokens scoped to one organization.
type Service struct {
	signingKey []byte
	issuer     string
	now        func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithIssuer sets the iss claim on issued tokens and requires it on parsed ones.
func WithIssuer(issuer string) Option {
	return func(s *Service) {
		s.issuer = issuer
	}
}

// WithClock overrides the time source used for iat/exp.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a service signing with key.
func New(key string, opts ...Option) (*Service, error) {
	if key == "" {
		return nil, ErrMissingSigningKey
	}
	s := &Service{
		signingKey: []byte(key),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue returns a signed token for orgID valid for ttl. A zero ttl issues a
// token without expiry.
func (s *Service) Issue(orgID uuid.UUID, ttl time.Duration) (string, error) {
	if orgID == uuid.Nil {
		return "", ErrMissingOrganization
	}

	now := s.now()
	claims := Claims{
		OrganizationID: orgID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  orgID.String(),
			Issuer:   s.issuer,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
}

// Parse verifies token and returns its claims.
func (s *Service) Parse(token string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.signingKey, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.Join(ErrExpiredToken, err)
		}
		return nil, errors.Join(ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.OrganizationID == uuid.Nil {
		return nil, ErrMissingOrganization
	}
	return claims, nil
}

// Authorize reports whether claims grant access to orgID.
func (c *Claims) Authorize(orgID uuid.UUID) error {
	if c == nil || c.OrganizationID == uuid.Nil {
		return ErrMissingOrganization
	}
	if c.OrganizationID != orgID {
		return ErrOrganizationMismatch
	}
	return nil
}
