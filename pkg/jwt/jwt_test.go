package jwt_test

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/billingkit/pkg/jwt"
)

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := jwt.New("")
	assert.ErrorIs(t, err, jwt.ErrMissingSigningKey)

	svc, err := jwt.New("secret")
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestService_IssueParse(t *testing.T) {
	t.Parallel()

	orgID := uuid.New()
	svc, err := jwt.New("secret", jwt.WithIssuer("billing"))
	require.NoError(t, err)

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		token, err := svc.Issue(orgID, time.Hour)
		require.NoError(t, err)

		claims, err := svc.Parse(token)
		require.NoError(t, err)
		assert.Equal(t, orgID, claims.OrganizationID)
		assert.Equal(t, "billing", claims.Issuer)
		assert.NoError(t, claims.Authorize(orgID))
		assert.ErrorIs(t, claims.Authorize(uuid.New()), jwt.ErrOrganizationMismatch)
	})

	t.Run("nil organization", func(t *testing.T) {
		t.Parallel()

		_, err := svc.Issue(uuid.Nil, time.Hour)
		assert.ErrorIs(t, err, jwt.ErrMissingOrganization)
	})

	t.Run("expired", func(t *testing.T) {
		t.Parallel()

		past, err := jwt.New("secret", jwt.WithIssuer("billing"), jwt.WithClock(func() time.Time {
			return time.Now().Add(-2 * time.Hour)
		}))
		require.NoError(t, err)

		token, err := past.Issue(orgID, time.Hour)
		require.NoError(t, err)

		_, err = svc.Parse(token)
		assert.ErrorIs(t, err, jwt.ErrExpiredToken)
	})

	t.Run("wrong key", func(t *testing.T) {
		t.Parallel()

		other, err := jwt.New("other", jwt.WithIssuer("billing"))
		require.NoError(t, err)
		token, err := other.Issue(orgID, time.Hour)
		require.NoError(t, err)

		_, err = svc.Parse(token)
		assert.ErrorIs(t, err, jwt.ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		t.Parallel()

		other, err := jwt.New("secret", jwt.WithIssuer("someone-else"))
		require.NoError(t, err)
		token, err := other.Issue(orgID, time.Hour)
		require.NoError(t, err)

		_, err = svc.Parse(token)
		assert.ErrorIs(t, err, jwt.ErrInvalidToken)
	})

	t.Run("unexpected algorithm", func(t *testing.T) {
		t.Parallel()

		token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS512, jwt.Claims{
			OrganizationID:   orgID,
			RegisteredClaims: gojwt.RegisteredClaims{Issuer: "billing"},
		}).SignedString([]byte("secret"))
		require.NoError(t, err)

		_, err = svc.Parse(token)
		assert.ErrorIs(t, err, jwt.ErrInvalidToken)
	})

	t.Run("missing organization claim", func(t *testing.T) {
		t.Parallel()

		token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.RegisteredClaims{
			Issuer: "billing",
		}).SignedString([]byte("secret"))
		require.NoError(t, err)

		_, err = svc.Parse(token)
		assert.ErrorIs(t, err, jwt.ErrMissingOrganization)
	})

	t.Run("garbage", func(t *testing.T) {
		t.Parallel()

		_, err := svc.Parse("not.a.token")
		assert.ErrorIs(t, err, jwt.ErrInvalidToken)
	})
}

func TestClaims_AuthorizeNil(t *testing.T) {
	t.Parallel()

	var c *jwt.Claims
	assert.ErrorIs(t, c.Authorize(uuid.New()), jwt.ErrMissingOrganization)
}
