package jwt_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/billingkit/pkg/jwt"
)

func TestMiddleware(t *testing.T) {
	t.Parallel()

	svc, err := jwt.New("test-secret")
	require.NoError(t, err)

	orgID := uuid.New()
	token, err := svc.Issue(orgID, time.Hour)
	require.NoError(t, err)

	handler := jwt.Middleware(svc,
		jwt.WithSkipper(func(r *http.Request) bool {
			return strings.HasPrefix(r.URL.Path, "/health")
		}),
	)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims, ok := jwt.GetClaims(r.Context()); ok {
			_, _ = w.Write([]byte(claims.OrganizationID.String()))
			return
		}
		_, _ = w.Write([]byte("anonymous"))
	}))

	tests := []struct {
		name       string
		path       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"valid token", "/orgs", "Bearer " + token, http.StatusOK, orgID.String()},
		{"lowercase scheme", "/orgs", "bearer " + token, http.StatusOK, orgID.String()},
		{"missing header", "/orgs", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "/orgs", "Token " + token, http.StatusUnauthorized, ""},
		{"tampered token", "/orgs", "Bearer " + token + "x", http.StatusUnauthorized, ""},
		{"skipped path", "/health/live", "", http.StatusOK, "anonymous"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestMiddleware_ErrorHandler(t *testing.T) {
	t.Parallel()

	svc, err := jwt.New("test-secret")
	require.NoError(t, err)

	var got error
	handler := jwt.Middleware(svc, jwt.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
		got = err
		w.WriteHeader(http.StatusTeapot)
	}))(http.NotFoundHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.ErrorIs(t, got, jwt.ErrMissingToken)
}

func TestMiddleware_NilServicePanics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { jwt.Middleware(nil) })
}
