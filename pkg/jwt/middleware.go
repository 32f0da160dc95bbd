package jwt

import (
	"net/http"
	"strings"
)

// ErrorHandler writes the response for a rejected request.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// MiddlewareOption configures Middleware.
type MiddlewareOption func(*middleware)

type middleware struct {
	service *Service
	skip    func(r *http.Request) bool
	onError ErrorHandler
}

// WithSkipper bypasses verification for requests where skip returns true.
func WithSkipper(skip func(r *http.Request) bool) MiddlewareOption {
	return func(m *middleware) {
		m.skip = skip
	}
}

// WithErrorHandler replaces the default plain-text 401 response.
func WithErrorHandler(h ErrorHandler) MiddlewareOption {
	return func(m *middleware) {
		if h != nil {
			m.onError = h
		}
	}
}

// Middleware verifies the bearer token and stores its claims in the request context.
// Panics if service is nil.
func Middleware(service *Service, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	if service == nil {
		panic("jwt: service cannot be nil")
	}
	m := &middleware{
		service: service,
		onError: func(w http.ResponseWriter, _ *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusUnauthorized)
		},
	}
	for _, opt := range opts {
		opt(m)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m.skip != nil && m.skip(r) {
				next.ServeHTTP(w, r)
				return
			}

			token, err := BearerToken(r)
			if err != nil {
				m.onError(w, r, err)
				return
			}
			claims, err := m.service.Parse(token)
			if err != nil {
				m.onError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(SetClaims(r.Context(), claims)))
		})
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, error) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(token), nil
}
