package billing

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/dmitrymomot/billingkit/pkg/environment"
	"github.com/dmitrymomot/billingkit/pkg/httpserver"
	"github.com/dmitrymomot/billingkit/pkg/jwt"
	"github.com/dmitrymomot/billingkit/pkg/limits"
	"github.com/dmitrymomot/billingkit/pkg/logger"
	"github.com/dmitrymomot/billingkit/pkg/metrics"
	"github.com/dmitrymomot/billingkit/pkg/quota"
	"github.com/dmitrymomot/billingkit/pkg/ratelimiter"
	"github.com/dmitrymomot/billingkit/pkg/requestid"
)

// HandlerOption configures NewHandler.
type HandlerOption func(*handlerOptions)

type handlerOptions struct {
	log         *slog.Logger
	env         environment.Environment
	metrics     *metrics.Metrics
	auth        *jwt.Service
	corsOrigins []string
	checks      []httpserver.Check
	timeout     time.Duration
	redeemLimit ratelimiter.Limiter
}

func WithHandlerLogger(l *slog.Logger) HandlerOption {
	return func(o *handlerOptions) {
		if l != nil {
			o.log = l
		}
	}
}

// WithEnvironment controls whether error details reach clients.
func WithEnvironment(env environment.Environment) HandlerOption {
	return func(o *handlerOptions) { o.env = env }
}

// WithHandlerMetrics records request metrics and serves GET /metrics.
func WithHandlerMetrics(m *metrics.Metrics) HandlerOption {
	return func(o *handlerOptions) { o.metrics = m }
}

// WithAuth requires an organization-scoped bearer token on /orgs routes.
func WithAuth(svc *jwt.Service) HandlerOption {
	return func(o *handlerOptions) { o.auth = svc }
}

func WithCORS(origins ...string) HandlerOption {
	return func(o *handlerOptions) { o.corsOrigins = origins }
}

// WithReadinessChecks adds dependencies checked by GET /health/ready.
func WithReadinessChecks(checks ...httpserver.Check) HandlerOption {
	return func(o *handlerOptions) { o.checks = append(o.checks, checks...) }
}

// WithRedeemLimiter caps redemption attempts per organization.
func WithRedeemLimiter(l ratelimiter.Limiter) HandlerOption {
	return func(o *handlerOptions) { o.redeemLimit = l }
}

// WithRequestTimeout bounds each request's context.
func WithRequestTimeout(d time.Duration) HandlerOption {
	return func(o *handlerOptions) { o.timeout = d }
}

type handler struct {
	svc *Service
}

// NewHandler returns the JSON HTTP API for svc.
func NewHandler(svc *Service, opts ...HandlerOption) http.Handler {
	if svc == nil {
		panic("billing: service cannot be nil")
	}
	o := handlerOptions{
		log:     logger.Discard(),
		env:     environment.Production,
		timeout: 15 * time.Second,
	}
	for _, opt := range opts {
		opt(&o)
	}

	h := &handler{svc: svc}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestid.Middleware)
	r.Use(o.metrics.Middleware)
	r.Use(accessLog(o.log))
	r.Use(middleware.Recoverer)
	r.Use(environment.Middleware(o.env))
	if len(o.corsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   o.corsOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", requestid.Header},
			ExposedHeaders:   []string{requestid.Header},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeStatusError(w, http.StatusNotFound, CodeNotFound, "Route not found.")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeStatusError(w, http.StatusMethodNotAllowed, CodeInvalidRequest, "Method not allowed.")
	})

	r.Get("/health/live", httpserver.LivenessHandler())
	r.Get("/health/ready", httpserver.ReadinessHandler(o.log, 2*time.Second, o.checks...))
	if o.metrics != nil {
		r.Method(http.MethodGet, "/metrics", o.metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(o.timeout))

		r.Get("/codes/{code}", h.checkCode)

		r.Route("/orgs/{orgID}", func(r chi.Router) {
			r.Use(h.organizationID)
			if o.auth != nil {
				r.Use(jwt.Middleware(o.auth, jwt.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
					writeStatusError(w, http.StatusUnauthorized, CodeUnauthorized, "A valid bearer token is required.")
				})))
				r.Use(authorizeOrganization)
			}

			r.Get("/limits", h.limits)
			r.Get("/usage", h.currentUsage)
			r.Get("/usage/history", h.usageHistory)
			r.Post("/usage/refresh", h.refreshSnapshots)
			r.Post("/usage/{kind}", h.incrementUsage)
			r.Post("/quota/check", h.checkQuota)
			if o.redeemLimit != nil {
				r.With(redeemLimiter(o.redeemLimit, o.log)).Post("/redeem", h.redeem)
			} else {
				r.Post("/redeem", h.redeem)
			}
		})
	})

	return r
}

type orgIDKey struct{}

func (h *handler) organizationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "orgID"))
		if err != nil || id == uuid.Nil {
			writeStatusError(w, http.StatusBadRequest, CodeInvalidRequest, "Organization id must be a UUID.")
			return
		}
		next.ServeHTTP(w, r.WithContext(contextWithOrgID(r.Context(), id)))
	})
}

func authorizeOrganization(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, _ := jwt.GetClaims(r.Context())
		if err := claims.Authorize(orgIDFrom(r.Context())); err != nil {
			writeStatusError(w, http.StatusForbidden, CodeForbidden, "The token does not grant access to this organization.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func redeemLimiter(l ratelimiter.Limiter, log *slog.Logger) func(http.Handler) http.Handler {
	return ratelimiter.Middleware(l,
		func(r *http.Request) string { return "redeem:" + orgIDFrom(r.Context()).String() },
		ratelimiter.WithLimitedHandler(func(w http.ResponseWriter, r *http.Request, _ *ratelimiter.Result) {
			log.LogAttrs(r.Context(), slog.LevelWarn, "redemption attempts limited",
				logger.OrganizationID(orgIDFrom(r.Context())),
			)
			writeStatusError(w, http.StatusTooManyRequests, CodeRateLimited, "Too many redemption attempts. Try again later.")
		}),
		ratelimiter.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			log.LogAttrs(r.Context(), slog.LevelError, "redemption limiter failed", logger.Error(err))
			writeStatusError(w, http.StatusServiceUnavailable, CodeStoreUnavailable, "The service is temporarily unavailable.")
		}),
	)
}

func (h *handler) limits(w http.ResponseWriter, r *http.Request) {
	pl, err := h.svc.ResolveLimits(r.Context(), orgIDFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, pl)
}

func (h *handler) currentUsage(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.CurrentUsageSafe(r.Context(), orgIDFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, summary)
}

func (h *handler) usageHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeStatusError(w, http.StatusBadRequest, CodeInvalidRequest, "limit must be a positive integer.")
			return
		}
		limit = n
	}
	periods, err := h.svc.UsageHistory(r.Context(), orgIDFrom(r.Context()), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, periods)
}

func (h *handler) refreshSnapshots(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.RefreshSnapshots(r.Context(), orgIDFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, p)
}

type incrementRequest struct {
	Amount int64 `json:"amount"`
}

func (h *handler) incrementUsage(w http.ResponseWriter, r *http.Request) {
	var req incrementRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.svc.IncrementUsage(r.Context(), orgIDFrom(r.Context()), chi.URLParam(r, "kind"), req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, p)
}

type quotaCheckRequest struct {
	Resource  limits.Resource `json:"resource"`
	Increment int64           `json:"increment"`
}

type decisionView struct {
	quota.Decision
	Status string `json:"status"`
}

func (h *handler) checkQuota(w http.ResponseWriter, r *http.Request) {
	var req quotaCheckRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	d, err := h.svc.CheckQuotaFor(r.Context(), orgIDFrom(r.Context()), req.Resource, req.Increment)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, decisionView{Decision: d, Status: string(d.Status())})
}

type redeemRequest struct {
	Code string `json:"code"`
}

func (h *handler) redeem(w http.ResponseWriter, r *http.Request) {
	var req redeemRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.svc.RedeemCode(r.Context(), orgIDFrom(r.Context()), req.Code)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, res)
}

func (h *handler) checkCode(w http.ResponseWriter, r *http.Request) {
	status, err := h.svc.CheckCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, status)
}

func accessLog(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			level := slog.LevelInfo
			if ww.Status() >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			log.LogAttrs(r.Context(), level, "http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Int("bytes", ww.BytesWritten()),
				logger.Duration(time.Since(start)),
				logger.RequestID(requestid.FromContext(r.Context())),
			)
		})
	}
}

func contextWithOrgID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, orgIDKey{}, id)
}

func orgIDFrom(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(orgIDKey{}).(uuid.UUID)
	return id
}
