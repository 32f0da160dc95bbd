package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config controls metric naming.
type Config struct {
	Namespace string `env:"METRICS_NAMESPACE" envDefault:"billing"`
}

// Metrics holds the billing collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry prometheus.Gatherer

	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	quotaDecisions  *prometheus.CounterVec
	redemptions     *prometheus.CounterVec
	usageIncrements *prometheus.CounterVec
	storeFailures   *prometheus.CounterVec
	degradedReads   prometheus.Counter
}

// New registers the billing collectors on a fresh registry that also carries
// the Go runtime and process collectors.
func New(cfg Config) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return NewWithRegistry(cfg.Namespace, reg)
}

// NewWithRegistry registers the billing collectors on reg.
func NewWithRegistry(namespace string, reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		quotaDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quota_decisions_total",
			Help:      "Quota checks by resource and outcome.",
		}, []string{"resource", "status"}),
		redemptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "redemptions_total",
			Help:      "AppSumo code redemption attempts by result.",
		}, []string{"result"}),
		usageIncrements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "usage_increment_amount_total",
			Help:      "Sum of amounts added to usage counters.",
		}, []string{"counter"}),
		storeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_failures_total",
			Help:      "Backing store failures by operation.",
		}, []string{"operation"}),
		degradedReads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "usage_degraded_reads_total",
			Help:      "Usage reads answered with zeroed usage because the store failed.",
		}),
	}

	reg.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.quotaDecisions,
		m.redemptions,
		m.usageIncrements,
		m.storeFailures,
		m.degradedReads,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) QuotaDecision(resource, status string) {
	if m == nil {
		return
	}
	m.quotaDecisions.WithLabelValues(resource, status).Inc()
}

func (m *Metrics) Redemption(result string) {
	if m == nil {
		return
	}
	m.redemptions.WithLabelValues(result).Inc()
}

func (m *Metrics) UsageIncrement(counter string, amount int64) {
	if m == nil {
		return
	}
	m.usageIncrements.WithLabelValues(counter).Add(float64(amount))
}

func (m *Metrics) StoreFailure(operation string) {
	if m == nil {
		return
	}
	m.storeFailures.WithLabelValues(operation).Inc()
}

func (m *Metrics) DegradedRead() {
	if m == nil {
		return
	}
	m.degradedReads.Inc()
}

// Middleware records request count and latency labelled by the chi route
// pattern. Unrouted requests are labelled "unmatched".
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(sw.status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
