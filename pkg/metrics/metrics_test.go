package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/billingkit/pkg/metrics"
)

func TestMetrics_Recorders(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry("test", reg)

	m.QuotaDecision("projects", "denied")
	m.QuotaDecision("projects", "denied")
	m.Redemption("success")
	m.UsageIncrement("emails_sent", 5)
	m.UsageIncrement("emails_sent", 10)
	m.StoreFailure("current_usage")
	m.DegradedRead()

	expected := `
# HELP test_usage_increment_amount_total Sum of amounts added to usage counters.
# TYPE test_usage_increment_amount_total counter
test_usage_increment_amount_total{counter="emails_sent"} 15
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "test_usage_increment_amount_total"))

	count, err := testutil.GatherAndCount(reg, "test_quota_decisions_total", "test_redemptions_total", "test_usage_degraded_reads_total")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	t.Parallel()

	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.QuotaDecision("projects", "allowed")
		m.Redemption("success")
		m.UsageIncrement("sms_sent", 1)
		m.StoreFailure("x")
		m.DegradedRead()
	})

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	assert.NotNil(t, m.Middleware(next))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetrics_Middleware(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry("test", reg)

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/orgs/{orgID}/limits", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	r.Handle("/metrics", m.Handler())

	for _, id := range []string{"a", "b", "c"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orgs/"+id+"/limits", nil))
		require.Equal(t, http.StatusTeapot, rec.Code)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(),
		`test_http_requests_total{method="GET",route="/orgs/{orgID}/limits",status="418"} 3`)
}
