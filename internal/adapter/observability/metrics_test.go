package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func value(t *testing.T, m prometheus.Metric) float64 {
	t.Helper()
	var d dto.Metric
	require.NoError(t, m.Write(&d))
	switch {
	case d.Counter != nil:
		return d.Counter.GetValue()
	case d.Gauge != nil:
		return d.Gauge.GetValue()
	}
	t.Fatalf("unsupported metric %v", m.Desc())
	return 0
}

func TestHTTPMetricsMiddleware_Basic(t *testing.T) {
	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/x", nil)
	mw := HTTPMetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(204) }))
	mw.ServeHTTP(rec, r)
	require.Equal(t, 204, rec.Result().StatusCode)
	assert.GreaterOrEqual(t, value(t, HTTPRequestsTotal.WithLabelValues("/x", "GET", "No Content")), 1.0)
}

func TestHTTPMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(HTTPMetricsMiddleware)
	r.Get("/v1/sessions/{id}", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/sessions/abc", nil))

	assert.GreaterOrEqual(t, value(t, HTTPRequestsTotal.WithLabelValues("/v1/sessions/{id}", "GET", "OK")), 1.0)
}

func TestInitMetrics_Idempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		InitMetrics()
		InitMetrics()
	})
}

func TestSessionGauge(t *testing.T) {
	before := value(t, SessionsActive)
	SessionStarted()
	assert.Equal(t, before+1, value(t, SessionsActive))
	SessionEnded("completed")
	assert.Equal(t, before, value(t, SessionsActive))
	assert.GreaterOrEqual(t, value(t, SessionTransitionsTotal.WithLabelValues("completed")), 1.0)
}

func TestObserveHelpers(t *testing.T) {
	ObserveExtraction("", "empty")
	assert.GreaterOrEqual(t, value(t, DocumentsExtractedTotal.WithLabelValues("unknown", "empty")), 1.0)

	ObserveEmbedding("ok", 10*time.Millisecond)
	assert.GreaterOrEqual(t, value(t, EmbeddingRequestsTotal.WithLabelValues("ok")), 1.0)

	ObserveMatch(50)
	ObserveMatch(-1)
	ObserveAnswer("text", 75)
	ObserveAnswer("text", 101)
}
