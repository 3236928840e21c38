package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"route", "method"},
	)

	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "embedding_requests_total",
			Help: "Total number of embedding requests by outcome",
		},
		[]string{"outcome"},
	)
	EmbeddingRequestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "embedding_request_duration_seconds",
			Help:    "Embedding request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
	)

	DocumentsExtractedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "documents_extracted_total",
			Help: "Total number of documents run through text extraction",
		},
		[]string{"format", "outcome"},
	)

	// Score distributions
	MatchScoreHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "match_score",
			Help:    "Distribution of candidate/job match scores ([0,100])",
			Buckets: []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
	)
	AnswerScoreHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "screening_answer_score",
			Help:    "Distribution of screening answer scores ([0,100])",
			Buckets: []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
		[]string{"question_type"},
	)

	SessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "screening_sessions_active",
			Help: "Number of screening sessions currently active",
		},
	)
	SessionTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screening_session_transitions_total",
			Help: "Total number of screening session state transitions by target state",
		},
		[]string{"state"},
	)
)

var initOnce sync.Once

// InitMetrics registers every collector with the default registry. Repeated
// calls are no-ops.
func InitMetrics() {
	initOnce.Do(func() {
		prometheus.MustRegister(HTTPRequestsTotal)
		prometheus.MustRegister(HTTPRequestDuration)
		prometheus.MustRegister(EmbeddingRequestsTotal)
		prometheus.MustRegister(EmbeddingRequestDuration)
		prometheus.MustRegister(DocumentsExtractedTotal)
		prometheus.MustRegister(MatchScoreHistogram)
		prometheus.MustRegister(AnswerScoreHistogram)
		prometheus.MustRegister(SessionsActive)
		prometheus.MustRegister(SessionTransitionsTotal)
	})
}

// HTTPMetricsMiddleware records Prometheus metrics for each request.
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		dur := time.Since(start).Seconds()
		// Route pattern may be unavailable outside chi router; guard nil
		var route string
		if rc := chi.RouteContext(r.Context()); rc != nil {
			route = rc.RoutePattern()
		}
		if route == "" {
			route = r.URL.Path
		}
		HTTPRequestsTotal.WithLabelValues(route, r.Method, http.StatusText(ww.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(route, r.Method).Observe(dur)
	})
}

// ObserveExtraction counts one document extraction attempt.
func ObserveExtraction(format, outcome string) {
	if format == "" {
		format = "unknown"
	}
	DocumentsExtractedTotal.WithLabelValues(format, outcome).Inc()
}

// ObserveEmbedding records one embedding call.
func ObserveEmbedding(outcome string, d time.Duration) {
	EmbeddingRequestsTotal.WithLabelValues(outcome).Inc()
	EmbeddingRequestDuration.Observe(d.Seconds())
}

// ObserveMatch records a match score.
func ObserveMatch(score float64) {
	if score >= 0 && score <= 100 {
		MatchScoreHistogram.Observe(score)
	}
}

// ObserveAnswer records the score of an evaluated answer.
func ObserveAnswer(questionType string, score float64) {
	if score >= 0 && score <= 100 {
		AnswerScoreHistogram.WithLabelValues(questionType).Observe(score)
	}
}

// SessionStarted marks a session entering the active state.
func SessionStarted() {
	SessionsActive.Inc()
	SessionTransitionsTotal.WithLabelValues("active").Inc()
}

// SessionEnded marks an active session reaching a terminal state.
func SessionEnded(state string) {
	SessionsActive.Dec()
	SessionTransitionsTotal.WithLabelValues(state).Inc()
}
