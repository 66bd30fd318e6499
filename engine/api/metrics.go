package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics exposed on /metrics.
var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "guidance",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests processed, partitioned by method, route and status code.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "guidance",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds, partitioned by method and route.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	assignmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "guidance",
			Subsystem: "experiments",
			Name:      "assignments_total",
			Help:      "Variant assignments made, partitioned by test and variant.",
		},
		[]string{"test_id", "variant"},
	)

	resultsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "guidance",
			Subsystem: "experiments",
			Name:      "results_total",
			Help:      "Test results recorded, partitioned by test.",
		},
		[]string{"test_id"},
	)

	feedbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "guidance",
			Subsystem: "feedback",
			Name:      "submissions_total",
			Help:      "Feedback submissions received, partitioned by type and rating.",
		},
		[]string{"type", "rating"},
	)

	wsClientsGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "guidance",
			Subsystem: "websocket",
			Name:      "clients",
			Help:      "Currently connected WebSocket clients.",
		},
	)
)

// metricsMiddleware records request counts and latencies per route. The mux
// route template is used as the label so path parameters do not explode the
// label cardinality.
func (s *server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapper := &responseWriterWrapper{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapper, r)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if template, err := current.GetPathTemplate(); err == nil {
				route = template
			}
		}

		httpRequestsTotal.WithLabelValues(
			r.Method, route, strconv.Itoa(wrapper.statusCode),
		).Inc()
		httpRequestDuration.WithLabelValues(r.Method, route).
			Observe(time.Since(start).Seconds())
	})
}
