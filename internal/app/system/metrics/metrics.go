// Package metrics exposes Prometheus collectors for HTTP traffic and job
// board activity.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "volunteerboard"

var (
	// Registry holds the application's collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "route"},
	)

	registrations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "registrations_total",
			Help:      "Registration attempts by outcome.",
		},
		[]string{"op", "result"},
	)

	moderations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "moderation_actions_total",
			Help:      "Approve, unapprove and reject actions by outcome.",
		},
		[]string{"action", "result"},
	)

	jobsByState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "current",
			Help:      "Jobs on the board by moderation state.",
		},
		[]string{"state"},
	)

	activeRegistrations = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "registrations_current",
			Help:      "Registrations held across all jobs.",
		},
	)

	usersByRole = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "users",
			Name:      "current",
			Help:      "Accounts by role.",
		},
		[]string{"role"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		registrations,
		moderations,
		jobsByState,
		activeRegistrations,
		usersByRole,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
}

// Handler serves the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler records request count, duration and in-flight gauge.
// The route label is chi's matched pattern so ids do not explode label
// cardinality.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		route := routePattern(r)
		method := strings.ToUpper(r.Method)
		httpRequests.WithLabelValues(method, route, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	})
}

// RecordRegistration counts a register or unregister attempt.
func RecordRegistration(op string, err error) {
	registrations.WithLabelValues(op, result(err)).Inc()
}

// RecordModeration counts an approve, unapprove or reject attempt.
func RecordModeration(action string, err error) {
	moderations.WithLabelValues(action, result(err)).Inc()
}

// SetJobCounts publishes the board totals gathered by the gauge worker.
func SetJobCounts(approved, pending, unapproved, registrations int64) {
	jobsByState.WithLabelValues("approved").Set(float64(approved))
	jobsByState.WithLabelValues("pending").Set(float64(pending))
	jobsByState.WithLabelValues("unapproved").Set(float64(unapproved))
	activeRegistrations.Set(float64(registrations))
}

// SetUserCount publishes the number of accounts holding role.
func SetUserCount(role string, n int64) {
	usersByRole.WithLabelValues(role).Set(float64(n))
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
