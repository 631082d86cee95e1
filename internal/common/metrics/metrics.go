package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "social_hub"

var (
	// Registry holds the application collectors served on /metrics.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "inflight_requests",
		Help:      "Current number of in-flight HTTP requests.",
	})

	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests handled.",
	}, []string{"method", "path", "status"})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Duration of HTTP requests.",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
	}, []string{"method", "path"})

	adminValidations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "admin_access",
		Name:      "validations_total",
		Help:      "Admin access validation outcomes.",
	}, []string{"outcome"})

	adminValidationAttempts = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "admin_access",
		Name:      "attempts",
		Help:      "RPC attempts spent per admin access validation.",
		Buckets:   []float64{1, 2, 3, 4, 5},
	})

	sessionEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "sessions",
		Name:      "events_total",
		Help:      "Device session mutations.",
	}, []string{"event"})

	duplicatePosts = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "posts",
		Name:      "duplicates_rejected_total",
		Help:      "Posts rejected as near-duplicates.",
	})

	uploads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "media",
		Name:      "uploads_total",
		Help:      "Presigned uploads by purpose and stage.",
	}, []string{"purpose", "stage"})

	workerMessages = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "workers",
		Name:      "messages_total",
		Help:      "Messages processed by background workers.",
	}, []string{"worker", "result"})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		httpInFlight,
		httpRequests,
		httpDuration,
		adminValidations,
		adminValidationAttempts,
		sessionEvents,
		duplicatePosts,
		uploads,
		workerMessages,
	)
}

// Handler exposes the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func IncInFlight() { httpInFlight.Inc() }
func DecInFlight() { httpInFlight.Dec() }

func RecordHTTPRequest(method, path, status string, d time.Duration) {
	httpRequests.WithLabelValues(method, path, status).Inc()
	httpDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

func RecordAdminValidation(outcome string, attempts int) {
	adminValidations.WithLabelValues(outcome).Inc()
	adminValidationAttempts.Observe(float64(attempts))
}

func RecordSessionEvent(event string) {
	sessionEvents.WithLabelValues(event).Inc()
}

func RecordDuplicatePost() {
	duplicatePosts.Inc()
}

func RecordUpload(purpose, stage string) {
	uploads.WithLabelValues(purpose, stage).Inc()
}

func RecordWorkerMessage(worker, result string) {
	workerMessages.WithLabelValues(worker, result).Inc()
}
