// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Upstream metrics
	UpstreamFetchDuration *prometheus.HistogramVec
	UpstreamFetchErrors   *prometheus.CounterVec

	// Classification metrics
	EventsClassified *prometheus.CounterVec
	EnrichRuns       *prometheus.CounterVec
	EnrichDuration   prometheus.Histogram
	EnrichFailures   prometheus.Counter

	// API metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulEnrich prometheus.Gauge
	NotificationsSent    *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered on reg.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "insiderwatch"
	}
	f := promauto.With(reg)

	return &Metrics{
		UpstreamFetchDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "fetch_duration_seconds",
			Help:      "Upstream fetch latency in seconds, including retries",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		UpstreamFetchErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "fetch_errors_total",
			Help:      "Total number of failed upstream fetches by source",
		}, []string{"source"}),

		EventsClassified: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "classifier",
			Name:      "events_total",
			Help:      "Total number of classified events by type",
		}, []string{"type"}),
		EnrichRuns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "enrichment",
			Name:      "runs_total",
			Help:      "Total number of batch enrichment runs by trigger",
		}, []string{"trigger"}),
		EnrichDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "enrichment",
			Name:      "duration_seconds",
			Help:      "Batch enrichment duration in seconds",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
		EnrichFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "enrichment",
			Name:      "ticker_failures_total",
			Help:      "Total number of tickers that failed open to no events",
		}),

		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of API requests by route and status",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "API request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),

		DBQueryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Database query latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		LastSuccessfulEnrich: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_enrich_timestamp",
			Help:      "Unix timestamp of last completed enrichment run",
		}),
		NotificationsSent: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notifier",
			Name:      "messages_total",
			Help:      "Total number of notification attempts by outcome",
		}, []string{"status"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("", prometheus.DefaultRegisterer)

// RecordUpstreamFetch records one upstream fetch, including its retries.
func RecordUpstreamFetch(source string, seconds float64, err error) {
	DefaultMetrics.UpstreamFetchDuration.WithLabelValues(source).Observe(seconds)
	if err != nil {
		DefaultMetrics.UpstreamFetchErrors.WithLabelValues(source).Inc()
	}
}

// RecordClassification counts emitted events by type.
func RecordClassification(eventType string, n int) {
	DefaultMetrics.EventsClassified.WithLabelValues(eventType).Add(float64(n))
}

// RecordEnrichRun records a completed batch enrichment.
func RecordEnrichRun(trigger string, durationSeconds float64) {
	DefaultMetrics.EnrichRuns.WithLabelValues(trigger).Inc()
	DefaultMetrics.EnrichDuration.Observe(durationSeconds)
	DefaultMetrics.LastSuccessfulEnrich.Set(float64(time.Now().Unix()))
}

// RecordEnrichFailure counts a ticker that failed open.
func RecordEnrichFailure() {
	DefaultMetrics.EnrichFailures.Inc()
}

// RecordHTTPRequest records API request metrics.
func RecordHTTPRequest(method, route, status string, seconds float64) {
	DefaultMetrics.HTTPRequests.WithLabelValues(method, route, status).Inc()
	DefaultMetrics.HTTPRequestDuration.WithLabelValues(method, route).Observe(seconds)
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// RecordNotification records a notification attempt.
func RecordNotification(err error) {
	status := "sent"
	if err != nil {
		status = "failed"
	}
	DefaultMetrics.NotificationsSent.WithLabelValues(status).Inc()
}
