package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP Metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Datastore Metrics
	DatastoreQueriesTotal  *prometheus.CounterVec
	DatastoreQueryDuration *prometheus.HistogramVec

	// Pipeline Metrics
	VisitsTracked      *prometheus.CounterVec
	GeoLookupsTotal    *prometheus.CounterVec
	GeoLookupDuration  prometheus.Histogram
	StatsRequestsTotal *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// HTTP Metrics
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),

		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint", "status"},
		),

		HTTPResponseSize: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 7),
			},
			[]string{"method", "endpoint", "status"},
		),

		// Datastore Metrics
		DatastoreQueriesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "datastore_queries_total",
				Help: "Total number of datastore queries",
			},
			[]string{"datastore", "operation", "status"},
		),

		DatastoreQueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "datastore_query_duration_seconds",
				Help:    "Datastore query latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"datastore", "operation"},
		),

		// Pipeline Metrics
		VisitsTracked: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "visits_tracked_total",
				Help: "Total number of visit tracking calls",
			},
			[]string{"result"}, // recorded, not_configured, store_error
		),

		GeoLookupsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "geo_lookups_total",
				Help: "Total number of geolocation lookups",
			},
			[]string{"result"}, // success, partial, failed, invalid_address
		),

		GeoLookupDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "geo_lookup_duration_seconds",
				Help:    "Geolocation provider latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),

		StatsRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stats_requests_total",
				Help: "Total number of visitor stats computations",
			},
			[]string{"result"}, // success, empty, store_error, not_configured
		),
	}
}
