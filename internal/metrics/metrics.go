package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BackendReadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_backend_reads_total",
		Help: "Repository reads by entity kind and the backend that served them",
	}, []string{"kind", "backend"})

	RemoteErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_remote_errors_total",
		Help: "Remote table operations that failed",
	}, []string{"table", "op"})

	RemoteLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_remote_latency_seconds",
		Help:    "Latency of remote table operations",
		Buckets: prometheus.DefBuckets,
	}, []string{"table", "op"})

	FileWritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_file_writes_total",
		Help: "Writes of the local JSON document",
	}, []string{"result"})

	StoreCorruptionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_store_corruptions_total",
		Help: "Unparseable local documents that were quarantined and reset",
	})

	NormalizedDefaultsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_normalized_defaults_total",
		Help: "Fields filled with a default during normalization",
	}, []string{"kind"})

	EventsPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_events_published_total",
		Help: "Change events handed to the broker",
	}, []string{"kind", "result"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
