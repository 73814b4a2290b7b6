package catalog

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// RequestsTotal tracks requests issued to the control plane.
	RequestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agentdir_catalog_requests_total",
		Help: "Total number of control-plane API requests",
	})

	// RequestErrorsTotal tracks transport and API failures.
	RequestErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agentdir_catalog_request_errors_total",
		Help: "Total number of failed control-plane API requests",
	})

	// RequestDurationSeconds tracks control-plane request latency.
	RequestDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "agentdir_catalog_request_duration_seconds",
		Help:    "Duration of control-plane API requests",
		Buckets: prometheus.DefBuckets,
	})
)
