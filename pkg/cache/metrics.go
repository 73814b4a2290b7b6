package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	hitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agentdir_cache_hits_total",
		Help: "Total number of cache hits",
	})

	missesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agentdir_cache_misses_total",
		Help: "Total number of cache misses, expired entries included",
	})

	evictionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agentdir_cache_evictions_total",
		Help: "Total number of LRU evictions",
	})

	invalidationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agentdir_cache_invalidations_total",
		Help: "Total number of explicit invalidations",
	})

	collapsedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agentdir_cache_singleflight_shared_total",
		Help: "Total number of fetch results shared across concurrent callers",
	})
)
