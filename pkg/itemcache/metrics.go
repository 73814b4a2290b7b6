package itemcache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	ItemHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agentdir_itemcache_hits_total",
		Help: "Total number of item cache hits",
	})

	ItemMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agentdir_itemcache_misses_total",
		Help: "Total number of item cache misses",
	})

	ItemSetsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agentdir_itemcache_sets_total",
		Help: "Total number of item cache sets",
	})

	ItemDeletesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agentdir_itemcache_deletes_total",
		Help: "Total number of item cache deletes",
	})
)
