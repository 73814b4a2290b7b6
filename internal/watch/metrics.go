package watch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// EventsTotal tracks change events received from the control plane.
	EventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agentdir_watch_events_total",
		Help: "Total number of change events received",
	})

	// EventErrorsTotal tracks malformed or unusable events.
	EventErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agentdir_watch_event_errors_total",
		Help: "Total number of malformed change events",
	})

	// ReconnectsTotal tracks event-stream reconnection attempts.
	ReconnectsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agentdir_watch_reconnects_total",
		Help: "Total number of event-stream reconnect attempts",
	})
)
