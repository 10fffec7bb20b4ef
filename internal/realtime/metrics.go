package realtime

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	activeObservers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ws_active_connections",
			Help: "Number of registered websocket observers",
		},
	)

	broadcastsSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "broadcast_messages_sent_total",
			Help: "Total number of messages delivered to observers",
		},
	)

	broadcastFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "broadcast_failures_total",
			Help: "Total number of failed observer sends (connection pruned)",
		},
	)

	broadcastDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "broadcast_dropped_total",
			Help: "Total number of events dropped on a full broadcast queue",
		},
	)
)
