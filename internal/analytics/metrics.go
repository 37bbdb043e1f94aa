package analytics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eventsTrackedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "portfolio_client",
			Subsystem: "analytics",
			Name:      "events_tracked_total",
			Help:      "Events accepted into the analytics queue.",
		},
		[]string{"event_type"},
	)

	eventsDeliveredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "portfolio_client",
			Subsystem: "analytics",
			Name:      "events_delivered_total",
			Help:      "Events accepted by the sink.",
		},
	)

	deliveryFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "portfolio_client",
			Subsystem: "analytics",
			Name:      "delivery_failures_total",
			Help:      "Delivery attempts that failed and blocked the queue head.",
		},
	)

	eventsDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "portfolio_client",
			Subsystem: "analytics",
			Name:      "events_dropped_total",
			Help:      "Events tracked after the queue was closed.",
		},
	)

	queueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "portfolio_client",
			Subsystem: "analytics",
			Name:      "queue_depth",
			Help:      "Events waiting for delivery.",
		},
	)

	deliveryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "portfolio_client",
			Subsystem: "analytics",
			Name:      "delivery_duration_seconds",
			Help:      "Time spent in a single sink delivery.",
			Buckets:   prometheus.DefBuckets,
		},
	)
)
