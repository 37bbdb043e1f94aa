package notify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var pollFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "portfolio_client",
	Subsystem: "notify",
	Name:      "poll_failures_total",
	Help:      "Notification refreshes that failed during polling.",
})
