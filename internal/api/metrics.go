package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "portfolio_client",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "API calls by operation and result (HTTP status or \"error\").",
		},
		[]string{"op", "result"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "portfolio_client",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "API call latency including one refresh and replay.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"op"},
	)
)
