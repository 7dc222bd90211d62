package gqltest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	operationsDispatchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gqltest",
			Name:      "operations_dispatched_total",
			Help:      "Operations registered as pending by a controller.",
		},
		[]string{"operation"},
	)

	operationsResolvedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gqltest",
			Name:      "operations_resolved_total",
			Help:      "Operations whose resolution completed, by outcome.",
		},
		[]string{"operation", "outcome"},
	)

	pendingOperations = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "gqltest",
			Name:      "pending_operations",
			Help:      "Operations dispatched but not yet resolved, across controllers.",
		},
	)

	drainsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gqltest",
			Name:      "drains_total",
			Help:      "ResolveAll calls, by outcome.",
		},
		[]string{"outcome"},
	)

	drainDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "gqltest",
			Name:      "drain_duration_seconds",
			Help:      "Wall time of a ResolveAll call including wrappers.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		},
	)
)

func outcomeLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
