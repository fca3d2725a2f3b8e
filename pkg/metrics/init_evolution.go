package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initEvolutionMetrics() {
	r.IterationsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "rdyn_iterations_total",
			Help: "Total number of evolution iterations executed",
		},
	)

	r.StableIterationsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "rdyn_stable_iterations_total",
			Help: "Iterations in which every community passed the stability test",
		},
	)

	r.IterationDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rdyn_iteration_duration_seconds",
			Help:    "Wall time of a single evolution iteration in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
		},
	)

	r.InteractionsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "rdyn_interactions_total",
			Help: "Edge insertions and removals written to the interaction log",
		},
		[]string{"op"},
	)

	r.CommunityEventsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "rdyn_community_events_total",
			Help: "Community merge/split slots by outcome",
		},
		[]string{"kind", "outcome"},
	)

	r.NodeLifecycleTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "rdyn_node_lifecycle_total",
			Help: "Nodes added to or removed from the network",
		},
		[]string{"op"},
	)
}
