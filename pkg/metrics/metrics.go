package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RecordIteration records one completed iteration and whether it was a
// stability checkpoint
func (r *Registry) RecordIteration(duration time.Duration, stable bool) {
	r.IterationsTotal.Inc()
	if stable {
		r.StableIterationsTotal.Inc()
	}
	r.IterationDuration.Observe(duration.Seconds())
}

// RecordInteraction records an edge insertion ("+") or removal ("-")
func (r *Registry) RecordInteraction(op string) {
	r.InteractionsTotal.WithLabelValues(op).Inc()
}

// RecordCommunityEvent records the outcome of one merge/split slot
func (r *Registry) RecordCommunityEvent(kind, outcome string) {
	r.CommunityEventsTotal.WithLabelValues(kind, outcome).Inc()
}

// RecordNodeLifecycle records a node addition or removal
func (r *Registry) RecordNodeLifecycle(op string) {
	r.NodeLifecycleTotal.WithLabelValues(op).Inc()
}

// UpdateNetwork sets the current network size gauges
func (r *Registry) UpdateNetwork(nodes, edges, communities int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.NetworkNodes.Set(float64(nodes))
	r.NetworkEdges.Set(float64(edges))
	r.NetworkCommunities.Set(float64(communities))
}

// WriteTextfile dumps every metric in the Prometheus text format, for
// the node exporter textfile collector or offline inspection
func (r *Registry) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
