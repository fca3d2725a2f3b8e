package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for a generator run
type Registry struct {
	// Evolution Metrics
	IterationsTotal       prometheus.Counter
	StableIterationsTotal prometheus.Counter
	IterationDuration     prometheus.Histogram
	InteractionsTotal     *prometheus.CounterVec
	CommunityEventsTotal  *prometheus.CounterVec
	NodeLifecycleTotal    *prometheus.CounterVec

	// Network Metrics
	NetworkNodes       prometheus.Gauge
	NetworkEdges       prometheus.Gauge
	NetworkCommunities prometheus.Gauge

	registry *prometheus.Registry
	mu       sync.RWMutex
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	r.initEvolutionMetrics()
	r.initNetworkMetrics()

	return r
}
