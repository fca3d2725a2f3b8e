package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initNetworkMetrics() {
	r.NetworkNodes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "rdyn_network_nodes",
			Help: "Live nodes in the generated network",
		},
	)

	r.NetworkEdges = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "rdyn_network_edges",
			Help: "Live edges in the generated network",
		},
	)

	r.NetworkCommunities = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "rdyn_network_communities",
			Help: "Ground-truth communities in the generated network",
		},
	)
}
