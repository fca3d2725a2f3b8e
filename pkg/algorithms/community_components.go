package algorithms

import (
	"slices"

	"gonum.org/v1/gonum/graph/topo"

	"github.com/dd0wney/cluso-rdyn/pkg/dyngraph"
)

// ConnectedComponents returns the connected components of the subgraph
// induced by members. Each component is sorted, and components are
// ordered by their smallest node.
func ConnectedComponents(g *dyngraph.Graph, members []int64) [][]int64 {
	comps := topo.ConnectedComponents(g.Induced(members))

	out := make([][]int64, 0, len(comps))
	for _, comp := range comps {
		ids := make([]int64, len(comp))
		for i, n := range comp {
			ids[i] = n.ID()
		}
		slices.Sort(ids)
		out = append(out, ids)
	}
	slices.SortFunc(out, func(a, b []int64) int {
		switch {
		case a[0] < b[0]:
			return -1
		case a[0] > b[0]:
			return 1
		}
		return 0
	})
	return out
}
