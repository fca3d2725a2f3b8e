package algorithms

import "github.com/dd0wney/cluso-rdyn/pkg/dyngraph"

// Conductance returns the boundary ratio of a community together with its
// internal and boundary edge counts. The ratio is
//
//	boundary / min(internal+boundary, edges(g)-internal)
//
// and exactly 0 when there are no boundary edges.
func Conductance(g *dyngraph.Graph, members []int64) (ratio float64, internal, boundary int) {
	set := make(map[int64]struct{}, len(members))
	for _, m := range members {
		set[m] = struct{}{}
	}

	degSum, inSum := 0, 0
	for _, m := range members {
		degSum += g.Degree(m)
		inSum += g.InternalDegree(m, set)
	}
	internal = inSum / 2
	boundary = degSum - inSum

	if boundary == 0 {
		return 0, internal, boundary
	}

	denom := min(internal+boundary, g.EdgeCount()-internal)
	return float64(boundary) / float64(denom), internal, boundary
}
