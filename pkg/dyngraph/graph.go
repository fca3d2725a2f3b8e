// Package dyngraph holds the mutable state of a dynamic benchmark network:
// an undirected graph whose edges carry an expiry iteration, and the
// community membership kept consistent with the node-to-community map.
package dyngraph

import (
	"slices"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

// Graph is an undirected simple graph. Each edge's weight is the iteration
// at which it becomes due for decay evaluation.
type Graph struct {
	g     *simple.WeightedUndirectedGraph
	edges int
}

// New returns a graph with nodes 0..n-1 and no edges.
func New(n int) *Graph {
	g := &Graph{g: simple.NewWeightedUndirectedGraph(0, -1)}
	for i := 0; i < n; i++ {
		g.g.AddNode(simple.Node(i))
	}
	return g
}

// AddNode adds id if it is not already present.
func (g *Graph) AddNode(id int64) {
	if g.g.Node(id) == nil {
		g.g.AddNode(simple.Node(id))
	}
}

// RemoveNode deletes id and every incident edge.
func (g *Graph) RemoveNode(id int64) {
	if g.g.Node(id) == nil {
		return
	}
	g.edges -= g.g.From(id).Len()
	g.g.RemoveNode(id)
}

// HasNode reports whether id is live.
func (g *Graph) HasNode(id int64) bool {
	return g.g.Node(id) != nil
}

// NodeCount returns the number of live nodes.
func (g *Graph) NodeCount() int {
	return g.g.Nodes().Len()
}

// NodeIDs returns live node ids in ascending order.
func (g *Graph) NodeIDs() []int64 {
	return sortedIDs(g.g.Nodes())
}

// AddEdge inserts u-v due at expiry. It returns false, leaving the graph
// untouched, for self loops, missing endpoints and existing edges.
func (g *Graph) AddEdge(u, v int64, expiry int) bool {
	if u == v || !g.HasNode(u) || !g.HasNode(v) || g.g.HasEdgeBetween(u, v) {
		return false
	}
	g.g.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(u), T: simple.Node(v), W: float64(expiry)})
	g.edges++
	return true
}

// SetExpiry moves the due iteration of an existing edge.
func (g *Graph) SetExpiry(u, v int64, expiry int) bool {
	if !g.g.HasEdgeBetween(u, v) {
		return false
	}
	g.g.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(u), T: simple.Node(v), W: float64(expiry)})
	return true
}

// Expiry returns the due iteration of u-v.
func (g *Graph) Expiry(u, v int64) (int, bool) {
	if !g.g.HasEdgeBetween(u, v) {
		return 0, false
	}
	w, _ := g.g.Weight(u, v)
	return int(w), true
}

// RemoveEdge deletes u-v if present.
func (g *Graph) RemoveEdge(u, v int64) bool {
	if !g.g.HasEdgeBetween(u, v) {
		return false
	}
	g.g.RemoveEdge(u, v)
	g.edges--
	return true
}

// HasEdge reports whether u-v is live.
func (g *Graph) HasEdge(u, v int64) bool {
	return g.g.HasEdgeBetween(u, v)
}

// Degree returns the number of live edges incident to id.
func (g *Graph) Degree(id int64) int {
	if !g.HasNode(id) {
		return 0
	}
	return g.g.From(id).Len()
}

// Neighbors returns the neighbors of id in ascending order.
func (g *Graph) Neighbors(id int64) []int64 {
	if !g.HasNode(id) {
		return nil
	}
	return sortedIDs(g.g.From(id))
}

// EdgeCount returns the number of live edges.
func (g *Graph) EdgeCount() int {
	return g.edges
}

// Edges returns every live edge once as (low, high), sorted.
func (g *Graph) Edges() [][2]int64 {
	out := make([][2]int64, 0, g.edges)
	for _, u := range g.NodeIDs() {
		for _, v := range g.Neighbors(u) {
			if u < v {
				out = append(out, [2]int64{u, v})
			}
		}
	}
	return out
}

// InternalDegree counts the neighbors of id that are members of set.
func (g *Graph) InternalDegree(id int64, set map[int64]struct{}) int {
	if !g.HasNode(id) {
		return 0
	}
	d := 0
	it := g.g.From(id)
	for it.Next() {
		if _, ok := set[it.Node().ID()]; ok {
			d++
		}
	}
	return d
}

// Induced returns the subgraph induced by members. Members that are not
// live nodes are skipped.
func (g *Graph) Induced(members []int64) *simple.UndirectedGraph {
	sub := simple.NewUndirectedGraph()
	set := make(map[int64]struct{}, len(members))
	for _, m := range members {
		if g.HasNode(m) {
			sub.AddNode(simple.Node(m))
			set[m] = struct{}{}
		}
	}
	for m := range set {
		it := g.g.From(m)
		for it.Next() {
			n := it.Node().ID()
			if _, ok := set[n]; ok && m < n {
				sub.SetEdge(simple.Edge{F: simple.Node(m), T: simple.Node(n)})
			}
		}
	}
	return sub
}

func sortedIDs(it graph.Nodes) []int64 {
	ids := make([]int64, 0, it.Len())
	for it.Next() {
		ids = append(ids, it.Node().ID())
	}
	slices.Sort(ids)
	return ids
}
