// Package lifecycle adds nodes to and removes nodes from a running network.
package lifecycle

import (
	"math/rand/v2"

	"github.com/dd0wney/cluso-rdyn/pkg/dyngraph"
)

// minRemovableSize is the member count a community must exceed before one
// of its nodes can be removed.
const minRemovableSize = 3

// Removal describes a node taken out of the network.
type Removal struct {
	Node      int64
	Community int
	// Edges are the incident edges deleted with the node, as (Node, neighbor)
	// pairs in ascending neighbor order.
	Edges [][2]int64
}

// Addition describes a node joining the network.
type Addition struct {
	Node      int64
	Community int
	Expected  int
}

// Manager performs node arrivals and departures.
type Manager struct {
	Sigma float64

	rng *rand.Rand
}

// NewManager returns a manager drawing from rng.
func NewManager(sigma float64, rng *rand.Rand) *Manager {
	return &Manager{Sigma: sigma, rng: rng}
}

// Remove picks a community with more than three members uniformly, then
// its node with the lowest degree inside the community (ties broken
// uniformly), and deletes that node with all its edges. It reports false
// when no community is large enough.
func (m *Manager) Remove(net *dyngraph.Network) (Removal, bool) {
	var eligible []int
	for _, cid := range net.Membership.IDs() {
		if net.Membership.Size(cid) > minRemovableSize {
			eligible = append(eligible, cid)
		}
	}
	if len(eligible) == 0 {
		return Removal{}, false
	}

	cid := eligible[m.rng.IntN(len(eligible))]
	members := net.Membership.Members(cid)
	set := net.Membership.Set(cid)

	lowest := -1
	var candidates []int64
	for _, n := range members {
		d := net.Graph.InternalDegree(n, set)
		switch {
		case lowest < 0 || d < lowest:
			lowest = d
			candidates = append(candidates[:0], n)
		case d == lowest:
			candidates = append(candidates, n)
		}
	}
	node := candidates[m.rng.IntN(len(candidates))]

	removed := Removal{Node: node, Community: cid}
	for _, nb := range net.Graph.Neighbors(node) {
		net.Graph.RemoveEdge(node, nb)
		removed.Edges = append(removed.Edges, [2]int64{node, nb})
	}

	net.Expected[node] = 0
	net.Membership.Remove(node)
	net.Graph.RemoveNode(node)
	return removed, true
}

// Add creates the next node id, places it in a uniformly chosen community
// and draws its expected degree uniformly from [2, cap) where cap is the
// community's degree cap after the node joins. A cap too small for that
// range yields an expected degree of 1.
func (m *Manager) Add(net *dyngraph.Network) (Addition, bool) {
	ids := net.Membership.IDs()
	if len(ids) == 0 {
		return Addition{}, false
	}

	node := int64(len(net.Expected))
	cid := ids[m.rng.IntN(len(ids))]

	net.Graph.AddNode(node)
	net.Membership.Assign(node, cid)

	deg := 1
	if hi := dyngraph.DegreeCap(net.Membership.Size(cid), m.Sigma); hi > 2 {
		deg = 2 + m.rng.IntN(hi-2)
	}
	net.Expected = append(net.Expected, deg)

	return Addition{Node: node, Community: cid, Expected: deg}, true
}
