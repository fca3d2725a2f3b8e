package dyngraph

// Network bundles the graph, its ground-truth communities and each node's
// expected degree, indexed by node id.
type Network struct {
	Graph      *Graph
	Membership *Membership
	Expected   []int
}

// Need returns how many more edges node wants to reach its expected degree.
func (n *Network) Need(node int64) int {
	if node < 0 || node >= int64(len(n.Expected)) {
		return 0
	}
	return n.Expected[node] - n.Graph.Degree(node)
}

// Hungry returns the members of cid, other than exclude, still below
// their expected degree, in membership order.
func (n *Network) Hungry(cid int, exclude int64) []int64 {
	var out []int64
	for _, m := range n.Membership.Members(cid) {
		if m != exclude && n.Need(m) > 0 {
			out = append(out, m)
		}
	}
	return out
}

// CapDegrees lowers the expected degree of every member of cid to the
// largest value its community can still satisfy with a sigma share of
// internal edges.
func (n *Network) CapDegrees(cid int, sigma float64) {
	limit := DegreeCap(n.Membership.Size(cid), sigma)
	for _, m := range n.Membership.Members(cid) {
		if n.Expected[m] > limit {
			n.Expected[m] = limit
		}
	}
}

// DegreeCap is (size-1) + (size-1)*(1-sigma), truncated.
func DegreeCap(size int, sigma float64) int {
	s := float64(size - 1)
	return int(s + s*(1-sigma))
}
