package dyngraph

// Assign places nodes 0..len(degs)-1 into communities with the given
// sizes. Each node, in ascending id order, goes to the first community
// that still has room and is large enough to host a sigma share of its
// expected degree internally. Nodes that fit nowhere are then placed,
// again in id order, into the first community with a free slot, and their
// expected degree in degs is lowered to that community's size minus one.
//
// degs is modified in place. Community ids are the indices of sizes.
func Assign(sizes []int, degs []int, sigma float64) *Membership {
	m := NewMembership()
	for c := range sizes {
		m.Ensure(c)
	}

	var deferred []int64
	for n, d := range degs {
		node := int64(n)
		placed := false
		for c, size := range sizes {
			if m.Size(c) >= size {
				continue
			}
			if d <= 0 || float64(size)/float64(d) >= sigma {
				m.Assign(node, c)
				placed = true
				break
			}
		}
		if !placed {
			deferred = append(deferred, node)
		}
	}

	for _, node := range deferred {
		for c, size := range sizes {
			if m.Size(c) < size {
				m.Assign(node, c)
				degs[node] = size - 1
				break
			}
		}
	}

	return m
}
