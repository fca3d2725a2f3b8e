package dyngraph

import (
	"errors"
	"fmt"
	"slices"
)

// Removed is the community id of a node that has left the network.
const Removed = -1

var (
	ErrUnknownCommunity = errors.New("unknown community")
	ErrInvalidSplit     = errors.New("invalid split")
	ErrInconsistent     = errors.New("membership inconsistent")
)

// Membership owns both the community -> members lists and the node ->
// community map. Every mutation updates the two together.
type Membership struct {
	members map[int][]int64
	nodeCom []int
}

// NewMembership returns an empty membership.
func NewMembership() *Membership {
	return &Membership{members: make(map[int][]int64)}
}

// Ensure creates cid with no members if it does not exist.
func (m *Membership) Ensure(cid int) {
	if _, ok := m.members[cid]; !ok {
		m.members[cid] = []int64{}
	}
}

// Assign appends node to cid. The node must not currently belong to a
// community.
func (m *Membership) Assign(node int64, cid int) {
	for int64(len(m.nodeCom)) <= node {
		m.nodeCom = append(m.nodeCom, Removed)
	}
	m.members[cid] = append(m.members[cid], node)
	m.nodeCom[node] = cid
}

// Community returns the community of node, or Removed.
func (m *Membership) Community(node int64) int {
	if node < 0 || node >= int64(len(m.nodeCom)) {
		return Removed
	}
	return m.nodeCom[node]
}

// Members returns the members of cid in insertion order. The slice is
// owned by the membership and must not be modified.
func (m *Membership) Members(cid int) []int64 {
	return m.members[cid]
}

// Size returns the member count of cid.
func (m *Membership) Size(cid int) int {
	return len(m.members[cid])
}

// Has reports whether cid exists.
func (m *Membership) Has(cid int) bool {
	_, ok := m.members[cid]
	return ok
}

// Len returns the number of communities.
func (m *Membership) Len() int {
	return len(m.members)
}

// NodeCount returns the number of node ids ever assigned, removed included.
func (m *Membership) NodeCount() int {
	return len(m.nodeCom)
}

// IDs returns community ids in ascending order.
func (m *Membership) IDs() []int {
	ids := make([]int, 0, len(m.members))
	for cid := range m.members {
		ids = append(ids, cid)
	}
	slices.Sort(ids)
	return ids
}

// MaxID returns the largest community id, or -1 when there are none.
func (m *Membership) MaxID() int {
	maxID := -1
	for cid := range m.members {
		maxID = max(maxID, cid)
	}
	return maxID
}

// Set returns the members of cid as a lookup set.
func (m *Membership) Set(cid int) map[int64]struct{} {
	set := make(map[int64]struct{}, len(m.members[cid]))
	for _, n := range m.members[cid] {
		set[n] = struct{}{}
	}
	return set
}

// Merge moves every member of from into into and deletes from.
func (m *Membership) Merge(into, from int) error {
	if !m.Has(into) || !m.Has(from) {
		return fmt.Errorf("merge %d <- %d: %w", into, from, ErrUnknownCommunity)
	}
	if into == from {
		return fmt.Errorf("merge %d into itself: %w", into, ErrUnknownCommunity)
	}
	for _, n := range m.members[from] {
		m.nodeCom[n] = into
	}
	m.members[into] = append(m.members[into], m.members[from]...)
	delete(m.members, from)
	return nil
}

// Split carves part out of cid into a new community whose id is one
// above the current maximum. part must be a non-empty proper subset of cid.
func (m *Membership) Split(cid int, part []int64) (int, error) {
	if !m.Has(cid) {
		return 0, fmt.Errorf("split %d: %w", cid, ErrUnknownCommunity)
	}
	if len(part) == 0 || len(part) >= len(m.members[cid]) {
		return 0, fmt.Errorf("split %d: part of %d from %d members: %w", cid, len(part), len(m.members[cid]), ErrInvalidSplit)
	}

	moving := make(map[int64]struct{}, len(part))
	for _, n := range part {
		if m.Community(n) != cid {
			return 0, fmt.Errorf("split %d: node %d is not a member: %w", cid, n, ErrInvalidSplit)
		}
		moving[n] = struct{}{}
	}

	newID := m.MaxID() + 1
	rest := make([]int64, 0, len(m.members[cid])-len(part))
	for _, n := range m.members[cid] {
		if _, ok := moving[n]; !ok {
			rest = append(rest, n)
		}
	}
	for _, n := range part {
		m.nodeCom[n] = newID
	}
	m.members[cid] = rest
	m.members[newID] = slices.Clone(part)
	return newID, nil
}

// Remove drops node from its community and marks it Removed.
func (m *Membership) Remove(node int64) {
	cid := m.Community(node)
	if cid == Removed {
		return
	}
	m.members[cid] = slices.DeleteFunc(m.members[cid], func(n int64) bool { return n == node })
	m.nodeCom[node] = Removed
}

// Validate checks that every live node appears in exactly the community
// the node map names, and nowhere else.
func (m *Membership) Validate() error {
	seen := make(map[int64]int, len(m.nodeCom))
	for cid, nodes := range m.members {
		for _, n := range nodes {
			if prev, dup := seen[n]; dup {
				return fmt.Errorf("node %d in communities %d and %d: %w", n, prev, cid, ErrInconsistent)
			}
			seen[n] = cid
			if m.Community(n) != cid {
				return fmt.Errorf("node %d listed in %d but mapped to %d: %w", n, cid, m.Community(n), ErrInconsistent)
			}
		}
	}
	for n, cid := range m.nodeCom {
		if cid == Removed {
			continue
		}
		if got, ok := seen[int64(n)]; !ok || got != cid {
			return fmt.Errorf("node %d mapped to %d but not listed: %w", n, cid, ErrInconsistent)
		}
	}
	return nil
}
