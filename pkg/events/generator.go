// Package events mutates ground-truth communities by merging and
// splitting them at stability checkpoints.
package events

import (
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/stat/sampleuv"

	"github.com/dd0wney/cluso-rdyn/pkg/dyngraph"
)

// minSplitSize is the member count a community must exceed to be split.
const minSplitSize = 6

// Generator draws merge/split batches.
type Generator struct {
	MaxEvents int
	Sigma     float64

	rng *rand.Rand
}

// NewGenerator returns a generator drawing from rng.
func NewGenerator(maxEvents int, sigma float64, rng *rand.Rand) *Generator {
	return &Generator{MaxEvents: max(maxEvents, 1), Sigma: sigma, rng: rng}
}

// Generate draws between 1 and MaxEvents slots, each a merge or a split
// with equal probability, and applies them in order. A community touched
// by an applied event is not selected again within the batch.
func (g *Generator) Generate(net *dyngraph.Network) Batch {
	n := 1 + g.rng.IntN(g.MaxEvents)
	kinds := make([]Kind, n)
	for i := range kinds {
		if g.rng.Float64() < 0.5 {
			kinds[i] = Merge
		} else {
			kinds[i] = Split
		}
	}

	chosen := make(map[int]struct{})
	batch := Batch{Slots: make([]Slot, 0, n)}
	for _, kind := range kinds {
		var slot Slot
		if kind == Merge {
			slot = g.merge(net, chosen)
		} else {
			slot = g.split(net, chosen)
		}
		batch.Slots = append(batch.Slots, slot)
	}
	return batch
}

func (g *Generator) merge(net *dyngraph.Network, chosen map[int]struct{}) Slot {
	slot := Slot{Kind: Merge, Outcome: Skipped}
	m := net.Membership
	if m.Len() == 1 {
		return slot
	}

	candidates, sizes, total := unchosen(m, chosen)
	if len(candidates) < 2 || total == 0 {
		slot.Outcome = NoCandidates
		return slot
	}

	// Favor small communities.
	weights := make([]float64, len(candidates))
	for i, s := range sizes {
		weights[i] = 1 - float64(s)/float64(total)
	}
	ids, ok := g.take(candidates, weights, 2)
	if !ok {
		slot.Outcome = NoCandidates
		return slot
	}

	target, source := ids[0], ids[1]
	if err := m.Merge(target, source); err != nil {
		slot.Outcome = NoCandidates
		return slot
	}
	chosen[target] = struct{}{}
	chosen[source] = struct{}{}

	slot.Outcome = Applied
	slot.Action = &Action{Kind: Merge, Source: source, Target: target, Moved: sizes[slices.Index(candidates, source)]}
	return slot
}

func (g *Generator) split(net *dyngraph.Network, chosen map[int]struct{}) Slot {
	slot := Slot{Kind: Split, Outcome: Skipped}
	m := net.Membership
	if m.Len() == 1 {
		return slot
	}

	candidates, sizes, total := unchosen(m, chosen)
	if len(candidates) == 0 || total == 0 {
		slot.Outcome = NoCandidates
		return slot
	}

	// Favor large communities.
	weights := make([]float64, len(candidates))
	for i, s := range sizes {
		weights[i] = float64(s) / float64(total)
	}
	ids, ok := g.take(candidates, weights, 1)
	if !ok {
		slot.Outcome = NoCandidates
		return slot
	}

	cid := ids[0]
	members := m.Members(cid)
	if len(members) <= minSplitSize {
		return slot
	}

	// size in [3, members-4]
	size := 3 + g.rng.IntN(len(members)-minSplitSize)
	part := make([]int64, size)
	for i, p := range g.rng.Perm(len(members))[:size] {
		part[i] = members[p]
	}

	newID, err := m.Split(cid, part)
	if err != nil {
		slot.Outcome = NoCandidates
		return slot
	}
	chosen[cid] = struct{}{}
	chosen[newID] = struct{}{}

	net.CapDegrees(newID, g.Sigma)
	net.CapDegrees(cid, g.Sigma)

	slot.Outcome = Applied
	slot.Action = &Action{Kind: Split, Source: cid, Target: newID, Moved: size}
	return slot
}

// take draws k distinct candidates with probability proportional to
// weights, without replacement.
func (g *Generator) take(candidates []int, weights []float64, k int) ([]int, bool) {
	w := sampleuv.NewWeighted(weights, g.rng)
	out := make([]int, 0, k)
	for len(out) < k {
		idx, ok := w.Take()
		if !ok {
			return nil, false
		}
		out = append(out, candidates[idx])
	}
	return out, true
}

func unchosen(m *dyngraph.Membership, chosen map[int]struct{}) (ids, sizes []int, total int) {
	for _, cid := range m.IDs() {
		if _, used := chosen[cid]; used {
			continue
		}
		ids = append(ids, cid)
		sizes = append(sizes, m.Size(cid))
		total += m.Size(cid)
	}
	return ids, sizes, total
}
