package engine

import (
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/dd0wney/cluso-rdyn/pkg/sink"
)

// decay resolves every edge of n due at it: the edge is renewed when the
// renewal draw agrees with whether the endpoints share a community, and
// deleted otherwise.
func (e *Engine) decay(it int, n int64) error {
	g := e.net.Graph
	m := e.net.Membership
	cid := m.Community(n)

	for _, nb := range g.Neighbors(n) {
		if due, ok := g.Expiry(n, nb); !ok || due != it {
			continue
		}

		r := e.rng.Float64()
		same := m.Community(nb) == cid
		if (r <= e.params.PRenewal && same) || (r > e.params.PRenewal && !same) {
			g.SetExpiry(n, nb, e.nextExpiry(it))
			continue
		}

		g.RemoveEdge(n, nb)
		if err := e.interaction(it, sink.Delete, n, nb); err != nil {
			return err
		}
	}
	return nil
}

// attach lets n, when it is below its expected degree and active this
// iteration, try to add one edge inside or outside its community.
func (e *Engine) attach(it int, n int64) error {
	net := e.net
	p := e.params

	if net.Graph.Degree(n) >= net.Expected[n] {
		return nil
	}
	if action := e.rng.Float64(); action > p.PAction && it != 0 {
		return nil
	}

	cid := net.Membership.Community(n)
	size := net.Membership.Size(cid)
	r := e.rng.Float64()
	d := e.internalDegree(n, cid)

	switch {
	case d < size-1 && r <= p.Sigma:
		return e.attachIntra(it, n, cid)
	case r > p.Sigma && float64(net.Expected[n]-d) < (1-p.Sigma)*float64(size):
		// Eligibility compares against the internal degree d, not the total.
		return e.attachInter(it, n, cid)
	}
	return nil
}

// attachIntra links n to a uniformly chosen co-member below its expected degree.
func (e *Engine) attachIntra(it int, n int64, cid int) error {
	candidates := e.net.Hungry(cid, n)
	if len(candidates) == 0 {
		return nil
	}
	target := candidates[e.rng.IntN(len(candidates))]
	return e.link(it, n, target)
}

// attachInter picks another community uniformly and links n to one of its
// members below expected degree, chosen proportionally to remaining need.
func (e *Engine) attachInter(it int, n int64, cid int) error {
	ids := e.net.Membership.IDs()
	others := make([]int, 0, len(ids))
	for _, c := range ids {
		if c != cid {
			others = append(others, c)
		}
	}
	if len(others) == 0 {
		return nil
	}

	other := others[e.rng.IntN(len(others))]
	candidates := e.net.Hungry(other, n)
	if len(candidates) == 0 {
		return nil
	}

	need := make([]float64, len(candidates))
	for i, c := range candidates {
		need[i] = float64(e.net.Need(c))
	}
	target := candidates[int(distuv.NewCategorical(need, e.rng).Rand())]
	return e.link(it, n, target)
}

func (e *Engine) link(it int, u, v int64) error {
	if !e.net.Graph.AddEdge(u, v, e.nextExpiry(it)) {
		return nil
	}
	return e.interaction(it, sink.Insert, u, v)
}

func (e *Engine) internalDegree(n int64, cid int) int {
	d := 0
	for _, nb := range e.net.Graph.Neighbors(n) {
		if e.net.Membership.Community(nb) == cid {
			d++
		}
	}
	return d
}

func (e *Engine) nextExpiry(it int) int {
	return it + 1 + int(e.expiry.Rand())
}

func (e *Engine) interaction(it int, op sink.Op, u, v int64) error {
	e.seq++
	if err := e.sink.WriteInteraction(sink.Interaction{Iteration: it, Seq: e.seq, Op: op, U: u, V: v}); err != nil {
		return err
	}
	e.metrics.RecordInteraction(op.String())
	return nil
}
