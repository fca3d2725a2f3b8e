package algorithms

import "github.com/dd0wney/cluso-rdyn/pkg/dyngraph"

// StabilityTester checks that every community is non-empty, internally
// connected and within a conductance bound.
type StabilityTester struct {
	Threshold float64
}

// NewStabilityTester returns a tester with the given conductance bound.
func NewStabilityTester(threshold float64) StabilityTester {
	return StabilityTester{Threshold: threshold}
}

// Test reports whether all communities pass. It stops at the first
// failing community.
func (t StabilityTester) Test(g *dyngraph.Graph, m *dyngraph.Membership) bool {
	for _, cid := range m.IDs() {
		if !t.check(g, cid, m.Members(cid)).Stable {
			return false
		}
	}
	return true
}

// Report evaluates every community, in ascending id order.
func (t StabilityTester) Report(g *dyngraph.Graph, m *dyngraph.Membership) []CommunityReport {
	ids := m.IDs()
	reports := make([]CommunityReport, 0, len(ids))
	for _, cid := range ids {
		reports = append(reports, t.check(g, cid, m.Members(cid)))
	}
	return reports
}

func (t StabilityTester) check(g *dyngraph.Graph, cid int, members []int64) CommunityReport {
	r := CommunityReport{ID: cid, Size: len(members)}
	if len(members) == 0 {
		r.Reason = ReasonEmpty
		return r
	}

	r.Components = len(ConnectedComponents(g, members))
	r.Conductance, r.Internal, r.Boundary = Conductance(g, members)

	switch {
	case r.Components > 1:
		r.Reason = ReasonDisconnected
	case r.Conductance > t.Threshold:
		r.Reason = ReasonConductance
	default:
		r.Stable = true
	}
	return r
}
