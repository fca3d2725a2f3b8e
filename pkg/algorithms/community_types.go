package algorithms

// CommunityReport describes how one community fares against the
// connectivity and conductance bounds.
type CommunityReport struct {
	ID          int
	Size        int
	Components  int
	Internal    int     // Edges with both endpoints inside
	Boundary    int     // Edges with exactly one endpoint inside
	Conductance float64 // Boundary / min(Internal+Boundary, rest of graph)
	Stable      bool
	Reason      string // Empty when Stable
}

// Failure reasons reported by StabilityTester.Report.
const (
	ReasonEmpty        = "empty"
	ReasonDisconnected = "disconnected"
	ReasonConductance  = "conductance"
)
