package engine

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/dd0wney/cluso-rdyn/pkg/algorithms"
	"github.com/dd0wney/cluso-rdyn/pkg/config"
	"github.com/dd0wney/cluso-rdyn/pkg/dyngraph"
	"github.com/dd0wney/cluso-rdyn/pkg/events"
	"github.com/dd0wney/cluso-rdyn/pkg/lifecycle"
	"github.com/dd0wney/cluso-rdyn/pkg/logging"
	"github.com/dd0wney/cluso-rdyn/pkg/metrics"
	"github.com/dd0wney/cluso-rdyn/pkg/sink"
)

// Config wires an engine to its parameters and collaborators.
type Config struct {
	Params config.Params
	// Sink receives every interaction, event entry and snapshot. The engine
	// closes it when Run returns.
	Sink    sink.Sink
	Logger  logging.Logger    // Defaults to a no-op logger
	Metrics *metrics.Registry // Defaults to a private registry
	RunID   string
	Dir     string // Reported back in Result
}

// Result summarizes a finished run.
type Result struct {
	// Stable counts the iterations at which every community passed the
	// stability test and a community event batch was drawn.
	Stable      int
	Iterations  int
	Nodes       int
	Edges       int
	Communities int
	RunID       string
	Dir         string
}

// Engine evolves one network. It is single use and not safe for
// concurrent use.
type Engine struct {
	params  config.Params
	sink    sink.Sink
	logger  logging.Logger
	metrics *metrics.Registry
	runID   string
	dir     string

	rng       *rand.Rand
	expiry    distuv.Exponential
	tester    algorithms.StabilityTester
	events    *events.Generator
	lifecycle *lifecycle.Manager

	net     *dyngraph.Network
	seq     int
	stable  int
	started bool
	pending []string
	ran     bool
}
