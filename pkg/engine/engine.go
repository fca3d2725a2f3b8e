// Package engine drives the iteration loop of a dynamic benchmark run:
// edge decay and renewal, preferential attachment, node churn and
// community events at stability checkpoints.
package engine

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/dd0wney/cluso-rdyn/pkg/algorithms"
	"github.com/dd0wney/cluso-rdyn/pkg/dyngraph"
	"github.com/dd0wney/cluso-rdyn/pkg/events"
	"github.com/dd0wney/cluso-rdyn/pkg/lifecycle"
	"github.com/dd0wney/cluso-rdyn/pkg/logging"
	"github.com/dd0wney/cluso-rdyn/pkg/metrics"
	"github.com/dd0wney/cluso-rdyn/pkg/sequence"
	"github.com/dd0wney/cluso-rdyn/pkg/sink"
)

var (
	ErrNoSink     = errors.New("engine: sink is required")
	ErrAlreadyRan = errors.New("engine: run already executed")
)

// New validates the parameters and prepares an engine. No network state
// is built until Run.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Params.Validate(); err != nil {
		return nil, err
	}
	if cfg.Sink == nil {
		return nil, ErrNoSink
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	reg := cfg.Metrics
	if reg == nil {
		reg = metrics.NewRegistry()
	}

	p := cfg.Params
	rng := rand.New(rand.NewPCG(p.Seed, p.Seed))

	return &Engine{
		params:    p,
		sink:      cfg.Sink,
		logger:    logger.With(logging.Component("engine"), logging.RunID(cfg.RunID)),
		metrics:   reg,
		runID:     cfg.RunID,
		dir:       cfg.Dir,
		rng:       rng,
		expiry:    distuv.Exponential{Rate: p.Lambda, Src: rng},
		tester:    algorithms.NewStabilityTester(p.Conductance),
		events:    events.NewGenerator(p.MaxEvents, p.Sigma, rng),
		lifecycle: lifecycle.NewManager(p.Sigma, rng),
	}, nil
}

// Run builds the initial network and evolves it for the configured number
// of iterations. The sink is closed on every return path.
func (e *Engine) Run() (res *Result, err error) {
	if e.ran {
		return nil, ErrAlreadyRan
	}
	e.ran = true

	defer func() {
		if cerr := e.sink.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close sink: %w", cerr))
		}
	}()

	p := e.params
	timer := logging.StartTimer(e.logger, "run",
		logging.Seed(p.Seed), logging.Int("size", p.Size), logging.Int("iterations", p.Iterations))

	if err := e.initialize(); err != nil {
		timer.EndError(err)
		return nil, err
	}

	for it := 0; it < p.Iterations; it++ {
		if err := e.iterate(it); err != nil {
			timer.EndError(err)
			return nil, fmt.Errorf("iteration %d: %w", it, err)
		}
	}

	if err := e.finish(); err != nil {
		timer.EndError(err)
		return nil, err
	}

	res = e.result()
	timer.End(
		logging.Int("stable", res.Stable),
		logging.Int("nodes", res.Nodes),
		logging.Int("edges", res.Edges),
		logging.Int("communities", res.Communities),
	)
	return res, nil
}

// Network exposes the evolving state, mainly for inspection after Run.
func (e *Engine) Network() *dyngraph.Network {
	return e.net
}

// Tester returns the stability tester used at checkpoints.
func (e *Engine) Tester() algorithms.StabilityTester {
	return e.tester
}

func (e *Engine) initialize() error {
	p := e.params

	degs, mind, err := sequence.DegreeSequence(p.Size, p.AvgDeg, p.Alpha, e.rng)
	if err != nil {
		return fmt.Errorf("degree sequence: %w", err)
	}
	sizes, err := sequence.CommunitySizes(p.Size, p.AvgDeg, mind+1, e.rng)
	if err != nil {
		return fmt.Errorf("community sizes: %w", err)
	}

	e.net = &dyngraph.Network{
		Graph:      dyngraph.New(p.Size),
		Membership: dyngraph.Assign(sizes, degs, p.Sigma),
		Expected:   degs,
	}
	e.metrics.UpdateNetwork(p.Size, 0, e.net.Membership.Len())

	e.logger.Info("network initialized",
		logging.Int("min_degree", mind),
		logging.Count(len(sizes)),
		logging.Int("largest_community", sizes[0]))
	return nil
}

func (e *Engine) iterate(it int) error {
	start := time.Now()
	p := e.params
	net := e.net

	checkpoint := false
	if it > 0 && e.tester.Test(net.Graph, net.Membership) {
		checkpoint = true
		if err := e.checkpoint(it); err != nil {
			return err
		}
	} else if p.SnapshotAll {
		if err := e.snapshot(it); err != nil {
			return err
		}
	}

	if e.rng.Float64() < p.DelNode {
		if err := e.removeNode(it); err != nil {
			return err
		}
	}
	if e.rng.Float64() < p.NewNode {
		e.addNode()
	}

	nodes := net.Graph.NodeIDs()
	e.rng.Shuffle(len(nodes), func(i, j int) { nodes[i], nodes[j] = nodes[j], nodes[i] })

	for _, n := range nodes {
		if net.Membership.Community(n) == dyngraph.Removed {
			continue
		}
		if err := e.decay(it, n); err != nil {
			return err
		}
		if err := e.attach(it, n); err != nil {
			return err
		}
	}

	if err := e.sink.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}

	e.metrics.RecordIteration(time.Since(start), checkpoint)
	e.metrics.UpdateNetwork(net.Graph.NodeCount(), net.Graph.EdgeCount(), net.Membership.Len())
	return nil
}

func (e *Engine) removeNode(it int) error {
	r, ok := e.lifecycle.Remove(e.net)
	if !ok {
		e.logger.Debug("no community large enough for node removal", logging.Iteration(it))
		return nil
	}
	for _, edge := range r.Edges {
		if err := e.interaction(it, sink.Delete, edge[0], edge[1]); err != nil {
			return err
		}
	}
	e.metrics.RecordNodeLifecycle("remove")
	e.logger.Debug("node removed",
		logging.Iteration(it), logging.Node(r.Node), logging.Community(r.Community),
		logging.Int("edges", len(r.Edges)))
	return nil
}

func (e *Engine) addNode() {
	a, ok := e.lifecycle.Add(e.net)
	if !ok {
		return
	}
	e.metrics.RecordNodeLifecycle("add")
	e.logger.Debug("node added",
		logging.Node(a.Node), logging.Community(a.Community), logging.Int("expected_degree", a.Expected))
}

func (e *Engine) finish() error {
	p := e.params
	if err := e.snapshot(p.Iterations); err != nil {
		return err
	}
	for _, r := range e.tester.Report(e.net.Graph, e.net.Membership) {
		if !r.Stable {
			e.logger.Warn("community unstable at final snapshot",
				logging.Community(r.ID), logging.String("reason", r.Reason),
				logging.Int("size", r.Size), logging.Int("components", r.Components),
				logging.Float64("conductance", r.Conductance))
		}
	}

	actions := e.pending
	if !e.started {
		actions = []string{"START"}
	}
	if err := e.sink.WriteEvent(finalEntry(p.Iterations, actions)); err != nil {
		return fmt.Errorf("write final event entry: %w", err)
	}
	if err := e.sink.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

func (e *Engine) result() *Result {
	return &Result{
		Stable:      e.stable,
		Iterations:  e.params.Iterations,
		Nodes:       e.net.Graph.NodeCount(),
		Edges:       e.net.Graph.EdgeCount(),
		Communities: e.net.Membership.Len(),
		RunID:       e.runID,
		Dir:         e.dir,
	}
}
