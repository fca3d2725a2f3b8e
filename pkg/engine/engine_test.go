package engine

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-rdyn/pkg/config"
	"github.com/dd0wney/cluso-rdyn/pkg/logging"
	"github.com/dd0wney/cluso-rdyn/pkg/metrics"
	"github.com/dd0wney/cluso-rdyn/pkg/sink"
	"github.com/dd0wney/cluso-rdyn/pkg/snapshot"
)

func testParams(iterations int) config.Params {
	p := config.Defaults()
	p.Iterations = iterations
	p.OutputRoot = "unused"
	return p
}

func run(t *testing.T, p config.Params) (*Engine, *Result, *sink.Memory) {
	t.Helper()
	mem := &sink.Memory{}
	e, err := New(Config{Params: p, Sink: mem, RunID: "test"})
	require.NoError(t, err)
	res, err := e.Run()
	require.NoError(t, err)
	return e, res, mem
}

func counterValue(t *testing.T, c interface{ Write(*dto.Metric) error }) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestNew_SizeTooSmall(t *testing.T) {
	p := testParams(10)
	p.Size = 999
	mem := &sink.Memory{}

	_, err := New(Config{Params: p, Sink: mem})
	require.ErrorIs(t, err, config.ErrSizeTooSmall)
	assert.False(t, mem.Closed)
	assert.Empty(t, mem.Interactions)
}

func TestNew_RequiresSink(t *testing.T) {
	_, err := New(Config{Params: testParams(10)})
	require.ErrorIs(t, err, ErrNoSink)
}

func TestRun_OnlyOnce(t *testing.T) {
	e, _, mem := run(t, testParams(2))
	assert.True(t, mem.Closed)

	_, err := e.Run()
	require.ErrorIs(t, err, ErrAlreadyRan)
}

func TestRun_Reproducible(t *testing.T) {
	p := testParams(15)
	p.Seed = 42
	p.NewNode = 0.3
	p.DelNode = 0.3

	_, first, a := run(t, p)
	_, second, b := run(t, p)

	require.NotEmpty(t, a.Interactions)
	assert.Equal(t, a.Interactions, b.Interactions)
	assert.Equal(t, a.Events, b.Events)
	assert.Equal(t, first, second)
}

func TestRun_SeedChangesOutput(t *testing.T) {
	p := testParams(3)
	p.Seed = 1
	_, _, a := run(t, p)
	p.Seed = 2
	_, _, b := run(t, p)

	assert.NotEqual(t, a.Interactions, b.Interactions)
}

func TestRun_SequenceNumbers(t *testing.T) {
	_, _, mem := run(t, testParams(10))

	require.NotEmpty(t, mem.Interactions)
	prevIt := 0
	for i, rec := range mem.Interactions {
		assert.Equal(t, i+1, rec.Seq)
		assert.GreaterOrEqual(t, rec.Iteration, prevIt)
		prevIt = rec.Iteration
	}
}

func TestRun_InteractionLogReplaysToFinalGraph(t *testing.T) {
	p := testParams(25)
	p.DelNode = 0.5
	p.NewNode = 0.5
	e, _, mem := run(t, p)

	live := make(map[[2]int64]bool)
	key := func(u, v int64) [2]int64 {
		if u > v {
			u, v = v, u
		}
		return [2]int64{u, v}
	}
	for _, rec := range mem.Interactions {
		k := key(rec.U, rec.V)
		switch rec.Op {
		case sink.Insert:
			require.False(t, live[k], "edge %v inserted twice", k)
			live[k] = true
		case sink.Delete:
			require.True(t, live[k], "edge %v removed while absent", k)
			delete(live, k)
		}
	}

	edges := e.Network().Graph.Edges()
	assert.Len(t, live, len(edges))
	for _, edge := range edges {
		assert.True(t, live[edge], "edge %v missing from log", edge)
	}
}

func TestRun_NoEdgeCarriedPastExpiry(t *testing.T) {
	p := testParams(30)
	e, _, _ := run(t, p)

	g := e.Network().Graph
	for _, edge := range g.Edges() {
		due, ok := g.Expiry(edge[0], edge[1])
		require.True(t, ok)
		assert.GreaterOrEqual(t, due, p.Iterations, "edge %v due at %d", edge, due)
	}
}

func TestRun_NodeChurn(t *testing.T) {
	p := testParams(10)
	p.DelNode = 1
	p.NewNode = 1
	e, res, _ := run(t, p)

	net := e.Network()
	require.NoError(t, net.Membership.Validate())
	assert.Len(t, net.Expected, p.Size+p.Iterations)
	assert.Equal(t, p.Size, res.Nodes)
	for n := int64(0); n < int64(len(net.Expected)); n++ {
		if !net.Graph.HasNode(n) {
			assert.Equal(t, 0, net.Expected[n])
			assert.Equal(t, -1, net.Membership.Community(n))
		}
	}
}

func TestRun_EventLogShape(t *testing.T) {
	p := testParams(40)
	_, res, mem := run(t, p)

	require.NotEmpty(t, mem.Events)
	last := mem.Events[len(mem.Events)-1]
	assert.Equal(t, sink.EntryFinal, last.Kind)
	assert.Equal(t, p.Iterations, last.Iteration)

	assert.Len(t, mem.Events, res.Stable+1)
	if res.Stable == 0 {
		assert.Equal(t, []string{"START"}, last.Actions)
		return
	}
	assert.Equal(t, sink.EntryStart, mem.Events[0].Kind)
	for _, entry := range mem.Events[1 : len(mem.Events)-1] {
		assert.Equal(t, sink.EntryCheckpoint, entry.Kind)
	}
}

// stableParams reach checkpoints within a few iterations: with renewal on
// every slot and a conductance bound of one, stability only needs every
// community to be connected.
func stableParams(iterations int) config.Params {
	p := testParams(iterations)
	p.AvgDeg = 10
	p.PRenewal = 1
	p.Conductance = 1
	p.MaxEvents = 3
	p.Seed = 5
	return p
}

func actionFields(t *testing.T, action string) (string, []int) {
	t.Helper()
	fields := strings.FieldsFunc(action, func(r rune) bool {
		return r == '\t' || r == ' ' || r == '[' || r == ']' || r == ','
	})
	require.NotEmpty(t, fields, "action %q", action)
	ids := make([]int, 0, len(fields)-1)
	for _, f := range fields[1:] {
		id, err := strconv.Atoi(f)
		require.NoError(t, err, "action %q", action)
		ids = append(ids, id)
	}
	return fields[0], ids
}

func TestRun_Checkpoints(t *testing.T) {
	p := stableParams(30)
	var buf bytes.Buffer
	mem := &sink.Memory{}

	e, err := New(Config{Params: p, Sink: mem, Logger: logging.NewJSONLogger(&buf, logging.InfoLevel)})
	require.NoError(t, err)
	res, err := e.Run()
	require.NoError(t, err)

	require.GreaterOrEqual(t, res.Stable, 2, "run never reached a second checkpoint")
	require.Len(t, mem.Events, res.Stable+1)
	require.Len(t, mem.Snapshots, res.Stable+1)

	// START, then one entry per later checkpoint, then the final entry.
	assert.Equal(t, sink.EntryStart, mem.Events[0].Kind)
	assert.Empty(t, mem.Events[0].Actions)
	for _, entry := range mem.Events[1:res.Stable] {
		assert.Equal(t, sink.EntryCheckpoint, entry.Kind)
	}
	final := mem.Events[res.Stable]
	assert.Equal(t, sink.EntryFinal, final.Kind)
	assert.Equal(t, p.Iterations, final.Iteration)

	// Each checkpoint snapshot is taken before its event batch, so it is
	// stable as written.
	for k, snap := range mem.Snapshots[:res.Stable] {
		assert.Equal(t, mem.Events[k].Iteration, snap.Iteration)
		rebuilt, err := snapshot.Build(snap.Iteration, snap.Communities, snap.Edges)
		require.NoError(t, err)
		require.NoError(t, rebuilt.Membership.Validate())
		for _, r := range e.Tester().Report(rebuilt.Graph, rebuilt.Membership) {
			assert.True(t, r.Stable, "iteration %d community %d: %s", snap.Iteration, r.ID, r.Reason)
		}
	}

	// Entry k+1 carries the batch generated at checkpoint k: its communities
	// exist in snapshot k, and split-off ids first appear in snapshot k+1.
	applied := 0
	for k := 0; k < res.Stable; k++ {
		before, after := mem.Snapshots[k], mem.Snapshots[k+1]
		has := func(snap sink.Snapshot, cid int) bool {
			return slices.ContainsFunc(snap.Communities, func(c sink.Community) bool { return c.ID == cid })
		}
		// A split may reuse the id a merge earlier in the same batch freed.
		freed := make(map[int]bool)
		for _, action := range mem.Events[k+1].Actions {
			applied++
			kind, ids := actionFields(t, action)
			switch kind {
			case "MERGE":
				require.Len(t, ids, 2, action)
				assert.True(t, has(before, ids[0]), "%q: target missing at iteration %d", action, before.Iteration)
				assert.True(t, has(before, ids[1]), "%q: source missing at iteration %d", action, before.Iteration)
				freed[ids[1]] = true
			case "SPLIT":
				require.Len(t, ids, 3, action)
				assert.Equal(t, ids[0], ids[1], action)
				assert.True(t, has(before, ids[0]), "%q: split community missing at iteration %d", action, before.Iteration)
				if !freed[ids[2]] {
					assert.False(t, has(before, ids[2]), "%q: new id already present at iteration %d", action, before.Iteration)
				}
				assert.True(t, has(after, ids[2]), "%q: new id missing at iteration %d", action, after.Iteration)
			default:
				t.Errorf("unexpected action %q", action)
			}
		}
	}

	require.NoError(t, e.Network().Membership.Validate())
	if applied > 0 {
		assert.Contains(t, buf.String(), `"msg":"community event"`)
	}
}

func TestRun_CheckpointSnapshots(t *testing.T) {
	_, res, mem := run(t, testParams(40))

	// One per checkpoint plus the final one.
	require.Len(t, mem.Snapshots, res.Stable+1)
	assert.Equal(t, 40, mem.Snapshots[len(mem.Snapshots)-1].Iteration)
}

func TestRun_Metrics(t *testing.T) {
	p := testParams(12)
	reg := metrics.NewRegistry()
	mem := &sink.Memory{}

	e, err := New(Config{Params: p, Sink: mem, Metrics: reg})
	require.NoError(t, err)
	res, err := e.Run()
	require.NoError(t, err)

	assert.Equal(t, float64(p.Iterations), counterValue(t, reg.IterationsTotal))
	assert.Equal(t, float64(res.Stable), counterValue(t, reg.StableIterationsTotal))

	inserts := counterValue(t, reg.InteractionsTotal.WithLabelValues("+"))
	deletes := counterValue(t, reg.InteractionsTotal.WithLabelValues("-"))
	assert.Equal(t, float64(len(mem.Interactions)), inserts+deletes)
}

func TestRun_Logging(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewJSONLogger(&buf, logging.InfoLevel)

	e, err := New(Config{Params: testParams(3), Sink: &sink.Memory{}, Logger: logger, RunID: "run-7"})
	require.NoError(t, err)
	_, err = e.Run()
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "network initialized")
	assert.Contains(t, out, `"run_id":"run-7"`)
	assert.Contains(t, out, `"component":"engine"`)
}

// Size 1000, average degree 6, 50 iterations, conductance 0.7, with a
// snapshot at every iteration.
func TestRun_EndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping end-to-end run in short mode")
	}

	p := testParams(50)
	p.Conductance = 0.7
	p.SnapshotAll = true
	p.OutputRoot = t.TempDir()

	fs, err := sink.NewFileSink(p.RunDir())
	require.NoError(t, err)

	e, err := New(Config{Params: p, Sink: fs, Dir: fs.Dir()})
	require.NoError(t, err)
	res, err := e.Run()
	require.NoError(t, err)

	assert.Equal(t, fs.Dir(), res.Dir)
	assert.GreaterOrEqual(t, res.Communities, 1)

	for it := 0; it <= p.Iterations; it++ {
		assert.FileExists(t, filepath.Join(res.Dir, sink.CommunitiesFile(it)))
		assert.FileExists(t, filepath.Join(res.Dir, sink.GraphFile(it)))
	}
	matches, err := filepath.Glob(filepath.Join(res.Dir, "communities-*.txt"))
	require.NoError(t, err)
	assert.Len(t, matches, p.Iterations+1)

	events, err := os.ReadFile(filepath.Join(res.Dir, sink.EventsFile))
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(events), "50\n\t"), "final event entry missing")

	for _, r := range e.Tester().Report(e.Network().Graph, e.Network().Membership) {
		if !r.Stable {
			assert.NotEmpty(t, r.Reason, "community %d", r.ID)
		}
	}
}
