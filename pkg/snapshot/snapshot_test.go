package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-rdyn/pkg/algorithms"
	"github.com/dd0wney/cluso-rdyn/pkg/sink"
)

func writeRun(t *testing.T, snaps ...sink.Snapshot) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "run")
	fs, err := sink.NewFileSink(dir)
	require.NoError(t, err)
	for _, s := range snaps {
		require.NoError(t, fs.WriteSnapshot(s))
	}
	require.NoError(t, fs.Close())
	return dir
}

func TestParseCommunity(t *testing.T) {
	tests := []struct {
		line    string
		want    sink.Community
		wantErr bool
	}{
		{line: "0\t[1, 2, 3]", want: sink.Community{ID: 0, Members: []int64{1, 2, 3}}},
		{line: "12\t[7]", want: sink.Community{ID: 12, Members: []int64{7}}},
		{line: "4\t[]", want: sink.Community{ID: 4}},
		{line: "x\t[1]", wantErr: true},
		{line: "1 [1]", wantErr: true},
		{line: "1\t1, 2", wantErr: true},
		{line: "1\t[1, b]", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := ParseCommunity(tt.line)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrMalformed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseEdge(t *testing.T) {
	e, err := ParseEdge("3\t19")
	require.NoError(t, err)
	assert.Equal(t, [2]int64{3, 19}, e)

	_, err = ParseEdge("3 19")
	require.ErrorIs(t, err, ErrMalformed)
	_, err = ParseEdge("3\tz")
	require.ErrorIs(t, err, ErrMalformed)
}

func TestRead_RoundTrip(t *testing.T) {
	snap := sink.Snapshot{
		Iteration: 7,
		Communities: []sink.Community{
			{ID: 0, Members: []int64{0, 1, 2}},
			{ID: 3, Members: []int64{3, 4}},
		},
		Edges: [][2]int64{{0, 1}, {1, 2}, {2, 3}, {3, 4}},
	}
	dir := writeRun(t, snap)

	got, err := Read(dir, 7)
	require.NoError(t, err)

	assert.Equal(t, snap.Communities, got.Communities)
	assert.Equal(t, snap.Edges, got.Graph.Edges())
	assert.Equal(t, 5, got.Graph.NodeCount())
	assert.Equal(t, 3, got.Membership.Community(4))
	require.NoError(t, got.Membership.Validate())

	due, ok := got.Graph.Expiry(2, 3)
	require.True(t, ok)
	assert.Equal(t, 7, due)
}

func TestRead_EmptyFiles(t *testing.T) {
	dir := writeRun(t, sink.Snapshot{Iteration: 0})

	got, err := Read(dir, 0)
	require.NoError(t, err)
	assert.Empty(t, got.Communities)
	assert.Equal(t, 0, got.Graph.EdgeCount())
}

func TestRead_Missing(t *testing.T) {
	_, err := Read(t.TempDir(), 3)
	require.Error(t, err)
}

func TestRead_Malformed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, sink.CommunitiesFile(1)), []byte("0\t[1, 2]\nbad line\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, sink.GraphFile(1)), nil, 0o644))

	_, err := Read(dir, 1)
	require.ErrorIs(t, err, ErrMalformed)
	assert.Contains(t, err.Error(), "communities-1.txt:2")
}

func TestBuild_DuplicateMembership(t *testing.T) {
	_, err := Build(0, []sink.Community{
		{ID: 0, Members: []int64{1, 2}},
		{ID: 1, Members: []int64{2, 3}},
	}, nil)
	require.ErrorIs(t, err, ErrMalformed)
}

func TestVerify(t *testing.T) {
	dir := writeRun(t, sink.Snapshot{
		Iteration: 2,
		Communities: []sink.Community{
			{ID: 0, Members: []int64{0, 1, 2}},
			{ID: 1, Members: []int64{3, 4, 5}},
		},
		// Community 1 has no edge between 5 and the rest.
		Edges: [][2]int64{{0, 1}, {0, 2}, {1, 2}, {2, 3}, {3, 4}},
	})

	s, err := Read(dir, 2)
	require.NoError(t, err)
	reports := s.Verify(0.7)
	require.Len(t, reports, 2)

	assert.True(t, reports[0].Stable)
	assert.False(t, reports[1].Stable)
	assert.Equal(t, algorithms.ReasonDisconnected, reports[1].Reason)
}

func TestIterations(t *testing.T) {
	dir := writeRun(t,
		sink.Snapshot{Iteration: 10},
		sink.Snapshot{Iteration: 2},
		sink.Snapshot{Iteration: 0},
	)
	its, err := Iterations(dir)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 10}, its)
}

func TestVerifyAll(t *testing.T) {
	stable := sink.Snapshot{
		Communities: []sink.Community{{ID: 0, Members: []int64{0, 1}}},
		Edges:       [][2]int64{{0, 1}},
	}
	broken := sink.Snapshot{
		Communities: []sink.Community{{ID: 0, Members: []int64{0, 1}}},
	}
	s0, s1, s2 := stable, broken, stable
	s0.Iteration, s1.Iteration, s2.Iteration = 0, 1, 2
	dir := writeRun(t, s0, s1, s2)

	checks := VerifyAll(dir, []int{0, 1, 2, 9}, 0.7, 2)
	require.Len(t, checks, 4)

	for i, want := range []int{0, 1, 2, 9} {
		assert.Equal(t, want, checks[i].Iteration)
	}
	assert.True(t, checks[0].Stable())
	assert.False(t, checks[1].Stable())
	assert.NoError(t, checks[1].Err)
	assert.True(t, checks[2].Stable())
	assert.Error(t, checks[3].Err, "iteration 9 has no files")
	assert.False(t, checks[3].Stable())
}
