// Package snapshot loads the per-iteration community and edge list files
// of a finished run and re-checks them.
package snapshot

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/exp/mmap"

	"github.com/dd0wney/cluso-rdyn/pkg/algorithms"
	"github.com/dd0wney/cluso-rdyn/pkg/dyngraph"
	"github.com/dd0wney/cluso-rdyn/pkg/sink"
)

// ErrMalformed is returned for lines that do not parse.
var ErrMalformed = errors.New("malformed snapshot")

// Snapshot is the network rebuilt from one iteration's files.
type Snapshot struct {
	Iteration   int
	Communities []sink.Community
	Graph       *dyngraph.Graph
	Membership  *dyngraph.Membership
}

// Read loads communities-{it}.txt and graph-{it}.txt from dir.
func Read(dir string, it int) (*Snapshot, error) {
	var communities []sink.Community
	err := scanFile(filepath.Join(dir, sink.CommunitiesFile(it)), func(line string) error {
		c, err := ParseCommunity(line)
		if err != nil {
			return err
		}
		communities = append(communities, c)
		return nil
	})
	if err != nil {
		return nil, err
	}

	var edges [][2]int64
	err = scanFile(filepath.Join(dir, sink.GraphFile(it)), func(line string) error {
		e, err := ParseEdge(line)
		if err != nil {
			return err
		}
		edges = append(edges, e)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return Build(it, communities, edges)
}

// Build assembles a graph and membership from parsed records. Edge expiry
// is set to the snapshot iteration.
func Build(it int, communities []sink.Community, edges [][2]int64) (*Snapshot, error) {
	g := dyngraph.New(0)
	m := dyngraph.NewMembership()

	for _, c := range communities {
		if m.Has(c.ID) {
			return nil, fmt.Errorf("%w: community %d listed twice", ErrMalformed, c.ID)
		}
		m.Ensure(c.ID)
		for _, n := range c.Members {
			if m.Community(n) != dyngraph.Removed {
				return nil, fmt.Errorf("%w: node %d in communities %d and %d", ErrMalformed, n, m.Community(n), c.ID)
			}
			g.AddNode(n)
			m.Assign(n, c.ID)
		}
	}
	for _, e := range edges {
		g.AddNode(e[0])
		g.AddNode(e[1])
		g.AddEdge(e[0], e[1], it)
	}

	return &Snapshot{Iteration: it, Communities: communities, Graph: g, Membership: m}, nil
}

// Verify runs the stability test over every community of s.
func (s *Snapshot) Verify(conductance float64) []algorithms.CommunityReport {
	return algorithms.NewStabilityTester(conductance).Report(s.Graph, s.Membership)
}

// Iterations lists the iterations with a community snapshot in dir, ascending.
func Iterations(dir string) ([]int, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "communities-*.txt"))
	if err != nil {
		return nil, err
	}
	its := make([]int, 0, len(matches))
	for _, path := range matches {
		name := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(path), "communities-"), ".txt")
		it, err := strconv.Atoi(name)
		if err != nil {
			continue
		}
		its = append(its, it)
	}
	slices.Sort(its)
	return its, nil
}

// ParseCommunity parses "{id}\t[m1, m2, ...]".
func ParseCommunity(line string) (sink.Community, error) {
	idPart, list, ok := strings.Cut(line, "\t")
	if !ok {
		return sink.Community{}, fmt.Errorf("%w: %q", ErrMalformed, line)
	}
	id, err := strconv.Atoi(idPart)
	if err != nil {
		return sink.Community{}, fmt.Errorf("%w: community id %q", ErrMalformed, idPart)
	}

	list = strings.TrimSpace(list)
	if !strings.HasPrefix(list, "[") || !strings.HasSuffix(list, "]") {
		return sink.Community{}, fmt.Errorf("%w: member list %q", ErrMalformed, list)
	}
	list = strings.TrimSpace(list[1 : len(list)-1])

	c := sink.Community{ID: id}
	if list == "" {
		return c, nil
	}
	for _, field := range strings.Split(list, ",") {
		n, err := strconv.ParseInt(strings.TrimSpace(field), 10, 64)
		if err != nil {
			return sink.Community{}, fmt.Errorf("%w: member %q", ErrMalformed, field)
		}
		c.Members = append(c.Members, n)
	}
	return c, nil
}

// ParseEdge parses "{u}\t{v}".
func ParseEdge(line string) ([2]int64, error) {
	a, b, ok := strings.Cut(line, "\t")
	if !ok {
		return [2]int64{}, fmt.Errorf("%w: %q", ErrMalformed, line)
	}
	u, err := strconv.ParseInt(a, 10, 64)
	if err != nil {
		return [2]int64{}, fmt.Errorf("%w: node %q", ErrMalformed, a)
	}
	v, err := strconv.ParseInt(strings.TrimSpace(b), 10, 64)
	if err != nil {
		return [2]int64{}, fmt.Errorf("%w: node %q", ErrMalformed, b)
	}
	return [2]int64{u, v}, nil
}

// scanFile maps path into memory and calls fn for every non-empty line.
func scanFile(path string, fn func(string) error) error {
	r, err := mmap.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer r.Close()

	sc := bufio.NewScanner(io.NewSectionReader(r, 0, int64(r.Len())))
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if text == "" {
			continue
		}
		if err := fn(text); err != nil {
			return fmt.Errorf("%s:%d: %w", filepath.Base(path), line, err)
		}
	}
	return sc.Err()
}
