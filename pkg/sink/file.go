package sink

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	InteractionsFile = "interactions.txt"
	EventsFile       = "events.txt"
)

// CommunitiesFile names the community snapshot of iteration it.
func CommunitiesFile(it int) string {
	return fmt.Sprintf("communities-%d.txt", it)
}

// GraphFile names the edge list snapshot of iteration it.
func GraphFile(it int) string {
	return fmt.Sprintf("graph-%d.txt", it)
}

// FileSink writes a run into a directory of flat text files.
type FileSink struct {
	dir          string
	interactions *os.File
	events       *os.File
	iw           *bufio.Writer
	ew           *bufio.Writer
}

// NewFileSink creates dir, which must not exist yet, and opens the
// interaction and event logs inside it. Missing parents are created.
func NewFileSink(dir string) (*FileSink, error) {
	if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output root: %w", err)
	}
	if err := os.Mkdir(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create run directory: %w", err)
	}

	interactions, err := os.Create(filepath.Join(dir, InteractionsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to create interaction log: %w", err)
	}
	events, err := os.Create(filepath.Join(dir, EventsFile))
	if err != nil {
		interactions.Close()
		return nil, fmt.Errorf("failed to create event log: %w", err)
	}

	return &FileSink{
		dir:          dir,
		interactions: interactions,
		events:       events,
		iw:           bufio.NewWriter(interactions),
		ew:           bufio.NewWriter(events),
	}, nil
}

// Dir returns the run directory.
func (s *FileSink) Dir() string {
	return s.dir
}

func (s *FileSink) WriteInteraction(i Interaction) error {
	if _, err := s.iw.WriteString(i.String()); err != nil {
		return err
	}
	return s.iw.WriteByte('\n')
}

func (s *FileSink) WriteEvent(e EventEntry) error {
	_, err := s.ew.WriteString(e.String())
	return err
}

// WriteSnapshot writes the community and edge list files of one iteration.
func (s *FileSink) WriteSnapshot(snap Snapshot) error {
	err := writeLines(filepath.Join(s.dir, CommunitiesFile(snap.Iteration)), len(snap.Communities), func(w *bufio.Writer, i int) error {
		_, err := w.WriteString(snap.Communities[i].String())
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to write communities for iteration %d: %w", snap.Iteration, err)
	}

	err = writeLines(filepath.Join(s.dir, GraphFile(snap.Iteration)), len(snap.Edges), func(w *bufio.Writer, i int) error {
		_, err := fmt.Fprintf(w, "%d\t%d", snap.Edges[i][0], snap.Edges[i][1])
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to write graph for iteration %d: %w", snap.Iteration, err)
	}
	return nil
}

func (s *FileSink) Flush() error {
	return errors.Join(s.iw.Flush(), s.ew.Flush())
}

// Close flushes and closes both logs.
func (s *FileSink) Close() error {
	return errors.Join(
		s.iw.Flush(),
		s.ew.Flush(),
		s.interactions.Close(),
		s.events.Close(),
	)
}

func writeLines(path string, n int, line func(*bufio.Writer, int) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	for i := 0; i < n; i++ {
		if err := line(w, i); err != nil {
			f.Close()
			return err
		}
		if err := w.WriteByte('\n'); err != nil {
			f.Close()
			return err
		}
	}
	return errors.Join(w.Flush(), f.Close())
}
