// Package sink receives the records a run produces: edge interactions,
// community event entries and per-iteration snapshots.
package sink

import (
	"fmt"
	"strconv"
	"strings"
)

// Op marks an interaction as an edge insertion or removal.
type Op byte

const (
	Insert Op = '+'
	Delete Op = '-'
)

func (o Op) String() string {
	return string(o)
}

// Interaction is one edge insertion or removal.
type Interaction struct {
	Iteration int
	Seq       int
	Op        Op
	U, V      int64
}

// String renders the interaction log line without its newline.
func (i Interaction) String() string {
	return fmt.Sprintf("%d\t%d\t%c\t%d\t%d", i.Iteration, i.Seq, byte(i.Op), i.U, i.V)
}

// EntryKind distinguishes event log blocks.
type EntryKind int

const (
	// EntryStart is written at the first stability checkpoint.
	EntryStart EntryKind = iota
	// EntryCheckpoint is written at every later checkpoint and carries the
	// actions committed at the previous one.
	EntryCheckpoint
	// EntryFinal closes the log after the last iteration.
	EntryFinal
)

// EventEntry is one block of the event log.
type EventEntry struct {
	Iteration int
	Kind      EntryKind
	Actions   []string
}

// String renders the block, trailing newlines included.
func (e EventEntry) String() string {
	var b strings.Builder
	switch e.Kind {
	case EntryStart:
		fmt.Fprintf(&b, "%d:\tSTART\n", e.Iteration)
	case EntryCheckpoint:
		fmt.Fprintf(&b, "%d:\n", e.Iteration)
		for _, a := range e.Actions {
			b.WriteString(a)
			b.WriteByte('\n')
		}
	case EntryFinal:
		fmt.Fprintf(&b, "%d\n\t", e.Iteration)
		for _, a := range e.Actions {
			b.WriteString(a)
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Community is one community of a snapshot.
type Community struct {
	ID      int
	Members []int64
}

// String renders "{id}\t[m1, m2, ...]".
func (c Community) String() string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(c.ID))
	b.WriteString("\t[")
	for i, m := range c.Members {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.FormatInt(m, 10))
	}
	b.WriteByte(']')
	return b.String()
}

// Snapshot is the state of the network at one iteration. Communities are
// in ascending id order and Edges are (low, high) pairs, sorted.
type Snapshot struct {
	Iteration   int
	Communities []Community
	Edges       [][2]int64
}

// Sink consumes run records. Implementations may buffer until Flush.
type Sink interface {
	WriteInteraction(Interaction) error
	WriteEvent(EventEntry) error
	WriteSnapshot(Snapshot) error
	Flush() error
	Close() error
}
