package events

import "fmt"

// Kind is the type of a community mutation.
type Kind string

const (
	Merge Kind = "merge"
	Split Kind = "split"
)

// Outcome says what happened to one event slot.
type Outcome string

const (
	// Applied means the mutation was committed.
	Applied Outcome = "applied"
	// Skipped means the slot's preconditions ruled it out (a single
	// community, or a split target with too few members).
	Skipped Outcome = "skipped"
	// NoCandidates means weighted candidate sampling could not pick enough
	// distinct communities.
	NoCandidates Outcome = "no_candidates"
)

// Action is a committed merge or split.
type Action struct {
	Kind Kind
	// Merge: Target absorbed Source. Split: Source lost Moved members to Target.
	Source int
	Target int
	Moved  int
}

// String renders the action as an event log line.
func (a Action) String() string {
	if a.Kind == Merge {
		return fmt.Sprintf("MERGE\t[%d %d]", a.Target, a.Source)
	}
	return fmt.Sprintf("SPLIT\t%d\t[%d, %d]", a.Source, a.Source, a.Target)
}

// Slot is the result of one drawn event.
type Slot struct {
	Kind    Kind
	Outcome Outcome
	Action  *Action
}

// Batch is everything one checkpoint produced.
type Batch struct {
	Slots []Slot
}

// Actions returns the committed actions in slot order.
func (b Batch) Actions() []Action {
	var out []Action
	for _, s := range b.Slots {
		if s.Action != nil {
			out = append(out, *s.Action)
		}
	}
	return out
}
