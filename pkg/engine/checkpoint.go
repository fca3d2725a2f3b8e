package engine

import (
	"fmt"
	"slices"

	"github.com/dd0wney/cluso-rdyn/pkg/events"
	"github.com/dd0wney/cluso-rdyn/pkg/logging"
	"github.com/dd0wney/cluso-rdyn/pkg/sink"
)

// checkpoint runs at an iteration where every community is stable. The
// snapshot is taken before the event batch is applied; the event log
// entry written here carries the actions of the previous checkpoint.
func (e *Engine) checkpoint(it int) error {
	e.stable++

	if err := e.snapshot(it); err != nil {
		return err
	}

	entry := sink.EventEntry{Iteration: it, Kind: sink.EntryCheckpoint, Actions: e.pending}
	if !e.started {
		entry = sink.EventEntry{Iteration: it, Kind: sink.EntryStart}
		e.started = true
	}
	if err := e.sink.WriteEvent(entry); err != nil {
		return fmt.Errorf("write event entry: %w", err)
	}

	batch := e.events.Generate(e.net)
	e.pending = nil
	for _, slot := range batch.Slots {
		e.metrics.RecordCommunityEvent(string(slot.Kind), string(slot.Outcome))
		if slot.Action == nil {
			e.logger.Debug("community event not applied",
				logging.Iteration(it), logging.String("kind", string(slot.Kind)),
				logging.String("outcome", string(slot.Outcome)))
			continue
		}
		e.pending = append(e.pending, slot.Action.String())
		e.logEvent(it, slot.Action)
	}

	if err := e.sink.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

func (e *Engine) logEvent(it int, a *events.Action) {
	e.logger.Info("community event",
		logging.Iteration(it),
		logging.String("kind", string(a.Kind)),
		logging.Community(a.Target),
		logging.Int("source", a.Source),
		logging.Int("moved", a.Moved),
		logging.Int("communities", e.net.Membership.Len()))
}

// snapshot writes the communities, in ascending id order, and the live
// edges as of the start of iteration it.
func (e *Engine) snapshot(it int) error {
	m := e.net.Membership
	ids := m.IDs()
	snap := sink.Snapshot{
		Iteration:   it,
		Communities: make([]sink.Community, 0, len(ids)),
		Edges:       e.net.Graph.Edges(),
	}
	for _, cid := range ids {
		snap.Communities = append(snap.Communities, sink.Community{ID: cid, Members: slices.Clone(m.Members(cid))})
	}
	if err := e.sink.WriteSnapshot(snap); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

func finalEntry(it int, actions []string) sink.EventEntry {
	return sink.EventEntry{Iteration: it, Kind: sink.EntryFinal, Actions: actions}
}
