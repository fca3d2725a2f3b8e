package sink

// Memory keeps every record in memory.
type Memory struct {
	Interactions []Interaction
	Events       []EventEntry
	Snapshots    []Snapshot
	Flushes      int
	Closed       bool
}

func (m *Memory) WriteInteraction(i Interaction) error {
	m.Interactions = append(m.Interactions, i)
	return nil
}

func (m *Memory) WriteEvent(e EventEntry) error {
	m.Events = append(m.Events, e)
	return nil
}

func (m *Memory) WriteSnapshot(s Snapshot) error {
	m.Snapshots = append(m.Snapshots, s)
	return nil
}

func (m *Memory) Flush() error {
	m.Flushes++
	return nil
}

func (m *Memory) Close() error {
	m.Closed = true
	return nil
}
