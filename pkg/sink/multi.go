package sink

import "errors"

// Multi fans records out to several sinks. Every sink sees every record
// even when an earlier one fails; the failures are joined.
type Multi []Sink

func (m Multi) WriteInteraction(i Interaction) error {
	return m.each(func(s Sink) error { return s.WriteInteraction(i) })
}

func (m Multi) WriteEvent(e EventEntry) error {
	return m.each(func(s Sink) error { return s.WriteEvent(e) })
}

func (m Multi) WriteSnapshot(snap Snapshot) error {
	return m.each(func(s Sink) error { return s.WriteSnapshot(snap) })
}

func (m Multi) Flush() error {
	return m.each(Sink.Flush)
}

func (m Multi) Close() error {
	return m.each(Sink.Close)
}

func (m Multi) each(fn func(Sink) error) error {
	var errs []error
	for _, s := range m {
		if err := fn(s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
