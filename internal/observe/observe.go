// Package observe carries structured pipeline events from the standardization
// core to whoever is watching. Core packages never log; they emit Events to an
// Observer handed to them at construction.
package observe

import (
	"sync"
	"time"
)

// Kind identifies the type of an Event.
type Kind string

const (
	MappingDecided    Kind = "mapping_decided"
	MappingConflict   Kind = "mapping_conflict"
	CombinedDetected  Kind = "combined_detected"
	StrategyAttempted Kind = "strategy_attempted"
	RecordQualified   Kind = "record_qualified"
	TableCompleted    Kind = "table_completed"
	TableFailed       Kind = "table_failed"
)

// Event is a single structured observation. Only the fields relevant to the
// Kind are populated.
type Event struct {
	Kind  Kind
	Table string
	Row   int

	// Mapping events
	Field  string
	Column string
	Method string
	Score  int

	// Parser events
	Parser   string
	Strategy string
	Valid    bool

	// Qualification events
	Qualified bool
	Reasons   []string

	// Table events
	Rows     int
	Duration time.Duration
	Err      error
}

// Where identifies the record an event is about.
type Where struct {
	Table string
	Row   int
}

// Observer receives events. Implementations must be safe for concurrent use
// because tables may be processed in parallel.
type Observer interface {
	Observe(Event)
}

// Func adapts a plain function to the Observer interface.
type Func func(Event)

// Observe calls f(e).
func (f Func) Observe(e Event) { f(e) }

type nop struct{}

func (nop) Observe(Event) {}

// Nop returns an Observer that discards everything.
func Nop() Observer { return nop{} }

// OrNop returns o, or Nop when o is nil.
func OrNop(o Observer) Observer {
	if o == nil {
		return nop{}
	}
	return o
}

// Recorder keeps every event in memory. Used by tests and the parse CLI.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Observe appends e.
func (r *Recorder) Observe(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// OfKind returns the recorded events with the given kind, in arrival order.
func (r *Recorder) OfKind(k Kind) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Kind == k {
			out = append(out, e)
		}
	}
	return out
}
