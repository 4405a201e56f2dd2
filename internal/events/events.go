// Package events defines the simulation event stream: every observable
// state change is emitted as a typed event through a Sink, so logging,
// recording, and tests all consume the same feed.
package events

import (
	"github.com/elektrokombinacija/progmatter/internal/core"
)

// Type classifies a simulation event.
type Type int

const (
	TypeStarted Type = iota
	TypeAssigned
	TypePathPlanned
	TypeMoved
	TypeDisplaced
	TypeDeadlockDetected
	TypeDeadlockResolved
	TypeReassigned
	TypeRestarted
	TypeTerminated
	TypeReset
)

func (t Type) String() string {
	return [...]string{
		"started", "assigned", "path_planned", "moved", "displaced",
		"deadlock_detected", "deadlock_resolved", "reassigned",
		"restarted", "terminated", "reset",
	}[t]
}

// Event is a single observable state change. Agent is -1 for events not
// tied to one agent. From and To carry positions for movement events; for
// assignments To is the goal cell.
type Event struct {
	Seq    int
	Tick   int
	Type   Type
	Agent  int
	From   core.Pos
	To     core.Pos
	Detail string
}

// Sink consumes events in emission order.
type Sink interface {
	Emit(e Event)
}

// Collector buffers every event it receives. Tests inspect the buffer.
type Collector struct {
	Events []Event
}

func (c *Collector) Emit(e Event) {
	c.Events = append(c.Events, e)
}

// ByType returns the collected events of one type, in order.
func (c *Collector) ByType(t Type) []Event {
	var out []Event
	for _, e := range c.Events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// Count returns how many events of one type were collected.
func (c *Collector) Count(t Type) int {
	n := 0
	for _, e := range c.Events {
		if e.Type == t {
			n++
		}
	}
	return n
}

// Multi fans one event out to several sinks.
type Multi []Sink

func (m Multi) Emit(e Event) {
	for _, s := range m {
		s.Emit(e)
	}
}

// Discard drops every event.
type Discard struct{}

func (Discard) Emit(Event) {}
