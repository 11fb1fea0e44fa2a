package value

import (
	"github.com/wippyai/concat-runtime/concat"
)

// EventType identifies a lifecycle event.
type EventType uint8

const (
	EventCoerced EventType = iota
	EventDisposed
	EventAdopted
	EventAllocated
	EventGrown
	EventFinalized
	EventDropped
)

func (t EventType) String() string {
	switch t {
	case EventCoerced:
		return "coerced"
	case EventDisposed:
		return "disposed"
	case EventAdopted:
		return "adopted"
	case EventAllocated:
		return "allocated"
	case EventGrown:
		return "grown"
	case EventFinalized:
		return "finalized"
	case EventDropped:
		return "dropped"
	default:
		return "unknown"
	}
}

// Event describes one buffer lifecycle step.
type Event struct {
	Ref  concat.Ref
	Ptr  uint32
	Size uint32
	Type EventType
}

// Observer receives store lifecycle events.
type Observer interface {
	OnValueEvent(Event)
}

// Counter tallies events by type.
type Counter struct {
	counts [EventDropped + 1]uint64
}

// OnValueEvent implements Observer.
func (c *Counter) OnValueEvent(e Event) {
	if int(e.Type) < len(c.counts) {
		c.counts[e.Type]++
	}
}

// Count returns how many events of type t were seen.
func (c *Counter) Count(t EventType) uint64 {
	if int(t) >= len(c.counts) {
		return 0
	}
	return c.counts[t]
}

// Outstanding returns coerced copies neither disposed nor adopted.
func (c *Counter) Outstanding() int64 {
	return int64(c.counts[EventCoerced]) - int64(c.counts[EventDisposed]) - int64(c.counts[EventAdopted])
}

// Reset zeroes all counts.
func (c *Counter) Reset() {
	c.counts = [EventDropped + 1]uint64{}
}
