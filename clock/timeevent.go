package clock

import (
	"github.com/meridian-systems/corebus/ids"
	"github.com/meridian-systems/corebus/xtime"
)

// TimeEvent is the record produced by a timer fire. Equality is by
// EventID; ordering (for TimeEventHandler) is by TsEvent.
type TimeEvent struct {
	Name    string
	EventID ids.UUID4
	TsEvent uint64 // nanoseconds since UNIX epoch, when the event logically occurred
	TsInit  uint64 // nanoseconds since UNIX epoch, when the event record was created
}

// Equals reports equality by EventID, per spec.md §3.
func (e TimeEvent) Equals(other TimeEvent) bool { return e.EventID.Equals(other.EventID) }

// ISO8601 renders TsEvent with nanosecond precision.
func (e TimeEvent) ISO8601() string { return xtime.UnixNanosToISO8601(e.TsEvent, true) }

// newTimeEvent mints a fresh TimeEvent with a new random EventID.
func newTimeEvent(name string, tsEvent, tsInit uint64) TimeEvent {
	return TimeEvent{
		Name:    name,
		EventID: ids.NewUUID4(),
		TsEvent: tsEvent,
		TsInit:  tsInit,
	}
}

// Callback is invoked with a fired TimeEvent, either as a timer-specific
// callback or the clock's default handler.
type Callback func(TimeEvent)

// TimeEventHandler pairs a fired TimeEvent with the callback that should
// consume it. Ordering is by Event.TsEvent ascending; Handle invokes the
// callback exactly once.
type TimeEventHandler struct {
	Event    TimeEvent
	callback Callback
}

// Handle invokes the bound callback with the event exactly once.
func (h TimeEventHandler) Handle() {
	if h.callback != nil {
		h.callback(h.Event)
	}
}

// Less orders handlers by Event.TsEvent ascending, the ordering
// TestClock.AdvanceTime and LiveClock delivery must respect.
func (h TimeEventHandler) Less(other TimeEventHandler) bool {
	return h.Event.TsEvent < other.Event.TsEvent
}
