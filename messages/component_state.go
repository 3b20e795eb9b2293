// Package messages provides the illustrative ShutdownSystem command and
// ComponentStateChanged event named in spec.md §1 as pure data records —
// they carry no behavior of their own and exist only to exercise the
// base id/ts_init/ts_event/correlation_id shape a real command/event
// would have, without pulling in the Serializer or base message types
// spec.md explicitly keeps out of scope.
package messages

import "github.com/meridian-systems/corebus/ids"

// ComponentState enumerates a component's lifecycle states. Values
// serialise as their uppercase name, per spec.md §6.
type ComponentState int

const (
	PreInitialized ComponentState = iota
	Ready
	Starting
	Running
	Stopping
	Stopped
	Resuming
	Degrading
	Degraded
	Faulting
	Faulted
	Disposing
	Disposed
)

var componentStateNames = [...]string{
	"PRE_INITIALIZED",
	"READY",
	"STARTING",
	"RUNNING",
	"STOPPING",
	"STOPPED",
	"RESUMING",
	"DEGRADING",
	"DEGRADED",
	"FAULTING",
	"FAULTED",
	"DISPOSING",
	"DISPOSED",
}

// String returns the uppercase serialised name.
func (s ComponentState) String() string {
	if s < 0 || int(s) >= len(componentStateNames) {
		return "UNKNOWN"
	}
	return componentStateNames[s]
}

// MarshalText implements encoding.TextMarshaler, so ComponentState
// round-trips through JSON/TOML/YAML as its uppercase name rather than
// its underlying int value.
func (s ComponentState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *ComponentState) UnmarshalText(text []byte) error {
	name := string(text)
	for i, n := range componentStateNames {
		if n == name {
			*s = ComponentState(i)
			return nil
		}
	}
	return ErrUnknownComponentState
}
