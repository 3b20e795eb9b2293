package messages

import "github.com/meridian-systems/corebus/ids"

// ShutdownSystem is the illustrative command data record from spec.md §1:
// an opaque payload carrying the base id/ts_init fields plus an optional
// correlation id, and nothing else. It has no behavior beyond being a
// plain value passed through bus.Send/bus.Request.
type ShutdownSystem struct {
	ID            ids.UUID4  `json:"id"`
	TsInit        uint64     `json:"tsInit"`
	CorrelationID *ids.UUID4 `json:"correlationId,omitempty"`
	Reason        string     `json:"reason"`
}

// ComponentStateChanged is the illustrative event data record from
// spec.md §1: a plain notification that instance InstanceID transitioned
// From one ComponentState to To at TsEvent/TsInit.
type ComponentStateChanged struct {
	ID            ids.UUID4      `json:"id"`
	TsEvent       uint64         `json:"tsEvent"`
	TsInit        uint64         `json:"tsInit"`
	CorrelationID *ids.UUID4     `json:"correlationId,omitempty"`
	InstanceID    ids.UUID4      `json:"instanceId"`
	From          ComponentState `json:"from"`
	To            ComponentState `json:"to"`
}
