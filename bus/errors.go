package bus

import "errors"

// Sentinel error kinds, catalogued in spec.md §7.
var (
	// ErrInvalidArgument covers empty topics/endpoints and nil handlers.
	ErrInvalidArgument = errors.New("bus: invalid argument")

	// ErrDuplicateEndpoint is returned when registering over an existing endpoint.
	ErrDuplicateEndpoint = errors.New("bus: endpoint already registered")

	// ErrUnknownEndpoint is returned when deregistering a non-existent endpoint.
	ErrUnknownEndpoint = errors.New("bus: unknown endpoint")

	// ErrHandlerMismatch is returned when deregistering with the wrong handler.
	ErrHandlerMismatch = errors.New("bus: handler does not match registered endpoint")
)
