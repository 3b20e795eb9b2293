package clock

import (
	"errors"
	"fmt"
)

// Sentinel error kinds, catalogued in spec.md §7.
var (
	// ErrInvalidArgument covers empty/whitespace names, non-positive
	// intervals, and invalid stop/start combinations.
	ErrInvalidArgument = errors.New("clock: invalid argument")

	// ErrDuplicateName is returned when setting a timer/alert whose name
	// already exists and no override was requested.
	ErrDuplicateName = errors.New("clock: timer name already exists")

	// ErrUnknownName is returned when cancelling a timer that does not exist.
	ErrUnknownName = errors.New("clock: unknown timer name")

	// ErrNoHandler is returned when no callback is supplied and no
	// default handler is registered.
	ErrNoHandler = errors.New("clock: no callback and no default handler registered")

	// ErrMonotonicityViolation is returned by TestClock.AdvanceTime when
	// asked to move backwards in time.
	ErrMonotonicityViolation = errors.New("clock: advance_time target precedes current time")
)

// PastTimeError is returned when a timer's first fire time precedes "now"
// and allowPast was not set. It carries both timestamps in ISO-8601 form
// per spec.md §4.3.
type PastTimeError struct {
	Name    string
	NowISO  string
	FireISO string
	NowNs   uint64
	FireNs  uint64
}

func (e *PastTimeError) Error() string {
	return fmt.Sprintf("clock: timer %q first fire %s precedes now %s", e.Name, e.FireISO, e.NowISO)
}

// Unwrap allows errors.Is(err, ErrPastTime) to succeed.
func (e *PastTimeError) Unwrap() error { return ErrPastTime }

// ErrPastTime is the sentinel wrapped by PastTimeError, for callers that
// only need the error kind.
var ErrPastTime = errors.New("clock: fire time precedes now")
