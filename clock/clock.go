// Package clock implements the dual-mode monotonic clock described in
// spec.md §4.3: a polymorphic Clock contract with two variants, TestClock
// (deterministic, explicitly advanced) and LiveClock (wall-clock driven).
package clock

import (
	"sort"
	"strings"
	"time"

	"github.com/meridian-systems/corebus/xtime"
)

// Clock is the capability set shared by TestClock and LiveClock. Callers
// that don't care which time source backs a component should depend on
// this interface, the way spec.md §9 maps the original's abstract base
// class to a small Go interface.
type Clock interface {
	// Name identifies this clock instance for logging/introspection; it
	// carries no semantic weight for timer scheduling.
	Name() string

	Timestamp() float64
	TimestampMs() uint64
	TimestampUs() uint64
	TimestampNs() uint64
	UTCNow() time.Time
	LocalNow(loc *time.Location) time.Time

	// RegisterDefaultHandler installs the callback used by timers set
	// without one of their own. Last writer wins.
	RegisterDefaultHandler(cb Callback)

	// SetTimeAlertNs installs a one-shot alert firing at alertNs. If
	// override is true, any existing timer with the same name is
	// cancelled first; otherwise a duplicate name fails.
	SetTimeAlertNs(name string, alertNs uint64, cb Callback, allowPast, override bool) error

	// SetTimerNs installs a recurring timer. startNs == 0 substitutes
	// "now". stopNs == 0 means indefinite.
	SetTimerNs(name string, intervalNs, startNs, stopNs uint64, cb Callback, allowPast, fireImmediately bool) error

	// NextTimeNs returns the next scheduled fire time for name, or 0 if
	// no such timer exists.
	NextTimeNs(name string) uint64

	// CancelTimer removes the named timer. Returns ErrUnknownName if it
	// does not exist.
	CancelTimer(name string) error

	// CancelTimers removes every timer on this clock.
	CancelTimers()

	// TimerNames returns the names of all active timers, sorted.
	TimerNames() []string

	// TimerCount returns the number of active timers.
	TimerCount() int
}

// timer is the internal representation shared by TestClock and LiveClock.
// intervalNs == 0 marks a one-shot alert.
type timer struct {
	name            string
	intervalNs      uint64
	startNs         uint64
	stopNs          uint64
	nextNs          uint64
	callback        Callback
	fireImmediately bool
	allowPast       bool
	seq             int    // insertion order, used as a stable tie-break
	cancel          func() // non-nil only for LiveClock's scheduler task
}

func (t *timer) isAlert() bool { return t.intervalNs == 0 }

// firstFireNs computes the timer's first scheduled fire time.
func firstFireNs(startNs, intervalNs uint64, fireImmediately bool) uint64 {
	if fireImmediately {
		return startNs
	}
	return startNs + intervalNs
}

// validateName enforces the "name non-empty, and not already present for
// set operations; must be present for cancel" rule.
func validateName(name string, existing map[string]*timer, mustExist bool) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidArgument
	}
	_, present := existing[name]
	if mustExist && !present {
		return ErrUnknownName
	}
	if !mustExist && present {
		return ErrDuplicateName
	}
	return nil
}

// validateStopBounds enforces: if stopNs != 0, stopNs > now and
// startNs+intervalNs <= stopNs.
func validateStopBounds(stopNs, startNs, intervalNs, nowNs uint64) error {
	if stopNs == 0 {
		return nil
	}
	if stopNs <= nowNs {
		return ErrInvalidArgument
	}
	if startNs+intervalNs > stopNs {
		return ErrInvalidArgument
	}
	return nil
}

// validatePastTime enforces the allow_past policy, returning a
// *PastTimeError carrying both ISO timestamps on violation.
func validatePastTime(name string, fireNs, nowNs uint64, allowPast bool) error {
	if allowPast || fireNs >= nowNs {
		return nil
	}
	return &PastTimeError{
		Name:    name,
		NowNs:   nowNs,
		FireNs:  fireNs,
		NowISO:  xtime.UnixNanosToISO8601(nowNs, true),
		FireISO: xtime.UnixNanosToISO8601(fireNs, true),
	}
}

// resolveCallback applies the "no callback => default handler, else fail"
// rule from spec.md §4.3.
func resolveCallback(cb, defaultHandler Callback) (Callback, error) {
	if cb != nil {
		return cb, nil
	}
	if defaultHandler != nil {
		return defaultHandler, nil
	}
	return nil, ErrNoHandler
}

// sortedTimerNames returns the sorted key list of a name->timer map.
func sortedTimerNames(m map[string]*timer) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
