// Package registry holds the process-global component-clock registry and
// backtest force-stop flag described in spec.md §4.6: a mapping from
// instance identifier to the set of clocks belonging to that instance, and
// a single abort signal shared by an entire backtest run.
package registry

import (
	"sync"

	"github.com/meridian-systems/corebus/clock"
	"github.com/meridian-systems/corebus/ids"
)

// componentClocks is the default process-wide registry. Tests construct
// their own Registry value instead of touching this one, so runs never
// leak state into each other.
var componentClocks = New()

// Registry is a process-lifetime handle over the instance -> []Clock
// mapping and the backtest force-stop flag (spec.md §9: "represent as a
// single process-lifetime handle threaded explicitly, or a guarded
// singleton with strict init/teardown rules; tests must be able to reset
// it"). The package-level functions below operate on a default Registry;
// construct an independent one with New for isolated tests.
type Registry struct {
	mu        sync.RWMutex
	clocks    map[ids.UUID4][]clock.Clock
	forceStop bool
}

// New constructs an empty Registry.
func New() *Registry {
	return &Registry{clocks: make(map[ids.UUID4][]clock.Clock)}
}

// RegisterComponentClock associates clk with instanceID. The same clock
// value may be registered more than once; callers are responsible for not
// double-registering if that isn't wanted.
func (r *Registry) RegisterComponentClock(instanceID ids.UUID4, clk clock.Clock) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clocks[instanceID] = append(r.clocks[instanceID], clk)
}

// DeregisterComponentClock removes the first occurrence of clk from
// instanceID's clock list, by Name() equality. It is a no-op if the clock
// isn't present.
func (r *Registry) DeregisterComponentClock(instanceID ids.UUID4, clk clock.Clock) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.clocks[instanceID]
	if !ok {
		return
	}
	for i, c := range existing {
		if c.Name() == clk.Name() {
			r.clocks[instanceID] = append(existing[:i], existing[i+1:]...)
			break
		}
	}
	if len(r.clocks[instanceID]) == 0 {
		delete(r.clocks, instanceID)
	}
}

// RemoveInstanceComponentClocks deletes every clock registered under
// instanceID.
func (r *Registry) RemoveInstanceComponentClocks(instanceID ids.UUID4) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clocks, instanceID)
}

// GetComponentClocks returns a copy of instanceID's clock list, so callers
// iterating it are unaffected by a concurrent register/deregister
// (spec.md §4.6: "the copy is required so iterators are stable under
// concurrent register during iteration").
func (r *Registry) GetComponentClocks(instanceID ids.UUID4) []clock.Clock {
	r.mu.RLock()
	defer r.mu.RUnlock()
	existing := r.clocks[instanceID]
	out := make([]clock.Clock, len(existing))
	copy(out, existing)
	return out
}

// SetBacktestForceStop sets the shared abort flag. spec.md §9 notes the
// original source reassigns a module-scope global here, a nominal
// aliasing bug; this implementation treats FORCE_STOP as a single
// writable cell guarded by the same mutex as the clock map, which is the
// behavior the original evidently intended.
func (r *Registry) SetBacktestForceStop(stop bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.forceStop = stop
}

// IsBacktestForceStop reports the current value of the abort flag.
func (r *Registry) IsBacktestForceStop() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.forceStop
}

// Reset clears all registered clocks and the force-stop flag. Intended
// for test teardown against the package-level default Registry.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clocks = make(map[ids.UUID4][]clock.Clock)
	r.forceStop = false
}

// Package-level convenience wrappers over the default Registry, mirroring
// how a process normally has exactly one component-clock registry.

func RegisterComponentClock(instanceID ids.UUID4, clk clock.Clock) {
	componentClocks.RegisterComponentClock(instanceID, clk)
}

func DeregisterComponentClock(instanceID ids.UUID4, clk clock.Clock) {
	componentClocks.DeregisterComponentClock(instanceID, clk)
}

func RemoveInstanceComponentClocks(instanceID ids.UUID4) {
	componentClocks.RemoveInstanceComponentClocks(instanceID)
}

func GetComponentClocks(instanceID ids.UUID4) []clock.Clock {
	return componentClocks.GetComponentClocks(instanceID)
}

func SetBacktestForceStop(stop bool) {
	componentClocks.SetBacktestForceStop(stop)
}

func IsBacktestForceStop() bool {
	return componentClocks.IsBacktestForceStop()
}

// ResetDefault clears the package-level default Registry. Tests that rely
// on the package-level convenience functions should call this in
// cleanup to avoid leaking state across test cases.
func ResetDefault() {
	componentClocks.Reset()
}
