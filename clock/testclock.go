package clock

import (
	"sort"
	"time"
)

// TestClock is a manually advanced virtual clock. It never fires timers on
// its own: AdvanceTime returns the batch of TimeEventHandlers whose fire
// time has been reached, and the caller decides when (and whether) to
// invoke them. This is what makes backtests reproducible, per spec.md
// §4.3.1.
type TestClock struct {
	name           string
	currentNs      uint64
	timers         map[string]*timer
	defaultHandler Callback
	seq            int
}

// NewTestClock returns a TestClock starting at ns=0.
func NewTestClock(name string) *TestClock {
	return &TestClock{
		name:   name,
		timers: make(map[string]*timer),
	}
}

// Name implements Clock.
func (c *TestClock) Name() string { return c.name }

// Timestamp implements Clock.
func (c *TestClock) Timestamp() float64 { return float64(c.currentNs) / 1e9 }

// TimestampMs implements Clock.
func (c *TestClock) TimestampMs() uint64 { return c.currentNs / 1_000_000 }

// TimestampUs implements Clock.
func (c *TestClock) TimestampUs() uint64 { return c.currentNs / 1_000 }

// TimestampNs implements Clock.
func (c *TestClock) TimestampNs() uint64 { return c.currentNs }

// UTCNow implements Clock.
func (c *TestClock) UTCNow() time.Time { return time.Unix(0, int64(c.currentNs)).UTC() }

// LocalNow implements Clock.
func (c *TestClock) LocalNow(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return c.UTCNow().In(loc)
}

// RegisterDefaultHandler implements Clock.
func (c *TestClock) RegisterDefaultHandler(cb Callback) { c.defaultHandler = cb }

// SetTimeAlertNs implements Clock.
func (c *TestClock) SetTimeAlertNs(name string, alertNs uint64, cb Callback, allowPast, override bool) error {
	if err := validateName(name, c.timers, false); err != nil {
		if !(override && err == ErrDuplicateName) {
			return err
		}
	}
	resolved, err := resolveCallback(cb, c.defaultHandler)
	if err != nil {
		return err
	}
	if err := validatePastTime(name, alertNs, c.currentNs, allowPast); err != nil {
		return err
	}
	if override {
		delete(c.timers, name)
	}
	c.seq++
	c.timers[name] = &timer{
		name:      name,
		startNs:   alertNs,
		nextNs:    alertNs,
		callback:  resolved,
		allowPast: allowPast,
		seq:       c.seq,
	}
	return nil
}

// SetTimerNs implements Clock.
func (c *TestClock) SetTimerNs(name string, intervalNs, startNs, stopNs uint64, cb Callback, allowPast, fireImmediately bool) error {
	if err := validateName(name, c.timers, false); err != nil {
		return err
	}
	if intervalNs == 0 {
		return ErrInvalidArgument
	}
	if startNs == 0 {
		startNs = c.currentNs
	}
	if err := validateStopBounds(stopNs, startNs, intervalNs, c.currentNs); err != nil {
		return err
	}
	resolved, err := resolveCallback(cb, c.defaultHandler)
	if err != nil {
		return err
	}
	first := firstFireNs(startNs, intervalNs, fireImmediately)
	if err := validatePastTime(name, first, c.currentNs, allowPast); err != nil {
		return err
	}
	c.seq++
	c.timers[name] = &timer{
		name:            name,
		intervalNs:      intervalNs,
		startNs:         startNs,
		stopNs:          stopNs,
		nextNs:          first,
		callback:        resolved,
		fireImmediately: fireImmediately,
		allowPast:       allowPast,
		seq:             c.seq,
	}
	return nil
}

// NextTimeNs implements Clock.
func (c *TestClock) NextTimeNs(name string) uint64 {
	if t, ok := c.timers[name]; ok {
		return t.nextNs
	}
	return 0
}

// CancelTimer implements Clock.
func (c *TestClock) CancelTimer(name string) error {
	if err := validateName(name, c.timers, true); err != nil {
		return err
	}
	delete(c.timers, name)
	return nil
}

// CancelTimers implements Clock.
func (c *TestClock) CancelTimers() { c.timers = make(map[string]*timer) }

// TimerNames implements Clock.
func (c *TestClock) TimerNames() []string { return sortedTimerNames(c.timers) }

// TimerCount implements Clock.
func (c *TestClock) TimerCount() int { return len(c.timers) }

// SetTime sets the current time without firing any timers.
func (c *TestClock) SetTime(toNs uint64) { c.currentNs = toNs }

// AdvanceTime moves the clock forward to toNs and collects every
// TimeEventHandler for timers whose schedule fires at or before toNs.
// Requires toNs >= current time (ErrMonotonicityViolation otherwise). One
// shot alerts fire at most once and are removed. The returned slice is
// sorted by Event.TsEvent ascending, ties broken by each timer's
// insertion order. If setTime is true, the clock's current time becomes
// toNs after collection.
func (c *TestClock) AdvanceTime(toNs uint64, setTime bool) ([]TimeEventHandler, error) {
	if toNs < c.currentNs {
		return nil, ErrMonotonicityViolation
	}

	ordered := make([]*timer, 0, len(c.timers))
	for _, t := range c.timers {
		ordered = append(ordered, t)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].seq < ordered[j].seq })

	var handlers []TimeEventHandler
	var expired []string

	for _, t := range ordered {
		fireNs := t.nextNs
		for fireNs <= toNs {
			if t.stopNs != 0 && fireNs > t.stopNs {
				break
			}
			handlers = append(handlers, TimeEventHandler{
				Event:    newTimeEvent(t.name, fireNs, fireNs),
				callback: t.callback,
			})
			if t.isAlert() {
				expired = append(expired, t.name)
				break
			}
			fireNs += t.intervalNs
		}
		t.nextNs = fireNs
	}

	for _, name := range expired {
		delete(c.timers, name)
	}

	if setTime {
		c.currentNs = toNs
	}

	sort.SliceStable(handlers, func(i, j int) bool { return handlers[i].Less(handlers[j]) })
	return handlers, nil
}
