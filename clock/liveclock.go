package clock

import (
	"context"
	"sync"
	"time"

	"github.com/meridian-systems/corebus/config"
	"github.com/meridian-systems/corebus/logging"
)

// LiveClock is wall-clock backed. Each active timer owns an asynchronous
// task that sleeps until its next fire time, invokes the bound (or
// default) callback with a freshly minted TimeEvent, then reschedules
// until stopNs or cancellation, per spec.md §4.3.2.
type LiveClock struct {
	mu             sync.Mutex
	name           string
	timers         map[string]*timer
	defaultHandler Callback
	seq            int
	logger         logging.Logger
	resolution     time.Duration
}

// LiveClockOption configures a LiveClock at construction, following the
// functional-options idiom used by the teacher's Scheduler.
type LiveClockOption func(*LiveClock)

// WithLogger attaches a Logger for timer lifecycle diagnostics.
func WithLogger(l logging.Logger) LiveClockOption {
	return func(c *LiveClock) { c.logger = logging.OrNoOp(l) }
}

// WithResolution records the nominal scheduling resolution for
// introspection; it does not change sleep granularity, which is governed
// by the host's monotonic clock.
func WithResolution(d time.Duration) LiveClockOption {
	return func(c *LiveClock) {
		if d > 0 {
			c.resolution = d
		}
	}
}

// WithClockConfig applies cfg.ResolutionMs as the nominal scheduling
// resolution, threading config.ClockConfig into LiveClock construction.
func WithClockConfig(cfg config.ClockConfig) LiveClockOption {
	return WithResolution(time.Duration(cfg.ResolutionMs) * time.Millisecond)
}

// NewLiveClock constructs a LiveClock reading the host's wall clock.
func NewLiveClock(name string, opts ...LiveClockOption) *LiveClock {
	c := &LiveClock{
		name:       name,
		timers:     make(map[string]*timer),
		logger:     logging.NoOp(),
		resolution: time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name implements Clock.
func (c *LiveClock) Name() string { return c.name }

// Resolution returns the nominal scheduling resolution (introspection only).
func (c *LiveClock) Resolution() time.Duration { return c.resolution }

func (c *LiveClock) nowNs() uint64 { return uint64(time.Now().UnixNano()) }

// Timestamp implements Clock.
func (c *LiveClock) Timestamp() float64 { return float64(c.nowNs()) / 1e9 }

// TimestampMs implements Clock.
func (c *LiveClock) TimestampMs() uint64 { return c.nowNs() / 1_000_000 }

// TimestampUs implements Clock.
func (c *LiveClock) TimestampUs() uint64 { return c.nowNs() / 1_000 }

// TimestampNs implements Clock.
func (c *LiveClock) TimestampNs() uint64 { return c.nowNs() }

// UTCNow implements Clock.
func (c *LiveClock) UTCNow() time.Time { return time.Now().UTC() }

// LocalNow implements Clock.
func (c *LiveClock) LocalNow(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Now().In(loc)
}

// RegisterDefaultHandler implements Clock.
func (c *LiveClock) RegisterDefaultHandler(cb Callback) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.defaultHandler = cb
}

// SetTimeAlertNs implements Clock.
func (c *LiveClock) SetTimeAlertNs(name string, alertNs uint64, cb Callback, allowPast, override bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := validateName(name, c.timers, false); err != nil {
		if !(override && err == ErrDuplicateName) {
			return err
		}
	}
	resolved, err := resolveCallback(cb, c.defaultHandler)
	if err != nil {
		return err
	}
	now := c.nowNs()
	fireNs := alertNs
	if allowPast && fireNs < now {
		fireNs = now
	}
	if err := validatePastTime(name, fireNs, now, allowPast); err != nil {
		return err
	}

	if override {
		c.cancelLocked(name)
	}

	c.seq++
	t := &timer{name: name, startNs: alertNs, nextNs: fireNs, callback: resolved, allowPast: allowPast, seq: c.seq}
	c.timers[name] = t
	c.spawn(t)
	return nil
}

// SetTimerNs implements Clock.
func (c *LiveClock) SetTimerNs(name string, intervalNs, startNs, stopNs uint64, cb Callback, allowPast, fireImmediately bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := validateName(name, c.timers, false); err != nil {
		return err
	}
	if intervalNs == 0 {
		return ErrInvalidArgument
	}
	now := c.nowNs()
	if startNs == 0 {
		startNs = now
	}
	if err := validateStopBounds(stopNs, startNs, intervalNs, now); err != nil {
		return err
	}
	resolved, err := resolveCallback(cb, c.defaultHandler)
	if err != nil {
		return err
	}
	first := firstFireNs(startNs, intervalNs, fireImmediately)
	if allowPast && first < now {
		first = now
	}
	if err := validatePastTime(name, first, now, allowPast); err != nil {
		return err
	}

	c.seq++
	t := &timer{
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
	c.timers[name] = t
	c.spawn(t)
	return nil
}

// spawn starts the asynchronous scheduler task for t. Must be called with
// c.mu held.
func (c *LiveClock) spawn(t *timer) {
	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	go c.runTimer(ctx, t)
}

// runTimer sleeps until t.nextNs, fires, and reschedules until stopNs or
// cancellation. It never holds c.mu while sleeping.
func (c *LiveClock) runTimer(ctx context.Context, t *timer) {
	for {
		c.mu.Lock()
		next := t.nextNs
		c.mu.Unlock()

		wait := time.Duration(0)
		if now := c.nowNs(); next > now {
			wait = time.Duration(next - now)
		}

		sleeper := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			sleeper.Stop()
			return
		case <-sleeper.C:
		}

		event := newTimeEvent(t.name, next, c.nowNs())
		c.logger.Debug("clock: timer fired", "clock", c.name, "name", t.name, "ts_event", event.TsEvent)
		t.callback(event)

		if t.isAlert() {
			c.mu.Lock()
			delete(c.timers, t.name)
			c.mu.Unlock()
			return
		}

		nextNs := next + t.intervalNs
		if t.stopNs != 0 && nextNs > t.stopNs {
			c.mu.Lock()
			delete(c.timers, t.name)
			c.mu.Unlock()
			return
		}

		c.mu.Lock()
		if _, ok := c.timers[t.name]; !ok {
			c.mu.Unlock()
			return
		}
		t.nextNs = nextNs
		c.mu.Unlock()
	}
}

// NextTimeNs implements Clock.
func (c *LiveClock) NextTimeNs(name string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.timers[name]; ok {
		return t.nextNs
	}
	return 0
}

// cancelLocked cancels and removes a timer; c.mu must be held.
func (c *LiveClock) cancelLocked(name string) {
	if t, ok := c.timers[name]; ok {
		if t.cancel != nil {
			t.cancel()
		}
		delete(c.timers, name)
	}
}

// CancelTimer implements Clock.
func (c *LiveClock) CancelTimer(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := validateName(name, c.timers, true); err != nil {
		return err
	}
	c.cancelLocked(name)
	return nil
}

// CancelTimers implements Clock.
func (c *LiveClock) CancelTimers() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for name := range c.timers {
		c.cancelLocked(name)
	}
}

// TimerNames implements Clock.
func (c *LiveClock) TimerNames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return sortedTimerNames(c.timers)
}

// TimerCount implements Clock.
func (c *LiveClock) TimerCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

// Close cancels every outstanding timer task, the explicit Go analogue of
// "on drop, all timer tasks are cancelled" in spec.md §4.3.2.
func (c *LiveClock) Close() {
	c.CancelTimers()
}
