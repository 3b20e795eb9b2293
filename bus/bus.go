package bus

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"

	lru "github.com/hashicorp/golang-lru"

	"github.com/meridian-systems/corebus/clock"
	"github.com/meridian-systems/corebus/config"
	"github.com/meridian-systems/corebus/ids"
	"github.com/meridian-systems/corebus/logging"
)

// ResponseCallback receives a Response correlated to an earlier Request.
type ResponseCallback func(Response)

// Request is a point-to-point call awaiting a correlated Response.
type Request struct {
	ID       ids.UUID4
	Payload  any
	Callback ResponseCallback
}

// Response answers a Request by CorrelationID.
type Response struct {
	CorrelationID ids.UUID4
	Payload       any
}

// Counters is a point-in-time snapshot of the bus's delivery counts,
// spec.md §4.5's "implementations typically expose counters for
// diagnostics" note.
type Counters struct {
	Sent      uint64
	Published uint64
	Requests  uint64
	Responses uint64
}

// Bus is the in-process MessageBus described in spec.md §4.5: point-to-point
// send, correlated request/response, and wildcard-pattern pub/sub with
// priority-ordered delivery. It is built for a single logical executor
// (spec.md §2 Non-goals: no thread-safety guarantee across arbitrary
// concurrent producers), though the mutex below keeps its own bookkeeping
// internally consistent against the LiveClock timer goroutines that may
// share it.
type Bus struct {
	mu sync.Mutex

	source string
	clock  clock.Clock
	logger logging.Logger
	cfg    config.BusConfig

	endpoints map[string]Handler

	subscriptions map[subscriptionKey]*Subscription
	nextSeq       int

	patterns *lru.Cache // pattern string -> []*Subscription, invalidated wholesale on mutation

	pending map[ids.UUID4]ResponseCallback

	streamingTypes map[reflect.Type]bool

	externalPublisher ExternalPublisher

	counters Counters
}

// Option configures a Bus at construction time.
type Option func(*Bus)

// WithLogger attaches a Logger for delivery diagnostics.
func WithLogger(l logging.Logger) Option {
	return func(b *Bus) { b.logger = logging.OrNoOp(l) }
}

// WithExternalPublisher wires a side-effect publisher invoked by Publish
// when externalPub is true. Per spec.md §4.5, this is a pluggable boolean
// flag, not a requirement that external delivery exist at all.
func WithExternalPublisher(p ExternalPublisher) Option {
	return func(b *Bus) { b.externalPublisher = p }
}

// New constructs a Bus identified by source (used as the CloudEvents source
// for external publication) and driven by clk for request/response and
// diagnostic timestamps.
func New(source string, clk clock.Clock, cfg config.BusConfig, opts ...Option) (*Bus, error) {
	cache, err := lru.New(max(cfg.PatternsCacheSize, 1))
	if err != nil {
		return nil, fmt.Errorf("bus: create patterns cache: %w", err)
	}
	b := &Bus{
		source:         source,
		clock:          clk,
		logger:         logging.NoOp(),
		cfg:            cfg,
		endpoints:      make(map[string]Handler),
		subscriptions:  make(map[subscriptionKey]*Subscription),
		patterns:       cache,
		pending:        make(map[ids.UUID4]ResponseCallback),
		streamingTypes: make(map[reflect.Type]bool),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// RegisterEndpoint binds an endpoint name to a Handler for point-to-point
// Send/Request delivery. Returns ErrDuplicateEndpoint if name is already
// registered.
func (b *Bus) RegisterEndpoint(name string, h Handler) error {
	if name == "" || h == nil {
		return ErrInvalidArgument
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.endpoints[name]; exists {
		return ErrDuplicateEndpoint
	}
	b.endpoints[name] = h
	return nil
}

// DeregisterEndpoint removes name's registration. h must match the
// currently registered handler's identity, or ErrHandlerMismatch is
// returned; an unregistered name returns ErrUnknownEndpoint.
func (b *Bus) DeregisterEndpoint(name string, h Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	existing, ok := b.endpoints[name]
	if !ok {
		return ErrUnknownEndpoint
	}
	if handlerIdentity(existing) != handlerIdentity(h) {
		return ErrHandlerMismatch
	}
	delete(b.endpoints, name)
	return nil
}

// Send delivers msg to endpoint's registered handler. An unknown endpoint
// is a silent no-op (spec.md §7): the bus does not treat "nobody is
// listening yet" as an error for fire-and-forget delivery.
func (b *Bus) Send(endpoint string, msg any) {
	b.mu.Lock()
	h, ok := b.endpoints[endpoint]
	if ok {
		b.counters.Sent++
	}
	b.mu.Unlock()
	if !ok {
		return
	}
	h(msg)
}

// Request sends msg to endpoint and registers cb to receive the correlated
// Response. A request ID collision (vanishingly unlikely with UUID4, but
// possible under a caller-supplied ID) is a silent no-op, per spec.md §7.
func (b *Bus) Request(endpoint string, req Request) {
	b.mu.Lock()
	if _, dup := b.pending[req.ID]; dup {
		b.mu.Unlock()
		return
	}
	h, ok := b.endpoints[endpoint]
	if !ok {
		b.mu.Unlock()
		return
	}
	if req.Callback != nil {
		b.pending[req.ID] = req.Callback
	}
	b.counters.Requests++
	b.mu.Unlock()
	h(req.Payload)
}

// Response delivers resp to the callback registered under its
// CorrelationID, if any, and removes it from the pending set. The response
// counter is incremented unconditionally (spec.md §7: "res_count always
// advances, whether or not a waiter was found").
func (b *Bus) Response(resp Response) {
	b.mu.Lock()
	cb, ok := b.pending[resp.CorrelationID]
	if ok {
		delete(b.pending, resp.CorrelationID)
	}
	b.counters.Responses++
	b.mu.Unlock()
	if ok {
		cb(resp)
	}
}

// IsPendingRequest reports whether id is still awaiting a Response.
func (b *Bus) IsPendingRequest(id ids.UUID4) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.pending[id]
	return ok
}

// Subscribe registers h to receive messages published on topics matching
// pattern (which may contain '*'/'?' wildcards), at the given priority.
// Re-subscribing the same (pattern, handler) pair is idempotent: priority
// is fixed at creation (spec.md §3 ignores it for equality precisely
// because it does not change on a later Subscribe call), so a duplicate
// call returns without touching the existing Subscription or the patterns
// cache.
func (b *Bus) Subscribe(pattern string, priority int, h Handler) error {
	if pattern == "" || h == nil {
		return ErrInvalidArgument
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	key := keyFor(pattern, h)
	if _, ok := b.subscriptions[key]; ok {
		return nil
	}
	b.subscriptions[key] = &Subscription{
		Topic:    pattern,
		Priority: priority,
		handler:  h,
		seq:      b.nextSeq,
	}
	b.nextSeq++
	b.patterns.Purge()
	return nil
}

// SubscribeDefault registers h on pattern using the bus's configured
// DefaultPriority (config.BusConfig.DefaultPriority), for callers that
// don't need an explicit priority.
func (b *Bus) SubscribeDefault(pattern string, h Handler) error {
	b.mu.Lock()
	priority := b.cfg.DefaultPriority
	b.mu.Unlock()
	return b.Subscribe(pattern, priority, h)
}

// Unsubscribe removes the (pattern, h) subscription. Unsubscribing an
// unknown pair is a no-op, mirroring Send/Request's tolerance of missing
// listeners.
func (b *Bus) Unsubscribe(pattern string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := keyFor(pattern, h)
	if _, ok := b.subscriptions[key]; !ok {
		return
	}
	delete(b.subscriptions, key)
	b.patterns.Purge()
}

// IsSubscribed reports whether (pattern, h) is currently registered.
func (b *Bus) IsSubscribed(pattern string, h Handler) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.subscriptions[keyFor(pattern, h)]
	return ok
}

// Publish delivers msg to every subscription whose pattern matches topic,
// in descending-priority order with ties broken by subscribe order
// (spec.md §4.5 scenario 5). When externalPub is true and an
// ExternalPublisher is configured, msg is also forwarded as a CloudEvents
// envelope; a publisher failure is logged and does not affect in-process
// delivery, which has already completed.
func (b *Bus) Publish(ctx context.Context, topic string, msg any, externalPub bool) {
	subs := b.resolve(topic)

	b.mu.Lock()
	b.counters.Published++
	b.mu.Unlock()

	for _, sub := range subs {
		sub.Handle(msg)
	}

	if !externalPub {
		return
	}
	b.mu.Lock()
	pub := b.externalPublisher
	src := b.source
	b.mu.Unlock()
	if pub == nil {
		return
	}
	event, err := buildExternalEvent(src, topic, msg)
	if err != nil {
		b.logger.Error("bus: build external event failed", "topic", topic, "error", err)
		return
	}
	if err := pub.PublishExternal(ctx, event); err != nil {
		b.logger.Error("bus: external publish failed", "topic", topic, "error", err)
	}
}

// resolve returns topic's matching subscriptions in delivery order,
// consulting and populating the patterns cache. The cache is keyed on the
// concrete topic (not the subscription pattern) and purged wholesale on
// any Subscribe/Unsubscribe mutation — the simplification spec.md §9
// sanctions in place of incremental per-subscription pattern indices.
func (b *Bus) resolve(topic string) []*Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	if cached, ok := b.patterns.Get(topic); ok {
		return cached.([]*Subscription)
	}

	matched := make([]*Subscription, 0)
	for _, sub := range b.subscriptions {
		if IsMatching(topic, sub.Topic) {
			matched = append(matched, sub)
		}
	}
	sort.Stable(bySeqThenPriority(matched))

	b.patterns.Add(topic, matched)
	return matched
}

// AddStreamingType marks T's reflect.Type as a streaming payload type,
// grounded on spec.md §6's notion of message kinds that bypass the normal
// request/response correlation bookkeeping (e.g. unbounded data feeds).
func (b *Bus) AddStreamingType(sample any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.streamingTypes[reflect.TypeOf(sample)] = true
}

// IsStreamingType reports whether sample's concrete type was registered via
// AddStreamingType.
func (b *Bus) IsStreamingType(sample any) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.streamingTypes[reflect.TypeOf(sample)]
}

// Counters returns a snapshot of the bus's delivery counters.
func (b *Bus) Counters() Counters {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.counters
}
