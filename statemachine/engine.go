package statemachine

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"
)

// Metric outcome constants.
const (
	outcomeHandled = "handled"
	outcomeIgnored = "ignored"
)

// Transition computes the snapshot that results from sending ev to a machine that is
// in state with context c. It never mutates its inputs and never performs effects, so
// the same (state, context, event) always yields the same snapshot.
//
// Candidates are tried in declaration order and the first one whose guard passes (or
// that has no guard) is taken. Its actions run against the current context, then, if
// it targets a different state, that state's entry actions run. An event the state
// does not handle, or one whose candidates all fail, leaves everything unchanged.
func Transition[S ~string, C any](def *Definition[S, C], state S, c C, ev Event) Snapshot[S, C] {
	snap := Snapshot[S, C]{
		State:   state,
		Context: c,
		Event:   ev,
	}

	if ev == nil {
		return snap
	}

	node, ok := def.States[state]
	if !ok {
		return snap
	}

	for _, cand := range node.On[ev.Type()] {
		if cand.Guard != nil && !cand.Guard.Check(c, ev) {
			continue
		}

		snap.Changed = true
		snap.runActions(cand.Actions, ev)

		if cand.Target != "" && cand.Target != state {
			snap.State = cand.Target
			snap.Transitioned = true
			snap.runActions(def.States[cand.Target].Entry, ev)
		}

		return snap
	}

	return snap
}

func (s *Snapshot[S, C]) runActions(actions []Action[C], ev Event) {
	for _, action := range actions {
		next, effects := action.Do(s.Context, ev)

		s.Context = next
		s.Effects = append(s.Effects, effects...)
		s.Actions = append(s.Actions, action.Name)
	}
}

// Option configures a Machine.
type Option func(*options)

type options struct {
	name   string
	logger Logger
}

// WithName sets the name used in logs, metrics and spans. Defaults to the definition id.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithLogger sets the logger for machine activity.
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

type subscriber[S ~string, C any] struct {
	id int
	fn func(Snapshot[S, C])
}

// Machine is a live instance of a Definition. Sends are serialized; each one runs to
// completion before the next is processed.
type Machine[S ~string, C any] struct {
	mu          sync.Mutex
	def         *Definition[S, C]
	name        string
	logger      Logger
	state       S
	ctx         C
	subscribers []subscriber[S, C]
	nextSubID   int
}

// New creates a machine in the definition's initial state and context.
func New[S ~string, C any](def *Definition[S, C], opts ...Option) (*Machine[S, C], error) {
	return NewAt(def, def.Initial, def.Context, opts...)
}

// NewAt creates a machine in an explicit state and context, for example to honor a
// controlled initial value.
func NewAt[S ~string, C any](def *Definition[S, C], state S, c C, opts ...Option) (*Machine[S, C], error) {
	err := def.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid definition: %w", err)
	}

	if !def.HasState(state) {
		return nil, stateError(string(state), ErrStateNotFound)
	}

	o := options{name: def.ID}
	for _, opt := range opts {
		opt(&o)
	}

	return &Machine[S, C]{
		def:    def,
		name:   o.name,
		logger: o.logger,
		state:  state,
		ctx:    c,
	}, nil
}

// Send dispatches an event and returns the resulting snapshot. Subscribers are
// notified after the new state is committed, in subscription order, and only when
// a candidate was taken.
func (m *Machine[S, C]) Send(ctx context.Context, ev Event) Snapshot[S, C] {
	start := time.Now()

	ctx, span := traceSend(ctx, m.name, ev)
	defer span.finish()

	from, snap, subs := m.commit(ev)
	ctx = withMachineInfo(ctx, MachineInfo{Machine: m.name, State: string(snap.State)})

	m.observe(ctx, from, snap, time.Since(start))
	span.record(string(from), string(snap.State), snap.Changed, len(snap.Effects))

	if !snap.Changed {
		return snap
	}

	for _, sub := range subs {
		sub.fn(snap)
	}

	return snap
}

// commit computes and stores the next state. A panicking guard or action leaves the
// machine untouched and unlocked.
func (m *Machine[S, C]) commit(ev Event) (S, Snapshot[S, C], []subscriber[S, C]) {
	m.mu.Lock()
	defer m.mu.Unlock()

	from := m.state
	snap := Transition(m.def, from, m.ctx, ev)
	m.state = snap.State
	m.ctx = snap.Context

	return from, snap, slices.Clone(m.subscribers)
}

func (m *Machine[S, C]) observe(ctx context.Context, from S, snap Snapshot[S, C], elapsed time.Duration) {
	eventType := eventTypeOf(snap.Event)
	outcome := outcomeOf(snap)

	eventsTotal.WithLabelValues(sanitizeMachine(m.name), string(from), string(eventType), outcome).Inc()
	sendDuration.WithLabelValues(sanitizeMachine(m.name), outcome).Observe(elapsed.Seconds())

	if snap.Transitioned {
		transitionsTotal.WithLabelValues(sanitizeMachine(m.name), string(from), string(snap.State)).Inc()
	}

	if m.logger == nil {
		return
	}

	m.logger.EventReceived(ctx, m.name, string(from), eventType)

	if !snap.Changed {
		m.logger.EventIgnored(ctx, m.name, string(from), eventType)

		return
	}

	for _, action := range snap.Actions {
		m.logger.ActionExecuted(ctx, m.name, action)
	}

	if snap.Transitioned {
		m.logger.TransitionExecuted(ctx, m.name, string(from), string(snap.State), eventType)
	}
}

// Subscribe registers fn to receive every snapshot in which a candidate was taken.
// The returned function removes the subscription.
func (m *Machine[S, C]) Subscribe(fn func(Snapshot[S, C])) (unsubscribe func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSubID
	m.nextSubID++
	m.subscribers = append(m.subscribers, subscriber[S, C]{id: id, fn: fn})

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()

		m.subscribers = slices.DeleteFunc(m.subscribers, func(s subscriber[S, C]) bool {
			return s.id == id
		})
	}
}

// State returns the current state.
func (m *Machine[S, C]) State() S {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.state
}

// Context returns the current context value.
func (m *Machine[S, C]) Context() C {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.ctx
}

// Snapshot returns the current state and context without sending anything.
func (m *Machine[S, C]) Snapshot() Snapshot[S, C] {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Snapshot[S, C]{State: m.state, Context: m.ctx}
}

// Definition returns the chart the machine runs.
func (m *Machine[S, C]) Definition() *Definition[S, C] {
	return m.def
}

// Name returns the machine name used for observability.
func (m *Machine[S, C]) Name() string {
	return m.name
}

func eventTypeOf(ev Event) EventType {
	if ev == nil {
		return ""
	}

	return ev.Type()
}

func outcomeOf[S ~string, C any](snap Snapshot[S, C]) string {
	if snap.Changed {
		return outcomeHandled
	}

	return outcomeIgnored
}
