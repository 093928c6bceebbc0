// Package smtest provides test helpers for statemachine charts: a recording machine
// wrapper, trace matchers and a step-by-step scenario runner.
//
//nolint:varnamelen // short names idiomatic
package smtest

import (
	"context"
	"fmt"
	"testing"

	"github.com/amp-labs/amp-a11y/statemachine"
	"github.com/stretchr/testify/require"
)

// TraceEntry records a single Send.
type TraceEntry[S ~string] struct {
	Event        statemachine.EventType
	From         S
	To           S
	Changed      bool
	Transitioned bool
	Effects      []statemachine.Effect
	Actions      []string
}

// Recorder wraps a Machine and records every event sent through it.
type Recorder[S ~string, C any] struct {
	*statemachine.Machine[S, C]

	t     testing.TB
	trace []TraceEntry[S]
}

// NewRecorder builds a machine at the definition's initial state.
func NewRecorder[S ~string, C any](
	t testing.TB, def *statemachine.Definition[S, C], opts ...statemachine.Option,
) *Recorder[S, C] {
	t.Helper()

	machine, err := statemachine.New(def, opts...)
	require.NoError(t, err, "failed to create machine")

	return &Recorder[S, C]{Machine: machine, t: t}
}

// NewRecorderAt builds a machine starting in an arbitrary state and context.
func NewRecorderAt[S ~string, C any](
	t testing.TB, def *statemachine.Definition[S, C], state S, c C, opts ...statemachine.Option,
) *Recorder[S, C] {
	t.Helper()

	machine, err := statemachine.NewAt(def, state, c, opts...)
	require.NoError(t, err, "failed to create machine")

	return &Recorder[S, C]{Machine: machine, t: t}
}

// Send forwards to the machine and records the outcome.
func (r *Recorder[S, C]) Send(ev statemachine.Event) statemachine.Snapshot[S, C] {
	from := r.State()
	snap := r.Machine.Send(context.Background(), ev)

	var eventType statemachine.EventType
	if ev != nil {
		eventType = ev.Type()
	}

	r.trace = append(r.trace, TraceEntry[S]{
		Event:        eventType,
		From:         from,
		To:           snap.State,
		Changed:      snap.Changed,
		Transitioned: snap.Transitioned,
		Effects:      snap.Effects,
		Actions:      snap.Actions,
	})

	return snap
}

// SendAll sends events in order and returns the last snapshot.
func (r *Recorder[S, C]) SendAll(events ...statemachine.Event) statemachine.Snapshot[S, C] {
	snap := r.Snapshot()
	for _, ev := range events {
		snap = r.Send(ev)
	}

	return snap
}

// Trace returns the recorded entries.
func (r *Recorder[S, C]) Trace() []TraceEntry[S] {
	return r.trace
}

// Reset clears the trace without touching the machine.
func (r *Recorder[S, C]) Reset() {
	r.trace = nil
}

// AssertState checks the machine's current state.
func (r *Recorder[S, C]) AssertState(expected S) {
	r.t.Helper()
	require.Equal(r.t, expected, r.State(), "state should be %q", expected)
}

// AssertStateVisited checks that a transition entered the state.
func (r *Recorder[S, C]) AssertStateVisited(state S) {
	r.t.Helper()
	r.require(StateWasVisited[S, C](state))
}

// AssertTransitionTaken checks that a transition from one state to another occurred.
func (r *Recorder[S, C]) AssertTransitionTaken(from, to S) {
	r.t.Helper()
	r.require(TransitionWasTaken[S, C](from, to))
}

// AssertEffect checks that some Send emitted an effect of the given kind.
func (r *Recorder[S, C]) AssertEffect(kind string) {
	r.t.Helper()
	r.require(EffectEmitted[S, C](kind))
}

// AssertLastIgnored checks that the most recent event was not handled.
func (r *Recorder[S, C]) AssertLastIgnored() {
	r.t.Helper()
	r.require(LastIgnored[S, C]())
}

func (r *Recorder[S, C]) require(m Matcher[S, C]) {
	r.t.Helper()

	ok, err := m.Match(r)
	require.True(r.t, ok, "%s: %v", m.Description(), err)
}

// EffectsOfKind returns the effects of the last Send that have the given kind.
func (r *Recorder[S, C]) EffectsOfKind(kind string) []statemachine.Effect {
	if len(r.trace) == 0 {
		return nil
	}

	var out []statemachine.Effect

	for _, eff := range r.trace[len(r.trace)-1].Effects {
		if eff.Kind() == kind {
			out = append(out, eff)
		}
	}

	return out
}

func (e TraceEntry[S]) String() string {
	return fmt.Sprintf("%s: %s -> %s (changed=%t)", e.Event, e.From, e.To, e.Changed)
}
