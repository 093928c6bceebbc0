package statemachine

import (
	"context"
	"testing"

	"github.com/neilotoole/slogt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lampState string

const (
	lampOff    lampState = "off"
	lampOn     lampState = "on"
	lampBroken lampState = "broken"
)

type lampCtx struct {
	Presses  int
	Entries  int
	Disabled bool
	Label    string
}

type pressEvent struct{}

func (pressEvent) Type() EventType { return "PRESS" }

type breakEvent struct{ Reason string }

func (breakEvent) Type() EventType { return "BREAK" }

type renameEvent struct{ Label string }

func (renameEvent) Type() EventType { return "RENAME" }

type beepEffect struct{}

func (beepEffect) Kind() string { return "beep" }

func lampDefinition(t *testing.T) *Definition[lampState, lampCtx] {
	t.Helper()

	countPress := Assign("countPress", func(c lampCtx, _ Event) lampCtx {
		c.Presses++

		return c
	})
	countEntry := Assign("countEntry", func(c lampCtx, _ Event) lampCtx {
		c.Entries++

		return c
	})
	beep := Emit("beep", func(lampCtx, Event) []Effect {
		return []Effect{beepEffect{}}
	})
	rename := Assign("rename", func(c lampCtx, ev Event) lampCtx {
		c.Label = ev.(renameEvent).Label //nolint:forcetypeassert

		return c
	})
	enabled := When("enabled", func(c lampCtx, _ Event) bool { return !c.Disabled })

	def, err := NewBuilder("lamp", lampOff, lampCtx{}).
		State(lampOff).
		Entry(countEntry).
		On("PRESS",
			Candidate[lampState, lampCtx]{Target: lampOn, Guard: enabled, Actions: []Action[lampCtx]{countPress, beep}},
			Candidate[lampState, lampCtx]{Actions: []Action[lampCtx]{countPress}},
		).
		On("RENAME", Candidate[lampState, lampCtx]{Target: lampOff, Actions: []Action[lampCtx]{rename}}).
		On("BREAK", Candidate[lampState, lampCtx]{Target: lampBroken}).
		State(lampOn).
		Entry(countEntry).
		On("PRESS", Candidate[lampState, lampCtx]{Target: lampOff, Actions: []Action[lampCtx]{countPress}}).
		State(lampBroken).
		Build()
	require.NoError(t, err)

	return def
}

func TestTransitionTakesFirstPassingCandidate(t *testing.T) {
	t.Parallel()

	def := lampDefinition(t)

	snap := Transition(def, lampOff, lampCtx{}, pressEvent{})
	assert.True(t, snap.Changed)
	assert.True(t, snap.Transitioned)
	assert.Equal(t, lampOn, snap.State)
	assert.Equal(t, 1, snap.Context.Presses)
	assert.Equal(t, 1, snap.Context.Entries, "entry actions of the new state run")
	assert.Equal(t, []string{"countPress", "beep", "countEntry"}, snap.Actions)
	assert.Equal(t, []Effect{beepEffect{}}, snap.Effects)
}

func TestTransitionFallsBackWhenGuardFails(t *testing.T) {
	t.Parallel()

	def := lampDefinition(t)

	snap := Transition(def, lampOff, lampCtx{Disabled: true}, pressEvent{})
	assert.True(t, snap.Changed)
	assert.False(t, snap.Transitioned)
	assert.Equal(t, lampOff, snap.State)
	assert.Equal(t, 1, snap.Context.Presses)
	assert.Empty(t, snap.Effects)
}

func TestTransitionSelfTargetSkipsEntry(t *testing.T) {
	t.Parallel()

	def := lampDefinition(t)

	snap := Transition(def, lampOff, lampCtx{}, renameEvent{Label: "desk"})
	assert.True(t, snap.Changed)
	assert.False(t, snap.Transitioned)
	assert.Equal(t, "desk", snap.Context.Label)
	assert.Zero(t, snap.Context.Entries)
}

func TestTransitionIgnoresUnhandledEvents(t *testing.T) {
	t.Parallel()

	def := lampDefinition(t)
	start := lampCtx{Presses: 3, Label: "x"}

	tests := []struct {
		name  string
		state lampState
		event Event
	}{
		{"unknown event", lampOn, breakEvent{}},
		{"no handlers at all", lampBroken, pressEvent{}},
		{"nil event", lampOff, nil},
		{"undefined state", lampState("missing"), pressEvent{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			snap := Transition(def, tt.state, start, tt.event)
			assert.False(t, snap.Changed)
			assert.Equal(t, tt.state, snap.State)
			assert.Equal(t, start, snap.Context)
			assert.Empty(t, snap.Effects)
		})
	}
}

func TestTransitionAllGuardsFailingIsNoop(t *testing.T) {
	t.Parallel()

	def, err := NewBuilder("guarded", lampOff, lampCtx{Disabled: true}).
		State(lampOff).
		On("PRESS", Candidate[lampState, lampCtx]{
			Target: lampOn,
			Guard:  When("enabled", func(c lampCtx, _ Event) bool { return !c.Disabled }),
		}).
		State(lampOn).
		Build()
	require.NoError(t, err)

	snap := Transition(def, lampOff, def.Context, pressEvent{})
	assert.False(t, snap.Changed)
	assert.Equal(t, lampOff, snap.State)
}

func TestTransitionIsDeterministic(t *testing.T) {
	t.Parallel()

	def := lampDefinition(t)
	events := []Event{pressEvent{}, pressEvent{}, renameEvent{Label: "a"}, pressEvent{}, breakEvent{}, pressEvent{}}

	replay := func() Snapshot[lampState, lampCtx] {
		state, c := def.Initial, def.Context

		var snap Snapshot[lampState, lampCtx]
		for _, ev := range events {
			snap = Transition(def, state, c, ev)
			state, c = snap.State, snap.Context
		}

		return snap
	}

	first := replay()
	for range 10 {
		assert.Equal(t, first, replay())
	}

	assert.Equal(t, lampOff, first.State)
	assert.Equal(t, 4, first.Context.Presses)
}

func TestMachineSendAndSubscribe(t *testing.T) {
	t.Parallel()

	machine, err := New(lampDefinition(t), WithName("lamp-test"), WithLogger(NewSlogLogger(slogt.New(t))))
	require.NoError(t, err)

	var seen []lampState

	unsubscribe := machine.Subscribe(func(s Snapshot[lampState, lampCtx]) {
		seen = append(seen, s.State)
	})

	ctx := context.Background()

	machine.Send(ctx, pressEvent{})
	machine.Send(ctx, breakEvent{}) // ignored in "on"
	machine.Send(ctx, pressEvent{})

	assert.Equal(t, []lampState{lampOn, lampOff}, seen, "ignored events are not broadcast")
	assert.Equal(t, lampOff, machine.State())
	assert.Equal(t, 2, machine.Context().Presses)

	unsubscribe()
	machine.Send(ctx, pressEvent{})
	assert.Len(t, seen, 2)
	assert.Equal(t, lampOn, machine.Snapshot().State)
}

func TestMachineReentrantSendFromSubscriber(t *testing.T) {
	t.Parallel()

	machine, err := New(lampDefinition(t))
	require.NoError(t, err)

	ctx := context.Background()

	machine.Subscribe(func(s Snapshot[lampState, lampCtx]) {
		if s.State == lampOn {
			machine.Send(ctx, pressEvent{})
		}
	})

	machine.Send(ctx, pressEvent{})
	assert.Equal(t, lampOff, machine.State())
	assert.Equal(t, 2, machine.Context().Presses)
}

func TestMachineGuardPanicPropagates(t *testing.T) {
	t.Parallel()

	def, err := NewBuilder("panicky", lampOff, lampCtx{}).
		State(lampOff).
		On("PRESS", Candidate[lampState, lampCtx]{
			Target: lampOn,
			Guard:  When("boom", func(lampCtx, Event) bool { panic("boom") }),
		}).
		On("BREAK", Candidate[lampState, lampCtx]{Target: lampOn}).
		State(lampOn).
		Build()
	require.NoError(t, err)

	machine, err := New(def)
	require.NoError(t, err)

	assert.PanicsWithValue(t, "boom", func() {
		machine.Send(context.Background(), pressEvent{})
	})

	// The machine is still usable after the panic.
	machine.Send(context.Background(), breakEvent{})
	assert.Equal(t, lampOn, machine.State())
}

func TestNewAtRejectsUnknownState(t *testing.T) {
	t.Parallel()

	_, err := NewAt(lampDefinition(t), lampState("nope"), lampCtx{})
	require.ErrorIs(t, err, ErrStateNotFound)
}

func TestDefinitionValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		def  *Definition[lampState, lampCtx]
		want error
	}{
		{
			name: "missing id",
			def:  &Definition[lampState, lampCtx]{Initial: lampOff},
			want: ErrDefinitionIDRequired,
		},
		{
			name: "missing initial",
			def:  &Definition[lampState, lampCtx]{ID: "x"},
			want: ErrInitialStateRequired,
		},
		{
			name: "no states",
			def:  &Definition[lampState, lampCtx]{ID: "x", Initial: lampOff},
			want: ErrStateRequired,
		},
		{
			name: "initial not defined",
			def: &Definition[lampState, lampCtx]{
				ID: "x", Initial: lampOn,
				States: map[lampState]StateNode[lampState, lampCtx]{lampOff: {}},
			},
			want: ErrInitialStateNotFound,
		},
		{
			name: "unknown target",
			def: &Definition[lampState, lampCtx]{
				ID: "x", Initial: lampOff,
				States: map[lampState]StateNode[lampState, lampCtx]{
					lampOff: {On: map[EventType][]Candidate[lampState, lampCtx]{"PRESS": {{Target: lampOn}}}},
				},
			},
			want: ErrTargetNotFound,
		},
		{
			name: "nil guard check",
			def: &Definition[lampState, lampCtx]{
				ID: "x", Initial: lampOff,
				States: map[lampState]StateNode[lampState, lampCtx]{
					lampOff: {On: map[EventType][]Candidate[lampState, lampCtx]{"PRESS": {{Guard: &Guard[lampCtx]{Name: "g"}}}}},
				},
			},
			want: ErrNilGuard,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			require.ErrorIs(t, tt.def.Validate(), tt.want)
		})
	}
}

func TestDefinitionErrorLocatesCandidate(t *testing.T) {
	t.Parallel()

	def := &Definition[lampState, lampCtx]{
		ID: "x", Initial: lampOff,
		States: map[lampState]StateNode[lampState, lampCtx]{
			lampOff: {On: map[EventType][]Candidate[lampState, lampCtx]{"PRESS": {{Target: lampBroken}}}},
		},
	}

	var defErr *DefinitionError

	require.ErrorAs(t, def.Validate(), &defErr)
	assert.Equal(t, "off", defErr.State)
	assert.Equal(t, EventType("PRESS"), defErr.Event)
	assert.Equal(t, "broken", defErr.Target)
	assert.Equal(t, "state off on PRESS -> broken: transition target does not exist", defErr.Error())
}

func TestSnapshotMatches(t *testing.T) {
	t.Parallel()

	snap := Snapshot[lampState, lampCtx]{State: lampOn}
	assert.True(t, snap.Matches(lampOff, lampOn))
	assert.False(t, snap.Matches(lampBroken))
}
