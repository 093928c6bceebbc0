package smtest

import (
	"testing"

	"github.com/amp-labs/amp-a11y/statemachine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doorState string

const (
	closed doorState = "closed"
	opened doorState = "opened"
	locked doorState = "locked"
)

type doorCtx struct {
	Opens int
}

type openEvent struct{}

func (openEvent) Type() statemachine.EventType { return "OPEN" }

type closeEvent struct{}

func (closeEvent) Type() statemachine.EventType { return "CLOSE" }

type lockEvent struct{}

func (lockEvent) Type() statemachine.EventType { return "LOCK" }

type creakEffect struct{}

func (creakEffect) Kind() string { return "creak" }

func doorDefinition() *statemachine.Definition[doorState, doorCtx] {
	open := statemachine.Reduce("open", func(c doorCtx, _ statemachine.Event) (doorCtx, []statemachine.Effect) {
		c.Opens++

		return c, []statemachine.Effect{creakEffect{}}
	})

	return statemachine.NewBuilder("door", closed, doorCtx{}).
		State(closed).
		On("OPEN", statemachine.Candidate[doorState, doorCtx]{Target: opened, Actions: []statemachine.Action[doorCtx]{open}}).
		On("LOCK", statemachine.Candidate[doorState, doorCtx]{Target: locked}).
		State(opened).
		On("CLOSE", statemachine.Candidate[doorState, doorCtx]{Target: closed}).
		State(locked).
		MustBuild()
}

func TestRecorder(t *testing.T) {
	t.Parallel()

	rec := NewRecorder(t, doorDefinition())

	rec.Send(openEvent{})
	assert.Len(t, rec.EffectsOfKind("creak"), 1)

	rec.SendAll(closeEvent{}, lockEvent{}, openEvent{})

	rec.AssertState(locked)
	rec.AssertStateVisited(opened)
	rec.AssertTransitionTaken(opened, closed)
	rec.AssertEffect("creak")
	rec.AssertLastIgnored()
	assert.Len(t, rec.Trace(), 4)
	assert.Equal(t, "OPEN: locked -> locked (changed=false)", rec.Trace()[3].String())

	rec.Reset()
	assert.Empty(t, rec.Trace())
}

func TestMatchers(t *testing.T) {
	t.Parallel()

	rec := NewRecorder(t, doorDefinition())

	ok, err := LastIgnored[doorState, doorCtx]().Match(rec)
	assert.False(t, ok)
	require.ErrorIs(t, err, ErrNoTrace)

	rec.Send(lockEvent{})

	ok, err = StateWasVisited[doorState, doorCtx](opened).Match(rec)
	assert.False(t, ok)
	require.ErrorIs(t, err, ErrStateNotVisited)

	ok, err = TransitionWasTaken[doorState, doorCtx](closed, opened).Match(rec)
	assert.False(t, ok)
	require.ErrorIs(t, err, ErrTransitionNotTaken)

	ok, err = EffectEmitted[doorState, doorCtx]("creak").Match(rec)
	assert.False(t, ok)
	require.ErrorIs(t, err, ErrEffectNotEmitted)

	ok, _ = All(
		StateWasVisited[doorState, doorCtx](locked),
		TransitionWasTaken[doorState, doorCtx](closed, locked),
	).Match(rec)
	assert.True(t, ok)

	ok, err = Any(
		StateWasVisited[doorState, doorCtx](opened),
		EffectEmitted[doorState, doorCtx]("creak"),
	).Match(rec)
	assert.False(t, ok)
	require.ErrorIs(t, err, ErrNoMatchersPassed)
}

func TestRunScenario(t *testing.T) {
	t.Parallel()

	RunScenario(t, Scenario[doorState, doorCtx]{
		Name:       "open close lock",
		Definition: doorDefinition(),
		Steps: []Step[doorState, doorCtx]{
			{Event: openEvent{}, Want: opened, WantEffects: []string{"creak"}},
			{Event: lockEvent{}, Want: opened, WantEffects: []string{}},
			{Event: closeEvent{}, Want: closed},
			{
				Event: openEvent{},
				Want:  opened,
				Check: func(t *testing.T, snap statemachine.Snapshot[doorState, doorCtx]) {
					t.Helper()
					assert.Equal(t, 2, snap.Context.Opens)
				},
			},
		},
		Matchers: []Matcher[doorState, doorCtx]{TransitionWasTaken[doorState, doorCtx](opened, closed)},
	})

	start := doorCtx{Opens: 7}

	RunScenario(t, Scenario[doorState, doorCtx]{
		Name:       "starts locked",
		Definition: doorDefinition(),
		Start:      locked,
		Context:    &start,
		Steps: []Step[doorState, doorCtx]{
			{Event: openEvent{}, Want: locked},
		},
	})
}
