package checkbox

import (
	"context"
	"testing"

	"github.com/amp-labs/amp-a11y/host"
	"github.com/amp-labs/amp-a11y/statemachine"
	"github.com/amp-labs/amp-a11y/statemachine/smtest"
	"github.com/amp-labs/amp-a11y/statemachine/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChartIsClean(t *testing.T) {
	t.Parallel()

	config, err := ChartConfig()
	require.NoError(t, err)

	report := validator.Validate(config, validator.WithRegistry(Registry())...)
	assert.Empty(t, report.Issues, report.String())
}

func TestChart(t *testing.T) {
	t.Parallel()

	def, err := Definition()
	require.NoError(t, err)

	uncontrolled := Context{}
	controlled := Context{IsControlled: true}
	disabled := Context{Disabled: true}

	unchangedControlled := func(t *testing.T, snap statemachine.Snapshot[State, Context]) {
		t.Helper()

		assert.False(t, snap.Transitioned, "setting the current state does not re-enter it")
		assert.Empty(t, snap.Actions)
		assert.Equal(t, controlled, snap.Context)
	}

	scenarios := []smtest.Scenario[State, Context]{
		{
			Name:       "uncontrolled toggles",
			Definition: def,
			Context:    &uncontrolled,
			Steps: []smtest.Step[State, Context]{
				{Event: Toggle{}, Want: Checked},
				{Event: Toggle{}, Want: Unchecked},
				{Event: Set{State: Mixed}, Want: Unchecked},
			},
		},
		{
			Name:       "mixed toggles to checked",
			Definition: def,
			Start:      Mixed,
			Context:    &uncontrolled,
			Steps: []smtest.Step[State, Context]{
				{Event: Toggle{}, Want: Checked},
			},
		},
		{
			Name:       "controlled only follows set",
			Definition: def,
			Context:    &controlled,
			Steps: []smtest.Step[State, Context]{
				{Event: Toggle{}, Want: Unchecked},
				{Event: Set{State: Mixed}, Want: Mixed},
				{Event: Set{State: Checked}, Want: Checked},
				{Event: Set{State: Checked}, Want: Checked, Check: unchangedControlled},
				{Event: Set{State: Unchecked}, Want: Unchecked},
				{Event: Set{State: Unchecked}, Want: Unchecked, Check: unchangedControlled},
				{Event: Set{State: Unchecked}, Want: Unchecked, Check: unchangedControlled},
			},
		},
		{
			Name:       "unmount is handled in place",
			Definition: def,
			Start:      Mixed,
			Context:    &controlled,
			Steps: []smtest.Step[State, Context]{
				{
					Event: Unmount{Refs: Refs{Input: "cb"}},
					Want:  Mixed,
					Check: func(t *testing.T, snap statemachine.Snapshot[State, Context]) {
						t.Helper()

						assert.True(t, snap.Changed, "every state has an UNMOUNT handler")
						assert.False(t, snap.Transitioned)
						assert.Equal(t, controlled, snap.Context)
					},
				},
			},
		},
		{
			Name:       "disabled ignores toggle",
			Definition: def,
			Context:    &disabled,
			Steps: []smtest.Step[State, Context]{
				{Event: Toggle{}, Want: Unchecked},
			},
			Matchers: []smtest.Matcher[State, Context]{smtest.LastIgnored[State, Context]()},
		},
		{
			Name:       "derived data enables toggling",
			Definition: def,
			Context:    &disabled,
			Steps: []smtest.Step[State, Context]{
				{
					Event: GetDerivedData{Refs: Refs{Input: "cb"}},
					Want:  Unchecked,
					Check: func(t *testing.T, snap statemachine.Snapshot[State, Context]) {
						t.Helper()

						assert.False(t, snap.Context.Disabled)
						assert.Equal(t, host.Node("cb"), snap.Context.Input)
					},
				},
				{Event: Toggle{Refs: Refs{Input: "cb"}}, Want: Checked},
			},
		},
	}

	for _, scenario := range scenarios {
		smtest.RunScenario(t, scenario)
	}
}

func TestFromValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value any
		want  State
		aria  string
	}{
		{true, Checked, "true"},
		{false, Unchecked, "false"},
		{"mixed", Mixed, "mixed"},
		{nil, Unchecked, "false"},
		{"true", Unchecked, "false"},
	}

	for _, tt := range tests {
		state := FromValue(tt.value)
		assert.Equal(t, tt.want, state, "%v", tt.value)
		assert.Equal(t, tt.aria, state.AriaChecked())
		assert.Equal(t, state, FromValue(state.Value()))
	}
}

func TestControllerUncontrolled(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	c, err := NewController(Options{DefaultChecked: "mixed"})
	require.NoError(t, err)
	c.Mount(ctx, "input-1")

	assert.Equal(t, Mixed, c.State())
	assert.True(t, c.Indeterminate())
	assert.Equal(t, "mixed", c.Attributes()["aria-checked"])

	effects := c.HandleEvent(ctx, host.Event{Type: host.Change})
	assert.Equal(t, Checked, c.State())
	assert.Equal(t, []host.Callback{{Name: CallbackChange, Value: true}}, host.Callbacks(effects, CallbackChange))

	_, checked := c.Attributes()["checked"]
	assert.True(t, checked)

	assert.Empty(t, c.HandleEvent(ctx, host.Event{Type: host.KeyDown, Key: host.KeyEnter}))
	assert.Equal(t, host.Node("input-1"), c.Machine().Context().Input)
}

func TestControllerControlled(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	c, err := NewController(Options{Checked: false})
	require.NoError(t, err)
	c.Mount(ctx, "input-1")

	effects := c.Change(ctx)
	assert.Equal(t, Unchecked, c.State(), "controlled checkboxes wait for the app")
	assert.Equal(t, []host.Callback{{Name: CallbackChange, Value: true}}, host.Callbacks(effects, CallbackChange))

	c.Update(ctx, Options{Checked: true})
	assert.Equal(t, Checked, c.State())

	c.Update(ctx, Options{Checked: "mixed"})
	assert.Equal(t, Mixed, c.State())
}

func TestControllerDisabled(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	c, err := NewController(Options{Disabled: true})
	require.NoError(t, err)
	c.Mount(ctx, "input-1")

	assert.Nil(t, c.Change(ctx))
	assert.Equal(t, Unchecked, c.State())

	_, disabled := c.Attributes()["disabled"]
	assert.True(t, disabled)

	c.Update(ctx, Options{})
	c.Change(ctx)
	assert.Equal(t, Checked, c.State())
}

func TestControllerSwitchKeepsLatestMode(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	c, err := NewController(Options{Checked: true})
	require.NoError(t, err)
	c.Mount(ctx, "input-1")

	c.Update(ctx, Options{})
	c.Change(ctx)
	assert.Equal(t, Unchecked, c.State(), "an uncontrolled update lets the checkbox toggle itself")
}
