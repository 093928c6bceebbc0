package listbox

import (
	"context"
	"testing"
	"time"

	"github.com/amp-labs/amp-a11y/host"
	"github.com/amp-labs/amp-a11y/host/hosttest"
	"github.com/amp-labs/amp-a11y/statemachine"
	"github.com/amp-labs/amp-a11y/statemachine/smtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fruits = []Option{
	{Value: "apple", Text: "Apple"},
	{Value: "banana", Text: "Banana"},
	{Value: "blueberry", Text: "Blueberry", Disabled: true},
	{Value: "cherry", Text: "Cherry"},
}

var tree = hosttest.Tree{
	"list":         "popover",
	"close-button": "popover",
}

func mounted(value string) *Context {
	return &Context{
		Value:   value,
		Options: fruits,
		Refs:    Refs{Button: "button", List: "list", Popover: "popover"},
		Tree:    tree,
	}
}

type snap = statemachine.Snapshot[State, Context]

func wantValue(value string) func(*testing.T, snap) {
	return func(t *testing.T, s snap) {
		t.Helper()
		assert.Equal(t, value, s.Context.Value)
	}
}

func wantNav(value string) func(*testing.T, snap) {
	return func(t *testing.T, s snap) {
		t.Helper()
		assert.Equal(t, value, s.Context.NavigationValue)
	}
}

func TestChartPointer(t *testing.T) {
	t.Parallel()

	smtest.RunScenario(t, smtest.Scenario[State, Context]{
		Name:       "open move click",
		Definition: Definition(),
		Context:    mounted("apple"),
		Steps: []smtest.Step[State, Context]{
			{Event: ButtonMouseDown{}, Want: Open, Check: wantNav("apple")},
			{Event: OptionMouseMove{OptionData{Value: "banana"}}, Want: Dragging, Check: wantNav("banana")},
			{
				Event:       OptionClick{OptionData{Value: "banana"}},
				Want:        Idle,
				WantEffects: []string{host.KindFocus, host.KindCallback},
				Check: func(t *testing.T, s snap) {
					t.Helper()
					assert.Equal(t, "banana", s.Context.Value)
					assert.Equal(t, []host.Callback{{Name: CallbackChange, Value: "banana"}},
						host.Callbacks(s.Effects, CallbackChange))
				},
			},
		},
	})

	smtest.RunScenario(t, smtest.Scenario[State, Context]{
		Name:       "disabled option is not selectable",
		Definition: Definition(),
		Context:    mounted("apple"),
		Steps: []smtest.Step[State, Context]{
			{Event: ButtonMouseDown{}, Want: Open},
			{Event: OptionClick{OptionData{Value: "blueberry", Disabled: true}}, Want: Open},
		},
		Matchers: []smtest.Matcher[State, Context]{smtest.LastIgnored[State, Context]()},
	})

	smtest.RunScenario(t, smtest.Scenario[State, Context]{
		Name:       "disabled listbox does not open",
		Definition: Definition(),
		Context:    mounted("apple"),
		Steps: []smtest.Step[State, Context]{
			{Event: ButtonMouseDown{Disabled: true}, Want: Idle},
		},
		Matchers: []smtest.Matcher[State, Context]{smtest.LastIgnored[State, Context]()},
	})

	smtest.RunScenario(t, smtest.Scenario[State, Context]{
		Name:       "outside click closes",
		Definition: Definition(),
		Context:    mounted("apple"),
		Steps: []smtest.Step[State, Context]{
			{Event: ButtonMouseDown{}, Want: Open},
			{Event: OutsideMouseDown{RelatedTarget: "page"}, Want: Idle, Check: wantValue("apple")},
		},
	})
}

func TestChartKeyboard(t *testing.T) {
	t.Parallel()

	smtest.RunScenario(t, smtest.Scenario[State, Context]{
		Name:       "space navigate enter",
		Definition: Definition(),
		Context:    mounted("apple"),
		Steps: []smtest.Step[State, Context]{
			{
				Event:       KeyDownSpace{},
				Want:        Navigating,
				WantEffects: []string{host.KindFocus},
				Check: func(t *testing.T, s snap) {
					t.Helper()
					assert.Equal(t, []host.Focus{{Node: "list", Deferred: true}}, host.EffectsOf[host.Focus](s.Effects))
					assert.Equal(t, "apple", s.Context.NavigationValue)
				},
			},
			{Event: KeyDownNavigate{OptionData{Value: "cherry"}}, Want: Navigating, Check: wantNav("cherry")},
			{
				Event:       KeyDownEnter{OptionData{Value: "cherry"}},
				Want:        Idle,
				WantEffects: []string{host.KindFocus, host.KindCallback},
				Check:       wantValue("cherry"),
			},
		},
	})

	smtest.RunScenario(t, smtest.Scenario[State, Context]{
		Name:       "escape keeps the value",
		Definition: Definition(),
		Context:    mounted("apple"),
		Steps: []smtest.Step[State, Context]{
			{Event: KeyDownNavigate{}, Want: Navigating, Check: wantNav("apple")},
			{Event: KeyDownNavigate{OptionData{Value: "banana"}}, Want: Navigating},
			{Event: KeyDownEscape{}, Want: Idle, WantEffects: []string{host.KindFocus}, Check: wantValue("apple")},
		},
	})

	smtest.RunScenario(t, smtest.Scenario[State, Context]{
		Name:       "disabled selection falls back to the first enabled option",
		Definition: Definition(),
		Context:    mounted("blueberry"),
		Steps: []smtest.Step[State, Context]{
			{Event: KeyDownSpace{}, Want: Navigating, Check: wantNav("apple")},
		},
	})

	smtest.RunScenario(t, smtest.Scenario[State, Context]{
		Name:       "enter on a closed listbox submits its form",
		Definition: Definition(),
		Context: &Context{
			Value: "apple",
			Refs:  Refs{Button: "button", HiddenInput: "input"},
		},
		Steps: []smtest.Step[State, Context]{
			{Event: KeyDownEnter{}, Want: Idle, WantEffects: []string{host.KindSubmitForm}},
		},
	})
}

func TestChartTypeahead(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	smtest.RunScenario(t, smtest.Scenario[State, Context]{
		Name:       "closed typeahead selects",
		Definition: Definition(),
		Context:    mounted("apple"),
		Steps: []smtest.Step[State, Context]{
			{Event: KeyDownSearch{Query: "c", At: at}, Want: Idle, WantEffects: []string{host.KindSchedule}},
			{Event: UpdateAfterTypeahead{Query: "c"}, Want: Idle, WantEffects: []string{host.KindCallback}},
			{Event: ClearTypeahead{}, Want: Idle, Check: func(t *testing.T, s snap) {
				t.Helper()
				assert.Empty(t, s.Context.Typeahead.Query)
				assert.Equal(t, "cherry", s.Context.Value)
			}},
		},
	})

	smtest.RunScenario(t, smtest.Scenario[State, Context]{
		Name:       "open typeahead highlights and skips disabled options",
		Definition: Definition(),
		Context:    mounted("apple"),
		Steps: []smtest.Step[State, Context]{
			{Event: ButtonMouseDown{}, Want: Open},
			{Event: KeyDownSearch{Query: "b", At: at}, Want: Navigating},
			{Event: KeyDownSearch{Query: "l", At: at.Add(100 * time.Millisecond)}, Want: Navigating},
			{Event: UpdateAfterTypeahead{Query: "bl"}, Want: Navigating, Check: wantNav("apple")},
			{Event: UpdateAfterTypeahead{Query: "ba"}, Want: Navigating, Check: func(t *testing.T, s snap) {
				t.Helper()
				assert.Equal(t, "banana", s.Context.NavigationValue)
				assert.Equal(t, "apple", s.Context.Value)
			}},
		},
	})
}

func TestChartFocus(t *testing.T) {
	t.Parallel()

	smtest.RunScenario(t, smtest.Scenario[State, Context]{
		Name:       "blur outside closes",
		Definition: Definition(),
		Context:    mounted("apple"),
		Steps: []smtest.Step[State, Context]{
			{Event: KeyDownSpace{}, Want: Navigating},
			{Event: Blur{RelatedTarget: "page"}, Want: Idle},
		},
	})

	smtest.RunScenario(t, smtest.Scenario[State, Context]{
		Name:       "focus moving inside the popover interacts",
		Definition: Definition(),
		Context:    mounted("apple"),
		Steps: []smtest.Step[State, Context]{
			{Event: KeyDownSpace{}, Want: Navigating},
			{Event: Blur{RelatedTarget: "close-button"}, Want: Interacting, Check: wantNav("")},
			{Event: KeyDownEnter{}, Want: Interacting},
			{Event: KeyDownNavigate{OptionData{Value: "banana"}}, Want: Navigating, Check: wantNav("banana")},
		},
		Matchers: []smtest.Matcher[State, Context]{
			smtest.TransitionWasTaken[State, Context](Navigating, Interacting),
		},
	})

	smtest.RunScenario(t, smtest.Scenario[State, Context]{
		Name:       "controlled value change is not reported",
		Definition: Definition(),
		Context:    mounted("apple"),
		Steps: []smtest.Step[State, Context]{
			{Event: ValueChange{Value: "cherry"}, Want: Idle, WantEffects: []string{}, Check: wantValue("cherry")},
		},
	})
}

func newFruitListbox(t *testing.T, opts Options) *Listbox {
	t.Helper()

	if opts.ID == "" {
		opts.ID = "lb"
	}

	l, err := New(opts, tree, nil)
	require.NoError(t, err)

	ctx := context.Background()
	l.Mount(ctx, Refs{Button: "button", List: "list", Popover: "popover"})
	l.SetOptions(ctx, fruits)

	return l
}

func key(k string) host.Event {
	return host.Event{Type: host.KeyDown, Key: k}
}

func TestListboxSelectsFirstEnabledOption(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	l, err := New(Options{ID: "lb"}, tree, nil)
	require.NoError(t, err)

	l.Mount(ctx, Refs{Button: "button", List: "list", Popover: "popover"})
	assert.Empty(t, l.Value())

	effects := l.SetOptions(ctx, []Option{{Value: "x", Disabled: true}, {Value: "y"}, {Value: "z"}})
	assert.Equal(t, "y", l.Value())
	assert.Empty(t, host.Callbacks(effects, CallbackChange))

	l.RegisterOption(ctx, Option{Value: "w"}, -1)
	assert.Equal(t, "y", l.Value(), "auto selection happens once")
	assert.Equal(t, "w", l.Options()[0].Value)
}

func TestListboxKeyboard(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	l := newFruitListbox(t, Options{})
	assert.Equal(t, "apple", l.Value())

	effects := l.HandleButtonEvent(ctx, key(host.KeySpace))
	assert.True(t, l.IsExpanded())
	assert.Equal(t, []string{host.KindPreventDefault, host.KindFocus}, smtest.EffectKinds(effects))

	l.HandleListEvent(ctx, key(host.KeyArrowUp))
	assert.Equal(t, "cherry", l.NavigationValue(), "wraps to the last enabled option")

	l.HandleListEvent(ctx, key(host.KeyArrowUp))
	assert.Equal(t, "banana", l.NavigationValue(), "skips disabled options")

	assert.Equal(t, "option-banana--lb", l.ListAttributes()["aria-activedescendant"])
	assert.Contains(t, l.OptionAttributes("banana"), "data-current-nav")

	effects = l.HandleListEvent(ctx, key(host.KeyEnter))
	assert.False(t, l.IsExpanded())
	assert.Equal(t, "banana", l.Value())
	assert.Equal(t, "Banana", l.ValueLabel())
	assert.Equal(t, []host.Callback{{Name: CallbackChange, Value: "banana"}}, host.Callbacks(effects, CallbackChange))
	assert.Equal(t, "option-banana--lb", l.ListAttributes()["aria-activedescendant"])
	assert.Equal(t, "true", l.OptionAttributes("banana")["aria-selected"])
	assert.Equal(t, "true", l.OptionAttributes("blueberry")["aria-disabled"])
}

func TestListboxPointer(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	l := newFruitListbox(t, Options{})

	effects := l.HandleButtonEvent(ctx, host.Event{Type: host.MouseDown})
	assert.Equal(t, []string{host.KindPreventDefault}, smtest.EffectKinds(effects))
	assert.Equal(t, Open, l.State())
	assert.Equal(t, "true", l.ButtonAttributes()["aria-expanded"])

	assert.Nil(t, l.HandleButtonEvent(ctx, host.Event{Type: host.MouseDown, Button: host.ButtonSecondary}))

	l.HandleOptionEvent(ctx, "cherry", host.Event{Type: host.MouseMove})
	assert.Equal(t, Dragging, l.State())

	l.HandleOptionEvent(ctx, "cherry", host.Event{Type: host.MouseUp})
	assert.Equal(t, Idle, l.State())
	assert.Equal(t, "cherry", l.Value())

	l.HandleButtonEvent(ctx, host.Event{Type: host.MouseDown})
	l.HandleOutsideEvent(ctx, host.Event{Type: host.MouseDown, Target: "page"})
	assert.Equal(t, Idle, l.State())
	assert.Nil(t, l.HandleOutsideEvent(ctx, host.Event{Type: host.MouseDown, Target: "page"}))
}

func TestListboxTypeahead(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := hosttest.NewFakeClock()
	l := newFruitListbox(t, Options{}).WithClock(clock)

	effects := l.HandleButtonEvent(ctx, key("c"))
	assert.Equal(t, []string{host.KindSchedule, host.KindCallback}, smtest.EffectKinds(effects))
	assert.Equal(t, "cherry", l.Value())

	schedule := host.EffectsOf[host.Schedule](effects)[0]
	l.Send(ctx, schedule.Event)
	assert.Empty(t, l.Machine().Context().Typeahead.Query)
}

func TestListboxControlled(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	value := "cherry"
	l := newFruitListbox(t, Options{Value: &value})
	assert.Equal(t, "cherry", l.Value())

	next := "banana"
	assert.Empty(t, l.Update(ctx, Options{ID: "lb", Value: &next}))
	assert.Equal(t, "banana", l.Value())
}

func TestListboxDisabled(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	l := newFruitListbox(t, Options{Disabled: true, Name: "fruit"})

	l.HandleButtonEvent(ctx, host.Event{Type: host.MouseDown})
	l.HandleButtonEvent(ctx, key(host.KeySpace))
	l.HandleButtonEvent(ctx, key(host.KeyArrowDown))
	assert.False(t, l.IsExpanded())

	assert.Equal(t, "true", l.ButtonAttributes()["aria-disabled"])
	assert.True(t, l.HiddenInput())
	assert.Equal(t, map[string]string{
		"type":     "hidden",
		"value":    "apple",
		"name":     "fruit",
		"disabled": "",
	}, l.InputAttributes())
}

func TestListboxGeneratedID(t *testing.T) {
	t.Parallel()

	l, err := New(Options{}, nil, host.UUIDGenerator{})
	require.NoError(t, err)

	assert.Contains(t, l.ID(), "listbox-input--")
	assert.Equal(t, "button--"+l.ID(), l.ButtonAttributes()["id"])
}
