package listbox

import (
	"sync"

	"github.com/amp-labs/amp-a11y/host"
	"github.com/amp-labs/amp-a11y/statemachine"
	"github.com/amp-labs/amp-a11y/typeahead"
)

// CallbackChange is emitted when the user commits a new value.
const CallbackChange = "onChange"

// Context is the extended state of the listbox machine.
type Context struct {
	// Value is the selected option value, "" for none.
	Value string
	// NavigationValue is the highlighted option value, "" for none.
	NavigationValue string
	Typeahead       typeahead.Buffer
	Options         []Option
	Refs            Refs
	// Tree answers containment questions for blur and outside-click handling.
	Tree host.Tree

	previousValue string
}

func (c Context) option(value string) (Option, bool) {
	if value == "" {
		return Option{}, false
	}

	for _, o := range c.Options {
		if o.Value == value {
			return o, true
		}
	}

	return Option{}, false
}

func (c Context) contains(ancestor, node host.Node) bool {
	if c.Tree == nil || ancestor == "" || node == "" {
		return false
	}

	return c.Tree.Contains(ancestor, node)
}

type (
	action = statemachine.Action[Context]
	guard  = *statemachine.Guard[Context]
	cand   = statemachine.Candidate[State, Context]
)

var (
	clearNavigationValue = statemachine.Assign("clearNavigationValue", func(c Context, _ statemachine.Event) Context {
		c.NavigationValue = ""

		return c
	})

	clearTypeahead = statemachine.Assign("clearTypeahead", func(c Context, _ statemachine.Event) Context {
		c.Typeahead = c.Typeahead.Reset()

		return c
	})

	assignValue = statemachine.Assign("assignValue", func(c Context, ev statemachine.Event) Context {
		c.previousValue = c.Value

		if v, ok := ev.(valued); ok {
			c.Value = v.eventValue()
		}

		return c
	})

	navigate = statemachine.Assign("navigate", func(c Context, ev statemachine.Event) Context {
		if v, ok := ev.(valued); ok {
			c.NavigationValue = v.eventValue()
		}

		return c
	})

	// navigateFromCurrentValue highlights the selected option, or the first enabled
	// one when the selection is missing or disabled.
	navigateFromCurrentValue = statemachine.Assign("navigateFromCurrentValue",
		func(c Context, _ statemachine.Event) Context {
			if selected, ok := c.option(c.Value); ok && !selected.Disabled {
				c.NavigationValue = c.Value

				return c
			}

			c.NavigationValue = ""

			for _, o := range c.Options {
				if !o.Disabled {
					c.NavigationValue = o.Value

					break
				}
			}

			return c
		})

	focusList = statemachine.Emit("focusList", func(c Context, _ statemachine.Event) []statemachine.Effect {
		if c.Refs.List == "" {
			return nil
		}

		return []statemachine.Effect{host.Focus{Node: c.Refs.List, Deferred: true}}
	})

	focusButton = statemachine.Emit("focusButton", func(c Context, _ statemachine.Event) []statemachine.Effect {
		if c.Refs.Button == "" {
			return nil
		}

		return []statemachine.Effect{host.Focus{Node: c.Refs.Button}}
	})

	// selectOption reports a committed value that differs from the previous one.
	// Value changes driven by the app are not reported back.
	selectOption = statemachine.Emit("selectOption", func(c Context, ev statemachine.Event) []statemachine.Effect {
		if _, internal := ev.(ValueChange); internal || c.Value == c.previousValue {
			return nil
		}

		return []statemachine.Effect{host.Callback{Name: CallbackChange, Value: c.Value}}
	})

	submitForm = statemachine.Emit("submitForm", func(c Context, ev statemachine.Event) []statemachine.Effect {
		if _, ok := ev.(KeyDownEnter); !ok || c.Refs.HiddenInput == "" {
			return nil
		}

		return []statemachine.Effect{host.SubmitForm{}}
	})

	setTypeahead = statemachine.Reduce("setTypeahead", func(c Context, ev statemachine.Event) (Context, []statemachine.Effect) {
		search, ok := ev.(KeyDownSearch)
		if !ok {
			return c, nil
		}

		c.Typeahead = c.Typeahead.Append(search.Query, search.At)

		return c, []statemachine.Effect{c.Typeahead.ScheduleClear(ClearTypeahead{})}
	})

	setValueFromTypeahead = statemachine.Reduce("setValueFromTypeahead",
		func(c Context, ev statemachine.Event) (Context, []statemachine.Effect) {
			match, ok := typeaheadMatch(c, ev)
			if !ok || match.Value == c.Value {
				return c, nil
			}

			c.Value = match.Value

			return c, []statemachine.Effect{host.Callback{Name: CallbackChange, Value: match.Value}}
		})

	setNavSelectionFromTypeahead = statemachine.Assign("setNavSelectionFromTypeahead",
		func(c Context, ev statemachine.Event) Context {
			if match, ok := typeaheadMatch(c, ev); ok {
				c.NavigationValue = match.Value
			}

			return c
		})

	assignDerivedData = statemachine.Assign("assignDerivedData", func(c Context, ev statemachine.Event) Context {
		if d, ok := ev.(GetDerivedData); ok {
			c.Options = d.Options
			c.Refs = d.Refs
		}

		return c
	})
)

func typeaheadMatch(c Context, ev statemachine.Event) (Option, bool) {
	update, ok := ev.(UpdateAfterTypeahead)
	if !ok || update.Query == "" {
		return Option{}, false
	}

	match, _, found := typeahead.Match(c.Options, update.Query)

	return match, found
}

var (
	listboxIsNotDisabled = statemachine.When("listboxIsNotDisabled", func(_ Context, ev statemachine.Event) bool {
		d, ok := ev.(disableable)

		return !ok || !d.eventDisabled()
	})

	optionIsActive = statemachine.When("optionIsActive", func(c Context, _ statemachine.Event) bool {
		_, ok := c.option(c.NavigationValue)

		return ok
	})

	// optionIsNavigable only rejects touches on disabled options; the pointer may
	// still highlight a disabled option.
	optionIsNavigable = statemachine.When("optionIsNavigable", func(_ Context, ev statemachine.Event) bool {
		touch, ok := ev.(OptionTouchStart)

		return !ok || !touch.Disabled
	})

	optionIsSelectable = statemachine.When("optionIsSelectable", func(c Context, ev statemachine.Event) bool {
		if d, ok := ev.(disableable); ok && d.eventDisabled() {
			return false
		}

		if v, ok := ev.(valued); ok {
			return v.eventValue() != ""
		}

		return c.NavigationValue != ""
	})

	clickedOutsideOfListbox = statemachine.When("clickedOutsideOfListbox", func(c Context, ev statemachine.Event) bool {
		var target host.Node

		switch e := ev.(type) {
		case OutsideMouseDown:
			target = e.RelatedTarget
		case OutsideMouseUp:
			target = e.RelatedTarget
		default:
			return false
		}

		return target != c.Refs.Button &&
			c.Refs.Button != "" && !c.contains(c.Refs.Button, target) &&
			c.Refs.Popover != "" && !c.contains(c.Refs.Popover, target)
	})

	listboxLostFocus = statemachine.When("listboxLostFocus", func(c Context, ev statemachine.Event) bool {
		blur, ok := ev.(Blur)
		if !ok {
			return false
		}

		return blur.RelatedTarget != c.Refs.List &&
			c.Refs.Popover != "" && !c.contains(c.Refs.Popover, blur.RelatedTarget)
	})

	// shouldNavigate keeps navigating unless focus moved to another element inside
	// the popover.
	shouldNavigate = statemachine.When("shouldNavigate", func(c Context, ev statemachine.Event) bool {
		if blur, ok := ev.(Blur); ok && blur.RelatedTarget != "" &&
			c.contains(c.Refs.Popover, blur.RelatedTarget) && blur.RelatedTarget != c.Refs.List {
			return false
		}

		return optionIsActive.Check(c, ev)
	})
)

func selectCandidate(target State) cand {
	return cand{
		Target:  target,
		Guard:   optionIsSelectable,
		Actions: []action{assignValue, clearTypeahead, focusButton, selectOption},
	}
}

func to(target State, g guard, actions ...action) cand {
	return cand{Target: target, Guard: g, Actions: actions}
}

// blurCandidates and the outside-click lists share a shape across the expanded states.
func blurCandidates() []cand {
	return []cand{
		to(Idle, listboxLostFocus, clearTypeahead),
		to(Navigating, shouldNavigate),
		to(Interacting, nil, clearTypeahead, clearNavigationValue),
	}
}

func outsideMouseUp(activeActions, fallbackActions []action) []cand {
	return []cand{
		to(Idle, clickedOutsideOfListbox, clearTypeahead),
		to(Navigating, optionIsActive, activeActions...),
		to(Interacting, nil, fallbackActions...),
	}
}

func build() *statemachine.Definition[State, Context] {
	b := statemachine.NewBuilder("listbox", Idle, Context{})

	all := []State{Idle, Open, Navigating, Dragging, Interacting}
	expanded := []State{Open, Navigating, Dragging, Interacting}

	b.OnAll(all, EventGetDerivedData, to("", nil, assignDerivedData))
	b.OnAll(all, EventValueChange, to("", nil, assignValue, selectOption))

	b.State(Idle).
		On(EventButtonMouseDown, to(Open, listboxIsNotDisabled, navigateFromCurrentValue)).
		On(EventKeyDownSpace, to(Navigating, listboxIsNotDisabled, navigateFromCurrentValue, focusList)).
		On(EventKeyDownSearch, to(Idle, listboxIsNotDisabled, setTypeahead)).
		On(EventUpdateAfterTypeahead, to(Idle, listboxIsNotDisabled, setValueFromTypeahead)).
		On(EventClearTypeahead, to(Idle, nil, clearTypeahead)).
		On(EventKeyDownNavigate,
			to(Navigating, listboxIsNotDisabled, navigateFromCurrentValue, clearTypeahead, focusList)).
		On(EventKeyDownEnter, to("", listboxIsNotDisabled, submitForm))

	// Shared by every expanded state.
	b.OnAll(expanded, EventKeyDownSpace, selectCandidate(Idle))
	b.OnAll(expanded, EventButtonMouseDown, to(Idle, nil, focusButton))
	b.OnAll(expanded, EventKeyDownEscape, to(Idle, nil, focusButton))
	b.OnAll(expanded, EventOptionMouseDown, to(Dragging, nil))
	b.OnAll(expanded, EventBlur, blurCandidates()...)
	b.OnAll(expanded, EventOptionTouchStart, to(Navigating, optionIsNavigable, navigate, clearTypeahead))
	b.OnAll(expanded, EventOptionClick, selectCandidate(Idle))
	b.OnAll(expanded, EventOptionPress, selectCandidate(Idle))
	b.OnAll(expanded, EventKeyDownNavigate, to(Navigating, nil, navigate, clearTypeahead, focusList))

	// Open, navigating and dragging share typeahead and button release handling.
	popup := []State{Open, Navigating, Dragging}
	b.OnAll(popup, EventKeyDownEnter, selectCandidate(Idle))
	b.OnAll([]State{Open, Dragging}, EventClearNavSelection, to("", nil, clearNavigationValue))
	b.OnAll([]State{Navigating, Interacting}, EventClearNavSelection, to("", nil, clearNavigationValue, focusList))
	b.OnAll(popup, EventButtonMouseUp, to(Navigating, nil, navigateFromCurrentValue, focusList))
	b.OnAll(popup, EventKeyDownSearch, to(Navigating, nil, setTypeahead))
	b.OnAll(popup, EventUpdateAfterTypeahead, to("", nil, setNavSelectionFromTypeahead))
	b.OnAll(popup, EventClearTypeahead, to("", nil, clearTypeahead))

	b.State(Interacting).
		Entry(clearNavigationValue).
		// Enter while interacting re-enters the state.
		On(EventKeyDownEnter, to(Interacting, nil, clearNavigationValue)).
		On(EventOutsideMouseDown,
			to(Idle, clickedOutsideOfListbox, clearTypeahead),
			to(Dragging, optionIsActive, clearTypeahead)).
		On(EventOutsideMouseUp, outsideMouseUp(nil, []action{clearTypeahead, clearNavigationValue})...).
		On(EventOptionMouseEnter, to(Navigating, optionIsNavigable, navigate, clearTypeahead))

	b.State(Open).
		On(EventOutsideMouseDown,
			to(Idle, clickedOutsideOfListbox, clearTypeahead),
			to(Dragging, optionIsActive),
			to(Interacting, nil, clearTypeahead)).
		On(EventOutsideMouseUp, outsideMouseUp(nil, []action{clearTypeahead})...).
		On(EventListMouseUp, to(Navigating, nil, navigateFromCurrentValue, focusList)).
		On(EventOptionMouseMove,
			to(Dragging, optionIsNavigable, navigate),
			to(Dragging, nil))

	b.State(Dragging).
		On(EventOutsideMouseDown,
			to(Idle, clickedOutsideOfListbox, clearTypeahead),
			to(Navigating, optionIsActive),
			to(Interacting, nil, clearTypeahead)).
		On(EventOutsideMouseUp, outsideMouseUp([]action{focusList}, []action{clearTypeahead, focusList})...).
		On(EventOptionMouseEnter, to(Dragging, optionIsNavigable, navigate, clearTypeahead)).
		On(EventOptionMouseMove,
			to(Navigating, optionIsNavigable, navigate),
			to(Navigating, nil)).
		On(EventOptionMouseUp, selectCandidate(Idle))

	b.State(Navigating).
		On(EventOutsideMouseDown,
			to(Idle, clickedOutsideOfListbox, clearTypeahead),
			to(Navigating, optionIsActive),
			to(Interacting, nil, clearTypeahead)).
		On(EventOutsideMouseUp, outsideMouseUp(nil, []action{clearTypeahead})...).
		On(EventOptionMouseEnter, to(Navigating, optionIsNavigable, navigate, clearTypeahead)).
		On(EventOptionMouseMove,
			to(Navigating, optionIsNavigable, navigate),
			to(Navigating, nil))

	return b.MustBuild()
}

var definition = sync.OnceValue(build)

// Definition returns the listbox chart.
func Definition() *statemachine.Definition[State, Context] {
	return definition()
}

// IsExpanded reports whether the popover is shown in state s.
func IsExpanded(s State) bool {
	return s != Idle && s != ""
}
