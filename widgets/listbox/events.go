// Package listbox implements a collapsible single-select listbox: a button that
// opens a popover list of options navigable by keyboard, pointer and typeahead.
package listbox

import (
	"time"

	"github.com/amp-labs/amp-a11y/host"
	"github.com/amp-labs/amp-a11y/statemachine"
)

// State of the listbox machine.
type State string

const (
	Idle        State = "idle"
	Open        State = "open"
	Navigating  State = "navigating"
	Dragging    State = "dragging"
	Interacting State = "interacting"
)

// Event types.
const (
	EventButtonMouseDown      statemachine.EventType = "BUTTON_MOUSE_DOWN"
	EventButtonMouseUp        statemachine.EventType = "BUTTON_MOUSE_UP"
	EventBlur                 statemachine.EventType = "BLUR"
	EventClearNavSelection    statemachine.EventType = "CLEAR_NAV_SELECTION"
	EventClearTypeahead       statemachine.EventType = "CLEAR_TYPEAHEAD"
	EventGetDerivedData       statemachine.EventType = "GET_DERIVED_DATA"
	EventKeyDownEscape        statemachine.EventType = "KEY_DOWN_ESCAPE"
	EventKeyDownEnter         statemachine.EventType = "KEY_DOWN_ENTER"
	EventKeyDownSpace         statemachine.EventType = "KEY_DOWN_SPACE"
	EventKeyDownNavigate      statemachine.EventType = "KEY_DOWN_NAVIGATE"
	EventKeyDownSearch        statemachine.EventType = "KEY_DOWN_SEARCH"
	EventKeyDownTab           statemachine.EventType = "KEY_DOWN_TAB"
	EventKeyDownShiftTab      statemachine.EventType = "KEY_DOWN_SHIFT_TAB"
	EventOptionTouchStart     statemachine.EventType = "OPTION_TOUCH_START"
	EventOptionMouseMove      statemachine.EventType = "OPTION_MOUSE_MOVE"
	EventOptionMouseEnter     statemachine.EventType = "OPTION_MOUSE_ENTER"
	EventOptionMouseDown      statemachine.EventType = "OPTION_MOUSE_DOWN"
	EventOptionMouseUp        statemachine.EventType = "OPTION_MOUSE_UP"
	EventOptionClick          statemachine.EventType = "OPTION_CLICK"
	EventOptionPress          statemachine.EventType = "OPTION_PRESS"
	EventListMouseUp          statemachine.EventType = "LIST_MOUSE_UP"
	EventOutsideMouseDown     statemachine.EventType = "OUTSIDE_MOUSE_DOWN"
	EventOutsideMouseUp       statemachine.EventType = "OUTSIDE_MOUSE_UP"
	EventValueChange          statemachine.EventType = "VALUE_CHANGE"
	EventUpdateAfterTypeahead statemachine.EventType = "UPDATE_AFTER_TYPEAHEAD"
)

// Option is one selectable value in the list.
type Option struct {
	Value    string `json:"value"              yaml:"value"`
	Text     string `json:"label,omitempty"    yaml:"label,omitempty"`
	Disabled bool   `json:"disabled,omitempty" yaml:"disabled,omitempty"`
}

// Label is the text used for typeahead and the button label. It falls back to the value.
func (o Option) Label() string {
	if o.Text != "" {
		return o.Text
	}

	return o.Value
}

// IsDisabled implements typeahead.Item.
func (o Option) IsDisabled() bool { return o.Disabled }

// Refs are the nodes the listbox renders.
type Refs struct {
	Button      host.Node
	List        host.Node
	Popover     host.Node
	HiddenInput host.Node
}

// OptionData identifies the option an event is about.
type OptionData struct {
	Value    string
	Disabled bool
}

func (o OptionData) eventValue() string  { return o.Value }
func (o OptionData) eventDisabled() bool { return o.Disabled }

type valued interface {
	eventValue() string
}

type disableable interface {
	eventDisabled() bool
}

// ButtonMouseDown toggles the list from the button.
type ButtonMouseDown struct {
	Disabled bool
}

func (ButtonMouseDown) Type() statemachine.EventType { return EventButtonMouseDown }
func (e ButtonMouseDown) eventDisabled() bool        { return e.Disabled }

// ButtonMouseUp completes a press on the button.
type ButtonMouseUp struct{}

func (ButtonMouseUp) Type() statemachine.EventType { return EventButtonMouseUp }

// Blur is sent when the popover loses focus.
type Blur struct {
	RelatedTarget host.Node
}

func (Blur) Type() statemachine.EventType { return EventBlur }

// ClearNavSelection clears the highlighted option.
type ClearNavSelection struct{}

func (ClearNavSelection) Type() statemachine.EventType { return EventClearNavSelection }

// ClearTypeahead drops the typeahead query.
type ClearTypeahead struct{}

func (ClearTypeahead) Type() statemachine.EventType { return EventClearTypeahead }

// GetDerivedData copies the registered options and rendered nodes into the context.
type GetDerivedData struct {
	Options []Option
	Refs    Refs
}

func (GetDerivedData) Type() statemachine.EventType { return EventGetDerivedData }

// KeyDownEscape closes the list.
type KeyDownEscape struct{}

func (KeyDownEscape) Type() statemachine.EventType { return EventKeyDownEscape }

// KeyDownEnter selects the highlighted option, or submits the form when closed.
type KeyDownEnter struct{ OptionData }

func (KeyDownEnter) Type() statemachine.EventType { return EventKeyDownEnter }

// KeyDownSpace opens the list or selects the highlighted option.
type KeyDownSpace struct{ OptionData }

func (KeyDownSpace) Type() statemachine.EventType { return EventKeyDownSpace }

// KeyDownNavigate highlights the option reached by an arrow, Home or End key.
type KeyDownNavigate struct{ OptionData }

func (KeyDownNavigate) Type() statemachine.EventType { return EventKeyDownNavigate }

// KeyDownSearch appends a printable key to the typeahead query.
type KeyDownSearch struct {
	Query    string
	Disabled bool
	At       time.Time
}

func (KeyDownSearch) Type() statemachine.EventType { return EventKeyDownSearch }
func (e KeyDownSearch) eventDisabled() bool        { return e.Disabled }

// KeyDownTab is Tab pressed inside the listbox.
type KeyDownTab struct{}

func (KeyDownTab) Type() statemachine.EventType { return EventKeyDownTab }

// KeyDownShiftTab is Shift+Tab pressed inside the listbox.
type KeyDownShiftTab struct{}

func (KeyDownShiftTab) Type() statemachine.EventType { return EventKeyDownShiftTab }

// OptionTouchStart highlights a touched option.
type OptionTouchStart struct{ OptionData }

func (OptionTouchStart) Type() statemachine.EventType { return EventOptionTouchStart }

// OptionMouseMove tracks the pointer over an option.
type OptionMouseMove struct{ OptionData }

func (OptionMouseMove) Type() statemachine.EventType { return EventOptionMouseMove }

// OptionMouseEnter highlights the option under the pointer.
type OptionMouseEnter struct{ OptionData }

func (OptionMouseEnter) Type() statemachine.EventType { return EventOptionMouseEnter }

// OptionMouseDown starts a press on an option.
type OptionMouseDown struct{}

func (OptionMouseDown) Type() statemachine.EventType { return EventOptionMouseDown }

// OptionMouseUp selects the option under the pointer after a drag.
type OptionMouseUp struct{ OptionData }

func (OptionMouseUp) Type() statemachine.EventType { return EventOptionMouseUp }

// OptionClick selects an option.
type OptionClick struct{ OptionData }

func (OptionClick) Type() statemachine.EventType { return EventOptionClick }

// OptionPress selects an option from an assistive technology press.
type OptionPress struct{ OptionData }

func (OptionPress) Type() statemachine.EventType { return EventOptionPress }

// ListMouseUp is a mouseup on the popover outside of any option.
type ListMouseUp struct{}

func (ListMouseUp) Type() statemachine.EventType { return EventListMouseUp }

// OutsideMouseDown is a mousedown outside the popover while expanded.
type OutsideMouseDown struct {
	RelatedTarget host.Node
}

func (OutsideMouseDown) Type() statemachine.EventType { return EventOutsideMouseDown }

// OutsideMouseUp is a mouseup outside the popover while expanded.
type OutsideMouseUp struct {
	RelatedTarget host.Node
}

func (OutsideMouseUp) Type() statemachine.EventType { return EventOutsideMouseUp }

// ValueChange sets the value without user interaction, either from a controlled
// prop or when an uncontrolled listbox picks its first option.
type ValueChange struct {
	Value string
}

func (ValueChange) Type() statemachine.EventType { return EventValueChange }
func (e ValueChange) eventValue() string         { return e.Value }

// UpdateAfterTypeahead applies the current query to the value or the highlight.
type UpdateAfterTypeahead struct {
	Query string
}

func (UpdateAfterTypeahead) Type() statemachine.EventType { return EventUpdateAfterTypeahead }
