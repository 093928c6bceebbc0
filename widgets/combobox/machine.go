// Package combobox implements an autocomplete input: the user types, a popover
// suggests options, and arrow keys move a highlight that can be selected.
package combobox

import (
	"embed"
	"fmt"
	"sync"

	"github.com/amp-labs/amp-a11y/statemachine"
)

//go:embed chart.yaml
var chartFS embed.FS

// State of the combobox machine.
type State string

const (
	// Idle waits for the user to type or use the arrow keys.
	Idle State = "idle"
	// Suggesting shows options as the user types.
	Suggesting State = "suggesting"
	// Navigating moves a highlight through the options with the keyboard.
	Navigating State = "navigating"
	// Interacting means focus moved to other elements inside the popover.
	Interacting State = "interacting"
)

// IsExpanded reports whether the popover is shown in state s.
func IsExpanded(s State) bool {
	return s == Suggesting || s == Navigating || s == Interacting
}

// Event types.
const (
	EventClear              statemachine.EventType = "CLEAR"
	EventChange             statemachine.EventType = "CHANGE"
	EventInitialChange      statemachine.EventType = "INITIAL_CHANGE"
	EventNavigate           statemachine.EventType = "NAVIGATE"
	EventSelectWithKeyboard statemachine.EventType = "SELECT_WITH_KEYBOARD"
	EventSelectWithClick    statemachine.EventType = "SELECT_WITH_CLICK"
	EventEscape             statemachine.EventType = "ESCAPE"
	EventBlur               statemachine.EventType = "BLUR"
	EventInteract           statemachine.EventType = "INTERACT"
	EventFocus              statemachine.EventType = "FOCUS"
	EventOpenWithButton     statemachine.EventType = "OPEN_WITH_BUTTON"
	EventOpenWithInputClick statemachine.EventType = "OPEN_WITH_INPUT_CLICK"
	EventCloseWithButton    statemachine.EventType = "CLOSE_WITH_BUTTON"
)

// Clear is sent when the user empties the input.
type Clear struct{}

// Change is sent as the user types.
type Change struct {
	Value string
}

// InitialChange syncs the first controlled value without opening the popover.
type InitialChange struct {
	Value string
}

// Navigate moves the highlight to Value. An empty Value returns to what the user
// typed, or to the current value when PersistSelection is set.
type Navigate struct {
	Value            string
	PersistSelection bool
}

// SelectWithKeyboard selects the highlighted option.
type SelectWithKeyboard struct {
	IsControlled bool
}

// SelectWithClick selects a clicked option.
type SelectWithClick struct {
	Value        string
	IsControlled bool
}

// Escape closes the popover.
type Escape struct{}

// Blur is sent when focus leaves the combobox.
type Blur struct{}

// Interact is sent when focus moves to an element inside the popover.
type Interact struct{}

// Focus opens the popover when the input gains focus with openOnFocus.
type Focus struct {
	PersistSelection bool
}

// OpenWithButton opens the popover from the button.
type OpenWithButton struct{}

// OpenWithInputClick opens the popover when the input is clicked with openOnFocus.
type OpenWithInputClick struct{}

// CloseWithButton closes the popover from the button.
type CloseWithButton struct{}

func (Clear) Type() statemachine.EventType              { return EventClear }
func (Change) Type() statemachine.EventType             { return EventChange }
func (InitialChange) Type() statemachine.EventType      { return EventInitialChange }
func (Navigate) Type() statemachine.EventType           { return EventNavigate }
func (SelectWithKeyboard) Type() statemachine.EventType { return EventSelectWithKeyboard }
func (SelectWithClick) Type() statemachine.EventType    { return EventSelectWithClick }
func (Escape) Type() statemachine.EventType             { return EventEscape }
func (Blur) Type() statemachine.EventType               { return EventBlur }
func (Interact) Type() statemachine.EventType           { return EventInteract }
func (Focus) Type() statemachine.EventType              { return EventFocus }
func (OpenWithButton) Type() statemachine.EventType     { return EventOpenWithButton }
func (OpenWithInputClick) Type() statemachine.EventType { return EventOpenWithInputClick }
func (CloseWithButton) Type() statemachine.EventType    { return EventCloseWithButton }

// Data is the extended state of the combobox machine.
type Data struct {
	// Value is what the user typed, or the selected option.
	Value string
	// NavigationValue is the highlighted option, "" for none.
	NavigationValue string
	// LastEventType is the type of the last event the machine accepted.
	LastEventType statemachine.EventType
}

// Reduce computes the data that follows ev.
func Reduce(data Data, ev statemachine.Event) Data {
	next := data
	next.LastEventType = ev.Type()

	switch e := ev.(type) {
	case Change:
		next.Value = e.Value
		next.NavigationValue = ""
	case InitialChange:
		next.Value = e.Value
		next.NavigationValue = ""
	case Navigate:
		next.NavigationValue = navigationValue(next, e.Value, e.PersistSelection)
	case Focus:
		next.NavigationValue = navigationValue(next, "", e.PersistSelection)
	case OpenWithButton, OpenWithInputClick:
		next.NavigationValue = ""
	case Clear:
		next.Value = ""
		next.NavigationValue = ""
	case Blur, Escape, CloseWithButton:
		next.NavigationValue = ""
	case SelectWithClick:
		if !e.IsControlled {
			next.Value = e.Value
		}

		next.NavigationValue = ""
	case SelectWithKeyboard:
		if !e.IsControlled {
			next.Value = data.NavigationValue
		}

		next.NavigationValue = ""
	}

	return next
}

// navigationValue highlights the option the event names, or the current value when
// the list persists its selection.
func navigationValue(data Data, value string, persist bool) string {
	switch {
	case value != "":
		return value
	case persist:
		return data.Value
	default:
		return ""
	}
}

// Registry returns the actions the chart refers to. Every accepted event runs the
// data reducer.
func Registry() *statemachine.Registry[Data] {
	return statemachine.NewRegistry[Data]().
		RegisterAction(statemachine.Assign("reduce", Reduce))
}

// refocusesInput lists the events after which focus returns to the input, since the
// user may have moved it into the popover.
func refocusesInput(t statemachine.EventType) bool {
	switch t {
	case EventNavigate, EventEscape, EventSelectWithClick, EventOpenWithButton:
		return true
	default:
		return false
	}
}

// ChartConfig returns the embedded chart.
func ChartConfig() (*statemachine.ChartConfig, error) {
	return statemachine.LoadChartConfigFromFS(chartFS, "chart.yaml")
}

var definition = sync.OnceValues(func() (*statemachine.Definition[State, Data], error) {
	config, err := ChartConfig()
	if err != nil {
		return nil, err
	}

	def, err := statemachine.BuildDefinition[State](config, Registry(), Data{})
	if err != nil {
		return nil, fmt.Errorf("combobox chart: %w", err)
	}

	return def, nil
})

// Definition returns the combobox chart.
func Definition() (*statemachine.Definition[State, Data], error) {
	return definition()
}
