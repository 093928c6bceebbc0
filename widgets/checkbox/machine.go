// Package checkbox implements a tri-state checkbox whose checked value may be true,
// false or "mixed".
package checkbox

import (
	"embed"
	"fmt"
	"sync"

	"github.com/amp-labs/amp-a11y/host"
	"github.com/amp-labs/amp-a11y/statemachine"
)

//go:embed chart.yaml
var chartFS embed.FS

// State is the checked state of the checkbox.
type State string

const (
	Unchecked State = "unchecked"
	Checked   State = "checked"
	Mixed     State = "mixed"
)

// Event types.
const (
	EventToggle         statemachine.EventType = "TOGGLE"
	EventSet            statemachine.EventType = "SET"
	EventMount          statemachine.EventType = "MOUNT"
	EventGetDerivedData statemachine.EventType = "GET_DERIVED_DATA"
	EventUnmount        statemachine.EventType = "UNMOUNT"
)

// Refs are the nodes the checkbox renders. Every event carries them so entry
// actions can keep the context current.
type Refs struct {
	Input host.Node
}

func (r Refs) refs() Refs { return r }

type refCarrier interface {
	refs() Refs
}

// Toggle flips an uncontrolled checkbox.
type Toggle struct{ Refs }

func (Toggle) Type() statemachine.EventType { return EventToggle }

// Set moves a controlled checkbox to State.
type Set struct {
	Refs
	State State
}

func (Set) Type() statemachine.EventType { return EventSet }

// Mount records the input node.
type Mount struct{ Refs }

func (Mount) Type() statemachine.EventType { return EventMount }

// GetDerivedData copies props that may change between renders into the context.
type GetDerivedData struct {
	Refs
	Disabled     bool
	IsControlled bool
}

func (GetDerivedData) Type() statemachine.EventType { return EventGetDerivedData }

// Unmount is taken by every state without leaving it or touching the context.
type Unmount struct{ Refs }

func (Unmount) Type() statemachine.EventType { return EventUnmount }

// Context is the extended state of the checkbox machine.
type Context struct {
	Disabled     bool
	IsControlled bool
	Input        host.Node
}

// Registry returns the guards and actions the chart refers to.
func Registry() *statemachine.Registry[Context] {
	assignRefs := statemachine.Assign("assignRefs", func(c Context, ev statemachine.Event) Context {
		if rc, ok := ev.(refCarrier); ok {
			c.Input = rc.refs().Input
		}

		return c
	})

	assignDerivedData := statemachine.Assign("assignDerivedData", func(c Context, ev statemachine.Event) Context {
		if d, ok := ev.(GetDerivedData); ok {
			c.Disabled = d.Disabled
			c.IsControlled = d.IsControlled
		}

		return c
	})

	toggleAllowed := statemachine.When("toggleAllowed", func(c Context, _ statemachine.Event) bool {
		return !c.IsControlled && !c.Disabled
	})

	return statemachine.NewRegistry[Context]().
		RegisterAction(assignRefs).
		RegisterAction(assignDerivedData).
		RegisterGuard(toggleAllowed).
		RegisterGuard(setCondition("setChecked", Checked)).
		RegisterGuard(setCondition("setUnchecked", Unchecked)).
		RegisterGuard(setCondition("setMixed", Mixed))
}

// setCondition passes when the checkbox is controlled and the Set event names target.
func setCondition(name string, target State) *statemachine.Guard[Context] {
	return statemachine.When(name, func(c Context, ev statemachine.Event) bool {
		set, ok := ev.(Set)

		return ok && c.IsControlled && set.State == target
	})
}

// ChartConfig returns the embedded chart.
func ChartConfig() (*statemachine.ChartConfig, error) {
	return statemachine.LoadChartConfigFromFS(chartFS, "chart.yaml")
}

var definition = sync.OnceValues(func() (*statemachine.Definition[State, Context], error) {
	config, err := ChartConfig()
	if err != nil {
		return nil, err
	}

	def, err := statemachine.BuildDefinition[State](config, Registry(), Context{})
	if err != nil {
		return nil, fmt.Errorf("checkbox chart: %w", err)
	}

	return def, nil
})

// Definition returns the checkbox chart. It is built once and shared.
func Definition() (*statemachine.Definition[State, Context], error) {
	return definition()
}

// FromValue maps a checked prop to a state: true is checked, "mixed" is mixed and
// anything else is unchecked.
func FromValue(v any) State {
	switch v {
	case true:
		return Checked
	case "mixed", Mixed:
		return Mixed
	default:
		return Unchecked
	}
}

// AriaChecked is the aria-checked value for the state.
func (s State) AriaChecked() string {
	switch s {
	case Checked:
		return "true"
	case Mixed:
		return "mixed"
	case Unchecked:
		return "false"
	default:
		return "false"
	}
}

// Checked is the native checked property. A mixed checkbox is not checked.
func (s State) Checked() bool {
	return s == Checked
}

// Value is the inverse of FromValue.
func (s State) Value() any {
	switch s {
	case Checked:
		return true
	case Mixed:
		return "mixed"
	case Unchecked:
		return false
	default:
		return false
	}
}

func (s State) toggled() State {
	if s == Checked {
		return Unchecked
	}

	return Checked
}
