package host

import (
	"time"

	"github.com/amp-labs/amp-a11y/statemachine"
)

// TimerKey names a host timer. Scheduling with a key that is already pending
// replaces the pending timer.
type TimerKey string

// Effect kinds.
const (
	KindFocus          = "focus"
	KindScrollIntoView = "scrollIntoView"
	KindSchedule       = "schedule"
	KindCancel         = "cancel"
	KindCallback       = "callback"
	KindSubmitForm     = "submitForm"
	KindPreventDefault = "preventDefault"
	KindActivate       = "activate"
	KindSelectText     = "selectText"
)

// Focus moves DOM focus to Node. Deferred focus waits for the next animation frame
// so the host has committed the render that made Node focusable.
type Focus struct {
	Node     Node
	Deferred bool
}

func (Focus) Kind() string { return KindFocus }

// ScrollIntoView asks the host to reveal Node inside its scroll container.
type ScrollIntoView struct {
	Node Node
}

func (ScrollIntoView) Kind() string { return KindScrollIntoView }

// Schedule delivers Event back to the machine after the delay.
type Schedule struct {
	Timer TimerKey
	After time.Duration
	Event statemachine.Event
}

func (Schedule) Kind() string { return KindSchedule }

// Cancel clears a pending timer.
type Cancel struct {
	Timer TimerKey
}

func (Cancel) Kind() string { return KindCancel }

// Callback invokes an application callback, such as onChange or onSelect.
type Callback struct {
	Name  string
	Value any
}

func (Callback) Kind() string { return KindCallback }

// SubmitForm submits the form that owns the widget.
type SubmitForm struct{}

func (SubmitForm) Kind() string { return KindSubmitForm }

// PreventDefault cancels the host's default handling of the current event.
type PreventDefault struct{}

func (PreventDefault) Kind() string { return KindPreventDefault }

// ActivateNode performs a native activation of Node, used for link items so
// navigation stays with the host.
type ActivateNode struct {
	Node Node
}

func (ActivateNode) Kind() string { return KindActivate }

// SelectText selects the text of the input Node.
type SelectText struct {
	Node Node
}

func (SelectText) Kind() string { return KindSelectText }

// EffectsOf filters effects down to one concrete type, keeping order.
func EffectsOf[T statemachine.Effect](effects []statemachine.Effect) []T {
	var out []T

	for _, eff := range effects {
		if typed, ok := eff.(T); ok {
			out = append(out, typed)
		}
	}

	return out
}

// Callbacks returns the callback effects named name.
func Callbacks(effects []statemachine.Effect, name string) []Callback {
	var out []Callback

	for _, cb := range EffectsOf[Callback](effects) {
		if cb.Name == name {
			out = append(out, cb)
		}
	}

	return out
}
