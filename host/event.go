// Package host defines the contract between the widget machines and whatever renders
// them: normalized input events, opaque node handles, the effects machines ask the
// host to perform, and the black-box services (focus traps, popovers, ids) they use.
package host

import (
	"time"
	"unicode"
	"unicode/utf8"
)

// Node is an opaque handle to a rendered element owned by the host. The zero value
// means "no node".
type Node string

// EventType is the normalized host event name.
type EventType string

const (
	KeyDown    EventType = "keydown"
	KeyUp      EventType = "keyup"
	MouseDown  EventType = "mousedown"
	MouseUp    EventType = "mouseup"
	MouseMove  EventType = "mousemove"
	MouseEnter EventType = "mouseenter"
	MouseLeave EventType = "mouseleave"
	Click      EventType = "click"
	TouchStart EventType = "touchstart"
	TouchMove  EventType = "touchmove"
	TouchEnd   EventType = "touchend"
	FocusIn    EventType = "focus"
	Blur       EventType = "blur"
	Change     EventType = "change"
	Input      EventType = "input"
)

// Key names follow the DOM KeyboardEvent.key values.
const (
	KeyArrowDown  = "ArrowDown"
	KeyArrowUp    = "ArrowUp"
	KeyArrowLeft  = "ArrowLeft"
	KeyArrowRight = "ArrowRight"
	KeyHome       = "Home"
	KeyEnd        = "End"
	KeyPageUp     = "PageUp"
	KeyPageDown   = "PageDown"
	KeyEnter      = "Enter"
	KeySpace      = " "
	KeyEscape     = "Escape"
	KeyTab        = "Tab"
	KeyBackspace  = "Backspace"
	KeyDelete     = "Delete"
)

// Mouse buttons.
const (
	ButtonPrimary   = 0
	ButtonAuxiliary = 1
	ButtonSecondary = 2
)

// Event is a host input normalized to the fields the machines read.
type Event struct {
	Type   EventType
	Key    string
	Button int
	X, Y   float64

	Shift, Ctrl, Meta, Alt bool

	// Value carries the input text for Change and Input events.
	Value     string
	Timestamp time.Time

	Target        Node
	RelatedTarget Node
}

// Point returns the event coordinates.
func (e Event) Point() Point {
	return Point{X: e.X, Y: e.Y}
}

// IsPrimaryButton reports whether a mouse event came from the main button.
func (e Event) IsPrimaryButton() bool {
	return e.Button == ButtonPrimary
}

// Point is a position in host coordinates.
type Point struct {
	X, Y float64
}

// IsCharacterKey reports whether key is a single printable character, the kind of
// key that feeds typeahead.
func IsCharacterKey(key string) bool {
	if utf8.RuneCountInString(key) != 1 {
		return false
	}

	r, _ := utf8.DecodeRuneInString(key)

	return unicode.IsPrint(r)
}
