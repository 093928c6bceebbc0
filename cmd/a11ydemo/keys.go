package main

import (
	"time"

	"github.com/amp-labs/amp-a11y/host"
	"github.com/gdamore/tcell/v2"
)

var namedKeys = map[tcell.Key]string{ //nolint:gochecknoglobals
	tcell.KeyUp:         host.KeyArrowUp,
	tcell.KeyDown:       host.KeyArrowDown,
	tcell.KeyLeft:       host.KeyArrowLeft,
	tcell.KeyRight:      host.KeyArrowRight,
	tcell.KeyHome:       host.KeyHome,
	tcell.KeyEnd:        host.KeyEnd,
	tcell.KeyPgUp:       host.KeyPageUp,
	tcell.KeyPgDn:       host.KeyPageDown,
	tcell.KeyEnter:      host.KeyEnter,
	tcell.KeyEscape:     host.KeyEscape,
	tcell.KeyTab:        host.KeyTab,
	tcell.KeyBacktab:    host.KeyTab,
	tcell.KeyBackspace:  host.KeyBackspace,
	tcell.KeyBackspace2: host.KeyBackspace,
	tcell.KeyDelete:     host.KeyDelete,
}

// isQuit reports whether the key ends the demo. Escape belongs to the widgets.
func isQuit(ev *tcell.EventKey) bool {
	return ev.Key() == tcell.KeyCtrlC || ev.Key() == tcell.KeyCtrlQ
}

// translateKey turns a terminal key press into a keydown event. ok is false for keys
// no widget reads.
func translateKey(ev *tcell.EventKey) (host.Event, bool) {
	return keyEvent(ev.Key(), ev.Rune(), ev.Modifiers(), ev.When())
}

func keyEvent(key tcell.Key, r rune, mod tcell.ModMask, when time.Time) (host.Event, bool) {
	out := host.Event{
		Type:      host.KeyDown,
		Shift:     mod&tcell.ModShift != 0 || key == tcell.KeyBacktab,
		Ctrl:      mod&tcell.ModCtrl != 0,
		Alt:       mod&tcell.ModAlt != 0,
		Meta:      mod&tcell.ModMeta != 0,
		Timestamp: when,
	}

	if key == tcell.KeyRune {
		out.Key = string(r)

		return out, true
	}

	name, ok := namedKeys[key]
	if !ok {
		return host.Event{}, false
	}

	out.Key = name

	return out, true
}

// mouseTracker turns tcell's button-state reports into down, move, up and click
// events.
type mouseTracker struct {
	buttons tcell.ButtonMask
}

func buttonOf(mask tcell.ButtonMask) int {
	switch {
	case mask&tcell.Button2 != 0:
		return host.ButtonSecondary
	case mask&tcell.Button3 != 0:
		return host.ButtonAuxiliary
	default:
		return host.ButtonPrimary
	}
}

func (m *mouseTracker) translate(ev *tcell.EventMouse) []host.Event {
	x, y := ev.Position()

	return m.events(x, y, ev.Buttons(), ev.When())
}

func (m *mouseTracker) events(x, y int, buttons tcell.ButtonMask, when time.Time) []host.Event {
	pressed := buttons & (tcell.Button1 | tcell.Button2 | tcell.Button3)
	base := host.Event{X: float64(x), Y: float64(y), Timestamp: when}

	var out []host.Event

	switch {
	case m.buttons == 0 && pressed != 0:
		base.Type = host.MouseDown
		base.Button = buttonOf(pressed)
		out = append(out, base)
	case m.buttons != 0 && pressed == 0:
		base.Button = buttonOf(m.buttons)
		base.Type = host.MouseUp
		out = append(out, base)

		if base.IsPrimaryButton() {
			base.Type = host.Click
			out = append(out, base)
		}
	default:
		base.Type = host.MouseMove
		base.Button = buttonOf(pressed)
		out = append(out, base)
	}

	m.buttons = pressed

	return out
}
