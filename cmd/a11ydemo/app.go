package main

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/amp-labs/amp-a11y/alert"
	"github.com/amp-labs/amp-a11y/cli"
	"github.com/amp-labs/amp-a11y/dispatch"
	"github.com/amp-labs/amp-a11y/host"
	"github.com/amp-labs/amp-a11y/logger"
	"github.com/amp-labs/amp-a11y/statemachine"
	"github.com/amp-labs/amp-a11y/widgets/slider"
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	maxFrameWidth = 72
	helpText      = "Tab moves focus · Ctrl+Q quits"
)

var eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
	Name: "a11ydemo_events_total",
	Help: "Total number of host events delivered to the demo widget, by widget and event type",
}, []string{"widget", "type"})

// statusLine renders the live regions into the bottom line of the screen.
type statusLine struct {
	mu      sync.Mutex
	regions map[alert.Level]string
	redraw  func()
}

func newStatusLine(redraw func()) *statusLine {
	return &statusLine{regions: make(map[alert.Level]string), redraw: redraw}
}

func (s *statusLine) Mount(alert.Level, map[string]string) error { return nil }

func (s *statusLine) Render(level alert.Level, entries []alert.Entry) error {
	texts := make([]string, 0, len(entries))
	for _, e := range entries {
		texts = append(texts, e.Content)
	}

	s.mu.Lock()
	s.regions[level] = strings.Join(texts, " · ")
	s.mu.Unlock()

	s.redraw()

	return nil
}

func (s *statusLine) Unmount(level alert.Level) error {
	s.mu.Lock()
	delete(s.regions, level)
	s.mu.Unlock()

	s.redraw()

	return nil
}

// Text is what a screen reader would have been told most recently, assertive first.
func (s *statusLine) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var parts []string

	for _, level := range []alert.Level{alert.Assertive, alert.Polite} {
		if text := s.regions[level]; text != "" {
			parts = append(parts, text)
		}
	}

	return strings.Join(parts, " · ")
}

// app owns the terminal. Everything except reading the terminal runs on the loop.
type app struct {
	screen tcell.Screen
	widget demoWidget
	loop   *dispatch.Loop
	alerts *alert.Registry
	status *statusLine

	focus   host.Node
	mouse   mouseTracker
	layout  map[int]host.Node
	spoken  map[string]alert.Key
	pending []host.Node
}

func newApp(screen tcell.Screen, widget demoWidget) *app {
	a := &app{
		screen: screen,
		widget: widget,
		loop:   dispatch.New(host.RealClock{}),
		layout: make(map[int]host.Node),
		spoken: make(map[string]alert.Key),
	}

	a.status = newStatusLine(func() {
		_ = a.loop.Post(a.draw)
	})
	a.alerts = alert.New(a.status)

	return a
}

// run draws the widget and handles terminal events until the user quits or ctx is
// done.
func (a *app) run(ctx context.Context) error {
	log := logger.Get(ctx)

	err := a.loop.Post(func() {
		focus, effects := a.widget.Start(ctx)
		a.focus = focus
		a.apply(ctx, effects)
		a.draw()
	})
	if err != nil {
		return err
	}

	events := make(chan tcell.Event)

	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				close(events)

				return
			}

			events <- ev
		}
	}()

	defer a.shutdown(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}

			if key, isKey := ev.(*tcell.EventKey); isKey && isQuit(key) {
				log.Info("Quit requested")

				return nil
			}

			err := a.loop.Post(func() { a.handle(ctx, ev) })
			if err != nil {
				return err
			}
		}
	}
}

func (a *app) shutdown(ctx context.Context) {
	a.alerts.Close()
	a.loop.Stop()

	logger.Get(ctx).Debug("Demo loop stopped", "widget", a.widget.Name())
}

func (a *app) handle(ctx context.Context, ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		a.screen.Sync()
	case *tcell.EventKey:
		keyEv, ok := translateKey(ev)
		if ok {
			a.key(ctx, keyEv)
		}
	case *tcell.EventMouse:
		for _, mouseEv := range a.mouse.translate(ev) {
			a.pointer(ctx, mouseEv)
		}
	}

	a.draw()
}

func (a *app) count(ev host.Event) {
	eventsTotal.WithLabelValues(a.widget.Name(), string(ev.Type)).Inc()
}

func (a *app) key(ctx context.Context, ev host.Event) {
	a.count(ev)

	ev.Target = a.focus
	prevented := a.apply(ctx, a.widget.Key(ctx, a.focus, ev))

	if ev.Key == host.KeyTab && !prevented {
		a.setFocus(ctx, a.nextFocusable(ev.Shift))
	}

	a.flushDeferredFocus(ctx)
}

func (a *app) pointer(ctx context.Context, ev host.Event) {
	a.count(ev)

	node := a.layout[int(ev.Y)]
	ev.Target = node
	prevented := a.apply(ctx, a.widget.Pointer(ctx, node, ev))

	if ev.Type == host.MouseDown && ev.IsPrimaryButton() && !prevented && a.focusable(node) {
		a.setFocus(ctx, node)
	}

	a.flushDeferredFocus(ctx)
}

func (a *app) send(ctx context.Context, ev statemachine.Event) {
	a.apply(ctx, a.widget.Send(ctx, ev))
	a.flushDeferredFocus(ctx)
	a.draw()
}

// apply performs effects and reports whether one of them prevented the default
// action of the event that produced them.
func (a *app) apply(ctx context.Context, effects []statemachine.Effect) bool {
	prevented := false
	log := logger.Get(ctx)

	a.loop.Apply(ctx, a.widget.Name(), effects, a.send, func(eff statemachine.Effect) {
		switch e := eff.(type) {
		case host.PreventDefault:
			prevented = true
		case host.Focus:
			if e.Deferred {
				a.pending = append(a.pending, e.Node)
			} else {
				a.setFocus(ctx, e.Node)
			}
		case host.Callback:
			a.announce(ctx, e.Name, describe(e.Value))
		case host.ActivateNode:
			a.announce(ctx, "click", string(e.Node))
		case host.SubmitForm:
			a.announce(ctx, "submit", "form submitted")
		default:
			log.Debug("Ignoring effect", "kind", eff.Kind())
		}
	})

	return prevented
}

func (a *app) flushDeferredFocus(ctx context.Context) {
	for len(a.pending) > 0 {
		node := a.pending[0]
		a.pending = a.pending[1:]
		a.setFocus(ctx, node)
	}
}

func (a *app) setFocus(ctx context.Context, to host.Node) {
	if to == a.focus || to == "" {
		return
	}

	from := a.focus
	a.focus = to

	logger.Get(ctx).Debug("Focus moved", "from", string(from), "to", string(to))

	a.apply(ctx, a.widget.FocusChanged(ctx, from, to))
}

func (a *app) focusable(node host.Node) bool {
	if node == "" {
		return false
	}

	return slices.ContainsFunc(a.widget.Rows(), func(r row) bool {
		return r.Node == node && r.Focusable
	})
}

// nextFocusable cycles through the focusable rows the way Tab walks the document.
func (a *app) nextFocusable(backwards bool) host.Node {
	var nodes []host.Node

	for _, r := range a.widget.Rows() {
		if r.Focusable {
			nodes = append(nodes, r.Node)
		}
	}

	if len(nodes) == 0 {
		return ""
	}

	step := 1
	if backwards {
		step = len(nodes) - 1
	}

	i := slices.Index(nodes, a.focus)
	if i < 0 {
		return nodes[0]
	}

	return nodes[(i+step)%len(nodes)]
}

// announce speaks a callback through the polite region. Each callback keeps one
// entry that is updated in place.
func (a *app) announce(ctx context.Context, name, text string) {
	content := name + ": " + text

	logger.Get(ctx).Info("Callback", "widget", a.widget.Name(), "name", name, "value", text)

	if key, ok := a.spoken[name]; ok {
		err := a.alerts.Update(key, content)
		if err == nil {
			return
		}

		if !errors.Is(err, alert.ErrUnknownKey) {
			logger.Get(ctx).Warn("Failed to update announcement", "error", err)
		}
	}

	a.spoken[name] = a.alerts.Register(alert.Polite, content)
}

func describe(value any) string {
	switch v := value.(type) {
	case nil:
		return "none"
	case slider.Change:
		return slider.FormatValue(v.Value)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

func (a *app) draw() {
	a.screen.Clear()

	width, height := a.screen.Size()
	frameWidth := min(width, maxFrameWidth)
	plain := tcell.StyleDefault

	y := 0
	for _, line := range cli.Frame("amp-a11y · "+a.widget.Name(), frameWidth, cli.AlignCenter) {
		a.put(0, y, line, plain)
		y++
	}

	clear(a.layout)

	for _, r := range a.widget.Rows() {
		a.drawRow(y, r, frameWidth)
		y++
	}

	y++
	a.put(0, y, cli.Divider(frameWidth), plain)
	a.put(0, y+1, cli.Pad(a.status.Text(), frameWidth, cli.AlignLeft), plain.Bold(true))
	a.put(0, height-1, cli.Pad(helpText, frameWidth, cli.AlignRight), plain.Dim(true))

	a.screen.Show()
}

func (a *app) drawRow(y int, r row, width int) {
	style := tcell.StyleDefault

	switch {
	case r.Muted:
		style = style.Dim(true)
	case r.Active:
		style = style.Reverse(true)
	}

	marker := "  "
	if r.Node != "" && r.Node == a.focus {
		marker = "› "
	}

	x := a.put(0, y, marker, tcell.StyleDefault)

	if r.Node != "" {
		a.layout[y] = r.Node

		if p, ok := a.widget.(placer); ok {
			p.Place(r.Node, x, y, width-x)
		}
	}

	if len(r.Segments) == 0 {
		a.put(x, y, r.Text, style)

		return
	}

	for _, seg := range r.Segments {
		x = a.put(x, y, seg.Text, style.Bold(seg.Strong))
	}
}

// put writes s at x, y and returns the column after it.
func (a *app) put(x, y int, s string, style tcell.Style) int {
	for _, r := range s {
		a.screen.SetContent(x, y, r, nil, style)
		x += runewidth.RuneWidth(r)
	}

	return x
}
