// Package tabs implements a tab list with roving focus. In auto activation a
// keyboard move selects the tab it lands on; in manual activation it only moves
// focus and the user selects with a click or Enter.
package tabs

import (
	"context"
	"strconv"

	"github.com/amp-labs/amp-a11y/descendants"
	"github.com/amp-labs/amp-a11y/host"
	"github.com/amp-labs/amp-a11y/navigation"
	"github.com/amp-labs/amp-a11y/statemachine"
	"github.com/amp-labs/amp-a11y/warning"
)

// CallbackChange reports a newly selected index.
const CallbackChange = "onChange"

// KeyboardActivation decides whether keyboard navigation selects.
type KeyboardActivation string

const (
	Auto   KeyboardActivation = "auto"
	Manual KeyboardActivation = "manual"
)

// Options are the props of a tab set. A nil Index leaves selection uncontrolled.
type Options struct {
	ID                 string                 `json:"id,omitempty"                 yaml:"id,omitempty"`
	Orientation        navigation.Orientation `json:"orientation,omitempty"        yaml:"orientation,omitempty"`
	KeyboardActivation KeyboardActivation     `json:"keyboardActivation,omitempty" yaml:"keyboardActivation,omitempty"`
	Index              *int                   `json:"index,omitempty"              yaml:"index,omitempty"`
	DefaultIndex       int                    `json:"defaultIndex,omitempty"       yaml:"defaultIndex,omitempty"`
	// ReadOnly ignores every attempt to change the selection.
	ReadOnly bool `json:"readOnly,omitempty" yaml:"readOnly,omitempty"`
	// HandlesChange tells the tabs the app acts on CallbackChange.
	HandlesChange bool `json:"handlesChange,omitempty" yaml:"handlesChange,omitempty"`
	RTL           bool `json:"rtl,omitempty"           yaml:"rtl,omitempty"`
}

func (o Options) orientation() navigation.Orientation {
	if o.Orientation == "" {
		return navigation.Horizontal
	}

	return o.Orientation
}

func (o Options) activation() KeyboardActivation {
	if o.KeyboardActivation == "" {
		return Auto
	}

	return o.KeyboardActivation
}

// Tab is a registered tab.
type Tab struct {
	Key      string
	Disabled bool
	Node     host.Node
}

// Tabs tracks the selected and focused tab.
type Tabs struct {
	opts     Options
	id       string
	tabs     *descendants.Registry[string, Tab]
	switched *warning.ControlledSwitch

	selected int
	focused  int
	mounted  bool
	// userInteracted is set when a selection came from the user, so the newly
	// selected tab takes focus.
	userInteracted bool
}

// New creates a tab set. ids generates the id when opts.ID is empty.
func New(ctx context.Context, opts Options, ids host.IDGenerator) *Tabs {
	id := opts.ID

	switch {
	case id != "":
	case ids != nil:
		id = host.MakeID("tabs", ids.NewID())
	default:
		id = "tabs"
	}

	t := &Tabs{
		opts:     opts,
		id:       id,
		tabs:     descendants.New[string, Tab](),
		switched: warning.NewControlledSwitch(opts.Index != nil),
		selected: opts.DefaultIndex,
		focused:  -1,
	}

	t.checkReadOnly(ctx)

	return t
}

func (t *Tabs) checkReadOnly(ctx context.Context) {
	readOnly := t.opts.Index != nil && *t.opts.Index > -1 && !t.opts.HandlesChange && !t.opts.ReadOnly

	warning.Warn(ctx, !readOnly, "You provided a value prop to `Tabs` without an `onChange` handler. "+
		"This will render a read-only tabs element. If the tabs should be mutable use `defaultIndex`. "+
		"Otherwise, set `onChange`.")
}

// ID is the tab set id.
func (t *Tabs) ID() string {
	return t.id
}

func (t *Tabs) isControlled() bool {
	return t.opts.Index != nil
}

// SelectedIndex is the selected tab.
func (t *Tabs) SelectedIndex() int {
	if t.isControlled() {
		return *t.opts.Index
	}

	return t.selected
}

// FocusedIndex is the tab holding focus, -1 when focus is elsewhere.
func (t *Tabs) FocusedIndex() int {
	return t.focused
}

// Mount marks the tab set as rendered. Until then every panel stays visible.
func (t *Tabs) Mount() {
	t.mounted = true
}

// Update applies new props. When the app selects the tab the user asked for, the
// tab takes focus.
func (t *Tabs) Update(ctx context.Context, opts Options) []statemachine.Effect {
	t.switched.Check(ctx, "Tabs", "index", opts.Index != nil)

	prev := t.SelectedIndex()
	t.opts = opts
	t.checkReadOnly(ctx)

	if t.SelectedIndex() == prev {
		return nil
	}

	return t.focusSelected()
}

// SetTabs replaces the registered tabs.
func (t *Tabs) SetTabs(tabs []Tab) {
	t.track(func() {
		for _, key := range t.tabs.Keys() {
			t.tabs.Deregister(key)
		}

		for i, tab := range tabs {
			t.tabs.Register(tab.Key, tab, i)
		}
	})
}

// RegisterTab adds or moves a tab.
func (t *Tabs) RegisterTab(tab Tab, position int) {
	t.track(func() { t.tabs.Register(tab.Key, tab, position) })
}

// DeregisterTab removes a tab.
func (t *Tabs) DeregisterTab(key string) {
	t.track(func() { t.tabs.Deregister(key) })
}

// track applies a registry change and keeps the uncontrolled selection and the
// focused tab on the keys they pointed at before it.
func (t *Tabs) track(change func()) {
	prev := t.tabs.Keys()

	change()

	keys := t.tabs.Keys()
	t.selected = follow(prev, keys, t.selected)

	if t.focused >= 0 {
		t.focused = follow(prev, keys, t.focused)
	}

	t.skipDisabled()
}

// follow maps index in prev to the same key in keys. An index that did not name a
// key is left alone.
func follow(prev, keys []string, index int) int {
	if index < 0 || index >= len(prev) {
		return index
	}

	if next := descendants.Reselect(prev[index], index, keys); next >= 0 {
		return next
	}

	return index
}

// Tabs returns the registered tabs in order.
func (t *Tabs) Tabs() []Tab {
	return t.tabs.Items()
}

// skipDisabled moves an uncontrolled selection off a disabled tab, which happens
// when the first tab is disabled and no default was given.
func (t *Tabs) skipDisabled() {
	if t.isControlled() {
		return
	}

	current, ok := t.tabs.At(t.selected)
	if !ok || !current.Disabled {
		return
	}

	for i, tab := range t.tabs.Items() {
		if !tab.Disabled {
			t.selected = i

			return
		}
	}
}

func (t *Tabs) selectTab(index int) []statemachine.Effect {
	if t.opts.ReadOnly {
		return nil
	}

	t.userInteracted = true
	effects := []statemachine.Effect{host.Callback{Name: CallbackChange, Value: index}}

	if t.isControlled() || index == t.selected {
		return effects
	}

	t.selected = index

	return append(effects, t.focusSelected()...)
}

func (t *Tabs) focusSelected() []statemachine.Effect {
	if !t.userInteracted {
		return nil
	}

	tab, ok := t.tabs.At(t.SelectedIndex())
	if !ok || tab.Node == "" {
		return nil
	}

	t.userInteracted = false

	return []statemachine.Effect{host.Focus{Node: tab.Node}}
}

// HandleTabEvent routes events from the tab with the given key.
func (t *Tabs) HandleTabEvent(_ context.Context, key string, ev host.Event) []statemachine.Effect {
	index := t.tabs.IndexOf(key)

	tab, ok := t.tabs.At(index)
	if !ok {
		return nil
	}

	switch ev.Type {
	case host.Click:
		if tab.Disabled {
			return nil
		}

		return t.selectTab(index)
	case host.FocusIn:
		t.focused = index
	case host.Blur:
		t.focused = -1
	}

	return nil
}

// HandleListEvent routes keyboard events from the tab list. Navigation wraps and
// skips disabled tabs.
func (t *Tabs) HandleListEvent(_ context.Context, ev host.Event) []statemachine.Effect {
	if ev.Type != host.KeyDown || t.opts.ReadOnly {
		return nil
	}

	dir, ok := navigation.FromKey(ev.Key, ev.Ctrl, navigation.KeyOptions{
		Orientation: t.opts.orientation(),
		RTL:         t.opts.RTL,
	})
	if !ok {
		return nil
	}

	current := t.SelectedIndex()
	if t.opts.activation() == Manual {
		current = t.focused
	}

	tabs := t.tabs.Items()

	next, found := navigation.Next(len(tabs), current, dir, navigation.Options{
		Wrap:   true,
		Filter: func(i int) bool { return !tabs[i].Disabled },
	})

	effects := []statemachine.Effect{host.PreventDefault{}}
	if !found {
		return effects
	}

	if t.opts.activation() == Manual {
		if tabs[next].Node == "" {
			return effects
		}

		return append(effects, host.Focus{Node: tabs[next].Node})
	}

	return append(effects, t.selectTab(next)...)
}

// TabID is the id of the tab at index.
func (t *Tabs) TabID(index int) string {
	return host.MakeID(t.id, "tab", index)
}

// PanelID is the id of the panel at index.
func (t *Tabs) PanelID(index int) string {
	return host.MakeID(t.id, "panel", index)
}

// RootAttributes are the attributes of the element wrapping the tab set.
func (t *Tabs) RootAttributes() map[string]string {
	attrs := map[string]string{
		"data-reach-tabs":  "",
		"data-orientation": string(t.opts.orientation()),
	}

	if t.opts.ID != "" {
		attrs["id"] = t.opts.ID
	}

	return attrs
}

// ListAttributes are the attributes of the tab list.
func (t *Tabs) ListAttributes() map[string]string {
	return map[string]string{
		"role":                "tablist",
		"aria-orientation":    string(t.opts.orientation()),
		"data-reach-tab-list": "",
	}
}

// TabAttributes are the attributes of the tab with the given key.
func (t *Tabs) TabAttributes(key string) map[string]string {
	index := t.tabs.IndexOf(key)

	tab, ok := t.tabs.At(index)
	if !ok {
		return nil
	}

	selected := index == t.SelectedIndex()

	attrs := map[string]string{
		"id":               t.TabID(index),
		"role":             "tab",
		"type":             "button",
		"aria-controls":    t.PanelID(index),
		"aria-selected":    strconv.FormatBool(selected),
		"tabindex":         "-1",
		"data-reach-tab":   "",
		"data-orientation": string(t.opts.orientation()),
	}

	if selected {
		attrs["tabindex"] = "0"
		attrs["data-selected"] = ""
	}

	if tab.Disabled {
		attrs["aria-disabled"] = "true"
		attrs["disabled"] = ""
	}

	return attrs
}

// PanelAttributes are the attributes of the panel at index. Panels are only hidden
// once the tab set is mounted.
func (t *Tabs) PanelAttributes(index int) map[string]string {
	selected := index == t.SelectedIndex()

	attrs := map[string]string{
		"id":                   t.PanelID(index),
		"role":                 "tabpanel",
		"aria-labelledby":      t.TabID(index),
		"tabindex":             "-1",
		"data-reach-tab-panel": "",
	}

	if selected {
		attrs["tabindex"] = "0"
	} else if t.mounted {
		attrs["hidden"] = ""
	}

	return attrs
}
