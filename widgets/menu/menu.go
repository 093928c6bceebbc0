package menu

import (
	"context"
	"strconv"
	"time"

	"github.com/amp-labs/amp-a11y/descendants"
	"github.com/amp-labs/amp-a11y/drag"
	"github.com/amp-labs/amp-a11y/host"
	"github.com/amp-labs/amp-a11y/navigation"
	"github.com/amp-labs/amp-a11y/statemachine"
	"github.com/amp-labs/amp-a11y/typeahead"
)

// CallbackSelect is emitted when an item is chosen.
const CallbackSelect = "onSelect"

// Options are the props of a menu.
type Options struct {
	ID string `json:"id,omitempty" yaml:"id,omitempty"`
	// ButtonID overrides the generated trigger id.
	ButtonID string `json:"buttonId,omitempty" yaml:"buttonId,omitempty"`
	// DragThreshold and ReadyDelay tune the drag gate; zero keeps the defaults.
	DragThreshold float64       `json:"dragThreshold,omitempty" yaml:"dragThreshold,omitempty"`
	ReadyDelay    time.Duration `json:"readyDelay,omitempty"    yaml:"readyDelay,omitempty"`
}

func (o Options) gateOptions() []drag.Option {
	var opts []drag.Option

	if o.DragThreshold > 0 {
		opts = append(opts, drag.WithThreshold(o.DragThreshold))
	}

	if o.ReadyDelay > 0 {
		opts = append(opts, drag.WithReadyDelay(o.ReadyDelay))
	}

	return opts
}

// Item is a menu entry. Links are activated through a native click so the host
// navigates; other items report CallbackSelect.
type Item struct {
	Key      string
	Text     string
	Disabled bool
	IsLink   bool
	Node     host.Node
}

func (i Item) Label() string    { return i.Text }
func (i Item) IsDisabled() bool { return i.Disabled }

// Refs are the nodes the menu renders.
type Refs struct {
	Button  host.Node
	Items   host.Node
	Popover host.Node
}

// Menu binds the menu reducer to host events and the registered items.
type Menu struct {
	machine *statemachine.Machine[Phase, State]
	opts    Options
	id      string
	tree    host.Tree
	refs    Refs
	gate    *drag.Gate
	items   *descendants.Registry[string, Item]

	origin host.Point
	// triggerClicked marks the mousedown that opened the menu, so the document
	// listener does not treat it as an outside click.
	triggerClicked bool
	// linkPressed is set between a mousedown and mouseup on a link item.
	linkPressed bool
}

// New creates a collapsed menu. ids generates the menu id when opts.ID is empty.
func New(opts Options, tree host.Tree, ids host.IDGenerator, machineOpts ...statemachine.Option) (*Menu, error) {
	id := opts.ID

	switch {
	case id != "":
	case ids != nil:
		id = host.MakeID("menu", ids.NewID())
	default:
		id = "menu"
	}

	triggerID := opts.ButtonID
	if triggerID == "" {
		triggerID = host.MakeID("menu-button", id)
	}

	machine, err := statemachine.NewAt(Definition(), Collapsed, State{TriggerID: triggerID, SelectionIndex: -1},
		append([]statemachine.Option{statemachine.WithName("menu")}, machineOpts...)...)
	if err != nil {
		return nil, err
	}

	return &Menu{
		machine: machine,
		opts:    opts,
		id:      id,
		tree:    tree,
		gate:    drag.New(host.RealClock{}, opts.gateOptions()...),
		items:   descendants.New[string, Item](),
	}, nil
}

// WithClock replaces the clock that drives the drag gate.
func (m *Menu) WithClock(clock host.Clock) *Menu {
	m.gate = drag.New(clock, m.opts.gateOptions()...)

	return m
}

// Machine exposes the underlying machine.
func (m *Menu) Machine() *statemachine.Machine[Phase, State] {
	return m.machine
}

// State is the reducer state.
func (m *Menu) State() State {
	return m.machine.Context()
}

// IsExpanded reports whether the menu is open.
func (m *Menu) IsExpanded() bool {
	return m.State().IsExpanded
}

// SelectionIndex is the highlighted item, -1 for none.
func (m *Menu) SelectionIndex() int {
	return m.State().SelectionIndex
}

// ID is the menu id.
func (m *Menu) ID() string {
	return m.id
}

// ItemID is the id of the item at index, "" for a negative index.
func (m *Menu) ItemID(index int) string {
	if index < 0 {
		return ""
	}

	return host.MakeID("option-"+strconv.Itoa(index), m.id)
}

// Items returns the registered items in order.
func (m *Menu) Items() []Item {
	return m.items.Items()
}

// Mount records the rendered nodes.
func (m *Menu) Mount(refs Refs) {
	m.refs = refs
}

// Update applies new props.
func (m *Menu) Update(ctx context.Context, opts Options) []statemachine.Effect {
	m.opts = opts

	if opts.ButtonID != "" && opts.ButtonID != m.State().TriggerID {
		return m.send(ctx, SetButtonID{ID: opts.ButtonID})
	}

	return nil
}

// Send dispatches an action. Timer events scheduled by the menu come back here.
func (m *Menu) Send(ctx context.Context, ev statemachine.Event) []statemachine.Effect {
	if search, ok := ev.(SearchForItem); ok {
		return m.search(ctx, search.Query)
	}

	return m.send(ctx, ev)
}

// send runs an action and arms or resets the drag gate when the menu opens or
// closes. An opening menu moves focus to the item list.
func (m *Menu) send(ctx context.Context, ev statemachine.Event) []statemachine.Effect {
	wasExpanded := m.IsExpanded()

	snap := m.machine.Send(ctx, ev)
	effects := snap.Effects

	switch {
	case !wasExpanded && m.IsExpanded():
		m.gate.Open(m.origin)

		if m.refs.Items != "" {
			effects = append(effects, host.Focus{Node: m.refs.Items, Deferred: true})
		}
	case wasExpanded && !m.IsExpanded():
		m.gate.Close()
	}

	return effects
}

// SetItems replaces the items, keeping the highlighted item highlighted when it
// survives the change.
func (m *Menu) SetItems(ctx context.Context, items []Item) []statemachine.Effect {
	prevKeys := m.items.Keys()

	for _, key := range prevKeys {
		m.items.Deregister(key)
	}

	for i, item := range items {
		m.items.Register(item.Key, item, i)
	}

	return m.reselect(ctx, prevKeys)
}

// RegisterItem adds or moves an item.
func (m *Menu) RegisterItem(ctx context.Context, item Item, position int) []statemachine.Effect {
	prevKeys := m.items.Keys()
	m.items.Register(item.Key, item, position)

	return m.reselect(ctx, prevKeys)
}

// DeregisterItem removes an item.
func (m *Menu) DeregisterItem(ctx context.Context, key string) []statemachine.Effect {
	prevKeys := m.items.Keys()
	m.items.Deregister(key)

	return m.reselect(ctx, prevKeys)
}

func (m *Menu) reselect(ctx context.Context, prevKeys []string) []statemachine.Effect {
	prevIndex := m.SelectionIndex()
	if prevIndex < 0 {
		return nil
	}

	var prevKey string
	if prevIndex < len(prevKeys) {
		prevKey = prevKeys[prevIndex]
	}

	next := descendants.Reselect(prevKey, prevIndex, m.items.Keys())
	if next < 0 || next == prevIndex {
		return nil
	}

	return m.send(ctx, SelectItemAtIndex{Index: next})
}

func (m *Menu) firstEnabled() int {
	for i, item := range m.items.Items() {
		if !item.Disabled {
			return i
		}
	}

	return -1
}

// HandleButtonEvent routes events from the trigger.
func (m *Menu) HandleButtonEvent(ctx context.Context, ev host.Event) []statemachine.Effect {
	switch ev.Type {
	case host.KeyDown:
		switch ev.Key {
		case host.KeyArrowDown, host.KeyArrowUp:
			effects := []statemachine.Effect{host.PreventDefault{}}

			return append(effects, m.send(ctx, OpenMenuAtIndex{Index: m.firstEnabled()})...)
		case host.KeyEnter, host.KeySpace:
			return m.send(ctx, OpenMenuAtIndex{Index: m.firstEnabled()})
		}
	case host.MouseDown:
		if !ev.IsPrimaryButton() {
			return nil
		}

		m.origin = ev.Point()

		if m.IsExpanded() {
			return m.send(ctx, CloseMenu{})
		}

		m.triggerClicked = true

		return m.send(ctx, OpenMenuCleared{})
	}

	return nil
}

// HandleItemsEvent routes keyboard events from the item list. Keys do nothing
// while the menu is collapsed.
func (m *Menu) HandleItemsEvent(ctx context.Context, ev host.Event) []statemachine.Effect {
	if ev.Type != host.KeyDown || !m.IsExpanded() {
		return nil
	}

	switch ev.Key {
	case host.KeyEnter, host.KeySpace:
		item, ok := m.items.At(m.SelectionIndex())
		if !ok || item.Disabled {
			return nil
		}

		effects := []statemachine.Effect{host.PreventDefault{}}
		if item.IsLink {
			return append(effects, host.ActivateNode{Node: item.Node})
		}

		return append(effects, m.selectItem(ctx, item)...)
	case host.KeyEscape:
		return append(m.focusButton(), m.send(ctx, CloseMenu{})...)
	case host.KeyTab:
		return []statemachine.Effect{host.PreventDefault{}}
	}

	if dir, ok := navigation.FromKey(ev.Key, ev.Ctrl, navigation.KeyOptions{Orientation: navigation.Vertical}); ok {
		items := m.items.Items()

		next, found := navigation.Next(len(items), m.SelectionIndex(), dir, navigation.Options{
			Filter: func(i int) bool { return !items[i].Disabled },
		})

		effects := []statemachine.Effect{host.PreventDefault{}}
		if !found {
			return effects
		}

		return append(effects, m.send(ctx, SelectItemAtIndex{Index: next})...)
	}

	if host.IsCharacterKey(ev.Key) {
		return m.search(ctx, m.State().TypeaheadQuery+typeahead.Fold(ev.Key))
	}

	return nil
}

// search records the typeahead query, highlights the first enabled item whose
// label starts with it and schedules the query to clear.
func (m *Menu) search(ctx context.Context, query string) []statemachine.Effect {
	effects := m.send(ctx, SearchForItem{Query: query})
	if query == "" {
		return effects
	}

	if _, i, ok := typeahead.Match(m.items.Items(), query); ok {
		effects = append(effects, m.send(ctx, SelectItemAtIndex{Index: i})...)
	}

	return append(effects, host.Schedule{
		Timer: typeahead.TimerKey,
		After: typeahead.DefaultResetDelay,
		Event: SearchForItem{},
	})
}

// HandleItemEvent routes pointer and focus events from the item with the given key.
func (m *Menu) HandleItemEvent(ctx context.Context, key string, ev host.Event) []statemachine.Effect {
	index := m.items.IndexOf(key)

	item, ok := m.items.At(index)
	if !ok {
		return nil
	}

	switch ev.Type {
	case host.Click:
		if !ev.IsPrimaryButton() || !item.IsLink {
			return nil
		}

		if item.Disabled {
			return []statemachine.Effect{host.PreventDefault{}}
		}

		return m.selectItem(ctx, item)
	case host.MouseDown:
		if !ev.IsPrimaryButton() {
			return nil
		}

		// Links keep the native mousedown so the browser produces a click.
		if item.IsLink {
			m.linkPressed = true

			return nil
		}

		return []statemachine.Effect{host.PreventDefault{}}
	case host.MouseEnter:
		return m.highlight(ctx, index, item)
	case host.MouseLeave:
		return m.send(ctx, ClearSelectionIndex{})
	case host.MouseMove:
		m.gate.Move(ev.Point())

		return m.highlight(ctx, index, item)
	case host.FocusIn:
		m.gate.Focus()

		return m.highlight(ctx, index, item)
	case host.MouseUp:
		return m.handleItemMouseUp(ctx, item, ev)
	default:
		return nil
	}
}

func (m *Menu) handleItemMouseUp(ctx context.Context, item Item, ev host.Event) []statemachine.Effect {
	if !ev.IsPrimaryButton() {
		return nil
	}

	// The mouseup of the click that opened the menu.
	if !m.gate.Release() {
		return nil
	}

	if !item.IsLink {
		if item.Disabled {
			return nil
		}

		return m.selectItem(ctx, item)
	}

	// A press that started on the link ends in a native click.
	if m.linkPressed {
		m.linkPressed = false

		return nil
	}

	return []statemachine.Effect{host.ActivateNode{Node: item.Node}}
}

func (m *Menu) highlight(ctx context.Context, index int, item Item) []statemachine.Effect {
	if item.Disabled || index == m.SelectionIndex() {
		return nil
	}

	return m.send(ctx, SelectItemAtIndex{Index: index})
}

// selectItem focuses the trigger before reporting the selection, so the app can
// move focus elsewhere from its callback.
func (m *Menu) selectItem(ctx context.Context, item Item) []statemachine.Effect {
	effects := m.focusButton()
	effects = append(effects, host.Callback{Name: CallbackSelect, Value: item.Key})

	return append(effects, m.send(ctx, ClickMenuItem{})...)
}

func (m *Menu) focusButton() []statemachine.Effect {
	if m.refs.Button == "" {
		return nil
	}

	return []statemachine.Effect{host.Focus{Node: m.refs.Button}}
}

// HandlePopoverEvent closes the menu when focus leaves the popover.
func (m *Menu) HandlePopoverEvent(ctx context.Context, ev host.Event) []statemachine.Effect {
	if ev.Type != host.Blur || !m.IsExpanded() {
		return nil
	}

	if m.contains(m.refs.Popover, ev.RelatedTarget) {
		return nil
	}

	return m.send(ctx, CloseMenu{})
}

// HandleDocumentEvent handles mouse events anywhere in the document, including
// those the trigger already handled. A mousedown outside the popover closes the menu.
func (m *Menu) HandleDocumentEvent(ctx context.Context, ev host.Event) []statemachine.Effect {
	switch ev.Type {
	case host.MouseUp:
		m.linkPressed = false
	case host.MouseDown:
		if !m.IsExpanded() {
			return nil
		}

		if m.triggerClicked {
			m.triggerClicked = false

			return nil
		}

		if !m.contains(m.refs.Popover, ev.Target) {
			return m.send(ctx, CloseMenu{})
		}
	}

	return nil
}

func (m *Menu) contains(ancestor, node host.Node) bool {
	if ancestor == "" || node == "" || m.tree == nil {
		return false
	}

	return m.tree.Contains(ancestor, node)
}

// ButtonAttributes are the attributes of the trigger. aria-expanded is omitted
// while the menu is hidden.
func (m *Menu) ButtonAttributes() map[string]string {
	attrs := map[string]string{
		"id":                     m.State().TriggerID,
		"type":                   "button",
		"aria-haspopup":          "true",
		"aria-controls":          m.id,
		"data-reach-menu-button": "",
	}

	if m.IsExpanded() {
		attrs["aria-expanded"] = "true"
	}

	return attrs
}

// ItemsAttributes are the attributes of the item list.
func (m *Menu) ItemsAttributes() map[string]string {
	attrs := map[string]string{
		"id":                    m.id,
		"role":                  "menu",
		"tabindex":              "-1",
		"aria-labelledby":       m.State().TriggerID,
		"data-reach-menu-items": "",
	}

	if id := m.ItemID(m.SelectionIndex()); id != "" {
		attrs["aria-activedescendant"] = id
	}

	return attrs
}

// PopoverAttributes are the attributes of the popover.
func (m *Menu) PopoverAttributes() map[string]string {
	attrs := map[string]string{"data-reach-menu-popover": ""}

	if !m.IsExpanded() {
		attrs["hidden"] = ""
	}

	return attrs
}

// ItemAttributes are the attributes of the item with the given key.
func (m *Menu) ItemAttributes(key string) map[string]string {
	index := m.items.IndexOf(key)

	item, ok := m.items.At(index)
	if !ok {
		return nil
	}

	attrs := map[string]string{
		"id":                   m.ItemID(index),
		"role":                 "menuitem",
		"tabindex":             "-1",
		"data-valuetext":       item.Text,
		"data-reach-menu-item": "",
	}

	if item.Disabled {
		attrs["aria-disabled"] = "true"
		attrs["data-disabled"] = ""
	} else if index == m.SelectionIndex() {
		attrs["data-selected"] = ""
	}

	if item.IsLink {
		attrs["data-reach-menu-link"] = ""
	}

	return attrs
}
