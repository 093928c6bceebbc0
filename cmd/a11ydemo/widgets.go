package main

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/amp-labs/amp-a11y/host"
	"github.com/amp-labs/amp-a11y/navigation"
	"github.com/amp-labs/amp-a11y/statemachine"
	"github.com/amp-labs/amp-a11y/typeahead"
	"github.com/amp-labs/amp-a11y/widgets/checkbox"
	"github.com/amp-labs/amp-a11y/widgets/combobox"
	"github.com/amp-labs/amp-a11y/widgets/disclosure"
	"github.com/amp-labs/amp-a11y/widgets/listbox"
	"github.com/amp-labs/amp-a11y/widgets/menu"
	"github.com/amp-labs/amp-a11y/widgets/slider"
	"github.com/amp-labs/amp-a11y/widgets/tabs"
)

// segment is a run of row text; strong runs are drawn bold.
type segment struct {
	Text   string
	Strong bool
}

// row is one rendered line. Rows with a node receive pointer events.
type row struct {
	Node      host.Node
	Text      string
	Segments  []segment
	Focusable bool
	Active    bool
	Muted     bool
}

// demoWidget binds one widget to the terminal.
type demoWidget interface {
	Name() string
	// Start mounts the widget and returns the node that takes focus first.
	Start(ctx context.Context) (host.Node, []statemachine.Effect)
	// Key routes a keydown to the node holding focus.
	Key(ctx context.Context, focus host.Node, ev host.Event) []statemachine.Effect
	// Pointer routes a pointer event over node, which is empty between rows.
	Pointer(ctx context.Context, node host.Node, ev host.Event) []statemachine.Effect
	// FocusChanged reports focus moving between nodes.
	FocusChanged(ctx context.Context, from, to host.Node) []statemachine.Effect
	// Send delivers an event scheduled by a timer.
	Send(ctx context.Context, ev statemachine.Event) []statemachine.Effect
	Rows() []row
}

// placer is implemented by widgets that need to know where a row was drawn.
type placer interface {
	Place(node host.Node, x, y, width int)
}

// nodeTree maps each node to its parent.
type nodeTree map[host.Node]host.Node

func (t nodeTree) Contains(ancestor, node host.Node) bool {
	for n, hops := node, 0; n != "" && hops <= len(t); n, hops = t[n], hops+1 {
		if n == ancestor {
			return true
		}
	}

	return false
}

// untimed widgets never schedule events.
type untimed struct{}

func (untimed) Send(context.Context, statemachine.Event) []statemachine.Effect { return nil }

func isActivation(ev host.Event) bool {
	return ev.Key == host.KeyEnter || ev.Key == host.KeySpace
}

var widgetNames = []string{"checkbox", "combobox", "disclosure", "listbox", "menu", "slider", "tabs"} //nolint:gochecknoglobals

func newWidget(ctx context.Context, name string, options []string) (demoWidget, error) {
	switch name {
	case "checkbox":
		return newCheckboxDemo()
	case "combobox":
		return newComboboxDemo(options)
	case "disclosure":
		return newDisclosureDemo()
	case "listbox":
		return newListboxDemo(options)
	case "menu":
		return newMenuDemo()
	case "slider":
		return newSliderDemo(), nil
	case "tabs":
		return newTabsDemo(ctx), nil
	default:
		return nil, fmt.Errorf("%w: %q (choose from %s)", errUnknownWidget, name, strings.Join(widgetNames, ", "))
	}
}

// checkbox

const checkboxNode host.Node = "checkbox"

type checkboxDemo struct {
	untimed

	c *checkbox.Controller
}

func newCheckboxDemo() (*checkboxDemo, error) {
	c, err := checkbox.NewController(checkbox.Options{DefaultChecked: "mixed"})
	if err != nil {
		return nil, err
	}

	return &checkboxDemo{c: c}, nil
}

func (d *checkboxDemo) Name() string { return "checkbox" }

func (d *checkboxDemo) Start(ctx context.Context) (host.Node, []statemachine.Effect) {
	d.c.Mount(ctx, checkboxNode)

	return checkboxNode, nil
}

func (d *checkboxDemo) Key(ctx context.Context, focus host.Node, ev host.Event) []statemachine.Effect {
	if focus != checkboxNode || ev.Key != host.KeySpace {
		return nil
	}

	return d.c.HandleEvent(ctx, host.Event{Type: host.Change})
}

func (d *checkboxDemo) Pointer(ctx context.Context, node host.Node, ev host.Event) []statemachine.Effect {
	if node != checkboxNode || ev.Type != host.Click {
		return nil
	}

	return d.c.HandleEvent(ctx, host.Event{Type: host.Change})
}

func (d *checkboxDemo) FocusChanged(context.Context, host.Node, host.Node) []statemachine.Effect {
	return nil
}

func (d *checkboxDemo) Rows() []row {
	marks := map[checkbox.State]string{
		checkbox.Checked:   "[x]",
		checkbox.Mixed:     "[-]",
		checkbox.Unchecked: "[ ]",
	}

	state := d.c.State()

	return []row{{
		Node:      checkboxNode,
		Text:      fmt.Sprintf("%s Subscribe to updates   aria-checked=%s", marks[state], state.AriaChecked()),
		Focusable: true,
		Active:    state.Checked(),
	}}
}

// disclosure

const (
	disclosureButton host.Node = "disclosure-button"
	disclosurePanel  host.Node = "disclosure-panel"
)

type disclosureDemo struct {
	untimed

	d *disclosure.Disclosure
}

func newDisclosureDemo() (*disclosureDemo, error) {
	d, err := disclosure.New(disclosure.Options{ID: "details"}, nil)
	if err != nil {
		return nil, err
	}

	return &disclosureDemo{d: d}, nil
}

func (d *disclosureDemo) Name() string { return "disclosure" }

func (d *disclosureDemo) Start(ctx context.Context) (host.Node, []statemachine.Effect) {
	d.d.Mount(ctx, disclosureButton)

	return disclosureButton, nil
}

func (d *disclosureDemo) Key(ctx context.Context, focus host.Node, ev host.Event) []statemachine.Effect {
	if focus != disclosureButton || !isActivation(ev) {
		return nil
	}

	return d.d.HandleButtonEvent(ctx, host.Event{Type: host.Click})
}

func (d *disclosureDemo) Pointer(ctx context.Context, node host.Node, ev host.Event) []statemachine.Effect {
	if node != disclosureButton {
		return nil
	}

	return d.d.HandleButtonEvent(ctx, ev)
}

func (d *disclosureDemo) FocusChanged(context.Context, host.Node, host.Node) []statemachine.Effect {
	return nil
}

func (d *disclosureDemo) Rows() []row {
	arrow := "▸ Show details"
	if d.d.IsOpen() {
		arrow = "▾ Hide details"
	}

	attrs := d.d.ButtonAttributes()
	rows := []row{{
		Node:      disclosureButton,
		Text:      fmt.Sprintf("%s   aria-expanded=%s", arrow, attrs["aria-expanded"]),
		Focusable: true,
		Active:    d.d.IsOpen(),
	}}

	if d.d.IsOpen() {
		rows = append(rows, row{Node: disclosurePanel, Text: "  The panel " + d.d.PanelID() + " is visible."})
	}

	return rows
}

// tabs

type tabsDemo struct {
	untimed

	t *tabs.Tabs
}

func tabNode(key string) host.Node {
	return host.Node("tab-" + key)
}

func newTabsDemo(ctx context.Context) *tabsDemo {
	t := tabs.New(ctx, tabs.Options{ID: "sections", Orientation: navigation.Both, HandlesChange: true}, nil)
	t.SetTabs([]tabs.Tab{
		{Key: "Overview", Node: tabNode("Overview")},
		{Key: "Details", Node: tabNode("Details")},
		{Key: "Archived", Node: tabNode("Archived"), Disabled: true},
		{Key: "Settings", Node: tabNode("Settings")},
	})

	return &tabsDemo{t: t}
}

func (d *tabsDemo) Name() string { return "tabs" }

func (d *tabsDemo) Start(context.Context) (host.Node, []statemachine.Effect) {
	d.t.Mount()

	tab := d.t.Tabs()[d.t.SelectedIndex()]

	return tab.Node, nil
}

func (d *tabsDemo) tabKey(node host.Node) (string, bool) {
	return strings.CutPrefix(string(node), "tab-")
}

func (d *tabsDemo) Key(ctx context.Context, focus host.Node, ev host.Event) []statemachine.Effect {
	key, ok := d.tabKey(focus)
	if !ok {
		return nil
	}

	if isActivation(ev) {
		return d.t.HandleTabEvent(ctx, key, host.Event{Type: host.Click})
	}

	return d.t.HandleListEvent(ctx, ev)
}

func (d *tabsDemo) Pointer(ctx context.Context, node host.Node, ev host.Event) []statemachine.Effect {
	key, ok := d.tabKey(node)
	if !ok {
		return nil
	}

	return d.t.HandleTabEvent(ctx, key, ev)
}

func (d *tabsDemo) FocusChanged(ctx context.Context, from, to host.Node) []statemachine.Effect {
	if key, ok := d.tabKey(from); ok {
		d.t.HandleTabEvent(ctx, key, host.Event{Type: host.Blur, RelatedTarget: to})
	}

	if key, ok := d.tabKey(to); ok {
		d.t.HandleTabEvent(ctx, key, host.Event{Type: host.FocusIn})
	}

	return nil
}

func (d *tabsDemo) Rows() []row {
	list := d.t.Tabs()
	rows := make([]row, 0, len(list)+1)

	for i, tab := range list {
		attrs := d.t.TabAttributes(tab.Key)
		rows = append(rows, row{
			Node:      tab.Node,
			Text:      fmt.Sprintf("%-10s aria-selected=%s tabindex=%s", tab.Key, attrs["aria-selected"], attrs["tabindex"]),
			Focusable: !tab.Disabled,
			Active:    i == d.t.SelectedIndex(),
			Muted:     tab.Disabled,
		})
	}

	selected := list[d.t.SelectedIndex()]

	return append(rows, row{Text: fmt.Sprintf("  %s: %s panel", d.t.PanelID(d.t.SelectedIndex()), selected.Key)})
}

// slider

const (
	sliderHandle host.Node = "slider-handle"
	sliderTrack  host.Node = "slider-track"
	trackWidth             = 40
)

type sliderDemo struct {
	untimed

	s *slider.Slider
}

func newSliderDemo() *sliderDemo {
	step := 5.0

	return &sliderDemo{s: slider.New(slider.Options{ID: "volume", Label: "Volume", Step: &step}, nil)}
}

func (d *sliderDemo) Name() string { return "slider" }

func (d *sliderDemo) Start(context.Context) (host.Node, []statemachine.Effect) {
	d.s.Mount(sliderHandle)

	return sliderHandle, nil
}

func (d *sliderDemo) Key(ctx context.Context, focus host.Node, ev host.Event) []statemachine.Effect {
	if focus != sliderHandle {
		return nil
	}

	return d.s.HandleHandleEvent(ctx, ev)
}

func (d *sliderDemo) Pointer(ctx context.Context, node host.Node, ev host.Event) []statemachine.Effect {
	if node != sliderTrack && !d.s.IsDragging() {
		return nil
	}

	return d.s.HandleTrackEvent(ctx, ev)
}

func (d *sliderDemo) FocusChanged(ctx context.Context, from, to host.Node) []statemachine.Effect {
	switch sliderHandle {
	case from:
		d.s.HandleHandleEvent(ctx, host.Event{Type: host.Blur})
	case to:
		d.s.HandleHandleEvent(ctx, host.Event{Type: host.FocusIn})
	}

	return nil
}

func (d *sliderDemo) Place(node host.Node, x, y, _ int) {
	if node == sliderTrack {
		d.s.SetTrack(slider.Rect{Left: float64(x), Top: float64(y), Width: trackWidth, Height: 1})
	}
}

func (d *sliderDemo) Rows() []row {
	attrs := d.s.HandleAttributes()
	filled := int(d.s.Percent() * (trackWidth - 1) / 100)

	return []row{
		{
			Node:      sliderHandle,
			Text:      fmt.Sprintf("%s: %s   aria-valuenow=%s", attrs["aria-label"], slider.FormatValue(d.s.Value()), attrs["aria-valuenow"]),
			Focusable: true,
		},
		{
			Node: sliderTrack,
			Segments: []segment{
				{Text: strings.Repeat("━", filled)},
				{Text: "●", Strong: true},
				{Text: strings.Repeat("─", trackWidth-1-filled)},
			},
			Active: d.s.IsDragging(),
		},
	}
}

// listbox

const (
	listboxButton  host.Node = "listbox-button"
	listboxList    host.Node = "listbox-list"
	listboxPopover host.Node = "listbox-popover"
)

func optionNode(value string) host.Node {
	return host.Node("option-" + value)
}

type listboxDemo struct {
	l    *listbox.Listbox
	tree nodeTree
	opts []listbox.Option
}

func newListboxDemo(values []string) (*listboxDemo, error) {
	tree := nodeTree{listboxList: listboxPopover}
	opts := make([]listbox.Option, 0, len(values))

	for _, v := range values {
		tree[optionNode(v)] = listboxList
		opts = append(opts, listbox.Option{Value: v})
	}

	l, err := listbox.New(listbox.Options{ID: "fruit", AriaLabel: "Fruit"}, tree, nil)
	if err != nil {
		return nil, err
	}

	return &listboxDemo{l: l, tree: tree, opts: opts}, nil
}

func (d *listboxDemo) Name() string { return "listbox" }

func (d *listboxDemo) Start(ctx context.Context) (host.Node, []statemachine.Effect) {
	effects := d.l.Mount(ctx, listbox.Refs{Button: listboxButton, List: listboxList, Popover: listboxPopover})

	return listboxButton, append(effects, d.l.SetOptions(ctx, d.opts)...)
}

func (d *listboxDemo) Key(ctx context.Context, focus host.Node, ev host.Event) []statemachine.Effect {
	switch focus {
	case listboxButton:
		return d.l.HandleButtonEvent(ctx, ev)
	case listboxList:
		return d.l.HandleListEvent(ctx, ev)
	default:
		return nil
	}
}

func (d *listboxDemo) Pointer(ctx context.Context, node host.Node, ev host.Event) []statemachine.Effect {
	switch {
	case node == listboxButton:
		return d.l.HandleButtonEvent(ctx, ev)
	case d.tree.Contains(listboxList, node) && node != listboxList:
		value := strings.TrimPrefix(string(node), "option-")
		effects := d.l.HandleOptionEvent(ctx, value, ev)

		if ev.Type == host.MouseUp {
			effects = append(effects, d.l.HandleListEvent(ctx, ev)...)
		}

		return effects
	case d.tree.Contains(listboxPopover, node):
		return d.l.HandleListEvent(ctx, ev)
	default:
		ev.Target = node

		return d.l.HandleOutsideEvent(ctx, ev)
	}
}

func (d *listboxDemo) FocusChanged(ctx context.Context, from, to host.Node) []statemachine.Effect {
	if from != listboxList {
		return nil
	}

	return d.l.HandleListEvent(ctx, host.Event{Type: host.Blur, RelatedTarget: to})
}

func (d *listboxDemo) Send(ctx context.Context, ev statemachine.Event) []statemachine.Effect {
	return d.l.Send(ctx, ev)
}

func (d *listboxDemo) Rows() []row {
	attrs := d.l.ButtonAttributes()
	rows := []row{{
		Node:      listboxButton,
		Text:      fmt.Sprintf("Fruit: %s ▾   aria-expanded=%s", d.l.ValueLabel(), attrs["aria-expanded"]),
		Focusable: true,
	}}

	if !d.l.IsExpanded() {
		return rows
	}

	for _, o := range d.l.Options() {
		mark := "  "
		if o.Value == d.l.Value() {
			mark = "✓ "
		}

		rows = append(rows, row{
			Node:   optionNode(o.Value),
			Text:   "  " + mark + o.Label(),
			Active: o.Value == d.l.NavigationValue(),
			Muted:  o.Disabled,
		})
	}

	return rows
}

// combobox

const (
	comboboxInput   host.Node = "combobox-input"
	comboboxButton  host.Node = "combobox-button"
	comboboxPopover host.Node = "combobox-popover"
)

type comboboxDemo struct {
	c    *combobox.Combobox
	all  []string
	tree nodeTree
}

func newComboboxDemo(values []string) (*comboboxDemo, error) {
	tree := nodeTree{}
	for _, v := range values {
		tree[optionNode(v)] = comboboxPopover
	}

	c, err := combobox.New(combobox.Options{ID: "search", AriaLabel: "Fruit search"}, tree, nil)
	if err != nil {
		return nil, err
	}

	c.SetOptions(values)

	return &comboboxDemo{c: c, all: values, tree: tree}, nil
}

func (d *comboboxDemo) Name() string { return "combobox" }

func (d *comboboxDemo) Start(ctx context.Context) (host.Node, []statemachine.Effect) {
	return comboboxInput, d.c.Mount(ctx, combobox.Refs{Input: comboboxInput, Popover: comboboxPopover, Button: comboboxButton})
}

// filter registers the options matching what the user typed, the way an app
// renders a filtered list.
func (d *comboboxDemo) filter() {
	query := typeahead.Fold(d.c.Value())

	var matches []string

	for _, v := range d.all {
		if strings.Contains(typeahead.Fold(v), query) {
			matches = append(matches, v)
		}
	}

	d.c.SetOptions(matches)
}

func (d *comboboxDemo) input(ctx context.Context, value string) []statemachine.Effect {
	effects := d.c.HandleInputEvent(ctx, host.Event{Type: host.Input, Value: value})
	d.filter()

	return effects
}

func (d *comboboxDemo) Key(ctx context.Context, focus host.Node, ev host.Event) []statemachine.Effect {
	switch focus {
	case comboboxInput:
	case comboboxButton:
		if isActivation(ev) {
			return d.c.HandleButtonEvent(ctx, host.Event{Type: host.Click})
		}

		return d.c.HandleButtonEvent(ctx, ev)
	default:
		return nil
	}

	text := d.c.DisplayValue()

	switch {
	case ev.Key == host.KeyBackspace:
		if text == "" {
			return nil
		}

		_, size := utf8.DecodeLastRuneInString(text)

		return d.input(ctx, text[:len(text)-size])
	case host.IsCharacterKey(ev.Key) && !ev.Ctrl && !ev.Meta:
		return d.input(ctx, text+ev.Key)
	default:
		return d.c.HandleInputEvent(ctx, ev)
	}
}

func (d *comboboxDemo) Pointer(ctx context.Context, node host.Node, ev host.Event) []statemachine.Effect {
	if ev.Type != host.Click {
		return nil
	}

	switch {
	case node == comboboxInput:
		return d.c.HandleInputEvent(ctx, ev)
	case node == comboboxButton:
		return d.c.HandleButtonEvent(ctx, ev)
	case d.tree.Contains(comboboxPopover, node) && node != comboboxPopover:
		effects := d.c.HandleOptionEvent(ctx, strings.TrimPrefix(string(node), "option-"), ev)
		d.filter()

		return effects
	default:
		return nil
	}
}

func (d *comboboxDemo) FocusChanged(ctx context.Context, from, to host.Node) []statemachine.Effect {
	var effects []statemachine.Effect

	if from == comboboxInput {
		effects = append(effects, d.c.HandleInputEvent(ctx, host.Event{Type: host.Blur, RelatedTarget: to})...)
	}

	if to == comboboxInput {
		effects = append(effects, d.c.HandleInputEvent(ctx, host.Event{Type: host.FocusIn})...)
	}

	return effects
}

func (d *comboboxDemo) Send(context.Context, statemachine.Event) []statemachine.Effect {
	return nil
}

func (d *comboboxDemo) Rows() []row {
	attrs := d.c.InputAttributes()
	rows := []row{
		{
			Node:      comboboxInput,
			Text:      fmt.Sprintf("Search: %s▏  aria-expanded=%s", d.c.DisplayValue(), attrs["aria-expanded"]),
			Focusable: true,
		},
		{Node: comboboxButton, Text: "[ ▾ ]", Focusable: true, Active: d.c.IsExpanded()},
	}

	if !d.c.IsExpanded() {
		return rows
	}

	for _, v := range d.c.Options() {
		segments := []segment{{Text: "  "}}
		for _, chunk := range d.c.OptionChunks(v) {
			segments = append(segments, segment{Text: chunk.Text, Strong: !chunk.Highlight})
		}

		rows = append(rows, row{
			Node:     optionNode(v),
			Segments: segments,
			Active:   v == d.c.NavigationValue(),
		})
	}

	return rows
}

// menu

const (
	menuButton  host.Node = "menu-button"
	menuItems   host.Node = "menu-items"
	menuPopover host.Node = "menu-popover"
)

type menuDemo struct {
	m       *menu.Menu
	tree    nodeTree
	items   []menu.Item
	hovered string
}

func itemNode(key string) host.Node {
	return host.Node("item-" + key)
}

func newMenuDemo() (*menuDemo, error) {
	items := []menu.Item{
		{Key: "edit", Text: "Edit"},
		{Key: "duplicate", Text: "Duplicate"},
		{Key: "archive", Text: "Archive", Disabled: true},
		{Key: "delete", Text: "Delete"},
		{Key: "docs", Text: "Open docs", IsLink: true},
	}

	tree := nodeTree{menuItems: menuPopover}
	for i := range items {
		items[i].Node = itemNode(items[i].Key)
		tree[items[i].Node] = menuItems
	}

	m, err := menu.New(menu.Options{ID: "actions"}, tree, nil)
	if err != nil {
		return nil, err
	}

	return &menuDemo{m: m, tree: tree, items: items}, nil
}

func (d *menuDemo) Name() string { return "menu" }

func (d *menuDemo) Start(ctx context.Context) (host.Node, []statemachine.Effect) {
	d.m.Mount(menu.Refs{Button: menuButton, Items: menuItems, Popover: menuPopover})

	return menuButton, d.m.SetItems(ctx, d.items)
}

func (d *menuDemo) Key(ctx context.Context, focus host.Node, ev host.Event) []statemachine.Effect {
	switch focus {
	case menuButton:
		return d.m.HandleButtonEvent(ctx, ev)
	case menuItems:
		return d.m.HandleItemsEvent(ctx, ev)
	default:
		return nil
	}
}

func (d *menuDemo) itemKey(node host.Node) (string, bool) {
	if node == menuItems || !d.tree.Contains(menuItems, node) {
		return "", false
	}

	return strings.CutPrefix(string(node), "item-")
}

func (d *menuDemo) Pointer(ctx context.Context, node host.Node, ev host.Event) []statemachine.Effect {
	var effects []statemachine.Effect

	key, onItem := d.itemKey(node)

	if ev.Type == host.MouseMove && key != d.hovered {
		if d.hovered != "" {
			effects = append(effects, d.m.HandleItemEvent(ctx, d.hovered, host.Event{Type: host.MouseLeave})...)
		}

		if onItem {
			effects = append(effects, d.m.HandleItemEvent(ctx, key, host.Event{Type: host.MouseEnter})...)
		}

		d.hovered = key
	}

	switch {
	case node == menuButton:
		effects = append(effects, d.m.HandleButtonEvent(ctx, ev)...)
	case onItem:
		effects = append(effects, d.m.HandleItemEvent(ctx, key, ev)...)
	}

	if ev.Type == host.MouseDown || ev.Type == host.MouseUp {
		ev.Target = node
		effects = append(effects, d.m.HandleDocumentEvent(ctx, ev)...)
	}

	return effects
}

func (d *menuDemo) FocusChanged(ctx context.Context, from, to host.Node) []statemachine.Effect {
	if from != menuItems {
		return nil
	}

	return d.m.HandlePopoverEvent(ctx, host.Event{Type: host.Blur, RelatedTarget: to})
}

func (d *menuDemo) Send(ctx context.Context, ev statemachine.Event) []statemachine.Effect {
	return d.m.Send(ctx, ev)
}

func (d *menuDemo) Rows() []row {
	attrs := d.m.ButtonAttributes()
	rows := []row{{
		Node:      menuButton,
		Text:      fmt.Sprintf("Actions ▾   aria-expanded=%s", attrs["aria-expanded"]),
		Focusable: true,
	}}

	if !d.m.IsExpanded() {
		return rows
	}

	for i, item := range d.m.Items() {
		text := "  " + item.Text
		if item.IsLink {
			text += " ↗"
		}

		rows = append(rows, row{
			Node:   item.Node,
			Text:   text,
			Active: i == d.m.SelectionIndex(),
			Muted:  item.Disabled,
		})
	}

	return rows
}
