package combobox

import (
	"context"
	"strconv"
	"strings"

	"github.com/OneOfOne/xxhash"
	"github.com/amp-labs/amp-a11y/descendants"
	"github.com/amp-labs/amp-a11y/host"
	"github.com/amp-labs/amp-a11y/navigation"
	"github.com/amp-labs/amp-a11y/statemachine"
	"github.com/amp-labs/amp-a11y/warning"
)

// Callback names.
const (
	CallbackSelect = "onSelect"
	CallbackChange = "onChange"
)

// Options are the props of a combobox. A nil Value leaves the input uncontrolled.
type Options struct {
	ID    string  `json:"id,omitempty"    yaml:"id,omitempty"`
	Value *string `json:"value,omitempty" yaml:"value,omitempty"`
	// Autocomplete shows the highlighted option in the input while navigating, and
	// navigating past either end returns to what the user typed. Defaults to true.
	Autocomplete *bool `json:"autocomplete,omitempty" yaml:"autocomplete,omitempty"`
	// OpenOnFocus opens the popover when the input gains focus or is clicked.
	OpenOnFocus bool `json:"openOnFocus,omitempty" yaml:"openOnFocus,omitempty"`
	// SelectOnClick selects the input text on the first click after focus.
	SelectOnClick bool `json:"selectOnClick,omitempty" yaml:"selectOnClick,omitempty"`
	// PersistSelection highlights the current value when the popover opens.
	PersistSelection bool   `json:"persistSelection,omitempty" yaml:"persistSelection,omitempty"`
	AriaLabel        string `json:"ariaLabel,omitempty"        yaml:"ariaLabel,omitempty"`
	AriaLabelledBy   string `json:"ariaLabelledBy,omitempty"   yaml:"ariaLabelledBy,omitempty"`
}

func (o Options) isControlled() bool {
	return o.Value != nil
}

func (o Options) controlledValue() string {
	if o.Value == nil {
		return ""
	}

	return *o.Value
}

func (o Options) autocomplete() bool {
	return o.Autocomplete == nil || *o.Autocomplete
}

// Refs are the nodes the combobox renders.
type Refs struct {
	Input   host.Node
	Popover host.Node
	Button  host.Node
}

// Combobox binds a combobox machine to host events, options and props.
type Combobox struct {
	machine  *statemachine.Machine[State, Data]
	opts     Options
	id       string
	tree     host.Tree
	refs     Refs
	options  *descendants.Registry[string, string]
	switched *warning.ControlledSwitch

	initialControlled  *string
	controlledChanged  bool
	selectOnClickArmed bool
}

// New creates a combobox. tree answers containment questions when focus leaves the
// input; ids generates the id when opts.ID is empty.
func New(opts Options, tree host.Tree, ids host.IDGenerator, machineOpts ...statemachine.Option) (*Combobox, error) {
	def, err := Definition()
	if err != nil {
		return nil, err
	}

	machine, err := statemachine.New(def, append([]statemachine.Option{statemachine.WithName("combobox")}, machineOpts...)...)
	if err != nil {
		return nil, err
	}

	id := opts.ID
	if id == "" && ids != nil {
		id = ids.NewID()
	}

	return &Combobox{
		machine:           machine,
		opts:              opts,
		id:                id,
		tree:              tree,
		options:           descendants.New[string, string](),
		switched:          warning.NewControlledSwitch(opts.isControlled()),
		initialControlled: opts.Value,
	}, nil
}

// Machine exposes the underlying machine.
func (c *Combobox) Machine() *statemachine.Machine[State, Data] {
	return c.machine
}

// State is the current machine state.
func (c *Combobox) State() State {
	return c.machine.State()
}

// IsExpanded reports whether the popover is shown.
func (c *Combobox) IsExpanded() bool {
	return IsExpanded(c.State())
}

// Value is the value the machine holds: what the user typed or selected.
func (c *Combobox) Value() string {
	return c.machine.Context().Value
}

// NavigationValue is the highlighted option, "" for none.
func (c *Combobox) NavigationValue() string {
	return c.machine.Context().NavigationValue
}

// ID is the combobox id.
func (c *Combobox) ID() string {
	return c.id
}

// ListID is the id of the option list.
func (c *Combobox) ListID() string {
	if c.id == "" {
		return "listbox"
	}

	return host.MakeID("listbox", c.id)
}

func (c *Combobox) send(ctx context.Context, ev statemachine.Event) []statemachine.Effect {
	snap := c.machine.Send(ctx, ev)
	if !snap.Changed || !refocusesInput(snap.Context.LastEventType) || c.refs.Input == "" {
		return snap.Effects
	}

	return append(snap.Effects, host.Focus{Node: c.refs.Input})
}

// Mount records the rendered nodes and syncs a controlled value.
func (c *Combobox) Mount(ctx context.Context, refs Refs) []statemachine.Effect {
	c.refs = refs

	return c.syncControlled(ctx)
}

// SetOptions replaces the suggested options.
func (c *Combobox) SetOptions(values []string) {
	for _, key := range c.options.Keys() {
		c.options.Deregister(key)
	}

	for i, v := range values {
		c.options.Register(v, v, i)
	}
}

// RegisterOption adds or moves an option to position.
func (c *Combobox) RegisterOption(value string, position int) {
	c.options.Register(value, value, position)
}

// DeregisterOption removes an option.
func (c *Combobox) DeregisterOption(value string) {
	c.options.Deregister(value)
}

// Options returns the suggested options in order.
func (c *Combobox) Options() []string {
	return c.options.Items()
}

// Update applies new props. A changed controlled value is fed through the same path
// as typing.
func (c *Combobox) Update(ctx context.Context, opts Options) []statemachine.Effect {
	prev := c.opts
	c.opts = opts

	c.switched.Check(ctx, "ComboboxInput", "value", opts.isControlled())

	if opts.controlledValue() != prev.controlledValue() {
		c.controlledChanged = true
	}

	return c.syncControlled(ctx)
}

// syncControlled emulates an input change when the controlled value differs from
// the machine's. Clearing an already blank value is not reported.
func (c *Combobox) syncControlled(ctx context.Context) []statemachine.Effect {
	if !c.opts.isControlled() {
		return nil
	}

	controlled := c.opts.controlledValue()
	if controlled == c.Value() {
		return nil
	}

	if strings.TrimSpace(controlled) == "" && strings.TrimSpace(c.Value()) == "" {
		return nil
	}

	return c.valueChanged(ctx, controlled)
}

func (c *Combobox) valueChanged(ctx context.Context, value string) []statemachine.Effect {
	switch {
	case strings.TrimSpace(value) == "":
		return c.send(ctx, Clear{})
	case c.initialControlled != nil && value == *c.initialControlled && !c.controlledChanged:
		return c.send(ctx, InitialChange{Value: value})
	default:
		return c.send(ctx, Change{Value: value})
	}
}

// Change handles the user typing value into the input. A controlled combobox only
// reports the change; the app feeds the value back through Update.
func (c *Combobox) Change(ctx context.Context, value string) []statemachine.Effect {
	effects := []statemachine.Effect{host.Callback{Name: CallbackChange, Value: value}}

	if c.opts.isControlled() {
		return effects
	}

	return append(effects, c.valueChanged(ctx, value)...)
}

// HandleInputEvent routes events from the input.
func (c *Combobox) HandleInputEvent(ctx context.Context, ev host.Event) []statemachine.Effect {
	switch ev.Type {
	case host.Change, host.Input:
		return c.Change(ctx, ev.Value)
	case host.KeyDown:
		return c.handleKeyDown(ctx, ev)
	case host.Blur:
		return c.handleBlur(ctx, ev)
	case host.FocusIn:
		return c.handleFocus(ctx)
	case host.Click:
		return c.handleClick(ctx)
	default:
		return nil
	}
}

// HandlePopoverEvent routes events from the popover.
func (c *Combobox) HandlePopoverEvent(ctx context.Context, ev host.Event) []statemachine.Effect {
	switch ev.Type {
	case host.KeyDown:
		return c.handleKeyDown(ctx, ev)
	case host.Blur:
		return c.handleBlur(ctx, ev)
	default:
		return nil
	}
}

// HandleButtonEvent routes events from the toggle button.
func (c *Combobox) HandleButtonEvent(ctx context.Context, ev host.Event) []statemachine.Effect {
	switch ev.Type {
	case host.Click:
		if c.State() == Idle {
			return c.send(ctx, OpenWithButton{})
		}

		return c.send(ctx, CloseWithButton{})
	case host.KeyDown:
		return c.handleKeyDown(ctx, ev)
	default:
		return nil
	}
}

// HandleOptionEvent routes a click on the option with the given value.
func (c *Combobox) HandleOptionEvent(ctx context.Context, value string, ev host.Event) []statemachine.Effect {
	if ev.Type != host.Click {
		return nil
	}

	effects := []statemachine.Effect{host.Callback{Name: CallbackSelect, Value: value}}

	return append(effects, c.send(ctx, SelectWithClick{Value: value, IsControlled: c.opts.isControlled()})...)
}

func (c *Combobox) handleFocus(ctx context.Context) []statemachine.Effect {
	if c.opts.SelectOnClick {
		c.selectOnClickArmed = true
	}

	// Selecting with a click refocuses the input; that focus must not reopen the list.
	if c.opts.OpenOnFocus && c.machine.Context().LastEventType != EventSelectWithClick {
		return c.send(ctx, Focus{PersistSelection: c.opts.PersistSelection})
	}

	return nil
}

func (c *Combobox) handleClick(ctx context.Context) []statemachine.Effect {
	var effects []statemachine.Effect

	if c.selectOnClickArmed {
		c.selectOnClickArmed = false

		if c.refs.Input != "" {
			effects = append(effects, host.SelectText{Node: c.refs.Input})
		}
	}

	if c.opts.OpenOnFocus && c.State() == Idle {
		effects = append(effects, c.send(ctx, OpenWithInputClick{})...)
	}

	return effects
}

// handleBlur closes the popover when focus leaves the combobox, and switches to
// interacting when it lands inside the popover.
func (c *Combobox) handleBlur(ctx context.Context, ev host.Event) []statemachine.Effect {
	target := ev.RelatedTarget

	if target == c.refs.Input || target == c.refs.Button || c.refs.Popover == "" {
		return nil
	}

	if c.tree != nil && target != "" && c.tree.Contains(c.refs.Popover, target) {
		if c.State() == Interacting {
			return nil
		}

		return c.send(ctx, Interact{})
	}

	return c.send(ctx, Blur{})
}

func (c *Combobox) handleKeyDown(ctx context.Context, ev host.Event) []statemachine.Effect {
	switch ev.Key {
	case host.KeyEscape:
		if c.State() == Idle {
			return nil
		}

		return c.send(ctx, Escape{})
	case host.KeyEnter:
		nav := c.NavigationValue()
		if c.State() != Navigating || nav == "" {
			return nil
		}

		effects := []statemachine.Effect{host.PreventDefault{}, host.Callback{Name: CallbackSelect, Value: nav}}

		return append(effects, c.send(ctx, SelectWithKeyboard{IsControlled: c.opts.isControlled()})...)
	}

	dir, ok := navigation.FromKey(ev.Key, false, navigation.KeyOptions{Orientation: navigation.Vertical})
	if !ok {
		return nil
	}

	effects := []statemachine.Effect{host.PreventDefault{}}

	options := c.options.Items()
	if len(options) == 0 {
		return effects
	}

	if c.State() == Idle {
		// Opening a closed list. Only ArrowDown keeps the current selection.
		persist := ev.Key == host.KeyArrowDown && c.opts.PersistSelection

		return append(effects, c.send(ctx, Navigate{PersistSelection: persist})...)
	}

	return append(effects, c.send(ctx, Navigate{Value: c.nextValue(options, dir)})...)
}

// nextValue is the option reached from the highlight in dir. With autocomplete,
// moving past either end returns "" so the input shows what the user typed again.
func (c *Combobox) nextValue(options []string, dir navigation.Direction) string {
	last := len(options) - 1
	index := c.options.IndexOf(c.NavigationValue())

	switch dir {
	case navigation.First:
		return options[0]
	case navigation.Last:
		return options[last]
	case navigation.Forward:
		if index == last {
			if c.opts.autocomplete() {
				return ""
			}

			return options[0]
		}

		return options[index+1]
	case navigation.Backward:
		switch index {
		case 0:
			if c.opts.autocomplete() {
				return ""
			}

			return options[last]
		case -1:
			return options[last]
		default:
			return options[index-1]
		}
	default:
		return ""
	}
}

// DisplayValue is the text the input shows. With autocomplete the highlighted option
// replaces the typed text while navigating.
func (c *Combobox) DisplayValue() string {
	value := c.opts.controlledValue()
	if value == "" {
		value = c.Value()
	}

	state := c.State()
	if c.opts.autocomplete() && (state == Navigating || state == Interacting) {
		if nav := c.NavigationValue(); nav != "" {
			return nav
		}
	}

	return value
}

// OptionID is the DOM id of the option with the given value: a hash of the value,
// so the id survives reordering.
func OptionID(value string) string {
	return strconv.FormatUint(uint64(xxhash.ChecksumString32(value)), 10)
}

// InputAttributes are the attributes of the input.
func (c *Combobox) InputAttributes() map[string]string {
	attrs := map[string]string{
		"role":                      "combobox",
		"aria-autocomplete":         "both",
		"aria-controls":             c.ListID(),
		"aria-expanded":             strconv.FormatBool(c.IsExpanded()),
		"aria-haspopup":             "listbox",
		"data-reach-combobox-input": "",
		"data-state":                string(c.State()),
		"value":                     c.DisplayValue(),
	}

	if nav := c.NavigationValue(); nav != "" {
		attrs["aria-activedescendant"] = OptionID(nav)
	}

	switch {
	case c.opts.AriaLabel != "":
		attrs["aria-label"] = c.opts.AriaLabel
	case c.opts.AriaLabelledBy != "":
		attrs["aria-labelledby"] = c.opts.AriaLabelledBy
	}

	return attrs
}

// PopoverAttributes are the attributes of the popover. It stays mounted and is
// hidden while collapsed.
func (c *Combobox) PopoverAttributes() map[string]string {
	attrs := map[string]string{
		"data-reach-combobox-popover": "",
		"data-state":                  string(c.State()),
		"tabindex":                    "-1",
	}

	if !c.IsExpanded() {
		attrs["hidden"] = ""
	}

	return attrs
}

// ListAttributes are the attributes of the option list.
func (c *Combobox) ListAttributes() map[string]string {
	return map[string]string{
		"role":                     "listbox",
		"id":                       c.ListID(),
		"data-reach-combobox-list": "",
	}
}

// OptionAttributes are the attributes of the option with the given value.
func (c *Combobox) OptionAttributes(value string) map[string]string {
	active := value == c.NavigationValue()

	attrs := map[string]string{
		"role":                       "option",
		"id":                         OptionID(value),
		"aria-selected":              strconv.FormatBool(active),
		"tabindex":                   "-1",
		"data-reach-combobox-option": "",
	}

	if active {
		attrs["data-highlighted"] = ""
	}

	return attrs
}

// ButtonAttributes are the attributes of the toggle button.
func (c *Combobox) ButtonAttributes() map[string]string {
	return map[string]string{
		"aria-controls":              c.ListID(),
		"aria-haspopup":              "listbox",
		"aria-expanded":              strconv.FormatBool(c.IsExpanded()),
		"data-reach-combobox-button": "",
	}
}

// OptionChunks splits an option's text into the parts matching the current value
// and the suggested rest.
func (c *Combobox) OptionChunks(value string) []Chunk {
	return HighlightChunks(value, c.Value())
}
