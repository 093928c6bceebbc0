package listbox

import (
	"context"
	"strconv"

	"github.com/amp-labs/amp-a11y/descendants"
	"github.com/amp-labs/amp-a11y/host"
	"github.com/amp-labs/amp-a11y/navigation"
	"github.com/amp-labs/amp-a11y/statemachine"
	"github.com/amp-labs/amp-a11y/warning"
)

// Options are the props of a listbox. A nil Value makes the listbox uncontrolled.
type Options struct {
	ID             string  `json:"id,omitempty"             yaml:"id,omitempty"`
	Value          *string `json:"value,omitempty"          yaml:"value,omitempty"`
	DefaultValue   *string `json:"defaultValue,omitempty"   yaml:"defaultValue,omitempty"`
	Disabled       bool    `json:"disabled,omitempty"       yaml:"disabled,omitempty"`
	Required       bool    `json:"required,omitempty"       yaml:"required,omitempty"`
	Name           string  `json:"name,omitempty"           yaml:"name,omitempty"`
	Form           string  `json:"form,omitempty"           yaml:"form,omitempty"`
	AriaLabel      string  `json:"ariaLabel,omitempty"      yaml:"ariaLabel,omitempty"`
	AriaLabelledBy string  `json:"ariaLabelledBy,omitempty" yaml:"ariaLabelledBy,omitempty"`
}

func (o Options) isControlled() bool {
	return o.Value != nil
}

// Listbox binds a listbox machine to host events, registered options and props.
type Listbox struct {
	machine  *statemachine.Machine[State, Context]
	opts     Options
	id       string
	clock    host.Clock
	refs     Refs
	options  *descendants.Registry[string, Option]
	switched *warning.ControlledSwitch
	// autoSelected is set once an uncontrolled listbox without a default has picked
	// its first enabled option.
	autoSelected bool
}

// New creates a listbox. tree answers containment questions for focus and pointer
// handling; ids generates the listbox id when opts.ID is empty.
func New(opts Options, tree host.Tree, ids host.IDGenerator, machineOpts ...statemachine.Option) (*Listbox, error) {
	initial := Context{Tree: tree}

	switch {
	case opts.isControlled():
		initial.Value = *opts.Value
	case opts.DefaultValue != nil:
		initial.Value = *opts.DefaultValue
	}

	machine, err := statemachine.NewAt(Definition(), Idle, initial,
		append([]statemachine.Option{statemachine.WithName("listbox")}, machineOpts...)...)
	if err != nil {
		return nil, err
	}

	id := opts.ID
	if id == "" && ids != nil {
		id = host.MakeID("listbox-input", ids.NewID())
	}

	if id == "" {
		id = "listbox-input"
	}

	return &Listbox{
		machine:      machine,
		opts:         opts,
		id:           id,
		clock:        host.RealClock{},
		options:      descendants.New[string, Option](),
		switched:     warning.NewControlledSwitch(opts.isControlled()),
		autoSelected: opts.isControlled() || opts.DefaultValue != nil,
	}, nil
}

// WithClock replaces the clock used to timestamp typeahead keystrokes.
func (l *Listbox) WithClock(clock host.Clock) *Listbox {
	l.clock = clock

	return l
}

// Machine exposes the underlying machine.
func (l *Listbox) Machine() *statemachine.Machine[State, Context] {
	return l.machine
}

// ID is the listbox id used to derive option ids.
func (l *Listbox) ID() string {
	return l.id
}

// State is the current machine state.
func (l *Listbox) State() State {
	return l.machine.State()
}

// IsExpanded reports whether the popover is shown.
func (l *Listbox) IsExpanded() bool {
	return IsExpanded(l.State())
}

// Value is the selected option value.
func (l *Listbox) Value() string {
	return l.machine.Context().Value
}

// NavigationValue is the highlighted option value.
func (l *Listbox) NavigationValue() string {
	return l.machine.Context().NavigationValue
}

// ValueLabel is the label of the selected option, shown on the button.
func (l *Listbox) ValueLabel() string {
	if o, ok := l.machine.Context().option(l.Value()); ok {
		return o.Label()
	}

	return ""
}

// Options returns the registered options in document order.
func (l *Listbox) Options() []Option {
	return l.options.Items()
}

func (l *Listbox) send(ctx context.Context, ev statemachine.Event) []statemachine.Effect {
	return l.machine.Send(ctx, ev).Effects
}

// Send delivers an event the host scheduled earlier, such as ClearTypeahead.
func (l *Listbox) Send(ctx context.Context, ev statemachine.Event) []statemachine.Effect {
	return l.send(ctx, ev)
}

// Mount records the rendered nodes.
func (l *Listbox) Mount(ctx context.Context, refs Refs) []statemachine.Effect {
	warning.Warn(ctx, refs.Button != "", "A ref was not assigned to the button element in ListboxInput.")

	l.refs = refs

	return l.sync(ctx)
}

// SetOptions replaces every registered option.
func (l *Listbox) SetOptions(ctx context.Context, opts []Option) []statemachine.Effect {
	for _, key := range l.options.Keys() {
		l.options.Deregister(key)
	}

	for i, o := range opts {
		l.options.Register(o.Value, o, i)
	}

	return l.sync(ctx)
}

// RegisterOption adds or moves an option to position.
func (l *Listbox) RegisterOption(ctx context.Context, o Option, position int) []statemachine.Effect {
	l.options.Register(o.Value, o, position)

	return l.sync(ctx)
}

// DeregisterOption removes an option.
func (l *Listbox) DeregisterOption(ctx context.Context, value string) []statemachine.Effect {
	if !l.options.Deregister(value) {
		return nil
	}

	return l.sync(ctx)
}

// sync copies options and nodes into the machine and, the first time options are
// available, selects the first enabled option of an uncontrolled listbox.
func (l *Listbox) sync(ctx context.Context) []statemachine.Effect {
	effects := l.send(ctx, GetDerivedData{Options: l.options.Items(), Refs: l.refs})

	if l.autoSelected {
		return effects
	}

	for _, o := range l.options.Items() {
		if o.Disabled {
			continue
		}

		l.autoSelected = true

		return append(effects, l.send(ctx, ValueChange{Value: o.Value})...)
	}

	return effects
}

// Update applies new props. A controlled value is pushed into the machine.
func (l *Listbox) Update(ctx context.Context, opts Options) []statemachine.Effect {
	l.opts = opts

	l.switched.Check(ctx, "ListboxInput", "value", opts.isControlled())

	if !opts.isControlled() || *opts.Value == l.Value() {
		return nil
	}

	return l.send(ctx, ValueChange{Value: *opts.Value})
}

// HandleButtonEvent routes events from the listbox button.
func (l *Listbox) HandleButtonEvent(ctx context.Context, ev host.Event) []statemachine.Effect {
	switch ev.Type {
	case host.MouseDown:
		if !ev.IsPrimaryButton() {
			return nil
		}

		return append([]statemachine.Effect{host.PreventDefault{}},
			l.send(ctx, ButtonMouseDown{Disabled: l.opts.Disabled})...)
	case host.MouseUp:
		if !ev.IsPrimaryButton() {
			return nil
		}

		return append([]statemachine.Effect{host.PreventDefault{}}, l.send(ctx, ButtonMouseUp{})...)
	case host.KeyDown:
		return l.handleKeyDown(ctx, ev)
	default:
		return nil
	}
}

// HandleListEvent routes events from the popover list.
func (l *Listbox) HandleListEvent(ctx context.Context, ev host.Event) []statemachine.Effect {
	switch ev.Type {
	case host.MouseUp:
		return l.send(ctx, ListMouseUp{})
	case host.Blur:
		return l.send(ctx, Blur{RelatedTarget: ev.RelatedTarget})
	case host.KeyDown:
		return l.handleKeyDown(ctx, ev)
	default:
		return nil
	}
}

// HandleOptionEvent routes pointer events from the option with the given value.
func (l *Listbox) HandleOptionEvent(ctx context.Context, value string, ev host.Event) []statemachine.Effect {
	data := OptionData{Value: value}

	if i := l.options.IndexOf(value); i >= 0 {
		o, _ := l.options.At(i)
		data.Disabled = o.Disabled
	}

	switch ev.Type {
	case host.MouseMove:
		return l.send(ctx, OptionMouseMove{OptionData: data})
	case host.MouseEnter:
		return l.send(ctx, OptionMouseEnter{OptionData: data})
	case host.MouseDown:
		return l.send(ctx, OptionMouseDown{})
	case host.MouseUp:
		return l.send(ctx, OptionMouseUp{OptionData: data})
	case host.Click:
		return append([]statemachine.Effect{host.PreventDefault{}}, l.send(ctx, OptionClick{OptionData: data})...)
	case host.TouchStart:
		return l.send(ctx, OptionTouchStart{OptionData: data})
	default:
		return nil
	}
}

// HandleOutsideEvent routes pointer events from outside the listbox while expanded.
func (l *Listbox) HandleOutsideEvent(ctx context.Context, ev host.Event) []statemachine.Effect {
	if !l.IsExpanded() {
		return nil
	}

	switch ev.Type {
	case host.MouseDown:
		return l.send(ctx, OutsideMouseDown{RelatedTarget: ev.Target})
	case host.MouseUp:
		return l.send(ctx, OutsideMouseUp{RelatedTarget: ev.Target})
	default:
		return nil
	}
}

func (l *Listbox) handleKeyDown(ctx context.Context, ev host.Event) []statemachine.Effect {
	nav := l.NavigationValue()
	data := OptionData{Value: nav, Disabled: l.opts.Disabled}

	if i := l.options.IndexOf(nav); i >= 0 {
		o, _ := l.options.At(i)
		data.Disabled = data.Disabled || o.Disabled
	}

	switch ev.Key {
	case host.KeyEnter:
		return l.send(ctx, KeyDownEnter{OptionData: data})
	case host.KeySpace:
		return append([]statemachine.Effect{host.PreventDefault{}}, l.send(ctx, KeyDownSpace{OptionData: data})...)
	case host.KeyEscape:
		return l.send(ctx, KeyDownEscape{})
	case host.KeyTab:
		if ev.Shift {
			return l.send(ctx, KeyDownShiftTab{})
		}

		return l.send(ctx, KeyDownTab{})
	}

	if dir, ok := navigation.FromKey(ev.Key, ev.Ctrl, navigation.KeyOptions{Orientation: navigation.Vertical}); ok {
		return append([]statemachine.Effect{host.PreventDefault{}}, l.navigate(ctx, dir)...)
	}

	if !host.IsCharacterKey(ev.Key) {
		return nil
	}

	at := ev.Timestamp
	if at.IsZero() {
		at = l.clock.Now()
	}

	effects := l.send(ctx, KeyDownSearch{Query: ev.Key, Disabled: l.opts.Disabled, At: at})

	if query := l.machine.Context().Typeahead.Query; query != "" {
		effects = append(effects, l.send(ctx, UpdateAfterTypeahead{Query: query})...)
	}

	return effects
}

func (l *Listbox) navigate(ctx context.Context, dir navigation.Direction) []statemachine.Effect {
	items := l.options.Items()

	next, ok := navigation.Next(len(items), l.options.IndexOf(l.NavigationValue()), dir, navigation.Options{
		Wrap:   true,
		Filter: func(i int) bool { return !items[i].Disabled },
	})
	if !ok {
		return nil
	}

	return l.send(ctx, KeyDownNavigate{OptionData: OptionData{Value: items[next].Value, Disabled: l.opts.Disabled}})
}

// OptionID is the DOM id of the option with the given value.
func (l *Listbox) OptionID(value string) string {
	if value == "" {
		return ""
	}

	return host.MakeID("option-"+value, l.id)
}

// ButtonAttributes are the attributes of the listbox button.
func (l *Listbox) ButtonAttributes() map[string]string {
	buttonID := host.MakeID("button", l.id)

	attrs := map[string]string{
		"id":                        buttonID,
		"aria-haspopup":             "listbox",
		"aria-expanded":             strconv.FormatBool(l.IsExpanded()),
		"aria-controls":             host.MakeID("listbox", l.id),
		"aria-labelledby":           buttonID,
		"data-reach-listbox-button": "",
		"data-value":                l.Value(),
		"data-state":                string(l.State()),
	}

	if l.opts.AriaLabelledBy != "" {
		attrs["aria-labelledby"] = l.opts.AriaLabelledBy + " " + buttonID
	}

	if l.opts.AriaLabel != "" {
		attrs["aria-label"] = l.opts.AriaLabel
		delete(attrs, "aria-labelledby")
	}

	if l.opts.Disabled {
		attrs["aria-disabled"] = "true"
	}

	return attrs
}

// ListAttributes are the attributes of the popover list. The active descendant is
// the highlighted option while expanded and the selected option otherwise.
func (l *Listbox) ListAttributes() map[string]string {
	active := l.Value()
	if l.IsExpanded() {
		active = l.NavigationValue()
	}

	attrs := map[string]string{
		"role":                    "listbox",
		"id":                      host.MakeID("listbox", l.id),
		"tabindex":                "-1",
		"data-reach-listbox-list": "",
	}

	if id := l.OptionID(active); id != "" {
		attrs["aria-activedescendant"] = id
	}

	return attrs
}

// OptionAttributes are the attributes of the option with the given value.
func (l *Listbox) OptionAttributes(value string) map[string]string {
	attrs := map[string]string{
		"role":                      "option",
		"id":                        l.OptionID(value),
		"aria-selected":             strconv.FormatBool(value == l.Value()),
		"data-value":                value,
		"data-reach-listbox-option": "",
	}

	if l.IsExpanded() && value == l.NavigationValue() {
		attrs["data-current-nav"] = ""
	}

	if value == l.Value() {
		attrs["data-current-selected"] = ""
	}

	if i := l.options.IndexOf(value); i >= 0 {
		if o, _ := l.options.At(i); o.Disabled {
			attrs["aria-disabled"] = "true"
		}
	}

	return attrs
}

// HiddenInput reports whether a hidden input must be rendered for form submission.
func (l *Listbox) HiddenInput() bool {
	return l.opts.Name != "" || l.opts.Form != "" || l.opts.Required
}

// InputAttributes are the attributes of the hidden form input.
func (l *Listbox) InputAttributes() map[string]string {
	attrs := map[string]string{
		"type":  "hidden",
		"value": l.Value(),
	}

	if l.opts.Name != "" {
		attrs["name"] = l.opts.Name
	}

	if l.opts.Form != "" {
		attrs["form"] = l.opts.Form
	}

	if l.opts.Required {
		attrs["required"] = ""
	}

	if l.opts.Disabled {
		attrs["disabled"] = ""
	}

	return attrs
}
