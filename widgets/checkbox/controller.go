package checkbox

import (
	"context"

	"github.com/amp-labs/amp-a11y/host"
	"github.com/amp-labs/amp-a11y/statemachine"
	"github.com/amp-labs/amp-a11y/warning"
)

// CallbackChange is the name of the callback emitted when the user changes the checkbox.
const CallbackChange = "onChange"

// Options are the props of a checkbox. A nil Checked makes the checkbox uncontrolled.
type Options struct {
	Checked        any    `json:"checked,omitempty"        yaml:"checked,omitempty"`
	DefaultChecked any    `json:"defaultChecked,omitempty" yaml:"defaultChecked,omitempty"`
	Disabled       bool   `json:"disabled,omitempty"       yaml:"disabled,omitempty"`
	Name           string `json:"name,omitempty"           yaml:"name,omitempty"`
}

func (o Options) isControlled() bool {
	return o.Checked != nil
}

func (o Options) componentName() string {
	if o.Name == "" {
		return "useMixedCheckbox"
	}

	return o.Name
}

// Controller binds a checkbox machine to host events and prop updates.
type Controller struct {
	machine  *statemachine.Machine[State, Context]
	opts     Options
	refs     Refs
	switched *warning.ControlledSwitch
}

// NewController creates a checkbox starting in the state given by Checked, or by
// DefaultChecked when uncontrolled.
func NewController(opts Options, machineOpts ...statemachine.Option) (*Controller, error) {
	def, err := Definition()
	if err != nil {
		return nil, err
	}

	initial := opts.DefaultChecked
	if opts.isControlled() {
		initial = opts.Checked
	}

	machine, err := statemachine.NewAt(def, FromValue(initial), Context{
		Disabled:     opts.Disabled,
		IsControlled: opts.isControlled(),
	}, append([]statemachine.Option{statemachine.WithName("checkbox")}, machineOpts...)...)
	if err != nil {
		return nil, err
	}

	return &Controller{
		machine:  machine,
		opts:     opts,
		switched: warning.NewControlledSwitch(opts.isControlled()),
	}, nil
}

// Machine exposes the underlying machine.
func (c *Controller) Machine() *statemachine.Machine[State, Context] {
	return c.machine
}

// State is the current checked state.
func (c *Controller) State() State {
	return c.machine.State()
}

func (c *Controller) send(ctx context.Context, ev statemachine.Event) statemachine.Snapshot[State, Context] {
	return c.machine.Send(ctx, ev)
}

// Mount records the input node. Mounting without one logs a warning.
func (c *Controller) Mount(ctx context.Context, input host.Node) {
	warning.Warn(ctx, input != "", "A ref was not assigned to an input element in %s.", c.opts.componentName())

	c.refs = Refs{Input: input}
	c.send(ctx, Mount{Refs: c.refs})
	c.send(ctx, GetDerivedData{Refs: c.refs, Disabled: c.opts.Disabled, IsControlled: c.opts.isControlled()})
}

// Unmount notifies the machine that the input is gone.
func (c *Controller) Unmount(ctx context.Context) {
	c.send(ctx, Unmount{Refs: c.refs})
	c.refs = Refs{}
}

// Update applies new props. A controlled value change moves the machine with Set.
func (c *Controller) Update(ctx context.Context, opts Options) {
	prev := c.opts
	c.opts = opts

	c.switched.Check(ctx, opts.componentName(), "checked", opts.isControlled())

	if prev.Disabled != opts.Disabled || prev.isControlled() != opts.isControlled() {
		c.send(ctx, GetDerivedData{Refs: c.refs, Disabled: opts.Disabled, IsControlled: opts.isControlled()})
	}

	if opts.isControlled() {
		c.send(ctx, Set{Refs: c.refs, State: FromValue(opts.Checked)})
	}
}

// Change handles a user change of the input. An uncontrolled checkbox toggles; a
// controlled one only reports the requested value through the callback.
func (c *Controller) Change(ctx context.Context) []statemachine.Effect {
	if c.opts.Disabled {
		return nil
	}

	requested := c.State().toggled()

	if !c.opts.isControlled() {
		c.send(ctx, Toggle{Refs: c.refs})
	}

	return []statemachine.Effect{host.Callback{Name: CallbackChange, Value: requested.Value()}}
}

// HandleEvent routes host events to the controller. The host reports native
// activation (click or Space) as a single change event.
func (c *Controller) HandleEvent(ctx context.Context, ev host.Event) []statemachine.Effect {
	if ev.Type != host.Change {
		return nil
	}

	return c.Change(ctx)
}

// Indeterminate is the native indeterminate property the host should keep in sync.
func (c *Controller) Indeterminate() bool {
	return c.State() == Mixed
}

// Attributes are the input's attributes for the current state.
func (c *Controller) Attributes() map[string]string {
	state := c.State()

	attrs := map[string]string{
		"type":         "checkbox",
		"aria-checked": state.AriaChecked(),
		"data-state":   string(state),
	}

	if state.Checked() {
		attrs["checked"] = ""
	}

	if c.opts.Disabled {
		attrs["disabled"] = ""
	}

	return attrs
}
