// Package disclosure implements a button that shows and hides a panel.
package disclosure

import (
	"context"
	"embed"
	"fmt"
	"strconv"
	"sync"

	"github.com/amp-labs/amp-a11y/host"
	"github.com/amp-labs/amp-a11y/statemachine"
	"github.com/amp-labs/amp-a11y/warning"
)

//go:embed chart.yaml
var chartFS embed.FS

// State of the panel.
type State string

const (
	Open      State = "open"
	Collapsed State = "collapsed"
)

// Event types.
const (
	EventToggle         statemachine.EventType = "TOGGLE"
	EventSync           statemachine.EventType = "SYNC"
	EventMount          statemachine.EventType = "MOUNT"
	EventGetDerivedData statemachine.EventType = "GET_DERIVED_DATA"
)

// CallbackChange is emitted whenever the button is activated.
const CallbackChange = "onChange"

// Toggle is sent when the button is activated.
type Toggle struct{}

func (Toggle) Type() statemachine.EventType { return EventToggle }

// Sync moves a controlled disclosure to the app's open value.
type Sync struct {
	Open bool
}

func (Sync) Type() statemachine.EventType { return EventSync }

// Mount settles an uncontrolled disclosure on its default after the first render.
type Mount struct {
	DefaultOpen bool
}

func (Mount) Type() statemachine.EventType { return EventMount }

// GetDerivedData updates whether the app controls the open state.
type GetDerivedData struct {
	IsControlled bool
}

func (GetDerivedData) Type() statemachine.EventType { return EventGetDerivedData }

// Context is the extended state of the disclosure machine.
type Context struct {
	IsControlled bool
}

// Registry returns the guards and actions the chart refers to.
func Registry() *statemachine.Registry[Context] {
	return statemachine.NewRegistry[Context]().
		RegisterGuard(statemachine.When("uncontrolled", func(c Context, _ statemachine.Event) bool {
			return !c.IsControlled
		})).
		RegisterGuard(statemachine.When("syncOpen", func(c Context, ev statemachine.Event) bool {
			s, ok := ev.(Sync)

			return ok && c.IsControlled && s.Open
		})).
		RegisterGuard(statemachine.When("syncCollapsed", func(c Context, ev statemachine.Event) bool {
			s, ok := ev.(Sync)

			return ok && c.IsControlled && !s.Open
		})).
		RegisterGuard(statemachine.When("mountOpen", func(c Context, ev statemachine.Event) bool {
			m, ok := ev.(Mount)

			return ok && !c.IsControlled && m.DefaultOpen
		})).
		RegisterGuard(statemachine.When("mountCollapsed", func(c Context, ev statemachine.Event) bool {
			m, ok := ev.(Mount)

			return ok && !c.IsControlled && !m.DefaultOpen
		})).
		RegisterAction(statemachine.Assign("assignDerivedData", func(c Context, ev statemachine.Event) Context {
			if d, ok := ev.(GetDerivedData); ok {
				c.IsControlled = d.IsControlled
			}

			return c
		})).
		RegisterAction(statemachine.Emit("notifyChange", func(Context, statemachine.Event) []statemachine.Effect {
			return []statemachine.Effect{host.Callback{Name: CallbackChange}}
		}))
}

// ChartConfig returns the embedded chart.
func ChartConfig() (*statemachine.ChartConfig, error) {
	return statemachine.LoadChartConfigFromFS(chartFS, "chart.yaml")
}

var definition = sync.OnceValues(func() (*statemachine.Definition[State, Context], error) {
	config, err := ChartConfig()
	if err != nil {
		return nil, err
	}

	def, err := statemachine.BuildDefinition[State](config, Registry(), Context{})
	if err != nil {
		return nil, fmt.Errorf("disclosure chart: %w", err)
	}

	return def, nil
})

// Definition returns the disclosure chart.
func Definition() (*statemachine.Definition[State, Context], error) {
	return definition()
}

// Options are the props of a disclosure. A nil Open makes it uncontrolled.
type Options struct {
	ID          string `json:"id,omitempty"          yaml:"id,omitempty"`
	Open        *bool  `json:"open,omitempty"        yaml:"open,omitempty"`
	DefaultOpen bool   `json:"defaultOpen,omitempty" yaml:"defaultOpen,omitempty"`
}

func (o Options) isControlled() bool {
	return o.Open != nil
}

// Disclosure binds the chart to a button and a panel.
type Disclosure struct {
	machine  *statemachine.Machine[State, Context]
	opts     Options
	id       string
	button   host.Node
	switched *warning.ControlledSwitch
}

// New creates a disclosure. An uncontrolled disclosure starts open so its content
// is reachable before the first render completes; Mount collapses it to DefaultOpen.
func New(opts Options, ids host.IDGenerator, machineOpts ...statemachine.Option) (*Disclosure, error) {
	def, err := Definition()
	if err != nil {
		return nil, err
	}

	initial := Open
	if opts.isControlled() && !*opts.Open {
		initial = Collapsed
	}

	machine, err := statemachine.NewAt(def, initial, Context{IsControlled: opts.isControlled()},
		append([]statemachine.Option{statemachine.WithName("disclosure")}, machineOpts...)...)
	if err != nil {
		return nil, err
	}

	id := opts.ID
	if id == "" && ids != nil {
		id = ids.NewID()
	}

	if id == "" {
		id = "disclosure"
	}

	return &Disclosure{
		machine:  machine,
		opts:     opts,
		id:       id,
		switched: warning.NewControlledSwitch(opts.isControlled()),
	}, nil
}

// Machine exposes the underlying machine.
func (d *Disclosure) Machine() *statemachine.Machine[State, Context] {
	return d.machine
}

// IsOpen reports whether the panel is shown.
func (d *Disclosure) IsOpen() bool {
	return d.machine.State() == Open
}

// ID is the disclosure id.
func (d *Disclosure) ID() string {
	return d.id
}

// PanelID is the id of the panel element.
func (d *Disclosure) PanelID() string {
	return host.MakeID("panel", d.id)
}

// Mount records the button node and applies DefaultOpen.
func (d *Disclosure) Mount(ctx context.Context, button host.Node) {
	d.button = button
	d.machine.Send(ctx, Mount{DefaultOpen: d.opts.DefaultOpen})
}

// Update applies new props.
func (d *Disclosure) Update(ctx context.Context, opts Options) {
	wasControlled := d.opts.isControlled()
	d.opts = opts

	d.switched.Check(ctx, "Disclosure", "open", opts.isControlled())

	if wasControlled != opts.isControlled() {
		d.machine.Send(ctx, GetDerivedData{IsControlled: opts.isControlled()})
	}

	if opts.isControlled() {
		d.machine.Send(ctx, Sync{Open: *opts.Open})
	}
}

// Select activates the button.
func (d *Disclosure) Select(ctx context.Context) []statemachine.Effect {
	snap := d.machine.Send(ctx, Toggle{})

	effects := []statemachine.Effect{host.PreventDefault{}}
	if d.button != "" {
		effects = append(effects, host.Focus{Node: d.button})
	}

	return append(effects, snap.Effects...)
}

// HandleButtonEvent handles a host event on the button. Keyboard activation
// reaches the button as a click.
func (d *Disclosure) HandleButtonEvent(ctx context.Context, ev host.Event) []statemachine.Effect {
	if ev.Type != host.Click {
		return nil
	}

	return d.Select(ctx)
}

// ButtonAttributes are the attributes of the button element.
func (d *Disclosure) ButtonAttributes() map[string]string {
	return map[string]string{
		"aria-controls":                d.PanelID(),
		"aria-expanded":                strconv.FormatBool(d.IsOpen()),
		"data-reach-disclosure-button": "",
		"data-state":                   string(d.machine.State()),
	}
}

// PanelAttributes are the attributes of the panel element.
func (d *Disclosure) PanelAttributes() map[string]string {
	attrs := map[string]string{
		"id":                          d.PanelID(),
		"data-reach-disclosure-panel": "",
		"data-state":                  string(d.machine.State()),
	}

	if !d.IsOpen() {
		attrs["hidden"] = ""
	}

	return attrs
}
