package visualizer

// Direction is the flow of a rendered diagram.
type Direction string

const (
	TopDown   Direction = "TB"
	LeftRight Direction = "LR"
)

// Options configures rendering.
type Options struct {
	// ShowActions adds entry and transition action names.
	ShowActions bool
	// ShowGuards adds guard names to transition labels.
	ShowGuards bool
	Direction  Direction
	// Current marks states, typically the one a live widget is in.
	Current []string
}

// DefaultOptions shows every label, top to bottom.
func DefaultOptions() Options {
	return Options{
		ShowActions: true,
		ShowGuards:  true,
		Direction:   TopDown,
	}
}

// Labels switches action and guard labels on or off together.
func (o Options) Labels(show bool) Options {
	o.ShowActions = show
	o.ShowGuards = show

	return o
}

func (o Options) Flow(direction Direction) Options {
	o.Direction = direction

	return o
}

func (o Options) Marking(states ...string) Options {
	o.Current = states

	return o
}
