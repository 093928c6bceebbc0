package statemachine

// EventType names an event for transition lookup.
type EventType string

// Event is anything that can be sent to a machine. Widgets declare one struct per
// event type and switch on the concrete type inside their guards and actions.
type Event interface {
	Type() EventType
}

// Effect is a side effect requested by an action. The runtime never performs
// effects itself; they are returned to the caller in the Snapshot.
type Effect interface {
	Kind() string
}

// Guard gates a transition candidate.
type Guard[C any] struct {
	Name  string
	Check func(c C, ev Event) bool
}

// Action is a pure function of (context, event) that returns the next context and
// any effects to perform.
type Action[C any] struct {
	Name string
	Do   func(c C, ev Event) (C, []Effect)
}

// Assign returns an action that only updates context.
func Assign[C any](name string, fn func(c C, ev Event) C) Action[C] {
	return Action[C]{
		Name: name,
		Do: func(c C, ev Event) (C, []Effect) {
			return fn(c, ev), nil
		},
	}
}

// Emit returns an action that only produces effects.
func Emit[C any](name string, fn func(c C, ev Event) []Effect) Action[C] {
	return Action[C]{
		Name: name,
		Do: func(c C, ev Event) (C, []Effect) {
			return c, fn(c, ev)
		},
	}
}

// Reduce returns an action that updates context and produces effects.
func Reduce[C any](name string, fn func(c C, ev Event) (C, []Effect)) Action[C] {
	return Action[C]{Name: name, Do: fn}
}

// When builds a guard.
func When[C any](name string, check func(c C, ev Event) bool) *Guard[C] {
	return &Guard[C]{Name: name, Check: check}
}

// Candidate is one possible outcome of an event in a state. A zero Target means the
// event is handled without changing state.
type Candidate[S ~string, C any] struct {
	Target  S
	Guard   *Guard[C]
	Actions []Action[C]
}

// StateNode lists the events a state handles and the actions run on entry.
type StateNode[S ~string, C any] struct {
	On    map[EventType][]Candidate[S, C]
	Entry []Action[C]
}

// Definition is an immutable chart blueprint.
type Definition[S ~string, C any] struct {
	ID      string
	Initial S
	Context C
	States  map[S]StateNode[S, C]
}

// Snapshot is the result of sending an event.
type Snapshot[S ~string, C any] struct {
	State   S
	Context C
	Event   Event
	// Changed is false when no candidate was taken.
	Changed bool
	// Transitioned is true when the state itself changed.
	Transitioned bool
	Effects      []Effect
	// Actions lists the names of the actions that ran, in order.
	Actions []string
}

// Matches reports whether the snapshot is in any of the given states.
func (s Snapshot[S, C]) Matches(states ...S) bool {
	for _, st := range states {
		if s.State == st {
			return true
		}
	}

	return false
}
