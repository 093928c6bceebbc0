package statemachine

// Builder provides a fluent API for constructing definitions in Go code.
//
//	def, err := statemachine.NewBuilder[State, Ctx]("disclosure", Collapsed, Ctx{}).
//		State(Collapsed).On(EventToggle, statemachine.Candidate[State, Ctx]{Target: Open}).
//		State(Open).On(EventToggle, statemachine.Candidate[State, Ctx]{Target: Collapsed}).
//		Build()
type Builder[S ~string, C any] struct {
	def     *Definition[S, C]
	current S
}

// NewBuilder creates a new definition builder.
func NewBuilder[S ~string, C any](id string, initial S, ctx C) *Builder[S, C] {
	return &Builder[S, C]{
		def: &Definition[S, C]{
			ID:      id,
			Initial: initial,
			Context: ctx,
			States:  make(map[S]StateNode[S, C]),
		},
	}
}

// State declares a state (if needed) and makes it the target of subsequent Entry and
// On calls.
func (b *Builder[S, C]) State(state S) *Builder[S, C] {
	if _, ok := b.def.States[state]; !ok {
		b.def.States[state] = StateNode[S, C]{On: make(map[EventType][]Candidate[S, C])}
	}

	b.current = state

	return b
}

// Entry appends entry actions to the current state.
func (b *Builder[S, C]) Entry(actions ...Action[C]) *Builder[S, C] {
	node := b.def.States[b.current]
	node.Entry = append(node.Entry, actions...)
	b.def.States[b.current] = node

	return b
}

// On appends candidates for an event to the current state.
func (b *Builder[S, C]) On(event EventType, candidates ...Candidate[S, C]) *Builder[S, C] {
	node := b.def.States[b.current]
	node.On[event] = append(node.On[event], candidates...)
	b.def.States[b.current] = node

	return b
}

// OnAll appends the same candidates for an event to every listed state.
func (b *Builder[S, C]) OnAll(states []S, event EventType, candidates ...Candidate[S, C]) *Builder[S, C] {
	current := b.current

	for _, state := range states {
		b.State(state).On(event, candidates...)
	}

	b.current = current

	return b
}

// Build validates and returns the definition.
func (b *Builder[S, C]) Build() (*Definition[S, C], error) {
	err := b.def.Validate()
	if err != nil {
		return nil, err
	}

	return b.def, nil
}

// MustBuild is Build for package-level chart tables; it panics on an invalid definition.
func (b *Builder[S, C]) MustBuild() *Definition[S, C] {
	def, err := b.Build()
	if err != nil {
		panic(err)
	}

	return def
}
