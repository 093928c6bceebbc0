package statemachine

import (
	"fmt"
	"sort"
)

// Registry binds guard and action names used in chart configs to implementations.
// Applications register their own guards and actions and then build definitions
// from YAML with BuildDefinition.
type Registry[C any] struct {
	guards  map[string]*Guard[C]
	actions map[string]Action[C]
}

// NewRegistry creates an empty registry.
func NewRegistry[C any]() *Registry[C] {
	return &Registry[C]{
		guards:  make(map[string]*Guard[C]),
		actions: make(map[string]Action[C]),
	}
}

// RegisterGuard registers a guard under its name, replacing any previous one.
func (r *Registry[C]) RegisterGuard(guard *Guard[C]) *Registry[C] {
	r.guards[guard.Name] = guard

	return r
}

// RegisterAction registers an action under its name, replacing any previous one.
func (r *Registry[C]) RegisterAction(action Action[C]) *Registry[C] {
	r.actions[action.Name] = action

	return r
}

// Guard looks up a guard by name.
func (r *Registry[C]) Guard(name string) (*Guard[C], error) {
	guard, ok := r.guards[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGuard, name)
	}

	return guard, nil
}

// Action looks up an action by name.
func (r *Registry[C]) Action(name string) (Action[C], error) {
	action, ok := r.actions[name]
	if !ok {
		return Action[C]{}, fmt.Errorf("%w: %s", ErrUnknownAction, name)
	}

	return action, nil
}

// Actions looks up several actions, preserving order.
func (r *Registry[C]) Actions(names ...string) ([]Action[C], error) {
	actions := make([]Action[C], 0, len(names))

	for _, name := range names {
		action, err := r.Action(name)
		if err != nil {
			return nil, err
		}

		actions = append(actions, action)
	}

	return actions, nil
}

// Names returns the registered guard and action names, sorted.
func (r *Registry[C]) Names() (guards []string, actions []string) {
	for name := range r.guards {
		guards = append(guards, name)
	}

	for name := range r.actions {
		actions = append(actions, name)
	}

	sort.Strings(guards)
	sort.Strings(actions)

	return guards, actions
}
