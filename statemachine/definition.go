package statemachine

import (
	"errors"
	"fmt"
)

// Validate checks that the definition is internally consistent. All problems are
// reported together.
func (d *Definition[S, C]) Validate() error {
	if d.ID == "" {
		return ErrDefinitionIDRequired
	}

	if d.Initial == "" {
		return ErrInitialStateRequired
	}

	if len(d.States) == 0 {
		return ErrStateRequired
	}

	if !d.HasState(d.Initial) {
		return fmt.Errorf("%w: %s", ErrInitialStateNotFound, d.Initial)
	}

	var errs []error

	for name, node := range d.States {
		for i, action := range node.Entry {
			if action.Do == nil {
				errs = append(errs, stateError(string(name),
					fmt.Errorf("entry action %d (%s): %w", i, action.Name, ErrNilAction)))
			}
		}

		for eventType, candidates := range node.On {
			if eventType == "" {
				errs = append(errs, stateError(string(name), ErrEventTypeRequired))

				continue
			}

			for _, cand := range candidates {
				if cand.Target != "" && !d.HasState(cand.Target) {
					errs = append(errs, candidateError(string(name), eventType, string(cand.Target),
						ErrTargetNotFound))
				}

				if cand.Guard != nil && cand.Guard.Check == nil {
					errs = append(errs, candidateError(string(name), eventType, string(cand.Target),
						fmt.Errorf("%w: %s", ErrNilGuard, cand.Guard.Name)))
				}

				for _, action := range cand.Actions {
					if action.Do == nil {
						errs = append(errs, candidateError(string(name), eventType, string(cand.Target),
							fmt.Errorf("%w: %s", ErrNilAction, action.Name)))
					}
				}
			}
		}
	}

	return errors.Join(errs...)
}

// HasState reports whether the state is defined.
func (d *Definition[S, C]) HasState(state S) bool {
	_, ok := d.States[state]

	return ok
}

// Handles reports whether the state declares any candidate for the event type.
func (d *Definition[S, C]) Handles(state S, eventType EventType) bool {
	node, ok := d.States[state]
	if !ok {
		return false
	}

	_, ok = node.On[eventType]

	return ok
}

// StateNames returns every state name in the definition, unordered.
func (d *Definition[S, C]) StateNames() []string {
	names := make([]string, 0, len(d.States))
	for name := range d.States {
		names = append(names, string(name))
	}

	return names
}
