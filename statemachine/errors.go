package statemachine

import (
	"errors"
	"fmt"
	"strings"
)

// Definition problems reported by Validate and NewAt.
var (
	ErrDefinitionIDRequired = errors.New("definition id is required")
	ErrInitialStateRequired = errors.New("initial state is required")
	ErrStateRequired        = errors.New("at least one state is required")
	ErrInitialStateNotFound = errors.New("initial state does not exist")
	ErrStateNotFound        = errors.New("state not found")
	ErrTargetNotFound       = errors.New("transition target does not exist")
	ErrEventTypeRequired    = errors.New("event type is required")
	ErrNilGuard             = errors.New("guard has no check function")
	ErrNilAction            = errors.New("action has no function")
)

// Chart config problems reported while building a definition from a ChartConfig.
var (
	ErrChartNameRequired  = errors.New("chart name is required")
	ErrStateNameRequired  = errors.New("state name is required")
	ErrDuplicateStateName = errors.New("duplicate state name")
	ErrUnknownGuard       = errors.New("unknown guard")
	ErrUnknownAction      = errors.New("unknown action")
	ErrNoConfigLoader     = errors.New("no config loader registered; use SetConfigLoader() or provide a file path")
)

// ErrSendPanicked is recorded on the send span when a guard, action or subscriber
// panics. The panic itself still reaches the caller.
var ErrSendPanicked = errors.New("send panicked")

// DefinitionError locates a problem inside a definition. Event and Target are
// empty when the problem belongs to the state itself.
type DefinitionError struct {
	State  string
	Event  EventType
	Target string
	Err    error
}

func (e *DefinitionError) Error() string {
	var b strings.Builder

	b.WriteString("state ")
	b.WriteString(e.State)

	if e.Event != "" {
		fmt.Fprintf(&b, " on %s", e.Event)
	}

	if e.Target != "" {
		fmt.Fprintf(&b, " -> %s", e.Target)
	}

	b.WriteString(": ")
	b.WriteString(e.Err.Error())

	return b.String()
}

func (e *DefinitionError) Unwrap() error { return e.Err }

func stateError(state string, err error) error {
	return &DefinitionError{State: state, Err: err}
}

func candidateError(state string, event EventType, target string, err error) error {
	return &DefinitionError{State: state, Event: event, Target: target, Err: err}
}
