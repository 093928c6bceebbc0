// Package warning emits development-time warnings about widget misuse. Builds tagged
// a11y_production compile them out.
package warning

import (
	"context"
	"fmt"
	"sync"
)

// ControlledSwitch detects a component switching between controlled and uncontrolled
// mode after its first render. The component keeps working in whichever mode it is
// currently driven in; the switch is only reported.
type ControlledSwitch struct {
	mu      sync.Mutex
	set     bool
	initial bool
	warned  bool
}

// NewControlledSwitch records the mode a component was created in.
func NewControlledSwitch(isControlled bool) *ControlledSwitch {
	return &ControlledSwitch{set: true, initial: isControlled}
}

// Check compares isControlled against the recorded mode and warns once per switch.
// It returns true when the mode differs from the initial one.
func (s *ControlledSwitch) Check(ctx context.Context, component, prop string, isControlled bool) bool {
	s.mu.Lock()

	if !s.set {
		s.set, s.initial = true, isControlled
	}

	switched := s.initial != isControlled
	report := switched && !s.warned

	if report {
		s.warned = true
	}

	initial := s.initial
	s.mu.Unlock()

	if report {
		Warn(ctx, false, "%s", switchMessage(component, prop, initial))
	}

	return switched
}

func switchMessage(component, prop string, wasControlled bool) string {
	from, to := "uncontrolled", "controlled"
	if wasControlled {
		from, to = "controlled", "uncontrolled"
	}

	return fmt.Sprintf("%[1]s is changing from %[2]s to %[3]s. %[1]s should not switch from %[2]s to %[3]s"+
		" (or vice versa). Decide between using a controlled or uncontrolled %[1]s for the lifetime"+
		" of the component. Check the `%[4]s` prop being passed in.", component, from, to, prop)
}
