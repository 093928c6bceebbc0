package smtest

import (
	"testing"

	"github.com/amp-labs/amp-a11y/statemachine"
	"github.com/stretchr/testify/assert"
)

// Step is one event in a scenario together with what should follow from it.
type Step[S ~string, C any] struct {
	Event statemachine.Event
	// Want is the expected state after the event.
	Want S
	// WantEffects lists the effect kinds expected from this event, in order. Nil skips the check.
	WantEffects []string
	// Check runs extra assertions against the snapshot.
	Check func(t *testing.T, snap statemachine.Snapshot[S, C])
}

// Scenario drives a definition through a fixed sequence of events.
type Scenario[S ~string, C any] struct {
	Name       string
	Definition *statemachine.Definition[S, C]
	// Start overrides the initial state when set.
	Start S
	// Context overrides the definition's initial context when non-nil.
	Context  *C
	Steps    []Step[S, C]
	Matchers []Matcher[S, C]
}

// RunScenario executes the scenario as a subtest.
func RunScenario[S ~string, C any](t *testing.T, scenario Scenario[S, C]) {
	t.Helper()

	t.Run(scenario.Name, func(t *testing.T) {
		t.Parallel()

		start := scenario.Definition.Initial
		if scenario.Start != "" {
			start = scenario.Start
		}

		c := scenario.Definition.Context
		if scenario.Context != nil {
			c = *scenario.Context
		}

		rec := NewRecorderAt(t, scenario.Definition, start, c)

		for i, step := range scenario.Steps {
			snap := rec.Send(step.Event)

			assert.Equal(t, step.Want, snap.State, "step %d (%s)", i, rec.trace[i].Event)

			if step.WantEffects != nil {
				assert.Equal(t, step.WantEffects, EffectKinds(snap.Effects), "step %d effects", i)
			}

			if step.Check != nil {
				step.Check(t, snap)
			}
		}

		for _, matcher := range scenario.Matchers {
			ok, err := matcher.Match(rec)
			if !ok {
				t.Errorf("matcher failed: %s - %v", matcher.Description(), err)
			}
		}
	})
}

// EffectKinds maps effects to their kinds.
func EffectKinds(effects []statemachine.Effect) []string {
	kinds := make([]string, 0, len(effects))
	for _, eff := range effects {
		kinds = append(kinds, eff.Kind())
	}

	return kinds
}
