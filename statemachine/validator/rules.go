package validator

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"unicode"

	"github.com/amp-labs/amp-a11y/statemachine"
)

// Rule inspects a chart and returns what it finds.
type Rule struct {
	Name  string
	Check func(config *statemachine.ChartConfig) []Issue
}

// NameSource lists the guard and action names a chart may reference.
// *statemachine.Registry implements it.
type NameSource interface {
	Names() (guards []string, actions []string)
}

// DefaultRules returns the rules every chart should pass.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "UnreachableState", Check: unreachableStates},
		{Name: "DeadEndState", Check: deadEnds},
		{Name: "ShadowedCandidate", Check: shadowedCandidates},
		{Name: "NamingConvention", Check: naming},
	}
}

// WithRegistry returns the default rules plus a check that every guard and action
// name resolves in names.
func WithRegistry(names NameSource) []Rule {
	return append(DefaultRules(), Rule{
		Name:  "UnknownName",
		Check: func(config *statemachine.ChartConfig) []Issue { return unknownNames(config, names) },
	})
}

// events returns a state's event types in a stable order.
func events(state statemachine.StateConfig) []string {
	return slices.Sorted(maps.Keys(state.On))
}

func unreachableStates(config *statemachine.ChartConfig) []Issue {
	edges := make(map[string][]string, len(config.States))

	for _, state := range config.States {
		for _, event := range events(state) {
			for _, cand := range state.On[event] {
				if cand.Target != "" {
					edges[state.Name] = append(edges[state.Name], cand.Target)
				}
			}
		}
	}

	seen := map[string]bool{config.Initial: true}

	for queue := []string{config.Initial}; len(queue) > 0; queue = queue[1:] {
		for _, next := range edges[queue[0]] {
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}

	var issues []Issue

	for _, state := range config.States {
		if seen[state.Name] {
			continue
		}

		issues = append(issues, Issue{
			Severity: Error,
			Code:     "UNREACHABLE_STATE",
			Message:  fmt.Sprintf("%q cannot be reached from %q", state.Name, config.Initial),
			Location: Location{State: state.Name},
		})
	}

	return issues
}

// deadEnds flags states that handle no events. A widget there can never leave.
func deadEnds(config *statemachine.ChartConfig) []Issue {
	var issues []Issue

	for _, state := range config.States {
		if len(state.On) > 0 {
			continue
		}

		issues = append(issues, Issue{
			Severity: Warning,
			Code:     "DEAD_END_STATE",
			Message:  fmt.Sprintf("%q handles no events", state.Name),
			Location: Location{State: state.Name},
		})
	}

	return issues
}

// shadowedCandidates flags candidates listed after an unguarded one for the same
// event.
func shadowedCandidates(config *statemachine.ChartConfig) []Issue {
	var issues []Issue

	for _, state := range config.States {
		for _, event := range events(state) {
			cands := state.On[event]

			i := slices.IndexFunc(cands, func(c statemachine.CandidateConfig) bool { return c.Guard == "" })
			if i < 0 || i == len(cands)-1 {
				continue
			}

			issues = append(issues, Issue{
				Severity: Warning,
				Code:     "SHADOWED_CANDIDATE",
				Message:  fmt.Sprintf("candidate %d for %s is unguarded; %d later candidate(s) are never taken", i, event, len(cands)-i-1),
				Location: Location{State: state.Name, Event: event},
			})
		}
	}

	return issues
}

// naming wants snake_case states and SCREAMING_SNAKE_CASE events.
func naming(config *statemachine.ChartConfig) []Issue {
	var issues []Issue

	for _, state := range config.States {
		if snake := toSnakeCase(state.Name); snake != state.Name {
			issues = append(issues, Issue{
				Severity: Warning,
				Code:     "NAMING_CONVENTION",
				Message:  fmt.Sprintf("state %q should be snake_case (%q)", state.Name, snake),
				Location: Location{State: state.Name},
			})
		}

		for _, event := range events(state) {
			if !isScreamingSnakeCase(event) {
				issues = append(issues, Issue{
					Severity: Warning,
					Code:     "NAMING_CONVENTION",
					Message:  fmt.Sprintf("event %q should be SCREAMING_SNAKE_CASE (%q)", event, strings.ToUpper(toSnakeCase(event))),
					Location: Location{State: state.Name, Event: event},
				})
			}
		}
	}

	return issues
}

func unknownNames(config *statemachine.ChartConfig, source NameSource) []Issue {
	guardList, actionList := source.Names()

	var issues []Issue

	unknown := func(list []string, code, kind, name string, loc Location) {
		if !slices.Contains(list, name) {
			issues = append(issues, Issue{
				Severity: Error,
				Code:     code,
				Message:  fmt.Sprintf("%s %q is not registered", kind, name),
				Location: loc,
			})
		}
	}

	for _, state := range config.States {
		for _, name := range state.Entry {
			unknown(actionList, "UNKNOWN_ACTION", "entry action", name, Location{State: state.Name})
		}

		for _, event := range events(state) {
			loc := Location{State: state.Name, Event: event}

			for _, cand := range state.On[event] {
				if cand.Guard != "" {
					unknown(guardList, "UNKNOWN_GUARD", "guard", cand.Guard, loc)
				}

				for _, name := range cand.Actions {
					unknown(actionList, "UNKNOWN_ACTION", "action", name, loc)
				}
			}
		}
	}

	return issues
}

func isScreamingSnakeCase(s string) bool {
	return !strings.ContainsFunc(s, func(r rune) bool {
		return unicode.IsLower(r) || r == '-' || r == ' '
	})
}

// toSnakeCase lowercases s, splitting camel humps and replacing dashes and spaces
// with underscores.
func toSnakeCase(s string) string {
	var b strings.Builder

	prev := '_'

	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			if prev != '_' && b.Len() > 0 {
				b.WriteByte('_')
			}

			b.WriteRune(unicode.ToLower(r))
		case r == '-' || r == ' ':
			b.WriteByte('_')

			r = '_'
		default:
			b.WriteRune(r)
		}

		prev = r
	}

	return b.String()
}
