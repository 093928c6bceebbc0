// Package visualizer renders chart configurations as Mermaid or Graphviz diagrams.
//
//nolint:varnamelen // short names idiomatic
package visualizer

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"facette.io/natsort"
	"github.com/amp-labs/amp-a11y/statemachine"
)

// Visualizer errors.
var (
	ErrConfigNil      = errors.New("config cannot be nil")
	ErrNoInitialState = errors.New("config must have an initial state")
)

// edge is one rendered transition.
type edge struct {
	from, to string
	label    string
}

// GenerateMermaid converts a ChartConfig to a Mermaid state diagram.
func GenerateMermaid(config *statemachine.ChartConfig) (string, error) {
	return GenerateMermaidWithOptions(config, DefaultOptions())
}

// GenerateMermaidFromFile loads a chart from a file and generates a Mermaid diagram.
func GenerateMermaidFromFile(path string) (string, error) {
	config, err := statemachine.LoadChartConfig(path, nil)
	if err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}

	return GenerateMermaid(config)
}

// GenerateMermaidWithOptions generates a Mermaid diagram with custom options.
func GenerateMermaidWithOptions(config *statemachine.ChartConfig, opts Options) (string, error) {
	err := check(config)
	if err != nil {
		return "", err
	}

	var sb strings.Builder

	sb.WriteString("```mermaid\n")
	sb.WriteString("stateDiagram-v2\n")
	fmt.Fprintf(&sb, "    direction %s\n", opts.Direction)
	fmt.Fprintf(&sb, "    [*] --> %s\n", config.Initial)

	current := toSet(opts.Current)

	for _, state := range sortedStates(config) {
		if opts.ShowActions && len(state.Entry) > 0 {
			fmt.Fprintf(&sb, "    %s: %s\\nentry [%s]\n", state.Name, state.Name, strings.Join(state.Entry, ", "))
		}

		switch {
		case current[state.Name]:
			fmt.Fprintf(&sb, "    class %s current\n", state.Name)
		case len(state.On) == 0:
			fmt.Fprintf(&sb, "    class %s terminal\n", state.Name)
		}
	}

	for _, e := range edges(config, opts) {
		if e.label == "" {
			fmt.Fprintf(&sb, "    %s --> %s\n", e.from, e.to)
		} else {
			fmt.Fprintf(&sb, "    %s --> %s: %s\n", e.from, e.to, e.label)
		}
	}

	sb.WriteString("\n")
	sb.WriteString("    classDef terminal fill:#c8e6c9,stroke:#2e7d32,stroke-width:2px\n")
	sb.WriteString("    classDef current fill:#fff9c4,stroke:#f57f17,stroke-width:3px\n")
	sb.WriteString("```\n")

	return sb.String(), nil
}

// GenerateDOT converts a ChartConfig to a Graphviz digraph.
func GenerateDOT(config *statemachine.ChartConfig, opts Options) (string, error) {
	err := check(config)
	if err != nil {
		return "", err
	}

	rankdir := TopDown
	if opts.Direction == LeftRight {
		rankdir = LeftRight
	}

	current := toSet(opts.Current)

	var sb strings.Builder

	fmt.Fprintf(&sb, "digraph %q {\n", config.Name)
	fmt.Fprintf(&sb, "  rankdir=%s;\n", rankdir)
	sb.WriteString("  __start [shape=point];\n")

	for _, state := range sortedStates(config) {
		attrs := []string{fmt.Sprintf("label=%q", nodeLabel(state, opts))}

		if current[state.Name] {
			attrs = append(attrs, "style=filled", `fillcolor="#fff9c4"`)
		}

		if len(state.On) == 0 {
			attrs = append(attrs, "shape=doublecircle")
		}

		fmt.Fprintf(&sb, "  %q [%s];\n", state.Name, strings.Join(attrs, ", "))
	}

	fmt.Fprintf(&sb, "  __start -> %q;\n", config.Initial)

	for _, e := range edges(config, opts) {
		fmt.Fprintf(&sb, "  %q -> %q [label=%q];\n", e.from, e.to, e.label)
	}

	sb.WriteString("}\n")

	return sb.String(), nil
}

func check(config *statemachine.ChartConfig) error {
	if config == nil {
		return ErrConfigNil
	}

	if config.Initial == "" {
		return ErrNoInitialState
	}

	return nil
}

func nodeLabel(state statemachine.StateConfig, opts Options) string {
	if !opts.ShowActions || len(state.Entry) == 0 {
		return state.Name
	}

	return state.Name + "\nentry: " + strings.Join(state.Entry, ", ")
}

// sortedStates orders states by natural name order so "step2" sorts before "step10".
func sortedStates(config *statemachine.ChartConfig) []statemachine.StateConfig {
	states := slices.Clone(config.States)
	slices.SortStableFunc(states, func(a, b statemachine.StateConfig) int {
		return naturalCompare(a.Name, b.Name)
	})

	return states
}

// edges flattens candidates into drawable edges. A candidate without a target stays
// in its state, so it is drawn as a self loop.
func edges(config *statemachine.ChartConfig, opts Options) []edge {
	var out []edge

	for _, state := range sortedStates(config) {
		events := slices.Collect(maps.Keys(state.On))
		natsort.Sort(events)

		for _, event := range events {
			for _, cand := range state.On[event] {
				target := cand.Target
				if target == "" {
					target = state.Name
				}

				out = append(out, edge{from: state.Name, to: target, label: edgeLabel(event, cand, opts)})
			}
		}
	}

	return out
}

func edgeLabel(event string, cand statemachine.CandidateConfig, opts Options) string {
	label := event

	if opts.ShowGuards && cand.Guard != "" {
		label += " [" + cand.Guard + "]"
	}

	if opts.ShowActions && len(cand.Actions) > 0 {
		label += " / " + strings.Join(cand.Actions, ", ")
	}

	return label
}

func naturalCompare(a, b string) int {
	switch {
	case a == b:
		return 0
	case natsort.Compare(a, b):
		return -1
	default:
		return 1
	}
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}

	return set
}
