package statemachine

import (
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigLoader is an interface for loading chart configurations by name.
// Applications can implement this to provide embedded or custom config loading.
type ConfigLoader interface {
	LoadByName(name string) ([]byte, error)
	ListAvailable() []string
}

// FSConfigLoader loads "<name>.yaml" files from a filesystem, typically an embed.FS.
type FSConfigLoader struct {
	FS  fs.FS
	Dir string
}

// LoadByName implements ConfigLoader.
func (l FSConfigLoader) LoadByName(name string) ([]byte, error) {
	return fs.ReadFile(l.FS, l.path(name+".yaml"))
}

// ListAvailable implements ConfigLoader.
func (l FSConfigLoader) ListAvailable() []string {
	entries, err := fs.ReadDir(l.FS, l.path("."))
	if err != nil {
		return nil
	}

	var names []string

	for _, entry := range entries {
		if name, ok := strings.CutSuffix(entry.Name(), ".yaml"); ok && !entry.IsDir() {
			names = append(names, name)
		}
	}

	return names
}

func (l FSConfigLoader) path(name string) string {
	if l.Dir == "" || l.Dir == "." {
		return name
	}

	if name == "." {
		return l.Dir
	}

	return l.Dir + "/" + name
}

// ChartConfig is the declarative form of a chart: state names, entry action names and,
// per event, an ordered list of candidates naming a target, a guard and actions.
type ChartConfig struct {
	Name    string        `json:"name"    yaml:"name"`
	Initial string        `json:"initial" yaml:"initial"`
	States  []StateConfig `json:"states"  yaml:"states"`
}

// StateConfig defines the configuration for a state.
type StateConfig struct {
	Name  string                       `json:"name"  yaml:"name"`
	Entry []string                     `json:"entry" yaml:"entry"`
	On    map[string][]CandidateConfig `json:"on"    yaml:"on"`
}

// CandidateConfig defines one transition candidate.
type CandidateConfig struct {
	Target  string   `json:"target"  yaml:"target"`
	Guard   string   `json:"guard"   yaml:"guard"`
	Actions []string `json:"actions" yaml:"actions"`
}

// LoadChartConfig loads a chart configuration by path or name.
// Supports two modes:
//   - Path mode: a value containing '/', '\', or ending in '.yaml' is read from the filesystem
//     Example: LoadChartConfig("charts/checkbox.yaml")
//   - Name mode: a bare name is resolved through the given ConfigLoader
//     Example: LoadChartConfig("checkbox", loader)
func LoadChartConfig(pathOrName string, loader ConfigLoader) (*ChartConfig, error) {
	isPath := strings.Contains(pathOrName, "/") ||
		strings.Contains(pathOrName, `\`) ||
		strings.HasSuffix(strings.ToLower(pathOrName), ".yaml")

	if isPath {
		data, err := os.ReadFile(pathOrName) //nolint:gosec // Intentional path-based loading
		if err != nil {
			return nil, fmt.Errorf("failed to read chart file %q: %w", pathOrName, err)
		}

		return LoadChartConfigFromBytes(data)
	}

	if loader == nil {
		return nil, ErrNoConfigLoader
	}

	data, err := loader.LoadByName(pathOrName)
	if err != nil {
		return nil, fmt.Errorf("failed to load chart %q (available: %v): %w", pathOrName, loader.ListAvailable(), err)
	}

	return LoadChartConfigFromBytes(data)
}

// LoadChartConfigFromBytes loads a chart configuration from YAML bytes.
func LoadChartConfigFromBytes(data []byte) (*ChartConfig, error) {
	var config ChartConfig

	err := yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	err = config.Validate()
	if err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadChartConfigFromFS loads a configuration from an embedded filesystem.
func LoadChartConfigFromFS(fsys fs.FS, path string) (*ChartConfig, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read chart from FS: %w", err)
	}

	return LoadChartConfigFromBytes(data)
}

// Validate checks the structural shape of the configuration. Guard and action names
// are checked later, against a Registry, by BuildDefinition.
func (c *ChartConfig) Validate() error {
	if c.Name == "" {
		return ErrChartNameRequired
	}

	if c.Initial == "" {
		return ErrInitialStateRequired
	}

	if len(c.States) == 0 {
		return ErrStateRequired
	}

	if !c.stateExists(c.Initial) {
		return fmt.Errorf("%w: %s", ErrInitialStateNotFound, c.Initial)
	}

	stateNames := make(map[string]bool)

	for _, state := range c.States {
		if state.Name == "" {
			return ErrStateNameRequired
		}

		if stateNames[state.Name] {
			return fmt.Errorf("%w: %s", ErrDuplicateStateName, state.Name)
		}

		stateNames[state.Name] = true

		for event, candidates := range state.On {
			if event == "" {
				return fmt.Errorf("state %s: %w", state.Name, ErrEventTypeRequired)
			}

			for i, cand := range candidates {
				if cand.Target != "" && !c.stateExists(cand.Target) {
					return fmt.Errorf("state %s, event %s, candidate %d: %w: %s",
						state.Name, event, i, ErrTargetNotFound, cand.Target)
				}
			}
		}
	}

	return nil
}

// stateExists checks if a state with the given name exists.
func (c *ChartConfig) stateExists(name string) bool {
	for _, state := range c.States {
		if state.Name == name {
			return true
		}
	}

	return false
}

// BuildDefinition turns a chart configuration into a Definition, resolving guard and
// action names through the registry.
func BuildDefinition[S ~string, C any](config *ChartConfig, registry *Registry[C], initial C) (*Definition[S, C], error) {
	err := config.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid chart config: %w", err)
	}

	def := &Definition[S, C]{
		ID:      config.Name,
		Initial: S(config.Initial),
		Context: initial,
		States:  make(map[S]StateNode[S, C], len(config.States)),
	}

	for _, stateConfig := range config.States {
		node, err := buildStateNode[S](stateConfig, registry)
		if err != nil {
			return nil, fmt.Errorf("failed to build state %s: %w", stateConfig.Name, err)
		}

		def.States[S(stateConfig.Name)] = node
	}

	err = def.Validate()
	if err != nil {
		return nil, err
	}

	return def, nil
}

func buildStateNode[S ~string, C any](config StateConfig, registry *Registry[C]) (StateNode[S, C], error) {
	entry, err := registry.Actions(config.Entry...)
	if err != nil {
		return StateNode[S, C]{}, fmt.Errorf("entry: %w", err)
	}

	node := StateNode[S, C]{
		On:    make(map[EventType][]Candidate[S, C], len(config.On)),
		Entry: entry,
	}

	for event, candidateConfigs := range config.On {
		candidates := make([]Candidate[S, C], 0, len(candidateConfigs))

		for i, cc := range candidateConfigs {
			cand := Candidate[S, C]{Target: S(cc.Target)}

			if cc.Guard != "" {
				cand.Guard, err = registry.Guard(cc.Guard)
				if err != nil {
					return StateNode[S, C]{}, fmt.Errorf("event %s, candidate %d: %w", event, i, err)
				}
			}

			cand.Actions, err = registry.Actions(cc.Actions...)
			if err != nil {
				return StateNode[S, C]{}, fmt.Errorf("event %s, candidate %d: %w", event, i, err)
			}

			candidates = append(candidates, cand)
		}

		node.On[EventType(event)] = candidates
	}

	return node, nil
}
