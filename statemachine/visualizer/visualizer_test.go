package visualizer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/amp-labs/amp-a11y/statemachine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkboxChart() *statemachine.ChartConfig {
	return &statemachine.ChartConfig{
		Name:    "checkbox",
		Initial: "unchecked",
		States: []statemachine.StateConfig{
			{
				Name: "unchecked",
				On: map[string][]statemachine.CandidateConfig{
					"TOGGLE": {{Target: "checked", Guard: "enabled", Actions: []string{"notifyChange"}}},
				},
			},
			{
				Name:  "checked",
				Entry: []string{"syncInput"},
				On: map[string][]statemachine.CandidateConfig{
					"TOGGLE": {{Target: "unchecked", Actions: []string{"notifyChange"}}},
					"RESET":  {{Actions: []string{"restore"}}},
				},
			},
			{Name: "mixed"},
		},
	}
}

func TestGenerateMermaid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		config      *statemachine.ChartConfig
		opts        Options
		wantErr     error
		wantContain []string
		wantMissing []string
	}{
		{
			name:   "defaults",
			config: checkboxChart(),
			opts:   DefaultOptions(),
			wantContain: []string{
				"stateDiagram-v2",
				"direction TB",
				"[*] --> unchecked",
				"unchecked --> checked: TOGGLE [enabled] / notifyChange",
				"checked --> unchecked: TOGGLE / notifyChange",
				"checked --> checked: RESET / restore",
				`checked: checked\nentry [syncInput]`,
				"class mixed terminal",
			},
		},
		{
			name:   "labels trimmed",
			config: checkboxChart(),
			opts:   DefaultOptions().Labels(false).Flow(LeftRight),
			wantContain: []string{
				"direction LR",
				"unchecked --> checked: TOGGLE\n",
			},
			wantMissing: []string{"notifyChange", "enabled", "syncInput"},
		},
		{
			name:        "current state",
			config:      checkboxChart(),
			opts:        DefaultOptions().Marking("checked"),
			wantContain: []string{"class checked current"},
		},
		{
			name:    "nil config",
			opts:    DefaultOptions(),
			wantErr: ErrConfigNil,
		},
		{
			name:    "no initial state",
			config:  &statemachine.ChartConfig{Name: "x"},
			opts:    DefaultOptions(),
			wantErr: ErrNoInitialState,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result, err := GenerateMermaidWithOptions(tt.config, tt.opts)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(result, "```mermaid\n"))

			for _, want := range tt.wantContain {
				assert.Contains(t, result, want)
			}

			for _, missing := range tt.wantMissing {
				assert.NotContains(t, result, missing)
			}
		})
	}
}

func TestStatesUseNaturalOrder(t *testing.T) {
	t.Parallel()

	config := &statemachine.ChartConfig{
		Name:    "steps",
		Initial: "step1",
		States: []statemachine.StateConfig{
			{Name: "step10"},
			{Name: "step2", On: map[string][]statemachine.CandidateConfig{"NEXT": {{Target: "step10"}}}},
			{Name: "step1", On: map[string][]statemachine.CandidateConfig{"NEXT": {{Target: "step2"}}}},
		},
	}

	names := make([]string, 0, len(config.States))
	for _, state := range sortedStates(config) {
		names = append(names, state.Name)
	}

	assert.Equal(t, []string{"step1", "step2", "step10"}, names)

	result, err := GenerateMermaid(config)
	require.NoError(t, err)
	assert.Less(t, strings.Index(result, "step1 --> step2"), strings.Index(result, "step2 --> step10"))
}

func TestGenerateDOT(t *testing.T) {
	t.Parallel()

	result, err := GenerateDOT(checkboxChart(), DefaultOptions().Flow(LeftRight))
	require.NoError(t, err)

	assert.Contains(t, result, `digraph "checkbox" {`)
	assert.Contains(t, result, "rankdir=LR;")
	assert.Contains(t, result, `__start -> "unchecked";`)
	assert.Contains(t, result, `"unchecked" -> "checked" [label="TOGGLE [enabled] / notifyChange"];`)
	assert.Contains(t, result, `"mixed" [label="mixed", shape=doublecircle];`)
	assert.True(t, strings.HasSuffix(result, "}\n"))

	_, err = GenerateDOT(nil, DefaultOptions())
	require.ErrorIs(t, err, ErrConfigNil)
}

func TestGenerateMermaidFromFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "disclosure.yaml")
	err := os.WriteFile(path, []byte(`
name: disclosure
initial: collapsed
states:
  - name: collapsed
    on:
      TOGGLE:
        - target: expanded
  - name: expanded
    on:
      TOGGLE:
        - target: collapsed
`), 0o600)
	require.NoError(t, err)

	result, err := GenerateMermaidFromFile(path)
	require.NoError(t, err)
	assert.Contains(t, result, "collapsed --> expanded: TOGGLE")
	assert.Contains(t, result, "expanded --> collapsed: TOGGLE")

	_, err = GenerateMermaidFromFile(filepath.Join(t.TempDir(), "none.yaml"))
	require.Error(t, err)
}
