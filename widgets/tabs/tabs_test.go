package tabs

import (
	"context"
	"testing"

	"github.com/amp-labs/amp-a11y/host"
	"github.com/amp-labs/amp-a11y/navigation"
	"github.com/amp-labs/amp-a11y/statemachine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T {
	return &v
}

func fixtureTabs() []Tab {
	return []Tab{
		{Key: "a", Node: "tab-a"},
		{Key: "b", Node: "tab-b", Disabled: true},
		{Key: "c", Node: "tab-c"},
		{Key: "d", Node: "tab-d"},
	}
}

func newTabs(t *testing.T, opts Options) *Tabs {
	t.Helper()

	tabs := New(context.Background(), opts, nil)
	tabs.SetTabs(fixtureTabs())

	return tabs
}

func key(k string) host.Event {
	return host.Event{Type: host.KeyDown, Key: k}
}

func TestTabsAutoActivation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		opts  Options
		start int
		key   string
		want  int
	}{
		{"right skips disabled", Options{}, 0, host.KeyArrowRight, 2},
		{"right wraps", Options{}, 3, host.KeyArrowRight, 0},
		{"left wraps", Options{}, 0, host.KeyArrowLeft, 3},
		{"home", Options{}, 3, host.KeyHome, 0},
		{"end", Options{}, 0, host.KeyEnd, 3},
		{"rtl right moves back", Options{RTL: true}, 0, host.KeyArrowRight, 3},
		{"vertical down", Options{Orientation: navigation.Vertical}, 0, host.KeyArrowDown, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()

			tt.opts.DefaultIndex = tt.start
			tabs := newTabs(t, tt.opts)

			effects := tabs.HandleListEvent(ctx, key(tt.key))
			assert.Equal(t, tt.want, tabs.SelectedIndex())
			assert.Equal(t, []statemachine.Effect{
				host.PreventDefault{},
				host.Callback{Name: CallbackChange, Value: tt.want},
				host.Focus{Node: fixtureTabs()[tt.want].Node},
			}, effects)
		})
	}
}

func TestTabsIgnoresCrossAxisKeys(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	horizontal := newTabs(t, Options{})
	assert.Nil(t, horizontal.HandleListEvent(ctx, key(host.KeyArrowDown)))
	assert.Nil(t, horizontal.HandleListEvent(ctx, host.Event{Type: host.Click}))
	assert.Zero(t, horizontal.SelectedIndex())

	vertical := newTabs(t, Options{Orientation: navigation.Vertical})
	assert.Nil(t, vertical.HandleListEvent(ctx, key(host.KeyArrowRight)))
}

func TestTabsManualActivation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tabs := newTabs(t, Options{KeyboardActivation: Manual})

	assert.Nil(t, tabs.HandleTabEvent(ctx, "a", host.Event{Type: host.FocusIn}))
	assert.Equal(t, 0, tabs.FocusedIndex())

	effects := tabs.HandleListEvent(ctx, key(host.KeyArrowRight))
	assert.Equal(t, []statemachine.Effect{host.PreventDefault{}, host.Focus{Node: "tab-c"}}, effects)
	assert.Equal(t, 0, tabs.SelectedIndex(), "moving focus does not select")

	tabs.HandleTabEvent(ctx, "c", host.Event{Type: host.FocusIn})
	assert.Equal(t, 2, tabs.FocusedIndex())

	effects = tabs.HandleTabEvent(ctx, "c", host.Event{Type: host.Click})
	assert.Equal(t, []statemachine.Effect{
		host.Callback{Name: CallbackChange, Value: 2},
		host.Focus{Node: "tab-c"},
	}, effects)
	assert.Equal(t, 2, tabs.SelectedIndex())

	tabs.HandleTabEvent(ctx, "c", host.Event{Type: host.Blur})
	assert.Equal(t, -1, tabs.FocusedIndex())
}

func TestTabsClickingDisabledTab(t *testing.T) {
	t.Parallel()

	tabs := newTabs(t, Options{})

	assert.Nil(t, tabs.HandleTabEvent(context.Background(), "b", host.Event{Type: host.Click}))
	assert.Nil(t, tabs.HandleTabEvent(context.Background(), "missing", host.Event{Type: host.Click}))
	assert.Zero(t, tabs.SelectedIndex())
}

func TestTabsControlled(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	opts := Options{Index: ptr(0), HandlesChange: true}
	tabs := newTabs(t, opts)

	effects := tabs.HandleListEvent(ctx, key(host.KeyArrowRight))
	assert.Equal(t, []statemachine.Effect{
		host.PreventDefault{},
		host.Callback{Name: CallbackChange, Value: 2},
	}, effects)
	assert.Equal(t, 0, tabs.SelectedIndex(), "the app owns the selection")

	opts.Index = ptr(2)
	assert.Equal(t, []statemachine.Effect{host.Focus{Node: "tab-c"}}, tabs.Update(ctx, opts))
	assert.Equal(t, 2, tabs.SelectedIndex())

	assert.Nil(t, tabs.Update(ctx, opts), "an unchanged index moves nothing")

	opts.Index = ptr(3)
	assert.Nil(t, tabs.Update(ctx, opts), "app-driven changes do not steal focus")
	assert.Equal(t, 3, tabs.SelectedIndex())
}

func TestTabsSkipsDisabledFirstTab(t *testing.T) {
	t.Parallel()

	tabs := New(context.Background(), Options{}, nil)
	tabs.SetTabs([]Tab{
		{Key: "a", Disabled: true},
		{Key: "b"},
		{Key: "c"},
	})

	assert.Equal(t, 1, tabs.SelectedIndex())

	tabs.RegisterTab(Tab{Key: "z"}, -1)
	assert.Equal(t, 2, tabs.SelectedIndex(), "selection follows b past the new first tab")
	assert.Len(t, tabs.Tabs(), 4)

	tabs.DeregisterTab("z")
	assert.Equal(t, 1, tabs.SelectedIndex())
}

func TestTabsSelectionFollowsKeyAcrossRegistryChanges(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tabs := New(ctx, Options{}, nil)
	tabs.SetTabs([]Tab{{Key: "a"}, {Key: "b"}, {Key: "c"}})

	selectedKey := func() string {
		tab, ok := tabs.tabs.At(tabs.SelectedIndex())
		require.True(t, ok)

		return tab.Key
	}

	tabs.HandleTabEvent(ctx, "b", host.Event{Type: host.Click})
	tabs.HandleTabEvent(ctx, "b", host.Event{Type: host.FocusIn})
	require.Equal(t, "b", selectedKey())

	tabs.DeregisterTab("a")
	assert.Equal(t, "b", selectedKey())
	assert.Equal(t, 0, tabs.FocusedIndex())

	tabs.RegisterTab(Tab{Key: "first"}, -1)
	assert.Equal(t, "b", selectedKey())
	assert.Equal(t, 1, tabs.FocusedIndex())

	tabs.SetTabs([]Tab{{Key: "c"}, {Key: "b"}})
	assert.Equal(t, "b", selectedKey())

	tabs.DeregisterTab("b")
	assert.Equal(t, 0, tabs.SelectedIndex(), "a removed selection stays in range")
}

func TestTabsReadOnly(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tabs := newTabs(t, Options{ReadOnly: true})

	assert.Nil(t, tabs.HandleListEvent(ctx, key(host.KeyArrowRight)))
	assert.Nil(t, tabs.HandleTabEvent(ctx, "c", host.Event{Type: host.Click}))
	assert.Zero(t, tabs.SelectedIndex())
}

type fixedIDs string

func (f fixedIDs) NewID() string { return string(f) }

func TestTabsIDs(t *testing.T) {
	t.Parallel()

	generated := New(context.Background(), Options{}, fixedIDs("3"))
	assert.Equal(t, "tabs--3", generated.ID())
	assert.Equal(t, "tabs", New(context.Background(), Options{}, nil).ID())

	tabs := New(context.Background(), Options{ID: "t"}, fixedIDs("3"))
	assert.Equal(t, "t", tabs.ID())
	assert.Equal(t, "t--tab--0", tabs.TabID(0))
	assert.Equal(t, "t--panel--2", tabs.PanelID(2))
}

func TestTabsAttributes(t *testing.T) {
	t.Parallel()

	tabs := newTabs(t, Options{ID: "t"})

	assert.Equal(t, map[string]string{
		"id":               "t",
		"data-reach-tabs":  "",
		"data-orientation": "horizontal",
	}, tabs.RootAttributes())
	assert.Equal(t, map[string]string{
		"role":                "tablist",
		"aria-orientation":    "horizontal",
		"data-reach-tab-list": "",
	}, tabs.ListAttributes())

	assert.Equal(t, map[string]string{
		"id":               "t--tab--0",
		"role":             "tab",
		"type":             "button",
		"aria-controls":    "t--panel--0",
		"aria-selected":    "true",
		"tabindex":         "0",
		"data-reach-tab":   "",
		"data-orientation": "horizontal",
		"data-selected":    "",
	}, tabs.TabAttributes("a"))

	disabled := tabs.TabAttributes("b")
	assert.Equal(t, "false", disabled["aria-selected"])
	assert.Equal(t, "-1", disabled["tabindex"])
	assert.Equal(t, "true", disabled["aria-disabled"])
	assert.Contains(t, disabled, "disabled")
	assert.Nil(t, tabs.TabAttributes("missing"))
}

func TestTabsPanelsHideAfterMount(t *testing.T) {
	t.Parallel()

	tabs := newTabs(t, Options{ID: "t"})

	require.NotContains(t, tabs.PanelAttributes(2), "hidden", "panels render before mount")

	tabs.Mount()

	assert.Equal(t, map[string]string{
		"id":                   "t--panel--0",
		"role":                 "tabpanel",
		"aria-labelledby":      "t--tab--0",
		"tabindex":             "0",
		"data-reach-tab-panel": "",
	}, tabs.PanelAttributes(0))
	assert.Contains(t, tabs.PanelAttributes(2), "hidden")
}
