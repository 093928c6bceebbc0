package slider

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

func TestValueForKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		opts  Options
		key   string
		value float64
		want  float64
	}{
		{"right steps up", Options{}, host.KeyArrowRight, 50, 51},
		{"up steps up", Options{}, host.KeyArrowUp, 50, 51},
		{"left clamps", Options{}, host.KeyArrowLeft, 0, 0},
		{"down steps down", Options{}, host.KeyArrowDown, 50, 49},
		{"page up", Options{}, host.KeyPageUp, 50, 60},
		{"page down clamps", Options{}, host.KeyPageDown, 5, 0},
		{"home", Options{}, host.KeyHome, 50, 0},
		{"end", Options{}, host.KeyEnd, 50, 100},
		{"custom range end", Options{Min: -10, Max: 10}, host.KeyEnd, 0, 10},
		{"decimal step", Options{Max: 1, Step: ptr(0.1)}, host.KeyArrowRight, 0.2, 0.3},
		{"coarse step snaps", Options{Step: ptr(5.0)}, host.KeyArrowRight, 12, 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := tt.opts.ValueForKey(tt.key, tt.value)
			require.True(t, ok)
			assert.InDelta(t, tt.want, got, 0)
		})
	}
}

func TestValueForKeyContinuous(t *testing.T) {
	t.Parallel()

	opts := Options{Max: 10, Step: ptr(0.0)}

	got, ok := opts.ValueForKey(host.KeyArrowUp, 5)
	require.True(t, ok)
	assert.InDelta(t, 5.1, got, 1e-9, "a continuous slider moves by a hundredth of the range")

	_, ok = opts.ValueForKey("a", 5)
	assert.False(t, ok)
}

func TestRoundToStep(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value, step, lo float64
		want            float64
	}{
		{7, 5, 0, 5},
		{8, 5, 0, 10},
		{3, 5, 1, 1},
		{-7.5, 5, 0, -5},
		{0.123456, 0.001, 0, 0.123},
		{0.30000000000000004, 0.1, 0, 0.3},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, RoundToStep(tt.value, tt.step, tt.lo), 0, "%v by %v from %v", tt.value, tt.step, tt.lo)
	}

	assert.Equal(t, 8, decimals(1e-8))
	assert.Equal(t, 0, decimals(10))
}

func TestPercentAndRange(t *testing.T) {
	t.Parallel()

	lo, hi := Options{}.Range()
	assert.InDelta(t, 0, lo, 0)
	assert.InDelta(t, 100, hi, 0)

	assert.InDelta(t, 50, Options{Min: 10, Max: 20}.Percent(15), 0)
	assert.InDelta(t, 0, Options{Min: 5, Max: 5}.Percent(5), 0)
	assert.InDelta(t, 1, Options{}.StepSize(), 0)
}

func TestValueAtPosition(t *testing.T) {
	t.Parallel()

	horizontal := Options{}
	track := Rect{Left: 100, Width: 200, Height: 10}

	got, ok := horizontal.ValueAtPosition(host.Point{X: 150}, track)
	require.True(t, ok)
	assert.InDelta(t, 25, got, 0)

	got, ok = horizontal.ValueAtPosition(host.Point{X: 50}, track)
	require.True(t, ok)
	assert.InDelta(t, 0, got, 0, "positions before the track clamp")

	vertical := Options{Orientation: navigation.Vertical}

	got, ok = vertical.ValueAtPosition(host.Point{Y: 30}, Rect{Width: 10, Height: 100})
	require.True(t, ok)
	assert.InDelta(t, 70, got, 0, "vertical sliders grow upward")

	_, ok = horizontal.ValueAtPosition(host.Point{X: 150}, Rect{})
	assert.False(t, ok)
}

func change(value float64) host.Callback {
	return host.Callback{Name: CallbackChange, Value: Change{Value: value, Min: 0, Max: 100}}
}

func key(k string) host.Event {
	return host.Event{Type: host.KeyDown, Key: k}
}

func TestSliderDefaults(t *testing.T) {
	t.Parallel()

	s := New(Options{}, nil)
	assert.Equal(t, "slider", s.ID())
	assert.InDelta(t, 0, s.Value(), 0)

	assert.InDelta(t, 40, New(Options{DefaultValue: ptr(40.0)}, nil).Value(), 0)
	assert.InDelta(t, -5, New(Options{Min: -5, Max: 5}, nil).Value(), 0, "starts at min")
	assert.InDelta(t, 100, New(Options{DefaultValue: ptr(400.0)}, nil).Value(), 0)
}

func TestSliderKeyboard(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New(Options{DefaultValue: ptr(40.0)}, nil)

	s.HandleHandleEvent(ctx, host.Event{Type: host.FocusIn})
	assert.True(t, s.HasFocus())

	effects := s.HandleHandleEvent(ctx, key(host.KeyArrowRight))
	assert.Equal(t, []statemachine.Effect{host.PreventDefault{}, change(41)}, effects)
	assert.InDelta(t, 41, s.Value(), 0)

	assert.Nil(t, s.HandleHandleEvent(ctx, key(host.KeyEnter)))

	s.HandleHandleEvent(ctx, host.Event{Type: host.Blur})
	assert.False(t, s.HasFocus())
}

func TestSliderDisabled(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New(Options{Disabled: true}, nil)
	s.SetTrack(Rect{Width: 100, Height: 10})

	assert.Nil(t, s.HandleHandleEvent(ctx, key(host.KeyArrowRight)))
	assert.Nil(t, s.HandleTrackEvent(ctx, host.Event{Type: host.MouseDown, X: 50}))
	assert.False(t, s.IsDragging())

	attrs := s.HandleAttributes()
	assert.Equal(t, "-1", attrs["tabindex"])
	assert.Equal(t, "true", attrs["aria-disabled"])
	assert.Contains(t, s.TrackAttributes(), "data-disabled")
}

func TestSliderControlled(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	opts := Options{Value: ptr(30.0)}
	s := New(opts, nil)

	effects := s.HandleHandleEvent(ctx, key(host.KeyArrowUp))
	assert.Equal(t, []statemachine.Effect{host.PreventDefault{}, change(31)}, effects)
	assert.InDelta(t, 30, s.Value(), 0, "the app owns the value")

	opts.Value = ptr(31.0)
	s.Update(ctx, opts)
	assert.InDelta(t, 31, s.Value(), 0)
}

func TestSliderPointerDrag(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New(Options{}, nil)
	s.Mount("handle")
	s.SetTrack(Rect{Left: 0, Width: 200, Height: 10})

	effects := s.HandleTrackEvent(ctx, host.Event{Type: host.MouseDown, X: 50})
	assert.Equal(t, []statemachine.Effect{host.Focus{Node: "handle", Deferred: true}, change(25)}, effects)
	assert.True(t, s.IsDragging())

	effects = s.HandleTrackEvent(ctx, host.Event{Type: host.MouseMove, X: 100})
	assert.Equal(t, []statemachine.Effect{change(50)}, effects)

	effects = s.HandleTrackEvent(ctx, host.Event{Type: host.MouseUp, X: 300})
	assert.Equal(t, []statemachine.Effect{change(100)}, effects)
	assert.False(t, s.IsDragging())
	assert.InDelta(t, 100, s.Value(), 0)

	assert.Nil(t, s.HandleTrackEvent(ctx, host.Event{Type: host.MouseMove, X: 20}), "moves after release are ignored")
	assert.Nil(t, s.HandleTrackEvent(ctx, host.Event{Type: host.MouseUp, X: 20}))
}

func TestSliderPointerEdgeCases(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("secondary button", func(t *testing.T) {
		t.Parallel()

		s := New(Options{}, nil)
		s.SetTrack(Rect{Width: 100, Height: 10})

		assert.Nil(t, s.HandleTrackEvent(ctx, host.Event{Type: host.MouseDown, Button: host.ButtonSecondary, X: 50}))
		assert.False(t, s.IsDragging())
	})

	t.Run("touch prevents scrolling", func(t *testing.T) {
		t.Parallel()

		s := New(Options{}, nil)
		s.SetTrack(Rect{Width: 100, Height: 10})

		effects := s.HandleTrackEvent(ctx, host.Event{Type: host.TouchStart, X: 10})
		assert.Equal(t, []statemachine.Effect{host.PreventDefault{}, change(10)}, effects)

		effects = s.HandleTrackEvent(ctx, host.Event{Type: host.TouchEnd, X: 20})
		assert.Equal(t, []statemachine.Effect{change(20)}, effects)
	})

	t.Run("unmeasured track", func(t *testing.T) {
		t.Parallel()

		s := New(Options{}, nil)

		assert.Empty(t, s.HandleTrackEvent(ctx, host.Event{Type: host.MouseDown, X: 50}))
		assert.True(t, s.IsDragging())
	})
}

type fixedIDs string

func (f fixedIDs) NewID() string { return string(f) }

func TestSliderAttributes(t *testing.T) {
	t.Parallel()

	s := New(Options{DefaultValue: ptr(25.0), Label: "Volume", LabelledBy: "vol-label", ValueText: "quiet"}, fixedIDs("2"))

	assert.Equal(t, map[string]string{
		"role":                     "slider",
		"tabindex":                 "0",
		"aria-valuemin":            "0",
		"aria-valuemax":            "100",
		"aria-valuenow":            "25",
		"aria-orientation":         "horizontal",
		"aria-label":               "Volume",
		"aria-valuetext":           "quiet",
		"data-reach-slider-handle": "",
	}, s.HandleAttributes())

	assert.Equal(t, map[string]string{
		"id":                      "slider--2",
		"data-reach-slider-input": "",
		"data-orientation":        "horizontal",
	}, s.InputAttributes())
	assert.Equal(t, "25%", s.RangeAttributes()["size"])

	marker, ok := s.MarkerAttributes(50)
	require.True(t, ok)
	assert.Equal(t, "over-value", marker["data-state"])
	assert.Equal(t, "50%", marker["offset"])

	marker, ok = s.MarkerAttributes(25)
	require.True(t, ok)
	assert.Equal(t, "at-value", marker["data-state"])

	_, ok = s.MarkerAttributes(150)
	assert.False(t, ok)

	labelled := New(Options{LabelledBy: "vol-label"}, nil)
	assert.Equal(t, "vol-label", labelled.HandleAttributes()["aria-labelledby"])
}
