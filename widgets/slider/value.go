package slider

import (
	"math"
	"strconv"
	"strings"

	"github.com/amp-labs/amp-a11y/host"
	"github.com/amp-labs/amp-a11y/navigation"
)

const (
	defaultMax  = 100
	defaultStep = 1
)

// Rect is the track's bounding box in host coordinates, Top being the smaller Y.
type Rect struct {
	Left, Top, Width, Height float64
}

// Bottom is the Y coordinate of the lower edge.
func (r Rect) Bottom() float64 {
	return r.Top + r.Height
}

// Range returns the effective bounds. Zero Min and Max mean the 0 to 100 default.
func (o Options) Range() (float64, float64) {
	if o.Min == 0 && o.Max == 0 {
		return 0, defaultMax
	}

	return o.Min, o.Max
}

// StepSize is the step values snap to. Zero means the value is continuous.
func (o Options) StepSize() float64 {
	if o.Step == nil {
		return defaultStep
	}

	return *o.Step
}

func (o Options) orientation() navigation.Orientation {
	if o.Orientation == "" {
		return navigation.Horizontal
	}

	return o.Orientation
}

// Clamp limits value to the range.
func (o Options) Clamp(value float64) float64 {
	lo, hi := o.Range()

	return max(lo, min(value, hi))
}

// Snap rounds value to the step and clamps it.
func (o Options) Snap(value float64) float64 {
	lo, _ := o.Range()

	if step := o.StepSize(); step != 0 {
		value = RoundToStep(value, step, lo)
	}

	return o.Clamp(value)
}

// Percent is how far value sits along the range, from 0 to 100.
func (o Options) Percent(value float64) float64 {
	lo, hi := o.Range()
	if hi == lo {
		return 0
	}

	return (value - lo) * 100 / (hi - lo)
}

// ValueForKey is the value a key press moves to from value. ok is false for keys the
// slider does not handle.
func (o Options) ValueForKey(key string, value float64) (float64, bool) {
	lo, hi := o.Range()

	keyStep := o.StepSize()
	if keyStep == 0 {
		keyStep = (hi - lo) / 100
	}

	tenSteps := (hi - lo) / 10

	switch key {
	case host.KeyArrowLeft, host.KeyArrowDown:
		value -= keyStep
	case host.KeyArrowRight, host.KeyArrowUp:
		value += keyStep
	case host.KeyPageDown:
		value -= tenSteps
	case host.KeyPageUp:
		value += tenSteps
	case host.KeyHome:
		value = lo
	case host.KeyEnd:
		value = hi
	default:
		return value, false
	}

	return o.Snap(value), true
}

// ValueAtPosition maps a pointer position over the track to a value. ok is false
// while the track has no size along the slider's axis.
func (o Options) ValueAtPosition(p host.Point, track Rect) (float64, bool) {
	var diff, size float64

	if o.orientation() == navigation.Vertical {
		diff, size = track.Bottom()-p.Y, track.Height
	} else {
		diff, size = p.X-track.Left, track.Width
	}

	if size <= 0 {
		return 0, false
	}

	lo, hi := o.Range()

	return o.Snap((hi-lo)*(diff/size) + lo), true
}

// RoundToStep snaps value to the nearest multiple of step counted from lo, keeping
// only as many decimals as step has so float noise does not leak into the value.
func RoundToStep(value, step, lo float64) float64 {
	nearest := math.Floor((value-lo)/step+0.5)*step + lo

	rounded, err := strconv.ParseFloat(strconv.FormatFloat(nearest, 'f', decimals(step), 64), 64)
	if err != nil {
		return nearest
	}

	return rounded
}

func decimals(step float64) int {
	s := strconv.FormatFloat(math.Abs(step), 'f', -1, 64)

	_, frac, found := strings.Cut(s, ".")
	if !found {
		return 0
	}

	return len(frac)
}

// FormatValue renders a value the way it appears in ARIA attributes.
func FormatValue(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
