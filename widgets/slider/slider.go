// Package slider implements a single-handle slider. The host reports the track's
// geometry with SetTrack; pointer positions over it and arrow keys on the handle
// become values snapped to the step.
package slider

import (
	"context"

	"github.com/amp-labs/amp-a11y/host"
	"github.com/amp-labs/amp-a11y/navigation"
	"github.com/amp-labs/amp-a11y/statemachine"
	"github.com/amp-labs/amp-a11y/warning"
)

// CallbackChange reports a new value as a Change.
const CallbackChange = "onChange"

// Options are the props of a slider. A nil Value leaves the slider uncontrolled and a
// nil DefaultValue starts it at Min.
type Options struct {
	ID           string                 `json:"id,omitempty"           yaml:"id,omitempty"`
	Min          float64                `json:"min,omitempty"          yaml:"min,omitempty"`
	Max          float64                `json:"max,omitempty"          yaml:"max,omitempty"`
	Step         *float64               `json:"step,omitempty"         yaml:"step,omitempty"`
	Orientation  navigation.Orientation `json:"orientation,omitempty"  yaml:"orientation,omitempty"`
	Disabled     bool                   `json:"disabled,omitempty"     yaml:"disabled,omitempty"`
	Value        *float64               `json:"value,omitempty"        yaml:"value,omitempty"`
	DefaultValue *float64               `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty"`

	Label      string `json:"label,omitempty"      yaml:"label,omitempty"`
	LabelledBy string `json:"labelledBy,omitempty" yaml:"labelledBy,omitempty"`
	// ValueText is announced instead of the number when set.
	ValueText string `json:"valueText,omitempty" yaml:"valueText,omitempty"`
}

// Change is the value of a CallbackChange.
type Change struct {
	Value    float64
	Min, Max float64
}

// Slider tracks the value and an in-progress pointer drag.
type Slider struct {
	opts     Options
	id       string
	switched *warning.ControlledSwitch

	value       float64
	track       Rect
	handle      host.Node
	pointerDown bool
	focused     bool
}

// New creates a slider. ids generates the id when opts.ID is empty.
func New(opts Options, ids host.IDGenerator) *Slider {
	id := opts.ID

	switch {
	case id != "":
	case ids != nil:
		id = host.MakeID("slider", ids.NewID())
	default:
		id = "slider"
	}

	s := &Slider{
		opts:     opts,
		id:       id,
		switched: warning.NewControlledSwitch(opts.Value != nil),
	}

	s.value, _ = opts.Range()
	if opts.DefaultValue != nil {
		s.value = *opts.DefaultValue
	}

	return s
}

// ID is the slider id.
func (s *Slider) ID() string {
	return s.id
}

// Options returns the current props.
func (s *Slider) Options() Options {
	return s.opts
}

// Value is the current value, clamped to the range.
func (s *Slider) Value() float64 {
	if s.opts.Value != nil {
		return s.opts.Clamp(*s.opts.Value)
	}

	return s.opts.Clamp(s.value)
}

// Percent is the current value's position along the track.
func (s *Slider) Percent() float64 {
	return s.opts.Percent(s.Value())
}

// IsDragging reports whether a pointer is held down on the track.
func (s *Slider) IsDragging() bool {
	return s.pointerDown
}

// HasFocus reports whether the handle holds focus.
func (s *Slider) HasFocus() bool {
	return s.focused
}

// Mount records the handle node, which takes focus when a drag starts.
func (s *Slider) Mount(handle host.Node) {
	s.handle = handle
}

// SetTrack records the track's bounding box. Pointer events are ignored until it has
// a size.
func (s *Slider) SetTrack(track Rect) {
	s.track = track
}

// Update applies new props.
func (s *Slider) Update(ctx context.Context, opts Options) {
	s.switched.Check(ctx, "SliderInput", "value", opts.Value != nil)
	s.opts = opts
}

func (s *Slider) setValue(value float64) []statemachine.Effect {
	if s.opts.Value == nil {
		s.value = value
	}

	lo, hi := s.opts.Range()

	return []statemachine.Effect{host.Callback{Name: CallbackChange, Value: Change{Value: value, Min: lo, Max: hi}}}
}

// HandleHandleEvent routes events from the handle.
func (s *Slider) HandleHandleEvent(_ context.Context, ev host.Event) []statemachine.Effect {
	switch ev.Type {
	case host.FocusIn:
		s.focused = true
	case host.Blur:
		s.focused = false
	case host.KeyDown:
		if s.opts.Disabled {
			return nil
		}

		value, ok := s.opts.ValueForKey(ev.Key, s.Value())
		if !ok {
			return nil
		}

		return append([]statemachine.Effect{host.PreventDefault{}}, s.setValue(value)...)
	}

	return nil
}

// HandleTrackEvent routes pointer events from the slider. Move and up events should be
// forwarded from the document while IsDragging reports true.
func (s *Slider) HandleTrackEvent(_ context.Context, ev host.Event) []statemachine.Effect {
	switch ev.Type {
	case host.MouseDown, host.TouchStart:
		return s.slideStart(ev)
	case host.MouseMove, host.TouchMove:
		if s.opts.Disabled || !s.pointerDown {
			s.pointerDown = false

			return nil
		}

		value, ok := s.opts.ValueAtPosition(ev.Point(), s.track)
		if !ok {
			return nil
		}

		return s.setValue(value)
	case host.MouseUp, host.TouchEnd:
		if !ev.IsPrimaryButton() || !s.pointerDown {
			return nil
		}

		s.pointerDown = false

		value, ok := s.opts.ValueAtPosition(ev.Point(), s.track)
		if !ok {
			return nil
		}

		return s.setValue(value)
	}

	return nil
}

func (s *Slider) slideStart(ev host.Event) []statemachine.Effect {
	if !ev.IsPrimaryButton() {
		return nil
	}

	if s.opts.Disabled {
		s.pointerDown = false

		return nil
	}

	s.pointerDown = true

	var effects []statemachine.Effect
	if ev.Type == host.TouchStart {
		effects = append(effects, host.PreventDefault{})
	}

	value, ok := s.opts.ValueAtPosition(ev.Point(), s.track)
	if !ok {
		return effects
	}

	if s.handle != "" {
		effects = append(effects, host.Focus{Node: s.handle, Deferred: true})
	}

	return append(effects, s.setValue(value)...)
}

func (s *Slider) dataAttributes(name string) map[string]string {
	attrs := map[string]string{
		"data-reach-slider-" + name: "",
		"data-orientation":          string(s.opts.orientation()),
	}

	if s.opts.Disabled {
		attrs["data-disabled"] = ""
	}

	return attrs
}

// InputAttributes are the attributes of the element wrapping the track.
func (s *Slider) InputAttributes() map[string]string {
	attrs := s.dataAttributes("input")
	attrs["id"] = s.id

	if s.focused {
		attrs["data-focused"] = ""
	}

	return attrs
}

// TrackAttributes are the attributes of the track.
func (s *Slider) TrackAttributes() map[string]string {
	return s.dataAttributes("track")
}

// RangeAttributes are the attributes of the filled part of the track. "size" is the
// fill as a CSS percentage along the slider's axis.
func (s *Slider) RangeAttributes() map[string]string {
	attrs := s.dataAttributes("range")
	attrs["size"] = FormatValue(s.Percent()) + "%"

	return attrs
}

// HandleAttributes are the attributes of the focusable handle.
func (s *Slider) HandleAttributes() map[string]string {
	lo, hi := s.opts.Range()

	attrs := map[string]string{
		"role":                     "slider",
		"tabindex":                 "0",
		"aria-valuemin":            FormatValue(lo),
		"aria-valuemax":            FormatValue(hi),
		"aria-valuenow":            FormatValue(s.Value()),
		"aria-orientation":         string(s.opts.orientation()),
		"data-reach-slider-handle": "",
	}

	if s.opts.Disabled {
		attrs["tabindex"] = "-1"
		attrs["aria-disabled"] = "true"
	}

	switch {
	case s.opts.Label != "":
		attrs["aria-label"] = s.opts.Label
	case s.opts.LabelledBy != "":
		attrs["aria-labelledby"] = s.opts.LabelledBy
	}

	if s.opts.ValueText != "" {
		attrs["aria-valuetext"] = s.opts.ValueText
	}

	return attrs
}

// MarkerAttributes are the attributes of a fixed marker at value. ok is false when
// the value is outside the range and the marker should not render.
func (s *Slider) MarkerAttributes(value float64) (map[string]string, bool) {
	lo, hi := s.opts.Range()
	if value < lo || value > hi {
		return nil, false
	}

	state := "at-value"

	switch current := s.Value(); {
	case value < current:
		state = "under-value"
	case value > current:
		state = "over-value"
	}

	attrs := s.dataAttributes("marker")
	attrs["data-state"] = state
	attrs["data-value"] = FormatValue(value)
	attrs["offset"] = FormatValue(s.opts.Percent(value)) + "%"

	return attrs, true
}
