// Package drag tells a click that opened a popup apart from a later press-drag-release
// that selects an item in it.
//
// When a menu opens under the pointer, the mouseup of the opening click lands on
// whatever item is under the cursor. The gate only lets a mouseup select once the
// pointer has moved more than Threshold pixels from where it went down, once
// ReadyDelay has passed since opening, or once an item received focus.
package drag

import (
	"math"
	"sync"
	"time"

	"github.com/amp-labs/amp-a11y/host"
	"go.uber.org/atomic"
)

const (
	// DefaultThreshold is the distance in pixels the pointer must travel on either axis.
	DefaultThreshold = 8
	// DefaultReadyDelay is how long after opening a mouseup starts to count.
	DefaultReadyDelay = 400 * time.Millisecond
)

// Option configures a Gate.
type Option func(*Gate)

// WithThreshold overrides DefaultThreshold.
func WithThreshold(px float64) Option {
	return func(g *Gate) {
		g.threshold = px
	}
}

// WithReadyDelay overrides DefaultReadyDelay.
func WithReadyDelay(d time.Duration) Option {
	return func(g *Gate) {
		g.readyDelay = d
	}
}

// Gate is safe for concurrent use; the ready timer fires on the clock's goroutine.
type Gate struct {
	clock      host.Clock
	threshold  float64
	readyDelay time.Duration

	ready *atomic.Bool

	mu     sync.Mutex
	origin host.Point
	timer  host.Timer
}

// New creates a closed gate.
func New(clock host.Clock, opts ...Option) *Gate {
	g := &Gate{
		clock:      clock,
		threshold:  DefaultThreshold,
		readyDelay: DefaultReadyDelay,
		ready:      atomic.NewBool(false),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Open records the pointer-down origin and arms the ready timer. Opening again
// clears any timer left from a previous open.
func (g *Gate) Open(origin host.Point) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.stopTimer()
	g.ready.Store(false)
	g.origin = origin
	g.timer = g.clock.AfterFunc(g.readyDelay, func() {
		g.ready.Store(true)
	})
}

// Move feeds a pointer position and reports whether the gate is ready.
func (g *Gate) Move(p host.Point) bool {
	if g.ready.Load() {
		return true
	}

	g.mu.Lock()
	origin := g.origin
	g.mu.Unlock()

	if math.Abs(p.X-origin.X) > g.threshold || math.Abs(p.Y-origin.Y) > g.threshold {
		g.ready.Store(true)
	}

	return g.ready.Load()
}

// Focus marks the gate ready; an item that took focus was reached deliberately.
func (g *Gate) Focus() {
	g.ready.Store(true)
}

// Release reports whether a mouseup counts as a selection. A mouseup that does not
// count still readies the gate, so the next one does.
func (g *Gate) Release() bool {
	return g.ready.Swap(true)
}

// Ready reports the current readiness.
func (g *Gate) Ready() bool {
	return g.ready.Load()
}

// Close stops the timer and resets readiness.
func (g *Gate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.stopTimer()
	g.ready.Store(false)
}

func (g *Gate) stopTimer() {
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
}
