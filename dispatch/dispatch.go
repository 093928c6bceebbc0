// Package dispatch runs widget work one task at a time, in submission order, the
// way a UI event loop does. Timers requested by machines are scheduled through the
// host clock and post their event back onto the loop when they fire.
package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/amp-labs/amp-a11y/host"
	"github.com/amp-labs/amp-a11y/statemachine"
	"go.uber.org/atomic"
)

// ErrStopped is returned when work is posted to a stopped loop.
var ErrStopped = errors.New("dispatch loop stopped")

type timerEntry struct {
	timer host.Timer
	gen   uint64
}

// Loop serializes tasks on a single worker.
type Loop struct {
	pool    pond.Pool
	clock   host.Clock
	stopped *atomic.Bool
	gen     *atomic.Uint64

	mu     sync.Mutex
	timers map[host.TimerKey]timerEntry
}

// New starts a loop. Timers use clock.
func New(clock host.Clock) *Loop {
	return &Loop{
		pool:    pond.NewPool(1),
		clock:   clock,
		stopped: atomic.NewBool(false),
		gen:     atomic.NewUint64(0),
		timers:  make(map[host.TimerKey]timerEntry),
	}
}

// Post queues f behind every previously posted task.
func (l *Loop) Post(f func()) error {
	if l.stopped.Load() {
		return ErrStopped
	}

	err := l.pool.Go(f)
	if err != nil {
		return errors.Join(ErrStopped, err)
	}

	return nil
}

// Sync blocks until every task posted before it has run.
func (l *Loop) Sync() error {
	if l.stopped.Load() {
		return ErrStopped
	}

	return l.pool.Submit(func() {}).Wait()
}

// After posts f once d has elapsed, replacing any pending timer with the same key.
func (l *Loop) After(key host.TimerKey, d time.Duration, f func()) {
	if l.stopped.Load() {
		return
	}

	gen := l.gen.Inc()

	l.mu.Lock()
	defer l.mu.Unlock()

	if prev, ok := l.timers[key]; ok {
		prev.timer.Stop()
	}

	timer := l.clock.AfterFunc(d, func() {
		if !l.release(key, gen) {
			return
		}

		err := l.Post(f)
		if err != nil {
			slog.Debug("Dropped timer after loop stopped", "timer", string(key))
		}
	})

	l.timers[key] = timerEntry{timer: timer, gen: gen}
}

// release forgets the timer if it is still the current one for key.
func (l *Loop) release(key host.TimerKey, gen uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.timers[key]
	if !ok || entry.gen != gen {
		return false
	}

	delete(l.timers, key)

	return true
}

// Cancel stops the pending timer for key and reports whether one was pending.
func (l *Loop) Cancel(key host.TimerKey) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.timers[key]
	if !ok {
		return false
	}

	entry.timer.Stop()
	delete(l.timers, key)

	return true
}

// CancelAll stops every pending timer. Widgets call it on teardown.
func (l *Loop) CancelAll() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, entry := range l.timers {
		entry.timer.Stop()
		delete(l.timers, key)
	}
}

// Pending returns the number of timers that have not fired.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.timers)
}

// Stop cancels timers, rejects new work and waits for queued tasks to finish.
func (l *Loop) Stop() {
	if l.stopped.Swap(true) {
		return
	}

	l.CancelAll()

	slog.Debug("Stopping dispatch loop")
	l.pool.StopAndWait()
	slog.Debug("Dispatch loop stopped")
}

// Apply performs the timer effects a machine returned. Schedule effects send their
// event through send when they fire; Cancel effects clear timers. Timer keys are
// prefixed with scope so widgets sharing a loop do not collide. Every other effect
// is passed to handle, which may be nil.
func (l *Loop) Apply(
	ctx context.Context,
	scope string,
	effects []statemachine.Effect,
	send func(ctx context.Context, ev statemachine.Event),
	handle func(eff statemachine.Effect),
) {
	for _, eff := range effects {
		switch e := eff.(type) {
		case host.Schedule:
			ev := e.Event
			l.After(scoped(scope, e.Timer), e.After, func() {
				send(ctx, ev)
			})
		case host.Cancel:
			l.Cancel(scoped(scope, e.Timer))
		default:
			if handle != nil {
				handle(eff)
			}
		}
	}
}

func scoped(scope string, key host.TimerKey) host.TimerKey {
	if scope == "" {
		return key
	}

	return host.TimerKey(scope + "/" + string(key))
}
