// Package hosttest provides deterministic host doubles for tests.
package hosttest

import (
	"slices"
	"sync"
	"time"

	"github.com/amp-labs/amp-a11y/host"
)

// FakeClock is a manual clock. Timers fire only from Advance, in due-time order,
// on the goroutine that called Advance.
type FakeClock struct {
	mu     sync.Mutex
	now    time.Time
	seq    int
	timers []*fakeTimer
}

type fakeTimer struct {
	clock *FakeClock
	when  time.Time
	seq   int
	fn    func()
}

var _ host.Clock = (*FakeClock)(nil)

// NewFakeClock starts at a fixed instant.
func NewFakeClock() *FakeClock {
	return &FakeClock{now: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

//nolint:ireturn
func (c *FakeClock) AfterFunc(d time.Duration, f func()) host.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	t := &fakeTimer{clock: c, when: c.now.Add(d), seq: c.seq, fn: f}
	c.timers = append(c.timers, t)

	return t
}

// Advance moves time forward by d, firing every timer that comes due. Timers
// scheduled by a firing callback also fire if they fall inside the window.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()

		next := c.nextDue(target)
		if next == nil {
			c.now = target
			c.mu.Unlock()

			return
		}

		c.now = next.when
		c.remove(next)
		c.mu.Unlock()

		next.fn()
	}
}

// Pending returns the number of timers that have not fired or been stopped.
func (c *FakeClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.timers)
}

func (c *FakeClock) nextDue(target time.Time) *fakeTimer {
	var next *fakeTimer

	for _, t := range c.timers {
		if t.when.After(target) {
			continue
		}

		if next == nil || t.when.Before(next.when) || (t.when.Equal(next.when) && t.seq < next.seq) {
			next = t
		}
	}

	return next
}

func (c *FakeClock) remove(t *fakeTimer) bool {
	i := slices.Index(c.timers, t)
	if i < 0 {
		return false
	}

	c.timers = slices.Delete(c.timers, i, i+1)

	return true
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	return t.clock.remove(t)
}

// Tree is a containment map for tests: each node maps to its parent.
type Tree map[host.Node]host.Node

// Contains implements host.Tree. A node contains itself.
func (tr Tree) Contains(ancestor, node host.Node) bool {
	if ancestor == "" || node == "" {
		return false
	}

	n := node
	for range len(tr) + 1 {
		if n == "" {
			return false
		}

		if n == ancestor {
			return true
		}

		n = tr[n]
	}

	return false
}
