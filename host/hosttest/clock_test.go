package hosttest

import (
	"testing"
	"time"

	"github.com/amp-labs/amp-a11y/host"
	"github.com/stretchr/testify/assert"
)

func TestFakeClockFiresInOrder(t *testing.T) {
	t.Parallel()

	clock := NewFakeClock()
	start := clock.Now()

	var fired []string

	clock.AfterFunc(300*time.Millisecond, func() { fired = append(fired, "c") })
	clock.AfterFunc(100*time.Millisecond, func() { fired = append(fired, "a") })
	clock.AfterFunc(100*time.Millisecond, func() { fired = append(fired, "b") })

	clock.Advance(99 * time.Millisecond)
	assert.Empty(t, fired)

	clock.Advance(time.Millisecond)
	assert.Equal(t, []string{"a", "b"}, fired)
	assert.Equal(t, start.Add(100*time.Millisecond), clock.Now())
	assert.Equal(t, 1, clock.Pending())

	clock.Advance(time.Second)
	assert.Equal(t, []string{"a", "b", "c"}, fired)
	assert.Equal(t, start.Add(1100*time.Millisecond), clock.Now())
	assert.Zero(t, clock.Pending())
}

func TestFakeClockStop(t *testing.T) {
	t.Parallel()

	clock := NewFakeClock()
	fired := false
	timer := clock.AfterFunc(time.Second, func() { fired = true })

	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop())

	clock.Advance(2 * time.Second)
	assert.False(t, fired)
}

func TestFakeClockChainedTimers(t *testing.T) {
	t.Parallel()

	clock := NewFakeClock()

	var at []time.Duration

	start := clock.Now()

	clock.AfterFunc(time.Second, func() {
		at = append(at, clock.Now().Sub(start))
		clock.AfterFunc(time.Second, func() {
			at = append(at, clock.Now().Sub(start))
		})
	})

	clock.Advance(3 * time.Second)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, at)
}

func TestTreeContains(t *testing.T) {
	t.Parallel()

	tree := Tree{"option-1": "list", "list": "popover", "button": "root"}

	assert.True(t, tree.Contains("popover", "option-1"))
	assert.True(t, tree.Contains("list", "list"))
	assert.False(t, tree.Contains("popover", "button"))
	assert.False(t, tree.Contains("popover", ""))
	assert.False(t, tree.Contains("", "list"))

	var _ host.Tree = tree
}
