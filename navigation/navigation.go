// Package navigation resolves roving-focus moves over an ordered list of items.
package navigation

import (
	"github.com/amp-labs/amp-a11y/host"
)

// Direction is a navigation request.
type Direction int

const (
	Forward Direction = iota
	Backward
	First
	Last
)

func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	case First:
		return "first"
	case Last:
		return "last"
	default:
		return "unknown"
	}
}

// Options control a single resolution.
type Options struct {
	// Wrap continues from the opposite end at a boundary.
	Wrap bool
	// Filter reports whether the item at i can be selected. Nil accepts every item.
	Filter func(i int) bool
}

// Next returns the index reached by moving from current in dir over n items.
//
// A current of -1 means nothing is selected: Forward yields the first selectable
// item and Backward the last. Without Wrap, running off either end stays on
// current when current is itself selectable; otherwise there is no result.
func Next(n, current int, dir Direction, opts Options) (int, bool) {
	if n <= 0 {
		return -1, false
	}

	ok := func(i int) bool {
		return opts.Filter == nil || opts.Filter(i)
	}

	// scan walks [from, to) forward when step is 1, or (to, from] backward when -1.
	scan := func(from, to, step int) (int, bool) {
		for i := from; (step > 0 && i < to) || (step < 0 && i > to); i += step {
			if ok(i) {
				return i, true
			}
		}

		return -1, false
	}

	switch dir {
	case First:
		return scan(0, n, 1)
	case Last:
		return scan(n-1, -1, -1)
	}

	if current < 0 {
		if dir == Forward {
			return scan(0, n, 1)
		}

		return scan(n-1, -1, -1)
	}

	current = min(current, n)
	valid := current < n && ok(current)

	if dir == Forward {
		if i, found := scan(current+1, n, 1); found {
			return i, true
		}

		if opts.Wrap {
			return scan(0, min(current+1, n), 1)
		}
	} else {
		if i, found := scan(current-1, -1, -1); found {
			return i, true
		}

		if opts.Wrap {
			return scan(n-1, current-1, -1)
		}
	}

	if valid {
		return current, true
	}

	return -1, false
}

// Orientation selects which arrow keys navigate.
type Orientation string

const (
	Vertical   Orientation = "vertical"
	Horizontal Orientation = "horizontal"
	Both       Orientation = "both"
)

// KeyOptions configure FromKey.
type KeyOptions struct {
	Orientation Orientation `yaml:"orientation"`
	// RTL swaps ArrowLeft and ArrowRight.
	RTL bool `yaml:"rtl"`
}

// FromKey maps a key to a navigation request. Ctrl with PageUp or PageDown steps
// instead of jumping.
func FromKey(key string, ctrl bool, opts KeyOptions) (Direction, bool) {
	vertical := opts.Orientation != Horizontal
	horizontal := opts.Orientation == Horizontal || opts.Orientation == Both

	switch key {
	case host.KeyArrowDown:
		return Forward, vertical
	case host.KeyArrowUp:
		return Backward, vertical
	case host.KeyArrowRight:
		if opts.RTL {
			return Backward, horizontal
		}

		return Forward, horizontal
	case host.KeyArrowLeft:
		if opts.RTL {
			return Forward, horizontal
		}

		return Backward, horizontal
	case host.KeyHome:
		return First, true
	case host.KeyEnd:
		return Last, true
	case host.KeyPageUp:
		if ctrl {
			return Backward, true
		}

		return First, true
	case host.KeyPageDown:
		if ctrl {
			return Forward, true
		}

		return Last, true
	default:
		return Forward, false
	}
}
