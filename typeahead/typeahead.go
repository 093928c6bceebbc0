// Package typeahead matches accumulated keystrokes against item labels.
//
// Matching is a case-insensitive prefix test on NFC-normalized, case-folded text, so
// "CA" matches "Canada" and "É" matches "école". The query itself is owned by the
// widget's machine context; the widget schedules a clear through the host once the
// user stops typing.
package typeahead

import (
	"strings"
	"time"

	"github.com/amp-labs/amp-a11y/host"
	"github.com/amp-labs/amp-a11y/statemachine"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// DefaultResetDelay is how long a query survives without a new keystroke.
const DefaultResetDelay = time.Second

// TimerKey is the host timer that clears a widget's query.
const TimerKey host.TimerKey = "typeahead"

// Item is anything with a label that can be disabled.
type Item interface {
	Label() string
	IsDisabled() bool
}

// Fold normalizes s for comparison.
func Fold(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}

// HasPrefix reports whether label starts with query, ignoring case.
func HasPrefix(label, query string) bool {
	return strings.HasPrefix(Fold(label), Fold(query))
}

// Match returns the first enabled item whose label starts with query, along with
// its index. It reports false for an empty query or when nothing matches.
//
//nolint:ireturn
func Match[T Item](items []T, query string) (T, int, bool) {
	var zero T

	if query == "" {
		return zero, -1, false
	}

	folded := Fold(query)

	for i, item := range items {
		if item.IsDisabled() || item.Label() == "" {
			continue
		}

		if strings.HasPrefix(Fold(item.Label()), folded) {
			return item, i, true
		}
	}

	return zero, -1, false
}

// Buffer accumulates keystrokes. It is a value type so it can live inside an
// immutable machine context.
type Buffer struct {
	Query         string
	LastKeystroke time.Time
	// ResetDelay overrides DefaultResetDelay when positive.
	ResetDelay time.Duration
}

// Append adds key to the query. If the previous keystroke is older than the reset
// delay, the query starts over.
func (b Buffer) Append(key string, at time.Time) Buffer {
	if b.Expired(at) {
		b.Query = ""
	}

	b.Query += key
	b.LastKeystroke = at

	return b
}

// Expired reports whether the query has outlived the reset delay at the given time.
func (b Buffer) Expired(at time.Time) bool {
	if b.Query == "" {
		return false
	}

	return at.Sub(b.LastKeystroke) >= b.delay()
}

// Reset clears the query.
func (b Buffer) Reset() Buffer {
	b.Query = ""
	b.LastKeystroke = time.Time{}

	return b
}

// ScheduleClear returns the effect that delivers ev once the delay has passed.
// Scheduling it again re-arms the same timer.
func (b Buffer) ScheduleClear(ev statemachine.Event) host.Schedule {
	return host.Schedule{Timer: TimerKey, After: b.delay(), Event: ev}
}

func (b Buffer) delay() time.Duration {
	if b.ResetDelay > 0 {
		return b.ResetDelay
	}

	return DefaultResetDelay
}
