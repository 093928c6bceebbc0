package typeahead

import (
	"testing"
	"time"

	"github.com/amp-labs/amp-a11y/host"
	"github.com/amp-labs/amp-a11y/statemachine"
	"github.com/stretchr/testify/assert"
)

type country struct {
	name     string
	disabled bool
}

func (c country) Label() string    { return c.name }
func (c country) IsDisabled() bool { return c.disabled }

var countries = []country{
	{name: "Argentina"},
	{name: "Cameroon", disabled: true},
	{name: "Canada"},
	{name: "Chile"},
	{name: "Côte d'Ivoire"},
	{name: ""},
}

func TestMatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query string
		want  string
		index int
		ok    bool
	}{
		{"single prefix", "ch", "Chile", 3, true},
		{"case insensitive", "CA", "Canada", 2, true},
		{"skips disabled", "cam", "", -1, false},
		{"first in order", "c", "Canada", 2, true},
		{"narrowing", "ca", "Canada", 2, true},
		{"unicode fold", "CÔTE", "Côte d'Ivoire", 4, true},
		{"no match", "z", "", -1, false},
		{"empty query", "", "", -1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			item, index, ok := Match(countries, tt.query)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.index, index)
			assert.Equal(t, tt.want, item.name)
		})
	}
}

func TestMatchNormalizesDecomposedInput(t *testing.T) {
	t.Parallel()

	// "Co" followed by a combining circumflex.
	_, index, ok := Match(countries, "Co\u0302")
	assert.True(t, ok)
	assert.Equal(t, 4, index)
	assert.True(t, HasPrefix("École", "éc"))
}

func TestBuffer(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	var buf Buffer

	assert.False(t, buf.Expired(start))

	buf = buf.Append("c", start)
	buf = buf.Append("a", start.Add(400*time.Millisecond))
	assert.Equal(t, "ca", buf.Query)
	assert.False(t, buf.Expired(start.Add(1399*time.Millisecond)))
	assert.True(t, buf.Expired(start.Add(1400*time.Millisecond)))

	buf = buf.Append("n", start.Add(2*time.Second))
	assert.Equal(t, "n", buf.Query, "stale query starts over")

	buf = buf.Reset()
	assert.Empty(t, buf.Query)
	assert.True(t, buf.LastKeystroke.IsZero())
}

type clearQuery struct{}

func (clearQuery) Type() statemachine.EventType { return "CLEAR_TYPEAHEAD" }

func TestScheduleClear(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		host.Schedule{Timer: TimerKey, After: time.Second, Event: clearQuery{}},
		Buffer{}.ScheduleClear(clearQuery{}))

	assert.Equal(t, 250*time.Millisecond, Buffer{ResetDelay: 250 * time.Millisecond}.ScheduleClear(clearQuery{}).After)
}
