package statemachine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric definitions with appropriate labels.
var (
	// eventsTotal counts events by machine, source state, event type and outcome (handled or ignored).
	eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "a11y_statemachine_events_total",
		Help: "Total number of events sent to machines by machine, state, event and outcome (handled or ignored)",
	}, []string{"machine", "state", "event", "outcome"})

	// transitionsTotal counts state changes.
	transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "a11y_statemachine_transitions_total",
		Help: "Total number of state transitions by machine, from_state and to_state",
	}, []string{"machine", "from_state", "to_state"})

	// sendDuration tracks how long a single Send takes, subscribers excluded.
	sendDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "a11y_statemachine_send_duration_seconds",
		Help:    "Duration of a single event dispatch by machine and outcome",
		Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
	}, []string{"machine", "outcome"})
)

func sanitizeMachine(name string) string {
	if name == "" {
		return "unknown"
	}

	return name
}
