package alert

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// rendersTotal counts region flushes by level and outcome (rendered or unchanged).
var rendersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "a11y_alert_region_renders_total",
	Help: "Total number of live region flushes by level and outcome (rendered or unchanged)",
}, []string{"level", "outcome"})
