//go:build !a11y_production

package warning

import (
	"context"
	"fmt"

	"github.com/amp-labs/amp-a11y/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Enabled reports whether warnings are compiled in.
const Enabled = true

var warningsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "a11y_warnings_total",
	Help: "Total number of development warnings emitted by subsystem",
}, []string{"subsystem"})

// Warn logs a development warning when ok is false.
// The format and args follow fmt.Sprintf.
func Warn(ctx context.Context, ok bool, format string, args ...any) {
	if ok {
		return
	}

	msg := fmt.Sprintf(format, args...)

	warningsTotal.WithLabelValues(subsystemLabel(ctx)).Inc()
	logger.Get(ctx).WarnContext(nonNil(ctx), "Warning: "+msg)
}

func subsystemLabel(ctx context.Context) string {
	if s := logger.GetSubsystem(ctx); s != "" {
		return s
	}

	return "unknown"
}

func nonNil(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}

	return ctx
}
