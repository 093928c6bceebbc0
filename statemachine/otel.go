package statemachine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/amp-labs/amp-a11y/envutil"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName   = "github.com/amp-labs/amp-a11y/statemachine"
	sendSpanName = "statemachine.send"
)

// sendSpan traces one Send. It reads the global tracer provider, which the
// telemetry package installs; without it the span is a no-op.
type sendSpan struct {
	span trace.Span
}

//nolint:spancheck // ended by sendSpan.finish
func traceSend(ctx context.Context, machine string, ev Event) (context.Context, sendSpan) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, sendSpanName,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("machine", machine),
			attribute.String("event", string(eventTypeOf(ev))),
		))

	if traceDebug() {
		sc := span.SpanContext()
		slog.DebugContext(ctx, "send span started",
			"machine", machine,
			"trace_id", sc.TraceID().String(),
			"span_id", sc.SpanID().String())
	}

	return ctx, sendSpan{span: span}
}

// record notes where the machine went.
func (s sendSpan) record(from, to string, changed bool, effects int) {
	s.span.SetAttributes(
		attribute.String("state.from", from),
		attribute.String("state.to", to),
		attribute.Bool("changed", changed),
		attribute.Int("effects", effects),
	)

	outcome := outcomeIgnored
	if changed {
		outcome = outcomeHandled
	}

	s.span.SetStatus(codes.Ok, outcome)
}

// finish must be deferred directly. It ends the span, marking it failed when a
// guard, action or subscriber panicked, and lets the panic continue.
func (s sendSpan) finish() {
	r := recover()
	if r != nil {
		s.span.RecordError(fmt.Errorf("%w: %v", ErrSendPanicked, r))
		s.span.SetStatus(codes.Error, fmt.Sprint(r))
	}

	s.span.End()

	if r != nil {
		panic(r)
	}
}

// traceDebug reports whether A11Y_TRACE_DEBUG asks for span ids in the log. The
// variable is read once per process.
var traceDebug = sync.OnceValue(traceDebugFromEnv) //nolint:gochecknoglobals

func traceDebugFromEnv() bool {
	return envutil.Bool("A11Y_TRACE_DEBUG").ValueOrElse(false)
}
