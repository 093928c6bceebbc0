package statemachine

import (
	"context"
	"log/slog"
)

// Logger provides logging hooks for machine activity.
type Logger interface {
	EventReceived(ctx context.Context, machine, state string, event EventType)
	EventIgnored(ctx context.Context, machine, state string, event EventType)
	ActionExecuted(ctx context.Context, machine, action string)
	TransitionExecuted(ctx context.Context, machine, from, to string, event EventType)
}

// DefaultLogger implements Logger using slog. Everything is logged at debug level
// since machines see every pointer move and keystroke.
type DefaultLogger struct {
	logger *slog.Logger
}

// NewDefaultLogger creates a logger backed by slog.Default().
func NewDefaultLogger() *DefaultLogger {
	return &DefaultLogger{
		logger: slog.Default(),
	}
}

// NewSlogLogger creates a logger backed by the given slog logger.
func NewSlogLogger(logger *slog.Logger) *DefaultLogger {
	if logger == nil {
		logger = slog.Default()
	}

	return &DefaultLogger{
		logger: logger,
	}
}

func (l *DefaultLogger) EventReceived(ctx context.Context, machine, state string, event EventType) {
	l.logger.DebugContext(ctx, "Event received",
		"machine", machine,
		"state", state,
		"event", string(event),
	)
}

func (l *DefaultLogger) EventIgnored(ctx context.Context, machine, state string, event EventType) {
	l.logger.DebugContext(ctx, "Event ignored",
		"machine", machine,
		"state", state,
		"event", string(event),
	)
}

func (l *DefaultLogger) ActionExecuted(ctx context.Context, machine, action string) {
	fields := []any{
		"machine", machine,
		"action", action,
	}

	if info, ok := MachineInfoFrom(ctx); ok {
		fields = append(fields, "state", info.State)
	}

	l.logger.DebugContext(ctx, "Action executed", fields...)
}

func (l *DefaultLogger) TransitionExecuted(ctx context.Context, machine, from, to string, event EventType) {
	l.logger.DebugContext(ctx, "Transition executed",
		"machine", machine,
		"from", from,
		"to", to,
		"event", string(event),
	)
}
