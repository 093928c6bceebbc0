// Package logger configures the process-wide slog logger and hands out loggers
// scoped by context: a subsystem name, accumulated key/value pairs and a mute
// switch.
package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"sync"

	"github.com/amp-labs/amp-a11y/envutil"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.uber.org/atomic"
)

var (
	// defaultSubsystem is reported when the context does not name one.
	defaultSubsystem = atomic.NewString("") //nolint:gochecknoglobals

	// configureMu serializes changes to slog.Default and log.Default.
	configureMu sync.Mutex //nolint:gochecknoglobals

	discard = slog.New(slog.DiscardHandler) //nolint:gochecknoglobals
)

// ErrInvalidLogOutput is returned when LOG_OUTPUT names neither stdout nor stderr.
var ErrInvalidLogOutput = errors.New("invalid log output")

// Options is used to configure logging.
type Options struct {
	Subsystem string
	JSON      bool
	MinLevel  slog.Level
	// LegacyLevel is the level given to lines written through the log package.
	LegacyLevel slog.Level
	Output      io.Writer
	// OTel also sends every record to the global OpenTelemetry logger provider.
	OTel bool
}

func (o Options) handler() slog.Handler {
	out := o.Output
	if out == nil {
		out = os.Stdout
	}

	ho := &slog.HandlerOptions{Level: o.MinLevel}

	var h slog.Handler = slog.NewTextHandler(out, ho)
	if o.JSON {
		h = slog.NewJSONHandler(out, ho)
	}

	if o.OTel {
		h = fanout{h, otelslog.NewHandler(o.Subsystem)}
	}

	return h
}

// ConfigureLoggingWithOptions installs a logger built from opts as slog.Default and
// redirects the log package into it. Safe for concurrent use.
func ConfigureLoggingWithOptions(opts Options) *slog.Logger {
	configureMu.Lock()
	defer configureMu.Unlock()

	h := opts.handler()
	l := slog.New(h)

	slog.SetDefault(l)
	*log.Default() = *slog.NewLogLogger(h, opts.LegacyLevel)

	defaultSubsystem.Store(opts.Subsystem)

	return l
}

// Option adjusts the options ConfigureLogging reads from the environment.
type Option func(*Options)

// WithOTel routes records to OpenTelemetry as well. Call telemetry.Initialize first
// so the global logger provider is set.
func WithOTel() Option {
	return func(o *Options) { o.OTel = true }
}

// WithOutput overrides LOG_OUTPUT.
func WithOutput(w io.Writer) Option {
	return func(o *Options) { o.Output = w }
}

// ConfigureLogging configures logging from LOG_JSON, LOG_LEVEL, LEGACY_LOG_LEVEL and
// LOG_OUTPUT, then applies opts. It returns the new default logger.
func ConfigureLogging(ctx context.Context, app string, opts ...Option) (*slog.Logger, error) {
	options, err := optionsFromEnv(app)
	if err != nil {
		return nil, err
	}

	for _, opt := range opts {
		opt(&options)
	}

	l := ConfigureLoggingWithOptions(options)
	l.DebugContext(ctx, "Logging configured", "json", options.JSON, "level", options.MinLevel.String())

	return l, nil
}

func optionsFromEnv(app string) (Options, error) {
	options := Options{Subsystem: app}

	var err error

	if options.JSON, err = envutil.Bool("LOG_JSON", envutil.Default(false)).Value(); err != nil {
		return options, err
	}

	if options.MinLevel, err = envutil.SlogLevel("LOG_LEVEL", envutil.Default(slog.LevelInfo)).Value(); err != nil {
		return options, err
	}

	legacy := envutil.SlogLevel("LEGACY_LOG_LEVEL", envutil.Default(slog.LevelInfo))
	if options.LegacyLevel, err = legacy.Value(); err != nil {
		return options, err
	}

	output := envutil.Map(envutil.String("LOG_OUTPUT", envutil.Default("stdout")), namedOutput)
	if options.Output, err = output.Value(); err != nil {
		return options, err
	}

	return options, nil
}

func namedOutput(name string) (io.Writer, error) {
	switch name {
	case "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidLogOutput, name)
	}
}

type scopeKey struct{}

// scope is what a context carries for Get. Each With* call stores a copy.
type scope struct {
	subsystem string
	muted     bool
	values    []any
}

func scopeOf(ctx context.Context) scope {
	if ctx == nil {
		return scope{}
	}

	s, _ := ctx.Value(scopeKey{}).(scope)

	return s
}

func withScope(ctx context.Context, edit func(*scope)) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	s := scopeOf(ctx)
	edit(&s)

	return context.WithValue(ctx, scopeKey{}, s)
}

// WithMuted returns a context whose loggers write nothing while muted is true.
func WithMuted(ctx context.Context, muted bool) context.Context {
	return withScope(ctx, func(s *scope) { s.muted = muted })
}

// WithSubsystem overrides the subsystem for loggers obtained from ctx.
func WithSubsystem(ctx context.Context, subsystem string) context.Context {
	return withScope(ctx, func(s *scope) { s.subsystem = subsystem })
}

// GetSubsystem returns the subsystem set on ctx, or the configured default.
func GetSubsystem(ctx context.Context) string {
	if s := scopeOf(ctx).subsystem; s != "" {
		return s
	}

	return defaultSubsystem.Load()
}

// With returns a context whose loggers carry values in addition to any added
// earlier.
func With(ctx context.Context, values ...any) context.Context {
	if len(values) == 0 && ctx != nil {
		return ctx
	}

	return withScope(ctx, func(s *scope) {
		s.values = append(s.values[:len(s.values):len(s.values)], values...)
	})
}

func getValues(ctx context.Context) []any {
	return scopeOf(ctx).values
}

// Get returns the default logger tagged with the subsystem and values of the first
// non-nil context. A muted context gets a logger that writes nothing.
func Get(ctx ...context.Context) *slog.Logger {
	var c context.Context

	for _, candidate := range ctx {
		if candidate != nil {
			c = candidate

			break
		}
	}

	s := scopeOf(c)
	if s.muted {
		return discard
	}

	l := slog.Default().With("subsystem", GetSubsystem(c))
	if len(s.values) > 0 {
		l = l.With(s.values...)
	}

	return l
}

// fanout sends each record to every handler that accepts its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}

	return false
}

func (f fanout) Handle(ctx context.Context, record slog.Record) error {
	var errs []error

	for _, h := range f {
		if h.Enabled(ctx, record.Level) {
			errs = append(errs, h.Handle(ctx, record.Clone()))
		}
	}

	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	return f.each(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (f fanout) WithGroup(name string) slog.Handler {
	return f.each(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (f fanout) each(fn func(slog.Handler) slog.Handler) fanout {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = fn(h)
	}

	return out
}
