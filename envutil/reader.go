package envutil

import (
	"errors"
	"fmt"
	"log/slog"
)

var (
	ErrBadEnvVar     = errors.New("error parsing environment variable")
	ErrEnvVarMissing = errors.New("missing environment variable")
)

// Reader is the outcome of reading one environment variable: the parsed value,
// whether the variable was set, and the parse error if there was one.
type Reader[T any] struct {
	key     string
	present bool
	err     error

	value T
}

// Key names the variable the Reader was built from.
func (r Reader[T]) Key() string {
	return r.key
}

// Value returns the parsed value. The error wraps ErrBadEnvVar when parsing failed
// and ErrEnvVarMissing when the variable was unset and no default was given.
func (r Reader[T]) Value() (T, error) { //nolint:ireturn
	if r.err != nil {
		return r.value, fmt.Errorf("%w %s: %w", ErrBadEnvVar, r.key, r.err)
	}

	if !r.present {
		return r.value, fmt.Errorf("%w %s", ErrEnvVarMissing, r.key)
	}

	return r.value, nil
}

// ValueOrElse returns fallback unless the variable holds a valid value. A bad value
// is logged before falling back.
func (r Reader[T]) ValueOrElse(fallback T) T { //nolint:ireturn
	if r.HasValue() {
		return r.value
	}

	if r.err != nil {
		slog.Warn("Ignoring bad environment variable", "key", r.key, "error", r.err, "fallback", fallback)
	}

	return fallback
}

// HasValue reports whether a value was read or defaulted without error.
func (r Reader[T]) HasValue() bool {
	return r.present && r.err == nil
}

func (r Reader[T]) Error() error {
	return r.err
}

// WithDefault fills in v when the variable was unset. Parse errors are kept.
func (r Reader[T]) WithDefault(v T) Reader[T] { //nolint:ireturn
	if r.present || r.err != nil {
		return r
	}

	return Reader[T]{key: r.key, present: true, value: v}
}

// Map parses or converts a present value. Missing and failed readers pass through
// with their key and error.
func Map[A, B any](r Reader[A], f func(A) (B, error)) Reader[B] {
	out := Reader[B]{key: r.key, present: r.present, err: r.err}
	if !r.HasValue() {
		return out
	}

	out.value, out.err = f(r.value)

	return out
}
