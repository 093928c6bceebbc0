package envutil

// Option adjusts a Reader after the variable has been read and parsed.
type Option[T any] func(Reader[T]) Reader[T]

// Default supplies v when the variable is unset.
func Default[T any](v T) Option[T] {
	return func(r Reader[T]) Reader[T] {
		return r.WithDefault(v)
	}
}

func apply[T any](r Reader[T], opts []Option[T]) Reader[T] {
	for _, opt := range opts {
		r = opt(r)
	}

	return r
}
