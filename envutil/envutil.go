// Package envutil reads typed values from environment variables. Every reader treats
// an empty variable the same as an unset one.
package envutil

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

func get(key string) Reader[string] {
	val, ok := os.LookupEnv(key)

	return Reader[string]{key: key, present: ok && val != "", value: val}
}

func trimmed(key string) Reader[string] {
	r := Map(get(key), func(s string) (string, error) { return strings.TrimSpace(s), nil })
	if r.value == "" {
		r.present = false
	}

	return r
}

// String reads key as is.
func String(key string, opts ...Option[string]) Reader[string] {
	return apply(get(key), opts)
}

// Bool reads key with strconv.ParseBool, so "1", "t" and "TRUE" all count as true.
func Bool(key string, opts ...Option[bool]) Reader[bool] {
	return apply(Map(trimmed(key), strconv.ParseBool), opts)
}

// Duration reads key with time.ParseDuration.
func Duration(key string, opts ...Option[time.Duration]) Reader[time.Duration] {
	return apply(Map(trimmed(key), time.ParseDuration), opts)
}

// SlogLevel reads a level name such as "debug" or "WARN+2".
func SlogLevel(key string, opts ...Option[slog.Level]) Reader[slog.Level] {
	parse := func(s string) (slog.Level, error) {
		var level slog.Level

		err := level.UnmarshalText([]byte(s))

		return level, err
	}

	return apply(Map(trimmed(key), parse), opts)
}
