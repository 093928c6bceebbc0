//go:build a11y_production

package warning

import "context"

// Enabled reports whether warnings are compiled in.
const Enabled = false

// Warn logs a development warning when ok is false.
// The format and args follow fmt.Sprintf.
func Warn(ctx context.Context, ok bool, format string, args ...any) {
	// Intentionally left blank
}
