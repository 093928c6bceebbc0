//go:build !a11y_production

package tabs

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/amp-labs/amp-a11y/logger"
	"github.com/stretchr/testify/assert"
)

func TestTabsWarnsWhenReadOnlyByAccident(t *testing.T) { //nolint:paralleltest
	var buf bytes.Buffer

	logger.ConfigureLoggingWithOptions(logger.Options{
		Subsystem: "tabs-test",
		JSON:      true,
		MinLevel:  slog.LevelDebug,
		Output:    &buf,
	})

	ctx := context.Background()

	New(ctx, Options{Index: ptr(0), HandlesChange: true}, nil)
	New(ctx, Options{Index: ptr(0), ReadOnly: true}, nil)
	assert.Empty(t, buf.String())

	New(ctx, Options{Index: ptr(0)}, nil)
	assert.Contains(t, buf.String(), "without an `onChange` handler")
}
