package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintChart(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, printChart(&buf, "checkbox", "mermaid"))
	assert.Contains(t, buf.String(), "stateDiagram")

	buf.Reset()
	require.NoError(t, printChart(&buf, "disclosure", "dot"))
	assert.Contains(t, buf.String(), "digraph")

	assert.ErrorIs(t, printChart(&buf, "menu", "mermaid"), errNoChart)
	assert.ErrorIs(t, printChart(&buf, "checkbox", "svg"), errUnknownFormat)
}

func TestParseFlags(t *testing.T) {
	t.Parallel()

	cfg, err := parseFlags([]string{"-widget", "tabs", "-chart", "dot", "-metrics-addr", ":9090"})
	require.NoError(t, err)
	assert.Equal(t, "tabs", cfg.widget)
	assert.Equal(t, "dot", cfg.chart)
	assert.Equal(t, ":9090", cfg.metricsAddr)

	_, err = parseFlags([]string{"-bogus"})
	assert.Error(t, err)
}
