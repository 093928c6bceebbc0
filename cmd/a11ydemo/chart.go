package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/amp-labs/amp-a11y/statemachine"
	"github.com/amp-labs/amp-a11y/statemachine/visualizer"
	"github.com/amp-labs/amp-a11y/widgets/checkbox"
	"github.com/amp-labs/amp-a11y/widgets/combobox"
	"github.com/amp-labs/amp-a11y/widgets/disclosure"
)

var (
	errNoChart       = errors.New("widget has no declarative chart")
	errUnknownFormat = errors.New("unknown chart format")
)

// charts lists the widgets whose machines are built from a chart config.
var charts = map[string]func() (*statemachine.ChartConfig, error){ //nolint:gochecknoglobals
	"checkbox":   checkbox.ChartConfig,
	"combobox":   combobox.ChartConfig,
	"disclosure": disclosure.ChartConfig,
}

// printChart writes the widget's chart as a Mermaid ("mermaid") or Graphviz ("dot")
// diagram.
func printChart(w io.Writer, widget, format string) error {
	load, ok := charts[widget]
	if !ok {
		return fmt.Errorf("%w: %s", errNoChart, widget)
	}

	cfg, err := load()
	if err != nil {
		return err
	}

	var out string

	switch format {
	case "mermaid":
		out, err = visualizer.GenerateMermaid(cfg)
	case "dot":
		out, err = visualizer.GenerateDOT(cfg, visualizer.DefaultOptions().Flow(visualizer.LeftRight))
	default:
		return fmt.Errorf("%w: %q", errUnknownFormat, format)
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, out)

	return err
}
