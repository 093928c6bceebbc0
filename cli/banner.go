package cli

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

const (
	boxTopLeft     = "╒"
	boxBottomLeft  = "└"
	boxTopRight    = "╕"
	boxBottomRight = "┘"
	boxSide        = "│"
	boxTop         = "═"
	boxBottom      = "─"
	dividerLeft    = "┠"
	dividerMiddle  = "─"
	dividerRight   = "┨"
	ellipsis       = "…"
)

// Alignment positions text inside a frame.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight

	framePadding = 2
)

// Divider is a horizontal rule width cells wide.
func Divider(width int) string {
	if width < framePadding {
		return ""
	}

	return dividerLeft + strings.Repeat(dividerMiddle, width-framePadding) + dividerRight
}

// Frame draws a box width cells wide around text, one output line per input line.
// Lines wider than the box are cut with an ellipsis. Widths are display cells, so
// wide runes take two.
func Frame(text string, width int, alignment Alignment) []string {
	if width <= framePadding {
		return nil
	}

	inner := width - framePadding
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	out := make([]string, 0, len(lines)+framePadding)
	out = append(out, boxTopLeft+strings.Repeat(boxTop, inner)+boxTopRight)

	for _, l := range lines {
		out = append(out, boxSide+Pad(l, inner, alignment)+boxSide)
	}

	return append(out, boxBottomLeft+strings.Repeat(boxBottom, inner)+boxBottomRight)
}

// Pad fits text into exactly width cells.
func Pad(text string, width int, alignment Alignment) string {
	if runewidth.StringWidth(text) > width {
		text = runewidth.Truncate(text, width, ellipsis)
	}

	diff := width - runewidth.StringWidth(text)

	switch alignment {
	case AlignCenter:
		left := diff / framePadding

		return strings.Repeat(" ", left) + text + strings.Repeat(" ", diff-left)
	case AlignRight:
		return strings.Repeat(" ", diff) + text
	case AlignLeft:
		return text + strings.Repeat(" ", diff)
	default:
		return text + strings.Repeat(" ", diff)
	}
}
