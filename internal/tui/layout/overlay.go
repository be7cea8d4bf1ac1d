package layout

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Position represents where to place an overlay
type Position int

const (
	Center Position = iota
	Top
	Bottom
	TopRight
	BottomRight
)

// PlaceOverlay places content over a background at the specified position.
// Both strings may contain ANSI styling; cells outside the overlay keep the
// background's styling.
func PlaceOverlay(width, height int, overlay, background string, pos Position) string {
	overlayLines := strings.Split(overlay, "\n")
	overlayHeight := len(overlayLines)
	overlayWidth := lipgloss.Width(overlay)

	var x, y int
	switch pos {
	case Center:
		x = (width - overlayWidth) / 2
		y = (height - overlayHeight) / 2
	case Top:
		x = (width - overlayWidth) / 2
	case Bottom:
		x = (width - overlayWidth) / 2
		y = height - overlayHeight
	case TopRight:
		x = width - overlayWidth - 1
		y = 1
	case BottomRight:
		x = width - overlayWidth - 1
		y = height - overlayHeight - 1
	}
	return PlaceAt(width, height, max(x, 0), max(y, 0), overlay, background)
}

// PlaceAt draws overlay with its top-left corner at column x, row y
func PlaceAt(width, height, x, y int, overlay, background string) string {
	bgLines := strings.Split(background, "\n")
	for len(bgLines) < height {
		bgLines = append(bgLines, "")
	}

	for i, line := range strings.Split(overlay, "\n") {
		row := y + i
		if row < 0 || row >= len(bgLines) {
			continue
		}
		bg := bgLines[row]
		if w := ansi.StringWidth(bg); w < width {
			bg += strings.Repeat(" ", width-w)
		}
		lineWidth := ansi.StringWidth(line)
		left := ansi.Truncate(bg, x, "")
		right := ansi.TruncateLeft(bg, x+lineWidth, "")
		bgLines[row] = left + line + "\x1b[0m" + right
	}

	if height > 0 && len(bgLines) > height {
		bgLines = bgLines[:height]
	}
	return strings.Join(bgLines, "\n")
}
