package layout

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
)

func TestPlaceOverlayCenter(t *testing.T) {
	bg := strings.Repeat(strings.Repeat(".", 10)+"\n", 4) + strings.Repeat(".", 10)
	out := PlaceOverlay(10, 5, "XX\nXX", bg, Center)

	lines := strings.Split(ansi.Strip(out), "\n")
	assert.Len(t, lines, 5)
	assert.Equal(t, "..........", lines[0])
	assert.Equal(t, "....XX....", lines[1])
	assert.Equal(t, "....XX....", lines[2])
	assert.Equal(t, "..........", lines[4])
}

func TestPlaceAtPadsShortBackground(t *testing.T) {
	out := PlaceAt(6, 2, 4, 1, "ab", "x")
	lines := strings.Split(ansi.Strip(out), "\n")
	assert.Equal(t, []string{"x", "    ab"}, lines)
}

func TestPlaceAtKeepsStyledBackground(t *testing.T) {
	bg := "\x1b[31mredredred\x1b[0m"
	out := PlaceAt(9, 1, 3, 0, "__", bg)
	assert.Equal(t, "red__dred", ansi.Strip(out))
}

func TestPlaceOverlayClampsLargeOverlay(t *testing.T) {
	out := PlaceOverlay(4, 2, "abcdef", "....\n....", Center)
	assert.Equal(t, "abcdef", strings.Split(ansi.Strip(out), "\n")[0])
}
