package toast

import (
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/entrepeneur4lyf/shopforge/internal/tui/themes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToastShowAndDismiss(t *testing.T) {
	th := themes.Get(themes.DefaultName)
	tm := NewToastManager(th)

	msg := NewErrorToast("Product not found", th)()
	tm, cmd := tm.Update(msg)
	require.NotNil(t, cmd)
	require.Len(t, tm.Toasts(), 1)

	view := ansi.Strip(tm.View(90))
	assert.Contains(t, view, "Error")
	assert.Contains(t, view, "Product not found")

	tm, _ = tm.Update(DismissToastMsg{ID: tm.Toasts()[0].ID})
	assert.Empty(t, tm.Toasts())
	assert.Equal(t, "bg", tm.RenderOverlay(10, 1, "bg"))
}

func TestToastStackIsBounded(t *testing.T) {
	th := themes.Get(themes.DefaultName)
	tm := NewToastManager(th)
	for _, text := range []string{"a", "b", "c", "d"} {
		tm, _ = tm.Update(NewInfoToast(text, th)())
	}
	toasts := tm.Toasts()
	require.Len(t, toasts, maxToasts)
	assert.Equal(t, "b", toasts[0].Message)
}
