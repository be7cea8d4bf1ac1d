package render

import (
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/log"
	"github.com/entrepeneur4lyf/shopforge/internal/product"
)

var htmlConverter = md.NewConverter("", true, nil)

// Describe returns the best description of p as markdown. Backends often
// send HTML fragments; those are converted.
func Describe(p product.Product) string {
	text := strings.TrimSpace(p.DetailedDescription)
	if text == "" {
		text = strings.TrimSpace(p.Description)
	}
	if text == "" {
		return ""
	}
	if !looksLikeHTML(text) {
		return text
	}
	converted, err := htmlConverter.ConvertString(text)
	if err != nil {
		log.Debug("failed to convert description html", "id", p.ID, "err", err)
		return text
	}
	return strings.TrimSpace(converted)
}

func looksLikeHTML(s string) bool {
	i := strings.Index(s, "<")
	return i >= 0 && strings.Contains(s[i:], ">")
}

// Markdown renders markdown for the terminal with glamour
type Markdown struct {
	renderer *glamour.TermRenderer
	width    int
}

// NewMarkdown creates a renderer wrapping at width. style is a glamour
// style name; empty picks one from the terminal background.
func NewMarkdown(width int, style string) (*Markdown, error) {
	if width <= 0 {
		width = 80
	}
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == "" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	return &Markdown{renderer: r, width: width}, nil
}

// Width returns the wrap width
func (m *Markdown) Width() int {
	return m.width
}

// Render renders text, falling back to the input when glamour fails
func (m *Markdown) Render(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	if m == nil || m.renderer == nil {
		return text
	}
	out, err := m.renderer.Render(text)
	if err != nil {
		log.Debug("markdown render failed", "err", err)
		return text
	}
	return collapseBlankLines(strings.Trim(out, "\n"))
}

func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	result := make([]string, 0, len(lines))
	blank := 0
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			blank++
			if blank > 1 {
				continue
			}
		} else {
			blank = 0
		}
		result = append(result, line)
	}
	return strings.Join(result, "\n")
}
