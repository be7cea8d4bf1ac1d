package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/entrepeneur4lyf/shopforge/internal/product"
	"github.com/entrepeneur4lyf/shopforge/internal/render"
	"github.com/entrepeneur4lyf/shopforge/internal/session"
)

// lineWidth bounds listing lines
const lineWidth = 100

var styles = render.DefaultStyles()

func printProducts(w io.Writer, products []product.Product, m render.Membership) {
	if len(products) == 0 {
		fmt.Fprintln(w, "No products.")
		return
	}
	for _, c := range render.Cards(products, m) {
		fmt.Fprintln(w, styles.ListLine(c, lineWidth))
	}
}

func printReply(w io.Writer, text string) {
	md, err := render.NewMarkdown(lineWidth-20, "notty")
	if err != nil {
		log.Debug("plain reply output", "err", err)
	}
	fmt.Fprintln(w, md.Render(text))
}

func printTranscript(w io.Writer, s *session.Session) {
	for _, m := range s.ConversationHistory {
		role := "You"
		if m.Role == session.RoleAssistant {
			role = "Assistant"
		}
		fmt.Fprintf(w, "%s: %s\n", role, m.Content)
	}
}

func sessionLine(s *session.Session, current bool) string {
	marker := " "
	if current {
		marker = "*"
	}
	line := fmt.Sprintf("%s %s  %s  (%d msgs, %d products)", marker, s.ID, s.Title, len(s.ConversationHistory), len(s.Products))
	if len(s.ActiveFilters) > 0 {
		line += "  [" + strings.Join(s.ActiveFilters, ", ") + "]"
	}
	return line
}
