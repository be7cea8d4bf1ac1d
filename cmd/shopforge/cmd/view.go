package cmd

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/ansi"
	"github.com/entrepeneur4lyf/shopforge/internal/app"
	"github.com/entrepeneur4lyf/shopforge/internal/render"
	"github.com/spf13/cobra"
)

// viewCmd shows one product with recommendations
var viewCmd = &cobra.Command{
	Use:   "view <product-id>",
	Short: "Show a product from the current results with recommendations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out, err := shopApp.Dispatch(ctx, app.OpenQuickView{ProductID: args[0]})
		if err != nil {
			return err
		}
		defer shopApp.Dispatch(ctx, app.CloseQuickView{})

		if _, err := shopApp.LoadRecommendations(ctx, out.Ticket); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "Recommendations unavailable:", err)
		}
		qv := shopApp.QuickView.View()

		recs := make([]render.Card, 0, len(qv.Recommendations))
		for _, r := range qv.Recommendations {
			recs = append(recs, render.RecommendationCard(r))
		}
		md, err := render.NewMarkdown(lineWidth-30, "notty")
		if err != nil {
			log.Debug("plain description output", "err", err)
		}
		detail := render.Detail{
			Card:            render.NewCard(0, qv.Product, shopApp),
			Description:     md.Render(render.Describe(qv.Product)),
			Colors:          qv.Product.Colors,
			Sizes:           qv.Product.Sizes,
			Recommendations: recs,
			Err:             qv.Err,
		}
		view := styles.DetailView(detail, lineWidth-20)
		if viewPlain {
			view = ansi.Strip(view)
		}
		fmt.Fprintln(cmd.OutOrStdout(), view)
		return nil
	},
}

var viewPlain bool

func init() {
	viewCmd.Flags().BoolVar(&viewPlain, "plain", false, "Strip terminal styling from the output")
}
