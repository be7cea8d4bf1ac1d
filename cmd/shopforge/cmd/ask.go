package cmd

import (
	"strings"

	"github.com/entrepeneur4lyf/shopforge/internal/app"
	"github.com/spf13/cobra"
)

var newSession bool

// askCmd sends one message and prints the reply and results
var askCmd = &cobra.Command{
	Use:   "ask <message>",
	Short: "Ask the assistant once and print the results",
	Long: `Send a single message to the shopping assistant in the current search
and print the reply followed by any products it found.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if newSession {
			if _, err := shopApp.Dispatch(ctx, app.NewSearch{}); err != nil {
				return err
			}
		}
		out, err := shopApp.Dispatch(ctx, app.SendMessage{Text: strings.Join(args, " ")})
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		printReply(w, out.Chat.Reply)
		if out.Chat.Failed {
			return nil
		}
		printProducts(w, shopApp.Visible(), shopApp)
		return nil
	},
}

func init() {
	askCmd.Flags().BoolVarP(&newSession, "new", "n", false, "Start a new search instead of continuing the current one")
}
