package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var clearHistory bool

// historyCmd prints recent searches
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent searches",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if clearHistory {
			shopApp.History.Clear(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "Search history cleared.")
			return nil
		}
		for i, q := range shopApp.History.List() {
			fmt.Fprintf(cmd.OutOrStdout(), "%2d. %s\n", i+1, q)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().BoolVar(&clearHistory, "clear", false, "Forget recent searches")
}
