package cmd

import (
	"fmt"

	"github.com/entrepeneur4lyf/shopforge/internal/app"
	"github.com/entrepeneur4lyf/shopforge/internal/cart"
	"github.com/spf13/cobra"
)

// favoritesCmd manages saved products
var favoritesCmd = &cobra.Command{
	Use:     "favorites",
	Aliases: []string{"fav"},
	Short:   "Manage favorite products",
}

var favoritesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List favorites",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		items := shopApp.Favorites.Items()
		if len(items) == 0 {
			fmt.Fprintln(w, "No favorites yet.")
			return nil
		}
		for _, f := range items {
			line := fmt.Sprintf("%-12s %s", f.ID, f.Name())
			if f.Product != nil && f.Product.PriceText != "" {
				line += "  " + f.Product.PriceText
			}
			fmt.Fprintln(w, line)
		}
		return nil
	},
}

var favoritesToggleCmd = &cobra.Command{
	Use:   "toggle <product-id>",
	Short: "Favorite a product from the current results, or unfavorite it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := shopApp.Dispatch(cmd.Context(), app.ToggleFavorite{ProductID: args[0]})
		if err != nil {
			return err
		}
		verb := "Added"
		if out.Membership == cart.Removed {
			verb = "Removed"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%d favorites)\n", verb, args[0], out.Count)
		return nil
	},
}

var favoritesClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every favorite",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		shopApp.Favorites.Clear(cmd.Context())
		fmt.Fprintln(cmd.OutOrStdout(), "Favorites cleared.")
		return nil
	},
}

func init() {
	favoritesCmd.AddCommand(favoritesListCmd, favoritesToggleCmd, favoritesClearCmd)
}
