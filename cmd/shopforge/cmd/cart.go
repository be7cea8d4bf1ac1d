package cmd

import (
	"fmt"

	"github.com/entrepeneur4lyf/shopforge/internal/app"
	"github.com/entrepeneur4lyf/shopforge/internal/cart"
	"github.com/entrepeneur4lyf/shopforge/internal/product"
	"github.com/entrepeneur4lyf/shopforge/internal/render"
	"github.com/spf13/cobra"
)

var cartJSON bool

// cartCmd manages the shopping cart
var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Manage the shopping cart",
}

var cartListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cart items",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		if cartJSON {
			data, err := shopApp.Cart.Export()
			if err != nil {
				return err
			}
			fmt.Fprintln(w, data)
			return nil
		}
		items := shopApp.Cart.Items()
		if len(items) == 0 {
			fmt.Fprintln(w, "Your cart is empty.")
			return nil
		}
		products := make([]product.Product, 0, len(items))
		for _, item := range items {
			products = append(products, item.Product)
		}
		printProducts(w, products, shopApp)
		fmt.Fprintf(w, "%d items, total %s\n", len(items), render.FormatPrice(shopApp.Cart.Total()))
		return nil
	},
}

var cartToggleCmd = &cobra.Command{
	Use:   "toggle <product-id>",
	Short: "Add a product from the current results, or remove it if present",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := shopApp.Dispatch(cmd.Context(), app.ToggleCart{ProductID: args[0]})
		if err != nil {
			return err
		}
		verb := "Added"
		if out.Membership == cart.Removed {
			verb = "Removed"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%d in cart)\n", verb, render.Title(out.Product), out.Count)
		return nil
	},
}

var cartRemoveCmd = &cobra.Command{
	Use:   "remove <product-id>",
	Short: "Remove a product from the cart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !shopApp.Cart.Remove(cmd.Context(), args[0]) {
			return fmt.Errorf("%w: %q is not in the cart", app.ErrProductNotFound, args[0])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s (%d in cart)\n", args[0], shopApp.Cart.Count())
		return nil
	},
}

var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the cart",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		shopApp.Cart.Clear(cmd.Context())
		fmt.Fprintln(cmd.OutOrStdout(), "Cart cleared.")
		return nil
	},
}

var cartOpenCmd = &cobra.Command{
	Use:   "open",
	Short: "Open every cart item's page in the browser",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := shopApp.OpenCart(cmd.Context())
		fmt.Fprintf(cmd.OutOrStdout(), "Opened %d links\n", n)
		return err
	},
}

func init() {
	cartListCmd.Flags().BoolVar(&cartJSON, "json", false, "Print the cart as JSON")
	cartCmd.AddCommand(cartListCmd, cartToggleCmd, cartRemoveCmd, cartClearCmd, cartOpenCmd)
}
