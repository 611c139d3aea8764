package cli

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"klassart-storefront/internal/domain"
	"klassart-storefront/internal/service/cart"
	"klassart-storefront/internal/service/payment"
)

// cartView adds the grand total to the cart summary.
type cartView struct {
	domain.CartSummary `yaml:",inline"`
	GrandTotal         string `json:"grand_total" yaml:"grandTotal"`
}

func newCartCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show the cart",
		RunE: run(a, func(ctx context.Context, _ []string) error {
			summary, err := a.carts.Get(ctx)
			if err != nil {
				return err
			}
			return a.render(cartView{CartSummary: summary, GrandTotal: payment.Total(summary)})
		}),
	}

	var price float64
	var qty int
	add := &cobra.Command{
		Use:   "add <post-id>",
		Short: "Add a product to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: run(a, func(ctx context.Context, args []string) error {
			if err := a.carts.Add(ctx, args[0], price, qty); err != nil {
				return err
			}
			a.printf("Added %s to cart", args[0])
			return nil
		}),
	}
	add.Flags().Float64Var(&price, "price", 0, "Unit price (defaults to "+strconv.Itoa(cart.DefaultUnitPrice)+")")
	add.Flags().IntVar(&qty, "qty", 1, "Quantity")

	cmd.AddCommand(
		add,
		&cobra.Command{
			Use:   "remove <cart-id>",
			Short: "Remove a cart line",
			Args:  cobra.ExactArgs(1),
			RunE: run(a, func(ctx context.Context, args []string) error {
				if err := a.carts.Remove(ctx, args[0]); err != nil {
					return err
				}
				a.printf("Removed %s", args[0])
				return nil
			}),
		},
		&cobra.Command{
			Use:   "empty",
			Short: "Remove every cart line",
			RunE: run(a, func(ctx context.Context, _ []string) error {
				if err := a.carts.Empty(ctx); err != nil {
					return err
				}
				a.printf("Cart emptied")
				return nil
			}),
		},
	)
	return cmd
}
