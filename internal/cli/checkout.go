package cli

import (
	"context"

	"github.com/spf13/cobra"

	"klassart-storefront/internal/domain"
)

func confirmationFlags(cmd *cobra.Command, c *domain.PaymentConfirmation) {
	cmd.Flags().StringVar(&c.PaymentID, "payment-id", "", "Gateway payment id")
	cmd.Flags().StringVar(&c.OrderID, "order-id", "", "Gateway order id")
	cmd.Flags().StringVar(&c.Signature, "signature", "", "Gateway signature")
}

func newCheckoutCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Create a payment order for the cart",
		Long: `Checkout creates a payment gateway order for the cart total. Complete the
payment in the gateway overlay, then pass its identifiers to "checkout confirm".`,
		RunE: run(a, func(ctx context.Context, _ []string) error {
			if _, err := a.profile(ctx); err != nil {
				return err
			}
			summary, err := a.carts.Get(ctx)
			if err != nil {
				return err
			}
			order, err := a.payments.Process(ctx, summary)
			if err != nil {
				return err
			}
			return a.render(order)
		}),
	}

	var total string
	var conf domain.PaymentConfirmation
	confirm := &cobra.Command{
		Use:   "confirm",
		Short: "Validate a completed payment and place the order",
		RunE: run(a, func(ctx context.Context, _ []string) error {
			if err := a.payments.Validate(ctx, total, conf); err != nil {
				return err
			}
			a.printf("Payment successful! Your order has been placed.")
			return nil
		}),
	}
	confirm.Flags().StringVar(&total, "total", "", "Total the order was created for")
	confirmationFlags(confirm, &conf)
	cmd.AddCommand(confirm)
	return cmd
}

func newPlanCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the active subscription or the plans on offer",
		RunE: run(a, func(ctx context.Context, _ []string) error {
			profile, err := a.profile(ctx)
			if err != nil {
				return err
			}
			info, err := a.billing.ResolvePlan(ctx, profile)
			if err != nil {
				return err
			}
			return a.render(info)
		}),
	}

	subscribe := &cobra.Command{
		Use:   "subscribe <plan-id>",
		Short: "Create a payment order for a plan",
		Args:  cobra.ExactArgs(1),
		RunE: run(a, func(ctx context.Context, args []string) error {
			checkout, err := a.billing.SaveStartBilling(ctx, args[0])
			if err != nil {
				return err
			}
			return a.render(checkout)
		}),
	}

	var conf domain.PaymentConfirmation
	confirm := &cobra.Command{
		Use:   "confirm <plan-id>",
		Short: "Activate a plan after payment",
		Args:  cobra.ExactArgs(1),
		RunE: run(a, func(ctx context.Context, args []string) error {
			if err := a.billing.Callback(ctx, args[0], conf); err != nil {
				return err
			}
			a.printf("Subscription activated successfully!")
			return nil
		}),
	}
	confirmationFlags(confirm, &conf)

	cmd.AddCommand(subscribe, confirm)
	return cmd
}
