package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// NewRootCmd builds the storefront command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "storefront",
		Short: "KlassArt storefront client",
		Long: `Storefront drives the KlassArt print-on-demand shop through the proxy gateway.

Generate images from prompts or pictures, print them onto articles, browse the
marketplace, manage the cart and check out. The login session is kept in the
configured session store (file, postgres or redis).`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&a.format, "output", "o", formatYAML, "Output format: yaml or json")
	cmd.PersistentFlags().StringVar(&a.gateway, "gateway", "", "Proxy gateway URL (overrides GATEWAY_URL)")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log client activity to stderr")

	cmd.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newAccountCmd(a),
		newFiltersCmd(a),
		newProductsCmd(a),
		newProductCmd(a),
		newStudioCmd(a),
		newCartCmd(a),
		newCheckoutCmd(a),
		newPlanCmd(a),
		newDashboardCmd(a),
		newNotificationsCmd(a),
	)
	return cmd
}

// run opens the app before fn and routes output to the command's writers.
func run(a *app, fn func(ctx context.Context, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a.out = cmd.OutOrStdout()
		a.errOut = cmd.ErrOrStderr()
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		defer a.close()
		if err := a.open(ctx); err != nil {
			return err
		}
		return fn(ctx, args)
	}
}
