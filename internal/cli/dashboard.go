package cli

import (
	"context"

	"github.com/spf13/cobra"

	"klassart-storefront/internal/domain"
	"klassart-storefront/internal/service/customer"
)

func newDashboardCmd(a *app) *cobra.Command {
	var (
		page   int
		query  string
		tab    string
		search string
	)
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show the seller overview",
		RunE: run(a, func(ctx context.Context, _ []string) error {
			dash, err := a.customers.Dashboard(ctx, page, query)
			if err != nil {
				return err
			}
			dash.Posts = customer.FilterDashboard(dash.Posts, tab, search)
			if dash.Posts == nil {
				dash.Posts = []domain.DashboardPost{}
			}
			return a.render(dash)
		}),
	}
	cmd.Flags().IntVar(&page, "page", 1, "Result page")
	cmd.Flags().StringVar(&query, "query", "", "Server side search query")
	cmd.Flags().StringVar(&tab, "tab", customer.TabAll, "Tab: All, Active or Sale")
	cmd.Flags().StringVar(&search, "search", "", "Match post names")
	return cmd
}

func newNotificationsCmd(a *app) *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "Show account notifications",
		RunE: run(a, func(ctx context.Context, _ []string) error {
			items, err := a.customers.Notifications(ctx, page)
			if err != nil {
				return err
			}
			return a.render(items)
		}),
	}
	cmd.Flags().IntVar(&page, "page", 1, "Result page")
	return cmd
}
