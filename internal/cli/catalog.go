package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"klassart-storefront/internal/domain"
	"klassart-storefront/internal/service/cart"
	"klassart-storefront/internal/service/generation"
	"klassart-storefront/internal/service/product"
	"klassart-storefront/internal/workflow"
)

func newFiltersCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "filters",
		Short: "Show article styles, orientations and articles",
		RunE: run(a, func(ctx context.Context, _ []string) error {
			data, err := a.products.Filters(ctx)
			if err != nil {
				return err
			}
			return a.render(data)
		}),
	}
}

func newProductsCmd(a *app) *cobra.Command {
	var (
		page     int
		query    string
		sortKey  string
		featured bool
		criteria domain.FilterCriteria
	)
	cmd := &cobra.Command{
		Use:   "products",
		Short: "List marketplace products",
		Example: `  storefront products --search sunset --sort price-low
  storefront products --orientation 1 --orientation 3 --price 0-500
  storefront products --featured`,
		RunE: run(a, func(ctx context.Context, _ []string) error {
			var (
				list []domain.Product
				err  error
			)
			if featured {
				list, err = a.products.Featured(ctx)
			} else {
				list, err = a.products.List(ctx, page, query)
			}
			if err != nil {
				return err
			}
			list = product.Sort(product.Apply(list, criteria), sortKey)
			return a.render(list)
		}),
	}
	cmd.Flags().IntVar(&page, "page", 1, "Result page")
	cmd.Flags().StringVar(&query, "query", "", "Server side search query")
	cmd.Flags().BoolVar(&featured, "featured", false, "Show the featured rail instead of the listing")
	cmd.Flags().StringVar(&sortKey, "sort", "", "Sort: price-low, price-high, name-az or name-za")
	cmd.Flags().StringVar(&criteria.Search, "search", "", "Match name, description, category or author")
	cmd.Flags().StringSliceVar(&criteria.OrientationIDs, "orientation", nil, "Orientation ids, any of which must match")
	cmd.Flags().StringVar(&criteria.ArticleStyleID, "category", "", "Article category id")
	cmd.Flags().StringVar(&criteria.SubCategoryID, "subcategory", "", "Sub-category id")
	cmd.Flags().StringVar(&criteria.ArticleType, "article-type", "", "Article type")
	cmd.Flags().StringVar(&criteria.PriceRange, "price", "", "Inclusive price range min-max")
	return cmd
}

// productView is what `product` prints.
type productView struct {
	Product    workflow.Snapshot    `json:"workflow" yaml:"workflow"`
	Thumbnails []workflow.Thumbnail `json:"thumbnails" yaml:"thumbnails"`
	Price      string               `json:"price" yaml:"price"`
	AddedQty   int                  `json:"added_qty,omitempty" yaml:"addedQty,omitempty"`
}

func newProductCmd(a *app) *cobra.Command {
	var (
		articleID   string
		orientation string
		qty         int
		addToCart   bool
	)
	cmd := &cobra.Command{
		Use:   "product <post-id>",
		Short: "Show a product, optionally printed onto an article and added to the cart",
		Example: `  storefront product 12
  storefront product 12 --article 7 --orientation 3 --add-to-cart --qty 2`,
		Args: cobra.ExactArgs(1),
		RunE: run(a, func(ctx context.Context, args []string) error {
			m := workflow.New(generation.ProductDetailBinding(a.backend, a.products))

			// The product and the article catalogue load side by side.
			var filters domain.FilterData
			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return m.Generate(gctx, workflow.Request{PostID: args[0], Size: orientation})
			})
			if articleID != "" {
				g.Go(func() error {
					var err error
					filters, err = a.products.Filters(gctx)
					return err
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			if articleID != "" {
				article, ok := filters.FindArticle(articleID)
				if !ok {
					return fmt.Errorf("article %s: %w", articleID, domain.ErrNotFound)
				}
				if err := m.SelectArticle(article); err != nil {
					return err
				}
				if _, err := m.Customize(ctx); err != nil {
					return err
				}
			}

			// The price is what the commit charges, so it is read before a
			// commit clears the customization.
			view := productView{Price: displayPrice(m.Snapshot())}
			if addToCart {
				view.AddedQty = m.SetQuantity(cart.ClampQuantity(qty))
				if err := m.Commit(ctx, generation.AddToCart{Cart: a.carts}); err != nil {
					return err
				}
				a.printf("Added to cart")
			}
			view.Product = m.Snapshot()
			view.Thumbnails = m.Thumbnails()
			return a.render(view)
		}),
	}
	cmd.Flags().StringVar(&articleID, "article", "", "Article id to print the product onto")
	cmd.Flags().StringVar(&orientation, "orientation", "", "Orientation id (defaults to the product's first)")
	cmd.Flags().IntVar(&qty, "qty", 1, "Quantity to add")
	cmd.Flags().BoolVar(&addToCart, "add-to-cart", false, "Add the result to the cart")
	return cmd
}

// displayPrice is the unit price a commit of snap would charge.
func displayPrice(snap workflow.Snapshot) string {
	req := workflow.CommitRequest{Article: snap.Article, Result: snap.Result, BasePrice: snap.Price}
	return fmt.Sprintf("%.2f", generation.UnitPrice(req))
}
