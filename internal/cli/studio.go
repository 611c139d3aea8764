package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"klassart-storefront/internal/domain"
	"klassart-storefront/internal/service/cart"
	"klassart-storefront/internal/service/generation"
	"klassart-storefront/internal/workflow"
)

type studioOptions struct {
	req     workflow.Request
	image   string
	enhance bool
	pick    int
	variant int

	articleID string
	qty       int
	addToCart bool

	list    bool
	listing domain.Listing
}

// studioView is what `studio` prints.
type studioView struct {
	Prompt     string               `json:"prompt" yaml:"prompt"`
	Workflow   workflow.Snapshot    `json:"workflow" yaml:"workflow"`
	Thumbnails []workflow.Thumbnail `json:"thumbnails" yaml:"thumbnails"`
	Committed  string               `json:"committed,omitempty" yaml:"committed,omitempty"`
}

func newStudioCmd(a *app) *cobra.Command {
	var o studioOptions
	cmd := &cobra.Command{
		Use:   "studio",
		Short: "Generate images and print them onto articles",
		Long: `Studio runs one pass of the generation workflow: generate candidates from a
prompt (or from a picture with --image), pick one, optionally customize it onto
an article and finish by adding it to the cart or listing it on the marketplace.`,
		Example: `  storefront studio --prompt "a red fox at dawn" --count 4
  storefront studio --prompt "watercolor" --image me.png
  storefront studio --prompt "a red fox" --article 5 --add-to-cart --qty 2
  storefront studio --prompt "a red fox" --pick 2 --list --name "Fox" --price 99`,
		RunE: run(a, func(ctx context.Context, _ []string) error {
			return a.studio(ctx, o)
		}),
	}
	f := cmd.Flags()
	f.StringVar(&o.req.Prompt, "prompt", "", "What to draw")
	f.StringVar(&o.req.Style, "style", "", "Article style id")
	f.StringVar(&o.req.SubStyle, "substyle", "", "Sub-category id")
	f.StringVar(&o.req.Size, "size", "", "Orientation id")
	f.IntVar(&o.req.Count, "count", 1, "Number of images (1-4)")
	f.StringVar(&o.image, "image", "", "Source picture for image to image generation")
	f.BoolVar(&o.enhance, "enhance", false, "Enhance the prompt before generating")
	f.IntVar(&o.pick, "pick", 1, "Candidate to select (1-based)")
	f.IntVar(&o.variant, "variant", 1, "Customized variant to select (1-based)")
	f.StringVar(&o.articleID, "article", "", "Article id to customize onto")
	f.IntVar(&o.qty, "qty", 1, "Quantity to add to the cart")
	f.BoolVar(&o.addToCart, "add-to-cart", false, "Add the result to the cart")
	f.BoolVar(&o.list, "list", false, "List the selected image on the marketplace")
	f.StringVar(&o.listing.Name, "name", "", "Listing name")
	f.StringVar(&o.listing.Description, "description", "", "Listing description")
	f.StringVar(&o.listing.CategoryID, "category", "1", "Listing category id")
	f.StringVar(&o.listing.SubCategoryID, "subcategory", "1", "Listing sub-category id")
	f.StringVar(&o.listing.Price, "price", "", "Listing price")
	f.IntSliceVar(&o.listing.OrientationIDs, "orientations", []int{1}, "Listing orientation ids")
	return cmd
}

func (a *app) studio(ctx context.Context, o studioOptions) error {
	if o.addToCart && o.list {
		return fmt.Errorf("%w: choose either --add-to-cart or --list", domain.ErrValidation)
	}

	binding := generation.TextToImageBinding(a.backend)
	if o.image != "" {
		data, err := os.ReadFile(o.image)
		if err != nil {
			return fmt.Errorf("read image: %w", err)
		}
		o.req.Image, o.req.ImageName = data, filepath.Base(o.image)
		binding = generation.ImageToImageBinding(a.backend)
	}

	if o.enhance {
		enhanced, err := a.enhancer.Enhance(ctx, o.req.Prompt)
		if err != nil {
			return err
		}
		a.printf("Enhanced prompt: %s", enhanced)
		o.req.Prompt = enhanced
	}

	m := workflow.New(binding)
	if err := m.Generate(ctx, o.req); err != nil {
		return err
	}
	if err := m.Select(o.pick - 1); err != nil {
		return fmt.Errorf("pick %d: %w", o.pick, err)
	}

	if o.articleID != "" {
		filters, err := a.products.Filters(ctx)
		if err != nil {
			return err
		}
		article, ok := filters.FindArticle(o.articleID)
		if !ok {
			return fmt.Errorf("article %s: %w", o.articleID, domain.ErrNotFound)
		}
		if err := m.SelectArticle(article); err != nil {
			return err
		}
		if _, err := m.Customize(ctx); err != nil {
			return err
		}
		if err := m.SelectVariant(o.variant - 1); err != nil {
			return fmt.Errorf("variant %d: %w", o.variant, err)
		}
	}

	view := studioView{Prompt: o.req.Prompt}
	switch {
	case o.addToCart:
		m.SetQuantity(cart.ClampQuantity(o.qty))
		if err := m.Commit(ctx, generation.AddToCart{Cart: a.carts}); err != nil {
			return err
		}
		view.Committed = "cart"
		a.printf("Added to cart")
	case o.list:
		if o.listing.Name == "" {
			o.listing.Name = listingName(o.req.Prompt)
		}
		if o.listing.Description == "" {
			o.listing.Description = "AI-generated image from prompt: " + o.req.Prompt
		}
		if err := m.Commit(ctx, generation.ListToMarketplace{Products: a.products, Listing: o.listing}); err != nil {
			return err
		}
		view.Committed = "marketplace"
		a.printf("Listed on the marketplace")
	}
	view.Workflow = m.Snapshot()
	view.Thumbnails = m.Thumbnails()
	return a.render(view)
}

// listingName shortens a prompt to a listing title.
func listingName(prompt string) string {
	r := []rune(prompt)
	if len(r) > 50 {
		return string(r[:50]) + "..."
	}
	return prompt
}
