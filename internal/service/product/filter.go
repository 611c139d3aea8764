package product

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"klassart-storefront/internal/domain"
)

// Sort keys accepted by Sort.
const (
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
	SortNameAZ    = "name-az"
	SortNameZA    = "name-za"
)

// Apply returns the products matching every active predicate of c, in input order.
func Apply(products []domain.Product, c domain.FilterCriteria) []domain.Product {
	if c.Empty() {
		return slices.Clone(products)
	}

	search := strings.ToLower(strings.TrimSpace(c.Search))
	wanted := make(map[string]struct{}, len(c.OrientationIDs))
	for _, id := range c.OrientationIDs {
		wanted[id] = struct{}{}
	}
	lo, hi, priceOK := domain.ParsePriceRange(c.PriceRange)

	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if search != "" && !matchesSearch(p, search) {
			continue
		}
		if len(wanted) > 0 && !hasOrientation(p, wanted) {
			continue
		}
		if c.ArticleStyleID != "" && p.ArticleCategoryID.String() != c.ArticleStyleID {
			continue
		}
		if c.SubCategoryID != "" && p.SubCategoryID.String() != c.SubCategoryID {
			continue
		}
		// Products carry no article type, so ArticleType never filters.
		if c.PriceRange != "" && priceOK {
			price, ok := p.Price.Float()
			if !ok || price < lo || price > hi {
				continue
			}
		}
		out = append(out, p)
	}
	return out
}

func matchesSearch(p domain.Product, search string) bool {
	for _, field := range []string{p.Name, p.Description, p.ArticleCategoryName, p.UserName} {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}

func hasOrientation(p domain.Product, wanted map[string]struct{}) bool {
	for _, o := range p.Orientations {
		if _, ok := wanted[o.ID]; ok {
			return true
		}
	}
	return false
}

// Sort returns a stably sorted copy. Unknown keys keep the input order.
// Products without a parseable price sort last for both price keys.
func Sort(products []domain.Product, key string) []domain.Product {
	out := slices.Clone(products)
	switch key {
	case SortPriceLow:
		slices.SortStableFunc(out, func(a, b domain.Product) int { return comparePrice(a, b, false) })
	case SortPriceHigh:
		slices.SortStableFunc(out, func(a, b domain.Product) int { return comparePrice(a, b, true) })
	case SortNameAZ, SortNameZA:
		col := collate.New(language.English)
		desc := key == SortNameZA
		slices.SortStableFunc(out, func(a, b domain.Product) int {
			r := col.CompareString(a.Name, b.Name)
			if desc {
				return -r
			}
			return r
		})
	}
	return out
}

func comparePrice(a, b domain.Product, desc bool) int {
	pa, okA := a.Price.Float()
	pb, okB := b.Price.Float()
	switch {
	case !okA && !okB:
		return 0
	case !okA:
		return 1
	case !okB:
		return -1
	}
	if desc {
		return cmp.Compare(pb, pa)
	}
	return cmp.Compare(pa, pb)
}
