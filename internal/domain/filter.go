package domain

import (
	"strconv"
	"strings"
)

// FilterCriteria is the client side query applied to an already fetched product list.
type FilterCriteria struct {
	Search         string   `json:"search,omitempty"`
	OrientationIDs []string `json:"orientation_ids"`
	ArticleStyleID string   `json:"article_style_id"`
	SubCategoryID  string   `json:"sub_category_id"`
	ArticleType    string   `json:"article_type"`
	PriceRange     string   `json:"price"`
}

// Empty reports whether no predicate is active.
func (c FilterCriteria) Empty() bool {
	return strings.TrimSpace(c.Search) == "" &&
		len(c.OrientationIDs) == 0 &&
		c.ArticleStyleID == "" &&
		c.SubCategoryID == "" &&
		c.ArticleType == "" &&
		c.PriceRange == ""
}

// ParsePriceRange parses "min-max" into inclusive bounds. ok is false for anything malformed.
func ParsePriceRange(raw string) (lo, hi float64, ok bool) {
	parts := strings.Split(strings.TrimSpace(raw), "-")
	if len(parts) != 2 {
		return 0, 0, false
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, false
	}
	hi, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, false
	}
	return lo, hi, true
}
