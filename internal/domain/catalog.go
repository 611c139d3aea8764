package domain

import (
	"bytes"
	"encoding/json"
)

// Article is a printable product template such as a frame or a mug.
type Article struct {
	ID           FlexString `json:"article_id" yaml:"id"`
	CategoryName string     `json:"category_name" yaml:"categoryName"`
	ArticleType  string     `json:"article_type" yaml:"articleType"`
	Image        string     `json:"article_img" yaml:"image"`
	Price        FlexString `json:"article_price" yaml:"price"`
	Name         string     `json:"name" yaml:"name"`
	TotalNumber  FlexString `json:"total_number" yaml:"totalNumber,omitempty"`
}

// Orientation is an aspect ratio classification such as "1:1 Square".
type Orientation struct {
	ID          FlexString `json:"orientation_id" yaml:"id"`
	Name        string     `json:"name" yaml:"name"`
	Image       string     `json:"img" yaml:"image,omitempty"`
	TotalNumber FlexString `json:"total_number" yaml:"totalNumber,omitempty"`
}

// OrientationRef is an orientation as attached to a product. The backend
// sends either a bare id or an {orientation_id, orientation_name} object.
type OrientationRef struct {
	ID   string `json:"orientation_id" yaml:"id"`
	Name string `json:"orientation_name,omitempty" yaml:"name,omitempty"`
}

func (o *OrientationRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var obj struct {
			OrientationID   FlexString `json:"orientation_id"`
			OrientationName string     `json:"orientation_name"`
			ID              FlexString `json:"id"`
			Name            string     `json:"name"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		o.ID = obj.OrientationID.String()
		if o.ID == "" {
			o.ID = obj.ID.String()
		}
		o.Name = obj.OrientationName
		if o.Name == "" {
			o.Name = obj.Name
		}
		return nil
	}
	var id FlexString
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	*o = OrientationRef{ID: id.String()}
	return nil
}

// SubCategory belongs to an ArticleStyle.
type SubCategory struct {
	ID    FlexString `json:"sub_category_id" yaml:"id"`
	Name  string     `json:"name" yaml:"name"`
	Image string     `json:"image" yaml:"image,omitempty"`
}

// ArticleStyle is an art style category with its sub-categories.
type ArticleStyle struct {
	ID            FlexString    `json:"cat_id" yaml:"id"`
	Name          string        `json:"cat_name" yaml:"name"`
	SubCategories []SubCategory `json:"sub_cat" yaml:"subCategories"`
}

// FilterData is the catalogue metadata returned by /filters/list.
type FilterData struct {
	ArticleStyles []ArticleStyle       `json:"article_style" yaml:"articleStyles"`
	Orientations  []Orientation        `json:"orientations" yaml:"orientations"`
	Articles      map[string][]Article `json:"allarticle" yaml:"articles"`
}

// FirstArticle returns the first article of the first article type, sorted by type name.
func (f FilterData) FirstArticle() (Article, bool) {
	var first string
	for kind, list := range f.Articles {
		if len(list) == 0 {
			continue
		}
		if first == "" || kind < first {
			first = kind
		}
	}
	if first == "" {
		return Article{}, false
	}
	return f.Articles[first][0], true
}

// FindArticle looks an article up by id across all article types.
func (f FilterData) FindArticle(id string) (Article, bool) {
	for _, list := range f.Articles {
		for _, a := range list {
			if a.ID.String() == id {
				return a, true
			}
		}
	}
	return Article{}, false
}

// Product is a marketplace listing.
type Product struct {
	PostID              FlexString       `json:"post_id" yaml:"postId"`
	Name                string           `json:"name" yaml:"name"`
	UserName            string           `json:"user_name" yaml:"author"`
	Price               FlexString       `json:"price" yaml:"price"`
	ImageURL            string           `json:"image_url" yaml:"imageUrl"`
	Description         string           `json:"description" yaml:"description"`
	ArticleCategoryID   FlexString       `json:"article_category_id" yaml:"categoryId"`
	ArticleCategoryName string           `json:"article_category_name" yaml:"categoryName"`
	SubCategoryID       FlexString       `json:"sub_category_id" yaml:"subCategoryId"`
	Orientations        []OrientationRef `json:"orientation_ids" yaml:"orientations"`
	CurrencySymbol      string           `json:"currency_symbol" yaml:"currency"`
	UserID              FlexString       `json:"user_id" yaml:"userId"`
	IsFeatured          FlexString       `json:"is_featured" yaml:"featured"`
}

// Featured reports whether the product belongs to the featured rail.
func (p Product) Featured() bool {
	v, ok := p.IsFeatured.Int()
	return ok && v == 1
}

// Listing holds the fields needed to publish an image to the marketplace.
type Listing struct {
	Name           string
	Description    string
	CategoryID     string
	SubCategoryID  string
	Price          string
	OrientationIDs []int
}

// ArticleCategory is a category a marketplace listing can be filed under.
type ArticleCategory struct {
	ID   FlexString `json:"article_category_id" yaml:"id"`
	Name string     `json:"name" yaml:"name"`
}

// ListingForm is the option set for the marketplace listing form.
type ListingForm struct {
	Categories    []ArticleCategory `json:"article_categories" yaml:"categories"`
	SubCategories []SubCategory     `json:"sub_categories" yaml:"subCategories"`
	Orientations  []Orientation     `json:"orientations" yaml:"orientations"`
}
