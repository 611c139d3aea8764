package product

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"klassart-storefront/internal/domain"
	"klassart-storefront/internal/service"
)

// FeaturedLimit is how many featured products the home rail shows.
const FeaturedLimit = 4

type Service struct {
	backend service.Backend
}

func New(backend service.Backend) *Service {
	return &Service{backend: backend}
}

type pageRequest struct {
	Page      string `json:"page"`
	Query     string `json:"query"`
	SessionID string `json:"sess_id"`
	UserID    string `json:"user_id"`
}

type postRequest struct {
	service.Base
	PostID string `json:"post_id"`
}

type saveRequest struct {
	service.Base
	PostID         int    `json:"post_id"`
	CategoryID     string `json:"article_category_id"`
	SubCategoryID  string `json:"sub_category_id"`
	Name           string `json:"name"`
	Image          string `json:"image"`
	Price          string `json:"price"`
	Description    string `json:"description"`
	OrientationIDs []int  `json:"orientation_ids"`
}

func (s *Service) page(page int, query string) pageRequest {
	if page < 1 {
		page = 1
	}
	base := s.backend.Base()
	return pageRequest{
		Page:      strconv.Itoa(page),
		Query:     query,
		SessionID: base.SessionID,
		UserID:    base.UserID,
	}
}

// Filters loads the catalogue metadata: styles, orientations and articles.
func (s *Service) Filters(ctx context.Context) (domain.FilterData, error) {
	var data domain.FilterData
	if err := s.backend.Call(ctx, "/filters/list", s.page(1, ""), false, &data); err != nil {
		return domain.FilterData{}, fmt.Errorf("load filters: %w", err)
	}
	return data, nil
}

func (s *Service) posts(ctx context.Context, page int, query string) ([]domain.Product, error) {
	var data struct {
		Posts []domain.Product `json:"posts"`
	}
	if err := s.backend.Call(ctx, "/post/list", s.page(page, query), false, &data); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return data.Posts, nil
}

// List returns the marketplace page without featured products.
func (s *Service) List(ctx context.Context, page int, query string) ([]domain.Product, error) {
	posts, err := s.posts(ctx, page, query)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0, len(posts))
	for _, p := range posts {
		if !p.Featured() {
			out = append(out, p)
		}
	}
	return out, nil
}

// Featured returns up to FeaturedLimit featured products of the first page.
func (s *Service) Featured(ctx context.Context) ([]domain.Product, error) {
	posts, err := s.posts(ctx, 1, "")
	if err != nil {
		return nil, err
	}
	var out []domain.Product
	for _, p := range posts {
		if p.Featured() {
			out = append(out, p)
			if len(out) == FeaturedLimit {
				break
			}
		}
	}
	return out, nil
}

// View loads one product.
func (s *Service) View(ctx context.Context, postID string) (domain.Product, error) {
	if strings.TrimSpace(postID) == "" {
		return domain.Product{}, fmt.Errorf("%w: post id is required", domain.ErrValidation)
	}
	var data struct {
		Product *domain.Product `json:"form_data"`
	}
	req := postRequest{Base: s.backend.Base(), PostID: postID}
	if err := s.backend.Call(ctx, "/post/view", req, false, &data); err != nil {
		return domain.Product{}, fmt.Errorf("view post %s: %w", postID, err)
	}
	if data.Product == nil {
		return domain.Product{}, fmt.Errorf("post %s: %w", postID, domain.ErrNotFound)
	}
	return *data.Product, nil
}

// Form loads the options of the marketplace listing form.
func (s *Service) Form(ctx context.Context) (domain.ListingForm, error) {
	if _, err := s.backend.RequireSession(); err != nil {
		return domain.ListingForm{}, err
	}
	var form domain.ListingForm
	req := postRequest{Base: s.backend.Base(), PostID: "0"}
	if err := s.backend.Call(ctx, "/post/form", req, true, &form); err != nil {
		return domain.ListingForm{}, fmt.Errorf("load listing form: %w", err)
	}
	return form, nil
}

// Save publishes imageURL to the marketplace as a new post.
func (s *Service) Save(ctx context.Context, listing domain.Listing, imageURL string) error {
	if _, err := s.backend.RequireSession(); err != nil {
		return err
	}
	if strings.TrimSpace(imageURL) == "" {
		return fmt.Errorf("%w: generate an image first", domain.ErrValidation)
	}
	req := saveRequest{
		Base:           s.backend.Base(),
		CategoryID:     listing.CategoryID,
		SubCategoryID:  listing.SubCategoryID,
		Name:           listing.Name,
		Image:          imageURL,
		Price:          listing.Price,
		Description:    listing.Description,
		OrientationIDs: listing.OrientationIDs,
	}
	if req.OrientationIDs == nil {
		req.OrientationIDs = []int{}
	}
	if err := s.backend.Call(ctx, "/post/save", req, true, nil); err != nil {
		return fmt.Errorf("save post: %w", err)
	}
	return nil
}
