package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"klassart-storefront/internal/domain"
	"klassart-storefront/internal/service"
	"klassart-storefront/internal/service/cart"
	"klassart-storefront/internal/workflow"
)

// Customizer prints a post onto an article via /customimage.
type Customizer struct {
	backend service.Backend
	// sendSize forwards the orientation; the studio pages send an empty size.
	sendSize bool
}

// NewStudioCustomizer customizes freshly generated posts.
func NewStudioCustomizer(backend service.Backend) *Customizer {
	return &Customizer{backend: backend}
}

// NewProductCustomizer customizes a listed product in the chosen orientation.
func NewProductCustomizer(backend service.Backend) *Customizer {
	return &Customizer{backend: backend, sendSize: true}
}

type customizeRequest struct {
	service.Base
	PostID    string `json:"post_id"`
	ArticleID string `json:"article_id"`
	Size      string `json:"size"`
}

func (c *Customizer) Customize(ctx context.Context, req workflow.CustomizeRequest) (domain.CustomizationResult, error) {
	if req.PostID == "" {
		return domain.CustomizationResult{}, fmt.Errorf("%w: no image generated yet", domain.ErrValidation)
	}
	body := customizeRequest{
		Base:      c.backend.Base(),
		PostID:    req.PostID,
		ArticleID: req.Article.ID.String(),
	}
	if c.sendSize {
		body.Size = req.Size
	}
	resp, err := c.backend.API.Post(ctx, "/customimage", body, true)
	if err != nil {
		return domain.CustomizationResult{}, fmt.Errorf("customize: %w", err)
	}
	if err := resp.Err(); err != nil {
		return domain.CustomizationResult{}, fmt.Errorf("customize: %w", err)
	}
	// The result sits at the top level, not under data.
	var res domain.CustomizationResult
	if err := resp.DecodeBody(&res); err != nil {
		return domain.CustomizationResult{}, fmt.Errorf("customize: %w", err)
	}
	return res, nil
}

type cartAdder interface {
	Add(ctx context.Context, postID string, unitPrice float64, qty int) error
}

// AddToCart commits the selection as a cart line.
type AddToCart struct {
	Cart cartAdder
}

func (a AddToCart) Commit(ctx context.Context, req workflow.CommitRequest) error {
	return a.Cart.Add(ctx, req.PostID, UnitPrice(req), req.Quantity)
}

// UnitPrice picks the customized price, then the article price, then the
// price of the loaded product, then cart.DefaultUnitPrice.
func UnitPrice(req workflow.CommitRequest) float64 {
	candidates := []domain.FlexString{req.BasePrice}
	if req.Article != nil {
		candidates = append([]domain.FlexString{req.Article.Price}, candidates...)
	}
	if req.Result != nil {
		candidates = append([]domain.FlexString{req.Result.Price}, candidates...)
	}
	for _, c := range candidates {
		if v, ok := c.Float(); ok && v > 0 {
			return v
		}
	}
	return cart.DefaultUnitPrice
}

type listingSaver interface {
	Save(ctx context.Context, listing domain.Listing, imageURL string) error
}

// ListToMarketplace commits the selected image as a marketplace listing.
type ListToMarketplace struct {
	Products listingSaver
	Listing  domain.Listing
}

func (l ListToMarketplace) Commit(ctx context.Context, req workflow.CommitRequest) error {
	return l.Products.Save(ctx, l.Listing, req.ImageURL)
}

// ErrNoEnhancement is returned when the backend answers without a prompt.
var ErrNoEnhancement = errors.New("no enhanced prompt received")

// Enhancer rewrites a prompt via multipart /prompt/enhence.
type Enhancer struct {
	backend service.Backend
}

func NewEnhancer(backend service.Backend) *Enhancer {
	return &Enhancer{backend: backend}
}

// Enhance returns the improved prompt.
func (e *Enhancer) Enhance(ctx context.Context, prompt string) (string, error) {
	if _, err := e.backend.RequireSession(); err != nil {
		return "", err
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", workflow.ErrEmptyPrompt
	}
	fields := e.backend.Fields()
	fields["content"] = prompt
	resp, err := e.backend.API.Upload(ctx, "/prompt/enhence", fields, nil, false)
	if err != nil {
		return "", fmt.Errorf("enhance prompt: %w", err)
	}
	var enhanced string
	if err := resp.Into(&enhanced); err != nil {
		return "", fmt.Errorf("enhance prompt: %w", err)
	}
	if enhanced == "" {
		return "", ErrNoEnhancement
	}
	return enhanced, nil
}

// TextToImageBinding wires the text to image studio page.
func TextToImageBinding(backend service.Backend) workflow.Binding {
	return workflow.Binding{
		Generator:     NewTextToImage(backend),
		Customizer:    NewStudioCustomizer(backend),
		Authenticated: authenticated(backend),
	}
}

// ImageToImageBinding wires the image to image studio page.
func ImageToImageBinding(backend service.Backend) workflow.Binding {
	return workflow.Binding{
		Generator:     NewImageToImage(backend),
		Customizer:    NewStudioCustomizer(backend),
		Validate:      ValidateImageRequest,
		Authenticated: authenticated(backend),
	}
}

// ProductDetailBinding wires the product page. Viewing needs no login.
func ProductDetailBinding(backend service.Backend, products viewer) workflow.Binding {
	return workflow.Binding{
		Generator:  NewProductDetail(products),
		Customizer: NewProductCustomizer(backend),
		Validate:   ValidateProductRequest,
	}
}
