package workflow

import (
	"context"

	"klassart-storefront/internal/domain"
)

// Request is what a page submits to start a generation.
type Request struct {
	Prompt   string
	Style    string
	SubStyle string
	Size     string
	Count    int

	// Image is the source picture for image to image generation.
	Image     []byte
	ImageName string

	// PostID loads an existing post instead of generating one.
	PostID string
}

// Generation is the outcome of a successful generate call.
type Generation struct {
	Images []domain.GeneratedImage
	PostID string
	// Price is the listed price when the post is an existing product.
	Price domain.FlexString
	// Size overrides the request size for later customizations.
	Size string
}

// CustomizeRequest asks the backend to print the current post onto an article.
type CustomizeRequest struct {
	PostID  string
	Article domain.Article
	Size    string
}

// CommitRequest carries everything a commit action may need.
type CommitRequest struct {
	PostID   string
	ImageURL string
	Article  *domain.Article
	Quantity int
	Result   *domain.CustomizationResult
	// BasePrice is the price the generation reported, if any.
	BasePrice domain.FlexString
}

type Generator interface {
	Generate(ctx context.Context, req Request) (Generation, error)
}

type Customizer interface {
	Customize(ctx context.Context, req CustomizeRequest) (domain.CustomizationResult, error)
}

// Committer is a terminal action such as add to cart or list to marketplace.
type Committer interface {
	Commit(ctx context.Context, req CommitRequest) error
}

// Binding plugs page specific endpoints into a Machine.
type Binding struct {
	Generator  Generator
	Customizer Customizer
	// Validate replaces the default non-empty prompt guard.
	Validate func(Request) error
	// Authenticated gates Generate; nil skips the check.
	Authenticated func() bool
}
