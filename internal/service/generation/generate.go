// Package generation binds the studio and product pages to the workflow
// machine: image generation, customization onto articles and the commit
// actions that follow.
package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"klassart-storefront/internal/apiclient"
	"klassart-storefront/internal/domain"
	"klassart-storefront/internal/service"
	"klassart-storefront/internal/workflow"
)

// DefaultOption is sent for style, substyle and size when none is picked.
const DefaultOption = "1"

// Counts accepted for noofimg.
const (
	MinImages = 1
	MaxImages = workflow.MaxThumbnails
)

var (
	ErrNoImage  = fmt.Errorf("%w: upload an image first", domain.ErrValidation)
	ErrNoPostID = fmt.Errorf("%w: post id is required", domain.ErrValidation)
)

// urlList accepts either a single URL or a list of URLs.
type urlList []string

func (u *urlList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*u = list
		return nil
	}
	var one string
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	if one == "" {
		*u = nil
		return nil
	}
	*u = urlList{one}
	return nil
}

type generated struct {
	PublicURL urlList           `json:"publicUrl"`
	PostID    domain.FlexString `json:"post_id"`
}

// decodeGenerated reads the image urls from data and the post id from the
// top level, falling back to data.post_id.
func decodeGenerated(resp *apiclient.Response, prompt string) (workflow.Generation, error) {
	var data generated
	if err := resp.Into(&data); err != nil {
		return workflow.Generation{}, err
	}
	var top struct {
		PostID domain.FlexString `json:"post_id"`
	}
	if err := resp.DecodeBody(&top); err != nil {
		return workflow.Generation{}, err
	}
	postID := top.PostID.String()
	if postID == "" {
		postID = data.PostID.String()
	}

	now := time.Now().UTC()
	gen := workflow.Generation{PostID: postID}
	for _, url := range data.PublicURL {
		gen.Images = append(gen.Images, domain.GeneratedImage{URL: url, Prompt: prompt, Timestamp: now})
	}
	return gen, nil
}

func clampCount(n int) int {
	switch {
	case n < MinImages:
		return MinImages
	case n > MaxImages:
		return MaxImages
	}
	return n
}

func orDefault(v string) string {
	if v == "" {
		return DefaultOption
	}
	return v
}

func authenticated(b service.Backend) func() bool {
	return func() bool {
		_, err := b.RequireSession()
		return err == nil
	}
}

// TextToImage generates images from a prompt via /prompt/generate.
type TextToImage struct {
	backend service.Backend
}

func NewTextToImage(backend service.Backend) *TextToImage {
	return &TextToImage{backend: backend}
}

type textRequest struct {
	service.Base
	Prompt   string `json:"prompt"`
	Style    string `json:"style"`
	SubStyle string `json:"substyle"`
	Size     string `json:"size"`
	Count    string `json:"noofimg"`
}

func (g *TextToImage) Generate(ctx context.Context, req workflow.Request) (workflow.Generation, error) {
	prompt := strings.TrimSpace(req.Prompt)
	body := textRequest{
		Base:     g.backend.Base(),
		Prompt:   prompt,
		Style:    orDefault(req.Style),
		SubStyle: orDefault(req.SubStyle),
		Size:     orDefault(req.Size),
		Count:    strconv.Itoa(clampCount(req.Count)),
	}
	resp, err := g.backend.API.Post(ctx, "/prompt/generate", body, true)
	if err != nil {
		return workflow.Generation{}, fmt.Errorf("generate: %w", err)
	}
	gen, err := decodeGenerated(resp, prompt)
	if err != nil {
		return workflow.Generation{}, fmt.Errorf("generate: %w", err)
	}
	return gen, nil
}

// ImageToImage edits an uploaded picture via multipart /prompt/image/edits.
type ImageToImage struct {
	backend service.Backend
}

func NewImageToImage(backend service.Backend) *ImageToImage {
	return &ImageToImage{backend: backend}
}

func (g *ImageToImage) Generate(ctx context.Context, req workflow.Request) (workflow.Generation, error) {
	prompt := strings.TrimSpace(req.Prompt)
	fields := g.backend.Fields()
	fields["prompt"] = prompt
	fields["noofimg"] = strconv.Itoa(clampCount(req.Count))
	for key, v := range map[string]string{"style": req.Style, "substyle": req.SubStyle, "size": req.Size} {
		if v != "" {
			fields[key] = v
		}
	}
	name := req.ImageName
	if name == "" {
		name = "preloaded-image.png"
	}
	files := []apiclient.File{{Field: "image", Name: name, Data: req.Image}}

	resp, err := g.backend.API.Upload(ctx, "/prompt/image/edits", fields, files, true)
	if err != nil {
		return workflow.Generation{}, fmt.Errorf("edit image: %w", err)
	}
	gen, err := decodeGenerated(resp, prompt)
	if err != nil {
		return workflow.Generation{}, fmt.Errorf("edit image: %w", err)
	}
	return gen, nil
}

// ValidateImageRequest requires a source image and a prompt.
func ValidateImageRequest(req workflow.Request) error {
	if len(req.Image) == 0 {
		return ErrNoImage
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return workflow.ErrEmptyPrompt
	}
	return nil
}

type viewer interface {
	View(ctx context.Context, postID string) (domain.Product, error)
}

// ProductDetail loads an existing product as the single candidate.
type ProductDetail struct {
	products viewer
}

func NewProductDetail(products viewer) *ProductDetail {
	return &ProductDetail{products: products}
}

// Generate loads req.PostID. The size defaults to the first orientation of
// the product when the request names none.
func (g *ProductDetail) Generate(ctx context.Context, req workflow.Request) (workflow.Generation, error) {
	p, err := g.products.View(ctx, req.PostID)
	if err != nil {
		return workflow.Generation{}, err
	}
	if p.ImageURL == "" {
		return workflow.Generation{}, workflow.ErrNoImages
	}
	size := req.Size
	if size == "" && len(p.Orientations) > 0 {
		size = p.Orientations[0].ID
	}
	postID := p.PostID.String()
	if postID == "" {
		postID = req.PostID
	}
	return workflow.Generation{
		Images: []domain.GeneratedImage{{URL: p.ImageURL, Prompt: p.Name, Timestamp: time.Now().UTC()}},
		PostID: postID,
		Price:  p.Price,
		Size:   size,
	}, nil
}

// ValidateProductRequest requires a post id instead of a prompt.
func ValidateProductRequest(req workflow.Request) error {
	if strings.TrimSpace(req.PostID) == "" {
		return ErrNoPostID
	}
	return nil
}
