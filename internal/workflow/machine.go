// Package workflow implements the generate, customize and commit flow shared
// by the studio pages.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"klassart-storefront/internal/domain"
)

var (
	ErrBusy          = errors.New("another operation is in progress")
	ErrStale         = errors.New("result superseded by a newer request")
	ErrEmptyPrompt   = fmt.Errorf("%w: prompt is required", domain.ErrValidation)
	ErrNoArticle     = fmt.Errorf("%w: select an article first", domain.ErrValidation)
	ErrNoImages      = errors.New("no images returned")
	ErrInvalidState  = errors.New("operation not allowed in current state")
	ErrIndexOutRange = errors.New("selection index out of range")
)

// MaxThumbnails is how many thumbnail slots a page shows.
const MaxThumbnails = 4

// Machine is one workflow instance. It is safe for concurrent use; backend
// calls run without the lock and results are applied only if still current.
type Machine struct {
	binding Binding

	mu         sync.Mutex
	state      State
	seq        uint64
	committing bool

	request     Request
	candidates  []domain.GeneratedImage
	postID      string
	price       domain.FlexString
	selectedIdx int
	selected    string
	article     *domain.Article
	quantity    int
	result      *domain.CustomizationResult
}

// New creates an idle Machine for the binding.
func New(binding Binding) *Machine {
	return &Machine{binding: binding, quantity: 1}
}

// Generate runs the binding's generator. Issued while a customization is in
// flight, it supersedes that customization.
func (m *Machine) Generate(ctx context.Context, req Request) error {
	if err := m.validate(req); err != nil {
		return err
	}
	if m.binding.Authenticated != nil && !m.binding.Authenticated() {
		return domain.ErrUnauthenticated
	}

	m.mu.Lock()
	if m.state == Generating || m.committing {
		m.mu.Unlock()
		return ErrBusy
	}
	prev := m.state
	if prev == Customizing {
		prev = Generated
	}
	m.seq++
	id := m.seq
	m.state = Generating
	m.mu.Unlock()

	gen, err := m.binding.Generator.Generate(ctx, req)

	m.mu.Lock()
	defer m.mu.Unlock()
	if id != m.seq {
		return ErrStale
	}
	if err == nil && len(gen.Images) == 0 {
		err = ErrNoImages
	}
	if err != nil {
		m.state = prev
		return err
	}

	m.request = req
	if gen.Size != "" {
		m.request.Size = gen.Size
	}
	m.candidates = gen.Images
	m.postID = gen.PostID
	m.price = gen.Price
	m.result = nil
	m.selectedIdx = 0
	m.selected = gen.Images[0].URL
	m.state = Generated
	return nil
}

func (m *Machine) validate(req Request) error {
	if m.binding.Validate != nil {
		return m.binding.Validate(req)
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return ErrEmptyPrompt
	}
	return nil
}

// Customize prints the current post onto the selected article.
func (m *Machine) Customize(ctx context.Context) (domain.CustomizationResult, error) {
	if m.binding.Customizer == nil {
		return domain.CustomizationResult{}, ErrInvalidState
	}

	m.mu.Lock()
	switch {
	case m.state == Generating || m.state == Customizing || m.committing:
		m.mu.Unlock()
		return domain.CustomizationResult{}, ErrBusy
	case m.state == Idle:
		m.mu.Unlock()
		return domain.CustomizationResult{}, ErrInvalidState
	case m.article == nil:
		m.mu.Unlock()
		return domain.CustomizationResult{}, ErrNoArticle
	}
	m.seq++
	id := m.seq
	m.state = Customizing
	req := CustomizeRequest{PostID: m.postID, Article: *m.article, Size: m.request.Size}
	m.mu.Unlock()

	res, err := m.binding.Customizer.Customize(ctx, req)

	m.mu.Lock()
	defer m.mu.Unlock()
	if id != m.seq {
		return domain.CustomizationResult{}, ErrStale
	}
	if err == nil && len(res.GeneratedImageURLs) == 0 {
		err = ErrNoImages
	}
	if err != nil {
		m.backToGenerated()
		return domain.CustomizationResult{}, err
	}

	m.result = &res
	m.selected = res.GeneratedImageURLs[0]
	m.state = Customized
	return res, nil
}

// Reset drops the customization and restores the selected candidate.
// A customization still in flight is discarded.
func (m *Machine) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch {
	case m.state == Generating || m.committing:
		return ErrBusy
	case m.state == Idle:
		return nil
	case m.state == Customizing:
		m.seq++
	}
	m.backToGenerated()
	return nil
}

// Commit runs action against the current selection. On success the
// customization sub state is cleared and the machine returns to Generated.
func (m *Machine) Commit(ctx context.Context, action Committer) error {
	m.mu.Lock()
	switch {
	case m.state == Generating || m.state == Customizing || m.committing:
		m.mu.Unlock()
		return ErrBusy
	case m.state == Idle:
		m.mu.Unlock()
		return ErrInvalidState
	}
	req := CommitRequest{
		PostID:    m.postID,
		ImageURL:  m.selected,
		Quantity:  m.quantity,
		BasePrice: m.price,
	}
	if m.article != nil {
		a := *m.article
		req.Article = &a
	}
	if m.result != nil {
		r := *m.result
		req.Result = &r
		if r.PostID != "" {
			req.PostID = r.PostID.String()
		}
	}
	m.committing = true
	id := m.seq
	m.mu.Unlock()

	err := action.Commit(ctx, req)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.committing = false
	if id != m.seq {
		return ErrStale
	}
	if err != nil {
		return err
	}
	m.article = nil
	m.quantity = 1
	m.backToGenerated()
	return nil
}

// backToGenerated must be called with mu held.
func (m *Machine) backToGenerated() {
	m.result = nil
	m.state = Generated
	if len(m.candidates) > 0 {
		m.selected = m.candidates[m.selectedIdx].URL
	}
}

// Select makes candidate i the active image. Picking a candidate while
// Customized drops the customization, so a commit never mixes a raw
// candidate with a customized post.
func (m *Machine) Select(i int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Generated && m.state != Customized {
		return ErrInvalidState
	}
	if i < 0 || i >= len(m.candidates) {
		return ErrIndexOutRange
	}
	m.selectedIdx = i
	m.backToGenerated()
	return nil
}

// SelectVariant makes customized variant i the active image.
func (m *Machine) SelectVariant(i int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Customized {
		return ErrInvalidState
	}
	if i < 0 || i >= len(m.result.GeneratedImageURLs) {
		return ErrIndexOutRange
	}
	m.selected = m.result.GeneratedImageURLs[i]
	return nil
}

// SelectArticle picks the article to customize onto.
func (m *Machine) SelectArticle(a domain.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == Customizing {
		return ErrBusy
	}
	m.article = &a
	return nil
}

// SetQuantity sets the order quantity, never below 1, and returns it.
func (m *Machine) SetQuantity(n int) int {
	if n < 1 {
		n = 1
	}
	m.mu.Lock()
	m.quantity = n
	m.mu.Unlock()
	return n
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}
