package workflow

import "klassart-storefront/internal/domain"

// Snapshot is a copy of the machine state for rendering.
type Snapshot struct {
	State         State                       `json:"state" yaml:"state"`
	Prompt        string                      `json:"prompt,omitempty" yaml:"prompt,omitempty"`
	Candidates    []domain.GeneratedImage     `json:"candidates" yaml:"candidates"`
	PostID        string                      `json:"post_id,omitempty" yaml:"postId,omitempty"`
	Price         domain.FlexString           `json:"price,omitempty" yaml:"price,omitempty"`
	SelectedIndex int                         `json:"selected_index" yaml:"selectedIndex"`
	Selected      string                      `json:"selected,omitempty" yaml:"selected,omitempty"`
	Article       *domain.Article             `json:"article,omitempty" yaml:"article,omitempty"`
	Quantity      int                         `json:"quantity" yaml:"quantity"`
	Result        *domain.CustomizationResult `json:"result,omitempty" yaml:"result,omitempty"`
	Busy          bool                        `json:"busy" yaml:"busy"`
}

// Thumbnail is one slot of the thumbnail strip.
type Thumbnail struct {
	Index    int    `json:"index" yaml:"index"`
	URL      string `json:"url,omitempty" yaml:"url,omitempty"`
	Selected bool   `json:"selected" yaml:"selected"`
	Locked   bool   `json:"locked" yaml:"locked"`
}

// Snapshot returns a copy of the current state.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := Snapshot{
		State:         m.state,
		Prompt:        m.request.Prompt,
		Candidates:    append([]domain.GeneratedImage(nil), m.candidates...),
		PostID:        m.postID,
		Price:         m.price,
		SelectedIndex: m.selectedIdx,
		Selected:      m.selected,
		Quantity:      m.quantity,
		Busy:          m.state == Generating || m.state == Customizing || m.committing,
	}
	if m.article != nil {
		a := *m.article
		s.Article = &a
	}
	if m.result != nil {
		r := *m.result
		r.GeneratedImageURLs = append([]string(nil), m.result.GeneratedImageURLs...)
		s.Result = &r
	}
	return s
}

// Thumbnails returns MaxThumbnails slots; missing candidates are locked placeholders.
func (m *Machine) Thumbnails() []Thumbnail {
	m.mu.Lock()
	defer m.mu.Unlock()
	thumbs := make([]Thumbnail, MaxThumbnails)
	for i := range thumbs {
		thumbs[i].Index = i
		if i >= len(m.candidates) {
			thumbs[i].Locked = true
			continue
		}
		thumbs[i].URL = m.candidates[i].URL
		thumbs[i].Selected = i == m.selectedIdx
	}
	return thumbs
}
