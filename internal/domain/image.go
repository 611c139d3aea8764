package domain

import "time"

// GeneratedImage is one candidate returned by a generation call.
type GeneratedImage struct {
	URL       string    `json:"url" yaml:"url"`
	Prompt    string    `json:"prompt" yaml:"prompt"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// CustomizationResult is a generated image composited onto an article.
type CustomizationResult struct {
	GeneratedImageURLs []string   `json:"genrated_img" yaml:"generatedImageUrls"`
	PromptImage        string     `json:"promt_img" yaml:"promptImage,omitempty"`
	PostID             FlexString `json:"post_id" yaml:"postId"`
	Price              FlexString `json:"price" yaml:"price"`
	Name               string     `json:"name" yaml:"name"`
	Description        string     `json:"description" yaml:"description"`
	Category           string     `json:"category" yaml:"category"`
	Subcategory        string     `json:"subcategory" yaml:"subcategory"`
	Orientation        string     `json:"orgientation" yaml:"orientation"`
}
