package core

import (
	"context"
	"strings"
)

// ImageGenerator is the interface that image providers must implement.
// Implementations SHOULD be safe for concurrent calls.
type ImageGenerator interface {
	// ID returns the provider identifier (e.g., "gemini").
	ID() string

	// GenerateContent sends one multimodal request and returns the parts
	// of the first candidate. It never retries.
	GenerateContent(ctx context.Context, req *ContentRequest) (*ContentResponse, error)
}

// InlineData is binary content carried as base64 text.
type InlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"` // base64, no data-URI prefix
}

// Part is one ordered element of a request or response.
// Exactly one of Text or Inline is set.
type Part struct {
	Text   string      `json:"text,omitempty"`
	Inline *InlineData `json:"inline,omitempty"`
}

// TextPart returns a text part.
func TextPart(s string) Part {
	return Part{Text: s}
}

// InlinePart returns a binary part from base64 data.
func InlinePart(mimeType, b64 string) Part {
	return Part{Inline: &InlineData{MimeType: mimeType, Data: b64}}
}

// IsImage reports whether the part carries inline image data.
func (p Part) IsImage() bool {
	return p.Inline != nil && p.Inline.Data != ""
}

// ContentRequest is a single generation call.
type ContentRequest struct {
	Model ModelID `json:"model"`
	Parts []Part  `json:"parts"`

	// AspectRatio is sent as the image output ratio when non-empty.
	AspectRatio string `json:"aspect_ratio,omitempty"`

	// Credential overrides the generator's configured key for this call.
	Credential Secret `json:"-"`
}

// ContentResponse holds the parts of the first candidate in order.
type ContentResponse struct {
	Parts        []Part     `json:"parts"`
	FinishReason string     `json:"finish_reason,omitempty"`
	Usage        TokenUsage `json:"usage"`
}

// FirstImage returns the first part with inline image data.
// Later image parts are ignored.
func (r *ContentResponse) FirstImage() (*InlineData, bool) {
	if r == nil {
		return nil, false
	}
	for _, p := range r.Parts {
		if p.IsImage() {
			return p.Inline, true
		}
	}
	return nil, false
}

// Text joins the text parts of the response.
func (r *ContentResponse) Text() string {
	if r == nil {
		return ""
	}
	var texts []string
	for _, p := range r.Parts {
		if p.Text != "" {
			texts = append(texts, p.Text)
		}
	}
	return strings.Join(texts, " ")
}

// TokenUsage tracks token consumption reported by the provider.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
