package gemini

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/petal-labs/coverkit/core"
)

// Gemini is an image provider for the Google Gemini API.
// Gemini is safe for concurrent use.
type Gemini struct {
	config Config
}

// New creates a new Gemini provider. apiKey may be empty when every
// request carries its own credential.
func New(apiKey string, opts ...Option) *Gemini {
	cfg := Config{
		APIKey:     core.NewSecret(apiKey),
		BaseURL:    DefaultBaseURL,
		HTTPClient: http.DefaultClient,
		Model:      DefaultModel,
		Logger:     zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return &Gemini{config: cfg}
}

// ID returns the provider identifier.
func (p *Gemini) ID() string {
	return "gemini"
}

// Models returns the list of available models.
func (p *Gemini) Models() []core.ModelInfo {
	result := make([]core.ModelInfo, len(models))
	copy(result, models)
	return result
}

// Supports reports whether the provider supports the given feature.
func (p *Gemini) Supports(feature core.Feature) bool {
	switch feature {
	case core.FeatureImageGeneration, core.FeatureImageEditing, core.FeatureAspectRatio:
		return true
	default:
		return false
	}
}

// buildHeaders constructs the HTTP headers for an API request.
func (p *Gemini) buildHeaders(key core.Secret) http.Header {
	headers := make(http.Header)

	if key.IsEmpty() {
		key = p.config.APIKey
	}
	headers.Set("x-goog-api-key", key.Expose())
	headers.Set("Content-Type", "application/json")

	for name, values := range p.config.Headers {
		for _, v := range values {
			headers.Add(name, v)
		}
	}

	return headers
}

var _ core.ImageGenerator = (*Gemini)(nil)
