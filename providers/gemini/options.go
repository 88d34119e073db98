package gemini

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/petal-labs/coverkit/core"
)

// Config holds configuration for the Gemini provider.
type Config struct {
	// APIKey is used when a request carries no credential of its own.
	APIKey core.Secret

	// BaseURL is the API base URL. Defaults to https://generativelanguage.googleapis.com
	BaseURL string

	// HTTPClient is the HTTP client to use. Defaults to http.DefaultClient.
	HTTPClient *http.Client

	// Headers contains optional extra headers to include in requests.
	Headers http.Header

	// Model is used when a request leaves Model empty.
	Model core.ModelID

	// Logger receives request-level debug output. Defaults to zerolog.Nop().
	Logger zerolog.Logger
}

// DefaultBaseURL is the default Gemini API base URL.
const DefaultBaseURL = "https://generativelanguage.googleapis.com"

// Option configures the Gemini provider.
type Option func(*Config)

// WithBaseURL sets the API base URL.
func WithBaseURL(url string) Option {
	return func(c *Config) {
		c.BaseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Config) {
		c.HTTPClient = client
	}
}

// WithHeader adds an extra header to include in requests.
func WithHeader(key, value string) Option {
	return func(c *Config) {
		if c.Headers == nil {
			c.Headers = make(http.Header)
		}
		c.Headers.Set(key, value)
	}
}

// WithModel sets the default model.
func WithModel(model core.ModelID) Option {
	return func(c *Config) {
		c.Model = model
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}
