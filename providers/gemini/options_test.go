package gemini

import (
	"bytes"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestWithBaseURL(t *testing.T) {
	cfg := &Config{}
	WithBaseURL("https://custom.api.com")(cfg)

	if cfg.BaseURL != "https://custom.api.com" {
		t.Errorf("BaseURL = %q, want 'https://custom.api.com'", cfg.BaseURL)
	}
}

func TestWithHTTPClient(t *testing.T) {
	customClient := &http.Client{Timeout: 30 * time.Second}
	cfg := &Config{}
	WithHTTPClient(customClient)(cfg)

	if cfg.HTTPClient != customClient {
		t.Error("HTTPClient should be custom client")
	}
}

func TestWithHeader(t *testing.T) {
	cfg := &Config{}
	WithHeader("X-Custom", "value")(cfg)

	if cfg.Headers.Get("X-Custom") != "value" {
		t.Errorf("X-Custom header = %q, want 'value'", cfg.Headers.Get("X-Custom"))
	}
}

func TestWithModel(t *testing.T) {
	cfg := &Config{}
	WithModel(ModelGemini25FlashImage)(cfg)

	if cfg.Model != ModelGemini25FlashImage {
		t.Errorf("Model = %q, want %q", cfg.Model, ModelGemini25FlashImage)
	}
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := &Config{}
	WithLogger(zerolog.New(&buf))(cfg)

	cfg.Logger.Info().Msg("hello")
	if buf.Len() == 0 {
		t.Error("logger should write to the configured writer")
	}
}
