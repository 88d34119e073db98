package gemini

import (
	"github.com/petal-labs/coverkit/core"
	"github.com/petal-labs/coverkit/providers"
)

func init() {
	providers.Register("gemini", func(s providers.Settings) core.ImageGenerator {
		opts := []Option{WithLogger(s.Logger)}
		if s.BaseURL != "" {
			opts = append(opts, WithBaseURL(s.BaseURL))
		}
		if s.Model != "" {
			opts = append(opts, WithModel(s.Model))
		}
		return New(s.APIKey, opts...)
	})
}
