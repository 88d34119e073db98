package commands

import (
	"github.com/rs/zerolog"

	"github.com/petal-labs/coverkit/cli/config"
	"github.com/petal-labs/coverkit/core"
	"github.com/petal-labs/coverkit/providers"
	_ "github.com/petal-labs/coverkit/providers/gemini"
)

// defaultGeneratorFactory builds the configured provider from the registry.
// The credential is not baked in; every call carries the session's key.
func defaultGeneratorFactory(cfg *config.Config, logger zerolog.Logger) (core.ImageGenerator, error) {
	name := cfg.Provider
	if name == "" {
		name = config.DefaultProvider
	}
	return providers.Create(name, providers.Settings{
		BaseURL: cfg.BaseURL,
		Model:   core.ModelID(cfg.Model),
		Logger:  logger,
	})
}
