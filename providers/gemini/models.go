// Package gemini provides a Google Gemini image provider for coverkit.
package gemini

import "github.com/petal-labs/coverkit/core"

// Image generation models.
const (
	ModelGemini3ProImage    core.ModelID = "gemini-3-pro-image-preview"
	ModelGemini25FlashImage core.ModelID = "gemini-2.5-flash-image"
)

// DefaultModel is used when neither the request nor the options name one.
const DefaultModel = ModelGemini3ProImage

var models = []core.ModelInfo{
	{
		ID:          ModelGemini3ProImage,
		DisplayName: "Gemini 3 Pro Image Preview",
		Capabilities: []core.Feature{
			core.FeatureImageGeneration,
			core.FeatureImageEditing,
			core.FeatureAspectRatio,
		},
	},
	{
		ID:          ModelGemini25FlashImage,
		DisplayName: "Gemini 2.5 Flash Image",
		Capabilities: []core.Feature{
			core.FeatureImageGeneration,
			core.FeatureImageEditing,
			core.FeatureAspectRatio,
		},
	},
}

var modelRegistry = buildModelRegistry()

func buildModelRegistry() map[core.ModelID]*core.ModelInfo {
	registry := make(map[core.ModelID]*core.ModelInfo, len(models))
	for i := range models {
		registry[models[i].ID] = &models[i]
	}
	return registry
}

// GetModelInfo returns the ModelInfo for a given model ID, or nil if not found.
func GetModelInfo(id core.ModelID) *core.ModelInfo {
	return modelRegistry[id]
}
