package core

// Feature represents a capability that a generator may support.
type Feature string

const (
	FeatureImageGeneration Feature = "image_generation"
	FeatureImageEditing    Feature = "image_editing"
	FeatureAspectRatio     Feature = "aspect_ratio"
)

// ModelID is a string identifier for a model.
// Using string avoids coupling to provider-specific enums.
type ModelID string

// ModelInfo describes a model available from a provider.
type ModelInfo struct {
	ID           ModelID   `json:"id"`
	DisplayName  string    `json:"display_name"`
	Capabilities []Feature `json:"capabilities"`
}

// HasCapability reports whether the model supports the given feature.
func (m ModelInfo) HasCapability(f Feature) bool {
	for _, c := range m.Capabilities {
		if c == f {
			return true
		}
	}
	return false
}

// Role identifies the author of a content turn.
type Role string

// RoleUser marks content sent by the caller.
const RoleUser Role = "user"
