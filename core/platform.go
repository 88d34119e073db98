package core

// PlatformID identifies a target publishing platform.
type PlatformID string

const (
	PlatformDouyin      PlatformID = "douyin"
	PlatformXiaohongshu PlatformID = "xiaohongshu"
	PlatformBilibili    PlatformID = "bilibili"
	PlatformYouTube     PlatformID = "youtube"
)

// DefaultPlatformID is the platform selected for a fresh CoverRequest.
const DefaultPlatformID = PlatformDouyin

// Platform is an immutable publishing target. Ratio is sent to the
// generation API verbatim.
type Platform struct {
	ID          PlatformID `json:"id"`
	Name        string     `json:"name"`
	Ratio       string     `json:"ratio"`
	Description string     `json:"description"`
}

var platforms = []Platform{
	{ID: PlatformDouyin, Name: "抖音", Ratio: "9:16", Description: "竖屏全屏体验"},
	{ID: PlatformXiaohongshu, Name: "小红书", Ratio: "3:4", Description: "经典种草比例"},
	{ID: PlatformBilibili, Name: "B站", Ratio: "4:3", Description: "传统视频比例"},
	{ID: PlatformYouTube, Name: "YouTube", Ratio: "16:9", Description: "横屏宽画幅"},
}

// Platforms returns the fixed platform list in display order.
func Platforms() []Platform {
	// Return a copy to prevent mutation
	out := make([]Platform, len(platforms))
	copy(out, platforms)
	return out
}

// LookupPlatform returns the platform with the given id.
func LookupPlatform(id PlatformID) (Platform, bool) {
	for _, p := range platforms {
		if p.ID == id {
			return p, true
		}
	}
	return Platform{}, false
}

// SupportedAspectRatios lists the ratios the image API enumerates.
// The composer does not enforce it; unknown ratios pass through unchanged.
var SupportedAspectRatios = []string{"1:1", "3:4", "4:3", "9:16", "16:9"}

// IsSupportedAspectRatio reports whether ratio is in SupportedAspectRatios.
func IsSupportedAspectRatio(ratio string) bool {
	for _, r := range SupportedAspectRatios {
		if r == ratio {
			return true
		}
	}
	return false
}
