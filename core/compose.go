package core

import "strings"

// DefaultImageMimeType is assumed when the API or an artifact omits a media type.
const DefaultImageMimeType = "image/png"

const (
	subjectRoleLine = "- Reference Image 1 (Subject): Use the person/object in this image as the main subject. Maintain likeness."
	styleRoleLine   = "- Reference Image 2 (Style): Copy the color palette, layout, and lighting style of this image."
)

// ComposeCoverPrompt renders a cover request into ordered request parts:
// the subject image, then the style image, then exactly one text part.
// Image parts are included only when their encoded data is non-nil.
//
// The title and subtitle are embedded verbatim. The caller validates the
// request first; nothing is re-checked here.
func ComposeCoverPrompt(req *CoverRequest, platform Platform, subject, style *InlineData) []Part {
	parts := make([]Part, 0, 3)
	if subject != nil {
		parts = append(parts, Part{Inline: subject})
	}
	if style != nil {
		parts = append(parts, Part{Inline: style})
	}
	return append(parts, TextPart(coverInstruction(req, platform, subject != nil, style != nil)))
}

func coverInstruction(req *CoverRequest, platform Platform, hasSubject, hasStyle bool) string {
	var b strings.Builder

	b.WriteString("Task: Create a viral video cover (thumbnail) for " + platform.Name + ".\n\n")

	b.WriteString("Details:\n")
	b.WriteString("- Aspect Ratio Target: " + platform.Ratio + "\n")
	b.WriteString(`- Main Title Text (Must be legible and prominent in Chinese): "` + req.MainTitle + "\"\n")
	b.WriteString(`- Subtitle Text (Smaller): "` + req.SubTitle + "\"\n")
	b.WriteString("- Style Tags: " + strings.Join(req.Tags.Labels(), ", ") + "\n")
	b.WriteString("- Custom Instructions: " + req.CustomPrompt + "\n\n")

	b.WriteString("Requirements:\n")
	b.WriteString(`1. QUALITY: Photorealistic, 4K resolution, high detail. Avoid "waxy" or "oily" AI artifacts.` + "\n")
	b.WriteString("2. COMPOSITION: Optimize for " + platform.Name + " UI overlays. Keep text in the safe zone.\n")
	b.WriteString("3. TEXT: The Chinese text MUST be correct and artistically integrated into the image.\n")
	b.WriteString("4. VIBE: High click-through rate, energetic, professional.")

	if hasSubject {
		b.WriteString("\n" + subjectRoleLine)
	}
	if hasStyle {
		b.WriteString("\n" + styleRoleLine)
	}

	return b.String()
}

// ComposeEditPrompt returns the two parts of an edit call: the prior image
// (raw base64, no data-URI prefix) followed by the modification request.
func ComposeEditPrompt(mimeType, rawBase64, instruction string) []Part {
	if mimeType == "" {
		mimeType = DefaultImageMimeType
	}
	return []Part{
		InlinePart(mimeType, rawBase64),
		TextPart("Edit this image based on the following instruction. Maintain high 4K quality and text legibility.\nInstruction: " + instruction),
	}
}
