package gemini

import "github.com/petal-labs/coverkit/core"

var responseModalities = []string{"TEXT", "IMAGE"}

// buildRequest converts a core content request to Gemini format. The
// image config is omitted entirely when no aspect ratio is requested.
func buildRequest(req *core.ContentRequest) *geminiRequest {
	parts := make([]geminiPart, 0, len(req.Parts))
	for _, p := range req.Parts {
		if p.Inline != nil {
			parts = append(parts, geminiPart{
				InlineData: &geminiInlineData{
					MimeType: p.Inline.MimeType,
					Data:     p.Inline.Data,
				},
			})
			continue
		}
		parts = append(parts, geminiPart{Text: p.Text})
	}

	r := &geminiRequest{
		Contents: []geminiContent{{
			Role:  string(core.RoleUser),
			Parts: parts,
		}},
		GenerationConfig: &geminiGenConfig{
			ResponseModalities: responseModalities,
		},
	}

	if req.AspectRatio != "" {
		r.GenerationConfig.ImageConfig = &geminiImageConfig{AspectRatio: req.AspectRatio}
	}

	return r
}

// mapResponse keeps the parts of the first candidate in order.
func mapResponse(resp *geminiResponse) *core.ContentResponse {
	out := &core.ContentResponse{}

	if resp.UsageMetadata != nil {
		out.Usage = core.TokenUsage{
			PromptTokens:     resp.UsageMetadata.PromptTokenCount,
			CompletionTokens: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      resp.UsageMetadata.TotalTokenCount,
		}
		if out.Usage.TotalTokens == 0 {
			out.Usage.TotalTokens = out.Usage.PromptTokens + out.Usage.CompletionTokens
		}
	}

	if len(resp.Candidates) == 0 {
		return out
	}

	cand := resp.Candidates[0]
	out.FinishReason = cand.FinishReason
	for _, p := range cand.Content.Parts {
		switch {
		case p.InlineData != nil:
			out.Parts = append(out.Parts, core.InlinePart(p.InlineData.MimeType, p.InlineData.Data))
		case p.Text != "":
			out.Parts = append(out.Parts, core.TextPart(p.Text))
		}
	}

	return out
}
