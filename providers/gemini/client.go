package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/petal-labs/coverkit/core"
)

// GenerateContent sends one generateContent call and maps the first
// candidate. There is no retry.
func (p *Gemini) GenerateContent(ctx context.Context, req *core.ContentRequest) (*core.ContentResponse, error) {
	model := req.Model
	if model == "" {
		model = p.config.Model
	}

	gemReq := buildRequest(req)

	body, err := json.Marshal(gemReq)
	if err != nil {
		return nil, newDecodeError(err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", p.config.BaseURL, model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, newNetworkError(err)
	}

	for key, values := range p.buildHeaders(req.Credential) {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}

	log := p.config.Logger.With().Str("model", string(model)).Logger()
	log.Debug().
		Int("parts", len(req.Parts)).
		Str("aspect_ratio", req.AspectRatio).
		Msg("gemini request")

	resp, err := p.config.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, newNetworkError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newNetworkError(err)
	}

	if resp.StatusCode >= 400 {
		log.Debug().Int("status", resp.StatusCode).Msg("gemini error response")
		return nil, normalizeError(resp.StatusCode, respBody)
	}

	var gemResp geminiResponse
	if err := json.Unmarshal(respBody, &gemResp); err != nil {
		return nil, newDecodeError(err)
	}

	out := mapResponse(&gemResp)
	log.Debug().
		Int("parts", len(out.Parts)).
		Str("finish_reason", out.FinishReason).
		Msg("gemini response")
	return out, nil
}
