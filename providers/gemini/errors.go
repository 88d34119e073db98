package gemini

import (
	"encoding/json"
	"html"
	"net/http"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/petal-labs/coverkit/core"
	"github.com/petal-labs/coverkit/providers/internal/normalize"
)

// reasonAPIKeyInvalid is the ErrorInfo reason Gemini sends with a 400
// when the key itself is rejected.
const reasonAPIKeyInvalid = "API_KEY_INVALID"

// maxPageText caps the text kept from a non-JSON error page.
const maxPageText = 200

// pagePolicy reduces HTML error pages from gateways and proxies to text.
var pagePolicy = bluemonday.StrictPolicy()

// normalizeError converts an HTTP error response to a ProviderError with the appropriate sentinel.
func normalizeError(status int, body []byte) error {
	var errResp geminiErrorResponse
	_ = json.Unmarshal(body, &errResp)

	message := errResp.Error.Message
	if message == "" {
		message = pageText(body)
	}
	if message == "" {
		message = http.StatusText(status)
	}

	code := errResp.Error.Status
	if code == "" {
		code = "unknown_error"
	}

	reason := errorReason(errResp.Error.Details)
	if reason != "" {
		code = reason
	}

	overrides := map[int]error{
		http.StatusNotFound: core.ErrBadRequest,
	}
	if reason == reasonAPIKeyInvalid {
		overrides[status] = core.ErrUnauthorized
	}
	sentinel := normalize.SentinelForStatusWithOverrides(status, overrides)

	return normalize.ProviderError("gemini", status, "", code, message, sentinel)
}

// pageText returns the visible text of a non-JSON error body, collapsed
// to single spaces and truncated to maxPageText runes.
func pageText(body []byte) string {
	if json.Valid(body) {
		return ""
	}
	text := html.UnescapeString(pagePolicy.Sanitize(string(body)))
	text = strings.Join(strings.Fields(text), " ")
	if r := []rune(text); len(r) > maxPageText {
		text = string(r[:maxPageText]) + "…"
	}
	return text
}

// errorReason returns the first ErrorInfo reason in details.
func errorReason(details []geminiErrorDetail) string {
	for _, d := range details {
		if d.Reason != "" {
			return d.Reason
		}
	}
	return ""
}

func newNetworkError(err error) error {
	return normalize.NetworkError("gemini", err)
}

func newDecodeError(err error) error {
	return normalize.DecodeError("gemini", err)
}
