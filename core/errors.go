package core

import (
	"errors"
	"fmt"
	"strings"
)

// ProviderError represents an error returned by a provider with full context.
type ProviderError struct {
	Provider  string
	Status    int
	RequestID string
	Code      string
	Message   string
	Err       error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("%s: %s (status=%d, code=%s, request_id=%s)",
			e.Provider, e.Message, e.Status, e.Code, e.RequestID)
	}
	return fmt.Sprintf("%s: %s (status=%d, code=%s)",
		e.Provider, e.Message, e.Status, e.Code)
}

// Unwrap returns the underlying error for error chaining.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Sentinel errors for provider failure classification.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrRateLimited  = errors.New("rate limited")
	ErrBadRequest   = errors.New("bad request")
	ErrServer       = errors.New("server error")
	ErrNetwork      = errors.New("network error")
	ErrDecode       = errors.New("decode error")
	ErrNotSupported = errors.New("operation not supported")
)

// Validation and orchestration errors.
var (
	ErrMissingTitle            = errors.New("main title required: enter the cover's main title before generating")
	ErrUnknownPlatform         = errors.New("unknown platform")
	ErrInvalidCredentialFormat = errors.New("invalid API key format: Gemini keys start with \"AIza\" (get one at https://aistudio.google.com/app/apikey)")
	ErrMissingCredential       = errors.New("no API key: run 'coverkit login' first")
	ErrMissingInstruction      = errors.New("edit instruction required")
	ErrNoArtifact              = errors.New("no generated image to edit")
	ErrNoImageProduced         = errors.New("no image produced")
	ErrGenerationFailed        = errors.New("generation failed")
	ErrBusy                    = errors.New("a generation is already in progress")
)

// GenerationError reports a failed generate or edit call. Detail is
// carried by Err and surfaces verbatim in Error().
type GenerationError struct {
	Op  string // "generate" or "edit"
	Err error
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying failure.
func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrGenerationFailed) match every GenerationError
// except the ones that wrap ErrNoImageProduced.
func (e *GenerationError) Is(target error) bool {
	return target == ErrGenerationFailed && !errors.Is(e.Err, ErrNoImageProduced)
}

// credentialRejectionMarkers are substrings that signal a rejected key when
// no structured status is available.
var credentialRejectionMarkers = []string{"403", "API key", "API_KEY_INVALID"}

// IsInvalidCredential reports whether err means the API rejected the
// credential. Typed ErrUnauthorized is authoritative; message inspection is
// only a fallback for errors that lost their classification.
func IsInvalidCredential(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUnauthorized) {
		return true
	}
	if errors.Is(err, ErrMissingCredential) || errors.Is(err, ErrInvalidCredentialFormat) {
		return false
	}
	var pe *ProviderError
	if errors.As(err, &pe) && pe.Err != nil {
		// Classified provider errors are trusted as-is.
		return false
	}
	msg := err.Error()
	for _, m := range credentialRejectionMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
