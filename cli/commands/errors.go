package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/petal-labs/coverkit/core"
	"github.com/petal-labs/coverkit/media"
)

// Exit codes
const (
	ExitSuccess    = 0
	ExitValidation = 1
	ExitProvider   = 2
	ExitNetwork    = 3
	ExitCredential = 4
)

// exitError wraps an error with an exit code.
type exitError struct {
	code     int
	err      error
	reported bool // already written to stderr
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func (e *exitError) ExitCode() int {
	return e.code
}

func exitWithCode(code int, err error) error {
	return &exitError{code: code, err: err}
}

// ExitCode returns the process exit code for an error returned by Execute.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitCodeFor(err)
}

// exitCodeFor classifies an error from a generate or edit run.
func exitCodeFor(err error) int {
	switch {
	case core.IsInvalidCredential(err):
		return ExitCredential
	case errors.Is(err, core.ErrMissingTitle),
		errors.Is(err, core.ErrUnknownPlatform),
		errors.Is(err, core.ErrInvalidCredentialFormat),
		errors.Is(err, core.ErrMissingCredential),
		errors.Is(err, core.ErrMissingInstruction),
		errors.Is(err, core.ErrNoArtifact),
		errors.Is(err, media.ErrNotImage),
		errors.Is(err, media.ErrTooLarge):
		return ExitValidation
	case errors.Is(err, core.ErrNetwork):
		return ExitNetwork
	default:
		return ExitProvider
	}
}

// handleGenerationError reports err on stderr and wraps it with its exit code.
func (a *App) handleGenerationError(err error) error {
	var ee *exitError
	if errors.As(err, &ee) {
		return err
	}

	code := exitCodeFor(err)
	if a.jsonOutput {
		outputErrorJSON(a.stderr, err, code)
		return &exitError{code: code, err: err, reported: true}
	}

	fmt.Fprintf(a.stderr, "Error: %v\n", err)
	var provErr *core.ProviderError
	if errors.As(err, &provErr) && provErr.RequestID != "" {
		fmt.Fprintf(a.stderr, "  Provider: %s, Request ID: %s\n", provErr.Provider, provErr.RequestID)
	}
	if code == ExitCredential {
		fmt.Fprintln(a.stderr, "The stored API key was rejected and has been removed. Run 'coverkit login' with a valid key.")
	}
	return &exitError{code: code, err: err, reported: true}
}

func errorType(err error, code int) string {
	switch code {
	case ExitCredential:
		return "invalid_credential"
	case ExitValidation:
		return "validation_error"
	case ExitNetwork:
		return "network_error"
	}
	if errors.Is(err, core.ErrNoImageProduced) {
		return "no_image_produced"
	}
	return "generation_failed"
}

func outputErrorJSON(w io.Writer, err error, code int) {
	body := map[string]any{
		"type":    errorType(err, code),
		"message": err.Error(),
	}
	var provErr *core.ProviderError
	if errors.As(err, &provErr) {
		body["provider"] = provErr.Provider
		body["status"] = provErr.Status
		body["code"] = provErr.Code
		if provErr.RequestID != "" {
			body["request_id"] = provErr.RequestID
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(map[string]any{"error": body})
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
