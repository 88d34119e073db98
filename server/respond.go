package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"unicode"

	"github.com/petal-labs/coverkit/core"
	"github.com/petal-labs/coverkit/media"
)

// cleanText drops control characters other than newline and tab. Text is
// otherwise passed through as typed, markup and entities included.
func cleanText(s string) string {
	return strings.Map(func(r rune) rune {
		if r != '\n' && r != '\t' && unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

type errorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) error(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	s.json(w, status, map[string]errorBody{"error": {
		Code:      code,
		Message:   msg,
		RequestID: RequestIDFromContext(r.Context()),
	}})
}

// fail maps a studio or gate error to an HTTP response.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	ev := s.logger.Warn()
	if status >= http.StatusInternalServerError {
		ev = s.logger.Error()
	}
	ev.Err(err).Str("request_id", RequestIDFromContext(r.Context())).Str("code", code).Msg("request failed")
	s.error(w, r, status, code, err.Error())
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, core.ErrMissingCredential):
		return http.StatusUnauthorized, "missing_credential"
	case errors.Is(err, core.ErrInvalidCredentialFormat):
		return http.StatusBadRequest, "invalid_credential_format"
	case errors.Is(err, core.ErrBusy):
		return http.StatusConflict, "busy"
	case errors.Is(err, core.ErrNoArtifact):
		return http.StatusConflict, "no_image"
	case errors.Is(err, core.ErrMissingTitle):
		return http.StatusUnprocessableEntity, "missing_title"
	case errors.Is(err, core.ErrUnknownPlatform):
		return http.StatusUnprocessableEntity, "unknown_platform"
	case errors.Is(err, core.ErrMissingInstruction):
		return http.StatusUnprocessableEntity, "missing_instruction"
	case errors.Is(err, media.ErrNotImage):
		return http.StatusUnsupportedMediaType, "not_image"
	case errors.Is(err, media.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, "too_large"
	case core.IsInvalidCredential(err):
		return http.StatusUnauthorized, "invalid_credential"
	case errors.Is(err, core.ErrNoImageProduced):
		return http.StatusBadGateway, "no_image_produced"
	default:
		return http.StatusBadGateway, "generation_failed"
	}
}
