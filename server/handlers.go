package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/petal-labs/coverkit/core"
	"github.com/petal-labs/coverkit/media"
)

type sessionResponse struct {
	Authenticated bool   `json:"authenticated"`
	Busy          bool   `json:"busy"`
	HasImage      bool   `json:"has_image"`
	Key           string `json:"key,omitempty"`
}

type credentialRequest struct {
	APIKey string `json:"api_key"`
}

type editRequest struct {
	Instruction string `json:"instruction"`
}

type imageResponse struct {
	Image    string `json:"image"`
	MimeType string `json:"mime_type"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.json(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) platforms(w http.ResponseWriter, r *http.Request) {
	s.json(w, http.StatusOK, core.Platforms())
}

func (s *Server) tags(w http.ResponseWriter, r *http.Request) {
	s.json(w, http.StatusOK, core.StyleTags())
}

func (s *Server) sessionStatus(w http.ResponseWriter, r *http.Request) {
	cred := s.session.Credential()
	resp := sessionResponse{
		Authenticated: !cred.IsEmpty(),
		Busy:          s.session.Busy(),
		HasImage:      !s.session.Current().IsZero(),
	}
	if resp.Authenticated {
		resp.Key = cred.Hint()
	}
	s.json(w, http.StatusOK, resp)
}

func (s *Server) putCredential(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBytes)
	var req credentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.error(w, r, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	cred, err := s.gate.Login(req.APIKey)
	if err != nil {
		if errors.Is(err, core.ErrInvalidCredentialFormat) {
			s.fail(w, r, err)
			return
		}
		s.error(w, r, http.StatusInternalServerError, "internal", "failed to store credential")
		return
	}
	s.session.SetCredential(cred)
	s.json(w, http.StatusOK, sessionResponse{
		Authenticated: true,
		Busy:          s.session.Busy(),
		HasImage:      !s.session.Current().IsZero(),
		Key:           cred.Hint(),
	})
}

func (s *Server) deleteCredential(w http.ResponseWriter, r *http.Request) {
	if err := s.gate.Logout(); err != nil {
		s.error(w, r, http.StatusInternalServerError, "internal", "failed to remove credential")
		return
	}
	s.session.Reset()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) generate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseMultipartForm(maxFormBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.fail(w, r, media.ErrTooLarge)
			return
		}
		s.error(w, r, http.StatusBadRequest, "bad_request", "invalid multipart form")
		return
	}

	req, err := s.coverRequest(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	art, err := s.session.Generate(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.json(w, http.StatusOK, imageResponse{Image: art.DataURI(), MimeType: art.MimeType})
}

func (s *Server) coverRequest(r *http.Request) (*core.CoverRequest, error) {
	req := core.NewCoverRequest()
	req.Platform = s.platform
	req.MainTitle = cleanText(r.FormValue("title"))
	req.SubTitle = cleanText(r.FormValue("subtitle"))
	req.CustomPrompt = cleanText(r.FormValue("prompt"))
	if p := r.FormValue("platform"); p != "" {
		req.Platform = core.PlatformID(p)
	}

	var tags []string
	tags = append(tags, r.MultipartForm.Value["tags"]...)
	tags = append(tags, r.MultipartForm.Value["tags[]"]...)
	for _, t := range tags {
		req.Tags.Add(cleanText(t))
	}

	var err error
	if req.Subject, err = formImage(r, "subject"); err != nil {
		return nil, err
	}
	if req.StyleRef, err = formImage(r, "style"); err != nil {
		return nil, err
	}
	return req, nil
}

// formImage returns the uploaded image in field, or nil when absent.
func formImage(r *http.Request, field string) (*core.Attachment, error) {
	f, hdr, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	defer f.Close()

	att, err := media.Read(f, hdr.Filename)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	return att, nil
}

func (s *Server) edit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBytes)
	var req editRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.fail(w, r, media.ErrTooLarge)
			return
		}
		s.error(w, r, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	art, err := s.session.Edit(r.Context(), cleanText(req.Instruction))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.json(w, http.StatusOK, imageResponse{Image: art.DataURI(), MimeType: art.MimeType})
}

func (s *Server) current(w http.ResponseWriter, r *http.Request) {
	art := s.session.Current()
	if art.IsZero() {
		s.error(w, r, http.StatusNotFound, "no_image", core.ErrNoArtifact.Error())
		return
	}
	s.json(w, http.StatusOK, imageResponse{Image: art.DataURI(), MimeType: art.MimeType})
}

func (s *Server) download(w http.ResponseWriter, r *http.Request) {
	art := s.session.Current()
	if art.IsZero() {
		s.error(w, r, http.StatusNotFound, "no_image", core.ErrNoArtifact.Error())
		return
	}
	data, err := art.Bytes()
	if err != nil {
		s.error(w, r, http.StatusInternalServerError, "internal", "stored image is not valid base64")
		return
	}

	w.Header().Set("Content-Type", art.MimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", media.DownloadName(s.now(), art.MimeType)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
