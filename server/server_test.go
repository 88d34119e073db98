package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/petal-labs/coverkit/cli/keystore"
	"github.com/petal-labs/coverkit/core"
	"github.com/petal-labs/coverkit/gate"
	"github.com/petal-labs/coverkit/studio"
)

const testKey = "AIzaSyServerTest"

type fakeGenerator struct {
	mu       sync.Mutex
	requests []*core.ContentRequest
	resp     *core.ContentResponse
	err      error

	block   chan struct{}
	entered chan struct{}
}

func (f *fakeGenerator) ID() string { return "fake" }

func (f *fakeGenerator) GenerateContent(ctx context.Context, req *core.ContentRequest) (*core.ContentResponse, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	resp, err := f.resp, f.err
	f.mu.Unlock()

	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	return resp, err
}

func (f *fakeGenerator) last() *core.ContentRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return nil
	}
	return f.requests[len(f.requests)-1]
}

func imageResp(data string) *core.ContentResponse {
	return &core.ContentResponse{Parts: []core.Part{core.InlinePart("image/png", data)}}
}

func newTestServer(t *testing.T, gen *fakeGenerator, loggedIn bool) (*Server, *gate.Gate) {
	t.Helper()
	g := gate.New(keystore.NewMemoryKeystore())
	if loggedIn {
		if _, err := g.Login(testKey); err != nil {
			t.Fatal(err)
		}
	}
	clock := func() time.Time { return time.UnixMilli(1718000000000) }
	return New(studio.New(gen), g, WithClock(clock)), g
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func coverForm(t *testing.T, fields map[string][]string, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for name, values := range fields {
		for _, v := range values {
			if err := mw.WriteField(name, v); err != nil {
				t.Fatal(err)
			}
		}
	}
	for name, data := range files {
		fw, err := mw.CreateFormFile(name, name+".png")
		if err != nil {
			t.Fatal(err)
		}
		fw.Write(data)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &body, mw.FormDataContentType()
}

func do(t *testing.T, h http.Handler, method, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestCatalogEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, &fakeGenerator{}, false)
	h := srv.Handler()

	rec := do(t, h, http.MethodGet, "/api/health", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("health status = %d", rec.Code)
	}

	rec = do(t, h, http.MethodGet, "/api/platforms", nil, "")
	if diff := cmp.Diff(core.Platforms(), decode[[]core.Platform](t, rec)); diff != "" {
		t.Errorf("platforms mismatch (-want +got):\n%s", diff)
	}

	rec = do(t, h, http.MethodGet, "/api/tags", nil, "")
	if diff := cmp.Diff(core.StyleTags(), decode[[]string](t, rec)); diff != "" {
		t.Errorf("tags mismatch (-want +got):\n%s", diff)
	}
}

func TestRequestID(t *testing.T) {
	srv, _ := newTestServer(t, &fakeGenerator{}, false)
	h := srv.Handler()

	rec := do(t, h, http.MethodGet, "/api/health", nil, "")
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("missing generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("request id = %q, want echoed abc-123", got)
	}
}

func TestCredentialLifecycle(t *testing.T) {
	srv, g := newTestServer(t, &fakeGenerator{}, false)
	h := srv.Handler()

	got := decode[sessionResponse](t, do(t, h, http.MethodGet, "/api/session", nil, ""))
	if diff := cmp.Diff(sessionResponse{}, got); diff != "" {
		t.Errorf("initial session mismatch (-want +got):\n%s", diff)
	}

	rec := do(t, h, http.MethodPut, "/api/session/credential", bytes.NewBufferString(`{"api_key":"sk-wrong"}`), "application/json")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad format status = %d, want 400", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, "aistudio.google.com") {
		t.Errorf("bad format body = %s, want AI Studio hint", body)
	}

	rec = do(t, h, http.MethodPut, "/api/session/credential", bytes.NewBufferString(`{"api_key":"`+testKey+`"}`), "application/json")
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", rec.Code, rec.Body.String())
	}
	if !g.Present() {
		t.Error("credential not stored in gate")
	}
	got = decode[sessionResponse](t, do(t, h, http.MethodGet, "/api/session", nil, ""))
	if !got.Authenticated || got.Key != "AIza…" {
		t.Errorf("session = %+v, want authenticated with hint", got)
	}

	srv.Session().Load(core.NewArtifact("image/png", "eA=="))
	rec = do(t, h, http.MethodDelete, "/api/session/credential", nil, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("logout status = %d", rec.Code)
	}
	if g.Present() {
		t.Error("credential still stored after logout")
	}
	got = decode[sessionResponse](t, do(t, h, http.MethodGet, "/api/session", nil, ""))
	if got.Authenticated || got.HasImage {
		t.Errorf("session after logout = %+v, want cleared", got)
	}
}

func TestGenerateCover(t *testing.T) {
	gen := &fakeGenerator{resp: imageResp("aW1n")}
	srv, _ := newTestServer(t, gen, true)
	h := srv.Handler()

	body, ct := coverForm(t, map[string][]string{
		"title":    {"HTML <title> 标签详解"},
		"subtitle": {"转义 &lt; 符号\x07"},
		"platform": {"youtube"},
		"tags[]":   {"电影感", " 高饱和 "},
	}, map[string][]byte{"subject": pngBytes(t)})

	rec := do(t, h, http.MethodPost, "/api/covers", body, ct)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	got := decode[imageResponse](t, rec)
	want := imageResponse{Image: "data:image/png;base64,aW1n", MimeType: "image/png"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}

	sent := gen.last()
	if sent.AspectRatio != "16:9" {
		t.Errorf("AspectRatio = %q, want 16:9", sent.AspectRatio)
	}
	if sent.Credential.Expose() != testKey {
		t.Error("credential not forwarded to generator")
	}
	text := sent.Parts[len(sent.Parts)-1].Text
	for _, want := range []string{
		`Main Title Text (Must be legible and prominent in Chinese): "HTML <title> 标签详解"`,
		`Subtitle Text (Smaller): "转义 &lt; 符号"`,
		"Style Tags: 电影感, 高饱和",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("prompt missing %q:\n%s", want, text)
		}
	}

	got2 := decode[sessionResponse](t, do(t, h, http.MethodGet, "/api/session", nil, ""))
	if !got2.HasImage {
		t.Error("has_image = false after generation")
	}
}

func TestGenerateCoverErrors(t *testing.T) {
	tests := []struct {
		name     string
		loggedIn bool
		fields   map[string][]string
		files    map[string][]byte
		genErr   error
		resp     *core.ContentResponse
		want     int
		code     string
	}{
		{"no credential", false, map[string][]string{"title": {"t"}}, nil, nil, imageResp("eA=="), http.StatusUnauthorized, "missing_credential"},
		{"missing title", true, map[string][]string{"title": {"  "}}, nil, nil, imageResp("eA=="), http.StatusUnprocessableEntity, "missing_title"},
		{"control-only title", true, map[string][]string{"title": {"\x00\x1b"}}, nil, nil, imageResp("eA=="), http.StatusUnprocessableEntity, "missing_title"},
		{"unknown platform", true, map[string][]string{"title": {"t"}, "platform": {"tiktok"}}, nil, nil, imageResp("eA=="), http.StatusUnprocessableEntity, "unknown_platform"},
		{"not an image", true, map[string][]string{"title": {"t"}}, map[string][]byte{"style": []byte("plain text")}, nil, imageResp("eA=="), http.StatusUnsupportedMediaType, "not_image"},
		{"provider failure", true, map[string][]string{"title": {"t"}}, nil, core.ErrServer, nil, http.StatusBadGateway, "generation_failed"},
		{"no image", true, map[string][]string{"title": {"t"}}, nil, nil, &core.ContentResponse{}, http.StatusBadGateway, "no_image_produced"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t, &fakeGenerator{resp: tt.resp, err: tt.genErr}, tt.loggedIn)
			body, ct := coverForm(t, tt.fields, tt.files)
			rec := do(t, srv.Handler(), http.MethodPost, "/api/covers", body, ct)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
			got := decode[map[string]errorBody](t, rec)
			if got["error"].Code != tt.code {
				t.Errorf("code = %q, want %q", got["error"].Code, tt.code)
			}
		})
	}
}

func TestGenerateRejectedCredentialIsPurged(t *testing.T) {
	rejected := &core.ProviderError{Provider: "gemini", Status: 400, Code: "API_KEY_INVALID", Message: "API key not valid", Err: core.ErrUnauthorized}
	srv, g := newTestServer(t, &fakeGenerator{err: rejected}, true)
	h := srv.Handler()

	body, ct := coverForm(t, map[string][]string{"title": {"t"}}, nil)
	rec := do(t, h, http.MethodPost, "/api/covers", body, ct)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if g.Present() {
		t.Error("rejected credential still stored")
	}
	got := decode[sessionResponse](t, do(t, h, http.MethodGet, "/api/session", nil, ""))
	if got.Authenticated {
		t.Error("session still authenticated after rejection")
	}
}

func TestGenerateWhileBusy(t *testing.T) {
	gen := &fakeGenerator{
		resp:    imageResp("eA=="),
		block:   make(chan struct{}),
		entered: make(chan struct{}, 1),
	}
	srv, _ := newTestServer(t, gen, true)
	h := srv.Handler()

	first, firstCT := coverForm(t, map[string][]string{"title": {"first"}}, nil)
	done := make(chan int)
	go func() {
		req := httptest.NewRequest(http.MethodPost, "/api/covers", first)
		req.Header.Set("Content-Type", firstCT)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		done <- rec.Code
	}()
	<-gen.entered

	got := decode[sessionResponse](t, do(t, h, http.MethodGet, "/api/session", nil, ""))
	if !got.Busy {
		t.Error("busy = false during generation")
	}

	body, ct := coverForm(t, map[string][]string{"title": {"second"}}, nil)
	if rec := do(t, h, http.MethodPost, "/api/covers", body, ct); rec.Code != http.StatusConflict {
		t.Errorf("concurrent status = %d, want 409", rec.Code)
	}

	close(gen.block)
	if code := <-done; code != http.StatusOK {
		t.Errorf("first request status = %d, want 200", code)
	}
}

func TestEditCover(t *testing.T) {
	gen := &fakeGenerator{resp: imageResp("ZWRpdGVk")}
	srv, _ := newTestServer(t, gen, true)
	h := srv.Handler()

	rec := do(t, h, http.MethodPost, "/api/covers/edit", bytes.NewBufferString(`{"instruction":"brighter"}`), "application/json")
	if rec.Code != http.StatusConflict {
		t.Fatalf("edit without image status = %d, want 409", rec.Code)
	}

	srv.Session().Load(core.NewArtifact("image/png", "b3JpZw=="))
	rec = do(t, h, http.MethodPost, "/api/covers/edit", bytes.NewBufferString(`{"instruction":"  "}`), "application/json")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("blank instruction status = %d, want 422", rec.Code)
	}

	rec = do(t, h, http.MethodPost, "/api/covers/edit", bytes.NewBufferString(`{"instruction":"make it <b>brighter</b>"}`), "application/json")
	if rec.Code != http.StatusOK {
		t.Fatalf("edit status = %d: %s", rec.Code, rec.Body.String())
	}
	if got := decode[imageResponse](t, rec); got.Image != "data:image/png;base64,ZWRpdGVk" {
		t.Errorf("image = %q", got.Image)
	}
	sent := gen.last()
	if sent.AspectRatio != "" {
		t.Errorf("edit AspectRatio = %q, want empty", sent.AspectRatio)
	}
	if sent.Parts[0].Inline.Data != "b3JpZw==" {
		t.Errorf("edit sent %q, want previous image", sent.Parts[0].Inline.Data)
	}
	if !strings.HasSuffix(sent.Parts[1].Text, "Instruction: make it <b>brighter</b>") {
		t.Errorf("instruction = %q, want it sent as typed", sent.Parts[1].Text)
	}

	rec = do(t, h, http.MethodGet, "/api/covers/current", nil, "")
	if got := decode[imageResponse](t, rec); got.Image != "data:image/png;base64,ZWRpdGVk" {
		t.Errorf("current = %q, want edited image", got.Image)
	}
}

func TestEditFailureKeepsCurrent(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("upstream exploded")}
	srv, _ := newTestServer(t, gen, true)
	h := srv.Handler()
	srv.Session().Load(core.NewArtifact("image/png", "b3JpZw=="))

	rec := do(t, h, http.MethodPost, "/api/covers/edit", bytes.NewBufferString(`{"instruction":"x"}`), "application/json")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	if got := srv.Session().Current().Base64(); got != "b3JpZw==" {
		t.Errorf("current = %q, want previous image kept", got)
	}
}

func TestDownload(t *testing.T) {
	srv, _ := newTestServer(t, &fakeGenerator{}, true)
	h := srv.Handler()

	if rec := do(t, h, http.MethodGet, "/api/covers/current/download", nil, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("download without image status = %d, want 404", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/api/covers/current", nil, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("current without image status = %d, want 404", rec.Code)
	}

	srv.Session().Load(core.ArtifactFromBytes("image/png", []byte("pngdata")))
	rec := do(t, h, http.MethodGet, "/api/covers/current/download", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Disposition"); got != "attachment; filename=cover-1718000000000.png" {
		t.Errorf("Content-Disposition = %q", got)
	}
	if got := rec.Header().Get("Content-Type"); got != "image/png" {
		t.Errorf("Content-Type = %q", got)
	}
	if rec.Body.String() != "pngdata" {
		t.Errorf("body = %q, want decoded bytes", rec.Body.String())
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"  padded ", "  padded "},
		{"学会<div>布局", "学会<div>布局"},
		{"x<y>z", "x<y>z"},
		{"转义 &lt; 符号", "转义 &lt; 符号"},
		{"line one\nline\ttwo", "line one\nline\ttwo"},
		{"bell\x07 and nul\x00 and del\x7f", "bell and nul and del"},
	}
	for _, tt := range tests {
		if got := cleanText(tt.in); got != tt.want {
			t.Errorf("cleanText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDownloadUsesMimeExtension(t *testing.T) {
	srv, _ := newTestServer(t, &fakeGenerator{}, true)
	srv.Session().Load(core.ArtifactFromBytes("image/jpeg", []byte("\xff\xd8jpeg")))

	rec := do(t, srv.Handler(), http.MethodGet, "/api/covers/current/download", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Disposition"); got != "attachment; filename=cover-1718000000000.jpg" {
		t.Errorf("Content-Disposition = %q", got)
	}
	if got := rec.Header().Get("Content-Type"); got != "image/jpeg" {
		t.Errorf("Content-Type = %q", got)
	}
}

func TestEditBodyTooLarge(t *testing.T) {
	gen := &fakeGenerator{resp: imageResp("ZWRpdGVk")}
	srv, _ := newTestServer(t, gen, true)
	srv.Session().Load(core.NewArtifact("image/png", "b3JpZw=="))

	body := bytes.NewBufferString(`{"instruction":"` + strings.Repeat("a", maxJSONBytes) + `"}`)
	rec := do(t, srv.Handler(), http.MethodPost, "/api/covers/edit", body, "application/json")
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413: %s", rec.Code, rec.Body.String())
	}
	if gen.last() != nil {
		t.Error("oversized edit reached the generator")
	}
}
