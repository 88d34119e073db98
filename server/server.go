// Package server exposes a single-user coverkit session over HTTP.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/petal-labs/coverkit/core"
	"github.com/petal-labs/coverkit/gate"
	"github.com/petal-labs/coverkit/media"
	"github.com/petal-labs/coverkit/studio"
)

// Server holds the one browser session and its credential gate.
type Server struct {
	gate     *gate.Gate
	session  *studio.Session
	logger   zerolog.Logger
	now      func() time.Time
	platform core.PlatformID
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and error logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithClock sets the clock used for download file names.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// WithDefaultPlatform sets the platform used when a form omits one.
func WithDefaultPlatform(p core.PlatformID) Option {
	return func(s *Server) {
		if p != "" {
			s.platform = p
		}
	}
}

// New creates a server. The session starts with whatever credential the
// gate already holds.
func New(st *studio.Studio, g *gate.Gate, opts ...Option) *Server {
	s := &Server{
		gate:     g,
		logger:   zerolog.Nop(),
		now:      time.Now,
		platform: core.DefaultPlatformID,
	}
	for _, opt := range opts {
		opt(s)
	}

	cred, _ := g.Current()
	s.session = studio.NewSession(st, cred, g)
	return s
}

// Session returns the server's session.
func (s *Server) Session() *studio.Session {
	return s.session
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(
		RequestID,
		middleware.Recoverer,
		AccessLog(s.logger),
	)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.health)
		r.Get("/platforms", s.platforms)
		r.Get("/tags", s.tags)

		r.Get("/session", s.sessionStatus)
		r.Put("/session/credential", s.putCredential)
		r.Delete("/session/credential", s.deleteCredential)

		r.Route("/covers", func(r chi.Router) {
			r.Post("/", s.generate)
			r.Post("/edit", s.edit)
			r.Get("/current", s.current)
			r.Get("/current/download", s.download)
		})
	})
	return r
}

// maxFormBytes bounds a generate upload: two attachments plus text fields.
const maxFormBytes = 2*media.MaxAttachmentBytes + 1<<20

// maxJSONBytes bounds the JSON bodies of the credential and edit endpoints.
const maxJSONBytes = 64 << 10
