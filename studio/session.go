package studio

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/petal-labs/coverkit/core"
)

// Invalidator is told when the service rejects the session's credential.
type Invalidator interface {
	Invalidate(reason error) error
}

// Session is one user's working state: the credential, the current
// image and the busy guard. Only one Generate or Edit runs at a time;
// a call made while another is in flight returns core.ErrBusy.
type Session struct {
	id     string
	studio *Studio
	inv    Invalidator
	logger zerolog.Logger

	busy Busy

	mu         sync.RWMutex
	credential core.Secret
	current    core.Artifact
}

// NewSession creates a session. inv may be nil.
func NewSession(st *Studio, credential core.Secret, inv Invalidator) *Session {
	id := uuid.NewString()
	return &Session{
		id:         id,
		studio:     st,
		inv:        inv,
		logger:     st.logger.With().Str("session", id).Logger(),
		credential: credential,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Credential returns the active credential, empty when none is set.
func (s *Session) Credential() core.Secret {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.credential
}

// SetCredential replaces the credential.
func (s *Session) SetCredential(c core.Secret) {
	s.mu.Lock()
	s.credential = c
	s.mu.Unlock()
}

// Current returns the current image, zero when none has been produced.
func (s *Session) Current() core.Artifact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Busy reports whether a call is in flight.
func (s *Session) Busy() bool {
	return s.busy.Active()
}

// Reset drops the credential and the current image.
func (s *Session) Reset() {
	s.mu.Lock()
	s.credential = core.Secret{}
	s.current = core.Artifact{}
	s.mu.Unlock()
}

// Generate produces a new cover and makes it the current image.
func (s *Session) Generate(ctx context.Context, req *core.CoverRequest) (core.Artifact, error) {
	if !s.busy.TryAcquire() {
		return core.Artifact{}, core.ErrBusy
	}
	defer s.busy.Release()

	art, err := s.studio.Generate(ctx, s.Credential(), req)
	if err != nil {
		return core.Artifact{}, s.fail(err)
	}
	s.setCurrent(art)
	return art, nil
}

// Edit applies instruction to the current image and replaces it with the
// result. The previous image is discarded.
func (s *Session) Edit(ctx context.Context, instruction string) (core.Artifact, error) {
	if !s.busy.TryAcquire() {
		return core.Artifact{}, core.ErrBusy
	}
	defer s.busy.Release()

	art, err := s.studio.Edit(ctx, s.Credential(), s.Current(), instruction)
	if err != nil {
		return core.Artifact{}, s.fail(err)
	}
	s.setCurrent(art)
	return art, nil
}

// Load makes a previously saved image the current one so it can be edited.
func (s *Session) Load(a core.Artifact) {
	s.setCurrent(a)
}

func (s *Session) setCurrent(a core.Artifact) {
	s.mu.Lock()
	s.current = a
	s.mu.Unlock()
}

// fail purges the credential when err means the service rejected it.
func (s *Session) fail(err error) error {
	if !core.IsInvalidCredential(err) {
		return err
	}

	s.logger.Warn().Err(err).Msg("credential rejected, clearing")
	s.SetCredential(core.Secret{})
	if s.inv != nil {
		if ierr := s.inv.Invalidate(err); ierr != nil {
			s.logger.Error().Err(ierr).Msg("failed to purge stored credential")
		}
	}
	return err
}
