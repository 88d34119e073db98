// Package studio turns cover requests into generated images.
//
// A Studio performs the two provider calls, generate and edit. A Session
// adds the per-user state around them: the credential, the current image
// and the single in-flight guard.
package studio

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/petal-labs/coverkit/core"
	"github.com/petal-labs/coverkit/media"
)

const (
	opGenerate = "generate"
	opEdit     = "edit"
)

// Studio is safe for concurrent use. It holds no per-session state.
type Studio struct {
	gen       core.ImageGenerator
	model     core.ModelID
	logger    zerolog.Logger
	telemetry core.TelemetryHook
	now       func() time.Time
}

// Option configures a Studio.
type Option func(*Studio)

// WithModel sets the model sent on every call. Empty leaves the
// provider default in place.
func WithModel(model core.ModelID) Option {
	return func(s *Studio) {
		s.model = model
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Studio) {
		s.logger = l
	}
}

// WithTelemetry sets the telemetry hook.
func WithTelemetry(h core.TelemetryHook) Option {
	return func(s *Studio) {
		if h != nil {
			s.telemetry = h
		}
	}
}

// New creates a Studio around gen.
func New(gen core.ImageGenerator, opts ...Option) *Studio {
	s := &Studio{
		gen:       gen,
		logger:    zerolog.Nop(),
		telemetry: core.NoopTelemetryHook{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate renders req into a prompt and makes one provider call with the
// platform's aspect ratio. The first inline image returned wins.
func (s *Studio) Generate(ctx context.Context, credential core.Secret, req *core.CoverRequest) (core.Artifact, error) {
	if credential.IsEmpty() {
		return core.Artifact{}, core.ErrMissingCredential
	}
	if err := req.Validate(); err != nil {
		return core.Artifact{}, err
	}
	platform, err := req.ResolvePlatform()
	if err != nil {
		return core.Artifact{}, err
	}

	encoded, err := media.EncodeAttachments(ctx, req.Subject, req.StyleRef)
	if err != nil {
		return core.Artifact{}, &core.GenerationError{Op: opGenerate, Err: err}
	}

	creq := &core.ContentRequest{
		Model:       s.model,
		Parts:       core.ComposeCoverPrompt(req, platform, encoded[0], encoded[1]),
		AspectRatio: platform.Ratio,
		Credential:  credential,
	}

	attachments := 0
	for _, e := range encoded {
		if e != nil {
			attachments++
		}
	}

	return s.call(ctx, opGenerate, creq, platform.ID, attachments)
}

// Edit resubmits current with a modification instruction. No aspect ratio
// is sent so the service keeps the input's framing.
func (s *Studio) Edit(ctx context.Context, credential core.Secret, current core.Artifact, instruction string) (core.Artifact, error) {
	if credential.IsEmpty() {
		return core.Artifact{}, core.ErrMissingCredential
	}
	if current.IsZero() {
		return core.Artifact{}, core.ErrNoArtifact
	}
	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		return core.Artifact{}, core.ErrMissingInstruction
	}

	creq := &core.ContentRequest{
		Model:      s.model,
		Parts:      core.ComposeEditPrompt(current.MimeType, core.StripDataURIPrefix(current.Base64()), instruction),
		Credential: credential,
	}

	return s.call(ctx, opEdit, creq, "", 1)
}

func (s *Studio) call(ctx context.Context, op string, creq *core.ContentRequest, platform core.PlatformID, attachments int) (core.Artifact, error) {
	start := s.now()
	s.telemetry.OnGenerationStart(ctx, core.GenerationStartEvent{
		Op:          op,
		Provider:    s.gen.ID(),
		Model:       creq.Model,
		Platform:    platform,
		Attachments: attachments,
		Start:       start,
	})

	resp, err := s.gen.GenerateContent(ctx, creq)
	if err == nil && resp == nil {
		resp = &core.ContentResponse{}
	}

	var art core.Artifact
	if err == nil {
		if img, ok := resp.FirstImage(); ok {
			art = core.NewArtifact(img.MimeType, img.Data)
		} else {
			err = core.ErrNoImageProduced
			s.logger.Debug().
				Str("op", op).
				Str("finish_reason", resp.FinishReason).
				Int("text_len", len(resp.Text())).
				Msg("response carried no image")
		}
	}

	end := core.GenerationEndEvent{
		Op:       op,
		Provider: s.gen.ID(),
		Model:    creq.Model,
		Start:    start,
		End:      s.now(),
		Err:      err,
	}
	if resp != nil {
		end.Usage = resp.Usage
	}
	s.telemetry.OnGenerationEnd(ctx, end)

	if err != nil {
		return core.Artifact{}, &core.GenerationError{Op: op, Err: err}
	}
	return art, nil
}
