package core

import (
	"context"
	"time"
)

// TelemetryHook receives notifications about generation lifecycle events.
//
// Events carry operational metadata only. They never include the API key,
// the composed prompt, the title text or image bytes, so they are safe to
// log or export.
type TelemetryHook interface {
	// OnGenerationStart is called before the provider call is issued.
	// ctx is the context the call runs under.
	OnGenerationStart(ctx context.Context, e GenerationStartEvent)

	// OnGenerationEnd is called after the provider call returns, with the
	// same ctx as the matching start.
	OnGenerationEnd(ctx context.Context, e GenerationEndEvent)
}

// GenerationStartEvent describes a starting generate or edit call.
type GenerationStartEvent struct {
	Op          string     // "generate" or "edit"
	Provider    string     // provider identifier
	Model       ModelID    // model being called
	Platform    PlatformID // empty for edits
	Attachments int        // number of reference images sent
	Start       time.Time
}

// GenerationEndEvent describes a finished generate or edit call.
type GenerationEndEvent struct {
	Op       string
	Provider string
	Model    ModelID
	Start    time.Time
	End      time.Time
	Usage    TokenUsage
	Err      error // nil on success
}

// Duration returns the elapsed time for the call.
func (e GenerationEndEvent) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// NoopTelemetryHook is a no-op implementation of TelemetryHook.
type NoopTelemetryHook struct{}

// OnGenerationStart does nothing.
func (NoopTelemetryHook) OnGenerationStart(context.Context, GenerationStartEvent) {}

// OnGenerationEnd does nothing.
func (NoopTelemetryHook) OnGenerationEnd(context.Context, GenerationEndEvent) {}

var _ TelemetryHook = NoopTelemetryHook{}
