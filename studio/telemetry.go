package studio

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/petal-labs/coverkit/core"
)

// LogTelemetry writes generation events to a zerolog logger.
type LogTelemetry struct {
	Logger zerolog.Logger
}

// OnGenerationStart logs at debug level.
func (t LogTelemetry) OnGenerationStart(_ context.Context, e core.GenerationStartEvent) {
	t.Logger.Debug().
		Str("op", e.Op).
		Str("provider", e.Provider).
		Str("model", string(e.Model)).
		Str("platform", string(e.Platform)).
		Int("attachments", e.Attachments).
		Msg("generation started")
}

// OnGenerationEnd logs at info level, or error level on failure.
func (t LogTelemetry) OnGenerationEnd(_ context.Context, e core.GenerationEndEvent) {
	ev := t.Logger.Info()
	if e.Err != nil {
		ev = t.Logger.Error().Err(e.Err)
	}
	ev.Str("op", e.Op).
		Str("provider", e.Provider).
		Str("model", string(e.Model)).
		Dur("duration", e.Duration()).
		Int("prompt_tokens", e.Usage.PromptTokens).
		Int("completion_tokens", e.Usage.CompletionTokens).
		Msg("generation finished")
}

var _ core.TelemetryHook = LogTelemetry{}
