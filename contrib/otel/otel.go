// Package otel exports coverkit generation telemetry as OpenTelemetry spans.
//
//	hook := otel.NewHook(otel.WithTracerProvider(tp))
//	st := studio.New(gen, studio.WithTelemetry(hook))
package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/petal-labs/coverkit/core"
)

const instrumentationName = "github.com/petal-labs/coverkit/contrib/otel"

// Attribute keys set on every span.
const (
	AttrOp               = attribute.Key("coverkit.op")
	AttrProvider         = attribute.Key("coverkit.provider")
	AttrModel            = attribute.Key("coverkit.model")
	AttrPromptTokens     = attribute.Key("coverkit.tokens.prompt")
	AttrCompletionTokens = attribute.Key("coverkit.tokens.completion")
	AttrTotalTokens      = attribute.Key("coverkit.tokens.total")
)

// Hook implements core.TelemetryHook. One span is recorded per call,
// backdated to the call's start time and parented by any span in the
// call's context.
type Hook struct {
	tracer trace.Tracer
}

// Option configures a Hook.
type Option func(*config)

type config struct {
	provider trace.TracerProvider
}

// WithTracerProvider sets the provider spans are created from. The global
// provider is used otherwise.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *config) {
		c.provider = tp
	}
}

// NewHook creates a Hook.
func NewHook(opts ...Option) *Hook {
	c := config{provider: otel.GetTracerProvider()}
	for _, opt := range opts {
		opt(&c)
	}
	return &Hook{tracer: c.provider.Tracer(instrumentationName)}
}

// OnGenerationStart does nothing; the span is emitted when the call ends.
func (h *Hook) OnGenerationStart(context.Context, core.GenerationStartEvent) {}

// OnGenerationEnd records the finished call.
func (h *Hook) OnGenerationEnd(ctx context.Context, e core.GenerationEndEvent) {
	if ctx == nil {
		ctx = context.Background()
	}
	_, span := h.tracer.Start(ctx, "coverkit."+e.Op,
		trace.WithTimestamp(e.Start),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			AttrOp.String(e.Op),
			AttrProvider.String(e.Provider),
			AttrModel.String(string(e.Model)),
		),
	)

	if e.Usage.TotalTokens > 0 {
		span.SetAttributes(
			AttrPromptTokens.Int(e.Usage.PromptTokens),
			AttrCompletionTokens.Int(e.Usage.CompletionTokens),
			AttrTotalTokens.Int(e.Usage.TotalTokens),
		)
	}
	if e.Err != nil {
		span.RecordError(e.Err)
		span.SetStatus(codes.Error, e.Err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End(trace.WithTimestamp(e.End))
}

var _ core.TelemetryHook = (*Hook)(nil)
