package chat

import (
	"context"

	"securechat/pkg/observability"
)

// Observer provides hooks for session lifecycle, metrics, and tracing.
// Implementations should be lightweight; callbacks may run on hot paths.
type Observer interface {
	OnHandshakeStart(ctx context.Context) (context.Context, func(error))
	OnEncrypt(ctx context.Context, plaintextLen int) (context.Context, func(error))
	OnDecrypt(ctx context.Context, ciphertextLen int) (context.Context, func(error))
	OnAuthFailure()
	OnSessionEnd()
}

// ObserverFactory builds a per-session observer.
type ObserverFactory func(session *Session) Observer

// TracingObserver records handshake and message crypto operations as spans.
type TracingObserver struct {
	tracer observability.Tracer
}

// NewTracingObserver creates an observer backed by the given tracer.
func NewTracingObserver(tracer observability.Tracer) *TracingObserver {
	if tracer == nil {
		tracer = observability.NoOpTracer{}
	}
	return &TracingObserver{tracer: tracer}
}

func (o *TracingObserver) OnHandshakeStart(ctx context.Context) (context.Context, func(error)) {
	return o.tracer.StartSpan(ctx, "chat.handshake")
}

func (o *TracingObserver) OnEncrypt(ctx context.Context, plaintextLen int) (context.Context, func(error)) {
	return o.tracer.StartSpan(ctx, "chat.encrypt")
}

func (o *TracingObserver) OnDecrypt(ctx context.Context, ciphertextLen int) (context.Context, func(error)) {
	return o.tracer.StartSpan(ctx, "chat.decrypt")
}

func (o *TracingObserver) OnAuthFailure() {}

func (o *TracingObserver) OnSessionEnd() {}
