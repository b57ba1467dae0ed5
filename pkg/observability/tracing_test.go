package observability

import (
	"context"
	"errors"
	"testing"
)

func TestNoOpTracer(t *testing.T) {
	tracer := NoOpTracer{}
	ctx := context.Background()

	newCtx, end := tracer.StartSpan(ctx, "test")

	// Should return same context
	if newCtx != ctx {
		t.Error("NoOpTracer should return same context")
	}

	// End should not panic
	end(nil)
	end(errors.New("test error"))
}

func TestOTelTracerWithoutProvider(t *testing.T) {
	// With no global provider installed, spans are no-ops but must still
	// be safe to start and end.
	tracer := NewOTelTracer("")

	ctx, end := tracer.StartSpan(context.Background(), "test")
	if ctx == nil {
		t.Fatal("nil context")
	}
	end(nil)

	_, end = tracer.StartSpan(context.Background(), "test-error")
	end(errors.New("test error"))
}
