package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})

	return sr
}

func TestStartSpanAndEnd(t *testing.T) {
	sr := withRecorder(t)

	_, ok := StartSpan(context.Background(), "tool.execute", attribute.String("tool.name", "search"))
	End(ok, nil)

	_, failed := StartSpan(context.Background(), "model.invoke")
	End(failed, errors.New("boom"))

	spans := sr.Ended()
	require.Len(t, spans, 2)

	assert.Equal(t, "tool.execute", spans[0].Name())
	assert.Contains(t, spans[0].Attributes(), attribute.String("tool.name", "search"))
	assert.Equal(t, codes.Unset, spans[0].Status().Code)

	assert.Equal(t, "model.invoke", spans[1].Name())
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Equal(t, "boom", spans[1].Status().Description)
	require.Len(t, spans[1].Events(), 1)
	assert.Equal(t, "exception", spans[1].Events()[0].Name)
}

func TestStartSpan_ChildOfContext(t *testing.T) {
	sr := withRecorder(t)

	ctx, parent := StartSpan(context.Background(), "agent.run")
	_, child := StartSpan(ctx, "model.invoke")
	End(child, nil)
	End(parent, nil)

	spans := sr.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, spans[1].SpanContext().SpanID(), spans[0].Parent().SpanID())
}
