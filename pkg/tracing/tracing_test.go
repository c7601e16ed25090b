package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func installRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	Install(tp)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return recorder
}

func TestInitTracer_Disabled(t *testing.T) {
	shutdown, err := InitTracer(false, "bookshop-api", "localhost:4317")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestStartSpan_ParentChild(t *testing.T) {
	recorder := installRecorder(t)

	ctx, parent := StartSpan(context.Background(), "order", "Checkout", attribute.Int("user_id", 3))
	_, child := StartSpan(ctx, "order", "InsertOrder")
	child.End()
	parent.End()

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "InsertOrder", spans[0].Name())
	assert.Equal(t, spans[1].SpanContext().SpanID(), spans[0].Parent().SpanID())
	assert.Contains(t, spans[1].Attributes(), attribute.Int("user_id", 3))
}

func TestRecordError(t *testing.T) {
	recorder := installRecorder(t)

	_, span := StartSpan(context.Background(), "order", "CompleteOrder")
	RecordError(span, nil)
	RecordError(span, errors.New("claim code mismatch"))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Len(t, ended[0].Events(), 1)
}

func TestExtractTraceID(t *testing.T) {
	assert.Empty(t, ExtractTraceID(context.Background()))

	installRecorder(t)
	ctx, span := StartSpan(context.Background(), "order", "GetOrder")
	defer span.End()

	assert.Len(t, ExtractTraceID(ctx), 32)
}
