package telemetry_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.trai.ch/kiln/internal/adapters/telemetry"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func newRecordingTracer(t *testing.T) (*telemetry.OTelTracer, *tracetest.SpanRecorder) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return telemetry.NewOTelTracer(tp), recorder
}

func attrs(s sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	m := make(map[attribute.Key]attribute.Value)
	for _, kv := range s.Attributes() {
		m[kv.Key] = kv.Value
	}
	return m
}

func TestOTelTracer_StartWithAttributes(t *testing.T) {
	tracer, recorder := newRecordingTracer(t)

	_, span := tracer.Start(context.Background(), domain.SpanEnsure,
		ports.WithAttribute(domain.AttrRequestPath, "/app.css"))
	span.SetAttribute(domain.AttrOutcome, domain.OutcomeBuilt)
	span.SetAttribute(domain.AttrBytes, 12)
	span.SetAttribute(domain.AttrSkipped, false)
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, domain.SpanEnsure, ended[0].Name())

	got := attrs(ended[0])
	assert.Equal(t, "/app.css", got[domain.AttrRequestPath].AsString())
	assert.Equal(t, "built", got[domain.AttrOutcome].AsString())
	assert.Equal(t, int64(12), got[domain.AttrBytes].AsInt64())
	assert.False(t, got[domain.AttrSkipped].AsBool())
}

func TestOTelSpan_RecordError(t *testing.T) {
	tracer, recorder := newRecordingTracer(t)

	_, span := tracer.Start(context.Background(), domain.SpanBuild)
	span.RecordError(errors.New("stylus: transform failed"))
	span.RecordError(nil)
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "stylus: transform failed", ended[0].Status().Description)
	require.Len(t, ended[0].Events(), 1)
}

func TestOTelSpan_Write(t *testing.T) {
	tracer, recorder := newRecordingTracer(t)

	_, span := tracer.Start(context.Background(), domain.SpanBuild)
	n, err := span.Write([]byte("compiler output"))
	require.NoError(t, err)
	assert.Equal(t, 15, n)
	span.End()

	events := recorder.Ended()[0].Events()
	require.Len(t, events, 1)
	assert.Equal(t, "log", events[0].Name)
}

func TestOTelTracer_NestedSpans(t *testing.T) {
	tracer, recorder := newRecordingTracer(t)

	ctx, parent := tracer.Start(context.Background(), domain.SpanEnsure)
	_, child := tracer.Start(ctx, domain.SpanBuild)
	child.End()
	parent.End()

	ended := recorder.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, ended[1].SpanContext().SpanID(), ended[0].Parent().SpanID())
}

func TestBridge_LogsBuilds(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)

	mockLogger.EXPECT().Info(gomock.Cond(func(msg string) bool {
		return strings.HasPrefix(msg, "compiled /app.css with stylus (9 bytes, ")
	})).Times(1)
	mockLogger.EXPECT().Error(gomock.Cond(func(err error) bool {
		return strings.Contains(err.Error(), "failed to compile /broken.css") &&
			strings.Contains(err.Error(), "less: transform failed")
	})).Times(1)

	tracer := telemetry.NewOTelTracer(telemetry.NewProvider(mockLogger))
	ctx := context.Background()

	_, ok := tracer.Start(ctx, domain.SpanBuild,
		ports.WithAttribute(domain.AttrRequestPath, "/app.css"),
		ports.WithAttribute(domain.AttrTransform, "stylus"))
	ok.SetAttribute(domain.AttrBytes, 9)
	ok.End()

	_, failed := tracer.Start(ctx, domain.SpanBuild,
		ports.WithAttribute(domain.AttrRequestPath, "/broken.css"),
		ports.WithAttribute(domain.AttrTransform, "less"))
	failed.RecordError(errors.New("less: transform failed"))
	failed.End()

	_, skipped := tracer.Start(ctx, domain.SpanBuild, ports.WithAttribute(domain.AttrSkipped, true))
	skipped.End()

	_, other := tracer.Start(ctx, domain.SpanEnsure)
	other.End()
}

func TestNoOpTracer(t *testing.T) {
	tracer := telemetry.NewNoOpTracer()
	ctx := context.Background()

	newCtx, span := tracer.Start(ctx, domain.SpanBuild)
	assert.Equal(t, ctx, newCtx)

	span.SetAttribute("k", "v")
	span.RecordError(errors.New("boom"))
	n, err := span.Write([]byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	span.End()
}
