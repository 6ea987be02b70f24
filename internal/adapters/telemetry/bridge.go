package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ sdktrace.SpanProcessor = (*Bridge)(nil)

// Bridge implements sdktrace.SpanProcessor to report finished builds through a Logger.
type Bridge struct {
	logger ports.Logger
}

// NewBridge returns a new Bridge.
func NewBridge(logger ports.Logger) *Bridge {
	return &Bridge{logger: logger}
}

// OnStart does nothing.
func (b *Bridge) OnStart(_ context.Context, _ sdktrace.ReadWriteSpan) {}

// OnEnd logs build spans. Skipped builds are not reported.
func (b *Bridge) OnEnd(s sdktrace.ReadOnlySpan) {
	if b.logger == nil || s.Name() != domain.SpanBuild {
		return
	}

	var path, name string
	var size int64
	var skipped bool
	for _, kv := range s.Attributes() {
		switch kv.Key {
		case domain.AttrRequestPath:
			path = kv.Value.AsString()
		case domain.AttrTransform:
			name = kv.Value.AsString()
		case domain.AttrBytes:
			size = kv.Value.AsInt64()
		case domain.AttrSkipped:
			skipped = kv.Value.AsBool()
		}
	}

	if s.Status().Code == codes.Error {
		desc := s.Status().Description
		if desc == "" {
			desc = "build failed"
		}
		b.logger.Error(zerr.With(zerr.Wrap(errors.New(desc), "failed to compile "+path), "transform", name))
		return
	}

	if skipped {
		return
	}

	elapsed := s.EndTime().Sub(s.StartTime()).Round(time.Millisecond)
	b.logger.Info(fmt.Sprintf("compiled %s with %s (%d bytes, %s)", path, name, size, elapsed))
}

// ForceFlush does nothing.
func (b *Bridge) ForceFlush(_ context.Context) error {
	return nil
}

// Shutdown does nothing.
func (b *Bridge) Shutdown(_ context.Context) error {
	return nil
}

// NewProvider creates a tracer provider that reports builds to logger.
func NewProvider(logger ports.Logger) *sdktrace.TracerProvider {
	return sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(NewBridge(logger)))
}
