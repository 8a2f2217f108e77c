package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func fieldMap(entry observer.LoggedEntry) map[string]any {
	return entry.ContextMap()
}

func validSpanContext(t *testing.T) trace.SpanContext {
	t.Helper()
	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	return trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
}

func TestFromContext(t *testing.T) {
	t.Run("returns stored logger", func(t *testing.T) {
		l := zap.NewExample()
		assert.Same(t, l, FromContext(WithContext(context.Background(), l)))
	})

	t.Run("falls back to no-op", func(t *testing.T) {
		assert.NotNil(t, FromContext(context.Background()))
	})
}

func TestWithRequestID(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)

	ctx, l := WithRequestID(context.Background(), zap.New(core), "req-123")
	l.Info("hello")

	assert.Equal(t, "req-123", GetRequestID(ctx))
	require.Equal(t, 1, recorded.Len())
	assert.Equal(t, "req-123", fieldMap(recorded.All()[0])["request_id"])
}

func TestFlowTags(t *testing.T) {
	ctx := WithBatchID(WithMarketplace(context.Background(), "amazon"), "1700000000000")

	assert.Equal(t, "amazon", GetMarketplace(ctx))
	assert.Equal(t, "1700000000000", GetBatchID(ctx))
	assert.Empty(t, GetRequestID(ctx))
}

func TestTraceIDs(t *testing.T) {
	t.Run("empty without span", func(t *testing.T) {
		assert.Empty(t, GetTraceID(context.Background()))
		assert.Empty(t, GetSpanID(context.Background()))
	})

	t.Run("read from span context", func(t *testing.T) {
		ctx := trace.ContextWithSpanContext(context.Background(), validSpanContext(t))
		assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", GetTraceID(ctx))
		assert.Equal(t, "00f067aa0ba902b7", GetSpanID(ctx))
	})
}

func TestContextLogger(t *testing.T) {
	t.Run("injects trace and flow fields", func(t *testing.T) {
		core, recorded := observer.New(zapcore.InfoLevel)
		ctx, _ := WithRequestID(context.Background(), zap.New(core), "req-1")
		ctx = trace.ContextWithSpanContext(ctx, validSpanContext(t))
		ctx = WithMarketplace(ctx, "yahoo")
		ctx = WithBatchID(ctx, "1700000000001")

		L(ctx).Info("Shipments created", zap.Int("count", 2))

		require.Equal(t, 1, recorded.Len())
		fields := fieldMap(recorded.All()[0])
		assert.Equal(t, "req-1", fields["request_id"])
		assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", fields["trace_id"])
		assert.Equal(t, "yahoo", fields["marketplace"])
		assert.Equal(t, "1700000000001", fields["batch_id"])
		assert.EqualValues(t, 2, fields["count"])
	})

	t.Run("WithLogger attaches request id", func(t *testing.T) {
		core, recorded := observer.New(zapcore.InfoLevel)
		ctx := context.WithValue(context.Background(), requestIDKey, "req-2")

		WithLogger(ctx, zap.New(core)).With(zap.String("op", "merge")).Warn("Merge rejected")

		require.Equal(t, 1, recorded.Len())
		entry := recorded.All()[0]
		assert.Equal(t, zapcore.WarnLevel, entry.Level)
		assert.Equal(t, "req-2", fieldMap(entry)["request_id"])
		assert.Equal(t, "merge", fieldMap(entry)["op"])
	})

	t.Run("no fields without context values", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		WithLogger(context.Background(), zap.New(core)).Debug("plain")

		require.Equal(t, 1, recorded.Len())
		assert.Empty(t, recorded.All()[0].Context)
	})

	t.Run("nil logger is safe", func(t *testing.T) {
		assert.NotPanics(t, func() {
			WithLogger(context.Background(), nil).Error("dropped")
		})
	})
}
