package log

import (
	"context"
	"strconv"

	"go.uber.org/zap"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

// TraceFields returns dd.trace_id and dd.span_id for the span carried by ctx,
// formatted as decimal strings for Datadog log correlation. Nil without a span.
func TraceFields(ctx context.Context) []zap.Field {
	sp, ok := tracer.SpanFromContext(ctx)
	if !ok || sp == nil {
		return nil
	}
	sc := sp.Context()
	return []zap.Field{
		zap.String("dd.trace_id", strconv.FormatUint(sc.TraceID(), 10)),
		zap.String("dd.span_id", strconv.FormatUint(sc.SpanID(), 10)),
	}
}

// WithDD returns base (or the global logger when base is nil) with the trace
// fields of ctx and any extra fields attached.
func WithDD(ctx context.Context, base *zap.Logger, extra ...zap.Field) *zap.Logger {
	if base == nil {
		base = zap.L()
	}
	return base.With(append(extra, TraceFields(ctx)...)...)
}
