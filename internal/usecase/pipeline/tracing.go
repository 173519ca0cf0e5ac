package pipeline

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	traceScope = "interview-scheduler/pipeline"

	traceSpanRun   = "pipeline.run"
	traceSpanStage = "pipeline.stage"

	traceAttrCallID   = "scheduler.call_id"
	traceAttrStage    = "scheduler.stage"
	traceAttrStatus   = "scheduler.status"
	traceAttrFallback = "scheduler.fallback"
)

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(traceScope).Start(ctx, name, trace.WithAttributes(attrs...))
}

func markSpanResult(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, "")
}
