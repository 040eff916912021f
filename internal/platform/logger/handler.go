package logger

import (
	"context"
	"log/slog"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"
)

// ContextHandler adds the request id and the active trace to every record logged with a context.
type ContextHandler struct {
	h slog.Handler
}

func NewContextHandler(h slog.Handler) ContextHandler {
	return ContextHandler{h: h}
}

func (ch ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return ch.h.Enabled(ctx, level)
}

func (ch ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		r.Add("request_id", slog.StringValue(reqID))
	}

	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		r.Add("trace_id", slog.StringValue(spanCtx.TraceID().String()))
		r.Add("span_id", slog.StringValue(spanCtx.SpanID().String()))
	}

	return ch.h.Handle(ctx, r)
}

func (ch ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return NewContextHandler(ch.h.WithAttrs(attrs))
}

func (ch ContextHandler) WithGroup(name string) slog.Handler {
	return NewContextHandler(ch.h.WithGroup(name))
}
