package observability

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	dbTracerName    = "guildwatch/db"
	eventTracerName = "guildwatch/router"
)

type contextKey string

const (
	eventKindKey contextKey = "observability.event_kind"
	guildIDKey   contextKey = "observability.guild_id"
	requestIDKey contextKey = "observability.request_id"
)

// Span is the application-level tracing span contract.
type Span interface {
	End()
	RecordError(error)
}

type otelSpan struct {
	inner trace.Span
}

// StartDBSpan starts a database tracing span for one query operation.
func StartDBSpan(ctx context.Context, queryName, operation string) (context.Context, Span) {
	queryName = strings.TrimSpace(queryName)
	if queryName == "" {
		queryName = "unknown"
	}
	attrs := []attribute.KeyValue{
		attribute.String("db.system.name", "sqlite"),
		attribute.String("db.query_name", queryName),
		attribute.String("db.operation", strings.TrimSpace(operation)),
	}
	if guildID, ok := GuildIDFromContext(ctx); ok {
		attrs = append(attrs, attribute.String("guildwatch.guild_id", guildID))
	}

	ctx, span := otel.Tracer(dbTracerName).Start(ctx, "db."+queryName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
	return ctx, otelSpan{inner: span}
}

// StartEventSpan starts the span covering one router dispatch and tags the
// context so logs emitted while handling it carry the event kind and guild.
func StartEventSpan(ctx context.Context, kind, guildID string) (context.Context, Span) {
	ctx = WithEventMetadata(ctx, kind, guildID)
	attrs := []attribute.KeyValue{attribute.String("guildwatch.event", kind)}
	if guildID = strings.TrimSpace(guildID); guildID != "" {
		attrs = append(attrs, attribute.String("guildwatch.guild_id", guildID))
	}
	ctx, span := otel.Tracer(eventTracerName).Start(ctx, "router."+kind,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(attrs...),
	)
	return ctx, otelSpan{inner: span}
}

// WithEventMetadata stores the event kind and guild on ctx.
func WithEventMetadata(ctx context.Context, kind, guildID string) context.Context {
	kind = strings.TrimSpace(kind)
	guildID = strings.TrimSpace(guildID)
	if kind != "" {
		ctx = context.WithValue(ctx, eventKindKey, kind)
	}
	if guildID != "" {
		ctx = context.WithValue(ctx, guildIDKey, guildID)
	}
	return ctx
}

// WithRequestID stores an HTTP request id on ctx.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return ctx
	}
	if span := trace.SpanFromContext(ctx); span != nil {
		span.SetAttributes(attribute.String("request.id", requestID))
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

// EventKindFromContext extracts the router event kind.
func EventKindFromContext(ctx context.Context) (string, bool) {
	value, ok := ctx.Value(eventKindKey).(string)
	return value, ok && value != ""
}

// GuildIDFromContext extracts the guild the current event concerns.
func GuildIDFromContext(ctx context.Context) (string, bool) {
	value, ok := ctx.Value(guildIDKey).(string)
	return value, ok && value != ""
}

// RequestIDFromContext extracts request id.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	value, ok := ctx.Value(requestIDKey).(string)
	return value, ok && value != ""
}

func (s otelSpan) End() {
	if s.inner == nil {
		return
	}
	s.inner.End()
}

func (s otelSpan) RecordError(err error) {
	if s.inner == nil || err == nil {
		return
	}
	s.inner.RecordError(err)
	s.inner.SetStatus(codes.Error, err.Error())
}
