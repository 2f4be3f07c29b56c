package observability

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer wraps an OpenTelemetry tracer with search-specific span creation methods.
type Tracer struct {
	tracer      trace.Tracer
	serviceName string
}

// NewTracer creates a new Tracer using the given TracerProvider.
func NewTracer(tp trace.TracerProvider, serviceName string) *Tracer {
	return &Tracer{
		tracer:      tp.Tracer(TracerName),
		serviceName: serviceName,
	}
}

// StartSpan starts a new span with the given name and attributes.
func (t *Tracer) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// StartFilter starts a span for the translation of a $filter expression.
func (t *Tracer) StartFilter(ctx context.Context, schema, filter string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, SpanFilter, trace.WithAttributes(
		TranslationAttr(TranslationFilter),
		SchemaAttr(schema),
		QueryFilterAttr(filter),
	))
}

// StartOrderBy starts a span for the translation of an $orderby expression.
func (t *Tracer) StartOrderBy(ctx context.Context, schema, orderby string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, SpanOrderBy, trace.WithAttributes(
		TranslationAttr(TranslationOrderBy),
		SchemaAttr(schema),
		QueryOrderByAttr(orderby),
	))
}

// StartSearch starts a span for the execution of a translated query.
func (t *Tracer) StartSearch(ctx context.Context, fingerprint uint64, top, skip int) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, SpanSearch, trace.WithAttributes(
		FingerprintAttr(fingerprint),
		QueryTopAttr(top),
		QuerySkipAttr(skip),
	))
}

// StartDBQuery starts a span for a schema store query.
func (t *Tracer) StartDBQuery(ctx context.Context, operation string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "db.query", trace.WithAttributes(
		attribute.String("db.operation", operation),
	))
}

// EndTranslation records the outcome of a translation on its span.
func (t *Tracer) EndTranslation(span trace.Span, fingerprint uint64, err error) {
	span.SetAttributes(SuccessAttr(err == nil))
	if err != nil {
		t.RecordError(span, err)
		return
	}
	if fingerprint != 0 {
		span.SetAttributes(FingerprintAttr(fingerprint))
	}
}

// SetHTTPStatus sets the HTTP status code on the current span.
func (t *Tracer) SetHTTPStatus(ctx context.Context, statusCode int) {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attribute.Int("http.status_code", statusCode))
	if statusCode >= 400 {
		span.SetStatus(codes.Error, http.StatusText(statusCode))
	}
}

// RecordError records an error on the span.
func (t *Tracer) RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// FormatFingerprint formats a filter fingerprint as 16 hexadecimal digits.
func FormatFingerprint(fingerprint uint64) string {
	return fmt.Sprintf("%016x", fingerprint)
}

// LoggerWithTrace returns a logger enriched with trace context.
func LoggerWithTrace(ctx context.Context, logger *slog.Logger) *slog.Logger {
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return logger
	}
	return logger.With(
		slog.String(LogFieldTraceID, span.SpanContext().TraceID().String()),
		slog.String(LogFieldSpanID, span.SpanContext().SpanID().String()),
	)
}
