// Package observability provides OpenTelemetry-based instrumentation for query
// translation and search execution.
//
// It supports distributed tracing, metrics collection, Server-Timing headers
// and trace-aware structured logging.
//
// All observability features are opt-in. When not configured, no-op
// implementations are used.
package observability

import "go.opentelemetry.io/otel/attribute"

// Instrumentation identity constants
const (
	// TracerName is the instrumentation name for tracing.
	TracerName = "github.com/nlstn/go-odata-search"
	// MeterName is the instrumentation name for metrics.
	MeterName = "github.com/nlstn/go-odata-search"
)

// Span names.
const (
	SpanFilter  = "odatasearch.filter"
	SpanOrderBy = "odatasearch.orderby"
	SpanSearch  = "odatasearch.search"
	SpanHTTP    = "odatasearch.http"
)

// Semantic attribute keys.
const (
	// Query attributes
	AttrQueryFilter  = "odatasearch.query.filter"
	AttrQueryOrderBy = "odatasearch.query.orderby"
	AttrQueryTop     = "odatasearch.query.top"
	AttrQuerySkip    = "odatasearch.query.skip"
	AttrSchema       = "odatasearch.schema"

	// Translation attributes
	AttrTranslation = "odatasearch.translation"
	AttrSuccess     = "odatasearch.success"
	AttrFingerprint = "odatasearch.fingerprint"
	AttrCriteria    = "odatasearch.sort.criteria"

	// Result attributes
	AttrResultCount = "odatasearch.result.count"
	AttrTotalHits   = "odatasearch.result.total"

	// Error attributes
	AttrErrorType = "error.type"
)

// Translation kinds for the odatasearch.translation attribute.
const (
	TranslationFilter  = "filter"
	TranslationOrderBy = "orderby"
)

// Log field keys for structured logging with trace context.
const (
	LogFieldTraceID     = "trace_id"
	LogFieldSpanID      = "span_id"
	LogFieldFilter      = "filter"
	LogFieldOrderBy     = "orderby"
	LogFieldFingerprint = "fingerprint"
	LogFieldDuration    = "duration"
	LogFieldResultCount = "result_count"
	LogFieldError       = "error"
)

// QueryFilterAttr creates an attribute for the $filter expression.
func QueryFilterAttr(filter string) attribute.KeyValue {
	return attribute.String(AttrQueryFilter, filter)
}

// QueryOrderByAttr creates an attribute for the $orderby expression.
func QueryOrderByAttr(orderby string) attribute.KeyValue {
	return attribute.String(AttrQueryOrderBy, orderby)
}

// QueryTopAttr creates an attribute for the $top value.
func QueryTopAttr(top int) attribute.KeyValue {
	return attribute.Int(AttrQueryTop, top)
}

// QuerySkipAttr creates an attribute for the $skip value.
func QuerySkipAttr(skip int) attribute.KeyValue {
	return attribute.Int(AttrQuerySkip, skip)
}

// SchemaAttr creates an attribute for the content type name.
func SchemaAttr(name string) attribute.KeyValue {
	return attribute.String(AttrSchema, name)
}

// TranslationAttr creates an attribute for the translation kind.
func TranslationAttr(kind string) attribute.KeyValue {
	return attribute.String(AttrTranslation, kind)
}

// SuccessAttr creates an attribute for the outcome of an operation.
func SuccessAttr(ok bool) attribute.KeyValue {
	return attribute.Bool(AttrSuccess, ok)
}

// FingerprintAttr creates an attribute for a filter fingerprint, formatted as
// hexadecimal.
func FingerprintAttr(fingerprint uint64) attribute.KeyValue {
	return attribute.String(AttrFingerprint, FormatFingerprint(fingerprint))
}

// ResultCountAttr creates an attribute for the number of returned documents.
func ResultCountAttr(count int) attribute.KeyValue {
	return attribute.Int(AttrResultCount, count)
}

// TotalHitsAttr creates an attribute for the number of matching documents.
func TotalHitsAttr(total uint64) attribute.KeyValue {
	return attribute.Int64(AttrTotalHits, int64(total))
}

// ErrorTypeAttr creates an attribute for the error type.
func ErrorTypeAttr(errorType string) attribute.KeyValue {
	return attribute.String(AttrErrorType, errorType)
}

// CriteriaAttr creates an attribute for the number of sort criteria.
func CriteriaAttr(count int) attribute.KeyValue {
	return attribute.Int(AttrCriteria, count)
}
