package observability

import (
	"go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// NewNoopTracer creates a tracer that does nothing.
func NewNoopTracer() *Tracer {
	return &Tracer{
		tracer:      tracenoop.NewTracerProvider().Tracer(""),
		serviceName: "",
	}
}

// NewNoopMetrics creates metrics that do nothing.
func NewNoopMetrics() *Metrics {
	meter := noop.NewMeterProvider().Meter("")
	m := &Metrics{}

	// The noop meter never returns errors.
	m.translationCount, _ = meter.Int64Counter(MetricTranslationCount)         //nolint:errcheck
	m.translationDuration, _ = meter.Float64Histogram(MetricTranslationDuration) //nolint:errcheck
	m.translationErrors, _ = meter.Int64Counter(MetricTranslationErrors)       //nolint:errcheck
	m.searchDuration, _ = meter.Float64Histogram(MetricSearchDuration)         //nolint:errcheck
	m.resultCount, _ = meter.Int64Histogram(MetricResultCount)                 //nolint:errcheck
	m.dbQueryDuration, _ = meter.Float64Histogram(MetricDBQueryDuration)       //nolint:errcheck

	return m
}
