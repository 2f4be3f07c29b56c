package odatasearch

import (
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/nlstn/go-odata-search/internal/observability"
)

// ObservabilityOption configures tracing and metrics of a Translator.
type ObservabilityOption = observability.Option

// WithTracerProvider sets the tracer provider used for translation spans.
func WithTracerProvider(tp trace.TracerProvider) ObservabilityOption {
	return observability.WithTracerProvider(tp)
}

// WithMeterProvider sets the meter provider used for translation metrics.
func WithMeterProvider(mp metric.MeterProvider) ObservabilityOption {
	return observability.WithMeterProvider(mp)
}

// WithServiceName sets the service name reported with traces and metrics.
func WithServiceName(name string) ObservabilityOption {
	return observability.WithServiceName(name)
}
