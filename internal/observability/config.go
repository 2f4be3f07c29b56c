package observability

import (
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Config selects where translation, search and schema store telemetry goes.
// Unset providers fall back to no-op implementations.
type Config struct {
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider

	// ServiceName is recorded on spans started by the tracer.
	ServiceName string

	// EnableDetailedDBTracing starts a span per schema store statement.
	EnableDetailedDBTracing bool

	// EnableServerTiming adds translate, search and db metrics to the
	// Server-Timing response header.
	EnableServerTiming bool

	tracer  *Tracer
	metrics *Metrics
}

// Option configures a Config.
type Option func(*Config)

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Config) { c.TracerProvider = tp }
}

func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *Config) { c.MeterProvider = mp }
}

func WithServiceName(name string) Option {
	return func(c *Config) { c.ServiceName = name }
}

// WithDetailedDBTracing traces every schema store statement. It has no
// effect without a tracer provider.
func WithDetailedDBTracing() Option {
	return func(c *Config) { c.EnableDetailedDBTracing = true }
}

func WithServerTiming() Option {
	return func(c *Config) { c.EnableServerTiming = true }
}

// NewConfig applies opts over the "odatasearch" service name and builds the
// tracer and metrics from the resulting providers.
func NewConfig(opts ...Option) *Config {
	cfg := &Config{ServiceName: "odatasearch"}
	for _, opt := range opts {
		opt(cfg)
	}

	cfg.tracer = NewNoopTracer()
	if cfg.TracerProvider != nil {
		cfg.tracer = NewTracer(cfg.TracerProvider, cfg.ServiceName)
	}
	cfg.metrics = NewNoopMetrics()
	if cfg.MeterProvider != nil {
		cfg.metrics = NewMetrics(cfg.MeterProvider)
	}
	return cfg
}

// Tracer returns the configured tracer. A nil Config traces nothing.
func (c *Config) Tracer() *Tracer {
	if c == nil || c.tracer == nil {
		return NewNoopTracer()
	}
	return c.tracer
}

// Metrics returns the configured metrics. A nil Config records nothing.
func (c *Config) Metrics() *Metrics {
	if c == nil || c.metrics == nil {
		return NewNoopMetrics()
	}
	return c.metrics
}

func (c *Config) ServerTimingEnabled() bool {
	return c != nil && c.EnableServerTiming
}
