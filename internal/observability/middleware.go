package observability

import (
	"context"
	"net/http"

	servertiming "github.com/mitchellh/go-server-timing"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// HTTPMiddleware returns an HTTP middleware that instruments requests with tracing.
// It uses otelhttp for automatic span propagation and HTTP semantic attributes.
func HTTPMiddleware(cfg *Config) func(http.Handler) http.Handler {
	if cfg == nil || cfg.TracerProvider == nil {
		// Return a passthrough middleware if tracing is not configured
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return func(next http.Handler) http.Handler {
		opts := []otelhttp.Option{otelhttp.WithTracerProvider(cfg.TracerProvider)}
		if cfg.MeterProvider != nil {
			opts = append(opts, otelhttp.WithMeterProvider(cfg.MeterProvider))
		}
		return otelhttp.NewHandler(next, SpanHTTP, opts...)
	}
}

// ServerTimingMiddleware returns an HTTP middleware that collects
// Server-Timing metrics and writes the header. Requests also carry a
// DBTimeAccumulator whose total is reported as the "db" metric.
func ServerTimingMiddleware(cfg *Config) func(http.Handler) http.Handler {
	if !cfg.ServerTimingEnabled() {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return func(next http.Handler) http.Handler {
		withDB := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r = r.WithContext(WithDBTimeAccumulator(r.Context()))
			next.ServeHTTP(&dbTimingWriter{ResponseWriter: w, ctx: r.Context()}, r)
		})
		return servertiming.Middleware(withDB, nil)
	}
}

// dbTimingWriter adds the accumulated database time to the Server-Timing
// metrics before the header is written.
type dbTimingWriter struct {
	http.ResponseWriter
	ctx     context.Context
	written bool
}

func (w *dbTimingWriter) WriteHeader(status int) {
	w.flushDBTime()
	w.ResponseWriter.WriteHeader(status)
}

func (w *dbTimingWriter) Write(b []byte) (int, error) {
	w.flushDBTime()
	return w.ResponseWriter.Write(b)
}

func (w *dbTimingWriter) flushDBTime() {
	if w.written {
		return
	}
	w.written = true

	acc := DBTimeAccumulatorFromContext(w.ctx)
	timing := servertiming.FromContext(w.ctx)
	if acc == nil || timing == nil {
		return
	}
	if d := acc.Duration(); d > 0 {
		m := timing.NewMetric("db").WithDesc("Schema store")
		m.Duration = d
	}
}
