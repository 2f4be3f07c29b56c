package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

const (
	gormSpanKey             = "odatasearch:gorm:span"
	gormStartTimeKey        = "odatasearch:gorm:start"
	gormTimingStartKey      = "odatasearch:gorm:timing_start"
	gormTracingCallbackName = "odatasearch_tracing"
	gormTimingCallbackName  = "odatasearch_server_timing"
)

// RegisterGORMCallbacks registers GORM callbacks that trace schema store
// queries and record their duration. It does nothing unless a tracer
// provider is configured and detailed DB tracing is enabled.
func RegisterGORMCallbacks(db *gorm.DB, cfg *Config) error {
	if cfg == nil || cfg.TracerProvider == nil || !cfg.EnableDetailedDBTracing {
		return nil
	}

	tracer := cfg.Tracer()
	metrics := cfg.Metrics()
	before := func(spanName string) func(*gorm.DB) {
		return func(db *gorm.DB) { startSpan(db, tracer, spanName) }
	}
	after := func(operation string) func(*gorm.DB) {
		return func(db *gorm.DB) { endSpan(db, tracer, metrics, operation) }
	}
	name := func(suffix string) string { return gormTracingCallbackName + ":" + suffix }

	cb := db.Callback()
	for _, err := range []error{
		cb.Query().Before("gorm:query").Register(name("before_query"), before("db.query")),
		cb.Query().After("gorm:query").Register(name("after_query"), after("SELECT")),
		cb.Create().Before("gorm:create").Register(name("before_create"), before("db.create")),
		cb.Create().After("gorm:create").Register(name("after_create"), after("INSERT")),
		cb.Update().Before("gorm:update").Register(name("before_update"), before("db.update")),
		cb.Update().After("gorm:update").Register(name("after_update"), after("UPDATE")),
		cb.Delete().Before("gorm:delete").Register(name("before_delete"), before("db.delete")),
		cb.Delete().After("gorm:delete").Register(name("after_delete"), after("DELETE")),
		cb.Row().Before("gorm:row").Register(name("before_row"), before("db.row")),
		cb.Row().After("gorm:row").Register(name("after_row"), after("ROW")),
		cb.Raw().Before("gorm:raw").Register(name("before_raw"), before("db.raw")),
		cb.Raw().After("gorm:raw").Register(name("after_raw"), after("RAW")),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

// RegisterServerTimingCallbacks registers GORM callbacks that add the
// duration of every database operation to the DBTimeAccumulator of the
// statement context. They are independent of the tracing callbacks.
func RegisterServerTimingCallbacks(db *gorm.DB) error {
	name := func(suffix string) string { return gormTimingCallbackName + ":" + suffix }

	cb := db.Callback()
	for _, err := range []error{
		cb.Query().Before("gorm:query").Register(name("before_query"), beforeTiming),
		cb.Query().After("gorm:query").Register(name("after_query"), afterTiming),
		cb.Create().Before("gorm:create").Register(name("before_create"), beforeTiming),
		cb.Create().After("gorm:create").Register(name("after_create"), afterTiming),
		cb.Update().Before("gorm:update").Register(name("before_update"), beforeTiming),
		cb.Update().After("gorm:update").Register(name("after_update"), afterTiming),
		cb.Delete().Before("gorm:delete").Register(name("before_delete"), beforeTiming),
		cb.Delete().After("gorm:delete").Register(name("after_delete"), afterTiming),
		cb.Row().Before("gorm:row").Register(name("before_row"), beforeTiming),
		cb.Row().After("gorm:row").Register(name("after_row"), afterTiming),
		cb.Raw().Before("gorm:raw").Register(name("before_raw"), beforeTiming),
		cb.Raw().After("gorm:raw").Register(name("after_raw"), afterTiming),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

func beforeTiming(db *gorm.DB) {
	db.InstanceSet(gormTimingStartKey, time.Now())
}

func afterTiming(db *gorm.DB) {
	startTimeVal, ok := db.InstanceGet(gormTimingStartKey)
	if !ok {
		return
	}
	startTime, ok := startTimeVal.(time.Time)
	if !ok {
		return
	}

	if db.Statement != nil && db.Statement.Context != nil {
		AddDBTime(db.Statement.Context, time.Since(startTime))
	}
}

func startSpan(db *gorm.DB, tracer *Tracer, spanName string) {
	ctx := db.Statement.Context
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, span := tracer.StartSpan(ctx, spanName,
		attribute.String("db.system", db.Dialector.Name()),
	)

	db.Statement.Context = ctx
	db.InstanceSet(gormSpanKey, span)
	db.InstanceSet(gormStartTimeKey, time.Now())
}

func endSpan(db *gorm.DB, tracer *Tracer, metrics *Metrics, operation string) {
	spanVal, ok := db.InstanceGet(gormSpanKey)
	if !ok {
		return
	}
	span, ok := spanVal.(trace.Span)
	if !ok {
		return
	}
	defer span.End()

	if db.Statement != nil {
		if table := db.Statement.Table; table != "" {
			span.SetAttributes(attribute.String("db.sql.table", table))
		}
		span.SetAttributes(attribute.Int64("db.rows_affected", db.RowsAffected))
	}

	tracer.RecordError(span, db.Error)

	if startTimeVal, ok := db.InstanceGet(gormStartTimeKey); ok {
		if startTime, ok := startTimeVal.(time.Time); ok {
			metrics.RecordDBQuery(db.Statement.Context, operation, time.Since(startTime))
		}
	}
}
