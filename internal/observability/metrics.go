package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric names.
const (
	MetricTranslationCount    = "odatasearch.translation.count"
	MetricTranslationDuration = "odatasearch.translation.duration"
	MetricTranslationErrors   = "odatasearch.translation.errors"
	MetricSearchDuration      = "odatasearch.search.duration"
	MetricResultCount         = "odatasearch.result.count"
	MetricDBQueryDuration     = "odatasearch.db.query.duration"
)

// Metrics holds the metric instruments of translation and search.
type Metrics struct {
	translationCount    metric.Int64Counter
	translationDuration metric.Float64Histogram
	translationErrors   metric.Int64Counter
	searchDuration      metric.Float64Histogram
	resultCount         metric.Int64Histogram
	dbQueryDuration     metric.Float64Histogram
}

// NewMetrics creates a new Metrics instance with the given MeterProvider.
func NewMetrics(mp metric.MeterProvider) *Metrics {
	meter := mp.Meter(MeterName)
	m := &Metrics{}

	// Instrument creation only fails on invalid parameters; fall back to an
	// instrument without options so that recording never dereferences nil.
	var err error

	m.translationCount, err = meter.Int64Counter(
		MetricTranslationCount,
		metric.WithDescription("Total number of $filter and $orderby translations"),
		metric.WithUnit("{translation}"),
	)
	if err != nil {
		m.translationCount, _ = meter.Int64Counter(MetricTranslationCount)
	}

	m.translationDuration, err = meter.Float64Histogram(
		MetricTranslationDuration,
		metric.WithDescription("Duration of translations in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		m.translationDuration, _ = meter.Float64Histogram(MetricTranslationDuration)
	}

	m.translationErrors, err = meter.Int64Counter(
		MetricTranslationErrors,
		metric.WithDescription("Total number of failed translations"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		m.translationErrors, _ = meter.Int64Counter(MetricTranslationErrors)
	}

	m.searchDuration, err = meter.Float64Histogram(
		MetricSearchDuration,
		metric.WithDescription("Duration of index searches in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		m.searchDuration, _ = meter.Float64Histogram(MetricSearchDuration)
	}

	m.resultCount, err = meter.Int64Histogram(
		MetricResultCount,
		metric.WithDescription("Number of documents returned by searches"),
		metric.WithUnit("{document}"),
	)
	if err != nil {
		m.resultCount, _ = meter.Int64Histogram(MetricResultCount)
	}

	m.dbQueryDuration, err = meter.Float64Histogram(
		MetricDBQueryDuration,
		metric.WithDescription("Duration of schema store queries in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		m.dbQueryDuration, _ = meter.Float64Histogram(MetricDBQueryDuration)
	}

	return m
}

// RecordTranslation records a completed translation of the given kind. A
// non-empty errorType counts the translation as failed.
func (m *Metrics) RecordTranslation(ctx context.Context, kind string, duration time.Duration, errorType string) {
	attrs := metric.WithAttributes(
		TranslationAttr(kind),
		SuccessAttr(errorType == ""),
	)
	m.translationCount.Add(ctx, 1, attrs)
	m.translationDuration.Record(ctx, milliseconds(duration), attrs)
	if errorType != "" {
		m.translationErrors.Add(ctx, 1, metric.WithAttributes(
			TranslationAttr(kind),
			ErrorTypeAttr(errorType),
		))
	}
}

// RecordSearch records a completed search and the number of returned documents.
func (m *Metrics) RecordSearch(ctx context.Context, duration time.Duration, results int, err error) {
	attrs := metric.WithAttributes(SuccessAttr(err == nil))
	m.searchDuration.Record(ctx, milliseconds(duration), attrs)
	if err == nil {
		m.resultCount.Record(ctx, int64(results))
	}
}

// RecordDBQuery records metrics for a schema store query.
func (m *Metrics) RecordDBQuery(ctx context.Context, operation string, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String("db.operation", operation))
	m.dbQueryDuration.Record(ctx, milliseconds(duration), attrs)
}

func milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
