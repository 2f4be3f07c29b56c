package odatasearch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nlstn/go-odata-search/internal/convention"
	"github.com/nlstn/go-odata-search/internal/observability"
	"github.com/nlstn/go-odata-search/internal/query"
	"github.com/nlstn/go-odata-search/internal/search"
)

// Translator translates $filter and $orderby text for one content type. It is
// immutable and safe for concurrent use.
type Translator struct {
	compiler      *search.Compiler
	logger        *slog.Logger
	observability *observability.Config
}

// Option configures a Translator.
type Option func(*translatorOptions)

type translatorOptions struct {
	naming        Naming
	convention    Convention
	logger        *slog.Logger
	observability *observability.Config
}

// WithNaming sets the namespace and companion suffixes of physical field names.
func WithNaming(naming Naming) Option {
	return func(o *translatorOptions) {
		o.naming = naming
	}
}

// WithConvention sets the field-naming convention applied to declared properties.
func WithConvention(conv Convention) Option {
	return func(o *translatorOptions) {
		o.convention = conv
	}
}

// WithLogger sets the logger of the translator. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *translatorOptions) {
		o.logger = logger
	}
}

// WithObservability enables tracing and metrics for translations.
func WithObservability(opts ...ObservabilityOption) Option {
	return func(o *translatorOptions) {
		o.observability = observability.NewConfig(opts...)
	}
}

// NewTranslator creates a translator for the schema. A nil schema accepts
// every property as an open property.
func NewTranslator(schema *Schema, opts ...Option) (*Translator, error) {
	o := translatorOptions{
		naming:     DefaultNaming(),
		convention: convention.Verbatim{},
	}
	for _, opt := range opts {
		opt(&o)
	}

	if o.naming.LowercaseSuffix == "" || o.naming.SortSuffix == "" {
		return nil, fmt.Errorf("odatasearch: naming requires non-empty lowercase and sort suffixes")
	}
	if o.naming.LowercaseSuffix == o.naming.SortSuffix {
		return nil, fmt.Errorf("odatasearch: lowercase and sort suffixes must differ, both are %q", o.naming.SortSuffix)
	}
	if o.convention == nil {
		o.convention = convention.Verbatim{}
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.observability == nil {
		o.observability = observability.NewConfig()
	}

	return &Translator{
		compiler:      search.NewCompiler(schema, o.naming, o.convention),
		logger:        o.logger,
		observability: o.observability,
	}, nil
}

// Schema returns the schema the translator binds against.
func (t *Translator) Schema() *Schema { return t.compiler.Schema() }

// Naming returns the field naming of the translator.
func (t *Translator) Naming() Naming { return t.compiler.Fields().Naming() }

// ParseFilter translates $filter text into a filter tree. Every failure is a
// *FilterParseError.
func (t *Translator) ParseFilter(text string) (FilterNode, error) {
	return t.ParseFilterContext(context.Background(), text)
}

// ParseFilterContext is like ParseFilter. The context only carries the trace
// the translation span is attached to.
func (t *Translator) ParseFilterContext(ctx context.Context, text string) (FilterNode, error) {
	tracer := t.observability.Tracer()
	ctx, span := tracer.StartFilter(ctx, t.Schema().Name(), text)
	defer span.End()

	start := time.Now()
	filter, err := t.compiler.ParseFilter(text)
	duration := time.Since(start)

	var fingerprint uint64
	if err != nil {
		err = search.AsFilterParseError(err)
	} else {
		fingerprint = search.Fingerprint(filter)
	}
	tracer.EndTranslation(span, fingerprint, err)
	t.observability.Metrics().RecordTranslation(ctx, observability.TranslationFilter, duration, errorType(err))

	logger := observability.LoggerWithTrace(ctx, t.logger)
	if err != nil {
		logger.Debug("filter translation failed",
			slog.String(observability.LogFieldFilter, text),
			slog.Duration(observability.LogFieldDuration, duration),
			slog.Any(observability.LogFieldError, err))
		return nil, err
	}
	logger.Debug("filter translated",
		slog.String(observability.LogFieldFilter, text),
		slog.String(observability.LogFieldFingerprint, observability.FormatFingerprint(fingerprint)),
		slog.Duration(observability.LogFieldDuration, duration))
	return filter, nil
}

// ParseOrderBy translates $orderby text into sort criteria in clause order.
// Every failure is an *OrderByParseError.
func (t *Translator) ParseOrderBy(text string) ([]SortCriterion, error) {
	return t.ParseOrderByContext(context.Background(), text)
}

// ParseOrderByContext is like ParseOrderBy. The context only carries the
// trace the translation span is attached to.
func (t *Translator) ParseOrderByContext(ctx context.Context, text string) ([]SortCriterion, error) {
	tracer := t.observability.Tracer()
	ctx, span := tracer.StartOrderBy(ctx, t.Schema().Name(), text)
	defer span.End()

	start := time.Now()
	criteria, err := t.compiler.ParseOrderBy(text)
	duration := time.Since(start)

	if err != nil {
		err = search.AsOrderByParseError(err)
	} else {
		span.SetAttributes(observability.CriteriaAttr(len(criteria)))
	}
	tracer.EndTranslation(span, 0, err)
	t.observability.Metrics().RecordTranslation(ctx, observability.TranslationOrderBy, duration, errorType(err))

	logger := observability.LoggerWithTrace(ctx, t.logger)
	if err != nil {
		logger.Debug("orderby translation failed",
			slog.String(observability.LogFieldOrderBy, text),
			slog.Duration(observability.LogFieldDuration, duration),
			slog.Any(observability.LogFieldError, err))
		return nil, err
	}
	logger.Debug("orderby translated",
		slog.String(observability.LogFieldOrderBy, text),
		slog.Int("criteria", len(criteria)),
		slog.Duration(observability.LogFieldDuration, duration))
	return criteria, nil
}

// errorType classifies a translation failure for the error metric.
func errorType(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, query.ErrSyntax):
		return "syntax"
	case errors.Is(err, query.ErrPropertyNotFound):
		return "property_not_found"
	case errors.Is(err, query.ErrIncompatibleTypes):
		return "incompatible_types"
	case errors.Is(err, query.ErrUnknownFunction):
		return "unknown_function"
	case errors.Is(err, search.ErrUnsupportedType):
		return "unsupported_type"
	case errors.Is(err, search.ErrUnsupportedFunction):
		return "unsupported_function"
	case errors.Is(err, search.ErrMissingProperty), errors.Is(err, search.ErrMissingLiteral):
		return "shape"
	default:
		return "unsupported"
	}
}
