package blugeindex

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/blugelabs/bluge"
	"go.uber.org/multierr"

	"github.com/nlstn/go-odata-search/internal/convention"
	"github.com/nlstn/go-odata-search/internal/metadata"
	"github.com/nlstn/go-odata-search/internal/observability"
	"github.com/nlstn/go-odata-search/internal/search"
)

// ErrClosed is returned by operations on a closed index.
var ErrClosed = errors.New("index is closed")

// Config configures an Index.
type Config struct {
	// Path is the directory of the index. An empty path keeps the index in memory.
	Path string
	// Schema describes the indexed content type. A nil schema indexes every
	// property as an open property.
	Schema *metadata.Schema
	// Naming and Convention must match those of the translator whose filters
	// are executed against the index. A zero Naming is search.DefaultNaming().
	Naming     search.Naming
	Convention convention.Convention
	// Logger defaults to slog.Default().
	Logger *slog.Logger
	// Observability defaults to no-op tracing and metrics.
	Observability *observability.Config
}

// Request is a search over the index.
type Request struct {
	// Filter selects documents; nil matches all documents.
	Filter search.FilterNode
	// Sort orders the results; documents are ordered by id when empty.
	Sort []search.SortCriterion
	// Size is the maximum number of ids returned.
	Size int
	// From is the number of leading results skipped.
	From int
}

// Result holds the ids of the returned documents and the number of
// documents matching the filter.
type Result struct {
	Total uint64
	IDs   []string
}

// Index is a bluge index of content documents. It is safe for concurrent use.
type Index struct {
	writer *bluge.Writer
	mapper *DocumentMapper
	logger *slog.Logger
	obs    *observability.Config

	mu     sync.RWMutex
	closed bool
}

// Open opens or creates the index described by cfg.
func Open(cfg Config) (*Index, error) {
	blugeConfig := bluge.InMemoryOnlyConfig()
	if cfg.Path != "" {
		blugeConfig = bluge.DefaultConfig(cfg.Path)
	}

	writer, err := bluge.OpenWriter(blugeConfig)
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Observability == nil {
		cfg.Observability = observability.NewConfig()
	}
	if cfg.Naming == (search.Naming{}) {
		cfg.Naming = search.DefaultNaming()
	}
	if cfg.Convention == nil {
		cfg.Convention = convention.Verbatim{}
	}

	return &Index{
		writer: writer,
		mapper: NewDocumentMapper(cfg.Naming, cfg.Convention, cfg.Schema),
		logger: cfg.Logger,
		obs:    cfg.Observability,
	}, nil
}

// Index adds or replaces documents in one batch.
func (ix *Index) Index(ctx context.Context, docs ...Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if ix.closed {
		return ErrClosed
	}

	batch := bluge.NewBatch()
	for _, doc := range docs {
		mapped, err := ix.mapper.Map(doc)
		if err != nil {
			return err
		}
		batch.Update(mapped.ID(), mapped)
	}
	if err := ix.writer.Batch(batch); err != nil {
		return fmt.Errorf("index %d documents: %w", len(docs), err)
	}

	ix.logger.DebugContext(ctx, "documents indexed", slog.Int("count", len(docs)))
	return nil
}

// Search executes a request.
func (ix *Index) Search(ctx context.Context, req Request) (result *Result, err error) {
	tracer := ix.obs.Tracer()
	fingerprint := search.Fingerprint(req.Filter)
	ctx, span := tracer.StartSearch(ctx, fingerprint, req.Size, req.From)
	start := time.Now()
	defer func() {
		duration := time.Since(start)
		returned := 0
		if result != nil {
			returned = len(result.IDs)
			span.SetAttributes(observability.ResultCountAttr(returned), observability.TotalHitsAttr(result.Total))
		}
		tracer.RecordError(span, err)
		span.End()
		ix.obs.Metrics().RecordSearch(ctx, duration, returned, err)
		attrs := []any{
			slog.String(observability.LogFieldFingerprint, observability.FormatFingerprint(fingerprint)),
			slog.Int(observability.LogFieldResultCount, returned),
			slog.Duration(observability.LogFieldDuration, duration),
		}
		if err != nil {
			attrs = append(attrs, slog.Any(observability.LogFieldError, err))
		}
		observability.LoggerWithTrace(ctx, ix.logger).DebugContext(ctx, "search executed", attrs...)
	}()

	if req.Size < 0 || req.From < 0 {
		return nil, fmt.Errorf("invalid page size %d or offset %d", req.Size, req.From)
	}

	query, err := Compile(req.Filter)
	if err != nil {
		return nil, err
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if ix.closed {
		return nil, ErrClosed
	}

	reader, err := ix.writer.Reader()
	if err != nil {
		return nil, fmt.Errorf("open reader: %w", err)
	}
	defer func() {
		err = multierr.Append(err, reader.Close())
		if err != nil {
			result = nil
		}
	}()

	// A zero size still counts the matching documents.
	size := req.Size
	if size == 0 {
		size = 1
	}
	request := bluge.NewTopNSearch(size, query).
		SetFrom(req.From).
		SortByCustom(SortOrder(req.Sort)).
		WithStandardAggregations()

	matches, err := reader.Search(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	result = &Result{}
	match, err := matches.Next()
	for err == nil && match != nil {
		if len(result.IDs) < req.Size {
			var id string
			if visitErr := match.VisitStoredFields(func(field string, value []byte) bool {
				if field == idField {
					id = string(value)
					return false
				}
				return true
			}); visitErr != nil {
				return nil, fmt.Errorf("load stored fields: %w", visitErr)
			}
			result.IDs = append(result.IDs, id)
		}
		match, err = matches.Next()
	}
	if err != nil {
		return nil, fmt.Errorf("iterate matches: %w", err)
	}

	result.Total = matches.Aggregations().Count()
	return result, nil
}

// Close closes the index. Further operations return ErrClosed.
func (ix *Index) Close() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.closed {
		return nil
	}
	ix.closed = true
	return ix.writer.Close()
}
