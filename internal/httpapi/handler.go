// Package httpapi serves OData search requests over HTTP.
//
//	GET /search?$filter=Name eq 'Home'&$orderby=Created desc&$top=10
//
// answers with the ids of the matching documents:
//
//	{"@odata.count": 1, "value": [{"id": "42"}]}
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/nlstn/go-odata-search/internal/blugeindex"
	"github.com/nlstn/go-odata-search/internal/observability"
	"github.com/nlstn/go-odata-search/internal/preference"
	"github.com/nlstn/go-odata-search/internal/response"
	"github.com/nlstn/go-odata-search/internal/search"
	"github.com/nlstn/go-odata-search/internal/skiptoken"
)

const (
	DefaultTop = 25
	MaxTop     = 1000
)

// Translator translates query options into a filter tree and sort criteria.
type Translator interface {
	ParseFilterContext(ctx context.Context, text string) (search.FilterNode, error)
	ParseOrderByContext(ctx context.Context, text string) ([]search.SortCriterion, error)
}

// Searcher executes translated queries.
type Searcher interface {
	Search(ctx context.Context, req blugeindex.Request) (*blugeindex.Result, error)
}

// Config configures a Handler.
type Config struct {
	// DefaultTop is the page size when neither $top nor odata.maxpagesize is given.
	DefaultTop int
	// MaxTop is the largest accepted $top and page size.
	MaxTop int
	// Logger defaults to slog.Default().
	Logger *slog.Logger
	// Observability defaults to no-op tracing and metrics.
	Observability *observability.Config
}

// Handler answers search requests.
type Handler struct {
	translator Translator
	searcher   Searcher
	defaultTop int
	maxTop     int
	logger     *slog.Logger
	obs        *observability.Config
}

// Hit is one entry of the result value array.
type Hit struct {
	ID string `json:"id"`
}

// NewHandler creates a handler translating with t and executing with s.
func NewHandler(t Translator, s Searcher, cfg Config) *Handler {
	if cfg.DefaultTop <= 0 {
		cfg.DefaultTop = DefaultTop
	}
	if cfg.MaxTop <= 0 {
		cfg.MaxTop = MaxTop
	}
	if cfg.DefaultTop > cfg.MaxTop {
		cfg.DefaultTop = cfg.MaxTop
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Observability == nil {
		cfg.Observability = observability.NewConfig()
	}
	return &Handler{
		translator: t,
		searcher:   s,
		defaultTop: cfg.DefaultTop,
		maxTop:     cfg.MaxTop,
		logger:     cfg.Logger,
		obs:        cfg.Observability,
	}
}

// queryOptions are the validated system query options of a request.
type queryOptions struct {
	filter     string
	hasFilter  bool
	orderby    string
	hasOrderBy bool
	top        int
	hasTop     bool
	skip       int
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		h.writeError(ctx, w, http.StatusMethodNotAllowed, "Method "+r.Method+" is not allowed", "")
		return
	}

	opts, target, err := parseQueryOptions(r, h.maxTop)
	if err != nil {
		h.writeErrorWithTarget(ctx, w, http.StatusBadRequest, "Invalid "+target, target, err.Error())
		return
	}

	req, status, target, err := h.translate(ctx, opts)
	if err != nil {
		h.writeErrorWithTarget(ctx, w, status, "Invalid "+target, target, err.Error())
		return
	}

	pref := preference.ParsePrefer(r)
	pageSize := pref.PageSize(h.defaultTop, h.maxTop)
	req.From = opts.skip
	req.Size = pageSize
	if opts.hasTop {
		req.Size = opts.top
	}

	metric := observability.StartServerTiming(ctx, "search")
	result, err := h.searcher.Search(ctx, req)
	metric.Stop()
	if errors.Is(err, blugeindex.ErrUnsupportedNode) {
		h.writeErrorWithTarget(ctx, w, http.StatusBadRequest, "Invalid $filter", "$filter", err.Error())
		return
	}
	if err != nil {
		observability.LoggerWithTrace(ctx, h.logger).Error("search failed",
			observability.LogFieldFilter, opts.filter,
			observability.LogFieldOrderBy, opts.orderby,
			observability.LogFieldError, err)
		h.writeError(ctx, w, http.StatusInternalServerError, "Search failed", "")
		return
	}

	count := int64(result.Total)
	body := &response.Collection{Count: &count, Value: hits(result.IDs)}
	if !opts.hasTop && uint64(req.From+len(result.IDs)) < result.Total && len(result.IDs) > 0 {
		token, err := skiptoken.Encode(skiptoken.New(req.From+len(result.IDs), opts.filter, opts.orderby))
		if err != nil {
			h.logger.Error("failed to encode skip token", observability.LogFieldError, err)
		} else {
			body.NextLink = response.BuildNextLink(r, token)
		}
	}
	if applied := pref.GetPreferenceApplied(pageSize); applied != "" && !opts.hasTop {
		w.Header().Set("Preference-Applied", applied)
	}

	h.obs.Tracer().SetHTTPStatus(ctx, http.StatusOK)
	if err := response.WriteCollection(w, body); err != nil {
		h.logger.Error("failed to write search response", observability.LogFieldError, err)
	}
}

// translate turns the query options into a search request. On failure it
// returns the status and the query option to report.
func (h *Handler) translate(ctx context.Context, opts queryOptions) (blugeindex.Request, int, string, error) {
	metric := observability.StartServerTiming(ctx, "translate")
	defer metric.Stop()

	var req blugeindex.Request
	if opts.hasFilter {
		filter, err := h.translator.ParseFilterContext(ctx, opts.filter)
		if err != nil {
			return req, statusOf(err), "$filter", err
		}
		req.Filter = filter
	}
	if opts.hasOrderBy {
		sort, err := h.translator.ParseOrderByContext(ctx, opts.orderby)
		if err != nil {
			return req, statusOf(err), "$orderby", err
		}
		req.Sort = sort
	}
	return req, http.StatusOK, "", nil
}

// statusOf returns 400 for translation failures and 500 for anything else.
func statusOf(err error) int {
	var filterErr *search.FilterParseError
	var orderByErr *search.OrderByParseError
	if errors.As(err, &filterErr) || errors.As(err, &orderByErr) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func parseQueryOptions(r *http.Request, maxTop int) (queryOptions, string, error) {
	q := r.URL.Query()
	opts := queryOptions{
		filter:     q.Get("$filter"),
		hasFilter:  q.Has("$filter"),
		orderby:    q.Get("$orderby"),
		hasOrderBy: q.Has("$orderby"),
	}

	if q.Has("$top") {
		top, err := nonNegative(q.Get("$top"))
		if err != nil {
			return opts, "$top", err
		}
		if top > maxTop {
			return opts, "$top", errTopTooLarge(maxTop)
		}
		opts.top, opts.hasTop = top, true
	}

	if q.Has("$skip") {
		if q.Has("$skiptoken") {
			return opts, "$skiptoken", errSkipAndSkipToken
		}
		skip, err := nonNegative(q.Get("$skip"))
		if err != nil {
			return opts, "$skip", err
		}
		opts.skip = skip
	}

	if q.Has("$skiptoken") {
		token, err := skiptoken.Resume(q.Get("$skiptoken"), opts.filter, opts.orderby)
		if err != nil {
			return opts, "$skiptoken", err
		}
		opts.skip = token.Skip
	}

	return opts, "", nil
}

func nonNegative(text string) (int, error) {
	n, err := strconv.Atoi(text)
	if err != nil || n < 0 {
		return 0, errNotNonNegative(text)
	}
	return n, nil
}

func hits(ids []string) []Hit {
	out := make([]Hit, len(ids))
	for i, id := range ids {
		out[i] = Hit{ID: id}
	}
	return out
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, status int, message, detail string) {
	h.obs.Tracer().SetHTTPStatus(ctx, status)
	if err := response.WriteError(w, status, message, detail); err != nil {
		h.logger.Error("failed to write error response", observability.LogFieldError, err)
	}
}

func (h *Handler) writeErrorWithTarget(ctx context.Context, w http.ResponseWriter, status int, message, target, detail string) {
	if status >= http.StatusInternalServerError {
		observability.LoggerWithTrace(ctx, h.logger).Error("request failed",
			"target", target, observability.LogFieldError, detail)
		detail = ""
	}
	h.obs.Tracer().SetHTTPStatus(ctx, status)
	if err := response.WriteErrorWithTarget(w, status, message, target, detail); err != nil {
		h.logger.Error("failed to write error response", observability.LogFieldError, err)
	}
}
