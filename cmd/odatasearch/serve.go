package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	odatasearch "github.com/nlstn/go-odata-search"
	"github.com/nlstn/go-odata-search/internal/blugeindex"
	"github.com/nlstn/go-odata-search/internal/httpapi"
	"github.com/nlstn/go-odata-search/internal/observability"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the search endpoint over a bluge index",
		Long: `serve answers GET /search requests with $filter, $orderby, $top, $skip and
$skiptoken over a bluge index. The index is kept in memory unless --index-path
is given, and is seeded from the JSON documents file given by --documents:

  [{"id": "1", "fields": {"Name": "Start", "Price": 10}}]`,
		Args: cobra.NoArgs,
		Annotations: map[string]string{
			"addr":       "server.addr",
			"documents":  "index.documents",
			"index-path": "index.path",
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			handler, index, err := a.newSearchHandler(ctx)
			if err != nil {
				return err
			}
			defer index.Close()

			return httpapi.Serve(ctx, a.cfg.Server.Addr, handler, a.logger)
		},
	}
	cmd.Flags().String("addr", ":8080", "listen address")
	cmd.Flags().String("documents", "", "JSON file of documents to index on startup")
	cmd.Flags().String("index-path", "", "index directory, in memory when empty")
	return cmd
}

// newSearchHandler builds the routed search endpoint and the index it searches.
func (a *app) newSearchHandler(ctx context.Context) (http.Handler, *blugeindex.Index, error) {
	schema, err := a.schema(ctx)
	if err != nil {
		return nil, nil, err
	}
	conv, err := odatasearch.ConventionByName(a.cfg.Convention)
	if err != nil {
		return nil, nil, err
	}
	translator, err := a.translator(schema)
	if err != nil {
		return nil, nil, err
	}

	obsOpts := []observability.Option{observability.WithServiceName("odatasearch")}
	if a.cfg.Server.ServerTiming {
		obsOpts = append(obsOpts, observability.WithServerTiming())
	}
	obs := observability.NewConfig(obsOpts...)

	index, err := blugeindex.Open(blugeindex.Config{
		Path:          a.cfg.Index.Path,
		Schema:        schema,
		Naming:        a.cfg.SearchNaming(),
		Convention:    conv,
		Logger:        a.logger,
		Observability: obs,
	})
	if err != nil {
		return nil, nil, err
	}

	if a.cfg.Index.Documents != "" {
		docs, err := loadDocuments(a.cfg.Index.Documents)
		if err == nil {
			err = index.Index(ctx, docs...)
		}
		if err != nil {
			_ = index.Close()
			return nil, nil, err
		}
		a.logger.Info("documents indexed", "count", len(docs), "file", a.cfg.Index.Documents)
	}

	handler := httpapi.NewHandler(translator, index, httpapi.Config{
		DefaultTop:    a.cfg.Search.DefaultTop,
		MaxTop:        a.cfg.Search.MaxTop,
		Logger:        a.logger,
		Observability: obs,
	})
	return httpapi.NewMux(handler, obs), index, nil
}

func loadDocuments(path string) ([]blugeindex.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read documents: %w", err)
	}
	var docs []blugeindex.Document
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode documents %s: %w", path, err)
	}
	return docs, nil
}
