package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/nlstn/go-odata-search/internal/observability"
)

// SearchPath is the route of the search endpoint.
const SearchPath = "/search"

// NewMux routes the search endpoint through the tracing and Server-Timing
// middleware of cfg.
func NewMux(h *Handler, cfg *observability.Config) *http.ServeMux {
	var handler http.Handler = h
	handler = observability.ServerTimingMiddleware(cfg)(handler)
	handler = observability.HTTPMiddleware(cfg)(handler)

	mux := http.NewServeMux()
	mux.Handle(SearchPath, handler)
	return mux
}

// Serve listens on addr until ctx is cancelled, then shuts the server down
// gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("search endpoint listening", "addr", addr, "path", SearchPath)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logger.Info("shutting down search endpoint")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
