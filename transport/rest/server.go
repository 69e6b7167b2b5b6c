package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Start - serves /ping and, when mcpHandler is set, the MCP endpoint on /mcp.
// It shuts the server down when ctx is canceled.
func Start(ctx context.Context, logger *slog.Logger, port string, mcpHandler http.Handler) error {
	log := logger.With("component", "rest")

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      newMux(mcpHandler),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("failed to shutdown HTTP server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func newMux(mcpHandler http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", pingHandler)

	if mcpHandler != nil {
		mux.Handle("/mcp", mcpHandler)
	}

	return mux
}
