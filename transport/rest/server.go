package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Start - starts HTTP server and stops it when ctx is done.
func Start(ctx context.Context, logger *slog.Logger, port string, rooms roomGetter) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      NewHandler(logger, rooms),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func NewHandler(logger *slog.Logger, rooms roomGetter) http.Handler {
	h := newHandlers(logger, rooms)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ping", h.Ping)
	mux.HandleFunc("GET /rooms/{code}", h.GetRoom)

	return mux
}
