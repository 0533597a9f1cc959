package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// runWithGracefulShutdown serves until ctx is done, then shuts the server
// down, giving in-flight requests up to timeout to finish.
func runWithGracefulShutdown(ctx context.Context, server *http.Server, logger *slog.Logger, timeout time.Duration) error {
	listener, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return err
	}

	return serve(ctx, server, listener, logger, timeout)
}

func serve(ctx context.Context, server *http.Server, listener net.Listener, logger *slog.Logger, timeout time.Duration) error {
	serverErrChan := make(chan error, 1)

	go func() {
		logger.Info("listening", "addr", listener.Addr().String())
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- err
		} else {
			serverErrChan <- nil
		}
	}()

	select {
	case err := <-serverErrChan:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}

	if err := <-serverErrChan; err != nil {
		return err
	}

	logger.Info("shutdown complete")
	return nil
}
