// Package httpserver runs an http.Server until its context is cancelled and
// drains in-flight requests before returning.
package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// Run listens on srv.Addr and serves until ctx is done.
func Run(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration) error {
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return err
	}
	return Serve(ctx, srv, ln, shutdownTimeout)
}

// Serve serves on ln until ctx is done, then shuts srv down. It returns only
// after Shutdown has finished, so requests in flight at cancellation
// complete (or hit shutdownTimeout) before the caller exits.
func Serve(ctx context.Context, srv *http.Server, ln net.Listener, shutdownTimeout time.Duration) error {
	done := make(chan error, 1)
	go func() {
		<-ctx.Done()
		slog.Info("shutting down", "cause", context.Cause(ctx))

		shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		done <- srv.Shutdown(shutCtx)
	}()

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	if err := <-done; err != nil {
		slog.Error("shutdown error", "err", err)
		return err
	}
	return nil
}
