package app

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

// Start launches the HTTP and SSE servers and returns a channel closed on
// shutdown signal.
func (a *App) Start() <-chan struct{} {
	terminateChan := make(chan struct{})

	a.listen("http", a.httpServer)
	a.listen("sse", a.sseServer)

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
		defer signal.Stop(sigint)

		sig := <-sigint
		slog.Info("shutdown signal received", "signal", sig.String())

		// ends open flow streams and stops the flow janitor
		if a.cancel != nil {
			a.cancel()
		}

		close(terminateChan)
	}()

	return terminateChan
}

func (a *App) listen(name string, srv *http.Server) {
	go func() {
		slog.Info(name+" server listening", "address", srv.Addr)

		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to listen and serve "+name+" server", "error", err)
			os.Exit(1)
		}
	}()
}

// Serve runs the HTTP server on the provided listener for tests.
func (a *App) Serve(l net.Listener) <-chan error {
	errChan := make(chan error, 1)

	go func() {
		errChan <- a.httpServer.Serve(l)
		close(errChan)
	}()

	return errChan
}

// Stop shuts the servers down, waits for background jobs and closes
// resources in registration order.
func (a *App) Stop(ctx context.Context) {
	if a.cancel != nil {
		a.cancel()
	}

	servers := []struct {
		name string
		srv  *http.Server
	}{
		{"SSE Server", a.sseServer},
		{"HTTP Server", a.httpServer},
	}
	for _, s := range servers {
		if err := s.srv.Shutdown(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to close resources", "name", s.name, "error", err)
		}
	}

	slog.InfoContext(ctx, "waiting for flow janitor and event publishers")
	if err := a.goroutine.Wait(); err != nil {
		slog.ErrorContext(ctx, "error from goroutines executions", "error", err)
	}

	for _, closer := range a.closers {
		if err := closer.fn(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to close resources", "name", closer.name, "error", err)
		}
	}

	slog.InfoContext(ctx, "application gracefully shutdown")
}
