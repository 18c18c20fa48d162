// If you are AI: This file handles graceful shutdown orchestration for the relay process.
// The status server stops first, then the registered hooks (relay tasks, regions) in order.

package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/multierr"
)

// ShutdownHandler manages graceful shutdown on SIGINT or SIGTERM.
type ShutdownHandler struct {
	server *Server
	hooks  []func() error
	ctx    context.Context
	cancel context.CancelFunc
}

// NewShutdownHandler creates a handler that listens for termination signals.
// The provided context is used as the parent for shutdown operations.
// hooks run after the server has stopped.
func NewShutdownHandler(server *Server, ctx context.Context, hooks ...func() error) *ShutdownHandler {
	shutdownCtx, cancel := context.WithCancel(ctx)
	return &ShutdownHandler{
		server: server,
		hooks:  hooks,
		ctx:    shutdownCtx,
		cancel: cancel,
	}
}

// Wait blocks until a termination signal is received or the parent context is
// done, then shuts everything down. Errors from all steps are combined.
// This method should be called from the main goroutine.
func (h *ShutdownHandler) Wait() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-sigChan:
	case <-h.ctx.Done():
	}

	return h.shutdown()
}

// shutdown cancels the context, stops the server with a timeout and runs the hooks.
func (h *ShutdownHandler) shutdown() error {
	h.cancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := h.server.Shutdown(shutdownCtx)
	for _, hook := range h.hooks {
		err = multierr.Append(err, hook())
	}
	return err
}

// Context returns the shutdown context that is cancelled when shutdown begins.
func (h *ShutdownHandler) Context() context.Context {
	return h.ctx
}
