// Package shutdown turns SIGINT and SIGTERM into context cancellation for the demo
// binary, running registered teardown hooks first.
package shutdown

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Handler owns one signal subscription.
type Handler struct {
	parent context.Context //nolint:containedctx
	ctx    context.Context //nolint:containedctx
	cancel context.CancelFunc
	sig    chan os.Signal
	once   sync.Once

	mu    sync.Mutex
	hooks []func(ctx context.Context)
}

// SetupHandler subscribes to SIGINT and SIGTERM. The returned handler's context is
// canceled once a signal arrives, Shutdown is called or parent is done, and every
// hook has run.
func SetupHandler(parent context.Context) *Handler {
	h := newHandler(parent)
	signal.Notify(h.sig, syscall.SIGINT, syscall.SIGTERM)

	go h.wait()

	return h
}

func newHandler(parent context.Context) *Handler {
	// Cancelling parent starts the shutdown but must not end ctx before the hooks.
	ctx, cancel := context.WithCancel(context.WithoutCancel(parent))

	return &Handler{
		parent: parent,
		ctx:    ctx,
		cancel: cancel,
		sig:    make(chan os.Signal, 1),
	}
}

func (h *Handler) wait() {
	select {
	case s := <-h.sig:
		slog.Warn("Received " + s.String() + ", shutting down...")
	case <-h.parent.Done():
		slog.Info("Parent context done, shutting down...")
	}

	h.finish()
}

// Context is canceled after shutdown hooks have run.
func (h *Handler) Context() context.Context {
	return h.ctx
}

// BeforeShutdown registers a hook. Hooks run in reverse order of registration and
// see a context that is still live.
func (h *Handler) BeforeShutdown(hook func(ctx context.Context)) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.hooks = append(h.hooks, hook)
}

// Shutdown starts the shutdown as if a signal had arrived.
func (h *Handler) Shutdown() {
	select {
	case h.sig <- os.Interrupt:
	default:
	}
}

// Wait blocks until the shutdown has finished.
func (h *Handler) Wait() {
	<-h.ctx.Done()
}

func (h *Handler) finish() {
	h.once.Do(func() {
		signal.Stop(h.sig)

		h.mu.Lock()
		hooks := h.hooks
		h.hooks = nil
		h.mu.Unlock()

		for i := len(hooks) - 1; i >= 0; i-- {
			hooks[i](h.ctx)
		}

		h.cancel()
	})
}
