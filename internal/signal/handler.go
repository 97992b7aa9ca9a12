// Package signal turns SIGINT and SIGTERM into context cancellation for
// long-running commands such as run and watch.
//
// A run interrupted between ticks loses nothing: every tick saves the store
// before the next one starts. An interrupt during a tick abandons that
// tick's generation or review, and the item keeps its previous status.
package signal

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Handler cancels its context on the first interrupt.
type Handler struct {
	ctx         context.Context //nolint:containedctx // the handler owns the cancellation
	cancel      context.CancelFunc
	signals     chan os.Signal
	interrupted chan struct{}
	stopped     chan struct{}
	interrupt   sync.Once
	stop        sync.Once
}

// NewHandler starts listening for SIGINT and SIGTERM. Call Stop when done.
func NewHandler(parent context.Context) *Handler {
	ctx, cancel := context.WithCancel(parent)
	h := &Handler{
		ctx:         ctx,
		cancel:      cancel,
		signals:     make(chan os.Signal, 1),
		interrupted: make(chan struct{}),
		stopped:     make(chan struct{}),
	}
	signal.Notify(h.signals, os.Interrupt, syscall.SIGTERM)
	go h.listen()
	return h
}

// Context is canceled by an interrupt, by Stop, or by the parent.
func (h *Handler) Context() context.Context {
	return h.ctx
}

// Interrupted is closed once an interrupt has been received.
func (h *Handler) Interrupted() <-chan struct{} {
	return h.interrupted
}

// WasInterrupted reports whether an interrupt canceled the context.
func (h *Handler) WasInterrupted() bool {
	select {
	case <-h.interrupted:
		return true
	default:
		return false
	}
}

// Stop unregisters the handler and cancels its context. It is safe to call
// more than once.
func (h *Handler) Stop() {
	h.stop.Do(func() {
		signal.Stop(h.signals)
		close(h.stopped)
		h.cancel()
	})
}

func (h *Handler) trigger() {
	h.interrupt.Do(func() {
		close(h.interrupted)
		h.cancel()
	})
}

func (h *Handler) listen() {
	for {
		select {
		case <-h.stopped:
			return
		case <-h.ctx.Done():
			return
		case <-h.signals:
			// Later signals are drained and ignored.
			h.trigger()
		}
	}
}
