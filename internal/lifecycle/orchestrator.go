// Package lifecycle owns process shutdown: a single, ordered teardown that signals, listener
// failures, panics and unclassified request errors all converge on.
package lifecycle

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
)

// TriggerFunc requests process shutdown. It is handed to every component that can detect a
// fatal condition.
type TriggerFunc func(reason string, err error)

// Signal reasons reported by Run.
const (
	ReasonUserInterruption = "user interruption"
	ReasonInterruption     = "interruption"
	ReasonListenerFailure  = "listener failure"
)

// HTTPServer is the subset of *http.Server the orchestrator drives.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
	Close() error
}

// Options configures an Orchestrator.
type Options struct {
	Logger *slog.Logger

	// ShutdownTimeout bounds the graceful HTTP drain before falling back to Close.
	ShutdownTimeout time.Duration
	// CloseDelay is waited after the listener is closed.
	CloseDelay time.Duration

	// Exit terminates the process. Defaults to os.Exit.
	Exit func(code int)
	// Signals, when set, replaces OS signal delivery (tests).
	Signals <-chan os.Signal
}

type namedCloser struct {
	name string
	c    io.Closer
}

// Orchestrator runs the shutdown sequence exactly once.
type Orchestrator struct {
	logger          *slog.Logger
	shutdownTimeout time.Duration
	closeDelay      time.Duration
	exit            func(code int)
	signals         <-chan os.Signal

	exiting atomic.Bool
	done    chan struct{}

	mu                sync.Mutex
	cancelMaintenance context.CancelFunc
	closers           []namedCloser
	server            HTTPServer
	serverStarted     bool
}

// New creates an Orchestrator.
func New(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	exit := opts.Exit
	if exit == nil {
		exit = os.Exit
	}
	timeout := opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	closeDelay := opts.CloseDelay
	if closeDelay < 0 {
		closeDelay = 0
	}
	return &Orchestrator{
		logger:          logger.With("component", "lifecycle"),
		shutdownTimeout: timeout,
		closeDelay:      closeDelay,
		exit:            exit,
		signals:         opts.Signals,
		done:            make(chan struct{}),
	}
}

// TriggerFunc returns o.Trigger as an injectable callback.
func (o *Orchestrator) TriggerFunc() TriggerFunc {
	return o.Trigger
}

// SetMaintenanceCancel registers the cancel func of the maintenance loop context.
func (o *Orchestrator) SetMaintenanceCancel(cancel context.CancelFunc) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cancelMaintenance = cancel
}

// RegisterCloser adds a persistence handle. Closers run in registration order.
func (o *Orchestrator) RegisterCloser(name string, c io.Closer) {
	if c == nil {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closers = append(o.closers, namedCloser{name: name, c: c})
}

// StartServer runs srv.ListenAndServe in a goroutine. A listener error other than
// http.ErrServerClosed triggers shutdown.
func (o *Orchestrator) StartServer(srv HTTPServer) {
	o.mu.Lock()
	o.server = srv
	o.serverStarted = true
	o.mu.Unlock()

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			o.Trigger(ReasonListenerFailure, err)
		}
	}()
}

// Exiting reports whether shutdown has begun.
func (o *Orchestrator) Exiting() bool {
	return o.exiting.Load()
}

// Done is closed once teardown has finished, just before Exit is called.
func (o *Orchestrator) Done() <-chan struct{} {
	return o.done
}

// Trigger starts shutdown asynchronously. Calls after the first are ignored.
func (o *Orchestrator) Trigger(reason string, err error) {
	if o.exiting.Load() {
		o.logger.Debug("shutdown already in progress", "reason", reason, "error", err)
		return
	}
	go o.begin(context.Background(), reason, err)
}

// Shutdown runs the teardown synchronously. If another caller already started it, Shutdown waits
// for it to finish or for ctx to end.
func (o *Orchestrator) Shutdown(ctx context.Context, reason string) {
	if o.begin(ctx, reason, nil) {
		return
	}
	select {
	case <-o.done:
	case <-ctx.Done():
	}
}

// Run blocks until SIGINT, SIGTERM, ctx cancellation or a trigger, then completes the teardown.
func (o *Orchestrator) Run(ctx context.Context) {
	sigCh := o.signals
	if sigCh == nil {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(ch)
		sigCh = ch
	}

	select {
	case sig := <-sigCh:
		o.Shutdown(context.Background(), signalReason(sig))
	case <-ctx.Done():
		o.Shutdown(context.Background(), "context canceled")
	case <-o.done:
	}
}

func signalReason(sig os.Signal) string {
	if sig == os.Interrupt {
		return ReasonUserInterruption
	}
	return ReasonInterruption
}

// begin reports whether this call performed the teardown.
func (o *Orchestrator) begin(ctx context.Context, reason string, cause error) bool {
	if !o.exiting.CompareAndSwap(false, true) {
		o.logger.DebugContext(ctx, "shutdown already in progress", "reason", reason)
		return false
	}

	if cause != nil {
		o.logger.ErrorContext(ctx, "shutting down", "reason", reason, "error", cause)
	} else {
		o.logger.InfoContext(ctx, "shutting down", "reason", reason)
	}

	o.mu.Lock()
	cancel := o.cancelMaintenance
	closers := append([]namedCloser(nil), o.closers...)
	server, started := o.server, o.serverStarted
	o.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	for _, nc := range closers {
		if err := nc.c.Close(); err != nil {
			o.logger.WarnContext(ctx, "close failed", "resource", nc.name, "error", err)
		}
	}

	if server != nil && started {
		o.stopServer(ctx, server)
		if o.closeDelay > 0 {
			select {
			case <-time.After(o.closeDelay):
			case <-ctx.Done():
			}
		}
	}

	close(o.done)
	o.logger.InfoContext(ctx, "shutdown complete", "reason", reason)
	o.exit(0)
	return true
}

func (o *Orchestrator) stopServer(ctx context.Context, server HTTPServer) {
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		o.logger.WarnContext(ctx, "graceful shutdown failed, closing listener", "error", err)
		if closeErr := server.Close(); closeErr != nil && !errors.Is(closeErr, http.ErrServerClosed) {
			o.logger.WarnContext(ctx, "listener close failed", "error", closeErr)
		}
	}
}
