// Package lifecycle coordinates named startup and shutdown hooks for the
// service's subsystems and tracks whether startup succeeded.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Hook is a startup or shutdown step. Startup hooks receive the coordinator
// context; shutdown hooks receive a context bounded by the shutdown timeout.
type Hook func(ctx context.Context) error

// Coordinator runs startup hooks concurrently, defers shutdown hooks until
// Shutdown is called, and collects the errors of both.
type Coordinator struct {
	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger

	startup  sync.WaitGroup
	shutdown sync.WaitGroup
	ready    atomic.Bool

	stopCtx context.Context

	mu          sync.Mutex
	startupErrs []error
	stopErrs    []error
}

// New creates a Coordinator with a cancellable context.
func New(logger *slog.Logger) *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		ctx:     ctx,
		cancel:  cancel,
		logger:  logger.With("system", "lifecycle"),
		stopCtx: context.Background(),
	}
}

// Context returns the coordinator's context, cancelled when Shutdown begins.
func (c *Coordinator) Context() context.Context {
	return c.ctx
}

// OnStartup runs fn concurrently. A returned error marks startup as failed.
func (c *Coordinator) OnStartup(name string, fn Hook) {
	c.startup.Go(func() {
		if err := fn(c.ctx); err != nil {
			c.logger.Error("startup hook failed", "hook", name, "error", err)
			c.record(&c.startupErrs, fmt.Errorf("%s: %w", name, err))
			return
		}
		c.logger.Debug("startup hook complete", "hook", name)
	})
}

// OnShutdown registers fn to run once Shutdown cancels the coordinator context.
func (c *Coordinator) OnShutdown(name string, fn Hook) {
	c.shutdown.Go(func() {
		<-c.ctx.Done()
		if err := fn(c.stopCtx); err != nil {
			c.logger.Error("shutdown hook failed", "hook", name, "error", err)
			c.record(&c.stopErrs, fmt.Errorf("%s: %w", name, err))
			return
		}
		c.logger.Debug("shutdown hook complete", "hook", name)
	})
}

// Ready reports whether every startup hook has completed without error.
func (c *Coordinator) Ready() bool {
	return c.ready.Load()
}

// WaitForStartup blocks until all startup hooks have returned. The coordinator
// becomes ready only when none of them failed.
func (c *Coordinator) WaitForStartup() error {
	c.startup.Wait()

	c.mu.Lock()
	err := errors.Join(c.startupErrs...)
	c.mu.Unlock()

	if err != nil {
		return err
	}
	c.ready.Store(true)
	return nil
}

// Shutdown cancels the coordinator context and waits up to timeout for the
// shutdown hooks to finish.
func (c *Coordinator) Shutdown(timeout time.Duration) error {
	c.ready.Store(false)

	stopCtx, stop := context.WithTimeout(context.Background(), timeout)
	defer stop()
	c.stopCtx = stopCtx
	c.cancel()

	done := make(chan struct{})
	go func() {
		c.shutdown.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.mu.Lock()
		defer c.mu.Unlock()
		return errors.Join(c.stopErrs...)
	case <-stopCtx.Done():
		return fmt.Errorf("shutdown timeout after %v", timeout)
	}
}

func (c *Coordinator) record(errs *[]error, err error) {
	c.mu.Lock()
	*errs = append(*errs, err)
	c.mu.Unlock()
}
