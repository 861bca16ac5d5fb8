// Package bootstrap provides application lifecycle helpers.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

const DefaultShutdownTimeout = 10 * time.Second

// App runs long-lived components and shuts them down in reverse registration order.
type App struct {
	mu              sync.Mutex
	hooks           []func(ctx context.Context) error
	shutdownTimeout time.Duration
}

type Option func(*App)

func WithShutdownTimeout(timeout time.Duration) Option {
	return func(a *App) {
		a.shutdownTimeout = timeout
	}
}

func New(opts ...Option) *App {
	app := &App{shutdownTimeout: DefaultShutdownTimeout}
	for _, opt := range opts {
		opt(app)
	}
	return app
}

// AddShutdownHook registers a function to call during shutdown.
// Hooks run in reverse order (LIFO). Thread-safe.
func (a *App) AddShutdownHook(fn func(ctx context.Context) error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.hooks = append(a.hooks, fn)
}

// Run starts every runner and blocks until they all return, one of them fails, or
// the process receives SIGINT or SIGTERM. Shutdown hooks run in every case.
func (a *App) Run(ctx context.Context, runners ...func(ctx context.Context) error) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	for _, run := range runners {
		g.Go(func() error {
			return run(gctx)
		})
	}
	done := make(chan error, 1)
	go func() {
		done <- g.Wait()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancelShutdown()

		shutdownErr := a.shutdown(shutdownCtx)
		var runErr error
		select {
		case runErr = <-done:
		case <-shutdownCtx.Done():
			runErr = fmt.Errorf("runners did not stop: %w", shutdownCtx.Err())
		}
		return errors.Join(runErr, shutdownErr)
	case runErr := <-done:
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancelShutdown()
		return errors.Join(runErr, a.shutdown(shutdownCtx))
	}
}

func (a *App) shutdown(ctx context.Context) error {
	a.mu.Lock()
	hooks := a.hooks
	a.hooks = nil
	a.mu.Unlock()

	var errs []error
	for i := len(hooks) - 1; i >= 0; i-- {
		if err := hooks[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
