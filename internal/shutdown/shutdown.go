// Package shutdown runs the interactive view until it returns on its own or
// the process is asked to stop with SIGINT or SIGTERM.
package shutdown

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// Func is a step that honors context cancellation.
type Func func(ctx context.Context) error

// RunWithGracefulShutdown calls runner and blocks until it returns. On a stop
// signal the runner's context is cancelled, cleanup (which may be nil) runs,
// and the runner gets up to grace to return.
func RunWithGracefulShutdown(ctx context.Context, logger *slog.Logger, grace time.Duration, runner, cleanup Func) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	return run(ctx, logger, grace, stop, runner, cleanup)
}

func run(ctx context.Context, logger *slog.Logger, grace time.Duration, stop <-chan os.Signal, runner, cleanup Func) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- runner(runCtx) }()

	var sig os.Signal
	select {
	case err := <-done:
		return err
	case sig = <-stop:
	}

	logger.Info("stopping", "signal", sig.String())
	cancel()
	return drain(logger, grace, done, cleanup)
}

// drain runs cleanup and waits for the cancelled runner within grace.
// Cancellation errors from the runner count as a clean stop.
func drain(logger *slog.Logger, grace time.Duration, done <-chan error, cleanup Func) error {
	graceCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()

	if cleanup != nil {
		if err := cleanup(graceCtx); err != nil {
			logger.Error("cleanup failed", "error", err)
		}
	}

	select {
	case err := <-done:
		if errors.Is(err, context.Canceled) {
			err = nil
		}
		if err != nil {
			return err
		}
		logger.Info("stopped")
	case <-graceCtx.Done():
		logger.Warn("view did not stop in time", "grace", grace)
	}
	return nil
}
