package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// forceExitCode is the exit status after a second interrupt.
const forceExitCode = 130

// exitFunc is replaced in tests.
var exitFunc = os.Exit

// shutdownContext returns a context that is canceled by the first SIGINT or
// SIGTERM, letting the scheduler finish its in-flight tick and persist state.
// A second signal exits immediately. The returned stop function releases the
// signal handler; call it once the daemon has returned.
func shutdownContext(parent context.Context, logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})

	go func() {
		defer signal.Stop(sigCh)

		select {
		case sig := <-sigCh:
			logger.Info("received signal, finishing current sync",
				slog.String("signal", sig.String()),
			)
			cancel()
		case <-done:
			return
		}

		select {
		case sig := <-sigCh:
			logger.Warn("received second signal, exiting now",
				slog.String("signal", sig.String()),
			)
			exitFunc(forceExitCode)
		case <-done:
			return
		}
	}()

	stop := func() {
		cancel()

		select {
		case <-done:
		default:
			close(done)
		}
	}

	return ctx, stop
}
