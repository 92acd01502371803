package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tonimelisma/syncpaste/internal/clipboard"
	"github.com/tonimelisma/syncpaste/internal/config"
	"github.com/tonimelisma/syncpaste/internal/remote"
	"github.com/tonimelisma/syncpaste/internal/state"
	"github.com/tonimelisma/syncpaste/internal/sync"
)

// flagOnce runs a single sync and exits.
var flagOnce bool

// runSync is the root command: run the engine for the requested mode until
// interrupted, or once with --once.
func runSync(cmd *cobra.Command, args []string) error {
	cfg := resolvedCfg
	mode := modeFromArgs(args)

	logger, closeLog := buildLogger(cfg)
	defer closeLog()

	if !mode.Valid() {
		logger.Warn("unknown mode, nothing will be synchronized",
			slog.String("mode", mode.String()),
			slog.String("valid", "send, receive"),
		)
	}

	path := statePath(cfg, mode)

	release, err := acquireLock(path + ".lock")
	if err != nil {
		return err
	}
	defer release()

	ctx, stop := shutdownContext(cmd.Context(), logger)
	defer stop()

	backend, err := state.OpenBackend(ctx, cfg.StateBackend, path, logger)
	if err != nil {
		return fmt.Errorf("opening sync state: %w", err)
	}

	store := state.Open(ctx, backend, logger)
	defer store.Close()

	client := newRemoteClient(cfg, logger)
	buffer := newBuffer(cfg)

	engine := sync.NewEngine(&sync.EngineConfig{
		Mode:      mode,
		Remote:    client,
		Buffer:    buffer,
		Store:     store,
		BaseDelay: cfg.PollInterval,
		MaxDelay:  cfg.MaxPollInterval,
		Logger:    logger,
		Notify:    tickNotifier(flagQuiet || flagOnce),
	})

	logger.Info("syncpaste starting",
		slog.String("mode", mode.String()),
		slog.String("server", cfg.ServerURL),
		slog.String("resource", cfg.Resource),
		slog.String("buffer", cfg.Buffer),
		slog.String("state", path),
	)

	statusf(flagQuiet, "Shared clipboard in a browser: %s\n", client.BrowserURL())

	if flagOnce {
		st := engine.SyncNow(ctx)
		fmt.Fprintln(os.Stdout, st.String())

		if errors.Is(st.Err, sync.ErrTransfer) {
			return st.Err
		}

		return nil
	}

	return runDaemon(ctx, engine, newWatcher(cfg, mode, buffer, logger), logger)
}

// runDaemon runs the scheduler and, when present, the local change watcher
// until ctx is canceled or either fails.
func runDaemon(ctx context.Context, engine sync.Ticker, watcher clipboard.Watcher, logger *slog.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	var signals chan struct{}

	if watcher != nil {
		signals = make(chan struct{}, 1)

		g.Go(func() error {
			if err := watcher.Run(gctx, signals); err != nil {
				return fmt.Errorf("watching local buffer: %w", err)
			}

			return nil
		})
	}

	g.Go(func() error {
		return sync.NewScheduler(engine, signals, logger).Run(gctx)
	})

	err := g.Wait()

	logger.Info("syncpaste stopped")

	return err
}

func newRemoteClient(cfg *config.Resolved, logger *slog.Logger) *remote.Client {
	return remote.New(remote.Options{
		BaseURL:       cfg.ServerURL,
		Resource:      cfg.Resource,
		AuthHeader:    cfg.AuthHeader,
		AuthValue:     cfg.AuthToken,
		ExpirySeconds: cfg.ExpirySeconds,
		Password:      cfg.Password,
		Timeout:       cfg.RequestTimeout,
		UserAgent:     cfg.UserAgent + "/" + version,
		Logger:        logger,
	})
}

func newBuffer(cfg *config.Resolved) clipboard.Buffer {
	if cfg.Buffer == config.BufferFile {
		return clipboard.NewFile(cfg.BufferFile)
	}

	return clipboard.NewSystem()
}

// newWatcher returns the local change source for mode. Only send mode
// watches; receive mode has nothing local to observe.
func newWatcher(cfg *config.Resolved, mode sync.Mode, buffer clipboard.Buffer, logger *slog.Logger) clipboard.Watcher {
	if mode != sync.ModePush {
		return nil
	}

	if cfg.Buffer == config.BufferFile {
		return clipboard.NewFileWatcher(cfg.BufferFile, logger)
	}

	return clipboard.NewPollWatcher(buffer, cfg.WatchInterval, logger)
}

// tickNotifier prints a line for every tick that moved content.
func tickNotifier(quiet bool) sync.Notifier {
	return func(st sync.Status) {
		if st.Changed {
			statusf(quiet, "%s\n", formatTickLine(st))
		}
	}
}
