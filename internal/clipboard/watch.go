package clipboard

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tonimelisma/syncpaste/internal/fingerprint"
)

// Watch loop constants.
const (
	minPollInterval     = 100 * time.Millisecond
	watchErrInitBackoff = 1 * time.Second
	watchErrMaxBackoff  = 30 * time.Second
	watchErrBackoffMult = 2
)

// Watcher emits a signal whenever local content may have changed. Signals
// carry no payload; they are coalesced, so a slow consumer sees at most one
// pending signal.
type Watcher interface {
	Run(ctx context.Context, signals chan<- struct{}) error
}

// Signal performs a non-blocking send. Use a channel with capacity 1 so
// repeated signals collapse into one.
func Signal(signals chan<- struct{}) {
	select {
	case signals <- struct{}{}:
	default:
	}
}

// PollWatcher reads a buffer at a fixed interval and signals when its
// fingerprint changes. The OS clipboard offers no portable change
// notification, so polling is the only option there.
type PollWatcher struct {
	buffer   Buffer
	interval time.Duration
	logger   *slog.Logger
}

// NewPollWatcher creates a PollWatcher. Intervals below 100ms are clamped.
func NewPollWatcher(buffer Buffer, interval time.Duration, logger *slog.Logger) *PollWatcher {
	if interval < minPollInterval {
		interval = minPollInterval
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PollWatcher{buffer: buffer, interval: interval, logger: logger}
}

// Run polls until ctx is canceled. The first read only primes the
// fingerprint; it does not signal.
func (w *PollWatcher) Run(ctx context.Context, signals chan<- struct{}) error {
	w.logger.Debug("clipboard poll watcher starting", slog.Duration("interval", w.interval))

	last, primed := "", false
	if content, err := w.buffer.Read(ctx); err == nil {
		last, primed = fingerprint.Of(content), true
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		content, err := w.buffer.Read(ctx)
		if err != nil {
			w.logger.Debug("clipboard poll read failed", slog.String("error", err.Error()))
			continue
		}

		fp := fingerprint.Of(content)
		if primed && fp == last {
			continue
		}

		last, primed = fp, true

		w.logger.Debug("local content changed", slog.String("fingerprint", fp))
		Signal(signals)
	}
}

// FileWatcher signals when a buffer file is written, created, replaced, or
// removed. It watches the parent directory because editors and File.Write
// replace the file by rename, which would drop a watch on the file itself.
type FileWatcher struct {
	path   string
	logger *slog.Logger
}

// NewFileWatcher creates a FileWatcher for path.
func NewFileWatcher(path string, logger *slog.Logger) *FileWatcher {
	if logger == nil {
		logger = slog.Default()
	}

	return &FileWatcher{path: filepath.Clean(path), logger: logger}
}

// Run watches until ctx is canceled.
func (w *FileWatcher) Run(ctx context.Context, signals chan<- struct{}) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	if err := watcher.Add(dir); err != nil {
		return err
	}

	w.logger.Debug("buffer file watcher starting", slog.String("path", w.path))

	errBackoff := watchErrInitBackoff

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if filepath.Clean(ev.Name) != w.path {
				continue
			}

			// Mode changes do not alter content.
			if ev.Op == fsnotify.Chmod {
				continue
			}

			w.logger.Debug("buffer file event", slog.String("op", ev.Op.String()))
			Signal(signals)

			errBackoff = watchErrInitBackoff

		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			w.logger.Warn("buffer file watcher error",
				slog.String("error", watchErr.Error()),
				slog.Duration("backoff", errBackoff),
			)

			// Sustained errors (e.g. kernel queue overflow) must not spin.
			// A missed event is recovered by signalling once after the pause.
			if sleepErr := sleep(ctx, errBackoff); sleepErr != nil {
				return nil
			}

			Signal(signals)

			errBackoff *= watchErrBackoffMult
			if errBackoff > watchErrMaxBackoff {
				errBackoff = watchErrMaxBackoff
			}
		}
	}
}

// sleep waits for d or until ctx is canceled.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
