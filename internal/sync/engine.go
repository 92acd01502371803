// Package sync implements the clipboard synchronization engine: a tick-driven
// state machine that pushes local buffer changes to the remote or pulls
// remote changes into the local buffer, with fingerprint-based change
// detection, exponential backoff on remote failure, and durable state.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	stdsync "sync"
	"sync/atomic"
	"time"

	"github.com/tonimelisma/syncpaste/internal/fingerprint"
	"github.com/tonimelisma/syncpaste/internal/remote"
	"github.com/tonimelisma/syncpaste/internal/state"
)

// Remote is the shared buffer endpoint. Satisfied by *remote.Client.
type Remote interface {
	Fetch(ctx context.Context) (string, error)
	Push(ctx context.Context, content string) (remote.Ack, error)
}

// Buffer is the local text buffer. Satisfied by the clipboard package's
// System and File buffers.
type Buffer interface {
	Read(ctx context.Context) (string, error)
	Write(ctx context.Context, content string) error
}

// Notifier receives a Status after every tick that ran the transfer step.
type Notifier func(Status)

// EngineConfig holds the options for NewEngine.
type EngineConfig struct {
	Mode      Mode
	Remote    Remote
	Buffer    Buffer
	Store     *state.Store
	BaseDelay time.Duration // zero means DefaultBaseDelay
	MaxDelay  time.Duration // zero means DefaultMaxDelay
	Logger    *slog.Logger
	Notify    Notifier // optional
}

// LocalSnapshot is the cached local buffer content and its fingerprint.
type LocalSnapshot struct {
	Content     string
	Fingerprint string
}

// Engine decides each tick whether to transfer, performs the transfer, and
// records the outcome. Ticks never overlap; MarkChanged is safe to call from
// any goroutine.
type Engine struct {
	mode    Mode
	remote  Remote
	buffer  Buffer
	store   *state.Store
	policy  *PollPolicy
	logger  *slog.Logger
	notify  Notifier
	nowFunc func() time.Time // injectable for testing

	tickMu   stdsync.Mutex // held for the duration of a tick
	snapshot LocalSnapshot // guarded by tickMu
	primed   bool          // guarded by tickMu

	pendingSend atomic.Bool
	phase       atomic.Int32
}

// NewEngine creates an engine. A push engine starts with a pending send so
// the current buffer is offered once at startup.
func NewEngine(cfg *EngineConfig) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	notify := cfg.Notify
	if notify == nil {
		notify = func(Status) {}
	}

	e := &Engine{
		mode:    cfg.Mode,
		remote:  cfg.Remote,
		buffer:  cfg.Buffer,
		store:   cfg.Store,
		policy:  NewPollPolicy(cfg.BaseDelay, cfg.MaxDelay),
		logger:  logger,
		notify:  notify,
		nowFunc: time.Now,
	}

	if cfg.Mode == ModePush {
		e.pendingSend.Store(true)
	}

	return e
}

// Mode returns the engine's direction.
func (e *Engine) Mode() Mode {
	return e.mode
}

// MarkChanged records that local content may have changed. The flag is only
// consumed inside a tick.
func (e *Engine) MarkChanged() {
	e.pendingSend.Store(true)
}

// Pending reports whether a local change is waiting to be pushed.
func (e *Engine) Pending() bool {
	return e.pendingSend.Load()
}

// Phase returns the engine's current phase.
func (e *Engine) Phase() Phase {
	return Phase(e.phase.Load())
}

// Delay returns the current tick delay.
func (e *Engine) Delay() time.Duration {
	return e.policy.Current()
}

// Snapshot returns the cached local buffer state.
func (e *Engine) Snapshot() LocalSnapshot {
	e.tickMu.Lock()
	defer e.tickMu.Unlock()

	return e.snapshot
}

// Tick runs one scheduled cycle and returns the delay until the next one.
// A tick that fires before the current delay has elapsed since the last
// recorded tick transfers nothing and returns the remainder.
func (e *Engine) Tick(ctx context.Context) time.Duration {
	e.tickMu.Lock()
	defer e.tickMu.Unlock()

	now := e.nowFunc()
	delay := e.policy.Current()

	if last := e.store.Snapshot().LastSyncAt; !last.IsZero() {
		// A negative elapsed means the wall clock moved backwards; run
		// rather than stall for an unbounded time.
		if elapsed := now.Sub(last); elapsed >= 0 && elapsed < delay {
			remaining := delay - elapsed

			e.logger.Debug("tick fired early, rescheduling",
				slog.Duration("elapsed", elapsed),
				slog.Duration("remaining", remaining),
			)

			return remaining
		}
	}

	return e.run(ctx, now).NextDelay
}

// SyncNow runs one cycle immediately, bypassing the early-fire guard. In
// push mode the buffer is checked regardless of pending change signals.
func (e *Engine) SyncNow(ctx context.Context) Status {
	e.tickMu.Lock()
	defer e.tickMu.Unlock()

	if e.mode == ModePush {
		e.pendingSend.Store(true)
	}

	return e.run(ctx, e.nowFunc())
}

// run executes the transfer step and records its outcome. Caller holds tickMu.
func (e *Engine) run(ctx context.Context, now time.Time) Status {
	st := Status{Time: now, Mode: e.mode}

	switch e.mode {
	case ModePush:
		e.pushTick(ctx, &st)
	case ModePull:
		e.pullTick(ctx, &st)
	default:
		e.logger.Debug("unknown mode, skipping transfer", slog.String("mode", e.mode.String()))
	}

	if st.canceled {
		// Shutdown interrupted the remote call. Record nothing so the next
		// run starts from the same state.
		e.setPhase()
		st.Phase = e.Phase()
		st.NextDelay = e.policy.Current()

		return st
	}

	switch {
	case errors.Is(st.Err, ErrTransfer):
		e.policy.Backoff()
	case st.Succeeded:
		e.policy.Reset()
	}

	// Persist even if the tick's context is done: the transfer already
	// happened and must not be repeated after a restart.
	if err := e.store.SetLastSyncAt(context.WithoutCancel(ctx), now); err != nil {
		st.Err = errors.Join(st.Err, fmt.Errorf("%w: %w", ErrStorage, err))
	}

	e.setPhase()
	st.Phase = e.Phase()
	st.Failures = e.policy.Failures()
	st.NextDelay = e.policy.Current()

	e.logStatus(&st)
	e.notify(st)

	return st
}

// pushTick offers the local buffer to the remote when a change is pending.
func (e *Engine) pushTick(ctx context.Context, st *Status) {
	if !e.pendingSend.Swap(false) {
		return
	}

	content, err := e.buffer.Read(ctx)
	if err != nil {
		e.pendingSend.Store(true)
		st.Err = fmt.Errorf("%w: %w", ErrLocalIO, err)

		return
	}

	fp := fingerprint.Of(content)
	e.snapshot = LocalSnapshot{Content: content, Fingerprint: fp}

	if fp == fingerprint.None || fp == e.store.Snapshot().LastSentFingerprint {
		// Spurious signal or empty buffer: nothing to send.
		st.Succeeded = true
		return
	}

	st.Attempted = true
	e.phase.Store(int32(PhaseSyncing))

	ack, err := e.remote.Push(ctx, content)
	if err != nil {
		e.pendingSend.Store(true)

		if ctx.Err() != nil {
			st.canceled = true
			return
		}

		st.Err = fmt.Errorf("%w: %w", ErrTransfer, err)

		return
	}

	st.Succeeded = true
	st.Changed = true
	st.Message = ack.Message

	if err := e.store.SetLastSent(context.WithoutCancel(ctx), fp); err != nil {
		st.Err = fmt.Errorf("%w: %w", ErrStorage, err)
	}

	// The buffer may have changed while the push was in flight. Only the
	// content actually pushed is recorded as sent; anything newer is
	// pushed on the next tick.
	if latest, err := e.buffer.Read(ctx); err == nil {
		if latestFP := fingerprint.Of(latest); latestFP != fp && latestFP != fingerprint.None {
			e.logger.Debug("buffer changed during push, scheduling resend")
			e.pendingSend.Store(true)
		}
	}
}

// pullTick fetches the remote buffer and applies it locally when it differs.
func (e *Engine) pullTick(ctx context.Context, st *Status) {
	if !e.primed {
		e.prime(ctx)
	}

	st.Attempted = true
	e.phase.Store(int32(PhaseSyncing))

	content, err := e.remote.Fetch(ctx)
	if err != nil {
		if ctx.Err() != nil {
			st.canceled = true
			return
		}

		st.Err = fmt.Errorf("%w: %w", ErrTransfer, err)

		return
	}

	st.Succeeded = true
	fp := fingerprint.Of(content)

	// An empty remote never clears the local buffer.
	if fp != fingerprint.None && fp != e.snapshot.Fingerprint {
		if err := e.buffer.Write(ctx, content); err != nil {
			st.Err = fmt.Errorf("%w: %w", ErrLocalIO, err)
		} else {
			e.snapshot = LocalSnapshot{Content: content, Fingerprint: fp}
			st.Changed = true
		}
	}

	if err := e.store.SetLastRemote(context.WithoutCancel(ctx), fp); err != nil {
		st.Err = errors.Join(st.Err, fmt.Errorf("%w: %w", ErrStorage, err))
	}
}

// prime loads the local buffer into the snapshot so the first pull does not
// rewrite identical content.
func (e *Engine) prime(ctx context.Context) {
	content, err := e.buffer.Read(ctx)
	if err != nil {
		e.logger.Debug("could not prime local snapshot", slog.String("error", err.Error()))
		return
	}

	e.snapshot = LocalSnapshot{Content: content, Fingerprint: fingerprint.Of(content)}
	e.primed = true
}

func (e *Engine) setPhase() {
	if e.policy.Failures() > 0 {
		e.phase.Store(int32(PhaseBackoffWait))
		return
	}

	e.phase.Store(int32(PhaseIdle))
}

func (e *Engine) logStatus(st *Status) {
	attrs := []any{
		slog.String("mode", st.Mode.String()),
		slog.Bool("attempted", st.Attempted),
		slog.Bool("changed", st.Changed),
		slog.Bool("succeeded", st.Succeeded),
		slog.Duration("next_delay", st.NextDelay),
	}

	switch {
	case errors.Is(st.Err, ErrTransfer):
		attrs = append(attrs, slog.String("error", st.Err.Error()), slog.Int("failures", st.Failures))
		e.logger.Warn("sync tick failed, backing off", attrs...)
	case st.Err != nil:
		attrs = append(attrs, slog.String("error", st.Err.Error()))
		e.logger.Warn("sync tick completed with errors", attrs...)
	case st.Changed:
		e.logger.Info("sync tick transferred content", attrs...)
	default:
		e.logger.Debug("sync tick", attrs...)
	}
}
