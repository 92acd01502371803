// Package state persists the sync engine's record of past transfers: which
// content was last pushed, which content was last seen remotely, and when the
// last tick completed. The record survives process restarts; a missing or
// unreadable record is equivalent to the zero value.
package state

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrPersist wraps every failure to write the record to its backend.
var ErrPersist = errors.New("state: persisting sync state")

// SyncState is the durable record. Field names in JSON match the on-disk
// format of the JSON backend.
type SyncState struct {
	LastSentFingerprint   string    `json:"last_sent_fingerprint"`
	LastRemoteFingerprint string    `json:"last_remote_fingerprint"`
	LastSyncAt            time.Time `json:"last_sync_at"`
}

// Backend reads and writes a whole SyncState. Write must replace the stored
// record atomically: a reader may observe the old record or the new one,
// never a mix of both.
type Backend interface {
	// Read returns the stored record. A missing record returns the zero
	// value and a nil error.
	Read(ctx context.Context) (SyncState, error)
	Write(ctx context.Context, st SyncState) error
	Close() error
}

// Store is the single writer of a SyncState. Setters update the in-memory
// record first and then flush the full record to the backend. When the flush
// fails the in-memory value stays authoritative for the rest of the process
// lifetime and the error is returned to the caller.
type Store struct {
	backend Backend
	logger  *slog.Logger

	mu    sync.Mutex
	state SyncState
}

// Open creates a Store over backend and loads the persisted record.
func Open(ctx context.Context, backend Backend, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{backend: backend, logger: logger}
	s.Load(ctx)

	return s
}

// Load re-reads the record from the backend and makes it the in-memory
// value. Unreadable storage is logged and yields the zero value; it is never
// returned as an error.
func (s *Store) Load(ctx context.Context) SyncState {
	st, err := s.backend.Read(ctx)
	if err != nil {
		s.logger.Warn("sync state unreadable, starting from empty state",
			slog.String("error", err.Error()),
		)

		st = SyncState{}
	}

	s.mu.Lock()
	s.state = st
	s.mu.Unlock()

	s.logger.Debug("sync state loaded",
		slog.String("last_sent", st.LastSentFingerprint),
		slog.String("last_remote", st.LastRemoteFingerprint),
		slog.Time("last_sync_at", st.LastSyncAt),
	)

	return st
}

// Snapshot returns a copy of the in-memory record.
func (s *Store) Snapshot() SyncState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// SetLastSent records the fingerprint of content successfully pushed.
func (s *Store) SetLastSent(ctx context.Context, fp string) error {
	return s.set(ctx, "last_sent_fingerprint", func(st *SyncState) { st.LastSentFingerprint = fp })
}

// SetLastRemote records the fingerprint of content last fetched.
func (s *Store) SetLastRemote(ctx context.Context, fp string) error {
	return s.set(ctx, "last_remote_fingerprint", func(st *SyncState) { st.LastRemoteFingerprint = fp })
}

// SetLastSyncAt records the completion time of a tick.
func (s *Store) SetLastSyncAt(ctx context.Context, t time.Time) error {
	return s.set(ctx, "last_sync_at", func(st *SyncState) { st.LastSyncAt = t })
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

func (s *Store) set(ctx context.Context, field string, mutate func(*SyncState)) error {
	s.mu.Lock()
	mutate(&s.state)
	snapshot := s.state
	s.mu.Unlock()

	if err := s.backend.Write(ctx, snapshot); err != nil {
		s.logger.Error("failed to persist sync state",
			slog.String("field", field),
			slog.String("error", err.Error()),
		)

		return fmt.Errorf("%w (%s): %w", ErrPersist, field, err)
	}

	return nil
}
