package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver, registers as "sqlite".
)

const (
	selectStateSQL = `SELECT last_sent_fingerprint, last_remote_fingerprint, last_sync_at
		FROM sync_state WHERE id = 1`
	upsertStateSQL = `INSERT INTO sync_state (id, last_sent_fingerprint, last_remote_fingerprint, last_sync_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			last_sent_fingerprint = excluded.last_sent_fingerprint,
			last_remote_fingerprint = excluded.last_remote_fingerprint,
			last_sync_at = excluded.last_sync_at`
)

// SQLite stores the record as the single row of the sync_state table. Each
// Write is one UPSERT statement, so the row is replaced as a unit.
type SQLite struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenSQLite opens (creating if needed) the database at dbPath and applies
// migrations. Use ":memory:" for tests.
func OpenSQLite(ctx context.Context, dbPath string, logger *slog.Logger) (*SQLite, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), DirPerms); err != nil {
			return nil, fmt.Errorf("state: creating directory for %s: %w", dbPath, err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("state: open sqlite: %w", err)
	}

	// One connection keeps ":memory:" databases alive across statements and
	// serializes writers.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = FULL",
	}

	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			db.Close()
			return nil, fmt.Errorf("state: %s: %w", p, err)
		}
	}

	if err := runMigrations(ctx, db, logger); err != nil {
		db.Close()
		return nil, err
	}

	logger.Debug("sync state database ready", slog.String("path", dbPath))

	return &SQLite{db: db, logger: logger}, nil
}

// Read returns the stored row, or the zero record if none was written yet.
func (s *SQLite) Read(ctx context.Context) (SyncState, error) {
	var (
		st       SyncState
		syncedAt int64
	)

	err := s.db.QueryRowContext(ctx, selectStateSQL).Scan(
		&st.LastSentFingerprint, &st.LastRemoteFingerprint, &syncedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return SyncState{}, nil
	}

	if err != nil {
		return SyncState{}, fmt.Errorf("state: reading sync_state: %w", err)
	}

	if syncedAt != 0 {
		st.LastSyncAt = time.Unix(0, syncedAt)
	}

	return st, nil
}

// Write replaces the stored row.
func (s *SQLite) Write(ctx context.Context, st SyncState) error {
	var syncedAt int64
	if !st.LastSyncAt.IsZero() {
		syncedAt = st.LastSyncAt.UnixNano()
	}

	if _, err := s.db.ExecContext(ctx, upsertStateSQL,
		st.LastSentFingerprint, st.LastRemoteFingerprint, syncedAt,
	); err != nil {
		return fmt.Errorf("state: writing sync_state: %w", err)
	}

	return nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
