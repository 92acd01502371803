package state

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
)

// File and directory permissions for state files. State holds only content
// digests and a timestamp, but it is still per-user data.
const (
	FilePerms = 0o600
	DirPerms  = 0o700
)

// JSONFile stores the record as a single JSON object on disk.
type JSONFile struct {
	path string
}

// NewJSONFile returns a backend writing to path. The file and its parent
// directory are created on the first Write.
func NewJSONFile(path string) *JSONFile {
	return &JSONFile{path: path}
}

// Path returns the file the backend reads and writes.
func (f *JSONFile) Path() string {
	return f.path
}

// Read decodes the state file. A missing or empty file is the zero record.
func (f *JSONFile) Read(_ context.Context) (SyncState, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return SyncState{}, nil
	}

	if err != nil {
		return SyncState{}, fmt.Errorf("state: reading %s: %w", f.path, err)
	}

	if len(data) == 0 {
		return SyncState{}, nil
	}

	var st SyncState
	if err := json.Unmarshal(data, &st); err != nil {
		return SyncState{}, fmt.Errorf("state: decoding %s: %w", f.path, err)
	}

	return st, nil
}

// Write replaces the state file atomically (write-to-temp + fsync + rename).
func (f *JSONFile) Write(_ context.Context, st SyncState) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("state: encoding: %w", err)
	}

	return writeFileAtomic(f.path, data)
}

// Close is a no-op; the file is not held open between writes.
func (f *JSONFile) Close() error {
	return nil
}

// writeFileAtomic writes data to a temp file in the target directory and
// renames it over path. Same directory guarantees same filesystem for
// rename(2), so readers see either the old file or the new one.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, DirPerms); err != nil {
		return fmt.Errorf("state: creating directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*.tmp")
	if err != nil {
		return fmt.Errorf("state: creating temp file: %w", err)
	}

	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpPath)
		}
	}()

	if err := tmp.Chmod(FilePerms); err != nil {
		tmp.Close()
		return fmt.Errorf("state: setting permissions: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("state: writing: %w", err)
	}

	// Flush before rename so a power loss cannot leave a truncated record at
	// the final path.
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("state: syncing: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("state: closing: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("state: renaming: %w", err)
	}

	success = true

	return nil
}
