// Package clipboard provides the local text buffer the engine synchronizes
// and the sources of "local content may have changed" signals.
package clipboard

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	osclip "github.com/atotto/clipboard"
)

// ErrUnsupported is returned by System when no clipboard utility is
// available (for example a headless Linux box without xclip/xsel/wl-copy).
var ErrUnsupported = errors.New("clipboard: system clipboard not supported on this host")

// Buffer is the local text buffer capability.
type Buffer interface {
	Read(ctx context.Context) (string, error)
	Write(ctx context.Context, content string) error
}

// System is the operating system clipboard.
type System struct{}

// NewSystem returns the OS clipboard buffer.
func NewSystem() *System {
	return &System{}
}

// Read returns the current clipboard text.
func (System) Read(_ context.Context) (string, error) {
	if osclip.Unsupported {
		return "", ErrUnsupported
	}

	s, err := osclip.ReadAll()
	if err != nil {
		return "", fmt.Errorf("clipboard: reading: %w", err)
	}

	return s, nil
}

// Write replaces the clipboard text.
func (System) Write(_ context.Context, content string) error {
	if osclip.Unsupported {
		return ErrUnsupported
	}

	if err := osclip.WriteAll(content); err != nil {
		return fmt.Errorf("clipboard: writing: %w", err)
	}

	return nil
}

// filePerms keeps the buffer file private to the user.
const filePerms = 0o600

// File is a buffer backed by a plain text file. Useful on headless hosts and
// for piping the shared buffer into other tools.
type File struct {
	path string
}

// NewFile returns a buffer stored at path.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the backing file path.
func (f *File) Path() string {
	return f.path
}

// Read returns the file contents. A missing file reads as empty.
func (f *File) Read(_ context.Context) (string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}

	if err != nil {
		return "", fmt.Errorf("clipboard: reading %s: %w", f.path, err)
	}

	return string(data), nil
}

// Write replaces the file contents atomically.
func (f *File) Write(_ context.Context, content string) error {
	dir := filepath.Dir(f.path)

	tmp, err := os.CreateTemp(dir, ".buffer-*.tmp")
	if err != nil {
		return fmt.Errorf("clipboard: creating temp file in %s: %w", dir, err)
	}

	tmpPath := tmp.Name()

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpPath)

		return fmt.Errorf("clipboard: writing %s: %w", tmpPath, err)
	}

	if err := tmp.Chmod(filePerms); err != nil {
		tmp.Close()
		os.Remove(tmpPath)

		return fmt.Errorf("clipboard: setting permissions: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("clipboard: closing %s: %w", tmpPath, err)
	}

	if err := os.Rename(tmpPath, f.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("clipboard: replacing %s: %w", f.path, err)
	}

	return nil
}
