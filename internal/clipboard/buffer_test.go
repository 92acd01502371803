package clipboard

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFile_MissingReadsEmpty(t *testing.T) {
	t.Parallel()

	f := NewFile(filepath.Join(t.TempDir(), "buffer.txt"))

	got, err := f.Read(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFile_WriteThenRead(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "buffer.txt")
	f := NewFile(path)
	ctx := context.Background()

	require.NoError(t, f.Write(ctx, "hello\nworld"))

	got, err := f.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "hello\nworld", got)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(filePerms), info.Mode().Perm())
	assert.Equal(t, path, f.Path())
}

func TestFile_WriteReplacesAndLeavesNoTemp(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	f := NewFile(filepath.Join(dir, "buffer.txt"))
	ctx := context.Background()

	require.NoError(t, f.Write(ctx, "first, and longer"))
	require.NoError(t, f.Write(ctx, "second"))

	got, err := f.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second", got)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "buffer.txt", entries[0].Name())
}

func TestFile_WriteMissingDirFails(t *testing.T) {
	t.Parallel()

	f := NewFile(filepath.Join(t.TempDir(), "nope", "buffer.txt"))

	assert.Error(t, f.Write(context.Background(), "x"))
}

func TestFile_ReadDirectoryFails(t *testing.T) {
	t.Parallel()

	f := NewFile(t.TempDir())

	_, err := f.Read(context.Background())
	assert.Error(t, err)
}
