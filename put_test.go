package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	stdsync "sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadUpload(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "note.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello world"), 0o600))

	t.Run("within limit", func(t *testing.T) {
		t.Parallel()

		data, err := readUpload(path, 1024)
		require.NoError(t, err)
		assert.Equal(t, "hello world", string(data))
	})

	t.Run("no limit", func(t *testing.T) {
		t.Parallel()

		data, err := readUpload(path, 0)
		require.NoError(t, err)
		assert.Len(t, data, 11)
	})

	t.Run("too large", func(t *testing.T) {
		t.Parallel()

		_, err := readUpload(path, 4)
		require.Error(t, err)
		assert.ErrorIs(t, err, errTooLarge)
		assert.Contains(t, err.Error(), "limit is 4 B")
	})

	t.Run("directory", func(t *testing.T) {
		t.Parallel()

		_, err := readUpload(dir, 1024)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "is a directory")
	})

	t.Run("missing", func(t *testing.T) {
		t.Parallel()

		_, err := readUpload(filepath.Join(dir, "absent"), 1024)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestRunPut_Uploads(t *testing.T) {
	saveGlobals(t)

	var (
		mu          stdsync.Mutex
		gotBody     string
		contentType string
	)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/s/clip" {
			http.NotFound(w, r)
			return
		}

		body, _ := io.ReadAll(r.Body)

		mu.Lock()
		gotBody = string(body)
		contentType = r.Header.Get("Content-Type")
		mu.Unlock()

		_, _ = io.WriteString(w, `{"message":"Uploaded"}`)
	}))
	defer ts.Close()

	dir := t.TempDir()
	file := filepath.Join(dir, "note.txt")
	require.NoError(t, os.WriteFile(file, []byte("plain text payload"), 0o600))

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--config", writeConfigFile(t, dir, ts.URL), "-q", "put", file})
	require.NoError(t, cmd.Execute())

	mu.Lock()
	defer mu.Unlock()

	assert.Equal(t, "plain text payload", gotBody)
	assert.Equal(t, "text/plain; charset=utf-8", contentType)
}

func TestRunPut_RejectsBeforeRequest(t *testing.T) {
	saveGlobals(t)

	requests := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests++
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	dir := t.TempDir()
	cfgPath := writeConfigFile(t, dir, ts.URL)

	f, err := os.OpenFile(cfgPath, os.O_APPEND|os.O_WRONLY, 0o600)
	require.NoError(t, err)
	_, err = f.WriteString("max_upload_size = \"4B\"\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	file := filepath.Join(dir, "big.txt")
	require.NoError(t, os.WriteFile(file, []byte("more than four bytes"), 0o600))

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--config", cfgPath, "-q", "put", file})

	err = cmd.Execute()
	require.Error(t, err)
	assert.ErrorIs(t, err, errTooLarge)
	assert.Zero(t, requests)
}

func TestRunPut_RequiresOneArg(t *testing.T) {
	saveGlobals(t)

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--config", writeConfigFile(t, t.TempDir(), "http://127.0.0.1:1"), "put"})

	assert.Error(t, cmd.Execute())
}
