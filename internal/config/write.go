package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// configFilePermissions keeps the file private: it may hold auth_token.
const configFilePermissions = 0o600

// configDirPermissions is the standard permission mode for config directories.
const configDirPermissions = 0o755

// ErrConfigExists is returned by WriteTemplate when the target file exists
// and overwrite was not requested.
var ErrConfigExists = errors.New("config file already exists")

// configTemplate is the config file written by "config init". Every setting
// is present as a commented-out default so users can discover all options
// without reading docs.
const configTemplate = `# syncpaste configuration

# ── Remote ──

# Base URL of the clipboard server
# server_url = "http://localhost:8000"

# Name of the shared buffer on the server
# resource = "clipboard"

# Header carrying the access token, and the token itself.
# The token can also be supplied via SYNCPASTE_AUTH_TOKEN.
# auth_header = "Cookie"
# auth_token = ""

# Lifetime of pushed content on the server (sent as X-Expire; 0 = omit)
# expiry_seconds = 3600

# Access password embedded in the browser URL
# password = ""

# Largest file accepted by 'syncpaste put'
# max_upload_size = "10MiB"

# ── Local buffer ──

# "system" for the OS clipboard, "file" for a plain text file
# buffer = "system"
# buffer_file = ""

# How often the local buffer is checked for changes in send mode
# watch_interval = "1s"

# ── Sync ──

# Delay between ticks, and the ceiling reached by backoff after failures
# poll_interval = "5s"
# max_poll_interval = "5m"

# Where sync state is kept: "json" or "sqlite"
# state_backend = "json"
# state_dir = ""

# ── Logging ──

# Verbosity: debug, info, warn, error
# log_level = "info"

# Log file path (empty = stderr only)
# log_file = ""

# auto, text, json
# log_format = "auto"
# log_retention_days = 30

# ── Network ──

# request_timeout = "30s"
# user_agent = "syncpaste"
`

// Template returns the default config file content.
func Template() string {
	return configTemplate
}

// WriteTemplate writes the default config file to path. An existing file is
// only replaced when overwrite is true. The write is atomic (temp file +
// rename) and parent directories are created as needed.
func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrConfigExists, path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("checking config file: %w", err)
		}
	}

	slog.Info("writing config template", slog.String("path", path))

	return atomicWriteFile(path, []byte(configTemplate))
}

// atomicWriteFile writes data to a temp file in the same directory and
// renames it over the target, so readers never see a partial file.
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, configDirPermissions); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	f, err := os.CreateTemp(dir, ".config-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	tempPath := f.Name()

	// Clean up the temp file on any error path.
	succeeded := false
	defer func() {
		if !succeeded {
			os.Remove(tempPath)
		}
	}()

	if _, err := f.Write(data); err != nil {
		f.Close()

		return fmt.Errorf("writing temp file: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Chmod(tempPath, configFilePermissions); err != nil {
		return fmt.Errorf("setting file permissions: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}

	succeeded = true

	return nil
}
