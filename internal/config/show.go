package config

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
)

// maskedSecret replaces secret values in rendered output.
const maskedSecret = "********"

// RenderEffective writes the resolved configuration as a human-readable
// annotated summary to w. This powers "config show", giving users visibility
// into the effective values after all override layers have been applied.
// Secrets are masked.
func RenderEffective(r *Resolved, w io.Writer) error {
	ew := &errWriter{w: w}

	ew.printf("# Effective configuration")

	if r.ConfigPath != "" {
		ew.printf(" (file: %s)", r.ConfigPath)
	}

	ew.printf("\n\n")

	ew.printf("[remote]\n")
	ew.printf("  server_url      = %q\n", r.ServerURL)
	ew.printf("  resource        = %q\n", r.Resource)
	ew.printf("  auth_header     = %q\n", r.AuthHeader)
	ew.printf("  auth_token      = %q\n", mask(r.AuthToken))
	ew.printf("  expiry_seconds  = %d\n", r.ExpirySeconds)
	ew.printf("  password        = %q\n", mask(r.Password))
	ew.printf("  max_upload_size = %q\n", humanize.IBytes(uint64(r.MaxUploadSize)))
	ew.printf("\n")

	ew.printf("[buffer]\n")
	ew.printf("  buffer         = %q\n", r.Buffer)

	if r.BufferFile != "" {
		ew.printf("  buffer_file    = %q\n", r.BufferFile)
	}

	ew.printf("  watch_interval = %q\n", r.WatchInterval)
	ew.printf("\n")

	ew.printf("[sync]\n")
	ew.printf("  poll_interval     = %q\n", r.PollInterval)
	ew.printf("  max_poll_interval = %q\n", r.MaxPollInterval)
	ew.printf("  state_backend     = %q\n", r.StateBackend)
	ew.printf("  state_dir         = %q\n", r.StateDir)
	ew.printf("\n")

	ew.printf("[logging]\n")
	ew.printf("  log_level          = %q\n", r.Logging.LogLevel)

	if r.Logging.LogFile != "" {
		ew.printf("  log_file           = %q\n", r.Logging.LogFile)
	}

	ew.printf("  log_format         = %q\n", r.Logging.LogFormat)
	ew.printf("  log_retention_days = %d\n", r.Logging.LogRetentionDays)
	ew.printf("\n")

	ew.printf("[network]\n")
	ew.printf("  request_timeout = %q\n", r.RequestTimeout)
	ew.printf("  user_agent      = %q\n", r.UserAgent)

	return ew.err
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}

	return maskedSecret
}

// errWriter wraps an io.Writer and captures the first write error.
// Subsequent writes after an error are no-ops, so callers can chain
// printf calls without checking each one individually.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}

	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
