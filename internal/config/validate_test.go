package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"relative url", func(c *Config) { c.ServerURL = "localhost:8000" }, "server_url"},
		{"bad scheme", func(c *Config) { c.ServerURL = "ws://host" }, "server_url"},
		{"missing host", func(c *Config) { c.ServerURL = "http://" }, "missing host"},
		{"empty resource", func(c *Config) { c.Resource = " " }, "resource: must not be empty"},
		{"slash in resource", func(c *Config) { c.Resource = "a/b" }, "resource"},
		{"empty auth header", func(c *Config) { c.AuthHeader = "" }, "auth_header"},
		{"negative expiry", func(c *Config) { c.ExpirySeconds = -1 }, "expiry_seconds"},
		{"bad upload size", func(c *Config) { c.MaxUploadSize = "lots" }, "max_upload_size"},
		{"bad buffer", func(c *Config) { c.Buffer = "x11" }, "buffer:"},
		{"short watch interval", func(c *Config) { c.WatchInterval = "1ms" }, "watch_interval"},
		{"bad poll interval", func(c *Config) { c.PollInterval = "soon" }, "poll_interval"},
		{"short poll interval", func(c *Config) { c.PollInterval = "50ms" }, "poll_interval"},
		{"bad backend", func(c *Config) { c.StateBackend = "redis" }, "state_backend"},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }, "log_level"},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, "log_format"},
		{"zero retention", func(c *Config) { c.LogRetentionDays = 0 }, "log_retention_days"},
		{"short timeout", func(c *Config) { c.RequestTimeout = "10ms" }, "request_timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_AccumulatesErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Resource = ""
	cfg.LogLevel = "loud"
	cfg.StateBackend = "csv"

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resource")
	assert.Contains(t, err.Error(), "log_level")
	assert.Contains(t, err.Error(), "state_backend")
}

func TestValidateResolved(t *testing.T) {
	valid := func() *Resolved {
		return &Resolved{
			Buffer:          BufferSystem,
			PollInterval:    5 * time.Second,
			MaxPollInterval: 5 * time.Minute,
			StateDir:        "/var/lib/syncpaste",
		}
	}

	require.NoError(t, ValidateResolved(valid()))

	r := valid()
	r.MaxPollInterval = time.Second
	assert.ErrorContains(t, ValidateResolved(r), "max_poll_interval")

	r = valid()
	r.Buffer = BufferFile
	assert.ErrorContains(t, ValidateResolved(r), "buffer_file: required")

	r.BufferFile = "relative.txt"
	assert.ErrorContains(t, ValidateResolved(r), "must be absolute")

	r = valid()
	r.StateDir = ""
	assert.ErrorContains(t, ValidateResolved(r), "state_dir")

	r.StateDir = "state"
	assert.ErrorContains(t, ValidateResolved(r), "state_dir: must be absolute")
}
