package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Validation range constants.
const (
	minPollInterval    = 100 * time.Millisecond
	minWatchInterval   = 100 * time.Millisecond
	minRequestTimeout  = 1 * time.Second
	minLogRetention    = 1
	minExpirySeconds   = 0
	maxResourceNameLen = 256
)

// Validate checks all configuration values and returns all errors found.
// It accumulates every error rather than stopping at the first, so users
// see a complete report and can fix all issues in one pass.
func Validate(cfg *Config) error {
	var errs []error

	errs = append(errs, validateRemote(&cfg.RemoteConfig)...)
	errs = append(errs, validateBuffer(&cfg.BufferConfig)...)
	errs = append(errs, validateSync(&cfg.SyncConfig)...)
	errs = append(errs, validateLogging(&cfg.LoggingConfig)...)
	errs = append(errs, validateNetwork(&cfg.NetworkConfig)...)

	return errors.Join(errs...)
}

// ValidateResolved checks cross-field constraints after the override chain
// has been applied and values parsed.
func ValidateResolved(r *Resolved) error {
	var errs []error

	if r.MaxPollInterval < r.PollInterval {
		errs = append(errs, fmt.Errorf("max_poll_interval: must be >= poll_interval (%s), got %s",
			r.PollInterval, r.MaxPollInterval))
	}

	if r.Buffer == BufferFile {
		switch {
		case r.BufferFile == "":
			errs = append(errs, errors.New("buffer_file: required when buffer = \"file\""))
		case !filepath.IsAbs(r.BufferFile):
			errs = append(errs, fmt.Errorf("buffer_file: must be absolute after expansion, got %q", r.BufferFile))
		}
	}

	if r.StateDir == "" {
		errs = append(errs, errors.New("state_dir: could not determine a data directory; set state_dir"))
	} else if !filepath.IsAbs(r.StateDir) {
		errs = append(errs, fmt.Errorf("state_dir: must be absolute after expansion, got %q", r.StateDir))
	}

	return errors.Join(errs...)
}

func validateRemote(r *RemoteConfig) []error {
	var errs []error

	errs = append(errs, validateServerURL(r.ServerURL)...)
	errs = append(errs, validateResource(r.Resource)...)

	if strings.TrimSpace(r.AuthHeader) == "" {
		errs = append(errs, errors.New("auth_header: must not be empty"))
	}

	if r.ExpirySeconds < minExpirySeconds {
		errs = append(errs, fmt.Errorf("expiry_seconds: must be >= %d, got %d", minExpirySeconds, r.ExpirySeconds))
	}

	if _, err := humanize.ParseBytes(r.MaxUploadSize); err != nil {
		errs = append(errs, fmt.Errorf("max_upload_size: invalid size %q: %w", r.MaxUploadSize, err))
	}

	return errs
}

func validateServerURL(raw string) []error {
	u, err := url.Parse(raw)
	if err != nil {
		return []error{fmt.Errorf("server_url: invalid URL %q: %w", raw, err)}
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return []error{fmt.Errorf("server_url: must be an absolute http or https URL, got %q", raw)}
	}

	if u.Host == "" {
		return []error{fmt.Errorf("server_url: missing host in %q", raw)}
	}

	return nil
}

func validateResource(name string) []error {
	switch {
	case strings.TrimSpace(name) == "":
		return []error{errors.New("resource: must not be empty")}
	case strings.Contains(name, "/"):
		return []error{fmt.Errorf("resource: must not contain \"/\", got %q", name)}
	case len(name) > maxResourceNameLen:
		return []error{fmt.Errorf("resource: must be at most %d bytes, got %d", maxResourceNameLen, len(name))}
	}

	return nil
}

var validBuffers = map[string]bool{
	BufferSystem: true,
	BufferFile:   true,
}

func validateBuffer(b *BufferConfig) []error {
	var errs []error

	if !validBuffers[b.Buffer] {
		errs = append(errs, fmt.Errorf("buffer: must be one of system, file; got %q", b.Buffer))
	}

	errs = append(errs, validateDurationMin("watch_interval", b.WatchInterval, minWatchInterval)...)

	return errs
}

var validStateBackends = map[string]bool{
	"json":   true,
	"sqlite": true,
}

func validateSync(s *SyncConfig) []error {
	var errs []error

	errs = append(errs, validateDurationMin("poll_interval", s.PollInterval, minPollInterval)...)
	errs = append(errs, validateDurationMin("max_poll_interval", s.MaxPollInterval, minPollInterval)...)

	if !validStateBackends[s.StateBackend] {
		errs = append(errs, fmt.Errorf("state_backend: must be one of json, sqlite; got %q", s.StateBackend))
	}

	return errs
}

// validateDuration checks that a duration string is valid and meets a minimum.
func validateDuration(field, value string, minimum time.Duration) error {
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("%s: invalid duration %q: %w", field, value, err)
	}

	if d < minimum {
		return fmt.Errorf("%s: must be >= %s, got %s", field, minimum, d)
	}

	return nil
}

func validateDurationMin(field, value string, minimum time.Duration) []error {
	if err := validateDuration(field, value, minimum); err != nil {
		return []error{err}
	}

	return nil
}

func validateLogging(l *LoggingConfig) []error {
	var errs []error

	errs = append(errs, validateLogLevel(l.LogLevel)...)
	errs = append(errs, validateLogFormat(l.LogFormat)...)

	if l.LogRetentionDays < minLogRetention {
		errs = append(errs, fmt.Errorf("log_retention_days: must be >= %d, got %d",
			minLogRetention, l.LogRetentionDays))
	}

	return errs
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

func validateLogLevel(level string) []error {
	if !validLogLevels[level] {
		return []error{fmt.Errorf("log_level: must be one of debug, info, warn, error; got %q", level)}
	}

	return nil
}

var validLogFormats = map[string]bool{
	"auto": true,
	"text": true,
	"json": true,
}

func validateLogFormat(format string) []error {
	if !validLogFormats[format] {
		return []error{fmt.Errorf("log_format: must be one of auto, text, json; got %q", format)}
	}

	return nil
}

func validateNetwork(n *NetworkConfig) []error {
	return validateDurationMin("request_timeout", n.RequestTimeout, minRequestTimeout)
}
