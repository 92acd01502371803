// Package config implements TOML configuration loading, validation, and
// platform-specific path resolution for syncpaste. It supports a four-layer
// override chain (defaults -> config file -> environment -> CLI flags). All
// keys are flat: the embedded sections below only group related fields.
package config

import "time"

// Config is the top-level configuration structure parsed from a TOML file.
type Config struct {
	RemoteConfig
	BufferConfig
	SyncConfig
	LoggingConfig
	NetworkConfig
}

// RemoteConfig identifies the shared buffer on the server and how to
// authenticate against it.
type RemoteConfig struct {
	ServerURL     string `toml:"server_url"`
	Resource      string `toml:"resource"`
	AuthHeader    string `toml:"auth_header"`
	AuthToken     string `toml:"auth_token"`
	ExpirySeconds int    `toml:"expiry_seconds"`
	Password      string `toml:"password"`
	MaxUploadSize string `toml:"max_upload_size"`
}

// BufferConfig selects the local buffer: the system clipboard or a file.
type BufferConfig struct {
	Buffer        string `toml:"buffer"`
	BufferFile    string `toml:"buffer_file"`
	WatchInterval string `toml:"watch_interval"`
}

// SyncConfig controls tick timing and where sync state is kept.
type SyncConfig struct {
	PollInterval    string `toml:"poll_interval"`
	MaxPollInterval string `toml:"max_poll_interval"`
	StateBackend    string `toml:"state_backend"`
	StateDir        string `toml:"state_dir"`
}

// LoggingConfig controls log output behavior: level, format, and rotation.
type LoggingConfig struct {
	LogLevel         string `toml:"log_level"`
	LogFile          string `toml:"log_file"`
	LogFormat        string `toml:"log_format"`
	LogRetentionDays int    `toml:"log_retention_days"`
}

// NetworkConfig controls HTTP client behavior.
type NetworkConfig struct {
	RequestTimeout string `toml:"request_timeout"`
	UserAgent      string `toml:"user_agent"`
}

// CLIOverrides holds values from CLI flags that override config file and
// environment settings. Pointer fields distinguish "not specified" (nil)
// from "explicitly set to the zero value".
type CLIOverrides struct {
	ConfigPath string  // --config flag (empty = use default)
	ServerURL  *string // --server flag
	Resource   *string // --resource flag
	BufferFile *string // --buffer-file flag; implies buffer = "file"
}

// Buffer kinds.
const (
	BufferSystem = "system"
	BufferFile   = "file"
)

// Resolved is the final configuration after all override layers, with
// durations and sizes parsed. This is the struct the rest of the program
// consumes.
type Resolved struct {
	ConfigPath string

	ServerURL     string
	Resource      string
	AuthHeader    string
	AuthToken     string
	ExpirySeconds int
	Password      string
	MaxUploadSize int64

	Buffer        string
	BufferFile    string
	WatchInterval time.Duration

	PollInterval    time.Duration
	MaxPollInterval time.Duration
	StateBackend    string
	StateDir        string

	RequestTimeout time.Duration
	UserAgent      string

	Logging LoggingConfig
}
