package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/dustin/go-humanize"
)

// Load reads and parses a TOML config file, validates it, and returns the
// resulting Config. Unknown keys are fatal, with "did you mean?" suggestions.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := checkUnknownKeys(&md); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault reads a TOML config file if it exists, otherwise returns
// a Config populated with all default values.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}

	return Load(path)
}

// ResolveConfigPath picks the config file path: CLI > env > default.
func ResolveConfigPath(env EnvOverrides, cli CLIOverrides) string {
	if cli.ConfigPath != "" {
		return cli.ConfigPath
	}

	if env.ConfigPath != "" {
		return env.ConfigPath
	}

	return DefaultConfigPath()
}

// Resolve loads configuration and applies the four-layer override chain:
// defaults -> config file -> environment variables -> CLI flags.
// It returns a fully resolved and validated configuration.
func Resolve(env EnvOverrides, cli CLIOverrides) (*Resolved, error) {
	cfgPath := ResolveConfigPath(env, cli)

	cfg, err := LoadOrDefault(cfgPath)
	if err != nil {
		return nil, err
	}

	applyEnv(cfg, env)
	applyCLI(cfg, cli)

	// Overrides can introduce values the file never had.
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	resolved, err := buildResolved(cfg)
	if err != nil {
		return nil, err
	}

	resolved.ConfigPath = cfgPath

	if err := ValidateResolved(resolved); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return resolved, nil
}

func applyEnv(cfg *Config, env EnvOverrides) {
	if env.ServerURL != "" {
		cfg.ServerURL = env.ServerURL
	}

	if env.Resource != "" {
		cfg.Resource = env.Resource
	}

	if env.AuthToken != "" {
		cfg.AuthToken = env.AuthToken
	}

	if env.Password != "" {
		cfg.Password = env.Password
	}
}

func applyCLI(cfg *Config, cli CLIOverrides) {
	if cli.ServerURL != nil {
		cfg.ServerURL = *cli.ServerURL
	}

	if cli.Resource != nil {
		cfg.Resource = *cli.Resource
	}

	if cli.BufferFile != nil {
		cfg.Buffer = BufferFile
		cfg.BufferFile = *cli.BufferFile
	}
}

// buildResolved parses the string-typed fields of a validated Config.
func buildResolved(cfg *Config) (*Resolved, error) {
	var errs []error

	parse := func(field, value string) time.Duration {
		d, err := time.ParseDuration(value)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: invalid duration %q: %w", field, value, err))
		}

		return d
	}

	r := &Resolved{
		ServerURL:       cfg.ServerURL,
		Resource:        cfg.Resource,
		AuthHeader:      cfg.AuthHeader,
		AuthToken:       cfg.AuthToken,
		ExpirySeconds:   cfg.ExpirySeconds,
		Password:        cfg.Password,
		Buffer:          cfg.Buffer,
		BufferFile:      expandTilde(cfg.BufferFile),
		WatchInterval:   parse("watch_interval", cfg.WatchInterval),
		PollInterval:    parse("poll_interval", cfg.PollInterval),
		MaxPollInterval: parse("max_poll_interval", cfg.MaxPollInterval),
		StateBackend:    cfg.StateBackend,
		StateDir:        expandTilde(cfg.StateDir),
		RequestTimeout:  parse("request_timeout", cfg.RequestTimeout),
		UserAgent:       cfg.UserAgent,
		Logging:         cfg.LoggingConfig,
	}

	r.Logging.LogFile = expandTilde(r.Logging.LogFile)

	if r.StateDir == "" {
		r.StateDir = DefaultDataDir()
	}

	size, err := humanize.ParseBytes(cfg.MaxUploadSize)
	if err != nil {
		errs = append(errs, fmt.Errorf("max_upload_size: %w", err))
	}

	r.MaxUploadSize = int64(size)

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return r, nil
}
