package config

// Default values for configuration options. These are "layer 0" of the
// override chain and let the program start without a config file against a
// local server.
const (
	defaultServerURL        = "http://localhost:8000"
	defaultResource         = "clipboard"
	defaultAuthHeader       = "Cookie"
	defaultExpirySeconds    = 3600
	defaultMaxUploadSize    = "10MiB"
	defaultBuffer           = BufferSystem
	defaultWatchInterval    = "1s"
	defaultPollInterval     = "5s"
	defaultMaxPollInterval  = "5m"
	defaultStateBackend     = "json"
	defaultLogLevel         = "info"
	defaultLogFormat        = "auto"
	defaultLogRetentionDays = 30
	defaultRequestTimeout   = "30s"
	defaultUserAgent        = "syncpaste"
)

// DefaultConfig returns a Config populated with all default values.
// This is used both as the starting point for TOML decoding (so unset
// fields retain defaults) and as the fallback when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		RemoteConfig: RemoteConfig{
			ServerURL:     defaultServerURL,
			Resource:      defaultResource,
			AuthHeader:    defaultAuthHeader,
			ExpirySeconds: defaultExpirySeconds,
			MaxUploadSize: defaultMaxUploadSize,
		},
		BufferConfig: BufferConfig{
			Buffer:        defaultBuffer,
			WatchInterval: defaultWatchInterval,
		},
		SyncConfig: SyncConfig{
			PollInterval:    defaultPollInterval,
			MaxPollInterval: defaultMaxPollInterval,
			StateBackend:    defaultStateBackend,
		},
		LoggingConfig: LoggingConfig{
			LogLevel:         defaultLogLevel,
			LogFormat:        defaultLogFormat,
			LogRetentionDays: defaultLogRetentionDays,
		},
		NetworkConfig: NetworkConfig{
			RequestTimeout: defaultRequestTimeout,
			UserAgent:      defaultUserAgent,
		},
	}
}
