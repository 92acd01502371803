package config

import "os"

// Environment variable names for overrides.
const (
	EnvConfig    = "SYNCPASTE_CONFIG"
	EnvServerURL = "SYNCPASTE_SERVER_URL"
	EnvResource  = "SYNCPASTE_RESOURCE"
	EnvAuthToken = "SYNCPASTE_AUTH_TOKEN"
	EnvPassword  = "SYNCPASTE_PASSWORD"
)

// EnvOverrides holds values derived from environment variables. Empty means
// not set.
type EnvOverrides struct {
	ConfigPath string
	ServerURL  string
	Resource   string
	AuthToken  string // keeps the secret out of the config file
	Password   string
}

// ReadEnvOverrides reads environment variables and returns any overrides found.
func ReadEnvOverrides() EnvOverrides {
	return EnvOverrides{
		ConfigPath: os.Getenv(EnvConfig),
		ServerURL:  os.Getenv(EnvServerURL),
		Resource:   os.Getenv(EnvResource),
		AuthToken:  os.Getenv(EnvAuthToken),
		Password:   os.Getenv(EnvPassword),
	}
}
