package sync

import "strings"

// Mode is the synchronization direction of an engine.
type Mode string

// Supported modes. Any other value is an unknown mode: the engine neither
// pushes nor pulls but keeps ticking.
const (
	ModePush Mode = "send"
	ModePull Mode = "receive"
)

// ParseMode maps a user-supplied name to a Mode, case-insensitively.
// Unrecognized names are preserved so they can be reported.
func ParseMode(s string) Mode {
	return Mode(strings.ToLower(strings.TrimSpace(s)))
}

// Valid reports whether m is ModePush or ModePull.
func (m Mode) Valid() bool {
	return m == ModePush || m == ModePull
}

func (m Mode) String() string {
	if m == "" {
		return "unknown"
	}

	return string(m)
}
