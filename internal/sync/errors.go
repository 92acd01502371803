package sync

import "errors"

// Tick error classes. None of them escape a tick: they are logged, carried
// in the Status, and either folded into backoff (ErrTransfer) or ignored for
// the tick (ErrLocalIO, ErrStorage).
var (
	ErrTransfer = errors.New("sync: remote transfer failed")
	ErrLocalIO  = errors.New("sync: local buffer unavailable")
	ErrStorage  = errors.New("sync: state persistence failed")
)
