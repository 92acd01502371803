package sync

import (
	"fmt"
	"strings"
	"time"
)

// Phase is the engine's coarse state.
type Phase int32

// Engine phases.
const (
	PhaseIdle Phase = iota
	PhaseSyncing
	PhaseBackoffWait
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSyncing:
		return "syncing"
	case PhaseBackoffWait:
		return "backoff"
	default:
		return fmt.Sprintf("phase(%d)", int32(p))
	}
}

// Status summarizes one tick.
type Status struct {
	Time      time.Time
	Mode      Mode
	Phase     Phase
	Attempted bool   // a remote call was made
	Changed   bool   // content moved: pushed to or applied from the remote
	Succeeded bool   // the tick's transfer decision completed without a remote error
	Message   string // server acknowledgement (push only)
	Err       error
	Failures  int // consecutive remote failures
	NextDelay time.Duration

	canceled bool
}

// String renders the status as the multi-line text shown to the user.
func (s Status) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Mode: %s\n", s.Mode)
	fmt.Fprintf(&b, "Last tick: %s\n", s.Time.Format(time.TimeOnly))
	fmt.Fprintf(&b, "Result: %s\n", s.result())

	if s.Message != "" {
		fmt.Fprintf(&b, "Server: %s\n", s.Message)
	}

	if s.Err != nil {
		fmt.Fprintf(&b, "Error: %s\n", s.Err)
	}

	if s.Failures > 0 {
		fmt.Fprintf(&b, "Consecutive failures: %d\n", s.Failures)
	}

	fmt.Fprintf(&b, "Next sync in: %s", s.NextDelay)

	return b.String()
}

func (s Status) result() string {
	switch {
	case !s.Mode.Valid():
		return "unknown mode, nothing to do"
	case s.Changed && s.Mode == ModePush:
		return "sent"
	case s.Changed:
		return "received"
	case s.Succeeded && s.Attempted:
		return "up to date"
	case s.Succeeded:
		return "no change"
	case s.Attempted:
		return "failed"
	case s.Err != nil:
		return "skipped"
	default:
		return "idle"
	}
}
