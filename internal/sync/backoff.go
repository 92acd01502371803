package sync

import (
	stdsync "sync"
	"time"
)

// Poll interval defaults.
const (
	DefaultBaseDelay = 5 * time.Second
	DefaultMaxDelay  = 5 * time.Minute
	backoffFactor    = 2
)

// PollPolicy holds the adaptive tick delay. Remote failures double the
// delay up to the maximum; a success returns it to the base. Thread-safe.
type PollPolicy struct {
	mu       stdsync.Mutex
	base     time.Duration
	max      time.Duration
	current  time.Duration
	failures int
}

// NewPollPolicy creates a policy. Non-positive values fall back to the
// defaults and a maximum below the base is raised to the base.
func NewPollPolicy(base, maxDelay time.Duration) *PollPolicy {
	if base <= 0 {
		base = DefaultBaseDelay
	}

	if maxDelay <= 0 {
		maxDelay = DefaultMaxDelay
	}

	if maxDelay < base {
		maxDelay = base
	}

	return &PollPolicy{base: base, max: maxDelay, current: base}
}

// Current returns the delay until the next tick.
func (p *PollPolicy) Current() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.current
}

// Base returns the delay used after a success.
func (p *PollPolicy) Base() time.Duration {
	return p.base
}

// Max returns the backoff ceiling.
func (p *PollPolicy) Max() time.Duration {
	return p.max
}

// Failures returns the number of consecutive failures since the last reset.
func (p *PollPolicy) Failures() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.failures
}

// Backoff records a failure and returns min(current*2, max).
func (p *PollPolicy) Backoff() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.failures++

	// Compare before multiplying so huge maxima cannot overflow.
	if p.current > p.max/backoffFactor {
		p.current = p.max
	} else {
		p.current *= backoffFactor
	}

	return p.current
}

// Reset records a success and returns the base delay.
func (p *PollPolicy) Reset() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.failures = 0
	p.current = p.base

	return p.current
}
