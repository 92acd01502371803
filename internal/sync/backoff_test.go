package sync

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPollPolicy_GrowthAndCap(t *testing.T) {
	t.Parallel()

	base := 5 * time.Second
	maxDelay := 300 * time.Second
	p := NewPollPolicy(base, maxDelay)

	for k := 1; k <= 12; k++ {
		want := min(base*time.Duration(1<<k), maxDelay)
		assert.Equal(t, want, p.Backoff(), "after %d failures", k)
		assert.Equal(t, k, p.Failures())
	}

	assert.Equal(t, base, p.Reset())
	assert.Equal(t, base, p.Current())
	assert.Zero(t, p.Failures())
}

func TestPollPolicy_Defaults(t *testing.T) {
	t.Parallel()

	p := NewPollPolicy(0, 0)
	assert.Equal(t, DefaultBaseDelay, p.Base())
	assert.Equal(t, DefaultMaxDelay, p.Max())

	p = NewPollPolicy(time.Minute, time.Second)
	assert.Equal(t, time.Minute, p.Max(), "max is raised to base")
	assert.Equal(t, time.Minute, p.Backoff())
}

func TestPollPolicy_NoOverflow(t *testing.T) {
	t.Parallel()

	p := NewPollPolicy(time.Hour, time.Duration(math.MaxInt64))

	for range 100 {
		assert.Positive(t, p.Backoff())
	}

	assert.Equal(t, time.Duration(math.MaxInt64), p.Current())
}
