package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBreaker(threshold int, cooldown time.Duration, clk *fakeClock) *Breaker {
	b := NewBreaker(BreakerConfig{Threshold: threshold, Cooldown: cooldown})
	b.now = clk.Now
	return b
}

func TestBreaker_TripsAfterThreshold(t *testing.T) {
	clk := newFakeClock(time.Unix(1000, 0))
	b := newTestBreaker(3, time.Minute, clk)

	require.True(t, b.Allow("k"))
	assert.False(t, b.OnFailure("k"))
	require.True(t, b.Allow("k"))
	assert.False(t, b.OnFailure("k"))
	require.True(t, b.Allow("k"))
	assert.True(t, b.OnFailure("k"), "third consecutive failure must trip")

	assert.Equal(t, StateOpen, b.State("k"))
	assert.False(t, b.Allow("k"), "open breaker must short-circuit before cooldown")
}

func TestBreaker_SuccessResetsCounter(t *testing.T) {
	clk := newFakeClock(time.Unix(1000, 0))
	b := newTestBreaker(3, time.Minute, clk)

	b.OnFailure("k")
	b.OnFailure("k")
	b.OnSuccess("k")
	b.OnFailure("k")
	b.OnFailure("k")
	assert.Equal(t, StateClosed, b.State("k"), "counter must reset on success")
	assert.True(t, b.OnFailure("k"))
}

func TestBreaker_HalfOpenRecovery(t *testing.T) {
	clk := newFakeClock(time.Unix(1000, 0))
	b := newTestBreaker(1, time.Minute, clk)

	b.OnFailure("k")
	require.Equal(t, StateOpen, b.State("k"))

	clk.Advance(59 * time.Second)
	assert.False(t, b.Allow("k"))

	clk.Advance(2 * time.Second)
	require.True(t, b.Allow("k"), "cooldown elapsed, one trial allowed")
	assert.Equal(t, StateHalfOpen, b.State("k"))

	b.OnSuccess("k")
	assert.Equal(t, StateClosed, b.State("k"))
	assert.True(t, b.Allow("k"))
}

func TestBreaker_HalfOpenFailureReopensAndRestartsCooldown(t *testing.T) {
	clk := newFakeClock(time.Unix(1000, 0))
	b := newTestBreaker(1, time.Minute, clk)

	b.OnFailure("k")
	clk.Advance(61 * time.Second)
	require.True(t, b.Allow("k"))

	b.OnFailure("k")
	require.Equal(t, StateOpen, b.State("k"))

	// Cooldown restarted from the half-open failure, not the first trip.
	clk.Advance(59 * time.Second)
	assert.False(t, b.Allow("k"))
	clk.Advance(2 * time.Second)
	assert.True(t, b.Allow("k"))
}

func TestBreaker_SingleHalfOpenTrial(t *testing.T) {
	clk := newFakeClock(time.Unix(1000, 0))
	b := newTestBreaker(1, time.Minute, clk)

	b.OnFailure("k")
	clk.Advance(61 * time.Second)

	require.True(t, b.Allow("k"))
	assert.False(t, b.Allow("k"), "only one trial in flight per target")

	b.CancelTrial("k")
	assert.True(t, b.Allow("k"), "a cancelled trial frees the slot")
}

func TestBreaker_KeysAreIsolated(t *testing.T) {
	clk := newFakeClock(time.Unix(1000, 0))
	b := newTestBreaker(1, time.Minute, clk)

	b.OnFailure("bad")
	assert.False(t, b.Allow("bad"))
	assert.True(t, b.Allow("good"))
}
