package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(cfg LimiterConfig, clk *fakeClock) *Limiter {
	l := NewLimiter(cfg)
	l.now = clk.Now
	l.global = newBucket(cfg.GlobalCapacity, cfg.GlobalRate, clk.Now())
	return l
}

func TestLimiter_ExhaustionAndRefill(t *testing.T) {
	clk := newFakeClock(time.Unix(1000, 0))
	l := newTestLimiter(LimiterConfig{
		GlobalCapacity: 2, GlobalRate: 1,
		PlatformCapacity: 10, PlatformRate: 10,
	}, clk)

	require.True(t, l.TryAcquire("twitch"))
	require.True(t, l.TryAcquire("twitch"))
	assert.False(t, l.TryAcquire("twitch"), "third acquisition must fail at capacity 2")

	clk.Advance(time.Second)
	assert.True(t, l.TryAcquire("twitch"), "one token refilled after 1s at rate 1/s")
	assert.False(t, l.TryAcquire("twitch"))
}

func TestLimiter_TokensNeverExceedCapacity(t *testing.T) {
	clk := newFakeClock(time.Unix(1000, 0))
	l := newTestLimiter(LimiterConfig{
		GlobalCapacity: 2, GlobalRate: 1,
		PlatformCapacity: 2, PlatformRate: 1,
	}, clk)

	clk.Advance(time.Hour)
	require.True(t, l.TryAcquire("twitch"))
	require.True(t, l.TryAcquire("twitch"))
	assert.False(t, l.TryAcquire("twitch"), "refill must cap at capacity")
}

func TestLimiter_AllOrNothingAdmission(t *testing.T) {
	clk := newFakeClock(time.Unix(1000, 0))
	l := newTestLimiter(LimiterConfig{
		GlobalCapacity: 5, GlobalRate: 0,
		PlatformCapacity: 1, PlatformRate: 0,
	}, clk)

	require.True(t, l.TryAcquire("kick"))
	assert.InDelta(t, 4, l.global.tokens, 1e-9)

	// Platform bucket is empty; denial must not debit the global bucket.
	assert.False(t, l.TryAcquire("kick"))
	assert.InDelta(t, 4, l.global.tokens, 1e-9)
}

func TestLimiter_PlatformBucketsAreIndependent(t *testing.T) {
	clk := newFakeClock(time.Unix(1000, 0))
	l := newTestLimiter(LimiterConfig{
		GlobalCapacity: 10, GlobalRate: 0,
		PlatformCapacity: 1, PlatformRate: 0,
	}, clk)

	require.True(t, l.TryAcquire("twitch"))
	assert.False(t, l.TryAcquire("twitch"))
	assert.True(t, l.TryAcquire("youtube"), "a drained platform must not affect siblings")
}

func TestLimiter_EmptyPlatformUsesGenericBucket(t *testing.T) {
	clk := newFakeClock(time.Unix(1000, 0))
	l := newTestLimiter(LimiterConfig{
		GlobalCapacity: 10, GlobalRate: 0,
		PlatformCapacity: 1, PlatformRate: 0,
	}, clk)

	require.True(t, l.TryAcquire(""))
	assert.False(t, l.TryAcquire(PlatformGeneric), "empty platform shares the generic bucket")
}
