package engine

import (
	"testing"
	"time"

	"github.com/NordCoder/Streamwatch/internal/domain/stream"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFakeClock(start time.Time) *fakeClock { return &fakeClock{t: start} }

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestCache_TTLExpiry(t *testing.T) {
	clk := newFakeClock(time.Unix(1000, 0))
	c := NewCache(5 * time.Second)
	c.now = clk.Now

	rec := stream.Status{Live: true, Name: "somechannel", CheckedAt: clk.Now()}
	c.Put("https://twitch.tv/somechannel", rec)

	got, ok := c.Get("https://twitch.tv/somechannel")
	require.True(t, ok)
	assert.Equal(t, rec, got)

	clk.Advance(4900 * time.Millisecond)
	got, ok = c.Get("https://twitch.tv/somechannel")
	require.True(t, ok, "entry must be fresh just before TTL")
	assert.Equal(t, rec, got)

	clk.Advance(200 * time.Millisecond)
	_, ok = c.Get("https://twitch.tv/somechannel")
	assert.False(t, ok, "entry must be a miss after TTL")
}

func TestCache_ExactExpiryIsMiss(t *testing.T) {
	clk := newFakeClock(time.Unix(1000, 0))
	c := NewCache(5 * time.Second)
	c.now = clk.Now

	c.Put("k", stream.Status{Live: true})
	clk.Advance(5 * time.Second)

	_, ok := c.Get("k")
	assert.False(t, ok, "entry is valid iff now < expiry")
}

func TestCache_PutResetsExpiry(t *testing.T) {
	clk := newFakeClock(time.Unix(1000, 0))
	c := NewCache(5 * time.Second)
	c.now = clk.Now

	c.Put("k", stream.Status{Live: false})
	clk.Advance(4 * time.Second)
	c.Put("k", stream.Status{Live: true})
	clk.Advance(4 * time.Second)

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.True(t, got.Live)
}

func TestCache_InvalidateAndClear(t *testing.T) {
	c := NewCache(time.Minute)
	c.Put("a", stream.Status{Live: true})
	c.Put("b", stream.Status{Live: true})

	c.Invalidate("a")
	_, ok := c.Get("a")
	assert.False(t, ok)
	_, ok = c.Get("b")
	assert.True(t, ok)

	c.Clear()
	_, ok = c.Get("b")
	assert.False(t, ok)
}

func TestCache_MissingKey(t *testing.T) {
	c := NewCache(time.Minute)
	_, ok := c.Get("never-put")
	assert.False(t, ok)
}
