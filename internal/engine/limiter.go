package engine

import (
	"sync"
	"time"
)

// PlatformGeneric is the reserved bucket/breaker key for targets whose
// platform cannot be identified.
const PlatformGeneric = "generic"

type LimiterConfig struct {
	GlobalCapacity   float64
	GlobalRate       float64 // tokens per second
	PlatformCapacity float64
	PlatformRate     float64
}

type bucket struct {
	capacity float64
	tokens   float64
	rate     float64
	last     time.Time
}

func newBucket(capacity, rate float64, now time.Time) *bucket {
	return &bucket{capacity: capacity, tokens: capacity, rate: rate, last: now}
}

// refill recomputes tokens lazily from elapsed wall-clock time.
func (b *bucket) refill(now time.Time) {
	elapsed := now.Sub(b.last).Seconds()
	if elapsed <= 0 {
		return
	}
	b.tokens += elapsed * b.rate
	if b.tokens > b.capacity {
		b.tokens = b.capacity
	}
	b.last = now
}

// Limiter is a token-bucket admission controller with one global bucket and
// lazily created per-platform buckets. An admission must pass both; denial
// consumes nothing from either bucket.
type Limiter struct {
	mu        sync.Mutex
	cfg       LimiterConfig
	global    *bucket
	platforms map[string]*bucket
	now       func() time.Time
}

func NewLimiter(cfg LimiterConfig) *Limiter {
	l := &Limiter{
		cfg:       cfg,
		platforms: make(map[string]*bucket),
		now:       time.Now,
	}
	l.global = newBucket(cfg.GlobalCapacity, cfg.GlobalRate, l.now())
	return l
}

// TryAcquire debits one token from the global bucket and the platform
// bucket, all-or-nothing. An empty platform falls back to the generic bucket.
func (l *Limiter) TryAcquire(platform string) bool {
	if platform == "" {
		platform = PlatformGeneric
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	pb, ok := l.platforms[platform]
	if !ok {
		pb = newBucket(l.cfg.PlatformCapacity, l.cfg.PlatformRate, now)
		l.platforms[platform] = pb
	}

	l.global.refill(now)
	pb.refill(now)

	if l.global.tokens < 1 || pb.tokens < 1 {
		return false
	}
	l.global.tokens--
	pb.tokens--
	return true
}
