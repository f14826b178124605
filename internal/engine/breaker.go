package engine

import (
	"sync"
	"time"
)

// BreakerState is the mode of one breaker entry.
type BreakerState int

const (
	StateClosed BreakerState = iota
	StateOpen
	StateHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}

type BreakerConfig struct {
	Threshold int           // consecutive failures before tripping
	Cooldown  time.Duration // open duration before a half-open trial
}

type breakerEntry struct {
	state          BreakerState
	failures       int
	lastTransition time.Time
	trialInFlight  bool
}

// Breaker isolates persistently failing targets. Entries are created lazily
// on first use and live for the process lifetime; the population is bounded
// by the user's stream list so nothing is ever evicted.
//
// Transitions are lazy: Open moves to HalfOpen on the first admission
// attempt after the cooldown, not on a timer.
type Breaker struct {
	mu      sync.Mutex
	cfg     BreakerConfig
	entries map[string]*breakerEntry
	now     func() time.Time
}

func NewBreaker(cfg BreakerConfig) *Breaker {
	return &Breaker{
		cfg:     cfg,
		entries: make(map[string]*breakerEntry),
		now:     time.Now,
	}
}

func (b *Breaker) entry(key string) *breakerEntry {
	e, ok := b.entries[key]
	if !ok {
		e = &breakerEntry{state: StateClosed}
		b.entries[key] = e
	}
	return e
}

// Allow reports whether a probe against key may proceed. While HalfOpen,
// exactly one trial is admitted; concurrent attempts are rejected until the
// trial settles via OnSuccess, OnFailure, or CancelTrial.
func (b *Breaker) Allow(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	e := b.entry(key)
	switch e.state {
	case StateClosed:
		return true
	case StateOpen:
		if b.now().Sub(e.lastTransition) < b.cfg.Cooldown {
			return false
		}
		e.state = StateHalfOpen
		e.lastTransition = b.now()
		e.trialInFlight = true
		return true
	default: // StateHalfOpen
		if e.trialInFlight {
			return false
		}
		e.trialInFlight = true
		return true
	}
}

// CancelTrial releases a half-open trial slot that was admitted but never
// probed (e.g. the rate limiter denied it afterwards).
func (b *Breaker) CancelTrial(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if e, ok := b.entries[key]; ok && e.state == StateHalfOpen {
		e.trialInFlight = false
	}
}

// OnSuccess records a successful probe: the entry closes and the failure
// counter resets.
func (b *Breaker) OnSuccess(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e := b.entry(key)
	if e.state != StateClosed {
		e.lastTransition = b.now()
	}
	e.state = StateClosed
	e.failures = 0
	e.trialInFlight = false
}

// OnFailure records a failed probe. A half-open failure reopens and restarts
// the cooldown clock; in Closed, reaching the threshold trips the breaker.
// Returns true when the entry transitioned to Open.
func (b *Breaker) OnFailure(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	e := b.entry(key)
	switch e.state {
	case StateHalfOpen:
		e.state = StateOpen
		e.lastTransition = b.now()
		e.trialInFlight = false
		return true
	case StateClosed:
		e.failures++
		if e.failures >= b.cfg.Threshold {
			e.state = StateOpen
			e.lastTransition = b.now()
			return true
		}
	}
	return false
}

// State returns the current mode for key without side effects.
func (b *Breaker) State(key string) BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()

	if e, ok := b.entries[key]; ok {
		return e.state
	}
	return StateClosed
}
