package watcher

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/NordCoder/Streamwatch/internal/domain/stream"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRunner_MultipleInstancesShareCollectors(t *testing.T) {
	uc := NewUsecase(zap.NewNop(), newFakeRepo(), &fakeChecker{})
	assert.NotPanics(t, func() {
		_ = NewRunner(zap.NewNop(), uc, time.Minute)
		_ = NewRunner(zap.NewNop(), uc, time.Minute)
	})
}

func TestRunner_TicksUntilCancelled(t *testing.T) {
	repo := newFakeRepo(&stream.Target{URL: "https://twitch.tv/x", Platform: "twitch"})

	var mu sync.Mutex
	calls := 0
	checker := &checkerFunc{fn: func([]stream.Target) {
		mu.Lock()
		calls++
		mu.Unlock()
	}}

	uc := NewUsecase(zap.NewNop(), repo, checker)
	r := NewRunner(zap.NewNop(), uc, 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	// Initial tick plus at least one ticker tick.
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls >= 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("runner did not stop after cancellation")
	}
}
