package watcher

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Collectors are package-level so constructing several runners in one
// process never double-registers.
var (
	mRefreshes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "streamwatch_refreshes_total", Help: "Refresh passes over the stream list",
	})
	mRefreshErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "streamwatch_refresh_errors_total", Help: "Refresh passes that errored",
	})
	gLiveStreams = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "streamwatch_live_streams", Help: "Streams live as of the last refresh",
	})
	mRefreshDur = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "streamwatch_refresh_duration_seconds",
		Help:    "Refresh pass duration",
		Buckets: prometheus.DefBuckets,
	})
)

// Runner drives periodic refreshes of the tracked stream list.
type Runner struct {
	Log      *zap.Logger
	UC       *Usecase
	Interval time.Duration
}

func NewRunner(log *zap.Logger, uc *Usecase, interval time.Duration) *Runner {
	return &Runner{Log: log, UC: uc, Interval: interval}
}

func (r *Runner) tick(ctx context.Context, force bool) {
	start := time.Now()
	mRefreshes.Inc()

	sum, err := r.UC.Refresh(ctx, force)
	if err != nil {
		mRefreshErrors.Inc()
		r.Log.Warn("refresh error", zap.Error(err))
	} else {
		gLiveStreams.Set(float64(sum.Live))
		r.Log.Debug("refreshed",
			zap.Int("total", sum.Total),
			zap.Int("live", sum.Live),
			zap.Int("failed", sum.Failed),
			zap.Int("newly_live", len(sum.NewlyLive)),
			zap.Int("gone_offline", len(sum.GoneOffline)),
		)
	}
	mRefreshDur.Observe(time.Since(start).Seconds())
}

func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	r.tick(ctx, false)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.tick(ctx, false)
		}
	}
}
