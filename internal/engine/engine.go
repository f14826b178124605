package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/NordCoder/Streamwatch/internal/domain/stream"
	"github.com/NordCoder/Streamwatch/internal/obs"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// Prober is the external probing capability. Implementations must honor the
// timeout and never block past it.
type Prober interface {
	Probe(ctx context.Context, url string, timeout time.Duration) Result[stream.Status]
}

// Granularity selects the breaker key: per-URL (default, one misbehaving
// stream does not penalize siblings) or per-platform.
type Granularity string

const (
	GranularityURL      Granularity = "url"
	GranularityPlatform Granularity = "platform"
)

type Config struct {
	CacheTTL     time.Duration
	ProbeTimeout time.Duration
	Workers      int
	Limiter      LimiterConfig
	Breaker      BreakerConfig
	Granularity  Granularity
}

var (
	mProbes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "streamwatch_probes_total", Help: "Probes dispatched to the capability",
	})
	mProbeFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "streamwatch_probe_failures_total", Help: "Probe failures by kind",
	}, []string{"kind"})
	mCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "streamwatch_cache_hits_total", Help: "Batch targets resolved from cache",
	})
	mCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "streamwatch_cache_misses_total", Help: "Batch targets not resolved from cache",
	})
	mRateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "streamwatch_rate_limited_total", Help: "Admissions denied by the token buckets",
	})
	mShortCircuits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "streamwatch_breaker_short_circuits_total", Help: "Probes rejected by an open breaker",
	})
	mBreakerTrips = promauto.NewCounter(prometheus.CounterOpts{
		Name: "streamwatch_breaker_trips_total", Help: "Breaker transitions to open",
	})
	mProbeLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "streamwatch_probe_latency_seconds",
		Help:    "Probe latency",
		Buckets: prometheus.DefBuckets,
	})
)

// Engine orchestrates concurrent liveness checks across a batch of targets,
// consulting the cache, rate limiter, and circuit breaker before invoking
// the probing capability. Each instance owns its state; two engines share
// nothing unless wired together explicitly.
type Engine struct {
	log         *zap.Logger
	prober      Prober
	cache       *Cache
	limiter     *Limiter
	breaker     *Breaker
	sem         *semaphore.Weighted
	timeout     time.Duration
	granularity Granularity
}

func New(log *zap.Logger, prober Prober, cfg Config) *Engine {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 4
	}
	gran := cfg.Granularity
	if gran != GranularityPlatform {
		gran = GranularityURL
	}
	timeout := cfg.ProbeTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Engine{
		log:         log,
		prober:      prober,
		cache:       NewCache(cfg.CacheTTL),
		limiter:     NewLimiter(cfg.Limiter),
		breaker:     NewBreaker(cfg.Breaker),
		sem:         semaphore.NewWeighted(int64(workers)),
		timeout:     timeout,
		granularity: gran,
	}
}

func (e *Engine) breakerKey(t stream.Target) string {
	if e.granularity == GranularityPlatform {
		return platformOf(t)
	}
	return t.URL
}

func platformOf(t stream.Target) string {
	if t.Platform == "" {
		return PlatformGeneric
	}
	return t.Platform
}

// CheckBatch resolves one Result per target, in submission order. Cache hits
// return immediately; open breakers and denied admissions short-circuit with
// CircuitOpen/RateLimited without touching the capability; the rest are
// probed concurrently under the worker bound.
func (e *Engine) CheckBatch(ctx context.Context, targets []stream.Target, forceRefresh bool) []Result[stream.Status] {
	out := make([]Result[stream.Status], len(targets))
	if len(targets) == 0 {
		return out
	}

	tr := otel.Tracer("engine")
	bctx, span := tr.Start(ctx, "engine.check_batch")
	span.SetAttributes(
		attribute.Int("batch.size", len(targets)),
		attribute.Bool("batch.force_refresh", forceRefresh),
	)
	defer span.End()

	var pending []int
	hits := 0
	for i, t := range targets {
		if !forceRefresh {
			if st, ok := e.cache.Get(t.URL); ok {
				out[i] = Ok(st)
				hits++
				continue
			}
		}
		mCacheMisses.Inc()

		bkey := e.breakerKey(t)
		if !e.breaker.Allow(bkey) {
			mShortCircuits.Inc()
			out[i] = FailKind[stream.Status](KindCircuitOpen, "circuit open for "+bkey)
			continue
		}
		if !e.limiter.TryAcquire(platformOf(t)) {
			e.breaker.CancelTrial(bkey)
			mRateLimited.Inc()
			out[i] = FailKind[stream.Status](KindRateLimited, "rate limit exceeded for "+platformOf(t))
			continue
		}
		pending = append(pending, i)
	}
	if hits > 0 {
		mCacheHits.Add(float64(hits))
	}

	var wg sync.WaitGroup
	for _, i := range pending {
		t := targets[i]
		if err := e.sem.Acquire(bctx, 1); err != nil {
			// Batch cancelled before dispatch: stop submitting new probes.
			e.breaker.CancelTrial(e.breakerKey(t))
			out[i] = FailKind[stream.Status](KindUnclassified, "batch cancelled")
			continue
		}
		wg.Add(1)
		go func(i int, t stream.Target) {
			defer wg.Done()
			defer e.sem.Release(1)
			out[i] = e.probeOne(bctx, t)
		}(i, t)
	}
	wg.Wait()

	span.SetAttributes(
		attribute.Int("batch.cache_hits", hits),
		attribute.Int("batch.probed", len(pending)),
	)
	return out
}

func (e *Engine) probeOne(ctx context.Context, t stream.Target) Result[stream.Status] {
	tr := otel.Tracer("engine")
	_, span := tr.Start(ctx, "engine.probe",
		trace.WithAttributes(
			attribute.String("target.url", t.URL),
			attribute.String("target.platform", platformOf(t)),
		),
	)
	defer span.End()

	pctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	mProbes.Inc()
	res := e.prober.Probe(pctx, t.URL, e.timeout)
	mProbeLatency.Observe(time.Since(start).Seconds())

	// A capability that overran its deadline reports as a timeout.
	if !res.IsOk() && errors.Is(pctx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		res = FailKind[stream.Status](KindTimeout, "probe exceeded "+e.timeout.String())
	}

	if ctx.Err() != nil {
		// Late result after batch cancellation: discard rather than apply,
		// so a stale probe cannot pollute cache or breaker state.
		e.breaker.CancelTrial(e.breakerKey(t))
		return FailKind[stream.Status](KindUnclassified, "batch cancelled")
	}

	bkey := e.breakerKey(t)
	log := obs.WithTrace(ctx, e.log)
	if err := res.Err(); err != nil {
		mProbeFailures.WithLabelValues(err.Kind.String()).Inc()
		if e.breaker.OnFailure(bkey) {
			mBreakerTrips.Inc()
			log.Warn("breaker opened",
				zap.String("key", bkey),
				zap.String("kind", err.Kind.String()),
			)
		}
		span.RecordError(err)
		log.Debug("probe failed",
			zap.String("url", t.URL),
			zap.String("kind", err.Kind.String()),
			zap.String("message", err.Message),
		)
		return res
	}

	st := res.Value()
	e.cache.Put(t.URL, st)
	e.breaker.OnSuccess(bkey)
	span.SetAttributes(attribute.Bool("probe.live", st.Live))
	return res
}

// Invalidate drops the cached status for one URL, forcing the next check to
// probe again.
func (e *Engine) Invalidate(url string) { e.cache.Invalidate(url) }

// ClearCache drops every cached status.
func (e *Engine) ClearCache() { e.cache.Clear() }

// BreakerState exposes the breaker mode for a key, for status rendering.
func (e *Engine) BreakerState(key string) BreakerState { return e.breaker.State(key) }
