package config

import (
	"time"

	"github.com/NordCoder/Streamwatch/internal/engine"
	"github.com/NordCoder/Streamwatch/internal/obs"
)

type Engine struct {
	CacheTTL         time.Duration `mapstructure:"cache_ttl"`
	ProbeTimeout     time.Duration `mapstructure:"probe_timeout"`
	Workers          int           `mapstructure:"workers"`
	GlobalCapacity   float64       `mapstructure:"global_capacity"`
	GlobalRate       float64       `mapstructure:"global_rate"`
	PlatformCapacity float64       `mapstructure:"platform_capacity"`
	PlatformRate     float64       `mapstructure:"platform_rate"`
	BreakerThreshold int           `mapstructure:"breaker_threshold"`
	BreakerCooldown  time.Duration `mapstructure:"breaker_cooldown"`
	BreakerScope     string        `mapstructure:"breaker_scope"`
}

func (e *Engine) AsEngineConfig() engine.Config {
	return engine.Config{
		CacheTTL:     e.CacheTTL,
		ProbeTimeout: e.ProbeTimeout,
		Workers:      e.Workers,
		Limiter: engine.LimiterConfig{
			GlobalCapacity:   e.GlobalCapacity,
			GlobalRate:       e.GlobalRate,
			PlatformCapacity: e.PlatformCapacity,
			PlatformRate:     e.PlatformRate,
		},
		Breaker: engine.BreakerConfig{
			Threshold: e.BreakerThreshold,
			Cooldown:  e.BreakerCooldown,
		},
		Granularity: engine.Granularity(e.BreakerScope),
	}
}

type Streamlink struct {
	Path             string `mapstructure:"path"`
	Quality          string `mapstructure:"quality"`
	TwitchDisableAds bool   `mapstructure:"twitch_disable_ads"`
}

type Recording struct {
	Enabled          bool   `mapstructure:"enabled"`
	OutputDir        string `mapstructure:"output_dir"`
	FilenameTemplate string `mapstructure:"filename_template"`
	Format           string `mapstructure:"format"`
	Quality          string `mapstructure:"quality"`
}

type Watcher struct {
	Interval time.Duration `mapstructure:"interval"`
}

type Storage struct {
	Path string `mapstructure:"path"`
}

type Server struct {
	MetricsAddr string `mapstructure:"metrics_addr"`
}

type OTEL struct {
	Enable       bool    `mapstructure:"enable"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	ServiceName  string  `mapstructure:"service_name"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
}

func (oc *OTEL) AsOTELConfig() *obs.OTELConfig {
	return &obs.OTELConfig{
		Enable:      oc.Enable,
		Endpoint:    oc.OTLPEndpoint,
		ServiceName: oc.ServiceName,
		SampleRatio: oc.SampleRatio,
	}
}

type Log struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

func (lc *Log) AsLoggerConfig() *obs.LogConfig {
	return &obs.LogConfig{
		Level:  lc.Level,
		Pretty: lc.Pretty,
		App:    "streamwatch",
	}
}

type Config struct {
	Engine     Engine     `mapstructure:"engine"`
	Streamlink Streamlink `mapstructure:"streamlink"`
	Recording  Recording  `mapstructure:"recording"`
	Watcher    Watcher    `mapstructure:"watcher"`
	Storage    Storage    `mapstructure:"storage"`
	Server     Server     `mapstructure:"server"`
	OTEL       OTEL       `mapstructure:"otel"`
	Log        Log        `mapstructure:"log"`
}
