package config

import (
	"strings"

	"github.com/spf13/viper"
)

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		_ = v.ReadInConfig()
	}

	v.SetDefault("engine.cache_ttl", "60s")
	v.SetDefault("engine.probe_timeout", "10s")
	v.SetDefault("engine.workers", 4)
	v.SetDefault("engine.global_capacity", 8)
	v.SetDefault("engine.global_rate", 1.0)
	v.SetDefault("engine.platform_capacity", 3)
	v.SetDefault("engine.platform_rate", 0.5)
	v.SetDefault("engine.breaker_threshold", 3)
	v.SetDefault("engine.breaker_cooldown", "60s")
	v.SetDefault("engine.breaker_scope", "url")

	v.SetDefault("streamlink.path", "streamlink")
	v.SetDefault("streamlink.quality", "best")
	v.SetDefault("streamlink.twitch_disable_ads", true)

	v.SetDefault("recording.enabled", true)
	v.SetDefault("recording.output_dir", "")
	v.SetDefault("recording.filename_template", "")
	v.SetDefault("recording.format", "mp4")
	v.SetDefault("recording.quality", "best")

	v.SetDefault("watcher.interval", "2m")

	v.SetDefault("storage.path", "")

	v.SetDefault("server.metrics_addr", ":8090")

	v.SetDefault("otel.enable", false)
	v.SetDefault("otel.service_name", "streamwatch")
	v.SetDefault("otel.sample_ratio", 1.0)
	v.SetDefault("otel.otlp_endpoint", "localhost:4317")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
