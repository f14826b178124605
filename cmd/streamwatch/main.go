package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/NordCoder/Streamwatch/internal/config"
	"github.com/NordCoder/Streamwatch/internal/domain/stream"
	"github.com/NordCoder/Streamwatch/internal/engine"
	"github.com/NordCoder/Streamwatch/internal/obs"
	"github.com/NordCoder/Streamwatch/internal/platform"
	"github.com/NordCoder/Streamwatch/internal/player"
	"github.com/NordCoder/Streamwatch/internal/prober"
	"github.com/NordCoder/Streamwatch/internal/recorder"
	"github.com/NordCoder/Streamwatch/internal/repository/sqlite"
	"github.com/NordCoder/Streamwatch/internal/services/watcher"

	"go.uber.org/zap"
)

const usage = `usage: streamwatch [-config path] [command]

commands:
  watch            run the periodic status watcher (default)
  check [-force]   one-shot status check of all tracked streams
  add <url>...     track one or more stream URLs
  remove <url>     stop tracking a URL
  list             print tracked streams with their last known status
  play <url>       launch playback for a URL
  record <url>     record a live stream to disk until interrupted
`

func main() {
	cfgPath := flag.String("config", "", "path to YAML config")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}

	l, err := obs.NewLogger(cfg.Log.AsLoggerConfig())
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = l.Sync() }()

	root, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.NewDB(root, sqlite.Config{Path: storagePath(cfg)})
	if err != nil {
		l.Fatal("open storage", zap.Error(err))
	}
	defer db.Close()
	repo := sqlite.NewStreamRepo(db)

	args := flag.Args()
	cmd := "watch"
	if len(args) > 0 {
		cmd = args[0]
		args = args[1:]
	}

	switch cmd {
	case "watch":
		err = runWatch(root, cfg, l, db, repo)
	case "check":
		err = runCheck(root, cfg, l, repo, args)
	case "add":
		err = runAdd(root, repo, args)
	case "remove":
		err = runRemove(root, repo, args)
	case "list":
		err = runList(root, repo)
	case "play":
		err = runPlay(root, cfg, l, args)
	case "record":
		err = runRecord(root, cfg, l, repo, args)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		l.Fatal("command failed", zap.String("command", cmd), zap.Error(err))
	}
}

func storagePath(cfg *config.Config) string {
	if cfg.Storage.Path != "" {
		return cfg.Storage.Path
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "streams.db"
	}
	dir = filepath.Join(dir, "streamwatch")
	_ = os.MkdirAll(dir, 0o755)
	return filepath.Join(dir, "streams.db")
}

func newEngine(cfg *config.Config, l *zap.Logger) *engine.Engine {
	sl := prober.NewStreamlink(l, prober.Options{
		Path:             cfg.Streamlink.Path,
		TwitchDisableAds: cfg.Streamlink.TwitchDisableAds,
	})
	return engine.New(l, sl, cfg.Engine.AsEngineConfig())
}

func runWatch(ctx context.Context, cfg *config.Config, l *zap.Logger, db *sqlite.DB, repo stream.Repo) error {
	otelCloser, err := obs.SetupOTel(ctx, cfg.OTEL.AsOTELConfig())
	if err != nil {
		return fmt.Errorf("otel init: %w", err)
	}
	defer func() { _ = otelCloser.Shutdown(context.Background()) }()

	ms := obs.BootstrapMetricsServer(cfg.Server.MetricsAddr, func(hctx context.Context) error {
		return db.SQL.PingContext(hctx)
	}, l)

	uc := watcher.NewUsecase(l, repo, newEngine(cfg, l))
	runner := watcher.NewRunner(l, uc, cfg.Watcher.Interval)

	err = runner.Run(ctx)

	shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = ms.Shutdown(shCtx)

	if errors.Is(err, context.Canceled) {
		l.Info("bye")
		return nil
	}
	return err
}

func runCheck(ctx context.Context, cfg *config.Config, l *zap.Logger, repo stream.Repo, args []string) error {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	force := fs.Bool("force", false, "bypass the status cache")
	_ = fs.Parse(args)

	uc := watcher.NewUsecase(l, repo, newEngine(cfg, l))
	sum, err := uc.Refresh(ctx, *force)
	if err != nil {
		return err
	}
	fmt.Printf("checked %d stream(s): %d live, %d failed\n", sum.Total, sum.Live, sum.Failed)
	for _, url := range sum.NewlyLive {
		fmt.Printf("  [+] %s\n", url)
	}
	for _, url := range sum.GoneOffline {
		fmt.Printf("  [-] %s\n", url)
	}
	return nil
}

func runAdd(ctx context.Context, repo stream.Repo, urls []string) error {
	if len(urls) == 0 {
		return fmt.Errorf("add: no URLs given")
	}
	for _, url := range urls {
		if !validURL(url) {
			fmt.Printf("skipped %s: must start with http:// or https://\n", url)
			continue
		}
		t := &stream.Target{
			URL:      url,
			Alias:    platform.ChannelName(url),
			Platform: platform.Identify(url),
			AddedAt:  time.Now().UTC(),
		}
		switch err := repo.Add(ctx, t); {
		case errors.Is(err, sqlite.ErrConflict):
			fmt.Printf("skipped %s: already tracked\n", url)
		case err != nil:
			return err
		default:
			fmt.Printf("added %s (%s)\n", url, t.Platform)
		}
	}
	return nil
}

func runRemove(ctx context.Context, repo stream.Repo, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("remove: expected exactly one URL")
	}
	if err := repo.Remove(ctx, args[0]); err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			return fmt.Errorf("remove: %s is not tracked", args[0])
		}
		return err
	}
	fmt.Printf("removed %s\n", args[0])
	return nil
}

func runList(ctx context.Context, repo stream.Repo) error {
	targets, err := repo.List(ctx)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		fmt.Println("no streams tracked; use `streamwatch add <url>`")
		return nil
	}
	for _, t := range targets {
		status := "unknown"
		if t.LastLive != nil {
			if *t.LastLive {
				status = "live"
			} else {
				status = "offline"
			}
		}
		fmt.Printf("%-8s %s\n", status, t.URL)
	}
	return nil
}

func runPlay(ctx context.Context, cfg *config.Config, l *zap.Logger, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("play: expected exactly one URL")
	}
	p := player.New(l, player.Options{
		Path:             cfg.Streamlink.Path,
		Quality:          cfg.Streamlink.Quality,
		TwitchDisableAds: cfg.Streamlink.TwitchDisableAds,
	})
	return p.Play(ctx, args[0])
}

func runRecord(ctx context.Context, cfg *config.Config, l *zap.Logger, repo stream.Repo, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("record: expected exactly one URL")
	}
	if !cfg.Recording.Enabled {
		return fmt.Errorf("record: recording is disabled in config")
	}
	url := args[0]

	t, err := repo.GetByURL(ctx, url)
	switch {
	case errors.Is(err, sqlite.ErrNotFound):
		// Untracked URLs are still recordable.
		t = &stream.Target{URL: url, Alias: platform.ChannelName(url), Platform: platform.Identify(url)}
	case err != nil:
		return err
	}

	rec := recorder.New(l, recorder.Options{
		Path:             cfg.Streamlink.Path,
		OutputDir:        cfg.Recording.OutputDir,
		FilenameTemplate: cfg.Recording.FilenameTemplate,
		Format:           cfg.Recording.Format,
		Quality:          cfg.Recording.Quality,
		TwitchDisableAds: cfg.Streamlink.TwitchDisableAds,
	})
	out, err := rec.Start(ctx, *t)
	if err != nil {
		return err
	}
	fmt.Printf("recording %s -> %s (ctrl-c to stop)\n", url, out)

	select {
	case <-ctx.Done():
		_ = rec.Stop(url)
	case <-rec.Done(url):
	}
	return nil
}

func validURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
