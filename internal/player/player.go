// Package player launches streamlink against a chosen URL and hands the
// terminal over to it until playback ends.
package player

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"go.uber.org/zap"
)

type Options struct {
	Path             string
	Quality          string
	TwitchDisableAds bool
}

type Player struct {
	log  *zap.Logger
	opts Options
}

func New(log *zap.Logger, opts Options) *Player {
	if opts.Path == "" {
		opts.Path = "streamlink"
	}
	if opts.Quality == "" {
		opts.Quality = "best"
	}
	return &Player{log: log, opts: opts}
}

// Play blocks until the player exits or ctx is cancelled. A non-zero exit
// from streamlink is surfaced as an error; the caller decides how loudly to
// report it.
func (p *Player) Play(ctx context.Context, url string) error {
	args := make([]string, 0, 3)
	if p.opts.TwitchDisableAds {
		args = append(args, "--twitch-disable-ads")
	}
	args = append(args, url, p.opts.Quality)

	p.log.Info("launching player",
		zap.String("url", url),
		zap.String("quality", p.opts.Quality),
	)

	cmd := exec.CommandContext(ctx, p.opts.Path, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return fmt.Errorf("streamlink not found in PATH")
		}
		return fmt.Errorf("play %s: %w", url, err)
	}
	return nil
}
