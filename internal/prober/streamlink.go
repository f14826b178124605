// Package prober implements the probing capability on top of a streamlink
// subprocess. The engine stays agnostic to this: it only sees the Result
// taxonomy coming back.
package prober

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/NordCoder/Streamwatch/internal/domain/stream"
	"github.com/NordCoder/Streamwatch/internal/engine"
	"github.com/NordCoder/Streamwatch/internal/platform"

	"go.uber.org/zap"
)

type Options struct {
	Path             string // streamlink binary, defaults to "streamlink"
	TwitchDisableAds bool
}

type Streamlink struct {
	log  *zap.Logger
	opts Options
	now  func() time.Time
}

func NewStreamlink(log *zap.Logger, opts Options) *Streamlink {
	if opts.Path == "" {
		opts.Path = "streamlink"
	}
	return &Streamlink{log: log, opts: opts, now: time.Now}
}

var _ engine.Prober = (*Streamlink)(nil)

// Probe runs `streamlink --json <url>` under the given timeout and
// classifies the outcome. The subprocess is killed when the deadline fires.
func (s *Streamlink) Probe(ctx context.Context, url string, timeout time.Duration) engine.Result[stream.Status] {
	pctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := make([]string, 0, 3)
	if s.opts.TwitchDisableAds {
		args = append(args, "--twitch-disable-ads")
	}
	args = append(args, "--json", url)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(pctx, s.opts.Path, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if errors.Is(pctx.Err(), context.DeadlineExceeded) {
		return engine.FailKind[stream.Status](engine.KindTimeout, "streamlink did not answer within "+timeout.String())
	}
	if errors.Is(runErr, exec.ErrNotFound) {
		return engine.FailKind[stream.Status](engine.KindUnclassified, "streamlink not found in PATH")
	}

	res := classify(url, stdout.Bytes(), stderr.Bytes(), s.now())
	if err := res.Err(); err != nil {
		s.log.Debug("probe classified as failure",
			zap.String("url", url),
			zap.String("kind", err.Kind.String()),
		)
	}
	return res
}

// probeReport is the subset of streamlink's --json output we care about.
type probeReport struct {
	Error    string `json:"error"`
	Metadata struct {
		Author   string `json:"author"`
		Category string `json:"category"`
		Title    string `json:"title"`
	} `json:"metadata"`
	Streams map[string]json.RawMessage `json:"streams"`
}

// classify turns raw streamlink output into a Status or a typed error.
// Offline-but-known targets are a successful probe with Live=false; an
// unknown channel or unsupported URL is NotFound.
func classify(url string, stdout, stderr []byte, at time.Time) engine.Result[stream.Status] {
	var rep probeReport
	if err := json.Unmarshal(stdout, &rep); err == nil {
		if len(rep.Streams) > 0 {
			name := rep.Metadata.Author
			if name == "" {
				name = platform.ChannelName(url)
			}
			return engine.Ok(stream.Status{
				Live:      true,
				Name:      name,
				Category:  rep.Metadata.Category,
				CheckedAt: at,
			})
		}
		if rep.Error != "" {
			return classifyMessage(url, rep.Error, at)
		}
	}

	// Older streamlink versions print errors to stderr without JSON.
	if msg := strings.TrimSpace(string(stderr)); msg != "" {
		return classifyMessage(url, msg, at)
	}
	return engine.FailKind[stream.Status](engine.KindUnclassified, "unrecognized streamlink output")
}

func classifyMessage(url, msg string, at time.Time) engine.Result[stream.Status] {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "no playable streams found"),
		strings.Contains(lower, "this stream is offline"):
		return engine.Ok(stream.Status{
			Live:      false,
			Name:      platform.ChannelName(url),
			CheckedAt: at,
		})
	case strings.Contains(lower, "no plugin can handle url"),
		strings.Contains(lower, "unable to find channel"),
		strings.Contains(lower, "404"):
		return engine.FailKind[stream.Status](engine.KindNotFound, msg)
	case strings.Contains(lower, "timed out"),
		strings.Contains(lower, "timeout"):
		return engine.FailKind[stream.Status](engine.KindTimeout, msg)
	case strings.Contains(lower, "connection"),
		strings.Contains(lower, "name or service not known"),
		strings.Contains(lower, "network"),
		strings.Contains(lower, "unable to open url"):
		return engine.FailKind[stream.Status](engine.KindNetwork, msg)
	default:
		return engine.FailKind[stream.Status](engine.KindUnclassified, msg)
	}
}
