// Package recorder captures live streams to disk through a streamlink
// subprocess. One recording per URL; the manager tracks active subprocesses
// and reaps them when they exit.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/NordCoder/Streamwatch/internal/domain/stream"
	"github.com/NordCoder/Streamwatch/internal/platform"

	"go.uber.org/zap"
)

// DefaultTemplate names output files as
// twitch_somechannel_20260825_153000.mp4.
const DefaultTemplate = "{platform}_{name}_{date}_{time}.{ext}"

type Options struct {
	Path             string // streamlink binary, defaults to "streamlink"
	OutputDir        string // defaults to ~/Videos/StreamWatch
	FilenameTemplate string
	Format           string // container extension, defaults to "mp4"
	Quality          string
	TwitchDisableAds bool
}

type recording struct {
	output string
	cancel context.CancelFunc
	done   chan struct{}
}

// Manager starts and stops recordings, keyed by stream URL.
type Manager struct {
	log  *zap.Logger
	opts Options

	mu     sync.Mutex
	active map[string]*recording

	now     func() time.Time
	command func(ctx context.Context, name string, args ...string) *exec.Cmd
}

func New(log *zap.Logger, opts Options) *Manager {
	if opts.Path == "" {
		opts.Path = "streamlink"
	}
	if opts.OutputDir == "" {
		opts.OutputDir = defaultOutputDir()
	}
	if opts.FilenameTemplate == "" {
		opts.FilenameTemplate = DefaultTemplate
	}
	if opts.Format == "" {
		opts.Format = "mp4"
	}
	if opts.Quality == "" {
		opts.Quality = "best"
	}
	return &Manager{
		log:     log,
		opts:    opts,
		active:  make(map[string]*recording),
		now:     time.Now,
		command: exec.CommandContext,
	}
}

func defaultOutputDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "recordings"
	}
	return filepath.Join(home, "Videos", "StreamWatch")
}

// Start launches a recording for t and returns the output path. A URL with a
// recording already in flight is rejected.
func (m *Manager) Start(ctx context.Context, t stream.Target) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.active[t.URL]; ok {
		return "", fmt.Errorf("already recording %s", t.URL)
	}
	if err := os.MkdirAll(m.opts.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	output := filepath.Join(m.opts.OutputDir, m.filename(t))

	rctx, cancel := context.WithCancel(ctx)
	cmd := m.command(rctx, m.opts.Path, m.args(t.URL, output)...)
	if err := cmd.Start(); err != nil {
		cancel()
		if errors.Is(err, exec.ErrNotFound) {
			return "", fmt.Errorf("streamlink not found in PATH")
		}
		return "", fmt.Errorf("record %s: %w", t.URL, err)
	}

	rec := &recording{output: output, cancel: cancel, done: make(chan struct{})}
	m.active[t.URL] = rec

	m.log.Info("recording started",
		zap.String("url", t.URL),
		zap.String("output", output),
	)
	go m.reap(t.URL, cmd, rec)
	return output, nil
}

func (m *Manager) args(url, output string) []string {
	args := make([]string, 0, 6)
	args = append(args, "--output", output, "--force")
	if m.opts.TwitchDisableAds {
		args = append(args, "--twitch-disable-ads")
	}
	return append(args, url, m.opts.Quality)
}

func (m *Manager) reap(url string, cmd *exec.Cmd, rec *recording) {
	err := cmd.Wait()

	m.mu.Lock()
	delete(m.active, url)
	m.mu.Unlock()
	close(rec.done)

	if err != nil {
		m.log.Debug("recording ended", zap.String("url", url), zap.Error(err))
		return
	}
	m.log.Info("recording finished", zap.String("url", url), zap.String("output", rec.output))
}

// Stop terminates the recording for url and waits for the subprocess to be
// reaped. The partial file stays on disk.
func (m *Manager) Stop(url string) error {
	m.mu.Lock()
	rec, ok := m.active[url]
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("no active recording for %s", url)
	}
	rec.cancel()
	<-rec.done
	return nil
}

// StopAll terminates every active recording, for shutdown.
func (m *Manager) StopAll() {
	m.mu.Lock()
	urls := make([]string, 0, len(m.active))
	for url := range m.active {
		urls = append(urls, url)
	}
	m.mu.Unlock()

	for _, url := range urls {
		_ = m.Stop(url)
	}
}

// Active returns the in-flight recordings as URL to output path.
func (m *Manager) Active() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]string, len(m.active))
	for url, rec := range m.active {
		out[url] = rec.output
	}
	return out
}

// Done reports completion of the recording for url. Unknown URLs read as
// already done.
func (m *Manager) Done(url string) <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rec, ok := m.active[url]; ok {
		return rec.done
	}
	closed := make(chan struct{})
	close(closed)
	return closed
}

func (m *Manager) filename(t stream.Target) string {
	name := t.Alias
	if name == "" {
		name = platform.ChannelName(t.URL)
	}
	if name == "" {
		name = "unknown"
	}
	p := t.Platform
	if p == "" {
		p = platform.Generic
	}

	now := m.now()
	return strings.NewReplacer(
		"{platform}", sanitize(p),
		"{name}", sanitize(name),
		"{date}", now.Format("20060102"),
		"{time}", now.Format("150405"),
		"{ext}", m.opts.Format,
	).Replace(m.opts.FilenameTemplate)
}

// sanitize strips characters that are invalid in filenames on common
// filesystems.
func sanitize(name string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', ':', '"', '/', '\\', '|', '?', '*':
			return '_'
		}
		return r
	}, name))
}
