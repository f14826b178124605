package watcher

import (
	"context"
	"fmt"

	"github.com/NordCoder/Streamwatch/internal/domain/stream"
	"github.com/NordCoder/Streamwatch/internal/engine"
	"github.com/NordCoder/Streamwatch/internal/platform"

	"go.uber.org/zap"
)

// Checker is the slice of the engine the watcher needs.
type Checker interface {
	CheckBatch(ctx context.Context, targets []stream.Target, forceRefresh bool) []engine.Result[stream.Status]
}

// Summary describes one refresh pass over the configured stream list.
type Summary struct {
	Total       int
	Live        int
	Failed      int
	NewlyLive   []string
	GoneOffline []string
}

// Usecase refreshes statuses for every tracked stream and persists liveness
// transitions. Transition detection compares against the stored last_live,
// so it survives restarts.
type Usecase struct {
	Log     *zap.Logger
	Repo    stream.Repo
	Checker Checker
}

func NewUsecase(log *zap.Logger, repo stream.Repo, checker Checker) *Usecase {
	return &Usecase{Log: log, Repo: repo, Checker: checker}
}

func (u *Usecase) Refresh(ctx context.Context, force bool) (*Summary, error) {
	stored, err := u.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list streams: %w", err)
	}

	targets := make([]stream.Target, len(stored))
	for i, t := range stored {
		targets[i] = *t
		if targets[i].Platform == "" {
			targets[i].Platform = platform.Identify(t.URL)
		}
	}

	results := u.Checker.CheckBatch(ctx, targets, force)

	sum := &Summary{Total: len(targets)}
	for i, res := range results {
		t := targets[i]
		if resErr := res.Err(); resErr != nil {
			sum.Failed++
			u.Log.Debug("check failed",
				zap.String("url", t.URL),
				zap.String("kind", resErr.Kind.String()),
				zap.String("message", resErr.Message),
			)
			continue
		}

		st := res.Value()
		if st.Live {
			sum.Live++
		}

		changed := t.LastLive == nil && st.Live ||
			t.LastLive != nil && *t.LastLive != st.Live
		if !changed {
			continue
		}

		if st.Live {
			sum.NewlyLive = append(sum.NewlyLive, t.URL)
			u.Log.Info("newly live", zap.String("url", t.URL), zap.String("name", st.Name))
		} else {
			sum.GoneOffline = append(sum.GoneOffline, t.URL)
			u.Log.Info("gone offline", zap.String("url", t.URL))
		}
		if err := u.Repo.UpdateLastLive(ctx, t.URL, st.Live); err != nil {
			u.Log.Warn("update last_live", zap.String("url", t.URL), zap.Error(err))
		}
	}
	return sum, nil
}
