package stream

import "context"

type Repo interface {
	Add(ctx context.Context, t *Target) error
	GetByURL(ctx context.Context, url string) (*Target, error)
	List(ctx context.Context) ([]*Target, error)
	Remove(ctx context.Context, url string) error
	UpdateLastLive(ctx context.Context, url string, live bool) error
}
