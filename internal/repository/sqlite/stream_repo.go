package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/NordCoder/Streamwatch/internal/domain/stream"
)

var _ stream.Repo = (*StreamRepoImpl)(nil)

type StreamRepoImpl struct {
	db *DB
}

func NewStreamRepo(db *DB) *StreamRepoImpl { return &StreamRepoImpl{db: db} }

const (
	qInsert = `
INSERT INTO streams (url, alias, platform, last_live, added_at, updated_at)
VALUES (?, ?, ?, NULL, ?, ?);
`

	qGetByURL = `
SELECT url, alias, platform, last_live, added_at
FROM streams
WHERE url = ?;
`

	qList = `
SELECT url, alias, platform, last_live, added_at
FROM streams
ORDER BY added_at, url;
`

	qDelete = `DELETE FROM streams WHERE url = ?;`

	qUpdateLastLive = `
UPDATE streams
SET last_live = ?, updated_at = ?
WHERE url = ?;
`
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTarget(row rowScanner, t *stream.Target) error {
	var lastLive sql.NullBool
	if err := row.Scan(&t.URL, &t.Alias, &t.Platform, &lastLive, &t.AddedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("scan stream: %w", err)
	}
	if lastLive.Valid {
		v := lastLive.Bool
		t.LastLive = &v
	}
	return nil
}

func (r *StreamRepoImpl) Add(ctx context.Context, t *stream.Target) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if t.AddedAt.IsZero() {
		t.AddedAt = time.Now().UTC()
	}
	_, err := r.db.SQL.ExecContext(ctx, qInsert, t.URL, t.Alias, t.Platform, t.AddedAt, t.AddedAt)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrConflict
		}
		return fmt.Errorf("insert stream: %w", err)
	}
	return nil
}

func (r *StreamRepoImpl) GetByURL(ctx context.Context, url string) (*stream.Target, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var t stream.Target
	if err := scanTarget(r.db.SQL.QueryRowContext(ctx, qGetByURL, url), &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *StreamRepoImpl) List(ctx context.Context) ([]*stream.Target, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.SQL.QueryContext(ctx, qList)
	if err != nil {
		return nil, fmt.Errorf("query streams: %w", err)
	}
	defer rows.Close()

	var out []*stream.Target
	for rows.Next() {
		var t stream.Target
		if err := scanTarget(rows, &t); err != nil {
			return nil, err
		}
		out = append(out, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (r *StreamRepoImpl) Remove(ctx context.Context, url string) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	res, err := r.db.SQL.ExecContext(ctx, qDelete, url)
	if err != nil {
		return fmt.Errorf("delete stream: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *StreamRepoImpl) UpdateLastLive(ctx context.Context, url string, live bool) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	res, err := r.db.SQL.ExecContext(ctx, qUpdateLastLive, live, time.Now().UTC(), url)
	if err != nil {
		return fmt.Errorf("update last_live: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
