package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

type Config struct {
	Path         string
	QueryTimeout time.Duration
}

type DB struct {
	SQL          *sql.DB
	QueryTimeout time.Duration
}

const schema = `
CREATE TABLE IF NOT EXISTS streams (
    url        TEXT PRIMARY KEY,
    alias      TEXT NOT NULL DEFAULT '',
    platform   TEXT NOT NULL,
    last_live  INTEGER,
    added_at   TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);
`

func NewDB(ctx context.Context, cfg Config) (*DB, error) {
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = 2 * time.Second
	}

	sdb, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// The driver serializes writes; one connection avoids SQLITE_BUSY.
	sdb.SetMaxOpenConns(1)

	if err := sdb.PingContext(ctx); err != nil {
		_ = sdb.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := sdb.ExecContext(ctx, schema); err != nil {
		_ = sdb.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &DB{SQL: sdb, QueryTimeout: cfg.QueryTimeout}, nil
}

func (d *DB) Close() error { return d.SQL.Close() }

func (d *DB) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d.QueryTimeout)
}
