package stream

import "time"

// Target is a single tracked stream. Identity is the URL; the engine only
// ever reads targets, it never mutates them.
type Target struct {
	URL      string    `json:"url"`
	Alias    string    `json:"alias"`
	Platform string    `json:"platform"`
	LastLive *bool     `json:"last_live"`
	AddedAt  time.Time `json:"added_at"`
}

// Status is the outcome of one successful probe. Replaced wholesale on
// refresh, never patched in place.
type Status struct {
	Live      bool      `json:"live"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Viewers   int       `json:"viewers"`
	CheckedAt time.Time `json:"checked_at"`
}
