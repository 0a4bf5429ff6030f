package database

import (
	"errors"
	"time"
)

var (
	// ErrDuplicate means an article with the same fingerprint is already stored.
	ErrDuplicate = errors.New("article already exists")
	// ErrNotPending means the article does not exist or was already processed.
	ErrNotPending = errors.New("article not found or already processed")
)

type Source struct {
	Name          string
	FeedURL       string
	LastFetchedAt *time.Time
	NextFetchAt   *time.Time
	LastError     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type ArticleStats struct {
	Total      int
	Pending    int
	Processed  int
	Sources    int
	ByCategory map[string]int
}
