package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/lysyi3m/cyberguardian/app/article"
)

// Store is the read side of the article storage the selector needs.
type Store interface {
	// GetPendingSources lists distinct sources with unprocessed articles, in a
	// stable order.
	GetPendingSources(ctx context.Context) ([]string, error)
	// GetPendingItems returns up to limit unprocessed articles of one source,
	// newest first with undated articles last.
	GetPendingItems(ctx context.Context, source string, limit int) ([]article.QueueItem, error)
}

type Allotment struct {
	Source string
	Limit  int
}

// Allot splits limit across sources: every source gets limit/len(sources)
// (at least one) and the first limit%len(sources) sources get one more.
// With more sources than limit the total exceeds limit; callers truncate.
func Allot(sources []string, limit int) []Allotment {
	if len(sources) == 0 || limit <= 0 {
		return nil
	}

	base := max(1, limit/len(sources))
	remainder := limit % len(sources)

	allotments := make([]Allotment, len(sources))
	for i, source := range sources {
		n := base
		if i < remainder {
			n++
		}
		allotments[i] = Allotment{Source: source, Limit: n}
	}
	return allotments
}

type Selector struct {
	store Store
}

func NewSelector(store Store) *Selector {
	return &Selector{store: store}
}

// Run returns at most limit unprocessed articles balanced across sources and
// ordered newest first.
func (s *Selector) Run(ctx context.Context, limit int) ([]article.QueueItem, error) {
	if limit <= 0 {
		return []article.QueueItem{}, nil
	}

	sources, err := s.store.GetPendingSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}

	allotments := Allot(sources, limit)
	items := make([]article.QueueItem, 0, limit)
	for _, allotment := range allotments {
		sourceItems, err := s.store.GetPendingItems(ctx, allotment.Source, allotment.Limit)
		if err != nil {
			return nil, fmt.Errorf("failed to get items for source %s: %w", allotment.Source, err)
		}
		items = append(items, sourceItems...)
	}

	SortByRecency(items)
	if len(items) > limit {
		items = items[:limit]
	}

	slog.Debug("Queue selected", "sources", len(sources), "limit", limit, "items", len(items))

	return items, nil
}

// SortByRecency orders items newest first; undated items sort last. The sort
// is stable so equal timestamps keep source order.
func SortByRecency(items []article.QueueItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].Published, items[j].Published
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
}
