package queue

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/lysyi3m/cyberguardian/app/article"
)

type memoryStore struct {
	items map[string][]article.QueueItem
	err   error
}

func (m *memoryStore) GetPendingSources(ctx context.Context) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	sources := make([]string, 0, len(m.items))
	for source := range m.items {
		sources = append(sources, source)
	}
	sort.Strings(sources)
	return sources, nil
}

func (m *memoryStore) GetPendingItems(ctx context.Context, source string, limit int) ([]article.QueueItem, error) {
	items := append([]article.QueueItem(nil), m.items[source]...)
	SortByRecency(items)
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func makeItems(source string, count int, start time.Time) []article.QueueItem {
	items := make([]article.QueueItem, count)
	for i := range items {
		published := start.Add(-time.Duration(i) * time.Hour)
		items[i] = article.QueueItem{
			Hash:      fmt.Sprintf("%s-%d", source, i),
			Source:    source,
			Title:     fmt.Sprintf("%s item %d", source, i),
			Published: &published,
		}
	}
	return items
}

func TestAllot(t *testing.T) {
	tests := []struct {
		name     string
		sources  []string
		limit    int
		expected []int
	}{
		{"even split", []string{"a", "b"}, 10, []int{5, 5}},
		{"remainder to first", []string{"a", "b", "c"}, 10, []int{4, 3, 3}},
		{"two remainders", []string{"a", "b", "c"}, 11, []int{4, 4, 3}},
		{"more sources than limit", []string{"a", "b", "c", "d"}, 2, []int{2, 2, 1, 1}},
		{"limit one", []string{"a", "b"}, 1, []int{2, 1}},
		{"no sources", nil, 5, nil},
		{"zero limit", []string{"a"}, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Allot(tt.sources, tt.limit)
			if len(result) != len(tt.expected) {
				t.Fatalf("Expected %d allotments, got %d", len(tt.expected), len(result))
			}
			for i, n := range tt.expected {
				if result[i].Source != tt.sources[i] {
					t.Errorf("Expected allotment %d for '%s', got '%s'", i, tt.sources[i], result[i].Source)
				}
				if result[i].Limit != n {
					t.Errorf("Expected allotment %d limit %d, got %d", i, n, result[i].Limit)
				}
			}
		})
	}
}

func TestSelectorRunBalanced(t *testing.T) {
	now := time.Date(2025, 7, 22, 12, 0, 0, 0, time.UTC)
	store := &memoryStore{items: map[string][]article.QueueItem{
		"alpha": makeItems("alpha", 12, now),
		"beta":  makeItems("beta", 12, now.Add(-30*time.Minute)),
		"gamma": makeItems("gamma", 12, now.Add(-10*time.Minute)),
	}}

	items, err := NewSelector(store).Run(context.Background(), 10)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(items) != 10 {
		t.Fatalf("Expected 10 items, got %d", len(items))
	}

	counts := map[string]int{}
	for _, item := range items {
		counts[item.Source]++
	}
	if counts["alpha"] != 4 || counts["beta"] != 3 || counts["gamma"] != 3 {
		t.Errorf("Expected 4/3/3 split, got %v", counts)
	}

	for i := 1; i < len(items); i++ {
		if items[i].Published.After(*items[i-1].Published) {
			t.Errorf("Expected descending order at %d: %v after %v", i, items[i].Published, items[i-1].Published)
		}
	}
}

func TestSelectorRunNoSources(t *testing.T) {
	store := &memoryStore{items: map[string][]article.QueueItem{}}

	items, err := NewSelector(store).Run(context.Background(), 5)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Errorf("Expected empty non-nil result, got %v", items)
	}
}

func TestSelectorRunShortSource(t *testing.T) {
	now := time.Date(2025, 7, 22, 12, 0, 0, 0, time.UTC)
	store := &memoryStore{items: map[string][]article.QueueItem{
		"alpha": makeItems("alpha", 10, now),
		"beta":  makeItems("beta", 1, now.Add(-48*time.Hour)),
	}}

	items, err := NewSelector(store).Run(context.Background(), 6)
	if err != nil {
		t.Fatal(err)
	}

	// beta only has one item, so the result is short rather than refilled
	if len(items) != 4 {
		t.Fatalf("Expected 4 items, got %d", len(items))
	}
	if items[len(items)-1].Source != "beta" {
		t.Errorf("Expected oldest item from beta last, got %s", items[len(items)-1].Source)
	}
}

func TestSelectorRunMoreSourcesThanLimit(t *testing.T) {
	now := time.Date(2025, 7, 22, 12, 0, 0, 0, time.UTC)
	store := &memoryStore{items: map[string][]article.QueueItem{
		"a": makeItems("a", 3, now.Add(-3*time.Hour)),
		"b": makeItems("b", 3, now.Add(-1*time.Hour)),
		"c": makeItems("c", 3, now),
		"d": makeItems("d", 3, now.Add(-2*time.Hour)),
	}}

	items, err := NewSelector(store).Run(context.Background(), 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Fatalf("Expected truncation to 2 items, got %d", len(items))
	}
	if items[0].Source != "c" || items[1].Source != "b" {
		t.Errorf("Expected newest items from c then b, got %s then %s", items[0].Source, items[1].Source)
	}
}

func TestSelectorRunStoreError(t *testing.T) {
	store := &memoryStore{err: errors.New("disk on fire")}

	_, err := NewSelector(store).Run(context.Background(), 5)
	if err == nil {
		t.Error("Expected error from store to be returned")
	}
}

func TestSortByRecencyUndatedLast(t *testing.T) {
	older := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	items := []article.QueueItem{
		{Hash: "undated-1"},
		{Hash: "older", Published: &older},
		{Hash: "undated-2"},
		{Hash: "newer", Published: &newer},
	}
	SortByRecency(items)

	expected := []string{"newer", "older", "undated-1", "undated-2"}
	for i, hash := range expected {
		if items[i].Hash != hash {
			t.Errorf("Expected '%s' at %d, got '%s'", hash, i, items[i].Hash)
		}
	}
}
