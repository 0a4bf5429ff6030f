package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

type SQLiteSourceRepository struct {
	db *DB
}

var _ SourceRepository = (*SQLiteSourceRepository)(nil)

func NewSourceRepository(db *DB) *SQLiteSourceRepository {
	return &SQLiteSourceRepository{db: db}
}

// UpsertSource registers a configured source or updates its feed URL
func (r *SQLiteSourceRepository) UpsertSource(ctx context.Context, name, feedURL string) error {
	now := time.Now().UTC().Unix()

	query, args, err := sq.Insert("sources").
		Columns("name", "feed_url", "created_at", "updated_at").
		Values(name, feedURL, now, now).
		Suffix("ON CONFLICT (name) DO UPDATE SET feed_url = excluded.feed_url, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build upsert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to upsert source: %w", err)
	}

	return nil
}

// UpdateFetchState records a fetch attempt and when the source is due next
func (r *SQLiteSourceRepository) UpdateFetchState(ctx context.Context, name string, nextFetch time.Time, fetchErr string) error {
	now := time.Now().UTC().Unix()

	query, args, err := sq.Update("sources").
		Set("last_fetched_at", now).
		Set("next_fetch_at", nextFetch.UTC().Unix()).
		Set("last_error", fetchErr).
		Set("updated_at", now).
		Where(sq.Eq{"name": name}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update fetch state: %w", err)
	}

	return nil
}

// GetSource retrieves a source by name, or nil if it is not registered
func (r *SQLiteSourceRepository) GetSource(ctx context.Context, name string) (*Source, error) {
	query, args, err := sq.Select("name", "feed_url", "last_fetched_at", "next_fetch_at", "last_error", "created_at", "updated_at").
		From("sources").
		Where(sq.Eq{"name": name}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var source Source
	var lastFetched, nextFetch sql.NullInt64
	var createdAt, updatedAt int64
	err = r.db.QueryRowContext(ctx, query, args...).Scan(
		&source.Name, &source.FeedURL, &lastFetched, &nextFetch, &source.LastError, &createdAt, &updatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get source: %w", err)
	}

	source.LastFetchedAt = timeOrNil(lastFetched)
	source.NextFetchAt = timeOrNil(nextFetch)
	source.CreatedAt = time.Unix(createdAt, 0).UTC()
	source.UpdatedAt = time.Unix(updatedAt, 0).UTC()

	return &source, nil
}

// GetSourceCount returns the number of registered sources
func (r *SQLiteSourceRepository) GetSourceCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sources").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get source count: %w", err)
	}
	return count, nil
}
