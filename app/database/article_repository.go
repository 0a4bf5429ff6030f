package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lysyi3m/cyberguardian/app/article"
)

const maxEnrichmentAttempts = 3

var articleColumns = []string{
	"hash", "source", "url", "title", "summary", "published", "category", "processed",
	"digest", "kickstarter_es", "activity_es", "risk_level", "created_at",
}

var queueColumns = []string{"hash", "source", "url", "title", "summary", "category", "published"}

type SQLiteArticleRepository struct {
	db *DB
}

var _ ArticleRepository = (*SQLiteArticleRepository)(nil)

func NewArticleRepository(db *DB) *SQLiteArticleRepository {
	return &SQLiteArticleRepository{db: db}
}

// InsertArticle stores a new article. A fingerprint collision returns
// ErrDuplicate; it means the article was ingested before.
func (r *SQLiteArticleRepository) InsertArticle(ctx context.Context, a article.Article) error {
	kickstarters, err := json.Marshal(nonNil(a.Kickstarters))
	if err != nil {
		return fmt.Errorf("failed to encode kickstarters: %w", err)
	}
	activity, err := encodeActivity(a.Activity)
	if err != nil {
		return err
	}

	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	query, args, err := sq.Insert("articles").
		Columns(articleColumns...).
		Values(a.Hash, a.Source, a.URL, a.Title, a.Summary, unixOrNil(a.Published), string(a.Category), a.Processed,
			a.Digest, string(kickstarters), activity, string(a.RiskLevel), createdAt.Unix()).
		Suffix("ON CONFLICT (hash) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to insert article: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrDuplicate
	}

	return nil
}

func (r *SQLiteArticleRepository) GetArticle(ctx context.Context, hash string) (*article.Article, error) {
	query, args, err := sq.Select(articleColumns...).
		From("articles").
		Where(sq.Eq{"hash": hash}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	a, err := scanArticle(r.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get article: %w", err)
	}

	return a, nil
}

// GetPendingSources returns the distinct sources that still have unprocessed
// articles, sorted by name.
func (r *SQLiteArticleRepository) GetPendingSources(ctx context.Context) ([]string, error) {
	query, args, err := sq.Select("source").Distinct().
		From("articles").
		Where(sq.Eq{"processed": false}).
		OrderBy("source").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending sources: %w", err)
	}
	defer rows.Close()

	var sources []string
	for rows.Next() {
		var source string
		if err := rows.Scan(&source); err != nil {
			return nil, fmt.Errorf("failed to scan source: %w", err)
		}
		sources = append(sources, source)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating source rows: %w", err)
	}

	return sources, nil
}

// GetPendingItems returns the newest unprocessed articles of one source;
// undated articles come last.
func (r *SQLiteArticleRepository) GetPendingItems(ctx context.Context, source string, limit int) ([]article.QueueItem, error) {
	if limit <= 0 {
		return nil, nil
	}

	query, args, err := sq.Select(queueColumns...).
		From("articles").
		Where(sq.Eq{"source": source, "processed": false}).
		OrderBy("published IS NULL", "published DESC", "created_at DESC", "hash").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending items: %w", err)
	}
	defer rows.Close()

	var items []article.QueueItem
	for rows.Next() {
		var item article.QueueItem
		var category string
		var published sql.NullInt64
		err := rows.Scan(&item.Hash, &item.Source, &item.URL, &item.Title, &item.Summary, &category, &published)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item row: %w", err)
		}
		item.Category = article.Category(category)
		item.Published = timeOrNil(published)
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating item rows: %w", err)
	}

	return items, nil
}

// MarkProcessed stores the summarizer output and flips processed. It only
// applies once; a second call returns ErrNotPending.
func (r *SQLiteArticleRepository) MarkProcessed(ctx context.Context, hash string, digest article.Digest) error {
	kickstarters, err := json.Marshal(nonNil(digest.Kickstarters))
	if err != nil {
		return fmt.Errorf("failed to encode kickstarters: %w", err)
	}
	activity, err := encodeActivity(&digest.Activity)
	if err != nil {
		return err
	}

	query, args, err := sq.Update("articles").
		Set("processed", true).
		Set("digest", digest.Digest).
		Set("kickstarter_es", string(kickstarters)).
		Set("activity_es", activity).
		Set("risk_level", string(digest.RiskLevel)).
		Set("processed_at", time.Now().UTC().Unix()).
		Where(sq.Eq{"hash": hash, "processed": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to mark article processed: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotPending
	}

	return nil
}

// GetArticlesForEnrichment returns unprocessed articles of a source whose feed
// carried no summary and that have not exhausted their extraction attempts.
func (r *SQLiteArticleRepository) GetArticlesForEnrichment(ctx context.Context, source string, limit int) ([]article.Article, error) {
	query, args, err := sq.Select(articleColumns...).
		From("articles").
		Where(sq.Eq{"source": source, "processed": false, "summary": ""}).
		Where(sq.Lt{"enrich_attempts": maxEnrichmentAttempts}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get articles for enrichment: %w", err)
	}
	defer rows.Close()

	var articles []article.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article row: %w", err)
		}
		articles = append(articles, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating article rows: %w", err)
	}

	return articles, nil
}

func (r *SQLiteArticleRepository) UpdateSummary(ctx context.Context, hash, summary string, category article.Category) error {
	query, args, err := sq.Update("articles").
		Set("summary", summary).
		Set("category", string(category)).
		Set("enrich_attempts", sq.Expr("enrich_attempts + 1")).
		Where(sq.Eq{"hash": hash}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update summary: %w", err)
	}

	return nil
}

func (r *SQLiteArticleRepository) RecordEnrichmentFailure(ctx context.Context, hash string) error {
	query, args, err := sq.Update("articles").
		Set("enrich_attempts", sq.Expr("enrich_attempts + 1")).
		Where(sq.Eq{"hash": hash}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to record enrichment failure: %w", err)
	}

	return nil
}

func (r *SQLiteArticleRepository) GetStats(ctx context.Context) (*ArticleStats, error) {
	stats := &ArticleStats{ByCategory: make(map[string]int)}

	err := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN processed = 0 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN processed = 1 THEN 1 ELSE 0 END), 0),
			COUNT(DISTINCT source)
		FROM articles
	`).Scan(&stats.Total, &stats.Pending, &stats.Processed, &stats.Sources)
	if err != nil {
		return nil, fmt.Errorf("failed to get article stats: %w", err)
	}

	query, args, err := sq.Select("category", "COUNT(*)").
		From("articles").
		GroupBy("category").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get category counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		stats.ByCategory[category] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category rows: %w", err)
	}

	return stats, nil
}

// DeleteAll removes every article. Only exposed for test environments.
func (r *SQLiteArticleRepository) DeleteAll(ctx context.Context) (int64, error) {
	query, args, err := sq.Delete("articles").ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build delete: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete articles: %w", err)
	}

	return result.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (*article.Article, error) {
	var a article.Article
	var category, kickstarters, activity, risk string
	var published sql.NullInt64
	var createdAt int64

	err := row.Scan(&a.Hash, &a.Source, &a.URL, &a.Title, &a.Summary, &published, &category, &a.Processed,
		&a.Digest, &kickstarters, &activity, &risk, &createdAt)
	if err != nil {
		return nil, err
	}

	a.Category = article.Category(category)
	a.RiskLevel = article.RiskLevel(risk)
	a.Published = timeOrNil(published)
	a.CreatedAt = time.Unix(createdAt, 0).UTC()

	if kickstarters != "" {
		if err := json.Unmarshal([]byte(kickstarters), &a.Kickstarters); err != nil {
			return nil, fmt.Errorf("failed to decode kickstarters: %w", err)
		}
	}
	if activity != "" {
		a.Activity = &article.Activity{}
		if err := json.Unmarshal([]byte(activity), a.Activity); err != nil {
			return nil, fmt.Errorf("failed to decode activity: %w", err)
		}
	}

	return &a, nil
}

func encodeActivity(activity *article.Activity) (string, error) {
	if activity == nil || (activity.Title == "" && len(activity.Steps) == 0) {
		return "", nil
	}
	data, err := json.Marshal(activity)
	if err != nil {
		return "", fmt.Errorf("failed to encode activity: %w", err)
	}
	return string(data), nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func unixOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Unix()
}

func timeOrNil(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.Unix(v.Int64, 0).UTC()
	return &t
}
